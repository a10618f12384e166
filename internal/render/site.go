package render

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/thywilljoshua/docstyler/internal/blocks"
)

// Page is one MDX page of a docs site: a top-level section and its blocks.
type Page struct {
	Title  string
	Slug   string
	Blocks []blocks.ContentBlock
}

// SplitPages cuts a classified document at its shallowest heading depth.
// Blocks before the first such heading are returned as the preface.
func SplitPages(in []blocks.ContentBlock) (preface []blocks.ContentBlock, pages []Page) {
	top := -1
	for _, b := range in {
		if d, ok := b.Level.HeadingDepth(); ok && (top < 0 || d < top) {
			top = d
		}
	}
	slugs := newSlugger("index")
	for _, b := range in {
		if d, ok := b.Level.HeadingDepth(); ok && d == top {
			pages = append(pages, Page{Title: b.Text, Slug: slugs.next(b.Text)})
			continue
		}
		if len(pages) == 0 {
			preface = append(preface, b)
			continue
		}
		p := &pages[len(pages)-1]
		p.Blocks = append(p.Blocks, b)
	}
	return preface, pages
}

// Site describes a docs.json based site written by WriteSite.
type Site struct {
	Name  string
	Title string
	// SlugPrefix is prepended to every page slug.
	SlugPrefix string
}

// WriteSite writes one MDX page per top-level section, an index page and a
// docs.json navigation file into dir. An existing docs.json keeps its theme
// and colors; its name and navigation are replaced. It returns the written
// paths.
func WriteSite(dir string, site Site, in []blocks.ContentBlock) ([]string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	preface, pages := SplitPages(in)
	var written []string
	for i, p := range pages {
		if site.SlugPrefix != "" {
			p.Slug = Slugify(site.SlugPrefix + "-" + p.Slug)
			pages[i] = p
		}
		var buf bytes.Buffer
		if err := MDX(&buf, p.Title, p.Blocks); err != nil {
			return written, err
		}
		file := filepath.Join(dir, p.Slug+".mdx")
		if err := os.WriteFile(file, buf.Bytes(), 0o644); err != nil {
			return written, err
		}
		written = append(written, file)
	}

	index := filepath.Join(dir, "index.mdx")
	if err := writeIndex(index, site.Title, preface, pages); err != nil {
		return written, err
	}
	written = append(written, index)

	docs := filepath.Join(dir, "docs.json")
	if err := updateDocsJSON(docs, site.Name, pages); err != nil {
		return written, fmt.Errorf("docs.json: %w", err)
	}
	return append(written, docs), nil
}

func writeIndex(path, title string, preface []blocks.ContentBlock, pages []Page) error {
	if title == "" {
		title = "Introduction"
	}
	var b bytes.Buffer
	if err := MDX(&b, title, preface); err != nil {
		return err
	}
	if len(pages) > 0 {
		b.WriteString("## Sections\n\n")
		for _, p := range pages {
			fmt.Fprintf(&b, "- [%s](./%s)\n", escapeMDX(p.Title), p.Slug)
		}
	}
	return os.WriteFile(path, b.Bytes(), 0o644)
}

type docsJSON struct {
	Schema     string            `json:"$schema"`
	Theme      string            `json:"theme"`
	Name       string            `json:"name"`
	Colors     map[string]string `json:"colors,omitempty"`
	Favicon    string            `json:"favicon,omitempty"`
	Navigation map[string]any    `json:"navigation"`
	Logo       map[string]string `json:"logo,omitempty"`
	Navbar     map[string]any    `json:"navbar,omitempty"`
	Footer     map[string]any    `json:"footer,omitempty"`
}

func defaultDocsJSON() docsJSON {
	return docsJSON{
		Schema: "https://mintlify.com/docs.json",
		Theme:  "mint",
		Name:   "Documentation",
		Colors: map[string]string{
			"primary": "#00AF50",
			"light":   "#006FC0",
			"dark":    "#9F2B92",
		},
	}
}

func updateDocsJSON(path, siteName string, pages []Page) error {
	cfg := defaultDocsJSON()
	raw, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := json.Unmarshal(raw, &cfg); err != nil {
			return err
		}
	case !errors.Is(err, fs.ErrNotExist):
		return err
	}
	if strings.TrimSpace(siteName) != "" {
		cfg.Name = siteName
	}

	nav := []any{"index"}
	for _, p := range pages {
		nav = append(nav, p.Slug)
	}
	cfg.Navigation = map[string]any{
		"tabs": []map[string]any{{
			"tab": "Documentation",
			"groups": []map[string]any{{
				"group": "Course",
				"pages": nav,
			}},
		}},
	}

	out, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, out, 0o644)
}
