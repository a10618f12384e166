package render

import (
	"fmt"
	"io"
	"strings"

	"github.com/thywilljoshua/docstyler/internal/blocks"
)

// MDX writes one page: front matter with the title, then one Markdown
// paragraph per block.
func MDX(w io.Writer, title string, in []blocks.ContentBlock) error {
	var b strings.Builder
	fmt.Fprintf(&b, "---\ntitle: \"%s\"\n---\n\n", escapeQuotes(title))
	for _, blk := range in {
		line := mdxLine(blk)
		if line == "" {
			continue
		}
		b.WriteString(line)
		b.WriteString("\n\n")
	}
	_, err := io.WriteString(w, b.String())
	return err
}

func mdxLine(blk blocks.ContentBlock) string {
	if blk.IsImage() {
		return "> " + escapeMDX(Placeholder(blk))
	}
	text := strings.TrimSpace(blk.Text)
	if text == "" {
		return ""
	}
	depth, ok := blk.Level.HeadingDepth()
	switch {
	case !ok:
		return bodyMarkdown(blk)
	case depth == blocks.MaxHeading:
		return "**" + escapeMDX(text) + "**"
	default:
		return strings.Repeat("#", min(depth+1, 6)) + " " + escapeMDX(text)
	}
}

// bodyMarkdown renders segments with their emphasis. Surrounding whitespace
// stays outside the markers so the emphasis still parses.
func bodyMarkdown(blk blocks.ContentBlock) string {
	if len(blk.Segments) == 0 {
		return escapeMDX(strings.TrimSpace(blk.Text))
	}
	var b strings.Builder
	for _, seg := range blk.Segments {
		core := strings.TrimSpace(seg.Text)
		if core == "" {
			b.WriteString(seg.Text)
			continue
		}
		lead := seg.Text[:strings.Index(seg.Text, core)]
		trail := seg.Text[len(lead)+len(core):]
		marker := ""
		switch {
		case seg.Bold && seg.Italic:
			marker = "***"
		case seg.Bold:
			marker = "**"
		case seg.Italic:
			marker = "*"
		}
		b.WriteString(lead)
		b.WriteString(marker)
		b.WriteString(escapeMDX(core))
		b.WriteString(marker)
		b.WriteString(trail)
	}
	return strings.TrimSpace(b.String())
}

var mdxEscaper = strings.NewReplacer(
	`\`, `\\`,
	`*`, `\*`,
	`_`, `\_`,
	`{`, `\{`,
	`}`, `\}`,
	`<`, `\<`,
	`>`, `\>`,
	"`", "\\`",
)

func escapeMDX(s string) string { return mdxEscaper.Replace(s) }

func escapeQuotes(s string) string { return strings.ReplaceAll(s, "\"", "\\\"") }
