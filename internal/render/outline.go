package render

import (
	"regexp"
	"strconv"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"

	"github.com/thywilljoshua/docstyler/internal/blocks"
)

// Section is one heading of the outline with the page or slide range it
// covers.
type Section struct {
	Title    string    `json:"title"`
	Depth    int       `json:"depth"`
	Slug     string    `json:"slug"`
	Start    int       `json:"start"`
	End      int       `json:"end"`
	Children []Section `json:"children,omitempty"`
}

// Outline nests the heading blocks of a classified document by depth. A
// heading is a child of the nearest preceding heading with a smaller depth;
// a section ends where the next heading at the same or a shallower depth
// begins.
func Outline(in []blocks.ContentBlock) []Section {
	type node struct {
		Section
		kids []int
	}
	var nodes []node
	var roots []int
	var stack []int
	slugs := newSlugger()
	last := 0

	for _, b := range in {
		if b.Location > last {
			last = b.Location
		}
		depth, ok := b.Level.HeadingDepth()
		if !ok || !b.IsText() {
			for _, i := range stack {
				nodes[i].End = max(nodes[i].End, b.Location)
			}
			continue
		}
		for len(stack) > 0 && nodes[stack[len(stack)-1]].Depth >= depth {
			stack = stack[:len(stack)-1]
		}
		nodes = append(nodes, node{Section: Section{
			Title: b.Text,
			Depth: depth,
			Slug:  slugs.next(b.Text),
			Start: b.Location,
			End:   b.Location,
		}})
		idx := len(nodes) - 1
		if len(stack) == 0 {
			roots = append(roots, idx)
		} else {
			parent := stack[len(stack)-1]
			nodes[parent].kids = append(nodes[parent].kids, idx)
		}
		for _, i := range stack {
			nodes[i].End = max(nodes[i].End, b.Location)
		}
		stack = append(stack, idx)
	}

	var build func(i int) Section
	build = func(i int) Section {
		s := nodes[i].Section
		for _, k := range nodes[i].kids {
			s.Children = append(s.Children, build(k))
		}
		return s
	}
	out := make([]Section, 0, len(roots))
	for _, r := range roots {
		out = append(out, build(r))
	}
	return out
}

// Flatten lists an outline depth-first.
func Flatten(tree []Section) []Section {
	var out []Section
	for _, s := range tree {
		kids := s.Children
		s.Children = nil
		out = append(out, s)
		out = append(out, Flatten(kids)...)
	}
	return out
}

var nonSlug = regexp.MustCompile(`[^a-z0-9\-]+`)

var stripMarks = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

// Slugify lowercases s, drops accents and joins words with '-'.
func Slugify(s string) string {
	if folded, _, err := transform.String(stripMarks, s); err == nil {
		s = folded
	}
	s = strings.ToLower(strings.TrimSpace(s))
	s = strings.NewReplacer(" ", "-", "/", "-", ".", "-", "'", "-").Replace(s)
	s = nonSlug.ReplaceAllString(s, "-")
	for strings.Contains(s, "--") {
		s = strings.ReplaceAll(s, "--", "-")
	}
	return strings.Trim(s, "-")
}

// slugger hands out unique slugs: the second "intro" becomes "intro-2",
// skipping suffixes already issued to other titles.
type slugger struct {
	used  map[string]bool
	count map[string]int
}

func newSlugger(reserved ...string) *slugger {
	sl := &slugger{used: map[string]bool{}, count: map[string]int{}}
	for _, r := range reserved {
		sl.used[r] = true
	}
	return sl
}

func (sl *slugger) next(title string) string {
	base := Slugify(title)
	if base == "" {
		base = "section"
	}
	slug, n := base, max(sl.count[base], 1)
	for sl.used[slug] {
		n++
		slug = base + "-" + strconv.Itoa(n)
	}
	sl.count[base] = n
	sl.used[slug] = true
	return slug
}
