// Package classify assigns hierarchy levels to extracted blocks from their
// presentation: size relative to the document's body text, boldness, color
// and leading numbering or keywords.
package classify

import (
	"github.com/thywilljoshua/docstyler/internal/blocks"
)

// Classifier applies one Ruleset. It is safe for concurrent use.
type Classifier struct {
	rules Ruleset
	chain []Rule
}

// New returns a classifier for rs.
func New(rs Ruleset) *Classifier {
	rs = rs.normalized()
	return &Classifier{rules: rs, chain: Chain(rs)}
}

// Result is a leveled copy of the input plus the inferred body size.
type Result struct {
	Blocks   []blocks.ContentBlock `json:"blocks"`
	BodySize int                   `json:"body_size"`
	// Rules holds, per block, the name of the rule that set its level.
	Rules []string `json:"rules,omitempty"`
}

// Classify levels every block. Input blocks are not modified. It never fails:
// a block no rule matches is body text.
func (c *Classifier) Classify(in []blocks.ContentBlock) Result {
	body := c.BodySize(in)
	out := make([]blocks.ContentBlock, len(in))
	names := make([]string, len(in))
	for i, b := range in {
		if b.IsImage() {
			b.Level = blocks.LevelImage
			names[i] = "image"
			out[i] = b
			continue
		}
		b.Level, names[i] = evaluate(c.chain, features(b, body, c.rules))
		out[i] = b
	}
	return Result{Blocks: out, BodySize: body, Rules: names}
}

// BodySize is the most frequent dominant font size among text blocks. A tie
// goes to the size seen first.
func (c *Classifier) BodySize(in []blocks.ContentBlock) int {
	counts := make(map[int]int)
	var seen []int
	for _, b := range in {
		if !b.IsText() {
			continue
		}
		size := b.Dominant.FontSizePt
		if counts[size] == 0 {
			seen = append(seen, size)
		}
		counts[size]++
	}
	best, bestCount := c.rules.DefaultBodySize, 0
	for _, size := range seen {
		if counts[size] > bestCount {
			best, bestCount = size, counts[size]
		}
	}
	return best
}
