package blocks

import (
	"strings"
	"unicode/utf8"
)

// MergeRuns coalesces adjacent fragments that share a run style (size, bold,
// italic, color). Order is preserved and the merged segment keeps the font
// name of its first fragment. Running it on its own output is a no-op.
func MergeRuns(fragments []TextSegment) []TextSegment {
	if len(fragments) == 0 {
		return nil
	}
	out := make([]TextSegment, 0, len(fragments))
	for _, f := range fragments {
		if n := len(out); n > 0 && out[n-1].SameRun(f.Style) {
			out[n-1].Text += f.Text
			continue
		}
		out = append(out, f)
	}
	return out
}

// DominantStyle returns the style of the longest segment; the first one wins
// a tie.
func DominantStyle(segments []TextSegment) Style {
	if len(segments) == 0 {
		return Style{}
	}
	best := 0
	bestLen := utf8.RuneCountInString(segments[0].Text)
	for i := 1; i < len(segments); i++ {
		if n := utf8.RuneCountInString(segments[i].Text); n > bestLen {
			best, bestLen = i, n
		}
	}
	return segments[best].Style
}

// NewTextBlock builds a text block from raw fragments in reading order.
// Fragments with empty text are dropped before merging. It returns false when
// nothing but whitespace remains.
func NewTextBlock(location int, fragments []TextSegment) (ContentBlock, bool) {
	var raw strings.Builder
	kept := make([]TextSegment, 0, len(fragments))
	for _, f := range fragments {
		if f.Text == "" {
			continue
		}
		raw.WriteString(f.Text)
		kept = append(kept, f)
	}
	text := strings.TrimSpace(raw.String())
	if text == "" {
		return ContentBlock{}, false
	}
	segments := MergeRuns(kept)
	return ContentBlock{
		Kind:     KindText,
		Location: location,
		Text:     text,
		Segments: segments,
		Dominant: DominantStyle(segments),
	}, true
}

// Sequence flattens per-unit (page or slide) block lists in unit order and
// numbers images from 1 across the whole document. Input slices are not
// modified.
func Sequence(units [][]ContentBlock) []ContentBlock {
	total := 0
	for _, u := range units {
		total += len(u)
	}
	out := make([]ContentBlock, 0, total)
	seq := 0
	for _, u := range units {
		for _, b := range u {
			if b.IsImage() {
				seq++
				b.Sequence = seq
			}
			out = append(out, b)
		}
	}
	return out
}
