package extract

import (
	"math"
	"strings"

	"github.com/thywilljoshua/docstyler/internal/blocks"
)

// PDF text carries no extractable fill color.
const pdfTextColor = "000000"

var (
	boldMarkers   = []string{"bold", "gras"}
	italicMarkers = []string{"italic", "oblique"}
)

func hasMarker(fontName string, markers []string) bool {
	lower := strings.ToLower(fontName)
	for _, m := range markers {
		if strings.Contains(lower, m) {
			return true
		}
	}
	return false
}

func isBoldFont(fontName string) bool   { return hasMarker(fontName, boldMarkers) }
func isItalicFont(fontName string) bool { return hasMarker(fontName, italicMarkers) }

// cleanFontName drops the subset tag of an embedded font ("ABCDEF+Arial-Bold").
func cleanFontName(base string) string {
	if i := strings.IndexByte(base, '+'); i >= 0 {
		return base[i+1:]
	}
	return base
}

// roundSize rounds a point size to a positive integer.
func roundSize(pt float64) int {
	n := int(math.Round(math.Abs(pt)))
	if n < 1 {
		return 1
	}
	return n
}

func pdfSegment(text, fontName string, size float64) blocks.TextSegment {
	return blocks.TextSegment{
		Text: text,
		Style: blocks.Style{
			FontName:   fontName,
			FontSizePt: roundSize(size),
			Bold:       isBoldFont(fontName),
			Italic:     isItalicFont(fontName),
			ColorHex:   pdfTextColor,
		},
	}
}

// keepFragment drops whitespace-only fragments except a lone space, which
// still separates words inside a line.
func keepFragment(text string) bool {
	return text == " " || strings.TrimSpace(text) != ""
}
