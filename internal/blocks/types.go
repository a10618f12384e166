// Package blocks holds the content model shared by the extractors, the
// classifier and the writers.
package blocks

import (
	"fmt"
	"strconv"
	"strings"
)

type Kind string

const (
	KindText  Kind = "text"
	KindImage Kind = "image"
)

// PlacementRight is the only image placement produced today.
const PlacementRight = "right"

// Style is the presentation of a run of text.
type Style struct {
	FontName   string `json:"font_name"`
	FontSizePt int    `json:"font_size_pt"`
	Bold       bool   `json:"bold"`
	Italic     bool   `json:"italic"`
	ColorHex   string `json:"color_hex"`
}

// Color returns the color in its comparison form: uppercase, no leading '#'.
func (s Style) Color() string {
	return NormalizeHex(s.ColorHex)
}

// SameRun reports whether two styles belong to the same run. Font names are
// not part of the key.
func (s Style) SameRun(o Style) bool {
	return s.FontSizePt == o.FontSizePt &&
		s.Bold == o.Bold &&
		s.Italic == o.Italic &&
		s.Color() == o.Color()
}

// TextSegment is a run of text sharing one style.
type TextSegment struct {
	Text string `json:"text"`
	Style
}

// ContentBlock is one unit of extracted content: a line or paragraph of text,
// or an image placeholder.
type ContentBlock struct {
	Kind     Kind `json:"kind"`
	Location int  `json:"location"`

	Text     string        `json:"text,omitempty"`
	Segments []TextSegment `json:"segments,omitempty"`
	Dominant Style         `json:"dominant"`

	Sequence  int    `json:"sequence,omitempty"`
	Placement string `json:"placement,omitempty"`
	Caption   string `json:"caption,omitempty"`

	Level Level `json:"level"`
}

func (b ContentBlock) IsText() bool  { return b.Kind == KindText }
func (b ContentBlock) IsImage() bool { return b.Kind == KindImage }

// NewImageBlock returns an unnumbered image placeholder; Sequence assigns the
// global index.
func NewImageBlock(location int, caption string) ContentBlock {
	return ContentBlock{
		Kind:      KindImage,
		Location:  location,
		Placement: PlacementRight,
		Caption:   caption,
	}
}

// NormalizeHex uppercases a hex color and strips a leading '#'.
func NormalizeHex(hex string) string {
	return strings.ToUpper(strings.TrimPrefix(strings.TrimSpace(hex), "#"))
}

// Level is the hierarchy level assigned by the classifier. The zero value is
// unset.
type Level int

const (
	LevelUnset Level = iota
	LevelBody
	LevelImage
	levelHeading0
)

// MaxHeading is the deepest heading level.
const MaxHeading = 6

// Heading returns the level for heading depth n (0..MaxHeading).
func Heading(n int) Level {
	if n < 0 || n > MaxHeading {
		panic(fmt.Sprintf("blocks: heading level %d out of range", n))
	}
	return levelHeading0 + Level(n)
}

// HeadingDepth returns the heading depth and true when l is a heading.
func (l Level) HeadingDepth() (int, bool) {
	if l < levelHeading0 || l > levelHeading0+MaxHeading {
		return 0, false
	}
	return int(l - levelHeading0), true
}

func (l Level) IsHeading() bool {
	_, ok := l.HeadingDepth()
	return ok
}

func (l Level) String() string {
	switch l {
	case LevelUnset:
		return ""
	case LevelBody:
		return "body"
	case LevelImage:
		return "image"
	}
	if n, ok := l.HeadingDepth(); ok {
		return strconv.Itoa(n)
	}
	return fmt.Sprintf("Level(%d)", int(l))
}

func (l Level) valid() bool {
	return l == LevelUnset || l == LevelBody || l == LevelImage || l.IsHeading()
}

func (l Level) MarshalText() ([]byte, error) {
	if !l.valid() {
		return nil, fmt.Errorf("blocks: invalid level %d", int(l))
	}
	return []byte(l.String()), nil
}

func (l *Level) UnmarshalText(text []byte) error {
	lv, err := ParseLevel(string(text))
	if err != nil {
		return err
	}
	*l = lv
	return nil
}

// ParseLevel parses "0".."6", "body", "image" or "".
func ParseLevel(s string) (Level, error) {
	switch s = strings.ToLower(strings.TrimSpace(s)); s {
	case "":
		return LevelUnset, nil
	case "body":
		return LevelBody, nil
	case "image":
		return LevelImage, nil
	}
	n, err := strconv.Atoi(s)
	if err != nil || n < 0 || n > MaxHeading {
		return LevelUnset, fmt.Errorf("blocks: invalid level %q", s)
	}
	return Heading(n), nil
}
