// Package style holds the presentation the writers apply to classified
// blocks: one text style per heading level, the body and placeholder styles,
// page geometry and the color normalization table.
package style

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/thywilljoshua/docstyler/internal/blocks"
)

// Text is the style of one paragraph kind.
type Text struct {
	Font   string `yaml:"font" json:"font"`
	SizePt int    `yaml:"size_pt" json:"size_pt"`
	Bold   bool   `yaml:"bold" json:"bold"`
	Italic bool   `yaml:"italic,omitempty" json:"italic,omitempty"`
	Color  string `yaml:"color" json:"color"`
	Label  string `yaml:"label,omitempty" json:"label,omitempty"`
}

// HalfPoints is the size in the unit DOCX run properties use.
func (t Text) HalfPoints() int { return t.SizePt * 2 }

// Page is the page geometry in millimetres.
type Page struct {
	WidthMm        float64 `yaml:"width_mm" json:"width_mm"`
	HeightMm       float64 `yaml:"height_mm" json:"height_mm"`
	MarginLeftMm   float64 `yaml:"margin_left_mm" json:"margin_left_mm"`
	MarginRightMm  float64 `yaml:"margin_right_mm" json:"margin_right_mm"`
	MarginTopMm    float64 `yaml:"margin_top_mm" json:"margin_top_mm"`
	MarginBottomMm float64 `yaml:"margin_bottom_mm" json:"margin_bottom_mm"`
}

// Config is the full style configuration. Levels is indexed by heading depth.
type Config struct {
	Levels      [blocks.MaxHeading + 1]Text `yaml:"levels" json:"levels"`
	Body        Text                        `yaml:"body" json:"body"`
	Placeholder Text                        `yaml:"placeholder" json:"placeholder"`
	Page        Page                        `yaml:"page" json:"page"`
	// ColorMap maps source colors to the palette. Keys and values are hex
	// without '#'.
	ColorMap map[string]string `yaml:"color_map" json:"color_map"`
}

func Default() Config {
	heading := func(size int, color, label string) Text {
		return Text{Font: "Aptos", SizePt: size, Bold: true, Color: color, Label: label}
	}
	return Config{
		Levels: [blocks.MaxHeading + 1]Text{
			heading(16, "E97031", "Subject Title"),
			heading(14, "EE0000", "Course Subtitle"),
			heading(12, "EE0000", "Main Part (Roman)"),
			heading(11, "00AF50", "Numbered Section"),
			heading(10, "006FC0", "Lettered Subsection"),
			heading(10, "E97031", "Table Header"),
			heading(10, "9F2B92", "Clinical Exam Label"),
		},
		Body:        Text{Font: "Aptos", SizePt: 10, Color: "000000"},
		Placeholder: Text{Font: "Aptos", SizePt: 9, Italic: true, Color: "808080"},
		Page: Page{
			WidthMm:        210,
			HeightMm:       297,
			MarginLeftMm:   12.7,
			MarginRightMm:  3.5,
			MarginTopMm:    3.2,
			MarginBottomMm: 19.4,
		},
		ColorMap: map[string]string{
			"00AF50": "00AF50",
			"008000": "00AF50",
			"EE0000": "EE0000",
			"FF0000": "EE0000",
			"006FC0": "006FC0",
			"0000FF": "006FC0",
			"E97031": "E97031",
			"FF8C00": "E97031",
			"9F2B92": "9F2B92",
			"800080": "9F2B92",
			"00AFEF": "00AFEF",
			"808080": "808080",
			"000000": "000000",
		},
	}
}

// Load reads a YAML style file over the defaults. Color map entries in the
// file are added to the default table. A levels list, when present, must
// hold all seven levels.
func Load(path string) (Config, error) {
	cfg := Default()
	raw, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("read style %s: %w", path, err)
	}
	if err := yaml.Unmarshal(raw, &cfg); err != nil {
		return cfg, fmt.Errorf("parse style %s: %w", path, err)
	}
	cfg = cfg.normalized()
	if err := cfg.Validate(); err != nil {
		return cfg, fmt.Errorf("style %s: %w", path, err)
	}
	return cfg, nil
}

func (c Config) Validate() error {
	for i, t := range c.Levels {
		if t.SizePt <= 0 {
			return fmt.Errorf("levels[%d]: size_pt must be positive", i)
		}
	}
	if c.Body.SizePt <= 0 {
		return fmt.Errorf("body: size_pt must be positive")
	}
	if c.Placeholder.SizePt <= 0 {
		return fmt.Errorf("placeholder: size_pt must be positive")
	}
	if c.Page.WidthMm <= 0 || c.Page.HeightMm <= 0 {
		return fmt.Errorf("page: width and height must be positive")
	}
	return nil
}

func (c Config) normalized() Config {
	for i := range c.Levels {
		c.Levels[i].Color = blocks.NormalizeHex(c.Levels[i].Color)
	}
	c.Body.Color = blocks.NormalizeHex(c.Body.Color)
	c.Placeholder.Color = blocks.NormalizeHex(c.Placeholder.Color)
	m := make(map[string]string, len(c.ColorMap))
	for k, v := range c.ColorMap {
		m[blocks.NormalizeHex(k)] = blocks.NormalizeHex(v)
	}
	c.ColorMap = m
	return c
}

// MapColor returns the palette color for hex. Unknown colors pass through
// uppercased.
func (c Config) MapColor(hex string) string {
	key := blocks.NormalizeHex(hex)
	if v, ok := c.ColorMap[key]; ok {
		return v
	}
	return key
}

// Heading returns the style for heading level lv, falling back to Body for
// anything that is not a heading.
func (c Config) Heading(lv blocks.Level) Text {
	if n, ok := lv.HeadingDepth(); ok {
		return c.Levels[n]
	}
	return c.Body
}
