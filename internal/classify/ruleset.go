package classify

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/thywilljoshua/docstyler/internal/blocks"
)

// ColorLevel maps a bold, short, at-least-body-size block of one color to a
// heading level.
type ColorLevel struct {
	Colors []string     `yaml:"colors" json:"colors"`
	Level  blocks.Level `yaml:"level" json:"level"`
	// RaisedLevel, when set, replaces Level for blocks at least RaiseAt points
	// above body size.
	RaisedLevel blocks.Level `yaml:"raised_level,omitempty" json:"raised_level,omitempty"`
	RaiseAt     float64      `yaml:"raise_at,omitempty" json:"raise_at,omitempty"`
}

// Ruleset is the data the rule chain reads: thresholds, keyword lists and
// the color table. It is injected into the classifier so rule sets can be
// swapped per corpus.
type Ruleset struct {
	// ShortTextLimit is the rune count below which a block counts as short.
	ShortTextLimit   int          `yaml:"short_text_limit" json:"short_text_limit"`
	ClinicalKeywords []string     `yaml:"clinical_keywords" json:"clinical_keywords"`
	TableKeywords    []string     `yaml:"table_keywords" json:"table_keywords"`
	ColorLevels      []ColorLevel `yaml:"color_levels" json:"color_levels"`
	// DefaultBodySize is used when a document has no text blocks.
	DefaultBodySize int `yaml:"default_body_size" json:"default_body_size"`
}

// DefaultRuleset returns the built-in rules for French medical course
// material.
func DefaultRuleset() Ruleset {
	return Ruleset{
		ShortTextLimit: 80,
		ClinicalKeywords: []string{
			"examen clinique", "examen neurologique", "examen physique",
			"inspection", "palpation", "auscultation", "percussion",
			"signes fonctionnels", "signes physiques", "signes généraux",
			"subjectifs", "objectifs", "interrogatoire",
			"l'examen neurologique", "l'examen clinique",
		},
		TableKeywords: []string{
			"classification", "tableau", "stade", "grade", "type",
			"causes", "étiologies", "diagnostic différentiel",
			"formes cliniques", "complications",
		},
		ColorLevels: []ColorLevel{
			{Colors: []string{"00AF50"}, Level: blocks.Heading(3)},
			{Colors: []string{"006FC0"}, Level: blocks.Heading(4)},
			{Colors: []string{"E97031"}, Level: blocks.Heading(5)},
			{Colors: []string{"9F2B92"}, Level: blocks.Heading(6)},
			{Colors: []string{"EE0000", "FF0000"}, Level: blocks.Heading(3), RaisedLevel: blocks.Heading(2), RaiseAt: 1},
		},
		DefaultBodySize: 10,
	}
}

// LoadRuleset reads a YAML rules file. Keys absent from the file keep their
// DefaultRuleset values.
func LoadRuleset(path string) (Ruleset, error) {
	rs := DefaultRuleset()
	raw, err := os.ReadFile(path)
	if err != nil {
		return rs, fmt.Errorf("read rules %s: %w", path, err)
	}
	if err := yaml.Unmarshal(raw, &rs); err != nil {
		return rs, fmt.Errorf("parse rules %s: %w", path, err)
	}
	if err := rs.Validate(); err != nil {
		return rs, fmt.Errorf("rules %s: %w", path, err)
	}
	return rs, nil
}

// Validate checks that every configured level is a heading.
func (rs Ruleset) Validate() error {
	if rs.ShortTextLimit <= 0 {
		return fmt.Errorf("short_text_limit must be positive, got %d", rs.ShortTextLimit)
	}
	for i, cl := range rs.ColorLevels {
		if len(cl.Colors) == 0 {
			return fmt.Errorf("color_levels[%d]: no colors", i)
		}
		if !cl.Level.IsHeading() {
			return fmt.Errorf("color_levels[%d]: level %q is not a heading level", i, cl.Level)
		}
		if cl.RaisedLevel != blocks.LevelUnset && !cl.RaisedLevel.IsHeading() {
			return fmt.Errorf("color_levels[%d]: raised_level %q is not a heading level", i, cl.RaisedLevel)
		}
	}
	return nil
}

// normalized returns a copy with lower-cased keywords and canonical colors.
func (rs Ruleset) normalized() Ruleset {
	out := rs
	out.ClinicalKeywords = lowerAll(rs.ClinicalKeywords)
	out.TableKeywords = lowerAll(rs.TableKeywords)
	out.ColorLevels = make([]ColorLevel, len(rs.ColorLevels))
	for i, cl := range rs.ColorLevels {
		cl.Colors = append([]string(nil), cl.Colors...)
		for j, c := range cl.Colors {
			cl.Colors[j] = blocks.NormalizeHex(c)
		}
		out.ColorLevels[i] = cl
	}
	if out.ShortTextLimit <= 0 {
		out.ShortTextLimit = 80
	}
	if out.DefaultBodySize <= 0 {
		out.DefaultBodySize = 10
	}
	return out
}

func lowerAll(in []string) []string {
	out := make([]string, len(in))
	for i, s := range in {
		out[i] = strings.ToLower(s)
	}
	return out
}

// colorLevel looks up a normalized color.
func (rs Ruleset) colorLevel(color string, sizeDiff float64) (blocks.Level, bool) {
	for _, cl := range rs.ColorLevels {
		for _, c := range cl.Colors {
			if c != color {
				continue
			}
			if cl.RaisedLevel != blocks.LevelUnset && sizeDiff >= cl.RaiseAt {
				return cl.RaisedLevel, true
			}
			return cl.Level, true
		}
	}
	return blocks.LevelUnset, false
}
