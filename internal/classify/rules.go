package classify

import (
	"strings"
	"unicode/utf8"

	"github.com/thywilljoshua/docstyler/internal/blocks"
)

// Features are the facts about one text block that rules look at.
type Features struct {
	Text     string
	Lower    string
	SizeDiff float64
	Short    bool
	Bold     bool
	Color    string
}

func features(b blocks.ContentBlock, bodySize int, rs Ruleset) Features {
	text := strings.TrimSpace(b.Text)
	return Features{
		Text:     text,
		Lower:    strings.ToLower(text),
		SizeDiff: float64(b.Dominant.FontSizePt - bodySize),
		Short:    utf8.RuneCountInString(text) < rs.ShortTextLimit,
		Bold:     b.Dominant.Bold,
		Color:    b.Dominant.Color(),
	}
}

// Rule is one link of the chain. Eval returns the level and true when the
// rule applies.
type Rule struct {
	Name string
	Eval func(f Features) (blocks.Level, bool)
}

// when builds a rule with a fixed result.
func when(name string, lv blocks.Level, pred func(f Features) bool) Rule {
	return Rule{Name: name, Eval: func(f Features) (blocks.Level, bool) {
		if pred(f) {
			return lv, true
		}
		return blocks.LevelUnset, false
	}}
}

// RuleDefault is reported when no rule matched.
const RuleDefault = "default-body"

// Chain returns the ordered rules for rs. Order matters: coarse size rules
// come before pattern rules, so a bold short "I. Introduction" four points
// above body size is a level 1 title, not a level 2 Roman part.
func Chain(rs Ruleset) []Rule {
	boldShort := func(f Features) bool { return f.Bold && f.Short }
	return []Rule{
		when("size+5", blocks.Heading(0), func(f Features) bool { return f.SizeDiff >= 5 && boldShort(f) }),
		when("size+3", blocks.Heading(1), func(f Features) bool { return f.SizeDiff >= 3 && boldShort(f) }),
		when("roman-prefix", blocks.Heading(2), func(f Features) bool { return f.Bold && hasRomanPrefix(f.Text) }),
		when("size+1.5", blocks.Heading(2), func(f Features) bool { return f.SizeDiff >= 1.5 && boldShort(f) }),
		when("number-prefix", blocks.Heading(3), func(f Features) bool { return boldShort(f) && hasNumberPrefix(f.Text) }),
		when("clinical-keyword", blocks.Heading(6), func(f Features) bool {
			return boldShort(f) && containsAny(f.Lower, rs.ClinicalKeywords)
		}),
		when("letter-prefix", blocks.Heading(4), func(f Features) bool { return boldShort(f) && hasLetterPrefix(f.Text) }),
		when("table-keyword", blocks.Heading(5), func(f Features) bool {
			return boldShort(f) && containsAny(f.Lower, rs.TableKeywords)
		}),
		{Name: "color", Eval: func(f Features) (blocks.Level, bool) {
			if !boldShort(f) || f.SizeDiff < 0 {
				return blocks.LevelUnset, false
			}
			return rs.colorLevel(f.Color, f.SizeDiff)
		}},
	}
}

// evaluate runs the chain; the first matching rule wins.
func evaluate(chain []Rule, f Features) (blocks.Level, string) {
	for _, r := range chain {
		if lv, ok := r.Eval(f); ok {
			return lv, r.Name
		}
	}
	return blocks.LevelBody, RuleDefault
}
