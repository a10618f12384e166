package classify

import (
	"regexp"
	"strings"
)

// Leading-numbering patterns, matched case-insensitively against the trimmed
// block text.
var (
	romanPrefixRe  = regexp.MustCompile(`(?i)^(X{0,3}(?:IX|IV|V?I{0,3}))\s*[.:\-–]\s*`)
	numberPrefixRe = regexp.MustCompile(`^\d+[.)\-]\s+`)
	letterPrefixRe = regexp.MustCompile(`(?i)^[a-z][.)\-]\s+`)
)

// hasRomanPrefix matches "I. ", "iv - ", "XII: " and similar. An empty
// numeral never matches, so a bare "- item" is not a Roman heading.
func hasRomanPrefix(text string) bool {
	m := romanPrefixRe.FindStringSubmatch(text)
	return m != nil && m[1] != ""
}

func hasNumberPrefix(text string) bool { return numberPrefixRe.MatchString(text) }

func hasLetterPrefix(text string) bool { return letterPrefixRe.MatchString(text) }

// containsAny reports whether lower contains one of the keywords. Keywords
// are expected lower-cased.
func containsAny(lower string, keywords []string) bool {
	for _, kw := range keywords {
		if kw != "" && strings.Contains(lower, kw) {
			return true
		}
	}
	return false
}
