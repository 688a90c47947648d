package metadata

import (
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
	"golang.org/x/text/width"
)

// Script is the writing system detected in a piece of text.
type Script int

const (
	ScriptLatin Script = iota
	ScriptHan
)

func (s Script) String() string {
	if s == ScriptHan {
		return "han"
	}
	return "latin"
}

// CJK unified ideographs as matched by the ranking rules.
const (
	hanFirst = '一'
	hanLast  = '龥'
)

var innerWhitespace = regexp.MustCompile(`\s+`)

// Normalize reduces text to a comparison key: full-width forms folded,
// lower-cased, diacritics removed, and everything except letters, digits
// and underscores dropped. It is idempotent.
func Normalize(s string) string {
	s = width.Fold.String(s)
	s = strings.ToLower(s)
	s = removeDiacritics(s)

	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		if isWordRune(r) {
			b.WriteRune(r)
		}
	}
	// Dropping separators can leave composable runes adjacent.
	return norm.NFC.String(b.String())
}

// removeDiacritics strips combining marks so "café" compares equal to "cafe".
func removeDiacritics(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	if out, _, err := transform.String(t, s); err == nil {
		return out
	}
	return s
}

func isWordRune(r rune) bool {
	return r == '_' || unicode.IsLetter(r) || unicode.IsDigit(r)
}

// IsHan reports whether r is a CJK ideograph.
func IsHan(r rune) bool {
	return r >= hanFirst && r <= hanLast
}

// ContainsHan reports whether s contains at least one CJK ideograph.
func ContainsHan(s string) bool {
	for _, r := range s {
		if IsHan(r) {
			return true
		}
	}
	return false
}

// DetectScript classifies text as Han when it contains any CJK ideograph.
func DetectScript(s string) Script {
	if ContainsHan(s) {
		return ScriptHan
	}
	return ScriptLatin
}

// CleanQuery trims a raw user query and collapses inner whitespace runs.
func CleanQuery(raw string) string {
	return innerWhitespace.ReplaceAllString(strings.TrimSpace(raw), " ")
}
