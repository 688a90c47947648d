package ranking

import (
	"strings"
	"unicode/utf8"

	"coverwall/internal/metadata"
)

// Keywords that explain why a title is longer than the Han query it contains.
var versionKeywords = []string{"remix", "live", "version", "edit", "mix", "版", "remaster"}

// titleMatches is the exact/near classifier: it decides whether a candidate
// title names the queried song, allowing translated titles and version
// suffixes.
func (q *Query) titleMatches(title string) bool {
	query := q.Normalized
	norm := metadata.Normalize(title)
	if query == "" || norm == "" {
		return false
	}
	if norm == query {
		return true
	}

	if !q.IsHan() {
		return strings.Contains(norm, query) || strings.Contains(query, norm)
	}

	if !metadata.ContainsHan(title) {
		for _, t := range q.normTranslations {
			if t == norm || strings.Contains(norm, t) || strings.Contains(t, norm) {
				return true
			}
		}
	}

	if !strings.Contains(norm, query) {
		return false
	}

	queryLen := utf8.RuneCountInString(query)
	if queryLen >= 3 {
		extra := utf8.RuneCountInString(norm) - queryLen
		if float64(extra) > float64(queryLen)*0.5 {
			return hasVersionKeyword(norm) || hasVersionKeyword(strings.ToLower(title))
		}
	}
	return true
}

// crossScriptMatch reports whether a Latin title equals or contains a known
// translation of a Han query.
func (q *Query) crossScriptMatch(title string) bool {
	if !q.IsHan() || metadata.ContainsHan(title) {
		return false
	}
	norm := metadata.Normalize(title)
	if norm == "" {
		return false
	}
	for _, t := range q.normTranslations {
		if norm == t || strings.Contains(norm, t) {
			return true
		}
	}
	return false
}

func hasVersionKeyword(s string) bool {
	for _, k := range versionKeywords {
		if strings.Contains(s, k) {
			return true
		}
	}
	return false
}
