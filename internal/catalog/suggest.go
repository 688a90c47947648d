package catalog

import (
	"sort"

	"github.com/hbollon/go-edlib"

	"coverwall/internal/metadata"
)

// minSuggestSimilarity is the Jaro-Winkler floor for "did you mean" hints.
const minSuggestSimilarity = 0.8

// Suggest returns up to n known song titles that look like the query, best
// first. It only feeds user-facing hints and never affects ranking.
func (c *Catalog) Suggest(query string, n int) []string {
	q := metadata.Normalize(query)
	if q == "" || n <= 0 {
		return nil
	}

	type scored struct {
		title      string
		similarity float32
	}
	var matches []scored
	for _, t := range c.titles {
		sim := edlib.JaroWinklerSimilarity(q, t.normalized)
		if sim >= minSuggestSimilarity {
			matches = append(matches, scored{title: t.display, similarity: sim})
		}
	}

	sort.SliceStable(matches, func(i, j int) bool {
		if matches[i].similarity != matches[j].similarity {
			return matches[i].similarity > matches[j].similarity
		}
		return matches[i].title < matches[j].title
	})

	if len(matches) > n {
		matches = matches[:n]
	}
	out := make([]string, len(matches))
	for i, m := range matches {
		out[i] = m.title
	}
	return out
}
