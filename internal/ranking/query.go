// Package ranking scores, orders and resolves song search candidates.
//
// Everything here is pure: a Query carries all context a rule may consult
// (catalog knowledge and the current time), so ranking the same candidates
// against the same Query always yields the same order.
package ranking

import (
	"strings"
	"time"

	"coverwall/internal/catalog"
	"coverwall/internal/metadata"
)

// Query is a validated user query plus the catalog knowledge attached to it.
type Query struct {
	Raw               string          `json:"raw"`
	Normalized        string          `json:"normalized"`
	Script            metadata.Script `json:"-"`
	RecommendedArtist string          `json:"recommended_artist,omitempty"`
	Translations      []string        `json:"translations,omitempty"`
	Now               time.Time       `json:"-"`

	lower            string
	normTranslations []string
	catalog          *catalog.Catalog
}

// NewQuery builds the ranking context for raw. A nil catalog disables all
// catalog-driven signals.
func NewQuery(raw string, cat *catalog.Catalog, now time.Time) *Query {
	raw = metadata.CleanQuery(raw)
	q := &Query{
		Raw:        raw,
		Normalized: metadata.Normalize(raw),
		Script:     metadata.DetectScript(raw),
		Now:        now,
		lower:      strings.ToLower(raw),
		catalog:    cat,
	}

	if cat != nil {
		q.RecommendedArtist = cat.RecommendedArtist(raw)
		q.Translations = cat.Translations(raw)
	}
	for _, t := range q.Translations {
		if n := metadata.Normalize(t); n != "" {
			q.normTranslations = append(q.normTranslations, n)
		}
	}
	return q
}

// IsHan reports whether the query contains CJK ideographs.
func (q *Query) IsHan() bool {
	return q.Script == metadata.ScriptHan
}

// Catalog returns the catalog the query was resolved against, possibly nil.
func (q *Query) Catalog() *catalog.Catalog {
	return q.catalog
}

func (q *Query) isMainstreamArtist(artist string) bool {
	return q.catalog != nil && q.catalog.IsMainstreamArtist(artist)
}

func (q *Query) isPopularAlbum(album string) bool {
	return q.catalog != nil && q.catalog.IsPopularAlbum(album)
}
