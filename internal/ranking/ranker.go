package ranking

import (
	"sort"

	"coverwall/internal/metadata"
)

// Ranker filters, deduplicates, scores and orders candidates.
type Ranker struct {
	scorer *Scorer
}

// NewRanker creates a Ranker backed by scorer.
func NewRanker(scorer *Scorer) *Ranker {
	return &Ranker{scorer: scorer}
}

// Rank returns every artwork-bearing, distinct candidate ordered best first.
// It never truncates; an empty input yields an empty result.
func (r *Ranker) Rank(tracks []metadata.Track, q *Query) []ScoredTrack {
	seen := make(map[string]struct{}, len(tracks))
	ranked := make([]ScoredTrack, 0, len(tracks))

	for _, t := range tracks {
		if !t.HasArtwork() {
			continue
		}
		key := t.Key()
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		ranked = append(ranked, r.scorer.Score(t, q))
	}

	sort.SliceStable(ranked, func(i, j int) bool {
		return rankedBefore(ranked[i], ranked[j])
	})
	return ranked
}

// rankedBefore orders by score, then mainstream artist, then popular album,
// then newer release. Unknown release dates sort as oldest.
func rankedBefore(a, b ScoredTrack) bool {
	if a.Score != b.Score {
		return a.Score > b.Score
	}
	if a.Signals.Mainstream != b.Signals.Mainstream {
		return a.Signals.Mainstream
	}
	if a.Signals.PopularAlbum != b.Signals.PopularAlbum {
		return a.Signals.PopularAlbum
	}
	return a.ReleaseDate.After(b.ReleaseDate)
}
