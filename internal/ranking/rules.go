package ranking

import (
	"math"
	"strings"

	"coverwall/internal/metadata"
)

// Rule weights.
const (
	PointsExactTitle          = 150
	PointsCrossScriptAlias    = 120
	PointsRecommendedArtist   = 100
	PointsMainstreamArtist    = 20
	PointsOriginalPerformance = 20
	PointsArtistInQuery       = 5
	PointsPopularAlbum        = 5

	maxRecency    = 15
	maxPopularity = 10
)

const daysPerYear = 365

// Signals are the per-candidate classifications shared by several rules and
// by the ranker's tie-break.
type Signals struct {
	Exact        bool `json:"exact"`
	CrossScript  bool `json:"cross_script"`
	Near         bool `json:"near"`
	Mainstream   bool `json:"mainstream"`
	PopularAlbum bool `json:"popular_album"`
	// Original marks the canonical recording: a mainstream artist performing
	// a title that matches the query.
	Original bool `json:"original"`
}

// Classify computes the signals for one candidate.
func Classify(t metadata.Track, q *Query) Signals {
	s := Signals{
		Exact:        q.Normalized != "" && metadata.Normalize(t.Title) == q.Normalized,
		CrossScript:  q.crossScriptMatch(t.Title),
		Near:         q.titleMatches(t.Title),
		Mainstream:   q.isMainstreamArtist(t.Artist),
		PopularAlbum: q.isPopularAlbum(t.Album),
	}
	s.Original = s.Mainstream && s.Near
	return s
}

// Rule is one named, independent contribution to a candidate's score.
type Rule struct {
	Name string
	Eval func(t metadata.Track, s Signals, q *Query) int
}

// DefaultRules returns the standard scoring rules in evaluation order.
func DefaultRules() []Rule {
	return []Rule{
		{Name: "exact_title", Eval: exactTitle},
		{Name: "cross_script_alias", Eval: crossScriptAlias},
		{Name: "recommended_artist", Eval: recommendedArtist},
		{Name: "mainstream_artist", Eval: mainstreamArtist},
		{Name: "original_performance", Eval: originalPerformance},
		{Name: "artist_in_query", Eval: artistInQuery},
		{Name: "popular_album", Eval: popularAlbum},
		{Name: "artwork_resolution", Eval: artworkResolution},
		{Name: "collection_type", Eval: collectionType},
		{Name: "release_recency", Eval: releaseRecency},
		{Name: "popularity", Eval: popularity},
	}
}

func exactTitle(_ metadata.Track, s Signals, _ *Query) int {
	if s.Exact {
		return PointsExactTitle
	}
	return 0
}

func crossScriptAlias(_ metadata.Track, s Signals, _ *Query) int {
	if s.CrossScript && !s.Exact {
		return PointsCrossScriptAlias
	}
	return 0
}

func recommendedArtist(t metadata.Track, _ Signals, q *Query) int {
	want := strings.ToLower(strings.TrimSpace(q.RecommendedArtist))
	got := strings.ToLower(strings.TrimSpace(t.Artist))
	if want == "" || got == "" {
		return 0
	}
	if strings.Contains(got, want) || strings.Contains(want, got) {
		return PointsRecommendedArtist
	}
	return 0
}

func mainstreamArtist(_ metadata.Track, s Signals, _ *Query) int {
	if s.Mainstream {
		return PointsMainstreamArtist
	}
	return 0
}

func originalPerformance(_ metadata.Track, s Signals, _ *Query) int {
	if s.Original {
		return PointsOriginalPerformance
	}
	return 0
}

func artistInQuery(t metadata.Track, _ Signals, q *Query) int {
	artist := strings.ToLower(strings.TrimSpace(t.Artist))
	if artist != "" && strings.Contains(q.lower, artist) {
		return PointsArtistInQuery
	}
	return 0
}

func popularAlbum(_ metadata.Track, s Signals, _ *Query) int {
	if s.PopularAlbum {
		return PointsPopularAlbum
	}
	return 0
}

// artworkResolution rewards artwork whose URL carries an Apple size segment
// that can be rewritten to a large render.
func artworkResolution(t metadata.Track, _ Signals, _ *Query) int {
	switch {
	case !t.HasArtwork():
		return 0
	case strings.Contains(t.ArtworkURL, "100x100"):
		return 30
	case strings.Contains(t.ArtworkURL, "60x60"):
		return 15
	default:
		return 5
	}
}

func collectionType(t metadata.Track, s Signals, _ *Query) int {
	points := 3
	switch t.CollectionType {
	case metadata.CollectionAlbum:
		points = 20
	case metadata.CollectionSingle:
		points = 10
	case metadata.CollectionCompilation:
		points = 5
	}
	if s.Original && points < 20 {
		points = 20
	}
	return points
}

// releaseRecency favors the earliest pressing of old songs and the latest
// release of recent ones. Originals always get the maximum.
func releaseRecency(t metadata.Track, s Signals, q *Query) int {
	if !t.HasReleaseDate() {
		return 0
	}
	if s.Original {
		return maxRecency
	}

	years := q.Now.Sub(t.ReleaseDate).Hours() / 24 / daysPerYear
	var points float64
	if years > 10 {
		points = maxRecency - math.Min(years/20, 5)
	} else {
		points = maxRecency - math.Min(years/2, 10)
	}

	return clamp(int(math.Round(points)), 0, maxRecency)
}

func popularity(t metadata.Track, _ Signals, _ *Query) int {
	points := 0
	if t.CollectionPrice > 0 {
		points += 5
	}
	if t.TrackPrice > 0 {
		points += 3
	}
	if t.NotExplicit {
		points += 2
	}
	return min(points, maxPopularity)
}

func clamp(v, lo, hi int) int {
	return max(lo, min(v, hi))
}
