package ranking

import (
	"fmt"
	"testing"
	"time"

	"pgregory.net/rapid"

	"coverwall/internal/metadata"
)

var (
	titles  = []string{"Peaches", "peaches!", "Peaches (Remix)", "可爱女人", "Lovely Woman", "晴天", "Song", ""}
	artists = []string{"Justin Bieber", "周杰伦", "Taylor Swift", "Nobody", ""}
	albums  = []string{"Justice", "叶惠美", "Single", ""}
	arts    = []string{art100, "https://x/60x60bb.jpg", "https://x/cover.jpg", ""}
	queries = []string{"peaches", "Peaches", "可爱女人", "晴天", "song", "justin bieber peaches", "!!!"}
)

func trackGen() *rapid.Generator[metadata.Track] {
	return rapid.Custom(func(t *rapid.T) metadata.Track {
		tr := metadata.Track{
			Title:           rapid.SampledFrom(titles).Draw(t, "title"),
			Artist:          rapid.SampledFrom(artists).Draw(t, "artist"),
			Album:           rapid.SampledFrom(albums).Draw(t, "album"),
			ArtworkURL:      rapid.SampledFrom(arts).Draw(t, "art"),
			CollectionType:  metadata.CollectionType(rapid.IntRange(0, 3).Draw(t, "type")),
			TrackPrice:      rapid.Float64Range(-1, 2).Draw(t, "trackPrice"),
			CollectionPrice: rapid.Float64Range(-1, 15).Draw(t, "collectionPrice"),
			NotExplicit:     rapid.Bool().Draw(t, "notExplicit"),
		}
		if rapid.Bool().Draw(t, "hasID") {
			tr.ID = fmt.Sprintf("id%d", rapid.IntRange(0, 20).Draw(t, "id"))
		}
		if rapid.Bool().Draw(t, "dated") {
			tr.ReleaseDate = now.AddDate(-rapid.IntRange(-1, 80).Draw(t, "age"), 0, 0)
		}
		return tr
	})
}

func TestProperty_RankDeterministicAndNonNegative(t *testing.T) {
	cat := testCatalog(t)
	r := newRanker()

	rapid.Check(t, func(t *rapid.T) {
		tracks := rapid.SliceOfN(trackGen(), 0, 25).Draw(t, "tracks")
		q := NewQuery(rapid.SampledFrom(queries).Draw(t, "query"), cat, now)

		first := r.Rank(tracks, q)
		second := r.Rank(tracks, q)

		if len(first) != len(second) {
			t.Fatalf("length changed between runs: %d vs %d", len(first), len(second))
		}
		seen := map[string]bool{}
		for i := range first {
			if first[i].Key() != second[i].Key() || first[i].Score != second[i].Score {
				t.Fatalf("position %d differs: %v vs %v", i, first[i].Key(), second[i].Key())
			}
			if first[i].Score < 0 {
				t.Fatalf("negative score %d", first[i].Score)
			}
			if !first[i].HasArtwork() {
				t.Fatalf("candidate without artwork ranked: %+v", first[i].Track)
			}
			if seen[first[i].Key()] {
				t.Fatalf("duplicate key %q", first[i].Key())
			}
			seen[first[i].Key()] = true
			if i > 0 && first[i-1].Score < first[i].Score {
				t.Fatalf("not sorted at %d: %d < %d", i, first[i-1].Score, first[i].Score)
			}
		}
	})
}

func TestProperty_ResolveBounds(t *testing.T) {
	cat := testCatalog(t)
	r := newRanker()

	rapid.Check(t, func(t *rapid.T) {
		tracks := rapid.SliceOfN(trackGen(), 0, 25).Draw(t, "tracks")
		q := NewQuery(rapid.SampledFrom(queries).Draw(t, "query"), cat, time.Now())
		ranked := r.Rank(tracks, q)

		d := Resolver{}.Resolve(ranked)
		switch {
		case len(ranked) == 0 && d.Kind != NoMatch:
			t.Fatalf("empty ranking resolved to %v", d.Kind)
		case len(ranked) == 1 && d.Kind != AutoSelect:
			t.Fatalf("single candidate resolved to %v", d.Kind)
		case len(ranked) > 1 && (d.Kind != PresentChoices || len(d.Choices) > DefaultMaxChoices || !d.Choices[0].Recommended):
			t.Fatalf("multiple candidates resolved to %v with %d choices", d.Kind, len(d.Choices))
		}
	})
}
