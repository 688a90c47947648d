package search

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"coverwall/internal/catalog"
	"coverwall/internal/logger"
	"coverwall/internal/metadata"
	"coverwall/internal/ranking"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

const art100 = "https://is1-ssl.mzstatic.com/image/thumb/a/100x100bb.jpg"

func testCatalog(t testing.TB) *catalog.Catalog {
	t.Helper()
	c, err := catalog.New(catalog.File{
		Version:           1,
		MainstreamArtists: []string{"justin bieber", "周杰伦"},
		PopularAlbums:     []string{"justice"},
		Songs: map[string]catalog.Song{
			"peaches": {Artist: "justin bieber"},
			"可爱女人":    {Artist: "周杰伦", Translations: []string{"lovely woman", "cute woman"}},
			"晴天":      {Translations: []string{"sunny day"}},
		},
	})
	require.NoError(t, err)
	return c
}

func quietLogger() *logger.Logger {
	return logger.NewWithWriter(io.Discard, false)
}

// fakeProvider answers by search term and records every request.
type fakeProvider struct {
	mu      sync.Mutex
	calls   []metadata.SearchRequest
	results map[string][]metadata.Track
	fail    map[string]bool
	delay   map[string]time.Duration
}

func (p *fakeProvider) Name() string { return "fake" }

func (p *fakeProvider) Search(ctx context.Context, req metadata.SearchRequest) ([]metadata.Track, error) {
	p.mu.Lock()
	p.calls = append(p.calls, req)
	d := p.delay[req.Term]
	p.mu.Unlock()

	if d > 0 {
		select {
		case <-time.After(d):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	if p.fail[req.Term] {
		return nil, fmt.Errorf("search %q: connection reset", req.Term)
	}
	return p.results[req.Term], nil
}

func (p *fakeProvider) callCount() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.calls)
}

func newSearcher(t testing.TB, p metadata.Provider, clock clockwork.Clock) *Searcher {
	t.Helper()
	return New(Config{
		Provider: p,
		Catalog:  testCatalog(t),
		Cache:    NewCache(DefaultCacheTTL, clock),
		Clock:    clock,
		Logger:   quietLogger(),
	})
}

func peachesResults() map[string][]metadata.Track {
	return map[string][]metadata.Track{
		"Peaches": {
			{ID: "2", Title: "Peaches", Artist: "The Obscure Ones", Album: "Peaches - Single", ArtworkURL: art100, CollectionType: metadata.CollectionSingle},
			{ID: "3", Title: "Peaches", Artist: "No Art"},
		},
		"justin bieber Peaches": {
			{ID: "1", Title: "Peaches", Artist: "Justin Bieber", Album: "Justice", ArtworkURL: art100, CollectionType: metadata.CollectionAlbum},
			{ID: "2", Title: "Peaches", Artist: "The Obscure Ones", Album: "Peaches - Single", ArtworkURL: art100, CollectionType: metadata.CollectionSingle},
		},
	}
}

func TestValidateQuery(t *testing.T) {
	q, err := ValidateQuery("  hello   world ", 0)
	require.NoError(t, err)
	assert.Equal(t, "hello world", q)

	_, err = ValidateQuery("   ", 0)
	assert.ErrorIs(t, err, ErrEmptyQuery)
	assert.True(t, IsInputError(err))

	_, err = ValidateQuery(strings.Repeat("a", 101), 0)
	assert.ErrorIs(t, err, ErrQueryTooLong)
	assert.True(t, IsInputError(err))

	_, err = ValidateQuery(strings.Repeat("字", 100), 0)
	assert.NoError(t, err, "length is counted in characters, not bytes")

	_, err = ValidateQuery("abcdef", 5)
	assert.ErrorIs(t, err, ErrQueryTooLong)

	assert.False(t, IsInputError(ErrNoMatch))
}

func TestSearch_RejectsBeforeNetwork(t *testing.T) {
	p := &fakeProvider{}
	s := newSearcher(t, p, clockwork.NewFakeClock())

	_, err := s.Search(context.Background(), strings.Repeat("x", 101))
	assert.ErrorIs(t, err, ErrQueryTooLong)

	_, err = s.Search(context.Background(), " \t ")
	assert.ErrorIs(t, err, ErrEmptyQuery)

	assert.Zero(t, p.callCount())
}

func TestSearch_Peaches(t *testing.T) {
	p := &fakeProvider{results: peachesResults()}
	s := newSearcher(t, p, clockwork.NewFakeClock())

	res, err := s.Search(context.Background(), "Peaches")
	require.NoError(t, err)

	assert.Equal(t, 3, res.Requests)
	assert.Equal(t, 0, res.Failed)
	assert.False(t, res.Cached)

	require.Equal(t, ranking.PresentChoices, res.Decision.Kind)
	require.Len(t, res.Decision.Choices, 2)
	assert.Equal(t, "1", res.Decision.Choices[0].ID)
	assert.True(t, res.Decision.Choices[0].Recommended)
	assert.Equal(t, "2", res.Decision.Choices[1].ID)
}

func TestSearch_RequestsCarryPlan(t *testing.T) {
	p := &fakeProvider{}
	s := New(Config{
		Provider:    p,
		Catalog:     testCatalog(t),
		Logger:      quietLogger(),
		ResultLimit: 7,
	})

	_, err := s.Search(context.Background(), "可爱女人")
	require.NoError(t, err)

	p.mu.Lock()
	defer p.mu.Unlock()
	require.Len(t, p.calls, 4)
	for _, c := range p.calls {
		assert.Equal(t, 7, c.Limit)
		assert.Contains(t, []string{"hk", "tw"}, c.Country)
	}
}

func TestSearch_ArrivalOrderDoesNotMatter(t *testing.T) {
	var runs [][]string
	for _, slow := range []string{"Peaches", "justin bieber Peaches"} {
		p := &fakeProvider{
			results: peachesResults(),
			delay:   map[string]time.Duration{slow: 30 * time.Millisecond},
		}
		s := New(Config{Provider: p, Catalog: testCatalog(t), Logger: quietLogger()})

		res, err := s.Search(context.Background(), "Peaches")
		require.NoError(t, err)

		var ids []string
		for _, st := range res.Ranked {
			ids = append(ids, st.ID)
		}
		runs = append(runs, ids)
	}
	assert.Equal(t, runs[0], runs[1])
}

func TestSearch_FailedRequestsDegrade(t *testing.T) {
	p := &fakeProvider{
		results: peachesResults(),
		fail:    map[string]bool{"justin bieber Peaches": true},
	}
	s := newSearcher(t, p, clockwork.NewFakeClock())

	res, err := s.Search(context.Background(), "Peaches")
	require.NoError(t, err)
	assert.Equal(t, 1, res.Failed)
	require.Equal(t, ranking.AutoSelect, res.Decision.Kind)
	assert.Equal(t, "2", res.Decision.Selected.ID)
}

func TestSearch_AllFailedIsNoMatchAndNotCached(t *testing.T) {
	p := &fakeProvider{fail: map[string]bool{"peachs": true}}
	s := newSearcher(t, p, clockwork.NewFakeClock())

	res, err := s.Search(context.Background(), "peachs")
	require.NoError(t, err)
	assert.Equal(t, ranking.NoMatch, res.Decision.Kind)
	assert.Equal(t, res.Requests, res.Failed)
	assert.Equal(t, []string{"peaches"}, res.Suggestions)
	assert.Zero(t, s.cache.Len())
}

func TestSearch_CacheReadThrough(t *testing.T) {
	clock := clockwork.NewFakeClock()
	p := &fakeProvider{results: peachesResults()}
	s := newSearcher(t, p, clock)

	first, err := s.Search(context.Background(), "Peaches")
	require.NoError(t, err)
	calls := p.callCount()

	second, err := s.Search(context.Background(), "peaches!")
	require.NoError(t, err)
	assert.True(t, second.Cached)
	assert.Equal(t, calls, p.callCount(), "cached search must not hit the provider")
	assert.Equal(t, len(first.Ranked), len(second.Ranked))

	clock.Advance(DefaultCacheTTL)
	third, err := s.Search(context.Background(), "Peaches")
	require.NoError(t, err)
	assert.False(t, third.Cached)
	assert.Equal(t, 2*calls, p.callCount())
}

func TestSearch_Cancelled(t *testing.T) {
	p := &fakeProvider{
		results: peachesResults(),
		delay:   map[string]time.Duration{"Peaches": time.Minute},
	}
	s := newSearcher(t, p, clockwork.NewFakeClock())

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(10 * time.Millisecond)
		cancel()
	}()

	_, err := s.Search(ctx, "Peaches")
	assert.True(t, errors.Is(err, context.Canceled))
	assert.Zero(t, s.cache.Len())
}

func TestSearch_Defaults(t *testing.T) {
	s := New(Config{Provider: &fakeProvider{}, Logger: quietLogger()})
	assert.NotNil(t, s.Catalog())
	assert.Equal(t, DefaultMaxQueryLength, s.maxQueryLength)
	assert.Equal(t, DefaultResultLimit, s.resultLimit)
	assert.Equal(t, DefaultRequestTimeout, s.requestTimeout)

	// No cache configured: searches still work.
	res, err := s.Search(context.Background(), "anything")
	require.NoError(t, err)
	assert.Equal(t, ranking.NoMatch, res.Decision.Kind)
}
