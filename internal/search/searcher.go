// Package search runs a song query end to end: validation, expansion,
// concurrent fetching, ranking and resolution, plus the per-client session
// state that guards against stale results.
package search

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/jonboulle/clockwork"
	"golang.org/x/sync/errgroup"

	"coverwall/internal/catalog"
	"coverwall/internal/logger"
	"coverwall/internal/metadata"
	"coverwall/internal/ranking"
)

const (
	// DefaultResultLimit is the number of results requested per search.
	DefaultResultLimit = 25
	// DefaultRequestTimeout bounds each provider request.
	DefaultRequestTimeout = 10 * time.Second

	maxSuggestions = 3
)

// Config holds the collaborators of a Searcher. Zero values get defaults.
type Config struct {
	Provider metadata.Provider
	Catalog  *catalog.Catalog
	Expander *Expander
	Ranker   *ranking.Ranker
	Resolver ranking.Resolver
	Cache    *Cache
	Clock    clockwork.Clock
	Logger   *logger.Logger

	MaxQueryLength int
	ResultLimit    int
	RequestTimeout time.Duration
}

// Result is the outcome of one search.
type Result struct {
	Query       *ranking.Query        `json:"query"`
	Ranked      []ranking.ScoredTrack `json:"-"`
	Decision    ranking.Decision      `json:"decision"`
	Suggestions []string              `json:"suggestions,omitempty"`
	Requests    int                   `json:"requests"`
	Failed      int                   `json:"failed"`
	Cached      bool                  `json:"cached"`
}

// Searcher is safe for concurrent use.
type Searcher struct {
	provider metadata.Provider
	catalog  *catalog.Catalog
	expander *Expander
	ranker   *ranking.Ranker
	resolver ranking.Resolver
	cache    *Cache
	clock    clockwork.Clock
	log      *logger.Logger

	maxQueryLength int
	resultLimit    int
	requestTimeout time.Duration
}

// New creates a Searcher from cfg.
func New(cfg Config) *Searcher {
	s := &Searcher{
		provider:       cfg.Provider,
		catalog:        cfg.Catalog,
		expander:       cfg.Expander,
		ranker:         cfg.Ranker,
		resolver:       cfg.Resolver,
		cache:          cfg.Cache,
		clock:          cfg.Clock,
		log:            cfg.Logger,
		maxQueryLength: cfg.MaxQueryLength,
		resultLimit:    cfg.ResultLimit,
		requestTimeout: cfg.RequestTimeout,
	}

	if s.log == nil {
		s.log = logger.New(false)
	}
	if s.catalog == nil {
		s.catalog = catalog.Default()
	}
	if s.expander == nil {
		s.expander = NewExpander(DefaultRegions(), MaxRequests)
	}
	if s.ranker == nil {
		s.ranker = ranking.NewRanker(ranking.NewScorer(nil, s.log))
	}
	if s.clock == nil {
		s.clock = clockwork.NewRealClock()
	}
	if s.maxQueryLength <= 0 {
		s.maxQueryLength = DefaultMaxQueryLength
	}
	if s.resultLimit <= 0 {
		s.resultLimit = DefaultResultLimit
	}
	if s.requestTimeout <= 0 {
		s.requestTimeout = DefaultRequestTimeout
	}
	return s
}

// Catalog returns the catalog queries are resolved against.
func (s *Searcher) Catalog() *catalog.Catalog {
	return s.catalog
}

// Search validates raw, fetches candidates for every expansion of it, and
// resolves the ranked candidates into a decision. Only input errors and
// context cancellation are returned as errors; a search that finds nothing
// returns a NoMatch decision.
func (s *Searcher) Search(ctx context.Context, raw string) (*Result, error) {
	text, err := ValidateQuery(raw, s.maxQueryLength)
	if err != nil {
		return nil, err
	}

	q := ranking.NewQuery(text, s.catalog, s.clock.Now())
	res := &Result{Query: q}

	tracks, cached := s.cache.Get(q.Normalized)
	if cached {
		res.Cached = true
		s.log.Debug("Cache hit for %q (%d candidates)", text, len(tracks))
	} else {
		reqs := s.expander.Expand(q)
		res.Requests = len(reqs)

		tracks, res.Failed = s.fetch(ctx, reqs)
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if res.Failed < res.Requests {
			s.cache.Set(q.Normalized, tracks)
		}
		s.log.Debug("Fetched %d candidates for %q from %d requests (%d failed)",
			len(tracks), text, res.Requests, res.Failed)
	}

	res.Ranked = s.ranker.Rank(tracks, q)
	res.Decision = s.resolver.Resolve(res.Ranked)
	if res.Decision.Kind == ranking.NoMatch {
		res.Suggestions = s.catalog.Suggest(text, maxSuggestions)
	}
	return res, nil
}

// fetch runs every request concurrently and joins the results in request
// order, so the order in which responses arrive never affects ranking.
// Failed requests contribute nothing.
func (s *Searcher) fetch(ctx context.Context, reqs []ExpansionRequest) ([]metadata.Track, int) {
	slots := make([][]metadata.Track, len(reqs))
	var failed atomic.Int32

	g, gctx := errgroup.WithContext(ctx)
	for i, req := range reqs {
		g.Go(func() error {
			rctx, cancel := context.WithTimeout(gctx, s.requestTimeout)
			defer cancel()

			tracks, err := s.provider.Search(rctx, metadata.SearchRequest{
				Term:      req.Term,
				Country:   req.Country,
				Attribute: req.Attribute,
				Limit:     s.resultLimit,
			})
			if err != nil {
				failed.Add(1)
				s.log.Debug("Search %q (%s, %s) failed: %v", req.Term, req.Country, req.Attribute, err)
				return nil
			}
			slots[i] = tracks
			return nil
		})
	}
	_ = g.Wait()

	var merged []metadata.Track
	for _, slot := range slots {
		merged = append(merged, slot...)
	}
	return merged, int(failed.Load())
}
