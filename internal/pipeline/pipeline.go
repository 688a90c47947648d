// Package pipeline assembles the search core from configuration.
package pipeline

import (
	"fmt"

	"github.com/jonboulle/clockwork"

	"coverwall/internal/catalog"
	"coverwall/internal/config"
	"coverwall/internal/cover"
	"coverwall/internal/logger"
	"coverwall/internal/metadata"
	"coverwall/internal/provider"
	"coverwall/internal/provider/itunes"
	"coverwall/internal/ranking"
	"coverwall/internal/search"
)

// Overrides replaces parts of the assembled pipeline. Zero values are built
// from the config.
type Overrides struct {
	Provider metadata.Provider
	Clock    clockwork.Clock
}

// Pipeline is the assembled search core shared by the CLI and the server.
type Pipeline struct {
	Config   config.Config
	Searcher *search.Searcher
	Cache    *search.Cache
	Fetcher  *cover.Fetcher
	Log      *logger.Logger
}

// Build wires providers → catalog → cache → expander → ranker → resolver
// into a Searcher.
func Build(cfg config.Config, log *logger.Logger, ov Overrides) (*Pipeline, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	clock := ov.Clock
	if clock == nil {
		clock = clockwork.NewRealClock()
	}

	p := ov.Provider
	if p == nil {
		limiter := itunes.NewLimiter(cfg.RequestsPerMinute, cfg.MaxRequests)
		providers, err := provider.NewAll(cfg.Providers, limiter)
		if err != nil {
			return nil, err
		}
		p = metadata.NewChainProvider(providers, log)
	}

	cat, err := catalog.Load(cfg.CatalogPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load catalog: %w", err)
	}
	log.Debug("Loaded catalog %d with %d songs", cat.Version(), cat.Len())

	cache := search.NewCache(cfg.CacheTTL, clock)
	scorer := ranking.NewScorer(nil, log)

	s := search.New(search.Config{
		Provider: p,
		Catalog:  cat,
		Expander: search.NewExpander(regions(cfg.Regions), cfg.MaxRequests),
		Ranker:   ranking.NewRanker(scorer),
		Resolver: ranking.Resolver{
			MaxChoices:       cfg.MaxChoices,
			AutoSelectMargin: cfg.AutoSelectMargin,
		},
		Cache:          cache,
		Clock:          clock,
		Logger:         log,
		MaxQueryLength: cfg.MaxQueryLength,
		ResultLimit:    cfg.ResultLimit,
		RequestTimeout: cfg.RequestTimeout,
	})

	return &Pipeline{
		Config:   cfg,
		Searcher: s,
		Cache:    cache,
		Fetcher:  cover.NewFetcher(cfg.RequestTimeout),
		Log:      log,
	}, nil
}

// NewSession starts a session against the pipeline's searcher.
func (p *Pipeline) NewSession() *search.Session {
	return search.NewSession(p.Searcher, p.Config.ArtworkSize)
}

func regions(r config.Regions) search.Regions {
	return search.Regions{
		Latin: search.RegionPlan{Primary: r.Latin.Primary, Secondary: r.Latin.Secondary},
		Han:   search.RegionPlan{Primary: r.Han.Primary, Secondary: r.Han.Secondary},
	}
}
