package metadata

import (
	"context"
	"errors"
	"fmt"

	"coverwall/internal/logger"
)

// ChainProvider tries multiple providers in order, returning results from
// the first one that succeeds with non-empty results.
type ChainProvider struct {
	providers []Provider
	logger    *logger.Logger
}

// NewChainProvider creates a ChainProvider that queries providers in order.
func NewChainProvider(providers []Provider, log *logger.Logger) *ChainProvider {
	return &ChainProvider{providers: providers, logger: log}
}

func (c *ChainProvider) Name() string { return "chain" }

// Search returns the first non-empty result set. An error is returned only
// when every provider failed, so callers can tell "nothing found" apart from
// "nothing reachable".
func (c *ChainProvider) Search(ctx context.Context, req SearchRequest) ([]Track, error) {
	var errs []error
	for _, p := range c.providers {
		results, err := p.Search(ctx, req)
		if err != nil {
			c.logger.Debug("provider %s failed for %q: %v", p.Name(), req.Term, err)
			errs = append(errs, fmt.Errorf("%s: %w", p.Name(), err))
			continue
		}
		if len(results) > 0 {
			return results, nil
		}
	}
	if len(errs) > 0 && len(errs) == len(c.providers) {
		return nil, errors.Join(errs...)
	}
	return nil, nil
}
