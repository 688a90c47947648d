// Package provider contains song search provider implementations.
//
// The Provider interface is defined in internal/metadata (metadata.Provider),
// following the Go convention of defining interfaces where they are consumed.
// Each sub-package here implements that interface for a specific service.
package provider

import (
	"fmt"
	"strings"

	"golang.org/x/time/rate"

	"coverwall/internal/metadata"
	"coverwall/internal/provider/deezer"
	"coverwall/internal/provider/itunes"
	"coverwall/internal/provider/musicbrainz"
)

// Known provider names, in default priority order.
var Names = []string{"itunes", "deezer", "musicbrainz"}

// New returns the provider registered under name. The limiter paces
// providers that honor one.
func New(name string, limiter *rate.Limiter) (metadata.Provider, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "itunes":
		return itunes.New(limiter), nil
	case "deezer":
		return deezer.New(), nil
	case "musicbrainz":
		return musicbrainz.New(), nil
	default:
		return nil, fmt.Errorf("unknown provider %q (available: %s)", name, strings.Join(Names, ", "))
	}
}

// NewAll builds the providers for names in order.
func NewAll(names []string, limiter *rate.Limiter) ([]metadata.Provider, error) {
	if len(names) == 0 {
		return nil, fmt.Errorf("no providers configured")
	}

	providers := make([]metadata.Provider, 0, len(names))
	for _, name := range names {
		p, err := New(name, limiter)
		if err != nil {
			return nil, err
		}
		providers = append(providers, p)
	}
	return providers, nil
}
