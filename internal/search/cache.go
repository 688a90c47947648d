package search

import (
	"sync"
	"time"

	"github.com/cespare/xxhash/v2"
	"github.com/jonboulle/clockwork"

	"coverwall/internal/metadata"
)

// DefaultCacheTTL is how long fetched candidates are reused.
const DefaultCacheTTL = 5 * time.Minute

const cacheShards = 16

// Cache holds fetched candidate lists keyed by normalized query. Entries are
// immutable once stored and expire after a fixed TTL. A nil *Cache or one with
// a non-positive TTL stores nothing.
type Cache struct {
	ttl    time.Duration
	clock  clockwork.Clock
	shards [cacheShards]cacheShard
}

type cacheShard struct {
	mu      sync.RWMutex
	entries map[string]cacheEntry
}

type cacheEntry struct {
	tracks  []metadata.Track
	expires time.Time
}

// NewCache creates a Cache. A nil clock uses the real clock.
func NewCache(ttl time.Duration, clock clockwork.Clock) *Cache {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	c := &Cache{ttl: ttl, clock: clock}
	for i := range c.shards {
		c.shards[i].entries = make(map[string]cacheEntry)
	}
	return c
}

func (c *Cache) enabled() bool {
	return c != nil && c.ttl > 0
}

func (c *Cache) shard(key string) *cacheShard {
	return &c.shards[xxhash.Sum64String(key)%cacheShards]
}

// Get returns the live entry for key.
func (c *Cache) Get(key string) ([]metadata.Track, bool) {
	if !c.enabled() || key == "" {
		return nil, false
	}

	s := c.shard(key)
	s.mu.RLock()
	e, ok := s.entries[key]
	s.mu.RUnlock()

	if !ok || !c.clock.Now().Before(e.expires) {
		return nil, false
	}
	return e.tracks, true
}

// Set stores a copy of tracks under key; the last writer wins.
func (c *Cache) Set(key string, tracks []metadata.Track) {
	if !c.enabled() || key == "" {
		return
	}

	stored := make([]metadata.Track, len(tracks))
	copy(stored, tracks)

	s := c.shard(key)
	s.mu.Lock()
	s.entries[key] = cacheEntry{tracks: stored, expires: c.clock.Now().Add(c.ttl)}
	s.mu.Unlock()
}

// Purge drops expired entries and returns how many were removed.
func (c *Cache) Purge() int {
	if !c.enabled() {
		return 0
	}

	now := c.clock.Now()
	removed := 0
	for i := range c.shards {
		s := &c.shards[i]
		s.mu.Lock()
		for k, e := range s.entries {
			if !now.Before(e.expires) {
				delete(s.entries, k)
				removed++
			}
		}
		s.mu.Unlock()
	}
	return removed
}

// Len returns the number of stored entries, expired or not.
func (c *Cache) Len() int {
	if !c.enabled() {
		return 0
	}

	n := 0
	for i := range c.shards {
		s := &c.shards[i]
		s.mu.RLock()
		n += len(s.entries)
		s.mu.RUnlock()
	}
	return n
}
