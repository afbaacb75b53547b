// Package cache implements the coordinate cache that sits between the fetch
// orchestrator and the provider network calls. Entries are keyed by
// provider, metric, and rounded coordinate; TTL comes from the provider's
// precision tier. Eviction is lazy on read, with an optional Sweep for
// memory bounds.
package cache

import (
	"sync"
	"time"

	"tidecast/internal/geo"
	"tidecast/internal/types"
)

// Entry is a cached provider payload together with the rounding metadata it
// was stored under. FetchedAt plus TTL determines expiry.
type Entry struct {
	Provider   types.ProviderID
	RoundedLat float64
	RoundedLon float64
	Precision  geo.PrecisionTier
	FetchedAt  time.Time
	TTL        time.Duration
	Payload    types.ProviderPayload
}

// expired reports whether the entry is stale at the given instant.
func (e Entry) expired(now time.Time) bool {
	return now.After(e.FetchedAt.Add(e.TTL))
}

// CoordinateCache is a concurrency-safe in-memory cache with an injected
// clock, so TTL behavior is deterministic under test. Concurrent reads are
// cheap (RWMutex); writes are serialized.
type CoordinateCache struct {
	mu      sync.RWMutex
	entries map[string]Entry
	clock   types.Clock
}

// New creates an empty CoordinateCache. A nil clock defaults to real time.
func New(clock types.Clock) *CoordinateCache {
	if clock == nil {
		clock = types.RealClock{}
	}
	return &CoordinateCache{
		entries: make(map[string]Entry),
		clock:   clock,
	}
}

// Get returns the live entry for the key. An expired entry is treated as
// absent and removed (lazy eviction).
func (c *CoordinateCache) Get(key string) (Entry, bool) {
	c.mu.RLock()
	entry, ok := c.entries[key]
	c.mu.RUnlock()

	if !ok {
		return Entry{}, false
	}
	if entry.expired(c.clock.Now()) {
		c.mu.Lock()
		// Re-check under the write lock; a fresher entry may have
		// been written since the read lock was released.
		if cur, still := c.entries[key]; still && cur.expired(c.clock.Now()) {
			delete(c.entries, key)
		}
		c.mu.Unlock()
		return Entry{}, false
	}
	return entry, true
}

// Put stores the entry under the key, stamping FetchedAt from the cache
// clock when the caller left it zero.
func (c *CoordinateCache) Put(key string, entry Entry) {
	if entry.FetchedAt.IsZero() {
		entry.FetchedAt = c.clock.Now()
	}
	c.mu.Lock()
	c.entries[key] = entry
	c.mu.Unlock()
}

// Sweep removes all expired entries and returns how many were evicted.
// Run periodically to bound memory; correctness never depends on it.
func (c *CoordinateCache) Sweep() int {
	now := c.clock.Now()

	c.mu.Lock()
	defer c.mu.Unlock()

	evicted := 0
	for key, entry := range c.entries {
		if entry.expired(now) {
			delete(c.entries, key)
			evicted++
		}
	}
	return evicted
}

// Len returns the number of entries currently held, live or not.
func (c *CoordinateCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}
