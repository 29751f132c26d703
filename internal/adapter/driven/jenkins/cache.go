package jenkins

import (
	"sync"
	"time"

	"golang.org/x/sync/singleflight"
)

// cacheEntry holds one fetched result and the time it was fetched. An entry
// is live while now - fetchedAt < the cache's expiry window.
type cacheEntry struct {
	data      any
	fetchedAt time.Time
}

// responseCache is the unbounded, instance-scoped response cache. Expired
// entries are replaced on read; there is no other eviction. A singleflight
// group collapses concurrent fetches for the same key so at most one fetch
// per key is in flight per expiry window.
type responseCache struct {
	mu      sync.Mutex
	entries map[string]cacheEntry
	expiry  time.Duration
	now     func() time.Time
	group   singleflight.Group
}

func newResponseCache(expiry time.Duration, now func() time.Time) *responseCache {
	return &responseCache{
		entries: make(map[string]cacheEntry),
		expiry:  expiry,
		now:     now,
	}
}

// getOrFetch returns the live cached value for key, or runs fetch and
// stores its result. With useCache false it always runs fetch and leaves
// the cache untouched. Fetch errors are never cached.
func (c *responseCache) getOrFetch(key string, useCache bool, fetch func() (any, error)) (any, error) {
	if !useCache {
		return fetch()
	}

	if data, ok := c.lookup(key); ok {
		return data, nil
	}

	data, err, _ := c.group.Do(key, func() (any, error) {
		// A concurrent caller may have populated the entry while this
		// caller was waiting on the flight.
		if data, ok := c.lookup(key); ok {
			return data, nil
		}

		data, err := fetch()
		if err != nil {
			return nil, err
		}
		c.store(key, data)
		return data, nil
	})
	return data, err
}

func (c *responseCache) lookup(key string) (any, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	entry, ok := c.entries[key]
	if !ok || c.now().Sub(entry.fetchedAt) >= c.expiry {
		return nil, false
	}
	return entry.data, true
}

func (c *responseCache) store(key string, data any) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[key] = cacheEntry{data: data, fetchedAt: c.now()}
}

// cached is the typed wrapper around responseCache.getOrFetch.
func cached[T any](c *responseCache, key string, useCache bool, fetch func() (T, error)) (T, error) {
	data, err := c.getOrFetch(key, useCache, func() (any, error) {
		return fetch()
	})
	if err != nil {
		var zero T
		return zero, err
	}
	return data.(T), nil
}
