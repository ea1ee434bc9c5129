// Package cache provides the process-wide key/value store that holds upstream
// payloads between requests.
//
// Entries carry only the time they were stored; freshness is decided by the
// caller on every read. There is no eviction beyond overwrite and no
// request coalescing: two callers missing the same key at once both fetch
// upstream and the last Set wins.
package cache

import (
	"sort"
	"sync"
	"time"

	"github.com/okian/livetable/pkg/metrics"
)

// entry is a stored value and the moment it was stored.
type entry struct {
	value    any
	storedAt time.Time
}

// TTLCache is a map of entries guarded by a mutex. Construct one per process
// and share it; tests construct their own.
type TTLCache struct {
	mu      sync.RWMutex
	entries map[string]entry
	now     func() time.Time
}

// New creates an empty cache.
func New(opts ...Option) *TTLCache {
	c := &TTLCache{
		entries: make(map[string]entry),
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Get returns the value under key if it was stored less than maxAge ago.
// A missing or stale entry reports false.
func (c *TTLCache) Get(key string, maxAge time.Duration) (any, bool) {
	c.mu.RLock()
	e, ok := c.entries[key]
	c.mu.RUnlock()

	if !ok {
		metrics.RecordCacheLookup(key, "miss")
		return nil, false
	}
	if c.now().Sub(e.storedAt) >= maxAge {
		metrics.RecordCacheLookup(key, "stale")
		return nil, false
	}
	metrics.RecordCacheLookup(key, "hit")
	return e.value, true
}

// Set stores value under key stamped with the current time, replacing any
// previous entry.
func (c *TTLCache) Set(key string, value any) {
	c.mu.Lock()
	c.entries[key] = entry{value: value, storedAt: c.now()}
	n := len(c.entries)
	c.mu.Unlock()
	metrics.UpdateCacheEntries(n)
}

// Age reports how long ago key was stored.
func (c *TTLCache) Age(key string) (time.Duration, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	e, ok := c.entries[key]
	if !ok {
		return 0, false
	}
	return c.now().Sub(e.storedAt), true
}

// Keys returns the stored keys in lexical order.
func (c *TTLCache) Keys() []string {
	c.mu.RLock()
	keys := make([]string, 0, len(c.entries))
	for k := range c.entries {
		keys = append(keys, k)
	}
	c.mu.RUnlock()
	sort.Strings(keys)
	return keys
}

// Lookup is a typed Get. A value of a different type counts as a miss.
func Lookup[V any](c *TTLCache, key string, maxAge time.Duration) (V, bool) {
	var zero V
	v, ok := c.Get(key, maxAge)
	if !ok {
		return zero, false
	}
	typed, ok := v.(V)
	if !ok {
		return zero, false
	}
	return typed, true
}
