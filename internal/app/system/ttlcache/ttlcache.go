// internal/app/system/ttlcache/ttlcache.go
//
// Package ttlcache is a small bounded cache with per-entry expiry. It is
// owned explicitly by its calling component; there is no process-wide
// shared instance.
package ttlcache

import (
	"sync"
	"time"
)

// Cache maps string keys to values of type V with a fixed TTL and a
// capacity bound. When full, the entry closest to expiry is evicted.
// Safe for concurrent use.
type Cache[V any] struct {
	mu       sync.Mutex
	entries  map[string]entry[V]
	ttl      time.Duration
	capacity int
}

type entry[V any] struct {
	value     V
	expiresAt time.Time
}

// New creates a cache holding at most capacity entries for ttl each.
func New[V any](capacity int, ttl time.Duration) *Cache[V] {
	if capacity < 1 {
		capacity = 1
	}
	return &Cache[V]{
		entries:  make(map[string]entry[V], capacity),
		ttl:      ttl,
		capacity: capacity,
	}
}

// Get returns the cached value for key if present and unexpired.
func (c *Cache[V]) Get(key string) (V, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.entries[key]
	if !ok || time.Now().After(e.expiresAt) {
		if ok {
			delete(c.entries, key)
		}
		var zero V
		return zero, false
	}
	return e.value, true
}

// Set stores value under key, evicting the oldest entry if at capacity.
func (c *Cache[V]) Set(key string, value V) {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := time.Now()
	if _, ok := c.entries[key]; !ok && len(c.entries) >= c.capacity {
		c.evictOldestLocked(now)
	}
	c.entries[key] = entry[V]{value: value, expiresAt: now.Add(c.ttl)}
}

// Invalidate removes key if present.
func (c *Cache[V]) Invalidate(key string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.entries, key)
}

// Len returns the number of entries, counting expired ones not yet
// collected.
func (c *Cache[V]) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

func (c *Cache[V]) evictOldestLocked(now time.Time) {
	var oldestKey string
	var oldest time.Time
	first := true
	for k, e := range c.entries {
		if now.After(e.expiresAt) {
			delete(c.entries, k)
			return
		}
		if first || e.expiresAt.Before(oldest) {
			oldestKey, oldest, first = k, e.expiresAt, false
		}
	}
	if oldestKey != "" {
		delete(c.entries, oldestKey)
	}
}
