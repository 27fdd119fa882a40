// Package cache provides a thread-safe cache with per-entry expiration,
// used to hold document-store directory listings between requests.
package cache

import (
	"context"
	"sync"
	"time"
)

type entry[V any] struct {
	value  V
	stored time.Time
}

// TTLCache is a thread-safe cache whose entries expire individually ttl
// after they were stored.
type TTLCache[K comparable, V any] struct {
	mu   sync.RWMutex
	data map[K]entry[V]
	ttl  time.Duration
	now  func() time.Time
}

// New creates an empty TTLCache. A non-positive ttl disables caching: every
// Get misses.
func New[K comparable, V any](ttl time.Duration) *TTLCache[K, V] {
	return &TTLCache[K, V]{
		data: make(map[K]entry[V]),
		ttl:  ttl,
		now:  time.Now,
	}
}

// Get returns the value stored under key if it has not expired.
func (c *TTLCache[K, V]) Get(key K) (V, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	e, ok := c.data[key]
	if !ok || c.expiredLocked(e) {
		var zero V
		return zero, false
	}
	return e.value, true
}

// Set stores value under key and starts its TTL.
func (c *TTLCache[K, V]) Set(key K, value V) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.data[key] = entry[V]{value: value, stored: c.now()}
}

// GetOrLoad returns the cached value for key, or calls load and caches its
// result. Errors are returned and not cached. Concurrent misses on the same
// key may each call load.
func (c *TTLCache[K, V]) GetOrLoad(ctx context.Context, key K, load func(context.Context) (V, error)) (V, error) {
	if v, ok := c.Get(key); ok {
		return v, nil
	}
	v, err := load(ctx)
	if err != nil {
		var zero V
		return zero, err
	}
	c.Set(key, v)
	return v, nil
}

// Delete removes key.
func (c *TTLCache[K, V]) Delete(key K) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.data, key)
}

// Invalidate removes every entry.
func (c *TTLCache[K, V]) Invalidate() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.data = make(map[K]entry[V])
}

// Prune drops expired entries and returns how many were removed.
func (c *TTLCache[K, V]) Prune() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	n := 0
	for k, e := range c.data {
		if c.expiredLocked(e) {
			delete(c.data, k)
			n++
		}
	}
	return n
}

// Len returns the number of stored entries, expired or not.
func (c *TTLCache[K, V]) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.data)
}

// expiredLocked MUST be called with at least a read lock held.
func (c *TTLCache[K, V]) expiredLocked(e entry[V]) bool {
	return c.ttl <= 0 || c.now().Sub(e.stored) >= c.ttl
}
