// Package cache provides a bounded in-memory content cache with lazy TTL
// expiry and insertion-order (FIFO) eviction, placed in front of expensive
// or rate-limited upstream lookups.
package cache

import (
	"sync"
	"time"
)

type entry[V any] struct {
	value      V
	insertedAt time.Time
}

// Cache maps keys to values with a TTL and a size bound. Expired entries are
// removed on read; there is no background sweep. When full, the entry with
// the oldest insertion order is evicted, regardless of access recency.
// Safe for use from overlapping requests.
type Cache[K comparable, V any] struct {
	mu         sync.Mutex
	ttl        time.Duration
	maxEntries int
	entries    map[K]entry[V]
	order      []K
	now        func() time.Time
}

// New creates a cache holding at most maxEntries values for at most ttl each.
func New[K comparable, V any](ttl time.Duration, maxEntries int) *Cache[K, V] {
	return &Cache[K, V]{
		ttl:        ttl,
		maxEntries: maxEntries,
		entries:    make(map[K]entry[V]),
		now:        time.Now,
	}
}

// Get returns the cached value for key. An entry older than the TTL is
// deleted and reported as absent.
func (c *Cache[K, V]) Get(key K) (V, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	var zero V
	e, ok := c.entries[key]
	if !ok {
		return zero, false
	}
	if c.now().Sub(e.insertedAt) > c.ttl {
		delete(c.entries, key)
		c.dropKey(key)
		return zero, false
	}
	return e.value, true
}

// Set stores value under key, evicting the earliest-inserted entry first if
// the cache is full. Resetting an existing key refreshes its value and
// timestamp but keeps its insertion position.
func (c *Cache[K, V]) Set(key K, value V) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if _, exists := c.entries[key]; !exists {
		if c.maxEntries > 0 && len(c.entries) >= c.maxEntries {
			oldest := c.order[0]
			c.order = c.order[1:]
			delete(c.entries, oldest)
		}
		c.order = append(c.order, key)
	}
	c.entries[key] = entry[V]{value: value, insertedAt: c.now()}
}

// Len returns the number of entries, counting any not yet lazily expired.
func (c *Cache[K, V]) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

// Reset clears all entries. Intended for test harnesses; it only drops
// cached copies, never any source of truth, so it is safe to leave
// reachable from production code.
func (c *Cache[K, V]) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = make(map[K]entry[V])
	c.order = nil
}

func (c *Cache[K, V]) dropKey(key K) {
	for i, k := range c.order {
		if k == key {
			c.order = append(c.order[:i], c.order[i+1:]...)
			return
		}
	}
}
