// Package marketdata provides access to external financial data vendors.
package marketdata

import (
	"sync"
	"time"

	cache "github.com/patrickmn/go-cache"
)

// SnapshotCache provides short-lived in-memory caching of fundamentals
// snapshots so a scan pass over many analysts does not refetch the same
// ticker repeatedly.
type SnapshotCache struct {
	cache     *cache.Cache
	ttl       time.Duration
	mu        sync.RWMutex
	hitCount  uint64
	missCount uint64
}

// NewSnapshotCache creates a new snapshot cache
func NewSnapshotCache(ttl time.Duration) *SnapshotCache {
	return &SnapshotCache{
		cache: cache.New(ttl, ttl*2),
		ttl:   ttl,
	}
}

// Set stores a snapshot under key
func (sc *SnapshotCache) Set(key string, value any) {
	sc.cache.Set(key, value, sc.ttl)
}

// get retrieves a raw value, tracking hit/miss counters
func (sc *SnapshotCache) get(key string) (any, bool) {
	value, found := sc.cache.Get(key)

	sc.mu.Lock()
	if found {
		sc.hitCount++
	} else {
		sc.missCount++
	}
	sc.mu.Unlock()

	return value, found
}

// CacheGet retrieves a typed snapshot from the cache.
func CacheGet[T any](sc *SnapshotCache, key string) (T, bool) {
	var zero T
	if sc == nil {
		return zero, false
	}

	value, found := sc.get(key)
	if !found {
		return zero, false
	}

	typed, ok := value.(T)
	if !ok {
		return zero, false
	}
	return typed, true
}

// Clear flushes the entire cache
func (sc *SnapshotCache) Clear() {
	sc.cache.Flush()

	sc.mu.Lock()
	sc.hitCount = 0
	sc.missCount = 0
	sc.mu.Unlock()
}

// Stats returns cache statistics
func (sc *SnapshotCache) Stats() (hits, misses uint64, ratio float64) {
	sc.mu.RLock()
	defer sc.mu.RUnlock()

	hits = sc.hitCount
	misses = sc.missCount
	total := hits + misses
	if total > 0 {
		ratio = float64(hits) / float64(total)
	}
	return
}

// ItemCount returns the number of items in cache
func (sc *SnapshotCache) ItemCount() int {
	return sc.cache.ItemCount()
}
