package fetch

import (
	"sync"
	"time"

	"github.com/use-agent/llmfetch/models"
)

// cacheEntry holds a cached result with its creation timestamp.
type cacheEntry struct {
	result    models.FetchResult
	createdAt time.Time
}

// resultCache is a simple in-memory cache of terminal results keyed by
// normalized URL. It is safe for concurrent use.
type resultCache struct {
	mu         sync.RWMutex
	store      map[string]*cacheEntry
	maxEntries int
	ttl        time.Duration
}

// newResultCache creates a resultCache. A background goroutine runs every
// 5 minutes to evict expired entries.
func newResultCache(maxEntries int, ttl time.Duration) *resultCache {
	if maxEntries <= 0 {
		maxEntries = 1000
	}
	if ttl <= 0 {
		ttl = time.Hour
	}
	c := &resultCache{
		store:      make(map[string]*cacheEntry),
		maxEntries: maxEntries,
		ttl:        ttl,
	}
	go c.cleanupLoop()
	return c
}

// get retrieves a cached result if it exists and has not expired.
func (c *resultCache) get(url string) (models.FetchResult, bool) {
	c.mu.RLock()
	e, ok := c.store[url]
	c.mu.RUnlock()

	if !ok || time.Since(e.createdAt) > c.ttl {
		return models.FetchResult{}, false
	}
	return e.result, true
}

// set stores a result. If the cache is at capacity, a random entry is
// evicted to make room (map iteration is random in Go).
func (c *resultCache) set(url string, result models.FetchResult) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if len(c.store) >= c.maxEntries {
		for k := range c.store {
			delete(c.store, k)
			break
		}
	}

	c.store[url] = &cacheEntry{result: result, createdAt: time.Now()}
}

// cleanupLoop evicts expired entries every 5 minutes.
func (c *resultCache) cleanupLoop() {
	ticker := time.NewTicker(5 * time.Minute)
	defer ticker.Stop()
	for range ticker.C {
		cutoff := time.Now().Add(-c.ttl)
		c.mu.Lock()
		for k, e := range c.store {
			if e.createdAt.Before(cutoff) {
				delete(c.store, k)
			}
		}
		c.mu.Unlock()
	}
}
