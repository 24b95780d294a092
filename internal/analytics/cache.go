package analytics

import (
	"sync"
	"time"
)

// cacheEntry holds cached stats and metadata
type cacheEntry struct {
	stats       []Stats
	lastRefresh time.Time
}

// statsCache provides thread-safe caching of computed stats, keyed by mode filter
type statsCache struct {
	mu      sync.RWMutex
	entries map[string]*cacheEntry
	ttl     time.Duration
	now     func() time.Time
}

func newStatsCache(ttl time.Duration) *statsCache {
	return &statsCache{
		entries: make(map[string]*cacheEntry),
		ttl:     ttl,
		now:     time.Now,
	}
}

// get retrieves cached stats if available and fresh
func (c *statsCache) get(mode string) ([]Stats, bool) {
	if c.ttl <= 0 {
		return nil, false
	}

	c.mu.RLock()
	defer c.mu.RUnlock()

	entry, exists := c.entries[mode]
	if !exists || c.now().Sub(entry.lastRefresh) > c.ttl {
		return nil, false
	}
	return entry.stats, true
}

func (c *statsCache) set(mode string, stats []Stats) {
	if c.ttl <= 0 {
		return
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[mode] = &cacheEntry{stats: stats, lastRefresh: c.now()}
}

func (c *statsCache) invalidate() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = make(map[string]*cacheEntry)
}
