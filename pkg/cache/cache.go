package cache

import (
	"sync"
	"time"

	"feedscraper/pkg/models"
)

// Cache stores whole collection results keyed by window size
type Cache interface {
	// Get returns a copy of the result for windowHours if it is still fresh
	Get(windowHours int) (models.CollectionResult, bool)
	// Put stores a copy of result for windowHours
	Put(windowHours int, result models.CollectionResult)
}

type entry struct {
	result    models.CollectionResult
	fetchedAt time.Time
}

// MemoryCache is an in-process Cache. Entries expire ttl after they were
// stored; expired entries are dropped on the next lookup.
type MemoryCache struct {
	mu      sync.Mutex
	ttl     time.Duration
	entries map[int]entry
	now     func() time.Time
}

// NewMemoryCache creates a cache whose entries stay fresh for ttl
func NewMemoryCache(ttl time.Duration) *MemoryCache {
	return &MemoryCache{
		ttl:     ttl,
		entries: make(map[int]entry),
		now:     time.Now,
	}
}

// WithClock replaces the cache's clock
func (c *MemoryCache) WithClock(now func() time.Time) *MemoryCache {
	c.now = now
	return c
}

func (c *MemoryCache) Get(windowHours int) (models.CollectionResult, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.entries[windowHours]
	if !ok {
		return nil, false
	}
	if c.now().Sub(e.fetchedAt) >= c.ttl {
		delete(c.entries, windowHours)
		return nil, false
	}
	return e.result.Clone(), true
}

func (c *MemoryCache) Put(windowHours int, result models.CollectionResult) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[windowHours] = entry{
		result:    result.Clone(),
		fetchedAt: c.now(),
	}
}

// Len returns the number of stored entries, fresh or not
func (c *MemoryCache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

// Disabled never stores anything
type Disabled struct{}

func (Disabled) Get(int) (models.CollectionResult, bool) { return nil, false }
func (Disabled) Put(int, models.CollectionResult)         {}

var (
	_ Cache = (*MemoryCache)(nil)
	_ Cache = Disabled{}
)
