package cache

import (
	"context"
	"sync"
	"time"

	"github.com/barrickdigitalgold-web/barrickdigitalgold-web-sub000/pkg/cache"
	"github.com/barrickdigitalgold-web/barrickdigitalgold-web-sub000/pkg/provider"
)

// MemoryCache implements cache.PriceCache in process memory.
type MemoryCache struct {
	entries map[string]cacheEntry
	mu      sync.RWMutex
	now     func() time.Time
}

type cacheEntry struct {
	prices    provider.Prices
	expiresAt time.Time
}

// NewMemoryCache creates a new in-memory cache. Expired entries are dropped
// lazily on Get and on every Set.
func NewMemoryCache() *MemoryCache {
	return &MemoryCache{
		entries: make(map[string]cacheEntry),
		now:     time.Now,
	}
}

// Get retrieves a quote from cache.
func (c *MemoryCache) Get(_ context.Context, key string) (*provider.Prices, error) {
	c.mu.RLock()
	entry, ok := c.entries[key]
	c.mu.RUnlock()
	if !ok || c.now().After(entry.expiresAt) {
		return nil, nil
	}
	p := entry.prices
	return &p, nil
}

// Set stores a quote with TTL.
func (c *MemoryCache) Set(_ context.Context, key string, prices *provider.Prices, ttl time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	now := c.now()
	for k, e := range c.entries {
		if now.After(e.expiresAt) {
			delete(c.entries, k)
		}
	}
	c.entries[key] = cacheEntry{prices: *prices, expiresAt: now.Add(ttl)}
	return nil
}

// Delete removes a quote from cache.
func (c *MemoryCache) Delete(_ context.Context, key string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.entries, key)
	return nil
}

var _ cache.PriceCache = (*MemoryCache)(nil)
