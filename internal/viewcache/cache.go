// Package viewcache provides a best-effort read-through cache for public,
// non-personalized view payloads.
package viewcache

import (
	"context"
	"sync"
	"time"
)

// Cache stores serialized view payloads for a short TTL. Implementations are
// best-effort: a failed Get is a miss and a failed Set is silently dropped.
type Cache interface {
	Get(ctx context.Context, key string) ([]byte, bool)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration)
}

type memoryEntry struct {
	value   []byte
	expires time.Time
}

// MemoryCache is a TTL-based in-process cache used when no redis instance is
// configured.
type MemoryCache struct {
	mu    sync.RWMutex
	items map[string]memoryEntry
}

// NewMemoryCache returns an empty in-process cache.
func NewMemoryCache() *MemoryCache {
	return &MemoryCache{items: make(map[string]memoryEntry)}
}

// Get returns the cached value when present and not expired.
func (c *MemoryCache) Get(_ context.Context, key string) ([]byte, bool) {
	now := time.Now()

	c.mu.RLock()
	entry, ok := c.items[key]
	c.mu.RUnlock()
	if !ok {
		return nil, false
	}
	if now.After(entry.expires) {
		c.mu.Lock()
		delete(c.items, key)
		c.mu.Unlock()
		return nil, false
	}
	return entry.value, true
}

// Set stores the value for the provided TTL.
func (c *MemoryCache) Set(_ context.Context, key string, value []byte, ttl time.Duration) {
	if ttl <= 0 {
		ttl = time.Minute
	}
	c.mu.Lock()
	c.items[key] = memoryEntry{value: value, expires: time.Now().Add(ttl)}
	c.mu.Unlock()
}

var _ Cache = (*MemoryCache)(nil)
