package cache

import (
	"context"
	"strings"
	"time"

	lru "github.com/hashicorp/golang-lru/v2/expirable"
)

// DefaultMemoryEntries bounds the number of repositories kept in memory.
const DefaultMemoryEntries = 1024

// memoryMaxTTL is the LRU-wide eviction horizon. Per-entry expiry is tracked
// separately, so this only needs to exceed the longest result TTL.
const memoryMaxTTL = 24 * time.Hour

// MemoryCache is an in-process cache backed by an expirable LRU.
// It is used by long-running commands (serve, poll) when no shared backend
// is configured.
type MemoryCache struct {
	lru *lru.LRU[string, memoryEntry]
	now func() time.Time
}

type memoryEntry struct {
	data      []byte
	expiresAt time.Time
}

// NewMemoryCache creates a memory cache holding at most size entries.
// A size of zero or less uses [DefaultMemoryEntries].
func NewMemoryCache(size int) *MemoryCache {
	if size <= 0 {
		size = DefaultMemoryEntries
	}
	return &MemoryCache{
		lru: lru.NewLRU[string, memoryEntry](size, nil, memoryMaxTTL),
		now: time.Now,
	}
}

// Get retrieves a value from the cache.
func (c *MemoryCache) Get(ctx context.Context, key string) ([]byte, bool, error) {
	entry, ok := c.lru.Get(key)
	if !ok {
		return nil, false, nil
	}
	if expired(entry.expiresAt, c.now()) {
		c.lru.Remove(key)
		return nil, false, nil
	}
	out := make([]byte, len(entry.data))
	copy(out, entry.data)
	return out, true, nil
}

// Set stores a value in the cache.
func (c *MemoryCache) Set(ctx context.Context, key string, data []byte, ttl time.Duration) error {
	if key == "" {
		return ErrEmptyKey
	}
	entry := memoryEntry{data: make([]byte, len(data))}
	copy(entry.data, data)
	if ttl > 0 {
		entry.expiresAt = c.now().Add(ttl)
	}
	c.lru.Add(key, entry)
	return nil
}

// Delete removes a value from the cache.
func (c *MemoryCache) Delete(ctx context.Context, key string) error {
	c.lru.Remove(key)
	return nil
}

// DeletePrefix removes every entry whose key starts with prefix.
func (c *MemoryCache) DeletePrefix(ctx context.Context, prefix string) (int, error) {
	removed := 0
	for _, key := range c.lru.Keys() {
		if strings.HasPrefix(key, prefix) && c.lru.Remove(key) {
			removed++
		}
	}
	return removed, nil
}

// Len returns the number of entries currently held, expired ones included.
func (c *MemoryCache) Len() int {
	return c.lru.Len()
}

// Close purges the cache.
func (c *MemoryCache) Close() error {
	c.lru.Purge()
	return nil
}

var _ Cache = (*MemoryCache)(nil)
