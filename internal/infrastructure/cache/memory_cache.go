package cache

import (
	"context"
	"time"

	lru "github.com/hashicorp/golang-lru"
)

// MemoryCache is an in-process LRU cache whose entries expire after their TTL.
type MemoryCache struct {
	cache *lru.Cache
	ttl   time.Duration
	now   func() time.Time
}

type cacheEntry struct {
	value     string
	expiresAt time.Time
}

// NewMemoryCache creates an LRU cache holding at most maxSize entries.
func NewMemoryCache(maxSize int, ttl time.Duration) (*MemoryCache, error) {
	cache, err := lru.New(maxSize)
	if err != nil {
		return nil, err
	}

	return &MemoryCache{
		cache: cache,
		ttl:   ttl,
		now:   time.Now,
	}, nil
}

func (c *MemoryCache) Get(_ context.Context, key string) (string, bool, error) {
	val, found := c.cache.Get(key)
	if !found {
		return "", false, nil
	}

	entry := val.(cacheEntry)
	if !entry.expiresAt.IsZero() && c.now().After(entry.expiresAt) {
		c.cache.Remove(key)
		return "", false, nil
	}

	return entry.value, true, nil
}

func (c *MemoryCache) Set(_ context.Context, key, value string, ttl time.Duration) error {
	if ttl == 0 {
		ttl = c.ttl
	}

	entry := cacheEntry{value: value}
	if ttl > 0 {
		entry.expiresAt = c.now().Add(ttl)
	}
	c.cache.Add(key, entry)
	return nil
}

func (c *MemoryCache) Delete(_ context.Context, key string) error {
	c.cache.Remove(key)
	return nil
}

func (c *MemoryCache) Type() string {
	return "memory"
}

// Len reports the number of live and expired entries still held.
func (c *MemoryCache) Len() int {
	return c.cache.Len()
}
