package cache

import (
	"context"
	"fmt"
	"time"

	"cinescope-backend/pkg/cache"

	"github.com/goccy/go-json"
	gocache "github.com/patrickmn/go-cache"
)

type memoryCache struct {
	store *gocache.Cache
}

// NewMemoryCache creates a new in-memory cache service
// defaultExpiration: default TTL for items
// cleanupInterval: how often to scan for expired items
func NewMemoryCache(defaultExpiration, cleanupInterval time.Duration) cache.CacheService {
	return &memoryCache{
		store: gocache.New(defaultExpiration, cleanupInterval),
	}
}

func (c *memoryCache) Get(_ context.Context, key string, dest interface{}) (bool, error) {
	raw, found := c.store.Get(key)
	if !found {
		return false, nil
	}
	if err := json.Unmarshal(raw.([]byte), dest); err != nil {
		return false, err
	}
	return true, nil
}

func (c *memoryCache) Set(_ context.Context, key string, value interface{}, ttl time.Duration) error {
	data, err := json.Marshal(value)
	if err != nil {
		return err
	}
	c.store.Set(key, data, ttl)
	return nil
}

func (c *memoryCache) Incr(_ context.Context, key string) (int64, error) {
	// Add fails when the counter exists, which is fine.
	_ = c.store.Add(key, int64(0), gocache.NoExpiration)
	return c.store.IncrementInt64(key, 1)
}

func (c *memoryCache) Counter(_ context.Context, key string) (int64, error) {
	raw, found := c.store.Get(key)
	if !found {
		return 0, nil
	}
	n, ok := raw.(int64)
	if !ok {
		return 0, fmt.Errorf("cache key %q is not a counter", key)
	}
	return n, nil
}

func (c *memoryCache) Delete(_ context.Context, keys ...string) error {
	for _, key := range keys {
		c.store.Delete(key)
	}
	return nil
}
