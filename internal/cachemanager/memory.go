package cachemanager

import (
	"context"
	"sync/atomic"
	"time"

	gocache "github.com/patrickmn/go-cache"

	"github.com/zjrosen/atelier/internal/log"
)

// DefaultCleanupInterval is how often expired entries are swept.
const DefaultCleanupInterval = 5 * time.Minute

// Memory is a go-cache backed CacheManager. name labels its log entries.
type Memory[K ~string, V any] struct {
	name   string
	cache  *gocache.Cache
	hits   atomic.Int64
	misses atomic.Int64
}

var _ CacheManager[string, int] = (*Memory[string, int])(nil)

// NewMemory creates an in-memory cache whose entries expire after ttl unless
// Set is given another one.
func NewMemory[K ~string, V any](name string, ttl, cleanupInterval time.Duration) *Memory[K, V] {
	return &Memory[K, V]{
		name:  name,
		cache: gocache.New(ttl, cleanupInterval),
	}
}

// Get returns the value stored under key. A value of the wrong type counts
// as a miss.
func (c *Memory[K, V]) Get(ctx context.Context, key K) (V, bool) {
	var zero V
	raw, found := c.cache.Get(string(key))
	if !found {
		c.misses.Add(1)
		log.Debug(log.CatCache, "cache miss", "cache", c.name, "key", key)
		return zero, false
	}
	v, ok := raw.(V)
	if !ok {
		c.misses.Add(1)
		log.Error(log.CatCache, "cached value has wrong type", "cache", c.name, "key", key)
		return zero, false
	}
	c.hits.Add(1)
	return v, true
}

// Set stores value under key for ttl.
func (c *Memory[K, V]) Set(ctx context.Context, key K, value V, ttl time.Duration) {
	c.cache.Set(string(key), value, ttl)
}

// Delete drops keys.
func (c *Memory[K, V]) Delete(ctx context.Context, keys ...K) {
	for _, key := range keys {
		c.cache.Delete(string(key))
	}
	if len(keys) > 0 {
		log.Debug(log.CatCache, "cache invalidated", "cache", c.name, "keys", len(keys))
	}
}

// Stats returns the lookup counters.
func (c *Memory[K, V]) Stats() Stats {
	return Stats{Hits: c.hits.Load(), Misses: c.misses.Load()}
}
