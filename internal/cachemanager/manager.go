// Package cachemanager provides small generic caches with a TTL.
package cachemanager

import (
	"context"
	"time"
)

// CacheManager stores values by key with a per-entry TTL.
type CacheManager[K ~string, V any] interface {
	Get(ctx context.Context, key K) (V, bool)
	Set(ctx context.Context, key K, value V, ttl time.Duration)
	Delete(ctx context.Context, keys ...K)
}

// Stats counts lookups since the cache was created.
type Stats struct {
	Hits   int64
	Misses int64
}
