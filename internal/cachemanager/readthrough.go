package cachemanager

import (
	"context"
	"sync"
	"time"
)

// ReadThrough loads a value on a miss and keeps it for ttl. A ttl of zero or
// less disables caching and every Get calls the loader.
type ReadThrough[K ~string, V any] struct {
	cache CacheManager[K, V]
	load  func(ctx context.Context, key K) (V, error)
	ttl   time.Duration

	// gen counts invalidations. A load that overlaps one is returned but not
	// stored.
	mu  sync.Mutex
	gen uint64
}

// NewReadThrough wraps cache with load.
func NewReadThrough[K ~string, V any](cache CacheManager[K, V], ttl time.Duration, load func(ctx context.Context, key K) (V, error)) *ReadThrough[K, V] {
	return &ReadThrough[K, V]{cache: cache, load: load, ttl: ttl}
}

// Get returns the cached value for key or loads it. Errors are not cached.
func (r *ReadThrough[K, V]) Get(ctx context.Context, key K) (V, error) {
	if r.ttl <= 0 {
		return r.load(ctx, key)
	}
	if v, ok := r.cache.Get(ctx, key); ok {
		return v, nil
	}
	gen := r.generation()
	v, err := r.load(ctx, key)
	if err != nil {
		return v, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if r.gen == gen {
		r.cache.Set(ctx, key, v, r.ttl)
	}
	return v, nil
}

// Invalidate drops keys so the next Get reloads them. Loads already in
// flight are not cached.
func (r *ReadThrough[K, V]) Invalidate(ctx context.Context, keys ...K) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.gen++
	r.cache.Delete(ctx, keys...)
}

func (r *ReadThrough[K, V]) generation() uint64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.gen
}
