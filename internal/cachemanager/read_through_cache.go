package cachemanager

import (
	"context"
	"time"

	"github.com/zjrosen/anpconf/internal/log"
)

// Loader produces the value for input on a cache miss.
type Loader[I, V any] func(ctx context.Context, input I) (V, error)

// ReadThroughCache fronts a slow Loader, such as a remote directory listing,
// with a CacheManager. The cache key is derived from the input. Loader
// errors are never stored, and neither are values rejected by the store
// predicate, so an empty listing is retried on the next call.
type ReadThroughCache[K comparable, V any, I any] struct {
	cache CacheManager[K, V]
	key   func(I) K
	load  Loader[I, V]
	store func(V) bool
}

// ReadThroughOption configures a ReadThroughCache.
type ReadThroughOption[K comparable, V any, I any] func(*ReadThroughCache[K, V, I])

// StoreIf only caches values for which keep returns true.
func StoreIf[K comparable, V any, I any](keep func(V) bool) ReadThroughOption[K, V, I] {
	return func(r *ReadThroughCache[K, V, I]) { r.store = keep }
}

// NewReadThroughCache wraps load. A nil cache disables caching and every
// Get calls load.
func NewReadThroughCache[K comparable, V any, I any](
	cache CacheManager[K, V],
	key func(I) K,
	load Loader[I, V],
	opts ...ReadThroughOption[K, V, I],
) *ReadThroughCache[K, V, I] {
	r := &ReadThroughCache[K, V, I]{cache: cache, key: key, load: load}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Get returns the cached value for input or loads and stores it for ttl.
func (r *ReadThroughCache[K, V, I]) Get(ctx context.Context, input I, ttl time.Duration) (V, error) {
	if r.cache == nil {
		return r.load(ctx, input)
	}

	key := r.key(input)
	if value, ok := r.cache.Get(ctx, key); ok {
		return value, nil
	}

	value, err := r.load(ctx, input)
	if err != nil {
		return value, err
	}
	if r.store != nil && !r.store(value) {
		log.Debug(log.CatCache, "Not caching value", "key", key)
		return value, nil
	}
	r.cache.Set(ctx, key, value, ttl)
	return value, nil
}
