package cachemanager

import (
	"context"
	"time"

	gocache "github.com/patrickmn/go-cache"

	"github.com/zjrosen/anpconf/internal/log"
)

const DefaultExpiration = 10 * time.Minute
const DefaultCleanupInterval = 30 * time.Minute

// NewInMemoryCacheManager initializes the in-memory cache with a default cleanup interval
func NewInMemoryCacheManager[K ~string, V any](useCase string, defaultExpiration, cleanupInterval time.Duration) *InMemoryCacheManager[K, V] {
	return &InMemoryCacheManager[K, V]{
		useCase: useCase,
		cache:   gocache.New(defaultExpiration, cleanupInterval),
	}
}

// InMemoryCacheManager is the concrete implementation of the CacheManager interface
type InMemoryCacheManager[K ~string, V any] struct {
	useCase string
	cache   *gocache.Cache
}

// Get retrieves an item from the cache by its key
func (c *InMemoryCacheManager[K, V]) Get(_ context.Context, key K) (V, bool) {
	var zeroValue V

	value, found := c.cache.Get(string(key))
	if !found {
		log.Debug(log.CatCache, "cache miss", "cache", c.useCase, "key", key)
		return zeroValue, false
	}

	v, ok := value.(V)
	if !ok {
		log.Error(log.CatCache, "wrong type assertion when getting value", "cache", c.useCase, "key", key)
		return zeroValue, false
	}

	log.Debug(log.CatCache, "cache hit", "cache", c.useCase, "key", key)
	return v, true
}

// Set sets a value in the cache with a key and TTL
func (c *InMemoryCacheManager[K, V]) Set(_ context.Context, key K, value V, ttl time.Duration) {
	c.cache.Set(string(key), value, ttl)
}

// Delete removes values from the cache by key
func (c *InMemoryCacheManager[K, V]) Delete(_ context.Context, keys ...K) error {
	for _, key := range keys {
		c.cache.Delete(string(key))
	}
	return nil
}

// Flush drops every cached value
func (c *InMemoryCacheManager[K, V]) Flush(_ context.Context) error {
	c.cache.Flush()
	return nil
}

// Len reports the number of cached values, including expired ones not yet
// cleaned up.
func (c *InMemoryCacheManager[K, V]) Len() int {
	return c.cache.ItemCount()
}

// Snapshot returns the live entries so they can be persisted between runs.
// Values of the wrong type are skipped.
func (c *InMemoryCacheManager[K, V]) Snapshot() map[K]Entry[V] {
	items := c.cache.Items()
	out := make(map[K]Entry[V], len(items))
	for k, item := range items {
		v, ok := item.Object.(V)
		if !ok {
			continue
		}
		e := Entry[V]{Value: v}
		if item.Expiration > 0 {
			e.Expires = time.Unix(0, item.Expiration)
		}
		out[K(k)] = e
	}
	return out
}

// Restore loads entries taken by Snapshot. Entries already expired are
// dropped.
func (c *InMemoryCacheManager[K, V]) Restore(entries map[K]Entry[V]) int {
	now := time.Now()
	n := 0
	for k, e := range entries {
		ttl := gocache.NoExpiration
		if !e.Expires.IsZero() {
			if !e.Expires.After(now) {
				continue
			}
			ttl = e.Expires.Sub(now)
		}
		c.cache.Set(string(k), e.Value, ttl)
		n++
	}
	log.Debug(log.CatCache, "cache restored", "cache", c.useCase, "entries", n)
	return n
}
