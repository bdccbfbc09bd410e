// Package cachemanager caches directory listings so repeated input searches
// against slow storage backends hit the network once per TTL.
package cachemanager

import (
	"context"
	"time"
)

type CacheManager[K comparable, V any] interface {
	Get(ctx context.Context, key K) (V, bool)
	Set(ctx context.Context, key K, value V, ttl time.Duration)
	Delete(ctx context.Context, keys ...K) error
	Flush(ctx context.Context) error
}

// Entry is one cached value with its absolute expiry. A zero Expires never
// expires.
type Entry[V any] struct {
	Value   V         `yaml:"value"`
	Expires time.Time `yaml:"expires,omitempty"`
}
