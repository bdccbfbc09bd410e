package cachemanager

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestNewInMemoryCacheManager(t *testing.T) {
	require.NotPanics(t, func() {
		NewInMemoryCacheManager[string, []string]("listing", DefaultExpiration, DefaultCleanupInterval)
	})
}

func TestInMemoryCacheManager_GetExistingValue(t *testing.T) {
	cache := NewInMemoryCacheManager[string, []string]("listing", DefaultExpiration, DefaultCleanupInterval)
	files := []string{"a.root", "b.root"}
	cache.Set(context.Background(), "eos:/data", files, DefaultExpiration)

	got, ok := cache.Get(context.Background(), "eos:/data")
	require.True(t, ok)
	require.Equal(t, files, got)
}

func TestInMemoryCacheManager_GetWithNoExistingValue(t *testing.T) {
	cache := NewInMemoryCacheManager[string, []string]("listing", DefaultExpiration, DefaultCleanupInterval)

	got, ok := cache.Get(context.Background(), "eos:/data")
	require.False(t, ok)
	require.Empty(t, got)
}

func TestInMemoryCacheManager_GetWithExistingInvalidValueType(t *testing.T) {
	cache := NewInMemoryCacheManager[string, []string]("listing", DefaultExpiration, DefaultCleanupInterval)
	cache.cache.Set("eos:/data", 123, DefaultExpiration)

	got, ok := cache.Get(context.Background(), "eos:/data")
	require.False(t, ok)
	require.Empty(t, got)
}

func TestInMemoryCacheManager_Expired(t *testing.T) {
	cache := NewInMemoryCacheManager[string, string]("listing", DefaultExpiration, DefaultCleanupInterval)
	cache.Set(context.Background(), "k", "v", time.Nanosecond)
	time.Sleep(time.Millisecond)

	_, ok := cache.Get(context.Background(), "k")
	require.False(t, ok)
}

func TestInMemoryCacheManager_DeleteWithNoKeysDoesNothing(t *testing.T) {
	cache := NewInMemoryCacheManager[string, string]("listing", DefaultExpiration, DefaultCleanupInterval)
	cache.Set(context.Background(), "k", "v", DefaultExpiration)

	require.NoError(t, cache.Delete(context.Background()))
	require.Equal(t, 1, cache.Len())
}

func TestInMemoryCacheManager_DeleteExistingValue(t *testing.T) {
	cache := NewInMemoryCacheManager[string, string]("listing", DefaultExpiration, DefaultCleanupInterval)
	cache.Set(context.Background(), "a", "1", DefaultExpiration)
	cache.Set(context.Background(), "b", "2", DefaultExpiration)

	require.NoError(t, cache.Delete(context.Background(), "a"))

	_, ok := cache.Get(context.Background(), "a")
	require.False(t, ok)
	got, ok := cache.Get(context.Background(), "b")
	require.True(t, ok)
	require.Equal(t, "2", got)
}

func TestInMemoryCacheManager_Flush(t *testing.T) {
	cache := NewInMemoryCacheManager[string, string]("listing", DefaultExpiration, DefaultCleanupInterval)
	cache.Set(context.Background(), "a", "1", DefaultExpiration)
	cache.Set(context.Background(), "b", "2", DefaultExpiration)

	require.NoError(t, cache.Flush(context.Background()))
	require.Equal(t, 0, cache.Len())
}

func TestInMemoryCacheManager_SnapshotRestore(t *testing.T) {
	src := NewInMemoryCacheManager[string, []string]("listing", DefaultExpiration, DefaultCleanupInterval)
	src.Set(context.Background(), "live", []string{"a.root"}, time.Hour)
	src.Set(context.Background(), "forever", []string{"b.root"}, -1)
	src.cache.Set("wrong", 42, time.Hour)

	snap := src.Snapshot()
	require.Len(t, snap, 2)
	require.True(t, snap["forever"].Expires.IsZero())
	require.False(t, snap["live"].Expires.IsZero())

	snap["stale"] = Entry[[]string]{Value: []string{"c.root"}, Expires: time.Now().Add(-time.Minute)}

	dst := NewInMemoryCacheManager[string, []string]("listing", DefaultExpiration, DefaultCleanupInterval)
	require.Equal(t, 2, dst.Restore(snap))

	got, ok := dst.Get(context.Background(), "live")
	require.True(t, ok)
	require.Equal(t, []string{"a.root"}, got)
	_, ok = dst.Get(context.Background(), "stale")
	require.False(t, ok)
}
