package files

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/zjrosen/anpconf/internal/cachemanager"
)

// ListingCache is the in-memory store for remote directory listings.
type ListingCache = cachemanager.InMemoryCacheManager[string, []string]

// NewListingCache creates an empty listing cache.
func NewListingCache() *ListingCache {
	return cachemanager.NewInMemoryCacheManager[string, []string]("listing", cachemanager.DefaultExpiration, cachemanager.DefaultCleanupInterval)
}

// LoadListingCache restores listings saved by SaveListingCache. A missing
// file yields an empty cache.
func LoadListingCache(path string) (*ListingCache, error) {
	c := NewListingCache()
	data, err := os.ReadFile(path) //nolint:gosec // G304: cache path comes from config
	if errors.Is(err, os.ErrNotExist) {
		return c, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading listing cache: %w", err)
	}
	var entries map[string]cachemanager.Entry[[]string]
	if err := yaml.Unmarshal(data, &entries); err != nil {
		return nil, fmt.Errorf("parsing listing cache %s: %w", path, err)
	}
	c.Restore(entries)
	return c, nil
}

// SaveListingCache writes the live entries of c to path.
func SaveListingCache(path string, c *ListingCache) error {
	data, err := yaml.Marshal(c.Snapshot())
	if err != nil {
		return fmt.Errorf("encoding listing cache: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
		return fmt.Errorf("creating cache directory: %w", err)
	}
	if err := os.WriteFile(path, data, 0o600); err != nil {
		return fmt.Errorf("writing listing cache: %w", err)
	}
	return nil
}
