package memory

import (
	"context"
	"sync"

	"solana-art-lab/internal/storage"
)

// ExtendedMetadataCache is an in-memory implementation of storage.ExtendedMetadataCache.
// It does not survive restarts; use the pebble or postgres backend for that.
type ExtendedMetadataCache struct {
	mu      sync.RWMutex
	entries map[string]string
}

// NewExtendedMetadataCache creates a new in-memory extended metadata cache.
func NewExtendedMetadataCache() *ExtendedMetadataCache {
	return &ExtendedMetadataCache{entries: make(map[string]string)}
}

// Get returns the cached JSON text. Returns ErrNotFound on miss.
func (c *ExtendedMetadataCache) Get(_ context.Context, key string) (string, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	v, ok := c.entries[key]
	if !ok {
		return "", storage.ErrNotFound
	}
	return v, nil
}

// Set stores JSON text under key.
func (c *ExtendedMetadataCache) Set(_ context.Context, key, value string) error {
	if key == "" {
		return storage.ErrInvalidInput
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[key] = value
	return nil
}

var _ storage.ExtendedMetadataCache = (*ExtendedMetadataCache)(nil)
