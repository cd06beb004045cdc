// Package pebble provides a durable local ExtendedMetadataCache on PebbleDB.
package pebble

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	pebbledb "github.com/cockroachdb/pebble"

	"solana-art-lab/internal/storage"
)

// collectionExtended holds key: {content uri}, value: raw descriptor JSON.
const collectionExtended = "extended_metadata"

// ExtendedMetadataCache implements storage.ExtendedMetadataCache using PebbleDB.
type ExtendedMetadataCache struct {
	db *pebbledb.DB
}

// Open opens (or creates) the cache under dataDir.
func Open(dataDir string) (*ExtendedMetadataCache, error) {
	if dataDir == "" {
		return nil, fmt.Errorf("pebble data dir: %w", storage.ErrInvalidInput)
	}
	if err := os.MkdirAll(dataDir, 0o755); err != nil {
		return nil, fmt.Errorf("create data directory %s: %w", dataDir, err)
	}

	path := filepath.Join(dataDir, collectionExtended)
	db, err := pebbledb.Open(path, &pebbledb.Options{})
	if err != nil {
		return nil, fmt.Errorf("open pebble collection at %s: %w", path, err)
	}
	return &ExtendedMetadataCache{db: db}, nil
}

// Compile-time interface check.
var _ storage.ExtendedMetadataCache = (*ExtendedMetadataCache)(nil)

// Get returns the cached descriptor text. Returns ErrNotFound on miss.
func (c *ExtendedMetadataCache) Get(_ context.Context, key string) (string, error) {
	val, closer, err := c.db.Get([]byte(key))
	if err != nil {
		if errors.Is(err, pebbledb.ErrNotFound) {
			return "", storage.ErrNotFound
		}
		return "", fmt.Errorf("get extended metadata: %w", err)
	}
	defer closer.Close()

	// val is only valid until closer.Close
	return string(val), nil
}

// Set stores the descriptor text for key.
func (c *ExtendedMetadataCache) Set(_ context.Context, key, value string) error {
	if key == "" {
		return storage.ErrInvalidInput
	}
	if err := c.db.Set([]byte(key), []byte(value), pebbledb.Sync); err != nil {
		return fmt.Errorf("set extended metadata: %w", err)
	}
	return nil
}

// Close flushes and closes the database.
func (c *ExtendedMetadataCache) Close() error {
	return c.db.Close()
}
