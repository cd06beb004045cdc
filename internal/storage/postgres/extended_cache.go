package postgres

import (
	"context"
	"fmt"

	"solana-art-lab/internal/storage"
)

// ExtendedMetadataCache implements storage.ExtendedMetadataCache using PostgreSQL.
type ExtendedMetadataCache struct {
	pool *Pool
}

// NewExtendedMetadataCache creates a new ExtendedMetadataCache.
func NewExtendedMetadataCache(pool *Pool) *ExtendedMetadataCache {
	return &ExtendedMetadataCache{pool: pool}
}

// Compile-time interface check.
var _ storage.ExtendedMetadataCache = (*ExtendedMetadataCache)(nil)

// Get returns the cached descriptor text. Returns ErrNotFound on miss.
func (c *ExtendedMetadataCache) Get(ctx context.Context, key string) (string, error) {
	query := `
		SELECT body
		FROM extended_metadata_cache
		WHERE uri = $1
	`

	var body string
	if err := c.pool.QueryRow(ctx, query, key).Scan(&body); err != nil {
		return "", mapNotFound("get extended metadata", err)
	}
	return body, nil
}

// Set upserts the descriptor text for key; a repeated key overwrites.
func (c *ExtendedMetadataCache) Set(ctx context.Context, key, value string) error {
	if key == "" {
		return storage.ErrInvalidInput
	}

	query := `
		INSERT INTO extended_metadata_cache (uri, body, updated_at)
		VALUES ($1, $2, now())
		ON CONFLICT (uri) DO UPDATE
		SET body = EXCLUDED.body, updated_at = EXCLUDED.updated_at
	`

	if _, err := c.pool.Exec(ctx, query, key, value); err != nil {
		return fmt.Errorf("set extended metadata: %w", err)
	}
	return nil
}

// Len returns the number of cached descriptors.
func (c *ExtendedMetadataCache) Len(ctx context.Context) (int, error) {
	var n int
	if err := c.pool.QueryRow(ctx, `SELECT count(*) FROM extended_metadata_cache`).Scan(&n); err != nil {
		return 0, fmt.Errorf("count extended metadata: %w", err)
	}
	return n, nil
}
