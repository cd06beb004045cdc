package postgres

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"solana-art-lab/internal/storage"
)

func TestExtendedMetadataCache_SetAndGet(t *testing.T) {
	pool, cleanup := setupTestDB(t)
	defer cleanup()

	ctx := context.Background()
	cache := NewExtendedMetadataCache(pool)

	_, err := cache.Get(ctx, "https://arweave.net/abc")
	assert.ErrorIs(t, err, storage.ErrNotFound)

	body := `{"name":"Piece","properties":{"files":[{"uri":"a.png"}]}}`
	require.NoError(t, cache.Set(ctx, "https://arweave.net/abc", body))

	got, err := cache.Get(ctx, "https://arweave.net/abc")
	require.NoError(t, err)
	assert.Equal(t, body, got)
}

func TestExtendedMetadataCache_Overwrite(t *testing.T) {
	pool, cleanup := setupTestDB(t)
	defer cleanup()

	ctx := context.Background()
	cache := NewExtendedMetadataCache(pool)

	require.NoError(t, cache.Set(ctx, "k", `{"v":1}`))
	require.NoError(t, cache.Set(ctx, "k", `{"v":2}`))

	got, err := cache.Get(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, `{"v":2}`, got)

	n, err := cache.Len(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}

func TestExtendedMetadataCache_EmptyKey(t *testing.T) {
	pool, cleanup := setupTestDB(t)
	defer cleanup()

	err := NewExtendedMetadataCache(pool).Set(context.Background(), "", "{}")
	assert.ErrorIs(t, err, storage.ErrInvalidInput)
}
