package pebble

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"solana-art-lab/internal/storage"
)

func TestExtendedMetadataCache_SetAndGet(t *testing.T) {
	cache, err := Open(t.TempDir())
	require.NoError(t, err)
	defer cache.Close()

	ctx := context.Background()
	_, err = cache.Get(ctx, "https://arweave.net/abc")
	assert.ErrorIs(t, err, storage.ErrNotFound)

	require.NoError(t, cache.Set(ctx, "https://arweave.net/abc", `{"name":"a"}`))
	require.NoError(t, cache.Set(ctx, "https://arweave.net/abc", `{"name":"b"}`))

	got, err := cache.Get(ctx, "https://arweave.net/abc")
	require.NoError(t, err)
	assert.Equal(t, `{"name":"b"}`, got)
}

func TestExtendedMetadataCache_SurvivesReopen(t *testing.T) {
	dir := t.TempDir()
	ctx := context.Background()

	cache, err := Open(dir)
	require.NoError(t, err)
	require.NoError(t, cache.Set(ctx, "k", `{"v":1}`))
	require.NoError(t, cache.Close())

	reopened, err := Open(dir)
	require.NoError(t, err)
	defer reopened.Close()

	got, err := reopened.Get(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, `{"v":1}`, got)
}

func TestExtendedMetadataCache_InvalidInput(t *testing.T) {
	_, err := Open("")
	assert.ErrorIs(t, err, storage.ErrInvalidInput)

	cache, err := Open(t.TempDir())
	require.NoError(t, err)
	defer cache.Close()
	assert.ErrorIs(t, cache.Set(context.Background(), "", "{}"), storage.ErrInvalidInput)
}
