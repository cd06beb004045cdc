package backend

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"solana-art-lab/internal/config"
	"solana-art-lab/internal/storage"
	"solana-art-lab/internal/storage/memory"
	pebblestore "solana-art-lab/internal/storage/pebble"
)

func TestOpenExtendedCache_Memory(t *testing.T) {
	cfg := &config.Config{Cache: config.CacheConfig{Backend: config.BackendMemory}}

	cache, closeFn, err := OpenExtendedCache(context.Background(), cfg, zap.NewNop())
	require.NoError(t, err)
	defer closeFn()
	assert.IsType(t, &memory.ExtendedMetadataCache{}, cache)
}

func TestOpenExtendedCache_PebbleRoundTrip(t *testing.T) {
	dir := t.TempDir()
	cfg := &config.Config{Cache: config.CacheConfig{Backend: config.BackendPebble, PebbleDir: dir}}
	ctx := context.Background()

	cache, closeFn, err := OpenExtendedCache(ctx, cfg, zap.NewNop())
	require.NoError(t, err)
	assert.IsType(t, &pebblestore.ExtendedMetadataCache{}, cache)
	require.NoError(t, cache.Set(ctx, "https://arweave.net/a", `{"name":"a"}`))
	closeFn()

	reopened, closeFn, err := OpenExtendedCache(ctx, cfg, zap.NewNop())
	require.NoError(t, err)
	defer closeFn()
	got, err := reopened.Get(ctx, "https://arweave.net/a")
	require.NoError(t, err)
	assert.Equal(t, `{"name":"a"}`, got)

	_, err = reopened.Get(ctx, "missing")
	assert.ErrorIs(t, err, storage.ErrNotFound)
}

func TestOpenExtendedCache_UnknownBackend(t *testing.T) {
	cfg := &config.Config{Cache: config.CacheConfig{Backend: "redis"}}
	_, _, err := OpenExtendedCache(context.Background(), cfg, zap.NewNop())
	assert.ErrorIs(t, err, config.ErrInvalidConfig)
}

func TestOpenRecorder_DisabledWithoutDSN(t *testing.T) {
	rec, closeFn, err := OpenRecorder(context.Background(), &config.Config{}, zap.NewNop())
	require.NoError(t, err)
	defer closeFn()
	assert.Nil(t, rec)
}
