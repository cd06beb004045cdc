package memory

import (
	"context"
	"errors"
	"testing"

	"solana-art-lab/internal/storage"
)

func TestExtendedMetadataCache_GetSet(t *testing.T) {
	cache := NewExtendedMetadataCache()
	ctx := context.Background()

	if _, err := cache.Get(ctx, "https://x/y"); !errors.Is(err, storage.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}

	if err := cache.Set(ctx, "https://x/y", `{"name":"a"}`); err != nil {
		t.Fatalf("Set failed: %v", err)
	}

	got, err := cache.Get(ctx, "https://x/y")
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if got != `{"name":"a"}` {
		t.Errorf("value mismatch: got %s", got)
	}

	// Last writer wins
	_ = cache.Set(ctx, "https://x/y", `{"name":"b"}`)
	got, _ = cache.Get(ctx, "https://x/y")
	if got != `{"name":"b"}` {
		t.Errorf("overwrite mismatch: got %s", got)
	}
}

func TestExtendedMetadataCache_EmptyKey(t *testing.T) {
	cache := NewExtendedMetadataCache()
	if err := cache.Set(context.Background(), "", "{}"); !errors.Is(err, storage.ErrInvalidInput) {
		t.Errorf("expected ErrInvalidInput, got %v", err)
	}
}
