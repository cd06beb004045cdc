package memory

import (
	"context"
	"testing"

	"solana-art-lab/internal/domain"
)

func TestFetchEventStore_InsertAndGetByURI(t *testing.T) {
	store := NewFetchEventStore()
	ctx := context.Background()

	events := []*domain.FetchEvent{
		{URI: "u1", Kind: domain.FetchKindAsset, Mode: "bypass-cache", Outcome: domain.FetchOutcomeOK, TimestampMs: 2000},
		{URI: "u1", Kind: domain.FetchKindAsset, Mode: "prefer-cache", Outcome: domain.FetchOutcomeError, TimestampMs: 1000},
		{URI: "u2", Kind: domain.FetchKindExtended, Mode: "prefer-cache", Outcome: domain.FetchOutcomeOK, TimestampMs: 1500},
	}
	for _, e := range events {
		if err := store.Insert(ctx, e); err != nil {
			t.Fatalf("Insert failed: %v", err)
		}
	}

	got, err := store.GetByURI(ctx, "u1")
	if err != nil {
		t.Fatalf("GetByURI failed: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("expected 2 events, got %d", len(got))
	}
	if got[0].Mode != "prefer-cache" || got[1].Mode != "bypass-cache" {
		t.Errorf("events not ordered by timestamp: %+v, %+v", got[0], got[1])
	}
	if store.Count() != 3 {
		t.Errorf("Count mismatch: got %d, want 3", store.Count())
	}
}

func TestFetchEventStore_RejectsEmptyURI(t *testing.T) {
	store := NewFetchEventStore()
	if err := store.Insert(context.Background(), &domain.FetchEvent{}); err == nil {
		t.Error("expected error for empty URI")
	}
}
