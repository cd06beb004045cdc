package fetch

import (
	"context"
	"time"

	"go.uber.org/zap"

	"solana-art-lab/internal/domain"
	"solana-art-lab/internal/storage"
)

// Recorder receives one event per network attempt.
type Recorder interface {
	RecordFetch(ctx context.Context, e *domain.FetchEvent)
}

// StoreRecorder appends events to a FetchEventStore.
// Insert failures are logged and dropped; the event log never blocks a fetch result.
type StoreRecorder struct {
	store  storage.FetchEventStore
	logger *zap.Logger
}

// NewStoreRecorder creates a Recorder backed by store.
func NewStoreRecorder(store storage.FetchEventStore, logger *zap.Logger) *StoreRecorder {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &StoreRecorder{store: store, logger: logger}
}

// RecordFetch inserts e.
func (r *StoreRecorder) RecordFetch(ctx context.Context, e *domain.FetchEvent) {
	if r == nil || r.store == nil || e == nil {
		return
	}
	if err := r.store.Insert(ctx, e); err != nil {
		r.logger.Warn("record fetch event",
			zap.String("uri", e.URI),
			zap.String("kind", string(e.Kind)),
			zap.Error(err))
	}
}

// NewEvent builds an event for an attempt that started at start.
func NewEvent(uri string, kind domain.FetchKind, mode Mode, outcome domain.FetchOutcome, size int, start time.Time) *domain.FetchEvent {
	now := time.Now()
	return &domain.FetchEvent{
		URI:         uri,
		Kind:        kind,
		Mode:        mode.String(),
		Outcome:     outcome,
		Bytes:       int64(size),
		DurationMs:  now.Sub(start).Milliseconds(),
		TimestampMs: start.UnixMilli(),
	}
}

var _ Recorder = (*StoreRecorder)(nil)
