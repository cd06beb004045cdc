package art

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"solana-art-lab/internal/domain"
	"solana-art-lab/internal/observability"
	"solana-art-lab/internal/registry"
	"solana-art-lab/internal/storage"
)

// Resolver resolves Art against the current Record Store snapshot.
type Resolver struct {
	records  storage.RecordStore
	profiles []registry.Profile
	metrics  *observability.Metrics
	logger   *zap.Logger
}

// Option configures Resolver.
type Option func(*Resolver)

// WithProfiles sets the configured creator profiles.
func WithProfiles(profiles []registry.Profile) Option {
	return func(r *Resolver) {
		r.profiles = profiles
	}
}

// WithMetrics sets the metrics sink.
func WithMetrics(m *observability.Metrics) Option {
	return func(r *Resolver) {
		r.metrics = m
	}
}

// WithLogger sets the logger.
func WithLogger(l *zap.Logger) Option {
	return func(r *Resolver) {
		if l != nil {
			r.logger = l
		}
	}
}

// NewResolver creates a Resolver over records.
func NewResolver(records storage.RecordStore, opts ...Option) *Resolver {
	r := &Resolver{
		records: records,
		logger:  zap.NewNop(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// ResolveID resolves the record identified by a metadata account address
// or a mint. Unknown ids yield the default NFT Art. The only error source
// is the snapshot itself.
func (r *Resolver) ResolveID(ctx context.Context, id string) (domain.Art, error) {
	snap, err := r.records.Snapshot(ctx)
	if err != nil {
		return domain.Art{}, fmt.Errorf("load record snapshot: %w", err)
	}

	meta := snap.FindMetadata(id)
	if meta == nil {
		r.logger.Debug("metadata not in snapshot", zap.String("id", id))
	}

	result := Resolve(meta, snap.Editions, snap.MasterEditions, registry.FromSnapshot(snap, r.profiles...))
	r.metrics.ObserveArt(result.Type)
	return result, nil
}
