package storage

import (
	"context"

	"solana-art-lab/internal/domain"
)

// RecordStore provides read-only snapshots of the on-chain record collections.
type RecordStore interface {
	// Snapshot returns the current collections. The returned maps must not be mutated.
	Snapshot(ctx context.Context) (*Snapshot, error)
}

// ExtendedMetadataCache is a durable key-value cache of off-chain JSON descriptors.
// Keys are (rewritten) content URIs, values are raw JSON text.
type ExtendedMetadataCache interface {
	// Get returns the cached JSON text. Returns ErrNotFound on miss.
	Get(ctx context.Context, key string) (string, error)

	// Set stores JSON text under key, overwriting any previous value.
	Set(ctx context.Context, key, value string) error
}

// FetchEventStore provides access to fetch_events storage.
type FetchEventStore interface {
	// Insert appends a fetch event.
	Insert(ctx context.Context, e *domain.FetchEvent) error

	// GetByURI retrieves all events for a URI, ordered by timestamp ASC.
	GetByURI(ctx context.Context, uri string) ([]*domain.FetchEvent, error)
}
