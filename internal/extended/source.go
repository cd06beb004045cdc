package extended

import (
	"context"
	"fmt"

	"solana-art-lab/internal/storage"
)

// URISource maps an identifier to the raw content URI of its record.
// ok is false while the record is not yet known.
type URISource interface {
	ContentURI(ctx context.Context, id string) (uri string, ok bool, err error)
}

// RecordURISource resolves content URIs from a RecordStore snapshot.
type RecordURISource struct {
	records storage.RecordStore
}

// NewRecordURISource creates a URISource over records.
func NewRecordURISource(records storage.RecordStore) *RecordURISource {
	return &RecordURISource{records: records}
}

// ContentURI returns the metadata URI for a metadata account address or mint.
func (s *RecordURISource) ContentURI(ctx context.Context, id string) (string, bool, error) {
	snap, err := s.records.Snapshot(ctx)
	if err != nil {
		return "", false, fmt.Errorf("load record snapshot: %w", err)
	}
	meta := snap.FindMetadata(id)
	if meta == nil || meta.Data.URI == "" {
		return "", false, nil
	}
	return meta.Data.URI, true, nil
}
