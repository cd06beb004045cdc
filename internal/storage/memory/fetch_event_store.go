package memory

import (
	"context"
	"sort"
	"sync"

	"solana-art-lab/internal/domain"
	"solana-art-lab/internal/storage"
)

// FetchEventStore is an in-memory implementation of storage.FetchEventStore.
type FetchEventStore struct {
	mu     sync.RWMutex
	byURI  map[string][]*domain.FetchEvent
	events int
}

// NewFetchEventStore creates a new in-memory fetch event store.
func NewFetchEventStore() *FetchEventStore {
	return &FetchEventStore{byURI: make(map[string][]*domain.FetchEvent)}
}

// Insert appends a fetch event.
func (s *FetchEventStore) Insert(_ context.Context, e *domain.FetchEvent) error {
	if e == nil || e.URI == "" {
		return storage.ErrInvalidInput
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	eventCopy := *e
	s.byURI[e.URI] = append(s.byURI[e.URI], &eventCopy)
	s.events++
	return nil
}

// GetByURI retrieves all events for a URI, ordered by timestamp ASC.
func (s *FetchEventStore) GetByURI(_ context.Context, uri string) ([]*domain.FetchEvent, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	events := s.byURI[uri]
	result := make([]*domain.FetchEvent, len(events))
	for i, e := range events {
		eventCopy := *e
		result[i] = &eventCopy
	}

	sort.SliceStable(result, func(i, j int) bool {
		return result[i].TimestampMs < result[j].TimestampMs
	})
	return result, nil
}

// Count returns the total number of stored events.
func (s *FetchEventStore) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.events
}

var _ storage.FetchEventStore = (*FetchEventStore)(nil)
