package memory

import (
	"context"
	"sync"

	"solana-art-lab/internal/domain"
	"solana-art-lab/internal/storage"
)

// RecordStore is an in-memory implementation of storage.RecordStore.
// Writers upsert records; readers get copy-on-write snapshots, so a
// snapshot handed out is never mutated afterwards.
type RecordStore struct {
	mu      sync.RWMutex
	current *storage.Snapshot
}

// NewRecordStore creates a new empty record store.
func NewRecordStore() *RecordStore {
	return &RecordStore{current: storage.EmptySnapshot()}
}

// Snapshot returns the current collections.
func (s *RecordStore) Snapshot(_ context.Context) (*storage.Snapshot, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.current, nil
}

// PutMetadata upserts a metadata record under its account address.
func (s *RecordStore) PutMetadata(address string, m *domain.Metadata) error {
	if address == "" || m == nil {
		return storage.ErrInvalidInput
	}
	metaCopy := *m
	metaCopy.Data.Creators = append([]domain.Creator(nil), m.Data.Creators...)

	s.update(func(next *storage.Snapshot) {
		if prev, ok := next.Metadata[address]; ok && prev.Mint != metaCopy.Mint {
			delete(next.MetadataByMint, prev.Mint)
		}
		next.Metadata[address] = &metaCopy
		if metaCopy.Mint != "" {
			next.MetadataByMint[metaCopy.Mint] = &metaCopy
		}
	})
	return nil
}

// PutEdition upserts an edition record.
func (s *RecordStore) PutEdition(address string, e *domain.Edition) error {
	if address == "" || e == nil {
		return storage.ErrInvalidInput
	}
	edCopy := *e
	s.update(func(next *storage.Snapshot) {
		next.Editions[address] = &edCopy
	})
	return nil
}

// PutMasterEdition upserts a master edition record of any variant.
func (s *RecordStore) PutMasterEdition(address string, m domain.MasterEdition) error {
	if address == "" || m == nil {
		return storage.ErrInvalidInput
	}
	s.update(func(next *storage.Snapshot) {
		next.MasterEditions[address] = m
	})
	return nil
}

// PutCreator upserts a whitelisted creator keyed by creator address.
// Display fields already known for the address are kept when the update
// leaves them empty, so on-chain refreshes do not wipe configured profiles.
func (s *RecordStore) PutCreator(c *domain.WhitelistedCreator) error {
	if c == nil || c.Address == "" {
		return storage.ErrInvalidInput
	}
	creatorCopy := *c
	s.update(func(next *storage.Snapshot) {
		if prev, ok := next.Creators[c.Address]; ok {
			mergeProfile(&creatorCopy, prev)
		}
		next.Creators[c.Address] = &creatorCopy
	})
	return nil
}

// Len returns the number of records per collection.
func (s *RecordStore) Len() (metadata, editions, masterEditions, creators int) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.current.Metadata), len(s.current.Editions), len(s.current.MasterEditions), len(s.current.Creators)
}

// update clones the current snapshot, applies fn and publishes the result.
func (s *RecordStore) update(fn func(next *storage.Snapshot)) {
	s.mu.Lock()
	defer s.mu.Unlock()

	next := cloneSnapshot(s.current)
	fn(next)
	s.current = next
}

func cloneSnapshot(src *storage.Snapshot) *storage.Snapshot {
	dst := &storage.Snapshot{
		Metadata:       make(map[string]*domain.Metadata, len(src.Metadata)),
		MetadataByMint: make(map[string]*domain.Metadata, len(src.MetadataByMint)),
		Editions:       make(map[string]*domain.Edition, len(src.Editions)),
		MasterEditions: make(map[string]domain.MasterEdition, len(src.MasterEditions)),
		Creators:       make(map[string]*domain.WhitelistedCreator, len(src.Creators)),
	}
	for k, v := range src.Metadata {
		dst.Metadata[k] = v
	}
	for k, v := range src.MetadataByMint {
		dst.MetadataByMint[k] = v
	}
	for k, v := range src.Editions {
		dst.Editions[k] = v
	}
	for k, v := range src.MasterEditions {
		dst.MasterEditions[k] = v
	}
	for k, v := range src.Creators {
		dst.Creators[k] = v
	}
	return dst
}

func mergeProfile(dst, prev *domain.WhitelistedCreator) {
	if dst.Name == "" {
		dst.Name = prev.Name
	}
	if dst.Image == "" {
		dst.Image = prev.Image
	}
	if dst.Twitter == "" {
		dst.Twitter = prev.Twitter
	}
	if dst.Description == "" {
		dst.Description = prev.Description
	}
}

var _ storage.RecordStore = (*RecordStore)(nil)
