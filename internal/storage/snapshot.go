package storage

import "solana-art-lab/internal/domain"

// Snapshot is an immutable view of the record collections, each keyed by
// base58 account address. Creators is keyed by creator address.
type Snapshot struct {
	Metadata       map[string]*domain.Metadata // keyed by metadata account
	MetadataByMint map[string]*domain.Metadata // keyed by mint
	Editions       map[string]*domain.Edition
	MasterEditions map[string]domain.MasterEdition
	Creators       map[string]*domain.WhitelistedCreator
}

// EmptySnapshot returns a snapshot with no records.
func EmptySnapshot() *Snapshot {
	return &Snapshot{
		Metadata:       map[string]*domain.Metadata{},
		MetadataByMint: map[string]*domain.Metadata{},
		Editions:       map[string]*domain.Edition{},
		MasterEditions: map[string]domain.MasterEdition{},
		Creators:       map[string]*domain.WhitelistedCreator{},
	}
}

// FindMetadata looks up metadata by account address, then by mint.
// Returns nil if neither matches.
func (s *Snapshot) FindMetadata(id string) *domain.Metadata {
	if s == nil || id == "" {
		return nil
	}
	if m, ok := s.Metadata[id]; ok {
		return m
	}
	return s.MetadataByMint[id]
}
