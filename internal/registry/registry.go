// Package registry maps creator addresses to storefront enrichment.
package registry

import (
	"solana-art-lab/internal/domain"
	"solana-art-lab/internal/storage"
)

// Lookup resolves a creator address to its enrichment record.
type Lookup interface {
	Lookup(address string) (*domain.WhitelistedCreator, bool)
}

// Profile is the display data configured for a creator.
type Profile struct {
	Address     string `mapstructure:"address"`
	Name        string `mapstructure:"name"`
	Image       string `mapstructure:"image"`
	Twitter     string `mapstructure:"twitter"`
	Description string `mapstructure:"description"`
}

// Registry is an immutable creator lookup built once from a snapshot.
type Registry struct {
	byAddress map[string]*domain.WhitelistedCreator
}

// New builds a registry from snapshot creators. Profiles fill display
// fields the on-chain records lack; a profile without an on-chain record
// still enriches its address.
func New(creators map[string]*domain.WhitelistedCreator, profiles ...Profile) *Registry {
	byAddress := make(map[string]*domain.WhitelistedCreator, len(creators)+len(profiles))
	for addr, c := range creators {
		if c == nil {
			continue
		}
		cCopy := *c
		byAddress[addr] = &cCopy
	}

	for _, p := range profiles {
		if p.Address == "" {
			continue
		}
		c, ok := byAddress[p.Address]
		if !ok {
			c = &domain.WhitelistedCreator{Address: p.Address}
			byAddress[p.Address] = c
		}
		if c.Name == "" {
			c.Name = p.Name
		}
		if c.Image == "" {
			c.Image = p.Image
		}
		if c.Twitter == "" {
			c.Twitter = p.Twitter
		}
		if c.Description == "" {
			c.Description = p.Description
		}
	}

	return &Registry{byAddress: byAddress}
}

// FromSnapshot builds a registry from the snapshot's creator collection.
func FromSnapshot(snap *storage.Snapshot, profiles ...Profile) *Registry {
	if snap == nil {
		return New(nil, profiles...)
	}
	return New(snap.Creators, profiles...)
}

// Lookup returns the enrichment for address, if any.
func (r *Registry) Lookup(address string) (*domain.WhitelistedCreator, bool) {
	if r == nil {
		return nil, false
	}
	c, ok := r.byAddress[address]
	return c, ok
}

// Len returns the number of known creators.
func (r *Registry) Len() int {
	if r == nil {
		return 0
	}
	return len(r.byAddress)
}

var _ Lookup = (*Registry)(nil)
