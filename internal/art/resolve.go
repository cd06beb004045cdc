// Package art joins Metaplex records into display-ready Art.
package art

import (
	"sort"

	"solana-art-lab/internal/domain"
	"solana-art-lab/internal/registry"
)

// Resolve builds the Art view of meta. It never fails: a nil meta yields a
// default NFT, dangling edition references degrade to NFT and creators
// without a registry entry get empty display fields.
//
// An edition that resolves without its parent master does not fall back to
// the master-edition branch.
func Resolve(
	meta *domain.Metadata,
	editions map[string]*domain.Edition,
	masterEditions map[string]domain.MasterEdition,
	creators registry.Lookup,
) domain.Art {
	result := domain.Art{
		Type:     domain.ArtTypeNFT,
		Creators: []domain.Artist{},
	}
	if meta == nil {
		return result
	}

	result.URI = meta.Data.URI
	result.Mint = meta.Mint
	result.Title = meta.Data.Name
	result.SellerFeeBasisPoints = meta.Data.SellerFeeBasisPoints

	if edition := lookupEdition(editions, meta.Edition); edition != nil {
		if parent := lookupMaster(masterEditions, edition.Parent); parent != nil {
			number := edition.Number
			supply := parent.Supply()
			result.Type = domain.ArtTypePrint
			result.EditionNumber = &number
			result.Supply = &supply
		}
	} else if master := lookupMaster(masterEditions, meta.MasterEdition); master != nil {
		supply := master.Supply()
		result.Type = domain.ArtTypeMaster
		result.Supply = &supply
		if maxSupply := master.MaxSupply(); maxSupply != nil {
			m := *maxSupply
			result.MaxSupply = &m
		}
	}

	result.Creators = enrichCreators(meta.Data.Creators, creators)
	return result
}

func lookupEdition(editions map[string]*domain.Edition, address string) *domain.Edition {
	if address == "" {
		return nil
	}
	return editions[address]
}

func lookupMaster(masters map[string]domain.MasterEdition, address string) domain.MasterEdition {
	if address == "" {
		return nil
	}
	return masters[address]
}

// enrichCreators attaches registry data and orders by share desc, name asc.
func enrichCreators(creators []domain.Creator, lookup registry.Lookup) []domain.Artist {
	artists := make([]domain.Artist, 0, len(creators))
	for _, c := range creators {
		artist := domain.Artist{
			Address:  c.Address,
			Verified: c.Verified,
			Share:    c.Share,
		}
		if lookup != nil {
			if known, ok := lookup.Lookup(c.Address); ok && known != nil {
				artist.Image = known.Image
				artist.Name = known.Name
				artist.Link = known.Twitter
			}
		}
		artists = append(artists, artist)
	}

	sort.SliceStable(artists, func(i, j int) bool {
		if artists[i].Share != artists[j].Share {
			return artists[i].Share > artists[j].Share
		}
		return artists[i].Name < artists[j].Name
	})
	return artists
}
