package domain

// ArtType classifies a resolved token.
type ArtType string

// Art types. Exactly one applies to every Art.
const (
	ArtTypeNFT    ArtType = "NFT"
	ArtTypePrint  ArtType = "Print"
	ArtTypeMaster ArtType = "Master"
)

// Art is the display-ready view of a token. It is derived on every
// resolution call and never persisted.
type Art struct {
	URI                  string   `json:"uri"`
	Mint                 string   `json:"mint"`
	Title                string   `json:"title"`
	SellerFeeBasisPoints uint16   `json:"seller_fee_basis_points"`
	Creators             []Artist `json:"creators"`
	Type                 ArtType  `json:"type"`
	EditionNumber        *uint64  `json:"edition,omitempty"`   // Print only
	Supply               *uint64  `json:"supply,omitempty"`    // Print and Master
	MaxSupply            *uint64  `json:"maxSupply,omitempty"` // Master only, nil = unlimited
}

// Artist is a creator enriched with registry data.
type Artist struct {
	Address  string `json:"address"`
	Verified bool   `json:"verified"`
	Share    uint8  `json:"share"`
	Image    string `json:"image"`
	Name     string `json:"name"`
	Link     string `json:"link"`
}
