package domain

// Metadata represents a decoded Token Metadata account.
// Edition and MasterEdition hold the edition PDA derived from Mint; which
// collection the PDA resolves in decides the Art type.
type Metadata struct {
	Key                 uint8
	UpdateAuthority     string // base58
	Mint                string // base58 mint address
	Data                MetadataData
	PrimarySaleHappened bool
	IsMutable           bool
	Edition             string // edition PDA (may be empty)
	MasterEdition       string // master edition PDA (may be empty)
}

// MetadataData is the display part of a Metadata record.
type MetadataData struct {
	Name                 string
	Symbol               string
	URI                  string
	SellerFeeBasisPoints uint16
	Creators             []Creator // on-chain order
}

// Creator is one entry of the on-chain creator list.
// Shares are not required to sum to 100.
type Creator struct {
	Address  string
	Verified bool
	Share    uint8
}
