// Package metaplex decodes Metaplex Token Metadata and storefront accounts
// and derives their program addresses.
package metaplex

// Program IDs.
const (
	TokenMetadataProgramID = "metaqbxxUerdq28cj1RbAWkYQm3ybzjb6a8bt518x1s"
	MetaplexProgramID      = "p1exdMJcjVao65QdewkaZRUnU6VPSXhus9n2GzWfh98"
)

// Token Metadata account keys (first byte of account data).
const (
	KeyUninitialized   uint8 = 0
	KeyEditionV1       uint8 = 1
	KeyMasterEditionV1 uint8 = 2
	KeyMetadataV1      uint8 = 4
	KeyMasterEditionV2 uint8 = 6
)

// Metaplex storefront account keys.
const (
	KeyWhitelistedCreatorV1 uint8 = 4
)

// PDA seed prefixes.
const (
	metadataPrefix = "metadata"
	editionSuffix  = "edition"
)
