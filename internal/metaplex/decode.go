package metaplex

import (
	"errors"
	"fmt"
	"strings"

	"github.com/near/borsh-go"

	"solana-art-lab/internal/domain"
)

// Decoding errors.
var (
	ErrEmptyData  = errors.New("empty account data")
	ErrUnknownKey = errors.New("unknown account key")
)

// On-chain layouts. Field order is the borsh wire order.

type rawCreator struct {
	Address  PublicKey
	Verified bool
	Share    uint8
}

type rawData struct {
	Name                 string
	Symbol               string
	URI                  string
	SellerFeeBasisPoints uint16
	Creators             *[]rawCreator
}

type rawMetadata struct {
	Key                 uint8
	UpdateAuthority     PublicKey
	Mint                PublicKey
	Data                rawData
	PrimarySaleHappened bool
	IsMutable           bool
}

type rawEdition struct {
	Key    uint8
	Parent PublicKey
	Number uint64
}

type rawMasterEditionV1 struct {
	Key                              uint8
	Supply                           uint64
	MaxSupply                        *uint64
	PrintingMint                     PublicKey
	OneTimePrintingAuthorizationMint PublicKey
}

// maxSupplyOffset is the position of the MaxSupply option tag in both
// master edition layouts: key (1) then supply (8).
const maxSupplyOffset = 9

type rawMasterEditionV2 struct {
	Key       uint8
	Supply    uint64
	MaxSupply *uint64
}

type rawWhitelistedCreator struct {
	Key       uint8
	Address   PublicKey
	Activated bool
}

// DecodeMetadata decodes a MetadataV1 account. Edition and MasterEdition
// are filled with the edition PDA of the mint.
func DecodeMetadata(data []byte) (*domain.Metadata, error) {
	if err := expectKey(data, KeyMetadataV1); err != nil {
		return nil, err
	}

	var raw rawMetadata
	if err := borsh.Deserialize(&raw, data); err != nil {
		return nil, fmt.Errorf("deserialize metadata: %w", err)
	}

	meta := &domain.Metadata{
		Key:                 raw.Key,
		UpdateAuthority:     raw.UpdateAuthority.String(),
		Mint:                raw.Mint.String(),
		PrimarySaleHappened: raw.PrimarySaleHappened,
		IsMutable:           raw.IsMutable,
		Data: domain.MetadataData{
			Name:                 trimPadding(raw.Data.Name),
			Symbol:               trimPadding(raw.Data.Symbol),
			URI:                  trimPadding(raw.Data.URI),
			SellerFeeBasisPoints: raw.Data.SellerFeeBasisPoints,
		},
	}

	if raw.Data.Creators != nil {
		for _, c := range *raw.Data.Creators {
			meta.Data.Creators = append(meta.Data.Creators, domain.Creator{
				Address:  c.Address.String(),
				Verified: c.Verified,
				Share:    c.Share,
			})
		}
	}

	edition, err := EditionAddress(raw.Mint)
	if err != nil {
		return nil, fmt.Errorf("derive edition address: %w", err)
	}
	meta.Edition = edition.String()
	meta.MasterEdition = edition.String()

	return meta, nil
}

// DecodeEdition decodes an EditionV1 account.
func DecodeEdition(data []byte) (*domain.Edition, error) {
	if err := expectKey(data, KeyEditionV1); err != nil {
		return nil, err
	}

	var raw rawEdition
	if err := borsh.Deserialize(&raw, data); err != nil {
		return nil, fmt.Errorf("deserialize edition: %w", err)
	}

	return &domain.Edition{
		Key:    raw.Key,
		Parent: raw.Parent.String(),
		Number: raw.Number,
	}, nil
}

// DecodeMasterEdition decodes a MasterEditionV1 or MasterEditionV2 account.
func DecodeMasterEdition(data []byte) (domain.MasterEdition, error) {
	if len(data) == 0 {
		return nil, ErrEmptyData
	}

	switch data[0] {
	case KeyMasterEditionV1:
		var raw rawMasterEditionV1
		if err := borsh.Deserialize(&raw, data); err != nil {
			return nil, fmt.Errorf("deserialize master edition v1: %w", err)
		}
		return &domain.MasterEditionV1{
			Key:                              raw.Key,
			CurrentSupply:                    raw.Supply,
			Max:                              optionalU64(data, maxSupplyOffset, raw.MaxSupply),
			PrintingMint:                     raw.PrintingMint.String(),
			OneTimePrintingAuthorizationMint: raw.OneTimePrintingAuthorizationMint.String(),
		}, nil
	case KeyMasterEditionV2:
		var raw rawMasterEditionV2
		if err := borsh.Deserialize(&raw, data); err != nil {
			return nil, fmt.Errorf("deserialize master edition v2: %w", err)
		}
		return &domain.MasterEditionV2{
			Key:           raw.Key,
			CurrentSupply: raw.Supply,
			Max:           optionalU64(data, maxSupplyOffset, raw.MaxSupply),
		}, nil
	default:
		return nil, fmt.Errorf("%w: %d is not a master edition", ErrUnknownKey, data[0])
	}
}

// DecodeWhitelistedCreator decodes a storefront WhitelistedCreatorV1 account.
func DecodeWhitelistedCreator(data []byte) (*domain.WhitelistedCreator, error) {
	if err := expectKey(data, KeyWhitelistedCreatorV1); err != nil {
		return nil, err
	}

	var raw rawWhitelistedCreator
	if err := borsh.Deserialize(&raw, data); err != nil {
		return nil, fmt.Errorf("deserialize whitelisted creator: %w", err)
	}

	return &domain.WhitelistedCreator{
		Address:   raw.Address.String(),
		Activated: raw.Activated,
	}, nil
}

// Account is a decoded account. Exactly one record field is set.
type Account struct {
	Address       string
	Metadata      *domain.Metadata
	Edition       *domain.Edition
	MasterEdition domain.MasterEdition
	Creator       *domain.WhitelistedCreator
}

// DecodeAccount dispatches on owner program and key byte.
func DecodeAccount(address, owner string, data []byte) (*Account, error) {
	if len(data) == 0 {
		return nil, ErrEmptyData
	}

	acc := &Account{Address: address}
	var err error

	switch owner {
	case TokenMetadataProgramID:
		switch data[0] {
		case KeyMetadataV1:
			acc.Metadata, err = DecodeMetadata(data)
		case KeyEditionV1:
			acc.Edition, err = DecodeEdition(data)
		case KeyMasterEditionV1, KeyMasterEditionV2:
			acc.MasterEdition, err = DecodeMasterEdition(data)
		default:
			return nil, fmt.Errorf("%w: token metadata key %d", ErrUnknownKey, data[0])
		}
	case MetaplexProgramID:
		if data[0] != KeyWhitelistedCreatorV1 {
			return nil, fmt.Errorf("%w: metaplex key %d", ErrUnknownKey, data[0])
		}
		acc.Creator, err = DecodeWhitelistedCreator(data)
	default:
		return nil, fmt.Errorf("%w: owner %s", ErrUnknownKey, owner)
	}

	if err != nil {
		return nil, err
	}
	return acc, nil
}

func expectKey(data []byte, key uint8) error {
	if len(data) == 0 {
		return ErrEmptyData
	}
	if data[0] != key {
		return fmt.Errorf("%w: got %d, want %d", ErrUnknownKey, data[0], key)
	}
	return nil
}

// trimPadding strips the NUL padding Metaplex writes after fixed-size strings.
func trimPadding(s string) string {
	return strings.TrimRight(s, "\x00")
}

// optionalU64 returns decoded only when the borsh option tag at offset is
// Some. borsh-go decodes None into a pointer to zero.
func optionalU64(data []byte, offset int, decoded *uint64) *uint64 {
	if offset >= len(data) || data[offset] == 0 {
		return nil
	}
	return decoded
}
