package domain

import "encoding/json"

// ExtendedMetadata is the off-chain JSON descriptor referenced by a
// Metadata URI. Unknown fields are kept in Raw only.
type ExtendedMetadata struct {
	Name                 string             `json:"name,omitempty"`
	Symbol               string             `json:"symbol,omitempty"`
	Description          string             `json:"description,omitempty"`
	Image                string             `json:"image,omitempty"`
	AnimationURL         string             `json:"animation_url,omitempty"`
	ExternalURL          string             `json:"external_url,omitempty"`
	SellerFeeBasisPoints *uint16            `json:"seller_fee_basis_points,omitempty"`
	Attributes           []Attribute        `json:"attributes,omitempty"`
	Properties           ExtendedProperties `json:"properties"`

	// Raw is the JSON text the descriptor was parsed from.
	Raw json.RawMessage `json:"-"`
}

// Attribute is a single trait.
type Attribute struct {
	TraitType   string          `json:"trait_type,omitempty"`
	Value       json.RawMessage `json:"value,omitempty"`
	DisplayType string          `json:"display_type,omitempty"`
}

// ExtendedProperties groups files and creators.
type ExtendedProperties struct {
	Category string            `json:"category,omitempty"`
	Files    []ExtendedFile    `json:"files,omitempty"`
	Creators []ExtendedCreator `json:"creators,omitempty"`
}

// ExtendedFile is one entry of the descriptor's file list.
type ExtendedFile struct {
	URI  string `json:"uri"`
	Type string `json:"type,omitempty"`
	CDN  bool   `json:"cdn,omitempty"`
}

// ExtendedCreator is a creator entry as written in the descriptor.
type ExtendedCreator struct {
	Address string `json:"address"`
	Share   int    `json:"share"`
}
