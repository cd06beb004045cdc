package domain

// Edition is a minted print of a master work.
type Edition struct {
	Key    uint8
	Parent string // MasterEdition address
	Number uint64 // 0 for the master record, immutable once minted
}

// MasterEdition is the capability set shared by every master edition
// variant. Resolution code depends only on this interface.
type MasterEdition interface {
	Supply() uint64
	MaxSupply() *uint64 // nil means unlimited
}

// MasterEditionV1 is the legacy master edition layout with printing mints.
type MasterEditionV1 struct {
	Key                              uint8
	CurrentSupply                    uint64
	Max                              *uint64
	PrintingMint                     string
	OneTimePrintingAuthorizationMint string
}

// Supply returns the number of editions minted so far.
func (m *MasterEditionV1) Supply() uint64 { return m.CurrentSupply }

// MaxSupply returns the optional ceiling.
func (m *MasterEditionV1) MaxSupply() *uint64 { return m.Max }

// MasterEditionV2 is the current master edition layout.
type MasterEditionV2 struct {
	Key           uint8
	CurrentSupply uint64
	Max           *uint64
}

// Supply returns the number of editions minted so far.
func (m *MasterEditionV2) Supply() uint64 { return m.CurrentSupply }

// MaxSupply returns the optional ceiling.
func (m *MasterEditionV2) MaxSupply() *uint64 { return m.Max }

var (
	_ MasterEdition = (*MasterEditionV1)(nil)
	_ MasterEdition = (*MasterEditionV2)(nil)
)
