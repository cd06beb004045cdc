package solana

import (
	"encoding/base64"
	"fmt"
)

// AccountInfo represents Solana account information.
type AccountInfo struct {
	Lamports   uint64 `json:"lamports"`
	Owner      string `json:"owner"`
	Data       string `json:"data"` // base64 encoded
	Executable bool   `json:"executable"`
	RentEpoch  uint64 `json:"rentEpoch"`
}

// Bytes decodes the account data.
func (a *AccountInfo) Bytes() ([]byte, error) {
	if a == nil {
		return nil, nil
	}
	b, err := base64.StdEncoding.DecodeString(a.Data)
	if err != nil {
		return nil, fmt.Errorf("decode account data: %w", err)
	}
	return b, nil
}

// KeyedAccount pairs an account with its address.
type KeyedAccount struct {
	Pubkey  string
	Account AccountInfo
}

// ProgramAccountsOpts narrows getProgramAccounts results.
type ProgramAccountsOpts struct {
	DataSize uint64         // exact data length, 0 for any
	Memcmp   []MemcmpFilter // all must match
}

// MemcmpFilter matches raw bytes at an offset of the account data.
type MemcmpFilter struct {
	Offset uint64
	Bytes  []byte
}
