package metaplex

import (
	"fmt"

	"github.com/mr-tron/base58"
)

// PublicKey is a raw 32-byte Solana address.
type PublicKey [32]byte

// String returns the base58 encoding.
func (p PublicKey) String() string {
	return base58.Encode(p[:])
}

// IsZero reports whether all bytes are zero.
func (p PublicKey) IsZero() bool {
	return p == PublicKey{}
}

// ParsePublicKey decodes a base58 address.
func ParsePublicKey(s string) (PublicKey, error) {
	var pk PublicKey
	raw, err := base58.Decode(s)
	if err != nil {
		return pk, fmt.Errorf("decode base58 %q: %w", s, err)
	}
	if len(raw) != len(pk) {
		return pk, fmt.Errorf("public key %q: got %d bytes, want 32", s, len(raw))
	}
	copy(pk[:], raw)
	return pk, nil
}

// MustParsePublicKey is ParsePublicKey for compile-time constants.
func MustParsePublicKey(s string) PublicKey {
	pk, err := ParsePublicKey(s)
	if err != nil {
		panic(err)
	}
	return pk
}
