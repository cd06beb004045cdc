package metaplex

import (
	"crypto/sha256"
	"errors"
	"fmt"

	"filippo.io/edwards25519"
)

// ErrNoViableBump is returned when every bump seed yields an on-curve point.
var ErrNoViableBump = errors.New("unable to find a viable program address bump seed")

const maxSeedLength = 32

// FindProgramAddress derives a Program Derived Address:
// sha256(seeds || bump || programID || "ProgramDerivedAddress"),
// searching bump from 255 down until the hash is off the ed25519 curve.
func FindProgramAddress(seeds [][]byte, programID PublicKey) (PublicKey, uint8, error) {
	for _, seed := range seeds {
		if len(seed) > maxSeedLength {
			return PublicKey{}, 0, fmt.Errorf("seed length %d exceeds %d", len(seed), maxSeedLength)
		}
	}

	for bump := 255; bump >= 0; bump-- {
		data := make([]byte, 0, 128)
		for _, seed := range seeds {
			data = append(data, seed...)
		}
		data = append(data, byte(bump))
		data = append(data, programID[:]...)
		data = append(data, []byte("ProgramDerivedAddress")...)

		hash := sha256.Sum256(data)
		if !isOnCurve(hash[:]) {
			return PublicKey(hash), uint8(bump), nil
		}
	}

	return PublicKey{}, 0, ErrNoViableBump
}

// MetadataAddress derives the metadata account of a mint.
func MetadataAddress(mint PublicKey) (PublicKey, error) {
	program := MustParsePublicKey(TokenMetadataProgramID)
	addr, _, err := FindProgramAddress([][]byte{
		[]byte(metadataPrefix),
		program[:],
		mint[:],
	}, program)
	return addr, err
}

// EditionAddress derives the edition account of a mint. The same address
// holds either an Edition or a MasterEdition record.
func EditionAddress(mint PublicKey) (PublicKey, error) {
	program := MustParsePublicKey(TokenMetadataProgramID)
	addr, _, err := FindProgramAddress([][]byte{
		[]byte(metadataPrefix),
		program[:],
		mint[:],
		[]byte(editionSuffix),
	}, program)
	return addr, err
}

func isOnCurve(point []byte) bool {
	if len(point) != 32 {
		return false
	}
	_, err := new(edwards25519.Point).SetBytes(point)
	return err == nil
}
