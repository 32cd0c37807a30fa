// Package pda derives program addresses: account identities computed from a
// seed tuple and a program id that no private key can sign for.
package pda

import (
	"errors"

	"github.com/tos-network/ratingd/common"
	"github.com/tos-network/ratingd/crypto"
	"github.com/tos-network/ratingd/crypto/ed25519"
	"github.com/tos-network/ratingd/params"
)

var (
	ErrMaxSeedLengthExceeded = errors.New("pda: seed longer than 32 bytes")
	ErrMaxSeedsExceeded      = errors.New("pda: too many seeds")
	ErrInvalidSeeds          = errors.New("pda: derived address lies on the curve")
	ErrNoViableBump          = errors.New("pda: no viable bump seed")
)

// CreateProgramAddress hashes seeds, the program id and the derivation
// marker into an address. The result is rejected when it decodes as a curve
// point, since a private key could then exist for it.
func CreateProgramAddress(seeds [][]byte, program common.Address) (common.Address, error) {
	if len(seeds) > params.MaxSeeds {
		return common.Address{}, ErrMaxSeedsExceeded
	}
	for _, seed := range seeds {
		if len(seed) > params.MaxSeedLength {
			return common.Address{}, ErrMaxSeedLengthExceeded
		}
	}
	parts := make([][]byte, 0, len(seeds)+2)
	parts = append(parts, seeds...)
	parts = append(parts, program.Bytes(), []byte(params.ProgramDerivedAddressMarker))
	hash := crypto.Sha256Hash(parts...)
	if ed25519.IsOnCurve(hash[:]) {
		return common.Address{}, ErrInvalidSeeds
	}
	return common.Address(hash), nil
}

// FindProgramAddress searches bump values from 255 downwards and returns the
// first off-curve address together with its bump. The bump is appended as
// the final seed, so at most MaxSeeds-1 seeds may be supplied.
func FindProgramAddress(seeds [][]byte, program common.Address) (common.Address, uint8, error) {
	if len(seeds) >= params.MaxSeeds {
		return common.Address{}, 0, ErrMaxSeedsExceeded
	}
	withBump := make([][]byte, len(seeds)+1)
	copy(withBump, seeds)
	bump := []byte{0}
	withBump[len(seeds)] = bump

	for b := 255; b >= 0; b-- {
		bump[0] = uint8(b)
		addr, err := CreateProgramAddress(withBump, program)
		switch {
		case err == nil:
			return addr, uint8(b), nil
		case errors.Is(err, ErrInvalidSeeds):
			continue
		default:
			return common.Address{}, 0, err
		}
	}
	return common.Address{}, 0, ErrNoViableBump
}
