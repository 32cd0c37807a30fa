// Package crypto provides the hash functions and key helpers used across
// ratingd.
package crypto

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io"

	"github.com/tos-network/ratingd/common"
	"github.com/tos-network/ratingd/crypto/ed25519"
	"golang.org/x/crypto/sha3"
)

var errInvalidSeed = errors.New("invalid ed25519 seed")

// Keccak256 calculates and returns the Keccak256 hash of the input data.
func Keccak256(data ...[]byte) []byte {
	d := sha3.NewLegacyKeccak256()
	for _, b := range data {
		d.Write(b)
	}
	return d.Sum(nil)
}

// Keccak256Hash calculates and returns the Keccak256 hash of the input data,
// converting it to an internal Hash data structure.
func Keccak256Hash(data ...[]byte) (h common.Hash) {
	d := sha3.NewLegacyKeccak256()
	for _, b := range data {
		d.Write(b)
	}
	d.Sum(h[:0])
	return h
}

// Sha256Hash returns the SHA-256 digest of the concatenated input.
func Sha256Hash(data ...[]byte) (h common.Hash) {
	d := sha256.New()
	for _, b := range data {
		d.Write(b)
	}
	d.Sum(h[:0])
	return h
}

// GenerateKey creates a fresh wallet key from rand.
func GenerateKey(rand io.Reader) (ed25519.PrivateKey, error) {
	_, priv, err := ed25519.GenerateKey(rand)
	return priv, err
}

// HexToKey rebuilds a wallet key from its hex encoded 32 byte seed.
func HexToKey(seedHex string) (ed25519.PrivateKey, error) {
	seed, err := hex.DecodeString(seedHex)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", errInvalidSeed, err)
	}
	if len(seed) != ed25519.SeedSize {
		return nil, fmt.Errorf("%w: want %d bytes, have %d", errInvalidSeed, ed25519.SeedSize, len(seed))
	}
	return ed25519.NewKeyFromSeed(seed), nil
}

// PubkeyToAddress returns the identity of a wallet key.
func PubkeyToAddress(priv ed25519.PrivateKey) common.Address {
	return common.BytesToAddress(ed25519.PublicFromPrivate(priv))
}
