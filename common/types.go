// Package common contains the identity and hash types shared by every layer
// of ratingd.
package common

import (
	"bytes"
	"encoding/hex"
	"errors"
	"fmt"

	"github.com/mr-tron/base58"
)

// Lengths of hashes and addresses in bytes.
const (
	HashLength    = 32
	AddressLength = 32
)

var (
	errInvalidAddress = errors.New("invalid address")
	errInvalidHash    = errors.New("invalid hash")
)

// Hash represents the 32 byte digest of arbitrary data.
type Hash [HashLength]byte

// BytesToHash sets b to hash.
// If b is larger than len(h), b will be cropped from the left.
func BytesToHash(b []byte) Hash {
	var h Hash
	h.SetBytes(b)
	return h
}

// HexToHash sets byte representation of s to hash.
// If b is larger than len(h), b will be cropped from the left.
func HexToHash(s string) Hash { return BytesToHash(FromHex(s)) }

// Bytes gets the byte representation of the underlying hash.
func (h Hash) Bytes() []byte { return h[:] }

// Hex converts a hash to a hex string.
func (h Hash) Hex() string { return "0x" + hex.EncodeToString(h[:]) }

// String implements the stringer interface and is used also by the logger when
// doing full logging into a file.
func (h Hash) String() string { return h.Hex() }

// SetBytes sets the hash to the value of b.
// If b is larger than len(h), b will be cropped from the left.
func (h *Hash) SetBytes(b []byte) {
	if len(b) > len(h) {
		b = b[len(b)-HashLength:]
	}
	copy(h[HashLength-len(b):], b)
}

// MarshalText returns the hex representation of h.
func (h Hash) MarshalText() ([]byte, error) { return []byte(h.Hex()), nil }

// UnmarshalText parses a hash in hex syntax.
func (h *Hash) UnmarshalText(input []byte) error {
	raw := FromHex(string(input))
	if len(raw) != HashLength {
		return fmt.Errorf("%w: want %d bytes, have %d", errInvalidHash, HashLength, len(raw))
	}
	copy(h[:], raw)
	return nil
}

// Address is a 32 byte account identity. Wallet identities are ed25519 public
// keys; program derived addresses are deliberately off the curve.
type Address [AddressLength]byte

// BytesToAddress returns Address with value b.
// If b is larger than len(a), b will be cropped from the left.
func BytesToAddress(b []byte) Address {
	var a Address
	a.SetBytes(b)
	return a
}

// Base58ToAddress decodes the textual form of an address.
func Base58ToAddress(s string) (Address, error) {
	raw, err := base58.Decode(s)
	if err != nil {
		return Address{}, fmt.Errorf("%w: %v", errInvalidAddress, err)
	}
	if len(raw) != AddressLength {
		return Address{}, fmt.Errorf("%w: want %d bytes, have %d", errInvalidAddress, AddressLength, len(raw))
	}
	return BytesToAddress(raw), nil
}

// MustBase58ToAddress is Base58ToAddress for compile-time constants.
func MustBase58ToAddress(s string) Address {
	a, err := Base58ToAddress(s)
	if err != nil {
		panic(err)
	}
	return a
}

// HexToAddress returns Address with byte values of s.
func HexToAddress(s string) Address { return BytesToAddress(FromHex(s)) }

// Bytes gets the byte representation of the underlying address.
func (a Address) Bytes() []byte { return a[:] }

// Hex returns the 0x-prefixed hex form of the address.
func (a Address) Hex() string { return "0x" + hex.EncodeToString(a[:]) }

// String returns the base58 form of the address.
func (a Address) String() string { return base58.Encode(a[:]) }

// IsZero reports whether a is the all-zero address.
func (a Address) IsZero() bool { return a == Address{} }

// Cmp compares two addresses byte-wise.
func (a Address) Cmp(other Address) int { return bytes.Compare(a[:], other[:]) }

// SetBytes sets the address to the value of b.
// If b is larger than len(a), b will be cropped from the left.
func (a *Address) SetBytes(b []byte) {
	if len(b) > len(a) {
		b = b[len(b)-AddressLength:]
	}
	copy(a[AddressLength-len(b):], b)
}

// MarshalText returns the base58 representation of a.
func (a Address) MarshalText() ([]byte, error) { return []byte(a.String()), nil }

// UnmarshalText parses an address in base58 syntax.
func (a *Address) UnmarshalText(input []byte) error {
	addr, err := Base58ToAddress(string(input))
	if err != nil {
		return err
	}
	*a = addr
	return nil
}
