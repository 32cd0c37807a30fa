// Package ed25519 wraps the signature scheme used for wallet identities and
// exposes the curve membership test that program derived addresses rely on.
package ed25519

import (
	stded25519 "crypto/ed25519"
	"io"

	"filippo.io/edwards25519"
)

const (
	PublicKeySize  = stded25519.PublicKeySize
	PrivateKeySize = stded25519.PrivateKeySize
	SignatureSize  = stded25519.SignatureSize
	SeedSize       = stded25519.SeedSize
)

type (
	PublicKey  = stded25519.PublicKey
	PrivateKey = stded25519.PrivateKey
)

func GenerateKey(rand io.Reader) (PublicKey, PrivateKey, error) {
	return stded25519.GenerateKey(rand)
}

func NewKeyFromSeed(seed []byte) PrivateKey {
	return stded25519.NewKeyFromSeed(seed)
}

func Sign(privateKey PrivateKey, message []byte) []byte {
	return stded25519.Sign(privateKey, message)
}

// Verify reports whether sig is a valid signature of message by publicKey.
// Keys of the wrong length are rejected instead of panicking.
func Verify(publicKey PublicKey, message []byte, sig []byte) bool {
	if len(publicKey) != PublicKeySize || len(sig) != SignatureSize {
		return false
	}
	return stded25519.Verify(publicKey, message, sig)
}

func PublicFromPrivate(privateKey PrivateKey) PublicKey {
	pub, ok := stded25519.PrivateKey(privateKey).Public().(stded25519.PublicKey)
	if !ok {
		return nil
	}
	return PublicKey(pub)
}

// IsOnCurve reports whether b is the canonical encoding of a point on the
// edwards25519 curve, i.e. whether a private key could exist for it.
func IsOnCurve(b []byte) bool {
	if len(b) != PublicKeySize {
		return false
	}
	_, err := new(edwards25519.Point).SetBytes(b)
	return err == nil
}
