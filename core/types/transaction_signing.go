package types

import (
	"errors"
	"fmt"

	"github.com/tos-network/ratingd/common"
	"github.com/tos-network/ratingd/crypto"
	"github.com/tos-network/ratingd/crypto/ed25519"
)

var (
	ErrInvalidSignature   = errors.New("invalid transaction signature")
	ErrDuplicateSignature = errors.New("duplicate transaction signature")
	ErrInvalidSignerKey   = errors.New("invalid signer private key")
)

// SignTx signs tx with every key, replacing an existing signature by the
// same signer.
func SignTx(tx *Transaction, keys ...ed25519.PrivateKey) error {
	hash := tx.SigningHash()
	for _, key := range keys {
		if len(key) != ed25519.PrivateKeySize {
			return ErrInvalidSignerKey
		}
		signer := crypto.PubkeyToAddress(key)
		sig := Signature{Signer: signer}
		copy(sig.Bytes[:], ed25519.Sign(key, hash[:]))

		replaced := false
		for i := range tx.Signatures {
			if tx.Signatures[i].Signer == signer {
				tx.Signatures[i] = sig
				replaced = true
				break
			}
		}
		if !replaced {
			tx.Signatures = append(tx.Signatures, sig)
		}
	}
	return nil
}

// VerifySignatures checks every attached signature and returns the set of
// authenticated signers. Any invalid or duplicated signature rejects the
// whole transaction.
func (tx *Transaction) VerifySignatures() (map[common.Address]struct{}, error) {
	hash := tx.SigningHash()
	signers := make(map[common.Address]struct{}, len(tx.Signatures))
	for _, sig := range tx.Signatures {
		if _, dup := signers[sig.Signer]; dup {
			return nil, fmt.Errorf("%w: %s", ErrDuplicateSignature, sig.Signer)
		}
		if !ed25519.Verify(sig.Signer.Bytes(), hash[:], sig.Bytes[:]) {
			return nil, fmt.Errorf("%w: %s", ErrInvalidSignature, sig.Signer)
		}
		signers[sig.Signer] = struct{}{}
	}
	return signers, nil
}
