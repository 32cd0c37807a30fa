package main

import (
	"fmt"
	"strings"

	"github.com/tos-network/ratingd/crypto/ed25519"
	"github.com/tyler-smith/go-bip39"
)

const defaultMnemonicBits = 128

func generateMnemonic(bits int) (string, error) {
	if err := validateMnemonicBits(bits); err != nil {
		return "", err
	}
	entropy, err := bip39.NewEntropy(bits)
	if err != nil {
		return "", err
	}
	return bip39.NewMnemonic(entropy)
}

func validateMnemonicBits(bits int) error {
	switch bits {
	case 128, 160, 192, 224, 256:
		return nil
	default:
		return fmt.Errorf("invalid mnemonic bits %d (allowed: 128,160,192,224,256)", bits)
	}
}

// keyFromMnemonic turns a BIP39 phrase into a wallet key. The first 32 bytes
// of the BIP39 seed are the ed25519 seed, with no derivation path applied.
func keyFromMnemonic(mnemonic, passphrase string) (ed25519.PrivateKey, error) {
	seed, err := bip39.NewSeedWithErrorChecking(strings.Join(strings.Fields(mnemonic), " "), passphrase)
	if err != nil {
		return nil, err
	}
	return ed25519.NewKeyFromSeed(seed[:ed25519.SeedSize]), nil
}
