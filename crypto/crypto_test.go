package crypto

import (
	"bytes"
	"encoding/hex"
	"testing"

	"github.com/tos-network/ratingd/crypto/ed25519"
)

func TestKeccak256KnownVector(t *testing.T) {
	have := hex.EncodeToString(Keccak256(nil))
	if want := "c5d2460186f7233c927e7db2dcc703c0e500b653ca82273b7bfad8045d85a470"; have != want {
		t.Fatalf("keccak(nil) mismatch: have %s want %s", have, want)
	}
}

func TestSha256HashConcatenates(t *testing.T) {
	if Sha256Hash([]byte("ab"), []byte("c")) != Sha256Hash([]byte("abc")) {
		t.Fatalf("multi-part hash differs from single-part hash")
	}
	have := Sha256Hash([]byte("abc")).Hex()
	if want := "0xba7816bf8f01cfea414140de5dae2223b00361a396177a9cb410ff61f20015ad"; have != want {
		t.Fatalf("sha256(abc) mismatch: have %s want %s", have, want)
	}
}

func TestHexToKey(t *testing.T) {
	seed := bytes.Repeat([]byte{0x42}, ed25519.SeedSize)
	key, err := HexToKey(hex.EncodeToString(seed))
	if err != nil {
		t.Fatalf("HexToKey failed: %v", err)
	}
	if !bytes.Equal(key.Seed(), seed) {
		t.Fatalf("seed mismatch")
	}
	if PubkeyToAddress(key) != PubkeyToAddress(ed25519.NewKeyFromSeed(seed)) {
		t.Fatalf("address mismatch")
	}
	if _, err := HexToKey("abcd"); err == nil {
		t.Fatalf("expected short seed error")
	}
	if _, err := HexToKey("zz"); err == nil {
		t.Fatalf("expected hex error")
	}
}
