package ed25519

import (
	"bytes"
	stded25519 "crypto/ed25519"
	"testing"
)

func TestNewKeyFromSeedCompatibility(t *testing.T) {
	seed := bytes.Repeat([]byte{0x42}, SeedSize)
	got := NewKeyFromSeed(seed)
	want := stded25519.NewKeyFromSeed(seed)
	if !bytes.Equal(got, want) {
		t.Fatalf("private key mismatch\nwant=%x\n got=%x", want, got)
	}
}

func TestSignVerifyCompatibility(t *testing.T) {
	seed := bytes.Repeat([]byte{0x11}, SeedSize)
	msg := []byte("ratingd-ed25519-compatibility")

	priv := NewKeyFromSeed(seed)
	pub := PublicFromPrivate(priv)
	sig := Sign(priv, msg)

	wantSig := stded25519.Sign(stded25519.PrivateKey(priv), msg)
	if !bytes.Equal(sig, wantSig) {
		t.Fatalf("signature mismatch\nwant=%x\n got=%x", wantSig, sig)
	}
	if !Verify(pub, msg, sig) {
		t.Fatal("Verify returned false")
	}
	if !stded25519.Verify(stded25519.PublicKey(pub), msg, sig) {
		t.Fatal("stdlib Verify returned false")
	}

	badSig := append([]byte(nil), sig...)
	badSig[0] ^= 0x80
	if Verify(pub, msg, badSig) {
		t.Fatal("Verify accepted a tampered signature")
	}
}

func TestPublicKeysAreOnCurve(t *testing.T) {
	for i := byte(0); i < 16; i++ {
		priv := NewKeyFromSeed(bytes.Repeat([]byte{i}, SeedSize))
		if !IsOnCurve(PublicFromPrivate(priv)) {
			t.Fatalf("public key %d reported off curve", i)
		}
	}
}

func TestIsOnCurveRejectsMalformed(t *testing.T) {
	if IsOnCurve(nil) || IsOnCurve(make([]byte, 31)) {
		t.Fatal("short input reported on curve")
	}
	// Roughly half of all y coordinates have no matching x.
	offCurve := 0
	for y := byte(2); y < 64; y++ {
		enc := make([]byte, PublicKeySize)
		enc[0] = y
		if !IsOnCurve(enc) {
			offCurve++
		}
	}
	if offCurve == 0 {
		t.Fatal("no off-curve encodings found")
	}
}

func TestVerifyRejectsWrongSizes(t *testing.T) {
	if Verify(make([]byte, 3), []byte("m"), make([]byte, SignatureSize)) {
		t.Fatal("short key accepted")
	}
	priv := NewKeyFromSeed(bytes.Repeat([]byte{1}, SeedSize))
	if Verify(PublicFromPrivate(priv), []byte("m"), []byte{1}) {
		t.Fatal("short signature accepted")
	}
}
