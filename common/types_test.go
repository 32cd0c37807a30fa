package common

import (
	"bytes"
	"testing"
)

func TestAddressBase58RoundTrip(t *testing.T) {
	var a Address
	for i := range a {
		a[i] = byte(i + 1)
	}
	dec, err := Base58ToAddress(a.String())
	if err != nil {
		t.Fatalf("decode failed: %v", err)
	}
	if dec != a {
		t.Fatalf("round trip mismatch: have %x want %x", dec, a)
	}
}

func TestZeroAddressIsAllOnes(t *testing.T) {
	if have, want := (Address{}).String(), "11111111111111111111111111111111"; have != want {
		t.Fatalf("zero address text mismatch: have %s want %s", have, want)
	}
}

func TestBase58ToAddressRejectsWrongLength(t *testing.T) {
	if _, err := Base58ToAddress("3mJr7AoUXx2Wqd"); err == nil {
		t.Fatalf("expected length error")
	}
	if _, err := Base58ToAddress("0OIl"); err == nil {
		t.Fatalf("expected alphabet error")
	}
}

func TestAddressTextMarshal(t *testing.T) {
	a := BytesToAddress([]byte{0xde, 0xad, 0xbe, 0xef})
	text, err := a.MarshalText()
	if err != nil {
		t.Fatal(err)
	}
	var b Address
	if err := b.UnmarshalText(text); err != nil {
		t.Fatalf("unmarshal failed: %v", err)
	}
	if a != b {
		t.Fatalf("mismatch: %s != %s", a, b)
	}
}

func TestHashHexRoundTrip(t *testing.T) {
	h := BytesToHash([]byte{1, 2, 3})
	var out Hash
	if err := out.UnmarshalText([]byte(h.Hex())); err != nil {
		t.Fatalf("unmarshal failed: %v", err)
	}
	if !bytes.Equal(out[:], h[:]) {
		t.Fatalf("hash mismatch: %s != %s", out, h)
	}
}
