package types

import (
	"bytes"
	"errors"
	"testing"

	"github.com/davecgh/go-spew/spew"
	"github.com/stretchr/testify/require"
	"github.com/tos-network/ratingd/borsh"
	"github.com/tos-network/ratingd/common"
	"github.com/tos-network/ratingd/crypto"
	"github.com/tos-network/ratingd/crypto/ed25519"
	"github.com/tos-network/ratingd/params"
)

func testKey(b byte) ed25519.PrivateKey {
	return ed25519.NewKeyFromSeed(bytes.Repeat([]byte{b}, ed25519.SeedSize))
}

func testTx(payer common.Address) *Transaction {
	return NewTransaction(Instruction{
		ProgramID: params.RatingProgramID,
		Accounts: []AccountMeta{
			NewAccountMeta(payer, true),
			NewAccountMeta(common.Address{7}, false),
			NewReadonlyAccountMeta(params.SystemProgramID, false),
		},
		Data: []byte{0, 1, 2, 3},
	})
}

func TestAccountEncoding(t *testing.T) {
	acc := &Account{Owner: params.RatingProgramID, Lamports: 1_000_000, Data: []byte("slot"), Executable: false}
	dec, err := DecodeAccount(EncodeAccount(acc))
	require.NoError(t, err)
	require.Equal(t, acc, dec)

	cpy := acc.Copy()
	cpy.Data[0] = 'S'
	if acc.Data[0] != 's' {
		t.Fatalf("Copy shares the data slice")
	}
	if !acc.IsOwnedBy(params.RatingProgramID) || acc.IsOwnedBy(params.SystemProgramID) {
		t.Fatalf("ownership check mismatch")
	}
	if _, err := DecodeAccount(EncodeAccount(acc)[:10]); !errors.Is(err, borsh.ErrTruncated) {
		t.Fatalf("expected truncation error, got %v", err)
	}
}

func TestTransactionEncodingRoundTrip(t *testing.T) {
	key := testKey(1)
	tx := testTx(crypto.PubkeyToAddress(key))
	require.NoError(t, SignTx(tx, key))

	blob := EncodeTransaction(tx)
	dec, err := DecodeTransaction(blob)
	require.NoError(t, err, spew.Sdump(blob))
	require.Equal(t, tx.Hash(), dec.Hash())
	require.Equal(t, tx.SigningHash(), dec.SigningHash())
	require.Len(t, dec.Signatures, 1)
}

func TestDecodeTransactionRejectsJunk(t *testing.T) {
	if _, err := DecodeTransaction(make([]byte, params.MaxTransactionSize+1)); !errors.Is(err, ErrTxTooLarge) {
		t.Fatalf("expected ErrTxTooLarge, got %v", err)
	}
	if _, err := DecodeTransaction([]byte{0xff, 0xff, 0xff, 0xff}); !errors.Is(err, ErrTooManyInstructions) {
		t.Fatalf("expected ErrTooManyInstructions, got %v", err)
	}
	blob := EncodeTransaction(testTx(common.Address{1}))
	if _, err := DecodeTransaction(append(blob, 0)); err == nil {
		t.Fatalf("expected trailing byte error")
	}
	// Claim many signatures with none attached.
	forged := append(EncodeTransaction(&Transaction{})[:4:4], 0xff, 0xff, 0, 0)
	if _, err := DecodeTransaction(forged); !errors.Is(err, ErrTooManySigners) {
		t.Fatalf("expected ErrTooManySigners, got %v", err)
	}
}

func TestVerifySignatures(t *testing.T) {
	k1, k2 := testKey(1), testKey(2)
	a1, a2 := crypto.PubkeyToAddress(k1), crypto.PubkeyToAddress(k2)
	tx := testTx(a1)
	require.NoError(t, SignTx(tx, k1, k2))
	require.NoError(t, SignTx(tx, k1)) // re-sign replaces

	signers, err := tx.VerifySignatures()
	require.NoError(t, err)
	require.Len(t, signers, 2)
	require.Contains(t, signers, a1)
	require.Contains(t, signers, a2)
	require.Equal(t, []common.Address{a1}, tx.RequiredSigners())

	// Any change to the instructions invalidates the signatures.
	tx.Instructions[0].Data[0] ^= 1
	if _, err := tx.VerifySignatures(); !errors.Is(err, ErrInvalidSignature) {
		t.Fatalf("expected ErrInvalidSignature, got %v", err)
	}

	dup := testTx(a1)
	require.NoError(t, SignTx(dup, k1))
	dup.Signatures = append(dup.Signatures, dup.Signatures[0])
	if _, err := dup.VerifySignatures(); !errors.Is(err, ErrDuplicateSignature) {
		t.Fatalf("expected ErrDuplicateSignature, got %v", err)
	}
	if err := SignTx(dup, ed25519.PrivateKey{1, 2}); !errors.Is(err, ErrInvalidSignerKey) {
		t.Fatalf("expected ErrInvalidSignerKey, got %v", err)
	}
}

func TestReceiptEncoding(t *testing.T) {
	r := &Receipt{
		TxHash: common.HexToHash("0x01"),
		Status: ReceiptStatusFailed,
		Code:   7,
		Err:    "rating: account already initialized",
		Logs:   []string{"Program log: start"},
	}
	dec, err := DecodeReceipt(EncodeReceipt(r))
	require.NoError(t, err)
	require.Equal(t, r, dec)
	require.False(t, dec.Succeeded())

	if _, err := DecodeReceipt([]byte{1, 2}); err == nil {
		t.Fatalf("expected decode error")
	}
}

func FuzzDecodeTransactionNoPanic(f *testing.F) {
	f.Add(EncodeTransaction(testTx(common.Address{1})))
	f.Add([]byte{1, 0, 0, 0})
	f.Fuzz(func(t *testing.T, blob []byte) {
		tx, err := DecodeTransaction(blob)
		if err != nil {
			return
		}
		if !bytes.Equal(EncodeTransaction(tx), blob) {
			t.Fatalf("re-encoding differs from accepted input")
		}
	})
}
