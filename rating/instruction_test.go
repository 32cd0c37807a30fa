package rating

import (
	"bytes"
	"errors"
	"testing"

	fuzz "github.com/google/gofuzz"
	"github.com/stretchr/testify/require"
	"github.com/tos-network/ratingd/borsh"
	"github.com/tos-network/ratingd/common"
	"github.com/tos-network/ratingd/params"
)

// matrixRequest and matrixBytes are the canonical end-to-end example.
var matrixRequest = &InitRating{
	Title:       "Matrix",
	Rating:      9,
	Description: "Great movie",
	Funding:     100,
	Recipient:   "Neo!",
	Entry:       1,
}

var matrixBytes = []byte{
	0x00,
	6, 0, 0, 0, 'M', 'a', 't', 'r', 'i', 'x',
	9,
	11, 0, 0, 0, 'G', 'r', 'e', 'a', 't', ' ', 'm', 'o', 'v', 'i', 'e',
	100, 0, 0, 0,
	4, 0, 0, 0, 'N', 'e', 'o', '!',
	1, 0, 0, 0,
}

func TestDecodeMatrix(t *testing.T) {
	ix, err := DecodeInstruction(matrixBytes)
	require.NoError(t, err)
	require.Equal(t, VariantInitRating, ix.Variant())
	require.Equal(t, matrixRequest, ix.(*InitRating))
	require.Equal(t, matrixBytes, EncodeInitRating(matrixRequest))
}

func TestDecodeErrors(t *testing.T) {
	tests := []struct {
		name string
		data []byte
		want error
	}{
		{"empty", nil, ErrEmptyInstruction},
		{"unknown tag", []byte{1}, ErrUnknownVariant},
		{"unknown tag with payload", append([]byte{0xff}, matrixBytes[1:]...), ErrUnknownVariant},
		{"tag only", []byte{0}, ErrMalformedInstruction},
		{"truncated", matrixBytes[:len(matrixBytes)-1], ErrMalformedInstruction},
		{"trailing byte", append(append([]byte{}, matrixBytes...), 0), ErrMalformedInstruction},
		{"forged length", []byte{0, 0xff, 0xff, 0xff, 0xff, 'a'}, ErrMalformedInstruction},
		{"invalid utf8", []byte{0, 1, 0, 0, 0, 0xff, 9, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0}, ErrMalformedInstruction},
	}
	for _, tt := range tests {
		ix, err := DecodeInstruction(tt.data)
		if !errors.Is(err, tt.want) {
			t.Fatalf("%s: have %v, want %v", tt.name, err, tt.want)
		}
		if !errors.Is(err, ErrDecode) {
			t.Fatalf("%s: %v does not match ErrDecode", tt.name, err)
		}
		if ix != nil {
			t.Fatalf("%s: partial value returned", tt.name)
		}
	}
}

func TestMalformedWrapsCodecError(t *testing.T) {
	_, err := DecodeInstruction(matrixBytes[:8])
	if !errors.Is(err, borsh.ErrTruncated) {
		t.Fatalf("expected codec cause, got %v", err)
	}
	_, err = DecodeInstruction([]byte{0, 1, 0, 0, 0, 0xc3})
	if !errors.Is(err, borsh.ErrInvalidUTF8) {
		t.Fatalf("expected codec cause, got %v", err)
	}
}

func TestErrorCodes(t *testing.T) {
	for code, err := range map[uint32]*Error{
		1: ErrEmptyInstruction,
		2: ErrMalformedInstruction,
		3: ErrUnknownVariant,
		4: ErrUnauthorized,
		5: ErrInvalidArgument,
		6: ErrNotRentExempt,
		7: ErrAlreadyInitialized,
	} {
		if err.Code() != code {
			t.Fatalf("%v: code %d, want %d", err, err.Code(), code)
		}
	}
	if !errors.Is(ErrNotEnoughAccounts, ErrInvalidArgument) {
		t.Fatalf("ErrNotEnoughAccounts is not an invalid argument")
	}
	if errors.Is(ErrUnauthorized, ErrDecode) {
		t.Fatalf("ErrUnauthorized matched ErrDecode")
	}
}

func TestEncodeDecodeRoundTrip(t *testing.T) {
	f := fuzz.New().NilChance(0)
	for i := 0; i < 500; i++ {
		var req InitRating
		f.Fuzz(&req)
		ix, err := DecodeInstruction(req.Encode())
		if err != nil {
			t.Fatalf("round %d: %v", i, err)
		}
		require.Equal(t, &req, ix.(*InitRating))
	}
}

func TestNewInitRatingInstruction(t *testing.T) {
	caller := common.Address{0x11}
	ix, err := NewInitRatingInstruction(params.RatingProgramID, caller, matrixRequest)
	require.NoError(t, err)

	slot, _, err := FindRecordAddress(caller, "Matrix", params.RatingProgramID)
	require.NoError(t, err)
	require.Len(t, ix.Accounts, 3)
	require.Equal(t, caller, ix.Accounts[0].Pubkey)
	require.True(t, ix.Accounts[0].IsSigner)
	require.Equal(t, slot, ix.Accounts[1].Pubkey)
	require.True(t, ix.Accounts[1].IsWritable)
	require.Equal(t, params.SystemProgramID, ix.Accounts[2].Pubkey)
	require.False(t, ix.Accounts[2].IsWritable)
	require.True(t, bytes.Equal(matrixBytes, ix.Data))

	long := *matrixRequest
	long.Title = string(bytes.Repeat([]byte{'x'}, params.MaxSeedLength+1))
	if _, err := NewInitRatingInstruction(params.RatingProgramID, caller, &long); !errors.Is(err, ErrInvalidArgument) {
		t.Fatalf("expected ErrInvalidArgument, got %v", err)
	}
}

func FuzzDecodeInstruction(f *testing.F) {
	f.Add(matrixBytes)
	f.Add([]byte{})
	f.Add([]byte{0})
	f.Add([]byte{0, 0xff, 0xff, 0xff, 0xff})
	f.Fuzz(func(t *testing.T, data []byte) {
		ix, err := DecodeInstruction(data)
		if err != nil {
			if ix != nil {
				t.Fatalf("partial value with error %v", err)
			}
			if !errors.Is(err, ErrDecode) {
				t.Fatalf("decode failure %v does not match ErrDecode", err)
			}
			return
		}
		if !bytes.Equal(ix.(*InitRating).Encode(), data) {
			t.Fatalf("re-encoding differs from accepted input")
		}
	})
}
