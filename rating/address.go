package rating

import (
	"fmt"

	"github.com/tos-network/ratingd/common"
	"github.com/tos-network/ratingd/crypto/pda"
)

var deriver = pda.NewDeriver(0)

// RecordSeeds is the seed tuple identifying caller's record for title.
func RecordSeeds(caller common.Address, title string) [][]byte {
	return [][]byte{caller.Bytes(), []byte(title)}
}

// FindRecordAddress derives the record slot for (caller, title) under
// program. Titles longer than a seed are rejected with ErrInvalidArgument.
func FindRecordAddress(caller common.Address, title string, program common.Address) (common.Address, uint8, error) {
	addr, bump, err := deriver.Find(RecordSeeds(caller, title), program)
	if err != nil {
		return common.Address{}, 0, fmt.Errorf("%w: %v", ErrInvalidArgument, err)
	}
	return addr, bump, nil
}

// signerSeeds is RecordSeeds with the bump appended, as presented to the
// allocator to prove derivation.
func signerSeeds(caller common.Address, title string, bump uint8) [][]byte {
	return append(RecordSeeds(caller, title), []byte{bump})
}
