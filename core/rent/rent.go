// Package rent computes the balance an account must hold to be exempt from
// storage fees.
package rent

import (
	"errors"
	"math"

	"github.com/holiman/uint256"
	"github.com/tos-network/ratingd/params"
)

const bpsDenominator = 10000

var errZeroRate = errors.New("rent: lamports per byte-year must be non-zero")

// Rent holds the storage fee schedule. A slot of n data bytes is exempt
// once it holds (StorageOverhead+n) * LamportsPerByteYear *
// ExemptionThresholdBps / 10000 lamports.
type Rent struct {
	LamportsPerByteYear   uint64
	ExemptionThresholdBps uint64 // years of rent, in basis points
	StorageOverhead       uint64 // bytes charged per account on top of its data
}

// Default returns the protocol default schedule: 3480 lamports per
// byte-year, two years, 128 bytes of overhead.
func Default() *Rent {
	return &Rent{
		LamportsPerByteYear:   params.DefaultLamportsPerByteYear,
		ExemptionThresholdBps: params.DefaultExemptionThresholdBps,
		StorageOverhead:       params.AccountStorageOverhead,
	}
}

// Validate checks the schedule is usable.
func (r *Rent) Validate() error {
	if r.LamportsPerByteYear == 0 {
		return errZeroRate
	}
	return nil
}

// MinimumBalance returns the lamports a slot with size data bytes needs to be
// rent exempt. The computation is exact in 256 bits and saturates at
// MaxUint64.
func (r *Rent) MinimumBalance(size uint64) uint64 {
	bytes := new(uint256.Int).SetUint64(r.StorageOverhead)
	bytes.Add(bytes, new(uint256.Int).SetUint64(size))

	v := new(uint256.Int).Mul(bytes, new(uint256.Int).SetUint64(r.LamportsPerByteYear))
	v.Mul(v, new(uint256.Int).SetUint64(r.ExemptionThresholdBps))
	v.Div(v, new(uint256.Int).SetUint64(bpsDenominator))
	if !v.IsUint64() {
		return math.MaxUint64
	}
	return v.Uint64()
}

// IsExempt reports whether lamports covers the exemption threshold for size.
func (r *Rent) IsExempt(lamports, size uint64) bool {
	return lamports >= r.MinimumBalance(size)
}
