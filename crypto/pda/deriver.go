package pda

import (
	"encoding/binary"
	"strings"

	lru "github.com/hashicorp/golang-lru"
	"github.com/tos-network/ratingd/common"
)

const defaultDeriverCache = 4096

// Derivation is a memoized FindProgramAddress result.
type Derivation struct {
	Address common.Address
	Bump    uint8
}

// Deriver caches bump searches. Derivation is a pure function of its inputs,
// so a hit always equals a fresh computation. Errors are not cached.
type Deriver struct {
	cache *lru.ARCCache // seed tuple + program -> Derivation
}

// NewDeriver creates a deriver remembering up to size results. A
// non-positive size selects the default.
func NewDeriver(size int) *Deriver {
	if size <= 0 {
		size = defaultDeriverCache
	}
	cache, _ := lru.NewARC(size)
	return &Deriver{cache: cache}
}

// Find is FindProgramAddress with memoization.
func (d *Deriver) Find(seeds [][]byte, program common.Address) (common.Address, uint8, error) {
	key := cacheKey(seeds, program)
	if v, ok := d.cache.Get(key); ok {
		res := v.(Derivation)
		return res.Address, res.Bump, nil
	}
	addr, bump, err := FindProgramAddress(seeds, program)
	if err != nil {
		return common.Address{}, 0, err
	}
	d.cache.Add(key, Derivation{Address: addr, Bump: bump})
	return addr, bump, nil
}

// Len reports the number of cached derivations.
func (d *Deriver) Len() int { return d.cache.Len() }

// cacheKey prefixes every seed with its full u32 length so distinct tuples,
// including oversized ones that fail validation, never share a key.
func cacheKey(seeds [][]byte, program common.Address) string {
	var (
		sb  strings.Builder
		enc [4]byte
	)
	sb.Write(program[:])
	for _, seed := range seeds {
		binary.LittleEndian.PutUint32(enc[:], uint32(len(seed)))
		sb.Write(enc[:])
		sb.Write(seed)
	}
	return sb.String()
}
