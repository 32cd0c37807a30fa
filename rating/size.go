package rating

// RecordFixedSize is the encoded size of a Record with every string empty:
// the flag, the score, three length prefixes and two u32 fields.
const RecordFixedSize = 1 + 1 + 3*4 + 2*4

// AllocationSize is the exact storage needed for the record created by r.
func AllocationSize(r *InitRating) uint64 {
	return uint64(RecordFixedSize) + uint64(len(r.Title)) + uint64(len(r.Description)) + uint64(len(r.Recipient))
}

// LegacyAllocationSize is the formula historically used for the slot size.
// It ignores funding, recipient and entry, so it under-allocates whenever
// those are carried; it is kept only to demonstrate that shortfall.
func LegacyAllocationSize(r *InitRating) uint64 {
	return 1 + 1 + (4 + uint64(len(r.Title))) + (4 + uint64(len(r.Description)))
}
