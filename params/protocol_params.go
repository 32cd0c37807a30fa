package params

const (
	MaxSeedLength = 32 // Maximum byte length of a single program address seed.
	MaxSeeds      = 16 // Maximum number of seeds, bump included.

	MaxPermittedDataLength uint64 = 10 * 1024 * 1024 // Largest data region the allocator hands out.
	MaxInvokeDepth                = 4                // Nested cross-program invocations allowed below a transaction.
	MaxInstructionAccounts        = 64               // Account metas accepted per instruction.
	MaxTransactionSize            = 1232             // Encoded transaction bytes accepted by the node.

	// Rent defaults. A slot is exempt from storage fees once it holds
	// ExemptionThresholdBps/10000 years of rent for its size plus overhead.
	DefaultLamportsPerByteYear   uint64 = 3480
	DefaultExemptionThresholdBps uint64 = 20000
	AccountStorageOverhead       uint64 = 128
)

// ProgramDerivedAddressMarker is appended to the seed hash input so derived
// addresses cannot collide with hashes computed for other purposes.
const ProgramDerivedAddressMarker = "ProgramDerivedAddress"
