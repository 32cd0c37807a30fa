package params

// These are the multipliers for lamport denominations.
// Example: To get the lamport value of an amount in 'TOS', use
//
//	amount * params.LamportsPerTOS
const (
	Lamport        = 1
	LamportsPerTOS = 1e9
)
