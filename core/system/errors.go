package system

import "fmt"

// Error is a system program failure with a stable numeric code.
type Error struct {
	code uint32
	msg  string
}

func (e *Error) Error() string { return "system: " + e.msg }

// Code returns the receipt error code.
func (e *Error) Code() uint32 { return e.code }

// System program error codes start at 0x100 so they never collide with the
// codes of user programs.
var (
	ErrAccountAlreadyInUse      = &Error{0x100, "account already in use"}
	ErrInsufficientFunds        = &Error{0x101, "insufficient funds"}
	ErrInvalidAccountDataLength = &Error{0x102, "invalid account data length"}
	ErrMissingRequiredSignature = &Error{0x103, "missing required signature"}
	ErrNotEnoughAccounts        = &Error{0x104, "not enough accounts"}
	ErrInvalidInstructionData   = &Error{0x105, "invalid instruction data"}
	ErrReadonlyAccount          = &Error{0x106, "account is not writable"}
	ErrNotNative                = &Error{0x107, "invoked without native context"}
)

func wrap(e *Error, format string, args ...interface{}) error {
	return fmt.Errorf("%w: "+format, append([]interface{}{e}, args...)...)
}
