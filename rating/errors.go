package rating

import (
	"errors"
	"fmt"
)

// Error is a rating program failure. Its code is reported in the
// transaction receipt.
type Error struct {
	code uint32
	msg  string
}

func (e *Error) Error() string { return "rating: " + e.msg }

// Code returns the receipt error code.
func (e *Error) Code() uint32 { return e.code }

// Is lets every decode failure match ErrDecode.
func (e *Error) Is(target error) bool {
	return target == ErrDecode && e.isDecode()
}

func (e *Error) isDecode() bool {
	return e == ErrEmptyInstruction || e == ErrMalformedInstruction || e == ErrUnknownVariant
}

// ErrDecode matches any instruction decoding failure.
var ErrDecode = errors.New("rating: instruction decode failed")

var (
	ErrEmptyInstruction     = &Error{1, "empty instruction"}
	ErrMalformedInstruction = &Error{2, "malformed instruction"}
	ErrUnknownVariant       = &Error{3, "unknown instruction variant"}
	ErrUnauthorized         = &Error{4, "caller did not sign"}
	ErrInvalidArgument      = &Error{5, "invalid argument"}
	ErrNotRentExempt        = &Error{6, "account not rent exempt"}
	ErrAlreadyInitialized   = &Error{7, "account already initialized"}

	// ErrNotEnoughAccounts is an ErrInvalidArgument.
	ErrNotEnoughAccounts = fmt.Errorf("%w: not enough accounts", ErrInvalidArgument)
)
