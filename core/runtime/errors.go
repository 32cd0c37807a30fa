// Package runtime executes transactions: it authenticates signers, invokes
// programs with scoped account access and commits or reverts their effects
// atomically.
package runtime

import (
	"errors"

	"github.com/tos-network/ratingd/core/vm"
)

var (
	ErrProgramNotFound      = errors.New("runtime: program not found")
	ErrProgramRegistered    = errors.New("runtime: program already registered")
	ErrMissingAccount       = errors.New("runtime: account not passed to instruction")
	ErrAccountNotWritable   = errors.New("runtime: account not writable")
	ErrExternalDataModified = errors.New("runtime: account not owned by program")
	ErrAccountNotFound      = errors.New("runtime: account does not exist")
	ErrAccountDataTooSmall  = errors.New("runtime: data exceeds account region")
	ErrPrivilegeEscalation  = errors.New("runtime: privilege escalation")
	ErrCallDepth            = errors.New("runtime: cross-program invocation too deep")
	ErrInvalidSeeds         = errors.New("runtime: invalid signer seeds")
	ErrNoInstructions       = errors.New("runtime: transaction has no instructions")
)

// CodeRuntimeFailure is reported for failures raised by the runtime itself
// rather than by a program.
const CodeRuntimeFailure = ^uint32(0)

// ErrorCode maps an execution error to its receipt code: zero for success,
// the program's code for a CodedError anywhere in the chain, and
// CodeRuntimeFailure otherwise.
func ErrorCode(err error) uint32 {
	if err == nil {
		return 0
	}
	var coded vm.CodedError
	if errors.As(err, &coded) {
		return coded.Code()
	}
	return CodeRuntimeFailure
}
