// Package vm defines the interface between programs and the runtime that
// invokes them. Programs only ever see these types; the runtime supplies
// the implementations.
package vm

import (
	"github.com/tos-network/ratingd/common"
	"github.com/tos-network/ratingd/core/rent"
	"github.com/tos-network/ratingd/core/types"
)

// Program is an executable unit addressed by its id.
type Program interface {
	ID() common.Address
	Process(ctx Context, data []byte) error
}

// AccountInfo is an account handle passed to a program, in instruction
// order. IsSigner is only set when the runtime authenticated the key for
// this invocation.
type AccountInfo struct {
	Key        common.Address
	IsSigner   bool
	IsWritable bool
}

// Context is the capability set of a single invocation.
type Context interface {
	// ProgramID is the id of the program being invoked.
	ProgramID() common.Address

	// Accounts lists the instruction's accounts in declared order.
	Accounts() []*AccountInfo

	// IdentityOf resolves an account handle to its identity.
	IdentityOf(acc *AccountInfo) common.Address

	// IsAuthenticated reports whether id signed this invocation, either by
	// signature or by a program reproducing its derivation seeds.
	IsAuthenticated(id common.Address) bool

	// Rent returns the storage fee schedule in force.
	Rent() *rent.Rent

	// Storage gives scoped access to the instruction's accounts.
	Storage() Storage

	// Logf appends a line to the transaction's program log.
	Logf(format string, args ...interface{})
}

// AllocateRequest asks the allocator to create Address funded by Funder,
// with Space zeroed bytes owned by Owner. Seeds authorize a program derived
// Address on behalf of the invoking program.
type AllocateRequest struct {
	Funder   common.Address
	Address  common.Address
	Space    uint64
	Lamports uint64
	Owner    common.Address
	Seeds    [][]byte
}

// Storage is the invoking program's view of account storage.
type Storage interface {
	// Read returns a copy of the account at addr, or nil if it does not exist.
	Read(addr common.Address) (*types.Account, error)

	// Allocate creates a new account through the system allocator.
	Allocate(req AllocateRequest) error

	// Write overwrites the start of addr's data region with data. The
	// account must be writable and owned by the invoking program, and data
	// must fit the existing region.
	Write(addr common.Address, data []byte) error
}

// Ledger is direct access to the account table. Only native programs, such
// as the system allocator, are given one.
type Ledger interface {
	Exist(addr common.Address) bool
	GetBalance(addr common.Address) uint64
	CreateAccount(addr common.Address, owner common.Address, space uint64) error
	AddBalance(addr common.Address, amount uint64) error
	SubBalance(addr common.Address, amount uint64) error
}

// NativeContext is the context handed to native programs.
type NativeContext interface {
	Context
	Ledger() Ledger
}

// CodedError is an error carrying a numeric program error code, reported in
// transaction receipts.
type CodedError interface {
	error
	Code() uint32
}
