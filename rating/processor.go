// Package rating implements the rating program: a caller submits a rating
// for a title and the program stores it in an account derived from the
// caller and the title, created on the caller's behalf.
package rating

import (
	"fmt"

	"github.com/tos-network/ratingd/common"
	"github.com/tos-network/ratingd/core/vm"
	"github.com/tos-network/ratingd/log"
	"github.com/tos-network/ratingd/metrics"
	"github.com/tos-network/ratingd/params"
)

var (
	recordCreatedMeter = metrics.NewRegisteredMeter("rating/record/created", nil)
	recordRejectMeter  = metrics.NewRegisteredMeter("rating/record/rejected", nil)
)

// Account positions expected by InitRating.
const (
	callerIndex = iota
	slotIndex
	allocatorIndex

	initRatingAccounts
)

// Processor is the rating program.
type Processor struct {
	id common.Address
}

// NewProcessor returns the program deployed at id.
func NewProcessor(id common.Address) *Processor {
	return &Processor{id: id}
}

// ID implements vm.Program.
func (p *Processor) ID() common.Address { return p.id }

// Process implements vm.Program.
func (p *Processor) Process(ctx vm.Context, data []byte) error {
	ix, err := DecodeInstruction(data)
	if err != nil {
		return err
	}
	switch req := ix.(type) {
	case *InitRating:
		err = p.initRating(ctx, req)
	default:
		err = fmt.Errorf("%w: %d", ErrUnknownVariant, ix.Variant())
	}
	if err != nil {
		recordRejectMeter.Mark(1)
	}
	return err
}

func (p *Processor) initRating(ctx vm.Context, req *InitRating) error {
	ctx.Logf("Initialize rating account")
	accounts := ctx.Accounts()
	if len(accounts) < initRatingAccounts {
		return ErrNotEnoughAccounts
	}
	var (
		caller    = ctx.IdentityOf(accounts[callerIndex])
		slot      = ctx.IdentityOf(accounts[slotIndex])
		allocator = ctx.IdentityOf(accounts[allocatorIndex])
		program   = ctx.ProgramID()
	)
	if !ctx.IsAuthenticated(caller) {
		ctx.Logf("Missing required signature from %s", caller)
		return ErrUnauthorized
	}
	ctx.Logf("Finding record address")
	expected, bump, err := FindRecordAddress(caller, req.Title, program)
	if err != nil {
		return err
	}
	ctx.Logf("Record address: %s", expected)
	if err := checkAccounts(ctx, expected, slot, allocator); err != nil {
		return err
	}

	storage := ctx.Storage()
	existing, err := storage.Read(expected)
	if err != nil {
		return err
	}
	if existing != nil && existing.Owner == program {
		if rec, err := DeserializeRecord(existing.Data); err == nil && rec.IsInitialized() {
			ctx.Logf("Account already initialized")
			return ErrAlreadyInitialized
		}
	}

	size := AllocationSize(req)
	ctx.Logf("Initializing account at %s with %d bytes", expected, size)
	err = storage.Allocate(vm.AllocateRequest{
		Funder:   caller,
		Address:  expected,
		Space:    size,
		Lamports: ctx.Rent().MinimumBalance(size),
		Owner:    program,
		Seeds:    signerSeeds(caller, req.Title, bump),
	})
	if err != nil {
		return err
	}
	ctx.Logf("Rating: %s", req.Title)

	if err := checkAccounts(ctx, expected, slot, allocator); err != nil {
		return err
	}
	acc, err := storage.Read(expected)
	if err != nil {
		return err
	}
	if acc == nil {
		return fmt.Errorf("%w: record account %s missing after allocation", ErrInvalidArgument, expected)
	}
	if acc.Owner != program {
		return fmt.Errorf("%w: record account owned by %s", ErrInvalidArgument, acc.Owner)
	}
	if !ctx.Rent().IsExempt(acc.Lamports, uint64(len(acc.Data))) {
		ctx.Logf("Record account is not rent exempt")
		return ErrNotRentExempt
	}
	ctx.Logf("Unpacking state account")
	rec, err := DeserializeRecord(acc.Data)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidArgument, err)
	}
	ctx.Logf("Checking if record account is already initialized")
	if rec.IsInitialized() {
		ctx.Logf("Account already initialized")
		return ErrAlreadyInitialized
	}
	if err := storage.Write(expected, NewRecord(req).Serialize()); err != nil {
		return err
	}
	recordCreatedMeter.Mark(1)
	log.Debug("Rating record created", "caller", caller, "title", req.Title, "address", expected, "size", size)
	return nil
}

// checkAccounts verifies the caller supplied the derived slot and the system
// allocator in their expected positions.
func checkAccounts(ctx vm.Context, expected, slot, allocator common.Address) error {
	if allocator != params.SystemProgramID {
		ctx.Logf("Invalid account passed in for system program")
		return fmt.Errorf("%w: allocator %s is not the system program", ErrInvalidArgument, allocator)
	}
	if slot != expected {
		ctx.Logf("Invalid seeds for record account")
		return fmt.Errorf("%w: record account %s, derived %s", ErrInvalidArgument, slot, expected)
	}
	return nil
}
