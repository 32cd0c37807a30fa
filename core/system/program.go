// Package system implements the native account allocator program.
package system

import (
	"github.com/tos-network/ratingd/common"
	"github.com/tos-network/ratingd/core/vm"
	"github.com/tos-network/ratingd/log"
	"github.com/tos-network/ratingd/params"
)

// Program is the system allocator. It is the only program that can bring
// an account into existence.
type Program struct{}

// New returns the system program.
func New() *Program { return &Program{} }

// ID returns params.SystemProgramID.
func (p *Program) ID() common.Address { return params.SystemProgramID }

// Process executes a system instruction.
func (p *Program) Process(ctx vm.Context, data []byte) error {
	native, ok := ctx.(vm.NativeContext)
	if !ok {
		return ErrNotNative
	}
	ix, err := DecodeInstruction(data)
	if err != nil {
		return err
	}
	return p.createAccount(native, ix)
}

func (p *Program) createAccount(ctx vm.NativeContext, ix *CreateAccount) error {
	accounts := ctx.Accounts()
	if len(accounts) < 2 {
		return wrap(ErrNotEnoughAccounts, "have %d, want 2", len(accounts))
	}
	funder, target := accounts[0], accounts[1]
	for _, acc := range []*vm.AccountInfo{funder, target} {
		if !ctx.IsAuthenticated(ctx.IdentityOf(acc)) {
			return wrap(ErrMissingRequiredSignature, "%s", acc.Key)
		}
		if !acc.IsWritable {
			return wrap(ErrReadonlyAccount, "%s", acc.Key)
		}
	}
	ledger := ctx.Ledger()
	if ledger.Exist(target.Key) {
		return wrap(ErrAccountAlreadyInUse, "%s", target.Key)
	}
	if ix.Space > params.MaxPermittedDataLength {
		return wrap(ErrInvalidAccountDataLength, "%d exceeds %d", ix.Space, params.MaxPermittedDataLength)
	}
	if have := ledger.GetBalance(funder.Key); have < ix.Lamports {
		return wrap(ErrInsufficientFunds, "%s has %d, need %d", funder.Key, have, ix.Lamports)
	}
	if err := ledger.SubBalance(funder.Key, ix.Lamports); err != nil {
		return err
	}
	if err := ledger.CreateAccount(target.Key, ix.Owner, ix.Space); err != nil {
		return err
	}
	if err := ledger.AddBalance(target.Key, ix.Lamports); err != nil {
		return err
	}
	ctx.Logf("system: created %s owner=%s space=%d lamports=%d", target.Key, ix.Owner, ix.Space, ix.Lamports)
	log.Trace("Account created", "address", target.Key, "owner", ix.Owner, "space", ix.Space, "lamports", ix.Lamports)
	return nil
}
