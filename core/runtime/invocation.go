package runtime

import (
	"fmt"

	"github.com/tos-network/ratingd/common"
	"github.com/tos-network/ratingd/core/rent"
	"github.com/tos-network/ratingd/core/state"
	"github.com/tos-network/ratingd/core/types"
	"github.com/tos-network/ratingd/core/vm"
	"github.com/tos-network/ratingd/crypto/pda"
	"github.com/tos-network/ratingd/params"
)

// txContext is shared by every invocation of one transaction.
type txContext struct {
	registry *Registry
	state    *state.StateDB
	rent     *rent.Rent
	logs     []string
}

// invocation is the context of one program call. It implements vm.Context
// and, for native programs, vm.NativeContext.
type invocation struct {
	tx       *txContext
	program  common.Address
	accounts []*vm.AccountInfo
	depth    int
}

type nativeInvocation struct {
	*invocation
}

func (n nativeInvocation) Ledger() vm.Ledger { return n.tx.state }

func (inv *invocation) ProgramID() common.Address { return inv.program }

func (inv *invocation) Accounts() []*vm.AccountInfo { return inv.accounts }

func (inv *invocation) IdentityOf(acc *vm.AccountInfo) common.Address { return acc.Key }

// IsAuthenticated reports whether id is passed to this invocation as an
// authenticated signer.
func (inv *invocation) IsAuthenticated(id common.Address) bool {
	for _, acc := range inv.accounts {
		if acc.Key == id && acc.IsSigner {
			return true
		}
	}
	return false
}

func (inv *invocation) Rent() *rent.Rent { return inv.tx.rent }

func (inv *invocation) Storage() vm.Storage { return &storage{inv: inv} }

func (inv *invocation) Logf(format string, args ...interface{}) {
	inv.tx.logs = append(inv.tx.logs, fmt.Sprintf(format, args...))
}

// account returns the handle for addr, or nil if addr was not passed in.
func (inv *invocation) account(addr common.Address) *vm.AccountInfo {
	for _, acc := range inv.accounts {
		if acc.Key == addr {
			return acc
		}
	}
	return nil
}

// run dispatches to the program registered under id.
func (tx *txContext) run(id common.Address, accounts []*vm.AccountInfo, data []byte, depth int) error {
	program, native, err := tx.registry.Lookup(id)
	if err != nil {
		return err
	}
	invokeMeter.Mark(1)
	inv := &invocation{tx: tx, program: id, accounts: accounts, depth: depth}
	if native {
		return program.Process(nativeInvocation{inv}, data)
	}
	return program.Process(inv, data)
}

// InvokeSigned calls another program from within this invocation. Accounts
// keep at most the privileges the caller holds, except that addresses
// derived from signerSeeds under the calling program become signers.
func (inv *invocation) InvokeSigned(ix types.Instruction, signerSeeds [][][]byte) error {
	if inv.depth+1 > params.MaxInvokeDepth {
		return fmt.Errorf("%w: depth %d", ErrCallDepth, inv.depth+1)
	}
	if inv.account(ix.ProgramID) == nil {
		return fmt.Errorf("%w: program %s", ErrMissingAccount, ix.ProgramID)
	}
	granted := make(map[common.Address]bool, len(signerSeeds))
	for _, seeds := range signerSeeds {
		addr, err := pda.CreateProgramAddress(seeds, inv.program)
		if err != nil {
			return fmt.Errorf("%w: %v", ErrInvalidSeeds, err)
		}
		granted[addr] = true
	}
	callee := make([]*vm.AccountInfo, 0, len(ix.Accounts))
	for _, meta := range ix.Accounts {
		caller := inv.account(meta.Pubkey)
		if caller == nil {
			return fmt.Errorf("%w: %s", ErrMissingAccount, meta.Pubkey)
		}
		if meta.IsWritable && !caller.IsWritable {
			return fmt.Errorf("%w: %s is not writable", ErrPrivilegeEscalation, meta.Pubkey)
		}
		if meta.IsSigner && !caller.IsSigner && !granted[meta.Pubkey] {
			return fmt.Errorf("%w: %s did not sign", ErrPrivilegeEscalation, meta.Pubkey)
		}
		callee = append(callee, &vm.AccountInfo{
			Key:        meta.Pubkey,
			IsSigner:   meta.IsSigner,
			IsWritable: meta.IsWritable,
		})
	}
	return inv.tx.run(ix.ProgramID, callee, ix.Data, inv.depth+1)
}
