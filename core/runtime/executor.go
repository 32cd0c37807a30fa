package runtime

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/tos-network/ratingd/common"
	"github.com/tos-network/ratingd/core/rawdb"
	"github.com/tos-network/ratingd/core/rent"
	"github.com/tos-network/ratingd/core/state"
	"github.com/tos-network/ratingd/core/types"
	"github.com/tos-network/ratingd/core/vm"
	"github.com/tos-network/ratingd/log"
)

var errFaucetOverflow = errors.New("runtime: airdrop overflows balance")

// Executor applies transactions one at a time against a state database.
// A transaction either commits all of its effects or none of them.
type Executor struct {
	mu       sync.Mutex
	registry *Registry
	statedb  *state.StateDB
	rent     *rent.Rent
}

// NewExecutor creates an executor. A nil rent selects rent.Default().
func NewExecutor(registry *Registry, db *state.Database, r *rent.Rent) *Executor {
	if r == nil {
		r = rent.Default()
	}
	return &Executor{
		registry: registry,
		statedb:  state.New(db),
		rent:     r,
	}
}

// Rent returns the fee schedule programs run under.
func (e *Executor) Rent() *rent.Rent { return e.rent }

// Registry returns the program registry.
func (e *Executor) Registry() *Registry { return e.registry }

// ApplyTransaction authenticates tx and runs its instructions in order. A
// returned error means the transaction was rejected outright and left no
// trace. Otherwise the receipt records success or the failing program's
// code, and is persisted under the transaction hash unless a receipt for
// that hash is already stored. A replayed transaction still executes and
// reports its own outcome, but the first receipt stays authoritative.
func (e *Executor) ApplyTransaction(tx *types.Transaction) (*types.Receipt, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if len(tx.Instructions) == 0 {
		txRejectedMeter.Mark(1)
		return nil, ErrNoInstructions
	}
	signers, err := tx.VerifySignatures()
	if err != nil {
		txRejectedMeter.Mark(1)
		return nil, err
	}
	start := time.Now()
	hash := tx.Hash()

	txc := &txContext{registry: e.registry, state: e.statedb, rent: e.rent}
	snap := e.statedb.Snapshot()
	var execErr error
	for i, ix := range tx.Instructions {
		accounts := make([]*vm.AccountInfo, len(ix.Accounts))
		for j, meta := range ix.Accounts {
			_, signed := signers[meta.Pubkey]
			accounts[j] = &vm.AccountInfo{
				Key:        meta.Pubkey,
				IsSigner:   meta.IsSigner && signed,
				IsWritable: meta.IsWritable,
			}
		}
		if err := txc.run(ix.ProgramID, accounts, ix.Data, 0); err != nil {
			execErr = fmt.Errorf("instruction %d: %w", i, err)
			break
		}
	}
	receipt := &types.Receipt{TxHash: hash, Logs: txc.logs}
	if receipt.Logs == nil {
		receipt.Logs = []string{}
	}
	if execErr == nil {
		if err := e.statedb.Commit(); err != nil {
			// Nothing was written; drop the pending changes.
			e.statedb.RevertToSnapshot(snap)
			return nil, fmt.Errorf("commit state: %w", err)
		}
		receipt.Status = types.ReceiptStatusSuccessful
		txExecutedMeter.Mark(1)
	} else {
		e.statedb.RevertToSnapshot(snap)
		receipt.Status = types.ReceiptStatusFailed
		receipt.Code = ErrorCode(execErr)
		receipt.Err = execErr.Error()
		txFailedMeter.Mark(1)
	}
	if diskdb := e.statedb.Database().DiskDB(); rawdb.ReadReceipt(diskdb, hash) == nil {
		rawdb.WriteReceipt(diskdb, receipt)
	} else {
		txReplayedMeter.Mark(1)
	}
	txExecTimer.UpdateSince(start)

	log.Debug("Applied transaction", "hash", hash, "status", receipt.Status, "code", receipt.Code, "elapsed", time.Since(start))
	return receipt, nil
}

// Account returns the committed account at addr, or nil.
func (e *Executor) Account(addr common.Address) *types.Account {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.statedb.GetAccount(addr)
}

// Receipt returns the stored receipt for a transaction hash, or nil.
func (e *Executor) Receipt(hash common.Hash) *types.Receipt {
	return rawdb.ReadReceipt(e.statedb.Database().DiskDB(), hash)
}

// IterateAccounts walks committed accounts in address order.
func (e *Executor) IterateAccounts(owner *common.Address, start common.Address, fn func(common.Address, *types.Account) bool) error {
	return rawdb.IterateAccounts(e.statedb.Database().DiskDB(), owner, start, fn)
}

// Airdrop mints lamports into addr and commits immediately.
func (e *Executor) Airdrop(addr common.Address, lamports uint64) (uint64, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	snap := e.statedb.Snapshot()
	if err := e.statedb.AddBalance(addr, lamports); err != nil {
		e.statedb.RevertToSnapshot(snap)
		return 0, fmt.Errorf("%w: %v", errFaucetOverflow, err)
	}
	if err := e.statedb.Commit(); err != nil {
		e.statedb.RevertToSnapshot(snap)
		return 0, err
	}
	balance := e.statedb.GetBalance(addr)
	log.Info("Airdropped lamports", "address", addr, "lamports", lamports, "balance", balance)
	return balance, nil
}
