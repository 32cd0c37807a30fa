package runtime

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/tos-network/ratingd/common"
	"github.com/tos-network/ratingd/core/state"
	"github.com/tos-network/ratingd/core/system"
	"github.com/tos-network/ratingd/core/types"
	"github.com/tos-network/ratingd/core/vm"
	"github.com/tos-network/ratingd/crypto"
	"github.com/tos-network/ratingd/crypto/ed25519"
	"github.com/tos-network/ratingd/crypto/pda"
	"github.com/tos-network/ratingd/params"
	"github.com/tos-network/ratingd/tosdb/memorydb"
)

var counterID = common.Address{0xc0}

// counterProgram allocates a derived slot for the caller on first use and
// writes data[1:] into it. data[0] selects a misbehaviour for tests.
type counterProgram struct{}

const (
	modeNormal byte = iota
	modeNoSeeds
	modeWriteForeign
	modeFailAfterAlloc
	modeEscalate
)

func (counterProgram) ID() common.Address { return counterID }

func (counterProgram) Process(ctx vm.Context, data []byte) error {
	accs := ctx.Accounts()
	caller, slot := accs[0], accs[1]
	addr, bump, err := pda.FindProgramAddress([][]byte{caller.Key[:]}, ctx.ProgramID())
	if err != nil {
		return err
	}
	seeds := [][]byte{caller.Key[:], {bump}}
	if data[0] == modeNoSeeds {
		seeds = nil
	}
	if data[0] == modeEscalate {
		inv := ctx.(*invocation)
		ix := system.NewCreateAccountInstruction(caller.Key, common.Address{0xee}, 1, 1, counterID)
		ix.Accounts[1].Pubkey = accs[2].Key // the readonly system account, requested writable
		return inv.InvokeSigned(ix, nil)
	}
	ctx.Logf("allocating %s", addr)
	err = ctx.Storage().Allocate(vm.AllocateRequest{
		Funder:   caller.Key,
		Address:  addr,
		Space:    uint64(len(data) - 1),
		Lamports: ctx.Rent().MinimumBalance(uint64(len(data) - 1)),
		Owner:    counterID,
		Seeds:    seeds,
	})
	if err != nil {
		return err
	}
	target := slot.Key
	if data[0] == modeWriteForeign {
		target = caller.Key
	}
	if err := ctx.Storage().Write(target, data[1:]); err != nil {
		return err
	}
	if data[0] == modeFailAfterAlloc {
		return errors.New("boom")
	}
	return nil
}

type testEnv struct {
	exec   *Executor
	key    ed25519.PrivateKey
	caller common.Address
	slot   common.Address
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	reg := NewRegistry()
	require.NoError(t, reg.RegisterNative(system.New()))
	require.NoError(t, reg.Register(counterProgram{}))

	exec := NewExecutor(reg, state.NewDatabase(memorydb.New(), 0), nil)
	key := ed25519.NewKeyFromSeed(bytes.Repeat([]byte{3}, ed25519.SeedSize))
	caller := crypto.PubkeyToAddress(key)
	if _, err := exec.Airdrop(caller, params.LamportsPerTOS); err != nil {
		t.Fatal(err)
	}
	slot, _, _ := pda.FindProgramAddress([][]byte{caller[:]}, counterID)
	return &testEnv{exec: exec, key: key, caller: caller, slot: slot}
}

func (env *testEnv) tx(t *testing.T, data []byte, sign bool) *types.Transaction {
	t.Helper()
	tx := types.NewTransaction(types.Instruction{
		ProgramID: counterID,
		Accounts: []types.AccountMeta{
			types.NewAccountMeta(env.caller, true),
			types.NewAccountMeta(env.slot, false),
			types.NewReadonlyAccountMeta(params.SystemProgramID, false),
		},
		Data: data,
	})
	if sign {
		require.NoError(t, types.SignTx(tx, env.key))
	}
	return tx
}

func TestAllocateAndWrite(t *testing.T) {
	env := newTestEnv(t)
	receipt, err := env.exec.ApplyTransaction(env.tx(t, []byte{modeNormal, 'h', 'i'}, true))
	require.NoError(t, err)
	require.True(t, receipt.Succeeded(), receipt.Err)
	require.Len(t, receipt.Logs, 2)

	slot := env.exec.Account(env.slot)
	require.NotNil(t, slot)
	require.Equal(t, []byte("hi"), slot.Data)
	require.Equal(t, counterID, slot.Owner)
	require.Equal(t, env.exec.Rent().MinimumBalance(2), slot.Lamports)
	require.Equal(t, params.LamportsPerTOS-slot.Lamports, env.exec.Account(env.caller).Lamports)

	stored := env.exec.Receipt(receipt.TxHash)
	require.NotNil(t, stored)
	require.True(t, stored.Succeeded())

	// The slot exists now, so a second allocation is rejected by the allocator.
	receipt, err = env.exec.ApplyTransaction(env.tx(t, []byte{modeNormal, 'y', 'o'}, true))
	require.NoError(t, err)
	require.False(t, receipt.Succeeded())
	require.Equal(t, system.ErrAccountAlreadyInUse.Code(), receipt.Code)
	require.Equal(t, []byte("hi"), env.exec.Account(env.slot).Data)
}

func TestReplayKeepsFirstReceipt(t *testing.T) {
	env := newTestEnv(t)
	tx := env.tx(t, []byte{modeNormal, 'h', 'i'}, true)
	first, err := env.exec.ApplyTransaction(tx)
	require.NoError(t, err)
	require.True(t, first.Succeeded(), first.Err)

	replay, err := env.exec.ApplyTransaction(tx)
	require.NoError(t, err)
	require.Equal(t, first.TxHash, replay.TxHash)
	require.False(t, replay.Succeeded())
	require.Equal(t, system.ErrAccountAlreadyInUse.Code(), replay.Code)

	stored := env.exec.Receipt(tx.Hash())
	require.NotNil(t, stored)
	require.True(t, stored.Succeeded(), "replay overwrote the stored receipt: %s", stored.Err)
	require.Equal(t, first.Logs, stored.Logs)
	require.Equal(t, []byte("hi"), env.exec.Account(env.slot).Data)
}

func TestFailedTransactionRevertsEverything(t *testing.T) {
	env := newTestEnv(t)
	receipt, err := env.exec.ApplyTransaction(env.tx(t, []byte{modeFailAfterAlloc, 1}, true))
	require.NoError(t, err)
	require.False(t, receipt.Succeeded())
	require.Equal(t, CodeRuntimeFailure, receipt.Code)
	require.True(t, strings.Contains(receipt.Err, "boom"))

	require.Nil(t, env.exec.Account(env.slot), "allocated slot survived a failed transaction")
	require.Equal(t, uint64(params.LamportsPerTOS), env.exec.Account(env.caller).Lamports)
}

func TestUnsignedCallerCannotFund(t *testing.T) {
	env := newTestEnv(t)
	receipt, err := env.exec.ApplyTransaction(env.tx(t, []byte{modeNormal, 1}, false))
	require.NoError(t, err)
	require.False(t, receipt.Succeeded())
	require.Contains(t, receipt.Err, ErrPrivilegeEscalation.Error())
	require.Nil(t, env.exec.Account(env.slot))
}

func TestSeedsRequiredForDerivedSigner(t *testing.T) {
	env := newTestEnv(t)
	receipt, err := env.exec.ApplyTransaction(env.tx(t, []byte{modeNoSeeds, 1}, true))
	require.NoError(t, err)
	require.False(t, receipt.Succeeded())
	require.Contains(t, receipt.Err, ErrPrivilegeEscalation.Error())
}

func TestWriteRequiresOwnership(t *testing.T) {
	env := newTestEnv(t)
	receipt, err := env.exec.ApplyTransaction(env.tx(t, []byte{modeWriteForeign, 1}, true))
	require.NoError(t, err)
	require.False(t, receipt.Succeeded())
	require.Contains(t, receipt.Err, ErrExternalDataModified.Error())
	require.Nil(t, env.exec.Account(env.slot))
}

func TestWritableEscalationRejected(t *testing.T) {
	env := newTestEnv(t)
	receipt, err := env.exec.ApplyTransaction(env.tx(t, []byte{modeEscalate}, true))
	require.NoError(t, err)
	require.Contains(t, receipt.Err, "not writable")
}

func TestRejectedTransactions(t *testing.T) {
	env := newTestEnv(t)
	if _, err := env.exec.ApplyTransaction(&types.Transaction{}); !errors.Is(err, ErrNoInstructions) {
		t.Fatalf("expected ErrNoInstructions, got %v", err)
	}
	tx := env.tx(t, []byte{modeNormal, 1}, true)
	tx.Signatures[0].Bytes[0] ^= 0xff
	if _, err := env.exec.ApplyTransaction(tx); !errors.Is(err, types.ErrInvalidSignature) {
		t.Fatalf("expected ErrInvalidSignature, got %v", err)
	}
	if env.exec.Receipt(tx.Hash()) != nil {
		t.Fatalf("rejected transaction left a receipt")
	}
	bad := env.tx(t, []byte{modeNormal}, true)
	bad.Instructions[0].ProgramID = common.Address{0xab}
	require.NoError(t, types.SignTx(bad, env.key))
	receipt, err := env.exec.ApplyTransaction(bad)
	require.NoError(t, err)
	require.Contains(t, receipt.Err, ErrProgramNotFound.Error())
}

func TestRegistry(t *testing.T) {
	reg := NewRegistry()
	require.NoError(t, reg.Register(counterProgram{}))
	if err := reg.Register(counterProgram{}); !errors.Is(err, ErrProgramRegistered) {
		t.Fatalf("expected ErrProgramRegistered, got %v", err)
	}
	_, native, err := reg.Lookup(counterID)
	require.NoError(t, err)
	require.False(t, native)
	require.Len(t, reg.Programs(), 1)
}

func TestErrorCode(t *testing.T) {
	require.Equal(t, uint32(0), ErrorCode(nil))
	require.Equal(t, CodeRuntimeFailure, ErrorCode(errors.New("x")))
	require.Equal(t, system.ErrInsufficientFunds.Code(), ErrorCode(system.ErrInsufficientFunds))
}
