package state

import (
	"bytes"
	"errors"
	"testing"

	"github.com/tos-network/ratingd/common"
	"github.com/tos-network/ratingd/core/rawdb"
	"github.com/tos-network/ratingd/params"
	"github.com/tos-network/ratingd/tosdb/memorydb"
)

func newTestState(t *testing.T) (*StateDB, *memorydb.Database) {
	t.Helper()
	disk := memorydb.New()
	return New(NewDatabase(disk, 0)), disk
}

func TestCreateAndCommit(t *testing.T) {
	s, disk := newTestState(t)
	addr := common.Address{1}

	if err := s.CreateAccount(addr, params.RatingProgramID, 64); err != nil {
		t.Fatalf("create failed: %v", err)
	}
	if err := s.CreateAccount(addr, params.RatingProgramID, 64); !errors.Is(err, ErrAccountExists) {
		t.Fatalf("expected ErrAccountExists, got %v", err)
	}
	if err := s.AddBalance(addr, 500); err != nil {
		t.Fatalf("add balance failed: %v", err)
	}
	if rawdb.HasAccount(disk, addr) {
		t.Fatalf("account persisted before commit")
	}
	if err := s.Commit(); err != nil {
		t.Fatalf("commit failed: %v", err)
	}
	acc := rawdb.ReadAccount(disk, addr)
	if acc == nil || acc.Lamports != 500 || len(acc.Data) != 64 || acc.Owner != params.RatingProgramID {
		t.Fatalf("committed account mismatch: %+v", acc)
	}
	// A fresh view reads through the cache.
	fresh := New(s.Database())
	if fresh.GetBalance(addr) != 500 {
		t.Fatalf("fresh view balance mismatch")
	}
}

func TestRevertToSnapshot(t *testing.T) {
	s, _ := newTestState(t)
	funder, slot := common.Address{1}, common.Address{2}
	s.AddBalance(funder, 1000)
	s.Commit()

	snap := s.Snapshot()
	if err := s.SubBalance(funder, 300); err != nil {
		t.Fatalf("sub failed: %v", err)
	}
	s.CreateAccount(slot, params.RatingProgramID, 10)
	s.AddBalance(slot, 300)
	s.SetData(slot, bytes.Repeat([]byte{1}, 10))
	inner := s.Snapshot()
	s.SetOwner(slot, params.SystemProgramID)
	s.RevertToSnapshot(inner)
	if s.GetOwner(slot) != params.RatingProgramID {
		t.Fatalf("inner revert did not restore owner")
	}
	s.RevertToSnapshot(snap)

	if s.Exist(slot) {
		t.Fatalf("reverted account still exists")
	}
	if s.GetBalance(funder) != 1000 {
		t.Fatalf("funder balance not restored: %d", s.GetBalance(funder))
	}
	if err := s.Commit(); err != nil {
		t.Fatalf("commit failed: %v", err)
	}
	if New(s.Database()).Exist(slot) {
		t.Fatalf("reverted account was committed")
	}
}

func TestBalanceErrors(t *testing.T) {
	s, _ := newTestState(t)
	addr := common.Address{1}
	if err := s.SubBalance(addr, 1); !errors.Is(err, ErrAccountNotFound) {
		t.Fatalf("expected ErrAccountNotFound, got %v", err)
	}
	s.AddBalance(addr, 5)
	if err := s.SubBalance(addr, 6); !errors.Is(err, ErrInsufficientBalance) {
		t.Fatalf("expected ErrInsufficientBalance, got %v", err)
	}
	if err := s.AddBalance(addr, ^uint64(0)); !errors.Is(err, ErrBalanceOverflow) {
		t.Fatalf("expected ErrBalanceOverflow, got %v", err)
	}
	if err := s.SetData(common.Address{9}, nil); !errors.Is(err, ErrAccountNotFound) {
		t.Fatalf("expected ErrAccountNotFound, got %v", err)
	}
}

func TestGetAccountReturnsCopy(t *testing.T) {
	s, _ := newTestState(t)
	addr := common.Address{1}
	s.CreateAccount(addr, params.RatingProgramID, 4)
	acc := s.GetAccount(addr)
	acc.Data[0] = 0xff
	acc.Lamports = 99
	if s.GetData(addr)[0] != 0 || s.GetBalance(addr) != 0 {
		t.Fatalf("caller mutated live state through GetAccount")
	}
}

func TestInvalidRevisionPanics(t *testing.T) {
	s, _ := newTestState(t)
	defer func() {
		if recover() == nil {
			t.Fatalf("expected panic")
		}
	}()
	s.RevertToSnapshot(42)
}
