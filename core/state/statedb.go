// Package state provides a journaled, cached view over the persisted
// account table.
package state

import (
	"bytes"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/tos-network/ratingd/common"
	"github.com/tos-network/ratingd/core/types"
	"github.com/tos-network/ratingd/log"
)

var (
	ErrAccountExists       = errors.New("state: account already exists")
	ErrAccountNotFound     = errors.New("state: account not found")
	ErrInsufficientBalance = errors.New("state: insufficient balance")
	ErrBalanceOverflow     = errors.New("state: balance overflow")
)

type revision struct {
	id           int
	journalIndex int
}

// StateDB holds uncommitted account changes on top of a Database. It is
// not safe for concurrent use; the executor serializes access.
type StateDB struct {
	db *Database

	// accounts caches every account touched since the last commit. A nil
	// value records that the address is known to be absent.
	accounts map[common.Address]*types.Account
	dbErr    error

	journal        *journal
	validRevisions []revision
	nextRevisionID int
}

// New creates a state view over db.
func New(db *Database) *StateDB {
	return &StateDB{
		db:       db,
		accounts: make(map[common.Address]*types.Account),
		journal:  newJournal(),
	}
}

// Database returns the backing state database.
func (s *StateDB) Database() *Database { return s.db }

// Error returns the first database error encountered while loading state.
func (s *StateDB) Error() error { return s.dbErr }

func (s *StateDB) setError(err error) {
	if s.dbErr == nil {
		s.dbErr = err
	}
}

// getAccount returns the live account at addr, loading it if needed.
func (s *StateDB) getAccount(addr common.Address) *types.Account {
	if acc, ok := s.accounts[addr]; ok {
		return acc
	}
	acc, err := s.db.readAccount(addr)
	if err != nil {
		log.Error("Failed to load account", "address", addr, "err", err)
		s.setError(fmt.Errorf("load %s: %w", addr, err))
		return nil
	}
	s.accounts[addr] = acc
	return acc
}

// GetAccount returns a copy of the account at addr, or nil if absent.
func (s *StateDB) GetAccount(addr common.Address) *types.Account {
	return s.getAccount(addr).Copy()
}

// Exist reports whether an account is present at addr.
func (s *StateDB) Exist(addr common.Address) bool {
	return s.getAccount(addr) != nil
}

// GetBalance returns the lamports held at addr, zero if absent.
func (s *StateDB) GetBalance(addr common.Address) uint64 {
	if acc := s.getAccount(addr); acc != nil {
		return acc.Lamports
	}
	return 0
}

// GetOwner returns the owner of addr, the zero address if absent.
func (s *StateDB) GetOwner(addr common.Address) common.Address {
	if acc := s.getAccount(addr); acc != nil {
		return acc.Owner
	}
	return common.Address{}
}

// GetData returns a copy of the data region at addr.
func (s *StateDB) GetData(addr common.Address) []byte {
	if acc := s.getAccount(addr); acc != nil {
		return common.CopyBytes(acc.Data)
	}
	return nil
}

// CreateAccount brings a new zero-balance account with space zeroed bytes
// into existence, owned by owner.
func (s *StateDB) CreateAccount(addr common.Address, owner common.Address, space uint64) error {
	if s.getAccount(addr) != nil {
		return fmt.Errorf("%w: %s", ErrAccountExists, addr)
	}
	s.accounts[addr] = &types.Account{Owner: owner, Data: make([]byte, space)}
	s.journal.append(createAccountChange{account: addr})
	accountCreatedMeter.Mark(1)
	return nil
}

// AddBalance credits amount to addr. Crediting an absent address creates a
// system owned account with no data.
func (s *StateDB) AddBalance(addr common.Address, amount uint64) error {
	acc := s.getAccount(addr)
	if acc == nil {
		if err := s.CreateAccount(addr, common.Address{}, 0); err != nil {
			return err
		}
		acc = s.accounts[addr]
	}
	if acc.Lamports+amount < acc.Lamports {
		return fmt.Errorf("%w: %s", ErrBalanceOverflow, addr)
	}
	s.journal.append(balanceChange{account: addr, prev: acc.Lamports})
	acc.Lamports += amount
	accountUpdatedMeter.Mark(1)
	return nil
}

// SubBalance debits amount from addr.
func (s *StateDB) SubBalance(addr common.Address, amount uint64) error {
	acc := s.getAccount(addr)
	if acc == nil {
		return fmt.Errorf("%w: %s", ErrAccountNotFound, addr)
	}
	if acc.Lamports < amount {
		return fmt.Errorf("%w: %s has %d, need %d", ErrInsufficientBalance, addr, acc.Lamports, amount)
	}
	s.journal.append(balanceChange{account: addr, prev: acc.Lamports})
	acc.Lamports -= amount
	accountUpdatedMeter.Mark(1)
	return nil
}

// SetData replaces the data region of addr.
func (s *StateDB) SetData(addr common.Address, data []byte) error {
	acc := s.getAccount(addr)
	if acc == nil {
		return fmt.Errorf("%w: %s", ErrAccountNotFound, addr)
	}
	s.journal.append(dataChange{account: addr, prev: acc.Data})
	acc.Data = common.CopyBytes(data)
	accountUpdatedMeter.Mark(1)
	return nil
}

// SetOwner assigns addr to a new owner program.
func (s *StateDB) SetOwner(addr common.Address, owner common.Address) error {
	acc := s.getAccount(addr)
	if acc == nil {
		return fmt.Errorf("%w: %s", ErrAccountNotFound, addr)
	}
	s.journal.append(ownerChange{account: addr, prev: acc.Owner})
	acc.Owner = owner
	accountUpdatedMeter.Mark(1)
	return nil
}

// Snapshot returns an identifier for the current revision of the state.
func (s *StateDB) Snapshot() int {
	id := s.nextRevisionID
	s.nextRevisionID++
	s.validRevisions = append(s.validRevisions, revision{id, s.journal.length()})
	return id
}

// RevertToSnapshot reverts all state changes made since the given revision.
func (s *StateDB) RevertToSnapshot(revid int) {
	// Find the snapshot in the stack of valid snapshots.
	idx := sort.Search(len(s.validRevisions), func(i int) bool {
		return s.validRevisions[i].id >= revid
	})
	if idx == len(s.validRevisions) || s.validRevisions[idx].id != revid {
		panic(fmt.Errorf("revision id %v cannot be reverted", revid))
	}
	snapshot := s.validRevisions[idx].journalIndex

	// Replay the journal to undo changes and remove invalidated snapshots
	s.journal.revert(s, snapshot)
	s.validRevisions = s.validRevisions[:idx]
	stateRevertedMeter.Mark(1)
}

// Commit writes every dirty account to the database in one batch and
// clears the journal.
func (s *StateDB) Commit() error {
	if s.dbErr != nil {
		return s.dbErr
	}
	start := time.Now()

	dirty := make(addresses, 0, len(s.journal.dirties))
	for addr := range s.journal.dirties {
		if s.accounts[addr] != nil {
			dirty = append(dirty, addr)
		}
	}
	sort.Sort(dirty)
	if err := s.db.writeAccounts(s.accounts, dirty); err != nil {
		return err
	}
	accountCommittedMeter.Mark(int64(len(dirty)))
	commitTimer.UpdateSince(start)

	s.accounts = make(map[common.Address]*types.Account)
	s.journal = newJournal()
	s.validRevisions = s.validRevisions[:0]
	return nil
}

// addresses sorts dirty accounts so commits write in a stable order.
type addresses []common.Address

func (as addresses) Len() int           { return len(as) }
func (as addresses) Less(i, j int) bool { return bytes.Compare(as[i][:], as[j][:]) < 0 }
func (as addresses) Swap(i, j int)      { as[i], as[j] = as[j], as[i] }
