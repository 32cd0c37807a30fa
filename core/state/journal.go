package state

import (
	"github.com/tos-network/ratingd/common"
	"github.com/tos-network/ratingd/core/types"
)

// journalEntry is a modification entry in the state change journal that can be
// reverted on demand.
type journalEntry interface {
	// revert undoes the changes introduced by this journal entry.
	revert(*StateDB)

	// dirtied returns the address modified by this journal entry.
	dirtied() common.Address
}

// journal contains the list of state modifications applied since the last
// commit. These are tracked to be able to be reverted in the case of an
// execution exception or request for reversal.
type journal struct {
	entries []journalEntry         // Current changes tracked by the journal
	dirties map[common.Address]int // Dirty accounts and the number of changes
}

// newJournal creates a new initialized journal.
func newJournal() *journal {
	return &journal{
		dirties: make(map[common.Address]int),
	}
}

// append inserts a new modification entry to the end of the change journal.
func (j *journal) append(entry journalEntry) {
	j.entries = append(j.entries, entry)
	j.dirties[entry.dirtied()]++
}

// revert undoes a batch of journalled modifications along with any reverted
// dirty handling too.
func (j *journal) revert(statedb *StateDB, snapshot int) {
	for i := len(j.entries) - 1; i >= snapshot; i-- {
		// Undo the changes made by the operation
		j.entries[i].revert(statedb)

		// Drop any dirty tracking induced by the change
		addr := j.entries[i].dirtied()
		if j.dirties[addr]--; j.dirties[addr] == 0 {
			delete(j.dirties, addr)
		}
	}
	j.entries = j.entries[:snapshot]
}

// length returns the current number of entries in the journal.
func (j *journal) length() int {
	return len(j.entries)
}

type (
	// createAccountChange undoes the creation of a fresh account.
	createAccountChange struct {
		account common.Address
	}
	balanceChange struct {
		account common.Address
		prev    uint64
	}
	dataChange struct {
		account common.Address
		prev    []byte
	}
	ownerChange struct {
		account common.Address
		prev    common.Address
	}
)

func (ch createAccountChange) revert(s *StateDB) {
	// The account was known to be absent before creation.
	s.accounts[ch.account] = nil
}

func (ch createAccountChange) dirtied() common.Address { return ch.account }

func (ch balanceChange) revert(s *StateDB) {
	s.mustLive(ch.account).Lamports = ch.prev
}

func (ch balanceChange) dirtied() common.Address { return ch.account }

func (ch dataChange) revert(s *StateDB) {
	s.mustLive(ch.account).Data = ch.prev
}

func (ch dataChange) dirtied() common.Address { return ch.account }

func (ch ownerChange) revert(s *StateDB) {
	s.mustLive(ch.account).Owner = ch.prev
}

func (ch ownerChange) dirtied() common.Address { return ch.account }

// mustLive returns the in-memory account for a journalled address. Entries
// only exist for accounts that were live when they were recorded.
func (s *StateDB) mustLive(addr common.Address) *types.Account {
	acc := s.accounts[addr]
	if acc == nil {
		panic("state: journal entry for missing account " + addr.String())
	}
	return acc
}
