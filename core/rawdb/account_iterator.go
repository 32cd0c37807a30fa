package rawdb

import (
	"github.com/tos-network/ratingd/common"
	"github.com/tos-network/ratingd/tosdb"
)

// accountIterator walks the account table, skipping keys that are not
// exactly prefix plus address long.
type accountIterator struct {
	tosdb.Iterator
}

func newAccountIterator(db tosdb.Iteratee, start common.Address) *accountIterator {
	return &accountIterator{Iterator: db.NewIterator(accountPrefix, start.Bytes())}
}

func (it *accountIterator) Next() bool {
	for it.Iterator.Next() {
		if len(it.Key()) == len(accountPrefix)+common.AddressLength {
			return true
		}
	}
	return false
}

// Address returns the account address of the current entry.
func (it *accountIterator) Address() common.Address {
	return common.BytesToAddress(it.Key()[len(accountPrefix):])
}
