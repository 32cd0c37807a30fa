package rawdb

import (
	"github.com/golang/snappy"
	"github.com/tos-network/ratingd/common"
	"github.com/tos-network/ratingd/core/types"
	"github.com/tos-network/ratingd/log"
	"github.com/tos-network/ratingd/tosdb"
)

// ReadAccountBlob retrieves the compressed account blob of addr.
func ReadAccountBlob(db tosdb.KeyValueReader, addr common.Address) []byte {
	data, _ := db.Get(accountKey(addr))
	return data
}

// ReadAccount retrieves the account stored at addr, or nil if absent. A
// corrupt entry is logged and treated as absent.
func ReadAccount(db tosdb.KeyValueReader, addr common.Address) *types.Account {
	blob := ReadAccountBlob(db, addr)
	if len(blob) == 0 {
		return nil
	}
	acc, err := DecodeAccountBlob(blob)
	if err != nil {
		log.Error("Invalid account entry", "address", addr, "err", err)
		return nil
	}
	accountReadMeter.Mark(1)
	return acc
}

// DecodeAccountBlob decompresses and decodes a stored account.
func DecodeAccountBlob(blob []byte) (*types.Account, error) {
	raw, err := snappy.Decode(nil, blob)
	if err != nil {
		return nil, err
	}
	return types.DecodeAccount(raw)
}

// EncodeAccountBlob produces the stored form of acc.
func EncodeAccountBlob(acc *types.Account) []byte {
	return snappy.Encode(nil, types.EncodeAccount(acc))
}

// HasAccount checks if an account is present at addr.
func HasAccount(db tosdb.KeyValueReader, addr common.Address) bool {
	ok, _ := db.Has(accountKey(addr))
	return ok
}

// WriteAccount stores acc at addr.
func WriteAccount(db tosdb.KeyValueWriter, addr common.Address, acc *types.Account) {
	WriteAccountBlob(db, addr, EncodeAccountBlob(acc))
}

// WriteAccountBlob stores an already encoded account at addr.
func WriteAccountBlob(db tosdb.KeyValueWriter, addr common.Address, blob []byte) {
	if err := db.Put(accountKey(addr), blob); err != nil {
		log.Crit("Failed to store account", "address", addr, "err", err)
	}
	accountWriteMeter.Mark(1)
}

// DeleteAccount removes the account at addr.
func DeleteAccount(db tosdb.KeyValueWriter, addr common.Address) {
	if err := db.Delete(accountKey(addr)); err != nil {
		log.Crit("Failed to delete account", "address", addr, "err", err)
	}
}

// IterateAccounts calls fn for every stored account in address order,
// starting at start (inclusive), until fn returns false. A non-nil owner
// filter skips accounts owned by anyone else.
func IterateAccounts(db tosdb.Iteratee, owner *common.Address, start common.Address, fn func(common.Address, *types.Account) bool) error {
	it := newAccountIterator(db, start)
	defer it.Release()

	for it.Next() {
		acc, err := DecodeAccountBlob(it.Value())
		if err != nil {
			log.Warn("Skipping invalid account entry", "key", common.Bytes2Hex(it.Key()), "err", err)
			continue
		}
		if owner != nil && acc.Owner != *owner {
			continue
		}
		if !fn(it.Address(), acc) {
			break
		}
	}
	return it.Error()
}
