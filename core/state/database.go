package state

import (
	"github.com/VictoriaMetrics/fastcache"
	"github.com/tos-network/ratingd/common"
	"github.com/tos-network/ratingd/core/rawdb"
	"github.com/tos-network/ratingd/core/types"
	"github.com/tos-network/ratingd/tosdb"
)

// Database wraps the key-value store with a clean cache of encoded account
// blobs. Only committed state passes through it.
type Database struct {
	disk  tosdb.KeyValueStore
	clean *fastcache.Cache // address -> compressed account blob
}

// NewDatabase creates a state database over disk with cacheMB megabytes of
// blob cache.
func NewDatabase(disk tosdb.KeyValueStore, cacheMB int) *Database {
	if cacheMB <= 0 {
		cacheMB = 16
	}
	return &Database{
		disk:  disk,
		clean: fastcache.New(cacheMB * 1024 * 1024),
	}
}

// DiskDB returns the underlying key-value store.
func (db *Database) DiskDB() tosdb.KeyValueStore { return db.disk }

// readAccount loads a committed account, or nil if absent.
func (db *Database) readAccount(addr common.Address) (*types.Account, error) {
	if blob, ok := db.clean.HasGet(nil, addr[:]); ok {
		cacheHitMeter.Mark(1)
		return rawdb.DecodeAccountBlob(blob)
	}
	cacheMissMeter.Mark(1)
	blob := rawdb.ReadAccountBlob(db.disk, addr)
	if len(blob) == 0 {
		return nil, nil
	}
	acc, err := rawdb.DecodeAccountBlob(blob)
	if err != nil {
		return nil, err
	}
	db.clean.Set(addr[:], blob)
	return acc, nil
}

// writeAccounts persists accounts atomically and refreshes the cache. Blobs
// of 64KiB and above are not cached.
func (db *Database) writeAccounts(accounts map[common.Address]*types.Account, order []common.Address) error {
	batch := db.disk.NewBatch()
	blobs := make(map[common.Address][]byte, len(order))
	for _, addr := range order {
		blob := rawdb.EncodeAccountBlob(accounts[addr])
		rawdb.WriteAccountBlob(batch, addr, blob)
		blobs[addr] = blob
	}
	if err := batch.Write(); err != nil {
		return err
	}
	for addr, blob := range blobs {
		db.clean.Set(addr[:], blob)
	}
	return nil
}

// Reset drops every cached blob.
func (db *Database) Reset() { db.clean.Reset() }
