package rawdb

import (
	"encoding/binary"

	"github.com/tos-network/ratingd/common"
	"github.com/tos-network/ratingd/core/types"
	"github.com/tos-network/ratingd/log"
	"github.com/tos-network/ratingd/tosdb"
)

// ReadDatabaseVersion retrieves the version number of the database, or nil
// for a fresh database.
func ReadDatabaseVersion(db tosdb.KeyValueReader) *uint64 {
	enc, _ := db.Get(databaseVersionKey)
	if len(enc) != 8 {
		return nil
	}
	version := binary.BigEndian.Uint64(enc)
	return &version
}

// WriteDatabaseVersion stores the version number of the database.
func WriteDatabaseVersion(db tosdb.KeyValueWriter, version uint64) {
	enc := binary.BigEndian.AppendUint64(nil, version)
	if err := db.Put(databaseVersionKey, enc); err != nil {
		log.Crit("Failed to store the database version", "err", err)
	}
}

// ReadReceipt retrieves the receipt of the transaction with the given hash.
func ReadReceipt(db tosdb.KeyValueReader, hash common.Hash) *types.Receipt {
	data, _ := db.Get(receiptKey(hash))
	if len(data) == 0 {
		return nil
	}
	r, err := types.DecodeReceipt(data)
	if err != nil {
		log.Error("Invalid receipt entry", "hash", hash, "err", err)
		return nil
	}
	return r
}

// WriteReceipt stores the receipt of a transaction under its hash.
func WriteReceipt(db tosdb.KeyValueWriter, r *types.Receipt) {
	if err := db.Put(receiptKey(r.TxHash), types.EncodeReceipt(r)); err != nil {
		log.Crit("Failed to store receipt", "hash", r.TxHash, "err", err)
	}
	receiptWriteMeter.Mark(1)
}
