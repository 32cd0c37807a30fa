package rawdb

import (
	"github.com/tos-network/ratingd/common"
	"github.com/tos-network/ratingd/metrics"
)

// The fields below define the low level database schema prefixing.
var (
	accountPrefix = []byte("a") // accountPrefix + address -> snappy(account)
	receiptPrefix = []byte("r") // receiptPrefix + tx hash -> receipt

	// databaseVersionKey tracks the current database schema version.
	databaseVersionKey = []byte("DatabaseVersion")
)

// DatabaseVersion is bumped on every incompatible schema change.
const DatabaseVersion = 1

var (
	accountReadMeter  = metrics.NewRegisteredMeter("db/account/read", nil)
	accountWriteMeter = metrics.NewRegisteredMeter("db/account/write", nil)
	receiptWriteMeter = metrics.NewRegisteredMeter("db/receipt/write", nil)
)

// accountKey = accountPrefix + address
func accountKey(addr common.Address) []byte {
	return append(append([]byte{}, accountPrefix...), addr.Bytes()...)
}

// receiptKey = receiptPrefix + hash
func receiptKey(hash common.Hash) []byte {
	return append(append([]byte{}, receiptPrefix...), hash.Bytes()...)
}
