package types

import (
	"fmt"

	"github.com/tos-network/ratingd/borsh"
	"github.com/tos-network/ratingd/common"
)

const (
	// ReceiptStatusFailed is the status code of a transaction if execution failed.
	ReceiptStatusFailed = uint64(0)

	// ReceiptStatusSuccessful is the status code of a transaction if execution succeeded.
	ReceiptStatusSuccessful = uint64(1)
)

// Receipt records the outcome of a transaction. Code carries the failing
// program's error code, zero on success.
type Receipt struct {
	TxHash common.Hash `json:"transactionHash"`
	Status uint64      `json:"status"`
	Code   uint32      `json:"code"`
	Err    string      `json:"error,omitempty"`
	Logs   []string    `json:"logs"`
}

// Succeeded reports whether the transaction was applied.
func (r *Receipt) Succeeded() bool { return r.Status == ReceiptStatusSuccessful }

// EncodeReceipt serializes r.
func EncodeReceipt(r *Receipt) []byte {
	enc := borsh.NewEncoder(64)
	enc.WriteFixed(r.TxHash[:])
	enc.WriteU64(r.Status)
	enc.WriteU32(r.Code)
	enc.WriteString(r.Err)
	enc.WriteU32(uint32(len(r.Logs)))
	for _, l := range r.Logs {
		enc.WriteString(l)
	}
	return enc.Bytes()
}

// DecodeReceipt parses a receipt produced by EncodeReceipt.
func DecodeReceipt(blob []byte) (*Receipt, error) {
	dec := borsh.NewDecoder(blob)
	r := new(Receipt)
	hash, err := dec.ReadFixed(common.HashLength)
	if err != nil {
		return nil, fmt.Errorf("receipt hash: %w", err)
	}
	r.TxHash = common.BytesToHash(hash)
	if r.Status, err = dec.ReadU64(); err != nil {
		return nil, fmt.Errorf("receipt status: %w", err)
	}
	if r.Code, err = dec.ReadU32(); err != nil {
		return nil, fmt.Errorf("receipt code: %w", err)
	}
	if r.Err, err = dec.ReadString(); err != nil {
		return nil, fmt.Errorf("receipt error: %w", err)
	}
	n, err := dec.ReadU32()
	if err != nil {
		return nil, fmt.Errorf("receipt logs: %w", err)
	}
	// Each log carries at least its length prefix.
	if int(n)*4 > dec.Remaining() {
		return nil, fmt.Errorf("receipt logs: %w", borsh.ErrTruncated)
	}
	r.Logs = make([]string, n)
	for i := range r.Logs {
		if r.Logs[i], err = dec.ReadString(); err != nil {
			return nil, fmt.Errorf("receipt log %d: %w", i, err)
		}
	}
	return r, dec.Finish()
}
