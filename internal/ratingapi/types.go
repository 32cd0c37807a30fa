package ratingapi

import (
	"github.com/tos-network/ratingd/common"
	"github.com/tos-network/ratingd/core/types"
	"github.com/tos-network/ratingd/rating"
)

// SendTxArgs is the body of POST /v1/transactions.
type SendTxArgs struct {
	// Tx is the borsh encoded transaction in standard base64.
	Tx string `json:"tx"`
}

// AccountResult is the JSON view of an account.
type AccountResult struct {
	Address    common.Address `json:"address"`
	Owner      common.Address `json:"owner"`
	Lamports   uint64         `json:"lamports"`
	Data       []byte         `json:"data"`
	Executable bool           `json:"executable"`
}

func newAccountResult(addr common.Address, acc *types.Account) *AccountResult {
	return &AccountResult{
		Address:    addr,
		Owner:      acc.Owner,
		Lamports:   acc.Lamports,
		Data:       acc.Data,
		Executable: acc.Executable,
	}
}

// RecordResult is a decoded rating record and the slot holding it. The
// bexpr tags name the fields list filters may select on.
type RecordResult struct {
	Address     common.Address `json:"address" bexpr:"address"`
	Initialized bool           `json:"initialized" bexpr:"initialized"`
	Rating      uint8          `json:"rating" bexpr:"rating"`
	Title       string         `json:"title" bexpr:"title"`
	Description string         `json:"description" bexpr:"description"`
	Funding     uint32         `json:"funding" bexpr:"funding"`
	Recipient   string         `json:"recipient" bexpr:"recipient"`
	Entry       uint32         `json:"entry" bexpr:"entry"`
}

func newRecordResult(addr common.Address, rec *rating.Record) *RecordResult {
	return &RecordResult{
		Address:     addr,
		Initialized: rec.Initialized,
		Rating:      rec.Rating,
		Title:       rec.Title,
		Description: rec.Description,
		Funding:     rec.Funding,
		Recipient:   rec.Recipient,
		Entry:       rec.Entry,
	}
}

// RecordPage is one page of GET /v1/records.
type RecordPage struct {
	Page    int             `json:"page"`
	Limit   int             `json:"limit"`
	Records []*RecordResult `json:"records"`
	More    bool            `json:"more"`
}

// DeriveResult is the response of GET /v1/derive.
type DeriveResult struct {
	Address common.Address `json:"address"`
	Bump    uint8          `json:"bump"`
}

// AirdropArgs is the body of POST /v1/airdrop.
type AirdropArgs struct {
	Address  common.Address `json:"address"`
	Lamports uint64         `json:"lamports"`
}

// AirdropResult reports the balance after an airdrop.
type AirdropResult struct {
	Address common.Address `json:"address"`
	Balance uint64         `json:"balance"`
}

// ErrorResult is the body of every non-2xx response.
type ErrorResult struct {
	Error string `json:"error"`
}
