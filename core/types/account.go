package types

import (
	"fmt"

	"github.com/tos-network/ratingd/borsh"
	"github.com/tos-network/ratingd/common"
	"github.com/tos-network/ratingd/params"
)

// Account is the persisted representation of an address: who owns it, the
// balance that keeps it alive and the data region its owner writes.
type Account struct {
	Owner      common.Address
	Lamports   uint64
	Data       []byte
	Executable bool
}

// Copy returns a deep copy of the account.
func (a *Account) Copy() *Account {
	if a == nil {
		return nil
	}
	cpy := *a
	cpy.Data = common.CopyBytes(a.Data)
	return &cpy
}

// IsOwnedBy reports whether program owns the account.
func (a *Account) IsOwnedBy(program common.Address) bool {
	return a != nil && a.Owner == program
}

// EncodeAccount serializes the account as owner, lamports, executable flag
// and length-prefixed data.
func EncodeAccount(a *Account) []byte {
	enc := borsh.NewEncoder(common.AddressLength + 8 + 1 + 4 + len(a.Data))
	enc.WriteFixed(a.Owner[:])
	enc.WriteU64(a.Lamports)
	enc.WriteBool(a.Executable)
	enc.WriteBytes(a.Data)
	return enc.Bytes()
}

// DecodeAccount parses an account produced by EncodeAccount.
func DecodeAccount(blob []byte) (*Account, error) {
	dec := borsh.NewDecoder(blob)
	owner, err := dec.ReadFixed(common.AddressLength)
	if err != nil {
		return nil, fmt.Errorf("account owner: %w", err)
	}
	lamports, err := dec.ReadU64()
	if err != nil {
		return nil, fmt.Errorf("account lamports: %w", err)
	}
	executable, err := dec.ReadBool()
	if err != nil {
		return nil, fmt.Errorf("account executable: %w", err)
	}
	data, err := dec.ReadBytes()
	if err != nil {
		return nil, fmt.Errorf("account data: %w", err)
	}
	if uint64(len(data)) > params.MaxPermittedDataLength {
		return nil, fmt.Errorf("account data: %d bytes exceeds limit", len(data))
	}
	if err := dec.Finish(); err != nil {
		return nil, err
	}
	return &Account{
		Owner:      common.BytesToAddress(owner),
		Lamports:   lamports,
		Data:       data,
		Executable: executable,
	}, nil
}
