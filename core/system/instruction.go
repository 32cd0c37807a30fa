package system

import (
	"github.com/tos-network/ratingd/borsh"
	"github.com/tos-network/ratingd/common"
	"github.com/tos-network/ratingd/core/types"
	"github.com/tos-network/ratingd/params"
)

// Instruction tags, encoded as a little-endian u32.
const (
	TagCreateAccount uint32 = 0
)

// CreateAccount funds and assigns a fresh account.
//
// Accounts:
//
//	[0] funder, signer, writable
//	[1] new account, signer, writable
type CreateAccount struct {
	Lamports uint64
	Space    uint64
	Owner    common.Address
}

// Encode serializes the instruction data.
func (c *CreateAccount) Encode() []byte {
	enc := borsh.NewEncoder(4 + 8 + 8 + common.AddressLength)
	enc.WriteU32(TagCreateAccount)
	enc.WriteU64(c.Lamports)
	enc.WriteU64(c.Space)
	enc.WriteFixed(c.Owner[:])
	return enc.Bytes()
}

// DecodeInstruction parses system program instruction data.
func DecodeInstruction(data []byte) (*CreateAccount, error) {
	dec := borsh.NewDecoder(data)
	tag, err := dec.ReadU32()
	if err != nil {
		return nil, wrap(ErrInvalidInstructionData, "%v", err)
	}
	if tag != TagCreateAccount {
		return nil, wrap(ErrInvalidInstructionData, "unknown tag %d", tag)
	}
	c := new(CreateAccount)
	if c.Lamports, err = dec.ReadU64(); err != nil {
		return nil, wrap(ErrInvalidInstructionData, "lamports: %v", err)
	}
	if c.Space, err = dec.ReadU64(); err != nil {
		return nil, wrap(ErrInvalidInstructionData, "space: %v", err)
	}
	owner, err := dec.ReadFixed(common.AddressLength)
	if err != nil {
		return nil, wrap(ErrInvalidInstructionData, "owner: %v", err)
	}
	c.Owner = common.BytesToAddress(owner)
	if err := dec.Finish(); err != nil {
		return nil, wrap(ErrInvalidInstructionData, "%v", err)
	}
	return c, nil
}

// NewCreateAccountInstruction builds a CreateAccount call.
func NewCreateAccountInstruction(funder, address common.Address, lamports, space uint64, owner common.Address) types.Instruction {
	data := (&CreateAccount{Lamports: lamports, Space: space, Owner: owner}).Encode()
	return types.Instruction{
		ProgramID: params.SystemProgramID,
		Accounts: []types.AccountMeta{
			types.NewAccountMeta(funder, true),
			types.NewAccountMeta(address, true),
		},
		Data: data,
	}
}
