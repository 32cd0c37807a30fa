package types

import (
	"errors"
	"fmt"

	"github.com/tos-network/ratingd/borsh"
	"github.com/tos-network/ratingd/common"
	"github.com/tos-network/ratingd/params"
)

var (
	ErrTooManyAccounts     = errors.New("too many instruction accounts")
	ErrTooManyInstructions = errors.New("too many instructions")
)

// AccountMeta declares one account an instruction touches and the privileges
// it requests for it.
type AccountMeta struct {
	Pubkey     common.Address
	IsSigner   bool
	IsWritable bool
}

// NewAccountMeta returns a writable account meta.
func NewAccountMeta(addr common.Address, signer bool) AccountMeta {
	return AccountMeta{Pubkey: addr, IsSigner: signer, IsWritable: true}
}

// NewReadonlyAccountMeta returns a read-only account meta.
func NewReadonlyAccountMeta(addr common.Address, signer bool) AccountMeta {
	return AccountMeta{Pubkey: addr, IsSigner: signer}
}

// Instruction is a call into a program: the program id, the ordered
// accounts it operates on and opaque input data.
type Instruction struct {
	ProgramID common.Address
	Accounts  []AccountMeta
	Data      []byte
}

const accountMetaSize = common.AddressLength + 2

func encodeInstruction(enc *borsh.Encoder, ix *Instruction) {
	enc.WriteFixed(ix.ProgramID[:])
	enc.WriteU32(uint32(len(ix.Accounts)))
	for _, meta := range ix.Accounts {
		enc.WriteFixed(meta.Pubkey[:])
		enc.WriteBool(meta.IsSigner)
		enc.WriteBool(meta.IsWritable)
	}
	enc.WriteBytes(ix.Data)
}

func decodeInstruction(dec *borsh.Decoder) (Instruction, error) {
	var ix Instruction
	program, err := dec.ReadFixed(common.AddressLength)
	if err != nil {
		return ix, err
	}
	ix.ProgramID = common.BytesToAddress(program)

	n, err := dec.ReadU32()
	if err != nil {
		return ix, err
	}
	if n > params.MaxInstructionAccounts {
		return ix, fmt.Errorf("%w: %d", ErrTooManyAccounts, n)
	}
	if int(n)*accountMetaSize > dec.Remaining() {
		return ix, borsh.ErrTruncated
	}
	ix.Accounts = make([]AccountMeta, n)
	for i := range ix.Accounts {
		key, err := dec.ReadFixed(common.AddressLength)
		if err != nil {
			return ix, err
		}
		ix.Accounts[i].Pubkey = common.BytesToAddress(key)
		if ix.Accounts[i].IsSigner, err = dec.ReadBool(); err != nil {
			return ix, err
		}
		if ix.Accounts[i].IsWritable, err = dec.ReadBool(); err != nil {
			return ix, err
		}
	}
	if ix.Data, err = dec.ReadBytes(); err != nil {
		return ix, err
	}
	return ix, nil
}

// EncodeInstructions serializes a list of instructions. This is the message
// that transaction signatures commit to.
func EncodeInstructions(ixs []Instruction) []byte {
	enc := borsh.NewEncoder(128)
	enc.WriteU32(uint32(len(ixs)))
	for i := range ixs {
		encodeInstruction(enc, &ixs[i])
	}
	return enc.Bytes()
}
