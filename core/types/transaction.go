package types

import (
	"errors"
	"fmt"

	"github.com/tos-network/ratingd/borsh"
	"github.com/tos-network/ratingd/common"
	"github.com/tos-network/ratingd/crypto"
	"github.com/tos-network/ratingd/crypto/ed25519"
	"github.com/tos-network/ratingd/params"
)

var (
	ErrTxTooLarge      = errors.New("transaction too large")
	ErrNoInstructions  = errors.New("transaction has no instructions")
	ErrTooManySigners  = errors.New("too many signatures")
	errTxDecodeFailure = errors.New("transaction decode failed")
)

// maxTxInstructions bounds the instruction count a decoded transaction may
// claim. A minimal instruction is a program id plus two length prefixes.
const maxTxInstructions = params.MaxTransactionSize / (common.AddressLength + 8)

// Signature is an ed25519 signature by Signer over the transaction's signing
// hash.
type Signature struct {
	Signer common.Address
	Bytes  [ed25519.SignatureSize]byte
}

const signatureSize = common.AddressLength + ed25519.SignatureSize

// Transaction is an atomic list of instructions plus the signatures that
// authenticate the accounts marked as signers.
type Transaction struct {
	Instructions []Instruction
	Signatures   []Signature
}

// NewTransaction creates an unsigned transaction.
func NewTransaction(ixs ...Instruction) *Transaction {
	return &Transaction{Instructions: ixs}
}

// SigningHash returns the digest the signatures commit to: the Keccak256 of
// the encoded instructions.
func (tx *Transaction) SigningHash() common.Hash {
	return crypto.Keccak256Hash(EncodeInstructions(tx.Instructions))
}

// Hash returns the transaction identifier, covering instructions and
// signatures.
func (tx *Transaction) Hash() common.Hash {
	return crypto.Keccak256Hash(EncodeTransaction(tx))
}

// RequiredSigners lists every account flagged as a signer, in first-seen
// order without duplicates.
func (tx *Transaction) RequiredSigners() []common.Address {
	var (
		seen = make(map[common.Address]struct{})
		out  []common.Address
	)
	for _, ix := range tx.Instructions {
		for _, meta := range ix.Accounts {
			if !meta.IsSigner {
				continue
			}
			if _, ok := seen[meta.Pubkey]; ok {
				continue
			}
			seen[meta.Pubkey] = struct{}{}
			out = append(out, meta.Pubkey)
		}
	}
	return out
}

// EncodeTransaction serializes tx.
func EncodeTransaction(tx *Transaction) []byte {
	enc := borsh.NewEncoder(256)
	enc.WriteU32(uint32(len(tx.Instructions)))
	for i := range tx.Instructions {
		encodeInstruction(enc, &tx.Instructions[i])
	}
	enc.WriteU32(uint32(len(tx.Signatures)))
	for _, sig := range tx.Signatures {
		enc.WriteFixed(sig.Signer[:])
		enc.WriteFixed(sig.Bytes[:])
	}
	return enc.Bytes()
}

// DecodeTransaction parses an encoded transaction. Input larger than
// params.MaxTransactionSize is rejected before parsing.
func DecodeTransaction(blob []byte) (*Transaction, error) {
	if len(blob) > params.MaxTransactionSize {
		return nil, fmt.Errorf("%w: %d bytes", ErrTxTooLarge, len(blob))
	}
	dec := borsh.NewDecoder(blob)

	n, err := dec.ReadU32()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", errTxDecodeFailure, err)
	}
	if n > maxTxInstructions {
		return nil, fmt.Errorf("%w: %d", ErrTooManyInstructions, n)
	}
	tx := &Transaction{Instructions: make([]Instruction, 0, n)}
	for i := uint32(0); i < n; i++ {
		ix, err := decodeInstruction(dec)
		if err != nil {
			return nil, fmt.Errorf("%w: instruction %d: %v", errTxDecodeFailure, i, err)
		}
		tx.Instructions = append(tx.Instructions, ix)
	}

	m, err := dec.ReadU32()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", errTxDecodeFailure, err)
	}
	if int(m)*signatureSize > dec.Remaining() {
		return nil, fmt.Errorf("%w: %d signatures", ErrTooManySigners, m)
	}
	tx.Signatures = make([]Signature, m)
	for i := range tx.Signatures {
		signer, _ := dec.ReadFixed(common.AddressLength)
		raw, _ := dec.ReadFixed(ed25519.SignatureSize)
		tx.Signatures[i].Signer = common.BytesToAddress(signer)
		copy(tx.Signatures[i].Bytes[:], raw)
	}
	if err := dec.Finish(); err != nil {
		return nil, fmt.Errorf("%w: %v", errTxDecodeFailure, err)
	}
	return tx, nil
}
