package rating

import (
	"fmt"

	"github.com/tos-network/ratingd/borsh"
	"github.com/tos-network/ratingd/common"
	"github.com/tos-network/ratingd/core/types"
	"github.com/tos-network/ratingd/params"
)

// Variant is the one-byte tag leading every instruction.
type Variant uint8

// VariantInitRating creates a rating record.
const VariantInitRating Variant = 0

// Instruction is a decoded request.
type Instruction interface {
	Variant() Variant
}

// InitRating asks the program to create the record keyed by the caller and
// Title.
type InitRating struct {
	Title       string
	Rating      uint8
	Description string
	Funding     uint32
	Recipient   string
	Entry       uint32
}

// Variant implements Instruction.
func (*InitRating) Variant() Variant { return VariantInitRating }

// decodeFunc parses the payload following a tag. It must consume the whole
// payload or fail.
type decodeFunc func(dec *borsh.Decoder) (Instruction, error)

var variants = make(map[Variant]decodeFunc)

// registerVariant adds a tag to the dispatch table.
func registerVariant(v Variant, fn decodeFunc) {
	if _, ok := variants[v]; ok {
		panic(fmt.Sprintf("rating: variant %d registered twice", v))
	}
	variants[v] = fn
}

func init() {
	registerVariant(VariantInitRating, decodeInitRating)
}

// DecodeInstruction parses raw instruction data. It never panics and never
// returns a partially decoded value.
func DecodeInstruction(data []byte) (Instruction, error) {
	if len(data) == 0 {
		return nil, ErrEmptyInstruction
	}
	fn, ok := variants[Variant(data[0])]
	if !ok {
		return nil, fmt.Errorf("%w: tag %d", ErrUnknownVariant, data[0])
	}
	dec := borsh.NewDecoder(data[1:])
	ix, err := fn(dec)
	if err == nil {
		err = dec.Finish()
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedInstruction, err)
	}
	return ix, nil
}

func decodeInitRating(dec *borsh.Decoder) (Instruction, error) {
	var (
		r   InitRating
		err error
	)
	if r.Title, err = dec.ReadString(); err != nil {
		return nil, fmt.Errorf("title: %w", err)
	}
	if r.Rating, err = dec.ReadU8(); err != nil {
		return nil, fmt.Errorf("rating: %w", err)
	}
	if r.Description, err = dec.ReadString(); err != nil {
		return nil, fmt.Errorf("description: %w", err)
	}
	if r.Funding, err = dec.ReadU32(); err != nil {
		return nil, fmt.Errorf("funding: %w", err)
	}
	if r.Recipient, err = dec.ReadString(); err != nil {
		return nil, fmt.Errorf("recipient: %w", err)
	}
	if r.Entry, err = dec.ReadU32(); err != nil {
		return nil, fmt.Errorf("entry: %w", err)
	}
	return &r, nil
}

// Encode serializes the instruction including its tag.
func (r *InitRating) Encode() []byte {
	enc := borsh.NewEncoder(RecordFixedSize + len(r.Title) + len(r.Description) + len(r.Recipient))
	enc.WriteU8(uint8(VariantInitRating))
	enc.WriteString(r.Title)
	enc.WriteU8(r.Rating)
	enc.WriteString(r.Description)
	enc.WriteU32(r.Funding)
	enc.WriteString(r.Recipient)
	enc.WriteU32(r.Entry)
	return enc.Bytes()
}

// EncodeInitRating is the client side inverse of DecodeInstruction.
func EncodeInitRating(r *InitRating) []byte { return r.Encode() }

// NewInitRatingInstruction builds the InitRating call for caller against
// the program at program, with the derived record slot and the system
// allocator in their expected positions.
func NewInitRatingInstruction(program, caller common.Address, req *InitRating) (types.Instruction, error) {
	slot, _, err := FindRecordAddress(caller, req.Title, program)
	if err != nil {
		return types.Instruction{}, err
	}
	return types.Instruction{
		ProgramID: program,
		Accounts: []types.AccountMeta{
			types.NewAccountMeta(caller, true),
			types.NewAccountMeta(slot, false),
			types.NewReadonlyAccountMeta(params.SystemProgramID, false),
		},
		Data: req.Encode(),
	}, nil
}
