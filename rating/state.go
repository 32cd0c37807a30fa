package rating

import (
	"fmt"

	"github.com/tos-network/ratingd/borsh"
)

// MinRecordSize is the smallest region DeserializeRecord accepts.
const MinRecordSize = RecordFixedSize

// Record is the persisted rating. A zeroed region decodes to an
// uninitialized Record.
type Record struct {
	Initialized bool   `json:"initialized"`
	Rating      uint8  `json:"rating"`
	Title       string `json:"title"`
	Description string `json:"description"`
	Funding     uint32 `json:"funding"`
	Recipient   string `json:"recipient"`
	Entry       uint32 `json:"entry"`
}

// NewRecord builds the initialized record for an InitRating request.
func NewRecord(r *InitRating) *Record {
	return &Record{
		Initialized: true,
		Rating:      r.Rating,
		Title:       r.Title,
		Description: r.Description,
		Funding:     r.Funding,
		Recipient:   r.Recipient,
		Entry:       r.Entry,
	}
}

// IsInitialized reports whether the record was written by the program.
func (r *Record) IsInitialized() bool { return r.Initialized }

// EncodedSize is len(r.Serialize()).
func (r *Record) EncodedSize() int {
	return RecordFixedSize + len(r.Title) + len(r.Description) + len(r.Recipient)
}

// Serialize encodes the record in storage field order.
func (r *Record) Serialize() []byte {
	enc := borsh.NewEncoder(r.EncodedSize())
	enc.WriteBool(r.Initialized)
	enc.WriteU8(r.Rating)
	enc.WriteString(r.Title)
	enc.WriteString(r.Description)
	enc.WriteU32(r.Funding)
	enc.WriteString(r.Recipient)
	enc.WriteU32(r.Entry)
	return enc.Bytes()
}

// DeserializeRecord decodes a record from the start of data. Bytes past the
// record are ignored, since a slot may be larger than the record it holds.
func DeserializeRecord(data []byte) (*Record, error) {
	var (
		r   Record
		err error
	)
	dec := borsh.NewDecoder(data)
	if r.Initialized, err = dec.ReadBool(); err != nil {
		return nil, fmt.Errorf("initialized: %w", err)
	}
	if r.Rating, err = dec.ReadU8(); err != nil {
		return nil, fmt.Errorf("rating: %w", err)
	}
	if r.Title, err = dec.ReadString(); err != nil {
		return nil, fmt.Errorf("title: %w", err)
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
