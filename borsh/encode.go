package borsh

import "encoding/binary"

// Encoder appends values to an internal buffer.
type Encoder struct {
	buf []byte
}

// NewEncoder creates an encoder with sizeHint bytes preallocated.
func NewEncoder(sizeHint int) *Encoder {
	return &Encoder{buf: make([]byte, 0, sizeHint)}
}

// Bytes returns the encoded output.
func (e *Encoder) Bytes() []byte { return e.buf }

// Len returns the number of bytes written so far.
func (e *Encoder) Len() int { return len(e.buf) }

func (e *Encoder) WriteU8(v uint8) { e.buf = append(e.buf, v) }

func (e *Encoder) WriteBool(v bool) {
	if v {
		e.buf = append(e.buf, 1)
		return
	}
	e.buf = append(e.buf, 0)
}

func (e *Encoder) WriteU32(v uint32) {
	e.buf = binary.LittleEndian.AppendUint32(e.buf, v)
}

func (e *Encoder) WriteU64(v uint64) {
	e.buf = binary.LittleEndian.AppendUint64(e.buf, v)
}

// WriteFixed appends b without a length prefix.
func (e *Encoder) WriteFixed(b []byte) { e.buf = append(e.buf, b...) }

// WriteBytes appends a u32 length prefix and b.
func (e *Encoder) WriteBytes(b []byte) {
	e.WriteU32(uint32(len(b)))
	e.buf = append(e.buf, b...)
}

// WriteString appends a u32 length prefix and the bytes of s.
func (e *Encoder) WriteString(s string) {
	e.WriteU32(uint32(len(s)))
	e.buf = append(e.buf, s...)
}

// StringSize returns the encoded size of s.
func StringSize(s string) int { return 4 + len(s) }
