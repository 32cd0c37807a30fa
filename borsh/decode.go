// Package borsh implements the deterministic binary encoding used on the wire
// and in account data: fixed-width little-endian integers, one-byte booleans
// and u32 length-prefixed strings and byte slices.
//
// The decoder is exposed to attacker-controlled input. Every read is bounds
// checked against the remaining buffer before anything is allocated, so a
// forged length prefix costs nothing and no input can make it panic.
package borsh

import (
	"encoding/binary"
	"errors"
	"fmt"
	"unicode/utf8"
)

var (
	ErrTruncated      = errors.New("borsh: truncated input")
	ErrInvalidBool    = errors.New("borsh: invalid bool value")
	ErrInvalidUTF8    = errors.New("borsh: string is not valid utf-8")
	ErrTrailingBytes  = errors.New("borsh: trailing bytes after value")
	ErrLengthOverflow = errors.New("borsh: length prefix overflows")
)

// Decoder reads values sequentially from a byte slice.
type Decoder struct {
	buf []byte
	off int
}

// NewDecoder creates a decoder over buf. buf is not copied.
func NewDecoder(buf []byte) *Decoder {
	return &Decoder{buf: buf}
}

// Remaining returns the number of unread bytes.
func (d *Decoder) Remaining() int { return len(d.buf) - d.off }

// Offset returns the number of bytes consumed so far.
func (d *Decoder) Offset() int { return d.off }

// Finish fails if any input is left unread.
func (d *Decoder) Finish() error {
	if n := d.Remaining(); n != 0 {
		return fmt.Errorf("%w: %d bytes", ErrTrailingBytes, n)
	}
	return nil
}

func (d *Decoder) take(n int) ([]byte, error) {
	if n < 0 || n > d.Remaining() {
		return nil, fmt.Errorf("%w: need %d bytes at offset %d, have %d", ErrTruncated, n, d.off, d.Remaining())
	}
	b := d.buf[d.off : d.off+n]
	d.off += n
	return b, nil
}

// ReadU8 reads one byte.
func (d *Decoder) ReadU8() (uint8, error) {
	b, err := d.take(1)
	if err != nil {
		return 0, err
	}
	return b[0], nil
}

// ReadBool reads a one-byte boolean. Only 0 and 1 are accepted.
func (d *Decoder) ReadBool() (bool, error) {
	v, err := d.ReadU8()
	if err != nil {
		return false, err
	}
	switch v {
	case 0:
		return false, nil
	case 1:
		return true, nil
	}
	return false, fmt.Errorf("%w: %#x", ErrInvalidBool, v)
}

// ReadU32 reads a little-endian uint32.
func (d *Decoder) ReadU32() (uint32, error) {
	b, err := d.take(4)
	if err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint32(b), nil
}

// ReadU64 reads a little-endian uint64.
func (d *Decoder) ReadU64() (uint64, error) {
	b, err := d.take(8)
	if err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint64(b), nil
}

// ReadFixed reads exactly n raw bytes and returns a copy.
func (d *Decoder) ReadFixed(n int) ([]byte, error) {
	b, err := d.take(n)
	if err != nil {
		return nil, err
	}
	out := make([]byte, n)
	copy(out, b)
	return out, nil
}

// ReadBytes reads a u32 length prefix followed by that many raw bytes.
func (d *Decoder) ReadBytes() ([]byte, error) {
	n, err := d.readLen()
	if err != nil {
		return nil, err
	}
	return d.ReadFixed(n)
}

// ReadString reads a u32 length prefix followed by UTF-8 bytes.
func (d *Decoder) ReadString() (string, error) {
	n, err := d.readLen()
	if err != nil {
		return "", err
	}
	b, err := d.take(n)
	if err != nil {
		return "", err
	}
	if !utf8.Valid(b) {
		return "", ErrInvalidUTF8
	}
	return string(b), nil
}

func (d *Decoder) readLen() (int, error) {
	n, err := d.ReadU32()
	if err != nil {
		return 0, err
	}
	if uint64(n) > uint64(maxInt) {
		return 0, ErrLengthOverflow
	}
	if int(n) > d.Remaining() {
		return 0, fmt.Errorf("%w: length prefix %d exceeds remaining %d", ErrTruncated, n, d.Remaining())
	}
	return int(n), nil
}

const maxInt = int(^uint(0) >> 1)
