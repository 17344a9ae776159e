// Package binary provides low-level binary decoding for SAS7BDAT file parsing.
//
// Every length, offset, and count field in a SAS7BDAT file is stored in the
// byte order and native word width declared by the file's preamble. Reader
// captures both once and exposes uniform decode methods thereafter.
package binary

import (
	"encoding/binary"
	"errors"
	"fmt"
)

// ErrTruncated is returned when a buffer is too short for the requested read.
var ErrTruncated = errors.New("truncated buffer")

// ErrInvalidWidth is returned when a word width other than 4 or 8 is specified.
var ErrInvalidWidth = errors.New("invalid word width: must be 4 or 8")

// Reader decodes fixed-width integers from byte slices using a byte order and
// native word width fixed at construction. It holds no other state and is safe
// to share across pages.
type Reader struct {
	order binary.ByteOrder
	width int
}

// New creates a Reader for the given byte order and word width (4 or 8 bytes).
func New(order binary.ByteOrder, width int) (*Reader, error) {
	if width != 4 && width != 8 {
		return nil, ErrInvalidWidth
	}
	return &Reader{order: order, width: width}, nil
}

// Width returns the native word width in bytes.
func (r *Reader) Width() int {
	return r.width
}

// Order returns the configured byte order.
func (r *Reader) Order() binary.ByteOrder {
	return r.order
}

func (r *Reader) check(buf []byte, n int) error {
	if len(buf) < n {
		return fmt.Errorf("need %d bytes, have %d: %w", n, len(buf), ErrTruncated)
	}
	return nil
}

// Uint16 reads an unsigned 16-bit integer from the start of buf.
func (r *Reader) Uint16(buf []byte) (uint16, error) {
	if err := r.check(buf, 2); err != nil {
		return 0, err
	}
	return r.order.Uint16(buf), nil
}

// Int16 reads a signed 16-bit integer from the start of buf.
func (r *Reader) Int16(buf []byte) (int16, error) {
	v, err := r.Uint16(buf)
	return int16(v), err
}

// Int32 reads a signed 32-bit integer from the start of buf.
func (r *Reader) Int32(buf []byte) (int32, error) {
	if err := r.check(buf, 4); err != nil {
		return 0, err
	}
	return int32(r.order.Uint32(buf)), nil
}

// Int64 reads a signed 64-bit integer from the start of buf.
func (r *Reader) Int64(buf []byte) (int64, error) {
	if err := r.check(buf, 8); err != nil {
		return 0, err
	}
	return int64(r.order.Uint64(buf)), nil
}

// Int reads a signed integer of the native word width from the start of buf.
func (r *Reader) Int(buf []byte) (int64, error) {
	if r.width == 8 {
		return r.Int64(buf)
	}
	v, err := r.Int32(buf)
	return int64(v), err
}

// Uint reads an unsigned integer of the native word width from the start of buf.
func (r *Reader) Uint(buf []byte) (uint64, error) {
	if r.width == 8 {
		if err := r.check(buf, 8); err != nil {
			return 0, err
		}
		return r.order.Uint64(buf), nil
	}
	if err := r.check(buf, 4); err != nil {
		return 0, err
	}
	return uint64(r.order.Uint32(buf)), nil
}
