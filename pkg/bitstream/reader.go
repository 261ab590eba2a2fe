package bitstream

import (
	"errors"
	"io"
)

// MaxWidth is the widest field ReadBits can return.
const MaxWidth = 64

var ErrInvalidWidth = errors.New("bitstream: invalid field width")

// Reader reads bit fields written by Writer.
type Reader struct {
	data []byte
	// Bit position of the next read
	pos int
}

// NewReader creates a new Reader over data.
func NewReader(data []byte) *Reader {
	return &Reader{
		data: data,
		pos:  0,
	}
}

// ReadBit reads one bit. It returns io.EOF once every bit has been consumed.
func (r *Reader) ReadBit() (bool, error) {
	if r.pos >= len(r.data)*8 {
		return false, io.EOF
	}
	bit := r.data[r.pos/8]>>(r.pos%8)&1 == 1
	r.pos++
	return bit, nil
}

// ReadBits reads a field of width bits, least significant bit first.
//
// A zero width always succeeds. If the stream is exhausted ReadBits returns
// io.EOF; if some bits remain but fewer than width, it returns
// io.ErrUnexpectedEOF and consumes nothing.
func (r *Reader) ReadBits(width uint) (uint64, error) {
	if width > MaxWidth {
		return 0, ErrInvalidWidth
	}
	if width == 0 {
		return 0, nil
	}
	remaining := r.Remaining()
	if remaining == 0 {
		return 0, io.EOF
	}
	if remaining < int(width) {
		return 0, io.ErrUnexpectedEOF
	}

	var val uint64
	for i := uint(0); i < width; i++ {
		bit, _ := r.ReadBit()
		if bit {
			val |= 1 << i
		}
	}
	return val, nil
}

// Remaining returns the number of unread bits, padding included.
func (r *Reader) Remaining() int {
	return len(r.data)*8 - r.pos
}

// BitsRead returns the number of bits consumed so far.
func (r *Reader) BitsRead() int {
	return r.pos
}
