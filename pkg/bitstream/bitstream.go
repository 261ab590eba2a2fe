/*
Package bitstream packs and unpacks fields of arbitrary bit width into a byte
buffer.

Bits are stored least significant bit first, both within a field and within
each byte. Fields are not padded or aligned, so a field may straddle a byte
boundary:

	WriteBits(5, 3)  // 101
	WriteBits(1, 1)  // 1

	.- byte 0 -----------------------.
	| 7  6  5  4 | 3 | 2  1  0       |
	| 0  0  0  0 | 1 | 1  0  1       |  = 0x0D
	`--------------------------------`

The final byte is emitted even when only partially filled; its unused high
bits are zero.
*/
package bitstream

import "bytes"

// Writer appends bit fields to a growing byte buffer.
// The zero value is ready to use.
type Writer struct {
	// Packed data. Always holds the byte under the cursor.
	data []byte
	// Index of the byte currently being filled
	byteIndex int
	// Next free bit within data[byteIndex], in [0, 8)
	bitOffset uint
}

// NewWriter returns an empty Writer.
func NewWriter() *Writer {
	return &Writer{data: []byte{0}}
}

// WriteBits writes the low width bits of val, least significant first.
// Bits of val above width are dropped without notice.
func (w *Writer) WriteBits(val uint64, width uint) {
	for i := uint(0); i < width; i++ {
		w.WriteBit((val>>i)&1 == 1)
	}
}

// WriteBit writes a single bit at the cursor.
func (w *Writer) WriteBit(bit bool) {
	if w.data == nil {
		w.data = []byte{0}
	}
	if bit {
		w.data[w.byteIndex] |= 1 << w.bitOffset
	}
	w.bitOffset++
	if w.bitOffset == 8 {
		w.data = append(w.data, 0)
		w.byteIndex++
		w.bitOffset = 0
	}
}

// BitLen returns the number of bits written so far.
func (w *Writer) BitLen() int {
	return w.byteIndex*8 + int(w.bitOffset)
}

// Len returns the number of bytes Bytes would return.
func (w *Writer) Len() int {
	if w.bitOffset > 0 {
		return w.byteIndex + 1
	}
	return w.byteIndex
}

// Bytes returns a copy of the packed data, including a trailing partial byte.
func (w *Writer) Bytes() []byte {
	if w.data == nil {
		return []byte{}
	}
	return bytes.Clone(w.data[:w.Len()])
}
