package chip

import (
	"errors"
	"fmt"
	"io"

	"github.com/braheezy/chipenc/pkg/bitstream"
)

var ErrRankOutOfRange = errors.New("rank outside dictionary")

// Decode reads symbols back from an encoded channel, the way the player does.
//
// count is the number of notes to read. A negative count reads until fewer
// than a whole note's bits remain, which may yield extra all-zero notes from
// the padding of the last byte.
//
// Fields the layout does not carry take the first entry of their dictionary,
// matching a zero-width read of rank 0. An empty dictionary gives 0.
func Decode(ch Channel, data []byte, dicts Dictionaries, count int) ([]Symbol, error) {
	layout, err := LayoutOf(ch)
	if err != nil {
		return nil, err
	}

	var fallback Symbol
	for _, f := range []Field{Delta, Length, Pitch} {
		if _, ok := layout.Width(f); ok {
			continue
		}
		if v, ok := dicts.For(f).Value(0); ok {
			fallback.set(f, v)
		}
	}

	r := bitstream.NewReader(data)
	var symbols []Symbol
	for count < 0 || len(symbols) < count {
		if count < 0 && r.Remaining() < int(layout.BitsPerNote()) {
			break
		}
		sym := fallback
		for _, fw := range layout {
			at := r.BitsRead()
			rank, err := r.ReadBits(fw.Width)
			if errors.Is(err, io.EOF) {
				err = io.ErrUnexpectedEOF
			}
			if err != nil {
				return symbols, fmt.Errorf("%v note %d at bit %d: %w", ch, len(symbols), at, err)
			}
			v, ok := dicts.For(fw.Field).Value(int(rank))
			if !ok {
				return symbols, fmt.Errorf("%v note %d %v rank %d at bit %d: %w", ch, len(symbols), fw.Field, rank, at, ErrRankOutOfRange)
			}
			sym.set(fw.Field, v)
		}
		symbols = append(symbols, sym)
	}
	return symbols, nil
}
