package chip

import (
	"fmt"
	"slices"

	"github.com/braheezy/chipenc/pkg/bitstream"
	"github.com/braheezy/chipenc/pkg/score"
	"github.com/charmbracelet/log"
)

// OverflowPolicy decides what Encode does when a field's dictionary has more
// entries than its width can address.
type OverflowPolicy int

const (
	// OverflowError rejects the channel with a *DictionaryOverflowError.
	OverflowError OverflowPolicy = iota
	// OverflowTruncate writes the low bits of the rank. Notes whose rank does
	// not fit play back with the wrong value.
	OverflowTruncate
	// OverflowClamp writes the largest addressable rank instead.
	OverflowClamp
)

var overflowNames = map[OverflowPolicy]string{
	OverflowError:    "error",
	OverflowTruncate: "truncate",
	OverflowClamp:    "clamp",
}

func (p OverflowPolicy) String() string {
	if name, ok := overflowNames[p]; ok {
		return name
	}
	return fmt.Sprintf("overflow(%d)", int(p))
}

// ParseOverflowPolicy accepts "error", "truncate" or "clamp".
func ParseOverflowPolicy(name string) (OverflowPolicy, error) {
	for p, n := range overflowNames {
		if n == name {
			return p, nil
		}
	}
	return 0, fmt.Errorf("unknown overflow policy %q (want error, truncate or clamp)", name)
}

// DictionaryOverflowError reports a dictionary too large for its field.
type DictionaryOverflowError struct {
	Channel  Channel
	Field    Field
	Size     int // Distinct values in the dictionary
	Capacity int // Ranks the field width can address
}

func (e *DictionaryOverflowError) Error() string {
	return fmt.Sprintf("%v %v dictionary has %d entries, field holds %d", e.Channel, e.Field, e.Size, e.Capacity)
}

// Options configures Encode.
type Options struct {
	Overflow OverflowPolicy
	// Logger receives overflow warnings and dictionary dumps. Nil is silent.
	Logger *log.Logger
}

// Result is the encoded form of one channel.
type Result struct {
	Channel      Channel
	Data         []byte // Packed ranks, ready to be written verbatim
	Notes        int    // Number of notes encoded
	Bits         int    // Meaningful bits in Data; the rest is padding
	Dictionaries Dictionaries
}

// Encode packs the notes of one channel.
//
// Notes are put in onset order first, so callers may pass them unsorted.
// Every field of the channel's layout is checked against its dictionary
// before anything is written; what happens on overflow depends on
// opts.Overflow.
func Encode(ch Channel, notes []score.Note, opts Options) (*Result, error) {
	layout, err := LayoutOf(ch)
	if err != nil {
		return nil, err
	}

	sorted := slices.Clone(notes)
	score.SortByOnset(sorted)

	symbols := Symbols(sorted)
	dicts := BuildDictionaries(symbols)

	if opts.Logger != nil {
		opts.Logger.Debug(ch.String(), "deltas", dicts.Deltas, "lengths", dicts.Lengths, "pitches", dicts.Pitches)
	}

	for _, fw := range layout {
		size := len(dicts.For(fw.Field))
		if size <= fw.Capacity() {
			continue
		}
		overflow := &DictionaryOverflowError{
			Channel:  ch,
			Field:    fw.Field,
			Size:     size,
			Capacity: fw.Capacity(),
		}
		if opts.Overflow == OverflowError {
			return nil, overflow
		}
		if opts.Logger != nil {
			opts.Logger.Warn(overflow.Error(), "policy", opts.Overflow)
		}
	}

	w := bitstream.NewWriter()
	for _, sym := range symbols {
		for _, fw := range layout {
			// Closed world: every value comes from the notes the dictionary
			// was built from.
			rank, _ := dicts.For(fw.Field).Rank(sym.Get(fw.Field))
			if opts.Overflow == OverflowClamp {
				rank = min(rank, fw.Capacity()-1)
			}
			w.WriteBits(uint64(rank), fw.Width)
		}
	}

	return &Result{
		Channel:      ch,
		Data:         w.Bytes(),
		Notes:        len(symbols),
		Bits:         w.BitLen(),
		Dictionaries: dicts,
	}, nil
}
