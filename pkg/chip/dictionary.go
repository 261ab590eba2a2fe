package chip

import (
	"slices"

	"github.com/braheezy/chipenc/pkg/score"
)

// Dictionary is the ascending list of distinct values a field takes within
// one channel. A value's rank is its index in the list.
type Dictionary []uint32

// NewDictionary builds the dictionary of values. The input is not modified.
func NewDictionary(values []uint32) Dictionary {
	d := slices.Clone(values)
	slices.Sort(d)
	return Dictionary(slices.Compact(d))
}

// Rank returns the index of v, or false if v is not in the dictionary.
func (d Dictionary) Rank(v uint32) (int, bool) {
	return slices.BinarySearch(d, v)
}

// Value returns the value with the given rank.
func (d Dictionary) Value(rank int) (uint32, bool) {
	if rank < 0 || rank >= len(d) {
		return 0, false
	}
	return d[rank], true
}

// Dictionaries groups the three dictionaries of a channel.
type Dictionaries struct {
	Deltas  Dictionary `json:"deltas"`
	Lengths Dictionary `json:"lengths"`
	Pitches Dictionary `json:"pitches"`
}

// For returns the dictionary of field f.
func (d Dictionaries) For(f Field) Dictionary {
	switch f {
	case Delta:
		return d.Deltas
	case Length:
		return d.Lengths
	case Pitch:
		return d.Pitches
	}
	return nil
}

// Symbol is a note in the form the player consumes: time since the previous
// onset, length and pitch.
type Symbol struct {
	Delta  uint32
	Length uint32
	Pitch  uint32
}

// Get returns the value of field f.
func (s Symbol) Get(f Field) uint32 {
	switch f {
	case Delta:
		return s.Delta
	case Length:
		return s.Length
	case Pitch:
		return s.Pitch
	}
	return 0
}

func (s *Symbol) set(f Field, v uint32) {
	switch f {
	case Delta:
		s.Delta = v
	case Length:
		s.Length = v
	case Pitch:
		s.Pitch = v
	}
}

// Deltas returns the onset gap of each note, the first measured from frame
// zero. Notes must be in onset order.
func Deltas(notes []score.Note) []uint32 {
	deltas := make([]uint32, len(notes))
	var prev uint32
	for i, n := range notes {
		deltas[i] = n.Onset - prev
		prev = n.Onset
	}
	return deltas
}

// Symbols converts notes in onset order to player symbols.
func Symbols(notes []score.Note) []Symbol {
	deltas := Deltas(notes)
	symbols := make([]Symbol, len(notes))
	for i, n := range notes {
		symbols[i] = Symbol{Delta: deltas[i], Length: n.Duration, Pitch: n.Pitch}
	}
	return symbols
}

// BuildDictionaries collects the dictionary of every field used by symbols.
func BuildDictionaries(symbols []Symbol) Dictionaries {
	deltas := make([]uint32, len(symbols))
	lengths := make([]uint32, len(symbols))
	pitches := make([]uint32, len(symbols))
	for i, s := range symbols {
		deltas[i] = s.Delta
		lengths[i] = s.Length
		pitches[i] = s.Pitch
	}
	return Dictionaries{
		Deltas:  NewDictionary(deltas),
		Lengths: NewDictionary(lengths),
		Pitches: NewDictionary(pitches),
	}
}
