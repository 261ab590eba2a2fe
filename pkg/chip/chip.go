/*
Package chip encodes note lists into the per-channel bitstreams played by a
three-voice sound chip.

Each channel is dictionary coded. For every field of a note (the delta from
the previous onset, the length and the pitch) the encoder collects the
distinct values used in that channel and sorts them. The sorted list is the
field's dictionary, and a note's value is replaced by its rank in that list.
Ranks are then packed with bitstream.Writer using fixed widths per channel:

	.- channel --.- fields (in order) ---.- widths -.- bits/note -.
	| noise      | delta                 | 3        |  3          |
	| triangle   | delta, length, pitch  | 4, 3, 5  | 12          |
	| pulse      | delta, length, pitch  | 3, 2, 5  | 10          |
	`------------------------------------------------------------`

The stream has no header and no separators. A decoder needs the channel type
and the three dictionaries out of band; Encode returns both with the data.
*/
package chip

import (
	"fmt"
	"slices"
	"strings"
)

// Channel identifies one voice of the sound chip.
type Channel int

const (
	Noise Channel = iota
	Triangle
	Pulse
)

// Channels lists every channel in the order instruments are assigned to them.
var Channels = []Channel{Noise, Triangle, Pulse}

var channelNames = map[Channel]string{
	Noise:    "noise",
	Triangle: "triangle",
	Pulse:    "pulse",
}

func (c Channel) String() string {
	if name, ok := channelNames[c]; ok {
		return name
	}
	return fmt.Sprintf("channel(%d)", int(c))
}

// ParseChannel returns the channel with the given name.
func ParseChannel(name string) (Channel, error) {
	for c, n := range channelNames {
		if strings.EqualFold(n, name) {
			return c, nil
		}
	}
	return 0, fmt.Errorf("unknown channel %q", name)
}

func (c Channel) MarshalText() ([]byte, error) {
	if _, ok := channelNames[c]; !ok {
		return nil, fmt.Errorf("unknown channel %d", int(c))
	}
	return []byte(c.String()), nil
}

func (c *Channel) UnmarshalText(text []byte) error {
	parsed, err := ParseChannel(string(text))
	if err != nil {
		return err
	}
	*c = parsed
	return nil
}

// Field is one component of an encoded note.
type Field int

const (
	Delta Field = iota
	Length
	Pitch
)

var fieldNames = map[Field]string{
	Delta:  "delta",
	Length: "length",
	Pitch:  "pitch",
}

func (f Field) String() string {
	if name, ok := fieldNames[f]; ok {
		return name
	}
	return fmt.Sprintf("field(%d)", int(f))
}

func (f Field) MarshalText() ([]byte, error) {
	if _, ok := fieldNames[f]; !ok {
		return nil, fmt.Errorf("unknown field %d", int(f))
	}
	return []byte(f.String()), nil
}

func (f *Field) UnmarshalText(text []byte) error {
	for field, name := range fieldNames {
		if name == string(text) {
			*f = field
			return nil
		}
	}
	return fmt.Errorf("unknown field %q", text)
}

// FieldWidth is one slot of a channel's note layout.
type FieldWidth struct {
	Field Field `json:"field"`
	Width uint  `json:"width"`
}

// Capacity returns the number of distinct ranks the slot can hold.
func (fw FieldWidth) Capacity() int {
	return 1 << fw.Width
}

// Layout is the ordered list of fields written for every note of a channel.
type Layout []FieldWidth

// BitsPerNote returns the encoded size of one note.
func (l Layout) BitsPerNote() uint {
	var bits uint
	for _, fw := range l {
		bits += fw.Width
	}
	return bits
}

// Width returns the width of f, or false if the layout does not carry f.
func (l Layout) Width(f Field) (uint, bool) {
	for _, fw := range l {
		if fw.Field == f {
			return fw.Width, true
		}
	}
	return 0, false
}

// layouts holds the note layout of every channel. The player reads fields
// in exactly this order.
var layouts = map[Channel]Layout{
	Noise: {
		{Field: Delta, Width: 3},
	},
	Triangle: {
		{Field: Delta, Width: 4},
		{Field: Length, Width: 3},
		{Field: Pitch, Width: 5},
	},
	Pulse: {
		{Field: Delta, Width: 3},
		{Field: Length, Width: 2},
		{Field: Pitch, Width: 5},
	},
}

// LayoutOf returns a copy of the layout for c.
func LayoutOf(c Channel) (Layout, error) {
	layout, ok := layouts[c]
	if !ok {
		return nil, fmt.Errorf("no layout for %v", c)
	}
	return slices.Clone(layout), nil
}
