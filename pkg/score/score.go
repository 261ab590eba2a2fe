/*
Package score turns timed note events into frame-quantized notes.

Events carry onset and end times in seconds and pitch as a MIDI key number.
Quantize converts them into Notes measured in frames of a fixed frame rate,
with pitch as an integer frequency in hertz:

	onset    = round(start * fps)
	duration = round((end - start) * fps)
	pitch    = round(440 * 2^((key - 69) / 12))

Rounding is half to even throughout, so 65.5 frames round to 66 and 6.5
frames round to 6.
*/
package score

import (
	"cmp"
	"math"
	"slices"
)

// DefaultFrameRate is the playback rate of the target sound chip, in frames
// per second.
const DefaultFrameRate = 65.5

// Note is a single frame-quantized note.
type Note struct {
	Onset    uint32 // Onset frame index
	Duration uint32 // Length in frames
	Pitch    uint32 // Frequency in Hz, rounded
}

// Event is a note as read from a score, before quantization.
type Event struct {
	Start    float64 // Onset in seconds
	End      float64 // Release in seconds
	Key      uint8   // MIDI key number, 69 is A4
	Velocity uint8
}

// Instrument is an ordered run of events belonging to one voice of a score.
type Instrument struct {
	Track   int   // Index of the source track
	Channel uint8 // MIDI channel the events were played on
	Events  []Event
}

// SecondsToFrames converts a non-negative time in seconds to whole frames.
func SecondsToFrames(seconds, fps float64) uint32 {
	if seconds <= 0 {
		return 0
	}
	return uint32(math.RoundToEven(seconds * fps))
}

// KeyToHz converts a MIDI key number to its equal-tempered frequency in Hz.
func KeyToHz(key uint8) uint32 {
	hz := 440 * math.Pow(2, (float64(key)-69)/12)
	return uint32(math.RoundToEven(hz))
}

// Quantize converts events to notes at the given frame rate. The result is
// ordered by onset; events with equal onsets keep their relative order.
func Quantize(events []Event, fps float64) []Note {
	notes := make([]Note, 0, len(events))
	for _, ev := range events {
		notes = append(notes, Note{
			Onset:    SecondsToFrames(ev.Start, fps),
			Duration: SecondsToFrames(ev.End-ev.Start, fps),
			Pitch:    KeyToHz(ev.Key),
		})
	}
	SortByOnset(notes)
	return notes
}

// SortByOnset orders notes by onset frame, keeping the relative order of
// notes that start together.
func SortByOnset(notes []Note) {
	slices.SortStableFunc(notes, func(a, b Note) int {
		return cmp.Compare(a.Onset, b.Onset)
	})
}
