package score

import (
	"errors"
	"fmt"
	"io"
	"os"

	"gitlab.com/gomidi/midi/v2"
	"gitlab.com/gomidi/midi/v2/smf"
)

// ErrNoNotes is returned when a MIDI file parses but carries no notes.
var ErrNoNotes = errors.New("score: no notes found")

type voice struct {
	track   int
	channel uint8
}

type heldNote struct {
	start    float64
	velocity uint8
}

// LoadMIDI reads a Standard MIDI File from disk. See ReadMIDI.
func LoadMIDI(path string) ([]Instrument, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open score: %w", err)
	}
	defer f.Close()

	instruments, err := ReadMIDI(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return instruments, nil
}

// ReadMIDI parses a Standard MIDI File into instruments.
//
// Every (track, channel) pair that plays at least one note becomes an
// instrument, ordered by its first note-on. Note-on and note-off events are
// paired first in, first out per key, and tick positions are converted to
// seconds through the file's tempo map. Notes still held at the end of a
// track are dropped.
func ReadMIDI(r io.Reader) ([]Instrument, error) {
	s, err := smf.ReadFrom(r)
	if err != nil {
		return nil, fmt.Errorf("parse midi: %w", err)
	}

	var order []voice
	byVoice := make(map[voice]*Instrument)

	for trackIndex, track := range s.Tracks {
		held := make(map[voice]map[uint8][]heldNote)
		var absTicks int64

		for _, ev := range track {
			absTicks += int64(ev.Delta)
			msg := midi.Message(ev.Message)

			var ch, key, vel uint8
			switch {
			case msg.GetNoteStart(&ch, &key, &vel):
				v := voice{track: trackIndex, channel: ch}
				if _, ok := byVoice[v]; !ok {
					byVoice[v] = &Instrument{Track: trackIndex, Channel: ch}
					order = append(order, v)
				}
				if held[v] == nil {
					held[v] = make(map[uint8][]heldNote)
				}
				held[v][key] = append(held[v][key], heldNote{
					start:    seconds(s, absTicks),
					velocity: vel,
				})
			case msg.GetNoteEnd(&ch, &key):
				v := voice{track: trackIndex, channel: ch}
				open := held[v][key]
				if len(open) == 0 {
					continue
				}
				note := open[0]
				held[v][key] = open[1:]

				inst := byVoice[v]
				inst.Events = append(inst.Events, Event{
					Start:    note.start,
					End:      seconds(s, absTicks),
					Key:      key,
					Velocity: note.velocity,
				})
			}
		}
	}

	instruments := make([]Instrument, 0, len(order))
	for _, v := range order {
		inst := byVoice[v]
		if len(inst.Events) == 0 {
			continue
		}
		instruments = append(instruments, *inst)
	}
	if len(instruments) == 0 {
		return nil, ErrNoNotes
	}
	return instruments, nil
}

func seconds(s *smf.SMF, absTicks int64) float64 {
	return float64(s.TimeAt(absTicks)) / 1e6
}
