// Package sink stores encoded channels on disk.
//
// Each channel becomes <channel>.bin holding the packed bitstream verbatim,
// with no header or trailer. The dictionaries needed to decode the streams
// are written next to them as dictionaries.json.
package sink

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/braheezy/chipenc/pkg/chip"
	"github.com/charmbracelet/log"
)

// ManifestName is the file the dictionaries are written to.
const ManifestName = "dictionaries.json"

var ErrNoOutputDir = errors.New("sink: no output directory configured")

// Manifest describes every channel written to a directory.
type Manifest struct {
	FrameRate float64         `json:"frame_rate"`
	Channels  []ChannelRecord `json:"channels"`
}

// ChannelRecord is everything a decoder needs besides the stream itself.
type ChannelRecord struct {
	Channel      chip.Channel      `json:"channel"`
	File         string            `json:"file"`
	Notes        int               `json:"notes"`
	BitsPerNote  uint              `json:"bits_per_note"`
	Layout       chip.Layout       `json:"layout"`
	Dictionaries chip.Dictionaries `json:"dictionaries"`
}

// NewManifest builds the manifest for a set of encoded channels.
func NewManifest(fps float64, results []*chip.Result) Manifest {
	m := Manifest{FrameRate: fps}
	for _, res := range results {
		// Encode only returns channels that have a layout.
		layout, _ := chip.LayoutOf(res.Channel)
		m.Channels = append(m.Channels, ChannelRecord{
			Channel:      res.Channel,
			File:         FileName(res.Channel),
			Notes:        res.Notes,
			BitsPerNote:  layout.BitsPerNote(),
			Layout:       layout,
			Dictionaries: res.Dictionaries,
		})
	}
	return m
}

// Record returns the entry for ch.
func (m Manifest) Record(ch chip.Channel) (ChannelRecord, bool) {
	for _, rec := range m.Channels {
		if rec.Channel == ch {
			return rec, true
		}
	}
	return ChannelRecord{}, false
}

// FileName returns the name a channel's stream is stored under.
func FileName(ch chip.Channel) string {
	return ch.String() + ".bin"
}

// Dir writes channel streams into a directory.
type Dir struct {
	Path string
	// Logger is told about every file written. Nil is silent.
	Logger *log.Logger
}

// Write stores data as name inside the directory. The file appears only
// once it is complete.
func (d Dir) Write(name string, data []byte) error {
	if d.Path == "" {
		return ErrNoOutputDir
	}

	tmp, err := os.CreateTemp(d.Path, "."+name+".*")
	if err != nil {
		return fmt.Errorf("create %s: %w", name, err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("write %s: %w", name, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close %s: %w", name, err)
	}

	path := filepath.Join(d.Path, name)
	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("rename %s: %w", name, err)
	}
	if d.Logger != nil {
		d.Logger.Debug("wrote", "file", path, "bytes", len(data))
	}
	return nil
}

// WriteAll stores every channel stream followed by the manifest.
//
// Everything is first written to a staging directory inside d.Path. The old
// manifest is removed before any stream is moved into place and the new one
// is moved last, so a run that fails midway leaves a directory without a
// manifest rather than new streams next to stale dictionaries.
func (d Dir) WriteAll(fps float64, results []*chip.Result) error {
	if d.Path == "" {
		return ErrNoOutputDir
	}
	if err := os.MkdirAll(d.Path, 0o755); err != nil {
		return fmt.Errorf("create output directory: %w", err)
	}

	stage, err := os.MkdirTemp(d.Path, stagePrefix)
	if err != nil {
		return fmt.Errorf("create staging directory: %w", err)
	}
	defer os.RemoveAll(stage)

	manifest, err := json.MarshalIndent(NewManifest(fps, results), "", "  ")
	if err != nil {
		return fmt.Errorf("encode manifest: %w", err)
	}

	staged := Dir{Path: stage}
	var names []string
	for _, res := range results {
		name := FileName(res.Channel)
		if err := staged.Write(name, res.Data); err != nil {
			return err
		}
		names = append(names, name)
	}
	if err := staged.Write(ManifestName, append(manifest, '\n')); err != nil {
		return err
	}

	if err := os.Remove(filepath.Join(d.Path, ManifestName)); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("remove old manifest: %w", err)
	}
	for _, name := range append(names, ManifestName) {
		if err := d.promote(stage, name); err != nil {
			return err
		}
	}
	return nil
}

// stagePrefix names the staging directories WriteAll creates.
const stagePrefix = ".stage-"

func (d Dir) promote(stage, name string) error {
	path := filepath.Join(d.Path, name)
	if err := os.Rename(filepath.Join(stage, name), path); err != nil {
		return fmt.Errorf("rename %s: %w", name, err)
	}
	if d.Logger != nil {
		info, err := os.Stat(path)
		if err == nil {
			d.Logger.Debug("wrote", "file", path, "bytes", info.Size())
		}
	}
	return nil
}

// ReadManifest loads the manifest from dir.
func ReadManifest(dir string) (Manifest, error) {
	var m Manifest
	data, err := os.ReadFile(filepath.Join(dir, ManifestName))
	if err != nil {
		return m, fmt.Errorf("read manifest: %w", err)
	}
	if err := json.Unmarshal(data, &m); err != nil {
		return m, fmt.Errorf("parse manifest: %w", err)
	}
	return m, nil
}

// ReadChannel loads the stream of ch from dir.
func ReadChannel(dir string, ch chip.Channel) ([]byte, error) {
	return os.ReadFile(filepath.Join(dir, FileName(ch)))
}
