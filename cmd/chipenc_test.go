package cmd

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/braheezy/chipenc/pkg/chip"
	"github.com/braheezy/chipenc/pkg/sink"
	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gitlab.com/gomidi/midi/v2"
	"gitlab.com/gomidi/midi/v2/smf"
)

func execute(t *testing.T, command *cobra.Command, args ...string) (string, error) {
	t.Helper()

	buf := new(bytes.Buffer)
	command.SetOut(buf)
	command.SetErr(buf)
	command.SetArgs(args)

	err := command.Execute()
	return strings.TrimSpace(buf.String()), err
}

// ticksPerSecond at the default 120 bpm with 480 ticks per quarter note.
const ticksPerSecond = 960

type testNote struct {
	key          uint8
	start, until float64 // seconds
}

func writeScore(t *testing.T, voices ...[]testNote) string {
	t.Helper()

	s := smf.New()
	s.TimeFormat = smf.MetricTicks(480)

	for i, voice := range voices {
		var tr smf.Track
		if i == 0 {
			tr.Add(0, smf.MetaTempo(120))
		}
		var now uint32
		for _, n := range voice {
			start := uint32(n.start * ticksPerSecond)
			end := uint32(n.until * ticksPerSecond)
			tr.Add(start-now, midi.NoteOn(uint8(i), n.key, 100))
			tr.Add(end-start, midi.NoteOff(uint8(i), n.key))
			now = end
		}
		tr.Close(0)
		require.NoError(t, s.Add(tr))
	}

	path := filepath.Join(t.TempDir(), "music.mid")
	require.NoError(t, s.WriteFile(path))
	return path
}

func testScore(t *testing.T) string {
	return writeScore(t,
		[]testNote{{38, 0, 0.25}, {38, 0.5, 0.75}},
		[]testNote{{60, 0, 0.1}, {62, 1.0, 1.2}},
		[]testNote{{69, 0.5, 1.0}},
	)
}

func TestEncodeCmd(t *testing.T) {
	input := testScore(t)
	outputDir := filepath.Join(t.TempDir(), "out")

	output, err := execute(t, newRootCmd(), "encode", input, "--out-dir", outputDir, "--fps", "65.5", "--overflow", "error")
	require.NoError(t, err)
	assert.Contains(t, output, "triangle")
	assert.Contains(t, output, "Encoding completed")

	triangle, err := os.ReadFile(filepath.Join(outputDir, "triangle.bin"))
	require.NoError(t, err)
	assert.Equal(t, []byte{0x00, 0x10, 0x09}, triangle)

	m, err := sink.ReadManifest(outputDir)
	require.NoError(t, err)
	require.Len(t, m.Channels, 3)

	rec, ok := m.Record(chip.Triangle)
	require.True(t, ok)
	assert.Equal(t, chip.Dictionary{0, 66}, rec.Dictionaries.Deltas)
	assert.Equal(t, chip.Dictionary{7, 13}, rec.Dictionaries.Lengths)
	assert.Equal(t, chip.Dictionary{262, 294}, rec.Dictionaries.Pitches)

	rec, ok = m.Record(chip.Noise)
	require.True(t, ok)
	assert.Equal(t, chip.Dictionary{0, 33}, rec.Dictionaries.Deltas)

	noise, err := os.ReadFile(filepath.Join(outputDir, "noise.bin"))
	require.NoError(t, err)
	assert.Equal(t, []byte{0x08}, noise)
}

func TestEncodeCmdOutDirFromEnv(t *testing.T) {
	input := testScore(t)
	outputDir := t.TempDir()
	t.Setenv("OUT_DIR", outputDir)

	_, err := execute(t, newRootCmd(), "encode", input, "--out-dir", "", "--fps", "65.5", "--overflow", "error")
	require.NoError(t, err)

	for _, name := range []string{"noise.bin", "triangle.bin", "pulse.bin", sink.ManifestName} {
		assert.FileExists(t, filepath.Join(outputDir, name))
	}
}

func TestEncodeCmdErrors(t *testing.T) {
	input := testScore(t)
	t.Setenv("OUT_DIR", "")

	_, err := execute(t, newRootCmd(), "encode", input, "--out-dir", "", "--fps", "65.5", "--overflow", "error")
	assert.ErrorIs(t, err, sink.ErrNoOutputDir)

	outputDir := t.TempDir()
	_, err = execute(t, newRootCmd(), "encode", input, "--out-dir", outputDir, "--fps", "65.5", "--overflow", "wrap")
	assert.ErrorContains(t, err, "unknown overflow policy")

	_, err = execute(t, newRootCmd(), "encode", input, "--out-dir", outputDir, "--fps", "0", "--overflow", "error")
	assert.ErrorContains(t, err, "frame rate")

	_, err = execute(t, newRootCmd(), "encode", filepath.Join(outputDir, "missing.mid"), "--out-dir", outputDir, "--fps", "65.5", "--overflow", "error")
	assert.ErrorIs(t, err, os.ErrNotExist)

	entries, err := os.ReadDir(outputDir)
	require.NoError(t, err)
	assert.Empty(t, entries, "failed runs must not write output")
}

func TestEncodeCmdOverflow(t *testing.T) {
	// nine distinct noise deltas, one more than three bits can address
	var noise []testNote
	for _, start := range []float64{0, 1, 3, 6, 10, 15, 21, 28, 36} {
		noise = append(noise, testNote{38, start, start + 0.25})
	}
	input := writeScore(t, noise)
	outputDir := t.TempDir()

	_, err := execute(t, newRootCmd(), "encode", input, "--out-dir", outputDir, "--fps", "65.5", "--overflow", "error")
	var overflow *chip.DictionaryOverflowError
	require.ErrorAs(t, err, &overflow)
	assert.Equal(t, chip.Noise, overflow.Channel)
	assert.NoFileExists(t, filepath.Join(outputDir, "noise.bin"))

	output, err := execute(t, newRootCmd(), "encode", input, "--out-dir", outputDir, "--fps", "65.5", "--overflow", "clamp")
	require.NoError(t, err)
	assert.Contains(t, output, "noise delta dictionary has 9 entries")
	assert.FileExists(t, filepath.Join(outputDir, "noise.bin"))
	assert.NoFileExists(t, filepath.Join(outputDir, "triangle.bin"))
}

func TestInspectCmd(t *testing.T) {
	input := testScore(t)
	outputDir := t.TempDir()

	_, err := execute(t, newRootCmd(), "encode", input, "--out-dir", outputDir, "--fps", "65.5", "--overflow", "error")
	require.NoError(t, err)

	output, err := execute(t, newRootCmd(), "inspect", outputDir, "--channel", "triangle", "--limit", "0")
	require.NoError(t, err)
	assert.Contains(t, output, "triangle (2 notes)")
	assert.Contains(t, output, "294 Hz")
	assert.Contains(t, output, "1.008s")
	assert.NotContains(t, output, "pulse")

	_, err = execute(t, newRootCmd(), "inspect", outputDir, "--channel", "sawtooth", "--limit", "0")
	assert.Error(t, err)

	_, err = execute(t, newRootCmd(), "inspect", t.TempDir(), "--channel", "triangle", "--limit", "0")
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestInspectCmdRepeated(t *testing.T) {
	input := testScore(t)
	outputDir := t.TempDir()

	_, err := execute(t, newRootCmd(), "encode", input, "--out-dir", outputDir)
	require.NoError(t, err)

	output, err := execute(t, newRootCmd(), "inspect", outputDir, "--channel", "triangle")
	require.NoError(t, err)
	assert.Contains(t, output, "triangle (2 notes)")

	// channels from the previous run must not carry over
	output, err = execute(t, newRootCmd(), "inspect", outputDir, "--channel", "pulse")
	require.NoError(t, err)
	assert.Contains(t, output, "pulse (1 notes)")
	assert.NotContains(t, output, "triangle")

	output, err = execute(t, newRootCmd(), "inspect", outputDir)
	require.NoError(t, err)
	for _, title := range []string{"noise (2 notes)", "triangle (2 notes)", "pulse (1 notes)"} {
		assert.Contains(t, output, title)
	}
}

func TestInspectCmdMissingChannel(t *testing.T) {
	input := writeScore(t, []testNote{{38, 0, 0.25}})
	outputDir := t.TempDir()

	_, err := execute(t, newRootCmd(), "encode", input, "--out-dir", outputDir)
	require.NoError(t, err)

	_, err = execute(t, newRootCmd(), "inspect", outputDir, "--channel", "pulse")
	assert.ErrorContains(t, err, "pulse channel not found")
}

func TestVersionCmd(t *testing.T) {
	output, err := execute(t, newRootCmd(), "version")
	require.NoError(t, err)
	assert.Equal(t, version, output)
}

func TestFormatSize(t *testing.T) {
	assert.Equal(t, "3 B", formatSize(3))
	assert.Equal(t, "1.50 KB", formatSize(1536))
	assert.Equal(t, "2.00 MB", formatSize(2*1024*1024))
}
