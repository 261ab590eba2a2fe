package cmd

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/braheezy/chipenc/pkg/chip"
	"github.com/braheezy/chipenc/pkg/score"
	"github.com/braheezy/chipenc/pkg/sink"
	"github.com/spf13/cobra"
)

func newEncodeCmd() *cobra.Command {
	encodeCmd := &cobra.Command{
		Use:   "encode <score.mid>",
		Short: "Encode a MIDI score into channel bitstreams",
		Long: fmt.Sprintf(`Encode a MIDI score into one bitstream per sound chip channel.

The first three voices of the score are assigned, in order, to the channels:
%v
Each channel is written to <channel>.bin in the output directory, alongside
%s with the dictionaries needed to decode them. The output
directory defaults to $OUT_DIR.`, strings.Join(channelNames(), ", "), sink.ManifestName),
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			policy, err := chip.ParseOverflowPolicy(overflowFlag)
			if err != nil {
				return err
			}
			dir := outDir
			if dir == "" {
				dir = os.Getenv("OUT_DIR")
			}
			if dir == "" {
				return sink.ErrNoOutputDir
			}
			if fps <= 0 {
				return fmt.Errorf("frame rate must be positive, got %v", fps)
			}
			return encodeScore(cmd, args[0], dir, policy)
		},
	}

	encodeCmd.Flags().StringVarP(&outDir, "out-dir", "o", "", "Directory to write channel files to (default $OUT_DIR)")
	encodeCmd.Flags().Float64Var(&fps, "fps", score.DefaultFrameRate, "Playback frame rate of the sound chip")
	encodeCmd.Flags().StringVar(&overflowFlag, "overflow", chip.OverflowError.String(), "What to do when a dictionary outgrows its field: error, truncate or clamp")
	return encodeCmd
}

var (
	outDir       string
	fps          float64
	overflowFlag string
)

func channelNames() []string {
	names := make([]string, len(chip.Channels))
	for i, ch := range chip.Channels {
		names[i] = ch.String()
	}
	return names
}

func encodeScore(cmd *cobra.Command, inputFile, dir string, policy chip.OverflowPolicy) error {
	instruments, err := score.LoadMIDI(inputFile)
	if err != nil {
		return err
	}
	if len(instruments) > len(chip.Channels) {
		logger.Warn("Score has more voices than the chip has channels", "voices", len(instruments), "channels", len(chip.Channels))
	}

	parts := make([][]score.Note, 0, len(chip.Channels))
	for i, inst := range instruments {
		if i == len(chip.Channels) {
			break
		}
		parts = append(parts, score.Quantize(inst.Events, fps))
		logger.Debug(
			chip.Channels[i].String(),
			"track", inst.Track,
			"midi channel", inst.Channel,
			"notes", len(inst.Events),
		)
	}

	results, err := chip.EncodeAll(context.Background(), parts, chip.Options{
		Overflow: policy,
		Logger:   logger,
	})
	if err != nil {
		return err
	}

	if err := (sink.Dir{Path: dir, Logger: logger}).WriteAll(fps, results); err != nil {
		return err
	}

	if !quiet {
		fmt.Fprintln(cmd.OutOrStdout(), encodeSummary(results))
	}
	logger.Infof("Encoding completed: %s -> %s", inputFile, dir)
	return nil
}

func encodeSummary(results []*chip.Result) string {
	t := newTable("channel", "notes", "bits/note", "deltas", "lengths", "pitches", "size")
	for _, res := range results {
		layout, _ := chip.LayoutOf(res.Channel)
		t.Row(
			res.Channel.String(),
			fmt.Sprint(res.Notes),
			fmt.Sprint(layout.BitsPerNote()),
			dictUsage(layout, chip.Delta, res.Dictionaries.Deltas),
			dictUsage(layout, chip.Length, res.Dictionaries.Lengths),
			dictUsage(layout, chip.Pitch, res.Dictionaries.Pitches),
			formatSize(len(res.Data)),
		)
	}
	return t.String()
}

// dictUsage shows how much of a field's range the dictionary fills, e.g. 5/8.
func dictUsage(layout chip.Layout, f chip.Field, d chip.Dictionary) string {
	width, ok := layout.Width(f)
	if !ok {
		return dimStyle.Render("-")
	}
	return fmt.Sprintf("%d/%d", len(d), chip.FieldWidth{Field: f, Width: width}.Capacity())
}

// formatSize converts the inputSize to a human readable format
func formatSize(inputSize int) string {
	const unit = 1024
	if inputSize < unit {
		return fmt.Sprintf("%d B", inputSize)
	}
	div, exp := int64(unit), 0
	for n := inputSize / unit; n >= unit; n /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.2f %cB", float64(inputSize)/float64(div), "KMGTPE"[exp])
}
