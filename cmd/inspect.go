package cmd

import (
	"fmt"
	"strings"

	"github.com/braheezy/chipenc/pkg/chip"
	"github.com/braheezy/chipenc/pkg/sink"
	"github.com/spf13/cobra"
)

func newInspectCmd() *cobra.Command {
	inspectCmd := &cobra.Command{
		Use:   "inspect <directory>",
		Short: "Decode and list the notes of encoded channels",
		Long:  fmt.Sprintf("Decode the channel files in a directory written by 'chipenc encode', using its %s.", sink.ManifestName),
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var only []chip.Channel
			for _, name := range inspectChannels {
				ch, err := chip.ParseChannel(name)
				if err != nil {
					return err
				}
				only = append(only, ch)
			}
			return inspectDir(cmd, args[0], only)
		},
	}

	inspectCmd.Flags().StringSliceVarP(&inspectChannels, "channel", "c", nil, "Only show these channels")
	inspectCmd.Flags().IntVarP(&inspectLimit, "limit", "n", 16, "Notes to list per channel, 0 for all")
	return inspectCmd
}

var (
	inspectChannels []string
	inspectLimit    int
)

func inspectDir(cmd *cobra.Command, dir string, only []chip.Channel) error {
	manifest, err := sink.ReadManifest(dir)
	if err != nil {
		return err
	}

	records := manifest.Channels
	if len(only) > 0 {
		records = nil
		for _, ch := range only {
			rec, ok := manifest.Record(ch)
			if !ok {
				return fmt.Errorf("%v channel not found in %s", ch, dir)
			}
			records = append(records, rec)
		}
	}

	out := cmd.OutOrStdout()
	for _, rec := range records {
		data, err := sink.ReadChannel(dir, rec.Channel)
		if err != nil {
			return err
		}
		symbols, err := chip.Decode(rec.Channel, data, rec.Dictionaries, rec.Notes)
		if err != nil {
			return err
		}

		logger.Debug(rec.File, "size", formatSize(len(data)), "notes", rec.Notes, "bits/note", rec.BitsPerNote)

		fmt.Fprintln(out, titleStyle.Render(fmt.Sprintf("%v (%d notes)", rec.Channel, rec.Notes)))
		fmt.Fprintln(out, dictionaryLine("deltas", rec.Dictionaries.Deltas))
		fmt.Fprintln(out, dictionaryLine("lengths", rec.Dictionaries.Lengths))
		fmt.Fprintln(out, dictionaryLine("pitches", rec.Dictionaries.Pitches))
		fmt.Fprintln(out, notesTable(symbols, manifest.FrameRate, inspectLimit))
	}
	return nil
}

func dictionaryLine(name string, d chip.Dictionary) string {
	values := make([]string, len(d))
	for i, v := range d {
		values[i] = fmt.Sprint(v)
	}
	return fmt.Sprintf("%s %s", dimStyle.Render(fmt.Sprintf("%-8s", name)), strings.Join(values, " "))
}

// notesTable lists symbols with their absolute onset, in frames and seconds.
func notesTable(symbols []chip.Symbol, frameRate float64, limit int) string {
	t := newTable("#", "onset", "time", "delta", "length", "pitch")
	var onset uint32
	for i, sym := range symbols {
		onset += sym.Delta
		if limit > 0 && i >= limit {
			continue
		}
		t.Row(
			fmt.Sprint(i),
			fmt.Sprint(onset),
			fmt.Sprintf("%.3fs", float64(onset)/frameRate),
			fmt.Sprint(sym.Delta),
			fmt.Sprint(sym.Length),
			fmt.Sprintf("%d Hz", sym.Pitch),
		)
	}
	return t.String()
}
