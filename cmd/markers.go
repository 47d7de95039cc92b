package cmd

import (
	"fmt"

	"github.com/agentic-research/avbmatch/internal/markers"
	"github.com/agentic-research/avbmatch/internal/timecode"
	"github.com/agentic-research/avbmatch/internal/timeline"
	"github.com/spf13/cobra"
)

var (
	markersTrack string
	markersJSON  bool
)

var markersCmd = &cobra.Command{
	Use:   "markers [bin] [mob]",
	Short: "List the markers placed on a mob's track",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		b, err := openBin(args[0])
		if err != nil {
			return err
		}
		defer func() { _ = b.Close() }()

		m, err := findMob(b, args[1])
		if err != nil {
			return err
		}
		track, err := selectTrack(m, markersTrack)
		if err != nil {
			return err
		}
		list, err := markers.FromTrack(track, 0)
		if err != nil {
			return err
		}
		if markersJSON {
			if list == nil {
				list = []markers.Info{}
			}
			return printJSON(cmd.OutOrStdout(), list)
		}

		// Positions print as record timecode when the mob has a TC1 track.
		rate := m.Rate.Nominal()
		var start int64
		if r, err := timeline.TimecodeRangeOf(m); err == nil {
			start = r.Start.Frame
		}

		w := newTable(cmd.OutOrStdout())
		fmt.Fprintln(w, "TIMECODE\tCOLOR\tUSER\tCOMMENT")
		for _, info := range list {
			fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", timecode.New(start+info.Offset, rate), info.Color, info.User, info.Comment)
		}
		return w.Flush()
	},
}

func init() {
	markersCmd.Flags().StringVarP(&markersTrack, "track", "t", "", "Track label such as V1 (default: primary track)")
	markersCmd.Flags().BoolVar(&markersJSON, "json", false, "Print JSON")
	rootCmd.AddCommand(markersCmd)
}
