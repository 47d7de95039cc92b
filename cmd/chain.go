package cmd

import (
	"fmt"

	"github.com/agentic-research/avbmatch/internal/describe"
	"github.com/agentic-research/avbmatch/internal/sourceref"
	"github.com/spf13/cobra"
)

var (
	chainTrack  string
	chainOffset string
	chainFilter string
	chainJSON   bool
)

var chainCmd = &cobra.Command{
	Use:   "chain [bin] [mob]",
	Short: "Walk the source references under a mob's track",
	Long: `Walk the chain of source references under one track of a mob, hop by hop,
until it reaches a tape, film or file source, filler, or a missing mob.
The mob is given by id or by name.`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		filter, err := describe.ParseFilter(chainFilter)
		if err != nil {
			return err
		}
		b, err := openBin(args[0])
		if err != nil {
			return err
		}
		defer func() { _ = b.Close() }()

		m, err := findMob(b, args[1])
		if err != nil {
			return err
		}
		track, err := selectTrack(m, chainTrack)
		if err != nil {
			return err
		}
		offset, err := offsetOption(chainOffset, track)
		if err != nil {
			return err
		}

		chain, err := describe.ChainOf(b, track, filter, offset, sourceref.WithMaxHops(cfg.MaxHops))
		if err != nil {
			return err
		}
		if chainJSON {
			return printJSON(cmd.OutOrStdout(), chain)
		}

		w := newTable(cmd.OutOrStdout())
		fmt.Fprintln(w, "HOP\tMOB\tROLE\tTRACK\tSTART\tOFFSET\tTARGET\tTIMECODE")
		for _, l := range chain.Links {
			role := l.Role
			if l.SourceRole != "" {
				role += " (" + l.SourceRole + ")"
			}
			tc := l.Timecode
			if tc == "" {
				tc = "-"
			}
			fmt.Fprintf(w, "%d\t%s\t%s\t%s\t%d\t%d\t%d\t%s\n",
				l.Hop, l.MobName, role, l.Track, l.StartTime, l.Offset, l.TargetOffset, tc)
		}
		if err := w.Flush(); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Stopped: %s\n", chain.Stop)
		return nil
	},
}

func init() {
	chainCmd.Flags().StringVarP(&chainTrack, "track", "t", "", "Track label such as V1 or A2 (default: primary track)")
	chainCmd.Flags().StringVarP(&chainOffset, "offset", "o", "0", "Offset into the track, in frames or as timecode")
	chainCmd.Flags().StringVarP(&chainFilter, "filter", "f", "all", "References to show: all, file or physical")
	chainCmd.Flags().BoolVar(&chainJSON, "json", false, "Print JSON")
	rootCmd.AddCommand(chainCmd)
}
