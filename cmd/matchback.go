package cmd

import (
	"fmt"

	"github.com/agentic-research/avbmatch/internal/describe"
	"github.com/spf13/cobra"
)

var matchbackJSON bool

var matchbackCmd = &cobra.Command{
	Use:   "matchback [bin] [mob]",
	Short: "Match a clip back to its master clip and source",
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
		mb, err := describe.MatchbackOf(b, m, cfg.MaxHops)
		if err != nil {
			return err
		}
		if matchbackJSON {
			return printJSON(cmd.OutOrStdout(), mb)
		}

		or := func(s string) string {
			if s == "" {
				return "-"
			}
			return s
		}
		name := func(d *describe.Mob) string {
			if d == nil {
				return "-"
			}
			return d.Name
		}
		w := newTable(cmd.OutOrStdout())
		fmt.Fprintf(w, "Clip:\t%s (%s)\n", mb.Mob.Name, mb.Mob.Role)
		fmt.Fprintf(w, "Master clip:\t%s\n", name(mb.MasterClip))
		fmt.Fprintf(w, "Source mob:\t%s\n", name(mb.SourceMob))
		fmt.Fprintf(w, "Physical source:\t%s\n", or(mb.PhysicalSource))
		fmt.Fprintf(w, "Source type:\t%s\n", or(mb.PhysicalType))
		fmt.Fprintf(w, "Link type:\t%s\n", or(mb.LinkType))
		fmt.Fprintf(w, "Source TC:\t%s - %s\n", or(mb.SourceTimecode), or(mb.SourceEnd))
		return w.Flush()
	},
}

func init() {
	matchbackCmd.Flags().BoolVar(&matchbackJSON, "json", false, "Print JSON")
	rootCmd.AddCommand(matchbackCmd)
}
