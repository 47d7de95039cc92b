package cmd

import (
	"fmt"

	"github.com/agentic-research/avbmatch/internal/avb"
	"github.com/agentic-research/avbmatch/internal/bin"
	"github.com/agentic-research/avbmatch/internal/describe"
	"github.com/spf13/cobra"
)

var (
	infoSort string
	infoDesc bool
	infoAll  bool
	infoJSON bool
)

var infoCmd = &cobra.Command{
	Use:   "info [bin]",
	Short: "List the mobs shown in a bin",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		sortBy := cfg.Sorting()
		if infoSort != "" {
			var err error
			if sortBy, err = bin.ParseSorting(infoSort); err != nil {
				return err
			}
		}

		b, err := openBin(args[0])
		if err != nil {
			return err
		}
		defer func() { _ = b.Close() }()

		mobs := b.Filter(infoAll || cfg.AllowReferenceClips, func(*avb.Mob) bool { return true })
		bin.Sort(mobs, sortBy, infoDesc)

		rows := make([]describe.Mob, 0, len(mobs))
		for _, m := range mobs {
			rows = append(rows, describe.MobOf(m))
		}
		if infoJSON {
			return printJSON(cmd.OutOrStdout(), rows)
		}

		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "%s (%s view, %d items, %d shown)\n\n", b.Name, b.DisplayMode, len(b.Items), len(rows))
		w := newTable(out)
		fmt.Fprintln(w, "NAME\tROLE\tTRACKS\tDURATION\tMODIFIED\tID")
		for _, r := range rows {
			modified := "-"
			if !r.Modified.IsZero() {
				modified = r.Modified.Format("2006-01-02 15:04")
			}
			fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\n", r.Name, r.Role, r.Tracks, r.Duration, modified, r.ID)
		}
		return w.Flush()
	},
}

func init() {
	infoCmd.Flags().StringVarP(&infoSort, "sort", "s", "", "Sort by created, modified or name (default from config)")
	infoCmd.Flags().BoolVarP(&infoDesc, "desc", "d", false, "Sort descending")
	infoCmd.Flags().BoolVarP(&infoAll, "all", "a", false, "Include reference clips that are not placed in the bin")
	infoCmd.Flags().BoolVar(&infoJSON, "json", false, "Print JSON")
	rootCmd.AddCommand(infoCmd)
}
