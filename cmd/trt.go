package cmd

import (
	"fmt"

	"github.com/agentic-research/avbmatch/internal/bin"
	"github.com/agentic-research/avbmatch/internal/report"
	"github.com/spf13/cobra"
)

var (
	trtHead   string
	trtTail   string
	trtAdjust string
	trtSort   string
)

var trtCmd = &cobra.Command{
	Use:   "trt [bins...]",
	Short: "Total running time across reel bins",
	Long: `Read the latest sequence of each reel bin and add up their running times
with the head and tail leaders removed. LFOA is the last frame of action,
in feet and frames.`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		opts := cfg.ReportOptions()
		if trtHead != "" {
			opts.Leaders.Head = trtHead
		}
		if trtTail != "" {
			opts.Leaders.Tail = trtTail
		}
		if trtAdjust != "" {
			opts.Adjust = trtAdjust
		}
		if trtSort != "" {
			sortBy, err := bin.ParseSorting(trtSort)
			if err != nil {
				return err
			}
			opts.SortBy = sortBy
		}

		trt, err := report.BuildTRT(cmd.Context(), args, openBin, opts)
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		w := newTable(out)
		fmt.Fprintln(w, "REEL\tSEQUENCE\tTOTAL\tHEAD\tTAIL\tDURATION\tLFOA\tMODIFIED")
		for _, r := range trt.Reels {
			info := r.Info
			reel := info.ReelNumber
			if reel == "" {
				reel = "-"
			}
			fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\t%s\t%s\n",
				reel, info.Name, info.Total, info.Head, info.Tail,
				info.DurationAdjusted(), info.LFOA(), info.Modified.Format("2006-01-02 15:04"))
		}
		if err := w.Flush(); err != nil {
			return err
		}
		for _, s := range trt.Skipped {
			fmt.Fprintf(out, "Skipped %s: %v\n", s.Path, s.Err)
		}
		if trt.Adjust.Frame != 0 {
			fmt.Fprintf(out, "Adjustment: %s\n", trt.Adjust)
		}
		fmt.Fprintf(out, "Total running time: %s\n", trt.Total())
		return nil
	},
}

func init() {
	trtCmd.Flags().StringVar(&trtHead, "head", "", "Head leader duration (default from config, 8:00)")
	trtCmd.Flags().StringVar(&trtTail, "tail", "", "Tail leader duration (default from config, 3:23)")
	trtCmd.Flags().StringVar(&trtAdjust, "trt-adjust", "", "Timecode added to the total, may be negative")
	trtCmd.Flags().StringVarP(&trtSort, "sort", "s", "", "Pick each bin's latest sequence by created, modified or name")
	rootCmd.AddCommand(trtCmd)
}
