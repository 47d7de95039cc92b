package cmd

import (
	"fmt"

	"github.com/agentic-research/avbmatch/internal/matchback"
	"github.com/agentic-research/avbmatch/internal/report"
	"github.com/spf13/cobra"
)

var continuityJSON bool

// continuityRow is a continuity entry with its duration printed as timecode.
type continuityRow struct {
	Scene    int    `json:"scene"`
	Name     string `json:"name"`
	Duration string `json:"duration"`
	Comments string `json:"comments"`
}

type continuitySheet struct {
	Sequence string          `json:"sequence"`
	Entries  []continuityRow `json:"entries"`
}

var continuityCmd = &cobra.Command{
	Use:   "continuity [bin]",
	Short: "List the scenes of each continuity sequence in a bin",
	Long: `Build a continuity list from every sequence whose name ends in
"continuity". Each clip on the sequence's top picture track is matched back
to its master clip, whose Comments column describes the scene.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		b, err := openBin(args[0])
		if err != nil {
			return err
		}
		defer func() { _ = b.Close() }()

		sheets := report.ContinuityForBin(b, cfg.AllowReferenceClips, matchback.WithMaxHops(cfg.MaxHops))
		if len(sheets) == 0 {
			return fmt.Errorf("no continuity sequences in %s", b.Name)
		}

		out := make([]continuitySheet, 0, len(sheets))
		for _, s := range sheets {
			sheet := continuitySheet{Sequence: s.Sequence, Entries: []continuityRow{}}
			for i, e := range s.Entries {
				sheet.Entries = append(sheet.Entries, continuityRow{
					Scene:    i + 1,
					Name:     e.Name,
					Duration: e.Duration.String(),
					Comments: e.Comments,
				})
			}
			out = append(out, sheet)
		}
		if continuityJSON {
			return printJSON(cmd.OutOrStdout(), out)
		}

		for i, s := range out {
			if i > 0 {
				fmt.Fprintln(cmd.OutOrStdout())
			}
			fmt.Fprintln(cmd.OutOrStdout(), s.Sequence)
			w := newTable(cmd.OutOrStdout())
			fmt.Fprintln(w, "SCENE\tCLIP\tDURATION\tCOMMENTS")
			for _, e := range s.Entries {
				fmt.Fprintf(w, "%d\t%s\t%s\t%s\n", e.Scene, e.Name, e.Duration, e.Comments)
			}
			if err := w.Flush(); err != nil {
				return err
			}
		}
		return nil
	},
}

func init() {
	continuityCmd.Flags().BoolVar(&continuityJSON, "json", false, "Print JSON")
	rootCmd.AddCommand(continuityCmd)
}
