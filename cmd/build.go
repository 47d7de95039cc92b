package cmd

import (
	"fmt"
	"time"

	"github.com/agentic-research/avbmatch/internal/ingest"
	"github.com/spf13/cobra"
)

var buildCmd = &cobra.Command{
	Use:   "build [export.json] [output.db]",
	Short: "Build a SQLite bin snapshot from a JSON bin export",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		source := args[0]
		output := args[1]

		start := time.Now()
		fmt.Fprintf(cmd.OutOrStdout(), "Building %s from %s...\n", output, source)
		if err := ingest.Build(source, output, cfg.IngestOptions()); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Done in %v.\n", time.Since(start).Round(time.Millisecond))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(buildCmd)
}
