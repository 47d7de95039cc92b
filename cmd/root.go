package cmd

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/agentic-research/avbmatch/internal/bin"
	"github.com/agentic-research/avbmatch/internal/config"
	"github.com/agentic-research/avbmatch/internal/ingest"
	"github.com/spf13/cobra"
)

var (
	configPath string
	verbose    bool

	cfg config.Config
)

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "Path to config file (default ~/.agentic-research/avbmatch/avbmatch.hcl)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Log debug output")
}

var rootCmd = &cobra.Command{
	Use:   "avbmatch",
	Short: "avbmatch: source reference and matchback engine for Avid bins",
	Long: `avbmatch follows the chain of source references inside an Avid bin,
from sequences and subclips back through master clips and media files to the
tapes, films and files they were captured or linked from.

Bins are read from JSON exports (.json) or from SQLite snapshots (.db) made
with "avbmatch build".`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		level := slog.LevelInfo
		if verbose {
			level = slog.LevelDebug
		}
		slog.SetDefault(slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{Level: level})))

		loaded, err := config.Load(configPath)
		if err != nil {
			return err
		}
		cfg = loaded
		return nil
	},
}

// openBin opens a bin with the configured loader settings. Each bin gets its
// own record cache since mob ids are only unique within a bin.
func openBin(path string) (*bin.Bin, error) {
	return ingest.Open(path, cfg.IngestOptions())
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
