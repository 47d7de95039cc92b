package cmd

import (
	"log/slog"

	"github.com/agentic-research/avbmatch/internal/mcpserver"
	"github.com/spf13/cobra"
)

var serveCmd = &cobra.Command{
	Use:   "serve [bin]",
	Short: "Serve a bin to MCP clients over stdio",
	Long: `Serve one bin over the Model Context Protocol on stdin/stdout, so an
agent can list its mobs, walk source chains and run matchback. The "reload"
tool rereads the bin from disk without restarting the server.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		srv, err := mcpserver.New(args[0], openBin, mcpserver.Options{
			MaxHops:          cfg.MaxHops,
			IncludeReference: cfg.AllowReferenceClips,
		})
		if err != nil {
			return err
		}
		defer func() { _ = srv.Close() }()

		slog.Info("Serving bin over stdio", "path", args[0])
		return srv.Serve()
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
}
