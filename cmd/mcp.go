package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/rtzll/podscribe/internal"
)

// mcpCmd represents the mcp command
var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Run an MCP server exposing podscribe as tools",
	Long: `Run a Model Context Protocol (MCP) server that exposes podscribe as tools.

The MCP server provides three tools:
- transcribe_podcast: download and transcribe an episode (paid)
- clean_transcript: rewrite a transcript file for readability
- list_feed_episodes: list the audio episodes of a podcast feed

Logs never go to stdout. Set mcp_log_enabled to append them to mcp.log in
the cache directory.

Transport options:
- stdio (default): Standard MCP transport via stdin/stdout
- http: HTTP transport on specified port (use --port to configure)`,
	Example: `  # Run MCP server with stdio transport
  podscribe mcp

  # Run MCP server with HTTP transport on port 8080
  podscribe mcp --transport=http --port=8080`,
	PreRunE: func(cmd *cobra.Command, args []string) error {
		// stdio carries the protocol, so nothing else may print there
		config.Verbose = false
		config.Quiet = true
		logger = internal.NewMCPLogger(config)
		return nil
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		transport, _ := cmd.Flags().GetString("transport")
		port, _ := cmd.Flags().GetInt("port")

		pipeline := internal.NewPipeline(config,
			internal.WithLogger(logger),
			internal.WithUI(internal.NewSilentUI()),
		)
		feeds := internal.NewFeedResolver(config.FetchTimeout)

		mcpServer := internal.NewMCPServer(pipeline, feeds, version)

		if transport == "http" {
			fmt.Fprintf(os.Stderr, "Starting podscribe MCP server on HTTP port %d...\n", port)
		}
		logger.WithField("transport", transport).Info("starting MCP server")

		// Start the server (this will block until context is cancelled)
		return mcpServer.Start(cmd.Context(), transport, port)
	},
}

func init() {
	mcpCmd.Flags().String("transport", "stdio", "Transport protocol (stdio or http)")
	mcpCmd.Flags().Int("port", 8080, "Port for HTTP transport (only used with --transport=http)")
	rootCmd.AddCommand(mcpCmd)
}
