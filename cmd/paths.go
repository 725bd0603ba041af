package cmd

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"
)

// pathsCmd represents the paths command
var pathsCmd = &cobra.Command{
	Use:   "paths",
	Short: "Show where podscribe reads and writes files",
	Example: `  # Show all application paths
  podscribe paths`,
	Run: func(cmd *cobra.Command, args []string) {
		transcripts, err := filepath.Abs(config.TranscriptsDir)
		if err != nil {
			transcripts = config.TranscriptsDir
		}

		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "Config file: %s\n", filepath.Join(config.ConfigDir, "config.toml"))
		fmt.Fprintf(out, "Rewrite prompt: %s\n", filepath.Join(config.ConfigDir, "prompt.txt"))
		fmt.Fprintf(out, "Transcripts: %s\n", transcripts)
		fmt.Fprintf(out, "Run directories: %s\n", filepath.Dir(config.TempDir))
		fmt.Fprintf(out, "MCP log: %s\n", filepath.Join(config.CacheDir, "mcp.log"))
	},
}

func init() {
	rootCmd.AddCommand(pathsCmd)
}
