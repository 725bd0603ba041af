package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/rtzll/podscribe/internal"
)

// cleanCmd represents the clean command
var cleanCmd = &cobra.Command{
	Use:   "clean [transcript file]",
	Short: "Rewrite a transcript for readability",
	Long: `Clean sends the transcript section of a document to the rewrite endpoints
in order and writes a sibling file with the rewritten text, for example
transcripts/ep-1.md becomes transcripts/ep-1_cleaned.md.

When every endpoint fails the sibling still gets written with the original
transcript text. Without an argument the path is read from TRANSCRIPT_FILE.`,
	Example: `  # Clean a transcript
  podscribe clean transcripts/ep-1-ai-talk.md

  # Try a single endpoint with a different model
  podscribe clean transcripts/ep-1-ai-talk.md --endpoint https://models.github.ai/inference -m gpt-4o-mini`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		path := config.TranscriptFile
		if len(args) == 1 {
			path = args[0]
		}
		if path == "" {
			return fmt.Errorf("no transcript file given and TRANSCRIPT_FILE is not set")
		}
		if !internal.FileExists(path) {
			return fmt.Errorf("transcript file not found: %s", path)
		}

		return cleanAndReport(cmd, path)
	},
}

func init() {
	internal.AddRewriteFlags(cleanCmd)
	rootCmd.AddCommand(cleanCmd)
}
