package cmd

import (
	"fmt"
	"os"

	"github.com/atotto/clipboard"
	"github.com/spf13/cobra"

	"github.com/rtzll/podscribe/internal"
)

// cpCmd copies a transcript to the system clipboard instead of printing to stdout.
var cpCmd = &cobra.Command{
	Use:   "cp [transcript file or title]",
	Short: "Copy a transcript to the clipboard",
	Example: `  # Copy the cleaned transcript if there is one
  podscribe cp "Ep 1: AI Talk"

  # Copy only the transcript text, without header and footer
  podscribe cp transcripts/ep-1-ai-talk.md --body`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		path, err := internal.ResolveTranscript(config.TranscriptsDir, args[0])
		if err != nil {
			return err
		}
		path = internal.PreferCleaned(path, config.CleanedSuffix)

		data, err := os.ReadFile(path)
		if err != nil {
			return fmt.Errorf("reading transcript: %w", err)
		}
		text := string(data)

		if body, _ := cmd.Flags().GetBool("body"); body {
			doc, err := internal.ParseDocument(text)
			if err != nil {
				return err
			}
			text = doc.Body
		}

		if err := clipboard.WriteAll(text); err != nil {
			return fmt.Errorf("copying transcript to clipboard: %w", err)
		}

		if !config.Quiet {
			fmt.Fprintf(os.Stderr, "Transcript copied to clipboard (%s)\n", path)
		}

		return nil
	},
}

func init() {
	cpCmd.Flags().Bool("body", false, "Copy only the transcript text")
	rootCmd.AddCommand(cpCmd)
}
