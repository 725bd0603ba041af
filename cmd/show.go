package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/rtzll/podscribe/internal"
)

// showCmd represents the show command
var showCmd = &cobra.Command{
	Use:   "show [transcript file or title]",
	Short: "Render a transcript in the terminal",
	Example: `  # Show a transcript by path
  podscribe show transcripts/ep-1-ai-talk.md

  # Show a transcript by title, preferring the cleaned version
  podscribe show "Ep 1: AI Talk"

  # Print the raw markdown
  podscribe show "Ep 1: AI Talk" --raw`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		path, err := internal.ResolveTranscript(config.TranscriptsDir, args[0])
		if err != nil {
			return err
		}
		if original, _ := cmd.Flags().GetBool("original"); !original {
			path = internal.PreferCleaned(path, config.CleanedSuffix)
		}

		content, err := os.ReadFile(path)
		if err != nil {
			return fmt.Errorf("reading transcript: %w", err)
		}

		if raw, _ := cmd.Flags().GetBool("raw"); raw {
			fmt.Fprint(cmd.OutOrStdout(), string(content))
			return nil
		}

		rendered, err := internal.RenderMarkdown(string(content))
		if err != nil {
			return err
		}
		fmt.Fprint(cmd.OutOrStdout(), rendered)
		return nil
	},
}

func init() {
	showCmd.Flags().Bool("raw", false, "Print markdown without rendering")
	showCmd.Flags().Bool("original", false, "Show the uncleaned transcript even if a cleaned one exists")
	rootCmd.AddCommand(showCmd)
}
