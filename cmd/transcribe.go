package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/rtzll/podscribe/internal"
)

// transcribeCmd represents the transcribe command
var transcribeCmd = &cobra.Command{
	Use:   "transcribe [audio URL]",
	Short: "Transcribe a podcast episode from a URL or a transcription issue",
	Long: `Transcribe downloads the audio, transcribes it and writes a markdown
transcript. Without a URL argument the request is read from a transcription
issue form: ISSUE_BODY holds the form and ISSUE_TITLE the issue title.

On success transcript_file and title are printed as key=value lines and
appended to $GITHUB_OUTPUT when it is set.`,
	Example: `  # Transcribe an episode
  podscribe transcribe https://example.com/episode.mp3 -t "Ep 1: AI Talk" -c "Great episode"

  # Transcribe the request of a GitHub issue (as in a workflow)
  ISSUE_TITLE="[Transcription] My Show" ISSUE_BODY="$(cat body.md)" podscribe transcribe

  # Retry a flaky download three times
  podscribe transcribe https://example.com/episode.mp3 -t "Ep 1" --fetch-retries 3`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		var req internal.TranscriptionRequest
		var err error

		if len(args) == 1 {
			req, err = requestFromFlags(cmd, args[0])
			if err != nil {
				return err
			}
		} else {
			if config.IssueBody == "" {
				return fmt.Errorf("no audio URL given and ISSUE_BODY is not set")
			}
			req = internal.ParseIssue(config.IssueTitle, config.IssueBody).WithDefaultTitle(config.DefaultTitle)
			logger.WithField("title", req.Title).Info("request parsed from issue")
		}

		return transcribeAndReport(cmd, req)
	},
}

func init() {
	internal.AddTranscriptionFlags(transcribeCmd)
	internal.AddRewriteFlags(transcribeCmd)
	rootCmd.AddCommand(transcribeCmd)
}
