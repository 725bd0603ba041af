package cmd

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/rtzll/podscribe/internal"
)

// requestCmd represents the request command
var requestCmd = &cobra.Command{
	Use:   "request",
	Short: "Print the transcription request parsed from an issue",
	Long: `Request parses a transcription issue form (ISSUE_TITLE and ISSUE_BODY, or
the --issue-title and --issue-body flags) and prints the resulting request as
JSON without downloading anything. It exits non-zero when the request is
invalid, so a workflow can reject an issue before spending money on it.`,
	Example: `  # Check the request of the current issue
  podscribe request

  # Parse an issue body from a file
  podscribe request --issue-title "[Transcription] My Show" --issue-body "$(cat body.md)" --pretty`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		title := config.IssueTitle
		if cmd.Flags().Changed("issue-title") {
			title, _ = cmd.Flags().GetString("issue-title")
		}
		body := config.IssueBody
		if cmd.Flags().Changed("issue-body") {
			body, _ = cmd.Flags().GetString("issue-body")
		}

		req := internal.ParseIssue(title, body).WithDefaultTitle(config.DefaultTitle)

		var jsonData []byte
		var err error
		pretty, _ := cmd.Flags().GetBool("pretty")
		if pretty {
			jsonData, err = json.MarshalIndent(req, "", "  ")
		} else {
			jsonData, err = json.Marshal(req)
		}
		if err != nil {
			return fmt.Errorf("error converting request to JSON: %w", err)
		}
		fmt.Fprintln(cmd.OutOrStdout(), string(jsonData))

		for _, w := range req.Warnings() {
			fmt.Fprintf(os.Stderr, "Warning: %s\n", w)
		}
		return req.Validate()
	},
}

func init() {
	requestCmd.Flags().String("issue-title", "", "Issue title (default: ISSUE_TITLE)")
	requestCmd.Flags().String("issue-body", "", "Issue body (default: ISSUE_BODY)")
	requestCmd.Flags().Bool("pretty", false, "Format output as pretty JSON")
	rootCmd.AddCommand(requestCmd)
}
