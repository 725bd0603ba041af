package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/rtzll/podscribe/internal"
)

// feedCmd represents the feed command
var feedCmd = &cobra.Command{
	Use:   "feed [feed URL]",
	Short: "Transcribe an episode of a podcast RSS/Atom feed",
	Long: `Feed reads a podcast feed, picks an episode (0 is the newest) and
transcribes its audio enclosure. The episode title becomes the transcript
title and its show notes become the commentary.`,
	Example: `  # List the episodes of a feed
  podscribe feed https://example.com/podcast.rss --list

  # Transcribe the newest episode
  podscribe feed https://example.com/podcast.rss

  # Transcribe the third newest episode and clean it
  podscribe feed https://example.com/podcast.rss --episode 2 --clean`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		resolver := internal.NewFeedResolver(config.FetchTimeout)

		list, _ := cmd.Flags().GetBool("list")
		if list {
			episodes, err := resolver.Episodes(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			fmt.Fprint(cmd.OutOrStdout(), internal.FormatEpisodes(episodes))
			return nil
		}

		episode, _ := cmd.Flags().GetInt("episode")
		req, err := resolver.Resolve(cmd.Context(), args[0], episode)
		if err != nil {
			return err
		}

		// explicit flags win over the feed's values
		if title, _ := cmd.Flags().GetString("title"); title != "" {
			req.Title = title
		}
		if commentary, _ := cmd.Flags().GetString("commentary"); commentary != "" {
			req.Commentary = commentary
		}

		return transcribeAndReport(cmd, req.WithDefaultTitle(config.DefaultTitle))
	},
}

func init() {
	internal.AddTranscriptionFlags(feedCmd)
	internal.AddRewriteFlags(feedCmd)
	feedCmd.Flags().IntP("episode", "e", 0, "Episode to transcribe, 0 is the newest")
	feedCmd.Flags().Bool("list", false, "List the episodes instead of transcribing")
	rootCmd.AddCommand(feedCmd)
}
