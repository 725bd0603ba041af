package internal

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// AddTranscriptionFlags adds flags related to downloading and transcribing audio
func AddTranscriptionFlags(cmd *cobra.Command) {
	cmd.Flags().StringP("title", "t", "", "Title of the episode (default: issue title, then default_title)")
	cmd.Flags().StringP("commentary", "c", "", "Commentary placed above the transcript")
	cmd.Flags().Duration("chunk-length", 0, "Length of each audio chunk sent for transcription, 0s for a single request (default from config)")
	cmd.Flags().Duration("chunk-overlap", 0, "Overlap between consecutive chunks (default from config)")
	cmd.Flags().Int("fetch-retries", 0, "Retry a failed download this many times with exponential backoff")
	cmd.Flags().Duration("fetch-timeout", 0, "Timeout for the audio download, 0s for none")
	cmd.Flags().String("stt-model", "", "OpenAI speech-to-text model")
	cmd.Flags().Bool("clean", false, "Also write a cleaned transcript after transcribing")
}

// AddRewriteFlags adds flags related to the rewrite endpoints
func AddRewriteFlags(cmd *cobra.Command) {
	cmd.Flags().StringP("model", "m", "", "Model used for rewriting transcripts")
	cmd.Flags().StringP("prompt", "p", "", "Custom rewrite instruction (string or file path)")
	cmd.Flags().StringSlice("endpoint", nil, "Rewrite endpoint base URL, repeat to try several in order")
}

// ApplyTranscriptionFlags copies explicitly set transcription flags into config
func ApplyTranscriptionFlags(cmd *cobra.Command, config *Config) error {
	flags := cmd.Flags()

	if flags.Changed("chunk-length") {
		config.ChunkLength, _ = flags.GetDuration("chunk-length")
	}
	if flags.Changed("chunk-overlap") {
		config.ChunkOverlap, _ = flags.GetDuration("chunk-overlap")
	}
	if flags.Changed("fetch-retries") {
		config.FetchRetries, _ = flags.GetInt("fetch-retries")
	}
	if flags.Changed("fetch-timeout") {
		config.FetchTimeout, _ = flags.GetDuration("fetch-timeout")
	}
	if flags.Changed("stt-model") {
		config.STTModel, _ = flags.GetString("stt-model")
	}

	if config.FetchRetries < 0 {
		return fmt.Errorf("fetch retries must not be negative")
	}
	if config.FetchTimeout < 0 {
		return fmt.Errorf("fetch timeout must not be negative")
	}
	return ValidateChunking(config.ChunkLength, config.ChunkOverlap)
}

// ApplyRewriteFlags copies explicitly set rewrite flags into config
func ApplyRewriteFlags(cmd *cobra.Command, config *Config) error {
	flags := cmd.Flags()

	if flags.Changed("model") {
		model, _ := flags.GetString("model")
		if model == "" {
			return fmt.Errorf("model must not be empty")
		}
		config.RewriteModel = model
	}
	if flags.Changed("endpoint") {
		config.RewriteEndpoints, _ = flags.GetStringSlice("endpoint")
	}
	return HandlePromptFlag(cmd, config)
}

// HandlePromptFlag processes the --prompt flag to set a custom rewrite instruction
func HandlePromptFlag(cmd *cobra.Command, config *Config) error {
	promptFlag := cmd.Flags().Lookup("prompt")
	if promptFlag == nil || !promptFlag.Changed {
		return nil
	}

	prompt, err := cmd.Flags().GetString("prompt")
	if err != nil {
		return fmt.Errorf("failed to get prompt flag: %w", err)
	}
	if prompt == "" {
		return nil
	}

	config.Prompt = prompt

	if config.Verbose {
		if IsLikelyFilePath(prompt) && FileExists(prompt) {
			fmt.Fprintf(os.Stderr, "Using custom prompt file: %s\n", prompt)
		} else {
			fmt.Fprintln(os.Stderr, "Using custom prompt string")
		}
	}

	return nil
}

// HandleVerboseFlag processes the --verbose and --quiet flags to update config
func HandleVerboseFlag(cmd *cobra.Command, config *Config) error {
	verbose, err := cmd.Flags().GetBool("verbose")
	if err != nil {
		return fmt.Errorf("failed to get verbose flag: %w", err)
	}
	if cmd.Flags().Changed("verbose") || verbose {
		config.Verbose = verbose
	}

	quiet, err := cmd.Flags().GetBool("quiet")
	if err != nil {
		return fmt.Errorf("failed to get quiet flag: %w", err)
	}
	if cmd.Flags().Changed("quiet") || quiet {
		config.Quiet = quiet
	}

	if cmd.Flags().Changed("log-format") {
		config.LogFormat, _ = cmd.Flags().GetString("log-format")
	}
	return nil
}
