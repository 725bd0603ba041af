package cmd

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/rtzll/podscribe/internal"
)

// newPipeline applies the command's flags to config and builds a pipeline from it
func newPipeline(cmd *cobra.Command) (*internal.Pipeline, error) {
	if cmd.Flags().Lookup("chunk-length") != nil {
		if err := internal.ApplyTranscriptionFlags(cmd, config); err != nil {
			return nil, err
		}
	}
	if cmd.Flags().Lookup("model") != nil {
		if err := internal.ApplyRewriteFlags(cmd, config); err != nil {
			return nil, err
		}
	}

	return internal.NewPipeline(config,
		internal.WithLogger(logger),
		internal.WithUI(internal.NewUIManager(config.Quiet)),
	), nil
}

// requestFromFlags builds a request for audioURL from --title and --commentary
func requestFromFlags(cmd *cobra.Command, audioURL string) (internal.TranscriptionRequest, error) {
	title, err := cmd.Flags().GetString("title")
	if err != nil {
		return internal.TranscriptionRequest{}, fmt.Errorf("failed to get title flag: %w", err)
	}
	commentary, err := cmd.Flags().GetString("commentary")
	if err != nil {
		return internal.TranscriptionRequest{}, fmt.Errorf("failed to get commentary flag: %w", err)
	}

	req := internal.TranscriptionRequest{
		Title:      title,
		AudioURL:   strings.TrimSpace(audioURL),
		Commentary: commentary,
	}
	return req.WithDefaultTitle(config.DefaultTitle), nil
}

// transcribeAndReport runs the pipeline for req, optionally cleans the result,
// and reports the produced files as key/value outputs
func transcribeAndReport(cmd *cobra.Command, req internal.TranscriptionRequest) error {
	pipeline, err := newPipeline(cmd)
	if err != nil {
		return err
	}

	result, err := pipeline.Run(cmd.Context(), req)
	if err != nil {
		return err
	}

	for _, w := range result.Warnings {
		fmt.Fprintf(os.Stderr, "Warning: %s\n", w)
	}

	outputs := []internal.Output{
		{Key: "transcript_file", Value: result.Path},
		{Key: "title", Value: result.Title},
	}

	clean, _ := cmd.Flags().GetBool("clean")
	if clean {
		cleaned, err := pipeline.Clean(cmd.Context(), result.Path)
		if err != nil {
			return err
		}
		reportRewrite(cleaned)
		outputs = append(outputs, internal.Output{Key: "cleaned_file", Value: cleaned.Path})
	}

	return internal.WriteOutputs(cmd.OutOrStdout(), outputs...)
}

// cleanAndReport writes the cleaned sibling of path and reports it
func cleanAndReport(cmd *cobra.Command, path string) error {
	pipeline, err := newPipeline(cmd)
	if err != nil {
		return err
	}

	cleaned, err := pipeline.Clean(cmd.Context(), path)
	if err != nil {
		return err
	}
	reportRewrite(cleaned)

	return internal.WriteOutputs(cmd.OutOrStdout(), internal.Output{Key: "cleaned_file", Value: cleaned.Path})
}

func reportRewrite(result *internal.CleanResult) {
	if !result.Rewritten {
		fmt.Fprintln(os.Stderr, "Warning: Failed to clean transcript, using original")
	}
}
