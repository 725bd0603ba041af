package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/rtzll/podscribe/internal"
)

var (
	config *internal.Config
	logger *logrus.Logger
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "podscribe [audio URL]",
	Short: "Transcribe podcast episodes into markdown",
	Long: `podscribe downloads a podcast episode, transcribes it with OpenAI Whisper
and writes a markdown transcript into the transcripts directory.

A separate clean step rewrites the transcript for readability through
OpenAI-compatible chat endpoints (GitHub Models by default), trying each
endpoint in order and keeping the original text when all of them fail.`,
	Example: `  # Transcribe an episode
  podscribe https://example.com/episode.mp3 --title "Ep 1: AI Talk"

  # Transcribe and write a cleaned copy
  podscribe https://example.com/episode.mp3 -t "Ep 1: AI Talk" --clean

  # Send the whole file in one request instead of 30s chunks
  podscribe https://example.com/episode.mp3 -t "Ep 1" --chunk-length 0s`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if err := internal.HandleVerboseFlag(cmd, config); err != nil {
			return err
		}
		logger = internal.NewLogger(config, os.Stderr)
		return nil
	},
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		req, err := requestFromFlags(cmd, args[0])
		if err != nil {
			return err
		}
		return transcribeAndReport(cmd, req)
	},
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() error {
	// Create a cancellable context for the entire application
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// A missing .env is fine, the environment may already be set
	_ = godotenv.Load()

	// Initialize configuration with Viper
	config = internal.InitConfig()
	logger = internal.NewLogger(config, os.Stderr)

	// Ensure XDG directories exist
	if err := internal.EnsureDirs(config.ConfigDir, config.DataDir, config.CacheDir); err != nil {
		fmt.Fprintf(os.Stderr, "Error creating XDG directories: %v\n", err)
		os.Exit(1)
	}

	// Runs of this process live below their own directory, so cleanup never
	// touches another process's downloads
	procDir, err := internal.NewProcessTempDir(config.TempDir)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	config.TempDir = procDir
	defer func() {
		if err := os.RemoveAll(procDir); err != nil {
			fmt.Fprintf(os.Stderr, "Warning: failed to remove %s: %v\n", procDir, err)
		}
	}()

	// Ensure default config exists in XDG config directory
	if err := internal.EnsureDefaultConfig(config.ConfigDir); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: Failed to ensure default config: %v\n", err)
	}

	// Ensure default prompt exists in XDG config directory
	if err := internal.EnsureDefaultPrompt(config.ConfigDir); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: Failed to ensure default prompt: %v\n", err)
	}

	// Set up signal handling for graceful shutdown
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)

	go func() {
		<-sigCh
		fmt.Fprintln(os.Stderr, "\nReceived interrupt signal. Cleaning up and shutting down...")

		// Cancel the main context to signal all operations to stop
		cancel()

		cleanupCtx, cleanupCancel := context.WithTimeout(context.Background(), 3*time.Second)
		defer cleanupCancel()

		cleanupDone := make(chan struct{})
		go func() {
			if err := internal.CleanupTempDir(config.TempDir); err != nil {
				fmt.Fprintf(os.Stderr, "Error cleaning up temporary files: %v\n", err)
			}
			close(cleanupDone)
		}()

		select {
		case <-cleanupDone:
		case <-cleanupCtx.Done():
			fmt.Fprintln(os.Stderr, "Warning: Cleanup timed out, forcing exit")
		}

		os.Exit(130)
	}()

	rootCmd.SetContext(ctx)

	return rootCmd.Execute()
}

func init() {
	internal.AddTranscriptionFlags(rootCmd)
	internal.AddRewriteFlags(rootCmd)
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "Enable verbose output for debugging")
	rootCmd.PersistentFlags().BoolP("quiet", "q", false, "Suppress progress bars and informational output")
	rootCmd.PersistentFlags().String("log-format", "", "Log format: text or json (default: text on a terminal)")
}
