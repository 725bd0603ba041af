package internal

import (
	"context"
	"embed"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	"github.com/adrg/xdg"
	"github.com/spf13/viper"
)

// CommandRunner executes external commands
type CommandRunner interface {
	Run(ctx context.Context, name string, args ...string) ([]byte, error)
}

// DefaultCommandRunner implements CommandRunner
type DefaultCommandRunner struct{}

func (r *DefaultCommandRunner) Run(ctx context.Context, name string, args ...string) ([]byte, error) {
	cmd := exec.CommandContext(ctx, name, args...)
	return cmd.CombinedOutput()
}

// Config holds application settings
type Config struct {
	// Output
	TranscriptsDir string
	DefaultTitle   string
	CleanedSuffix  string

	// Speech-to-text
	OpenAIAPIKey  string
	OpenAIBaseURL string
	STTModel      string
	ChunkLength   time.Duration
	ChunkOverlap  time.Duration

	// Rewrite
	RewriteToken       string
	RewriteModel       string
	RewriteEndpoints   []string
	RewriteMaxTokens   int64
	RewriteTemperature float64
	RewriteTimeout     time.Duration
	Prompt             string

	// Fetch
	FetchTimeout time.Duration
	FetchRetries int

	// Upstream request
	IssueTitle     string
	IssueBody      string
	TranscriptFile string

	// UI and logging
	Verbose       bool
	Quiet         bool
	LogLevel      string
	LogFormat     string
	MCPLogEnabled bool

	// Fixed XDG paths (not configurable)
	ConfigDir string
	DataDir   string
	CacheDir  string
	TempDir   string
}

//go:embed config.toml prompt.txt
var defaultFS embed.FS

// FallbackTitle labels requests that carry no title of their own
const FallbackTitle = "Podcast Transcript"

// DefaultRewriteEndpoints are equivalent OpenAI-compatible chat endpoints tried in order
var DefaultRewriteEndpoints = []string{
	"https://models.github.ai/inference",
	"https://models.inference.ai.azure.com",
}

// ensureDefaultFile checks if a file exists in the specified directory
// and creates it from the embedded default if it doesn't exist
func ensureDefaultFile(configDir, embedFilename, description string) error {
	filePath := filepath.Join(configDir, embedFilename)

	if FileExists(filePath) {
		return nil
	}

	if err := os.MkdirAll(configDir, 0755); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}

	defaultContent, err := defaultFS.ReadFile(embedFilename)
	if err != nil {
		return fmt.Errorf("reading embedded default %s: %w", description, err)
	}

	if err := os.WriteFile(filePath, defaultContent, 0644); err != nil {
		return fmt.Errorf("writing default %s: %w", description, err)
	}

	fmt.Fprintf(os.Stderr, "Created default %s at %s\n", description, filePath)
	return nil
}

// EnsureDefaultConfig checks if a config file exists in the XDG config directory
// and creates it from the embedded default if it doesn't exist
func EnsureDefaultConfig(configDir string) error {
	return ensureDefaultFile(configDir, "config.toml", "configuration")
}

// EnsureDefaultPrompt checks if a prompt.txt file exists in the XDG config directory
// and creates it from the embedded default if it doesn't exist
func EnsureDefaultPrompt(configDir string) error {
	return ensureDefaultFile(configDir, "prompt.txt", "rewrite prompt")
}

// InitConfig initializes Viper and loads configuration
func InitConfig() *Config {
	configDir := filepath.Join(xdg.ConfigHome, "podscribe")
	dataDir := filepath.Join(xdg.DataHome, "podscribe")
	cacheDir := filepath.Join(xdg.CacheHome, "podscribe")
	tempDir := filepath.Join(cacheDir, "runs")

	v := viper.New()

	v.SetDefault("transcripts_dir", "transcripts")
	v.SetDefault("default_title", FallbackTitle)
	v.SetDefault("cleaned_suffix", "_cleaned")
	v.SetDefault("openai_base_url", "")
	v.SetDefault("stt_model", "whisper-1")
	v.SetDefault("chunk_length", 30*time.Second)
	v.SetDefault("chunk_overlap", 5*time.Second)
	v.SetDefault("rewrite_model", "gpt-4o")
	v.SetDefault("rewrite_endpoints", DefaultRewriteEndpoints)
	v.SetDefault("rewrite_max_tokens", 4000)
	v.SetDefault("rewrite_temperature", 0.3)
	v.SetDefault("rewrite_timeout", 2*time.Minute)
	v.SetDefault("fetch_timeout", time.Duration(0))
	v.SetDefault("fetch_retries", 0)
	v.SetDefault("prompt", "") // if empty the prompt.txt in the config dir is used
	v.SetDefault("verbose", false)
	v.SetDefault("quiet", false)
	v.SetDefault("log_level", "info")
	v.SetDefault("log_format", "")
	v.SetDefault("mcp_log_enabled", false)

	v.SetConfigName("config")
	v.SetConfigType("toml")
	v.AddConfigPath(configDir)
	v.AddConfigPath(".")

	v.SetEnvPrefix("PODSCRIBE")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))

	// Well-known variables set by CI and the OpenAI tooling
	_ = v.BindEnv("openai_api_key", "PODSCRIBE_OPENAI_API_KEY", "OPENAI_API_KEY")
	_ = v.BindEnv("rewrite_token", "PODSCRIBE_REWRITE_TOKEN", "GITHUB_TOKEN")
	_ = v.BindEnv("issue_title", "ISSUE_TITLE")
	_ = v.BindEnv("issue_body", "ISSUE_BODY")
	_ = v.BindEnv("transcript_file", "TRANSCRIPT_FILE")

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			fmt.Fprintf(os.Stderr, "Warning: Error reading config file: %v\n", err)
		}
	}

	config := &Config{
		TranscriptsDir: v.GetString("transcripts_dir"),
		DefaultTitle:   v.GetString("default_title"),
		CleanedSuffix:  v.GetString("cleaned_suffix"),

		OpenAIAPIKey:  v.GetString("openai_api_key"),
		OpenAIBaseURL: v.GetString("openai_base_url"),
		STTModel:      v.GetString("stt_model"),
		ChunkLength:   v.GetDuration("chunk_length"),
		ChunkOverlap:  v.GetDuration("chunk_overlap"),

		RewriteToken:       v.GetString("rewrite_token"),
		RewriteModel:       v.GetString("rewrite_model"),
		RewriteEndpoints:   v.GetStringSlice("rewrite_endpoints"),
		RewriteMaxTokens:   v.GetInt64("rewrite_max_tokens"),
		RewriteTemperature: v.GetFloat64("rewrite_temperature"),
		RewriteTimeout:     v.GetDuration("rewrite_timeout"),
		Prompt:             v.GetString("prompt"),

		FetchTimeout: v.GetDuration("fetch_timeout"),
		FetchRetries: v.GetInt("fetch_retries"),

		IssueTitle:     v.GetString("issue_title"),
		IssueBody:      v.GetString("issue_body"),
		TranscriptFile: v.GetString("transcript_file"),

		Verbose:       v.GetBool("verbose"),
		Quiet:         v.GetBool("quiet"),
		LogLevel:      v.GetString("log_level"),
		LogFormat:     v.GetString("log_format"),
		MCPLogEnabled: v.GetBool("mcp_log_enabled"),

		ConfigDir: configDir,
		DataDir:   dataDir,
		CacheDir:  cacheDir,
		TempDir:   tempDir,
	}

	if config.Verbose {
		fmt.Fprintf(os.Stderr, "Using config file: %s\n", v.ConfigFileUsed())
	}

	return config
}

// ValidateChunking checks that consecutive windows advance through the audio
func ValidateChunking(length, overlap time.Duration) error {
	if length < 0 || overlap < 0 {
		return fmt.Errorf("chunk length and overlap must not be negative")
	}
	if length > 0 && overlap >= length {
		return fmt.Errorf("chunk overlap (%s) must be shorter than chunk length (%s)", overlap, length)
	}
	return nil
}
