package internal

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"strings"

	"github.com/openai/openai-go/v2"
	"github.com/openai/openai-go/v2/option"
)

// SpeechToText turns one audio file into text
type SpeechToText interface {
	Transcribe(ctx context.Context, audioFile string) (string, error)
}

// ChatCompleter sends a single system + user exchange to a chat model
type ChatCompleter interface {
	Complete(ctx context.Context, system, user string) (string, error)
}

// ChatParams configures chat completion requests
type ChatParams struct {
	Model       string
	MaxTokens   int64
	Temperature float64
}

// OpenAIClient wraps the official OpenAI Go SDK
type OpenAIClient struct {
	client  openai.Client
	baseURL string
	model   string
	chat    ChatParams
}

// OpenAIOption configures an OpenAIClient
type OpenAIOption func(*openAIOptions)

type openAIOptions struct {
	baseURL    string
	httpClient *http.Client
	model      string
	chat       ChatParams
}

// WithBaseURL points the client at an OpenAI-compatible endpoint
func WithBaseURL(baseURL string) OpenAIOption {
	return func(o *openAIOptions) {
		o.baseURL = baseURL
	}
}

// WithHTTPClient sets the HTTP client used for requests
func WithHTTPClient(c *http.Client) OpenAIOption {
	return func(o *openAIOptions) {
		o.httpClient = c
	}
}

// WithTranscriptionModel sets the speech-to-text model
func WithTranscriptionModel(model string) OpenAIOption {
	return func(o *openAIOptions) {
		o.model = model
	}
}

// WithChatParams sets the model and sampling limits for chat completions
func WithChatParams(p ChatParams) OpenAIOption {
	return func(o *openAIOptions) {
		o.chat = p
	}
}

// NewOpenAIClient creates a new OpenAI client. The SDK's own retries are
// disabled, failures are reported to the caller immediately.
func NewOpenAIClient(apiKey string, opts ...OpenAIOption) *OpenAIClient {
	o := &openAIOptions{
		model: "whisper-1",
		chat: ChatParams{
			Model:       "gpt-4o",
			MaxTokens:   4000,
			Temperature: 0.3,
		},
	}
	for _, opt := range opts {
		opt(o)
	}

	reqOpts := []option.RequestOption{
		option.WithAPIKey(apiKey),
		option.WithMaxRetries(0),
	}
	if o.baseURL != "" {
		reqOpts = append(reqOpts, option.WithBaseURL(normalizeBaseURL(o.baseURL)))
	}
	if o.httpClient != nil {
		reqOpts = append(reqOpts, option.WithHTTPClient(o.httpClient))
	}

	return &OpenAIClient{
		client:  openai.NewClient(reqOpts...),
		baseURL: o.baseURL,
		model:   o.model,
		chat:    o.chat,
	}
}

// Transcribe sends one audio file to the transcription endpoint
func (c *OpenAIClient) Transcribe(ctx context.Context, audioFile string) (string, error) {
	file, err := os.Open(audioFile)
	if err != nil {
		return "", fmt.Errorf("opening audio file: %w", err)
	}
	defer file.Close()

	resp, err := c.client.Audio.Transcriptions.New(ctx, openai.AudioTranscriptionNewParams{
		File:  file,
		Model: openai.AudioModel(c.model),
	})
	if err != nil {
		return "", err
	}
	return resp.Text, nil
}

// Complete sends the system instruction and user message as one chat request
func (c *OpenAIClient) Complete(ctx context.Context, system, user string) (string, error) {
	params := openai.ChatCompletionNewParams{
		Model: openai.ChatModel(c.chat.Model),
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.SystemMessage(system),
			openai.UserMessage(user),
		},
		Temperature: openai.Float(c.chat.Temperature),
	}
	if c.chat.MaxTokens > 0 {
		params.MaxTokens = openai.Int(c.chat.MaxTokens)
	}

	resp, err := c.client.Chat.Completions.New(ctx, params)
	if err != nil {
		return "", err
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("no response choices from %s", c.endpoint())
	}
	return resp.Choices[0].Message.Content, nil
}

func (c *OpenAIClient) endpoint() string {
	if c.baseURL == "" {
		return "OpenAI"
	}
	return c.baseURL
}

// statusCode extracts the HTTP status from an SDK error, 0 when there was no response
func statusCode(err error) int {
	var apiErr *openai.Error
	if errors.As(err, &apiErr) {
		return apiErr.StatusCode
	}
	return 0
}

// normalizeBaseURL makes the SDK resolve paths below the given base
func normalizeBaseURL(baseURL string) string {
	if !strings.HasSuffix(baseURL, "/") {
		return baseURL + "/"
	}
	return baseURL
}

// ValidateOpenAIAPIKey checks if the OpenAI API key is set and returns a standardized error if not
func ValidateOpenAIAPIKey(apiKey string) error {
	if apiKey == "" {
		return fmt.Errorf("OpenAI API key is required - set it in config.toml or OPENAI_API_KEY environment variable")
	}
	return nil
}

// ValidateRewriteToken checks the bearer token for the rewrite endpoints
func ValidateRewriteToken(token string) error {
	if token == "" {
		return fmt.Errorf("rewrite token is required - set rewrite_token in config.toml or the GITHUB_TOKEN environment variable")
	}
	return nil
}
