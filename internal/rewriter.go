package internal

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"slices"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
)

// TextRewriter turns text into a cleaned version of itself
type TextRewriter interface {
	Rewrite(ctx context.Context, text string) (string, error)
}

// ChatRewriter rewrites text through one OpenAI-compatible chat endpoint
type ChatRewriter struct {
	endpoint string
	chat     ChatCompleter
	prompts  *PromptManager
	timeout  time.Duration
}

// NewChatRewriter creates a rewriter for a single endpoint
func NewChatRewriter(endpoint string, chat ChatCompleter, prompts *PromptManager, timeout time.Duration) *ChatRewriter {
	return &ChatRewriter{
		endpoint: endpoint,
		chat:     chat,
		prompts:  prompts,
		timeout:  timeout,
	}
}

// Endpoint returns the base URL this rewriter talks to
func (r *ChatRewriter) Endpoint() string {
	return r.endpoint
}

// Rewrite sends text with the system instruction in a single chat request.
// Failures are returned as *EndpointError.
func (r *ChatRewriter) Rewrite(ctx context.Context, text string) (string, error) {
	system, err := r.prompts.SystemPrompt()
	if err != nil {
		return "", r.fail(err)
	}
	user, err := r.prompts.UserMessage(text)
	if err != nil {
		return "", r.fail(err)
	}

	if r.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.timeout)
		defer cancel()
	}

	content, err := r.chat.Complete(ctx, system, user)
	if err != nil {
		return "", r.fail(err)
	}
	content = strings.TrimSpace(content)
	if content == "" {
		return "", r.fail(errors.New("empty completion"))
	}
	return content, nil
}

func (r *ChatRewriter) fail(err error) error {
	return &EndpointError{
		Endpoint:   r.endpoint,
		StatusCode: statusCode(err),
		Err:        err,
	}
}

// NewChatRewriters builds one rewriter per configured endpoint, in order
func NewChatRewriters(config *Config, prompts *PromptManager) []TextRewriter {
	httpClient := &http.Client{}
	rewriters := make([]TextRewriter, 0, len(config.RewriteEndpoints))
	for _, endpoint := range config.RewriteEndpoints {
		endpoint = strings.TrimSpace(endpoint)
		if endpoint == "" {
			continue
		}
		client := NewOpenAIClient(config.RewriteToken,
			WithBaseURL(endpoint),
			WithHTTPClient(httpClient),
			WithChatParams(ChatParams{
				Model:       config.RewriteModel,
				MaxTokens:   config.RewriteMaxTokens,
				Temperature: config.RewriteTemperature,
			}),
		)
		rewriters = append(rewriters, NewChatRewriter(endpoint, client, prompts, config.RewriteTimeout))
	}
	return rewriters
}

// RewriteEngine names what rewrites transcripts for the cleaned footer:
// "GitHub Models" when only the default endpoints are configured, else the model
func RewriteEngine(endpoints []string, model string) string {
	configured := 0
	for _, endpoint := range endpoints {
		endpoint = strings.TrimRight(strings.TrimSpace(endpoint), "/")
		if endpoint == "" {
			continue
		}
		if !slices.Contains(DefaultRewriteEndpoints, endpoint) {
			configured = -1
			break
		}
		configured++
	}
	if configured > 0 {
		return "GitHub Models"
	}
	if model = strings.TrimSpace(model); model != "" {
		return model
	}
	return "an OpenAI-compatible model"
}

// RewriteChain tries its rewriters strictly in order and returns the first
// success. When every rewriter fails it returns ErrNoRewrite.
type RewriteChain struct {
	rewriters []TextRewriter
	logger    logrus.FieldLogger
}

// NewRewriteChain creates a chain over rewriters
func NewRewriteChain(logger logrus.FieldLogger, rewriters ...TextRewriter) *RewriteChain {
	if logger == nil {
		logger = discardLogger()
	}
	return &RewriteChain{
		rewriters: rewriters,
		logger:    logger,
	}
}

// Len returns the number of rewriters in the chain
func (c *RewriteChain) Len() int {
	return len(c.rewriters)
}

func (c *RewriteChain) Rewrite(ctx context.Context, text string) (string, error) {
	for i, r := range c.rewriters {
		if err := ctx.Err(); err != nil {
			c.logger.WithError(err).Warn("rewrite cancelled")
			break
		}

		log := c.logger.WithField("attempt", i+1)
		out, err := r.Rewrite(ctx, text)
		if err == nil {
			log.Info("transcript rewritten")
			return out, nil
		}

		var endpointErr *EndpointError
		if errors.As(err, &endpointErr) {
			log = log.WithField("endpoint", endpointErr.Endpoint)
			if endpointErr.StatusCode != 0 {
				log = log.WithField("status", endpointErr.StatusCode)
			}
			if endpointErr.Forbidden() {
				log.WithError(err).Warn("access denied by rewrite endpoint, check token permissions")
				continue
			}
		}
		log.WithError(err).Warn("rewrite endpoint failed")
	}

	return "", fmt.Errorf("%w (%d tried)", ErrNoRewrite, len(c.rewriters))
}
