package internal

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"
)

func chatCompletionJSON(content string) string {
	body, _ := json.Marshal(map[string]any{
		"id":      "chatcmpl-test",
		"object":  "chat.completion",
		"created": 0,
		"model":   "gpt-4o",
		"choices": []map[string]any{{
			"index":         0,
			"finish_reason": "stop",
			"message": map[string]any{
				"role":    "assistant",
				"content": content,
			},
		}},
	})
	return string(body)
}

// chatRequest is the subset of a chat completion request the tests inspect
type chatRequest struct {
	Model       string  `json:"model"`
	MaxTokens   int64   `json:"max_tokens"`
	Temperature float64 `json:"temperature"`
	Messages    []struct {
		Role    string `json:"role"`
		Content string `json:"content"`
	} `json:"messages"`
}

// newChatServer serves chat completions with a fixed status and content
func newChatServer(t *testing.T, status int, content string, hits *atomic.Int32, seen func(*http.Request, chatRequest)) *httptest.Server {
	t.Helper()
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if hits != nil {
			hits.Add(1)
		}
		if !strings.HasSuffix(r.URL.Path, "/chat/completions") {
			http.NotFound(w, r)
			return
		}
		if seen != nil {
			var req chatRequest
			if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
				t.Errorf("decoding request: %v", err)
			}
			seen(r, req)
		}

		w.Header().Set("Content-Type", "application/json")
		if status != http.StatusOK {
			w.WriteHeader(status)
			fmt.Fprintf(w, `{"error":{"message":"status %d","type":"invalid_request_error","code":null,"param":null}}`, status)
			return
		}
		w.Write([]byte(chatCompletionJSON(content)))
	}))
	t.Cleanup(server.Close)
	return server
}

func testRewriteConfig(t *testing.T, endpoints ...string) *Config {
	return &Config{
		RewriteToken:       "test-token",
		RewriteModel:       "gpt-4o",
		RewriteEndpoints:   endpoints,
		RewriteMaxTokens:   4000,
		RewriteTemperature: 0.3,
		RewriteTimeout:     10 * time.Second,
		ConfigDir:          t.TempDir(),
	}
}

func TestRewriteChain_FallsBackAfterForbidden(t *testing.T) {
	var firstHits, secondHits atomic.Int32
	first := newChatServer(t, http.StatusForbidden, "", &firstHits, nil)
	second := newChatServer(t, http.StatusOK, "Hello, world.", &secondHits, nil)

	config := testRewriteConfig(t, first.URL, second.URL)
	chain := NewRewriteChain(nil, NewChatRewriters(config, NewPromptManager(config.ConfigDir, ""))...)

	got, err := chain.Rewrite(context.Background(), "um hello world")
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if got != "Hello, world." {
		t.Errorf("Expected second endpoint's content, got %q", got)
	}
	if firstHits.Load() != 1 || secondHits.Load() != 1 {
		t.Errorf("Expected one call per endpoint, got %d and %d", firstHits.Load(), secondHits.Load())
	}
}

func TestRewriteChain_StopsAtFirstSuccess(t *testing.T) {
	var secondHits atomic.Int32
	first := newChatServer(t, http.StatusOK, "cleaned", nil, nil)
	second := newChatServer(t, http.StatusOK, "other", &secondHits, nil)

	config := testRewriteConfig(t, first.URL, second.URL)
	chain := NewRewriteChain(nil, NewChatRewriters(config, NewPromptManager(config.ConfigDir, ""))...)

	got, err := chain.Rewrite(context.Background(), "text")
	if err != nil {
		t.Fatal(err)
	}
	if got != "cleaned" {
		t.Errorf("Expected first endpoint's content, got %q", got)
	}
	if secondHits.Load() != 0 {
		t.Errorf("Expected second endpoint not to be called")
	}
}

func TestRewriteChain_AllFail(t *testing.T) {
	var hits atomic.Int32
	first := newChatServer(t, http.StatusInternalServerError, "", &hits, nil)
	second := newChatServer(t, http.StatusForbidden, "", &hits, nil)
	third := newChatServer(t, http.StatusOK, "   ", &hits, nil) // blank completion

	config := testRewriteConfig(t, first.URL, second.URL, third.URL)
	chain := NewRewriteChain(nil, NewChatRewriters(config, NewPromptManager(config.ConfigDir, ""))...)

	got, err := chain.Rewrite(context.Background(), "text")
	if !errors.Is(err, ErrNoRewrite) {
		t.Fatalf("Expected ErrNoRewrite, got %v", err)
	}
	if got != "" {
		t.Errorf("Expected no text, got %q", got)
	}
	if hits.Load() != 3 {
		t.Errorf("Expected each endpoint to be tried once, got %d calls", hits.Load())
	}
}

func TestRewriteChain_Empty(t *testing.T) {
	_, err := NewRewriteChain(nil).Rewrite(context.Background(), "text")
	if !errors.Is(err, ErrNoRewrite) {
		t.Errorf("Expected ErrNoRewrite, got %v", err)
	}
}

func TestChatRewriter_Request(t *testing.T) {
	var got chatRequest
	var auth string
	server := newChatServer(t, http.StatusOK, "done", nil, func(r *http.Request, req chatRequest) {
		auth = r.Header.Get("Authorization")
		got = req
	})

	config := testRewriteConfig(t, server.URL)
	rewriters := NewChatRewriters(config, NewPromptManager(config.ConfigDir, ""))
	if len(rewriters) != 1 {
		t.Fatalf("Expected one rewriter, got %d", len(rewriters))
	}

	if _, err := rewriters[0].Rewrite(context.Background(), "raw words"); err != nil {
		t.Fatal(err)
	}

	if auth != "Bearer test-token" {
		t.Errorf("Expected bearer token passthrough, got %q", auth)
	}
	if got.Model != "gpt-4o" || got.MaxTokens != 4000 || got.Temperature != 0.3 {
		t.Errorf("Unexpected parameters: %+v", got)
	}
	if len(got.Messages) != 2 {
		t.Fatalf("Expected system and user messages, got %d", len(got.Messages))
	}
	if got.Messages[0].Role != "system" || !strings.Contains(got.Messages[0].Content, "professional transcript editor") {
		t.Errorf("Unexpected system message %+v", got.Messages[0])
	}
	if got.Messages[1].Role != "user" || got.Messages[1].Content != "Please clean up this podcast transcript:\n\nraw words" {
		t.Errorf("Unexpected user message %+v", got.Messages[1])
	}
}

func TestChatRewriter_EndpointError(t *testing.T) {
	server := newChatServer(t, http.StatusForbidden, "", nil, nil)

	config := testRewriteConfig(t, server.URL)
	_, err := NewChatRewriters(config, NewPromptManager(config.ConfigDir, ""))[0].Rewrite(context.Background(), "text")

	var endpointErr *EndpointError
	if !errors.As(err, &endpointErr) {
		t.Fatalf("Expected *EndpointError, got %T: %v", err, err)
	}
	if endpointErr.StatusCode != http.StatusForbidden || !endpointErr.Forbidden() {
		t.Errorf("Expected status 403, got %d", endpointErr.StatusCode)
	}
	if endpointErr.Endpoint != server.URL {
		t.Errorf("Expected endpoint %s, got %s", server.URL, endpointErr.Endpoint)
	}
	if !errors.Is(err, ErrRewrite) {
		t.Errorf("Expected ErrRewrite")
	}
}

func TestChatRewriter_CustomPrompt(t *testing.T) {
	var system string
	server := newChatServer(t, http.StatusOK, "done", nil, func(r *http.Request, req chatRequest) {
		system = req.Messages[0].Content
	})

	config := testRewriteConfig(t, server.URL)
	prompts := NewPromptManager(config.ConfigDir, "Fix punctuation only, keep every word.")
	if _, err := NewChatRewriters(config, prompts)[0].Rewrite(context.Background(), "text"); err != nil {
		t.Fatal(err)
	}
	if system != "Fix punctuation only, keep every word." {
		t.Errorf("Expected custom system prompt, got %q", system)
	}
}

func TestNewChatRewritersSkipsBlankEndpoints(t *testing.T) {
	config := testRewriteConfig(t, "https://a.example", "  ", "https://b.example")
	rewriters := NewChatRewriters(config, NewPromptManager(config.ConfigDir, ""))

	if len(rewriters) != 2 {
		t.Fatalf("Expected 2 rewriters, got %d", len(rewriters))
	}
	if rewriters[1].(*ChatRewriter).Endpoint() != "https://b.example" {
		t.Errorf("Expected endpoints to keep their order")
	}
}
