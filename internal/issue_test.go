package internal

import (
	"errors"
	"testing"
)

const issueBody = `### Title

Ep 1: AI Talk

### Audio URL

https://example.com/ep1.mp3

### Content

Great episode.
Worth a listen.

### Anything else?

ignored text
`

func TestParseIssue(t *testing.T) {
	req := ParseIssue("[Transcription] Fallback", issueBody)

	if req.Title != "Ep 1: AI Talk" {
		t.Errorf("Expected title 'Ep 1: AI Talk', got %q", req.Title)
	}
	if req.AudioURL != "https://example.com/ep1.mp3" {
		t.Errorf("Expected audio URL, got %q", req.AudioURL)
	}
	if req.Commentary != "Great episode.\nWorth a listen." {
		t.Errorf("Unexpected commentary %q", req.Commentary)
	}
	if err := req.Validate(); err != nil {
		t.Errorf("Expected valid request, got %v", err)
	}
}

func TestParseIssueTitleFallback(t *testing.T) {
	body := "### Title\n\n_No response_\n\n### Audio URL\n\nhttps://example.com/a.mp3\n"

	req := ParseIssue("[Transcription] My Show", body)

	if req.Title != "My Show" {
		t.Errorf("Expected title 'My Show', got %q", req.Title)
	}
}

func TestParseIssueEmptyTitleSection(t *testing.T) {
	body := "### Audio URL\n\nhttps://example.com/a.mp3\n\n### Content\n\n_No response_\n"

	req := ParseIssue("[Transcription] My Show", body)

	if req.Title != "My Show" {
		t.Errorf("Expected title 'My Show', got %q", req.Title)
	}
	if req.Commentary != "" {
		t.Errorf("Expected empty commentary, got %q", req.Commentary)
	}
}

func TestParseIssueMissingURL(t *testing.T) {
	req := ParseIssue("[Transcription] My Show", "### Title\n\nSomething\n")

	if req.AudioURL != "" {
		t.Errorf("Expected empty audio URL, got %q", req.AudioURL)
	}
	if err := req.Validate(); !errors.Is(err, ErrValidation) {
		t.Errorf("Expected ErrValidation, got %v", err)
	}
}

func TestIssueTitleFallback(t *testing.T) {
	tests := map[string]string{
		"[Transcription] My Show": "My Show",
		"My Show":                 "My Show",
		"  [Transcription] X  ":   "X",
		"":                        "",
	}
	for in, want := range tests {
		if got := IssueTitleFallback(in); got != want {
			t.Errorf("IssueTitleFallback(%q) = %q, want %q", in, got, want)
		}
	}
}
