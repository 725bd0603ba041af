package internal

import (
	"fmt"
	"net/url"
	"path"
	"slices"
	"strings"
	"time"
)

// Stage identifies a step of the transcription pipeline
type Stage int

const (
	StageStart Stage = iota
	StageValidating
	StageFetching
	StageTranscribing
	StageAssembling
	StageRewriting
	StageCompleted
	StageFailed
)

// String returns a human-readable representation of the stage
func (s Stage) String() string {
	switch s {
	case StageStart:
		return "start"
	case StageValidating:
		return "validating"
	case StageFetching:
		return "fetching"
	case StageTranscribing:
		return "transcribing"
	case StageAssembling:
		return "assembling"
	case StageRewriting:
		return "rewriting"
	case StageCompleted:
		return "completed"
	case StageFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// MarshalText renders the stage by name in structured logs
func (s Stage) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// AudioExtensions lists file extensions treated as audio without a warning
var AudioExtensions = []string{".mp3", ".wav", ".m4a", ".ogg", ".flac", ".aac"}

// TranscriptionRequest is one podcast to transcribe
type TranscriptionRequest struct {
	Title      string `json:"title"`
	AudioURL   string `json:"audio_url"`
	Commentary string `json:"commentary"`
}

// WithDefaultTitle returns a copy using fallback when the title is blank
func (r TranscriptionRequest) WithDefaultTitle(fallback string) TranscriptionRequest {
	if strings.TrimSpace(r.Title) == "" {
		r.Title = strings.TrimSpace(fallback)
	}
	return r
}

// Validate checks the fields required before any network call is made
func (r TranscriptionRequest) Validate() error {
	raw := strings.TrimSpace(r.AudioURL)
	if raw == "" {
		return fmt.Errorf("%w: missing audio URL", ErrValidation)
	}
	u, err := url.Parse(raw)
	if err != nil {
		return fmt.Errorf("%w: parsing audio URL: %v", ErrValidation, err)
	}
	if (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("%w: audio URL must be an http(s) URL: %s", ErrValidation, raw)
	}
	if strings.TrimSpace(r.Title) == "" {
		return fmt.Errorf("%w: missing title", ErrValidation)
	}
	return nil
}

// Warnings returns non-fatal problems worth flagging upstream
func (r TranscriptionRequest) Warnings() []string {
	var warnings []string
	if !IsLikelyAudioURL(r.AudioURL) {
		warnings = append(warnings, fmt.Sprintf("URL may not be an audio file: %s", r.AudioURL))
	}
	return warnings
}

// IsLikelyAudioURL checks the URL path for a known audio extension
func IsLikelyAudioURL(rawURL string) bool {
	p := rawURL
	if u, err := url.Parse(strings.TrimSpace(rawURL)); err == nil {
		p = u.Path
	}
	return slices.Contains(AudioExtensions, strings.ToLower(path.Ext(p)))
}

// AudioAsset is a downloaded audio file owned by a single pipeline run
type AudioAsset struct {
	LocalPath   string
	ByteSize    int64
	ContentType string
}

// TranscriptSegment is the text recognized for one audio chunk
type TranscriptSegment struct {
	Index int
	Start time.Duration
	End   time.Duration
	Text  string
}

// Result is the outcome of a completed transcription run
type Result struct {
	RunID    string
	Path     string
	Title    string
	Warnings []string
}

// CleanResult is the outcome of the rewrite stage
type CleanResult struct {
	Source    string
	Path      string
	Rewritten bool // false when the original text was kept
}
