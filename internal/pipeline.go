package internal

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/sirupsen/logrus"
)

// Pipeline holds the stages of a transcription run and their capabilities
type Pipeline struct {
	config     *Config
	fetcher    Fetcher
	audio      *Audio
	stt        SpeechToText
	rewriter   TextRewriter
	newBackOff func() backoff.BackOff
	ui         UIManager
	logger     logrus.FieldLogger

	mu sync.Mutex // guards lazy construction of stt and rewriter
}

// PipelineOption customizes Pipeline creation
type PipelineOption func(*Pipeline)

// WithSpeechToText sets the speech-to-text capability
func WithSpeechToText(stt SpeechToText) PipelineOption {
	return func(p *Pipeline) {
		p.stt = stt
	}
}

// WithRewriter sets the text rewriting capability used by Clean
func WithRewriter(r TextRewriter) PipelineOption {
	return func(p *Pipeline) {
		p.rewriter = r
	}
}

// WithFetcher sets a custom audio fetcher
func WithFetcher(f Fetcher) PipelineOption {
	return func(p *Pipeline) {
		p.fetcher = f
	}
}

// WithAudio sets a custom audio processor
func WithAudio(audio *Audio) PipelineOption {
	return func(p *Pipeline) {
		p.audio = audio
	}
}

// WithFetchBackOff sets the retry policy for downloads. newBackOff is called
// once per run.
func WithFetchBackOff(newBackOff func() backoff.BackOff) PipelineOption {
	return func(p *Pipeline) {
		p.newBackOff = newBackOff
	}
}

// WithUI sets the UI manager
func WithUI(ui UIManager) PipelineOption {
	return func(p *Pipeline) {
		p.ui = ui
	}
}

// WithLogger sets the logger
func WithLogger(logger logrus.FieldLogger) PipelineOption {
	return func(p *Pipeline) {
		p.logger = logger
	}
}

// NewPipeline creates a pipeline from config. Capabilities not supplied
// through options are built from config on first use. A Pipeline is safe
// for concurrent Run and Clean calls.
func NewPipeline(config *Config, options ...PipelineOption) *Pipeline {
	p := &Pipeline{
		config:     config,
		audio:      NewAudio(&DefaultCommandRunner{}, config.ChunkLength, config.ChunkOverlap),
		newBackOff: FetchBackOff(config.FetchRetries),
		ui:         NewUIManager(config.Quiet),
		logger:     discardLogger(),
	}

	for _, option := range options {
		option(p)
	}

	if p.fetcher == nil {
		p.fetcher = NewAudioFetcher(config.FetchTimeout, p.logger)
	}

	return p
}

// FetchBackOff returns the download retry policy for the given retry count.
// Zero retries means a single attempt.
func FetchBackOff(retries int) func() backoff.BackOff {
	return func() backoff.BackOff {
		if retries <= 0 {
			return &backoff.StopBackOff{}
		}
		b := backoff.NewExponentialBackOff()
		b.InitialInterval = time.Second
		b.MaxElapsedTime = 0
		return backoff.WithMaxRetries(b, uint64(retries))
	}
}

// Run validates req, downloads and transcribes its audio and persists the
// assembled document. Failures are returned as *StageError.
func (p *Pipeline) Run(ctx context.Context, req TranscriptionRequest) (*Result, error) {
	runID := NewRunID()
	log := p.logger.WithField("run_id", runID)
	log.WithField("stage", StageStart).Debug("pipeline started")

	// Validating
	log.WithField("stage", StageValidating).Debug("validating request")
	if err := req.Validate(); err != nil {
		return nil, p.fail(log, StageValidating, err)
	}
	warnings := req.Warnings()
	for _, w := range warnings {
		log.Warn(w)
	}
	stt, err := p.speechToText()
	if err != nil {
		return nil, p.fail(log, StageValidating, err)
	}

	// Fetching
	dir, err := p.runDir()
	if err != nil {
		return nil, p.fail(log, StageFetching, err)
	}
	defer func() {
		if err := os.RemoveAll(dir); err != nil {
			log.WithError(err).WithField("path", dir).Warn("failed to remove run directory")
		}
	}()

	log.WithField("stage", StageFetching).Info("fetching audio")
	asset, err := p.fetch(ctx, log, req.AudioURL, dir)
	if err != nil {
		return nil, p.fail(log, StageFetching, err)
	}

	// Transcribing
	log.WithField("stage", StageTranscribing).Info("transcribing audio")
	transcriber := NewSpeechTranscriber(p.audio, stt, log)
	bar := p.ui.NewProgressBar(1, "Transcribing audio")
	raw, err := transcriber.Transcribe(ctx, asset, bar)
	if err != nil {
		return nil, p.fail(log, StageTranscribing, err)
	}
	if strings.TrimSpace(raw) == "" {
		return nil, p.fail(log, StageTranscribing, ErrEmptyTranscript)
	}

	// Assembling
	log.WithField("stage", StageAssembling).Debug("assembling document")
	doc := Assemble(req, raw)
	path, err := SaveDocument(p.config.TranscriptsDir, doc)
	if err != nil {
		return nil, p.fail(log, StageAssembling, err)
	}

	log.WithFields(logrus.Fields{
		"stage": StageCompleted,
		"path":  path,
	}).Info("transcript saved")

	return &Result{
		RunID:    runID,
		Path:     path,
		Title:    doc.Title,
		Warnings: warnings,
	}, nil
}

// Clean writes a rewritten sibling of the document at path. When no rewriter
// succeeds the sibling carries the original transcript text. Only reading,
// parsing and writing documents can fail.
func (p *Pipeline) Clean(ctx context.Context, path string) (*CleanResult, error) {
	log := p.logger.WithFields(logrus.Fields{
		"run_id": NewRunID(),
		"source": path,
	})
	log.WithField("stage", StageStart).Debug("clean started")

	doc, err := LoadDocument(path)
	if err != nil {
		return nil, p.fail(log, StageRewriting, err)
	}

	log.WithField("stage", StageRewriting).Info("rewriting transcript")
	text, rewritten := p.rewrite(ctx, log, doc.Body)

	out := CleanedPath(path, p.config.CleanedSuffix)
	footer := CleanedFooter(RewriteEngine(p.config.RewriteEndpoints, p.config.RewriteModel))
	if err := SaveCleanedDocument(out, doc.Cleaned(text, footer)); err != nil {
		return nil, p.fail(log, StageRewriting, err)
	}

	log.WithFields(logrus.Fields{
		"stage":     StageCompleted,
		"path":      out,
		"rewritten": rewritten,
	}).Info("cleaned transcript saved")

	return &CleanResult{
		Source:    path,
		Path:      out,
		Rewritten: rewritten,
	}, nil
}

// rewrite returns the rewritten text, or text itself when rewriting failed
func (p *Pipeline) rewrite(ctx context.Context, log logrus.FieldLogger, text string) (string, bool) {
	if strings.TrimSpace(text) == "" {
		log.Warn("transcript is empty, nothing to rewrite")
		return text, false
	}

	rewriter, err := p.textRewriter()
	if err != nil {
		log.WithError(err).Warn("rewriting unavailable, using original transcript")
		return text, false
	}

	cleaned, err := rewriter.Rewrite(ctx, text)
	if err != nil {
		if !errors.Is(err, ErrNoRewrite) {
			log = log.WithError(err)
		}
		log.Warn("failed to clean transcript, using original")
		return text, false
	}
	return cleaned, true
}

func (p *Pipeline) fetch(ctx context.Context, log logrus.FieldLogger, rawURL, dir string) (*AudioAsset, error) {
	var asset *AudioAsset
	op := func() error {
		bar := p.ui.NewBytesBar(-1, "Downloading audio")
		a, err := p.fetcher.Fetch(ctx, rawURL, dir, bar)
		if err != nil {
			if ctx.Err() != nil {
				return backoff.Permanent(err)
			}
			return err
		}
		asset = a
		return nil
	}
	notify := func(err error, next time.Duration) {
		log.WithError(err).Warnf("download failed, retrying in %s", next)
	}

	err := backoff.RetryNotify(op, backoff.WithContext(p.newBackOff(), ctx), notify)
	if err != nil {
		if !errors.Is(err, ErrFetch) {
			err = fmt.Errorf("%w: %w", ErrFetch, err)
		}
		return nil, err
	}
	return asset, nil
}

// runDir creates the temp directory owned by a single run
func (p *Pipeline) runDir() (string, error) {
	if p.config.TempDir != "" {
		if err := EnsureDirs(p.config.TempDir); err != nil {
			return "", fmt.Errorf("%w: creating temp directory: %v", ErrFetch, err)
		}
	}
	dir, err := os.MkdirTemp(p.config.TempDir, "run-*")
	if err != nil {
		return "", fmt.Errorf("%w: creating run directory: %v", ErrFetch, err)
	}
	return dir, nil
}

func (p *Pipeline) speechToText() (SpeechToText, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.stt != nil {
		return p.stt, nil
	}
	if err := ValidateOpenAIAPIKey(p.config.OpenAIAPIKey); err != nil {
		return nil, err
	}
	opts := []OpenAIOption{WithTranscriptionModel(p.config.STTModel)}
	if p.config.OpenAIBaseURL != "" {
		opts = append(opts, WithBaseURL(p.config.OpenAIBaseURL))
	}
	p.stt = NewOpenAIClient(p.config.OpenAIAPIKey, opts...)
	return p.stt, nil
}

func (p *Pipeline) textRewriter() (TextRewriter, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.rewriter != nil {
		return p.rewriter, nil
	}
	if err := ValidateRewriteToken(p.config.RewriteToken); err != nil {
		return nil, err
	}
	prompts := NewPromptManager(p.config.ConfigDir, p.config.Prompt)
	chain := NewRewriteChain(p.logger, NewChatRewriters(p.config, prompts)...)
	if chain.Len() == 0 {
		return nil, fmt.Errorf("no rewrite endpoints configured")
	}
	p.rewriter = chain
	return p.rewriter, nil
}

func (p *Pipeline) fail(log logrus.FieldLogger, stage Stage, err error) error {
	log.WithFields(logrus.Fields{
		"stage":  StageFailed,
		"failed": stage,
	}).WithError(err).Error("pipeline failed")
	return stageErr(stage, err)
}
