package internal

import (
	"context"
	"fmt"
	"iter"
	"os"
	"path/filepath"
	"strings"

	"github.com/sirupsen/logrus"
)

// SpeechTranscriber turns a downloaded audio asset into raw transcript text
type SpeechTranscriber struct {
	audio  *Audio
	stt    SpeechToText
	logger logrus.FieldLogger
}

// NewSpeechTranscriber creates a transcriber cutting chunks with audio and
// recognizing them with stt
func NewSpeechTranscriber(audio *Audio, stt SpeechToText, logger logrus.FieldLogger) *SpeechTranscriber {
	if logger == nil {
		logger = discardLogger()
	}
	return &SpeechTranscriber{
		audio:  audio,
		stt:    stt,
		logger: logger,
	}
}

// Segments yields one transcript segment per planned window, in order.
// Chunk files are written next to the asset and removed once recognized.
// Iteration stops at the first error.
func (t *SpeechTranscriber) Segments(ctx context.Context, asset *AudioAsset, bar ProgressBar) iter.Seq2[TranscriptSegment, error] {
	return func(yield func(TranscriptSegment, error) bool) {
		duration, err := t.audio.Duration(ctx, asset.LocalPath)
		if err != nil {
			yield(TranscriptSegment{}, fmt.Errorf("getting audio duration: %w", err))
			return
		}

		windows, err := t.audio.Windows(duration)
		if err != nil {
			yield(TranscriptSegment{}, fmt.Errorf("planning chunks: %w", err))
			return
		}

		if bar != nil {
			bar.ChangeMax(len(windows))
		}
		t.logger.WithFields(logrus.Fields{
			"duration": duration,
			"chunks":   len(windows),
		}).Info("transcribing audio")

		dir := filepath.Dir(asset.LocalPath)
		for i, w := range windows {
			if err := ctx.Err(); err != nil {
				yield(TranscriptSegment{}, err)
				return
			}

			text, err := t.recognize(ctx, asset.LocalPath, dir, i, w)
			if err != nil {
				yield(TranscriptSegment{}, fmt.Errorf("transcribing chunk %d: %w", i+1, err))
				return
			}

			if bar != nil {
				bar.Add(1)
			}
			t.logger.WithFields(logrus.Fields{
				"chunk": i + 1,
				"start": w.Start,
				"end":   w.End,
			}).Debug("chunk transcribed")

			seg := TranscriptSegment{Index: i, Start: w.Start, End: w.End, Text: text}
			if !yield(seg, nil) {
				return
			}
		}
	}
}

func (t *SpeechTranscriber) recognize(ctx context.Context, audioFile, dir string, i int, w Window) (string, error) {
	chunk := filepath.Join(dir, fmt.Sprintf("chunk_%04d.mp3", i))
	if err := t.audio.Chunk(ctx, audioFile, w, chunk); err != nil {
		return "", err
	}
	defer func() {
		if err := os.Remove(chunk); err != nil && !os.IsNotExist(err) {
			t.logger.WithError(err).WithField("path", chunk).Warn("failed to remove chunk")
		}
	}()

	return t.stt.Transcribe(ctx, chunk)
}

// Transcribe folds all segments into one text, joining non-empty segment
// texts with a single space. On failure it returns "" and an error wrapping
// ErrTranscription.
func (t *SpeechTranscriber) Transcribe(ctx context.Context, asset *AudioAsset, bar ProgressBar) (string, error) {
	var sb strings.Builder
	for seg, err := range t.Segments(ctx, asset, bar) {
		if err != nil {
			return "", fmt.Errorf("%w: %w", ErrTranscription, err)
		}
		appendSegment(&sb, seg.Text)
	}
	if bar != nil {
		bar.Finish()
	}
	return sb.String(), nil
}

// JoinSegments folds segment texts in order the same way Transcribe does
func JoinSegments(texts ...string) string {
	var sb strings.Builder
	for _, text := range texts {
		appendSegment(&sb, text)
	}
	return sb.String()
}

func appendSegment(sb *strings.Builder, text string) {
	text = strings.TrimSpace(text)
	if text == "" {
		return
	}
	if sb.Len() > 0 {
		sb.WriteByte(' ')
	}
	sb.WriteString(text)
}
