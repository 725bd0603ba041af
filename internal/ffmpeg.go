package internal

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Window is one span of audio sent to the speech-to-text capability
type Window struct {
	Start time.Duration
	End   time.Duration
}

// Length returns the duration covered by the window
func (w Window) Length() time.Duration {
	return w.End - w.Start
}

// Audio handles audio file operations using FFmpeg
type Audio struct {
	cmdRunner CommandRunner
	length    time.Duration
	overlap   time.Duration
}

// NewAudio creates a new audio processor cutting windows of length with overlap.
// A zero length disables chunking.
func NewAudio(cmdRunner CommandRunner, length, overlap time.Duration) *Audio {
	if cmdRunner == nil {
		cmdRunner = &DefaultCommandRunner{}
	}
	return &Audio{
		cmdRunner: cmdRunner,
		length:    length,
		overlap:   overlap,
	}
}

// Duration returns the audio file duration
func (a *Audio) Duration(ctx context.Context, audioFile string) (time.Duration, error) {
	output, err := a.cmdRunner.Run(ctx, "ffprobe",
		"-i", audioFile,
		"-show_entries", "format=duration",
		"-v", "quiet",
		"-of", "csv=p=0")

	if err != nil {
		return 0, fmt.Errorf("ffprobe failed: %w\nOutput: %s", err, string(output))
	}

	seconds, err := strconv.ParseFloat(strings.TrimSpace(string(output)), 64)
	if err != nil {
		return 0, fmt.Errorf("parsing duration: %w", err)
	}
	if seconds < 0 {
		return 0, fmt.Errorf("negative duration reported: %v", seconds)
	}

	return time.Duration(seconds * float64(time.Second)), nil
}

// Windows plans the chunk windows for audio of the given duration
func (a *Audio) Windows(duration time.Duration) ([]Window, error) {
	return PlanWindows(duration, a.length, a.overlap)
}

// PlanWindows splits duration into windows of length starting every
// length-overlap. The last window is clipped to duration.
func PlanWindows(duration, length, overlap time.Duration) ([]Window, error) {
	if err := ValidateChunking(length, overlap); err != nil {
		return nil, err
	}
	if duration <= 0 {
		return nil, nil
	}
	if length == 0 || duration <= length {
		return []Window{{Start: 0, End: duration}}, nil
	}

	step := length - overlap
	var windows []Window
	for start := time.Duration(0); ; start += step {
		end := min(start+length, duration)
		windows = append(windows, Window{Start: start, End: end})
		if end == duration {
			break
		}
	}
	return windows, nil
}

// Chunk extracts a window from an audio file as mono 16 kHz mp3
func (a *Audio) Chunk(ctx context.Context, audioFile string, w Window, output string) error {
	cmdOutput, err := a.cmdRunner.Run(ctx, "ffmpeg",
		"-v", "quiet",
		"-ss", formatSeconds(w.Start),
		"-t", formatSeconds(w.Length()),
		"-i", audioFile,
		"-vn",
		"-ac", "1",
		"-ar", "16000",
		"-c:a", "libmp3lame",
		"-b:a", "64k",
		"-y", output)

	if err != nil {
		return fmt.Errorf("ffmpeg failed: %w\nOutput: %s", err, string(cmdOutput))
	}
	return nil
}

func formatSeconds(d time.Duration) string {
	return strconv.FormatFloat(d.Seconds(), 'f', 3, 64)
}
