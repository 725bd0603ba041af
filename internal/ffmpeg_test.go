package internal

import (
	"context"
	"errors"
	"fmt"
	"os"
	"slices"
	"sync"
	"testing"
	"time"
)

// mockCommandRunner answers ffprobe with a fixed duration and makes ffmpeg
// write an empty output file
type mockCommandRunner struct {
	mu       sync.Mutex
	duration string
	probeErr error
	chunkErr error
	calls    [][]string
}

func (m *mockCommandRunner) Run(ctx context.Context, name string, args ...string) ([]byte, error) {
	m.mu.Lock()
	m.calls = append(m.calls, append([]string{name}, args...))
	m.mu.Unlock()

	switch name {
	case "ffprobe":
		if m.probeErr != nil {
			return []byte("probe failed"), m.probeErr
		}
		return []byte(m.duration + "\n"), nil
	case "ffmpeg":
		if m.chunkErr != nil {
			return []byte("ffmpeg failed"), m.chunkErr
		}
		output := args[len(args)-1]
		return nil, os.WriteFile(output, []byte("chunk"), 0644)
	}
	return nil, fmt.Errorf("unexpected command %s", name)
}

func (m *mockCommandRunner) commands(name string) [][]string {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out [][]string
	for _, c := range m.calls {
		if c[0] == name {
			out = append(out, c)
		}
	}
	return out
}

func TestPlanWindows(t *testing.T) {
	s := time.Second
	tests := []struct {
		name     string
		duration time.Duration
		length   time.Duration
		overlap  time.Duration
		want     []Window
	}{
		{"empty", 0, 30 * s, 5 * s, nil},
		{"shorter than one window", 20 * s, 30 * s, 5 * s, []Window{{0, 20 * s}}},
		{"exactly one window", 30 * s, 30 * s, 5 * s, []Window{{0, 30 * s}}},
		{"three windows", 65 * s, 30 * s, 5 * s, []Window{{0, 30 * s}, {25 * s, 55 * s}, {50 * s, 65 * s}}},
		{"ends on boundary", 55 * s, 30 * s, 5 * s, []Window{{0, 30 * s}, {25 * s, 55 * s}}},
		{"no overlap", 60 * s, 30 * s, 0, []Window{{0, 30 * s}, {30 * s, 60 * s}}},
		{"chunking disabled", 3600 * s, 0, 0, []Window{{0, 3600 * s}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := PlanWindows(tt.duration, tt.length, tt.overlap)
			if err != nil {
				t.Fatalf("PlanWindows failed: %v", err)
			}
			if !slices.Equal(got, tt.want) {
				t.Errorf("PlanWindows(%s, %s, %s) = %v, want %v", tt.duration, tt.length, tt.overlap, got, tt.want)
			}
		})
	}
}

func TestPlanWindowsCoverage(t *testing.T) {
	length, overlap := 30*time.Second, 5*time.Second

	for _, duration := range []time.Duration{31 * time.Second, 95 * time.Second, 47*time.Minute + 3*time.Second} {
		windows, err := PlanWindows(duration, length, overlap)
		if err != nil {
			t.Fatal(err)
		}

		if windows[0].Start != 0 {
			t.Errorf("First window starts at %s", windows[0].Start)
		}
		if last := windows[len(windows)-1]; last.End != duration {
			t.Errorf("Last window ends at %s, want %s", last.End, duration)
		}
		for i := 1; i < len(windows); i++ {
			prev, cur := windows[i-1], windows[i]
			if prev.End-cur.Start != overlap {
				t.Errorf("Windows %d and %d overlap by %s, want %s", i-1, i, prev.End-cur.Start, overlap)
			}
			if cur.Length() > length {
				t.Errorf("Window %d is longer than %s", i, length)
			}
		}
	}
}

func TestPlanWindowsInvalid(t *testing.T) {
	cases := [][2]time.Duration{
		{30 * time.Second, 30 * time.Second},
		{30 * time.Second, 40 * time.Second},
		{-time.Second, 0},
		{30 * time.Second, -time.Second},
	}
	for _, c := range cases {
		if _, err := PlanWindows(time.Minute, c[0], c[1]); err == nil {
			t.Errorf("Expected error for length %s overlap %s", c[0], c[1])
		}
	}
}

func TestAudioDuration(t *testing.T) {
	runner := &mockCommandRunner{duration: "65.500000"}
	audio := NewAudio(runner, 30*time.Second, 5*time.Second)

	got, err := audio.Duration(context.Background(), "in.mp3")
	if err != nil {
		t.Fatalf("Duration failed: %v", err)
	}
	if got != 65500*time.Millisecond {
		t.Errorf("Expected 65.5s, got %s", got)
	}
}

func TestAudioDurationErrors(t *testing.T) {
	audio := NewAudio(&mockCommandRunner{probeErr: errors.New("exit 1")}, 30*time.Second, 5*time.Second)
	if _, err := audio.Duration(context.Background(), "in.mp3"); err == nil {
		t.Errorf("Expected ffprobe failure to be reported")
	}

	audio = NewAudio(&mockCommandRunner{duration: "N/A"}, 30*time.Second, 5*time.Second)
	if _, err := audio.Duration(context.Background(), "in.mp3"); err == nil {
		t.Errorf("Expected unparsable duration to be reported")
	}
}

func TestAudioChunkArguments(t *testing.T) {
	runner := &mockCommandRunner{}
	audio := NewAudio(runner, 30*time.Second, 5*time.Second)
	out := t.TempDir() + "/chunk.mp3"

	err := audio.Chunk(context.Background(), "in.mp3", Window{Start: 25 * time.Second, End: 55 * time.Second}, out)
	if err != nil {
		t.Fatalf("Chunk failed: %v", err)
	}

	calls := runner.commands("ffmpeg")
	if len(calls) != 1 {
		t.Fatalf("Expected one ffmpeg call, got %d", len(calls))
	}
	args := calls[0]
	for _, pair := range [][2]string{{"-ss", "25.000"}, {"-t", "30.000"}, {"-ac", "1"}, {"-ar", "16000"}, {"-i", "in.mp3"}} {
		i := slices.Index(args, pair[0])
		if i == -1 || i+1 >= len(args) || args[i+1] != pair[1] {
			t.Errorf("Expected %s %s in %v", pair[0], pair[1], args)
		}
	}
	if args[len(args)-1] != out {
		t.Errorf("Expected output path last, got %v", args)
	}
}
