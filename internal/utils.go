package internal

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/glamour"
	"github.com/muesli/termenv"
	"golang.org/x/term"
)

// Output is one key/value pair handed to the calling workflow
type Output struct {
	Key   string
	Value string
}

// WriteOutputs prints outputs as key=value lines to w and appends them to
// the file named by $GITHUB_OUTPUT when it is set
func WriteOutputs(w io.Writer, outputs ...Output) error {
	var buf strings.Builder
	for _, o := range outputs {
		// values are single-line in the key=value format
		value := strings.ReplaceAll(o.Value, "\n", " ")
		fmt.Fprintf(&buf, "%s=%s\n", o.Key, value)
	}

	if _, err := io.WriteString(w, buf.String()); err != nil {
		return fmt.Errorf("writing outputs: %w", err)
	}

	outputFile := os.Getenv("GITHUB_OUTPUT")
	if outputFile == "" {
		return nil
	}
	f, err := os.OpenFile(outputFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return fmt.Errorf("opening GITHUB_OUTPUT: %w", err)
	}
	defer f.Close()
	if _, err := f.WriteString(buf.String()); err != nil {
		return fmt.Errorf("writing GITHUB_OUTPUT: %w", err)
	}
	return nil
}

// NewProcessTempDir creates the directory holding this process's runs below
// base. Other processes sharing base keep their own directories.
func NewProcessTempDir(base string) (string, error) {
	if err := EnsureDirs(base); err != nil {
		return "", fmt.Errorf("creating temp directory: %w", err)
	}
	dir, err := os.MkdirTemp(base, "proc-*")
	if err != nil {
		return "", fmt.Errorf("creating process temp directory: %w", err)
	}
	return dir, nil
}

// CleanupTempDir removes tempDir and the run directories inside it
func CleanupTempDir(tempDir string) error {
	if _, err := os.Stat(tempDir); os.IsNotExist(err) {
		return nil
	}

	entries, err := os.ReadDir(tempDir)
	if err != nil {
		return fmt.Errorf("reading temp directory: %w", err)
	}

	for _, entry := range entries {
		path := filepath.Join(tempDir, entry.Name())
		if err := os.RemoveAll(path); err != nil {
			fmt.Fprintf(os.Stderr, "Warning: failed to remove temporary path %s: %v\n", path, err)
		}
	}

	// It's okay if we can't remove the directory itself
	if err := os.Remove(tempDir); err != nil {
		fmt.Fprintf(os.Stderr, "Note: could not remove temp directory %s: %v\n", tempDir, err)
	}

	return nil
}

// getTerminalWidth gets terminal width with fallback
func getTerminalWidth() int {
	width, _, err := term.GetSize(int(os.Stdout.Fd()))
	if err != nil {
		return 80
	}

	if width > 10 {
		return width - 4
	}

	return width
}

// RenderMarkdown renders markdown content with glamour
func RenderMarkdown(content string) (string, error) {
	width := getTerminalWidth()
	r, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(width),
		glamour.WithColorProfile(termenv.EnvColorProfile()),
	)
	if err != nil {
		return "", fmt.Errorf("creating terminal renderer: %w", err)
	}

	renderedContent, err := r.Render(content)
	if err != nil {
		return "", fmt.Errorf("rendering markdown: %w", err)
	}

	return renderedContent, nil
}

// FileExists checks if a file exists
func FileExists(filename string) bool {
	_, err := os.Stat(filename)
	return !os.IsNotExist(err)
}

// EnsureDirs creates directories if needed
func EnsureDirs(dirs ...string) error {
	for _, dir := range dirs {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return err
		}
	}
	return nil
}

// PreferCleaned returns the cleaned sibling of path when it exists
func PreferCleaned(path, suffix string) string {
	if cleaned := CleanedPath(path, suffix); FileExists(cleaned) {
		return cleaned
	}
	return path
}

// ResolveTranscript finds a transcript by path, file name or slug inside dir
func ResolveTranscript(dir, arg string) (string, error) {
	candidates := []string{
		arg,
		filepath.Join(dir, arg),
		filepath.Join(dir, Slug(arg)+".md"),
	}
	for _, c := range candidates {
		if info, err := os.Stat(c); err == nil && !info.IsDir() {
			return c, nil
		}
	}
	return "", fmt.Errorf("no transcript found for %q in %s", arg, dir)
}
