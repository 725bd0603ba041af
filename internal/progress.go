package internal

import (
	"fmt"
	"io"
	"os"

	"github.com/mattn/go-isatty"
	"github.com/schollz/progressbar/v3"
)

// UIManager handles all user interface concerns (progress, status output)
type UIManager interface {
	// Progress bars
	NewProgressBar(total int, description string) ProgressBar
	NewBytesBar(total int64, description string) ProgressBar

	// Status messages
	Printf(format string, args ...any)
	Println(args ...any)
}

// ProgressBar abstracts progress bar operations.
// Writes advance the bar by the number of bytes written.
type ProgressBar interface {
	io.Writer
	Set(current int)
	Add(n int)
	ChangeMax(total int)
	Describe(description string)
	Finish()
}

// StandardUIManager handles normal UI operations
type StandardUIManager struct {
	quiet       bool
	interactive bool
	out         io.Writer
}

// NewUIManager creates a UI manager writing status output to stderr.
// Progress bars are only drawn when stderr is a terminal.
func NewUIManager(quiet bool) UIManager {
	fd := os.Stderr.Fd()
	return &StandardUIManager{
		quiet:       quiet,
		interactive: isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd),
		out:         os.Stderr,
	}
}

// NewSilentUI returns a UI manager that prints nothing
func NewSilentUI() UIManager {
	return &StandardUIManager{quiet: true, out: io.Discard}
}

func (ui *StandardUIManager) silent() bool {
	return ui.quiet || !ui.interactive
}

func (ui *StandardUIManager) NewProgressBar(total int, description string) ProgressBar {
	if ui.silent() {
		return &SilentProgressBar{bar: progressbar.DefaultSilent(int64(total))}
	}

	bar := progressbar.NewOptions(total,
		progressbar.OptionSetWriter(ui.out),
		progressbar.OptionSetDescription(description),
		progressbar.OptionSetWidth(30),
		progressbar.OptionShowCount(),
		progressbar.OptionSetPredictTime(false),
		progressbar.OptionClearOnFinish(),
		progressbar.OptionSetTheme(progressbar.Theme{
			Saucer:        "=",
			SaucerHead:    ">",
			SaucerPadding: " ",
			BarStart:      "[",
			BarEnd:        "]",
		}))
	return &VisibleProgressBar{bar: bar}
}

// NewBytesBar creates a bar for streamed transfers. total is -1 when unknown.
func (ui *StandardUIManager) NewBytesBar(total int64, description string) ProgressBar {
	if ui.silent() {
		return &SilentProgressBar{bar: progressbar.DefaultSilent(total)}
	}

	bar := progressbar.NewOptions64(total,
		progressbar.OptionSetWriter(ui.out),
		progressbar.OptionSetDescription(description),
		progressbar.OptionSetWidth(30),
		progressbar.OptionShowBytes(true),
		progressbar.OptionClearOnFinish(),
		progressbar.OptionSpinnerType(14),
	)
	return &VisibleProgressBar{bar: bar}
}

func (ui *StandardUIManager) Printf(format string, args ...any) {
	if !ui.quiet {
		fmt.Fprintf(ui.out, format, args...)
	}
}

func (ui *StandardUIManager) Println(args ...any) {
	if !ui.quiet {
		fmt.Fprintln(ui.out, args...)
	}
}

// VisibleProgressBar wraps the actual progress bar
type VisibleProgressBar struct {
	bar *progressbar.ProgressBar
}

func (v *VisibleProgressBar) Write(p []byte) (int, error) {
	return v.bar.Write(p)
}

func (v *VisibleProgressBar) Set(current int) {
	_ = v.bar.Set(current)
}

func (v *VisibleProgressBar) Add(n int) {
	_ = v.bar.Add(n)
}

func (v *VisibleProgressBar) ChangeMax(total int) {
	v.bar.ChangeMax(total)
}

func (v *VisibleProgressBar) Describe(description string) {
	v.bar.Describe(description)
}

func (v *VisibleProgressBar) Finish() {
	_ = v.bar.Finish()
}

// SilentProgressBar implements a silent progress bar
type SilentProgressBar struct {
	bar *progressbar.ProgressBar
}

func (s *SilentProgressBar) Write(p []byte) (int, error) {
	return len(p), nil
}

func (s *SilentProgressBar) Set(current int) {
	_ = s.bar.Set(current)
}

func (s *SilentProgressBar) Add(n int) {
	_ = s.bar.Add(n)
}

func (s *SilentProgressBar) ChangeMax(total int) {
	s.bar.ChangeMax(total)
}

func (s *SilentProgressBar) Describe(description string) {
	// Do nothing for silent mode
}

func (s *SilentProgressBar) Finish() {
	_ = s.bar.Finish()
}
