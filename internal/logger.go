package internal

import (
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/mattn/go-isatty"
	"github.com/sirupsen/logrus"
)

// NewLogger builds the process logger.
// Text output on a terminal, JSON otherwise or when log_format is "json".
func NewLogger(config *Config, out io.Writer) *logrus.Logger {
	base := logrus.New()
	base.SetOutput(out)

	if useJSONLogs(config.LogFormat, out) {
		base.SetFormatter(&logrus.JSONFormatter{
			TimestampFormat: time.RFC3339Nano,
		})
	} else {
		base.SetFormatter(&logrus.TextFormatter{
			FullTimestamp:   true,
			TimestampFormat: time.RFC3339,
		})
	}

	base.SetLevel(parseLevel(config.LogLevel))
	if config.Verbose {
		base.SetLevel(logrus.DebugLevel)
	}
	if config.Quiet {
		base.SetLevel(logrus.WarnLevel)
	}

	return base
}

// NewMCPLogger returns a logger that never writes to stdout.
// When MCP logging is enabled it appends to mcp.log in the cache directory.
func NewMCPLogger(config *Config) *logrus.Logger {
	base := logrus.New()
	base.SetOutput(io.Discard)
	base.SetFormatter(&logrus.JSONFormatter{TimestampFormat: time.RFC3339Nano})
	base.SetLevel(parseLevel(config.LogLevel))

	if !config.MCPLogEnabled {
		return base
	}

	if err := os.MkdirAll(config.CacheDir, 0755); err != nil {
		return base
	}

	logPath := filepath.Join(config.CacheDir, "mcp.log")
	logFile, err := os.OpenFile(logPath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return base
	}

	base.SetOutput(logFile)
	base.SetLevel(logrus.DebugLevel)
	return base
}

// NewRunID returns an identifier attached to every log line of one pipeline run
func NewRunID() string {
	return uuid.New().String()
}

// discardLogger is used where no logger was supplied
func discardLogger() *logrus.Logger {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return l
}

func parseLevel(level string) logrus.Level {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "debug":
		return logrus.DebugLevel
	case "warn", "warning":
		return logrus.WarnLevel
	case "error":
		return logrus.ErrorLevel
	default:
		return logrus.InfoLevel
	}
}

func useJSONLogs(format string, out io.Writer) bool {
	switch strings.ToLower(format) {
	case "json":
		return true
	case "text":
		return false
	}
	f, ok := out.(*os.File)
	if !ok {
		return false
	}
	return !isatty.IsTerminal(f.Fd()) && !isatty.IsCygwinTerminal(f.Fd())
}
