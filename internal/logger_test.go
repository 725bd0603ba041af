package internal

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/sirupsen/logrus"
)

func TestNewLoggerJSON(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLogger(&Config{LogFormat: "json", LogLevel: "info"}, &buf)

	logger.WithFields(logrus.Fields{
		"run_id": "abc",
		"stage":  StageFetching,
	}).Info("fetching audio")

	var entry map[string]any
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("Expected a JSON log line, got %q: %v", buf.String(), err)
	}
	if entry["msg"] != "fetching audio" || entry["run_id"] != "abc" || entry["stage"] != "fetching" {
		t.Errorf("Unexpected log entry %v", entry)
	}
}

func TestNewLoggerLevels(t *testing.T) {
	tests := []struct {
		name   string
		config Config
		want   logrus.Level
	}{
		{"default", Config{}, logrus.InfoLevel},
		{"configured", Config{LogLevel: "error"}, logrus.ErrorLevel},
		{"verbose", Config{LogLevel: "error", Verbose: true}, logrus.DebugLevel},
		{"quiet", Config{Quiet: true}, logrus.WarnLevel},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			logger := NewLogger(&tt.config, &bytes.Buffer{})
			if logger.GetLevel() != tt.want {
				t.Errorf("Expected level %s, got %s", tt.want, logger.GetLevel())
			}
		})
	}
}

func TestNewLoggerTextForNonTerminal(t *testing.T) {
	var buf bytes.Buffer
	NewLogger(&Config{}, &buf).Info("hello")

	if !strings.Contains(buf.String(), "msg=hello") {
		t.Errorf("Expected text output for a buffer, got %q", buf.String())
	}
}

func TestNewRunIDUnique(t *testing.T) {
	if NewRunID() == NewRunID() {
		t.Errorf("Expected distinct run ids")
	}
}
