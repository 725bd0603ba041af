package internal

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"text/template"
)

// userTemplate wraps the transcript in the user message of a rewrite request
const userTemplate = "Please clean up this podcast transcript:\n\n{{.Transcript}}"

// PromptData for template injection
type PromptData struct {
	Transcript string
}

// PromptManager handles loading the rewrite system instruction and building
// the user message
type PromptManager struct {
	promptFile   string
	promptString string
	configDir    string
	user         *template.Template
}

// NewPromptManager creates a new prompt manager
func NewPromptManager(configDir, promptSetting string) *PromptManager {
	pm := &PromptManager{
		configDir: configDir,
		user:      template.Must(template.New("user").Parse(userTemplate)),
	}

	// Configure prompt based on config setting
	if promptSetting != "" {
		if IsLikelyFilePath(promptSetting) && FileExists(promptSetting) {
			pm.promptFile = promptSetting
		} else {
			pm.promptString = promptSetting
		}
	}

	return pm
}

// SystemPrompt returns the instruction sent as the system message.
// Order: explicit string, explicit file, prompt.txt in the config dir, embedded default.
func (pm *PromptManager) SystemPrompt() (string, error) {
	if pm.promptString != "" {
		return pm.promptString, nil
	}

	promptFile := pm.promptFile
	if promptFile == "" && pm.configDir != "" {
		candidate := filepath.Join(pm.configDir, "prompt.txt")
		if FileExists(candidate) {
			promptFile = candidate
		}
	}

	var content []byte
	var err error
	if promptFile != "" {
		content, err = os.ReadFile(promptFile)
	} else {
		content, err = defaultFS.ReadFile("prompt.txt")
	}
	if err != nil {
		return "", fmt.Errorf("reading prompt: %w", err)
	}

	prompt := strings.TrimSpace(string(content))
	if prompt == "" {
		return "", fmt.Errorf("prompt is empty")
	}
	return prompt, nil
}

// UserMessage builds the user message carrying the transcript
func (pm *PromptManager) UserMessage(transcript string) (string, error) {
	var buf bytes.Buffer
	if err := pm.user.Execute(&buf, PromptData{Transcript: transcript}); err != nil {
		return "", fmt.Errorf("executing prompt template: %w", err)
	}
	return buf.String(), nil
}

// IsLikelyFilePath uses heuristics to determine if a string is likely a file path
func IsLikelyFilePath(s string) bool {
	// Check for common file path indicators
	if strings.Contains(s, "/") || strings.Contains(s, "\\") {
		return true
	}

	// Check for common file extensions
	if strings.Contains(s, ".txt") || strings.Contains(s, ".md") {
		return true
	}

	// If it's longer than 200 characters, it's likely a prompt string
	if len(s) > 200 {
		return false
	}

	// Default to treating as file path if it doesn't contain spaces and newlines
	return !strings.Contains(s, " ") && !strings.Contains(s, "\n")
}
