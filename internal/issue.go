package internal

import (
	"strings"
)

// IssueTitlePrefix marks transcription requests opened through the issue form
const IssueTitlePrefix = "[Transcription] "

// noResponse is what GitHub issue forms write for optional fields left blank
const noResponse = "_No response_"

// ParseIssue extracts a request from the body of a transcription issue form.
// The form has "### Title", "### Audio URL" and "### Content" sections; any
// other "###" heading ends the current section. A blank title falls back to
// the issue title without its prefix.
func ParseIssue(issueTitle, body string) TranscriptionRequest {
	var req TranscriptionRequest
	var content []string

	section := ""
	for _, line := range strings.Split(body, "\n") {
		line = strings.TrimSpace(line)
		switch {
		case strings.HasPrefix(line, "### Title"):
			section = "title"
			continue
		case strings.HasPrefix(line, "### Audio URL"):
			section = "url"
			continue
		case strings.HasPrefix(line, "### Content"):
			section = "content"
			continue
		case strings.HasPrefix(line, "###"):
			section = ""
			continue
		}

		if line == "" || line == noResponse {
			continue
		}
		switch section {
		case "title":
			req.Title = line
		case "url":
			req.AudioURL = line
		case "content":
			content = append(content, line)
		}
	}
	req.Commentary = strings.Join(content, "\n")

	return req.WithDefaultTitle(IssueTitleFallback(issueTitle))
}

// IssueTitleFallback strips the transcription prefix from an issue title
func IssueTitleFallback(issueTitle string) string {
	return strings.TrimSpace(strings.Replace(issueTitle, IssueTitlePrefix, "", 1))
}
