package internal

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

const (
	// RawFooter closes every freshly assembled transcript
	RawFooter = "*This transcript was automatically generated using OpenAI Whisper.*"

	transcriptHeading = "## Transcript"
	footerSeparator   = "---"
	fallbackSlug      = "transcript"
)

// CleanedFooter closes a rewritten transcript, naming the rewriting engine
func CleanedFooter(engine string) string {
	return fmt.Sprintf("*This transcript was automatically generated using OpenAI Whisper and post-processed with %s for improved readability.*", engine)
}

// TranscriptDocument is an assembled transcript ready to persist
type TranscriptDocument struct {
	Title      string
	Commentary string
	RawText    string
	Footer     string
}

// Assemble builds the document for a request and its raw transcript
func Assemble(req TranscriptionRequest, raw string) TranscriptDocument {
	return TranscriptDocument{
		Title:      strings.TrimSpace(req.Title),
		Commentary: strings.TrimSpace(req.Commentary),
		RawText:    strings.TrimSpace(raw),
		Footer:     RawFooter,
	}
}

// Filename returns the slug-based file name of the document
func (d TranscriptDocument) Filename() string {
	return Slug(d.Title) + ".md"
}

// Markdown renders the canonical layout
func (d TranscriptDocument) Markdown() string {
	var b strings.Builder
	fmt.Fprintf(&b, "# %s\n\n", d.Title)
	b.WriteString("## User Commentary\n\n")
	fmt.Fprintf(&b, "%s\n\n", d.Commentary)
	fmt.Fprintf(&b, "%s\n\n", transcriptHeading)
	fmt.Fprintf(&b, "%s\n\n", d.RawText)
	fmt.Fprintf(&b, "%s\n\n", footerSeparator)
	fmt.Fprintf(&b, "%s\n", d.Footer)
	return b.String()
}

// CleanedDocument keeps the header of a persisted document verbatim and
// replaces its transcript body
type CleanedDocument struct {
	Header      string
	CleanedText string
	Footer      string
	Newline     string // line ending of the source document, "\n" when empty
}

// Markdown renders the cleaned document
func (d CleanedDocument) Markdown() string {
	nl := d.Newline
	if nl == "" {
		nl = "\n"
	}
	blank := nl + nl
	return d.Header + blank + d.CleanedText + blank + footerSeparator + blank + d.Footer + nl
}

// ParsedDocument is a persisted transcript split at its transcript heading
type ParsedDocument struct {
	Header  string // source bytes through the "## Transcript" line, without its line ending
	Body    string // transcript text without the footer
	Newline string // "\r\n" for CRLF documents, "\n" otherwise
}

// ParseDocument splits persisted markdown into its header and transcript body.
// The header is kept byte for byte, line endings included.
func ParseDocument(markdown string) (ParsedDocument, error) {
	newline := "\n"
	if strings.Contains(markdown, "\r\n") {
		newline = "\r\n"
	}

	lines := strings.SplitAfter(markdown, "\n")
	headerEnd, start := -1, 0
	offset := 0
	for i, line := range lines {
		if strings.TrimSpace(line) == transcriptHeading {
			headerEnd = offset + len(strings.TrimRight(line, "\r\n"))
			start = i + 1
			break
		}
		offset += len(line)
	}
	if headerEnd == -1 {
		return ParsedDocument{}, fmt.Errorf("%w: no %q section", ErrMalformedDocument, transcriptHeading)
	}

	body := lines[start:]
	for i := len(body) - 1; i >= 0; i-- {
		if strings.TrimSpace(body[i]) == footerSeparator {
			body = body[:i]
			break
		}
	}

	return ParsedDocument{
		Header:  markdown[:headerEnd],
		Body:    strings.TrimSpace(strings.Join(body, "")),
		Newline: newline,
	}, nil
}

// Cleaned returns the sibling document holding text in place of the body
func (p ParsedDocument) Cleaned(text, footer string) CleanedDocument {
	return CleanedDocument{
		Header:      p.Header,
		CleanedText: strings.TrimSpace(text),
		Footer:      footer,
		Newline:     p.Newline,
	}
}

// SaveDocument writes the document to <dir>/<slug>.md and returns its path
func SaveDocument(dir string, doc TranscriptDocument) (string, error) {
	if err := EnsureDirs(dir); err != nil {
		return "", fmt.Errorf("%w: creating transcripts directory: %v", ErrPersistence, err)
	}

	path := filepath.Join(dir, doc.Filename())
	if err := os.WriteFile(path, []byte(doc.Markdown()), 0644); err != nil {
		return "", fmt.Errorf("%w: saving transcript: %v", ErrPersistence, err)
	}
	return path, nil
}

// LoadDocument reads and parses a persisted transcript
func LoadDocument(path string) (ParsedDocument, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return ParsedDocument{}, fmt.Errorf("%w: reading transcript: %v", ErrPersistence, err)
	}
	return ParseDocument(string(data))
}

// SaveCleanedDocument writes the cleaned sibling to path
func SaveCleanedDocument(path string, doc CleanedDocument) error {
	if err := os.WriteFile(path, []byte(doc.Markdown()), 0644); err != nil {
		return fmt.Errorf("%w: saving cleaned transcript: %v", ErrPersistence, err)
	}
	return nil
}

// CleanedPath inserts suffix between the file stem and its extension
func CleanedPath(path, suffix string) string {
	if suffix == "" {
		suffix = "_cleaned"
	}
	ext := filepath.Ext(path)
	return strings.TrimSuffix(path, ext) + suffix + ext
}

// Slug derives a filesystem-safe name from a title.
// The result only holds [a-z0-9] and single hyphens and is never empty.
func Slug(title string) string {
	folded, _, err := transform.String(
		transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC),
		title,
	)
	if err != nil {
		folded = title
	}

	var b strings.Builder
	pendingHyphen := false
	for _, r := range strings.ToLower(folded) {
		switch {
		case (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9'):
			if pendingHyphen && b.Len() > 0 {
				b.WriteByte('-')
			}
			pendingHyphen = false
			b.WriteRune(r)
		case r == '-' || unicode.IsSpace(r):
			pendingHyphen = true
		}
	}

	if b.Len() == 0 {
		return fallbackSlug
	}
	return b.String()
}
