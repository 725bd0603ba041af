package internal

import (
	"errors"
	"fmt"
)

// Error kinds returned by the pipeline stages. Match them with errors.Is.
var (
	// ErrValidation indicates the request is missing required fields
	ErrValidation = errors.New("invalid transcription request")

	// ErrFetch indicates the audio could not be retrieved or stored
	ErrFetch = errors.New("fetching audio failed")

	// ErrTranscription indicates the speech-to-text capability failed
	ErrTranscription = errors.New("transcription failed")

	// ErrEmptyTranscript indicates transcription succeeded but produced no text
	ErrEmptyTranscript = errors.New("transcription produced no text")

	// ErrRewrite indicates a single rewrite endpoint failed
	ErrRewrite = errors.New("rewrite failed")

	// ErrNoRewrite is returned when every rewrite endpoint failed.
	// Callers fall back to the unmodified text.
	ErrNoRewrite = errors.New("no rewrite endpoint succeeded")

	// ErrPersistence indicates a document could not be read or written
	ErrPersistence = errors.New("persisting document failed")

	// ErrMalformedDocument indicates a transcript document lacks its transcript section
	ErrMalformedDocument = errors.New("malformed transcript document")
)

// StageError tags a failure with the pipeline stage it happened in
type StageError struct {
	Stage Stage
	Err   error
}

func (e *StageError) Error() string {
	return fmt.Sprintf("%s: %v", e.Stage, e.Err)
}

func (e *StageError) Unwrap() error {
	return e.Err
}

func stageErr(stage Stage, err error) error {
	if err == nil {
		return nil
	}
	return &StageError{Stage: stage, Err: err}
}

// EndpointError describes a failed call to one rewrite endpoint
type EndpointError struct {
	Endpoint   string
	StatusCode int // 0 when no HTTP response was received
	Err        error
}

func (e *EndpointError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("%s: endpoint %s returned status %d: %v", ErrRewrite, e.Endpoint, e.StatusCode, e.Err)
	}
	return fmt.Sprintf("%s: endpoint %s: %v", ErrRewrite, e.Endpoint, e.Err)
}

func (e *EndpointError) Unwrap() []error {
	return []error{ErrRewrite, e.Err}
}

// Forbidden reports whether the endpoint rejected the credentials
func (e *EndpointError) Forbidden() bool {
	return e.StatusCode == 403
}
