// Package transcribe converts uploaded call audio into plain text through a
// pluggable backend.
package transcribe

import (
	"context"
	"errors"
)

// ErrNotConfigured is returned by backend constructors when credentials or
// binaries are missing.
var ErrNotConfigured = errors.New("transcriber not configured")

// Transcriber is a pluggable speech-to-text backend. The filename is a hint
// used only to pick a container format.
type Transcriber interface {
	Transcribe(ctx context.Context, audio []byte, filename string) (string, error)
}

// TranscriptionError carries the upstream failure message for display.
type TranscriptionError struct {
	Err error
}

func (e *TranscriptionError) Error() string { return "transcription failed: " + e.Err.Error() }
func (e *TranscriptionError) Unwrap() error { return e.Err }
