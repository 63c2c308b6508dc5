// Package extract turns a raw call transcript into a best-effort structured
// record, tolerating a text generator that is only informally constrained to
// emit JSON.
package extract

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

// ErrNotConfigured is returned by generator constructors when credentials
// are missing. Detected at startup, not on the first request.
var ErrNotConfigured = errors.New("llm client not configured: missing API key")

// GenerationError wraps a hard failure of the upstream generation call
// (network, auth, rate limit). Malformed reply text is never a
// GenerationError; it is recovered via the fallback record.
type GenerationError struct {
	Err error
}

func (e *GenerationError) Error() string { return "generation call failed: " + e.Err.Error() }
func (e *GenerationError) Unwrap() error { return e.Err }

// Result is the transient record seeding the editable form. All six fields
// are always present after Extract; missing keys become empty strings.
// Degraded marks the synthetic fallback produced when the reply could not be
// parsed at all.
type Result struct {
	CallerName string `json:"caller_name"`
	Phone      string `json:"phone"`
	Department string `json:"department"`
	Priority   string `json:"priority"`
	Summary    string `json:"summary"`
	Response   string `json:"response"`
	Degraded   bool   `json:"degraded,omitempty"`
}

// Generator performs the upstream text-generation call.
type Generator interface {
	Generate(ctx context.Context, system, user string) (string, error)
}

// Engine drives extraction over an injected Generator.
type Engine struct {
	gen Generator
}

func NewEngine(gen Generator) *Engine {
	return &Engine{gen: gen}
}

const systemPrompt = `You are an AI assistant that extracts structured information from call transcripts for a reception/call-center scenario. Always respond with a valid JSON object only, with no extra text.

The JSON must have these keys:
- caller_name (string or empty)
- phone (string, digits only if possible, or empty)
- department (string like 'Support', 'Sales', 'Billing', etc.)
- priority (one of: Low, Medium, High)
- summary (1-2 sentence summary of the call)
- response (a short suggested response for the receptionist)`

func userPrompt(transcript string) string {
	return fmt.Sprintf("Here is the call transcript:\n\n%s\n\nExtract the fields as JSON.", transcript)
}

// Extract runs the generation call and repairs its reply into a Result.
// The call itself is fail-fast: a transport error returns a GenerationError
// with no retry. Unparseable reply text never errors; it yields the
// synthetic fallback record instead.
func (e *Engine) Extract(ctx context.Context, transcript string) (Result, error) {
	raw, err := e.gen.Generate(ctx, systemPrompt, userPrompt(transcript))
	if err != nil {
		return Result{}, &GenerationError{Err: err}
	}

	cleaned := stripFences(strings.TrimSpace(raw))
	obj, ok := parseObject(cleaned)
	if !ok {
		return fallbackResult(transcript, cleaned), nil
	}

	res := Result{
		CallerName: asString(obj["caller_name"]),
		Phone:      asString(obj["phone"]),
		Department: asString(obj["department"]),
		Priority:   asString(obj["priority"]),
		Summary:    asString(obj["summary"]),
		Response:   asString(obj["response"]),
	}
	res.Priority = NormalizePriority(res.Priority)
	return res, nil
}
