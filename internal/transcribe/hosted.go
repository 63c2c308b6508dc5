package transcribe

import (
	"bytes"
	"context"
	"path/filepath"
	"strings"

	openai "github.com/sashabaranov/go-openai"
)

// HostedTranscriber uses an OpenAI-compatible audio/transcriptions endpoint.
// Single request/response, plain-text format, temperature 0. No retry, no
// chunking; size limits are whatever the upstream enforces.
type HostedTranscriber struct {
	client *openai.Client
	model  string
}

func NewHostedTranscriber(apiKey, baseURL, model string) (*HostedTranscriber, error) {
	if strings.TrimSpace(apiKey) == "" {
		return nil, ErrNotConfigured
	}
	cc := openai.DefaultConfig(apiKey)
	if baseURL != "" {
		cc.BaseURL = strings.TrimRight(baseURL, "/")
	}
	return &HostedTranscriber{client: openai.NewClientWithConfig(cc), model: model}, nil
}

func (t *HostedTranscriber) Transcribe(ctx context.Context, audio []byte, filename string) (string, error) {
	resp, err := t.client.CreateTranscription(ctx, openai.AudioRequest{
		Model:       t.model,
		FilePath:    normalizeFilename(filename),
		Reader:      bytes.NewReader(audio),
		Format:      openai.AudioResponseFormatText,
		Temperature: 0,
	})
	if err != nil {
		return "", &TranscriptionError{Err: err}
	}
	return strings.TrimSpace(resp.Text), nil
}

// normalizeFilename guarantees an extension so the upstream can pick a
// container format; unnamed uploads default to mp3.
func normalizeFilename(name string) string {
	if name == "" {
		return "upload.mp3"
	}
	if filepath.Ext(name) == "" {
		return name + ".mp3"
	}
	return filepath.Base(name)
}
