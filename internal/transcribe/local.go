package transcribe

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
)

// LocalTranscriber shells out to a whisper.cpp style CLI. Deployment variant
// for sites that cannot send audio off-box; analysis stays hosted.
type LocalTranscriber struct {
	bin string
}

func NewLocalTranscriber(bin string) (*LocalTranscriber, error) {
	if strings.TrimSpace(bin) == "" {
		return nil, ErrNotConfigured
	}
	if _, err := exec.LookPath(bin); err != nil {
		return nil, fmt.Errorf("whisper binary %q: %w", bin, ErrNotConfigured)
	}
	return &LocalTranscriber{bin: bin}, nil
}

func (t *LocalTranscriber) Transcribe(ctx context.Context, audio []byte, filename string) (string, error) {
	tmp, err := os.CreateTemp("", "call-*"+extOrDefault(filename))
	if err != nil {
		return "", &TranscriptionError{Err: err}
	}
	defer os.Remove(tmp.Name())
	if _, err := tmp.Write(audio); err != nil {
		tmp.Close()
		return "", &TranscriptionError{Err: err}
	}
	if err := tmp.Close(); err != nil {
		return "", &TranscriptionError{Err: err}
	}

	cmd := exec.CommandContext(ctx, t.bin, "-nt", "-f", tmp.Name())
	out, err := cmd.Output()
	if err != nil {
		if ee, ok := err.(*exec.ExitError); ok && len(ee.Stderr) > 0 {
			return "", &TranscriptionError{Err: fmt.Errorf("%s: %s", t.bin, strings.TrimSpace(string(ee.Stderr)))}
		}
		return "", &TranscriptionError{Err: err}
	}
	return strings.TrimSpace(string(out)), nil
}

func extOrDefault(name string) string {
	if ext := filepath.Ext(name); ext != "" {
		return ext
	}
	return ".mp3"
}
