package watch

import (
	"context"
	"os"
	"path/filepath"
	"strings"

	"github.com/fsnotify/fsnotify"
	"github.com/rs/zerolog/log"

	"reception_agent/internal/config"
	"reception_agent/internal/events"
	"reception_agent/internal/extract"
	"reception_agent/internal/metrics"
	"reception_agent/internal/store"
	"reception_agent/internal/transcribe"
)

// Watcher monitors the inbox directory for dropped recordings and runs the
// same transcribe-extract-save workflow the web form drives, one file at a
// time. Optional; the interactive flow does not depend on it.
type Watcher struct {
	cfg         config.Config
	store       *store.Store
	transcriber transcribe.Transcriber
	engine      *extract.Engine
	bus         *events.Bus
}

func New(cfg config.Config, st *store.Store, tr transcribe.Transcriber, eng *extract.Engine, bus *events.Bus) *Watcher {
	return &Watcher{cfg: cfg, store: st, transcriber: tr, engine: eng, bus: bus}
}

func (w *Watcher) Start(ctx context.Context) error {
	if !w.cfg.EnableWatcher {
		log.Info().Msg("inbox watcher disabled")
		return nil
	}
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	go func() {
		defer watcher.Close()
		for {
			select {
			case <-ctx.Done():
				return
			case evt := <-watcher.Events:
				if evt.Op&(fsnotify.Create|fsnotify.Rename) != 0 && IsAudio(evt.Name) {
					w.process(ctx, evt.Name)
				}
			case err := <-watcher.Errors:
				log.Error().Err(err).Msg("inbox watcher error")
			}
		}
	}()
	return watcher.Add(w.cfg.InboxDir)
}

func (w *Watcher) process(ctx context.Context, path string) {
	audio, err := os.ReadFile(path)
	if err != nil {
		log.Error().Err(err).Str("file", path).Msg("inbox read failed")
		return
	}
	filename := filepath.Base(path)

	transcript, err := w.transcriber.Transcribe(ctx, audio, filename)
	if err != nil {
		metrics.IncTranscriptionFailed()
		log.Error().Err(err).Str("file", filename).Msg("inbox transcription failed")
		return
	}
	metrics.IncTranscribed()

	analysis, err := w.engine.Extract(ctx, transcript)
	if err != nil {
		metrics.IncGenerationFailed()
		log.Error().Err(err).Str("file", filename).Msg("inbox extraction failed")
		return
	}
	metrics.IncExtracted()
	w.bus.Publish(events.Event{Kind: events.KindAnalyzed, Filename: filename, Priority: analysis.Priority})
	if analysis.Degraded {
		metrics.IncParseFallback()
		w.bus.Publish(events.Event{Kind: events.KindDegraded, Filename: filename})
	}

	summary := analysis.Summary
	if summary == "" {
		// unattended path has no operator to fill the form
		summary = transcriptPrefix(transcript)
	}
	call, err := w.store.Insert(ctx, store.Call{
		CallerName: analysis.CallerName,
		Phone:      analysis.Phone,
		Department: analysis.Department,
		Priority:   analysis.Priority,
		Summary:    summary,
		Transcript: transcript,
		Response:   analysis.Response,
	})
	if err != nil {
		metrics.IncSaveFailed()
		log.Error().Err(err).Str("file", filename).Msg("inbox save failed")
		return
	}
	metrics.IncSaved()
	w.bus.Publish(events.Event{Kind: events.KindSaved, CallID: call.ID, Filename: filename, Priority: call.Priority})
	log.Info().Int64("call_id", call.ID).Str("file", filename).Msg("inbox call saved")
}

// IsAudio filters inbox events to supported recording extensions.
func IsAudio(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".mp3", ".wav", ".m4a", ".ogg":
		return true
	default:
		return false
	}
}

func transcriptPrefix(transcript string) string {
	runes := []rune(transcript)
	if len(runes) > 500 {
		return string(runes[:500])
	}
	return transcript
}
