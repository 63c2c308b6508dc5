package app

import (
	"context"
	"net/http"

	"github.com/rs/zerolog/log"

	"reception_agent/internal/config"
	"reception_agent/internal/events"
	"reception_agent/internal/extract"
	"reception_agent/internal/httpapi"
	"reception_agent/internal/session"
	"reception_agent/internal/store"
	"reception_agent/internal/transcribe"
	"reception_agent/internal/watch"
)

// App wires the collaborators together. All clients are constructed here
// with their credentials; a missing API key fails construction instead of
// surfacing on the first upload.
type App struct {
	cfg      config.Config
	store    *store.Store
	sessions *session.Manager
	bus      *events.Bus
	watcher  *watch.Watcher
	mux      *http.ServeMux
}

func New(cfg config.Config) (*App, error) {
	gen, err := extract.NewChatGenerator(cfg.LLMAPIKey, cfg.LLMBaseURL, cfg.LLMModel)
	if err != nil {
		return nil, err
	}
	engine := extract.NewEngine(gen)

	var transcriber transcribe.Transcriber
	switch cfg.TranscribeBackend {
	case config.BackendLocal:
		transcriber, err = transcribe.NewLocalTranscriber(cfg.WhisperBin)
	default:
		transcriber, err = transcribe.NewHostedTranscriber(cfg.LLMAPIKey, cfg.LLMBaseURL, cfg.TranscribeModel)
	}
	if err != nil {
		return nil, err
	}

	st, err := store.Open(cfg.DBPath)
	if err != nil {
		return nil, err
	}

	if cfg.DefaultPassword() {
		log.Warn().Msg("using default admin password; set APP_ADMIN_PASSWORD for production use")
	}

	bus := events.NewBus()
	sessions := session.NewManager(cfg.AdminPassword)
	mux := http.NewServeMux()
	httpapi.NewRouter(cfg, st, transcriber, engine, sessions, bus).Register(mux)
	watcher := watch.New(cfg, st, transcriber, engine, bus)

	return &App{cfg: cfg, store: st, sessions: sessions, bus: bus, watcher: watcher, mux: mux}, nil
}

// Run starts the event log subscriber, the optional inbox watcher, and the
// HTTP server, and blocks until the context is cancelled.
func (a *App) Run(ctx context.Context) error {
	go a.logEvents(ctx)
	if err := a.watcher.Start(ctx); err != nil {
		return err
	}
	srv := &http.Server{Addr: ":" + a.cfg.HTTPPort, Handler: a.mux}
	go func() {
		<-ctx.Done()
		_ = srv.Shutdown(context.Background())
	}()
	log.Info().Str("port", a.cfg.HTTPPort).Msg("http listening")
	err := srv.ListenAndServe()
	if err == http.ErrServerClosed {
		return nil
	}
	return err
}

func (a *App) logEvents(ctx context.Context) {
	ch := a.bus.Subscribe()
	for {
		select {
		case <-ctx.Done():
			return
		case ev := <-ch:
			log.Info().
				Str("kind", ev.Kind).
				Int64("call_id", ev.CallID).
				Str("file", ev.Filename).
				Str("priority", ev.Priority).
				Str("detail", ev.Detail).
				Msg("workflow event")
		}
	}
}

func (a *App) Store() *store.Store { return a.store }
func (a *App) Mux() *http.ServeMux { return a.mux }
func (a *App) Close() error        { return a.store.Close() }
