package httpapi

import (
	"embed"
	"encoding/json"
	"errors"
	"fmt"
	"html/template"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/rs/zerolog/log"

	"reception_agent/internal/config"
	"reception_agent/internal/events"
	"reception_agent/internal/extract"
	"reception_agent/internal/metrics"
	"reception_agent/internal/notify"
	"reception_agent/internal/session"
	"reception_agent/internal/store"
	"reception_agent/internal/transcribe"
)

//go:embed templates/*.html
var templateFS embed.FS

var pages = template.Must(template.ParseFS(templateFS, "templates/*.html"))

const sessionCookie = "reception_session"

// Router builds the HTML pages, the JSON API, and /ops endpoints.
type Router struct {
	cfg         config.Config
	store       *store.Store
	transcriber transcribe.Transcriber
	engine      *extract.Engine
	sessions    *session.Manager
	bus         *events.Bus
}

func NewRouter(cfg config.Config, st *store.Store, tr transcribe.Transcriber, eng *extract.Engine, sm *session.Manager, bus *events.Bus) *Router {
	return &Router{cfg: cfg, store: st, transcriber: tr, engine: eng, sessions: sm, bus: bus}
}

func (r *Router) Register(mux *http.ServeMux) {
	mux.HandleFunc("/login", r.login)
	mux.HandleFunc("/logout", r.logout)
	mux.HandleFunc("/", r.requirePage(r.home))
	mux.HandleFunc("/analyze", r.requirePage(r.analyzePage))
	mux.HandleFunc("/calls", r.requirePage(r.callsPage))
	mux.HandleFunc("/calls/save", r.requirePage(r.savePage))
	mux.HandleFunc("/calls/", r.requirePage(r.callDetailPage))
	mux.HandleFunc("/api/analyze", r.requireAPI(r.apiAnalyze))
	mux.HandleFunc("/api/calls", r.requireAPI(r.apiCalls))
	mux.HandleFunc("/api/calls/", r.requireAPI(r.apiCallDetail))
	mux.HandleFunc("/ops/health", r.health)
	mux.HandleFunc("/ops/metrics", r.opsMetrics)
}

// callView decorates a record with its display-only masked phone.
type callView struct {
	store.Call
	PhoneMasked string `json:"phone_masked"`
}

func viewOf(c store.Call) callView {
	return callView{Call: c, PhoneMasked: MaskPhone(c.Phone)}
}

// --- auth ---

func (r *Router) token(req *http.Request) string {
	c, err := req.Cookie(sessionCookie)
	if err != nil {
		return ""
	}
	return c.Value
}

func (r *Router) requirePage(next func(http.ResponseWriter, *http.Request)) http.HandlerFunc {
	return func(w http.ResponseWriter, req *http.Request) {
		if !r.sessions.Authenticated(r.token(req)) {
			http.Redirect(w, req, "/login", http.StatusSeeOther)
			return
		}
		next(w, req)
	}
}

func (r *Router) requireAPI(next func(http.ResponseWriter, *http.Request)) http.HandlerFunc {
	return func(w http.ResponseWriter, req *http.Request) {
		if !r.sessions.Authenticated(r.token(req)) {
			respondError(w, http.StatusUnauthorized, "not logged in")
			return
		}
		next(w, req)
	}
}

func (r *Router) login(w http.ResponseWriter, req *http.Request) {
	if req.Method == http.MethodGet {
		r.render(w, "login.html", map[string]any{"DefaultPassword": r.cfg.DefaultPassword()})
		return
	}
	if req.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	token, ok := r.sessions.Login(req.FormValue("password"))
	if !ok {
		w.WriteHeader(http.StatusUnauthorized)
		r.render(w, "login.html", map[string]any{
			"Error":           "Incorrect password. Please try again.",
			"DefaultPassword": r.cfg.DefaultPassword(),
		})
		return
	}
	http.SetCookie(w, &http.Cookie{Name: sessionCookie, Value: token, Path: "/", HttpOnly: true})
	http.Redirect(w, req, "/", http.StatusSeeOther)
}

func (r *Router) logout(w http.ResponseWriter, req *http.Request) {
	if token := r.token(req); token != "" {
		r.sessions.Logout(token)
	}
	http.SetCookie(w, &http.Cookie{Name: sessionCookie, Value: "", Path: "/", MaxAge: -1})
	http.Redirect(w, req, "/login", http.StatusSeeOther)
}

// --- HTML workflow ---

func (r *Router) home(w http.ResponseWriter, req *http.Request) {
	if req.URL.Path != "/" {
		http.NotFound(w, req)
		return
	}
	data := map[string]any{}
	if p, ok := r.sessions.Pending(r.token(req)); ok {
		data["Pending"] = p
	}
	if saved := req.URL.Query().Get("saved"); saved != "" {
		data["SavedID"] = saved
	}
	r.render(w, "newcall.html", data)
}

func (r *Router) analyzePage(w http.ResponseWriter, req *http.Request) {
	if req.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	pending, err := r.runAnalysis(w, req)
	if err != nil {
		r.render(w, "newcall.html", map[string]any{"Error": err.Error()})
		return
	}
	r.sessions.SetPending(r.token(req), pending)
	http.Redirect(w, req, "/", http.StatusSeeOther)
}

// runAnalysis drives the synchronous transcribe-then-extract workflow for an
// uploaded recording. Neither upstream call is retried.
func (r *Router) runAnalysis(w http.ResponseWriter, req *http.Request) (session.Pending, error) {
	req.Body = http.MaxBytesReader(w, req.Body, r.cfg.MaxUploadBytes)
	file, header, err := req.FormFile("audio")
	if err != nil {
		var mbe *http.MaxBytesError
		if errors.As(err, &mbe) {
			return session.Pending{}, fmt.Errorf("recording exceeds the %d MB upload limit", r.cfg.MaxUploadBytes>>20)
		}
		return session.Pending{}, errors.New("please upload a call recording")
	}
	defer file.Close()
	audio, err := io.ReadAll(file)
	if err != nil {
		return session.Pending{}, err
	}

	transcript, err := r.transcriber.Transcribe(req.Context(), audio, header.Filename)
	if err != nil {
		metrics.IncTranscriptionFailed()
		return session.Pending{}, err
	}
	metrics.IncTranscribed()

	analysis, err := r.engine.Extract(req.Context(), transcript)
	if err != nil {
		metrics.IncGenerationFailed()
		return session.Pending{}, err
	}
	metrics.IncExtracted()
	r.bus.Publish(events.Event{Kind: events.KindAnalyzed, Filename: header.Filename, Priority: analysis.Priority})
	if analysis.Degraded {
		metrics.IncParseFallback()
		r.bus.Publish(events.Event{Kind: events.KindDegraded, Filename: header.Filename, Detail: "model reply was not parseable JSON"})
	}
	return session.Pending{Filename: header.Filename, Transcript: transcript, Analysis: analysis}, nil
}

func (r *Router) savePage(w http.ResponseWriter, req *http.Request) {
	if req.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	token := r.token(req)
	pending, ok := r.sessions.Pending(token)
	if !ok {
		r.render(w, "newcall.html", map[string]any{"Error": "no analyzed call in this session; upload a recording first"})
		return
	}

	save := saveRequest{
		CallerName: strings.TrimSpace(req.FormValue("caller_name")),
		Phone:      strings.TrimSpace(req.FormValue("phone")),
		Department: strings.TrimSpace(req.FormValue("department")),
		Priority:   req.FormValue("priority"),
		Summary:    strings.TrimSpace(req.FormValue("summary")),
		Transcript: pending.Transcript,
		Response:   strings.TrimSpace(req.FormValue("response")),
	}
	// keep operator edits for retry regardless of outcome
	pending.Analysis = extract.Result{
		CallerName: save.CallerName,
		Phone:      save.Phone,
		Department: save.Department,
		Priority:   extract.NormalizePriority(save.Priority),
		Summary:    save.Summary,
		Response:   save.Response,
	}
	r.sessions.SetPending(token, *pending)

	call, err := r.save(req, save)
	if err != nil {
		status := http.StatusInternalServerError
		var verr validationError
		if errors.As(err, &verr) {
			status = http.StatusUnprocessableEntity
		}
		w.WriteHeader(status)
		r.render(w, "newcall.html", map[string]any{"Error": err.Error(), "Pending": pending})
		return
	}
	r.sessions.ClearPending(token)
	http.Redirect(w, req, "/?saved="+strconv.FormatInt(call.ID, 10), http.StatusSeeOther)
}

type validationError struct{ msg string }

func (e validationError) Error() string { return e.msg }

// save coerces the priority onto the closed set, validates locally, inserts,
// and fans out notifications. A validation failure never reaches the store.
func (r *Router) save(req *http.Request, save saveRequest) (store.Call, error) {
	save.Priority = extract.NormalizePriority(save.Priority)
	if err := validateSave(save); err != nil {
		return store.Call{}, validationError{msg: validationMessage(err)}
	}
	call, err := r.store.Insert(req.Context(), store.Call{
		CallerName: save.CallerName,
		Phone:      save.Phone,
		Department: save.Department,
		Priority:   save.Priority,
		Summary:    save.Summary,
		Transcript: save.Transcript,
		Response:   save.Response,
	})
	if err != nil {
		metrics.IncSaveFailed()
		return store.Call{}, err
	}
	metrics.IncSaved()
	r.bus.Publish(events.Event{Kind: events.KindSaved, CallID: call.ID, Priority: call.Priority})
	if err := notify.HighPriorityCall(r.cfg, call); err != nil {
		log.Warn().Err(err).Int64("call_id", call.ID).Msg("groupme notify failed")
	}
	return call, nil
}

func (r *Router) callsPage(w http.ResponseWriter, req *http.Request) {
	calls, err := r.listCalls(req)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	views := make([]callView, 0, len(calls))
	for _, c := range calls {
		views = append(views, viewOf(c))
	}
	r.render(w, "calls.html", map[string]any{"Calls": views, "Query": req.URL.Query().Get("q")})
}

func (r *Router) callDetailPage(w http.ResponseWriter, req *http.Request) {
	id, err := strconv.ParseInt(strings.TrimPrefix(req.URL.Path, "/calls/"), 10, 64)
	if err != nil {
		http.NotFound(w, req)
		return
	}
	call, err := r.store.GetCall(req.Context(), id)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	if call == nil {
		http.NotFound(w, req)
		return
	}
	r.render(w, "call.html", viewOf(*call))
}

// --- JSON API ---

func (r *Router) apiAnalyze(w http.ResponseWriter, req *http.Request) {
	if req.Method != http.MethodPost {
		respondError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	pending, err := r.runAnalysis(w, req)
	if err != nil {
		status := http.StatusBadGateway
		var te *transcribe.TranscriptionError
		var ge *extract.GenerationError
		switch {
		case errors.As(err, &te), errors.As(err, &ge):
		default:
			status = http.StatusBadRequest
		}
		respondError(w, status, err.Error())
		return
	}
	r.sessions.SetPending(r.token(req), pending)
	respondJSON(w, map[string]any{"transcript": pending.Transcript, "analysis": pending.Analysis})
}

func (r *Router) apiCalls(w http.ResponseWriter, req *http.Request) {
	switch req.Method {
	case http.MethodGet:
		calls, err := r.listCalls(req)
		if err != nil {
			respondError(w, http.StatusInternalServerError, err.Error())
			return
		}
		views := make([]callView, 0, len(calls))
		for _, c := range calls {
			views = append(views, viewOf(c))
		}
		respondJSON(w, views)
	case http.MethodPost:
		var save saveRequest
		if err := json.NewDecoder(req.Body).Decode(&save); err != nil {
			respondError(w, http.StatusBadRequest, err.Error())
			return
		}
		call, err := r.save(req, save)
		if err != nil {
			var verr validationError
			if errors.As(err, &verr) {
				respondError(w, http.StatusUnprocessableEntity, err.Error())
				return
			}
			respondError(w, http.StatusServiceUnavailable, err.Error())
			return
		}
		r.sessions.ClearPending(r.token(req))
		w.WriteHeader(http.StatusCreated)
		respondJSON(w, viewOf(call))
	default:
		respondError(w, http.StatusMethodNotAllowed, "method not allowed")
	}
}

func (r *Router) apiCallDetail(w http.ResponseWriter, req *http.Request) {
	id, err := strconv.ParseInt(strings.TrimPrefix(req.URL.Path, "/api/calls/"), 10, 64)
	if err != nil {
		respondError(w, http.StatusBadRequest, "bad call id")
		return
	}
	call, err := r.store.GetCall(req.Context(), id)
	if err != nil {
		respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if call == nil {
		respondError(w, http.StatusNotFound, "no such call")
		return
	}
	respondJSON(w, viewOf(*call))
}

func (r *Router) listCalls(req *http.Request) ([]store.Call, error) {
	q := req.URL.Query()
	offset := parseIntDefault(q.Get("offset"), 0)
	limit := parseIntDefault(q.Get("limit"), r.cfg.ListLimit)
	if limit <= 0 || limit > r.cfg.ListLimit {
		limit = r.cfg.ListLimit
	}
	if term := strings.TrimSpace(q.Get("q")); term != "" {
		return r.store.SearchCalls(req.Context(), term, offset, limit)
	}
	return r.store.ListCalls(req.Context(), offset, limit)
}

// --- ops ---

func (r *Router) health(w http.ResponseWriter, req *http.Request) {
	if err := r.store.Health(req.Context()); err != nil {
		http.Error(w, err.Error(), http.StatusServiceUnavailable)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (r *Router) opsMetrics(w http.ResponseWriter, req *http.Request) {
	respondJSON(w, metrics.Snapshot())
}

// --- helpers ---

func (r *Router) render(w http.ResponseWriter, name string, data any) {
	if err := pages.ExecuteTemplate(w, name, data); err != nil {
		log.Error().Err(err).Str("template", name).Msg("render failed")
	}
}

func respondJSON(w http.ResponseWriter, payload any) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		log.Error().Err(err).Msg("write json")
	}
}

func respondError(w http.ResponseWriter, status int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]string{"error": msg})
}

func parseIntDefault(s string, def int) int {
	if s == "" {
		return def
	}
	n, err := strconv.Atoi(s)
	if err != nil || n < 0 {
		return def
	}
	return n
}
