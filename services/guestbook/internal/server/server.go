package server

import (
	"bytes"
	"encoding/json"
	"errors"
	"math"
	"net/http"
	"strconv"
	"strings"
	"time"

	"guestbook/internal/ratelimit"
	"guestbook/internal/util"
	"guestbook/pkg/domain"
	"guestbook/services/guestbook/internal/app"
	"guestbook/services/guestbook/internal/view"
)

// maxFormBytes bounds the submission body; the fields themselves are tiny.
const maxFormBytes = 16 << 10

// Config wires required dependencies for the HTTP server.
type Config struct {
	App      *app.App
	Renderer *view.Renderer
	// Limiter throttles submissions per client IP. Nil disables it.
	Limiter        ratelimit.Limiter
	TrustedProxies *util.TrustedProxies
}

// Server exposes the guestbook page and its htmx endpoints.
type Server struct {
	app     *app.App
	render  *view.Renderer
	limiter ratelimit.Limiter
	trusted *util.TrustedProxies
	mux     *http.ServeMux
}

// New constructs the server with routes configured.
func New(cfg Config) (*Server, error) {
	if cfg.App == nil {
		return nil, errors.New("server: app is required")
	}
	render := cfg.Renderer
	if render == nil {
		var err error
		render, err = view.NewRenderer("en")
		if err != nil {
			return nil, err
		}
	}
	s := &Server{
		app:     cfg.App,
		render:  render,
		limiter: cfg.Limiter,
		trusted: cfg.TrustedProxies,
		mux:     http.NewServeMux(),
	}
	s.routes()
	return s, nil
}

// Router returns the configured handler.
func (s *Server) Router() http.Handler {
	return util.WithRequestID(util.WithRequestLog("guestbook", util.WithSecurityHeaders(s.mux)))
}

func (s *Server) routes() {
	s.mux.HandleFunc("GET /healthz", s.handleHealth)
	s.mux.HandleFunc("GET /{$}", s.handleIndex)
	s.mux.HandleFunc("POST /submit-message", s.handleSubmit)
	s.mux.HandleFunc("DELETE /delete-message/{id}", s.handleDelete)
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	loc := s.render.Locale(r.Header.Get("Accept-Language"))
	entries, err := s.app.List(r.Context())
	if err != nil {
		http.Error(w, loc.Text.StoreUnavailable, http.StatusInternalServerError)
		return
	}
	var buf bytes.Buffer
	if err := s.render.Page(&buf, loc, entries); err != nil {
		s.renderFailed(w, r, err)
		return
	}
	writeHTML(w, http.StatusOK, buf.Bytes())
}

func (s *Server) handleSubmit(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	loc := s.render.Locale(r.Header.Get("Accept-Language"))

	if s.limiter != nil && !s.limiter.Allow(ctx, util.ClientIP(r, s.trusted)) {
		w.Header().Set("Retry-After", retryAfterSeconds(s.limiter.RetryAfter()))
		s.writeListError(w, r, loc, http.StatusTooManyRequests, loc.Text.TooManyRequests)
		return
	}

	if err := parseSubmission(w, r); err != nil {
		http.Error(w, "invalid form", http.StatusBadRequest)
		return
	}
	entries, err := s.app.Create(ctx, r.PostFormValue("name"), r.PostFormValue("message"))
	switch {
	case err == nil:
	case errors.Is(err, domain.ErrInvalidEntry):
		s.writeListError(w, r, loc, http.StatusUnprocessableEntity, loc.ValidationMessage(err))
		return
	default:
		s.writeStoreError(w, r, loc)
		return
	}

	var buf bytes.Buffer
	if err := s.render.Submitted(&buf, loc, entries); err != nil {
		s.renderFailed(w, r, err)
		return
	}
	writeHTML(w, http.StatusOK, buf.Bytes())
}

// parseSubmission accepts both urlencoded and multipart bodies; htmx sends
// multipart when the form carries hx-encoding="multipart/form-data".
func parseSubmission(w http.ResponseWriter, r *http.Request) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxFormBytes)
	err := r.ParseMultipartForm(maxFormBytes)
	if errors.Is(err, http.ErrNotMultipart) {
		return r.ParseForm()
	}
	return err
}

// retryAfterSeconds rounds up so clients never retry early.
func retryAfterSeconds(d time.Duration) string {
	secs := int64(math.Ceil(d.Seconds()))
	if secs < 1 {
		secs = 1
	}
	return strconv.FormatInt(secs, 10)
}

func (s *Server) handleDelete(w http.ResponseWriter, r *http.Request) {
	loc := s.render.Locale(r.Header.Get("Accept-Language"))
	id, err := strconv.ParseInt(strings.TrimSpace(r.PathValue("id")), 10, 64)
	if err != nil {
		http.Error(w, "invalid entry id", http.StatusBadRequest)
		return
	}
	entries, err := s.app.Delete(r.Context(), id)
	if err != nil {
		s.writeStoreError(w, r, loc)
		return
	}
	s.writeList(w, r, http.StatusOK, view.ListData{Locale: loc, Entries: entries})
}

// writeListError re-renders the current entries with a notice above them, so
// the swap target survives a rejected submission. If the entries cannot be
// read the notice is shown alone.
func (s *Server) writeListError(w http.ResponseWriter, r *http.Request, loc view.Locale, status int, msg string) {
	entries, err := s.app.List(r.Context())
	if err != nil {
		entries = nil
	}
	s.writeList(w, r, status, view.ListData{Locale: loc, Entries: entries, Error: msg})
}

func (s *Server) writeStoreError(w http.ResponseWriter, r *http.Request, loc view.Locale) {
	s.writeList(w, r, http.StatusInternalServerError, view.ListData{Locale: loc, Error: loc.Text.StoreUnavailable})
}

func (s *Server) writeList(w http.ResponseWriter, r *http.Request, status int, data view.ListData) {
	var buf bytes.Buffer
	if err := s.render.List(&buf, data); err != nil {
		s.renderFailed(w, r, err)
		return
	}
	writeHTML(w, status, buf.Bytes())
}

func (s *Server) renderFailed(w http.ResponseWriter, r *http.Request, err error) {
	util.LoggerFromContext(r.Context()).Error("render failed", "err", err)
	http.Error(w, "internal error", http.StatusInternalServerError)
}

func writeHTML(w http.ResponseWriter, status int, body []byte) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, _ = w.Write(body)
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}
