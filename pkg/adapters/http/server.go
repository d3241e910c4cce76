package http

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	shrub "github.com/denizsokullu/redux-shrub"
	"github.com/denizsokullu/redux-shrub/pkg/domain"
	"github.com/denizsokullu/redux-shrub/pkg/schema"
)

// Sessions is the session host behind the API. *session.Manager implements it.
type Sessions interface {
	State(ctx context.Context, sessionID string) (any, error)
	Dispatch(ctx context.Context, sessionID string, action domain.Action) (any, error)
	Select(ctx context.Context, sessionID, name string, payload any) (any, error)
	Reset(ctx context.Context, sessionID string) (any, error)
	Delete(ctx context.Context, sessionID string) error
	List(ctx context.Context) ([]string, error)
}

// Catalog describes the compiled tree. *shrub.Provider implements it.
type Catalog interface {
	ActionTypes() []string
	SelectorNames() []string
	ActionPath(actionType string) (string, bool)
	PayloadSchema(actionType string) (schema.Schema, bool)
}

// Server serves the session API.
type Server struct {
	Sessions Sessions
	Catalog  Catalog
	Streams  *StreamManager

	metrics http.Handler
	logger  *slog.Logger
}

// Option configures the Server.
type Option func(*Server)

// WithStreams shares a StreamManager whose Hooks are registered on the session manager.
func WithStreams(sm *StreamManager) Option {
	return func(s *Server) {
		s.Streams = sm
	}
}

// WithMetricsHandler mounts h at GET /metrics.
func WithMetricsHandler(h http.Handler) Option {
	return func(s *Server) {
		s.metrics = h
	}
}

// WithLogger sets the request logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// NewHandler creates the HTTP handler for a session host.
func NewHandler(sessions Sessions, catalog Catalog, opts ...Option) http.Handler {
	s := &Server{
		Sessions: sessions,
		Catalog:  catalog,
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.Streams == nil {
		s.Streams = NewStreamManager(s.logger)
	}
	return enableCORS(s.Routes())
}

// Routes builds the router without middleware.
func (s *Server) Routes() chi.Router {
	r := chi.NewRouter()

	r.Get("/health", s.GetHealth)
	r.Get("/info", s.GetInfo)
	r.Get("/actions", s.ListActions)
	r.Get("/selectors", s.ListSelectors)
	if s.metrics != nil {
		r.Method(http.MethodGet, "/metrics", s.metrics)
	}

	r.Route("/sessions", func(r chi.Router) {
		r.Get("/", s.ListSessions)
		r.Route("/{id}", func(r chi.Router) {
			r.Get("/", s.GetSession)
			r.Delete("/", s.DeleteSession)
			r.Post("/dispatch", s.Dispatch)
			r.Post("/reset", s.Reset)
			r.Post("/select/{name}", s.Select)
			r.Get("/events", s.SubscribeEvents)
		})
	})
	return r
}

func enableCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Custom-Header")
		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// errorResponse is the body of every non-2xx reply.
type errorResponse struct {
	Error string `json:"error"`
	Type  string `json:"type,omitempty"`
	Path  string `json:"path,omitempty"`
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.Error("response encode failed", "err", err)
	}
}

// writeError maps domain errors to status codes.
func (s *Server) writeError(w http.ResponseWriter, err error) {
	resp := errorResponse{Error: err.Error()}
	status := http.StatusInternalServerError

	var de *domain.DispatchError
	if errors.As(err, &de) {
		resp.Type, resp.Path = de.Type, de.Path
		status = http.StatusUnprocessableEntity
	}
	switch {
	case errors.Is(err, domain.ErrUnknownSelector):
		status = http.StatusNotFound
	case errors.Is(err, domain.ErrMissingCollectionMember) && de == nil:
		status = http.StatusNotFound
	case errors.Is(err, domain.ErrInvalidPayload) && de == nil:
		status = http.StatusBadRequest
	}

	if status == http.StatusInternalServerError {
		s.logger.Error("request failed", "err", err)
	}
	s.writeJSON(w, status, resp)
}

// GetHealth handles the GET /health request.
func (s *Server) GetHealth(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// GetInfo handles the GET /info request.
func (s *Server) GetInfo(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]any{
		"app":          "shrub-http",
		"version":      strings.TrimSpace(shrub.Version),
		"action_types": len(s.Catalog.ActionTypes()),
		"selectors":    len(s.Catalog.SelectorNames()),
	})
}

// ActionInfo describes one action type.
type ActionInfo struct {
	Type    string            `json:"type"`
	Path    string            `json:"path"`
	Payload map[string]string `json:"payload,omitempty"`
}

// ListActions handles the GET /actions request.
func (s *Server) ListActions(w http.ResponseWriter, r *http.Request) {
	types := s.Catalog.ActionTypes()
	out := make([]ActionInfo, 0, len(types))
	for _, t := range types {
		info := ActionInfo{Type: t}
		info.Path, _ = s.Catalog.ActionPath(t)
		if sch, ok := s.Catalog.PayloadSchema(t); ok {
			info.Payload = sch.TypeMap()
		}
		out = append(out, info)
	}
	s.writeJSON(w, http.StatusOK, out)
}

// ListSelectors handles the GET /selectors request.
func (s *Server) ListSelectors(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, s.Catalog.SelectorNames())
}

// ListSessions handles the GET /sessions request.
func (s *Server) ListSessions(w http.ResponseWriter, r *http.Request) {
	ids, err := s.Sessions.List(r.Context())
	if err != nil {
		s.writeError(w, err)
		return
	}
	if ids == nil {
		ids = []string{}
	}
	s.writeJSON(w, http.StatusOK, ids)
}

// GetSession handles the GET /sessions/{id} request.
func (s *Server) GetSession(w http.ResponseWriter, r *http.Request) {
	state, err := s.Sessions.State(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, state)
}

// DeleteSession handles the DELETE /sessions/{id} request.
func (s *Server) DeleteSession(w http.ResponseWriter, r *http.Request) {
	if err := s.Sessions.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		s.writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Dispatch handles the POST /sessions/{id}/dispatch request.
// The body is an action: {"type": "...", "payload": ...}.
func (s *Server) Dispatch(w http.ResponseWriter, r *http.Request) {
	var action domain.Action
	if err := json.NewDecoder(r.Body).Decode(&action); err != nil {
		s.writeJSON(w, http.StatusBadRequest, errorResponse{Error: "Invalid request body"})
		s.logger.Warn("Dispatch: Invalid request body", "err", err)
		return
	}
	if action.Type == "" {
		s.writeJSON(w, http.StatusBadRequest, errorResponse{Error: "action type is required"})
		return
	}

	state, err := s.Sessions.Dispatch(r.Context(), chi.URLParam(r, "id"), action)
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, state)
}

// Reset handles the POST /sessions/{id}/reset request.
func (s *Server) Reset(w http.ResponseWriter, r *http.Request) {
	state, err := s.Sessions.Reset(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, state)
}

// Select handles the POST /sessions/{id}/select/{name} request.
// The optional body is the selector payload.
func (s *Server) Select(w http.ResponseWriter, r *http.Request) {
	var payload any
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil && !errors.Is(err, io.EOF) {
		s.writeJSON(w, http.StatusBadRequest, errorResponse{Error: "Invalid request body"})
		return
	}

	value, err := s.Sessions.Select(r.Context(), chi.URLParam(r, "id"), chi.URLParam(r, "name"), payload)
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, map[string]any{"value": value})
}

// SubscribeEvents handles the GET /sessions/{id}/events request (SSE).
func (s *Server) SubscribeEvents(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "Streaming not supported", http.StatusInternalServerError)
		return
	}

	sessionID := chi.URLParam(r, "id")
	ch, cancel := s.Streams.Subscribe(sessionID)
	defer cancel()

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")

	fmt.Fprintf(w, "event: ping\ndata: connected\n\n")
	flusher.Flush()

	for {
		select {
		case <-r.Context().Done():
			s.logger.Debug("SSE client disconnected", "session_id", sessionID)
			return
		case msg, ok := <-ch:
			if !ok {
				return
			}
			fmt.Fprintf(w, "data: %s\n\n", msg)
			flusher.Flush()
		}
	}
}
