package http

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/dredimura/surface"
	"github.com/dredimura/surface/internal/logging"
	"github.com/dredimura/surface/pkg/activation"
	"github.com/dredimura/surface/pkg/batch"
	"github.com/dredimura/surface/pkg/domain"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
)

// Surface is the part of surface.Surface the HTTP API drives.
type Surface interface {
	Snapshot() surface.Snapshot
	SetNormalized(id domain.ParameterID, v float64) error
	Gesture(id domain.ParameterID, phase string) error
	Apply(updates []domain.BatchUpdate, opts ...batch.ApplyOption) (*batch.Run, error)
	Recall(ctx context.Context, presetID string, opts ...batch.ApplyOption) (*batch.Run, error)
	Presets(ctx context.Context) ([]domain.Preset, error)
	Activation() *activation.Machine
	OnChange(fn func(surface.Snapshot))
}

// Server serves the control surface as a JSON API with an SSE snapshot stream.
type Server struct {
	Surface Surface
	Streams *StreamManager

	logger  *slog.Logger
	metrics http.Handler
	mounts  map[string]http.Handler
}

// Option configures the Server.
type Option func(*Server)

// WithLogger configures a logger for the Server.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) {
		s.logger = logger
	}
}

// WithMetrics serves h at /metrics.
func WithMetrics(h http.Handler) Option {
	return func(s *Server) {
		s.metrics = h
	}
}

// WithMount serves h under pattern, e.g. a license authority at /license.
func WithMount(pattern string, h http.Handler) Option {
	return func(s *Server) {
		s.mounts[pattern] = h
	}
}

// NewHandler creates the HTTP handler for surf.
func NewHandler(surf Surface, opts ...Option) http.Handler {
	server := &Server{
		Surface: surf,
		logger:  logging.NewNop(),
		mounts:  make(map[string]http.Handler),
	}
	for _, opt := range opts {
		opt(server)
	}
	server.Streams = NewStreamManager(server.logger)

	surf.OnChange(func(snap surface.Snapshot) {
		if server.Streams.Subscribers() == 0 {
			return
		}
		if data, err := json.Marshal(snap); err == nil {
			server.Streams.Broadcast(string(data))
		}
	})

	r := chi.NewRouter()
	r.Use(requestID)
	r.Use(middleware.Recoverer)
	r.Use(enableCORS)

	r.Get("/health", server.GetHealth)
	r.Get("/info", server.GetInfo)
	r.Get("/events", server.SubscribeEvents)
	if server.metrics != nil {
		r.Method(http.MethodGet, "/metrics", server.metrics)
	}
	for pattern, h := range server.mounts {
		r.Mount(pattern, h)
	}

	r.Route("/api", func(r chi.Router) {
		r.Get("/snapshot", server.GetSnapshot)

		r.Put("/parameters/{id}", server.SetParameter)
		r.Post("/parameters/{id}/gesture", server.Gesture)
		r.Post("/batch", server.ApplyBatch)

		r.Get("/presets", server.ListPresets)
		r.Post("/presets/{id}/recall", server.RecallPreset)

		r.Get("/activation", server.GetActivation)
		r.Post("/activation", server.Activate)
		r.Delete("/activation", server.Deactivate)
		r.Delete("/activation/error", server.ClearActivationError)
	})

	return r
}

func requestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get("X-Request-ID")
		if id == "" {
			id = uuid.NewString()
		}
		w.Header().Set("X-Request-ID", id)
		next.ServeHTTP(w, r)
	})
}

func enableCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, X-Request-ID")
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}
		next.ServeHTTP(w, r)
	})
}

type setRequest struct {
	Value *float64 `json:"value"`
}

type gestureRequest struct {
	Phase string `json:"phase"`
}

type batchRequest struct {
	Updates   []domain.BatchUpdate `json:"updates"`
	StaggerMs int                  `json:"staggerMs"`
}

type recallRequest struct {
	StaggerMs int `json:"staggerMs"`
}

type runResponse struct {
	Size int `json:"size"`
}

type activateRequest struct {
	Code string `json:"code"`
}

type activationResponse struct {
	Phase       domain.Phase           `json:"phase"`
	Interactive bool                   `json:"interactive"`
	Message     string                 `json:"message,omitempty"`
	State       domain.ActivationState `json:"state"`
}

// GetHealth handles GET /health.
func (s *Server) GetHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// GetInfo handles GET /info.
func (s *Server) GetInfo(w http.ResponseWriter, r *http.Request) {
	snap := s.Surface.Snapshot()
	writeJSON(w, http.StatusOK, map[string]any{
		"app":         "surface-http",
		"name":        snap.Name,
		"version":     strings.TrimSpace(surface.Version),
		"hostPresent": snap.HostPresent,
	})
}

// GetSnapshot handles GET /api/snapshot.
func (s *Server) GetSnapshot(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.Surface.Snapshot())
}

// SetParameter handles PUT /api/parameters/{id}.
func (s *Server) SetParameter(w http.ResponseWriter, r *http.Request) {
	var body setRequest
	if err := decode(r, &body); err != nil || body.Value == nil {
		writeError(w, http.StatusBadRequest, "Invalid request body: value is required")
		return
	}
	id := domain.ParameterID(chi.URLParam(r, "id"))
	if err := s.Surface.SetNormalized(id, *body.Value); err != nil {
		s.fail(w, "SetParameter", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Gesture handles POST /api/parameters/{id}/gesture.
func (s *Server) Gesture(w http.ResponseWriter, r *http.Request) {
	var body gestureRequest
	if err := decode(r, &body); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	id := domain.ParameterID(chi.URLParam(r, "id"))
	if err := s.Surface.Gesture(id, body.Phase); err != nil {
		s.fail(w, "Gesture", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// ApplyBatch handles POST /api/batch.
func (s *Server) ApplyBatch(w http.ResponseWriter, r *http.Request) {
	var body batchRequest
	if err := decode(r, &body); err != nil || body.StaggerMs < 0 {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	run, err := s.Surface.Apply(body.Updates, batch.WithStagger(time.Duration(body.StaggerMs)*time.Millisecond))
	if err != nil {
		s.fail(w, "ApplyBatch", err)
		return
	}
	writeJSON(w, http.StatusAccepted, runResponse{Size: run.Size()})
}

// ListPresets handles GET /api/presets.
func (s *Server) ListPresets(w http.ResponseWriter, r *http.Request) {
	presets, err := s.Surface.Presets(r.Context())
	if err != nil {
		s.fail(w, "ListPresets", err)
		return
	}
	if presets == nil {
		presets = []domain.Preset{}
	}
	writeJSON(w, http.StatusOK, presets)
}

// RecallPreset handles POST /api/presets/{id}/recall. The body is optional.
func (s *Server) RecallPreset(w http.ResponseWriter, r *http.Request) {
	var body recallRequest
	if r.ContentLength > 0 {
		if err := decode(r, &body); err != nil || body.StaggerMs < 0 {
			writeError(w, http.StatusBadRequest, "Invalid request body")
			return
		}
	}
	run, err := s.Surface.Recall(r.Context(), chi.URLParam(r, "id"), batch.WithStagger(time.Duration(body.StaggerMs)*time.Millisecond))
	if err != nil {
		s.fail(w, "RecallPreset", err)
		return
	}
	writeJSON(w, http.StatusAccepted, runResponse{Size: run.Size()})
}

// GetActivation handles GET /api/activation.
func (s *Server) GetActivation(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.activation())
}

// Activate handles POST /api/activation.
func (s *Server) Activate(w http.ResponseWriter, r *http.Request) {
	var body activateRequest
	if err := decode(r, &body); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if err := s.Surface.Activation().Activate(body.Code); err != nil {
		s.fail(w, "Activate", err)
		return
	}
	writeJSON(w, http.StatusAccepted, s.activation())
}

// Deactivate handles DELETE /api/activation.
func (s *Server) Deactivate(w http.ResponseWriter, r *http.Request) {
	if err := s.Surface.Activation().Deactivate(); err != nil {
		s.fail(w, "Deactivate", err)
		return
	}
	writeJSON(w, http.StatusAccepted, s.activation())
}

// ClearActivationError handles DELETE /api/activation/error.
func (s *Server) ClearActivationError(w http.ResponseWriter, r *http.Request) {
	s.Surface.Activation().ClearError()
	w.WriteHeader(http.StatusNoContent)
}

// SubscribeEvents handles GET /events (SSE). Every change produces one
// "data:" line holding the JSON snapshot.
func (s *Server) SubscribeEvents(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		writeError(w, http.StatusInternalServerError, "Streaming not supported")
		s.logger.Error("SubscribeEvents: Streaming not supported")
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")

	ch, cancel := s.Streams.Subscribe()
	defer cancel()

	fmt.Fprintf(w, "event: ping\ndata: connected\n\n")
	if data, err := json.Marshal(s.Surface.Snapshot()); err == nil {
		fmt.Fprintf(w, "data: %s\n\n", data)
	}
	flusher.Flush()

	for {
		select {
		case <-r.Context().Done():
			s.logger.Debug("SSE client disconnected")
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

func (s *Server) activation() activationResponse {
	m := s.Surface.Activation()
	state := m.State()
	return activationResponse{
		Phase:       state.Phase(),
		Interactive: state.Interactive(),
		Message:     state.LastError,
		State:       state,
	}
}

func (s *Server) fail(w http.ResponseWriter, op string, err error) {
	code := StatusCode(err)
	if code >= http.StatusInternalServerError {
		s.logger.Error(op+" failed", "err", err)
	} else {
		s.logger.Debug(op+" rejected", "err", err)
	}
	writeError(w, code, err.Error())
}

// StatusCode maps domain errors onto HTTP status codes.
func StatusCode(err error) int {
	switch {
	case errors.Is(err, domain.ErrSurfaceLocked):
		return http.StatusLocked
	case errors.Is(err, domain.ErrUnknownParameter), errors.Is(err, domain.ErrPresetNotFound):
		return http.StatusNotFound
	case errors.Is(err, domain.ErrMalformedPayload), errors.Is(err, domain.ErrEmptyCode):
		return http.StatusBadRequest
	case errors.Is(err, domain.ErrKindMismatch),
		errors.Is(err, domain.ErrRequestInFlight),
		errors.Is(err, domain.ErrAlreadyActivated),
		errors.Is(err, domain.ErrNotActivated),
		errors.Is(err, domain.ErrActivationNotConfigured):
		return http.StatusConflict
	}
	return http.StatusInternalServerError
}

func decode(r *http.Request, v any) error {
	return json.NewDecoder(r.Body).Decode(v)
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, code int, msg string) {
	writeJSON(w, code, map[string]string{"error": msg})
}
