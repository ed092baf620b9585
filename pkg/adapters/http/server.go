// Package http exposes a session over a small JSON API for bench-side UIs.
package http

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"mime"
	"net/http"
	"time"

	"github.com/aretw0/welllit/pkg/adapters/csv"
	"github.com/aretw0/welllit/pkg/domain"
	"github.com/aretw0/welllit/pkg/observability"
	"github.com/aretw0/welllit/pkg/session"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Server serves one session.
type Server struct {
	Session *session.Session
	Streams *StreamManager
	Metrics *observability.Metrics
	Version string
	logger  *slog.Logger
}

// Option configures the Server.
type Option func(*Server)

// WithStreams enables GET /events. The manager's Hooks must be installed on the session.
func WithStreams(sm *StreamManager) Option {
	return func(s *Server) {
		s.Streams = sm
	}
}

// WithMetrics enables GET /metrics and request instrumentation.
func WithMetrics(m *observability.Metrics) Option {
	return func(s *Server) {
		s.Metrics = m
	}
}

func WithVersion(v string) Option {
	return func(s *Server) {
		s.Version = v
	}
}

func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) {
		s.logger = logger
	}
}

// CommandResponse is returned by every mutating endpoint.
type CommandResponse struct {
	Result   domain.Result    `json:"result"`
	Snapshot *domain.Snapshot `json:"snapshot,omitempty"`
	// Warning carries a record sink failure; the result itself stands.
	Warning string `json:"warning,omitempty"`
}

// NewHandler creates the HTTP handler for a session.
func NewHandler(sess *session.Session, opts ...Option) http.Handler {
	s := &Server{
		Session: sess,
		Version: "dev",
		logger:  slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}

	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	if s.Metrics != nil {
		r.Use(s.instrument)
		r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(s.Metrics.Registry, promhttp.HandlerOpts{}))
	}

	r.Get("/health", s.GetHealth)
	r.Get("/info", s.GetInfo)
	r.Post("/load", s.Load)
	r.Post("/commands/{command}", s.Command)
	r.Get("/snapshot", s.GetSnapshot)
	r.Get("/partitions", s.GetPartitions)
	r.Get("/plates", s.GetPlates)
	r.Get("/transfers", s.GetTransfers)
	r.Get("/records", s.GetRecords)
	if s.Streams != nil {
		r.Get("/events", s.SubscribeEvents)
	}

	return enableCORS(r)
}

func enableCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (s *Server) instrument(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		route := "unmatched"
		if rctx := chi.RouteContext(r.Context()); rctx != nil && rctx.RoutePattern() != "" {
			route = rctx.RoutePattern()
		}
		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}
		s.Metrics.ObserveHTTP(r.Method, route, status, time.Since(start))
	})
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.Error("response encode failed", "err", err)
	}
}

// statusOf maps a result onto an HTTP status. Confirmations are successful
// responses; the client decides whether to send the follow-up command.
func statusOf(res domain.Result) int {
	switch {
	case !res.IsRejected():
		return http.StatusOK
	case res.Reason == domain.ReasonInvalidTable:
		return http.StatusUnprocessableEntity
	case res.Reason == domain.ReasonUnknownCommand:
		return http.StatusNotFound
	default:
		return http.StatusConflict
	}
}

func (s *Server) respond(w http.ResponseWriter, res domain.Result, err error) {
	resp := CommandResponse{Result: res}
	if snap, ok := s.Session.Snapshot(); ok {
		resp.Snapshot = &snap
	}
	if err != nil {
		s.logger.Warn("record sink failure", "err", err)
		resp.Warning = err.Error()
	}
	s.writeJSON(w, statusOf(res), resp)
}

// GetHealth handles GET /health.
func (s *Server) GetHealth(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// GetInfo handles GET /info.
func (s *Server) GetInfo(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]any{
		"app":     "welllit-http",
		"version": s.Version,
		"active":  s.Session.Active(),
		"run":     s.Session.Run(),
	})
}

// Load handles POST /load. The body is either a CSV table (text/csv, the
// optional ?name= query naming the source) or a JSON domain.Table.
func (s *Server) Load(w http.ResponseWriter, r *http.Request) {
	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))

	var (
		res domain.Result
		err error
	)
	switch mediaType {
	case "application/json":
		var table domain.Table
		if decErr := json.NewDecoder(r.Body).Decode(&table); decErr != nil {
			http.Error(w, "Invalid request body", http.StatusBadRequest)
			s.logger.Warn("Load: invalid request body", "err", decErr)
			return
		}
		res, err = s.Session.Load(r.Context(), table)
	case "text/csv", "text/plain", "":
		name := r.URL.Query().Get("name")
		if name == "" {
			name = "upload.csv"
		}
		res, err = s.Session.LoadFrom(r.Context(), csv.FromReader(r.Body, name))
	default:
		http.Error(w, fmt.Sprintf("Unsupported content type %q", mediaType), http.StatusUnsupportedMediaType)
		return
	}

	if err != nil && res.Kind == "" {
		http.Error(w, fmt.Sprintf("Load error: %v", err), http.StatusBadRequest)
		s.logger.Warn("Load failed", "err", err)
		return
	}
	s.respond(w, res, err)
}

// Command handles POST /commands/{command}.
func (s *Server) Command(w http.ResponseWriter, r *http.Request) {
	cmd := domain.Command(chi.URLParam(r, "command"))
	res, err := s.Session.Execute(r.Context(), cmd)
	s.respond(w, res, err)
}

func (s *Server) noProtocol(w http.ResponseWriter) {
	s.writeJSON(w, http.StatusNotFound, domain.Reject(domain.ReasonNoProtocol, "No transfer protocol loaded. Load a CSV file to begin"))
}

// GetSnapshot handles GET /snapshot.
func (s *Server) GetSnapshot(w http.ResponseWriter, r *http.Request) {
	snap, ok := s.Session.Snapshot()
	if !ok {
		s.noProtocol(w)
		return
	}
	s.writeJSON(w, http.StatusOK, snap)
}

// GetPartitions handles GET /partitions.
func (s *Server) GetPartitions(w http.ResponseWriter, r *http.Request) {
	if !s.Session.Active() {
		s.noProtocol(w)
		return
	}
	s.writeJSON(w, http.StatusOK, s.Session.Partitions())
}

// GetPlates handles GET /plates.
func (s *Server) GetPlates(w http.ResponseWriter, r *http.Request) {
	if !s.Session.Active() {
		s.noProtocol(w)
		return
	}
	s.writeJSON(w, http.StatusOK, s.Session.Plates())
}

// GetTransfers handles GET /transfers.
func (s *Server) GetTransfers(w http.ResponseWriter, r *http.Request) {
	if !s.Session.Active() {
		s.noProtocol(w)
		return
	}
	s.writeJSON(w, http.StatusOK, s.Session.Transfers())
}

// GetRecords handles GET /records.
func (s *Server) GetRecords(w http.ResponseWriter, r *http.Request) {
	if !s.Session.Active() {
		s.noProtocol(w)
		return
	}
	records := s.Session.Records()
	if records == nil {
		records = []domain.Record{}
	}
	s.writeJSON(w, http.StatusOK, map[string]any{
		"run":     s.Session.Run(),
		"records": records,
	})
}

// SubscribeEvents handles GET /events (SSE).
func (s *Server) SubscribeEvents(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "Streaming not supported", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")

	ch, cancel := s.Streams.Subscribe()
	defer cancel()

	fmt.Fprintf(w, "event: ping\ndata: connected\n\n")
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
