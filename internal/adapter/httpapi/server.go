// Package httpapi is the thin HTTP front door: it deserializes query
// requests, hands them to the pipeline, and maps tagged resolution errors to
// status codes. It also exposes health, readiness, and metrics endpoints.
package httpapi

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-playground/validator/v10"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/weatherwise/district-forecast/internal/domain"
)

// Resolver runs one query through the pipeline.
type Resolver interface {
	Resolve(ctx context.Context, queryText string) (domain.Result, error)
}

// ReadinessChecker reports whether the service is ready to serve traffic.
type ReadinessChecker interface {
	CheckReadiness(ctx context.Context) error
}

// Server exposes the query API plus health, readiness, and metrics routes.
type Server struct {
	httpServer *http.Server
	resolver   Resolver
	ready      ReadinessChecker
	validate   *validator.Validate
	logger     *slog.Logger
}

// NewServer creates the HTTP server with /api/v1/query, /healthz, /readyz,
// and /metrics routes.
func NewServer(addr string, resolver Resolver, ready ReadinessChecker, logger *slog.Logger) *Server {
	s := &Server{
		resolver: resolver,
		ready:    ready,
		validate: validator.New(),
		logger:   logger,
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)

	r.Post("/api/v1/query", s.handleQuery)
	r.Get("/healthz", s.handleHealth)
	r.Get("/readyz", s.handleReady)
	r.Method(http.MethodGet, "/metrics", promhttp.Handler())

	s.httpServer = &http.Server{
		Addr:         addr,
		Handler:      r,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}
	return s
}

// Start begins listening. Returns http.ErrServerClosed on graceful shutdown.
func (s *Server) Start() error {
	s.logger.Info("http server starting", "addr", s.httpServer.Addr)
	return s.httpServer.ListenAndServe()
}

// Shutdown gracefully drains connections within the given context deadline.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}

// ServeHTTP delegates to the underlying handler, useful for testing.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.httpServer.Handler.ServeHTTP(w, r)
}

type queryRequest struct {
	Query string `json:"query" validate:"required,max=1000"`
}

type errorResponse struct {
	Error string `json:"error"`
	Kind  string `json:"kind,omitempty"`
}

func (s *Server) handleQuery(w http.ResponseWriter, r *http.Request) {
	var req queryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid JSON body"})
		return
	}
	if err := s.validate.Struct(req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "query must be non-empty and at most 1000 characters"})
		return
	}

	result, err := s.resolver.Resolve(r.Context(), req.Query)
	if err != nil {
		s.writeResolveError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toQueryResponse(result))
}

// writeResolveError maps the tagged error taxonomy to status codes: an
// unrecognized district is the caller's problem, an upstream outage is
// temporary unavailability, and a format regression is a bad gateway.
func (s *Server) writeResolveError(w http.ResponseWriter, err error) {
	kind := domain.KindOf(err)
	switch kind {
	case domain.KindDistrictNotRecognized:
		writeJSON(w, http.StatusUnprocessableEntity, errorResponse{
			Error: "district not recognized; try rephrasing with a district name",
			Kind:  string(kind),
		})
	case domain.KindRetrieval:
		writeJSON(w, http.StatusServiceUnavailable, errorResponse{
			Error: "weather data temporarily unavailable",
			Kind:  string(kind),
		})
	case domain.KindParse:
		writeJSON(w, http.StatusBadGateway, errorResponse{
			Error: "upstream weather data could not be parsed",
			Kind:  string(kind),
		})
	default:
		s.logger.Error("unexpected resolve error", "error", err)
		writeJSON(w, http.StatusInternalServerError, errorResponse{Error: "internal error"})
	}
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "healthy"})
}

func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	if err := s.ready.CheckReadiness(ctx); err != nil {
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{
			"status": "not ready",
			"error":  err.Error(),
		})
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ready"})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v) //nolint:errcheck // best-effort response write
}
