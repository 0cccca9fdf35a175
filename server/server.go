// Package server is a thin HTTP adapter in front of the triage pipeline.
// It owns no triage semantics: requests are decoded, handed to the
// pipeline, and the result is serialized back.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/triagemesh/triagemesh/core"
	"github.com/triagemesh/triagemesh/logging"
	"github.com/triagemesh/triagemesh/pipeline"
)

// Runner is the pipeline surface the server depends on.
type Runner interface {
	Run(ctx context.Context, req pipeline.Request) (*pipeline.Result, error)
}

// Options holds optional overrides passed to New().
type Options struct {
	// Logger receives one line per handled request.
	Logger logging.Logger
	// Gatherer backs GET /metrics. Nil hides the endpoint.
	Gatherer prometheus.Gatherer
	// Timeout bounds each triage request.
	Timeout time.Duration
}

// Server exposes the pipeline over HTTP.
type Server struct {
	router   *chi.Mux
	runner   Runner
	logger   logging.Logger
	timeout  time.Duration
	gatherer prometheus.Gatherer
}

// New builds the router with request-id, logging and panic-recovery
// middleware around the triage endpoints.
func New(runner Runner, optFns ...func(o *Options)) *Server {
	opts := Options{
		Logger:  logging.NoOpLogger{},
		Timeout: 60 * time.Second,
	}
	for _, fn := range optFns {
		fn(&opts)
	}

	s := &Server{
		runner:   runner,
		logger:   opts.Logger,
		timeout:  opts.Timeout,
		gatherer: opts.Gatherer,
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(s.logRequests)
	r.Use(middleware.Recoverer)

	r.Get("/healthz", s.handleHealth)
	r.Post("/v1/incidents", s.handleIncident)
	if s.gatherer != nil {
		r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(s.gatherer, promhttp.HandlerOpts{}))
	}

	s.router = r
	return s
}

// Handler returns the underlying HTTP handler, handy for tests and
// for embedding into an existing mux.
func (s *Server) Handler() http.Handler { return s.router }

// ListenAndServe blocks serving HTTP on addr.
func (s *Server) ListenAndServe(addr string) error {
	s.logger.Info("http server listening", "addr", addr)
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}
	return srv.ListenAndServe()
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleIncident(w http.ResponseWriter, r *http.Request) {
	var req pipeline.Request
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), s.timeout)
	defer cancel()

	res, err := s.runner.Run(ctx, req)
	if err != nil {
		switch {
		case errors.Is(err, core.ErrEmptyDescription):
			writeError(w, http.StatusBadRequest, err.Error())
		default:
			s.logger.Error("incident run failed", "error", err)
			writeError(w, http.StatusInternalServerError, "triage run failed")
		}
		return
	}

	writeJSON(w, http.StatusOK, res)
}

func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)
		s.logger.Info("request handled",
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"elapsed_ms", time.Since(start).Milliseconds(),
			"request_id", middleware.GetReqID(r.Context()),
		)
	})
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
