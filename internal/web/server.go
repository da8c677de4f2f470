package web

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/vbonduro/snapcal/internal/auth"
	"github.com/vbonduro/snapcal/internal/metrics"
	"github.com/vbonduro/snapcal/internal/service"
)

// Options holds the optional collaborators of a Server.
type Options struct {
	// Verifier checks bearer tokens. Without one every request is anonymous
	// and the per-user routes answer 401.
	Verifier *auth.Verifier
	// Metrics, when set, is served on /metrics and records every request.
	Metrics *metrics.Metrics
	// ScanRatePerMinute limits POST /api/scans per user or client IP.
	// Zero or negative disables limiting.
	ScanRatePerMinute int
}

type Server struct {
	scans    *service.ScanService
	profiles *service.ProfileService
	verifier *auth.Verifier
	metrics  *metrics.Metrics
	limiter  *rateLimiter
	mux      *http.ServeMux
	logger   *slog.Logger
}

func NewServer(scans *service.ScanService, profiles *service.ProfileService, opts Options, logger *slog.Logger) *Server {
	s := &Server{
		scans:    scans,
		profiles: profiles,
		verifier: opts.Verifier,
		metrics:  opts.Metrics,
		limiter:  newRateLimiter(opts.ScanRatePerMinute),
		mux:      http.NewServeMux(),
		logger:   logger,
	}
	s.registerRoutes()
	return s
}

func (s *Server) registerRoutes() {
	s.mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	if s.metrics != nil {
		s.mux.Handle("GET /metrics", s.metrics.Handler())
	}

	s.mux.Handle("POST /api/scans", s.limiter.wrap(http.HandlerFunc(s.handleScan)))
	s.mux.Handle("GET /api/scans", requireUser(http.HandlerFunc(s.handleListScans)))
	s.mux.Handle("GET /api/scans/{id}", requireUser(http.HandlerFunc(s.handleGetScan)))
	s.mux.Handle("DELETE /api/scans/{id}", requireUser(http.HandlerFunc(s.handleDeleteScan)))
	s.mux.Handle("GET /api/scans/{id}/photo", requireUser(http.HandlerFunc(s.handleGetScanPhoto)))

	s.mux.Handle("POST /api/onboarding", requireUser(http.HandlerFunc(s.handleOnboarding)))
	s.mux.Handle("GET /api/profile", requireUser(http.HandlerFunc(s.handleGetProfile)))
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.requestLogger(securityHeaders(s.authenticate(s.mux))).ServeHTTP(w, r)
}

func (s *Server) ListenAndServe(addr string) error {
	s.logger.Info("starting server", "addr", addr)
	srv := &http.Server{
		Addr:         addr,
		Handler:      s,
		ReadTimeout:  60 * time.Second,
		WriteTimeout: 120 * time.Second,
		IdleTimeout:  120 * time.Second,
	}
	return srv.ListenAndServe()
}

type errorResponse struct {
	Error string `json:"error"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("failed to write response", "error", err)
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorResponse{Error: msg})
}
