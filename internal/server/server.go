// Package server exposes the analyzer over HTTP.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"sync/atomic"
	"time"

	"github.com/spacesedan/writeclean/internal/analyzer"
	"github.com/spacesedan/writeclean/internal/apperrors"
	"github.com/spacesedan/writeclean/internal/models"
	"github.com/spacesedan/writeclean/internal/textprep"
)

const (
	MAX_BODY_BYTES   = 1 << 20
	SHUTDOWN_TIMEOUT = 10 * time.Second
)

type Config struct {
	Addr           string
	AnalyzeTimeout time.Duration
	CacheTTL       time.Duration
}

func DefaultConfig() Config {
	return Config{
		Addr:           ":8080",
		AnalyzeTimeout: 5 * time.Second,
		CacheTTL:       24 * time.Hour,
	}
}

// Cache stores results by analyzed text. It is satisfied by
// *clients.ValkeyClient.
type Cache interface {
	GetAnalysis(ctx context.Context, text string) (*models.AnalysisResult, bool, error)
	SetAnalysis(ctx context.Context, text string, result *models.AnalysisResult, ttl time.Duration) error
}

type Server struct {
	engine       *analyzer.Analyzer
	cfg          Config
	cache        Cache
	cacheHealthy *atomic.Bool
}

type Option func(*Server)

// WithCache enables result caching while healthy is set. A nil flag means
// always healthy.
func WithCache(c Cache, healthy *atomic.Bool) Option {
	return func(s *Server) {
		s.cache = c
		s.cacheHealthy = healthy
	}
}

func New(engine *analyzer.Analyzer, cfg Config, opts ...Option) *Server {
	def := DefaultConfig()
	if cfg.AnalyzeTimeout <= 0 {
		cfg.AnalyzeTimeout = def.AnalyzeTimeout
	}
	if cfg.CacheTTL <= 0 {
		cfg.CacheTTL = def.CacheTTL
	}
	if cfg.Addr == "" {
		cfg.Addr = def.Addr
	}

	s := &Server{engine: engine, cfg: cfg}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/analyze", s.handleAnalyze)
	mux.HandleFunc("GET /healthz", s.handleHealth)
	return logRequests(mux)
}

// ListenAndServe serves until ctx is done, then drains in-flight requests.
func (s *Server) ListenAndServe(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.cfg.Addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
		WriteTimeout:      s.cfg.AnalyzeTimeout + 5*time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		slog.Info("[Server] Listening", slog.String("addr", s.cfg.Addr))
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("[Server] listen failed: %w", err)
	case <-ctx.Done():
	}

	slog.Info("[Server] Shutting down...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), SHUTDOWN_TIMEOUT)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("[Server] shutdown failed: %w", err)
	}
	return nil
}

type errorResponse struct {
	Error string `json:"error"`
}

type healthResponse struct {
	Status string `json:"status"`
	Cache  string `json:"cache"`
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	resp := healthResponse{Status: "ok", Cache: "disabled"}
	if s.cache != nil {
		resp.Cache = "ok"
		if !s.cacheUsable() {
			resp.Cache = "unavailable"
		}
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleAnalyze(w http.ResponseWriter, r *http.Request) {
	var req models.AnalysisRequest
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, MAX_BODY_BYTES))
	if err := dec.Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("invalid request body: %v", err))
		return
	}

	text, err := textprep.Prepare(req.Text, req.Format)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	if cached, ok := s.lookup(r.Context(), text); ok {
		w.Header().Set("X-Cache", "HIT")
		writeJSON(w, http.StatusOK, cached)
		return
	}

	result, err := s.analyze(r.Context(), text)
	if err != nil {
		s.writeAnalysisError(w, err)
		return
	}

	s.store(r.Context(), text, result)
	w.Header().Set("X-Cache", "MISS")
	writeJSON(w, http.StatusOK, result)
}

type outcome struct {
	result *models.AnalysisResult
	err    error
}

// analyze runs the engine under the configured deadline. The engine does not
// block, so the deadline is enforced here.
func (s *Server) analyze(ctx context.Context, text string) (*models.AnalysisResult, error) {
	ctx, cancel := context.WithTimeout(ctx, s.cfg.AnalyzeTimeout)
	defer cancel()

	done := make(chan outcome, 1)
	go func() {
		result, err := s.engine.AnalyzeContext(ctx, text)
		done <- outcome{result, err}
	}()

	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("[Server] analysis abandoned: %w", ctx.Err())
	case o := <-done:
		return o.result, o.err
	}
}

func (s *Server) writeAnalysisError(w http.ResponseWriter, err error) {
	var analysisErr *apperrors.AnalysisError
	switch {
	case apperrors.IsEmptyInput(err):
		writeError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, context.DeadlineExceeded), errors.Is(err, context.Canceled):
		slog.Warn("[Server] Analysis timed out", slog.String("error", err.Error()))
		writeError(w, http.StatusGatewayTimeout, "analysis timed out")
	case errors.As(err, &analysisErr):
		slog.Error("[Server] Analysis failed",
			slog.String("stage", analysisErr.Stage),
			slog.String("error", err.Error()))
		writeError(w, http.StatusInternalServerError, err.Error())
	default:
		slog.Error("[Server] Unexpected analysis error", slog.String("error", err.Error()))
		writeError(w, http.StatusInternalServerError, "internal error")
	}
}

func (s *Server) cacheUsable() bool {
	return s.cache != nil && (s.cacheHealthy == nil || s.cacheHealthy.Load())
}

func (s *Server) lookup(ctx context.Context, text string) (*models.AnalysisResult, bool) {
	if !s.cacheUsable() {
		return nil, false
	}
	result, ok, err := s.cache.GetAnalysis(ctx, text)
	if err != nil {
		slog.Warn("[Server] Cache lookup failed", slog.String("error", err.Error()))
		return nil, false
	}
	return result, ok
}

func (s *Server) store(ctx context.Context, text string, result *models.AnalysisResult) {
	if !s.cacheUsable() {
		return
	}
	if err := s.cache.SetAnalysis(ctx, text, result, s.cfg.CacheTTL); err != nil {
		slog.Warn("[Server] Cache write failed", slog.String("error", err.Error()))
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Warn("[Server] Failed to write response", slog.String("error", err.Error()))
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorResponse{Error: msg})
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

func logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)
		slog.Debug("[Server] Request served",
			slog.String("method", r.Method),
			slog.String("path", r.URL.Path),
			slog.Int("status", rec.status),
			slog.Duration("took", time.Since(start)))
	})
}
