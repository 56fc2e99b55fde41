// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package server exposes the analysis engine over HTTP.
// Implements: prd005-http-api;
//
//	docs/ARCHITECTURE § HTTP API.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/pdiddy/advisor-engine/internal/engine"
	"github.com/pdiddy/advisor-engine/pkg/types"
)

const (
	defaultAddr            = ":5000"
	defaultShutdownTimeout = 10 * time.Second

	// maxBodyBytes caps the analyze request body.
	maxBodyBytes = 1 << 20
)

// Analyzer runs one analysis. *engine.Engine is the standard implementation.
type Analyzer interface {
	Analyze(ctx context.Context, question string) (*types.AnalysisResult, error)
}

// Server wraps the HTTP listener and handlers backing the analysis API.
type Server struct {
	cfg      types.ServerConfig
	analyzer Analyzer
	logger   *zap.Logger

	mu       sync.Mutex
	server   *http.Server
	listener net.Listener
}

// New prepares an API server. A nil logger disables request logging.
func New(cfg types.ServerConfig, analyzer Analyzer, logger *zap.Logger) *Server {
	if cfg.Addr == "" {
		cfg.Addr = defaultAddr
	}
	if cfg.ShutdownTimeout <= 0 {
		cfg.ShutdownTimeout = defaultShutdownTimeout
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Server{cfg: cfg, analyzer: analyzer, logger: logger}
}

// Handler returns the API routes. Exposed so tests can drive the handlers
// through httptest without binding a port.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/analyze", s.handleAnalyze)
	mux.HandleFunc("/healthz", s.handleHealthz)
	return mux
}

// Start binds the listener and begins serving in the background.
func (s *Server) Start() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.listener != nil {
		return fmt.Errorf("server already started")
	}

	listener, err := net.Listen("tcp", s.cfg.Addr)
	if err != nil {
		return fmt.Errorf("listening on %s: %w", s.cfg.Addr, err)
	}
	s.listener = listener
	s.server = &http.Server{
		Handler:      s.Handler(),
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 2 * time.Minute,
	}

	go func() {
		if err := s.server.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.logger.Error("serve failed", zap.Error(err))
		}
	}()

	s.logger.Info("listening", zap.String("addr", listener.Addr().String()))
	return nil
}

// Shutdown drains in-flight requests, bounded by the configured timeout.
func (s *Server) Shutdown(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.server == nil {
		return nil
	}

	ctx, cancel := context.WithTimeout(ctx, s.cfg.ShutdownTimeout)
	defer cancel()
	err := s.server.Shutdown(ctx)
	s.server = nil
	s.listener = nil
	return err
}

// Addr returns the bound address once the server has started.
func (s *Server) Addr() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.listener == nil {
		return ""
	}
	return s.listener.Addr().String()
}

type analyzeRequest struct {
	Question string `json:"question"`
}

type analyzeResponse struct {
	RequestID  string          `json:"request_id"`
	Question   string          `json:"question"`
	Analysis   string          `json:"analysis"`
	Insights   []types.Insight `json:"insights"`
	Confidence float64         `json:"confidence"`
	Metrics    string          `json:"metrics"`
	Log        []string        `json:"log"`
}

func (s *Server) handleAnalyze(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.Header().Set("Allow", http.MethodPost)
		writeJSON(w, http.StatusMethodNotAllowed, map[string]string{"error": "method not allowed"})
		return
	}

	requestID := uuid.NewString()
	start := time.Now()

	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "unable to read body"})
		return
	}
	var req analyzeRequest
	if err := json.Unmarshal(body, &req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON"})
		return
	}

	res, err := s.analyzer.Analyze(r.Context(), req.Question)
	switch {
	case errors.Is(err, engine.ErrInvalidInput):
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "No question provided"})
		return
	case err != nil:
		s.logger.Error("analysis failed",
			zap.String("request_id", requestID),
			zap.Error(err))
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "analysis failed"})
		return
	}

	s.logger.Info("analysis served",
		zap.String("request_id", requestID),
		zap.Int("insights", len(res.Insights)),
		zap.Int("absorbed_errors", res.Metrics.Errors),
		zap.Duration("elapsed", time.Since(start)))

	writeJSON(w, http.StatusOK, analyzeResponse{
		RequestID:  requestID,
		Question:   res.Question,
		Analysis:   res.Rendered,
		Insights:   res.Insights,
		Confidence: res.Confidence,
		Metrics:    res.Metrics.Summary(),
		Log:        res.Log,
	})
}

func (s *Server) handleHealthz(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet && r.Method != http.MethodHead {
		w.Header().Set("Allow", fmt.Sprintf("%s, %s", http.MethodGet, http.MethodHead))
		writeJSON(w, http.StatusMethodNotAllowed, map[string]string{"error": "method not allowed"})
		return
	}
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok\n"))
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}
