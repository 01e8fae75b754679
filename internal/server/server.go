// Package server provides the HTTP API for the complaint-letter service.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"net"
	"net/http"
	"slices"
	"strconv"
	"time"

	"github.com/jonathan/klachtbrief/internal/config"
	"github.com/jonathan/klachtbrief/internal/extraction"
	"github.com/jonathan/klachtbrief/internal/logging"
	"github.com/jonathan/klachtbrief/internal/pipeline"
	"github.com/jonathan/klachtbrief/internal/server/middleware"
	"github.com/jonathan/klachtbrief/internal/server/ratelimit"
	"go.uber.org/zap"
)

// ShutdownTimeout bounds how long in-flight requests get to finish.
const ShutdownTimeout = 30 * time.Second

// multipartSlack is allowed on top of the upload limit for multipart framing.
const multipartSlack = 64 * 1024

// Server represents the HTTP server
type Server struct {
	httpServer   *http.Server
	cfg          *config.Config
	orchestrator *pipeline.Orchestrator
	extractor    *extraction.Extractor
	rateLimiter  *ratelimit.Limiter
	logger       *zap.Logger
}

// New creates a new server instance. cfg is treated as read-only.
func New(cfg *config.Config, orchestrator *pipeline.Orchestrator, extractor *extraction.Extractor, logger *zap.Logger) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}

	s := &Server{
		cfg:          cfg,
		orchestrator: orchestrator,
		extractor:    extractor,
		rateLimiter:  ratelimit.New(cfg.RateLimit),
		logger:       logger,
	}

	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/process-text", s.handleProcessText)
	mux.HandleFunc("POST /api/upload-file", s.handleUploadFile)
	mux.HandleFunc("GET /health", s.handleHealth)
	if cfg.Diagnostics {
		mux.HandleFunc("GET /api/test-prompts", s.handleTestPrompts)
	}

	handler := middleware.RequestLogger(logger)(s.withCORS(s.withRateLimit(s.withBodyLimit(mux))))

	s.httpServer = &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Port),
		Handler:      handler,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: cfg.LLM.Timeout*time.Duration(cfg.LLM.MaxRetries+2) + 30*time.Second, // room for every retry
		IdleTimeout:  60 * time.Second,
	}

	return s
}

// Handler returns the fully wrapped request handler.
func (s *Server) Handler() http.Handler {
	return s.httpServer.Handler
}

// Start serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) Start(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.httpServer.Addr)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", s.httpServer.Addr, err)
	}
	return s.Serve(ctx, ln)
}

// Serve accepts connections on ln until ctx is cancelled.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	defer s.rateLimiter.Stop()

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("server starting", zap.String("addr", ln.Addr().String()))
		if err := s.httpServer.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	s.logger.Info("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), ShutdownTimeout)
	defer cancel()

	if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown failed: %w", err)
	}
	s.logger.Info("server stopped")
	return nil
}

// withCORS adds CORS headers. An empty allowlist allows every origin.
func (s *Server) withCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		origin := r.Header.Get("Origin")
		switch {
		case len(s.cfg.AllowedOrigins) == 0:
			w.Header().Set("Access-Control-Allow-Origin", "*")
		case origin != "" && slices.Contains(s.cfg.AllowedOrigins, origin):
			w.Header().Set("Access-Control-Allow-Origin", origin)
			w.Header().Add("Vary", "Origin")
		}
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}

		next.ServeHTTP(w, r)
	})
}

// withRateLimit adds rate limiting middleware
func (s *Server) withRateLimit(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		clientID := s.extractClientID(r)

		info := s.rateLimiter.Allow(clientID, r.URL.Path)
		s.setRateLimitHeaders(w, info)
		if !info.Allowed {
			s.rateLimitResponse(w, r, info)
			return
		}

		next.ServeHTTP(w, r)
	})
}

// withBodyLimit caps request bodies: uploads at the upload limit plus
// multipart framing, everything else at the JSON body limit. Oversized
// uploads are left to the upload handler, which reports them as a file
// that is too large.
func (s *Server) withBodyLimit(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		limit := s.cfg.Limits.MaxBodyBytes
		upload := r.URL.Path == "/api/upload-file"
		if upload {
			limit = s.cfg.Limits.MaxUploadBytes + multipartSlack
		}
		if !upload && r.ContentLength > limit {
			s.errorResponse(w, http.StatusRequestEntityTooLarge, MsgBodyTooLarge)
			return
		}
		r.Body = http.MaxBytesReader(w, r.Body, limit)
		next.ServeHTTP(w, r)
	})
}

// handleHealth returns server health status
func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	s.jsonResponse(w, http.StatusOK, map[string]string{"status": "ok"})
}

// jsonResponse writes a JSON response
func (s *Server) jsonResponse(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		s.logger.Error("failed to encode JSON response", zap.Error(err))
	}
}

// errorResponse writes the {success:false,error} shape used by the API.
func (s *Server) errorResponse(w http.ResponseWriter, status int, message string) {
	s.jsonResponse(w, status, errorBody{Success: false, Error: message})
}

// extractClientID extracts the client identifier from the request.
// This uses the IP address from RemoteAddr; forwarded headers are not trusted.
func (s *Server) extractClientID(r *http.Request) string {
	ip, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return ip
}

// setRateLimitHeaders sets standard rate limit headers on the response.
func (s *Server) setRateLimitHeaders(w http.ResponseWriter, info ratelimit.Decision) {
	if info.Limit > 0 {
		w.Header().Set("X-RateLimit-Limit", strconv.Itoa(info.Limit))
		w.Header().Set("X-RateLimit-Remaining", strconv.Itoa(info.Remaining))
		w.Header().Set("X-RateLimit-Reset", strconv.FormatInt(info.ResetTime.Unix(), 10))
	}
}

// rateLimitResponse writes a 429 Too Many Requests response.
func (s *Server) rateLimitResponse(w http.ResponseWriter, r *http.Request, info ratelimit.Decision) {
	if info.RetryAfter > 0 {
		w.Header().Set("Retry-After", strconv.Itoa(int(math.Ceil(info.RetryAfter.Seconds()))))
	}

	logging.FromContext(r.Context(), s.logger).Warn("rate limit exceeded",
		zap.String("client", s.extractClientID(r)),
		zap.String("path", r.URL.Path),
		zap.Int("limit", info.Limit),
		zap.Time("reset_at", info.ResetTime))

	s.errorResponse(w, http.StatusTooManyRequests, MsgTooManyRequests)
}
