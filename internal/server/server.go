// Package server provides the HTTP API for résumé analysis.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/jonathan/resume-analyzer/internal/analysis"
	"github.com/jonathan/resume-analyzer/internal/catalog"
	"github.com/jonathan/resume-analyzer/internal/db"
	"github.com/jonathan/resume-analyzer/internal/logging"
	"github.com/jonathan/resume-analyzer/internal/rules"
	"github.com/jonathan/resume-analyzer/internal/server/middleware"
	"github.com/jonathan/resume-analyzer/internal/server/ratelimit"
	"github.com/jonathan/resume-analyzer/internal/types"
)

// ResultStore persists analysis results.
type ResultStore interface {
	SaveAnalysis(ctx context.Context, text string, result *types.AnalysisResult) (uuid.UUID, error)
	GetAnalysis(ctx context.Context, id uuid.UUID) (*db.AnalysisRecord, error)
}

// Config holds server configuration
type Config struct {
	Port     int
	Analyzer *analysis.Analyzer
	// Catalog and Rules are refreshed from their stores on RefreshInterval and on demand.
	Catalog *catalog.Catalog
	Rules   *rules.Cache
	// Results stores analyses when PersistResults is set.
	Results         ResultStore
	PersistResults  bool
	RefreshInterval time.Duration
	// RateLimit nil disables limiting.
	RateLimit *ratelimit.Config
	Logger    *zap.Logger
}

// Server represents the HTTP server
type Server struct {
	httpServer      *http.Server
	analyzer        *analysis.Analyzer
	catalog         *catalog.Catalog
	rules           *rules.Cache
	results         ResultStore
	persist         bool
	refreshInterval time.Duration
	rateLimiter     *ratelimit.Limiter
	validate        *validator.Validate
	logger          *zap.Logger
}

// New creates a new server instance
func New(cfg Config) (*Server, error) {
	if cfg.Analyzer == nil {
		return nil, errors.New("analyzer is required")
	}

	s := &Server{
		analyzer:        cfg.Analyzer,
		catalog:         cfg.Catalog,
		rules:           cfg.Rules,
		results:         cfg.Results,
		persist:         cfg.PersistResults && cfg.Results != nil,
		refreshInterval: cfg.RefreshInterval,
		validate:        validator.New(),
		logger:          logging.Named(cfg.Logger, "server"),
	}
	if s.catalog == nil {
		s.catalog = catalog.New(nil, s.logger)
	}

	rl := cfg.RateLimit
	if rl == nil {
		rl = &ratelimit.Config{Enabled: false}
	}
	s.rateLimiter = ratelimit.NewLimiter(rl)

	mux := http.NewServeMux()
	mux.HandleFunc("POST /analyze", s.handleAnalyze)
	mux.HandleFunc("GET /analyses/{id}", s.handleGetAnalysis)
	mux.HandleFunc("POST /score", s.handleScore)
	mux.HandleFunc("GET /catalog", s.handleListCatalog)
	mux.HandleFunc("GET /catalog/{code}", s.handleGetCatalogEntry)
	mux.HandleFunc("POST /refresh", s.handleRefresh)
	mux.HandleFunc("GET /health", s.handleHealth)

	handler := middleware.Recover(s.logger)(s.withCORS(mux))
	handler = middleware.Logging(s.logger)(handler)

	s.httpServer = &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Port),
		Handler:      s.withRateLimit(handler),
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	return s, nil
}

// Handler returns the root HTTP handler.
func (s *Server) Handler() http.Handler {
	return s.httpServer.Handler
}

// Run serves until ctx is cancelled, then shuts down gracefully. It also refreshes rules and
// catalog on the configured interval.
func (s *Server) Run(ctx context.Context) error {
	defer s.rateLimiter.Stop()

	g, gCtx := errgroup.WithContext(ctx)

	g.Go(func() error {
		s.logger.Info("server starting", zap.String("addr", s.httpServer.Addr))
		if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		<-gCtx.Done()
		s.logger.Info("shutting down server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("server shutdown failed: %w", err)
		}
		return nil
	})

	if s.refreshInterval > 0 {
		g.Go(func() error {
			s.refreshLoop(gCtx)
			return nil
		})
	}

	err := g.Wait()
	s.logger.Info("server stopped")
	return err
}

func (s *Server) refreshLoop(ctx context.Context) {
	ticker := time.NewTicker(s.refreshInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if _, err := s.refresh(ctx, false); err != nil {
				s.logger.Warn("periodic refresh failed", zap.Error(err))
			}
		}
	}
}

// RefreshResult reports the state after a refresh.
type RefreshResult struct {
	RulesVersion   int64 `json:"rules_version"`
	Rules          int   `json:"rules"`
	SkippedRules   int   `json:"skipped_rules"`
	RulesReloaded  bool  `json:"rules_reloaded"`
	CatalogEntries int   `json:"catalog_entries"`
}

// refresh reloads the catalog and the rules. Rules reload only on a version change unless
// force is set. Failures keep the previous snapshots.
func (s *Server) refresh(ctx context.Context, force bool) (RefreshResult, error) {
	var res RefreshResult
	var errs []error

	if err := s.catalog.Refresh(ctx); err != nil {
		errs = append(errs, err)
	}
	res.CatalogEntries = len(s.catalog.Entries())

	if s.rules != nil {
		if force {
			if err := s.rules.Load(ctx); err != nil {
				errs = append(errs, err)
			} else {
				res.RulesReloaded = true
			}
		} else {
			reloaded, err := s.rules.RefreshIfStale(ctx)
			if err != nil {
				errs = append(errs, err)
			}
			res.RulesReloaded = reloaded
		}
		snap := s.rules.Snapshot()
		res.RulesVersion = snap.Version
		res.Rules = snap.Len()
		res.SkippedRules = len(snap.Skipped)
	}

	if res.RulesReloaded {
		s.logger.Info("rules reloaded",
			zap.Int64("version", res.RulesVersion),
			zap.Int("rules", res.Rules),
			zap.Int("skipped", res.SkippedRules))
	}
	return res, errors.Join(errs...)
}

// withCORS adds CORS headers
func (s *Server) withCORS(next http.Handler) http.Handler {
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

// withRateLimit adds rate limiting middleware
func (s *Server) withRateLimit(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		allowed, info := s.rateLimiter.Allow(s.extractClientID(r), r.URL.Path, r.Method)
		s.setRateLimitHeaders(w, info)
		if !allowed {
			s.rateLimitResponse(w, r, info)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// extractClientID extracts the client IP from RemoteAddr.
func (s *Server) extractClientID(r *http.Request) string {
	ip, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return ip
}

// setRateLimitHeaders sets standard rate limit headers on the response.
func (s *Server) setRateLimitHeaders(w http.ResponseWriter, info ratelimit.Info) {
	if info.Limit > 0 {
		w.Header().Set("X-RateLimit-Limit", strconv.Itoa(info.Limit))
		w.Header().Set("X-RateLimit-Remaining", strconv.Itoa(info.Remaining))
	}
}

// rateLimitResponse writes a 429 Too Many Requests response.
func (s *Server) rateLimitResponse(w http.ResponseWriter, r *http.Request, info ratelimit.Info) {
	retry := max(1, int(info.RetryAfter.Round(time.Second).Seconds()))
	w.Header().Set("Retry-After", strconv.Itoa(retry))

	s.logger.Warn("rate limit exceeded",
		zap.String("client", s.extractClientID(r)),
		zap.String("path", r.URL.Path),
		zap.Int("limit", info.Limit))

	s.jsonResponse(w, http.StatusTooManyRequests, map[string]any{
		"error":       "rate_limit_exceeded",
		"message":     "Rate limit exceeded. Please try again later.",
		"retry_after": retry,
	})
}

// jsonResponse writes a JSON response
func (s *Server) jsonResponse(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		s.logger.Error("failed to encode JSON response", zap.Error(err))
	}
}

// errorResponse writes an error JSON response
func (s *Server) errorResponse(w http.ResponseWriter, status int, message string) {
	s.jsonResponse(w, status, map[string]string{"error": message})
}

// writeError maps err to its status and writes it.
func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := HTTPStatus(err)
	if status >= http.StatusInternalServerError {
		s.logger.Error("request failed",
			zap.String(logging.FieldRequestID, middleware.RequestID(r.Context())),
			zap.Error(err))
	}
	s.errorResponse(w, status, err.Error())
}
