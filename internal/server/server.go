// Package server exposes the translation registry as a read-only JSON API.
package server

import (
	"context"
	"errors"
	"log/slog"
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/FocuswithJustin/bibleloader/core/cache"
	"github.com/FocuswithJustin/bibleloader/internal/config"
	"github.com/FocuswithJustin/bibleloader/internal/loader"
	"github.com/FocuswithJustin/bibleloader/internal/logging"
	"github.com/FocuswithJustin/bibleloader/internal/metrics"
)

// Server serves the API for one registry.
type Server struct {
	cfg      *config.Config
	registry *loader.Registry
	cache    *cache.SearchCache // nil when caching is disabled
	limiter  *RateLimiter       // nil when rate limiting is disabled
	metrics  *metrics.Metrics
	logger   *slog.Logger
	version  string
	started  time.Time
}

// Option configures a Server.
type Option func(*Server)

// WithMetrics records request and cache metrics and serves the scrape
// endpoint at cfg.Metrics.Path.
func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Server) { s.metrics = m }
}

// WithLogger sets the server logger.
func WithLogger(l *slog.Logger) Option {
	return func(s *Server) { s.logger = l }
}

// WithVersion sets the version reported by /health.
func WithVersion(v string) Option {
	return func(s *Server) { s.version = v }
}

// New returns a Server over reg.
func New(cfg *config.Config, reg *loader.Registry, opts ...Option) *Server {
	s := &Server{
		cfg:      cfg,
		registry: reg,
		logger:   logging.Component("server"),
		version:  "dev",
		started:  time.Now(),
	}
	for _, opt := range opts {
		opt(s)
	}
	if cfg.Search.CacheSize > 0 {
		s.cache = cache.NewSearchCache(cache.Config{
			MaxSize: cfg.Search.CacheSize,
			TTL:     cfg.Search.CacheTTL,
		})
	}
	if rl := cfg.Server.RateLimit; rl.RequestsPerMinute > 0 {
		s.limiter = NewRateLimiter(RateLimiterConfig{
			RequestsPerMinute: rl.RequestsPerMinute,
			BurstSize:         rl.Burst,
		})
	}
	return s
}

// Handler returns the routed handler with the full middleware chain.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(s.metrics.Middleware)
	if s.limiter != nil {
		r.Use(s.limiter.Middleware)
	}
	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		respondError(w, http.StatusNotFound, codeNotFound, "endpoint not found")
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		respondError(w, http.StatusMethodNotAllowed, codeBadRequest, r.Method+" not allowed")
	})

	r.Get("/health", s.handleHealth)
	if s.metrics != nil && s.cfg.Metrics.Enabled {
		r.Method(http.MethodGet, s.cfg.Metrics.Path, s.metrics.Handler())
	}

	r.Route("/api/translations", func(r chi.Router) {
		r.Get("/", s.handleTranslations)
		r.Post("/preload", s.handlePreload)
		r.Route("/{id}", func(r chi.Router) {
			r.Get("/", s.handleTranslation)
			r.Delete("/", s.handleUnload)
			r.Get("/books", s.handleBooks)
			r.Get("/books/{book}", s.handleBook)
			r.Get("/books/{book}/chapters/{chapter}", s.handleChapter)
			r.Get("/books/{book}/chapters/{chapter}/verses/{verse}", s.handleVerse)
			r.Get("/passage", s.handlePassage)
			r.Get("/search", s.handleSearch)
		})
	})

	var h http.Handler = r
	h = SecurityHeaders(APICSPConfig(), h)
	h = CORSMiddleware(CORSConfig{AllowedOrigins: s.cfg.CORS.AllowedOrigins}, h)
	return logging.CombinedMiddleware(h)
}

// Run serves on cfg.Server.Addr until ctx is cancelled, then shuts down
// gracefully within cfg.Server.ShutdownTimeout.
func (s *Server) Run(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.cfg.Server.Addr())
	if err != nil {
		return err
	}
	return s.Serve(ctx, ln)
}

// Serve is Run on an existing listener.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	srv := &http.Server{
		Handler:      s.Handler(),
		ReadTimeout:  s.cfg.Server.ReadTimeout,
		WriteTimeout: s.cfg.Server.WriteTimeout,
		ErrorLog:     slog.NewLogLogger(s.logger.Handler(), slog.LevelWarn),
	}

	port := s.cfg.Server.Port
	if addr, ok := ln.Addr().(*net.TCPAddr); ok {
		port = addr.Port
	}
	logging.ServerStartup("api", "http", port,
		"addr", ln.Addr().String(),
		"metrics", s.metrics != nil && s.cfg.Metrics.Enabled,
		"search_cache", s.cfg.Search.CacheSize,
		"rate_limit", s.cfg.Server.RateLimit.RequestsPerMinute)

	if s.limiter != nil {
		limiterCtx, stop := context.WithCancel(ctx)
		defer stop()
		go s.limiter.Run(limiterCtx)
	}

	errc := make(chan error, 1)
	go func() { errc <- srv.Serve(ln) }()

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
	}

	s.logger.Info("shutting down", "timeout", s.cfg.Server.ShutdownTimeout.String())
	shutdownCtx, cancel := context.WithTimeout(context.Background(), s.cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	if err := <-errc; err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// searchLimit resolves the limit query parameter.
func (s *Server) searchLimit(raw string) (int, bool) {
	if raw == "" {
		return s.cfg.Search.DefaultLimit, true
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n <= 0 {
		return 0, false
	}
	return min(n, s.cfg.Search.MaxLimit), true
}
