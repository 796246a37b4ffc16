package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"bugdaily/internal/core"
	"bugdaily/internal/features/reports"
	"bugdaily/internal/features/reports/services"
	"bugdaily/internal/server/handlers"
)

type Server struct {
	config   *core.Config
	logger   *core.Logger
	db       *core.Database
	registry *core.Registry
	handler  http.Handler
	server   *http.Server
}

// Option customises a Server
type Option func(*serverOptions)

type serverOptions struct {
	clock services.Clock
}

// WithClock overrides the clock used to resolve time windows
func WithClock(clock services.Clock) Option {
	return func(o *serverOptions) {
		o.clock = clock
	}
}

// New builds the server around an already opened pool. The pool stays owned
// by the caller until Run returns, at which point it is closed.
func New(config *core.Config, logger *core.Logger, db *core.Database, opts ...Option) (*Server, error) {
	var o serverOptions
	for _, opt := range opts {
		opt(&o)
	}

	registry := core.NewRegistry(logger)

	if config.IsFeatureEnabled("reports") {
		feature := reports.NewFeature(logger, db, reports.NewConfig(config), o.clock)
		if err := registry.Register(feature); err != nil {
			return nil, err
		}
	}

	srv := &Server{
		config:   config,
		logger:   logger,
		db:       db,
		registry: registry,
	}
	srv.setupRoutes()

	return srv, nil
}

func (s *Server) setupRoutes() {
	healthHandler := handlers.NewHealthHandler(s.logger, s.db, s.registry)

	mux := chi.NewRouter()

	mux.Use(middleware.Recoverer)
	mux.Use(middleware.RequestID)
	mux.Use(middleware.RealIP)
	mux.Use(middleware.Logger)
	mux.Use(publicCORS())

	mux.Get("/health", healthHandler.HealthCheck)
	mux.NotFound(func(w http.ResponseWriter, r *http.Request) {
		core.HandleError(w, core.NewNotFoundError("route not found: "+r.URL.Path, nil))
	})

	for _, route := range s.registry.GetAllRoutes() {
		mux.Method(route.Method, route.Path, route.Handler)
	}

	s.handler = mux
	s.server = &http.Server{
		Addr:    fmt.Sprintf("%s:%d", s.config.Server.Host, s.config.Server.Port),
		Handler: mux,
	}
}

// Handler returns the root HTTP handler
func (s *Server) Handler() http.Handler {
	return s.handler
}

// Init initializes all registered features
func (s *Server) Init(ctx context.Context) error {
	return s.registry.InitAll(ctx)
}

// Run initializes features, serves until ctx is cancelled, then shuts down
func (s *Server) Run(ctx context.Context) error {
	if err := s.Init(ctx); err != nil {
		s.logger.Error("Failed to initialize features", "error", err)
		s.db.Close()
		return err
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("Starting server", "host", s.config.Server.Host, "port", s.config.Server.Port)
		if err := s.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err, ok := <-errCh:
		if ok {
			s.db.Close()
			return fmt.Errorf("http server failed: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), s.config.Server.ShutdownTimeout)
	defer cancel()
	return s.Shutdown(shutdownCtx)
}

// Shutdown stops the HTTP server, the features and finally the pool
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("Shutting down server...")

	httpErr := s.server.Shutdown(ctx)
	s.registry.ShutdownAll(ctx)
	s.db.LogStats()
	dbErr := s.db.Close()

	if httpErr != nil {
		return fmt.Errorf("failed to shutdown HTTP server: %w", httpErr)
	}
	return dbErr
}
