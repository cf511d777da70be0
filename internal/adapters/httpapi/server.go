package httpapi

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"github.com/kantai-tool/fleetdeck/internal/adapters/metrics"
	"github.com/kantai-tool/fleetdeck/internal/application/mediator"
	"github.com/kantai-tool/fleetdeck/internal/infrastructure/config"
)

// Server exposes the per-user document store over HTTP
type Server struct {
	cfg      config.ServerConfig
	mediator mediator.Mediator
	logger   *zap.Logger
	metrics  *metrics.Collectors
	router   *mux.Router
}

// NewServer builds the router. collectors may be nil when metrics are disabled.
func NewServer(cfg config.ServerConfig, metricsPath string, m mediator.Mediator, logger *zap.Logger, collectors *metrics.Collectors) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.BodyLimit <= 0 {
		cfg.BodyLimit = config.DefaultBodyLimit
	}
	s := &Server{
		cfg:      cfg,
		mediator: m,
		logger:   logger,
		metrics:  collectors,
	}
	s.router = s.routes(metricsPath)
	return s
}

func (s *Server) routes(metricsPath string) *mux.Router {
	r := mux.NewRouter()
	r.Use(requestIDMiddleware, s.loggingMiddleware, s.metricsMiddleware, s.corsMiddleware)

	if s.metrics.IsEnabled() && metricsPath != "" {
		r.Handle(metricsPath, s.metrics.Handler()).Methods(http.MethodGet)
	}

	api := r.PathPrefix(s.cfg.APIPrefix).Subrouter()
	api.HandleFunc("/healthz", s.handleHealth).Methods(http.MethodGet)
	api.HandleFunc("/login", s.handleLogin).Methods(http.MethodPost, http.MethodOptions)

	doc := "/{kind:" + kindPattern + "}"
	api.Handle(doc, s.tokenMiddleware(http.HandlerFunc(s.handleLoadDocument))).Methods(http.MethodGet)
	api.Handle(doc, s.tokenMiddleware(http.HandlerFunc(s.handleSaveDocument))).Methods(http.MethodPost)
	// preflight; answered by the CORS middleware when enabled
	api.HandleFunc(doc, func(w http.ResponseWriter, r *http.Request) {}).Methods(http.MethodOptions)

	return r
}

// Handler returns the root handler
func (s *Server) Handler() http.Handler {
	return s.router
}

// Run serves until ctx is cancelled, then shuts down gracefully
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.cfg.Address,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("server listening", zap.String("address", s.cfg.Address), zap.String("api_prefix", s.cfg.APIPrefix))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("server failed: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	s.logger.Info("shutting down", zap.Duration("timeout", s.cfg.ShutdownTimeout))
	shutdownCtx, cancel := context.WithTimeout(context.Background(), s.cfg.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("graceful shutdown failed: %w", err)
	}
	return nil
}
