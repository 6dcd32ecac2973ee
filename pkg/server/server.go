package server

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/goldthwaiteeverette61/football-app-sub000/internal/config"
	"github.com/goldthwaiteeverette61/football-app-sub000/pkg/handlers/health"
	"github.com/goldthwaiteeverette61/football-app-sub000/pkg/handlers/scheme"
	"github.com/goldthwaiteeverette61/football-app-sub000/pkg/handlers/settlements"
	"github.com/goldthwaiteeverette61/football-app-sub000/pkg/handlers/stream"
	"github.com/goldthwaiteeverette61/football-app-sub000/pkg/logger"
	"github.com/goldthwaiteeverette61/football-app-sub000/pkg/metrics"
	"github.com/goldthwaiteeverette61/football-app-sub000/pkg/middleware"
	"github.com/goldthwaiteeverette61/football-app-sub000/pkg/services"
	"github.com/goldthwaiteeverette61/football-app-sub000/pkg/store"
)

// Server represents the API server
type Server struct {
	router   *http.ServeMux
	http     *http.Server
	logger   *logger.Logger
	handlers struct {
		health      *health.Handler
		scheme      *scheme.Handler
		settlements *settlements.Handler
	}
	hub *stream.Hub
}

// New creates a new server instance over already opened dependencies
func New(cfg *config.Config, svc *services.SchemeService, st store.Store, hub *stream.Hub, log *logger.Logger) *Server {
	s := &Server{
		router: http.NewServeMux(),
		logger: log,
		hub:    hub,
	}

	s.handlers.health = health.NewHandler(st, log)
	s.handlers.scheme = scheme.NewHandler(svc, log)
	s.handlers.settlements = settlements.NewHandler(st, log)

	s.setupRoutes()

	s.http = &http.Server{
		Addr:              net.JoinHostPort(cfg.Server.Host, cfg.Server.Port),
		Handler:           middleware.RequestID(log, s.router),
		ReadHeaderTimeout: 10 * time.Second,
	}
	return s
}

// Handler exposes the routed handler for tests
func (s *Server) Handler() http.Handler {
	return s.http.Handler
}

func (s *Server) setupRoutes() {
	s.router.HandleFunc("/health", middleware.CORS(s.handlers.health.HealthCheck))
	s.router.Handle("/metrics", metrics.Handler())

	s.router.HandleFunc("/api/scheme", middleware.CORS(middleware.Method(http.MethodGet, s.handlers.scheme.Get)))
	s.router.HandleFunc("/api/scheme/refresh", middleware.CORS(middleware.Method(http.MethodPost, s.handlers.scheme.Refresh)))
	s.router.HandleFunc("/api/scheme/follow-check", middleware.CORS(middleware.Method(http.MethodGet, s.handlers.scheme.FollowCheck)))
	s.router.HandleFunc("/api/settlements", middleware.CORS(middleware.Method(http.MethodGet, s.handlers.settlements.List)))

	if s.hub != nil {
		s.router.Handle("/api/stream", s.hub)
	}
}

// Start serves until Shutdown is called
func (s *Server) Start() error {
	s.logger.Info().
		Str("action", "server_start").
		Str("addr", s.http.Addr).
		Msg("Starting API server")

	if err := s.http.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("server failed on %s: %w", s.http.Addr, err)
	}
	return nil
}

// Shutdown stops accepting requests and disconnects stream clients
func (s *Server) Shutdown(ctx context.Context) error {
	if s.hub != nil {
		s.hub.Close()
	}
	return s.http.Shutdown(ctx)
}
