// Package server exposes the moderation engine over HTTP.
package server

import (
	"context"
	"net/http"
	"time"

	"github.com/Yhangokk/vidnav/internal/common/config"
	"github.com/Yhangokk/vidnav/internal/common/database"
	apperrors "github.com/Yhangokk/vidnav/internal/common/errors"
	"github.com/Yhangokk/vidnav/internal/common/logger"
	"github.com/Yhangokk/vidnav/internal/common/observability"
	"github.com/Yhangokk/vidnav/internal/moderation"

	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type Server struct {
	cfg          *config.Config
	engine       *moderation.Engine
	redis        *database.RedisClient
	logger       logger.Logger
	obs          *observability.Observability
	errorHandler *apperrors.ErrorHandler
	httpServer   *http.Server
}

// New builds the server and its routing table. redis may be nil when the
// publish channel is not configured; /healthz then skips the ping.
func New(cfg *config.Config, engine *moderation.Engine, redis *database.RedisClient, obs *observability.Observability, log logger.Logger) *Server {
	s := &Server{
		cfg:          cfg,
		engine:       engine,
		redis:        redis,
		logger:       log,
		obs:          obs,
		errorHandler: apperrors.NewErrorHandler(log),
	}

	mux := http.NewServeMux()
	mux.HandleFunc("POST /submissions", s.withInstrumentation("/submissions", s.handleSubmit))
	mux.HandleFunc("GET /submissions", s.withInstrumentation("/submissions", s.handleList))
	mux.HandleFunc("GET /submissions/{number}", s.withInstrumentation("/submissions/{number}", s.handleGet))
	mux.HandleFunc("PATCH /submissions/{number}", s.withInstrumentation("/submissions/{number}", s.handleModerate))
	mux.HandleFunc("GET /healthz", s.handleHealth)
	mux.Handle("GET /metrics", promhttp.Handler())

	s.httpServer = &http.Server{
		Addr:         cfg.Server.Addr(),
		Handler:      mux,
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Millisecond,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Millisecond,
	}

	return s
}

// Handler exposes the routing table for tests.
func (s *Server) Handler() http.Handler {
	return s.httpServer.Handler
}

func (s *Server) Start() error {
	s.logger.Info("http server listening", map[string]interface{}{
		"addr": s.httpServer.Addr,
	})
	return s.httpServer.ListenAndServe()
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}
