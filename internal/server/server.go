// Package server assembles the Echo application and manages its lifecycle.
package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/labstack/echo/v4"
	echoMiddleware "github.com/labstack/echo/v4/middleware"
	"golang.org/x/sync/errgroup"

	"github.com/dishpatch/dishpatch/internal/config"
	"github.com/dishpatch/dishpatch/internal/handler"
	"github.com/dishpatch/dishpatch/internal/middleware"
)

// Server wraps the Echo instance together with its runtime configuration.
type Server struct {
	echo *echo.Echo
	cfg  config.ServerConfig
	log  *slog.Logger
}

// New builds the Echo application: middleware chain and routes.
func New(cfg config.ServerConfig, searchHandler *handler.SearchHandler, log *slog.Logger) *Server {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	e.Use(middleware.RequestID())
	e.Use(middleware.Logging(log))
	e.Use(echoMiddleware.Recover())
	e.Use(echoMiddleware.CORS())

	e.GET("/health", searchHandler.Health)
	e.POST("/search-image", searchHandler.SearchImage)
	e.POST("/search-caption", searchHandler.SearchCaption)

	return &Server{
		echo: e,
		cfg:  cfg,
		log:  log.With("component", "http_server"),
	}
}

// Run starts the HTTP listener and blocks until the context is canceled or
// the listener fails. Cancellation triggers a graceful shutdown bounded by
// the configured timeout.
func (s *Server) Run(ctx context.Context) error {
	g, gCtx := errgroup.WithContext(ctx)

	g.Go(func() error {
		s.log.Info("Starting HTTP listener", "port", s.cfg.Port)

		err := s.echo.Start(fmt.Sprintf(":%d", s.cfg.Port))
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http listener failed: %w", err)
		}

		return nil
	})

	g.Go(func() error {
		<-gCtx.Done()
		s.log.Info("Shutdown signal received, stopping HTTP server...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), s.cfg.ShutdownTimeout)
		defer cancel()

		if err := s.echo.Shutdown(shutdownCtx); err != nil {
			s.log.Error("Graceful shutdown failed", "error", err)
			return fmt.Errorf("graceful shutdown failed: %w", err)
		}

		return nil
	})

	err := g.Wait()
	if err != nil && !errors.Is(err, context.Canceled) {
		return err
	}

	s.log.Info("HTTP server stopped gracefully.")

	return nil
}
