// SPDX-FileCopyrightText: Winni Neessen <wn@neessen.dev>
//
// SPDX-License-Identifier: MIT

// Package server exposes the installer search over HTTP.
package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/wneessen/installer-finder/internal/logger"
	"github.com/wneessen/installer-finder/internal/matching"
)

// Searcher finds installers near an address.
type Searcher interface {
	Search(ctx context.Context, address string, maxDistanceKm *float64) (*matching.Result, error)
}

// Options configures the HTTP server.
type Options struct {
	Listen          string
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	ShutdownTimeout time.Duration
}

type Server struct {
	searcher Searcher
	logger   *logger.Logger
	options  Options
	router   *gin.Engine
}

func New(searcher Searcher, log *logger.Logger, options Options) *Server {
	router := gin.New()
	router.Use(gin.Recovery(), requestLogger(log))

	srv := &Server{
		searcher: searcher,
		logger:   log,
		options:  options,
		router:   router,
	}
	router.GET("/health", srv.health)
	api := router.Group("/api/v1")
	{
		api.GET("/installers/nearby", srv.nearbyInstallers)
	}

	return srv
}

// Handler returns the HTTP handler of the server.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Serve listens on the configured address and serves requests until ctx is cancelled. The
// server is then shut down gracefully.
func (s *Server) Serve(ctx context.Context) error {
	listener, err := net.Listen("tcp", s.options.Listen)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", s.options.Listen, err)
	}
	return s.ServeListener(ctx, listener)
}

// ServeListener is like Serve but accepts connections on an existing listener.
func (s *Server) ServeListener(ctx context.Context, listener net.Listener) error {
	httpServer := &http.Server{
		Handler:           s.router,
		ReadTimeout:       s.options.ReadTimeout,
		ReadHeaderTimeout: s.options.ReadTimeout,
		WriteTimeout:      s.options.WriteTimeout,
		BaseContext:       func(net.Listener) context.Context { return ctx },
	}

	errChan := make(chan error, 1)
	go func() {
		s.logger.Info("starting HTTP server", slog.String("listen", listener.Addr().String()))
		if err := httpServer.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errChan <- err
		}
		close(errChan)
	}()

	select {
	case err := <-errChan:
		if err != nil {
			return fmt.Errorf("HTTP server failed: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	s.logger.Info("shutting down HTTP server")
	shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.options.ShutdownTimeout)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("failed to shut down HTTP server: %w", err)
	}
	return nil
}

func requestLogger(log *logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		log.Debug("handled HTTP request", slog.String("method", c.Request.Method),
			slog.String("path", c.FullPath()), slog.Int("status", c.Writer.Status()),
			slog.Duration("duration", time.Since(start)))
	}
}
