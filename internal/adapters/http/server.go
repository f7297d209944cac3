// Package http serves the local quote API over Gin: routing, middleware
// order and the graceful server lifecycle.
package http

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/jsamuelsen/quote-rotator/internal/platform/config"
)

// readHeaderTimeout bounds slow clients before a handler runs.
const readHeaderTimeout = 5 * time.Second

// Server owns the Gin engine and the http.Server that serves it.
type Server struct {
	engine     *gin.Engine
	httpServer *http.Server
	config     *config.ServerConfig
	logger     *slog.Logger

	mu    sync.RWMutex
	bound string
}

// New creates a server for cfg. Routes are added through Engine.
func New(cfg *config.ServerConfig, logger *slog.Logger) *Server {
	gin.SetMode(gin.ReleaseMode)

	engine := gin.New()
	engine.Use(maxBodySize(cfg.MaxRequestSize))

	return &Server{
		engine: engine,
		httpServer: &http.Server{
			Addr:              cfg.Addr(),
			Handler:           engine,
			ReadHeaderTimeout: readHeaderTimeout,
			ReadTimeout:       cfg.ReadTimeout,
			WriteTimeout:      cfg.WriteTimeout,
			IdleTimeout:       cfg.IdleTimeout,
			ErrorLog:          slog.NewLogLogger(logger.Handler(), slog.LevelWarn),
		},
		config: cfg,
		logger: logger,
	}
}

// Engine returns the underlying Gin engine for route registration.
func (s *Server) Engine() *gin.Engine {
	return s.engine
}

// Config returns the server configuration.
func (s *Server) Config() *config.ServerConfig {
	return s.config
}

// Start binds the configured address and serves in the background. Bind
// errors, such as a second daemon holding the port, are returned directly.
// The channel receives a serve error, if any, and is closed when serving
// stops.
func (s *Server) Start() (<-chan error, error) {
	ln, err := net.Listen("tcp", s.httpServer.Addr)
	if err != nil {
		return nil, fmt.Errorf("listen on %s: %w", s.httpServer.Addr, err)
	}

	return s.Serve(ln), nil
}

// Serve serves on ln in the background. See Start.
func (s *Server) Serve(ln net.Listener) <-chan error {
	s.mu.Lock()
	s.bound = ln.Addr().String()
	s.mu.Unlock()

	errCh := make(chan error, 1)

	s.logger.Info("quote API listening",
		slog.String("addr", s.bound),
		slog.String("url", "http://"+s.bound+"/api/v1/quote"),
	)

	go func() {
		defer close(errCh)

		if err := s.httpServer.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- fmt.Errorf("http server error: %w", err)
		}
	}()

	return errCh
}

// Shutdown stops accepting connections and waits, bounded by ctx, for
// active requests. Hijacked websocket connections are not waited for; the
// stream hub closes them.
func (s *Server) Shutdown(ctx context.Context) error {
	start := time.Now()

	if err := s.httpServer.Shutdown(ctx); err != nil {
		return fmt.Errorf("http server shutdown: %w", err)
	}

	s.logger.Info("quote API stopped", slog.Duration("took", time.Since(start)))

	return nil
}

// Addr returns the bound address once serving, the configured one before.
func (s *Server) Addr() string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.bound != "" {
		return s.bound
	}

	return s.httpServer.Addr
}

// maxBodySize caps request bodies at maxBytes. Zero disables the cap.
func maxBodySize(maxBytes int64) gin.HandlerFunc {
	return func(c *gin.Context) {
		if maxBytes > 0 && c.Request.Body != nil {
			c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxBytes)
		}

		c.Next()
	}
}
