// Package server assembles the gin engine and runs the HTTP server with
// graceful shutdown.
//
// Package server 组装gin引擎并运行支持优雅关闭的HTTP服务器。
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

	"github.com/yourusername/encdec/configs"
	"github.com/yourusername/encdec/internal/handler"
	"github.com/yourusername/encdec/internal/metrics"
	"github.com/yourusername/encdec/internal/middleware"
	"github.com/yourusername/encdec/internal/service"
)

// Server is the encdec HTTP server.
//
// Server 是encdec的HTTP服务器。
type Server struct {
	cfg      configs.ServerConfig
	engine   *gin.Engine
	http     *http.Server
	logger   *slog.Logger
	exporter *metrics.PrometheusExporter
}

// New builds the engine with middleware and routes.
//
// New 构建带有中间件和路由的引擎。
//
// Parameters:
//   - cfg: Complete configuration; Server and Metrics sections are used here
//   - svc: Codec service behind the handlers
//   - m: Metrics collector for the metrics endpoint, may be nil
//   - logger: Request and lifecycle logger
//
// Returns:
//   - *Server: The server, not yet listening
//   - error: An error if the templates cannot be parsed
func New(cfg *configs.Config, svc *service.CodecService, m *metrics.Metrics, logger *slog.Logger) (*Server, error) {
	if logger == nil {
		logger = slog.Default()
	}
	gin.SetMode(cfg.Server.GinMode)

	tmpl, err := handler.Templates()
	if err != nil {
		return nil, fmt.Errorf("parse templates: %w", err)
	}

	engine := gin.New()
	engine.Use(
		middleware.Recovery(logger),
		middleware.RequestLogger(logger),
		middleware.BodyLimit(cfg.Server.MaxBodyBytes),
	)
	engine.SetHTMLTemplate(tmpl)

	s := &Server{
		cfg:    cfg.Server,
		engine: engine,
		logger: logger,
	}

	engine.GET("/healthz", s.health)

	codec := engine.Group("/")
	if m != nil {
		codec.Use(middleware.CodecMetrics(m))
	}
	handler.NewCodecHandler(svc).Register(codec)

	if m != nil && cfg.Metrics.Enable {
		s.exporter = metrics.NewPrometheusExporter(m, "encdec")
		engine.GET(cfg.Metrics.Path, gin.WrapH(s.exporter))
		engine.GET("/api/v1/metrics", func(c *gin.Context) {
			snapshot := m.GetSnapshot()
			if snapshot == nil {
				c.JSON(http.StatusNotFound, gin.H{"error": "metrics disabled"})
				return
			}
			c.JSON(http.StatusOK, snapshot)
		})
	}

	s.http = &http.Server{
		Addr:              cfg.Server.Address,
		Handler:           engine,
		ReadTimeout:       cfg.Server.ReadTimeout,
		ReadHeaderTimeout: cfg.Server.ReadTimeout,
		WriteTimeout:      cfg.Server.WriteTimeout,
	}

	return s, nil
}

// Handler returns the HTTP handler, for tests and embedding.
func (s *Server) Handler() http.Handler {
	return s.engine
}

// Run listens on the configured address and serves until ctx is done.
//
// Run 监听配置的地址并提供服务，直到ctx结束。
func (s *Server) Run(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.cfg.Address)
	if err != nil {
		return fmt.Errorf("listen on %s: %w", s.cfg.Address, err)
	}
	return s.Serve(ctx, ln)
}

// Serve serves on ln until ctx is done, then shuts down gracefully within
// the configured shutdown timeout.
//
// Serve 在ln上提供服务，直到ctx结束，然后在配置的关闭超时内优雅关闭。
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("server listening", "address", ln.Addr().String())
		errCh <- s.http.Serve(ln)
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("serve: %w", err)
	case <-ctx.Done():
	}

	timeout := s.cfg.ShutdownTimeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	shutdownCtx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	s.logger.Info("server shutting down", "timeout", timeout)
	if err := s.http.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	if err := <-errCh; err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("serve: %w", err)
	}
	return nil
}

func (s *Server) health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}
