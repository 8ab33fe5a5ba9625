// Package api exposes the ingestion and query pipelines over HTTP:
// document upload, question answering, registry listing, health and
// metrics endpoints.
package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/docent-labs/docent/internal/core/domain"
	"github.com/docent-labs/docent/internal/core/ports/driving"
	"github.com/docent-labs/docent/internal/logger"
)

// Config holds HTTP server configuration.
type Config struct {
	// Addr is the listen address.
	Addr string

	// MaxUploadBytes caps accepted upload size.
	MaxUploadBytes int64
}

// Ports aggregates the driving ports the API serves.
type Ports struct {
	// Ingest feeds uploads into the vector index.
	Ingest driving.IngestService

	// Answer answers questions from the indexed corpus.
	Answer driving.AnswerService

	// Documents exposes the ingestion registry. Optional.
	Documents driving.DocumentService
}

// Validate ensures the required ports are set.
func (p *Ports) Validate() error {
	if p.Ingest == nil {
		return errors.New("api: ingest service is required")
	}
	if p.Answer == nil {
		return errors.New("api: answer service is required")
	}
	return nil
}

// Server is the HTTP API server.
type Server struct {
	echo  *echo.Echo
	ports *Ports
	cfg   Config
}

// NewServer creates the API server and wires up routes and middleware.
func NewServer(ports *Ports, cfg Config) (*Server, error) {
	if err := ports.Validate(); err != nil {
		return nil, err
	}
	if cfg.Addr == "" {
		cfg.Addr = domain.DefaultServerAddr
	}
	if cfg.MaxUploadBytes <= 0 {
		cfg.MaxUploadBytes = domain.DefaultMaxUploadBytes
	}

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Use(middleware.Recover())
	e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins: []string{"*"},
		AllowMethods: []string{http.MethodGet, http.MethodPost, http.MethodDelete, http.MethodOptions},
		AllowHeaders: []string{"Content-Type"},
	}))
	e.HTTPErrorHandler = errorHandler

	s := &Server{echo: e, ports: ports, cfg: cfg}

	e.GET("/healthz", s.handleHealth)
	e.GET("/metrics", echo.WrapHandler(promhttp.Handler()))

	apiGroup := e.Group("/api")
	apiGroup.POST("/documents", s.handleUpload)
	apiGroup.GET("/documents", s.handleListDocuments)
	apiGroup.POST("/ask", s.handleAsk)

	return s, nil
}

// Start runs the server until the context is cancelled.
func (s *Server) Start(ctx context.Context) error {
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := s.echo.Shutdown(shutdownCtx); err != nil {
			logger.Warn("HTTP shutdown: %v", err)
		}
	}()

	err := s.echo.Start(s.cfg.Addr)
	if errors.Is(err, http.ErrServerClosed) {
		return nil
	}
	return err
}

// Handler returns the underlying HTTP handler. Useful for tests.
func (s *Server) Handler() http.Handler {
	return s.echo
}

// errorHandler renders every error as a JSON body and maps the error
// taxonomy to status codes: invalid input is the caller's fault,
// upstream and parse failures are a bad gateway, unconfigured services
// are unavailable.
func errorHandler(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}

	code := statusFor(err)
	msg := err.Error()
	var he *echo.HTTPError
	if errors.As(err, &he) {
		code = he.Code
		if he.Message != nil {
			msg = fmt.Sprint(he.Message)
		}
	}

	logger.Debug("HTTP %d %s %s: %v", code, c.Request().Method, c.Request().URL.Path, err)
	if err := c.JSON(code, map[string]string{"error": msg}); err != nil {
		logger.Warn("HTTP error response failed: %v", err)
	}
}

// statusFor maps domain errors to HTTP status codes.
func statusFor(err error) int {
	switch {
	case errors.Is(err, domain.ErrInvalidInput), errors.Is(err, domain.ErrNoExtractableText):
		return http.StatusBadRequest
	case errors.Is(err, domain.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, domain.ErrEmbeddingUnavailable),
		errors.Is(err, domain.ErrVectorIndexUnavailable),
		errors.Is(err, domain.ErrGenerationUnavailable):
		return http.StatusServiceUnavailable
	case domain.IsUpstream(err):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}
