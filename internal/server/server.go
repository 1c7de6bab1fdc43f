// Package server exposes the importer over HTTP so a storefront back office
// can push product batches without shelling out to the CLI.
package server

import (
	"context"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"go.uber.org/zap"

	"github.com/medkadi/boutik-scrap/internal/importer"
)

// ImportRequest is the POST /api/products/import payload. SkipExisting and
// DownloadImages default to true when omitted, so they are pointers.
type ImportRequest struct {
	Products       []map[string]any `json:"products"`
	DryRun         bool             `json:"dry_run"`
	SkipExisting   *bool            `json:"skip_existing"`
	DownloadImages *bool            `json:"download_images"`
	SourceSite     string           `json:"source_site"`
}

// Server wires the importer into an echo app.
type Server struct {
	echo     *echo.Echo
	importer *importer.Importer
	log      *zap.Logger
}

func New(imp *importer.Importer, log *zap.Logger) *Server {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Use(middleware.Recover())
	e.Use(requestLogger(log))

	s := &Server{echo: e, importer: imp, log: log}

	e.GET("/healthz", s.health)
	e.POST("/api/products/import", s.importProducts)
	return s
}

// Start blocks serving on addr until Shutdown or a listener error.
func (s *Server) Start(addr string) error {
	return s.echo.Start(addr)
}

// Handler exposes the underlying mux for tests.
func (s *Server) Handler() http.Handler {
	return s.echo
}

// Shutdown drains in-flight requests and stops the listener.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.echo.Shutdown(ctx)
}

func (s *Server) health(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
}

// importProducts runs a batch and always answers 200 with a summary; only a
// malformed payload yields 400. Per-record failures are data, not transport
// errors.
func (s *Server) importProducts(c echo.Context) error {
	var req ImportRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid payload: " + err.Error()})
	}

	opts := importer.Options{
		DryRun:         req.DryRun,
		SkipExisting:   true,
		DownloadImages: true,
		SourceSite:     req.SourceSite,
	}
	if req.SkipExisting != nil {
		opts.SkipExisting = *req.SkipExisting
	}
	if req.DownloadImages != nil {
		opts.DownloadImages = *req.DownloadImages
	}

	sum := s.importer.Run(c.Request().Context(), req.Products, opts)
	return c.JSON(http.StatusOK, sum)
}

func requestLogger(log *zap.Logger) echo.MiddlewareFunc {
	return middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		LogURI:    true,
		LogStatus: true,
		LogMethod: true,
		LogValuesFunc: func(c echo.Context, v middleware.RequestLoggerValues) error {
			log.Info("request",
				zap.String("method", v.Method),
				zap.String("uri", v.URI),
				zap.Int("status", v.Status))
			return nil
		},
	})
}
