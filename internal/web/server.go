// Package web serves the dashboard page, the upload endpoint and the monitoring routes.
package web

import (
	"context"
	"embed"
	"html/template"
	"log/slog"
	"net/http"
	"time"

	"github.com/UnknownOlympus/meridian/internal/geofilter"
	"github.com/UnknownOlympus/meridian/internal/metrics"
	"github.com/UnknownOlympus/meridian/internal/models"
	"github.com/UnknownOlympus/meridian/internal/repository"
	"github.com/UnknownOlympus/meridian/internal/service"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/time/rate"
)

//go:embed templates/index.html
var templates embed.FS

var pageTemplate = template.Must(
	template.New("index.html").Funcs(template.FuncMap{
		"dataURI": func(uri string) template.URL { return template.URL(uri) },
	}).ParseFS(templates, "templates/index.html"),
)

// Renderer runs the dashboard pipeline for one upload and selection.
type Renderer interface {
	Render(ctx context.Context, upload models.Upload, sel geofilter.Selection) (*service.Dashboard, error)
}

// Options configures the HTTP server.
type Options struct {
	Addr           string // Addr is the listen address, e.g. ":8080".
	Title          string // Title is the page heading.
	MaxUploadBytes int64  // MaxUploadBytes limits the multipart request body.
	UploadRate     int    // UploadRate is the accepted uploads per second, 0 means unlimited.
}

// Server exposes the dashboard, upload, health and metrics endpoints.
type Server struct {
	httpServer *http.Server
	logger     *slog.Logger
	repo       repository.Interface
	renderer   Renderer
	metrics    *metrics.Metrics
	title      string
	maxUpload  int64
	limiter    *rate.Limiter
}

// NewServer creates an HTTP server with /, /upload, /healthz and /metrics routes.
func NewServer(
	opts Options,
	repo repository.Interface,
	renderer Renderer,
	reg *prometheus.Registry,
	appMetrics *metrics.Metrics,
	logger *slog.Logger,
) *Server {
	mux := http.NewServeMux()

	limiter := rate.NewLimiter(rate.Inf, 0)
	if opts.UploadRate > 0 {
		limiter = rate.NewLimiter(rate.Limit(opts.UploadRate), opts.UploadRate)
	}

	s := &Server{
		httpServer: &http.Server{
			Addr:              opts.Addr,
			Handler:           mux,
			ReadHeaderTimeout: 10 * time.Second,
			ReadTimeout:       5 * time.Minute,
			WriteTimeout:      5 * time.Minute,
			IdleTimeout:       60 * time.Second,
		},
		logger:    logger,
		repo:      repo,
		renderer:  renderer,
		metrics:   appMetrics,
		title:     opts.Title,
		maxUpload: opts.MaxUploadBytes,
		limiter:   limiter,
	}

	mux.HandleFunc("GET /{$}", s.handleIndex)
	mux.HandleFunc("POST /upload", s.handleUpload)
	mux.HandleFunc("GET /healthz", s.handleHealth)
	mux.Handle("GET /metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))

	return s
}

// Start begins listening. Returns http.ErrServerClosed on graceful shutdown.
func (s *Server) Start() error {
	s.logger.Info("http server starting", "addr", s.httpServer.Addr)
	return s.httpServer.ListenAndServe()
}

// Shutdown gracefully drains connections within the given context deadline.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}

// ServeHTTP delegates to the underlying handler, useful for testing.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.httpServer.Handler.ServeHTTP(w, r)
}
