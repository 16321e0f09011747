package web

import (
	"context"
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"rmp-dashboard/models"
	"rmp-dashboard/services"
	"rmp-dashboard/utils"
)

//go:embed static
var staticFiles embed.FS

// Config holds the server configuration
type Config struct {
	Addr            string
	EnableMetrics   bool
	EnableCORS      bool
	TopTags         int
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	IdleTimeout     time.Duration
	ShutdownTimeout time.Duration

	// MaxHistogramBins bounds the bins query parameter.
	MaxHistogramBins int
}

// DefaultConfig returns a default server configuration
func DefaultConfig() Config {
	return Config{
		Addr:             "localhost:8080",
		EnableMetrics:    true,
		TopTags:          15,
		ReadTimeout:      15 * time.Second,
		WriteTimeout:     30 * time.Second,
		IdleTimeout:      60 * time.Second,
		ShutdownTimeout:  10 * time.Second,
		MaxHistogramBins: 100,
	}
}

// Server serves the dashboard page and the derived views as JSON. The
// dataset is loaded before the server is built and is read-only here.
type Server struct {
	cfg       Config
	dataset   *models.Dataset
	dashboard *services.DashboardService
	fragment  string
	logger    *utils.Logger
	registry  *prometheus.Registry
	metrics   *Metrics
	server    *http.Server
}

// New creates a Server. fragment is the pre-loaded secondary HTML
// document; an empty string is served when it could not be read.
func New(cfg Config, ds *models.Dataset, dashboard *services.DashboardService, fragment string, logger *utils.Logger) *Server {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	metrics := NewMetrics(reg)
	metrics.records.Set(float64(ds.Len()))
	dashboard.Observe(metrics.ObserveView)

	return &Server{
		cfg:       cfg,
		dataset:   ds,
		dashboard: dashboard,
		fragment:  fragment,
		logger:    logger,
		registry:  reg,
		metrics:   metrics,
	}
}

// Handler builds the router.
func (s *Server) Handler() http.Handler {
	router := mux.NewRouter()
	router.Use(s.loggingMiddleware)
	if s.cfg.EnableCORS {
		router.Use(s.corsMiddleware)
	}

	api := router.PathPrefix("/api/v1").Subrouter()
	api.HandleFunc("/colleges", s.listColleges).Methods(http.MethodGet)
	api.HandleFunc("/dashboard", s.getDashboard).Methods(http.MethodGet)
	api.HandleFunc("/tags", s.getTags).Methods(http.MethodGet)
	api.HandleFunc("/heatmap", s.getHeatmap).Methods(http.MethodGet)
	api.HandleFunc("/histogram", s.getHistogram).Methods(http.MethodGet)
	api.HandleFunc("/scatter", s.getScatter).Methods(http.MethodGet)
	api.HandleFunc("/wordcloud", s.getWordCloud).Methods(http.MethodGet)
	api.HandleFunc("/comments", s.getComments).Methods(http.MethodGet)
	api.HandleFunc("/sentiment", s.getSentiment).Methods(http.MethodGet)
	api.HandleFunc("/fragments/sentiment", s.getSentimentFragment).Methods(http.MethodGet)

	if s.cfg.EnableMetrics {
		router.Handle("/metrics", promhttp.HandlerFor(s.registry, promhttp.HandlerOpts{}))
	}
	router.HandleFunc("/health", s.healthCheck)

	static, err := fs.Sub(staticFiles, "static")
	if err != nil {
		// The embed directive guarantees the directory exists.
		panic(err)
	}
	router.PathPrefix("/").Handler(http.FileServer(http.FS(static)))

	return router
}

// Start serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) Start(ctx context.Context) error {
	s.server = &http.Server{
		Addr:         s.cfg.Addr,
		Handler:      s.Handler(),
		ReadTimeout:  s.cfg.ReadTimeout,
		WriteTimeout: s.cfg.WriteTimeout,
		IdleTimeout:  s.cfg.IdleTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("[web] Listening on http://%s", s.cfg.Addr)
		if err := s.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err, ok := <-errCh:
		if ok {
			return fmt.Errorf("web: listen: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	s.logger.Info("[web] Shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), s.cfg.ShutdownTimeout)
	defer cancel()
	if err := s.server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("web: shutdown: %w", err)
	}
	return nil
}
