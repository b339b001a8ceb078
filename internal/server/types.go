// Package server exposes the postprocessing pipeline over HTTP: a
// single-document endpoint, a batch endpoint with CSV/XLSX export, health,
// and Prometheus metrics.
package server

import (
	"log/slog"
	"net/http"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/veridoc-tech/veridoc/internal/export"
	"github.com/veridoc-tech/veridoc/internal/pipeline"
)

// pipelineInterface defines the methods the server needs from a pipeline.
type pipelineInterface interface {
	Process(doc pipeline.Document) (*pipeline.Result, error)
	ProcessBatch(docs []pipeline.Document) ([]*pipeline.Result, error)
}

// Server holds the HTTP server state and dependencies.
type Server struct {
	pipeline   pipelineInterface
	exporter   *export.Writer
	logger     *slog.Logger
	corsOrigin string
	maxBodyMB  int64
}

// Config holds server configuration.
type Config struct {
	Host           string
	Port           int
	CORSOrigin     string
	MaxBodyMB      int64
	PipelineConfig pipeline.Config
}

// DefaultConfig returns server defaults.
func DefaultConfig() Config {
	return Config{
		Host:           "localhost",
		Port:           8080,
		CORSOrigin:     "*",
		MaxBodyMB:      10,
		PipelineConfig: pipeline.DefaultConfig(),
	}
}

// HealthResponse is the /health payload.
type HealthResponse struct {
	Status  string `json:"status"`
	Version string `json:"version,omitempty"`
	Time    string `json:"time"`
}

// BatchRequest is the /v1/postprocess/batch payload.
type BatchRequest struct {
	Documents []pipeline.Document `json:"documents"`
}

// BatchResponse is the JSON form of a batch result.
type BatchResponse struct {
	Results []*pipeline.Result `json:"results"`
	Count   int                `json:"count"`
	Failed  int                `json:"failed"`
}

// ErrorResponse is the error payload for all endpoints.
type ErrorResponse struct {
	Error string `json:"error"`
}

// NewServer creates a new postprocessing server instance.
func NewServer(config Config, logger *slog.Logger) (*Server, error) {
	if logger == nil {
		logger = slog.Default()
	}

	pl, err := pipeline.NewBuilder().
		WithRefDataDir(config.PipelineConfig.RefDataDir).
		WithWorkers(config.PipelineConfig.Parallel.MaxWorkers).
		WithLogger(logger).
		WithProgressCallback(pipeline.NewLogProgressCallback(logger, slog.LevelDebug).WithInterval(50)).
		Build()
	if err != nil {
		return nil, err
	}

	maxBodyMB := config.MaxBodyMB
	if maxBodyMB <= 0 {
		maxBodyMB = DefaultConfig().MaxBodyMB
	}

	return &Server{
		pipeline:   pl,
		exporter:   export.NewWriter(logger),
		logger:     logger,
		corsOrigin: config.CORSOrigin,
		maxBodyMB:  maxBodyMB,
	}, nil
}

// SetupRoutes configures the HTTP routes.
func (s *Server) SetupRoutes(mux *http.ServeMux) {
	mux.HandleFunc("/health", s.corsMiddleware(s.healthHandler))
	mux.HandleFunc("/v1/postprocess", s.corsMiddleware(s.postprocessHandler))
	mux.HandleFunc("/v1/postprocess/batch", s.corsMiddleware(s.batchHandler))
	mux.Handle("/metrics", promhttp.Handler())
}
