// Package server exposes the photo ingestion pipeline over HTTP: a
// multipart upload endpoint, a websocket variant with per-stage progress,
// health checks and Prometheus metrics.
package server

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/talkingphoto-ai/ingest/internal/pipeline"
)

// processor is the slice of the pipeline the server depends on.
type processor interface {
	Process(blob pipeline.UploadedBlob) (*pipeline.Result, error)
	ProcessWithProgress(blob pipeline.UploadedBlob, progress pipeline.ProgressFunc) (*pipeline.Result, error)
}

// Server holds the HTTP server state and dependencies.
type Server struct {
	pipeline       processor
	corsOrigin     string
	maxUploadMB    int64
	previewEnabled bool
}

// Config holds server configuration.
type Config struct {
	Host           string
	Port           int
	CORSOrigin     string
	MaxUploadMB    int64
	PreviewEnabled bool
	Pipeline       pipeline.Config
	ModelsDir      string
}

// NewServer builds the ingestion pipeline and wraps it in a server.
func NewServer(config Config) (*Server, error) {
	pl, err := pipeline.NewBuilder().
		WithConfig(config.Pipeline).
		WithModelsDir(config.ModelsDir).
		Build()
	if err != nil {
		return nil, err
	}
	return &Server{
		pipeline:       pl,
		corsOrigin:     config.CORSOrigin,
		maxUploadMB:    config.MaxUploadMB,
		previewEnabled: config.PreviewEnabled,
	}, nil
}

// SetupRoutes configures the HTTP routes.
func (s *Server) SetupRoutes(mux *http.ServeMux) {
	mux.HandleFunc("/health", s.corsMiddleware(s.healthHandler))
	mux.HandleFunc("/tips", s.corsMiddleware(s.tipsHandler))
	mux.HandleFunc("/process", s.corsMiddleware(s.processHandler))
	mux.HandleFunc("/ws/process", s.processWebSocketHandler)
	mux.Handle("/metrics", promhttp.Handler())
}

// Response types for API endpoints.

// HealthResponse reports service liveness.
type HealthResponse struct {
	Status  string `json:"status"`
	Version string `json:"version,omitempty"`
	Time    string `json:"time"`
}

// FaceInfo is the wire form of a face assessment.
type FaceInfo struct {
	Detected   bool    `json:"detected"`
	Count      int     `json:"count"`
	Confidence float64 `json:"confidence"`
	Boxes      [][4]int `json:"boxes,omitempty"` // x, y, w, h
}

// ProcessResponse is the JSON outcome of an upload.
type ProcessResponse struct {
	Success        bool     `json:"success"`
	Width          int      `json:"width,omitempty"`
	Height         int      `json:"height,omitempty"`
	Format         string   `json:"format,omitempty"`
	OriginalSizeMB float64  `json:"original_size_mb,omitempty"`
	FinalSizeMB    float64  `json:"final_size_mb,omitempty"`
	Face           *FaceInfo `json:"face,omitempty"`
	PreviewJPEG    string   `json:"preview_jpeg,omitempty"` // base64, when enabled
	Error          string   `json:"error,omitempty"`
	ErrorType      string   `json:"error_type,omitempty"`
	Tips           []string `json:"tips,omitempty"`
	ProcessingMs   int64    `json:"processing_ms"`
}

// TipsResponse lists the static troubleshooting tables.
type TipsResponse struct {
	General []string            `json:"general"`
	ByKind  map[string][]string `json:"by_kind"`
}
