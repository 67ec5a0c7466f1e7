// Package server exposes document analysis over HTTP.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/ppiankov/clauserisk/internal/metrics"
	"github.com/ppiankov/clauserisk/internal/model"
	"github.com/ppiankov/clauserisk/internal/pipeline"
)

// Analyzer runs analyses and reports provider readiness
type Analyzer interface {
	AnalyzeDocument(ctx context.Context, doc *pipeline.Document) (*model.AnalysisResult, error)
	Ready(ctx context.Context) error
}

// Handler serves the analysis API
type Handler struct {
	analyzer Analyzer
	metrics  *metrics.Metrics
	logger   *zap.Logger
	maxBody  int64
	timeout  time.Duration
	version  string
	startAt  time.Time
}

// NewHandler creates a new Handler. A nil metrics disables /metrics.
func NewHandler(analyzer Analyzer, cfg model.ServerConfig, m *metrics.Metrics, logger *zap.Logger, version string) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{
		analyzer: analyzer,
		metrics:  m,
		logger:   logger,
		maxBody:  cfg.MaxBodyBytes,
		timeout:  cfg.RequestTimeout,
		version:  version,
		startAt:  time.Now(),
	}
}

// RegisterRoutes registers the API routes on mux
func (h *Handler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("POST /v1/analyze", h.Analyze)
	mux.HandleFunc("GET /healthz", h.Liveness)
	mux.HandleFunc("GET /readyz", h.Readiness)
	if h.metrics != nil {
		mux.Handle("GET /metrics", promhttp.HandlerFor(h.metrics.Registry(), promhttp.HandlerOpts{
			ErrorLog: zap.NewStdLog(h.logger),
		}))
	}
}

// Routes returns the routed handler wrapped in request logging
func (h *Handler) Routes() http.Handler {
	mux := http.NewServeMux()
	h.RegisterRoutes(mux)
	return RequestLogging(h.logger, mux)
}

// ErrorResponse is the error response body
type ErrorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// LivenessResponse is the response for GET /healthz
type LivenessResponse struct {
	Status  string `json:"status"`
	Version string `json:"version"`
	Uptime  string `json:"uptime"`
}

// Analyze handles POST /v1/analyze. The body is the document; its
// Content-Type selects plain text or HTML.
func (h *Handler) Analyze(w http.ResponseWriter, r *http.Request) {
	body := http.MaxBytesReader(w, r.Body, h.maxBody)
	data, err := io.ReadAll(body)
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeError(w, http.StatusRequestEntityTooLarge, err)
			return
		}
		writeError(w, http.StatusBadRequest, err)
		return
	}

	doc, err := pipeline.Decode("request", data, pipeline.FormatFromContentType(r.Header.Get("Content-Type")))
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	ctx := r.Context()
	if h.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, h.timeout)
		defer cancel()
	}

	result, err := h.analyzer.AnalyzeDocument(ctx, doc)
	if err != nil {
		writeError(w, statusFor(err), err)
		return
	}

	writeJSON(w, http.StatusOK, result)
}

// Liveness handles GET /healthz. Always 200 while the process runs.
func (h *Handler) Liveness(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, LivenessResponse{
		Status:  "alive",
		Version: h.version,
		Uptime:  time.Since(h.startAt).Truncate(time.Second).String(),
	})
}

// Readiness handles GET /readyz: 503 while the embedding provider is unreachable
func (h *Handler) Readiness(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	if err := h.analyzer.Ready(ctx); err != nil {
		writeError(w, http.StatusServiceUnavailable, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ready"})
}

// statusFor maps analysis errors to HTTP status codes
func statusFor(err error) int {
	switch {
	case errors.Is(err, pipeline.ErrInput):
		return http.StatusBadRequest
	case errors.Is(err, pipeline.ErrModelUnavailable):
		return http.StatusServiceUnavailable
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout
	}
	return http.StatusInternalServerError
}

// writeJSON writes a JSON response with the given status code
func writeJSON(w http.ResponseWriter, statusCode int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	if data != nil {
		_ = json.NewEncoder(w).Encode(data)
	}
}

// writeError writes a structured error response
func writeError(w http.ResponseWriter, statusCode int, err error) {
	writeJSON(w, statusCode, ErrorResponse{
		Code:    http.StatusText(statusCode),
		Message: err.Error(),
	})
}
