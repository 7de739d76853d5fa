// Package api implements the districtscope REST API.
// It scores submitted input documents and serves stored runs.
package api

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/districtscope/districtscope/internal/ingestion"
)

// Handler is the top-level API handler for the districtscope service.
type Handler struct {
	ingestionSvc *ingestion.Service
	cache        DocumentCache
	logger       *slog.Logger
}

// NewHandler creates a new API handler. A nil cache uses an in-memory LRU
// sized from RUN_CACHE_SIZE.
func NewHandler(ingestionSvc *ingestion.Service, cache DocumentCache, logger *slog.Logger) *Handler {
	if cache == nil {
		cache = NewMemoryCacheFromEnv()
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{
		ingestionSvc: ingestionSvc,
		cache:        cache,
		logger:       logger,
	}
}

// RegisterRoutes registers all API routes on the given ServeMux.
func (h *Handler) RegisterRoutes(mux *http.ServeMux) {
	// Write endpoints (auth-protected)
	mux.HandleFunc("POST /api/v1/runs", h.handleCreateRun)

	// Read endpoints
	mux.HandleFunc("GET /api/v1/runs/{runID}", h.handleGetRun)
	mux.HandleFunc("GET /api/v1/runs/{runID}/summary", h.handleRunSummary)
	mux.HandleFunc("GET /api/v1/runs/{runID}/{chamber}", h.handleRankedChamber)
	mux.HandleFunc("GET /api/v1/runs/{runID}/{chamber}/{district}", h.handleGetDistrict)
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	_ = enc.Encode(data)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
