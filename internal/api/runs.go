package api

import (
	"compress/gzip"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"

	"github.com/districtscope/districtscope/internal/ingestion"
	"github.com/districtscope/districtscope/pkg/election"
	"github.com/districtscope/districtscope/pkg/pipeline"
)

// maxBodyBytes bounds POST /api/v1/runs request bodies after decompression.
const maxBodyBytes = 64 << 20

// createRunRequest is the JSON body for POST /api/v1/runs.
type createRunRequest struct {
	History *election.HistoryDocument `json:"history"`
	Filings *election.FilingsDocument `json:"filings"`
}

func (h *Handler) handleCreateRun(w http.ResponseWriter, r *http.Request) {
	// Support gzip-compressed request bodies
	var body io.Reader = r.Body
	if r.Header.Get("Content-Encoding") == "gzip" {
		gz, err := gzip.NewReader(r.Body)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid gzip body: "+err.Error())
			return
		}
		defer gz.Close()
		body = gz
	}

	var req createRunRequest
	if err := json.NewDecoder(io.LimitReader(body, maxBodyBytes)).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}
	if req.History == nil {
		writeError(w, http.StatusBadRequest, "history is required")
		return
	}

	run, err := h.ingestionSvc.Process(r.Context(), ingestion.Request{
		History: req.History,
		Filings: req.Filings,
	})
	if err != nil {
		h.logger.Error("run failed", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to score run: "+err.Error())
		return
	}

	h.cache.Put(r.Context(), run.ID, run.Document)
	writeJSON(w, http.StatusCreated, run)
}

// loadDocument loads a run's document, checking the cache first,
// then falling back to storage.
func (h *Handler) loadDocument(ctx context.Context, runID string) (*pipeline.Document, error) {
	if doc, ok := h.cache.Get(ctx, runID); ok {
		return doc, nil
	}

	doc, err := h.ingestionSvc.Document(ctx, runID)
	if err != nil {
		return nil, err
	}

	h.cache.Put(ctx, runID, doc)
	return doc, nil
}

// writeLoadError maps a loadDocument error to a response.
func (h *Handler) writeLoadError(w http.ResponseWriter, runID string, err error) {
	if errors.Is(err, ingestion.ErrNotFound) {
		writeError(w, http.StatusNotFound, "run not found")
		return
	}
	h.logger.Error("load run failed", "run_id", runID, "error", err)
	writeError(w, http.StatusInternalServerError, "failed to load run")
}

func (h *Handler) handleGetRun(w http.ResponseWriter, r *http.Request) {
	runID := r.PathValue("runID")

	doc, err := h.loadDocument(r.Context(), runID)
	if err != nil {
		h.writeLoadError(w, runID, err)
		return
	}

	writeJSON(w, http.StatusOK, doc)
}

func (h *Handler) handleRunSummary(w http.ResponseWriter, r *http.Request) {
	runID := r.PathValue("runID")

	doc, err := h.loadDocument(r.Context(), runID)
	if err != nil {
		h.writeLoadError(w, runID, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"lastUpdated": doc.LastUpdated,
		"chambers":    doc.Summarize(),
	})
}

// handleRankedChamber lists a chamber's districts by descending score.
// ?limit=N truncates the list.
func (h *Handler) handleRankedChamber(w http.ResponseWriter, r *http.Request) {
	runID := r.PathValue("runID")
	chamber, ok := election.ParseChamber(r.PathValue("chamber"))
	if !ok {
		writeError(w, http.StatusBadRequest, "chamber must be house or senate")
		return
	}

	limit := 0
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			writeError(w, http.StatusBadRequest, "limit must be a non-negative integer")
			return
		}
		limit = n
	}

	doc, err := h.loadDocument(r.Context(), runID)
	if err != nil {
		h.writeLoadError(w, runID, err)
		return
	}

	ranked := doc.Ranked(chamber)
	if limit > 0 && limit < len(ranked) {
		ranked = ranked[:limit]
	}
	writeJSON(w, http.StatusOK, ranked)
}

func (h *Handler) handleGetDistrict(w http.ResponseWriter, r *http.Request) {
	runID := r.PathValue("runID")
	chamber, ok := election.ParseChamber(r.PathValue("chamber"))
	if !ok {
		writeError(w, http.StatusBadRequest, "chamber must be house or senate")
		return
	}
	district, err := strconv.Atoi(r.PathValue("district"))
	if err != nil || district < 1 || district > chamber.Districts() {
		writeError(w, http.StatusBadRequest, "district out of range for "+string(chamber))
		return
	}

	doc, err := h.loadDocument(r.Context(), runID)
	if err != nil {
		h.writeLoadError(w, runID, err)
		return
	}

	score, ok := doc.District(chamber, district)
	if !ok {
		writeError(w, http.StatusNotFound, "district not found")
		return
	}
	writeJSON(w, http.StatusOK, score)
}
