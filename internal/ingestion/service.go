package ingestion

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/districtscope/districtscope/pkg/election"
	"github.com/districtscope/districtscope/pkg/pipeline"
)

// Runner abstracts the pipeline driver so the ingestion package does not
// depend on a concrete implementation.
type Runner interface {
	Run(ctx context.Context, history *election.HistoryDocument, filings *election.FilingsDocument) (*pipeline.Document, error)
}

// Request describes what to score.
type Request struct {
	// RunID is optional; a random UUID is assigned when empty.
	RunID   string
	History *election.HistoryDocument
	Filings *election.FilingsDocument
}

// Run is a completed, stored scoring run.
type Run struct {
	ID       string             `json:"id"`
	Document *pipeline.Document `json:"document"`
}

// Service orchestrates a run: store inputs, score, store the result.
type Service struct {
	storage StorageClient
	runner  Runner
	logger  *slog.Logger
}

// NewService creates a new ingestion Service.
func NewService(storage StorageClient, runner Runner, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		storage: storage,
		runner:  runner,
		logger:  logger,
	}
}

// Process runs the full pipeline for one pair of input documents.
func (s *Service) Process(ctx context.Context, req Request) (*Run, error) {
	runID := req.RunID
	if runID == "" {
		runID = uuid.NewString()
	}
	logger := s.logger.With("run_id", runID)

	// 1. Store inputs
	if req.History != nil {
		if err := s.putJSON(ctx, runID, KindHistory, req.History); err != nil {
			return nil, fmt.Errorf("store history: %w", err)
		}
	}
	if req.Filings != nil {
		if err := s.putJSON(ctx, runID, KindFilings, req.Filings); err != nil {
			return nil, fmt.Errorf("store filings: %w", err)
		}
	}

	// 2. Score
	start := time.Now()
	doc, err := s.runner.Run(ctx, req.History, req.Filings)
	if err != nil {
		return nil, fmt.Errorf("score: %w", err)
	}

	// 3. Store output
	if err := s.putJSON(ctx, runID, KindOpportunity, doc); err != nil {
		return nil, fmt.Errorf("store opportunity document: %w", err)
	}

	logger.Info("run completed",
		"house", len(doc.House),
		"senate", len(doc.Senate),
		"duration_ms", time.Since(start).Milliseconds())
	return &Run{ID: runID, Document: doc}, nil
}

// Document loads the opportunity document of a stored run. A missing run
// yields an error wrapping ErrNotFound.
func (s *Service) Document(ctx context.Context, runID string) (*pipeline.Document, error) {
	data, err := s.storage.Get(ctx, runID, KindOpportunity)
	if err != nil {
		return nil, fmt.Errorf("load run %s: %w", runID, err)
	}
	var doc pipeline.Document
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("unmarshal run %s: %w", runID, err)
	}
	return &doc, nil
}

func (s *Service) putJSON(ctx context.Context, runID string, kind Kind, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("marshal %s: %w", kind, err)
	}
	if err := s.storage.Put(ctx, runID, kind, data); err != nil {
		return fmt.Errorf("put %s blob: %w", kind, err)
	}
	return nil
}
