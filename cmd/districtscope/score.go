package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/districtscope/districtscope/internal/ingestion"
	"github.com/districtscope/districtscope/pkg/config"
	"github.com/districtscope/districtscope/pkg/election"
	"github.com/districtscope/districtscope/pkg/pipeline"
	"github.com/districtscope/districtscope/pkg/scoring"
	"github.com/districtscope/districtscope/pkg/surface"
)

const (
	defaultHistoryPath = "public/data/elections.json"
	defaultFilingsPath = "public/data/candidates.json"
	defaultOutputPath  = "public/data/opportunity.json"
)

func newScoreCmd() *cobra.Command {
	var opts scoreOpts

	cmd := &cobra.Command{
		Use:   "score",
		Short: "Score every House and Senate district",
		Long: `Loads the election-history and candidate-filings documents, scores all
districts, writes the opportunity document to each --output path and
renders a summary to stdout.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			return runScore(cmd.Context(), cfg, opts)
		},
	}

	cmd.Flags().StringVar(&opts.historyPath, "history", defaultHistoryPath, "Election-history document")
	cmd.Flags().StringVar(&opts.filingsPath, "filings", defaultFilingsPath, "Candidate-filings document")
	cmd.Flags().StringArrayVar(&opts.outputs, "output", []string{defaultOutputPath}, "Output path (repeatable)")
	cmd.Flags().StringVar(&opts.format, "format", "text", "Stdout format: text, markdown or json")
	cmd.Flags().IntVar(&opts.top, "top", surface.DefaultTop, "Districts listed per chamber in text and markdown output")
	cmd.Flags().IntVar(&opts.workers, "workers", 0, "Scoring workers (default: config, then number of CPUs)")
	cmd.Flags().BoolVar(&opts.publish, "publish", false, "Store inputs and output in the configured run storage")
	cmd.Flags().StringVar(&opts.runID, "run-id", "", "Run ID for --publish (default: random UUID)")

	return cmd
}

type scoreOpts struct {
	historyPath string
	filingsPath string
	outputs     []string
	format      string
	top         int
	workers     int
	publish     bool
	runID       string
}

func runScore(ctx context.Context, cfg *config.Config, opts scoreOpts) error {
	renderer, err := surface.ForFormat(opts.format, opts.top)
	if err != nil {
		return err
	}

	logger := cliLogger()
	engine, err := cfg.Engine(logger)
	if err != nil {
		return err
	}

	fmt.Fprintf(os.Stderr, "Loading election history from %s...\n", opts.historyPath)
	history, err := election.LoadHistory(opts.historyPath)
	if err != nil {
		return err
	}
	fmt.Fprintf(os.Stderr, "Loading candidate filings from %s...\n", opts.filingsPath)
	filings, err := loadFilings(opts.filingsPath)
	if err != nil {
		return err
	}

	workers := opts.workers
	if workers <= 0 {
		workers = cfg.Pipeline.Workers
	}
	driver := pipeline.NewDriver(engine,
		pipeline.WithWorkers(workers),
		pipeline.WithLogger(logger),
	)

	start := time.Now()
	var doc *pipeline.Document
	if opts.publish {
		doc, err = publishRun(ctx, cfg, driver, logger, ingestion.Request{
			RunID:   opts.runID,
			History: history,
			Filings: filings,
		})
	} else {
		doc, err = driver.Run(ctx, history, filings)
	}
	if err != nil {
		return err
	}
	fmt.Fprintf(os.Stderr, "Scored %d districts in %dms\n", len(doc.House)+len(doc.Senate), time.Since(start).Milliseconds())

	for _, path := range opts.outputs {
		if err := election.WriteJSON(path, doc); err != nil {
			return fmt.Errorf("writing output: %w", err)
		}
		fmt.Fprintf(os.Stderr, "Saved %s\n", path)
	}

	printSummary(doc)

	if err := renderer.Render(os.Stdout, doc); err != nil {
		return fmt.Errorf("rendering: %w", err)
	}
	return nil
}

// publishRun scores through the ingestion service so the inputs and output
// land in the configured storage under one run ID.
func publishRun(ctx context.Context, cfg *config.Config, runner ingestion.Runner, logger *slog.Logger, req ingestion.Request) (*pipeline.Document, error) {
	store, err := ingestion.NewStorage(ctx, ingestion.StorageConfig{
		Backend:   cfg.Storage.Backend,
		Path:      cfg.StoragePath(),
		Bucket:    cfg.Storage.Bucket,
		Region:    cfg.Storage.Region,
		Endpoint:  cfg.Storage.Endpoint,
		AccessKey: cfg.Storage.AccessKey,
		SecretKey: cfg.Storage.SecretKey,
	})
	if err != nil {
		return nil, fmt.Errorf("opening storage: %w", err)
	}

	run, err := ingestion.NewService(store, runner, logger).Process(ctx, req)
	if err != nil {
		return nil, err
	}
	fmt.Fprintf(os.Stderr, "Published run %s\n", run.ID)
	return run.Document, nil
}

func printSummary(doc *pipeline.Document) {
	for _, s := range doc.Summarize() {
		fmt.Fprintf(os.Stderr, "%s: %d high, %d emerging, %d build, %d defensive, %d non-competitive, %d need a candidate\n",
			s.Chamber,
			s.Tiers[scoring.TierHighOpportunity],
			s.Tiers[scoring.TierEmerging],
			s.Tiers[scoring.TierBuild],
			s.Tiers[scoring.TierDefensive],
			s.Tiers[scoring.TierNonCompetitive],
			s.NeedsCandidate)
	}
}

// cliLogger surfaces library warnings, such as failing tag rules, on stderr.
func cliLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelWarn}))
}
