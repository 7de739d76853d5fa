// Package pipeline runs the scoring engine over every district of both
// chambers and assembles the opportunity document.
package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"runtime"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/districtscope/districtscope/pkg/election"
	"github.com/districtscope/districtscope/pkg/scoring"
)

// Driver scores all districts. A Driver holds no per-run state and may be
// reused.
type Driver struct {
	engine  *scoring.Engine
	workers int
	now     func() time.Time
	logger  *slog.Logger
}

// Option configures a Driver.
type Option func(*Driver)

// WithWorkers bounds the number of districts scored concurrently.
// Values below 1 use runtime.NumCPU().
func WithWorkers(n int) Option {
	return func(d *Driver) { d.workers = n }
}

// WithClock overrides the time source used for lastUpdated.
func WithClock(now func() time.Time) Option {
	return func(d *Driver) { d.now = now }
}

// WithLogger sets the logger. nil uses slog.Default().
func WithLogger(l *slog.Logger) Option {
	return func(d *Driver) { d.logger = l }
}

// NewDriver creates a Driver around engine.
func NewDriver(engine *scoring.Engine, opts ...Option) *Driver {
	d := &Driver{engine: engine, now: time.Now}
	for _, opt := range opts {
		opt(d)
	}
	if d.workers < 1 {
		d.workers = runtime.NumCPU()
	}
	if d.logger == nil {
		d.logger = slog.Default()
	}
	if d.now == nil {
		d.now = time.Now
	}
	return d
}

// Run scores House districts 1-124 and Senate districts 1-46. Districts
// missing from either input are scored from defaults. nil documents are
// treated as empty. The only error is ctx cancellation.
func (d *Driver) Run(ctx context.Context, history *election.HistoryDocument, filings *election.FilingsDocument) (*Document, error) {
	if history == nil {
		history = &election.HistoryDocument{}
	}
	if filings == nil {
		filings = &election.FilingsDocument{}
	}

	start := d.now()
	results := make(map[election.Chamber][]scoring.OpportunityScore, len(election.Chambers))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(d.workers)

	for _, c := range election.Chambers {
		n := c.Districts()
		out := make([]scoring.OpportunityScore, n)
		results[c] = out
		cycles := history.CycleYears(c)

		for num := 1; num <= n; num++ {
			if gctx.Err() != nil {
				break
			}
			hist, _ := history.District(c, num)
			fil, _ := filings.District(c, num)
			in := scoring.DistrictInput{
				Chamber: c,
				Number:  num,
				History: hist,
				Filings: fil,
				Cycles:  cycles,
			}
			g.Go(func() error {
				if err := gctx.Err(); err != nil {
					return err
				}
				out[num-1] = d.engine.Score(in)
				return nil
			})
		}
	}

	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("scoring districts: %w", err)
	}
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("scoring districts: %w", err)
	}

	doc := &Document{
		LastUpdated: election.FormatTimestamp(d.now()),
		House:       toScores(results[election.House]),
		Senate:      toScores(results[election.Senate]),
	}

	for _, s := range doc.Summarize() {
		d.logger.Info("chamber scored",
			"chamber", s.Chamber,
			"districts", s.Districts,
			"high_opportunity", s.Tiers[scoring.TierHighOpportunity],
			"emerging", s.Tiers[scoring.TierEmerging],
			"build", s.Tiers[scoring.TierBuild],
			"defensive", s.Tiers[scoring.TierDefensive],
			"non_competitive", s.Tiers[scoring.TierNonCompetitive],
			"needs_candidate", s.NeedsCandidate)
	}
	d.logger.Debug("pipeline finished", "duration", d.now().Sub(start))

	return doc, nil
}

func toScores(list []scoring.OpportunityScore) DistrictScores {
	out := make(DistrictScores, len(list))
	for _, s := range list {
		out[election.DistrictKey(s.DistrictNumber)] = s
	}
	return out
}
