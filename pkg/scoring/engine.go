package scoring

import (
	"fmt"

	"github.com/districtscope/districtscope/pkg/election"
)

// Facts is the flattened view of a scored district handed to a Tagger.
type Facts struct {
	Chamber              election.Chamber
	District             int
	OpportunityScore     int
	CompetitivenessScore int
	AvgMargin            float64
	TrendChange          float64
	TrendFactor          float64
	ContestedRaces       int
	HasSwung             bool
	OpenSeat             bool
	HasDemocrat          bool
	Defensive            bool
	NeedsCandidate       bool
	Tier                 Tier
}

// Tagger attaches free-form tags to a scored district.
type Tagger interface {
	Tags(f Facts) []string
}

// DistrictInput is the per-district bundle the Engine scores.
type DistrictInput struct {
	Chamber election.Chamber
	Number  int
	History election.DistrictHistory
	Filings election.DistrictFilings

	// Cycles are the election years the history document covers; used only
	// to flag sparse trend windows.
	Cycles []int
}

// Engine scores districts. It holds no mutable state and is safe for
// concurrent use.
type Engine struct {
	cfg       Config
	scorer    *Scorer
	matcher   NameMatcher
	tagger    Tagger
	recompute bool
}

// Option configures an Engine.
type Option func(*Engine)

// WithMatcher sets the incumbent name-matching strategy.
func WithMatcher(m NameMatcher) Option {
	return func(e *Engine) { e.matcher = m }
}

// WithTagger sets the Tagger run after classification.
func WithTagger(t Tagger) Option {
	return func(e *Engine) { e.tagger = t }
}

// WithRecompute makes the Engine derive competitiveness from the election
// history instead of trusting the document's precomputed metrics.
func WithRecompute(on bool) Option {
	return func(e *Engine) { e.recompute = on }
}

// NewEngine creates a scoring engine. It returns an error if cfg is invalid.
func NewEngine(cfg Config, opts ...Option) (*Engine, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid scoring config: %w", err)
	}
	e := &Engine{
		cfg:     cfg,
		scorer:  NewScorer(cfg),
		matcher: SubstringMatcher{},
	}
	for _, opt := range opts {
		opt(e)
	}
	if e.matcher == nil {
		e.matcher = SubstringMatcher{}
	}
	return e, nil
}

// Config returns the engine's scoring configuration.
func (e *Engine) Config() Config {
	return e.cfg
}

// Score computes the OpportunityScore for one district. It never fails:
// missing data falls back to minimal-data defaults.
func (e *Engine) Score(in DistrictInput) OpportunityScore {
	metrics := in.History.Metrics()
	if e.recompute && len(in.History.Elections) > 0 {
		metrics = Aggregate(in.History.Elections)
	}

	trend := EstimateTrend(in.History.Elections, in.Cycles)
	status := ResolveStatus(in.Filings.Candidates, in.Filings.CurrentIncumbent(), e.matcher)

	final, factors := e.scorer.Score(ScoreInputs{
		CompetitivenessScore: metrics.Score,
		TrendFactor:          trend.Factor,
		OpenSeat:             status.OpenSeat,
		HasDemocrat:          status.HasDemocrat,
		DemIncumbent:         status.DemIncumbent,
	})

	tier := ClassifyTier(final, status.DemIncumbent, e.cfg.Thresholds)

	result := OpportunityScore{
		DistrictNumber:   in.Number,
		OpportunityScore: final,
		Tier:             tier,
		TierLabel:        tier.Label(),
		Factors: Factors{
			Competitiveness:   Round(factors.Competitiveness, 2),
			MarginTrend:       Round(factors.MarginTrend, 2),
			Incumbency:        Round(factors.Incumbency, 2),
			CandidatePresence: Round(factors.CandidatePresence, 2),
			OpenSeatBonus:     factors.OpenSeatBonus,
		},
		Metrics: Metrics{
			AvgMargin:            Round(metrics.AvgMargin, 1),
			TrendChange:          Round(trend.Change, 1),
			CompetitivenessScore: metrics.Score,
			TrendWindow:          trend.Window,
		},
		Flags: Flags{
			NeedsCandidate: !status.HasDemocrat && final >= e.cfg.Thresholds.Emerging,
			OpenSeat:       status.OpenSeat,
			TrendingDem:    trend.Change > e.cfg.TrendingThreshold,
			Defensive:      status.DemIncumbent,
			HasDemocrat:    status.HasDemocrat,
		},
		Recommendation: Recommend(tier, status.HasDemocrat, status.OpenSeat),
	}

	if e.tagger != nil {
		result.Tags = e.tagger.Tags(Facts{
			Chamber:              in.Chamber,
			District:             in.Number,
			OpportunityScore:     final,
			CompetitivenessScore: metrics.Score,
			AvgMargin:            metrics.AvgMargin,
			TrendChange:          trend.Change,
			TrendFactor:          trend.Factor,
			ContestedRaces:       metrics.ContestedRaces,
			HasSwung:             metrics.HasSwung,
			OpenSeat:             status.OpenSeat,
			HasDemocrat:          status.HasDemocrat,
			Defensive:            status.DemIncumbent,
			NeedsCandidate:       result.Flags.NeedsCandidate,
			Tier:                 tier,
		})
	}

	return result
}
