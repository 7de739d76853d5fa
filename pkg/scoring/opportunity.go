package scoring

// ScoreInputs are the per-district facts the opportunity scorer consumes.
type ScoreInputs struct {
	CompetitivenessScore int     // 0-100
	TrendFactor          float64 // 0-1
	OpenSeat             bool
	HasDemocrat          bool
	DemIncumbent         bool
}

// Scorer computes the weighted opportunity score.
type Scorer struct {
	cfg Config
}

// NewScorer creates a Scorer bound to cfg.
func NewScorer(cfg Config) *Scorer {
	return &Scorer{cfg: cfg}
}

// Factors returns the normalized factor values for in.
func (s *Scorer) Factors(in ScoreInputs) Factors {
	incumbency := 0.5
	if in.OpenSeat {
		incumbency = 1.0
	}
	var candidate float64
	if in.HasDemocrat {
		candidate = 1.0
	}
	return Factors{
		Competitiveness:   float64(in.CompetitivenessScore) / 100.0,
		MarginTrend:       in.TrendFactor,
		Incumbency:        incumbency,
		CandidatePresence: candidate,
		OpenSeatBonus:     in.OpenSeat,
	}
}

// Raw returns the weighted sum, scaled to 0-100, before overrides.
func (s *Scorer) Raw(f Factors) float64 {
	w := s.cfg.Weights
	var openSeat float64
	if f.OpenSeatBonus {
		openSeat = 1.0
	}
	return (w.Competitiveness*f.Competitiveness +
		w.MarginTrend*f.MarginTrend +
		w.Incumbency*f.Incumbency +
		w.Candidate*f.CandidatePresence +
		w.OpenSeat*openSeat) * 100
}

// Score returns the final integer score and the factors it was built from.
// Overrides run in a fixed order: open-seat bonus, defensive floor, then
// rounding and clamping.
func (s *Scorer) Score(in ScoreInputs) (int, Factors) {
	f := s.Factors(in)
	raw := s.Raw(f)

	if in.OpenSeat && in.CompetitivenessScore > s.cfg.OpenSeatMinCompetitiveness {
		raw = min(100, raw+s.cfg.OpenSeatBonus)
	}
	if in.DemIncumbent {
		raw = max(s.cfg.DefensiveFloor, raw)
	}

	return roundScore(raw), f
}
