package scoring_test

import (
	"encoding/json"
	"testing"

	"github.com/districtscope/districtscope/pkg/election"
	"github.com/districtscope/districtscope/pkg/scoring"
)

func newEngine(t *testing.T, opts ...scoring.Option) *scoring.Engine {
	t.Helper()
	e, err := scoring.NewEngine(scoring.Defaults(), opts...)
	if err != nil {
		t.Fatalf("NewEngine: %v", err)
	}
	return e
}

func openSeatInput() scoring.DistrictInput {
	return scoring.DistrictInput{
		Chamber: election.House,
		Number:  17,
		History: election.DistrictHistory{
			Elections: map[int]election.ElectionResult{
				2024: contested(2024, "Republican", 14),
				2022: contested(2022, "Republican", 20),
			},
			Competitiveness: &election.CompetitivenessMetrics{
				Score:          35,
				AvgMargin:      17,
				ContestedRaces: 2,
			},
		},
		Filings: election.DistrictFilings{
			Candidates: []election.CandidateFiling{{Name: "Pat Doe", Party: "Republican"}},
		},
	}
}

func TestEngine_OpenSeatExample(t *testing.T) {
	got := newEngine(t).Score(openSeatInput())

	if got.DistrictNumber != 17 {
		t.Errorf("districtNumber = %d, want 17", got.DistrictNumber)
	}
	if got.OpportunityScore != 64 {
		t.Errorf("opportunityScore = %d, want 64", got.OpportunityScore)
	}
	if got.Tier != scoring.TierEmerging || got.TierLabel != "Emerging" {
		t.Errorf("tier = %s (%s), want EMERGING", got.Tier, got.TierLabel)
	}
	if !got.Flags.NeedsCandidate || !got.Flags.OpenSeat || got.Flags.HasDemocrat || got.Flags.Defensive {
		t.Errorf("unexpected flags %+v", got.Flags)
	}
	if !got.Flags.TrendingDem {
		t.Error("a 6 point shrink should set trendingDem")
	}
	if got.Recommendation != scoring.RecRecruitTarget {
		t.Errorf("recommendation = %q", got.Recommendation)
	}

	want := scoring.Factors{
		Competitiveness:   0.35,
		MarginTrend:       0.6,
		Incumbency:        1,
		CandidatePresence: 0,
		OpenSeatBonus:     true,
	}
	if got.Factors != want {
		t.Errorf("factors = %+v, want %+v", got.Factors, want)
	}
	if got.Metrics.TrendChange != 6 || got.Metrics.AvgMargin != 17 || got.Metrics.CompetitivenessScore != 35 {
		t.Errorf("unexpected metrics %+v", got.Metrics)
	}
	if got.Tags != nil {
		t.Errorf("tags = %v, want nil without a tagger", got.Tags)
	}
}

func TestEngine_DemocraticIncumbentIsDefensive(t *testing.T) {
	in := scoring.DistrictInput{
		Chamber: election.Senate,
		Number:  3,
		Filings: election.DistrictFilings{
			Incumbent: &election.Incumbent{Name: "Dana Black", Party: "Democratic"},
		},
	}

	got := newEngine(t).Score(in)
	if got.Tier != scoring.TierDefensive {
		t.Errorf("tier = %s, want DEFENSIVE", got.Tier)
	}
	if got.OpportunityScore < 60 {
		t.Errorf("opportunityScore = %d, want >= 60", got.OpportunityScore)
	}
	if !got.Flags.Defensive {
		t.Error("expected defensive flag")
	}
	if got.Recommendation != scoring.RecProtectSeat {
		t.Errorf("recommendation = %q", got.Recommendation)
	}
}

func TestEngine_AbsentDistrictUsesDefaults(t *testing.T) {
	got := newEngine(t).Score(scoring.DistrictInput{Chamber: election.House, Number: 99})

	if got.Metrics.CompetitivenessScore != 5 || got.Metrics.AvgMargin != 100 {
		t.Errorf("unexpected metrics %+v", got.Metrics)
	}
	if got.Factors.MarginTrend != 0.5 {
		t.Errorf("marginTrend = %v, want neutral 0.5", got.Factors.MarginTrend)
	}
	if !got.Flags.OpenSeat {
		t.Error("no incumbent record means open seat")
	}
	if got.Metrics.TrendWindow != nil {
		t.Error("no trend window expected without elections")
	}
	// 0.4*0.05 + 0.25*0.5 + 0.15 + 0.10 = 0.395
	if got.OpportunityScore < 39 || got.OpportunityScore > 40 {
		t.Errorf("opportunityScore = %d, want 39 or 40", got.OpportunityScore)
	}
	if got.Tier != scoring.TierBuild || got.Recommendation != scoring.RecLongTerm {
		t.Errorf("tier = %s, recommendation = %q", got.Tier, got.Recommendation)
	}
	if got.Flags.NeedsCandidate {
		t.Error("needsCandidate is only set at EMERGING or above")
	}
}

func TestEngine_RoundsTiesToEven(t *testing.T) {
	in := scoring.DistrictInput{
		Chamber: election.House,
		Number:  8,
		History: election.DistrictHistory{
			Elections: map[int]election.ElectionResult{
				2024: contested(2024, "Republican", 27.5),
				2022: contested(2022, "Republican", 5),
			},
			Competitiveness: &election.CompetitivenessMetrics{Score: 60, AvgMargin: 3.25, ContestedRaces: 2},
		},
	}
	got := newEngine(t).Score(in)

	// (30 - 22.5) / 60 = 0.125
	if got.Factors.MarginTrend != 0.12 {
		t.Errorf("marginTrend = %v, want 0.12", got.Factors.MarginTrend)
	}
	if got.Metrics.AvgMargin != 3.2 {
		t.Errorf("avgMargin = %v, want 3.2", got.Metrics.AvgMargin)
	}
	if got.Metrics.TrendChange != -22.5 {
		t.Errorf("trendChange = %v, want -22.5", got.Metrics.TrendChange)
	}
}

func TestEngine_NamelessIncumbentRecord(t *testing.T) {
	tests := []struct {
		filings  string
		openSeat bool
	}{
		{`{"candidates": [{"name": "Pat Doe", "party": "Republican"}], "incumbent": {}}`, true},
		{`{"candidates": [{"name": "Pat Doe", "party": "Republican"}], "incumbent": {"name": "", "party": ""}}`, false},
		{`{"candidates": [], "incumbent": {"name": "", "party": "Republican"}}`, true},
	}
	for _, tt := range tests {
		var f election.DistrictFilings
		if err := json.Unmarshal([]byte(tt.filings), &f); err != nil {
			t.Fatalf("%s: %v", tt.filings, err)
		}
		in := openSeatInput()
		in.Filings = f
		got := newEngine(t).Score(in)
		if got.Flags.OpenSeat != tt.openSeat {
			t.Errorf("%s: openSeat = %v, want %v", tt.filings, got.Flags.OpenSeat, tt.openSeat)
		}
	}
}

func TestEngine_RecomputeIgnoresStoredMetrics(t *testing.T) {
	in := openSeatInput()

	// margins 14 and 20 average 17: bucket 40, no swing
	got := newEngine(t, scoring.WithRecompute(true)).Score(in)
	if got.Metrics.CompetitivenessScore != 40 {
		t.Errorf("competitivenessScore = %d, want 40", got.Metrics.CompetitivenessScore)
	}

	got = newEngine(t).Score(in)
	if got.Metrics.CompetitivenessScore != 35 {
		t.Errorf("competitivenessScore = %d, want stored 35", got.Metrics.CompetitivenessScore)
	}
}

type recordingTagger struct {
	facts []scoring.Facts
}

func (r *recordingTagger) Tags(f scoring.Facts) []string {
	r.facts = append(r.facts, f)
	if f.OpenSeat && f.NeedsCandidate {
		return []string{"recruit-open"}
	}
	return nil
}

func TestEngine_Tagger(t *testing.T) {
	tagger := &recordingTagger{}
	got := newEngine(t, scoring.WithTagger(tagger)).Score(openSeatInput())

	if len(got.Tags) != 1 || got.Tags[0] != "recruit-open" {
		t.Errorf("tags = %v", got.Tags)
	}
	if len(tagger.facts) != 1 {
		t.Fatalf("tagger called %d times, want 1", len(tagger.facts))
	}
	f := tagger.facts[0]
	if f.Chamber != election.House || f.District != 17 || f.OpportunityScore != 64 || f.Tier != scoring.TierEmerging {
		t.Errorf("unexpected facts %+v", f)
	}
}

func TestEngine_TokenMatcher(t *testing.T) {
	in := scoring.DistrictInput{
		Chamber: election.House,
		Number:  8,
		Filings: election.DistrictFilings{
			Candidates: []election.CandidateFiling{{Name: "Leeman", Party: "Republican"}},
			Incumbent:  &election.Incumbent{Name: "Lee", Party: "Republican"},
		},
	}

	if got := newEngine(t).Score(in); got.Flags.OpenSeat {
		t.Error("substring matcher should treat Leeman as the incumbent")
	}
	if got := newEngine(t, scoring.WithMatcher(scoring.TokenMatcher{})).Score(in); !got.Flags.OpenSeat {
		t.Error("token matcher should report an open seat")
	}
}

func TestNewEngine_RejectsInvalidConfig(t *testing.T) {
	cfg := scoring.Defaults()
	cfg.Weights.Competitiveness = 0.9
	if _, err := scoring.NewEngine(cfg); err == nil {
		t.Error("expected error for weights that do not sum to 1")
	}
}
