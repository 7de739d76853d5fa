package scoring_test

import (
	"testing"

	"github.com/districtscope/districtscope/pkg/election"
	"github.com/districtscope/districtscope/pkg/scoring"
)

func contested(year int, party string, margin float64) election.ElectionResult {
	return election.ElectionResult{
		Year:   year,
		Winner: election.Candidate{Name: "W", Party: party},
		RunnerUp: &election.Candidate{
			Name:  "R",
			Party: "Other",
		},
		Margin: margin,
	}
}

func uncontested(year int, party string) election.ElectionResult {
	return election.ElectionResult{
		Year:        year,
		Winner:      election.Candidate{Name: "W", Party: party},
		Margin:      100,
		Uncontested: true,
	}
}

func TestAggregate_ZeroContestedRaces(t *testing.T) {
	m := scoring.Aggregate(map[int]election.ElectionResult{
		2020: uncontested(2020, "Republican"),
		2022: uncontested(2022, "Democratic"),
		2024: uncontested(2024, "Republican"),
	})

	if m.Score != 5 {
		t.Errorf("score = %d, want 5", m.Score)
	}
	if m.AvgMargin != 100.0 {
		t.Errorf("avgMargin = %v, want 100", m.AvgMargin)
	}
	if !m.HasSwung {
		t.Error("expected hasSwung with two winning parties")
	}
	if m.DominantParty != nil {
		t.Errorf("dominantParty = %q, want nil", *m.DominantParty)
	}
}

func TestAggregate_OneContestedRaceNoSwing(t *testing.T) {
	m := scoring.Aggregate(map[int]election.ElectionResult{
		2020: uncontested(2020, "Republican"),
		2022: uncontested(2022, "Republican"),
		2024: contested(2024, "Republican", 8),
	})

	// bucket <=10 is 80, minus 20 for a single contested race
	if m.Score != 60 {
		t.Errorf("score = %d, want 60", m.Score)
	}
	if m.ContestedRaces != 1 {
		t.Errorf("contestedRaces = %d, want 1", m.ContestedRaces)
	}
	if m.DominantParty == nil || *m.DominantParty != "Republican" {
		t.Errorf("dominantParty = %v, want Republican", m.DominantParty)
	}
}

func TestAggregate_SwingBonusBeforePenalty(t *testing.T) {
	m := scoring.Aggregate(map[int]election.ElectionResult{
		2022: uncontested(2022, "Democratic"),
		2024: contested(2024, "Republican", 25),
	})

	// 20 (bucket) + 10 (swing) = 30, then -20 = 10.
	// Penalizing first would give max(5, 0) + 10 = 15.
	if m.Score != 10 {
		t.Errorf("score = %d, want 10", m.Score)
	}
}

func TestAggregate_SwingCappedAt100(t *testing.T) {
	m := scoring.Aggregate(map[int]election.ElectionResult{
		2020: contested(2020, "Democratic", 2),
		2022: contested(2022, "Republican", 3),
		2024: contested(2024, "Democratic", 4),
	})
	if m.Score != 100 {
		t.Errorf("score = %d, want 100", m.Score)
	}
}

func TestAggregate_MarginBuckets(t *testing.T) {
	tests := []struct {
		margin float64
		want   int
	}{
		{0, 95},
		{5, 95},
		{5.1, 80},
		{10, 80},
		{15, 60},
		{20, 40},
		{30, 20},
		{30.1, 10},
		{80, 10},
	}

	for _, tt := range tests {
		m := scoring.Aggregate(map[int]election.ElectionResult{
			2022: contested(2022, "Republican", tt.margin),
			2024: contested(2024, "Republican", tt.margin),
		})
		if m.Score != tt.want {
			t.Errorf("avgMargin %v: score = %d, want %d", tt.margin, m.Score, tt.want)
		}
	}
}

func TestAggregate_OnlyThreeMostRecentCycles(t *testing.T) {
	m := scoring.Aggregate(map[int]election.ElectionResult{
		2016: contested(2016, "Democratic", 1),
		2020: contested(2020, "Republican", 40),
		2022: contested(2022, "Republican", 40),
		2024: contested(2024, "Republican", 40),
	})
	if m.HasSwung {
		t.Error("2016 is outside the window and must not count as a swing")
	}
	if m.Score != 10 {
		t.Errorf("score = %d, want 10", m.Score)
	}
	if m.ContestedRaces != 3 {
		t.Errorf("contestedRaces = %d, want 3", m.ContestedRaces)
	}
}

func TestAggregate_RoundsAverageMargin(t *testing.T) {
	m := scoring.Aggregate(map[int]election.ElectionResult{
		2022: contested(2022, "Republican", 3.33),
		2024: contested(2024, "Republican", 3.34),
	})
	if m.AvgMargin != 3.3 {
		t.Errorf("avgMargin = %v, want 3.3", m.AvgMargin)
	}
}

func TestAggregate_NoElections(t *testing.T) {
	m := scoring.Aggregate(nil)
	if m.Score != 5 || m.AvgMargin != 100 || m.ContestedRaces != 0 || m.HasSwung {
		t.Errorf("unexpected metrics for empty history: %+v", m)
	}
}
