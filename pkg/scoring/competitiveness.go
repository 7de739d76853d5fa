package scoring

import (
	"github.com/districtscope/districtscope/pkg/election"
)

// marginBucket maps an average margin ceiling to a base competitiveness score.
type marginBucket struct {
	maxMargin float64
	score     int
}

// Checked in order; the first bucket whose ceiling is >= avgMargin wins.
var marginBuckets = []marginBucket{
	{5, 95},
	{10, 80},
	{15, 60},
	{20, 40},
	{30, 20},
}

const (
	fallbackBucketScore  = 10
	swingBonus           = 10
	singleContestPenalty = 20
	minCompetitiveness   = election.DefaultScore
)

// Aggregate reduces a district's elections to CompetitivenessMetrics using the
// three most recent cycles.
func Aggregate(elections map[int]election.ElectionResult) election.CompetitivenessMetrics {
	return AggregateWindow(election.Recent(elections, election.RecentCycles))
}

// AggregateWindow computes CompetitivenessMetrics over an already-windowed
// set of results.
func AggregateWindow(w election.Window) election.CompetitivenessMetrics {
	var (
		margins []float64
		parties []string
		seen    = make(map[string]bool)
	)

	for _, r := range w {
		if r.Contested() {
			margins = append(margins, r.Margin)
		}
		if p := r.Winner.Party; p != "" && !seen[p] {
			seen[p] = true
			parties = append(parties, p)
		}
	}

	avgMargin := election.UncontestedMargin
	if len(margins) > 0 {
		var sum float64
		for _, m := range margins {
			sum += m
		}
		avgMargin = sum / float64(len(margins))
	}

	hasSwung := len(parties) > 1

	score := fallbackBucketScore
	for _, b := range marginBuckets {
		if avgMargin <= b.maxMargin {
			score = b.score
			break
		}
	}

	// Swing bonus first; the contested-race penalty works on the post-bonus value.
	if hasSwung {
		score = min(100, score+swingBonus)
	}
	switch len(margins) {
	case 0:
		score = minCompetitiveness
	case 1:
		score = max(minCompetitiveness, score-singleContestPenalty)
	}

	metrics := election.CompetitivenessMetrics{
		Score:          score,
		AvgMargin:      Round(avgMargin, 1),
		HasSwung:       hasSwung,
		ContestedRaces: len(margins),
	}
	if len(parties) == 1 {
		p := parties[0]
		metrics.DominantParty = &p
	}
	return metrics
}
