package scoring

import (
	"github.com/districtscope/districtscope/pkg/election"
)

// Margin-trend normalization: a shrinkage of trendSpan points or more maps to
// 1.0, a growth of trendSpan points or more maps to 0.0.
const (
	trendSpan    = 30.0
	neutralTrend = 0.5
)

// Trend is the margin-trend estimate for one district.
type Trend struct {
	Factor float64 // 0-1, higher is better
	Change float64 // percentage points; positive = margins shrinking

	// Window is nil when there were too few elections to measure a trend.
	Window *TrendWindow
}

// EstimateTrend measures how the winning margin moved across the three most
// recent elections. cycles lists the election years the source document
// covers and is only used to flag sparse windows; it may be nil.
func EstimateTrend(elections map[int]election.ElectionResult, cycles []int) Trend {
	w := election.Recent(elections, election.RecentCycles)
	if len(w) < 2 {
		return Trend{Factor: neutralTrend}
	}

	// Recent orders the window newest first.
	newest, oldest := w[0], w[len(w)-1]

	change := newest.EffectiveMargin() - oldest.EffectiveMargin()
	factor := clamp01((trendSpan - change) / (2 * trendSpan))

	reported := -change
	if reported == 0 {
		reported = 0 // avoid -0 in output
	}

	return Trend{
		Factor: factor,
		Change: reported,
		Window: &TrendWindow{
			FromYear:  oldest.Year,
			ToYear:    newest.Year,
			Elections: len(w),
			Sparse:    len(w.Gaps(cycles)) > 0,
		},
	}
}

func clamp01(x float64) float64 {
	switch {
	case x < 0:
		return 0
	case x > 1:
		return 1
	default:
		return x
	}
}
