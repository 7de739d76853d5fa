package pipeline_test

import (
	"context"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/districtscope/districtscope/pkg/election"
	"github.com/districtscope/districtscope/pkg/pipeline"
	"github.com/districtscope/districtscope/pkg/scoring"
)

var fixedTime = time.Date(2026, 3, 1, 12, 30, 45, 123456789, time.FixedZone("EST", -5*3600))

func newDriver(t *testing.T, opts ...pipeline.Option) *pipeline.Driver {
	t.Helper()
	engine, err := scoring.NewEngine(scoring.Defaults())
	require.NoError(t, err)
	opts = append([]pipeline.Option{pipeline.WithClock(func() time.Time { return fixedTime })}, opts...)
	return pipeline.NewDriver(engine, opts...)
}

const historyJSON = `{
  "lastUpdated": "2026-01-01",
  "years": [2020, 2022, 2024],
  "house": {
    "17": {
      "districtNumber": 17,
      "elections": {
        "2024": {"year": 2024, "winner": {"name": "A", "party": "Republican"}, "runnerUp": {"name": "B", "party": "Democratic"}, "margin": 14},
        "2022": {"year": 2022, "winner": {"name": "A", "party": "Republican"}, "runnerUp": {"name": "C", "party": "Democratic"}, "margin": 20}
      },
      "competitiveness": {"score": 35, "avgMargin": 17.0, "hasSwung": false, "contestedRaces": 2}
    }
  },
  "senate": {
    "3": {
      "elections": {
        "2024": {"year": 2024, "winner": {"name": "D", "party": "Democratic"}, "uncontested": true}
      },
      "competitiveness": {"score": 5, "avgMargin": 100.0, "contestedRaces": 0}
    }
  }
}`

const filingsJSON = `{
  "house": {
    "17": {"candidates": [{"name": "Pat Doe", "party": "Republican"}], "incumbent": {"name": "Sam Roe", "party": "Republican"}}
  },
  "senate": {
    "3": {"candidates": [{"name": "D", "party": "Democratic"}], "incumbent": {"name": "D", "party": "Democratic"}}
  }
}`

func loadInputs(t *testing.T) (*election.HistoryDocument, *election.FilingsDocument) {
	t.Helper()
	h, err := election.DecodeHistory([]byte(historyJSON))
	require.NoError(t, err)
	f, err := election.DecodeFilings([]byte(filingsJSON))
	require.NoError(t, err)
	return h, f
}

func TestRun_CoversEveryDistrict(t *testing.T) {
	h, f := loadInputs(t)
	doc, err := newDriver(t).Run(context.Background(), h, f)
	require.NoError(t, err)

	assert.Len(t, doc.House, 124)
	assert.Len(t, doc.Senate, 46)
	for n := 1; n <= 124; n++ {
		s, ok := doc.District(election.House, n)
		require.True(t, ok, "house district %d missing", n)
		assert.Equal(t, n, s.DistrictNumber)
		assert.GreaterOrEqual(t, s.OpportunityScore, 0)
		assert.LessOrEqual(t, s.OpportunityScore, 100)
	}
	assert.Equal(t, "2026-03-01T17:30:45.123456Z", doc.LastUpdated)
}

func TestRun_ScoresKnownDistricts(t *testing.T) {
	h, f := loadInputs(t)
	doc, err := newDriver(t).Run(context.Background(), h, f)
	require.NoError(t, err)

	h17, _ := doc.District(election.House, 17)
	assert.Equal(t, 64, h17.OpportunityScore)
	assert.Equal(t, scoring.TierEmerging, h17.Tier)
	assert.True(t, h17.Flags.NeedsCandidate)
	assert.True(t, h17.Flags.OpenSeat, "incumbent Sam Roe did not file")
	require.NotNil(t, h17.Metrics.TrendWindow)
	assert.False(t, h17.Metrics.TrendWindow.Sparse)

	s3, _ := doc.District(election.Senate, 3)
	assert.Equal(t, scoring.TierDefensive, s3.Tier)
	assert.GreaterOrEqual(t, s3.OpportunityScore, 60)
	assert.Equal(t, scoring.RecProtectSeat, s3.Recommendation)
}

func TestRun_AbsentDistrictDefaults(t *testing.T) {
	doc, err := newDriver(t).Run(context.Background(), nil, nil)
	require.NoError(t, err)

	s, ok := doc.District(election.Senate, 46)
	require.True(t, ok)
	assert.Equal(t, 5, s.Metrics.CompetitivenessScore)
	assert.Equal(t, 100.0, s.Metrics.AvgMargin)
	assert.Equal(t, 0.5, s.Factors.MarginTrend)
	assert.True(t, s.Flags.OpenSeat)
	assert.False(t, s.Flags.HasDemocrat)
}

func TestRun_Idempotent(t *testing.T) {
	h, f := loadInputs(t)

	first, err := newDriver(t, pipeline.WithWorkers(1)).Run(context.Background(), h, f)
	require.NoError(t, err)
	second, err := newDriver(t, pipeline.WithWorkers(16)).Run(context.Background(), h, f)
	require.NoError(t, err)

	a, err := json.Marshal(first)
	require.NoError(t, err)
	b, err := json.Marshal(second)
	require.NoError(t, err)
	assert.JSONEq(t, string(a), string(b))
}

func TestRun_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := newDriver(t).Run(ctx, nil, nil)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestDocument_MarshalsDistrictsInNumericOrder(t *testing.T) {
	doc, err := newDriver(t).Run(context.Background(), nil, nil)
	require.NoError(t, err)

	data, err := json.Marshal(doc)
	require.NoError(t, err)
	out := string(data)

	i2 := strings.Index(out, `"2":{`)
	i10 := strings.Index(out, `"10":{`)
	i100 := strings.Index(out, `"100":{`)
	require.True(t, i2 > 0 && i10 > 0 && i100 > 0)
	assert.Less(t, i2, i10)
	assert.Less(t, i10, i100)

	var decoded pipeline.Document
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Len(t, decoded.House, 124)
}

func TestDocument_Summarize(t *testing.T) {
	h, f := loadInputs(t)
	doc, err := newDriver(t).Run(context.Background(), h, f)
	require.NoError(t, err)

	sums := doc.Summarize()
	require.Len(t, sums, 2)
	assert.Equal(t, election.House, sums[0].Chamber)
	assert.Equal(t, 124, sums[0].Districts)
	assert.Equal(t, 46, sums[1].Districts)
	assert.Equal(t, 1, sums[1].Tiers[scoring.TierDefensive])

	var total int
	for _, n := range sums[0].Tiers {
		total += n
	}
	assert.Equal(t, 124, total)
	assert.GreaterOrEqual(t, sums[0].NeedsCandidate, 1)
}

func TestDocument_Ranked(t *testing.T) {
	h, f := loadInputs(t)
	doc, err := newDriver(t).Run(context.Background(), h, f)
	require.NoError(t, err)

	ranked := doc.Ranked(election.House)
	require.Len(t, ranked, 124)
	assert.Equal(t, 17, ranked[0].DistrictNumber)
	for i := 1; i < len(ranked); i++ {
		assert.GreaterOrEqual(t, ranked[i-1].OpportunityScore, ranked[i].OpportunityScore)
	}
}
