// Package scoring implements the districtscope opportunity scoring core.
// It turns a district's election history and candidate filings into an
// explainable 0-100 opportunity score, a strategic tier and a recommendation.
package scoring

// OpportunityScore is the scored result for a single district.
// Created fresh per run; immutable once computed.
type OpportunityScore struct {
	DistrictNumber   int      `json:"districtNumber"`
	OpportunityScore int      `json:"opportunityScore"` // 0-100
	Tier             Tier     `json:"tier"`
	TierLabel        string   `json:"tierLabel"`
	Factors          Factors  `json:"factors"`
	Metrics          Metrics  `json:"metrics"`
	Flags            Flags    `json:"flags"`
	Recommendation   string   `json:"recommendation"`
	Tags             []string `json:"tags,omitempty"` // names of matching custom rules
}

// Factors are the normalized 0-1 inputs to the weighted sum.
type Factors struct {
	Competitiveness   float64 `json:"competitiveness"`
	MarginTrend       float64 `json:"marginTrend"`
	Incumbency        float64 `json:"incumbency"`
	CandidatePresence float64 `json:"candidatePresence"`
	OpenSeatBonus     bool    `json:"openSeatBonus"`
}

// Metrics are the raw measurements shown alongside the score.
type Metrics struct {
	AvgMargin            float64      `json:"avgMargin"`
	TrendChange          float64      `json:"trendChange"` // positive = margins shrinking
	CompetitivenessScore int          `json:"competitivenessScore"`
	TrendWindow          *TrendWindow `json:"trendWindow,omitempty"`
}

// TrendWindow describes which elections the margin trend was measured across.
type TrendWindow struct {
	FromYear  int  `json:"fromYear"`
	ToYear    int  `json:"toYear"`
	Elections int  `json:"elections"`
	Sparse    bool `json:"sparse"` // a cycle inside the span is missing
}

// Flags are boolean call-outs for triage.
type Flags struct {
	NeedsCandidate bool `json:"needsCandidate"`
	OpenSeat       bool `json:"openSeat"`
	TrendingDem    bool `json:"trendingDem"`
	Defensive      bool `json:"defensive"`
	HasDemocrat    bool `json:"hasDemocrat"`
}
