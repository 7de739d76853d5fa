// Package election defines the input data model for districtscope: election
// history per legislative district and candidate filings for the upcoming cycle.
// These types are the shared vocabulary across all modules.
package election

import (
	"encoding/json"
	"strings"
	"time"
)

// Chamber identifies a legislative body. Each chamber numbers its districts
// independently starting at 1.
type Chamber string

const (
	House  Chamber = "house"
	Senate Chamber = "senate"
)

// Chambers lists every chamber in output order.
var Chambers = []Chamber{House, Senate}

// Districts returns the number of districts in the chamber.
func (c Chamber) Districts() int {
	switch c {
	case House:
		return 124
	case Senate:
		return 46
	default:
		return 0
	}
}

// Valid reports whether c is a known chamber.
func (c Chamber) Valid() bool {
	return c.Districts() > 0
}

// ParseChamber converts a case-insensitive chamber name.
func ParseChamber(s string) (Chamber, bool) {
	c := Chamber(strings.ToLower(strings.TrimSpace(s)))
	return c, c.Valid()
}

// Margin conventions shared by the importer and the scoring core.
const (
	UncontestedMargin = 100.0
	DefaultScore      = 5
)

// TimestampLayout is the UTC layout of every lastUpdated field written by
// districtscope.
const TimestampLayout = "2006-01-02T15:04:05.000000Z"

// FormatTimestamp renders t in TimestampLayout.
func FormatTimestamp(t time.Time) string {
	return t.UTC().Format(TimestampLayout)
}

// Candidate is one candidate's tally within an ElectionResult.
type Candidate struct {
	Name       string  `json:"name"`
	Party      string  `json:"party"`
	Votes      int     `json:"votes"`
	Percentage float64 `json:"percentage"` // 0-100
}

// ElectionResult is the outcome of a single general election in a district.
// Immutable once computed.
type ElectionResult struct {
	Year        int        `json:"year"`
	TotalVotes  int        `json:"totalVotes"`
	Winner      Candidate  `json:"winner"`
	RunnerUp    *Candidate `json:"runnerUp,omitempty"`
	Margin      float64    `json:"margin"` // percentage points, winner% - runnerUp%
	MarginVotes int        `json:"marginVotes"`
	Uncontested bool       `json:"uncontested,omitempty"`
	DemPct      *float64   `json:"dem_pct"` // fraction of total, not percent
	RepPct      *float64   `json:"rep_pct"`
}

// UnmarshalJSON decodes a result, treating a missing margin as uncontested-wide.
func (r *ElectionResult) UnmarshalJSON(data []byte) error {
	type plain ElectionResult
	p := plain{Margin: UncontestedMargin}
	if err := json.Unmarshal(data, &p); err != nil {
		return err
	}
	*r = ElectionResult(p)
	return nil
}

// Contested reports whether the race had a recorded opponent.
func (r ElectionResult) Contested() bool {
	return !r.Uncontested
}

// EffectiveMargin returns the margin with uncontested races pinned to 100.
func (r ElectionResult) EffectiveMargin() float64 {
	if r.Uncontested {
		return UncontestedMargin
	}
	return r.Margin
}

// CompetitivenessMetrics summarizes how close a district's recent elections were.
// Derived from up to the three most recent results; never mutated after creation.
type CompetitivenessMetrics struct {
	Score          int     `json:"score"` // 5-100
	AvgMargin      float64 `json:"avgMargin"`
	HasSwung       bool    `json:"hasSwung"`
	ContestedRaces int     `json:"contestedRaces"`
	DominantParty  *string `json:"dominantParty"`
}

// DefaultMetrics is what a district with no usable history is scored with.
func DefaultMetrics() CompetitivenessMetrics {
	return CompetitivenessMetrics{
		Score:     DefaultScore,
		AvgMargin: UncontestedMargin,
	}
}

// UnmarshalJSON decodes metrics, defaulting a missing score to 5 and a
// missing average margin to 100.
func (m *CompetitivenessMetrics) UnmarshalJSON(data []byte) error {
	type plain CompetitivenessMetrics
	p := plain(DefaultMetrics())
	if err := json.Unmarshal(data, &p); err != nil {
		return err
	}
	*m = CompetitivenessMetrics(p)
	return nil
}

// CandidateFiling is a candidate who has filed for the upcoming cycle.
type CandidateFiling struct {
	Name  string `json:"name"`
	Party string `json:"party"`
}

// Incumbent is the sitting member for a district.
type Incumbent struct {
	Name  string `json:"name"`
	Party string `json:"party"`
}

// DistrictHistory is one district's entry in the election-history document.
type DistrictHistory struct {
	DistrictNumber  int                     `json:"districtNumber,omitempty"`
	Elections       map[int]ElectionResult  `json:"elections"` // keyed by year
	Competitiveness *CompetitivenessMetrics `json:"competitiveness,omitempty"`
}

// Metrics returns the district's precomputed competitiveness, or the
// minimal-data default when none was supplied.
func (d DistrictHistory) Metrics() CompetitivenessMetrics {
	if d.Competitiveness == nil {
		return DefaultMetrics()
	}
	return *d.Competitiveness
}

// DistrictFilings is one district's entry in the candidate/incumbent document.
type DistrictFilings struct {
	Candidates []CandidateFiling `json:"candidates"`
	Incumbent  *Incumbent        `json:"incumbent"`
}

// UnmarshalJSON decodes filings. An incumbent given as null or as an object
// with no fields is absent; an object with any field, even an empty name,
// is a sitting member.
func (d *DistrictFilings) UnmarshalJSON(data []byte) error {
	var p struct {
		Candidates []CandidateFiling `json:"candidates"`
		Incumbent  json.RawMessage   `json:"incumbent"`
	}
	if err := json.Unmarshal(data, &p); err != nil {
		return err
	}
	*d = DistrictFilings{Candidates: p.Candidates}

	if len(p.Incumbent) == 0 || string(p.Incumbent) == "null" {
		return nil
	}
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(p.Incumbent, &fields); err != nil {
		return err
	}
	if len(fields) == 0 {
		return nil
	}
	var inc Incumbent
	if err := json.Unmarshal(p.Incumbent, &inc); err != nil {
		return err
	}
	d.Incumbent = &inc
	return nil
}

// CurrentIncumbent returns the incumbent, or nil when the seat has none.
func (d DistrictFilings) CurrentIncumbent() *Incumbent {
	return d.Incumbent
}

// HistoryDocument is the election-history input document.
type HistoryDocument struct {
	LastUpdated string                     `json:"lastUpdated,omitempty"`
	Source      string                     `json:"source,omitempty"`
	Years       []int                      `json:"years,omitempty"`
	House       map[string]DistrictHistory `json:"house"`
	Senate      map[string]DistrictHistory `json:"senate"`
}

// Chamber returns the district map for c.
func (d *HistoryDocument) Chamber(c Chamber) map[string]DistrictHistory {
	if d == nil {
		return nil
	}
	switch c {
	case House:
		return d.House
	case Senate:
		return d.Senate
	}
	return nil
}

// District looks up a district, returning a zero DistrictHistory when absent.
func (d *HistoryDocument) District(c Chamber, number int) (DistrictHistory, bool) {
	h, ok := d.Chamber(c)[DistrictKey(number)]
	return h, ok
}

// CycleYears returns the election years the document covers for chamber c:
// the declared Years when present, otherwise every year seen in that chamber,
// ascending.
func (d *HistoryDocument) CycleYears(c Chamber) []int {
	if d == nil {
		return nil
	}
	if len(d.Years) > 0 {
		return sortedYears(d.Years)
	}
	seen := make(map[int]bool)
	var years []int
	for _, h := range d.Chamber(c) {
		for y := range h.Elections {
			if !seen[y] {
				seen[y] = true
				years = append(years, y)
			}
		}
	}
	return sortedYears(years)
}

// FilingsDocument is the candidate/incumbent input document.
type FilingsDocument struct {
	LastUpdated string                     `json:"lastUpdated,omitempty"`
	House       map[string]DistrictFilings `json:"house"`
	Senate      map[string]DistrictFilings `json:"senate"`
}

// Chamber returns the district map for c.
func (d *FilingsDocument) Chamber(c Chamber) map[string]DistrictFilings {
	if d == nil {
		return nil
	}
	switch c {
	case House:
		return d.House
	case Senate:
		return d.Senate
	}
	return nil
}

// District looks up a district, returning zero filings when absent.
func (d *FilingsDocument) District(c Chamber, number int) (DistrictFilings, bool) {
	f, ok := d.Chamber(c)[DistrictKey(number)]
	return f, ok
}
