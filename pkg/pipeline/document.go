package pipeline

import (
	"bytes"
	"encoding/json"
	"sort"
	"strconv"

	"github.com/districtscope/districtscope/pkg/election"
	"github.com/districtscope/districtscope/pkg/scoring"
)

// Document is the opportunity output for both chambers.
type Document struct {
	LastUpdated string         `json:"lastUpdated"`
	House       DistrictScores `json:"house"`
	Senate      DistrictScores `json:"senate"`
}

// DistrictScores maps a district number (as a decimal string) to its score.
// It marshals in numeric district order.
type DistrictScores map[string]scoring.OpportunityScore

// MarshalJSON writes entries ordered by district number.
func (s DistrictScores) MarshalJSON() ([]byte, error) {
	if s == nil {
		return []byte("null"), nil
	}
	keys := make([]string, 0, len(s))
	for k := range s {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		a, errA := strconv.Atoi(keys[i])
		b, errB := strconv.Atoi(keys[j])
		if errA != nil || errB != nil {
			return keys[i] < keys[j]
		}
		return a < b
	})

	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, k := range keys {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(k)
		if err != nil {
			return nil, err
		}
		val, err := json.Marshal(s[k])
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')
		buf.Write(val)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// Chamber returns the scores for c.
func (d *Document) Chamber(c election.Chamber) DistrictScores {
	if c == election.Senate {
		return d.Senate
	}
	return d.House
}

// District returns one district's score.
func (d *Document) District(c election.Chamber, number int) (scoring.OpportunityScore, bool) {
	s, ok := d.Chamber(c)[election.DistrictKey(number)]
	return s, ok
}

// Ranked returns a chamber's scores ordered by opportunity score, highest
// first, with district number as the tiebreak.
func (d *Document) Ranked(c election.Chamber) []scoring.OpportunityScore {
	scores := make([]scoring.OpportunityScore, 0, len(d.Chamber(c)))
	for _, s := range d.Chamber(c) {
		scores = append(scores, s)
	}
	sort.Slice(scores, func(i, j int) bool {
		if scores[i].OpportunityScore != scores[j].OpportunityScore {
			return scores[i].OpportunityScore > scores[j].OpportunityScore
		}
		return scores[i].DistrictNumber < scores[j].DistrictNumber
	})
	return scores
}

// Summary counts districts per tier for one chamber.
type Summary struct {
	Chamber        election.Chamber     `json:"chamber"`
	Districts      int                  `json:"districts"`
	Tiers          map[scoring.Tier]int `json:"tiers"`
	NeedsCandidate int                  `json:"needsCandidate"`
}

// Summarize returns one Summary per chamber, House first.
func (d *Document) Summarize() []Summary {
	out := make([]Summary, 0, len(election.Chambers))
	for _, c := range election.Chambers {
		s := Summary{
			Chamber: c,
			Tiers:   make(map[scoring.Tier]int, len(scoring.Tiers)),
		}
		for _, t := range scoring.Tiers {
			s.Tiers[t] = 0
		}
		for _, score := range d.Chamber(c) {
			s.Districts++
			s.Tiers[score.Tier]++
			if score.Flags.NeedsCandidate {
				s.NeedsCandidate++
			}
		}
		out = append(out, s)
	}
	return out
}
