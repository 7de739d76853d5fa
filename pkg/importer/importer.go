// Package importer builds an election-history document from county-level
// results CSV exports.
package importer

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/districtscope/districtscope/pkg/election"
	"github.com/districtscope/districtscope/pkg/scoring"
)

// DefaultSource is recorded in imported documents when none is given.
const DefaultSource = "SC Election Commission - electionhistory.scvotes.gov"

// DefaultYears are the election cycles the importer declares by default.
var DefaultYears = []int{2020, 2022, 2024}

// Row is one line of a results export.
type Row struct {
	ElectionType  string
	DivisionType  string
	CandidateName string
	ElectionDate  string
	DistrictName  string
	Party         string
	Votes         int
}

var requiredColumns = []string{
	"election_type",
	"division_type",
	"candidate_name",
	"election_date",
	"district_name",
	"candidate_party_name",
	"votes",
}

// skipCandidates are aggregate or placeholder rows, not candidates.
var skipCandidates = map[string]bool{
	"":                     true,
	"Write-In":             true,
	"Total Votes Cast":     true,
	"Total Ballots Cast":   true,
	"Overvotes/Undervotes": true,
}

// ReadRows parses a results CSV with a header row. Unknown columns are
// ignored; a missing required column is an error. Unparseable vote counts
// read as 0.
func ReadRows(r io.Reader) ([]Row, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.LazyQuotes = true

	header, err := cr.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, errors.New("results CSV is empty")
		}
		return nil, fmt.Errorf("reading CSV header: %w", err)
	}

	index := make(map[string]int, len(header))
	for i, col := range header {
		index[strings.TrimSpace(strings.TrimPrefix(col, "\ufeff"))] = i
	}
	for _, col := range requiredColumns {
		if _, ok := index[col]; !ok {
			return nil, fmt.Errorf("results CSV is missing column %q", col)
		}
	}

	field := func(rec []string, col string) string {
		i := index[col]
		if i >= len(rec) {
			return ""
		}
		return rec[i]
	}

	var rows []Row
	for {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("reading CSV: %w", err)
		}
		votes, err := strconv.Atoi(strings.TrimSpace(field(rec, "votes")))
		if err != nil {
			votes = 0
		}
		rows = append(rows, Row{
			ElectionType:  field(rec, "election_type"),
			DivisionType:  field(rec, "division_type"),
			CandidateName: strings.TrimSpace(field(rec, "candidate_name")),
			ElectionDate:  field(rec, "election_date"),
			DistrictName:  strings.TrimSpace(field(rec, "district_name")),
			Party:         strings.TrimSpace(field(rec, "candidate_party_name")),
			Votes:         votes,
		})
	}
	return rows, nil
}

type tally struct {
	name  string
	party string
	votes int
}

// race accumulates per-candidate vote totals in first-seen order.
type race struct {
	tallies []*tally
	index   map[[2]string]*tally
}

func (r *race) add(name, party string, votes int) {
	key := [2]string{name, party}
	t, ok := r.index[key]
	if !ok {
		t = &tally{name: name, party: party}
		r.index[key] = t
		r.tallies = append(r.tallies, t)
	}
	t.votes += votes
}

// Process groups general-election county rows by district and year, sums
// votes per candidate, and derives each ElectionResult and the district's
// CompetitivenessMetrics. Only rows from the given cycle years are counted;
// nil years means DefaultYears. Keys are district numbers as decimal strings.
func Process(rows []Row, years []int) map[string]election.DistrictHistory {
	if len(years) == 0 {
		years = DefaultYears
	}
	cycles := make(map[int]bool, len(years))
	for _, y := range years {
		cycles[y] = true
	}

	races := make(map[int]map[int]*race)

	for _, row := range rows {
		if row.ElectionType != "General" || row.DivisionType != "County" {
			continue
		}
		if skipCandidates[row.CandidateName] {
			continue
		}
		if len(row.ElectionDate) < 4 {
			continue
		}
		year, err := strconv.Atoi(row.ElectionDate[:4])
		if err != nil || !cycles[year] {
			continue
		}
		district, ok := parseDistrict(row.DistrictName)
		if !ok {
			continue
		}

		byYear, ok := races[district]
		if !ok {
			byYear = make(map[int]*race)
			races[district] = byYear
		}
		rc, ok := byYear[year]
		if !ok {
			rc = &race{index: make(map[[2]string]*tally)}
			byYear[year] = rc
		}
		rc.add(row.CandidateName, row.Party, row.Votes)
	}

	out := make(map[string]election.DistrictHistory, len(races))
	for district, byYear := range races {
		elections := make(map[int]election.ElectionResult, len(byYear))
		for year, rc := range byYear {
			if len(rc.tallies) == 0 {
				continue
			}
			elections[year] = buildResult(year, rc.tallies)
		}
		metrics := scoring.Aggregate(elections)
		out[election.DistrictKey(district)] = election.DistrictHistory{
			DistrictNumber:  district,
			Elections:       elections,
			Competitiveness: &metrics,
		}
	}
	return out
}

func parseDistrict(s string) (int, bool) {
	if s == "" {
		return 0, false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return 0, false
		}
	}
	n, err := strconv.Atoi(s)
	return n, err == nil
}

// percentOf returns votes/total as a percentage rounded to 1 decimal.
func percentOf(votes, total int) float64 {
	if total <= 0 {
		return 0
	}
	return scoring.Round(float64(votes)/float64(total)*100, 1)
}

// shareOf returns votes/total as a fraction rounded to 4 decimals.
func shareOf(votes, total int) float64 {
	if total <= 0 {
		return 0
	}
	return scoring.Round(float64(votes)/float64(total), 4)
}

func buildResult(year int, tallies []*tally) election.ElectionResult {
	sorted := make([]*tally, len(tallies))
	copy(sorted, tallies)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].votes > sorted[j].votes })

	var total int
	for _, t := range sorted {
		total += t.votes
	}

	winner := sorted[0]
	winnerPct := percentOf(winner.votes, total)
	res := election.ElectionResult{
		Year:       year,
		TotalVotes: total,
		Winner: election.Candidate{
			Name:       winner.name,
			Party:      winner.party,
			Votes:      winner.votes,
			Percentage: winnerPct,
		},
	}

	if len(sorted) > 1 && sorted[1].votes > 0 {
		runner := sorted[1]
		runnerPct := percentOf(runner.votes, total)
		res.RunnerUp = &election.Candidate{
			Name:       runner.name,
			Party:      runner.party,
			Votes:      runner.votes,
			Percentage: runnerPct,
		}
		res.Margin = scoring.Round(winnerPct-runnerPct, 1)
		res.MarginVotes = winner.votes - runner.votes
		for _, t := range []*tally{winner, runner} {
			share := shareOf(t.votes, total)
			switch t.party {
			case "Democratic":
				res.DemPct = &share
			case "Republican":
				res.RepPct = &share
			}
		}
		return res
	}

	res.Margin = election.UncontestedMargin
	res.MarginVotes = winner.votes
	res.Uncontested = true
	one, zero := 1.0, 0.0
	switch winner.party {
	case "Democratic":
		res.DemPct, res.RepPct = &one, &zero
	case "Republican":
		res.DemPct, res.RepPct = &zero, &one
	}
	return res
}

// Options controls document-level fields of an import.
type Options struct {
	Source string
	Years  []int
	Now    func() time.Time
}

// Import reads House and Senate exports and returns a HistoryDocument.
// Either reader may be nil, leaving that chamber empty.
func Import(house, senate io.Reader, opts Options) (*election.HistoryDocument, error) {
	if opts.Source == "" {
		opts.Source = DefaultSource
	}
	if len(opts.Years) == 0 {
		opts.Years = DefaultYears
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}

	doc := &election.HistoryDocument{
		LastUpdated: election.FormatTimestamp(opts.Now()),
		Source:      opts.Source,
		Years:       append([]int(nil), opts.Years...),
		House:       map[string]election.DistrictHistory{},
		Senate:      map[string]election.DistrictHistory{},
	}

	for _, in := range []struct {
		chamber election.Chamber
		r       io.Reader
	}{
		{election.House, house},
		{election.Senate, senate},
	} {
		if in.r == nil {
			continue
		}
		rows, err := ReadRows(in.r)
		if err != nil {
			return nil, fmt.Errorf("importing %s results: %w", in.chamber, err)
		}
		districts := Process(rows, opts.Years)
		if in.chamber == election.House {
			doc.House = districts
		} else {
			doc.Senate = districts
		}
	}
	return doc, nil
}

// ChamberStats summarizes an imported chamber.
type ChamberStats struct {
	Chamber     election.Chamber
	Districts   int
	Competitive int // competitiveness score >= 60
	Swing       int
	DemDominant int
	RepDominant int
}

// Stats returns per-chamber statistics for an imported document.
func Stats(doc *election.HistoryDocument) []ChamberStats {
	out := make([]ChamberStats, 0, len(election.Chambers))
	for _, c := range election.Chambers {
		s := ChamberStats{Chamber: c}
		for _, d := range doc.Chamber(c) {
			s.Districts++
			m := d.Metrics()
			if m.Score >= 60 {
				s.Competitive++
			}
			if m.HasSwung {
				s.Swing++
			}
			if m.DominantParty != nil {
				switch *m.DominantParty {
				case "Democratic":
					s.DemDominant++
				case "Republican":
					s.RepDominant++
				}
			}
		}
		out = append(out, s)
	}
	return out
}
