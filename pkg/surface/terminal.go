package surface

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/districtscope/districtscope/pkg/election"
	"github.com/districtscope/districtscope/pkg/pipeline"
	"github.com/districtscope/districtscope/pkg/scoring"
)

// TerminalRenderer renders an opportunity document as colored terminal output.
type TerminalRenderer struct {
	// Top is how many ranked districts to list per chamber. Zero uses DefaultTop.
	Top int
}

// ANSI color codes
const (
	colorReset  = "\033[0m"
	colorRed    = "\033[31m"
	colorGreen  = "\033[32m"
	colorYellow = "\033[33m"
	colorBlue   = "\033[34m"
	colorBold   = "\033[1m"
	colorDim    = "\033[2m"
)

func tierColor(t scoring.Tier) string {
	if noColor() {
		return ""
	}
	switch t {
	case scoring.TierHighOpportunity:
		return colorGreen
	case scoring.TierEmerging:
		return colorYellow
	case scoring.TierDefensive:
		return colorBlue
	case scoring.TierNonCompetitive:
		return colorDim
	default:
		return ""
	}
}

func noColor() bool {
	_, ok := os.LookupEnv("NO_COLOR")
	return ok
}

func bold(s string) string {
	if noColor() {
		return s
	}
	return colorBold + s + colorReset
}

func dim(s string) string {
	if noColor() {
		return s
	}
	return colorDim + s + colorReset
}

func colored(s, color string) string {
	if noColor() || color == "" {
		return s
	}
	return color + s + colorReset
}

func chamberTitle(c election.Chamber) string {
	if c == election.Senate {
		return "Senate"
	}
	return "House"
}

func (r *TerminalRenderer) top() int {
	if r.Top > 0 {
		return r.Top
	}
	return DefaultTop
}

func (r *TerminalRenderer) Render(w io.Writer, doc *pipeline.Document) error {
	fmt.Fprintf(w, "%s\n", bold("Districtscope: Opportunity Report"))
	fmt.Fprintf(w, "%s\n\n", dim("Updated "+doc.LastUpdated))

	summaries := doc.Summarize()
	for _, s := range summaries {
		fmt.Fprintf(w, "%s (%d districts)\n", bold(chamberTitle(s.Chamber)), s.Districts)
		for _, t := range scoring.Tiers {
			fmt.Fprintf(w, "  %-18s %4d\n", colored(t.Label(), tierColor(t)), s.Tiers[t])
		}
		fmt.Fprintf(w, "  %-18s %4d\n\n", "Needs candidate", s.NeedsCandidate)

		ranked := doc.Ranked(s.Chamber)
		if len(ranked) == 0 {
			continue
		}
		n := min(r.top(), len(ranked))
		fmt.Fprintf(w, "  Top %d:\n", n)
		for _, d := range ranked[:n] {
			fmt.Fprintf(w, "  %s %3d  %s  %s\n",
				colored("●", tierColor(d.Tier)),
				d.DistrictNumber,
				bold(fmt.Sprintf("%3d", d.OpportunityScore)),
				d.Recommendation)
			if len(d.Tags) > 0 {
				fmt.Fprintf(w, "           %s\n", dim("tags: "+strings.Join(d.Tags, ", ")))
			}
		}
		fmt.Fprintln(w)
	}

	return nil
}

// RenderDistrict writes a detailed breakdown of one district's score.
func (r *TerminalRenderer) RenderDistrict(w io.Writer, c election.Chamber, s scoring.OpportunityScore) error {
	tc := tierColor(s.Tier)

	fmt.Fprintf(w, "%s\n\n",
		bold(fmt.Sprintf("%s District %d: %s, score %d",
			chamberTitle(c), s.DistrictNumber, colored(s.TierLabel, tc), s.OpportunityScore)))

	fmt.Fprintln(w, "Factors:")
	fmt.Fprintf(w, "  Competitiveness     %.2f\n", s.Factors.Competitiveness)
	fmt.Fprintf(w, "  Margin trend        %.2f\n", s.Factors.MarginTrend)
	fmt.Fprintf(w, "  Incumbency          %.2f\n", s.Factors.Incumbency)
	fmt.Fprintf(w, "  Candidate presence  %.2f\n", s.Factors.CandidatePresence)
	fmt.Fprintf(w, "  Open seat bonus     %t\n\n", s.Factors.OpenSeatBonus)

	fmt.Fprintln(w, "Metrics:")
	fmt.Fprintf(w, "  Competitiveness score  %d\n", s.Metrics.CompetitivenessScore)
	fmt.Fprintf(w, "  Average margin         %.1f\n", s.Metrics.AvgMargin)
	fmt.Fprintf(w, "  Trend change           %+.1f\n", s.Metrics.TrendChange)
	if tw := s.Metrics.TrendWindow; tw != nil {
		window := fmt.Sprintf("%d-%d (%d elections)", tw.FromYear, tw.ToYear, tw.Elections)
		if tw.Sparse {
			window += " " + colored("sparse", colorYellow)
		}
		fmt.Fprintf(w, "  Trend window           %s\n", window)
	}
	fmt.Fprintln(w)

	var flags []string
	for _, f := range []struct {
		on   bool
		name string
	}{
		{s.Flags.NeedsCandidate, "needs candidate"},
		{s.Flags.OpenSeat, "open seat"},
		{s.Flags.TrendingDem, "trending Democratic"},
		{s.Flags.Defensive, "defensive"},
		{s.Flags.HasDemocrat, "Democrat filed"},
	} {
		if f.on {
			flags = append(flags, f.name)
		}
	}
	if len(flags) > 0 {
		fmt.Fprintf(w, "Flags: %s\n", strings.Join(flags, ", "))
	} else {
		fmt.Fprintln(w, "Flags: none")
	}
	if len(s.Tags) > 0 {
		fmt.Fprintf(w, "Tags:  %s\n", strings.Join(s.Tags, ", "))
	}
	fmt.Fprintln(w)

	fmt.Fprintln(w, "Recommendation:")
	for _, line := range wrapText(s.Recommendation, 70) {
		fmt.Fprintf(w, "  %s\n", colored(line, tc))
	}

	return nil
}

// wrapText wraps a string at the given width, returning lines.
func wrapText(s string, width int) []string {
	words := strings.Fields(s)
	if len(words) == 0 {
		return nil
	}

	var lines []string
	current := words[0]

	for _, word := range words[1:] {
		if len(current)+1+len(word) > width {
			lines = append(lines, current)
			current = word
		} else {
			current += " " + word
		}
	}
	lines = append(lines, current)
	return lines
}
