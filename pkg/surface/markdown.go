package surface

import (
	"fmt"
	"io"
	"strings"

	"github.com/districtscope/districtscope/pkg/pipeline"
	"github.com/districtscope/districtscope/pkg/scoring"
)

// MarkdownRenderer produces a Markdown report suitable for issue comments
// and static sites.
type MarkdownRenderer struct {
	// Top is how many ranked districts to list per chamber. Zero uses DefaultTop.
	Top int
}

func (r *MarkdownRenderer) Render(w io.Writer, doc *pipeline.Document) error {
	_, err := io.WriteString(w, r.BuildMarkdown(doc))
	return err
}

// BuildMarkdown returns the Markdown report for doc.
func (r *MarkdownRenderer) BuildMarkdown(doc *pipeline.Document) string {
	top := r.Top
	if top <= 0 {
		top = DefaultTop
	}

	var sb strings.Builder
	sb.WriteString("## Districtscope Opportunity Report\n\n")
	sb.WriteString(fmt.Sprintf("_Updated %s_\n\n", doc.LastUpdated))

	for _, s := range doc.Summarize() {
		sb.WriteString(fmt.Sprintf("### %s\n\n", chamberTitle(s.Chamber)))

		sb.WriteString("| Tier | Districts |\n|------|-----------|\n")
		for _, t := range scoring.Tiers {
			sb.WriteString(fmt.Sprintf("| %s %s | %d |\n", tierIcon(t), t.Label(), s.Tiers[t]))
		}
		sb.WriteString(fmt.Sprintf("| Needs candidate | %d |\n", s.NeedsCandidate))
		sb.WriteString("\n")

		ranked := doc.Ranked(s.Chamber)
		if len(ranked) == 0 {
			continue
		}
		n := min(top, len(ranked))
		sb.WriteString(fmt.Sprintf("#### Top %d\n\n", n))
		sb.WriteString("| District | Score | Tier | Recommendation |\n|----------|-------|------|----------------|\n")
		for _, d := range ranked[:n] {
			rec := d.Recommendation
			if len(d.Tags) > 0 {
				rec += " (" + strings.Join(d.Tags, ", ") + ")"
			}
			sb.WriteString(fmt.Sprintf("| %d | %d | %s | %s |\n",
				d.DistrictNumber, d.OpportunityScore, d.TierLabel, escapePipes(rec)))
		}
		sb.WriteString("\n")
	}

	return sb.String()
}

func tierIcon(t scoring.Tier) string {
	switch t {
	case scoring.TierHighOpportunity:
		return ":green_circle:"
	case scoring.TierEmerging:
		return ":yellow_circle:"
	case scoring.TierBuild:
		return ":orange_circle:"
	case scoring.TierDefensive:
		return ":blue_circle:"
	default:
		return ":white_circle:"
	}
}

func escapePipes(s string) string {
	return strings.ReplaceAll(s, "|", `\|`)
}
