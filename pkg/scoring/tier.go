package scoring

// Tier is a district's strategic classification.
type Tier string

const (
	TierDefensive       Tier = "DEFENSIVE"
	TierHighOpportunity Tier = "HIGH_OPPORTUNITY"
	TierEmerging        Tier = "EMERGING"
	TierBuild           Tier = "BUILD"
	TierNonCompetitive  Tier = "NON_COMPETITIVE"
)

// Tiers lists every tier in display order.
var Tiers = []Tier{TierHighOpportunity, TierEmerging, TierBuild, TierDefensive, TierNonCompetitive}

// Label returns the human-readable tier name.
func (t Tier) Label() string {
	switch t {
	case TierDefensive:
		return "Defensive"
	case TierHighOpportunity:
		return "High Opportunity"
	case TierEmerging:
		return "Emerging"
	case TierBuild:
		return "Build"
	default:
		return "Non-Competitive"
	}
}

// ClassifyTier maps a final score to a tier. Districts with a Democratic
// incumbent are DEFENSIVE regardless of score.
func ClassifyTier(score int, demIncumbent bool, t Thresholds) Tier {
	switch {
	case demIncumbent:
		return TierDefensive
	case score >= t.High:
		return TierHighOpportunity
	case score >= t.Emerging:
		return TierEmerging
	case score >= t.Build:
		return TierBuild
	default:
		return TierNonCompetitive
	}
}
