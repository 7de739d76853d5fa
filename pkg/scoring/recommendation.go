package scoring

// Recommendation strings, one per decision branch.
const (
	RecProtectSeat   = "Protect seat - ensure strong candidate and resources"
	RecUrgentRecruit = "URGENT: Recruit Democratic candidate immediately"
	RecHighPriority  = "High priority - maximum resource investment"
	RecRecruitTarget = "Priority candidate recruitment target"
	RecOpenSeatEarly = "Open seat opportunity - invest early"
	RecInvest        = "Winnable with strong campaign - invest resources"
	RecLongTerm      = "Long-term investment - party building focus"
	RecLowPriority   = "Low priority - minimal resources"
)

// Recommend returns the action for a tier given whether a Democrat has filed
// and whether the seat is open.
func Recommend(tier Tier, hasDemocrat, openSeat bool) string {
	switch tier {
	case TierDefensive:
		return RecProtectSeat
	case TierHighOpportunity:
		if !hasDemocrat {
			return RecUrgentRecruit
		}
		return RecHighPriority
	case TierEmerging:
		if !hasDemocrat {
			return RecRecruitTarget
		}
		if openSeat {
			return RecOpenSeatEarly
		}
		return RecInvest
	case TierBuild:
		return RecLongTerm
	default:
		return RecLowPriority
	}
}
