package detector

import "rankwatch/internal/types"

// Detector decides whether a keyword's rank movement warrants deep
// analysis. It gates the generation calls downstream, so the policy
// here must hold exactly.
type Detector struct {
	TopN int
}

func New(topN int) *Detector {
	if topN <= 0 {
		topN = 10
	}
	return &Detector{TopN: topN}
}

// Evaluate compares a keyword's baseline against the current rank.
// Pure function, no I/O.
func (d *Detector) Evaluate(keyword string, previous, current types.Rank) types.DeclineVerdict {
	v := types.DeclineVerdict{
		Keyword:  keyword,
		Previous: previous,
		Current:  current,
	}

	switch {
	case !current.Ranked() && previous.WithinTop(d.TopN):
		// Held a top position, now gone from the results entirely.
		v.Qualifies = true
		v.Reason = types.ReasonNewlyOutOfTop10
	case current.Ranked() && previous.Ranked() && current > previous && current.WithinTop(d.TopN):
		// Slipped but still visible. Numerically larger is worse.
		v.Qualifies = true
		v.Reason = types.ReasonRankWorsened
	case !current.Ranked() && !previous.Ranked():
		v.Reason = types.ReasonStillUnranked
	default:
		// Stable, improved, newly ranked, or movement entirely outside
		// the tracked depth.
		v.Reason = types.ReasonStableOrImproved
	}

	return v
}

// Unevaluated marks a keyword whose lookup failed. It never qualifies.
func Unevaluated(keyword string, previous types.Rank) types.DeclineVerdict {
	return types.DeclineVerdict{
		Keyword:  keyword,
		Previous: previous,
		Current:  types.Unranked,
		Reason:   types.ReasonUnevaluated,
	}
}
