package detector

import (
	"testing"

	"rankwatch/internal/types"
)

func TestEvaluate(t *testing.T) {
	d := New(10)

	cases := []struct {
		name      string
		previous  types.Rank
		current   types.Rank
		qualifies bool
		reason    types.VerdictReason
	}{
		{"slipped within top ten", 3, 7, true, types.ReasonRankWorsened},
		{"slipped one position", 1, 2, true, types.ReasonRankWorsened},
		{"dropped out from top ten", 8, types.Unranked, true, types.ReasonNewlyOutOfTop10},
		{"dropped out from first", 1, types.Unranked, true, types.ReasonNewlyOutOfTop10},
		{"dropped out from outside top ten", 15, types.Unranked, false, types.ReasonStableOrImproved},
		{"improved", 7, 3, false, types.ReasonStableOrImproved},
		{"stable", 5, 5, false, types.ReasonStableOrImproved},
		{"newly ranked", types.Unranked, 4, false, types.ReasonStableOrImproved},
		{"never ranked", types.Unranked, types.Unranked, false, types.ReasonStillUnranked},
		{"worsened beyond top ten", 9, 14, false, types.ReasonStableOrImproved},
		{"worsened outside top ten", 12, 18, false, types.ReasonStableOrImproved},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			v := d.Evaluate("widget", tc.previous, tc.current)
			if v.Qualifies != tc.qualifies {
				t.Errorf("Expected qualifies=%v, got %v", tc.qualifies, v.Qualifies)
			}
			if v.Reason != tc.reason {
				t.Errorf("Expected reason %s, got %s", tc.reason, v.Reason)
			}
			if v.Keyword != "widget" {
				t.Errorf("Expected keyword widget, got %s", v.Keyword)
			}
			if v.Previous != tc.previous || v.Current != tc.current {
				t.Errorf("Expected ranks carried through, got previous=%v current=%v", v.Previous, v.Current)
			}
		})
	}
}

func TestEvaluateImprovedOrEqualNeverQualifies(t *testing.T) {
	d := New(10)
	for prev := types.Rank(1); prev <= 20; prev++ {
		for cur := types.Rank(1); cur <= prev; cur++ {
			v := d.Evaluate("widget", prev, cur)
			if v.Qualifies {
				t.Errorf("Expected no qualification for previous=%d current=%d", prev, cur)
			}
		}
	}
}

func TestEvaluateCustomDepth(t *testing.T) {
	d := New(20)

	// With a deeper threshold, slipping to 14 still qualifies.
	v := d.Evaluate("widget", 9, 14)
	if !v.Qualifies || v.Reason != types.ReasonRankWorsened {
		t.Errorf("Expected RANK_WORSENED at depth 20, got qualifies=%v reason=%s", v.Qualifies, v.Reason)
	}

	// And a baseline of 15 now counts as tracked when the keyword vanishes.
	v = d.Evaluate("widget", 15, types.Unranked)
	if !v.Qualifies || v.Reason != types.ReasonNewlyOutOfTop10 {
		t.Errorf("Expected NEWLY_OUT_OF_TOP10 at depth 20, got qualifies=%v reason=%s", v.Qualifies, v.Reason)
	}
}

func TestUnevaluated(t *testing.T) {
	v := Unevaluated("widget", 5)
	if v.Qualifies {
		t.Error("Expected unevaluated verdict to never qualify")
	}
	if v.Reason != types.ReasonUnevaluated {
		t.Errorf("Expected reason UNEVALUATED, got %s", v.Reason)
	}
	if v.Previous != 5 {
		t.Errorf("Expected baseline carried through, got %v", v.Previous)
	}
}

func TestNewClampsDepth(t *testing.T) {
	d := New(0)
	if d.TopN != 10 {
		t.Errorf("Expected default depth 10, got %d", d.TopN)
	}
}
