package engine_test

import (
	"testing"

	"github.com/retailops/diagnostics-engine/engine"
)

// =============================================================================
// IMPACT TIER TESTS
// =============================================================================

func TestImpact_StrictBoundaries(t *testing.T) {
	// Tier boundaries are strictly greater-than: landing exactly on a
	// boundary stays in the lower tier.
	classifier := engine.NewImpactClassifier(engine.DefaultConfig())

	cases := []struct {
		gap  string
		want engine.Impact
	}{
		{"1000.01", engine.ImpactHigh},
		{"1000.00", engine.ImpactMedium},
		{"500.01", engine.ImpactMedium},
		{"500.00", engine.ImpactLow},
		{"0.00", engine.ImpactLow},
	}
	for _, tc := range cases {
		got := classifier.Classify(engine.MustParseDecimal(tc.gap))
		if got != tc.want {
			t.Errorf("gap %s: impact = %s, want %s", tc.gap, got, tc.want)
		}
	}
}

// =============================================================================
// ACTION MAPPING TESTS
// =============================================================================

func TestActions_TotalAndNonEmpty(t *testing.T) {
	// Every cause the ranker can produce must map to a non-empty action.
	for _, cause := range engine.AllCauses() {
		if engine.RecommendedAction(cause) == "" {
			t.Errorf("cause %q has no recommended action", cause)
		}
	}
}

func TestActions_ExactLiteralStrings(t *testing.T) {
	// These strings are a compatibility contract with downstream
	// consumers; any drift is a breaking change.
	want := map[engine.Cause]string{
		engine.CauseStockout:         "Check inventory and expedite restock",
		engine.CausePromotionMissing: "Verify promotion execution",
		engine.CauseLowInventory:     "Review reorder points",
		engine.CauseWeekendUnder:     "Check staffing and hours",
		engine.CauseSignificantDrop:  "Requires manager investigation",
		engine.CauseInvestigation:    "Requires manager investigation",
	}
	for cause, action := range want {
		if got := engine.RecommendedAction(cause); got != action {
			t.Errorf("action for %q = %q, want %q", cause, got, action)
		}
	}
}

func TestActions_UnknownCauseFallsBack(t *testing.T) {
	// The mapping stays total as causes are added: an unmapped value
	// routes to manual investigation rather than an empty string.
	if got := engine.RecommendedAction(engine.Cause("not_a_cause")); got != "Requires manager investigation" {
		t.Errorf("fallback action = %q", got)
	}
}
