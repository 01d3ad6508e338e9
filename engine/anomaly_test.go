package engine_test

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/retailops/diagnostics-engine/engine"
)

// =============================================================================
// THRESHOLD BOUNDARY TESTS
// =============================================================================

func TestAnomaly_ThresholdBoundary(t *testing.T) {
	// GIVEN: baseline = 100 and the default 0.8 sensitivity
	// WHEN: Sales land just above, exactly on, and just below the line
	// THEN: Only strictly-below flags (80.00 on the line does not)

	detector := engine.NewAnomalyDetector(engine.DefaultConfig())
	baseline := decimal.NewFromInt(100)

	cases := []struct {
		sales   string
		flagged bool
	}{
		{"80.01", false},
		{"80.00", false},
		{"79.99", true},
	}
	for _, tc := range cases {
		m := detector.Measure(engine.MustParseDecimal(tc.sales), baseline)
		if m.Underperforming != tc.flagged {
			t.Errorf("sales %s: underperforming = %v, want %v", tc.sales, m.Underperforming, tc.flagged)
		}
	}
}

func TestAnomaly_GapAndRatio(t *testing.T) {
	// GIVEN: baseline 1000, sales 600
	// WHEN: Measuring the gap
	// THEN: ratio = -0.4, gap = 400, flagged

	detector := engine.NewAnomalyDetector(engine.DefaultConfig())
	m := detector.Measure(decimal.NewFromInt(600), decimal.NewFromInt(1000))

	if !m.Defined {
		t.Fatal("ratio should be defined for a positive baseline")
	}
	if !m.VsExpectation.Equal(decimal.NewFromFloat(-0.4)) {
		t.Errorf("vs expectation = %v, want -0.4", m.VsExpectation)
	}
	if !m.GapDollars.Equal(decimal.NewFromInt(400)) {
		t.Errorf("gap = %v, want 400", m.GapDollars)
	}
	if !m.Underperforming {
		t.Error("600 against 1000 should flag")
	}
}

func TestAnomaly_GapNeverNegative(t *testing.T) {
	// Overperformance clamps the gap to zero; the record set only ever
	// carries shortfalls.
	detector := engine.NewAnomalyDetector(engine.DefaultConfig())
	m := detector.Measure(decimal.NewFromInt(1500), decimal.NewFromInt(1000))

	if !m.GapDollars.IsZero() {
		t.Errorf("gap = %v, want 0 for overperformance", m.GapDollars)
	}
	if m.Underperforming {
		t.Error("overperformance must not flag")
	}
}

func TestAnomaly_ZeroBaseline_Undefined(t *testing.T) {
	// Division is guarded: a zero baseline yields undefined metrics
	// instead of raising.
	detector := engine.NewAnomalyDetector(engine.DefaultConfig())
	m := detector.Measure(decimal.NewFromInt(500), decimal.Zero)

	if m.Defined {
		t.Error("ratio must be undefined when baseline is zero")
	}
	if m.Underperforming {
		t.Error("an unevaluable store-day must not flag")
	}
	if !m.GapDollars.IsZero() {
		t.Errorf("gap = %v, want 0 when baseline is undefined", m.GapDollars)
	}
}
