/*
anomaly.go - Gap metrics and the underperformance flag

PURPOSE:
  Given actual sales and a baseline, decide whether the store-day is
  materially below expectation and quantify by how much, both as a ratio
  and in dollars.

THE FLAG:
  is_underperforming = total_sales < baseline * threshold (default 0.8,
  strict inequality - landing exactly on the line does not flag). This
  single multiplier is the system's global sensitivity; it trades missed
  drops against false alerts and is tuned in Config, not here.

GUARDS:
  All ratio math guards the denominator. A zero or negative baseline
  yields an undefined ratio and a zero gap rather than a division error.
*/
package engine

import (
	"github.com/shopspring/decimal"
)

// =============================================================================
// GAP METRICS
// =============================================================================

// GapMetrics quantifies one store-day against its expectation.
type GapMetrics struct {
	Baseline decimal.Decimal

	// VsExpectation = sales/baseline - 1. Only meaningful when Defined.
	VsExpectation decimal.Decimal
	Defined       bool

	// GapDollars = max(baseline - sales, 0). Never negative.
	GapDollars decimal.Decimal

	Underperforming bool
}

// AnomalyDetector flags store-days whose sales fall materially below
// baseline. Stateless; one instance serves all workers.
type AnomalyDetector struct {
	threshold decimal.Decimal
}

func NewAnomalyDetector(cfg Config) *AnomalyDetector {
	return &AnomalyDetector{threshold: cfg.underperformFactor()}
}

// Measure computes the gap metrics for one store-day. A non-positive
// baseline produces undefined metrics and never flags.
func (d *AnomalyDetector) Measure(sales, baseline decimal.Decimal) GapMetrics {
	m := GapMetrics{Baseline: baseline, GapDollars: decimal.Zero}
	if !baseline.IsPositive() {
		return m
	}

	m.Defined = true
	m.VsExpectation = sales.Div(baseline).Sub(decimal.NewFromInt(1))

	if gap := baseline.Sub(sales); gap.IsPositive() {
		m.GapDollars = gap
	}

	m.Underperforming = sales.LessThan(baseline.Mul(d.threshold))
	return m
}
