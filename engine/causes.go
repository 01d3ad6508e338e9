/*
causes.go - Ordered cause-ranking rules

PURPOSE:
  Assigns exactly one probable cause to each flagged store-day by walking
  a fixed, ordered rule list and stopping at the first match. Order IS
  the contract: rules are never evaluated independently and combined.

THE ORDER:
  1. stockout                  0.90  most directly causal, wins outright
  2. promotion_missing         0.80  promo lapsed within the recency window
  3. low_inventory             0.70
  4. significant_drop          0.50  magnitude fallback
  5. weekend_underperformance  0.50  weekend-specific magnitude fallback
  6. investigation_needed      0.50  nothing matched; a human must look

RULE 2 SEMANTICS:
  Fires only when BOTH hold: no promotion is active on the evaluated day,
  AND some promotion overlapped the trailing recency window (inclusive of
  the day itself). That distinguishes "the promotion just ended and the
  lift vanished" from "this store never runs promotions".

TIE-BREAK:
  Rules 4 and 5 can both be true (a significant drop on a weekend); order
  resolves the tie in favor of significant_drop. A fixed choice, not a
  computed probability.

CONFIDENCE:
  A fixed discrete value per rule, not a fitted probability.
*/
package engine

import (
	"github.com/shopspring/decimal"
)

// =============================================================================
// RULE CONTEXT - Everything a rule may inspect
// =============================================================================

// RuleContext carries the contextual signals for one flagged store-day.
type RuleContext struct {
	Date Day

	HasStockout  bool
	HasLowStock  bool
	HasPromotion bool

	// RecentPromotion is true when any promotion overlapped the trailing
	// recency window ending on Date.
	RecentPromotion bool

	Metrics GapMetrics

	// Sales repeats the fact's total so magnitude rules can compare it
	// against scaled baselines directly.
	Sales decimal.Decimal
}

// =============================================================================
// CAUSE RANKER
// =============================================================================

type causeRule struct {
	name       string
	cause      Cause
	confidence float64
	match      func(RuleContext) bool
}

// CauseRanker evaluates the ordered rule list. Build one per config;
// stateless afterwards and safe for concurrent use.
type CauseRanker struct {
	rules []causeRule
}

func NewCauseRanker(cfg Config) *CauseRanker {
	drop := cfg.significantDrop()
	weekend := cfg.weekendFactor()

	return &CauseRanker{rules: []causeRule{
		{
			name:       "stockout",
			cause:      CauseStockout,
			confidence: 0.90,
			match:      func(c RuleContext) bool { return c.HasStockout },
		},
		{
			name:       "promotion lapsed",
			cause:      CausePromotionMissing,
			confidence: 0.80,
			match:      func(c RuleContext) bool { return !c.HasPromotion && c.RecentPromotion },
		},
		{
			name:       "low inventory",
			cause:      CauseLowInventory,
			confidence: 0.70,
			match:      func(c RuleContext) bool { return c.HasLowStock },
		},
		{
			name:       "significant drop",
			cause:      CauseSignificantDrop,
			confidence: 0.50,
			match: func(c RuleContext) bool {
				return c.Metrics.Defined && c.Metrics.VsExpectation.LessThan(drop)
			},
		},
		{
			name:       "weekend underperformance",
			cause:      CauseWeekendUnder,
			confidence: 0.50,
			match: func(c RuleContext) bool {
				return c.Date.IsWeekend() && c.Sales.LessThan(c.Metrics.Baseline.Mul(weekend))
			},
		},
		{
			name:       "catch-all",
			cause:      CauseInvestigation,
			confidence: 0.50,
			match:      func(RuleContext) bool { return true },
		},
	}}
}

// Rank returns the first matching rule's cause and confidence. The final
// rule always matches, so the ranking is total.
func (r *CauseRanker) Rank(ctx RuleContext) (Cause, float64) {
	for _, rule := range r.rules {
		if rule.match(ctx) {
			return rule.cause, rule.confidence
		}
	}
	// Unreachable: the catch-all rule matches everything.
	return CauseInvestigation, 0.50
}
