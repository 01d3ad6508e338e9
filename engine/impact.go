/*
impact.go - Dollar-impact tiers and recommended actions

PURPOSE:
  Buckets each flagged store-day's dollar gap into a triage tier and maps
  its probable cause to a fixed, human-readable action.

TIERS:
  gap > high tier   -> high_impact
  gap > medium tier -> medium_impact
  otherwise         -> low_impact
  Boundaries are strict: a gap of exactly $1000.00 is medium, not high.
  The thresholds are shared by every store regardless of size - an
  accepted simplification, tunable in Config.

ACTIONS:
  The action strings are a compatibility contract with downstream
  consumers and must match exactly. The mapping is total: every cause
  the ranker can produce has an action, enforced by test.
*/
package engine

import (
	"github.com/shopspring/decimal"
)

// =============================================================================
// IMPACT CLASSIFIER
// =============================================================================

type Impact string

const (
	ImpactHigh   Impact = "high_impact"
	ImpactMedium Impact = "medium_impact"
	ImpactLow    Impact = "low_impact"
)

// ImpactClassifier buckets dollar gaps. Stateless after construction.
type ImpactClassifier struct {
	high   decimal.Decimal
	medium decimal.Decimal
}

func NewImpactClassifier(cfg Config) *ImpactClassifier {
	return &ImpactClassifier{high: cfg.highImpact(), medium: cfg.mediumImpact()}
}

// Classify buckets a dollar gap with strictly-greater-than boundaries.
func (c *ImpactClassifier) Classify(gap decimal.Decimal) Impact {
	switch {
	case gap.GreaterThan(c.high):
		return ImpactHigh
	case gap.GreaterThan(c.medium):
		return ImpactMedium
	default:
		return ImpactLow
	}
}

// =============================================================================
// ACTION RECOMMENDER
// =============================================================================

// actionInvestigate is shared by both magnitude fallbacks and the
// catch-all: none of them names an operational fix.
const actionInvestigate = "Requires manager investigation"

var recommendedActions = map[Cause]string{
	CauseStockout:         "Check inventory and expedite restock",
	CausePromotionMissing: "Verify promotion execution",
	CauseLowInventory:     "Review reorder points",
	CauseWeekendUnder:     "Check staffing and hours",
	CauseSignificantDrop:  actionInvestigate,
	CauseInvestigation:    actionInvestigate,
}

// RecommendedAction maps a cause to its action string. Total over every
// cause the ranker produces; an unrecognized cause falls back to manual
// investigation so the mapping stays total as causes are added.
func RecommendedAction(cause Cause) string {
	if action, ok := recommendedActions[cause]; ok {
		return action
	}
	return actionInvestigate
}
