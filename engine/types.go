/*
Package engine provides the root-cause attribution engine for daily
store performance.

PURPOSE:
  This package contains the pure, deterministic logic that decides WHY a
  retail store underperformed on a given day. Given a snapshot of sales
  facts, promotions, and inventory flags, it establishes a statistical
  expectation for each store-day, detects material shortfalls, and
  attributes each shortfall to exactly one probable cause with a fixed
  confidence score and a recommended action.

KEY CONCEPTS IN THIS FILE (types.go):
  - Store / DailySalesFact / Promotion / InventoryStatus: read-only inputs
  - Snapshot: all inputs for one diagnosis run, materialized up front
  - Cause: the single heuristic label attached to an underperformance
  - PerformanceRecord: one output row per flagged store-day

DESIGN PRINCIPLES:
  1. Purity: no I/O, no clocks, no mutable shared state. Same snapshot in,
     same records out, every time.
  2. Precision: uses decimal.Decimal for all dollar math to avoid
     floating-point drift in thresholds and gaps.
  3. Totality: every flagged store-day receives exactly one cause and
     every cause maps to exactly one recommended action.

USAGE:
  eng, err := engine.New(engine.DefaultConfig())
  records, err := eng.Diagnose(ctx, snapshot, target)

SEE ALSO:
  - baseline.go: expected sales from trailing same-weekday history
  - anomaly.go:  gap metrics and the underperformance flag
  - causes.go:   the ordered cause-ranking rules
  - impact.go:   dollar-impact tiers and recommended actions
*/
package engine

import (
	"time"

	"github.com/shopspring/decimal"
)

// =============================================================================
// IDENTIFIERS
// =============================================================================

type StoreID string
type PromotionID string

// =============================================================================
// INPUT ENTITIES - Supplied fresh each run by ingestion
// =============================================================================

// Store is immutable reference data for one retail location.
type Store struct {
	ID     StoreID
	Name   string
	Region string
}

// DailySalesFact records what one store actually sold on one day.
// Absence of a fact means "no sales recorded", which is distinct from a
// fact with zero sales.
type DailySalesFact struct {
	StoreID          StoreID
	Date             Day
	TotalSales       decimal.Decimal
	TransactionCount int
}

// Promotion is an inclusive date range during which a store discounted.
// Only overlap existence and the discount percentage matter downstream.
type Promotion struct {
	ID          PromotionID
	StoreID     StoreID
	Start       Day
	End         Day
	DiscountPct decimal.Decimal
}

// InventoryStatus carries store-level stock flags for one day. A store-day
// may have several SKU-level rows; the engine collapses them with OR.
type InventoryStatus struct {
	StoreID  StoreID
	Date     Day
	Stockout bool
	LowStock bool
}

// Snapshot bundles every input the engine needs for one run. All data is
// materialized before Diagnose is called; the engine performs no I/O.
type Snapshot struct {
	Stores     []Store
	Sales      []DailySalesFact
	Promotions []Promotion
	Inventory  []InventoryStatus
}

// =============================================================================
// CAUSE - Single heuristic label per flagged store-day
// =============================================================================

type Cause string

const (
	CauseStockout         Cause = "stockout"
	CausePromotionMissing Cause = "promotion_missing"
	CauseLowInventory     Cause = "low_inventory"
	CauseSignificantDrop  Cause = "significant_drop"
	CauseWeekendUnder     Cause = "weekend_underperformance"
	CauseInvestigation    Cause = "investigation_needed"
)

// AllCauses returns every cause the ranker can produce, in rule order.
// Used to enforce totality of the action mapping.
func AllCauses() []Cause {
	return []Cause{
		CauseStockout,
		CausePromotionMissing,
		CauseLowInventory,
		CauseSignificantDrop,
		CauseWeekendUnder,
		CauseInvestigation,
	}
}

// =============================================================================
// OUTPUT - One record per underperforming store-day
// =============================================================================

// PerformanceRecord is the fully assembled diagnosis for one flagged
// store-day. Records are immutable once produced; re-runs recompute the
// full set rather than amending it.
type PerformanceRecord struct {
	Date    Day
	StoreID StoreID

	StoreName string
	Region    string

	TotalSales    decimal.Decimal
	ExpectedSales decimal.Decimal

	// PerformanceVsExpectation = sales/expected - 1, rounded to 3 decimals.
	// Always negative for records in this set.
	PerformanceVsExpectation decimal.Decimal

	// PerformanceGapDollars = max(expected - sales, 0), rounded to 2 decimals.
	PerformanceGapDollars decimal.Decimal

	ProbableCause   Cause
	ConfidenceScore float64

	HasStockout  bool
	HasLowStock  bool
	HasPromotion bool

	DayOfWeek string
	IsWeekend bool

	ImpactCategory    Impact
	RecommendedAction string
}

// =============================================================================
// DECIMAL HELPERS
// =============================================================================

// MustParseDecimal parses a decimal literal, panicking on malformed
// input. For static literals in tests and scenario seeds only.
func MustParseDecimal(s string) decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		panic("malformed decimal literal: " + s)
	}
	return d
}

// weekdayName is the day_of_week value carried on output records.
func weekdayName(w time.Weekday) string { return w.String() }
