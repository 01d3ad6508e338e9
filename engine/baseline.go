/*
baseline.go - Expected sales from trailing same-weekday history

PURPOSE:
  Computes each store-day's statistical expectation: the mean of
  total_sales for the same store on the same weekday, over at most the
  N most recent calendar instances strictly preceding the evaluated day.

WHY SAME-WEEKDAY:
  Comparing a Saturday against trailing Saturdays controls for the
  dominant weekly seasonality without any regression machinery. The
  instance cap keeps the window to roughly the trailing half year and
  stops stale history from dragging the expectation.

UNDEFINED, NOT ZERO:
  A store with no prior same-weekday observation has NO baseline. It is
  excluded from anomaly detection entirely - newly opened stores are
  never flagged, which is intended behavior rather than an error.

INDEXING:
  History is bucketed by (store, weekday) and kept date-sorted, so each
  lookup is a binary search plus a bounded walk backwards. The evaluated
  day's own sales never leak into its baseline.
*/
package engine

import (
	"sort"
	"time"

	"github.com/shopspring/decimal"
)

// =============================================================================
// BASELINE ESTIMATOR
// =============================================================================

type historyKey struct {
	store   StoreID
	weekday time.Weekday
}

type historyEntry struct {
	date  Day
	sales decimal.Decimal
}

// BaselineEstimator answers "what should this store have sold on this day"
// from an immutable, pre-sorted history index. Safe for concurrent reads.
type BaselineEstimator struct {
	lookback int
	history  map[historyKey][]historyEntry
}

// NewBaselineEstimator indexes the sales facts once. lookback caps how many
// prior same-weekday instances feed each mean.
func NewBaselineEstimator(facts []DailySalesFact, lookback int) *BaselineEstimator {
	history := make(map[historyKey][]historyEntry)
	for _, f := range facts {
		key := historyKey{store: f.StoreID, weekday: f.Date.Weekday()}
		history[key] = append(history[key], historyEntry{date: f.Date, sales: f.TotalSales})
	}
	for key := range history {
		entries := history[key]
		sort.Slice(entries, func(i, j int) bool { return entries[i].date.Before(entries[j].date) })
	}
	return &BaselineEstimator{lookback: lookback, history: history}
}

// Expected returns the trailing same-weekday mean for (store, date) and
// whether a baseline exists at all. The mean covers at most lookback
// instances, all strictly before date.
func (e *BaselineEstimator) Expected(store StoreID, date Day) (decimal.Decimal, bool) {
	entries := e.history[historyKey{store: store, weekday: date.Weekday()}]
	if len(entries) == 0 {
		return decimal.Zero, false
	}

	// First entry at or after the evaluated day; everything before it is
	// eligible history.
	cut := sort.Search(len(entries), func(i int) bool {
		return entries[i].date.AfterOrEqual(date)
	})
	if cut == 0 {
		return decimal.Zero, false
	}

	start := cut - e.lookback
	if start < 0 {
		start = 0
	}
	window := entries[start:cut]

	sum := decimal.Zero
	for _, entry := range window {
		sum = sum.Add(entry.sales)
	}
	return sum.Div(decimal.NewFromInt(int64(len(window)))), true
}
