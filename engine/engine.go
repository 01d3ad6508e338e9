/*
engine.go - Diagnosis pipeline and record assembly

PURPOSE:
  Wires the components into one pass: index the snapshot, establish each
  store's expectation for the target day, keep only material shortfalls,
  rank a cause, bucket the impact, and assemble sorted output records.

DATA FLOW:
  Snapshot -> BaselineEstimator -> AnomalyDetector (filter) ->
  CauseRanker -> ImpactClassifier/actions -> sorted []PerformanceRecord

CONCURRENCY:
  Store evaluations have no cross-store dependencies, so stores are
  partitioned across a bounded worker pool. Workers write only to their
  own partition's output; results are merged and sorted afterwards, which
  keeps the run deterministic regardless of scheduling.

IDEMPOTENCE:
  No clocks, no randomness, no mutable shared state: identical snapshots
  and target day always produce the identical record set. Re-runs need no
  deduplication because output is recomputed whole, never appended.
*/
package engine

import (
	"context"
	"runtime"
	"sort"
	"sync"
)

// =============================================================================
// ENGINE
// =============================================================================

// Engine diagnoses why stores underperformed on a given day.
type Engine struct {
	cfg      Config
	detector *AnomalyDetector
	ranker   *CauseRanker
	impact   *ImpactClassifier
}

// New builds an engine after validating the configuration.
func New(cfg Config) (*Engine, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &Engine{
		cfg:      cfg,
		detector: NewAnomalyDetector(cfg),
		ranker:   NewCauseRanker(cfg),
		impact:   NewImpactClassifier(cfg),
	}, nil
}

// Config returns the effective configuration.
func (e *Engine) Config() Config { return e.cfg }

// Diagnose evaluates every store for the single target day and returns
// one record per underperforming store-day, worst dollar gap first.
//
// Store-days without a recorded sales fact or without any baseline are
// silently excluded: they cannot be evaluated. Facts referencing unknown
// stores abort the run with a DataQualityError.
func (e *Engine) Diagnose(ctx context.Context, snap Snapshot, target Day) ([]PerformanceRecord, error) {
	if len(snap.Stores) == 0 {
		return nil, ErrEmptySnapshot
	}
	stores := make(map[StoreID]Store, len(snap.Stores))
	for _, s := range snap.Stores {
		stores[s.ID] = s
	}
	if err := checkReferences(snap, stores); err != nil {
		return nil, err
	}

	baselines := NewBaselineEstimator(snap.Sales, e.cfg.LookbackInstances)
	promotions := NewPromotionIndex(snap.Promotions)
	targetFacts := factsFor(snap.Sales, target)
	stock := stockFlagsFor(snap.Inventory, target)

	// Partition by store: each worker evaluates an interleaved slice and
	// appends to its own bucket only.
	workers := e.cfg.Workers
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	if workers > len(snap.Stores) {
		workers = len(snap.Stores)
	}

	buckets := make([][]PerformanceRecord, workers)
	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func(w int) {
			defer wg.Done()
			for i := w; i < len(snap.Stores); i += workers {
				if ctx.Err() != nil {
					return
				}
				store := snap.Stores[i]
				if rec, ok := e.evaluate(store, target, targetFacts, baselines, promotions, stock); ok {
					buckets[w] = append(buckets[w], rec)
				}
			}
		}(w)
	}
	wg.Wait()
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var records []PerformanceRecord
	for _, b := range buckets {
		records = append(records, b...)
	}

	// Worst dollar impact first; store ID breaks ties so the triage order
	// is stable across runs.
	sort.Slice(records, func(i, j int) bool {
		if !records[i].PerformanceGapDollars.Equal(records[j].PerformanceGapDollars) {
			return records[i].PerformanceGapDollars.GreaterThan(records[j].PerformanceGapDollars)
		}
		return records[i].StoreID < records[j].StoreID
	})
	return records, nil
}

// evaluate runs the full per-store pipeline for the target day. The bool
// result reports whether the store-day was flagged at all.
func (e *Engine) evaluate(
	store Store,
	target Day,
	facts map[StoreID]DailySalesFact,
	baselines *BaselineEstimator,
	promotions *PromotionIndex,
	stock map[StoreID]stockFlags,
) (PerformanceRecord, bool) {
	fact, ok := facts[store.ID]
	if !ok {
		return PerformanceRecord{}, false
	}
	baseline, ok := baselines.Expected(store.ID, target)
	if !ok {
		return PerformanceRecord{}, false
	}

	metrics := e.detector.Measure(fact.TotalSales, baseline)
	if !metrics.Underperforming {
		return PerformanceRecord{}, false
	}

	flags := stock[store.ID]
	windowStart := target.AddDays(-(e.cfg.PromotionRecencyDays - 1))

	ruleCtx := RuleContext{
		Date:            target,
		HasStockout:     flags.stockout,
		HasLowStock:     flags.lowStock,
		HasPromotion:    promotions.ActiveOn(store.ID, target),
		RecentPromotion: promotions.AnyOverlapping(store.ID, windowStart, target),
		Metrics:         metrics,
		Sales:           fact.TotalSales,
	}
	cause, confidence := e.ranker.Rank(ruleCtx)

	gap := metrics.GapDollars.Round(2)
	return PerformanceRecord{
		Date:                     target,
		StoreID:                  store.ID,
		StoreName:                store.Name,
		Region:                   store.Region,
		TotalSales:               fact.TotalSales,
		ExpectedSales:            baseline.Round(2),
		PerformanceVsExpectation: metrics.VsExpectation.Round(3),
		PerformanceGapDollars:    gap,
		ProbableCause:            cause,
		ConfidenceScore:          confidence,
		HasStockout:              flags.stockout,
		HasLowStock:              flags.lowStock,
		HasPromotion:             ruleCtx.HasPromotion,
		DayOfWeek:                weekdayName(target.Weekday()),
		IsWeekend:                target.IsWeekend(),
		ImpactCategory:           e.impact.Classify(gap),
		RecommendedAction:        RecommendedAction(cause),
	}, true
}

// =============================================================================
// SNAPSHOT INDEXING HELPERS
// =============================================================================

func checkReferences(snap Snapshot, stores map[StoreID]Store) error {
	seen := make(map[StoreID]bool)
	var unknown []StoreID
	note := func(id StoreID) {
		if _, ok := stores[id]; !ok && !seen[id] {
			seen[id] = true
			unknown = append(unknown, id)
		}
	}
	for _, f := range snap.Sales {
		note(f.StoreID)
	}
	for _, p := range snap.Promotions {
		note(p.StoreID)
	}
	for _, inv := range snap.Inventory {
		note(inv.StoreID)
	}
	if len(unknown) == 0 {
		return nil
	}
	sort.Slice(unknown, func(i, j int) bool { return unknown[i] < unknown[j] })
	return &DataQualityError{UnknownStores: unknown}
}

func factsFor(sales []DailySalesFact, target Day) map[StoreID]DailySalesFact {
	facts := make(map[StoreID]DailySalesFact)
	for _, f := range sales {
		if f.Date.Equal(target) {
			facts[f.StoreID] = f
		}
	}
	return facts
}

type stockFlags struct {
	stockout bool
	lowStock bool
}

// stockFlagsFor collapses SKU-level inventory rows to store-level flags
// with logical OR.
func stockFlagsFor(inventory []InventoryStatus, target Day) map[StoreID]stockFlags {
	flags := make(map[StoreID]stockFlags)
	for _, inv := range inventory {
		if !inv.Date.Equal(target) {
			continue
		}
		f := flags[inv.StoreID]
		f.stockout = f.stockout || inv.Stockout
		f.lowStock = f.lowStock || inv.LowStock
		flags[inv.StoreID] = f
	}
	return flags
}
