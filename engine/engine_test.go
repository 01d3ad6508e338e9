package engine_test

import (
	"context"
	"reflect"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/retailops/diagnostics-engine/engine"
)

// =============================================================================
// TEST HELPERS
// =============================================================================

func newEngine(t *testing.T) *engine.Engine {
	t.Helper()
	eng, err := engine.New(engine.DefaultConfig())
	require.NoError(t, err)
	return eng
}

func store(id, name, region string) engine.Store {
	return engine.Store{ID: engine.StoreID(id), Name: name, Region: region}
}

// flatHistory returns `weeks` prior same-weekday facts at a constant value.
func flatHistory(id string, target engine.Day, weeks int, value float64) []engine.DailySalesFact {
	return sameWeekdayHistory(id, target, weeks, func(int) float64 { return value })
}

// =============================================================================
// END-TO-END DIAGNOSIS TESTS
// =============================================================================

func TestDiagnose_StockoutScenario(t *testing.T) {
	// GIVEN: Store 42 with a 1000 baseline, 600 actual, and a stockout
	// WHEN: Diagnosing the target day
	// THEN: One record: ratio -0.4, gap 400.00, stockout @ 0.9,
	//       low impact, restock action

	target := day(2025, time.June, 9) // Monday
	snap := engine.Snapshot{
		Stores: []engine.Store{store("42", "Store_042", "West")},
		Sales: append(
			flatHistory("42", target, 4, 1000),
			fact("42", target, 600),
		),
		Inventory: []engine.InventoryStatus{
			{StoreID: "42", Date: target, Stockout: true},
		},
	}

	records, err := newEngine(t).Diagnose(context.Background(), snap, target)
	require.NoError(t, err)
	require.Len(t, records, 1)

	rec := records[0]
	assert.Equal(t, engine.StoreID("42"), rec.StoreID)
	assert.Equal(t, "Store_042", rec.StoreName)
	assert.Equal(t, "West", rec.Region)
	assert.True(t, rec.ExpectedSales.Equal(engine.MustParseDecimal("1000")), "expected sales %v", rec.ExpectedSales)
	assert.True(t, rec.PerformanceVsExpectation.Equal(engine.MustParseDecimal("-0.4")), "ratio %v", rec.PerformanceVsExpectation)
	assert.True(t, rec.PerformanceGapDollars.Equal(engine.MustParseDecimal("400")), "gap %v", rec.PerformanceGapDollars)
	assert.Equal(t, engine.CauseStockout, rec.ProbableCause)
	assert.Equal(t, 0.9, rec.ConfidenceScore)
	assert.Equal(t, engine.ImpactLow, rec.ImpactCategory)
	assert.Equal(t, "Check inventory and expedite restock", rec.RecommendedAction)
	assert.True(t, rec.HasStockout)
	assert.False(t, rec.IsWeekend)
	assert.Equal(t, "Monday", rec.DayOfWeek)
}

func TestDiagnose_InsufficientHistoryNeverFlagged(t *testing.T) {
	// GIVEN: A brand-new store selling nothing on the target day
	// WHEN: Diagnosing
	// THEN: No record - stores without a baseline cannot be evaluated

	target := day(2025, time.June, 9)
	snap := engine.Snapshot{
		Stores: []engine.Store{store("new", "Store_New", "North")},
		Sales:  []engine.DailySalesFact{fact("new", target, 0)},
	}

	records, err := newEngine(t).Diagnose(context.Background(), snap, target)
	require.NoError(t, err)
	assert.Empty(t, records)
}

func TestDiagnose_MissingFactIsSkippedNotZero(t *testing.T) {
	// GIVEN: A store with history but no sales fact on the target day
	// WHEN: Diagnosing
	// THEN: No record - absence of a fact is "no sales recorded",
	//       which is distinct from a recorded zero

	target := day(2025, time.June, 9)
	snap := engine.Snapshot{
		Stores: []engine.Store{store("s1", "Store_001", "East")},
		Sales:  flatHistory("s1", target, 4, 1000),
	}

	records, err := newEngine(t).Diagnose(context.Background(), snap, target)
	require.NoError(t, err)
	assert.Empty(t, records)
}

func TestDiagnose_HealthyStoresProduceNothing(t *testing.T) {
	target := day(2025, time.June, 9)
	snap := engine.Snapshot{
		Stores: []engine.Store{store("s1", "Store_001", "East")},
		Sales: append(
			flatHistory("s1", target, 4, 1000),
			fact("s1", target, 950),
		),
	}

	records, err := newEngine(t).Diagnose(context.Background(), snap, target)
	require.NoError(t, err)
	assert.Empty(t, records)
}

func TestDiagnose_SortedByGapDescending(t *testing.T) {
	// GIVEN: Three underperformers with different dollar gaps
	// WHEN: Diagnosing
	// THEN: Records arrive worst-first for dashboard triage

	target := day(2025, time.June, 9)
	snap := engine.Snapshot{
		Stores: []engine.Store{
			store("a", "Store_A", "North"),
			store("b", "Store_B", "South"),
			store("c", "Store_C", "East"),
		},
	}
	// a: gap 300, b: gap 1500, c: gap 700
	snap.Sales = append(snap.Sales, flatHistory("a", target, 4, 1000)...)
	snap.Sales = append(snap.Sales, fact("a", target, 700))
	snap.Sales = append(snap.Sales, flatHistory("b", target, 4, 2000)...)
	snap.Sales = append(snap.Sales, fact("b", target, 500))
	snap.Sales = append(snap.Sales, flatHistory("c", target, 4, 1000)...)
	snap.Sales = append(snap.Sales, fact("c", target, 300))

	records, err := newEngine(t).Diagnose(context.Background(), snap, target)
	require.NoError(t, err)
	require.Len(t, records, 3)

	assert.Equal(t, engine.StoreID("b"), records[0].StoreID)
	assert.Equal(t, engine.StoreID("c"), records[1].StoreID)
	assert.Equal(t, engine.StoreID("a"), records[2].StoreID)

	assert.Equal(t, engine.ImpactHigh, records[0].ImpactCategory)
	assert.Equal(t, engine.ImpactMedium, records[1].ImpactCategory)
	assert.Equal(t, engine.ImpactLow, records[2].ImpactCategory)
}

func TestDiagnose_LapsedPromotionAttribution(t *testing.T) {
	// GIVEN: A drop with no stockout, no active promotion, but a
	//        promotion that ended a week ago
	// WHEN: Diagnosing
	// THEN: promotion_missing @ 0.8

	target := day(2025, time.June, 9)
	snap := engine.Snapshot{
		Stores: []engine.Store{store("s1", "Store_001", "West")},
		Sales: append(
			flatHistory("s1", target, 4, 1000),
			fact("s1", target, 780),
		),
		Promotions: []engine.Promotion{
			promo("p1", "s1", target.AddDays(-21), target.AddDays(-7)),
		},
	}

	records, err := newEngine(t).Diagnose(context.Background(), snap, target)
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, engine.CausePromotionMissing, records[0].ProbableCause)
	assert.Equal(t, 0.8, records[0].ConfidenceScore)
	assert.False(t, records[0].HasPromotion)
	assert.Equal(t, "Verify promotion execution", records[0].RecommendedAction)
}

func TestDiagnose_Idempotent(t *testing.T) {
	// GIVEN: One snapshot with a spread of causes
	// WHEN: Running the diagnosis twice
	// THEN: Byte-identical output sets

	target := day(2025, time.June, 14) // Saturday
	snap := engine.Snapshot{
		Stores: []engine.Store{
			store("a", "Store_A", "North"),
			store("b", "Store_B", "South"),
		},
	}
	snap.Sales = append(snap.Sales, flatHistory("a", target, 6, 1200)...)
	snap.Sales = append(snap.Sales, fact("a", target, 500))
	snap.Sales = append(snap.Sales, flatHistory("b", target, 6, 800)...)
	snap.Sales = append(snap.Sales, fact("b", target, 600))
	snap.Inventory = []engine.InventoryStatus{
		{StoreID: "a", Date: target, LowStock: true},
	}

	eng := newEngine(t)
	first, err := eng.Diagnose(context.Background(), snap, target)
	require.NoError(t, err)
	second, err := eng.Diagnose(context.Background(), snap, target)
	require.NoError(t, err)

	require.True(t, reflect.DeepEqual(first, second), "re-run must reproduce the identical record set")
}

func TestDiagnose_UnknownStoreIsDataQualityDefect(t *testing.T) {
	// GIVEN: A sales fact referencing a store missing from reference data
	// WHEN: Diagnosing
	// THEN: The run aborts with a DataQualityError naming the store;
	//       the engine neither repairs nor drops the row

	target := day(2025, time.June, 9)
	snap := engine.Snapshot{
		Stores: []engine.Store{store("s1", "Store_001", "West")},
		Sales:  []engine.DailySalesFact{fact("ghost", target, 100)},
	}

	_, err := newEngine(t).Diagnose(context.Background(), snap, target)
	require.Error(t, err)
	assert.True(t, engine.IsDataQuality(err))

	var dq *engine.DataQualityError
	require.ErrorAs(t, err, &dq)
	assert.Equal(t, []engine.StoreID{"ghost"}, dq.UnknownStores)
}

func TestDiagnose_EmptySnapshot(t *testing.T) {
	_, err := newEngine(t).Diagnose(context.Background(), engine.Snapshot{}, day(2025, time.June, 9))
	assert.ErrorIs(t, err, engine.ErrEmptySnapshot)
}

func TestDiagnose_SkuRowsCollapseWithOR(t *testing.T) {
	// Multiple SKU-level inventory rows collapse to store-level flags.
	target := day(2025, time.June, 9)
	snap := engine.Snapshot{
		Stores: []engine.Store{store("s1", "Store_001", "West")},
		Sales: append(
			flatHistory("s1", target, 4, 1000),
			fact("s1", target, 600),
		),
		Inventory: []engine.InventoryStatus{
			{StoreID: "s1", Date: target},
			{StoreID: "s1", Date: target, LowStock: true},
			{StoreID: "s1", Date: target.AddDays(-1), Stockout: true}, // wrong day
		},
	}

	records, err := newEngine(t).Diagnose(context.Background(), snap, target)
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.False(t, records[0].HasStockout, "prior-day stockout must not leak")
	assert.True(t, records[0].HasLowStock)
	assert.Equal(t, engine.CauseLowInventory, records[0].ProbableCause)
}

func TestDiagnose_SingleWorkerMatchesParallel(t *testing.T) {
	// Partitioning is a performance concern only; worker count must not
	// change the output.
	target := day(2025, time.June, 9)
	snap := engine.Snapshot{}
	for _, id := range []string{"a", "b", "c", "d", "e", "f"} {
		snap.Stores = append(snap.Stores, store(id, "Store_"+id, "North"))
		snap.Sales = append(snap.Sales, flatHistory(id, target, 4, 1000)...)
		snap.Sales = append(snap.Sales, fact(id, target, 400))
	}

	serialCfg := engine.DefaultConfig()
	serialCfg.Workers = 1
	serial, err := engine.New(serialCfg)
	require.NoError(t, err)

	parallelCfg := engine.DefaultConfig()
	parallelCfg.Workers = 4
	parallel, err := engine.New(parallelCfg)
	require.NoError(t, err)

	a, err := serial.Diagnose(context.Background(), snap, target)
	require.NoError(t, err)
	b, err := parallel.Diagnose(context.Background(), snap, target)
	require.NoError(t, err)
	require.True(t, reflect.DeepEqual(a, b))
}

// =============================================================================
// CONFIG TESTS
// =============================================================================

func TestConfig_Defaults(t *testing.T) {
	cfg := engine.DefaultConfig()
	assert.Equal(t, 28, cfg.LookbackInstances)
	assert.Equal(t, 0.8, cfg.UnderperformThreshold)
	assert.Equal(t, 0.7, cfg.WeekendThreshold)
	assert.Equal(t, -0.3, cfg.SignificantDropThreshold)
	assert.Equal(t, 14, cfg.PromotionRecencyDays)
	assert.Equal(t, 1000.0, cfg.HighImpactDollars)
	assert.Equal(t, 500.0, cfg.MediumImpactDollars)
	assert.NoError(t, cfg.Validate())
}

func TestConfig_Validation(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*engine.Config)
		want   error
	}{
		{"zero lookback", func(c *engine.Config) { c.LookbackInstances = 0 }, engine.ErrInvalidLookback},
		{"threshold above one", func(c *engine.Config) { c.UnderperformThreshold = 1.2 }, engine.ErrInvalidThreshold},
		{"positive drop threshold", func(c *engine.Config) { c.SignificantDropThreshold = 0.3 }, engine.ErrInvalidDropThreshold},
		{"zero recency window", func(c *engine.Config) { c.PromotionRecencyDays = 0 }, engine.ErrInvalidRecencyWindow},
		{"inverted tiers", func(c *engine.Config) { c.HighImpactDollars = 100 }, engine.ErrInvalidImpactTiers},
		{"negative workers", func(c *engine.Config) { c.Workers = -1 }, engine.ErrInvalidWorkerCount},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := engine.DefaultConfig()
			tc.mutate(&cfg)
			assert.ErrorIs(t, cfg.Validate(), tc.want)

			_, err := engine.New(cfg)
			assert.Error(t, err)
		})
	}
}
