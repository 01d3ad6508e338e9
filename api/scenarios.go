/*
scenarios.go - Demo scenario loaders for testing and demonstrations

PURPOSE:

	Provides pre-built scenarios that populate the database with realistic
	fleet data for testing and demos. Each scenario seeds stores, sales
	history, promotions and inventory flags, then runs a diagnosis so the
	dashboard has something to show immediately.

AVAILABLE SCENARIOS:

	healthy-fleet:     Every store on baseline, nothing flagged
	stockout-wave:     Several stores hit by stockouts on the target day
	lapsed-promotion:  A promotion ended and sales sagged afterwards
	low-stock-squeeze: Thin shelves dragging sales down
	mixed-fleet:       One of each probable cause across the fleet

HOW SCENARIOS WORK:
 1. Reset database (clear all data)
 2. Seed stores and twelve weeks of sales history
 3. Seed the target day's facts, flags and promotions
 4. Run a diagnosis for the target day (yesterday)

USAGE VIA API:

	POST /api/scenarios/load
	{"scenario_id": "stockout-wave"}

NOTE:

	Scenarios reset the database. Only use in development/demo environments.

SEE ALSO:
  - handlers.go: RunDiagnosis (invoked after seeding)
*/
package api

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/shopspring/decimal"

	"github.com/retailops/diagnostics-engine/engine"
)

// =============================================================================
// SCENARIO DEFINITIONS
// =============================================================================

var scenarios = []ScenarioDTO{
	{
		ID:          "healthy-fleet",
		Name:        "Healthy Fleet",
		Description: "Five stores tracking their baselines; no records flagged",
	},
	{
		ID:          "stockout-wave",
		Name:        "Stockout Wave",
		Description: "Supplier failure empties shelves in three stores at once",
	},
	{
		ID:          "lapsed-promotion",
		Name:        "Lapsed Promotion",
		Description: "A discount campaign ended last week and sales sagged",
	},
	{
		ID:          "low-stock-squeeze",
		Name:        "Low Stock Squeeze",
		Description: "Partial availability dragging sales below threshold",
	},
	{
		ID:          "mixed-fleet",
		Name:        "Mixed Fleet",
		Description: "One store per probable cause, sorted by dollar impact",
	},
}

// ListScenarios returns available scenarios.
func (h *Handler) ListScenarios(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, scenarios)
}

// GetCurrentScenario returns the currently loaded scenario, if any.
func (h *Handler) GetCurrentScenario(w http.ResponseWriter, r *http.Request) {
	if h.currentScenario == "" {
		writeJSON(w, http.StatusOK, nil)
		return
	}

	for _, s := range scenarios {
		if s.ID == h.currentScenario {
			writeJSON(w, http.StatusOK, s)
			return
		}
	}

	// Scenario ID exists but not in list (shouldn't happen)
	writeJSON(w, http.StatusOK, ScenarioDTO{
		ID:          h.currentScenario,
		Name:        h.currentScenario,
		Description: "Currently loaded scenario",
	})
}

// LoadScenario resets the database and loads the requested scenario.
func (h *Handler) LoadScenario(w http.ResponseWriter, r *http.Request) {
	var req LoadScenarioRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	ctx := r.Context()
	if err := h.Store.Reset(ctx); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to reset database", err)
		return
	}

	var err error
	switch req.ScenarioID {
	case "healthy-fleet":
		err = h.loadHealthyFleet(ctx)
	case "stockout-wave":
		err = h.loadStockoutWave(ctx)
	case "lapsed-promotion":
		err = h.loadLapsedPromotion(ctx)
	case "low-stock-squeeze":
		err = h.loadLowStockSqueeze(ctx)
	case "mixed-fleet":
		err = h.loadMixedFleet(ctx)
	default:
		writeError(w, http.StatusBadRequest, fmt.Sprintf("Unknown scenario: %s", req.ScenarioID), nil)
		return
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to load scenario", err)
		return
	}

	h.currentScenario = req.ScenarioID
	writeJSON(w, http.StatusOK, map[string]string{
		"status":   "loaded",
		"scenario": req.ScenarioID,
	})
}

// ResetDatabase clears all data.
func (h *Handler) ResetDatabase(w http.ResponseWriter, r *http.Request) {
	if err := h.Store.Reset(r.Context()); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to reset database", err)
		return
	}
	h.currentScenario = ""
	writeJSON(w, http.StatusOK, map[string]string{"status": "reset"})
}

// =============================================================================
// SEEDING HELPERS
// =============================================================================

type demoStore struct {
	store engine.Store
	base  decimal.Decimal // weekday baseline sales
}

var weekendLift = engine.MustParseDecimal("1.2")

// expectedFor mirrors the seeded history: flat weekday sales with the
// usual weekend lift, so a store's baseline for any day is predictable.
func expectedFor(base decimal.Decimal, day engine.Day) decimal.Decimal {
	if day.IsWeekend() {
		return base.Mul(weekendLift)
	}
	return base
}

// seedFleet writes the store set and twelve weeks of on-baseline history
// up to (but excluding) the target day.
func (h *Handler) seedFleet(ctx context.Context, fleet []demoStore, target engine.Day) error {
	stores := make([]engine.Store, len(fleet))
	for i, ds := range fleet {
		stores[i] = ds.store
	}
	if err := h.Store.ReplaceStores(ctx, stores); err != nil {
		return err
	}

	var facts []engine.DailySalesFact
	for _, ds := range fleet {
		for offset := -84; offset < 0; offset++ {
			day := target.AddDays(offset)
			facts = append(facts, engine.DailySalesFact{
				StoreID:          ds.store.ID,
				Date:             day,
				TotalSales:       expectedFor(ds.base, day),
				TransactionCount: 50,
			})
		}
	}
	return h.Store.UpsertDailySales(ctx, facts)
}

// seedTargetDay writes the target day's facts at a fraction of each
// store's expected sales. fraction "1" means on baseline.
func (h *Handler) seedTargetDay(ctx context.Context, fleet []demoStore, target engine.Day, fractions map[engine.StoreID]string) error {
	var facts []engine.DailySalesFact
	for _, ds := range fleet {
		fraction := engine.MustParseDecimal("1")
		if f, ok := fractions[ds.store.ID]; ok {
			fraction = engine.MustParseDecimal(f)
		}
		facts = append(facts, engine.DailySalesFact{
			StoreID:          ds.store.ID,
			Date:             target,
			TotalSales:       expectedFor(ds.base, target).Mul(fraction),
			TransactionCount: 40,
		})
	}
	return h.Store.UpsertDailySales(ctx, facts)
}

func demoFleet() []demoStore {
	return []demoStore{
		{engine.Store{ID: "101", Name: "Downtown Flagship", Region: "North"}, engine.MustParseDecimal("4200")},
		{engine.Store{ID: "102", Name: "Riverside Mall", Region: "North"}, engine.MustParseDecimal("3100")},
		{engine.Store{ID: "103", Name: "Airport Kiosk", Region: "East"}, engine.MustParseDecimal("1500")},
		{engine.Store{ID: "104", Name: "Suburban Plaza", Region: "South"}, engine.MustParseDecimal("2600")},
		{engine.Store{ID: "105", Name: "Harbor Outlet", Region: "West"}, engine.MustParseDecimal("1900")},
	}
}

// =============================================================================
// SCENARIO LOADERS
// =============================================================================

func (h *Handler) loadHealthyFleet(ctx context.Context) error {
	target := engine.Yesterday(h.now())
	fleet := demoFleet()
	if err := h.seedFleet(ctx, fleet, target); err != nil {
		return err
	}
	if err := h.seedTargetDay(ctx, fleet, target, nil); err != nil {
		return err
	}
	_, err := h.RunDiagnosis(ctx, target)
	return err
}

func (h *Handler) loadStockoutWave(ctx context.Context) error {
	target := engine.Yesterday(h.now())
	fleet := demoFleet()
	if err := h.seedFleet(ctx, fleet, target); err != nil {
		return err
	}
	// Three stores hit hard, two healthy
	if err := h.seedTargetDay(ctx, fleet, target, map[engine.StoreID]string{
		"101": "0.55",
		"102": "0.62",
		"104": "0.58",
	}); err != nil {
		return err
	}
	if err := h.Store.ReplaceInventoryForDates(ctx, []engine.InventoryStatus{
		{StoreID: "101", Date: target, Stockout: true},
		{StoreID: "102", Date: target, Stockout: true, LowStock: true},
		{StoreID: "104", Date: target, Stockout: true},
	}); err != nil {
		return err
	}
	_, err := h.RunDiagnosis(ctx, target)
	return err
}

func (h *Handler) loadLapsedPromotion(ctx context.Context) error {
	target := engine.Yesterday(h.now())
	fleet := demoFleet()
	if err := h.seedFleet(ctx, fleet, target); err != nil {
		return err
	}
	// Sales sag to 75% of baseline: under threshold, but not a
	// significant drop, so the lapsed promotion takes the blame.
	if err := h.seedTargetDay(ctx, fleet, target, map[engine.StoreID]string{
		"103": "0.75",
	}); err != nil {
		return err
	}
	if err := h.Store.UpsertPromotions(ctx, []engine.Promotion{{
		ID:          "SUMMER-10",
		StoreID:     "103",
		Start:       target.AddDays(-21),
		End:         target.AddDays(-7),
		DiscountPct: engine.MustParseDecimal("0.10"),
	}}); err != nil {
		return err
	}
	_, err := h.RunDiagnosis(ctx, target)
	return err
}

func (h *Handler) loadLowStockSqueeze(ctx context.Context) error {
	target := engine.Yesterday(h.now())
	fleet := demoFleet()
	if err := h.seedFleet(ctx, fleet, target); err != nil {
		return err
	}
	if err := h.seedTargetDay(ctx, fleet, target, map[engine.StoreID]string{
		"105": "0.74",
	}); err != nil {
		return err
	}
	if err := h.Store.ReplaceInventoryForDates(ctx, []engine.InventoryStatus{
		{StoreID: "105", Date: target, LowStock: true},
	}); err != nil {
		return err
	}
	_, err := h.RunDiagnosis(ctx, target)
	return err
}

func (h *Handler) loadMixedFleet(ctx context.Context) error {
	target := engine.Yesterday(h.now())
	fleet := demoFleet()
	if err := h.seedFleet(ctx, fleet, target); err != nil {
		return err
	}
	// 101: stockout, 102: lapsed promotion, 103: low stock,
	// 104: significant drop with no flags, 105: healthy
	if err := h.seedTargetDay(ctx, fleet, target, map[engine.StoreID]string{
		"101": "0.50",
		"102": "0.76",
		"103": "0.75",
		"104": "0.60",
	}); err != nil {
		return err
	}
	if err := h.Store.ReplaceInventoryForDates(ctx, []engine.InventoryStatus{
		{StoreID: "101", Date: target, Stockout: true},
		{StoreID: "103", Date: target, LowStock: true},
	}); err != nil {
		return err
	}
	if err := h.Store.UpsertPromotions(ctx, []engine.Promotion{{
		ID:          "LOYALTY-15",
		StoreID:     "102",
		Start:       target.AddDays(-18),
		End:         target.AddDays(-4),
		DiscountPct: engine.MustParseDecimal("0.15"),
	}}); err != nil {
		return err
	}
	_, err := h.RunDiagnosis(ctx, target)
	return err
}
