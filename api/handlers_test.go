/*
handlers_test.go - Unit tests for API handlers

Tests for:
- Scenario loading and the performance endpoint
- Run triggering and run history
- Config and error responses
*/
package api

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/retailops/diagnostics-engine/engine"
	"github.com/retailops/diagnostics-engine/store/sqlite"
)

// Fixed clock: a Tuesday, so "yesterday" is Monday 2025-06-09.
var testNow = time.Date(2025, 6, 10, 12, 0, 0, 0, time.UTC)

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()

	st, err := sqlite.New(filepath.Join(t.TempDir(), "api.db"))
	require.NoError(t, err)
	t.Cleanup(func() { st.Close() })

	eng, err := engine.New(engine.DefaultConfig())
	require.NoError(t, err)

	log := logrus.New()
	log.SetLevel(logrus.WarnLevel)

	h := NewHandler(st, eng, nil, log)
	h.Now = func() time.Time { return testNow }

	srv := httptest.NewServer(NewRouter(h))
	t.Cleanup(srv.Close)
	return srv
}

func doJSON(t *testing.T, method, url string, body any) (*http.Response, []byte) {
	t.Helper()

	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(data)
	}
	req, err := http.NewRequest(method, url, reader)
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	data, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	resp.Body.Close()
	return resp, data
}

func loadScenario(t *testing.T, srv *httptest.Server, id string) {
	t.Helper()
	resp, body := doJSON(t, http.MethodPost, srv.URL+"/api/scenarios/load", LoadScenarioRequest{ScenarioID: id})
	require.Equal(t, http.StatusOK, resp.StatusCode, "load %s: %s", id, body)
}

func TestAPI_StockoutWaveScenario(t *testing.T) {
	// GIVEN the stockout-wave scenario
	srv := newTestServer(t)
	loadScenario(t, srv, "stockout-wave")

	// WHEN fetching the latest performance view
	resp, body := doJSON(t, http.MethodGet, srv.URL+"/api/performance", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var perf PerformanceResponse
	require.NoError(t, json.Unmarshal(body, &perf))

	// THEN the three hit stores are flagged as stockouts, worst gap first
	assert.Equal(t, "2025-06-09", perf.Date)
	require.Equal(t, 3, perf.Count)
	assert.Equal(t, "101", perf.Records[0].StoreID)
	for _, r := range perf.Records {
		assert.Equal(t, "stockout", r.ProbableCause)
		assert.Equal(t, 0.9, r.ConfidenceScore)
		assert.True(t, r.HasStockout)
		assert.Equal(t, "Check inventory and expedite restock", r.RecommendedAction)
	}
}

func TestAPI_HealthyFleetFlagsNothing(t *testing.T) {
	// GIVEN a fleet tracking its baselines
	srv := newTestServer(t)
	loadScenario(t, srv, "healthy-fleet")

	// WHEN fetching performance
	resp, body := doJSON(t, http.MethodGet, srv.URL+"/api/performance", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var perf PerformanceResponse
	require.NoError(t, json.Unmarshal(body, &perf))

	// THEN no store is flagged
	assert.Equal(t, 0, perf.Count)
}

func TestAPI_LapsedPromotionScenario(t *testing.T) {
	// GIVEN a store whose discount campaign recently ended
	srv := newTestServer(t)
	loadScenario(t, srv, "lapsed-promotion")

	resp, body := doJSON(t, http.MethodGet, srv.URL+"/api/performance", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var perf PerformanceResponse
	require.NoError(t, json.Unmarshal(body, &perf))

	require.Equal(t, 1, perf.Count)
	assert.Equal(t, "103", perf.Records[0].StoreID)
	assert.Equal(t, "promotion_missing", perf.Records[0].ProbableCause)
	assert.Equal(t, "Verify promotion execution", perf.Records[0].RecommendedAction)
}

func TestAPI_TriggerRunAndHistory(t *testing.T) {
	// GIVEN seeded data (scenario load already records one run)
	srv := newTestServer(t)
	loadScenario(t, srv, "healthy-fleet")

	// WHEN triggering a manual run without a date
	resp, body := doJSON(t, http.MethodPost, srv.URL+"/api/runs", RunRequest{})
	require.Equal(t, http.StatusCreated, resp.StatusCode, "%s", body)

	var run RunDTO
	require.NoError(t, json.Unmarshal(body, &run))
	assert.Equal(t, "2025-06-09", run.TargetDate)
	assert.Equal(t, "completed", run.Status)
	assert.Equal(t, 0, run.RecordsFlagged)

	// THEN history shows both runs
	resp, body = doJSON(t, http.MethodGet, srv.URL+"/api/runs", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var runs []RunDTO
	require.NoError(t, json.Unmarshal(body, &runs))
	assert.Len(t, runs, 2)
}

func TestAPI_TriggerRunOnEmptyDatabase(t *testing.T) {
	// GIVEN no stores loaded at all
	srv := newTestServer(t)

	// WHEN triggering a run
	resp, body := doJSON(t, http.MethodPost, srv.URL+"/api/runs", RunRequest{Date: "2025-06-09"})

	// THEN the request is rejected, and the failure shows up in history
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode, "%s", body)

	resp, body = doJSON(t, http.MethodGet, srv.URL+"/api/runs", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var runs []RunDTO
	require.NoError(t, json.Unmarshal(body, &runs))
	require.Len(t, runs, 1)
	assert.Equal(t, "failed", runs[0].Status)
}

func TestAPI_PerformanceValidation(t *testing.T) {
	srv := newTestServer(t)

	// Bad date format
	resp, _ := doJSON(t, http.MethodGet, srv.URL+"/api/performance?date=June+9", nil)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	// No runs yet, no default date to serve
	resp, _ = doJSON(t, http.MethodGet, srv.URL+"/api/performance", nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestAPI_ListStores(t *testing.T) {
	srv := newTestServer(t)
	loadScenario(t, srv, "healthy-fleet")

	resp, body := doJSON(t, http.MethodGet, srv.URL+"/api/stores", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var stores []StoreDTO
	require.NoError(t, json.Unmarshal(body, &stores))
	assert.Len(t, stores, 5)
	assert.Equal(t, "Downtown Flagship", stores[0].Name)
}

func TestAPI_GetConfig(t *testing.T) {
	srv := newTestServer(t)

	resp, body := doJSON(t, http.MethodGet, srv.URL+"/api/config", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var cfg ConfigDTO
	require.NoError(t, json.Unmarshal(body, &cfg))
	assert.Equal(t, 28, cfg.LookbackInstances)
	assert.Equal(t, 0.8, cfg.UnderperformThreshold)
	assert.Equal(t, 14, cfg.PromotionRecencyDays)
	assert.Equal(t, 1000.0, cfg.HighImpactDollars)
}

func TestAPI_UnknownScenario(t *testing.T) {
	srv := newTestServer(t)

	resp, _ := doJSON(t, http.MethodPost, srv.URL+"/api/scenarios/load",
		LoadScenarioRequest{ScenarioID: "nope"})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestAPI_ScenarioTracking(t *testing.T) {
	srv := newTestServer(t)

	// Nothing loaded yet
	resp, body := doJSON(t, http.MethodGet, srv.URL+"/api/scenarios/current", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "null", string(bytes.TrimSpace(body)))

	// Load, then check tracking
	loadScenario(t, srv, "mixed-fleet")
	resp, body = doJSON(t, http.MethodGet, srv.URL+"/api/scenarios/current", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var current ScenarioDTO
	require.NoError(t, json.Unmarshal(body, &current))
	assert.Equal(t, "mixed-fleet", current.ID)

	// Reset clears it
	resp, _ = doJSON(t, http.MethodPost, srv.URL+"/api/scenarios/reset", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	resp, body = doJSON(t, http.MethodGet, srv.URL+"/api/scenarios/current", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "null", string(bytes.TrimSpace(body)))
}

func TestAPI_MixedFleetCauses(t *testing.T) {
	// GIVEN one store per probable cause
	srv := newTestServer(t)
	loadScenario(t, srv, "mixed-fleet")

	resp, body := doJSON(t, http.MethodGet, srv.URL+"/api/performance", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var perf PerformanceResponse
	require.NoError(t, json.Unmarshal(body, &perf))
	require.Equal(t, 4, perf.Count)

	causes := make(map[string]string)
	for _, r := range perf.Records {
		causes[r.StoreID] = r.ProbableCause
	}
	assert.Equal(t, "stockout", causes["101"])
	assert.Equal(t, "promotion_missing", causes["102"])
	assert.Equal(t, "low_inventory", causes["103"])
	assert.Equal(t, "significant_drop", causes["104"])
}
