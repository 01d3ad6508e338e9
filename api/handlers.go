/*
handlers.go - HTTP API handlers for the diagnostics service

PURPOSE:
  Exposes the root-cause attribution engine via REST API. Handles HTTP
  request/response, JSON serialization, and delegates to domain logic.

ENDPOINTS:
  Performance:
    GET    /api/performance            Flagged stores for a date (?date=YYYY-MM-DD)
    GET    /api/stores                 Store reference data

  Runs:
    POST   /api/runs                   Trigger a diagnosis run
    GET    /api/runs                   Run history

  Ingestion:
    POST   /api/ingest                 Run the CSV ingestion batch

  Config:
    GET    /api/config                 Active detection thresholds

  Scenarios:
    GET    /api/scenarios              List demo scenarios
    POST   /api/scenarios/load         Load a demo scenario
    POST   /api/scenarios/reset        Clear the database

REQUEST FLOW:
  1. Parse HTTP request
  2. Validate input
  3. Call domain logic (engine, ingest, store)
  4. Serialize response
  5. Handle errors

ERROR HANDLING:
  Errors are returned as JSON with appropriate HTTP status:
  - 400: Validation errors, invalid input
  - 404: Resource not found
  - 422: Data quality defects (unknown store references)
  - 500: Internal errors

SECURITY NOTE:
  Currently NO authentication or authorization. All endpoints are public.

SEE ALSO:
  - dto.go: Request/response data structures
  - scenarios.go: Demo scenario loaders
  - server.go: Router setup and middleware
*/
package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/retailops/diagnostics-engine/engine"
	"github.com/retailops/diagnostics-engine/ingest"
	"github.com/retailops/diagnostics-engine/store/sqlite"
)

// =============================================================================
// HANDLER CONTEXT
// =============================================================================

// Handler holds all dependencies for HTTP handlers.
type Handler struct {
	Store  *sqlite.Store
	Engine *engine.Engine
	Loader *ingest.Loader
	Log    logrus.FieldLogger

	// Now is stubbed in tests; defaults to time.Now.
	Now func() time.Time

	// Track currently loaded scenario
	currentScenario string
}

// NewHandler creates a new handler with the given dependencies.
func NewHandler(store *sqlite.Store, eng *engine.Engine, loader *ingest.Loader, log logrus.FieldLogger) *Handler {
	return &Handler{
		Store:  store,
		Engine: eng,
		Loader: loader,
		Log:    log,
	}
}

func (h *Handler) now() time.Time {
	if h.Now != nil {
		return h.Now()
	}
	return time.Now()
}

// =============================================================================
// STORE HANDLERS
// =============================================================================

// ListStores returns all store reference data.
// GET /api/stores
func (h *Handler) ListStores(w http.ResponseWriter, r *http.Request) {
	stores, err := h.Store.ListStores(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list stores", err)
		return
	}

	dtos := make([]StoreDTO, len(stores))
	for i, s := range stores {
		dtos[i] = toStoreDTO(s)
	}
	writeJSON(w, http.StatusOK, dtos)
}

// =============================================================================
// PERFORMANCE HANDLERS
// =============================================================================

// GetPerformance returns the flagged stores for a date, worst gap first.
// Without ?date= it serves the most recent diagnosed date.
// GET /api/performance?date=2025-06-09
func (h *Handler) GetPerformance(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var target engine.Day
	if raw := r.URL.Query().Get("date"); raw != "" {
		d, err := engine.ParseDay(raw)
		if err != nil {
			writeError(w, http.StatusBadRequest, "Invalid date, expected YYYY-MM-DD", err)
			return
		}
		target = d
	} else {
		latest, ok, err := h.Store.LatestRecordDate(ctx)
		if err != nil {
			writeError(w, http.StatusInternalServerError, "Failed to resolve latest date", err)
			return
		}
		if !ok {
			writeError(w, http.StatusNotFound, "No diagnosis has run yet", nil)
			return
		}
		target = latest
	}

	records, err := h.Store.GetPerformanceRecords(ctx, target)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to load performance records", err)
		return
	}

	writeJSON(w, http.StatusOK, PerformanceResponse{
		Date:    target.String(),
		Count:   len(records),
		Records: toRecordDTOs(records),
	})
}

// =============================================================================
// RUN HANDLERS
// =============================================================================

// TriggerRun executes a diagnosis run for the requested date (yesterday
// when the body omits one) and returns the run record.
// POST /api/runs
func (h *Handler) TriggerRun(w http.ResponseWriter, r *http.Request) {
	var req RunRequest
	if r.Body != nil && r.ContentLength != 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "Invalid request body", err)
			return
		}
	}

	target := engine.Yesterday(h.now())
	if req.Date != "" {
		d, err := engine.ParseDay(req.Date)
		if err != nil {
			writeError(w, http.StatusBadRequest, "Invalid date, expected YYYY-MM-DD", err)
			return
		}
		target = d
	}

	run, err := h.RunDiagnosis(r.Context(), target)
	if err != nil {
		switch {
		case engine.IsDataQuality(err):
			writeError(w, http.StatusUnprocessableEntity, "Data quality defect", err)
		case errors.Is(err, engine.ErrEmptySnapshot):
			writeError(w, http.StatusBadRequest, "No stores loaded", err)
		default:
			writeError(w, http.StatusInternalServerError, "Diagnosis failed", err)
		}
		return
	}

	writeJSON(w, http.StatusCreated, toRunDTO(run))
}

// ListRuns returns run history, most recent first.
// GET /api/runs?limit=20
func (h *Handler) ListRuns(w http.ResponseWriter, r *http.Request) {
	limit := 50
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			writeError(w, http.StatusBadRequest, "Invalid limit", err)
			return
		}
		limit = n
	}

	runs, err := h.Store.ListDiagnosisRuns(r.Context(), limit)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list runs", err)
		return
	}

	dtos := make([]RunDTO, len(runs))
	for i, run := range runs {
		dtos[i] = toRunDTO(run)
	}
	writeJSON(w, http.StatusOK, dtos)
}

// RunDiagnosis loads the snapshot for target, runs the engine, and
// persists both the record set and the run audit entry. Shared by the
// TriggerRun handler and the nightly scheduler.
func (h *Handler) RunDiagnosis(ctx context.Context, target engine.Day) (sqlite.DiagnosisRun, error) {
	started := h.now()
	run := sqlite.DiagnosisRun{
		ID:         uuid.NewString(),
		TargetDate: target,
		Status:     "running",
		StartedAt:  started,
		CreatedAt:  started,
	}
	if err := h.Store.SaveDiagnosisRun(ctx, run); err != nil {
		return run, err
	}

	log := h.Log.WithFields(logrus.Fields{"run_id": run.ID, "target_date": target.String()})
	log.Info("starting diagnosis run")

	records, err := h.diagnose(ctx, target)
	completed := h.now()
	run.CompletedAt = &completed

	if err != nil {
		run.Status = "failed"
		run.Error = err.Error()
		log.WithError(err).Error("diagnosis run failed")
		if saveErr := h.Store.SaveDiagnosisRun(ctx, run); saveErr != nil {
			log.WithError(saveErr).Error("failed to record run failure")
		}
		return run, err
	}

	if err := h.Store.ReplacePerformanceRecords(ctx, target, records); err != nil {
		run.Status = "failed"
		run.Error = err.Error()
		if saveErr := h.Store.SaveDiagnosisRun(ctx, run); saveErr != nil {
			log.WithError(saveErr).Error("failed to record run failure")
		}
		return run, err
	}

	run.Status = "completed"
	run.RecordsFlagged = len(records)
	if err := h.Store.SaveDiagnosisRun(ctx, run); err != nil {
		return run, err
	}

	log.WithField("flagged", len(records)).Info("diagnosis run completed")
	return run, nil
}

func (h *Handler) diagnose(ctx context.Context, target engine.Day) ([]engine.PerformanceRecord, error) {
	// History horizon: one calendar week per lookback instance, since
	// baselines only consume same-weekday observations.
	cfg := h.Engine.Config()
	from := target.AddDays(-cfg.LookbackInstances * 7)

	snap, err := h.Store.LoadSnapshot(ctx, from, target)
	if err != nil {
		return nil, err
	}
	return h.Engine.Diagnose(ctx, snap, target)
}

// =============================================================================
// INGESTION HANDLERS
// =============================================================================

// TriggerIngest runs the CSV ingestion batch over the drop directory.
// POST /api/ingest
func (h *Handler) TriggerIngest(w http.ResponseWriter, r *http.Request) {
	if h.Loader == nil {
		writeError(w, http.StatusNotFound, "Ingestion not configured", nil)
		return
	}

	summary, err := h.Loader.Run(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Ingestion failed", err)
		return
	}

	writeJSON(w, http.StatusOK, IngestResponse{
		BatchID:          summary.BatchID,
		Status:           summary.Status,
		FilesProcessed:   summary.FilesProcessed,
		RecordsProcessed: summary.RecordsProcessed,
	})
}

// =============================================================================
// CONFIG HANDLERS
// =============================================================================

// GetConfig returns the active detection thresholds.
// GET /api/config
func (h *Handler) GetConfig(w http.ResponseWriter, r *http.Request) {
	cfg := h.Engine.Config()
	writeJSON(w, http.StatusOK, ConfigDTO{
		LookbackInstances:        cfg.LookbackInstances,
		UnderperformThreshold:    cfg.UnderperformThreshold,
		WeekendThreshold:         cfg.WeekendThreshold,
		SignificantDropThreshold: cfg.SignificantDropThreshold,
		PromotionRecencyDays:     cfg.PromotionRecencyDays,
		HighImpactDollars:        cfg.HighImpactDollars,
		MediumImpactDollars:      cfg.MediumImpactDollars,
		Workers:                  cfg.Workers,
	})
}

// =============================================================================
// RESPONSE HELPERS
// =============================================================================

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, message string, err error) {
	resp := ErrorResponse{Error: message}
	if err != nil {
		resp.Details = err.Error()
	}
	writeJSON(w, status, resp)
}
