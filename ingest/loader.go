/*
Package ingest implements the CSV ingestion pipeline that feeds the
diagnostics store.

PURPOSE:
  Loads the four upstream extracts (stores.csv, daily_sales.csv,
  promotions.csv, inventory_snapshots.csv) from a drop directory,
  validates each against its data contract, and persists the clean
  batches. The philosophy is fail-fast: a file that violates its
  contract is quarantined whole, never partially loaded or silently
  repaired.

DATA CONTRACTS:
  Each file type has required columns and business rules (see
  validate.go). The promotions contract is the strict one: a missing
  discount_pct column is treated as upstream schema drift and hard-fails
  the file so nobody downstream trusts a silently broken feed.

QUARANTINE:
  Failed files are moved to the quarantine directory with a timestamp
  prefix, and a sibling .errors.json records what was wrong and when
  (see quarantine.go).

BATCH SUMMARY:
  Every run produces a BatchSummary (also persisted to the
  ingest_batches table) listing per-file outcomes so operators can see
  at a glance what loaded and what didn't.

SEE ALSO:
  - store/sqlite: where validated batches land
  - engine:       consumes the loaded tables as a Snapshot
*/
package ingest

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/retailops/diagnostics-engine/engine"
	"github.com/retailops/diagnostics-engine/store/sqlite"
)

// File processing order matters: stores first, so referential checks on
// the fact files can run against the freshest reference set.
var pipelineFiles = []struct {
	name     string
	dataType string
}{
	{"stores.csv", "stores"},
	{"daily_sales.csv", "sales"},
	{"promotions.csv", "promotions"},
	{"inventory_snapshots.csv", "inventory"},
}

// FileResult is the outcome for one file in a batch.
type FileResult struct {
	File           string   `json:"file"`
	Status         string   `json:"status"` // "success", "failed", "skipped"
	Records        int      `json:"records,omitempty"`
	Errors         []string `json:"errors,omitempty"`
	QuarantinePath string   `json:"quarantine_path,omitempty"`
}

// BatchSummary is the outcome of one ingestion run.
type BatchSummary struct {
	BatchID          string       `json:"batch_id"`
	Status           string       `json:"status"` // "completed", "partial", "failed"
	FilesProcessed   int          `json:"files_processed"`
	RecordsProcessed int          `json:"records_processed"`
	Results          []FileResult `json:"results"`
	StartedAt        time.Time    `json:"started_at"`
	CompletedAt      time.Time    `json:"completed_at"`
}

// Loader runs the ingestion pipeline over a data drop directory.
type Loader struct {
	Store         *sqlite.Store
	Log           logrus.FieldLogger
	DataDir       string
	QuarantineDir string

	// Now is stubbed in tests; defaults to time.Now.
	Now func() time.Time
}

func (l *Loader) now() time.Time {
	if l.Now != nil {
		return l.Now()
	}
	return time.Now()
}

// Run processes every pipeline file present in DataDir. Missing files
// are skipped, invalid files are quarantined, and the batch summary is
// persisted regardless of outcome. The returned error covers only
// infrastructure failures; validation failures are reported per-file.
func (l *Loader) Run(ctx context.Context) (BatchSummary, error) {
	started := l.now()
	summary := BatchSummary{
		BatchID:   uuid.NewString(),
		StartedAt: started,
	}
	log := l.Log.WithField("batch_id", summary.BatchID)
	log.Info("starting ingestion batch")

	knownStores, err := l.knownStoreIDs(ctx)
	if err != nil {
		return summary, fmt.Errorf("failed to load store reference set: %w", err)
	}

	for _, pf := range pipelineFiles {
		if err := ctx.Err(); err != nil {
			return summary, err
		}
		result := l.processFile(ctx, pf.name, pf.dataType, knownStores)
		summary.Results = append(summary.Results, result)
		if result.Status == "success" {
			summary.FilesProcessed++
			summary.RecordsProcessed += result.Records
		}
	}

	summary.CompletedAt = l.now()
	summary.Status = batchStatus(summary.Results)

	if err := l.saveSummary(ctx, summary); err != nil {
		return summary, fmt.Errorf("failed to persist batch summary: %w", err)
	}

	log.WithFields(logrus.Fields{
		"status":  summary.Status,
		"files":   summary.FilesProcessed,
		"records": summary.RecordsProcessed,
	}).Info("ingestion batch finished")
	return summary, nil
}

func (l *Loader) processFile(ctx context.Context, name, dataType string, knownStores map[engine.StoreID]bool) FileResult {
	path := filepath.Join(l.DataDir, name)
	log := l.Log.WithField("file", name)

	if _, err := os.Stat(path); os.IsNotExist(err) {
		log.Warn("file not found, skipping")
		return FileResult{File: name, Status: "skipped", Errors: []string{"file_not_found"}}
	}

	header, rows, err := readCSV(path)
	if err != nil {
		log.WithError(err).Error("failed to read file")
		return l.fail(name, path, []string{err.Error()})
	}
	log.WithField("records", len(rows)).Info("loaded file")

	if errs := validateColumns(dataType, header); len(errs) > 0 {
		log.WithField("errors", errs).Error("contract violation")
		return l.fail(name, path, errs)
	}

	var (
		records int
		errs    []string
	)
	switch dataType {
	case "stores":
		stores, verrs := parseStores(header, rows)
		if len(verrs) > 0 {
			errs = verrs
			break
		}
		if err := l.Store.ReplaceStores(ctx, stores); err != nil {
			return l.fail(name, path, []string{err.Error()})
		}
		for _, st := range stores {
			knownStores[st.ID] = true
		}
		records = len(stores)
	case "sales":
		facts, verrs := parseSales(header, rows, knownStores)
		if len(verrs) > 0 {
			errs = verrs
			break
		}
		if err := l.Store.UpsertDailySales(ctx, facts); err != nil {
			return l.fail(name, path, []string{err.Error()})
		}
		records = len(facts)
	case "promotions":
		promos, verrs := parsePromotions(header, rows, knownStores)
		if len(verrs) > 0 {
			errs = verrs
			break
		}
		if err := l.Store.UpsertPromotions(ctx, promos); err != nil {
			return l.fail(name, path, []string{err.Error()})
		}
		records = len(promos)
	case "inventory":
		inv, verrs := parseInventory(header, rows, knownStores)
		if len(verrs) > 0 {
			errs = verrs
			break
		}
		if err := l.Store.ReplaceInventoryForDates(ctx, inv); err != nil {
			return l.fail(name, path, []string{err.Error()})
		}
		records = len(inv)
	}

	if len(errs) > 0 {
		log.WithField("errors", errs).Error("validation failed")
		return l.fail(name, path, errs)
	}

	log.Info("file processed")
	return FileResult{File: name, Status: "success", Records: records}
}

// fail quarantines the offending file and reports the failure.
func (l *Loader) fail(name, path string, errs []string) FileResult {
	qpath, qerr := quarantine(path, l.QuarantineDir, l.now(), errs)
	if qerr != nil {
		l.Log.WithError(qerr).WithField("file", name).Error("failed to quarantine file")
		errs = append(errs, "quarantine failed: "+qerr.Error())
	} else {
		l.Log.WithFields(logrus.Fields{"file": name, "quarantine": qpath}).Warn("file quarantined")
	}
	return FileResult{File: name, Status: "failed", Errors: errs, QuarantinePath: qpath}
}

func (l *Loader) knownStoreIDs(ctx context.Context) (map[engine.StoreID]bool, error) {
	stores, err := l.Store.ListStores(ctx)
	if err != nil {
		return nil, err
	}
	known := make(map[engine.StoreID]bool, len(stores))
	for _, st := range stores {
		known[st.ID] = true
	}
	return known, nil
}

func (l *Loader) saveSummary(ctx context.Context, s BatchSummary) error {
	detail, err := json.Marshal(s.Results)
	if err != nil {
		return err
	}
	completed := s.CompletedAt
	return l.Store.SaveIngestBatch(ctx, sqlite.IngestBatch{
		ID:               s.BatchID,
		Status:           s.Status,
		FilesProcessed:   s.FilesProcessed,
		RecordsProcessed: s.RecordsProcessed,
		DetailJSON:       string(detail),
		StartedAt:        s.StartedAt,
		CompletedAt:      &completed,
	})
}

func batchStatus(results []FileResult) string {
	var ok, failed int
	for _, r := range results {
		switch r.Status {
		case "success":
			ok++
		case "failed":
			failed++
		}
	}
	switch {
	case failed == 0:
		return "completed"
	case ok == 0:
		return "failed"
	default:
		return "partial"
	}
}
