/*
Package sqlite provides the SQLite-backed persistence layer for the
diagnostics service.

PURPOSE:
  Persists the four tabular inputs delivered by ingestion (stores, daily
  sales, promotions, inventory flags), the PerformanceRecord output set,
  and the diagnosis run history the dashboard surfaces. In production the
  same patterns apply to PostgreSQL - only minor SQL dialect differences.

KEY TABLES:
  stores:              Store reference data
  daily_sales:         One row per store-day that actually occurred
  promotions:          Inclusive promotion date ranges per store
  inventory_status:    SKU-level stock flags, collapsed at read time
  performance_records: Diagnosis output, fully recomputed per run
  diagnosis_runs:      Run audit history
  ingest_batches:      Ingestion batch summaries

RECOMPUTE SEMANTICS:
  Writing performance records for a date is DELETE-for-date + INSERT
  inside one transaction. The computation upstream is deterministic, so a
  re-run simply overwrites the date with an identical set - no
  deduplication or versioning needed.

MONEY:
  Dollar amounts are stored as TEXT via decimal.String() and parsed back
  with decimal.NewFromString, never as floating point.

CONCURRENCY:
  Uses sync.RWMutex for thread-safety. In production with PostgreSQL,
  database-level concurrency control handles this instead.

WAL MODE:
  SQLite is opened with WAL (Write-Ahead Logging) so dashboard reads
  don't block the nightly write path.

USAGE:
  st, err := sqlite.New("./data/retail.db")
  if err != nil {
      log.Fatal(err)
  }
  defer st.Close()

MIGRATION:
  Schema is auto-migrated on New(). For production, use a proper
  migration tool (golang-migrate, goose) with versioned migrations.

SEE ALSO:
  - engine: consumes LoadSnapshot, produces the records saved here
  - ingest: writes the input tables
  - api:    reads records and run history
*/
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"sync"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"github.com/shopspring/decimal"

	"github.com/retailops/diagnostics-engine/engine"
)

// Store implements all persistence for the diagnostics service.
type Store struct {
	db *sql.DB
	mu sync.RWMutex
}

// New creates a new SQLite store with the given database path.
// Use ":memory:" for an in-memory database.
func New(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite3", dbPath+"?_foreign_keys=on&_journal_mode=WAL")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	store := &Store{db: db}
	if err := store.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	return store, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// migrate creates the database schema.
func (s *Store) migrate() error {
	schema := `
	-- Store reference data
	CREATE TABLE IF NOT EXISTS stores (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		region TEXT NOT NULL
	);

	-- Daily sales facts: one row per store-day that actually occurred.
	-- Absent rows mean "no observation", distinct from zero sales.
	CREATE TABLE IF NOT EXISTS daily_sales (
		store_id TEXT NOT NULL,
		date TEXT NOT NULL,
		total_sales TEXT NOT NULL,
		transaction_count INTEGER NOT NULL,
		PRIMARY KEY (store_id, date)
	);

	-- Snapshot loads scan by date range (hot path)
	CREATE INDEX IF NOT EXISTS idx_daily_sales_date
		ON daily_sales(date);

	-- Promotions: inclusive date ranges
	CREATE TABLE IF NOT EXISTS promotions (
		id TEXT PRIMARY KEY,
		store_id TEXT NOT NULL,
		start_date TEXT NOT NULL,
		end_date TEXT NOT NULL,
		discount_pct TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_promotions_store_range
		ON promotions(store_id, end_date, start_date);

	-- Inventory flags: possibly several SKU-level rows per store-day
	CREATE TABLE IF NOT EXISTS inventory_status (
		store_id TEXT NOT NULL,
		date TEXT NOT NULL,
		stockout INTEGER NOT NULL DEFAULT 0,
		low_stock INTEGER NOT NULL DEFAULT 0
	);

	CREATE INDEX IF NOT EXISTS idx_inventory_store_date
		ON inventory_status(store_id, date);

	-- Diagnosis output: fully recomputed per run for its target date
	CREATE TABLE IF NOT EXISTS performance_records (
		date TEXT NOT NULL,
		store_id TEXT NOT NULL,
		store_name TEXT NOT NULL,
		region TEXT NOT NULL,
		total_sales TEXT NOT NULL,
		expected_sales TEXT NOT NULL,
		performance_vs_expectation TEXT NOT NULL,
		performance_gap_dollars TEXT NOT NULL,
		probable_cause TEXT NOT NULL,
		confidence_score REAL NOT NULL,
		has_stockout INTEGER NOT NULL,
		has_low_stock INTEGER NOT NULL,
		has_promotion INTEGER NOT NULL,
		day_of_week TEXT NOT NULL,
		is_weekend INTEGER NOT NULL,
		impact_category TEXT NOT NULL,
		recommended_action TEXT NOT NULL,
		PRIMARY KEY (date, store_id)
	);

	CREATE INDEX IF NOT EXISTS idx_performance_date
		ON performance_records(date);

	-- Diagnosis run audit history
	CREATE TABLE IF NOT EXISTS diagnosis_runs (
		id TEXT PRIMARY KEY,
		target_date TEXT NOT NULL,
		status TEXT NOT NULL,
		records_flagged INTEGER NOT NULL DEFAULT 0,
		error TEXT,
		started_at TEXT NOT NULL,
		completed_at TEXT,
		created_at TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_runs_target_date
		ON diagnosis_runs(target_date);

	-- Ingestion batch summaries
	CREATE TABLE IF NOT EXISTS ingest_batches (
		id TEXT PRIMARY KEY,
		status TEXT NOT NULL,
		files_processed INTEGER NOT NULL,
		records_processed INTEGER NOT NULL,
		detail_json TEXT,
		started_at TEXT NOT NULL,
		completed_at TEXT
	);
	`

	_, err := s.db.Exec(schema)
	return err
}

// =============================================================================
// INPUT TABLES - Written by ingestion, read back as engine snapshots
// =============================================================================

// ReplaceStores replaces the full store reference set atomically.
// Reference data arrives whole each batch; partial merges invite drift.
func (s *Store) ReplaceStores(ctx context.Context, stores []engine.Store) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM stores`); err != nil {
		return err
	}
	stmt, err := tx.PrepareContext(ctx, `INSERT INTO stores (id, name, region) VALUES (?, ?, ?)`)
	if err != nil {
		return err
	}
	defer stmt.Close()
	for _, st := range stores {
		if _, err := stmt.ExecContext(ctx, string(st.ID), st.Name, st.Region); err != nil {
			return err
		}
	}
	return tx.Commit()
}

// UpsertDailySales writes sales facts, overwriting any prior fact for the
// same store-day. Re-delivered batches are therefore harmless.
func (s *Store) UpsertDailySales(ctx context.Context, facts []engine.DailySalesFact) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO daily_sales (store_id, date, total_sales, transaction_count)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(store_id, date) DO UPDATE SET
			total_sales = excluded.total_sales,
			transaction_count = excluded.transaction_count`)
	if err != nil {
		return err
	}
	defer stmt.Close()
	for _, f := range facts {
		if _, err := stmt.ExecContext(ctx,
			string(f.StoreID), f.Date.String(), f.TotalSales.String(), f.TransactionCount); err != nil {
			return err
		}
	}
	return tx.Commit()
}

// UpsertPromotions writes promotions keyed by promotion ID.
func (s *Store) UpsertPromotions(ctx context.Context, promos []engine.Promotion) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO promotions (id, store_id, start_date, end_date, discount_pct)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			store_id = excluded.store_id,
			start_date = excluded.start_date,
			end_date = excluded.end_date,
			discount_pct = excluded.discount_pct`)
	if err != nil {
		return err
	}
	defer stmt.Close()
	for _, p := range promos {
		if _, err := stmt.ExecContext(ctx,
			string(p.ID), string(p.StoreID), p.Start.String(), p.End.String(), p.DiscountPct.String()); err != nil {
			return err
		}
	}
	return tx.Commit()
}

// ReplaceInventoryForDates clears and rewrites inventory rows for the
// dates present in the batch. Inventory arrives as full daily snapshots,
// so per-row upserts would leave stale SKU rows behind.
func (s *Store) ReplaceInventoryForDates(ctx context.Context, rows []engine.InventoryStatus) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	dates := make(map[string]bool)
	for _, r := range rows {
		dates[r.Date.String()] = true
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	for d := range dates {
		if _, err := tx.ExecContext(ctx, `DELETE FROM inventory_status WHERE date = ?`, d); err != nil {
			return err
		}
	}
	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO inventory_status (store_id, date, stockout, low_stock)
		VALUES (?, ?, ?, ?)`)
	if err != nil {
		return err
	}
	defer stmt.Close()
	for _, r := range rows {
		if _, err := stmt.ExecContext(ctx,
			string(r.StoreID), r.Date.String(), boolToInt(r.Stockout), boolToInt(r.LowStock)); err != nil {
			return err
		}
	}
	return tx.Commit()
}

// ListStores returns all store reference data ordered by ID.
func (s *Store) ListStores(ctx context.Context) ([]engine.Store, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.listStoresLocked(ctx)
}

func (s *Store) listStoresLocked(ctx context.Context) ([]engine.Store, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT id, name, region FROM stores ORDER BY id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var stores []engine.Store
	for rows.Next() {
		var st engine.Store
		var id string
		if err := rows.Scan(&id, &st.Name, &st.Region); err != nil {
			return nil, err
		}
		st.ID = engine.StoreID(id)
		stores = append(stores, st)
	}
	return stores, rows.Err()
}

// LoadSnapshot materializes everything the diagnosis of `target` needs:
// all stores, sales history back to `from` (the baseline lookback
// horizon), promotions still relevant to the window, and the target
// day's inventory flags.
func (s *Store) LoadSnapshot(ctx context.Context, from, target engine.Day) (engine.Snapshot, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var snap engine.Snapshot

	stores, err := s.listStoresLocked(ctx)
	if err != nil {
		return snap, err
	}
	snap.Stores = stores

	salesRows, err := s.db.QueryContext(ctx, `
		SELECT store_id, date, total_sales, transaction_count
		FROM daily_sales
		WHERE date >= ? AND date <= ?
		ORDER BY store_id, date`,
		from.String(), target.String())
	if err != nil {
		return snap, err
	}
	defer salesRows.Close()
	for salesRows.Next() {
		var (
			id, date, sales string
			count           int
		)
		if err := salesRows.Scan(&id, &date, &sales, &count); err != nil {
			return snap, err
		}
		d, err := engine.ParseDay(date)
		if err != nil {
			return snap, fmt.Errorf("corrupt date in daily_sales: %w", err)
		}
		amount, err := decimal.NewFromString(sales)
		if err != nil {
			return snap, fmt.Errorf("corrupt amount in daily_sales: %w", err)
		}
		snap.Sales = append(snap.Sales, engine.DailySalesFact{
			StoreID:          engine.StoreID(id),
			Date:             d,
			TotalSales:       amount,
			TransactionCount: count,
		})
	}
	if err := salesRows.Err(); err != nil {
		return snap, err
	}

	promoRows, err := s.db.QueryContext(ctx, `
		SELECT id, store_id, start_date, end_date, discount_pct
		FROM promotions
		WHERE end_date >= ?
		ORDER BY id`,
		from.String())
	if err != nil {
		return snap, err
	}
	defer promoRows.Close()
	for promoRows.Next() {
		var id, storeID, start, end, discount string
		if err := promoRows.Scan(&id, &storeID, &start, &end, &discount); err != nil {
			return snap, err
		}
		startDay, err := engine.ParseDay(start)
		if err != nil {
			return snap, fmt.Errorf("corrupt start_date in promotions: %w", err)
		}
		endDay, err := engine.ParseDay(end)
		if err != nil {
			return snap, fmt.Errorf("corrupt end_date in promotions: %w", err)
		}
		pct, err := decimal.NewFromString(discount)
		if err != nil {
			return snap, fmt.Errorf("corrupt discount_pct in promotions: %w", err)
		}
		snap.Promotions = append(snap.Promotions, engine.Promotion{
			ID:          engine.PromotionID(id),
			StoreID:     engine.StoreID(storeID),
			Start:       startDay,
			End:         endDay,
			DiscountPct: pct,
		})
	}
	if err := promoRows.Err(); err != nil {
		return snap, err
	}

	invRows, err := s.db.QueryContext(ctx, `
		SELECT store_id, date, stockout, low_stock
		FROM inventory_status
		WHERE date = ?`,
		target.String())
	if err != nil {
		return snap, err
	}
	defer invRows.Close()
	for invRows.Next() {
		var (
			id, date           string
			stockout, lowStock int
		)
		if err := invRows.Scan(&id, &date, &stockout, &lowStock); err != nil {
			return snap, err
		}
		d, err := engine.ParseDay(date)
		if err != nil {
			return snap, fmt.Errorf("corrupt date in inventory_status: %w", err)
		}
		snap.Inventory = append(snap.Inventory, engine.InventoryStatus{
			StoreID:  engine.StoreID(id),
			Date:     d,
			Stockout: stockout != 0,
			LowStock: lowStock != 0,
		})
	}
	return snap, invRows.Err()
}

// =============================================================================
// PERFORMANCE RECORDS - Diagnosis output
// =============================================================================

// ReplacePerformanceRecords atomically swaps the record set for one date.
// Delete-then-insert in a single transaction keeps re-runs idempotent
// without any versioning.
func (s *Store) ReplacePerformanceRecords(ctx context.Context, date engine.Day, records []engine.PerformanceRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM performance_records WHERE date = ?`, date.String()); err != nil {
		return err
	}
	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO performance_records (
			date, store_id, store_name, region,
			total_sales, expected_sales, performance_vs_expectation, performance_gap_dollars,
			probable_cause, confidence_score,
			has_stockout, has_low_stock, has_promotion,
			day_of_week, is_weekend, impact_category, recommended_action
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for _, r := range records {
		if _, err := stmt.ExecContext(ctx,
			r.Date.String(), string(r.StoreID), r.StoreName, r.Region,
			r.TotalSales.String(), r.ExpectedSales.String(),
			r.PerformanceVsExpectation.String(), r.PerformanceGapDollars.String(),
			string(r.ProbableCause), r.ConfidenceScore,
			boolToInt(r.HasStockout), boolToInt(r.HasLowStock), boolToInt(r.HasPromotion),
			r.DayOfWeek, boolToInt(r.IsWeekend), string(r.ImpactCategory), r.RecommendedAction,
		); err != nil {
			return err
		}
	}
	return tx.Commit()
}

// GetPerformanceRecords returns the record set for one date, worst dollar
// gap first, the triage order downstream consumers rely on.
func (s *Store) GetPerformanceRecords(ctx context.Context, date engine.Day) ([]engine.PerformanceRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx, `
		SELECT date, store_id, store_name, region,
		       total_sales, expected_sales, performance_vs_expectation, performance_gap_dollars,
		       probable_cause, confidence_score,
		       has_stockout, has_low_stock, has_promotion,
		       day_of_week, is_weekend, impact_category, recommended_action
		FROM performance_records
		WHERE date = ?
		ORDER BY CAST(performance_gap_dollars AS REAL) DESC, store_id ASC`,
		date.String())
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var records []engine.PerformanceRecord
	for rows.Next() {
		var (
			r                               engine.PerformanceRecord
			dateStr, storeID, cause, impact string
			sales, expected, ratio, gap     string
			stockout, lowStock, promo, wknd int
		)
		if err := rows.Scan(
			&dateStr, &storeID, &r.StoreName, &r.Region,
			&sales, &expected, &ratio, &gap,
			&cause, &r.ConfidenceScore,
			&stockout, &lowStock, &promo,
			&r.DayOfWeek, &wknd, &impact, &r.RecommendedAction,
		); err != nil {
			return nil, err
		}
		d, err := engine.ParseDay(dateStr)
		if err != nil {
			return nil, fmt.Errorf("corrupt date in performance_records: %w", err)
		}
		r.Date = d
		r.StoreID = engine.StoreID(storeID)
		if r.TotalSales, err = decimal.NewFromString(sales); err != nil {
			return nil, fmt.Errorf("corrupt total_sales in performance_records: %w", err)
		}
		if r.ExpectedSales, err = decimal.NewFromString(expected); err != nil {
			return nil, fmt.Errorf("corrupt expected_sales in performance_records: %w", err)
		}
		if r.PerformanceVsExpectation, err = decimal.NewFromString(ratio); err != nil {
			return nil, fmt.Errorf("corrupt performance_vs_expectation in performance_records: %w", err)
		}
		if r.PerformanceGapDollars, err = decimal.NewFromString(gap); err != nil {
			return nil, fmt.Errorf("corrupt performance_gap_dollars in performance_records: %w", err)
		}
		r.ProbableCause = engine.Cause(cause)
		r.HasStockout = stockout != 0
		r.HasLowStock = lowStock != 0
		r.HasPromotion = promo != 0
		r.IsWeekend = wknd != 0
		r.ImpactCategory = engine.Impact(impact)
		records = append(records, r)
	}
	return records, rows.Err()
}

// LatestRecordDate returns the most recent date that has performance
// records, or ok=false when no run has produced any yet.
func (s *Store) LatestRecordDate(ctx context.Context) (engine.Day, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var dateStr sql.NullString
	err := s.db.QueryRowContext(ctx, `SELECT MAX(date) FROM performance_records`).Scan(&dateStr)
	if err != nil {
		return engine.Day{}, false, err
	}
	if !dateStr.Valid {
		return engine.Day{}, false, nil
	}
	d, err := engine.ParseDay(dateStr.String)
	if err != nil {
		return engine.Day{}, false, err
	}
	return d, true, nil
}

// =============================================================================
// DIAGNOSIS RUNS - Audit history
// =============================================================================

// DiagnosisRun is one engine invocation's audit record.
type DiagnosisRun struct {
	ID             string
	TargetDate     engine.Day
	Status         string // "running", "completed", "failed"
	RecordsFlagged int
	Error          string
	StartedAt      time.Time
	CompletedAt    *time.Time
	CreatedAt      time.Time
}

// SaveDiagnosisRun inserts or updates a run record.
func (s *Store) SaveDiagnosisRun(ctx context.Context, r DiagnosisRun) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	var completed any
	if r.CompletedAt != nil {
		completed = r.CompletedAt.UTC().Format(time.RFC3339)
	}
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO diagnosis_runs (id, target_date, status, records_flagged, error, started_at, completed_at, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			status = excluded.status,
			records_flagged = excluded.records_flagged,
			error = excluded.error,
			completed_at = excluded.completed_at`,
		r.ID, r.TargetDate.String(), r.Status, r.RecordsFlagged, r.Error,
		r.StartedAt.UTC().Format(time.RFC3339), completed,
		r.CreatedAt.UTC().Format(time.RFC3339))
	return err
}

// ListDiagnosisRuns returns run history, most recent first.
func (s *Store) ListDiagnosisRuns(ctx context.Context, limit int) ([]DiagnosisRun, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if limit <= 0 {
		limit = 50
	}
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, target_date, status, records_flagged, COALESCE(error, ''), started_at, completed_at, created_at
		FROM diagnosis_runs
		ORDER BY created_at DESC, id DESC
		LIMIT ?`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var runs []DiagnosisRun
	for rows.Next() {
		var (
			r                  DiagnosisRun
			target, started    string
			created            string
			completed          sql.NullString
		)
		if err := rows.Scan(&r.ID, &target, &r.Status, &r.RecordsFlagged, &r.Error, &started, &completed, &created); err != nil {
			return nil, err
		}
		d, err := engine.ParseDay(target)
		if err != nil {
			return nil, err
		}
		r.TargetDate = d
		if t, err := time.Parse(time.RFC3339, started); err == nil {
			r.StartedAt = t
		}
		if completed.Valid {
			if t, err := time.Parse(time.RFC3339, completed.String); err == nil {
				r.CompletedAt = &t
			}
		}
		if t, err := time.Parse(time.RFC3339, created); err == nil {
			r.CreatedAt = t
		}
		runs = append(runs, r)
	}
	return runs, rows.Err()
}

// =============================================================================
// INGEST BATCHES
// =============================================================================

// IngestBatch summarizes one ingestion run.
type IngestBatch struct {
	ID               string
	Status           string // "completed", "partial", "failed"
	FilesProcessed   int
	RecordsProcessed int
	DetailJSON       string
	StartedAt        time.Time
	CompletedAt      *time.Time
}

// SaveIngestBatch inserts or updates a batch summary.
func (s *Store) SaveIngestBatch(ctx context.Context, b IngestBatch) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	var completed any
	if b.CompletedAt != nil {
		completed = b.CompletedAt.UTC().Format(time.RFC3339)
	}
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO ingest_batches (id, status, files_processed, records_processed, detail_json, started_at, completed_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			status = excluded.status,
			files_processed = excluded.files_processed,
			records_processed = excluded.records_processed,
			detail_json = excluded.detail_json,
			completed_at = excluded.completed_at`,
		b.ID, b.Status, b.FilesProcessed, b.RecordsProcessed, b.DetailJSON,
		b.StartedAt.UTC().Format(time.RFC3339), completed)
	return err
}

// =============================================================================
// MAINTENANCE
// =============================================================================

// Reset clears every table. Scenario loading only; never call in production.
func (s *Store) Reset(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, table := range []string{
		"stores", "daily_sales", "promotions", "inventory_status",
		"performance_records", "diagnosis_runs", "ingest_batches",
	} {
		if _, err := s.db.ExecContext(ctx, "DELETE FROM "+table); err != nil {
			return err
		}
	}
	return nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
