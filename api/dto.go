/*
dto.go - Data Transfer Objects for API requests and responses

PURPOSE:
  Defines the JSON structures for API communication. These types decouple
  the internal domain model from the external API contract, allowing:
  - Field renaming without breaking clients
  - API-specific validation
  - Version evolution

NAMING CONVENTION:
  - *DTO: Response types returned to clients
  - *Request: Request body types from clients
  - *Response: Complex response wrappers

MONEY:
  Dollar amounts are serialized as strings so the dashboard never sees
  float rounding artifacts.

SEE ALSO:
  - handlers.go: Handlers producing these DTOs
*/
package api

import (
	"time"

	"github.com/retailops/diagnostics-engine/engine"
	"github.com/retailops/diagnostics-engine/store/sqlite"
)

// StoreDTO is a store reference record.
type StoreDTO struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	Region string `json:"region"`
}

// PerformanceRecordDTO is one flagged store-day.
type PerformanceRecordDTO struct {
	Date                     string  `json:"date"`
	StoreID                  string  `json:"store_id"`
	StoreName                string  `json:"store_name"`
	Region                   string  `json:"region"`
	TotalSales               string  `json:"total_sales"`
	ExpectedSales            string  `json:"expected_sales"`
	PerformanceVsExpectation string  `json:"performance_vs_expectation"`
	PerformanceGapDollars    string  `json:"performance_gap_dollars"`
	ProbableCause            string  `json:"probable_cause"`
	ConfidenceScore          float64 `json:"confidence_score"`
	HasStockout              bool    `json:"has_stockout"`
	HasLowStock              bool    `json:"has_low_stock"`
	HasPromotion             bool    `json:"has_promotion"`
	DayOfWeek                string  `json:"day_of_week"`
	IsWeekend                bool    `json:"is_weekend"`
	ImpactCategory           string  `json:"impact_category"`
	RecommendedAction        string  `json:"recommended_action"`
}

// PerformanceResponse wraps a day's record set.
type PerformanceResponse struct {
	Date    string                 `json:"date"`
	Count   int                    `json:"count"`
	Records []PerformanceRecordDTO `json:"records"`
}

// RunRequest triggers a diagnosis run.
type RunRequest struct {
	Date string `json:"date,omitempty"` // YYYY-MM-DD, defaults to yesterday
}

// RunDTO is one diagnosis run's audit record.
type RunDTO struct {
	ID             string `json:"id"`
	TargetDate     string `json:"target_date"`
	Status         string `json:"status"`
	RecordsFlagged int    `json:"records_flagged"`
	Error          string `json:"error,omitempty"`
	StartedAt      string `json:"started_at"`
	CompletedAt    string `json:"completed_at,omitempty"`
}

// ConfigDTO exposes the active detection thresholds.
type ConfigDTO struct {
	LookbackInstances        int     `json:"lookback_instances"`
	UnderperformThreshold    float64 `json:"underperform_threshold"`
	WeekendThreshold         float64 `json:"weekend_threshold"`
	SignificantDropThreshold float64 `json:"significant_drop_threshold"`
	PromotionRecencyDays     int     `json:"promotion_recency_days"`
	HighImpactDollars        float64 `json:"high_impact_dollars"`
	MediumImpactDollars      float64 `json:"medium_impact_dollars"`
	Workers                  int     `json:"workers"`
}

// ScenarioDTO describes one loadable demo scenario.
type ScenarioDTO struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
}

// LoadScenarioRequest selects a scenario to load.
type LoadScenarioRequest struct {
	ScenarioID string `json:"scenario_id"`
}

// IngestResponse reports a triggered ingestion batch.
type IngestResponse struct {
	BatchID          string `json:"batch_id"`
	Status           string `json:"status"`
	FilesProcessed   int    `json:"files_processed"`
	RecordsProcessed int    `json:"records_processed"`
}

// ErrorResponse is the uniform error shape.
type ErrorResponse struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}

func toStoreDTO(s engine.Store) StoreDTO {
	return StoreDTO{ID: string(s.ID), Name: s.Name, Region: s.Region}
}

func toRecordDTO(r engine.PerformanceRecord) PerformanceRecordDTO {
	return PerformanceRecordDTO{
		Date:                     r.Date.String(),
		StoreID:                  string(r.StoreID),
		StoreName:                r.StoreName,
		Region:                   r.Region,
		TotalSales:               r.TotalSales.String(),
		ExpectedSales:            r.ExpectedSales.String(),
		PerformanceVsExpectation: r.PerformanceVsExpectation.String(),
		PerformanceGapDollars:    r.PerformanceGapDollars.String(),
		ProbableCause:            string(r.ProbableCause),
		ConfidenceScore:          r.ConfidenceScore,
		HasStockout:              r.HasStockout,
		HasLowStock:              r.HasLowStock,
		HasPromotion:             r.HasPromotion,
		DayOfWeek:                r.DayOfWeek,
		IsWeekend:                r.IsWeekend,
		ImpactCategory:           string(r.ImpactCategory),
		RecommendedAction:        r.RecommendedAction,
	}
}

func toRecordDTOs(records []engine.PerformanceRecord) []PerformanceRecordDTO {
	dtos := make([]PerformanceRecordDTO, len(records))
	for i, r := range records {
		dtos[i] = toRecordDTO(r)
	}
	return dtos
}

func toRunDTO(r sqlite.DiagnosisRun) RunDTO {
	dto := RunDTO{
		ID:             r.ID,
		TargetDate:     r.TargetDate.String(),
		Status:         r.Status,
		RecordsFlagged: r.RecordsFlagged,
		Error:          r.Error,
		StartedAt:      r.StartedAt.Format(time.RFC3339),
	}
	if r.CompletedAt != nil {
		dto.CompletedAt = r.CompletedAt.Format(time.RFC3339)
	}
	return dto
}
