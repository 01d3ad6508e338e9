/*
errors.go - Error types for the attribution engine

PURPOSE:
  The engine is a pure computation over already-validated inputs, so its
  error surface is deliberately small. Absent baselines and zero
  denominators are NOT errors - they silently exclude a store-day from
  evaluation. What remains is data-shape defects the engine refuses to
  paper over.

ERROR CATEGORIES:
  1. Configuration errors - defined next to Config in config.go
  2. Data-quality errors  - referential breaks the engine will not repair

USAGE:
  var dq *engine.DataQualityError
  if errors.As(err, &dq) {
      // route back to the ingestion collaborator
  }
*/
package engine

import (
	"errors"
	"fmt"
	"strings"
)

// =============================================================================
// SENTINEL ERRORS - Use with errors.Is()
// =============================================================================

var (
	// ErrMissingDimension is returned when a fact references a store that
	// does not exist in the reference data. The engine neither repairs nor
	// drops such rows; the defect belongs to ingestion.
	ErrMissingDimension = errors.New("fact references unknown store")

	// ErrEmptySnapshot is returned when a diagnosis is requested over a
	// snapshot with no stores at all.
	ErrEmptySnapshot = errors.New("snapshot contains no stores")
)

// =============================================================================
// STRUCTURED ERRORS - Carry additional context
// =============================================================================

// DataQualityError reports every unknown store referenced by input facts.
// All offenders are collected in one pass so ingestion can fix the batch
// in a single round trip.
type DataQualityError struct {
	UnknownStores []StoreID
}

func (e *DataQualityError) Error() string {
	ids := make([]string, len(e.UnknownStores))
	for i, id := range e.UnknownStores {
		ids[i] = string(id)
	}
	return fmt.Sprintf("facts reference %d unknown store(s): %s",
		len(e.UnknownStores), strings.Join(ids, ", "))
}

func (e *DataQualityError) Unwrap() error {
	return ErrMissingDimension
}

// IsDataQuality returns true if the error should be routed back upstream
// to the ingestion collaborator rather than retried.
func IsDataQuality(err error) bool {
	return errors.Is(err, ErrMissingDimension)
}
