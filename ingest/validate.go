package ingest

import "fmt"

// requiredColumns defines the data contract per file type. Validation is
// fail-fast only: a file missing contract columns is quarantined whole,
// never patched or partially loaded.
var requiredColumns = map[string][]string{
	"stores":     {"store_id", "store_name", "region"},
	"sales":      {"date", "store_id", "total_sales"},
	"promotions": {"promotion_id", "store_id", "start_date", "end_date", "discount_pct"},
	"inventory":  {"date", "store_id"},
}

// validateColumns checks the header against the contract for dataType.
func validateColumns(dataType string, header map[string]int) []string {
	var missing []string
	for _, col := range requiredColumns[dataType] {
		if _, ok := header[col]; !ok {
			missing = append(missing, col)
		}
	}
	if len(missing) == 0 {
		return nil
	}

	errs := []string{fmt.Sprintf("missing required columns: %v", missing)}
	// A promotions feed without discount_pct means the upstream schema
	// changed underneath us. Stop hard rather than load untrustworthy data.
	if dataType == "promotions" {
		for _, col := range missing {
			if col == "discount_pct" {
				errs = append(errs,
					"SCHEMA DRIFT DETECTED: discount_pct column missing. "+
						"Pipeline stopped to protect data trust. "+
						"Contact upstream team to resolve column name change.")
			}
		}
	}
	return errs
}
