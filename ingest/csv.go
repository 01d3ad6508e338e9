package ingest

import (
	"encoding/csv"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/retailops/diagnostics-engine/engine"
)

// readCSV reads a whole file into a header map and data rows. Files are
// daily extracts of at most a few hundred thousand rows, so slurping is
// fine.
func readCSV(path string) (map[string]int, [][]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, nil, err
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.TrimLeadingSpace = true
	all, err := r.ReadAll()
	if err != nil {
		return nil, nil, fmt.Errorf("malformed CSV: %w", err)
	}
	if len(all) == 0 {
		return nil, nil, fmt.Errorf("empty file")
	}

	header := make(map[string]int, len(all[0]))
	for i, col := range all[0] {
		header[strings.TrimSpace(col)] = i
	}
	return header, all[1:], nil
}

func field(header map[string]int, row []string, col string) string {
	i, ok := header[col]
	if !ok || i >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[i])
}

func parseStores(header map[string]int, rows [][]string) ([]engine.Store, []string) {
	var (
		stores []engine.Store
		errs   []string
	)
	seen := make(map[engine.StoreID]bool)
	for n, row := range rows {
		id := engine.StoreID(field(header, row, "store_id"))
		if id == "" {
			errs = append(errs, fmt.Sprintf("row %d: empty store_id", n+2))
			continue
		}
		if seen[id] {
			errs = append(errs, fmt.Sprintf("row %d: duplicate store_id %s", n+2, id))
			continue
		}
		seen[id] = true
		stores = append(stores, engine.Store{
			ID:     id,
			Name:   field(header, row, "store_name"),
			Region: field(header, row, "region"),
		})
	}
	return stores, errs
}

func parseSales(header map[string]int, rows [][]string, known map[engine.StoreID]bool) ([]engine.DailySalesFact, []string) {
	var (
		facts []engine.DailySalesFact
		errs  []string
	)
	negative := 0
	unknown := 0
	for n, row := range rows {
		date, err := engine.ParseDay(field(header, row, "date"))
		if err != nil {
			errs = append(errs, fmt.Sprintf("row %d: bad date: %v", n+2, err))
			continue
		}
		sales, err := decimal.NewFromString(field(header, row, "total_sales"))
		if err != nil {
			errs = append(errs, fmt.Sprintf("row %d: bad total_sales: %v", n+2, err))
			continue
		}
		if sales.IsNegative() {
			negative++
			continue
		}
		count := 0
		if raw := field(header, row, "transaction_count"); raw != "" {
			count, err = strconv.Atoi(raw)
			if err != nil || count < 0 {
				errs = append(errs, fmt.Sprintf("row %d: bad transaction_count %q", n+2, raw))
				continue
			}
		}
		id := engine.StoreID(field(header, row, "store_id"))
		if len(known) > 0 && !known[id] {
			unknown++
			continue
		}
		facts = append(facts, engine.DailySalesFact{
			StoreID: id, Date: date, TotalSales: sales, TransactionCount: count,
		})
	}
	if negative > 0 {
		errs = append(errs, fmt.Sprintf("found %d records with negative sales", negative))
	}
	if unknown > 0 {
		errs = append(errs, fmt.Sprintf("found %d records referencing unknown stores", unknown))
	}
	return facts, errs
}

func parsePromotions(header map[string]int, rows [][]string, known map[engine.StoreID]bool) ([]engine.Promotion, []string) {
	var (
		promos []engine.Promotion
		errs   []string
	)
	badDiscount := 0
	unknown := 0
	for n, row := range rows {
		start, err := engine.ParseDay(field(header, row, "start_date"))
		if err != nil {
			errs = append(errs, fmt.Sprintf("row %d: bad start_date: %v", n+2, err))
			continue
		}
		end, err := engine.ParseDay(field(header, row, "end_date"))
		if err != nil {
			errs = append(errs, fmt.Sprintf("row %d: bad end_date: %v", n+2, err))
			continue
		}
		if end.Before(start) {
			errs = append(errs, fmt.Sprintf("row %d: end_date before start_date", n+2))
			continue
		}
		pct, err := decimal.NewFromString(field(header, row, "discount_pct"))
		if err != nil {
			errs = append(errs, fmt.Sprintf("row %d: bad discount_pct: %v", n+2, err))
			continue
		}
		if pct.IsNegative() || pct.GreaterThan(decimal.NewFromInt(1)) {
			badDiscount++
			continue
		}
		id := engine.StoreID(field(header, row, "store_id"))
		if len(known) > 0 && !known[id] {
			unknown++
			continue
		}
		promos = append(promos, engine.Promotion{
			ID:          engine.PromotionID(field(header, row, "promotion_id")),
			StoreID:     id,
			Start:       start,
			End:         end,
			DiscountPct: pct,
		})
	}
	if badDiscount > 0 {
		errs = append(errs, fmt.Sprintf("found %d invalid discount values (not between 0-1)", badDiscount))
	}
	if unknown > 0 {
		errs = append(errs, fmt.Sprintf("found %d records referencing unknown stores", unknown))
	}
	return promos, errs
}

func parseInventory(header map[string]int, rows [][]string, known map[engine.StoreID]bool) ([]engine.InventoryStatus, []string) {
	var (
		inv  []engine.InventoryStatus
		errs []string
	)
	unknown := 0
	for n, row := range rows {
		date, err := engine.ParseDay(field(header, row, "date"))
		if err != nil {
			errs = append(errs, fmt.Sprintf("row %d: bad date: %v", n+2, err))
			continue
		}
		id := engine.StoreID(field(header, row, "store_id"))
		if len(known) > 0 && !known[id] {
			unknown++
			continue
		}
		inv = append(inv, engine.InventoryStatus{
			StoreID:  id,
			Date:     date,
			Stockout: parseBool(field(header, row, "stockout_flag")),
			LowStock: parseBool(field(header, row, "low_stock_flag")),
		})
	}
	if unknown > 0 {
		errs = append(errs, fmt.Sprintf("found %d records referencing unknown stores", unknown))
	}
	return inv, errs
}

// parseBool accepts the spellings upstream extracts actually use.
func parseBool(s string) bool {
	switch strings.ToLower(s) {
	case "true", "1", "yes", "t":
		return true
	default:
		return false
	}
}
