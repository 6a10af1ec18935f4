package imports

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/stocktakehq/stockaudit-backend/pkg/db/models"
)

const itemCodeLength = 5

// Error kinds counted per category. Counters are never capped; only the
// human-readable message list is.
const (
	KindMissingField          = "missingField"
	KindInvalidItemCodeLength = "invalidItemCodeLength"
	KindInvalidQuantity       = "invalidQuantity"
	KindInvalidCost           = "invalidCost"
)

// errorReport accumulates row-level validation failures. Messages stop
// accruing at maxMessages, counts keep going.
type errorReport struct {
	maxMessages int
	Messages    []string
	Counts      map[string]int
	Total       int
}

func newErrorReport(maxMessages int) *errorReport {
	return &errorReport{
		maxMessages: maxMessages,
		Counts:      make(map[string]int),
	}
}

func (r *errorReport) add(kind string, rowNumber int, format string, args ...any) {
	r.Total++
	r.Counts[kind]++
	if len(r.Messages) < r.maxMessages {
		msg := fmt.Sprintf("row %d: %s", rowNumber, fmt.Sprintf(format, args...))
		r.Messages = append(r.Messages, msg)
	}
}

func (r *errorReport) hasErrors() bool { return r.Total > 0 }

// validateRow checks one data row. The first failed check rejects the row;
// later checks are not evaluated for it.
func validateRow(rw row, locationID string, report *errorReport) (models.InventoryItem, bool) {
	var item models.InventoryItem

	for _, field := range requiredHeaders {
		if strings.TrimSpace(rw.Values[field]) == "" {
			report.add(KindMissingField, rw.Number, "missing required field %q", field)
			return item, false
		}
	}

	itemCode := strings.TrimSpace(rw.Values["item_code"])
	if len(itemCode) != itemCodeLength {
		report.add(KindInvalidItemCodeLength, rw.Number,
			"item_code %q must be exactly %d characters", itemCode, itemCodeLength)
		return item, false
	}

	qty, ok := parseQuantity(rw.Values["expected_quantity"])
	if !ok {
		report.add(KindInvalidQuantity, rw.Number,
			"expected_quantity %q is not a non-negative integer", rw.Values["expected_quantity"])
		return item, false
	}

	cost, ok := parseCost(rw.Values["unit_cost"])
	if !ok {
		report.add(KindInvalidCost, rw.Number,
			"unit_cost %q is not a non-negative amount", rw.Values["unit_cost"])
		return item, false
	}

	item = models.InventoryItem{
		LocationID:       locationID,
		Barcode:          strings.TrimSpace(rw.Values["barcode"]),
		ItemCode:         itemCode,
		Brand:            strings.TrimSpace(rw.Values["brand"]),
		ItemName:         strings.TrimSpace(rw.Values["item_name"]),
		ExpectedQuantity: qty,
		UnitCost:         cost,
	}
	return item, true
}

// parseQuantity accepts non-negative integers. A missing or empty cell
// defaults to zero. Fractional values are truncated toward zero, so "3.7"
// imports as 3 but "-1" is rejected.
func parseQuantity(raw string) (int, bool) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return 0, true
	}
	if n, err := strconv.Atoi(raw); err == nil {
		if n < 0 {
			return 0, false
		}
		return n, true
	}
	f, err := strconv.ParseFloat(raw, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	n := int(math.Trunc(f))
	if n < 0 {
		return 0, false
	}
	return n, true
}

// parseCost accepts non-negative decimal amounts; empty cells default to
// zero.
func parseCost(raw string) (decimal.Decimal, bool) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return decimal.Zero, true
	}
	d, err := decimal.NewFromString(raw)
	if err != nil || d.IsNegative() {
		return decimal.Decimal{}, false
	}
	return d, true
}

// dedupeKey identifies an inventory record within an import. Later rows with
// the same key overwrite earlier ones.
func dedupeKey(locationID, barcode string) string {
	return locationID + "-" + strings.TrimSpace(barcode)
}
