package imports

import (
	"strings"
	"testing"

	"github.com/shopspring/decimal"
)

func mustDecimal(t *testing.T, s string) decimal.Decimal {
	t.Helper()
	d, err := decimal.NewFromString(s)
	if err != nil {
		t.Fatalf("decimal %q: %v", s, err)
	}
	return d
}

func TestNormalizeHeadersFoldsAliases(t *testing.T) {
	got := normalizeHeaders([]string{" Item Code ", "ItemCode", "code", "Barcode", "Unit Cost"})
	want := []string{"item_code", "item_code", "item_code", "barcode", "unit_cost"}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("header %d = %q, want %q", i, got[i], want[i])
		}
	}
}

func TestParseCSVSkipsEmptyLinesAndNumbersRows(t *testing.T) {
	body := "Item Code,Barcode\n" +
		"10001,4000000000001\n" +
		",\n" +
		"10002,4000000000002\n"

	parsed, err := parseCSV(strings.NewReader(body))
	if err != nil {
		t.Fatalf("parseCSV: %v", err)
	}
	if len(parsed.Rows) != 2 {
		t.Fatalf("row count = %d, want 2", len(parsed.Rows))
	}
	if parsed.Rows[0].Number != 2 {
		t.Errorf("first data row number = %d, want 2", parsed.Rows[0].Number)
	}
	// the blank line keeps its spreadsheet position
	if parsed.Rows[1].Number != 4 {
		t.Errorf("second data row number = %d, want 4", parsed.Rows[1].Number)
	}
	if parsed.Rows[1].Values["barcode"] != "4000000000002" {
		t.Errorf("unexpected values: %v", parsed.Rows[1].Values)
	}
}

func TestParseCSVRejectsEmptyFile(t *testing.T) {
	if _, err := parseCSV(strings.NewReader("")); err == nil {
		t.Fatal("expected error for empty file")
	}
}

func TestMissingHeaders(t *testing.T) {
	missing := missingHeaders([]string{"item_code", "barcode"})
	if len(missing) != 2 || missing[0] != "brand" || missing[1] != "item_name" {
		t.Fatalf("missing = %v", missing)
	}
	if got := missingHeaders(requiredHeaders); got != nil {
		t.Fatalf("expected none missing, got %v", got)
	}
}

func TestBatchSizeScalesWithTotal(t *testing.T) {
	cases := []struct{ total, want int }{
		{1, 100},
		{500, 100},
		{501, 250},
		{2000, 250},
		{2001, 500},
	}
	for _, tc := range cases {
		if got := batchSizeFor(tc.total); got != tc.want {
			t.Errorf("batchSizeFor(%d) = %d, want %d", tc.total, got, tc.want)
		}
	}
}
