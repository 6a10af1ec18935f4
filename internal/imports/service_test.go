package imports

import (
	"bytes"
	"context"
	"fmt"
	"strings"
	"testing"

	"github.com/xuri/excelize/v2"

	"github.com/stocktakehq/stockaudit-backend/pkg/db/models"
	pkgerrors "github.com/stocktakehq/stockaudit-backend/pkg/errors"
)

type fakeUpserter struct {
	batches  [][]models.InventoryItem
	failOn   int
	failWith error
}

func (f *fakeUpserter) UpsertBatch(_ context.Context, batch []models.InventoryItem) error {
	if f.failOn > 0 && len(f.batches)+1 == f.failOn {
		return f.failWith
	}
	copied := make([]models.InventoryItem, len(batch))
	copy(copied, batch)
	f.batches = append(f.batches, copied)
	return nil
}

func (f *fakeUpserter) committed() int {
	n := 0
	for _, b := range f.batches {
		n += len(b)
	}
	return n
}

func newTestService(t *testing.T, repo Upserter, batchSize int) Service {
	t.Helper()
	svc, err := NewService(Options{
		Repo:      repo,
		BatchSize: batchSize,
	})
	if err != nil {
		t.Fatalf("NewService: %v", err)
	}
	return svc
}

const csvHeader = "Item Code,Barcode,Brand,Item Name,Expected Quantity,Unit Cost\n"

func csvRow(code, barcode, qty, cost string) string {
	return fmt.Sprintf("%s,%s,ACME,Widget,%s,%s\n", code, barcode, qty, cost)
}

func TestImportCommitsValidFile(t *testing.T) {
	repo := &fakeUpserter{}
	svc := newTestService(t, repo, 0)

	body := csvHeader +
		csvRow("10001", "4000000000001", "10", "2.50") +
		csvRow("10002", "4000000000002", "0", "0")

	res, err := svc.Import(context.Background(), "loc-1", "stock.csv", strings.NewReader(body))
	if err != nil {
		t.Fatalf("Import: %v", err)
	}
	if res.Imported != 2 || res.TotalRows != 2 || res.Duplicates != 0 {
		t.Fatalf("unexpected result: %+v", res)
	}
	if repo.committed() != 2 {
		t.Fatalf("committed = %d, want 2", repo.committed())
	}
	first := repo.batches[0][0]
	if first.ItemCode != "10001" || first.ExpectedQuantity != 10 {
		t.Fatalf("unexpected first record: %+v", first)
	}
	if !first.UnitCost.Equal(mustDecimal(t, "2.50")) {
		t.Fatalf("unit cost = %s, want 2.50", first.UnitCost)
	}
}

func TestImportRejectsWholeFileOnSingleBadRow(t *testing.T) {
	repo := &fakeUpserter{}
	svc := newTestService(t, repo, 0)

	var sb strings.Builder
	sb.WriteString(csvHeader)
	for i := 0; i < 99; i++ {
		sb.WriteString(csvRow("10001", fmt.Sprintf("40000000%05d", i), "1", "1"))
	}
	// row 58 in spreadsheet terms: data index 56
	rows := strings.Split(strings.TrimSuffix(sb.String(), "\n"), "\n")
	rows[57] = "10001,4000000099999,ACME,Widget,-3,1"
	body := strings.Join(rows, "\n")

	_, err := svc.Import(context.Background(), "loc-1", "stock.csv", strings.NewReader(body))
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected validation error, got %v", err)
	}
	if repo.committed() != 0 {
		t.Fatalf("committed = %d, want 0", repo.committed())
	}

	details, ok := typed.Details().(map[string]any)
	if !ok {
		t.Fatalf("details missing: %v", typed.Details())
	}
	msgs := details["errors"].([]string)
	if len(msgs) != 1 || !strings.Contains(msgs[0], "row 58") {
		t.Fatalf("expected a single row 58 message, got %v", msgs)
	}
	counts := details["error_counts"].(map[string]int)
	if counts[KindInvalidQuantity] != 1 {
		t.Fatalf("quantity error count = %d, want 1", counts[KindInvalidQuantity])
	}
}

func TestImportErrorMessagesAreCappedCountsAreNot(t *testing.T) {
	repo := &fakeUpserter{}
	svc := newTestService(t, repo, 0)

	var sb strings.Builder
	sb.WriteString(csvHeader)
	for i := 0; i < 35; i++ {
		sb.WriteString(csvRow("123", fmt.Sprintf("40000000%05d", i), "1", "1"))
	}

	_, err := svc.Import(context.Background(), "loc-1", "stock.csv", strings.NewReader(sb.String()))
	typed := pkgerrors.As(err)
	if typed == nil {
		t.Fatalf("expected validation error, got %v", err)
	}
	details := typed.Details().(map[string]any)
	if msgs := details["errors"].([]string); len(msgs) != defaultMaxErrorMessages {
		t.Fatalf("message count = %d, want %d", len(msgs), defaultMaxErrorMessages)
	}
	counts := details["error_counts"].(map[string]int)
	if counts[KindInvalidItemCodeLength] != 35 {
		t.Fatalf("counter = %d, want 35", counts[KindInvalidItemCodeLength])
	}
	if details["total_errors"].(int) != 35 {
		t.Fatalf("total_errors = %v, want 35", details["total_errors"])
	}
}

func TestImportItemCodeLengthBoundaries(t *testing.T) {
	cases := []struct {
		code string
		ok   bool
	}{
		{"1234", false},
		{"12345", true},
		{"123456", false},
	}
	for _, tc := range cases {
		repo := &fakeUpserter{}
		svc := newTestService(t, repo, 0)
		body := csvHeader + csvRow(tc.code, "4000000000001", "1", "1")
		_, err := svc.Import(context.Background(), "loc-1", "stock.csv", strings.NewReader(body))
		if tc.ok && err != nil {
			t.Errorf("code %q: unexpected error %v", tc.code, err)
		}
		if !tc.ok && pkgerrors.As(err) == nil {
			t.Errorf("code %q: expected validation error, got %v", tc.code, err)
		}
	}
}

func TestImportNumericBoundaries(t *testing.T) {
	cases := []struct {
		qty, cost string
		ok        bool
	}{
		{"0", "0", true},
		{"3.7", "1", true},
		{"-1", "1", false},
		{"1", "-0.01", false},
		{"abc", "1", false},
		{"", "", true},
	}
	for _, tc := range cases {
		repo := &fakeUpserter{}
		svc := newTestService(t, repo, 0)
		body := csvHeader + csvRow("10001", "4000000000001", tc.qty, tc.cost)
		_, err := svc.Import(context.Background(), "loc-1", "stock.csv", strings.NewReader(body))
		if tc.ok && err != nil {
			t.Errorf("qty=%q cost=%q: unexpected error %v", tc.qty, tc.cost, err)
		}
		if !tc.ok && err == nil {
			t.Errorf("qty=%q cost=%q: expected error", tc.qty, tc.cost)
		}
	}
}

func TestImportFractionalQuantityTruncates(t *testing.T) {
	repo := &fakeUpserter{}
	svc := newTestService(t, repo, 0)
	body := csvHeader + csvRow("10001", "4000000000001", "3.7", "1")

	if _, err := svc.Import(context.Background(), "loc-1", "stock.csv", strings.NewReader(body)); err != nil {
		t.Fatalf("Import: %v", err)
	}
	if got := repo.batches[0][0].ExpectedQuantity; got != 3 {
		t.Fatalf("quantity = %d, want 3", got)
	}
}

func TestImportDedupeIsLastWins(t *testing.T) {
	repo := &fakeUpserter{}
	svc := newTestService(t, repo, 0)

	body := csvHeader +
		csvRow("10001", "4000000000001", "5", "1.00") +
		csvRow("10002", "4000000000002", "1", "1.00") +
		csvRow("10003", "4000000000001", "9", "2.00")

	res, err := svc.Import(context.Background(), "loc-1", "stock.csv", strings.NewReader(body))
	if err != nil {
		t.Fatalf("Import: %v", err)
	}
	if res.Imported != 2 || res.Duplicates != 1 || res.TotalRows != 3 {
		t.Fatalf("unexpected result: %+v", res)
	}
	var winner *models.InventoryItem
	for i := range repo.batches[0] {
		if repo.batches[0][i].Barcode == "4000000000001" {
			winner = &repo.batches[0][i]
		}
	}
	if winner == nil {
		t.Fatal("deduped barcode missing from batch")
	}
	if winner.ItemCode != "10003" || winner.ExpectedQuantity != 9 {
		t.Fatalf("later row did not win: %+v", winner)
	}
}

func TestImportBatchFailureReportsPositionAndKeepsCommitted(t *testing.T) {
	repo := &fakeUpserter{failOn: 2, failWith: fmt.Errorf("connection reset")}
	svc := newTestService(t, repo, 2)

	var sb strings.Builder
	sb.WriteString(csvHeader)
	for i := 0; i < 5; i++ {
		sb.WriteString(csvRow("10001", fmt.Sprintf("40000000%05d", i), "1", "1"))
	}

	_, err := svc.Import(context.Background(), "loc-1", "stock.csv", strings.NewReader(sb.String()))
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodePersistence {
		t.Fatalf("expected persistence error, got %v", err)
	}
	if repo.committed() != 2 {
		t.Fatalf("committed = %d, want first batch of 2 kept", repo.committed())
	}
	details := typed.Details().(map[string]any)
	if details["batch_index"].(int) != 2 || details["batches_committed"].(int) != 1 {
		t.Fatalf("unexpected details: %v", details)
	}
	if details["records_committed"].(int) != 2 {
		t.Fatalf("records_committed = %v, want 2", details["records_committed"])
	}
}

func TestImportHeaderHintOnlyForWorkbooks(t *testing.T) {
	svc := newTestService(t, &fakeUpserter{}, 0)

	// a csv with a misnamed barcode column is rejected without the hint
	body := "Item Code,Bar,Brand,Item Name\n10001,4000000000001,ACME,Widget\n"
	_, err := svc.Import(context.Background(), "loc-1", "stock.csv", strings.NewReader(body))
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected validation error, got %v", err)
	}
	details := typed.Details().(map[string]any)
	if _, ok := details["missing_headers"]; ok {
		t.Fatalf("csv rejection carries a header hint: %v", details)
	}

	// the same shape in a workbook does carry it
	book := excelize.NewFile()
	sheet := book.GetSheetName(0)
	if err := book.SetSheetRow(sheet, "A1", &[]any{"Item Code", "Bar", "Brand", "Item Name"}); err != nil {
		t.Fatalf("SetSheetRow: %v", err)
	}
	if err := book.SetSheetRow(sheet, "A2", &[]any{"10001", "4000000000001", "ACME", "Widget"}); err != nil {
		t.Fatalf("SetSheetRow: %v", err)
	}
	buf, err := book.WriteToBuffer()
	if err != nil {
		t.Fatalf("WriteToBuffer: %v", err)
	}

	_, err = svc.Import(context.Background(), "loc-1", "stock.xlsx", bytes.NewReader(buf.Bytes()))
	typed = pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected validation error, got %v", err)
	}
	details = typed.Details().(map[string]any)
	missing, ok := details["missing_headers"].([]string)
	if !ok || len(missing) != 1 || missing[0] != "barcode" {
		t.Fatalf("missing_headers = %v, want [barcode]", details["missing_headers"])
	}
}

func TestImportRejectsUnknownExtension(t *testing.T) {
	svc := newTestService(t, &fakeUpserter{}, 0)
	_, err := svc.Import(context.Background(), "loc-1", "stock.pdf", strings.NewReader("x"))
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeParse {
		t.Fatalf("expected parse error, got %v", err)
	}
}
