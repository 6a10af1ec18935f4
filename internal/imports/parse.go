package imports

import (
	"encoding/csv"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/xuri/excelize/v2"
)

// HeaderRowOffset converts a zero-based data row index into the row number a
// user sees in a spreadsheet editor: the header occupies row 1, so the first
// data row is row 2.
const HeaderRowOffset = 2

// headerAliases maps accepted alternate column spellings (after
// normalization) onto the canonical field name.
var headerAliases = map[string]string{
	"item_code": "item_code",
	"itemcode":  "item_code",
	"item_no":   "item_code",
	"code":      "item_code",
}

var requiredHeaders = []string{"item_code", "barcode", "brand", "item_name"}

// row is one data row after header normalization. Number is the 2-based
// spreadsheet row used in error messages.
type row struct {
	Number int
	Values map[string]string
}

// parseResult carries the parsed rows plus workbook metadata used for
// error hints.
type parseResult struct {
	Rows       []row
	Headers    []string
	SheetCount int
	Workbook   bool
}

// parseFile dispatches on the file extension. Anything that is not CSV or a
// workbook is a parse failure for the whole import.
func parseFile(filename string, r io.Reader) (*parseResult, error) {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".csv":
		return parseCSV(r)
	case ".xlsx", ".xlsm":
		return parseWorkbook(r)
	default:
		return nil, fmt.Errorf("unsupported file type %q", filepath.Ext(filename))
	}
}

func parseCSV(r io.Reader) (*parseResult, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	records, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("read csv: %w", err)
	}
	if len(records) == 0 {
		return nil, fmt.Errorf("csv has no header row")
	}

	headers := normalizeHeaders(records[0])
	result := &parseResult{Headers: headers, SheetCount: 1}

	for i, record := range records[1:] {
		if isEmptyRecord(record) {
			continue
		}
		result.Rows = append(result.Rows, buildRow(headers, record, i+HeaderRowOffset))
	}
	return result, nil
}

func parseWorkbook(r io.Reader) (*parseResult, error) {
	book, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("open workbook: %w", err)
	}
	defer book.Close()

	sheets := book.GetSheetList()
	if len(sheets) == 0 {
		return nil, fmt.Errorf("workbook has no sheets")
	}

	// only the first sheet is imported
	records, err := book.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("read sheet %q: %w", sheets[0], err)
	}
	if len(records) == 0 {
		return nil, fmt.Errorf("sheet %q has no header row", sheets[0])
	}

	headers := normalizeHeaders(records[0])
	result := &parseResult{Headers: headers, SheetCount: len(sheets), Workbook: true}

	for i, record := range records[1:] {
		if isEmptyRecord(record) {
			continue
		}
		result.Rows = append(result.Rows, buildRow(headers, record, i+HeaderRowOffset))
	}
	return result, nil
}

// normalizeHeaders trims, lower-cases, and underscores header names, then
// folds alternate spellings onto their canonical field ("Item Code" and
// "itemcode" both become item_code).
func normalizeHeaders(raw []string) []string {
	headers := make([]string, len(raw))
	for i, h := range raw {
		name := strings.ToLower(strings.TrimSpace(h))
		name = strings.ReplaceAll(name, " ", "_")
		if canonical, ok := headerAliases[name]; ok {
			name = canonical
		}
		headers[i] = name
	}
	return headers
}

func buildRow(headers []string, record []string, number int) row {
	values := make(map[string]string, len(headers))
	for i, h := range headers {
		if h == "" || i >= len(record) {
			continue
		}
		values[h] = record[i]
	}
	return row{Number: number, Values: values}
}

func isEmptyRecord(record []string) bool {
	for _, field := range record {
		if strings.TrimSpace(field) != "" {
			return false
		}
	}
	return true
}

// missingHeaders reports which required columns the header row lacks, for the
// header-mismatch hint on rejected workbook imports.
func missingHeaders(headers []string) []string {
	present := make(map[string]bool, len(headers))
	for _, h := range headers {
		present[h] = true
	}
	var missing []string
	for _, h := range requiredHeaders {
		if !present[h] {
			missing = append(missing, h)
		}
	}
	return missing
}
