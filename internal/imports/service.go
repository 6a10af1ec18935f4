package imports

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/stocktakehq/stockaudit-backend/pkg/db/models"
	pkgerrors "github.com/stocktakehq/stockaudit-backend/pkg/errors"
	"github.com/stocktakehq/stockaudit-backend/pkg/logger"
	"github.com/stocktakehq/stockaudit-backend/pkg/metrics"
)

// Service runs spreadsheet imports end to end: parse, validate, dedupe,
// then batched upsert.
type Service interface {
	Import(ctx context.Context, locationID, filename string, file io.Reader) (*Result, error)
}

// Result summarizes a committed import.
type Result struct {
	TotalRows  int `json:"total_rows"`
	Imported   int `json:"imported"`
	Duplicates int `json:"duplicates"`
	Batches    int `json:"batches"`
}

// Options configure the import service.
type Options struct {
	Repo             Upserter
	MaxErrorMessages int
	Metrics          *metrics.ImportMetrics
	Logger           *logger.Logger
	// BatchSize forces a fixed upsert batch size. Zero selects the size
	// from the record count.
	BatchSize int
}

type service struct {
	repo         Upserter
	maxErrorMsgs int
	metrics      *metrics.ImportMetrics
	logg         *logger.Logger
	batchSize    int
}

const defaultMaxErrorMessages = 20

// NewService constructs an import service.
func NewService(opts Options) (Service, error) {
	if opts.Repo == nil {
		return nil, fmt.Errorf("import repository required")
	}
	if opts.MaxErrorMessages <= 0 {
		opts.MaxErrorMessages = defaultMaxErrorMessages
	}
	return &service{
		repo:         opts.Repo,
		maxErrorMsgs: opts.MaxErrorMessages,
		metrics:      opts.Metrics,
		logg:         opts.Logger,
		batchSize:    opts.BatchSize,
	}, nil
}

// Import runs the pipeline. A file commits only if every data row passes
// validation; once batches start committing there is no rollback, and a
// mid-stream batch failure reports exactly where persistence stopped.
func (s *service) Import(ctx context.Context, locationID, filename string, file io.Reader) (*Result, error) {
	started := time.Now()

	if locationID == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "location id is required")
	}

	parsed, err := parseFile(filename, file)
	if err != nil {
		s.metrics.IncRejected("parse")
		s.metrics.ObserveDuration("rejected", time.Since(started))
		return nil, pkgerrors.Wrap(pkgerrors.CodeParse, err, "import file could not be parsed")
	}
	if parsed.SheetCount > 1 && s.logg != nil {
		s.logg.Warn(s.logg.WithFields(ctx, map[string]any{
			"filename":    filename,
			"sheet_count": parsed.SheetCount,
		}), "workbook has multiple sheets, importing the first only")
	}

	report := newErrorReport(s.maxErrorMsgs)
	items := make([]models.InventoryItem, 0, len(parsed.Rows))
	rowNumbers := make([]int, 0, len(parsed.Rows))
	seen := make(map[string]int, len(parsed.Rows))
	duplicates := 0

	for _, rw := range parsed.Rows {
		item, ok := validateRow(rw, locationID, report)
		if !ok {
			continue
		}
		key := dedupeKey(item.LocationID, item.Barcode)
		if idx, dup := seen[key]; dup {
			items[idx] = item
			rowNumbers[idx] = rw.Number
			duplicates++
			continue
		}
		seen[key] = len(items)
		items = append(items, item)
		rowNumbers = append(rowNumbers, rw.Number)
	}

	if report.hasErrors() {
		s.metrics.IncRejected("validation")
		s.metrics.AddRows("invalid", report.Total)
		s.metrics.ObserveDuration("rejected", time.Since(started))

		details := map[string]any{
			"errors":       report.Messages,
			"error_counts": report.Counts,
			"total_errors": report.Total,
			"total_rows":   len(parsed.Rows),
		}
		// the header hint only makes sense for workbooks, where a wrong
		// sheet is the usual cause of a fully failing import
		if parsed.Workbook {
			if missing := missingHeaders(parsed.Headers); len(missing) > 0 {
				details["missing_headers"] = missing
				details["expected_headers"] = requiredHeaders
			}
		}
		return nil, pkgerrors.New(pkgerrors.CodeValidation,
			fmt.Sprintf("%d rows failed validation", report.Total)).
			WithDetails(details)
	}

	size := s.batchSize
	if size <= 0 {
		size = batchSizeFor(len(items))
	}

	batches := 0
	imported := 0
	for start := 0; start < len(items); start += size {
		end := start + size
		if end > len(items) {
			end = len(items)
		}
		if err := s.repo.UpsertBatch(ctx, items[start:end]); err != nil {
			s.metrics.ObserveDuration("failed", time.Since(started))
			if s.logg != nil {
				s.logg.Error(s.logg.WithFields(ctx, map[string]any{
					"filename":          filename,
					"batch_index":       batches + 1,
					"batches_committed": batches,
				}), "inventory upsert batch failed", err)
			}
			return nil, pkgerrors.Wrap(pkgerrors.CodePersistence, err, "inventory upsert batch failed").
				WithDetails(map[string]any{
					"batch_index":       batches + 1,
					"batches_committed": batches,
					"records_committed": imported,
					"first_row":         rowNumbers[start],
				})
		}
		batches++
		imported += end - start
	}

	s.metrics.AddRows("valid", imported)
	s.metrics.AddRows("duplicate", duplicates)
	s.metrics.ObserveDuration("committed", time.Since(started))
	if s.logg != nil {
		s.logg.Info(s.logg.WithFields(ctx, map[string]any{
			"filename":    filename,
			"location_id": locationID,
			"total_rows":  len(parsed.Rows),
			"imported":    imported,
			"duplicates":  duplicates,
			"batches":     batches,
		}), "inventory import committed")
	}

	return &Result{
		TotalRows:  len(parsed.Rows),
		Imported:   imported,
		Duplicates: duplicates,
		Batches:    batches,
	}, nil
}

// batchSizeFor scales the upsert batch size with the record count so small
// files commit in one round trip and large files keep statements bounded.
func batchSizeFor(total int) int {
	switch {
	case total <= 500:
		return 100
	case total <= 2000:
		return 250
	default:
		return 500
	}
}
