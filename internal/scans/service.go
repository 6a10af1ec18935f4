package scans

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/multierr"

	"github.com/stocktakehq/stockaudit-backend/pkg/db/models"
	pkgerrors "github.com/stocktakehq/stockaudit-backend/pkg/errors"
	"github.com/stocktakehq/stockaudit-backend/pkg/idempotency"
	"github.com/stocktakehq/stockaudit-backend/pkg/pagination"
)

// barcodePattern matches the numeric barcodes the handheld scanners emit.
var barcodePattern = regexp.MustCompile(`^[0-9]{10,12}$`)

const dedupConsumer = "scan-ingest"

// IsValidBarcode reports whether the value matches the scanner barcode shape.
func IsValidBarcode(value string) bool {
	return barcodePattern.MatchString(strings.TrimSpace(value))
}

// Service exposes scan ingestion and read operations.
type Service interface {
	IngestBatch(ctx context.Context, batch []models.Scan) (*IngestResult, error)
	ListByRack(ctx context.Context, rackID uuid.UUID, params pagination.Params) (*ListResult, error)
	CountByRack(ctx context.Context, rackID uuid.UUID) (int64, error)
}

// IngestResult summarizes one accepted batch.
type IngestResult struct {
	Received   int `json:"received"`
	Inserted   int `json:"inserted"`
	Duplicates int `json:"duplicates"`
}

// ListResult carries one page of scans plus the next cursor.
type ListResult struct {
	Items  []models.Scan `json:"items"`
	Cursor string        `json:"cursor,omitempty"`
}

type service struct {
	repo  Repository
	dedup *idempotency.Manager
}

// NewService constructs a scan service. The idempotency manager is optional;
// without it, dedup relies solely on the client_scan_id unique constraint.
func NewService(repo Repository, dedup *idempotency.Manager) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("scan repository required")
	}
	return &service{repo: repo, dedup: dedup}, nil
}

// IngestBatch persists a delivered batch. Retried deliveries of a batch that
// already committed are detected per row: first via the redis SETNX marker,
// then by the unique constraint on client_scan_id. Either way the retry
// succeeds without duplicating rows.
func (s *service) IngestBatch(ctx context.Context, batch []models.Scan) (*IngestResult, error) {
	if len(batch) == 0 {
		return &IngestResult{}, nil
	}

	for i := range batch {
		scan := &batch[i]
		if strings.TrimSpace(scan.ClientScanID) == "" {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "client scan id is required").
				WithDetails(map[string]any{"index": i})
		}
		if !IsValidBarcode(scan.Barcode) {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid barcode").
				WithDetails(map[string]any{"index": i, "barcode": scan.Barcode})
		}
		if scan.ID == uuid.Nil {
			scan.ID = uuid.New()
		}
		if scan.Quantity == 0 {
			scan.Quantity = 1
		}
	}

	fresh := batch
	duplicates := 0
	if s.dedup != nil {
		fresh = make([]models.Scan, 0, len(batch))
		for _, scan := range batch {
			seen, err := s.dedup.CheckAndMarkProcessed(ctx, dedupConsumer, scan.ClientScanID)
			if err != nil {
				return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "scan dedup check")
			}
			if seen {
				duplicates++
				continue
			}
			fresh = append(fresh, scan)
		}
	}

	if err := s.repo.InsertBatch(ctx, fresh); err != nil {
		// roll back the markers so the client's retry is accepted
		if s.dedup != nil {
			for _, scan := range fresh {
				err = multierr.Append(err, s.dedup.Delete(ctx, dedupConsumer, scan.ClientScanID))
			}
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodePersistence, err, "persist scan batch")
	}

	return &IngestResult{
		Received:   len(batch),
		Inserted:   len(fresh),
		Duplicates: duplicates,
	}, nil
}

func (s *service) ListByRack(ctx context.Context, rackID uuid.UUID, params pagination.Params) (*ListResult, error) {
	cursor, err := pagination.ParseCursor(params.Cursor)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid cursor")
	}

	rows, next, err := s.repo.ListByRack(ctx, rackID, listScansParams{
		Limit:  pagination.LimitWithBuffer(params.Limit),
		Cursor: cursor,
	})
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list scans")
	}

	result := &ListResult{Items: rows}
	if next != nil {
		result.Cursor = pagination.EncodeCursor(*next)
	}
	return result, nil
}

func (s *service) CountByRack(ctx context.Context, rackID uuid.UUID) (int64, error) {
	count, err := s.repo.CountByRack(ctx, rackID)
	if err != nil {
		return 0, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "count scans")
	}
	return count, nil
}
