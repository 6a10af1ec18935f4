package reports

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/stocktakehq/stockaudit-backend/pkg/enums"
)

// varianceRow is one barcode's expected-vs-counted comparison. Counted sums
// scans from approved racks only; unreviewed racks do not move the numbers.
type varianceRow struct {
	Barcode  string          `json:"barcode"`
	ItemCode string          `json:"item_code"`
	ItemName string          `json:"item_name"`
	Brand    string          `json:"brand"`
	Expected int             `json:"expected"`
	Counted  int             `json:"counted"`
	UnitCost decimal.Decimal `json:"unit_cost"`
}

// unexpectedRow is a barcode counted on the floor that the expected
// inventory does not list.
type unexpectedRow struct {
	Barcode string `json:"barcode"`
	Counted int    `json:"counted"`
}

type rackStatusCount struct {
	Status enums.RackStatus `json:"status"`
	Count  int64            `json:"count"`
}

// Repository runs the report aggregations.
type Repository interface {
	VarianceRows(ctx context.Context, auditSessionID uuid.UUID, locationID string) ([]varianceRow, error)
	UnexpectedRows(ctx context.Context, auditSessionID uuid.UUID, locationID string) ([]unexpectedRow, error)
	RackStatusCounts(ctx context.Context, auditSessionID uuid.UUID) ([]rackStatusCount, error)
}

type repository struct {
	db *gorm.DB
}

// NewRepository builds a report repository.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

const varianceQuery = `
SELECT i.barcode,
       i.item_code,
       i.item_name,
       i.brand,
       i.expected_quantity AS expected,
       COALESCE(c.counted, 0) AS counted,
       i.unit_cost
FROM inventory_items i
LEFT JOIN (
    SELECT s.barcode, SUM(s.quantity) AS counted
    FROM scans s
    JOIN racks r ON r.id = s.rack_id
    WHERE s.audit_session_id = ? AND r.status = ?
    GROUP BY s.barcode
) c ON c.barcode = i.barcode
WHERE i.location_id = ?
ORDER BY i.barcode ASC`

func (r *repository) VarianceRows(ctx context.Context, auditSessionID uuid.UUID, locationID string) ([]varianceRow, error) {
	var rows []varianceRow
	err := r.db.WithContext(ctx).
		Raw(varianceQuery, auditSessionID, enums.RackStatusApproved, locationID).
		Scan(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("variance rows: %w", err)
	}
	return rows, nil
}

const unexpectedQuery = `
SELECT s.barcode, SUM(s.quantity) AS counted
FROM scans s
JOIN racks r ON r.id = s.rack_id
WHERE s.audit_session_id = ? AND r.status = ?
  AND s.barcode NOT IN (
      SELECT barcode FROM inventory_items WHERE location_id = ?
  )
GROUP BY s.barcode
ORDER BY s.barcode ASC`

func (r *repository) UnexpectedRows(ctx context.Context, auditSessionID uuid.UUID, locationID string) ([]unexpectedRow, error) {
	var rows []unexpectedRow
	err := r.db.WithContext(ctx).
		Raw(unexpectedQuery, auditSessionID, enums.RackStatusApproved, locationID).
		Scan(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("unexpected rows: %w", err)
	}
	return rows, nil
}

func (r *repository) RackStatusCounts(ctx context.Context, auditSessionID uuid.UUID) ([]rackStatusCount, error) {
	var rows []rackStatusCount
	err := r.db.WithContext(ctx).
		Raw(`SELECT status, COUNT(*) AS count FROM racks WHERE audit_session_id = ? GROUP BY status`,
			auditSessionID).
		Scan(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("rack status counts: %w", err)
	}
	return rows, nil
}
