package scans

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/stocktakehq/stockaudit-backend/pkg/db/models"
	"github.com/stocktakehq/stockaudit-backend/pkg/pagination"
)

// Repository defines persistence operations for scans.
type Repository interface {
	InsertBatch(ctx context.Context, batch []models.Scan) error
	ListByRack(ctx context.Context, rackID uuid.UUID, params listScansParams) ([]models.Scan, *pagination.Cursor, error)
	CountByRack(ctx context.Context, rackID uuid.UUID) (int64, error)
}

type listScansParams struct {
	Limit  int
	Cursor *pagination.Cursor
}

type repository struct {
	db *gorm.DB
}

// NewRepository builds a scan repository tied to the provided GORM DB.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

// InsertBatch appends the batch, skipping rows whose client_scan_id was
// already committed by an earlier delivery of the same batch.
func (r *repository) InsertBatch(ctx context.Context, batch []models.Scan) error {
	if len(batch) == 0 {
		return nil
	}
	err := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "client_scan_id"}},
			DoNothing: true,
		}).
		Create(&batch).Error
	if err != nil {
		return fmt.Errorf("insert scan batch: %w", err)
	}
	return nil
}

func (r *repository) ListByRack(ctx context.Context, rackID uuid.UUID, params listScansParams) ([]models.Scan, *pagination.Cursor, error) {
	query := r.db.WithContext(ctx).
		Where("rack_id = ?", rackID).
		Order("created_at DESC, id DESC").
		Limit(params.Limit)

	if params.Cursor != nil {
		query = query.Where(
			"(created_at, id) < (?, ?)",
			params.Cursor.CreatedAt, params.Cursor.ID,
		)
	}

	var rows []models.Scan
	if err := query.Find(&rows).Error; err != nil {
		return nil, nil, fmt.Errorf("list scans: %w", err)
	}

	var next *pagination.Cursor
	if params.Limit > 0 && len(rows) == params.Limit {
		last := rows[len(rows)-1]
		next = &pagination.Cursor{CreatedAt: last.CreatedAt, ID: last.ID}
		rows = rows[:len(rows)-1]
	}
	return rows, next, nil
}

func (r *repository) CountByRack(ctx context.Context, rackID uuid.UUID) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.Scan{}).
		Where("rack_id = ?", rackID).
		Count(&count).Error
	if err != nil {
		return 0, fmt.Errorf("count scans: %w", err)
	}
	return count, nil
}
