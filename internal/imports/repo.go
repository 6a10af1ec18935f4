package imports

import (
	"context"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/stocktakehq/stockaudit-backend/pkg/db/models"
)

// Upserter persists validated inventory records.
type Upserter interface {
	UpsertBatch(ctx context.Context, batch []models.InventoryItem) error
}

type repository struct {
	db *gorm.DB
}

// NewRepository builds an inventory upsert repository tied to the provided
// GORM DB.
func NewRepository(db *gorm.DB) Upserter {
	return &repository{db: db}
}

// UpsertBatch inserts the batch, overwriting any existing record with the
// same (location_id, barcode) key. Re-importing a file is therefore
// idempotent.
func (r *repository) UpsertBatch(ctx context.Context, batch []models.InventoryItem) error {
	if len(batch) == 0 {
		return nil
	}
	err := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "location_id"}, {Name: "barcode"}},
			UpdateAll: true,
		}).
		Create(&batch).Error
	if err != nil {
		return fmt.Errorf("upsert inventory batch: %w", err)
	}
	return nil
}
