package inventory

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/stocktakehq/stockaudit-backend/pkg/db/models"
)

// ErrNotFound is returned when no inventory record matches the lookup.
var ErrNotFound = errors.New("inventory item not found")

// Repository defines read access to the expected-inventory table. Writes go
// through the import pipeline only.
type Repository interface {
	Get(ctx context.Context, locationID, barcode string) (*models.InventoryItem, error)
	ListByLocation(ctx context.Context, locationID, afterBarcode string, limit int) ([]models.InventoryItem, error)
	CountByLocation(ctx context.Context, locationID string) (int64, error)
	Search(ctx context.Context, locationID, term string, limit int) ([]models.InventoryItem, error)
}

type repository struct {
	db *gorm.DB
}

// NewRepository builds an inventory read repository.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) Get(ctx context.Context, locationID, barcode string) (*models.InventoryItem, error) {
	var item models.InventoryItem
	err := r.db.WithContext(ctx).
		Where("location_id = ? AND barcode = ?", locationID, barcode).
		First(&item).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get inventory item: %w", err)
	}
	return &item, nil
}

// ListByLocation pages by barcode, which is unique within a location.
func (r *repository) ListByLocation(ctx context.Context, locationID, afterBarcode string, limit int) ([]models.InventoryItem, error) {
	query := r.db.WithContext(ctx).
		Where("location_id = ?", locationID).
		Order("barcode ASC").
		Limit(limit)
	if afterBarcode != "" {
		query = query.Where("barcode > ?", afterBarcode)
	}

	var items []models.InventoryItem
	if err := query.Find(&items).Error; err != nil {
		return nil, fmt.Errorf("list inventory: %w", err)
	}
	return items, nil
}

func (r *repository) CountByLocation(ctx context.Context, locationID string) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.InventoryItem{}).
		Where("location_id = ?", locationID).
		Count(&count).Error
	if err != nil {
		return 0, fmt.Errorf("count inventory: %w", err)
	}
	return count, nil
}

func (r *repository) Search(ctx context.Context, locationID, term string, limit int) ([]models.InventoryItem, error) {
	pattern := "%" + term + "%"
	var items []models.InventoryItem
	err := r.db.WithContext(ctx).
		Where("location_id = ?", locationID).
		Where("barcode LIKE ? OR item_code LIKE ? OR item_name LIKE ?", pattern, pattern, pattern).
		Order("barcode ASC").
		Limit(limit).
		Find(&items).Error
	if err != nil {
		return nil, fmt.Errorf("search inventory: %w", err)
	}
	return items, nil
}
