package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// InventoryItem is the expected stock for one barcode at one location,
// loaded from spreadsheet imports. Identity is the (location_id, barcode)
// composite; imports upsert on that key and never delete.
type InventoryItem struct {
	LocationID       string          `gorm:"column:location_id;type:text;primaryKey"`
	Barcode          string          `gorm:"type:text;primaryKey"`
	ItemCode         string          `gorm:"column:item_code;type:varchar(5);not null"`
	Brand            string          `gorm:"type:text;not null"`
	ItemName         string          `gorm:"column:item_name;type:text;not null"`
	ExpectedQuantity int             `gorm:"column:expected_quantity;not null;default:0"`
	UnitCost         decimal.Decimal `gorm:"column:unit_cost;type:numeric(12,2);not null;default:0"`
	UpdatedAt        time.Time       `gorm:"column:updated_at;autoUpdateTime"`
}
