package models

import (
	"time"

	"github.com/google/uuid"
)

// AddOnItem records stock found on the floor that the expected-inventory
// import did not list.
type AddOnItem struct {
	ID             uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey"`
	AuditSessionID uuid.UUID `gorm:"type:uuid;not null;index"`
	Barcode        string    `gorm:"type:text;not null"`
	ItemName       string    `gorm:"column:item_name;type:text;not null"`
	Quantity       int       `gorm:"not null;default:1"`
	AddedBy        uuid.UUID `gorm:"type:uuid;not null"`
	CreatedAt      time.Time `gorm:"column:created_at;autoCreateTime"`
}
