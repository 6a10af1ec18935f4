package models

import (
	"time"

	"github.com/google/uuid"
)

// Scan is one barcode read, immutable once created. ClientScanID carries the
// client-generated idempotency token so retried batches never duplicate rows.
type Scan struct {
	ID             uuid.UUID `gorm:"type:uuid;primaryKey"`
	ClientScanID   string    `gorm:"column:client_scan_id;type:text;not null;uniqueIndex"`
	Barcode        string    `gorm:"type:text;not null;index"`
	RackID         uuid.UUID `gorm:"type:uuid;not null;index"`
	AuditSessionID uuid.UUID `gorm:"type:uuid;not null;index"`
	ScannerID      uuid.UUID `gorm:"type:uuid;not null"`
	DeviceID       string    `gorm:"column:device_id;type:text;not null"`
	Quantity       int       `gorm:"not null;default:1"`
	ManualEntry    bool      `gorm:"column:manual_entry;not null;default:false"`
	CreatedAt      time.Time `gorm:"column:created_at;not null"`
}
