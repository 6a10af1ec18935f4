package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/stocktakehq/stockaudit-backend/pkg/enums"
)

// DamageReport records damaged units found during an audit.
type DamageReport struct {
	ID             uuid.UUID          `gorm:"type:uuid;default:gen_random_uuid();primaryKey"`
	AuditSessionID uuid.UUID          `gorm:"type:uuid;not null;index"`
	Barcode        string             `gorm:"type:text;not null"`
	Description    string             `gorm:"type:text;not null"`
	Quantity       int                `gorm:"not null;default:1"`
	Status         enums.DamageStatus `gorm:"type:text;not null;default:'reported'"`
	ReportedBy     uuid.UUID          `gorm:"type:uuid;not null"`
	CreatedAt      time.Time          `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt      time.Time          `gorm:"column:updated_at;autoUpdateTime"`
}
