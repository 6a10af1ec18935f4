package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/stocktakehq/stockaudit-backend/pkg/enums"
)

// Rack is a physical shelving unit scanned as one reviewable unit of work.
type Rack struct {
	ID             uuid.UUID        `gorm:"type:uuid;default:gen_random_uuid();primaryKey"`
	AuditSessionID uuid.UUID        `gorm:"type:uuid;not null;index"`
	Code           string           `gorm:"type:text;not null"`
	Status         enums.RackStatus `gorm:"type:text;not null;default:'unassigned'"`
	ScannerID      *uuid.UUID       `gorm:"type:uuid"`
	DeviceID       *string          `gorm:"column:device_id;type:text"`
	AssignedAt     *time.Time       `gorm:"column:assigned_at"`
	SubmittedAt    *time.Time       `gorm:"column:submitted_at"`
	ReviewedBy     *uuid.UUID       `gorm:"type:uuid"`
	ReviewedAt     *time.Time       `gorm:"column:reviewed_at"`
	ReviewNote     *string          `gorm:"column:review_note;type:text"`
	CreatedAt      time.Time        `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt      time.Time        `gorm:"column:updated_at;autoUpdateTime"`
}
