package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/stocktakehq/stockaudit-backend/pkg/enums"
)

// AuditSession represents one physical inventory audit at a location.
type AuditSession struct {
	ID         uuid.UUID                `gorm:"type:uuid;default:gen_random_uuid();primaryKey"`
	LocationID string                   `gorm:"column:location_id;type:text;not null;index"`
	Name       string                   `gorm:"type:text;not null"`
	Status     enums.AuditSessionStatus `gorm:"type:text;not null;default:'active'"`
	StartedBy  uuid.UUID                `gorm:"type:uuid;not null"`
	ClosedAt   *time.Time               `gorm:"column:closed_at"`
	CreatedAt  time.Time                `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt  time.Time                `gorm:"column:updated_at;autoUpdateTime"`
}
