package models

import (
	"time"

	"github.com/google/uuid"
)

// DeliveryChallan records goods that arrived mid-audit, so counts can be
// reconciled against deliveries that postdate the expected-inventory import.
type DeliveryChallan struct {
	ID             uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey"`
	AuditSessionID uuid.UUID `gorm:"type:uuid;not null;index"`
	ChallanNumber  string    `gorm:"column:challan_number;type:text;not null"`
	Supplier       string    `gorm:"type:text;not null"`
	ReceivedAt     time.Time `gorm:"column:received_at;not null"`
	Notes          *string   `gorm:"type:text"`
	RecordedBy     uuid.UUID `gorm:"type:uuid;not null"`
	CreatedAt      time.Time `gorm:"column:created_at;autoCreateTime"`
}
