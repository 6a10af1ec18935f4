package models

import "time"

// Device is a registered scanning device. The ID is the client-derived
// fingerprint, stable per install but never assumed globally unique.
type Device struct {
	ID         string     `gorm:"type:text;primaryKey"`
	Label      string     `gorm:"type:text;not null"`
	UserAgent  string     `gorm:"column:user_agent;type:text;not null"`
	LastSeenAt *time.Time `gorm:"column:last_seen_at"`
	CreatedAt  time.Time  `gorm:"column:created_at;autoCreateTime"`
}
