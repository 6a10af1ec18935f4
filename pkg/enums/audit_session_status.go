package enums

import "fmt"

// AuditSessionStatus tracks the lifecycle of a physical inventory audit.
type AuditSessionStatus string

const (
	AuditSessionStatusActive    AuditSessionStatus = "active"
	AuditSessionStatusCompleted AuditSessionStatus = "completed"
	AuditSessionStatusCancelled AuditSessionStatus = "cancelled"
)

var validAuditSessionStatuses = []AuditSessionStatus{
	AuditSessionStatusActive,
	AuditSessionStatusCompleted,
	AuditSessionStatusCancelled,
}

// String implements fmt.Stringer.
func (s AuditSessionStatus) String() string {
	return string(s)
}

// IsValid reports whether the value is a known AuditSessionStatus.
func (s AuditSessionStatus) IsValid() bool {
	for _, candidate := range validAuditSessionStatuses {
		if candidate == s {
			return true
		}
	}
	return false
}

// ParseAuditSessionStatus converts raw input into an AuditSessionStatus.
func ParseAuditSessionStatus(value string) (AuditSessionStatus, error) {
	for _, candidate := range validAuditSessionStatuses {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid audit session status %q", value)
}
