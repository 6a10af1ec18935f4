package enums

import "fmt"

// DamageStatus tracks the review state of a damage report.
type DamageStatus string

const (
	DamageStatusReported   DamageStatus = "reported"
	DamageStatusVerified   DamageStatus = "verified"
	DamageStatusWrittenOff DamageStatus = "written_off"
)

var validDamageStatuses = []DamageStatus{
	DamageStatusReported,
	DamageStatusVerified,
	DamageStatusWrittenOff,
}

// String implements fmt.Stringer.
func (s DamageStatus) String() string {
	return string(s)
}

// IsValid reports whether the value is a known DamageStatus.
func (s DamageStatus) IsValid() bool {
	for _, candidate := range validDamageStatuses {
		if candidate == s {
			return true
		}
	}
	return false
}

// ParseDamageStatus converts raw input into a DamageStatus.
func ParseDamageStatus(value string) (DamageStatus, error) {
	for _, candidate := range validDamageStatuses {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid damage status %q", value)
}
