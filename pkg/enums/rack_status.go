package enums

import "fmt"

// RackStatus tracks a rack through assignment, scanning, and review.
type RackStatus string

const (
	RackStatusUnassigned RackStatus = "unassigned"
	RackStatusAssigned   RackStatus = "assigned"
	RackStatusScanning   RackStatus = "scanning"
	RackStatusSubmitted  RackStatus = "submitted"
	RackStatusApproved   RackStatus = "approved"
	RackStatusRejected   RackStatus = "rejected"
)

var validRackStatuses = []RackStatus{
	RackStatusUnassigned,
	RackStatusAssigned,
	RackStatusScanning,
	RackStatusSubmitted,
	RackStatusApproved,
	RackStatusRejected,
}

// String implements fmt.Stringer.
func (s RackStatus) String() string {
	return string(s)
}

// IsValid reports whether the value is a known RackStatus.
func (s RackStatus) IsValid() bool {
	for _, candidate := range validRackStatuses {
		if candidate == s {
			return true
		}
	}
	return false
}

// ParseRackStatus converts raw input into a RackStatus.
func ParseRackStatus(value string) (RackStatus, error) {
	for _, candidate := range validRackStatuses {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid rack status %q", value)
}

// CanTransitionTo reports whether the receiver may move to the next status.
func (s RackStatus) CanTransitionTo(next RackStatus) bool {
	switch s {
	case RackStatusUnassigned:
		return next == RackStatusAssigned
	case RackStatusAssigned:
		return next == RackStatusScanning || next == RackStatusUnassigned
	case RackStatusScanning:
		return next == RackStatusSubmitted
	case RackStatusSubmitted:
		return next == RackStatusApproved || next == RackStatusRejected
	case RackStatusRejected:
		return next == RackStatusAssigned || next == RackStatusScanning
	default:
		return false
	}
}
