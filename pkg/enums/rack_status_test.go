package enums

import "testing"

func TestRackStatusTransitions(t *testing.T) {
	cases := []struct {
		from    RackStatus
		to      RackStatus
		allowed bool
	}{
		{RackStatusUnassigned, RackStatusAssigned, true},
		{RackStatusUnassigned, RackStatusScanning, false},
		{RackStatusAssigned, RackStatusScanning, true},
		{RackStatusAssigned, RackStatusUnassigned, true},
		{RackStatusAssigned, RackStatusSubmitted, false},
		{RackStatusScanning, RackStatusSubmitted, true},
		{RackStatusScanning, RackStatusApproved, false},
		{RackStatusSubmitted, RackStatusApproved, true},
		{RackStatusSubmitted, RackStatusRejected, true},
		{RackStatusSubmitted, RackStatusScanning, false},
		{RackStatusRejected, RackStatusAssigned, true},
		{RackStatusRejected, RackStatusScanning, true},
		{RackStatusApproved, RackStatusRejected, false},
		{RackStatusApproved, RackStatusAssigned, false},
	}
	for _, tc := range cases {
		if got := tc.from.CanTransitionTo(tc.to); got != tc.allowed {
			t.Errorf("%s -> %s = %v, want %v", tc.from, tc.to, got, tc.allowed)
		}
	}
}

func TestParseRackStatus(t *testing.T) {
	status, err := ParseRackStatus("submitted")
	if err != nil {
		t.Fatalf("ParseRackStatus: %v", err)
	}
	if status != RackStatusSubmitted {
		t.Fatalf("status = %s, want submitted", status)
	}
	if _, err := ParseRackStatus("shipped"); err == nil {
		t.Fatal("expected error for unknown status")
	}
}
