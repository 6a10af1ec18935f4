package scanqueue

import (
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestLoadOrCreateDeviceIDIsStable(t *testing.T) {
	path := filepath.Join(t.TempDir(), "device_id")

	first, err := LoadOrCreateDeviceID(path, "agent-a")
	if err != nil {
		t.Fatalf("LoadOrCreateDeviceID: %v", err)
	}
	if !strings.HasPrefix(first, "dev-") {
		t.Fatalf("unexpected id format: %s", first)
	}

	// a different agent string must not change an already-persisted id
	second, err := LoadOrCreateDeviceID(path, "agent-b")
	if err != nil {
		t.Fatalf("LoadOrCreateDeviceID: %v", err)
	}
	if second != first {
		t.Fatalf("id changed across loads: %s != %s", second, first)
	}
}

func TestDeriveDeviceIDTruncatesAgent(t *testing.T) {
	now := time.Now()
	long := strings.Repeat("x", 200)
	a := deriveDeviceID(long, now)
	b := deriveDeviceID(long[:userAgentMaxLen], now)
	if a != b {
		t.Fatalf("truncation not applied: %s != %s", a, b)
	}
}

func TestEntryClassifier(t *testing.T) {
	c := NewEntryClassifier(150 * time.Millisecond)
	start := time.Now()

	if !c.Classify(start) {
		t.Fatal("first submission should be manual")
	}
	if c.Classify(start.Add(50 * time.Millisecond)) {
		t.Fatal("50ms gap should classify as scanner")
	}
	if !c.Classify(start.Add(500 * time.Millisecond)) {
		t.Fatal("450ms gap should classify as manual")
	}
}
