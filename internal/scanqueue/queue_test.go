package scanqueue

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/stocktakehq/stockaudit-backend/pkg/db/models"
)

type fakeSink struct {
	mu      sync.Mutex
	batches [][]models.Scan
	fail    bool
	block   chan struct{}
}

func (f *fakeSink) InsertScans(_ context.Context, batch []models.Scan) error {
	if f.block != nil {
		<-f.block
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.fail {
		return fmt.Errorf("sink unavailable")
	}
	copied := make([]models.Scan, len(batch))
	copy(copied, batch)
	f.batches = append(f.batches, copied)
	return nil
}

func (f *fakeSink) setFail(v bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.fail = v
}

func (f *fakeSink) delivered() []models.Scan {
	f.mu.Lock()
	defer f.mu.Unlock()
	var all []models.Scan
	for _, b := range f.batches {
		all = append(all, b...)
	}
	return all
}

func newTestQueue(t *testing.T, sink Sink, threshold int) *Queue {
	t.Helper()
	q, err := New(Options{
		Sink:     sink,
		DeviceID: "dev-test",
		// long interval so the timer never fires during a test
		FlushInterval:  time.Hour,
		BatchThreshold: threshold,
	})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	t.Cleanup(func() { _ = q.Destroy(context.Background()) })
	return q
}

func testInput(barcode string) Input {
	return Input{
		Barcode:        barcode,
		RackID:         uuid.New(),
		AuditSessionID: uuid.New(),
		ScannerID:      uuid.New(),
	}
}

func TestAddFillsScanFields(t *testing.T) {
	sink := &fakeSink{}
	q := newTestQueue(t, sink, 100)

	scan := q.Add(context.Background(), testInput("4000000000001"), true)
	if scan.ID == uuid.Nil || scan.ClientScanID == "" {
		t.Fatalf("identifiers not filled: %+v", scan)
	}
	if scan.Quantity != 1 || scan.DeviceID != "dev-test" || !scan.ManualEntry {
		t.Fatalf("unexpected scan: %+v", scan)
	}
	if q.Size() != 1 {
		t.Fatalf("size = %d, want 1", q.Size())
	}
}

func TestThresholdTriggersFlush(t *testing.T) {
	sink := &fakeSink{}
	q := newTestQueue(t, sink, 10)

	for i := 0; i < 9; i++ {
		q.Add(context.Background(), testInput("4000000000001"), false)
	}
	if len(sink.delivered()) != 0 {
		t.Fatalf("flushed before threshold: %d", len(sink.delivered()))
	}

	q.Add(context.Background(), testInput("4000000000001"), false)
	if got := len(sink.delivered()); got != 10 {
		t.Fatalf("delivered = %d, want 10", got)
	}
	if q.Size() != 0 {
		t.Fatalf("size = %d, want 0 after flush", q.Size())
	}
}

func TestFailedFlushRequeuesBatchInFront(t *testing.T) {
	sink := &fakeSink{fail: true}
	q := newTestQueue(t, sink, 100)

	q.Add(context.Background(), testInput("1111111111"), false)
	q.Add(context.Background(), testInput("2222222222"), false)

	if err := q.Flush(context.Background()); err == nil {
		t.Fatal("expected flush error")
	}
	if q.Size() != 2 {
		t.Fatalf("size = %d, want 2 after failed flush", q.Size())
	}

	q.Add(context.Background(), testInput("3333333333"), false)
	sink.setFail(false)
	if err := q.Flush(context.Background()); err != nil {
		t.Fatalf("Flush: %v", err)
	}

	got := sink.delivered()
	if len(got) != 3 {
		t.Fatalf("delivered = %d, want 3", len(got))
	}
	want := []string{"1111111111", "2222222222", "3333333333"}
	for i, barcode := range want {
		if got[i].Barcode != barcode {
			t.Fatalf("delivery order %v, want failed batch first", barcodes(got))
		}
	}
}

func TestNoScanLostAcrossRepeatedFailures(t *testing.T) {
	sink := &fakeSink{fail: true}
	q := newTestQueue(t, sink, 1000)

	const total = 50
	for i := 0; i < total; i++ {
		q.Add(context.Background(), testInput(fmt.Sprintf("%010d", i)), false)
		if i%7 == 0 {
			_ = q.Flush(context.Background())
		}
	}
	if q.Size() != total {
		t.Fatalf("size = %d, want %d after failed flushes", q.Size(), total)
	}

	sink.setFail(false)
	if err := q.Flush(context.Background()); err != nil {
		t.Fatalf("Flush: %v", err)
	}
	got := sink.delivered()
	if len(got) != total {
		t.Fatalf("delivered = %d, want %d", len(got), total)
	}
	for i, scan := range got {
		if scan.Barcode != fmt.Sprintf("%010d", i) {
			t.Fatalf("order broken at %d: %s", i, scan.Barcode)
		}
	}
}

func TestConcurrentFlushIsNoOp(t *testing.T) {
	block := make(chan struct{})
	sink := &fakeSink{block: block}
	q := newTestQueue(t, sink, 100)

	q.Add(context.Background(), testInput("1111111111"), false)

	done := make(chan error, 1)
	go func() { done <- q.Flush(context.Background()) }()

	// wait for the first flush to take the batch
	deadline := time.After(2 * time.Second)
	for q.Size() != 0 {
		select {
		case <-deadline:
			t.Fatal("first flush never started")
		default:
			time.Sleep(time.Millisecond)
		}
	}

	// second flush must return immediately while the first is in flight
	if err := q.Flush(context.Background()); err != nil {
		t.Fatalf("concurrent Flush: %v", err)
	}

	close(block)
	if err := <-done; err != nil {
		t.Fatalf("first Flush: %v", err)
	}
	if got := len(sink.delivered()); got != 1 {
		t.Fatalf("delivered = %d, want 1", got)
	}
}

func TestDestroyFlushesRemainder(t *testing.T) {
	sink := &fakeSink{}
	q := newTestQueue(t, sink, 100)

	q.Add(context.Background(), testInput("1111111111"), false)
	q.Add(context.Background(), testInput("2222222222"), false)

	if err := q.Destroy(context.Background()); err != nil {
		t.Fatalf("Destroy: %v", err)
	}
	if got := len(sink.delivered()); got != 2 {
		t.Fatalf("delivered = %d, want 2", got)
	}
}

func TestDestroyDrainsScansAddedDuringInFlightFlush(t *testing.T) {
	block := make(chan struct{})
	sink := &fakeSink{block: block}
	q := newTestQueue(t, sink, 100)

	q.Add(context.Background(), testInput("1111111111"), false)

	flushDone := make(chan error, 1)
	go func() { flushDone <- q.Flush(context.Background()) }()

	deadline := time.After(2 * time.Second)
	for q.Size() != 0 {
		select {
		case <-deadline:
			t.Fatal("first flush never started")
		default:
			time.Sleep(time.Millisecond)
		}
	}

	// lands in a fresh buffer while the first delivery is still blocked
	q.Add(context.Background(), testInput("2222222222"), false)

	destroyDone := make(chan error, 1)
	go func() { destroyDone <- q.Destroy(context.Background()) }()

	close(block)
	if err := <-flushDone; err != nil {
		t.Fatalf("first Flush: %v", err)
	}
	if err := <-destroyDone; err != nil {
		t.Fatalf("Destroy: %v", err)
	}

	got := sink.delivered()
	if len(got) != 2 {
		t.Fatalf("delivered = %d scans %v, want 2", len(got), barcodes(got))
	}
	if q.Size() != 0 {
		t.Fatalf("size = %d, want 0 after Destroy", q.Size())
	}
}

func TestClientScanIDsAreDistinct(t *testing.T) {
	seen := make(map[string]bool, 10000)
	for i := 0; i < 10000; i++ {
		id := newClientScanID()
		if seen[id] {
			t.Fatalf("duplicate client scan id after %d generations: %s", i, id)
		}
		seen[id] = true
	}
}

func barcodes(scans []models.Scan) []string {
	out := make([]string, len(scans))
	for i, s := range scans {
		out[i] = s.Barcode
	}
	return out
}
