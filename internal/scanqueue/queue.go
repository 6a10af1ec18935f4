package scanqueue

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/stocktakehq/stockaudit-backend/pkg/db/models"
	"github.com/stocktakehq/stockaudit-backend/pkg/logger"
	"github.com/stocktakehq/stockaudit-backend/pkg/metrics"
)

const (
	defaultFlushInterval  = 5 * time.Second
	defaultBatchThreshold = 10
)

// Sink delivers a batch of scans to the remote store. Implementations must
// treat the whole batch as one write: either every row is accepted (duplicate
// client_scan_id rows may be silently skipped) or the call returns an error
// and the queue re-queues the batch.
type Sink interface {
	InsertScans(ctx context.Context, batch []models.Scan) error
}

// Observer receives the pending count whenever it changes.
type Observer func(size int)

// Input holds the caller-supplied fields of one scan. The queue fills in
// everything else (id, client scan id, device id, quantity, timestamp).
type Input struct {
	Barcode        string
	RackID         uuid.UUID
	AuditSessionID uuid.UUID
	ScannerID      uuid.UUID
}

// Options configure a Queue.
type Options struct {
	Sink           Sink
	DeviceID       string
	Name           string
	FlushInterval  time.Duration
	BatchThreshold int
	Observer       Observer
	Logger         *logger.Logger
	Metrics        *metrics.ScanQueueMetrics
}

// Queue buffers scans in memory and delivers them to the Sink in batches,
// triggered by a fixed interval, a size threshold, or Destroy. A failed
// delivery re-queues the whole batch ahead of anything added since, so no
// scan is ever dropped by the queue itself. Delivery is at-least-once; the
// receiving side dedupes on client_scan_id.
type Queue struct {
	sink      Sink
	deviceID  string
	name      string
	threshold int
	interval  time.Duration
	observer  Observer
	logg      *logger.Logger
	met       *metrics.ScanQueueMetrics

	mu       sync.Mutex
	idle     *sync.Cond
	pending  []models.Scan
	inFlight bool

	stop     chan struct{}
	loopDone sync.WaitGroup
	once     sync.Once
}

// New builds a Queue and starts its flush loop.
func New(opts Options) (*Queue, error) {
	if opts.Sink == nil {
		return nil, fmt.Errorf("sink is required")
	}
	if opts.DeviceID == "" {
		return nil, fmt.Errorf("device id is required")
	}
	name := opts.Name
	if name == "" {
		name = "default"
	}
	interval := opts.FlushInterval
	if interval <= 0 {
		interval = defaultFlushInterval
	}
	threshold := opts.BatchThreshold
	if threshold <= 0 {
		threshold = defaultBatchThreshold
	}

	q := &Queue{
		sink:      opts.Sink,
		deviceID:  opts.DeviceID,
		name:      name,
		threshold: threshold,
		interval:  interval,
		observer:  opts.Observer,
		logg:      opts.Logger,
		met:       opts.Metrics,
		stop:      make(chan struct{}),
	}
	q.idle = sync.NewCond(&q.mu)

	q.loopDone.Add(1)
	go q.run()

	return q, nil
}

// Add builds the full scan record, buffers it, and flushes immediately when
// the buffer reaches the threshold. The returned scan is immutable; the queue
// never modifies it after enqueue.
func (q *Queue) Add(ctx context.Context, input Input, manualEntry bool) models.Scan {
	scan := models.Scan{
		ID:             uuid.New(),
		ClientScanID:   newClientScanID(),
		Barcode:        input.Barcode,
		RackID:         input.RackID,
		AuditSessionID: input.AuditSessionID,
		ScannerID:      input.ScannerID,
		DeviceID:       q.deviceID,
		Quantity:       1,
		ManualEntry:    manualEntry,
		CreatedAt:      time.Now().UTC(),
	}

	q.mu.Lock()
	q.pending = append(q.pending, scan)
	size := len(q.pending)
	q.mu.Unlock()

	q.notify(size)

	if size >= q.threshold {
		if err := q.Flush(ctx); err != nil && q.logg != nil {
			q.logg.Error(ctx, "threshold flush failed, batch re-queued", err)
		}
	}

	return scan
}

// Flush delivers everything currently buffered as one batch. An empty buffer
// succeeds trivially. While a flush is in flight, further Flush calls return
// immediately without touching the buffer; Add keeps filling a fresh buffer.
// On failure the whole batch is re-inserted ahead of anything added since,
// preserving original order.
func (q *Queue) Flush(ctx context.Context) error {
	q.mu.Lock()
	if q.inFlight || len(q.pending) == 0 {
		q.mu.Unlock()
		return nil
	}
	batch := q.pending
	q.pending = nil
	q.inFlight = true
	q.mu.Unlock()

	err := q.sink.InsertScans(ctx, batch)

	q.mu.Lock()
	q.inFlight = false
	q.idle.Broadcast()
	if err != nil {
		// failed batch goes back in front, verbatim
		q.pending = append(batch, q.pending...)
	}
	size := len(q.pending)
	q.mu.Unlock()

	q.notify(size)

	if err != nil {
		q.met.IncFlushFailure(q.name)
		return fmt.Errorf("flush %d scans: %w", len(batch), err)
	}
	q.met.IncFlushSuccess(q.name, len(batch))
	return nil
}

// Size returns the pending count, excluding any batch currently in flight.
func (q *Queue) Size() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.pending)
}

// Destroy stops the flush loop, waits for any in-flight delivery to finish,
// and flushes until the buffer is empty or a delivery fails. Scans added
// while a delivery was in flight are drained, not stranded.
func (q *Queue) Destroy(ctx context.Context) error {
	q.once.Do(func() {
		close(q.stop)
	})
	q.loopDone.Wait()

	for {
		q.mu.Lock()
		for q.inFlight {
			q.idle.Wait()
		}
		if len(q.pending) == 0 {
			q.mu.Unlock()
			return nil
		}
		q.mu.Unlock()

		if err := q.Flush(ctx); err != nil {
			return err
		}
	}
}

func (q *Queue) run() {
	defer q.loopDone.Done()
	ticker := time.NewTicker(q.interval)
	defer ticker.Stop()

	for {
		select {
		case <-q.stop:
			return
		case <-ticker.C:
			ctx := context.Background()
			if err := q.Flush(ctx); err != nil && q.logg != nil {
				q.logg.Error(ctx, "interval flush failed, batch re-queued", err)
			}
		}
	}
}

func (q *Queue) notify(size int) {
	q.met.SetPending(q.name, size)
	if q.observer != nil {
		q.observer(size)
	}
}

// newClientScanID builds the idempotency token the receiver dedupes on:
// a nanosecond timestamp plus a random suffix.
func newClientScanID() string {
	var suffix [8]byte
	if _, err := rand.Read(suffix[:]); err != nil {
		return fmt.Sprintf("%d-%s", time.Now().UnixNano(), uuid.NewString()[:16])
	}
	return fmt.Sprintf("%d-%s", time.Now().UnixNano(), hex.EncodeToString(suffix[:]))
}
