package main

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/stocktakehq/stockaudit-backend/internal/scanqueue"
	"github.com/stocktakehq/stockaudit-backend/internal/scans"
	"github.com/stocktakehq/stockaudit-backend/pkg/db/models"
	"github.com/stocktakehq/stockaudit-backend/pkg/logger"
	"github.com/stocktakehq/stockaudit-backend/pkg/metrics"
)

const agentName = "stockaudit-scanner-agent/1.0"

func main() {
	var (
		apiURL    = flag.String("api", "http://localhost:8080", "audit backend base URL")
		token     = flag.String("token", "", "bearer access token")
		rackID    = flag.String("rack", "", "rack uuid to scan into")
		sessionID = flag.String("session", "", "audit session uuid")
		scannerID = flag.String("scanner", "", "scanner operator uuid")
		idPath    = flag.String("device-id-file", defaultDeviceIDPath(), "path of the persisted device id")
		interval  = flag.Duration("flush-interval", 5*time.Second, "timer flush interval")
		threshold = flag.Int("batch-threshold", 10, "buffer size that triggers an immediate flush")
	)
	flag.Parse()

	logg := logger.New(logger.Options{ServiceName: "scanner-agent"})
	ctx := context.Background()

	rack, err := uuid.Parse(*rackID)
	if err != nil {
		logg.Error(ctx, "a valid -rack uuid is required", err)
		os.Exit(2)
	}
	session, err := uuid.Parse(*sessionID)
	if err != nil {
		logg.Error(ctx, "a valid -session uuid is required", err)
		os.Exit(2)
	}
	scanner, err := uuid.Parse(*scannerID)
	if err != nil {
		logg.Error(ctx, "a valid -scanner uuid is required", err)
		os.Exit(2)
	}
	if *token == "" {
		logg.Error(ctx, "-token is required", fmt.Errorf("missing bearer token"))
		os.Exit(2)
	}

	deviceID, err := scanqueue.LoadOrCreateDeviceID(*idPath, agentName)
	if err != nil {
		logg.Error(ctx, "failed to load device id", err)
		os.Exit(1)
	}
	ctx = logg.WithDeviceID(ctx, deviceID)

	sink := &httpSink{
		baseURL:  strings.TrimRight(*apiURL, "/"),
		token:    *token,
		rackID:   rack,
		deviceID: deviceID,
		client:   &http.Client{Timeout: 15 * time.Second},
	}

	queue, err := scanqueue.New(scanqueue.Options{
		Sink:           sink,
		DeviceID:       deviceID,
		Name:           "agent",
		FlushInterval:  *interval,
		BatchThreshold: *threshold,
		Logger:         logg,
		Metrics:        metrics.NewScanQueueMetrics(prometheus.DefaultRegisterer),
		Observer: func(size int) {
			fmt.Fprintf(os.Stderr, "\rpending: %d  ", size)
		},
	})
	if err != nil {
		logg.Error(ctx, "failed to start scan queue", err)
		os.Exit(1)
	}

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	lines := make(chan string)
	go readBarcodes(os.Stdin, lines)

	classifier := scanqueue.NewEntryClassifier(0)
	logg.Info(ctx, "reading barcodes from stdin, one per line")

	for {
		select {
		case <-stop:
			logg.Info(ctx, "shutting down, flushing remaining scans")
			if err := queue.Destroy(ctx); err != nil {
				logg.Error(ctx, "final flush failed, scans lost", err)
				os.Exit(1)
			}
			return
		case line, ok := <-lines:
			if !ok {
				if err := queue.Destroy(ctx); err != nil {
					logg.Error(ctx, "final flush failed, scans lost", err)
					os.Exit(1)
				}
				return
			}
			barcode := strings.TrimSpace(line)
			if barcode == "" {
				continue
			}
			if !scans.IsValidBarcode(barcode) {
				logg.Warn(logg.WithField(ctx, "barcode", barcode), "skipping invalid barcode")
				continue
			}
			manual := classifier.Classify(time.Now())
			queue.Add(ctx, scanqueue.Input{
				Barcode:        barcode,
				RackID:         rack,
				AuditSessionID: session,
				ScannerID:      scanner,
			}, manual)
		}
	}
}

func readBarcodes(f *os.File, out chan<- string) {
	defer close(out)
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		out <- sc.Text()
	}
}

func defaultDeviceIDPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".stockaudit-device-id"
	}
	return filepath.Join(home, ".stockaudit", "device-id")
}

// httpSink delivers batches to the backend's scan ingest endpoint. Any
// non-2xx response is a failed delivery; the queue re-queues the batch.
type httpSink struct {
	baseURL  string
	token    string
	rackID   uuid.UUID
	deviceID string
	client   *http.Client
}

type sinkScan struct {
	ClientScanID string    `json:"client_scan_id"`
	Barcode      string    `json:"barcode"`
	ScannerID    string    `json:"scanner_id"`
	DeviceID     string    `json:"device_id"`
	Quantity     int       `json:"quantity"`
	ManualEntry  bool      `json:"manual_entry"`
	ScannedAt    time.Time `json:"scanned_at"`
}

func (s *httpSink) InsertScans(ctx context.Context, batch []models.Scan) error {
	rows := make([]sinkScan, len(batch))
	for i, scan := range batch {
		rows[i] = sinkScan{
			ClientScanID: scan.ClientScanID,
			Barcode:      scan.Barcode,
			ScannerID:    scan.ScannerID.String(),
			DeviceID:     scan.DeviceID,
			Quantity:     scan.Quantity,
			ManualEntry:  scan.ManualEntry,
			ScannedAt:    scan.CreatedAt,
		}
	}

	body, err := json.Marshal(map[string]any{"scans": rows})
	if err != nil {
		return fmt.Errorf("encode batch: %w", err)
	}

	url := fmt.Sprintf("%s/api/v1/racks/%s/scans", s.baseURL, s.rackID)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+s.token)
	req.Header.Set("X-Device-Id", s.deviceID)
	req.Header.Set("User-Agent", agentName)

	resp, err := s.client.Do(req)
	if err != nil {
		return fmt.Errorf("deliver batch: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("deliver batch: backend returned %s", resp.Status)
	}
	return nil
}
