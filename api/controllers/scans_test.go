package controllers

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/stocktakehq/stockaudit-backend/api/middleware"
	"github.com/stocktakehq/stockaudit-backend/internal/scans"
	"github.com/stocktakehq/stockaudit-backend/pkg/db/models"
	"github.com/stocktakehq/stockaudit-backend/pkg/logger"
	"github.com/stocktakehq/stockaudit-backend/pkg/pagination"
)

type fakeScanService struct {
	batches [][]models.Scan
}

func (f *fakeScanService) IngestBatch(_ context.Context, batch []models.Scan) (*scans.IngestResult, error) {
	f.batches = append(f.batches, batch)
	return &scans.IngestResult{Received: len(batch), Inserted: len(batch)}, nil
}

func (f *fakeScanService) ListByRack(_ context.Context, _ uuid.UUID, _ pagination.Params) (*scans.ListResult, error) {
	return &scans.ListResult{}, nil
}

func (f *fakeScanService) CountByRack(_ context.Context, _ uuid.UUID) (int64, error) {
	return 0, nil
}

type fakeRackService struct {
	rack *models.Rack
}

func (f *fakeRackService) Create(_ context.Context, _ uuid.UUID, _ string) (*models.Rack, error) {
	return f.rack, nil
}

func (f *fakeRackService) Get(_ context.Context, _ uuid.UUID) (*models.Rack, error) {
	return f.rack, nil
}

func (f *fakeRackService) ListBySession(_ context.Context, _ uuid.UUID) ([]models.Rack, error) {
	return nil, nil
}

func (f *fakeRackService) Assign(_ context.Context, _, _ uuid.UUID, _ string) (*models.Rack, error) {
	return f.rack, nil
}

func (f *fakeRackService) MarkScanning(_ context.Context, _ uuid.UUID) (*models.Rack, error) {
	return f.rack, nil
}

func (f *fakeRackService) Submit(_ context.Context, _ uuid.UUID) (*models.Rack, error) {
	return f.rack, nil
}

func (f *fakeRackService) Approve(_ context.Context, _, _ uuid.UUID, _ string) (*models.Rack, error) {
	return f.rack, nil
}

func (f *fakeRackService) Reject(_ context.Context, _, _ uuid.UUID, _ string) (*models.Rack, error) {
	return f.rack, nil
}

type flakyDeviceService struct {
	seenErr   error
	seenCalls int
}

func (f *flakyDeviceService) Register(_ context.Context, _, _, _ string) (*models.Device, error) {
	return nil, nil
}

func (f *flakyDeviceService) List(_ context.Context) ([]models.Device, error) {
	return nil, nil
}

func (f *flakyDeviceService) Seen(_ context.Context, _ string) error {
	f.seenCalls++
	return f.seenErr
}

func TestIngestScansDeviceSeenFailureIsLoggedNotFatal(t *testing.T) {
	rackID := uuid.New()
	rack := &models.Rack{ID: rackID, AuditSessionID: uuid.New()}
	scanSvc := &fakeScanService{}
	deviceSvc := &flakyDeviceService{seenErr: fmt.Errorf("device store down")}

	var logs bytes.Buffer
	logg := logger.New(logger.Options{ServiceName: "test", Output: &logs})

	handler := IngestScans(scanSvc, &fakeRackService{rack: rack}, deviceSvc, logg)

	body := fmt.Sprintf(`{"scans":[{"client_scan_id":"c-1","barcode":"400000000001","scanner_id":%q,"quantity":1}]}`,
		uuid.NewString())
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(body))

	rctx := chi.NewRouteContext()
	rctx.URLParams.Add("rackID", rackID.String())
	ctx := context.WithValue(req.Context(), chi.RouteCtxKey, rctx)
	ctx = middleware.WithDeviceID(ctx, "dev-1")
	req = req.WithContext(ctx)

	rec := httptest.NewRecorder()
	handler(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body.String())
	}
	if len(scanSvc.batches) != 1 || len(scanSvc.batches[0]) != 1 {
		t.Fatalf("batch not ingested: %+v", scanSvc.batches)
	}
	if deviceSvc.seenCalls != 1 {
		t.Fatalf("seen calls = %d, want 1", deviceSvc.seenCalls)
	}
	if !strings.Contains(logs.String(), "recording device last seen failed") {
		t.Fatalf("device failure not logged: %s", logs.String())
	}
	if !strings.Contains(logs.String(), "dev-1") {
		t.Fatalf("log line missing device id: %s", logs.String())
	}
}
