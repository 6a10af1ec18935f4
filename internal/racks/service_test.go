package racks

import (
	"context"
	"testing"

	"github.com/google/uuid"

	"github.com/stocktakehq/stockaudit-backend/pkg/db/models"
	"github.com/stocktakehq/stockaudit-backend/pkg/enums"
	pkgerrors "github.com/stocktakehq/stockaudit-backend/pkg/errors"
)

type fakeRepo struct {
	racks   map[uuid.UUID]*models.Rack
	updates int
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{racks: map[uuid.UUID]*models.Rack{}}
}

func (f *fakeRepo) Create(_ context.Context, rack *models.Rack) error {
	stored := *rack
	f.racks[rack.ID] = &stored
	return nil
}

func (f *fakeRepo) GetByID(_ context.Context, id uuid.UUID) (*models.Rack, error) {
	rack, ok := f.racks[id]
	if !ok {
		return nil, ErrNotFound
	}
	copied := *rack
	return &copied, nil
}

func (f *fakeRepo) ListBySession(_ context.Context, _ uuid.UUID) ([]models.Rack, error) {
	return nil, nil
}

func (f *fakeRepo) CountUnresolved(_ context.Context, _ uuid.UUID) (int64, error) {
	return 0, nil
}

func (f *fakeRepo) Update(_ context.Context, rack *models.Rack) error {
	stored := *rack
	f.racks[rack.ID] = &stored
	f.updates++
	return nil
}

func (f *fakeRepo) seed(status enums.RackStatus) uuid.UUID {
	rack := &models.Rack{
		ID:             uuid.New(),
		AuditSessionID: uuid.New(),
		Code:           "R-01",
		Status:         status,
	}
	f.racks[rack.ID] = rack
	return rack.ID
}

func mustService(t *testing.T, repo Repository) Service {
	t.Helper()
	svc, err := NewService(repo)
	if err != nil {
		t.Fatalf("NewService: %v", err)
	}
	return svc
}

func assertCode(t *testing.T, err error, code pkgerrors.Code) {
	t.Helper()
	typed := pkgerrors.As(err)
	if typed == nil {
		t.Fatalf("expected coded error, got %v", err)
	}
	if typed.Code() != code {
		t.Fatalf("code = %s, want %s", typed.Code(), code)
	}
}

func TestCreateRequiresCode(t *testing.T) {
	svc := mustService(t, newFakeRepo())
	_, err := svc.Create(context.Background(), uuid.New(), "   ")
	assertCode(t, err, pkgerrors.CodeValidation)
}

func TestAssignFromUnassigned(t *testing.T) {
	repo := newFakeRepo()
	id := repo.seed(enums.RackStatusUnassigned)
	svc := mustService(t, repo)

	scanner := uuid.New()
	rack, err := svc.Assign(context.Background(), id, scanner, "dev-1")
	if err != nil {
		t.Fatalf("Assign: %v", err)
	}
	if rack.Status != enums.RackStatusAssigned {
		t.Fatalf("status = %s, want assigned", rack.Status)
	}
	if rack.ScannerID == nil || *rack.ScannerID != scanner {
		t.Fatal("scanner not set")
	}
	if rack.AssignedAt == nil {
		t.Fatal("assigned_at not set")
	}
}

func TestReassignAfterRejectionClearsReview(t *testing.T) {
	repo := newFakeRepo()
	id := repo.seed(enums.RackStatusRejected)
	reviewer := uuid.New()
	note := "quantities off"
	repo.racks[id].ReviewedBy = &reviewer
	repo.racks[id].ReviewNote = &note

	svc := mustService(t, repo)
	rack, err := svc.Assign(context.Background(), id, uuid.New(), "")
	if err != nil {
		t.Fatalf("Assign: %v", err)
	}
	if rack.ReviewedBy != nil || rack.ReviewNote != nil || rack.ReviewedAt != nil {
		t.Fatal("review fields not cleared on reassignment")
	}
}

func TestSubmitRequiresScanning(t *testing.T) {
	repo := newFakeRepo()
	id := repo.seed(enums.RackStatusAssigned)
	svc := mustService(t, repo)

	_, err := svc.Submit(context.Background(), id)
	assertCode(t, err, pkgerrors.CodeStateConflict)
}

func TestMarkScanningIsRepeatable(t *testing.T) {
	repo := newFakeRepo()
	id := repo.seed(enums.RackStatusScanning)
	svc := mustService(t, repo)

	rack, err := svc.MarkScanning(context.Background(), id)
	if err != nil {
		t.Fatalf("MarkScanning: %v", err)
	}
	if rack.Status != enums.RackStatusScanning {
		t.Fatalf("status = %s, want scanning", rack.Status)
	}
	if repo.updates != 0 {
		t.Fatalf("updates = %d, want 0", repo.updates)
	}
}

func TestRejectRequiresNote(t *testing.T) {
	repo := newFakeRepo()
	id := repo.seed(enums.RackStatusSubmitted)
	svc := mustService(t, repo)

	_, err := svc.Reject(context.Background(), id, uuid.New(), "  ")
	assertCode(t, err, pkgerrors.CodeValidation)
}

func TestApproveSetsReviewer(t *testing.T) {
	repo := newFakeRepo()
	id := repo.seed(enums.RackStatusSubmitted)
	svc := mustService(t, repo)

	reviewer := uuid.New()
	rack, err := svc.Approve(context.Background(), id, reviewer, "")
	if err != nil {
		t.Fatalf("Approve: %v", err)
	}
	if rack.Status != enums.RackStatusApproved {
		t.Fatalf("status = %s, want approved", rack.Status)
	}
	if rack.ReviewedBy == nil || *rack.ReviewedBy != reviewer {
		t.Fatal("reviewer not set")
	}
	if rack.ReviewNote != nil {
		t.Fatal("empty note should stay nil")
	}
}

func TestApproveFromScanningDisallowed(t *testing.T) {
	repo := newFakeRepo()
	id := repo.seed(enums.RackStatusScanning)
	svc := mustService(t, repo)

	_, err := svc.Approve(context.Background(), id, uuid.New(), "")
	assertCode(t, err, pkgerrors.CodeStateConflict)
}
