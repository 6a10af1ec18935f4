package audits

import (
	"context"
	"testing"

	"github.com/google/uuid"

	"github.com/stocktakehq/stockaudit-backend/pkg/db/models"
	"github.com/stocktakehq/stockaudit-backend/pkg/enums"
	pkgerrors "github.com/stocktakehq/stockaudit-backend/pkg/errors"
)

type fakeRepo struct {
	sessions map[uuid.UUID]*models.AuditSession
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{sessions: map[uuid.UUID]*models.AuditSession{}}
}

func (f *fakeRepo) Create(_ context.Context, session *models.AuditSession) error {
	stored := *session
	f.sessions[session.ID] = &stored
	return nil
}

func (f *fakeRepo) GetByID(_ context.Context, id uuid.UUID) (*models.AuditSession, error) {
	session, ok := f.sessions[id]
	if !ok {
		return nil, ErrNotFound
	}
	copied := *session
	return &copied, nil
}

func (f *fakeRepo) ListByLocation(_ context.Context, _ string) ([]models.AuditSession, error) {
	return nil, nil
}

func (f *fakeRepo) HasActiveAtLocation(_ context.Context, locationID string) (bool, error) {
	for _, session := range f.sessions {
		if session.LocationID == locationID && session.Status == enums.AuditSessionStatusActive {
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeRepo) Update(_ context.Context, session *models.AuditSession) error {
	stored := *session
	f.sessions[session.ID] = &stored
	return nil
}

type fakeCounter struct {
	unresolved int64
}

func (f *fakeCounter) CountUnresolved(_ context.Context, _ uuid.UUID) (int64, error) {
	return f.unresolved, nil
}

func mustService(t *testing.T, repo Repository, racks RackCounter) Service {
	t.Helper()
	svc, err := NewService(repo, racks)
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

func TestStartRejectsSecondActiveAudit(t *testing.T) {
	repo := newFakeRepo()
	svc := mustService(t, repo, &fakeCounter{})

	if _, err := svc.Start(context.Background(), "loc-1", "August count", uuid.New()); err != nil {
		t.Fatalf("Start: %v", err)
	}
	_, err := svc.Start(context.Background(), "loc-1", "duplicate", uuid.New())
	assertCode(t, err, pkgerrors.CodeConflict)

	// another location is fine
	if _, err := svc.Start(context.Background(), "loc-2", "August count", uuid.New()); err != nil {
		t.Fatalf("Start at second location: %v", err)
	}
}

func TestStartValidatesInput(t *testing.T) {
	svc := mustService(t, newFakeRepo(), &fakeCounter{})
	_, err := svc.Start(context.Background(), " ", "name", uuid.New())
	assertCode(t, err, pkgerrors.CodeValidation)
}

func TestCompleteBlockedByUnresolvedRacks(t *testing.T) {
	repo := newFakeRepo()
	counter := &fakeCounter{unresolved: 3}
	svc := mustService(t, repo, counter)

	session, err := svc.Start(context.Background(), "loc-1", "August count", uuid.New())
	if err != nil {
		t.Fatalf("Start: %v", err)
	}

	_, err = svc.Complete(context.Background(), session.ID)
	assertCode(t, err, pkgerrors.CodeStateConflict)

	counter.unresolved = 0
	closed, err := svc.Complete(context.Background(), session.ID)
	if err != nil {
		t.Fatalf("Complete: %v", err)
	}
	if closed.Status != enums.AuditSessionStatusCompleted {
		t.Fatalf("status = %s, want completed", closed.Status)
	}
	if closed.ClosedAt == nil {
		t.Fatal("closed_at not set")
	}
}

func TestCompleteOnlyActive(t *testing.T) {
	repo := newFakeRepo()
	svc := mustService(t, repo, &fakeCounter{})

	session, err := svc.Start(context.Background(), "loc-1", "August count", uuid.New())
	if err != nil {
		t.Fatalf("Start: %v", err)
	}
	if _, err := svc.Cancel(context.Background(), session.ID); err != nil {
		t.Fatalf("Cancel: %v", err)
	}

	_, err = svc.Complete(context.Background(), session.ID)
	assertCode(t, err, pkgerrors.CodeStateConflict)
}

func TestCancelKeepsLocationFree(t *testing.T) {
	repo := newFakeRepo()
	svc := mustService(t, repo, &fakeCounter{})

	session, err := svc.Start(context.Background(), "loc-1", "August count", uuid.New())
	if err != nil {
		t.Fatalf("Start: %v", err)
	}
	if _, err := svc.Cancel(context.Background(), session.ID); err != nil {
		t.Fatalf("Cancel: %v", err)
	}

	// a cancelled session no longer blocks new audits at the location
	if _, err := svc.Start(context.Background(), "loc-1", "recount", uuid.New()); err != nil {
		t.Fatalf("Start after cancel: %v", err)
	}
}
