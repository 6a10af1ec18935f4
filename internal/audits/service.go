package audits

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/stocktakehq/stockaudit-backend/pkg/db/models"
	"github.com/stocktakehq/stockaudit-backend/pkg/enums"
	pkgerrors "github.com/stocktakehq/stockaudit-backend/pkg/errors"
)

// Service exposes audit session lifecycle operations.
type Service interface {
	Start(ctx context.Context, locationID, name string, startedBy uuid.UUID) (*models.AuditSession, error)
	Get(ctx context.Context, id uuid.UUID) (*models.AuditSession, error)
	ListByLocation(ctx context.Context, locationID string) ([]models.AuditSession, error)
	Complete(ctx context.Context, id uuid.UUID) (*models.AuditSession, error)
	Cancel(ctx context.Context, id uuid.UUID) (*models.AuditSession, error)
}

// RackCounter reports how many racks in a session are not yet approved.
// Completing a session requires that count to be zero.
type RackCounter interface {
	CountUnresolved(ctx context.Context, auditSessionID uuid.UUID) (int64, error)
}

type service struct {
	repo  Repository
	racks RackCounter
}

// NewService constructs an audit session service.
func NewService(repo Repository, racks RackCounter) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("audit repository required")
	}
	if racks == nil {
		return nil, fmt.Errorf("rack counter required")
	}
	return &service{repo: repo, racks: racks}, nil
}

// Start opens a new active session. A location can only run one audit at a
// time.
func (s *service) Start(ctx context.Context, locationID, name string, startedBy uuid.UUID) (*models.AuditSession, error) {
	locationID = strings.TrimSpace(locationID)
	name = strings.TrimSpace(name)
	if locationID == "" || name == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "location id and name are required")
	}

	active, err := s.repo.HasActiveAtLocation(ctx, locationID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "checking active sessions")
	}
	if active {
		return nil, pkgerrors.New(pkgerrors.CodeConflict, "location already has an active audit")
	}

	session := &models.AuditSession{
		ID:         uuid.New(),
		LocationID: locationID,
		Name:       name,
		Status:     enums.AuditSessionStatusActive,
		StartedBy:  startedBy,
	}
	if err := s.repo.Create(ctx, session); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "creating audit session")
	}
	return session, nil
}

func (s *service) Get(ctx context.Context, id uuid.UUID) (*models.AuditSession, error) {
	session, err := s.repo.GetByID(ctx, id)
	if errors.Is(err, ErrNotFound) {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "audit session not found")
	}
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "loading audit session")
	}
	return session, nil
}

func (s *service) ListByLocation(ctx context.Context, locationID string) ([]models.AuditSession, error) {
	sessions, err := s.repo.ListByLocation(ctx, locationID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "listing audit sessions")
	}
	return sessions, nil
}

// Complete closes an active session. Every rack must be approved first.
func (s *service) Complete(ctx context.Context, id uuid.UUID) (*models.AuditSession, error) {
	session, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if session.Status != enums.AuditSessionStatusActive {
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "only active sessions can be completed").
			WithDetails(map[string]any{"status": session.Status})
	}

	unresolved, err := s.racks.CountUnresolved(ctx, id)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "counting unresolved racks")
	}
	if unresolved > 0 {
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "session has unapproved racks").
			WithDetails(map[string]any{"unresolved_racks": unresolved})
	}

	now := time.Now().UTC()
	session.Status = enums.AuditSessionStatusCompleted
	session.ClosedAt = &now
	if err := s.repo.Update(ctx, session); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "completing audit session")
	}
	return session, nil
}

// Cancel abandons an active session. Scans already committed are kept for
// the record.
func (s *service) Cancel(ctx context.Context, id uuid.UUID) (*models.AuditSession, error) {
	session, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if session.Status != enums.AuditSessionStatusActive {
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "only active sessions can be cancelled").
			WithDetails(map[string]any{"status": session.Status})
	}

	now := time.Now().UTC()
	session.Status = enums.AuditSessionStatusCancelled
	session.ClosedAt = &now
	if err := s.repo.Update(ctx, session); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "cancelling audit session")
	}
	return session, nil
}
