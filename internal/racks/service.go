package racks

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/stocktakehq/stockaudit-backend/pkg/db"
	"github.com/stocktakehq/stockaudit-backend/pkg/db/models"
	"github.com/stocktakehq/stockaudit-backend/pkg/enums"
	pkgerrors "github.com/stocktakehq/stockaudit-backend/pkg/errors"
)

// Service exposes rack lifecycle operations: creation, assignment, and the
// submit/review flow.
type Service interface {
	Create(ctx context.Context, auditSessionID uuid.UUID, code string) (*models.Rack, error)
	Get(ctx context.Context, id uuid.UUID) (*models.Rack, error)
	ListBySession(ctx context.Context, auditSessionID uuid.UUID) ([]models.Rack, error)
	Assign(ctx context.Context, id, scannerID uuid.UUID, deviceID string) (*models.Rack, error)
	MarkScanning(ctx context.Context, id uuid.UUID) (*models.Rack, error)
	Submit(ctx context.Context, id uuid.UUID) (*models.Rack, error)
	Approve(ctx context.Context, id, reviewerID uuid.UUID, note string) (*models.Rack, error)
	Reject(ctx context.Context, id, reviewerID uuid.UUID, note string) (*models.Rack, error)
}

type service struct {
	repo Repository
}

// NewService constructs a rack service.
func NewService(repo Repository) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("rack repository required")
	}
	return &service{repo: repo}, nil
}

func (s *service) Create(ctx context.Context, auditSessionID uuid.UUID, code string) (*models.Rack, error) {
	code = strings.TrimSpace(code)
	if code == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "rack code is required")
	}

	rack := &models.Rack{
		ID:             uuid.New(),
		AuditSessionID: auditSessionID,
		Code:           code,
		Status:         enums.RackStatusUnassigned,
	}
	if err := s.repo.Create(ctx, rack); err != nil {
		if db.IsUniqueViolation(err, "") {
			return nil, pkgerrors.New(pkgerrors.CodeConflict, "rack code already exists in this session").
				WithDetails(map[string]any{"code": code})
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "creating rack")
	}
	return rack, nil
}

func (s *service) Get(ctx context.Context, id uuid.UUID) (*models.Rack, error) {
	rack, err := s.repo.GetByID(ctx, id)
	if errors.Is(err, ErrNotFound) {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "rack not found")
	}
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "loading rack")
	}
	return rack, nil
}

func (s *service) ListBySession(ctx context.Context, auditSessionID uuid.UUID) ([]models.Rack, error) {
	racks, err := s.repo.ListBySession(ctx, auditSessionID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "listing racks")
	}
	return racks, nil
}

// Assign hands a rack to a scanner operator. A rejected rack can be
// reassigned for a recount.
func (s *service) Assign(ctx context.Context, id, scannerID uuid.UUID, deviceID string) (*models.Rack, error) {
	rack, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.transition(rack, enums.RackStatusAssigned); err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	rack.ScannerID = &scannerID
	if deviceID != "" {
		rack.DeviceID = &deviceID
	}
	rack.AssignedAt = &now
	rack.SubmittedAt = nil
	rack.ReviewedBy = nil
	rack.ReviewedAt = nil
	rack.ReviewNote = nil

	if err := s.repo.Update(ctx, rack); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "assigning rack")
	}
	return rack, nil
}

// MarkScanning moves an assigned rack into scanning. Called when the first
// scan batch for the rack arrives.
func (s *service) MarkScanning(ctx context.Context, id uuid.UUID) (*models.Rack, error) {
	rack, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if rack.Status == enums.RackStatusScanning {
		return rack, nil
	}
	if err := s.transition(rack, enums.RackStatusScanning); err != nil {
		return nil, err
	}
	if err := s.repo.Update(ctx, rack); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "marking rack scanning")
	}
	return rack, nil
}

func (s *service) Submit(ctx context.Context, id uuid.UUID) (*models.Rack, error) {
	rack, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.transition(rack, enums.RackStatusSubmitted); err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	rack.SubmittedAt = &now
	if err := s.repo.Update(ctx, rack); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "submitting rack")
	}
	return rack, nil
}

func (s *service) Approve(ctx context.Context, id, reviewerID uuid.UUID, note string) (*models.Rack, error) {
	return s.review(ctx, id, reviewerID, note, enums.RackStatusApproved)
}

func (s *service) Reject(ctx context.Context, id, reviewerID uuid.UUID, note string) (*models.Rack, error) {
	if strings.TrimSpace(note) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "a rejection note is required")
	}
	return s.review(ctx, id, reviewerID, note, enums.RackStatusRejected)
}

func (s *service) review(ctx context.Context, id, reviewerID uuid.UUID, note string, next enums.RackStatus) (*models.Rack, error) {
	rack, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.transition(rack, next); err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	rack.ReviewedBy = &reviewerID
	rack.ReviewedAt = &now
	if note = strings.TrimSpace(note); note != "" {
		rack.ReviewNote = &note
	}
	if err := s.repo.Update(ctx, rack); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "reviewing rack")
	}
	return rack, nil
}

func (s *service) transition(rack *models.Rack, next enums.RackStatus) error {
	if !rack.Status.CanTransitionTo(next) {
		return pkgerrors.New(pkgerrors.CodeStateConflict, "rack status transition disallowed").
			WithDetails(map[string]any{"from": rack.Status, "to": next})
	}
	rack.Status = next
	return nil
}
