package damages

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/stocktakehq/stockaudit-backend/pkg/db/models"
	"github.com/stocktakehq/stockaudit-backend/pkg/enums"
	pkgerrors "github.com/stocktakehq/stockaudit-backend/pkg/errors"
)

// Service exposes damage report operations.
type Service interface {
	Report(ctx context.Context, input ReportInput) (*models.DamageReport, error)
	ListBySession(ctx context.Context, auditSessionID uuid.UUID) ([]models.DamageReport, error)
	Verify(ctx context.Context, id uuid.UUID) (*models.DamageReport, error)
	WriteOff(ctx context.Context, id uuid.UUID) (*models.DamageReport, error)
}

// ReportInput is the caller-supplied part of a new damage report.
type ReportInput struct {
	AuditSessionID uuid.UUID
	Barcode        string
	Description    string
	Quantity       int
	ReportedBy     uuid.UUID
}

type service struct {
	repo Repository
}

// NewService constructs a damage report service.
func NewService(repo Repository) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("damage repository required")
	}
	return &service{repo: repo}, nil
}

func (s *service) Report(ctx context.Context, input ReportInput) (*models.DamageReport, error) {
	input.Barcode = strings.TrimSpace(input.Barcode)
	input.Description = strings.TrimSpace(input.Description)
	if input.Barcode == "" || input.Description == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "barcode and description are required")
	}
	if input.Quantity <= 0 {
		input.Quantity = 1
	}

	report := &models.DamageReport{
		ID:             uuid.New(),
		AuditSessionID: input.AuditSessionID,
		Barcode:        input.Barcode,
		Description:    input.Description,
		Quantity:       input.Quantity,
		Status:         enums.DamageStatusReported,
		ReportedBy:     input.ReportedBy,
	}
	if err := s.repo.Create(ctx, report); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "creating damage report")
	}
	return report, nil
}

func (s *service) ListBySession(ctx context.Context, auditSessionID uuid.UUID) ([]models.DamageReport, error) {
	reports, err := s.repo.ListBySession(ctx, auditSessionID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "listing damage reports")
	}
	return reports, nil
}

// Verify confirms a reported damage after supervisor inspection.
func (s *service) Verify(ctx context.Context, id uuid.UUID) (*models.DamageReport, error) {
	return s.advance(ctx, id, enums.DamageStatusReported, enums.DamageStatusVerified)
}

// WriteOff closes a verified damage for stock adjustment.
func (s *service) WriteOff(ctx context.Context, id uuid.UUID) (*models.DamageReport, error) {
	return s.advance(ctx, id, enums.DamageStatusVerified, enums.DamageStatusWrittenOff)
}

func (s *service) advance(ctx context.Context, id uuid.UUID, from, to enums.DamageStatus) (*models.DamageReport, error) {
	report, err := s.repo.GetByID(ctx, id)
	if errors.Is(err, ErrNotFound) {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "damage report not found")
	}
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "loading damage report")
	}
	if report.Status != from {
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "damage status transition disallowed").
			WithDetails(map[string]any{"from": report.Status, "to": to})
	}

	report.Status = to
	if err := s.repo.Update(ctx, report); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "updating damage report")
	}
	return report, nil
}
