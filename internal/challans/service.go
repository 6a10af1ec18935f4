package challans

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/stocktakehq/stockaudit-backend/pkg/db/models"
	pkgerrors "github.com/stocktakehq/stockaudit-backend/pkg/errors"
)

// Repository defines persistence operations for delivery challans.
type Repository interface {
	Create(ctx context.Context, challan *models.DeliveryChallan) error
	ListBySession(ctx context.Context, auditSessionID uuid.UUID) ([]models.DeliveryChallan, error)
}

type repository struct {
	db *gorm.DB
}

// NewRepository builds a delivery challan repository.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) Create(ctx context.Context, challan *models.DeliveryChallan) error {
	if err := r.db.WithContext(ctx).Create(challan).Error; err != nil {
		return fmt.Errorf("create delivery challan: %w", err)
	}
	return nil
}

func (r *repository) ListBySession(ctx context.Context, auditSessionID uuid.UUID) ([]models.DeliveryChallan, error) {
	var challans []models.DeliveryChallan
	err := r.db.WithContext(ctx).
		Where("audit_session_id = ?", auditSessionID).
		Order("received_at DESC").
		Find(&challans).Error
	if err != nil {
		return nil, fmt.Errorf("list delivery challans: %w", err)
	}
	return challans, nil
}

// Service records deliveries that arrive while an audit is running, so
// counts can be reconciled against stock that postdates the import.
type Service interface {
	Record(ctx context.Context, input RecordInput) (*models.DeliveryChallan, error)
	ListBySession(ctx context.Context, auditSessionID uuid.UUID) ([]models.DeliveryChallan, error)
}

// RecordInput is the caller-supplied part of a new challan.
type RecordInput struct {
	AuditSessionID uuid.UUID
	ChallanNumber  string
	Supplier       string
	ReceivedAt     time.Time
	Notes          string
	RecordedBy     uuid.UUID
}

type service struct {
	repo Repository
}

// NewService constructs a delivery challan service.
func NewService(repo Repository) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("challan repository required")
	}
	return &service{repo: repo}, nil
}

func (s *service) Record(ctx context.Context, input RecordInput) (*models.DeliveryChallan, error) {
	input.ChallanNumber = strings.TrimSpace(input.ChallanNumber)
	input.Supplier = strings.TrimSpace(input.Supplier)
	if input.ChallanNumber == "" || input.Supplier == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "challan number and supplier are required")
	}
	if input.ReceivedAt.IsZero() {
		input.ReceivedAt = time.Now().UTC()
	}

	challan := &models.DeliveryChallan{
		ID:             uuid.New(),
		AuditSessionID: input.AuditSessionID,
		ChallanNumber:  input.ChallanNumber,
		Supplier:       input.Supplier,
		ReceivedAt:     input.ReceivedAt,
		RecordedBy:     input.RecordedBy,
	}
	if notes := strings.TrimSpace(input.Notes); notes != "" {
		challan.Notes = &notes
	}
	if err := s.repo.Create(ctx, challan); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "creating delivery challan")
	}
	return challan, nil
}

func (s *service) ListBySession(ctx context.Context, auditSessionID uuid.UUID) ([]models.DeliveryChallan, error) {
	challans, err := s.repo.ListBySession(ctx, auditSessionID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "listing delivery challans")
	}
	return challans, nil
}
