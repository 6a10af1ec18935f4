package addons

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/stocktakehq/stockaudit-backend/pkg/db/models"
	pkgerrors "github.com/stocktakehq/stockaudit-backend/pkg/errors"
)

// Repository defines persistence operations for add-on items.
type Repository interface {
	Create(ctx context.Context, item *models.AddOnItem) error
	ListBySession(ctx context.Context, auditSessionID uuid.UUID) ([]models.AddOnItem, error)
}

type repository struct {
	db *gorm.DB
}

// NewRepository builds an add-on item repository.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) Create(ctx context.Context, item *models.AddOnItem) error {
	if err := r.db.WithContext(ctx).Create(item).Error; err != nil {
		return fmt.Errorf("create addon item: %w", err)
	}
	return nil
}

func (r *repository) ListBySession(ctx context.Context, auditSessionID uuid.UUID) ([]models.AddOnItem, error) {
	var items []models.AddOnItem
	err := r.db.WithContext(ctx).
		Where("audit_session_id = ?", auditSessionID).
		Order("created_at DESC").
		Find(&items).Error
	if err != nil {
		return nil, fmt.Errorf("list addon items: %w", err)
	}
	return items, nil
}

// Service records stock found on the floor that expected inventory does not
// list.
type Service interface {
	Add(ctx context.Context, input AddInput) (*models.AddOnItem, error)
	ListBySession(ctx context.Context, auditSessionID uuid.UUID) ([]models.AddOnItem, error)
}

// AddInput is the caller-supplied part of a new add-on item.
type AddInput struct {
	AuditSessionID uuid.UUID
	Barcode        string
	ItemName       string
	Quantity       int
	AddedBy        uuid.UUID
}

type service struct {
	repo Repository
}

// NewService constructs an add-on item service.
func NewService(repo Repository) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("addon repository required")
	}
	return &service{repo: repo}, nil
}

func (s *service) Add(ctx context.Context, input AddInput) (*models.AddOnItem, error) {
	input.Barcode = strings.TrimSpace(input.Barcode)
	input.ItemName = strings.TrimSpace(input.ItemName)
	if input.Barcode == "" || input.ItemName == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "barcode and item name are required")
	}
	if input.Quantity <= 0 {
		input.Quantity = 1
	}

	item := &models.AddOnItem{
		ID:             uuid.New(),
		AuditSessionID: input.AuditSessionID,
		Barcode:        input.Barcode,
		ItemName:       input.ItemName,
		Quantity:       input.Quantity,
		AddedBy:        input.AddedBy,
	}
	if err := s.repo.Create(ctx, item); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "creating addon item")
	}
	return item, nil
}

func (s *service) ListBySession(ctx context.Context, auditSessionID uuid.UUID) ([]models.AddOnItem, error) {
	items, err := s.repo.ListBySession(ctx, auditSessionID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "listing addon items")
	}
	return items, nil
}
