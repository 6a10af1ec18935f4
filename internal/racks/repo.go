package racks

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/stocktakehq/stockaudit-backend/pkg/db/models"
	"github.com/stocktakehq/stockaudit-backend/pkg/enums"
)

// ErrNotFound is returned when no rack matches the lookup.
var ErrNotFound = errors.New("rack not found")

// Repository defines persistence operations for racks.
type Repository interface {
	Create(ctx context.Context, rack *models.Rack) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Rack, error)
	ListBySession(ctx context.Context, auditSessionID uuid.UUID) ([]models.Rack, error)
	CountUnresolved(ctx context.Context, auditSessionID uuid.UUID) (int64, error)
	Update(ctx context.Context, rack *models.Rack) error
}

type repository struct {
	db *gorm.DB
}

// NewRepository builds a rack repository.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) Create(ctx context.Context, rack *models.Rack) error {
	if err := r.db.WithContext(ctx).Create(rack).Error; err != nil {
		return fmt.Errorf("create rack: %w", err)
	}
	return nil
}

func (r *repository) GetByID(ctx context.Context, id uuid.UUID) (*models.Rack, error) {
	var rack models.Rack
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&rack).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get rack: %w", err)
	}
	return &rack, nil
}

func (r *repository) ListBySession(ctx context.Context, auditSessionID uuid.UUID) ([]models.Rack, error) {
	var racks []models.Rack
	err := r.db.WithContext(ctx).
		Where("audit_session_id = ?", auditSessionID).
		Order("code ASC").
		Find(&racks).Error
	if err != nil {
		return nil, fmt.Errorf("list racks: %w", err)
	}
	return racks, nil
}

func (r *repository) CountUnresolved(ctx context.Context, auditSessionID uuid.UUID) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.Rack{}).
		Where("audit_session_id = ? AND status <> ?", auditSessionID, enums.RackStatusApproved).
		Count(&count).Error
	if err != nil {
		return 0, fmt.Errorf("count unresolved racks: %w", err)
	}
	return count, nil
}

func (r *repository) Update(ctx context.Context, rack *models.Rack) error {
	if err := r.db.WithContext(ctx).Save(rack).Error; err != nil {
		return fmt.Errorf("update rack: %w", err)
	}
	return nil
}
