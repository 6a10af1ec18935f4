package damages

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/stocktakehq/stockaudit-backend/pkg/db/models"
)

// ErrNotFound is returned when no damage report matches the lookup.
var ErrNotFound = errors.New("damage report not found")

// Repository defines persistence operations for damage reports.
type Repository interface {
	Create(ctx context.Context, report *models.DamageReport) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.DamageReport, error)
	ListBySession(ctx context.Context, auditSessionID uuid.UUID) ([]models.DamageReport, error)
	Update(ctx context.Context, report *models.DamageReport) error
}

type repository struct {
	db *gorm.DB
}

// NewRepository builds a damage report repository.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) Create(ctx context.Context, report *models.DamageReport) error {
	if err := r.db.WithContext(ctx).Create(report).Error; err != nil {
		return fmt.Errorf("create damage report: %w", err)
	}
	return nil
}

func (r *repository) GetByID(ctx context.Context, id uuid.UUID) (*models.DamageReport, error) {
	var report models.DamageReport
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&report).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get damage report: %w", err)
	}
	return &report, nil
}

func (r *repository) ListBySession(ctx context.Context, auditSessionID uuid.UUID) ([]models.DamageReport, error) {
	var reports []models.DamageReport
	err := r.db.WithContext(ctx).
		Where("audit_session_id = ?", auditSessionID).
		Order("created_at DESC").
		Find(&reports).Error
	if err != nil {
		return nil, fmt.Errorf("list damage reports: %w", err)
	}
	return reports, nil
}

func (r *repository) Update(ctx context.Context, report *models.DamageReport) error {
	if err := r.db.WithContext(ctx).Save(report).Error; err != nil {
		return fmt.Errorf("update damage report: %w", err)
	}
	return nil
}
