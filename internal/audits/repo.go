package audits

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/stocktakehq/stockaudit-backend/pkg/db/models"
	"github.com/stocktakehq/stockaudit-backend/pkg/enums"
)

// ErrNotFound is returned when no audit session matches the lookup.
var ErrNotFound = errors.New("audit session not found")

// Repository defines persistence operations for audit sessions.
type Repository interface {
	Create(ctx context.Context, session *models.AuditSession) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.AuditSession, error)
	ListByLocation(ctx context.Context, locationID string) ([]models.AuditSession, error)
	HasActiveAtLocation(ctx context.Context, locationID string) (bool, error)
	Update(ctx context.Context, session *models.AuditSession) error
}

type repository struct {
	db *gorm.DB
}

// NewRepository builds an audit session repository.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) Create(ctx context.Context, session *models.AuditSession) error {
	if err := r.db.WithContext(ctx).Create(session).Error; err != nil {
		return fmt.Errorf("create audit session: %w", err)
	}
	return nil
}

func (r *repository) GetByID(ctx context.Context, id uuid.UUID) (*models.AuditSession, error) {
	var session models.AuditSession
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&session).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get audit session: %w", err)
	}
	return &session, nil
}

func (r *repository) ListByLocation(ctx context.Context, locationID string) ([]models.AuditSession, error) {
	var sessions []models.AuditSession
	err := r.db.WithContext(ctx).
		Where("location_id = ?", locationID).
		Order("created_at DESC").
		Find(&sessions).Error
	if err != nil {
		return nil, fmt.Errorf("list audit sessions: %w", err)
	}
	return sessions, nil
}

func (r *repository) HasActiveAtLocation(ctx context.Context, locationID string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.AuditSession{}).
		Where("location_id = ? AND status = ?", locationID, enums.AuditSessionStatusActive).
		Count(&count).Error
	if err != nil {
		return false, fmt.Errorf("count active audit sessions: %w", err)
	}
	return count > 0, nil
}

func (r *repository) Update(ctx context.Context, session *models.AuditSession) error {
	if err := r.db.WithContext(ctx).Save(session).Error; err != nil {
		return fmt.Errorf("update audit session: %w", err)
	}
	return nil
}
