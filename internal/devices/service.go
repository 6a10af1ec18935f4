package devices

import (
	"context"
	"fmt"
	"strings"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/stocktakehq/stockaudit-backend/pkg/db/models"
	pkgerrors "github.com/stocktakehq/stockaudit-backend/pkg/errors"
)

// Repository defines persistence operations for registered devices.
type Repository interface {
	Upsert(ctx context.Context, device *models.Device) error
	List(ctx context.Context) ([]models.Device, error)
	TouchLastSeen(ctx context.Context, id string, at time.Time) error
}

type repository struct {
	db *gorm.DB
}

// NewRepository builds a device repository.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

// Upsert registers the device, refreshing label and user agent when the
// fingerprint is already known.
func (r *repository) Upsert(ctx context.Context, device *models.Device) error {
	err := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "id"}},
			DoUpdates: clause.AssignmentColumns([]string{"label", "user_agent", "last_seen_at"}),
		}).
		Create(device).Error
	if err != nil {
		return fmt.Errorf("upsert device: %w", err)
	}
	return nil
}

func (r *repository) List(ctx context.Context) ([]models.Device, error) {
	var devices []models.Device
	err := r.db.WithContext(ctx).Order("created_at ASC").Find(&devices).Error
	if err != nil {
		return nil, fmt.Errorf("list devices: %w", err)
	}
	return devices, nil
}

func (r *repository) TouchLastSeen(ctx context.Context, id string, at time.Time) error {
	err := r.db.WithContext(ctx).
		Model(&models.Device{}).
		Where("id = ?", id).
		Update("last_seen_at", at).Error
	if err != nil {
		return fmt.Errorf("touch device last seen: %w", err)
	}
	return nil
}

// Service tracks the scanning devices seen by the backend.
type Service interface {
	Register(ctx context.Context, id, label, userAgent string) (*models.Device, error)
	List(ctx context.Context) ([]models.Device, error)
	Seen(ctx context.Context, id string) error
}

type service struct {
	repo Repository
}

// NewService constructs a device service.
func NewService(repo Repository) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("device repository required")
	}
	return &service{repo: repo}, nil
}

func (s *service) Register(ctx context.Context, id, label, userAgent string) (*models.Device, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "device id is required")
	}
	if label = strings.TrimSpace(label); label == "" {
		label = id
	}

	now := time.Now().UTC()
	device := &models.Device{
		ID:         id,
		Label:      label,
		UserAgent:  userAgent,
		LastSeenAt: &now,
	}
	if err := s.repo.Upsert(ctx, device); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "registering device")
	}
	return device, nil
}

func (s *service) List(ctx context.Context) ([]models.Device, error) {
	devices, err := s.repo.List(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "listing devices")
	}
	return devices, nil
}

// Seen is best-effort; a miss is not an error for the scan path.
func (s *service) Seen(ctx context.Context, id string) error {
	if strings.TrimSpace(id) == "" {
		return nil
	}
	return s.repo.TouchLastSeen(ctx, id, time.Now().UTC())
}
