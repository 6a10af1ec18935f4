package inventory

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/stocktakehq/stockaudit-backend/pkg/db/models"
	pkgerrors "github.com/stocktakehq/stockaudit-backend/pkg/errors"
)

const (
	defaultPageSize = 50
	maxPageSize     = 200
)

// Service exposes read access to expected inventory.
type Service interface {
	Get(ctx context.Context, locationID, barcode string) (*models.InventoryItem, error)
	List(ctx context.Context, locationID, afterBarcode string, limit int) (*Page, error)
	Search(ctx context.Context, locationID, term string) ([]models.InventoryItem, error)
}

// Page is one slice of a location's inventory, keyed by barcode.
type Page struct {
	Items       []models.InventoryItem `json:"items"`
	NextBarcode string                 `json:"next_barcode,omitempty"`
	Total       int64                  `json:"total"`
}

type service struct {
	repo Repository
}

// NewService constructs an inventory service.
func NewService(repo Repository) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("inventory repository required")
	}
	return &service{repo: repo}, nil
}

func (s *service) Get(ctx context.Context, locationID, barcode string) (*models.InventoryItem, error) {
	item, err := s.repo.Get(ctx, locationID, strings.TrimSpace(barcode))
	if errors.Is(err, ErrNotFound) {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "inventory item not found")
	}
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "loading inventory item")
	}
	return item, nil
}

func (s *service) List(ctx context.Context, locationID, afterBarcode string, limit int) (*Page, error) {
	if limit <= 0 {
		limit = defaultPageSize
	}
	if limit > maxPageSize {
		limit = maxPageSize
	}

	// one extra row detects whether another page exists
	items, err := s.repo.ListByLocation(ctx, locationID, afterBarcode, limit+1)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "listing inventory")
	}

	page := &Page{Items: items}
	if len(items) > limit {
		page.Items = items[:limit]
		page.NextBarcode = items[limit-1].Barcode
	}

	total, err := s.repo.CountByLocation(ctx, locationID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "counting inventory")
	}
	page.Total = total
	return page, nil
}

func (s *service) Search(ctx context.Context, locationID, term string) ([]models.InventoryItem, error) {
	term = strings.TrimSpace(term)
	if term == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "search term is required")
	}
	items, err := s.repo.Search(ctx, locationID, term, defaultPageSize)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "searching inventory")
	}
	return items, nil
}
