package reports

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/stocktakehq/stockaudit-backend/pkg/db/models"
	"github.com/stocktakehq/stockaudit-backend/pkg/enums"
	pkgerrors "github.com/stocktakehq/stockaudit-backend/pkg/errors"
)

// SessionLoader resolves an audit session; the variance report needs its
// location to pick the right expected inventory.
type SessionLoader interface {
	Get(ctx context.Context, id uuid.UUID) (*models.AuditSession, error)
}

// VarianceLine is one barcode in the variance report.
type VarianceLine struct {
	Barcode       string          `json:"barcode"`
	ItemCode      string          `json:"item_code"`
	ItemName      string          `json:"item_name"`
	Brand         string          `json:"brand"`
	Expected      int             `json:"expected"`
	Counted       int             `json:"counted"`
	Variance      int             `json:"variance"`
	UnitCost      decimal.Decimal `json:"unit_cost"`
	VarianceValue decimal.Decimal `json:"variance_value"`
}

// UnexpectedLine is a counted barcode absent from expected inventory.
type UnexpectedLine struct {
	Barcode string `json:"barcode"`
	Counted int    `json:"counted"`
}

// VarianceReport compares approved counts against expected inventory for one
// audit session.
type VarianceReport struct {
	AuditSessionID   uuid.UUID                  `json:"audit_session_id"`
	LocationID       string                     `json:"location_id"`
	Lines            []VarianceLine             `json:"lines"`
	Unexpected       []UnexpectedLine           `json:"unexpected"`
	RackCounts       map[enums.RackStatus]int64 `json:"rack_counts"`
	TotalExpected    int                        `json:"total_expected"`
	TotalCounted     int                        `json:"total_counted"`
	ItemsShort       int                        `json:"items_short"`
	ItemsOver        int                        `json:"items_over"`
	ItemsExact       int                        `json:"items_exact"`
	NetVarianceValue decimal.Decimal            `json:"net_variance_value"`
}

// Service builds audit reports.
type Service interface {
	Variance(ctx context.Context, auditSessionID uuid.UUID) (*VarianceReport, error)
}

type service struct {
	repo     Repository
	sessions SessionLoader
}

// NewService constructs a report service.
func NewService(repo Repository, sessions SessionLoader) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("report repository required")
	}
	if sessions == nil {
		return nil, fmt.Errorf("session loader required")
	}
	return &service{repo: repo, sessions: sessions}, nil
}

// Variance builds the expected-vs-counted report. Counts come only from
// approved racks, so the report is stable while submissions are under
// review.
func (s *service) Variance(ctx context.Context, auditSessionID uuid.UUID) (*VarianceReport, error) {
	session, err := s.sessions.Get(ctx, auditSessionID)
	if err != nil {
		return nil, err
	}

	rows, err := s.repo.VarianceRows(ctx, auditSessionID, session.LocationID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "building variance rows")
	}
	unexpected, err := s.repo.UnexpectedRows(ctx, auditSessionID, session.LocationID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "building unexpected rows")
	}
	rackCounts, err := s.repo.RackStatusCounts(ctx, auditSessionID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "counting racks")
	}

	report := &VarianceReport{
		AuditSessionID: auditSessionID,
		LocationID:     session.LocationID,
		Lines:          make([]VarianceLine, 0, len(rows)),
		Unexpected:     make([]UnexpectedLine, 0, len(unexpected)),
		RackCounts:     make(map[enums.RackStatus]int64, len(rackCounts)),
	}

	for _, row := range rows {
		variance := row.Counted - row.Expected
		line := VarianceLine{
			Barcode:       row.Barcode,
			ItemCode:      row.ItemCode,
			ItemName:      row.ItemName,
			Brand:         row.Brand,
			Expected:      row.Expected,
			Counted:       row.Counted,
			Variance:      variance,
			UnitCost:      row.UnitCost,
			VarianceValue: row.UnitCost.Mul(decimal.NewFromInt(int64(variance))),
		}
		report.Lines = append(report.Lines, line)
		report.TotalExpected += row.Expected
		report.TotalCounted += row.Counted
		report.NetVarianceValue = report.NetVarianceValue.Add(line.VarianceValue)
		switch {
		case variance < 0:
			report.ItemsShort++
		case variance > 0:
			report.ItemsOver++
		default:
			report.ItemsExact++
		}
	}

	for _, row := range unexpected {
		report.Unexpected = append(report.Unexpected, UnexpectedLine(row))
		report.TotalCounted += row.Counted
	}

	for _, rc := range rackCounts {
		report.RackCounts[rc.Status] = rc.Count
	}

	return report, nil
}
