package controllers

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/stocktakehq/stockaudit-backend/api/middleware"
	"github.com/stocktakehq/stockaudit-backend/api/responses"
	"github.com/stocktakehq/stockaudit-backend/api/validators"
	"github.com/stocktakehq/stockaudit-backend/internal/devices"
	"github.com/stocktakehq/stockaudit-backend/internal/racks"
	"github.com/stocktakehq/stockaudit-backend/internal/scans"
	"github.com/stocktakehq/stockaudit-backend/pkg/db/models"
	pkgerrors "github.com/stocktakehq/stockaudit-backend/pkg/errors"
	"github.com/stocktakehq/stockaudit-backend/pkg/logger"
	"github.com/stocktakehq/stockaudit-backend/pkg/pagination"
)

type scanRow struct {
	ClientScanID string     `json:"client_scan_id" validate:"required"`
	Barcode      string     `json:"barcode" validate:"required"`
	ScannerID    string     `json:"scanner_id" validate:"required,uuid"`
	DeviceID     string     `json:"device_id"`
	Quantity     int        `json:"quantity" validate:"min=0,max=1000"`
	ManualEntry  bool       `json:"manual_entry"`
	ScannedAt    *time.Time `json:"scanned_at"`
}

type ingestScansRequest struct {
	Scans []scanRow `json:"scans" validate:"required,min=1,max=500,dive"`
}

// IngestScans accepts one queue batch for a rack. Retried deliveries are
// safe: rows already committed are counted as duplicates, not errors.
func IngestScans(svc scans.Service, rackSvc racks.Service, deviceSvc devices.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		rackID, err := validators.ParsePathUUID(chi.URLParam(r, "rackID"), "rackID")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var req ingestScansRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		rack, err := rackSvc.Get(r.Context(), rackID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		if _, err := rackSvc.MarkScanning(r.Context(), rackID); err != nil {
			// already-scanning is fine; anything else blocks the batch
			if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeStateConflict {
				responses.WriteError(r.Context(), logg, w, err)
				return
			}
		}

		fallbackDevice := middleware.DeviceIDFromContext(r.Context())

		batch := make([]models.Scan, 0, len(req.Scans))
		for _, row := range req.Scans {
			scannerID, parseErr := uuid.Parse(row.ScannerID)
			if parseErr != nil {
				responses.WriteError(r.Context(), logg, w,
					pkgerrors.New(pkgerrors.CodeValidation, "invalid scanner id").
						WithDetails(map[string]any{"client_scan_id": row.ClientScanID}))
				return
			}
			deviceID := row.DeviceID
			if deviceID == "" {
				deviceID = fallbackDevice
			}
			scannedAt := time.Now().UTC()
			if row.ScannedAt != nil {
				scannedAt = row.ScannedAt.UTC()
			}
			batch = append(batch, models.Scan{
				ClientScanID:   row.ClientScanID,
				Barcode:        row.Barcode,
				RackID:         rackID,
				AuditSessionID: rack.AuditSessionID,
				ScannerID:      scannerID,
				DeviceID:       deviceID,
				Quantity:       row.Quantity,
				ManualEntry:    row.ManualEntry,
				CreatedAt:      scannedAt,
			})
		}

		result, err := svc.IngestBatch(r.Context(), batch)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		if deviceSvc != nil && fallbackDevice != "" {
			if err := deviceSvc.Seen(r.Context(), fallbackDevice); err != nil {
				ctx := logg.WithField(logg.WithDeviceID(r.Context(), fallbackDevice), "error", err.Error())
				logg.Warn(ctx, "recording device last seen failed")
			}
		}

		responses.WriteSuccess(w, result)
	}
}

func ListScans(svc scans.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		rackID, err := validators.ParsePathUUID(chi.URLParam(r, "rackID"), "rackID")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		limit, err := validators.ParseQueryInt(r, "limit", pagination.DefaultLimit, 1, pagination.MaxLimit)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		result, err := svc.ListByRack(r.Context(), rackID, pagination.Params{
			Limit:  limit,
			Cursor: r.URL.Query().Get("cursor"),
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, result)
	}
}
