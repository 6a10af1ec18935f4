package controllers

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/stocktakehq/stockaudit-backend/api/responses"
	"github.com/stocktakehq/stockaudit-backend/api/validators"
	"github.com/stocktakehq/stockaudit-backend/internal/challans"
	"github.com/stocktakehq/stockaudit-backend/pkg/logger"
)

type recordChallanRequest struct {
	ChallanNumber string     `json:"challan_number" validate:"required,min=1,max=64"`
	Supplier      string     `json:"supplier" validate:"required,min=1,max=200"`
	ReceivedAt    *time.Time `json:"received_at"`
	Notes         string     `json:"notes" validate:"max=1000"`
}

func RecordChallan(svc challans.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		auditID, err := validators.ParsePathUUID(chi.URLParam(r, "auditID"), "auditID")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		recordedBy, err := actorID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var req recordChallanRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		input := challans.RecordInput{
			AuditSessionID: auditID,
			ChallanNumber:  req.ChallanNumber,
			Supplier:       req.Supplier,
			Notes:          req.Notes,
			RecordedBy:     recordedBy,
		}
		if req.ReceivedAt != nil {
			input.ReceivedAt = req.ReceivedAt.UTC()
		}

		challan, err := svc.Record(r.Context(), input)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, challan)
	}
}

func ListChallans(svc challans.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		auditID, err := validators.ParsePathUUID(chi.URLParam(r, "auditID"), "auditID")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		items, err := svc.ListBySession(r.Context(), auditID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, items)
	}
}
