package controllers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/stocktakehq/stockaudit-backend/api/responses"
	"github.com/stocktakehq/stockaudit-backend/api/validators"
	"github.com/stocktakehq/stockaudit-backend/internal/damages"
	"github.com/stocktakehq/stockaudit-backend/pkg/logger"
)

type reportDamageRequest struct {
	Barcode     string `json:"barcode" validate:"required"`
	Description string `json:"description" validate:"required,min=3,max=500"`
	Quantity    int    `json:"quantity" validate:"min=0,max=10000"`
}

func ReportDamage(svc damages.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		auditID, err := validators.ParsePathUUID(chi.URLParam(r, "auditID"), "auditID")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		reportedBy, err := actorID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var req reportDamageRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		report, err := svc.Report(r.Context(), damages.ReportInput{
			AuditSessionID: auditID,
			Barcode:        req.Barcode,
			Description:    req.Description,
			Quantity:       req.Quantity,
			ReportedBy:     reportedBy,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, report)
	}
}

func ListDamages(svc damages.Service, logg *logger.Logger) http.HandlerFunc {
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

func VerifyDamage(svc damages.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := validators.ParsePathUUID(chi.URLParam(r, "damageID"), "damageID")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		report, err := svc.Verify(r.Context(), id)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, report)
	}
}

func WriteOffDamage(svc damages.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := validators.ParsePathUUID(chi.URLParam(r, "damageID"), "damageID")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		report, err := svc.WriteOff(r.Context(), id)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, report)
	}
}
