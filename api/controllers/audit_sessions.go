package controllers

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/stocktakehq/stockaudit-backend/api/middleware"
	"github.com/stocktakehq/stockaudit-backend/api/responses"
	"github.com/stocktakehq/stockaudit-backend/api/validators"
	"github.com/stocktakehq/stockaudit-backend/internal/audits"
	"github.com/stocktakehq/stockaudit-backend/pkg/db/models"
	pkgerrors "github.com/stocktakehq/stockaudit-backend/pkg/errors"
	"github.com/stocktakehq/stockaudit-backend/pkg/logger"
)

type startAuditRequest struct {
	LocationID string `json:"location_id" validate:"required"`
	Name       string `json:"name" validate:"required,min=3"`
}

func StartAudit(svc audits.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req startAuditRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		startedBy, err := actorID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		session, err := svc.Start(r.Context(), req.LocationID, req.Name, startedBy)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, session)
	}
}

func GetAudit(svc audits.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := validators.ParsePathUUID(chi.URLParam(r, "auditID"), "auditID")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		session, err := svc.Get(r.Context(), id)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, session)
	}
}

func ListAudits(svc audits.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		locationID := r.URL.Query().Get("location_id")
		if locationID == "" {
			responses.WriteError(r.Context(), logg, w,
				pkgerrors.New(pkgerrors.CodeValidation, "location_id query parameter is required"))
			return
		}
		sessions, err := svc.ListByLocation(r.Context(), locationID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, sessions)
	}
}

func CompleteAudit(svc audits.Service, logg *logger.Logger) http.HandlerFunc {
	return auditTransition(svc.Complete, logg)
}

func CancelAudit(svc audits.Service, logg *logger.Logger) http.HandlerFunc {
	return auditTransition(svc.Cancel, logg)
}

func auditTransition(
	fn func(ctx context.Context, id uuid.UUID) (*models.AuditSession, error),
	logg *logger.Logger,
) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := validators.ParsePathUUID(chi.URLParam(r, "auditID"), "auditID")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		session, err := fn(r.Context(), id)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, session)
	}
}

func actorID(r *http.Request) (uuid.UUID, error) {
	raw := middleware.UserIDFromContext(r.Context())
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "missing actor identity")
	}
	return id, nil
}
