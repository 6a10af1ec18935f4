package controllers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/stocktakehq/stockaudit-backend/api/middleware"
	"github.com/stocktakehq/stockaudit-backend/api/responses"
	"github.com/stocktakehq/stockaudit-backend/api/validators"
	"github.com/stocktakehq/stockaudit-backend/internal/racks"
	"github.com/stocktakehq/stockaudit-backend/pkg/logger"
)

type createRackRequest struct {
	Code string `json:"code" validate:"required,min=1,max=32"`
}

type assignRackRequest struct {
	ScannerID string `json:"scanner_id" validate:"required,uuid"`
	DeviceID  string `json:"device_id"`
}

type reviewRackRequest struct {
	Note string `json:"note" validate:"max=500"`
}

func CreateRack(svc racks.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		auditID, err := validators.ParsePathUUID(chi.URLParam(r, "auditID"), "auditID")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var req createRackRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		rack, err := svc.Create(r.Context(), auditID, req.Code)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, rack)
	}
}

func ListRacks(svc racks.Service, logg *logger.Logger) http.HandlerFunc {
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

func AssignRack(svc racks.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		rackID, err := validators.ParsePathUUID(chi.URLParam(r, "rackID"), "rackID")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var req assignRackRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		scannerID, err := validators.ParsePathUUID(req.ScannerID, "scanner_id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		deviceID := req.DeviceID
		if deviceID == "" {
			deviceID = middleware.DeviceIDFromContext(r.Context())
		}

		rack, err := svc.Assign(r.Context(), rackID, scannerID, deviceID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, rack)
	}
}

func SubmitRack(svc racks.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		rackID, err := validators.ParsePathUUID(chi.URLParam(r, "rackID"), "rackID")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		rack, err := svc.Submit(r.Context(), rackID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, rack)
	}
}

func ApproveRack(svc racks.Service, logg *logger.Logger) http.HandlerFunc {
	return reviewRack(svc, logg, true)
}

func RejectRack(svc racks.Service, logg *logger.Logger) http.HandlerFunc {
	return reviewRack(svc, logg, false)
}

func reviewRack(svc racks.Service, logg *logger.Logger, approve bool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		rackID, err := validators.ParsePathUUID(chi.URLParam(r, "rackID"), "rackID")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		reviewerID, err := actorID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var req reviewRackRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var rack any
		if approve {
			rack, err = svc.Approve(r.Context(), rackID, reviewerID, req.Note)
		} else {
			rack, err = svc.Reject(r.Context(), rackID, reviewerID, req.Note)
		}
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, rack)
	}
}
