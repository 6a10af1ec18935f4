package controllers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/stocktakehq/stockaudit-backend/api/responses"
	"github.com/stocktakehq/stockaudit-backend/api/validators"
	"github.com/stocktakehq/stockaudit-backend/internal/addons"
	"github.com/stocktakehq/stockaudit-backend/pkg/logger"
)

type addAddonRequest struct {
	Barcode  string `json:"barcode" validate:"required"`
	ItemName string `json:"item_name" validate:"required,min=1,max=200"`
	Quantity int    `json:"quantity" validate:"min=0,max=10000"`
}

func AddAddon(svc addons.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		auditID, err := validators.ParsePathUUID(chi.URLParam(r, "auditID"), "auditID")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		addedBy, err := actorID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var req addAddonRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		item, err := svc.Add(r.Context(), addons.AddInput{
			AuditSessionID: auditID,
			Barcode:        req.Barcode,
			ItemName:       req.ItemName,
			Quantity:       req.Quantity,
			AddedBy:        addedBy,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, item)
	}
}

func ListAddons(svc addons.Service, logg *logger.Logger) http.HandlerFunc {
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
