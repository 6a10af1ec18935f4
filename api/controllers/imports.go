package controllers

import (
	"net/http"

	"github.com/stocktakehq/stockaudit-backend/api/responses"
	"github.com/stocktakehq/stockaudit-backend/internal/imports"
	"github.com/stocktakehq/stockaudit-backend/pkg/config"
	pkgerrors "github.com/stocktakehq/stockaudit-backend/pkg/errors"
	"github.com/stocktakehq/stockaudit-backend/pkg/logger"
)

// UploadInventory receives a multipart spreadsheet and runs the import
// pipeline. The file field is "file"; the target location comes from the
// "location_id" form field.
func UploadInventory(svc imports.Service, cfg config.ImportConfig, logg *logger.Logger) http.HandlerFunc {
	maxBytes := int64(cfg.MaxUploadMB) << 20
	return func(w http.ResponseWriter, r *http.Request) {
		r.Body = http.MaxBytesReader(w, r.Body, maxBytes)
		if err := r.ParseMultipartForm(maxBytes); err != nil {
			responses.WriteError(r.Context(), logg, w,
				pkgerrors.Wrap(pkgerrors.CodeValidation, err, "upload too large or malformed"))
			return
		}

		locationID := r.FormValue("location_id")
		if locationID == "" {
			responses.WriteError(r.Context(), logg, w,
				pkgerrors.New(pkgerrors.CodeValidation, "location_id form field is required"))
			return
		}

		file, header, err := r.FormFile("file")
		if err != nil {
			responses.WriteError(r.Context(), logg, w,
				pkgerrors.Wrap(pkgerrors.CodeValidation, err, "file form field is required"))
			return
		}
		defer file.Close()

		result, err := svc.Import(r.Context(), locationID, header.Filename, file)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, result)
	}
}
