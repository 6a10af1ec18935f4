package controllers

import (
	"net/http"

	"github.com/stocktakehq/stockaudit-backend/api/middleware"
	"github.com/stocktakehq/stockaudit-backend/api/responses"
	"github.com/stocktakehq/stockaudit-backend/api/validators"
	authsvc "github.com/stocktakehq/stockaudit-backend/internal/auth"
	pkgauth "github.com/stocktakehq/stockaudit-backend/pkg/auth"
	"github.com/stocktakehq/stockaudit-backend/pkg/config"
	pkgerrors "github.com/stocktakehq/stockaudit-backend/pkg/errors"
	"github.com/stocktakehq/stockaudit-backend/pkg/logger"
)

type loginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=8"`
}

type refreshRequest struct {
	AccessToken  string `json:"access_token" validate:"required"`
	RefreshToken string `json:"refresh_token" validate:"required"`
}

func Login(svc authsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req loginRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		result, err := svc.Login(r.Context(), req.Email, req.Password)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, map[string]any{
			"user": map[string]any{
				"id":        result.User.ID,
				"email":     result.User.Email,
				"full_name": result.User.FullName,
				"role":      result.User.Role,
			},
			"access_token":  result.Tokens.AccessToken,
			"refresh_token": result.Tokens.RefreshToken,
		})
	}
}

func Refresh(svc authsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req refreshRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		pair, err := svc.Refresh(r.Context(), req.AccessToken, req.RefreshToken)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, pair)
	}
}

// Logout revokes the session carried by the bearer token. It runs behind the
// auth middleware, so the token has already been validated.
func Logout(svc authsvc.Service, jwtCfg config.JWTConfig, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		token := validators.BearerToken(r)
		claims, err := pkgauth.ParseAccessToken(jwtCfg, token)
		if err != nil {
			responses.WriteError(r.Context(), logg, w,
				pkgerrors.Wrap(pkgerrors.CodeUnauthorized, err, "invalid token"))
			return
		}

		if err := svc.Logout(r.Context(), claims.ID); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		ctx := middleware.WithUserID(r.Context(), claims.UserID.String())
		if logg != nil {
			logg.Info(ctx, "session revoked")
		}
		responses.WriteSuccess(w, map[string]string{"status": "logged_out"})
	}
}
