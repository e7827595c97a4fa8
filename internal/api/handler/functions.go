package handler

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	mw "github.com/kiranshivaraju/listingshield/internal/api/middleware"
	"github.com/kiranshivaraju/listingshield/internal/api/response"
	"github.com/kiranshivaraju/listingshield/internal/apperr"
	"github.com/kiranshivaraju/listingshield/pkg/models"
)

const maxEmailBodyBytes = 4 << 10

// AdminFunctions defines the interface the function handlers depend on.
type AdminFunctions interface {
	GetUserProfile(ctx context.Context, accessToken string) (*models.Profile, error)
	MakeAdmin(ctx context.Context, accessToken, email string) (*models.User, error)
}

// NewGetUserProfileHandler returns an http.HandlerFunc for /functions/v1/get-user-profile.
// Every failure is a 500 with a plain-text message naming the failed gate.
func NewGetUserProfileHandler(fns AdminFunctions) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		profile, err := fns.GetUserProfile(r.Context(), mw.BearerToken(r))
		if err != nil {
			if apperr.KindOf(err) == apperr.KindServer {
				slog.Error("get-user-profile failed", "error", err)
			}
			response.Text(w, http.StatusInternalServerError, apperr.Message(err))
			return
		}
		response.Raw(w, http.StatusOK, profile)
	}
}

// NewMakeAdminHandler returns an http.HandlerFunc for /functions/v1/make-admin.
func NewMakeAdminHandler(fns AdminFunctions) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodOptions:
			w.WriteHeader(http.StatusOK)
			return
		case http.MethodPost:
		default:
			response.Raw(w, http.StatusMethodNotAllowed, map[string]string{"error": "Method not allowed"})
			return
		}

		// A malformed body is reported as a missing email, after the auth gates.
		var req struct {
			Email string `json:"email"`
		}
		_ = json.NewDecoder(http.MaxBytesReader(w, r.Body, maxEmailBodyBytes)).Decode(&req)

		user, err := fns.MakeAdmin(r.Context(), mw.BearerToken(r), req.Email)
		if err != nil {
			status := statusForKind(apperr.KindOf(err))
			if status == http.StatusInternalServerError {
				slog.Error("make-admin failed", "error", err)
			}
			response.Raw(w, status, map[string]string{"error": apperr.Message(err)})
			return
		}

		response.Raw(w, http.StatusOK, map[string]string{
			"message": "User " + user.Email + " is now an admin",
		})
	}
}

func statusForKind(k apperr.Kind) int {
	switch k {
	case apperr.KindValidation:
		return http.StatusBadRequest
	case apperr.KindUnauthenticated:
		return http.StatusUnauthorized
	case apperr.KindAuthorization:
		return http.StatusForbidden
	case apperr.KindNotFound:
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}
