package middleware

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/google/uuid"
	"github.com/kiranshivaraju/listingshield/internal/api/response"
	"github.com/kiranshivaraju/listingshield/internal/platform"
	"github.com/kiranshivaraju/listingshield/internal/store"
	"github.com/kiranshivaraju/listingshield/pkg/models"
)

// ProfileReader loads the role-bearing profile of a user.
type ProfileReader interface {
	GetProfile(ctx context.Context, id uuid.UUID) (*models.Profile, error)
}

// Auth provides authentication and role-checking middleware.
type Auth struct {
	identities platform.IdentityResolver
	profiles   ProfileReader
}

// NewAuth creates a new Auth middleware.
func NewAuth(ids platform.IdentityResolver, profiles ProfileReader) *Auth {
	return &Auth{identities: ids, profiles: profiles}
}

// Authenticate resolves the Bearer token to a platform user and sets the
// user and raw token in the request context.
func (a *Auth) Authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token := BearerToken(r)
		if token == "" {
			response.Error(w, http.StatusUnauthorized,
				"INVALID_TOKEN", "Missing or invalid Authorization header", nil)
			return
		}

		user, err := a.identities.ResolveUser(r.Context(), token)
		if err != nil {
			if errors.Is(err, platform.ErrUnauthorized) {
				response.Error(w, http.StatusUnauthorized,
					"INVALID_TOKEN", "Invalid access token", nil)
				return
			}
			slog.Error("resolve identity failed", "error", err)
			response.Error(w, http.StatusServiceUnavailable,
				"AUTH_UNAVAILABLE", "Failed to validate access token", nil)
			return
		}

		ctx := SetUser(r.Context(), user)
		ctx = SetAccessToken(ctx, token)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// RequireRole returns middleware that checks the authenticated user's
// profile role.
func (a *Auth) RequireRole(role string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			user, ok := GetUser(r)
			if !ok {
				response.Error(w, http.StatusUnauthorized,
					"INVALID_TOKEN", "Missing user", nil)
				return
			}

			profile, err := a.profiles.GetProfile(r.Context(), user.ID)
			if err != nil && !errors.Is(err, store.ErrNotFound) {
				slog.Error("load profile failed", "error", err, "user_id", user.ID)
				response.Error(w, http.StatusInternalServerError,
					"INTERNAL_ERROR", "Failed to load profile", nil)
				return
			}
			if profile == nil || profile.Role != role {
				response.Error(w, http.StatusForbidden,
					"FORBIDDEN", "Insufficient permissions", nil)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// BearerToken extracts the token from an "Authorization: Bearer" header.
func BearerToken(r *http.Request) string {
	auth := r.Header.Get("Authorization")
	if auth == "" {
		return ""
	}
	parts := strings.SplitN(auth, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return ""
	}
	return strings.TrimSpace(parts[1])
}
