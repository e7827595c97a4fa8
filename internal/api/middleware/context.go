package middleware

import (
	"context"
	"net/http"

	"github.com/kiranshivaraju/listingshield/pkg/models"
)

type contextKey string

const (
	userKey        contextKey = "user"
	accessTokenKey contextKey = "access_token"
)

func SetUser(ctx context.Context, u *models.User) context.Context {
	return context.WithValue(ctx, userKey, u)
}

func GetUser(r *http.Request) (*models.User, bool) {
	u, ok := r.Context().Value(userKey).(*models.User)
	return u, ok && u != nil
}

// SetAccessToken stores the caller's raw bearer token so handlers can
// forward it to the platform.
func SetAccessToken(ctx context.Context, token string) context.Context {
	return context.WithValue(ctx, accessTokenKey, token)
}

func GetAccessToken(r *http.Request) string {
	token, _ := r.Context().Value(accessTokenKey).(string)
	return token
}
