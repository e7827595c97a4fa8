package handler

import (
	"context"
	"net/http"

	"github.com/kiranshivaraju/listingshield/internal/api/response"
	"github.com/kiranshivaraju/listingshield/internal/cacheadmin"
)

// CacheManager defines the interface the cache admin handlers depend on.
type CacheManager interface {
	CleanupExpiredCache(ctx context.Context)
	GetCacheStats(ctx context.Context) cacheadmin.Stats
	ClearAllCache(ctx context.Context) bool
}

// NewCacheStatsHandler returns an http.HandlerFunc for GET /api/v1/admin/cache/stats.
func NewCacheStatsHandler(m CacheManager) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		response.JSON(w, m.GetCacheStats(r.Context()))
	}
}

// NewCacheCleanupHandler returns an http.HandlerFunc for POST /api/v1/admin/cache/cleanup.
// The sweep outcome is only logged, so the response just acknowledges it ran.
func NewCacheCleanupHandler(m CacheManager) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		m.CleanupExpiredCache(r.Context())
		response.Accepted(w, map[string]string{"status": "cleanup requested"})
	}
}

// NewCacheClearHandler returns an http.HandlerFunc for DELETE /api/v1/admin/cache.
func NewCacheClearHandler(m CacheManager) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if !m.ClearAllCache(r.Context()) {
			response.Error(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to clear cache", nil)
			return
		}
		response.JSON(w, map[string]bool{"cleared": true})
	}
}
