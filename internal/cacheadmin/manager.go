// Package cacheadmin provides maintenance operations over the verdict cache table.
package cacheadmin

import (
	"context"
	"log/slog"
	"math"
	"time"

	"github.com/kiranshivaraju/listingshield/pkg/models"
)

// Store is the subset of the data store the manager needs.
type Store interface {
	ListCacheStatsRows(ctx context.Context) ([]models.CacheStatsRow, error)
	CleanupExpiredCache(ctx context.Context) error
	ClearCache(ctx context.Context) (int64, error)
}

// Stats summarizes the verdict cache.
type Stats struct {
	TotalEntries   int     `json:"totalEntries"`
	ExpiredEntries int     `json:"expiredEntries"`
	HitCount       int     `json:"hitCount"`
	AvgConfidence  float64 `json:"avgConfidence"`
}

// Manager runs cleanup, statistics and clear-all against the cache table.
// Failures are logged and mapped to safe defaults.
type Manager struct {
	store Store
	now   func() time.Time
}

// NewManager creates a new Manager.
func NewManager(st Store) *Manager {
	return &Manager{store: st, now: time.Now}
}

// CleanupExpiredCache invokes the cleanup_expired_cache stored procedure.
func (m *Manager) CleanupExpiredCache(ctx context.Context) {
	if err := m.store.CleanupExpiredCache(ctx); err != nil {
		slog.Error("cleanup expired cache failed", "error", err)
		return
	}
	slog.Info("expired cache entries cleaned up")
}

// GetCacheStats aggregates every cache row. The average confidence covers
// expired rows too and is rounded to two decimals.
func (m *Manager) GetCacheStats(ctx context.Context) Stats {
	rows, err := m.store.ListCacheStatsRows(ctx)
	if err != nil {
		slog.Error("fetch cache stats failed", "error", err)
		return Stats{}
	}
	return Aggregate(rows, m.now())
}

// ClearAllCache deletes every cache row and reports whether the delete succeeded.
func (m *Manager) ClearAllCache(ctx context.Context) bool {
	n, err := m.store.ClearCache(ctx)
	if err != nil {
		slog.Error("clear cache failed", "error", err)
		return false
	}
	slog.Info("cache cleared", "deleted", n)
	return true
}

// Aggregate computes Stats over rows as of now.
func Aggregate(rows []models.CacheStatsRow, now time.Time) Stats {
	if len(rows) == 0 {
		return Stats{}
	}

	var stats Stats
	var confidenceSum float64
	for _, r := range rows {
		stats.TotalEntries++
		stats.HitCount += r.HitCount
		confidenceSum += r.Confidence
		if r.ExpiresAt.Before(now) {
			stats.ExpiredEntries++
		}
	}
	stats.AvgConfidence = math.Round(confidenceSum/float64(len(rows))*100) / 100
	return stats
}
