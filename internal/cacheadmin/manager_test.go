package cacheadmin_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/kiranshivaraju/listingshield/internal/cacheadmin"
	"github.com/kiranshivaraju/listingshield/pkg/models"
	"github.com/stretchr/testify/assert"
)

type mockStore struct {
	rows       []models.CacheStatsRow
	listErr    error
	cleanupErr error
	clearErr   error
	cleanups   int
	clears     int
}

func (m *mockStore) ListCacheStatsRows(_ context.Context) ([]models.CacheStatsRow, error) {
	return m.rows, m.listErr
}

func (m *mockStore) CleanupExpiredCache(_ context.Context) error {
	m.cleanups++
	return m.cleanupErr
}

func (m *mockStore) ClearCache(_ context.Context) (int64, error) {
	m.clears++
	if m.clearErr != nil {
		return 0, m.clearErr
	}
	return int64(len(m.rows)), nil
}

func TestGetCacheStats_Empty(t *testing.T) {
	m := cacheadmin.NewManager(&mockStore{})

	stats := m.GetCacheStats(context.Background())
	assert.Equal(t, cacheadmin.Stats{}, stats)
}

func TestGetCacheStats_MixedExpiry(t *testing.T) {
	now := time.Now()
	m := cacheadmin.NewManager(&mockStore{rows: []models.CacheStatsRow{
		{HitCount: 2, Confidence: 0.8, ExpiresAt: now.Add(-time.Hour)},
		{HitCount: 5, Confidence: 0.6, ExpiresAt: now.Add(time.Hour)},
	}})

	stats := m.GetCacheStats(context.Background())
	assert.Equal(t, 2, stats.TotalEntries)
	assert.Equal(t, 1, stats.ExpiredEntries)
	assert.Equal(t, 7, stats.HitCount)
	assert.Equal(t, 0.70, stats.AvgConfidence)
}

func TestGetCacheStats_FetchErrorReturnsZeros(t *testing.T) {
	m := cacheadmin.NewManager(&mockStore{listErr: errors.New("timeout")})

	assert.Equal(t, cacheadmin.Stats{}, m.GetCacheStats(context.Background()))
}

func TestAggregate_RoundsToTwoDecimals(t *testing.T) {
	now := time.Now()
	stats := cacheadmin.Aggregate([]models.CacheStatsRow{
		{Confidence: 0.95, ExpiresAt: now.Add(time.Hour)},
		{Confidence: 0.75, ExpiresAt: now.Add(time.Hour)},
		{Confidence: 0.85, ExpiresAt: now.Add(time.Hour)},
	}, now)
	assert.Equal(t, 0.85, stats.AvgConfidence)
	assert.Equal(t, 0, stats.ExpiredEntries)
}

func TestCleanupExpiredCache_ErrorsSwallowed(t *testing.T) {
	st := &mockStore{cleanupErr: errors.New("function does not exist")}
	m := cacheadmin.NewManager(st)

	m.CleanupExpiredCache(context.Background())
	assert.Equal(t, 1, st.cleanups)
}

func TestClearAllCache(t *testing.T) {
	st := &mockStore{}
	m := cacheadmin.NewManager(st)
	assert.True(t, m.ClearAllCache(context.Background()))

	st.clearErr = errors.New("permission denied")
	assert.False(t, m.ClearAllCache(context.Background()))
	assert.Equal(t, 2, st.clears)
}
