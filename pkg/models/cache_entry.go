package models

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// CacheEntry is a stored prior verdict keyed by a hash of the listing content.
// hit_count is incremented by the increment_cache_hit stored procedure; rows are
// removed by cleanup_expired_cache or a full clear. There is no size bound.
type CacheEntry struct {
	ID          uuid.UUID       `db:"id"           json:"id"`
	ContentHash string          `db:"content_hash" json:"content_hash"`
	Result      json.RawMessage `db:"result"       json:"result"`
	HitCount    int             `db:"hit_count"    json:"hit_count"`
	Confidence  float64         `db:"confidence"   json:"confidence"`
	ExpiresAt   time.Time       `db:"expires_at"   json:"expires_at"`
	CreatedAt   time.Time       `db:"created_at"   json:"created_at"`
}

// CacheStatsRow is the subset of a cache row used for statistics aggregation.
type CacheStatsRow struct {
	HitCount   int       `db:"hit_count"`
	Confidence float64   `db:"confidence"`
	ExpiresAt  time.Time `db:"expires_at"`
}
