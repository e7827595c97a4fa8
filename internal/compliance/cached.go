package compliance

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/kiranshivaraju/listingshield/internal/store"
	"github.com/kiranshivaraju/listingshield/pkg/models"
)

// VerdictStore persists verdicts in the compliance_cache table.
type VerdictStore interface {
	GetCacheEntryByHash(ctx context.Context, hash string, now time.Time) (*models.CacheEntry, error)
	CreateCacheEntry(ctx context.Context, entry *models.CacheEntry) error
	IncrementCacheHit(ctx context.Context, id uuid.UUID) error
}

// CachedAnalyzer serves repeat checks of identical listings from the verdict
// cache. Cache failures are logged and fall through to the wrapped Checker.
type CachedAnalyzer struct {
	next  Checker
	store VerdictStore
	ttl   time.Duration
	now   func() time.Time
}

// NewCachedAnalyzer wraps next with a verdict cache whose entries live for ttl.
func NewCachedAnalyzer(next Checker, st VerdictStore, ttl time.Duration) *CachedAnalyzer {
	return &CachedAnalyzer{
		next:  next,
		store: st,
		ttl:   ttl,
		now:   func() time.Time { return time.Now().UTC() },
	}
}

func (c *CachedAnalyzer) Analyze(ctx context.Context, title, description string) models.ComplianceResult {
	hash := ContentHash(title, description)
	now := c.now()

	if result, ok := c.lookup(ctx, hash, now); ok {
		checksTotal.WithLabelValues(result.Status, sourceCache).Inc()
		return result
	}

	result := c.next.Analyze(ctx, title, description)

	// Degraded verdicts are never cached.
	if result.Confidence <= confidenceDegraded {
		return result
	}
	if err := c.store.CreateCacheEntry(ctx, c.newEntry(hash, result, now)); err != nil {
		slog.Warn("verdict cache write failed", "error", err)
	}
	return result
}

func (c *CachedAnalyzer) lookup(ctx context.Context, hash string, now time.Time) (models.ComplianceResult, bool) {
	var result models.ComplianceResult

	entry, err := c.store.GetCacheEntryByHash(ctx, hash, now)
	if err != nil {
		if !errors.Is(err, store.ErrNotFound) {
			slog.Warn("verdict cache lookup failed", "error", err)
		}
		return result, false
	}

	if err := json.Unmarshal(entry.Result, &result); err != nil {
		slog.Warn("verdict cache entry unreadable", "entry_id", entry.ID, "error", err)
		return result, false
	}

	if err := c.store.IncrementCacheHit(ctx, entry.ID); err != nil {
		slog.Warn("increment cache hit failed", "entry_id", entry.ID, "error", err)
	}
	return result, true
}

func (c *CachedAnalyzer) newEntry(hash string, result models.ComplianceResult, now time.Time) *models.CacheEntry {
	raw, _ := json.Marshal(result)
	return &models.CacheEntry{
		ID:          uuid.New(),
		ContentHash: hash,
		Result:      raw,
		Confidence:  result.Confidence,
		ExpiresAt:   now.Add(c.ttl),
		CreatedAt:   now,
	}
}
