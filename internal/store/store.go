package store

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/kiranshivaraju/listingshield/pkg/models"
)

var ErrNotFound = errors.New("resource not found")

// Store is the data access interface. All database operations go through here.
// Consumers depend on the narrower interfaces they need.
type Store interface {
	Ping(ctx context.Context) error

	ListActiveRules(ctx context.Context) ([]models.ComplianceRule, error)
	ListRules(ctx context.Context) ([]models.ComplianceRule, error)
	UpsertRule(ctx context.Context, rule *models.ComplianceRule) error

	GetCacheEntryByHash(ctx context.Context, hash string, now time.Time) (*models.CacheEntry, error)
	CreateCacheEntry(ctx context.Context, entry *models.CacheEntry) error
	IncrementCacheHit(ctx context.Context, id uuid.UUID) error
	ListCacheStatsRows(ctx context.Context) ([]models.CacheStatsRow, error)
	CleanupExpiredCache(ctx context.Context) error
	ClearCache(ctx context.Context) (int64, error)

	GetPolicyJob(ctx context.Context, id uuid.UUID, userID uuid.UUID) (*models.PolicyAnalysisJob, error)
	ListPolicyJobs(ctx context.Context, userID uuid.UUID, limit int) ([]*models.PolicyAnalysisJob, error)

	GetProfile(ctx context.Context, id uuid.UUID) (*models.Profile, error)
	UpsertProfileRole(ctx context.Context, id uuid.UUID, role string) error
}
