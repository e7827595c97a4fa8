package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/kiranshivaraju/listingshield/pkg/models"
)

// PostgresStore implements the Store interface using pgx/v5.
type PostgresStore struct {
	pool *pgxpool.Pool
}

// NewPostgresStore creates a new PostgresStore.
func NewPostgresStore(pool *pgxpool.Pool) *PostgresStore {
	return &PostgresStore{pool: pool}
}

// Ping checks database connectivity.
func (s *PostgresStore) Ping(ctx context.Context) error {
	return s.pool.Ping(ctx)
}

// --- Compliance Rules ---

const ruleColumns = `id, term, risk_level, reason, is_active, created_at, updated_at`

func (s *PostgresStore) ListActiveRules(ctx context.Context) ([]models.ComplianceRule, error) {
	return s.queryRules(ctx,
		`SELECT `+ruleColumns+` FROM compliance_rules WHERE is_active = TRUE ORDER BY created_at, term`)
}

func (s *PostgresStore) ListRules(ctx context.Context) ([]models.ComplianceRule, error) {
	return s.queryRules(ctx,
		`SELECT `+ruleColumns+` FROM compliance_rules ORDER BY created_at, term`)
}

func (s *PostgresStore) queryRules(ctx context.Context, query string) ([]models.ComplianceRule, error) {
	rows, err := s.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list compliance rules: %w", err)
	}
	defer rows.Close()

	rules := []models.ComplianceRule{}
	for rows.Next() {
		var r models.ComplianceRule
		if err := rows.Scan(&r.ID, &r.Term, &r.RiskLevel, &r.Reason, &r.IsActive,
			&r.CreatedAt, &r.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan compliance rule: %w", err)
		}
		rules = append(rules, r)
	}
	return rules, rows.Err()
}

// UpsertRule inserts a rule or updates the existing rule with the same term.
// The stored id and timestamps are written back into rule.
func (s *PostgresStore) UpsertRule(ctx context.Context, rule *models.ComplianceRule) error {
	err := s.pool.QueryRow(ctx,
		`INSERT INTO compliance_rules (term, risk_level, reason, is_active)
		 VALUES ($1, $2, $3, $4)
		 ON CONFLICT (term) DO UPDATE SET
		   risk_level = EXCLUDED.risk_level,
		   reason = EXCLUDED.reason,
		   is_active = EXCLUDED.is_active,
		   updated_at = NOW()
		 RETURNING id, created_at, updated_at`,
		rule.Term, rule.RiskLevel, rule.Reason, rule.IsActive,
	).Scan(&rule.ID, &rule.CreatedAt, &rule.UpdatedAt)
	if err != nil {
		return fmt.Errorf("upsert compliance rule: %w", err)
	}
	return nil
}

// --- Compliance Cache ---

func (s *PostgresStore) GetCacheEntryByHash(ctx context.Context, hash string, now time.Time) (*models.CacheEntry, error) {
	var e models.CacheEntry
	var result []byte
	err := s.pool.QueryRow(ctx,
		`SELECT id, content_hash, result, hit_count, confidence, expires_at, created_at
		 FROM compliance_cache WHERE content_hash = $1 AND expires_at > $2
		 ORDER BY expires_at DESC LIMIT 1`, hash, now,
	).Scan(&e.ID, &e.ContentHash, &result, &e.HitCount, &e.Confidence, &e.ExpiresAt, &e.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get cache entry: %w", err)
	}
	e.Result = result
	return &e, nil
}

func (s *PostgresStore) CreateCacheEntry(ctx context.Context, entry *models.CacheEntry) error {
	_, err := s.pool.Exec(ctx,
		`INSERT INTO compliance_cache (id, content_hash, result, hit_count, confidence, expires_at, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		entry.ID, entry.ContentHash, []byte(entry.Result), entry.HitCount, entry.Confidence,
		entry.ExpiresAt, entry.CreatedAt)
	if err != nil {
		return fmt.Errorf("create cache entry: %w", err)
	}
	return nil
}

// IncrementCacheHit calls the increment_cache_hit stored procedure.
func (s *PostgresStore) IncrementCacheHit(ctx context.Context, id uuid.UUID) error {
	if _, err := s.pool.Exec(ctx, `SELECT increment_cache_hit($1)`, id); err != nil {
		return fmt.Errorf("increment cache hit: %w", err)
	}
	return nil
}

func (s *PostgresStore) ListCacheStatsRows(ctx context.Context) ([]models.CacheStatsRow, error) {
	rows, err := s.pool.Query(ctx, `SELECT hit_count, confidence, expires_at FROM compliance_cache`)
	if err != nil {
		return nil, fmt.Errorf("list cache stats rows: %w", err)
	}
	defer rows.Close()

	out := []models.CacheStatsRow{}
	for rows.Next() {
		var r models.CacheStatsRow
		if err := rows.Scan(&r.HitCount, &r.Confidence, &r.ExpiresAt); err != nil {
			return nil, fmt.Errorf("scan cache stats row: %w", err)
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

// CleanupExpiredCache calls the cleanup_expired_cache stored procedure.
func (s *PostgresStore) CleanupExpiredCache(ctx context.Context) error {
	if _, err := s.pool.Exec(ctx, `SELECT cleanup_expired_cache()`); err != nil {
		return fmt.Errorf("cleanup expired cache: %w", err)
	}
	return nil
}

// ClearCache deletes every cache row with a condition that matches all ids.
func (s *PostgresStore) ClearCache(ctx context.Context) (int64, error) {
	tag, err := s.pool.Exec(ctx, `DELETE FROM compliance_cache WHERE id <> $1`, uuid.Nil)
	if err != nil {
		return 0, fmt.Errorf("clear cache: %w", err)
	}
	return tag.RowsAffected(), nil
}

// --- Policy Analysis Jobs ---

const jobColumns = `id, user_id, status, progress_message, policies_processed, sections_created,
	keywords_extracted, total_policies, error_message, started_at, completed_at, created_at, updated_at`

func scanJob(row pgx.Row) (*models.PolicyAnalysisJob, error) {
	var j models.PolicyAnalysisJob
	err := row.Scan(&j.ID, &j.UserID, &j.Status, &j.ProgressMessage, &j.PoliciesProcessed,
		&j.SectionsCreated, &j.KeywordsExtracted, &j.TotalPolicies, &j.ErrorMessage,
		&j.StartedAt, &j.CompletedAt, &j.CreatedAt, &j.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &j, nil
}

func (s *PostgresStore) GetPolicyJob(ctx context.Context, id uuid.UUID, userID uuid.UUID) (*models.PolicyAnalysisJob, error) {
	j, err := scanJob(s.pool.QueryRow(ctx,
		`SELECT `+jobColumns+` FROM policy_analysis_jobs WHERE id = $1 AND user_id = $2`, id, userID))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get policy job: %w", err)
	}
	return j, nil
}

func (s *PostgresStore) ListPolicyJobs(ctx context.Context, userID uuid.UUID, limit int) ([]*models.PolicyAnalysisJob, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT `+jobColumns+` FROM policy_analysis_jobs WHERE user_id = $1
		 ORDER BY created_at DESC LIMIT $2`, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("list policy jobs: %w", err)
	}
	defer rows.Close()

	jobs := []*models.PolicyAnalysisJob{}
	for rows.Next() {
		j, err := scanJob(rows)
		if err != nil {
			return nil, fmt.Errorf("scan policy job: %w", err)
		}
		jobs = append(jobs, j)
	}
	return jobs, rows.Err()
}

// --- Profiles ---

func (s *PostgresStore) GetProfile(ctx context.Context, id uuid.UUID) (*models.Profile, error) {
	var p models.Profile
	err := s.pool.QueryRow(ctx, `SELECT id, role FROM profiles WHERE id = $1`, id).Scan(&p.ID, &p.Role)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get profile: %w", err)
	}
	return &p, nil
}

func (s *PostgresStore) UpsertProfileRole(ctx context.Context, id uuid.UUID, role string) error {
	_, err := s.pool.Exec(ctx,
		`INSERT INTO profiles (id, role) VALUES ($1, $2)
		 ON CONFLICT (id) DO UPDATE SET role = EXCLUDED.role, updated_at = NOW()`, id, role)
	if err != nil {
		return fmt.Errorf("upsert profile role: %w", err)
	}
	return nil
}

var _ Store = (*PostgresStore)(nil)
