package compliance_test

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/kiranshivaraju/listingshield/internal/compliance"
	"github.com/kiranshivaraju/listingshield/internal/store"
	"github.com/kiranshivaraju/listingshield/pkg/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// --- mock verdict store ---

type mockVerdictStore struct {
	entries   map[string]*models.CacheEntry
	hits      []uuid.UUID
	created   []*models.CacheEntry
	getErr    error
	createErr error
}

func newVerdictStore() *mockVerdictStore {
	return &mockVerdictStore{entries: map[string]*models.CacheEntry{}}
}

func (m *mockVerdictStore) GetCacheEntryByHash(_ context.Context, hash string, now time.Time) (*models.CacheEntry, error) {
	if m.getErr != nil {
		return nil, m.getErr
	}
	e, ok := m.entries[hash]
	if !ok || !e.ExpiresAt.After(now) {
		return nil, store.ErrNotFound
	}
	return e, nil
}

func (m *mockVerdictStore) CreateCacheEntry(_ context.Context, entry *models.CacheEntry) error {
	if m.createErr != nil {
		return m.createErr
	}
	m.created = append(m.created, entry)
	m.entries[entry.ContentHash] = entry
	return nil
}

func (m *mockVerdictStore) IncrementCacheHit(_ context.Context, id uuid.UUID) error {
	m.hits = append(m.hits, id)
	return nil
}

// --- counting checker ---

type countingChecker struct {
	calls  int
	result models.ComplianceResult
}

func (c *countingChecker) Analyze(_ context.Context, _, _ string) models.ComplianceResult {
	c.calls++
	return c.result
}

func warningResult() models.ComplianceResult {
	return models.ComplianceResult{
		Status:       models.StatusWarning,
		FlaggedTerms: []string{"organic"},
		Suggestions:  []string{`Requires certification: Remove or replace "organic"`},
		Confidence:   0.75,
		RuleMatches:  []models.RuleMatch{{Term: "organic", RiskLevel: models.RiskLevelWarning, Reason: "Requires certification"}},
	}
}

func TestCachedAnalyzer_MissThenHit(t *testing.T) {
	next := &countingChecker{result: warningResult()}
	vs := newVerdictStore()
	c := compliance.NewCachedAnalyzer(next, vs, time.Hour)
	ctx := context.Background()

	first := c.Analyze(ctx, "Organic tea", "Loose leaf")
	require.Len(t, vs.created, 1)
	assert.Equal(t, 1, next.calls)
	assert.Equal(t, 0.75, vs.created[0].Confidence)
	assert.WithinDuration(t, time.Now().Add(time.Hour), vs.created[0].ExpiresAt, time.Minute)

	second := c.Analyze(ctx, "ORGANIC tea", "loose leaf")
	assert.Equal(t, 1, next.calls, "second check is served from cache")
	assert.Equal(t, first, second)
	require.Len(t, vs.hits, 1)
	assert.Equal(t, vs.created[0].ID, vs.hits[0])
}

func TestCachedAnalyzer_ExpiredEntryIsMiss(t *testing.T) {
	next := &countingChecker{result: warningResult()}
	vs := newVerdictStore()
	raw, _ := json.Marshal(warningResult())
	hash := compliance.ContentHash("Organic tea", "")
	vs.entries[hash] = &models.CacheEntry{ID: uuid.New(), ContentHash: hash, Result: raw, ExpiresAt: time.Now().Add(-time.Minute)}

	c := compliance.NewCachedAnalyzer(next, vs, time.Hour)
	c.Analyze(context.Background(), "Organic tea", "")

	assert.Equal(t, 1, next.calls)
	assert.Empty(t, vs.hits)
}

func TestCachedAnalyzer_DegradedResultNotCached(t *testing.T) {
	next := &countingChecker{result: models.ComplianceResult{Status: models.StatusPass, Confidence: 0.5}}
	vs := newVerdictStore()
	c := compliance.NewCachedAnalyzer(next, vs, time.Hour)

	c.Analyze(context.Background(), "Anything", "")
	assert.Empty(t, vs.created)
}

func TestCachedAnalyzer_StoreFailuresFallThrough(t *testing.T) {
	next := &countingChecker{result: warningResult()}
	vs := newVerdictStore()
	vs.getErr = errors.New("db down")
	vs.createErr = errors.New("db down")
	c := compliance.NewCachedAnalyzer(next, vs, time.Hour)

	res := c.Analyze(context.Background(), "Organic tea", "")
	assert.Equal(t, models.StatusWarning, res.Status)
	assert.Equal(t, 1, next.calls)
}

func TestCachedAnalyzer_CorruptEntryIsMiss(t *testing.T) {
	next := &countingChecker{result: warningResult()}
	vs := newVerdictStore()
	hash := compliance.ContentHash("Organic tea", "")
	vs.entries[hash] = &models.CacheEntry{ID: uuid.New(), ContentHash: hash, Result: []byte("{not json"), ExpiresAt: time.Now().Add(time.Hour)}

	c := compliance.NewCachedAnalyzer(next, vs, time.Hour)
	res := c.Analyze(context.Background(), "Organic tea", "")

	assert.Equal(t, models.StatusWarning, res.Status)
	assert.Equal(t, 1, next.calls)
	assert.Empty(t, vs.hits)
}

func TestCachedAnalyzer_WhitespaceVariantsKeepTheirOwnVerdict(t *testing.T) {
	rules := &mockRules{rules: []models.ComplianceRule{
		rule("free shipping", models.RiskLevelHigh, "Misleading offer"),
	}}
	direct := compliance.NewAnalyzer(rules)
	cached := compliance.NewCachedAnalyzer(compliance.NewAnalyzer(rules), newVerdictStore(), time.Hour)
	ctx := context.Background()

	listings := [][2]string{
		{"Mug", "free shipping"},
		{"Mug", "free\tshipping"},
		{"Mug", "free  shipping"},
		{"Mug ", "free shipping"},
		{"Mug", "free\tshipping"},
		{"Mug", "free shipping"},
	}
	for _, l := range listings {
		want := direct.Analyze(ctx, l[0], l[1])
		got := cached.Analyze(ctx, l[0], l[1])
		assert.Equal(t, want, got, "title %q description %q", l[0], l[1])
	}

	assert.Equal(t, models.StatusFail, cached.Analyze(ctx, "Mug", "free shipping").Status)
	assert.Equal(t, models.StatusPass, cached.Analyze(ctx, "Mug", "free\tshipping").Status)
}

func TestCachedAnalyzer_CaseVariantsShareEntry(t *testing.T) {
	rules := &mockRules{rules: []models.ComplianceRule{
		rule("free shipping", models.RiskLevelHigh, "Misleading offer"),
	}}
	vs := newVerdictStore()
	cached := compliance.NewCachedAnalyzer(compliance.NewAnalyzer(rules), vs, time.Hour)
	ctx := context.Background()

	first := cached.Analyze(ctx, "Mug", "FREE Shipping")
	second := cached.Analyze(ctx, "MUG", "free shipping")

	assert.Equal(t, first, second)
	assert.Len(t, vs.created, 1)
	assert.Len(t, vs.hits, 1)
}
