package platform

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"
	"time"

	"github.com/kiranshivaraju/listingshield/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testUserID = "6f1c5a0e-8a51-4d5b-9a9e-2b1c3d4e5f60"

// --- helpers ---

func platformServer(t *testing.T, handler http.HandlerFunc) *httptest.Server {
	t.Helper()
	ts := httptest.NewServer(handler)
	t.Cleanup(ts.Close)
	return ts
}

func newTestClient(t *testing.T, baseURL string) *HTTPClient {
	t.Helper()
	return NewHTTPClient(config.PlatformConfig{
		URL:            baseURL,
		AnonKey:        "anon-key",
		ServiceRoleKey: "service-key",
		Timeout:        5 * time.Second,
	})
}

// --- ResolveUser tests ---

func TestResolveUser_ValidToken(t *testing.T) {
	ts := platformServer(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/auth/v1/user", r.URL.Path)
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, "anon-key", r.Header.Get("apikey"))
		assert.Equal(t, "Bearer user-token", r.Header.Get("Authorization"))
		json.NewEncoder(w).Encode(map[string]string{"id": testUserID, "email": "seller@example.com"})
	})

	u, err := newTestClient(t, ts.URL).ResolveUser(context.Background(), "user-token")
	require.NoError(t, err)
	assert.Equal(t, testUserID, u.ID.String())
	assert.Equal(t, "seller@example.com", u.Email)
}

func TestResolveUser_RejectedToken(t *testing.T) {
	ts := platformServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	})

	_, err := newTestClient(t, ts.URL).ResolveUser(context.Background(), "bad")
	assert.ErrorIs(t, err, ErrUnauthorized)
}

func TestResolveUser_ServerError(t *testing.T) {
	ts := platformServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		w.Write([]byte("boom"))
	})

	_, err := newTestClient(t, ts.URL).ResolveUser(context.Background(), "tok")
	assert.ErrorIs(t, err, ErrUpstream)
	assert.Contains(t, err.Error(), "status 500")
}

func TestResolveUser_NotConfigured(t *testing.T) {
	c := NewHTTPClient(config.PlatformConfig{})
	_, err := c.ResolveUser(context.Background(), "tok")
	assert.ErrorIs(t, err, ErrNotConfigured)
}

func TestResolveUser_Unreachable(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))
	url := ts.URL
	ts.Close()

	_, err := newTestClient(t, url).ResolveUser(context.Background(), "tok")
	assert.ErrorIs(t, err, ErrUnreachable)
}

// --- FindUserByEmail tests ---

func TestFindUserByEmail_CaseInsensitiveMatch(t *testing.T) {
	ts := platformServer(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/auth/v1/admin/users", r.URL.Path)
		assert.Equal(t, "Bearer service-key", r.Header.Get("Authorization"))
		json.NewEncoder(w).Encode(map[string]any{
			"users": []map[string]string{
				{"id": "00000000-0000-0000-0000-000000000001", "email": "other@example.com"},
				{"id": testUserID, "email": "Target@Example.com"},
			},
		})
	})

	u, err := newTestClient(t, ts.URL).FindUserByEmail(context.Background(), "target@example.com")
	require.NoError(t, err)
	assert.Equal(t, testUserID, u.ID.String())
}

func TestFindUserByEmail_PagesUntilShortPage(t *testing.T) {
	var pages []int
	ts := platformServer(t, func(w http.ResponseWriter, r *http.Request) {
		page, _ := strconv.Atoi(r.URL.Query().Get("page"))
		pages = append(pages, page)

		users := []map[string]string{}
		if page == 1 {
			for i := 0; i < adminUsersPerPage; i++ {
				users = append(users, map[string]string{
					"id":    fmt.Sprintf("00000000-0000-0000-0000-%012d", i),
					"email": fmt.Sprintf("user%d@example.com", i),
				})
			}
		}
		if page == 2 {
			users = append(users, map[string]string{"id": testUserID, "email": "late@example.com"})
		}
		json.NewEncoder(w).Encode(map[string]any{"users": users})
	})

	u, err := newTestClient(t, ts.URL).FindUserByEmail(context.Background(), "late@example.com")
	require.NoError(t, err)
	assert.Equal(t, testUserID, u.ID.String())
	assert.Equal(t, []int{1, 2}, pages)
}

func TestFindUserByEmail_NotFound(t *testing.T) {
	ts := platformServer(t, func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]any{"users": []any{}})
	})

	_, err := newTestClient(t, ts.URL).FindUserByEmail(context.Background(), "nobody@example.com")
	assert.ErrorIs(t, err, ErrUserNotFound)
}

func TestFindUserByEmail_MissingServiceKey(t *testing.T) {
	c := NewHTTPClient(config.PlatformConfig{URL: "http://localhost", AnonKey: "anon"})
	_, err := c.FindUserByEmail(context.Background(), "a@b.c")
	assert.ErrorIs(t, err, ErrNotConfigured)
}

// --- InvokeFunction tests ---

func TestInvokeFunction_ForwardsTokenAndDecodes(t *testing.T) {
	ts := platformServer(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/functions/v1/start-policy-analysis", r.URL.Path)
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "Bearer caller-token", r.Header.Get("Authorization"))
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))

		var body map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Empty(t, body)

		json.NewEncoder(w).Encode(map[string]any{"success": true, "jobId": "job-1"})
	})

	var out struct {
		Success bool   `json:"success"`
		JobID   string `json:"jobId"`
	}
	err := newTestClient(t, ts.URL).InvokeFunction(context.Background(), "start-policy-analysis", "caller-token", struct{}{}, &out)
	require.NoError(t, err)
	assert.True(t, out.Success)
	assert.Equal(t, "job-1", out.JobID)
}

func TestInvokeFunction_Non2xx(t *testing.T) {
	ts := platformServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusConflict)
		w.Write([]byte(`{"error":"already running"}`))
	})

	err := newTestClient(t, ts.URL).InvokeFunction(context.Background(), "start-policy-analysis", "tok", struct{}{}, nil)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrUpstream))
	assert.Contains(t, err.Error(), "already running")
}

func TestInvokeFunction_Timeout(t *testing.T) {
	ts := platformServer(t, func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(200 * time.Millisecond)
	})

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	err := newTestClient(t, ts.URL).InvokeFunction(ctx, "start-policy-analysis", "tok", struct{}{}, nil)
	assert.ErrorIs(t, err, ErrUnreachable)
}
