// Package platform is the client for the managed backend that owns user
// identities and hosts remote functions.
package platform

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"github.com/kiranshivaraju/listingshield/internal/config"
	"github.com/kiranshivaraju/listingshield/pkg/models"
)

// Sentinel errors for platform client failures.
var (
	ErrUnauthorized  = errors.New("platform rejected credentials")
	ErrUserNotFound  = errors.New("platform user not found")
	ErrUnreachable   = errors.New("platform unreachable")
	ErrUpstream      = errors.New("platform returned an error")
	ErrNotConfigured = errors.New("platform not configured")
)

const adminUsersPerPage = 1000

// IdentityResolver turns a bearer access token into a platform user.
type IdentityResolver interface {
	ResolveUser(ctx context.Context, accessToken string) (*models.User, error)
}

// UserDirectory looks up users with service-role credentials.
type UserDirectory interface {
	FindUserByEmail(ctx context.Context, email string) (*models.User, error)
}

// FunctionInvoker calls a remote function on behalf of a caller.
type FunctionInvoker interface {
	InvokeFunction(ctx context.Context, name, accessToken string, body, out any) error
}

// HTTPClient implements IdentityResolver, UserDirectory and FunctionInvoker
// over the platform's HTTP API.
type HTTPClient struct {
	baseURL        string
	anonKey        string
	serviceRoleKey string
	client         *http.Client
}

// NewHTTPClient creates a new platform HTTP client.
func NewHTTPClient(cfg config.PlatformConfig) *HTTPClient {
	return &HTTPClient{
		baseURL:        strings.TrimRight(cfg.URL, "/"),
		anonKey:        cfg.AnonKey,
		serviceRoleKey: cfg.ServiceRoleKey,
		client:         &http.Client{Timeout: cfg.Timeout},
	}
}

// ResolveUser returns the user the access token belongs to.
func (c *HTTPClient) ResolveUser(ctx context.Context, accessToken string) (*models.User, error) {
	if c.baseURL == "" || c.anonKey == "" {
		return nil, ErrNotConfigured
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/auth/v1/user", nil)
	if err != nil {
		return nil, fmt.Errorf("building request: %w", err)
	}
	httpReq.Header.Set("apikey", c.anonKey)
	httpReq.Header.Set("Authorization", "Bearer "+accessToken)

	resp, err := c.client.Do(httpReq)
	if err != nil {
		return nil, classifyError(err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		return nil, ErrUnauthorized
	case resp.StatusCode != http.StatusOK:
		return nil, upstreamError(resp)
	}

	var u platformUser
	if err := json.NewDecoder(resp.Body).Decode(&u); err != nil {
		return nil, fmt.Errorf("decoding user response: %w", err)
	}
	return u.toModel()
}

// FindUserByEmail pages through the admin user listing and returns the user
// whose email matches case-insensitively.
func (c *HTTPClient) FindUserByEmail(ctx context.Context, email string) (*models.User, error) {
	if c.baseURL == "" || c.serviceRoleKey == "" {
		return nil, ErrNotConfigured
	}

	for page := 1; ; page++ {
		users, err := c.listUsers(ctx, page)
		if err != nil {
			return nil, err
		}
		for _, u := range users {
			if strings.EqualFold(u.Email, email) {
				return u.toModel()
			}
		}
		if len(users) < adminUsersPerPage {
			return nil, ErrUserNotFound
		}
	}
}

func (c *HTTPClient) listUsers(ctx context.Context, page int) ([]platformUser, error) {
	params := url.Values{
		"page":     {strconv.Itoa(page)},
		"per_page": {strconv.Itoa(adminUsersPerPage)},
	}
	u := fmt.Sprintf("%s/auth/v1/admin/users?%s", c.baseURL, params.Encode())

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, fmt.Errorf("building request: %w", err)
	}
	httpReq.Header.Set("apikey", c.serviceRoleKey)
	httpReq.Header.Set("Authorization", "Bearer "+c.serviceRoleKey)

	resp, err := c.client.Do(httpReq)
	if err != nil {
		return nil, classifyError(err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		return nil, ErrUnauthorized
	case resp.StatusCode != http.StatusOK:
		return nil, upstreamError(resp)
	}

	var listResp struct {
		Users []platformUser `json:"users"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&listResp); err != nil {
		return nil, fmt.Errorf("decoding users response: %w", err)
	}
	return listResp.Users, nil
}

// InvokeFunction POSTs body as JSON to the named remote function, forwarding
// the caller's access token, and decodes a 2xx response into out.
func (c *HTTPClient) InvokeFunction(ctx context.Context, name, accessToken string, body, out any) error {
	if c.baseURL == "" || c.anonKey == "" {
		return ErrNotConfigured
	}

	payload, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("encoding function body: %w", err)
	}

	u := fmt.Sprintf("%s/functions/v1/%s", c.baseURL, url.PathEscape(name))
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, u, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("building request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("apikey", c.anonKey)
	httpReq.Header.Set("Authorization", "Bearer "+accessToken)

	resp, err := c.client.Do(httpReq)
	if err != nil {
		return classifyError(err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return upstreamError(resp)
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decoding function response: %w", err)
	}
	return nil
}

// classifyError maps transport-level errors to sentinel errors.
func classifyError(err error) error {
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return fmt.Errorf("%w: %v", ErrUnreachable, err)
	}

	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return fmt.Errorf("%w: timeout: %v", ErrUnreachable, err)
	}

	return fmt.Errorf("%w: %v", ErrUnreachable, err)
}

// upstreamError reads a bounded snippet of the error body for diagnostics.
func upstreamError(resp *http.Response) error {
	snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
	msg := strings.TrimSpace(string(snippet))
	if msg == "" {
		return fmt.Errorf("%w: status %d", ErrUpstream, resp.StatusCode)
	}
	return fmt.Errorf("%w: status %d: %s", ErrUpstream, resp.StatusCode, msg)
}

// --- platform response types ---

type platformUser struct {
	ID    string `json:"id"`
	Email string `json:"email"`
}

func (u platformUser) toModel() (*models.User, error) {
	id, err := uuid.Parse(u.ID)
	if err != nil {
		return nil, fmt.Errorf("%w: invalid user id %q", ErrUpstream, u.ID)
	}
	return &models.User{ID: id, Email: u.Email}, nil
}

// Compile-time checks that HTTPClient implements the platform interfaces.
var (
	_ IdentityResolver = (*HTTPClient)(nil)
	_ UserDirectory    = (*HTTPClient)(nil)
	_ FunctionInvoker  = (*HTTPClient)(nil)
)
