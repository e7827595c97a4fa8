// Package admin implements the profile lookup and admin promotion functions.
// Each operation is a chain of gates evaluated in order; the first failing
// gate ends the request with a tagged error and nothing after it runs.
package admin

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"github.com/google/uuid"
	"github.com/kiranshivaraju/listingshield/internal/apperr"
	"github.com/kiranshivaraju/listingshield/internal/config"
	"github.com/kiranshivaraju/listingshield/internal/platform"
	"github.com/kiranshivaraju/listingshield/internal/store"
	"github.com/kiranshivaraju/listingshield/pkg/models"
)

// User-facing messages for each gate.
const (
	MsgMissingConfig  = "Missing environment variables"
	MsgMissingToken   = "No authorization header"
	MsgInvalidToken   = "Invalid token"
	MsgAuthFailed     = "Could not verify token"
	MsgProfileMissing = "Profile not found"
	MsgNotAdmin       = "Only admins can promote users"
	MsgEmailRequired  = "Email is required"
	MsgUserNotFound   = "User not found"
)

// ProfileStore reads and writes profile rows.
type ProfileStore interface {
	GetProfile(ctx context.Context, id uuid.UUID) (*models.Profile, error)
	UpsertProfileRole(ctx context.Context, id uuid.UUID, role string) error
}

// Service runs the admin functions.
type Service struct {
	cfg        config.PlatformConfig
	identities platform.IdentityResolver
	directory  platform.UserDirectory
	profiles   ProfileStore
}

// NewService creates a new Service.
func NewService(cfg config.PlatformConfig, ids platform.IdentityResolver, dir platform.UserDirectory, profiles ProfileStore) *Service {
	return &Service{cfg: cfg, identities: ids, directory: dir, profiles: profiles}
}

// GetUserProfile returns the caller's own profile.
func (s *Service) GetUserProfile(ctx context.Context, accessToken string) (*models.Profile, error) {
	if !s.cfg.HasClientKeys() {
		return nil, apperr.New(apperr.KindServer, MsgMissingConfig)
	}

	caller, err := s.authenticate(ctx, accessToken)
	if err != nil {
		return nil, err
	}

	profile, err := s.profiles.GetProfile(ctx, caller.ID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, apperr.NotFound(MsgProfileMissing)
		}
		return nil, apperr.Wrap(apperr.KindServer, MsgProfileMissing, err)
	}
	return profile, nil
}

// MakeAdmin promotes the user registered under email to the admin role.
// The caller must already be an admin. The email is only examined once the
// caller is authorized.
func (s *Service) MakeAdmin(ctx context.Context, accessToken, email string) (*models.User, error) {
	if !s.cfg.HasClientKeys() || !s.cfg.HasServiceKeys() {
		return nil, apperr.New(apperr.KindServer, MsgMissingConfig)
	}

	caller, err := s.authenticate(ctx, accessToken)
	if err != nil {
		return nil, err
	}

	callerProfile, err := s.profiles.GetProfile(ctx, caller.ID)
	if err != nil && !errors.Is(err, store.ErrNotFound) {
		return nil, apperr.Wrap(apperr.KindServer, "Failed to load caller profile", err)
	}
	if !callerProfile.IsAdmin() {
		slog.Warn("admin promotion denied", "caller_id", caller.ID)
		return nil, apperr.Forbidden(MsgNotAdmin)
	}

	email = strings.TrimSpace(email)
	if email == "" {
		return nil, apperr.Validation(MsgEmailRequired)
	}

	target, err := s.directory.FindUserByEmail(ctx, email)
	switch {
	case errors.Is(err, platform.ErrUserNotFound):
		return nil, apperr.NotFound(MsgUserNotFound)
	case errors.Is(err, platform.ErrUnreachable):
		return nil, apperr.Wrap(apperr.KindNetwork, "Failed to look up user", err)
	case err != nil:
		return nil, apperr.Wrap(apperr.KindServer, "Failed to look up user", err)
	}

	if err := s.profiles.UpsertProfileRole(ctx, target.ID, models.RoleAdmin); err != nil {
		return nil, apperr.Wrap(apperr.KindServer, "Failed to update profile", err)
	}

	slog.Info("user promoted to admin", "caller_id", caller.ID, "target_id", target.ID)
	return target, nil
}

func (s *Service) authenticate(ctx context.Context, accessToken string) (*models.User, error) {
	if accessToken == "" {
		return nil, apperr.Unauthenticated(MsgMissingToken)
	}
	user, err := s.identities.ResolveUser(ctx, accessToken)
	switch {
	case err == nil:
		return user, nil
	case errors.Is(err, platform.ErrUnauthorized):
		return nil, apperr.Wrap(apperr.KindUnauthenticated, MsgInvalidToken, err)
	case errors.Is(err, platform.ErrUnreachable):
		return nil, apperr.Wrap(apperr.KindNetwork, MsgAuthFailed, err)
	default:
		return nil, apperr.Wrap(apperr.KindServer, MsgAuthFailed, err)
	}
}
