// Package service holds the application logic between the HTTP handlers and
// the repositories. Services speak the apperror taxonomy; repository
// sentinels never leak past this package.
package service

import (
	"context"
	"crypto/subtle"
	"errors"
	"time"

	"github.com/05Ashutosh/food-recipe/internal/apperror"
	"github.com/05Ashutosh/food-recipe/internal/logging"
	"github.com/05Ashutosh/food-recipe/internal/model"
	"github.com/05Ashutosh/food-recipe/internal/repository"
	"github.com/05Ashutosh/food-recipe/internal/utils"
)

// Token errors. They are shared values so callers can match them with
// errors.Is.
var (
	ErrMissingToken = apperror.Validation("Refresh token is required")
	ErrInvalidToken = apperror.Auth("Invalid or expired token")
	ErrUserNotFound = apperror.Auth("Invalid refresh token")
	ErrStaleToken   = apperror.Auth("Refresh token is expired or used")
)

// TokenStore persists the single active refresh token hash per user.
type TokenStore interface {
	SetRefresh(ctx context.Context, userID uint64, tokenHash string) error
	GetRefresh(ctx context.Context, userID uint64) (string, error)
	RotateRefresh(ctx context.Context, userID uint64, oldHash, newHash string) (bool, error)
	ClearRefresh(ctx context.Context, userID uint64) error
}

// TokenConfig holds the signing secrets and lifetimes.
type TokenConfig struct {
	AccessSecret  string
	RefreshSecret string
	AccessTTL     time.Duration
	RefreshTTL    time.Duration
}

// TokenService issues, validates and rotates session tokens.
type TokenService struct {
	store TokenStore
	cfg   TokenConfig
}

func NewTokenService(store TokenStore, cfg TokenConfig) *TokenService {
	return &TokenService{store: store, cfg: cfg}
}

// RefreshTTL is the lifetime of refresh tokens, used for cookie Max-Age.
func (s *TokenService) RefreshTTL() time.Duration { return s.cfg.RefreshTTL }

// AccessTTL is the lifetime of access tokens.
func (s *TokenService) AccessTTL() time.Duration { return s.cfg.AccessTTL }

// Issue signs a new pair for userID and stores the refresh token hash,
// replacing any previous one. Other sessions keep their access tokens
// until they expire but can no longer refresh.
func (s *TokenService) Issue(ctx context.Context, userID uint64) (model.TokenPair, error) {
	pair, hash, err := s.sign(userID)
	if err != nil {
		return model.TokenPair{}, err
	}
	if err := s.store.SetRefresh(ctx, userID, hash); err != nil {
		return model.TokenPair{}, apperror.Internal("Token generation failed", err)
	}
	return pair, nil
}

// ValidateAccess checks an access token and returns its user id.
func (s *TokenService) ValidateAccess(token string) (uint64, error) {
	if token == "" {
		return 0, ErrInvalidToken
	}
	id, err := utils.ParseToken(s.cfg.AccessSecret, token)
	if err != nil {
		return 0, ErrInvalidToken
	}
	return id, nil
}

// Refresh exchanges a refresh token for a new pair. The presented token must
// equal the stored one; afterwards it is no longer accepted.
func (s *TokenService) Refresh(ctx context.Context, raw string) (model.TokenPair, error) {
	if raw == "" {
		return model.TokenPair{}, ErrMissingToken
	}
	userID, err := utils.ParseToken(s.cfg.RefreshSecret, raw)
	if err != nil {
		logging.Ctx(ctx).Debug().Err(err).Msg("refresh token rejected")
		return model.TokenPair{}, ErrInvalidToken
	}

	stored, err := s.store.GetRefresh(ctx, userID)
	if errors.Is(err, repository.ErrNotFound) {
		return model.TokenPair{}, ErrUserNotFound
	}
	if err != nil {
		return model.TokenPair{}, apperror.Internal("Token refresh failed", err)
	}
	presented := utils.HashRefreshRaw(raw)
	if stored == "" || subtle.ConstantTimeCompare([]byte(stored), []byte(presented)) != 1 {
		return model.TokenPair{}, ErrStaleToken
	}

	pair, hash, err := s.sign(userID)
	if err != nil {
		return model.TokenPair{}, err
	}
	ok, err := s.store.RotateRefresh(ctx, userID, presented, hash)
	if err != nil {
		return model.TokenPair{}, apperror.Internal("Token refresh failed", err)
	}
	if !ok {
		// a concurrent refresh or a logout got there first
		return model.TokenPair{}, ErrStaleToken
	}
	return pair, nil
}

// Revoke clears the stored refresh token (logout).
func (s *TokenService) Revoke(ctx context.Context, userID uint64) error {
	if err := s.store.ClearRefresh(ctx, userID); err != nil {
		return apperror.Internal("Logout failed", err)
	}
	return nil
}

func (s *TokenService) sign(userID uint64) (model.TokenPair, string, error) {
	access, err := utils.NewAccessToken(s.cfg.AccessSecret, userID, s.cfg.AccessTTL)
	if err != nil {
		return model.TokenPair{}, "", apperror.Internal("Token generation failed", err)
	}
	refresh, err := utils.NewRefreshToken(s.cfg.RefreshSecret, userID, s.cfg.RefreshTTL)
	if err != nil {
		return model.TokenPair{}, "", apperror.Internal("Token generation failed", err)
	}
	return model.TokenPair{AccessToken: access.Token, RefreshToken: refresh.Token}, utils.HashRefreshRaw(refresh.Token), nil
}
