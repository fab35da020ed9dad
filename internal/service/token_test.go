package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/05Ashutosh/food-recipe/internal/utils"
)

func newTokenService(store TokenStore) *TokenService {
	return NewTokenService(store, TokenConfig{
		AccessSecret:  "access",
		RefreshSecret: "refresh",
		AccessTTL:     time.Hour,
		RefreshTTL:    7 * 24 * time.Hour,
	})
}

func TestIssueStoresRefreshHash(t *testing.T) {
	store := newFakeTokens(7)
	svc := newTokenService(store)

	pair, err := svc.Issue(context.Background(), 7)
	require.NoError(t, err)

	assert.Equal(t, utils.HashRefreshRaw(pair.RefreshToken), store.hashes[7])
	id, err := svc.ValidateAccess(pair.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, uint64(7), id)
}

func TestValidateAccessRejectsRefreshToken(t *testing.T) {
	svc := newTokenService(newFakeTokens(1))
	pair, err := svc.Issue(context.Background(), 1)
	require.NoError(t, err)

	_, err = svc.ValidateAccess(pair.RefreshToken)
	assert.ErrorIs(t, err, ErrInvalidToken)
	_, err = svc.ValidateAccess("")
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestRefreshRotatesAndRejectsOldToken(t *testing.T) {
	ctx := context.Background()
	svc := newTokenService(newFakeTokens(3))
	first, err := svc.Issue(ctx, 3)
	require.NoError(t, err)

	second, err := svc.Refresh(ctx, first.RefreshToken)
	require.NoError(t, err)
	assert.NotEqual(t, first.RefreshToken, second.RefreshToken)

	_, err = svc.Refresh(ctx, first.RefreshToken)
	assert.ErrorIs(t, err, ErrStaleToken)

	_, err = svc.Refresh(ctx, second.RefreshToken)
	assert.NoError(t, err)
}

func TestRefreshErrors(t *testing.T) {
	ctx := context.Background()
	store := newFakeTokens(1)
	svc := newTokenService(store)

	_, err := svc.Refresh(ctx, "")
	assert.ErrorIs(t, err, ErrMissingToken)

	_, err = svc.Refresh(ctx, "not-a-jwt")
	assert.ErrorIs(t, err, ErrInvalidToken)

	orphan, err := utils.NewRefreshToken("refresh", 99, time.Hour)
	require.NoError(t, err)
	_, err = svc.Refresh(ctx, orphan.Token)
	assert.ErrorIs(t, err, ErrUserNotFound)

	expired, err := utils.NewRefreshToken("refresh", 1, -time.Minute)
	require.NoError(t, err)
	_, err = svc.Refresh(ctx, expired.Token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestRevokeMakesRefreshStale(t *testing.T) {
	ctx := context.Background()
	svc := newTokenService(newFakeTokens(5))
	pair, err := svc.Issue(ctx, 5)
	require.NoError(t, err)

	require.NoError(t, svc.Revoke(ctx, 5))

	_, err = svc.Refresh(ctx, pair.RefreshToken)
	assert.ErrorIs(t, err, ErrStaleToken)
}

func TestReissueInvalidatesPreviousSession(t *testing.T) {
	ctx := context.Background()
	svc := newTokenService(newFakeTokens(2))
	old, err := svc.Issue(ctx, 2)
	require.NoError(t, err)
	_, err = svc.Issue(ctx, 2)
	require.NoError(t, err)

	_, err = svc.Refresh(ctx, old.RefreshToken)
	assert.ErrorIs(t, err, ErrStaleToken)
}
