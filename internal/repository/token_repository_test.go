package repository

import (
	"context"
	"database/sql"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTokenGetRefreshNullIsEmpty(t *testing.T) {
	db, mock := newMock(t)
	repo := NewTokenRepo(db)

	mock.ExpectQuery(`SELECT refresh_token_hash FROM users WHERE id = \?`).
		WithArgs(uint64(1)).
		WillReturnRows(sqlmock.NewRows([]string{"refresh_token_hash"}).AddRow(nil))

	h, err := repo.GetRefresh(context.Background(), 1)
	require.NoError(t, err)
	assert.Empty(t, h)
}

func TestTokenGetRefreshMissingUser(t *testing.T) {
	db, mock := newMock(t)
	repo := NewTokenRepo(db)

	mock.ExpectQuery(`SELECT refresh_token_hash`).WillReturnError(sql.ErrNoRows)

	_, err := repo.GetRefresh(context.Background(), 1)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestTokenRotateRefreshCompareAndSwap(t *testing.T) {
	db, mock := newMock(t)
	repo := NewTokenRepo(db)

	mock.ExpectExec(`UPDATE users SET refresh_token_hash = \? WHERE id = \? AND refresh_token_hash = \?`).
		WithArgs("new", uint64(1), "old").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(`UPDATE users SET refresh_token_hash = \? WHERE id = \? AND refresh_token_hash = \?`).
		WithArgs("newer", uint64(1), "old").
		WillReturnResult(sqlmock.NewResult(0, 0))

	ok, err := repo.RotateRefresh(context.Background(), 1, "old", "new")
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = repo.RotateRefresh(context.Background(), 1, "old", "newer")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestTokenSetRefreshUnknownUser(t *testing.T) {
	db, mock := newMock(t)
	repo := NewTokenRepo(db)

	mock.ExpectExec(`UPDATE users SET refresh_token_hash = \? WHERE id = \?`).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectQuery(`SELECT 1 FROM users WHERE id = \?`).WillReturnError(sql.ErrNoRows)

	err := repo.SetRefresh(context.Background(), 99, "h")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestTokenClearRefresh(t *testing.T) {
	db, mock := newMock(t)
	repo := NewTokenRepo(db)

	mock.ExpectExec(`UPDATE users SET refresh_token_hash = NULL WHERE id = \?`).
		WithArgs(uint64(4)).
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, repo.ClearRefresh(context.Background(), 4))
}
