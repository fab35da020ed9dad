package repository

import (
	"context"
	"database/sql"
)

// TokenRepo persists the single active refresh token of each user as a
// SHA-256 hash in users.refresh_token_hash.
type TokenRepo struct{ db *sql.DB }

func NewTokenRepo(db *sql.DB) *TokenRepo { return &TokenRepo{db: db} }

// SetRefresh overwrites the stored refresh hash of userID.
func (r *TokenRepo) SetRefresh(ctx context.Context, userID uint64, tokenHash string) error {
	res, err := r.db.ExecContext(ctx, `UPDATE users SET refresh_token_hash = ? WHERE id = ?`, tokenHash, userID)
	if err != nil {
		return err
	}
	return r.requireUser(ctx, res, userID)
}

// GetRefresh returns the stored refresh hash of userID, empty when the user
// is logged out. A missing user yields ErrNotFound.
func (r *TokenRepo) GetRefresh(ctx context.Context, userID uint64) (string, error) {
	var h sql.NullString
	err := r.db.QueryRowContext(ctx, `SELECT refresh_token_hash FROM users WHERE id = ?`, userID).Scan(&h)
	if err != nil {
		return "", notFound(err)
	}
	return h.String, nil
}

// RotateRefresh replaces oldHash with newHash only if oldHash is still the
// stored value. It reports false when another rotation or a logout won.
func (r *TokenRepo) RotateRefresh(ctx context.Context, userID uint64, oldHash, newHash string) (bool, error) {
	res, err := r.db.ExecContext(ctx,
		`UPDATE users SET refresh_token_hash = ? WHERE id = ? AND refresh_token_hash = ?`,
		newHash, userID, oldHash)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n == 1, nil
}

// ClearRefresh removes the stored refresh hash (logout).
func (r *TokenRepo) ClearRefresh(ctx context.Context, userID uint64) error {
	_, err := r.db.ExecContext(ctx, `UPDATE users SET refresh_token_hash = NULL WHERE id = ?`, userID)
	return err
}

func (r *TokenRepo) requireUser(ctx context.Context, res sql.Result, userID uint64) error {
	if n, err := res.RowsAffected(); err == nil && n > 0 {
		return nil
	}
	var one int
	err := r.db.QueryRowContext(ctx, `SELECT 1 FROM users WHERE id = ?`, userID).Scan(&one)
	return notFound(err)
}
