package repository

import (
	"context"
	"database/sql"

	"github.com/05Ashutosh/food-recipe/internal/database"
	"github.com/05Ashutosh/food-recipe/internal/model"
)

// FollowRepo stores the follow graph. One row (follower_id, followee_id)
// is both "follower follows followee" and "followee is followed by
// follower", so the two directions cannot drift apart.
type FollowRepo struct{ db *sql.DB }

func NewFollowRepo(db *sql.DB) *FollowRepo { return &FollowRepo{db: db} }

// Follow adds the edge follower -> followee if absent and returns whether it
// was created together with followee's counts read in the same transaction.
func (r *FollowRepo) Follow(ctx context.Context, followerID, followeeID uint64) (bool, model.FollowCounts, error) {
	return r.mutate(ctx, `INSERT IGNORE INTO follows (follower_id, followee_id) VALUES (?, ?)`, followerID, followeeID)
}

// Unfollow removes the edge follower -> followee if present and returns
// whether a row was deleted together with followee's counts.
func (r *FollowRepo) Unfollow(ctx context.Context, followerID, followeeID uint64) (bool, model.FollowCounts, error) {
	return r.mutate(ctx, `DELETE FROM follows WHERE follower_id = ? AND followee_id = ?`, followerID, followeeID)
}

func (r *FollowRepo) mutate(ctx context.Context, stmt string, followerID, followeeID uint64) (bool, model.FollowCounts, error) {
	var (
		changed bool
		counts  model.FollowCounts
	)
	err := database.WithTx(ctx, r.db, nil, func(ctx context.Context, tx database.DBTX) error {
		res, err := tx.ExecContext(ctx, stmt, followerID, followeeID)
		if err != nil {
			return err
		}
		n, err := res.RowsAffected()
		if err != nil {
			return err
		}
		changed = n == 1
		counts, err = countsOf(ctx, tx, followeeID)
		return err
	})
	if err != nil {
		return false, model.FollowCounts{}, err
	}
	return changed, counts, nil
}

// Counts returns the follower and following totals of userID.
func (r *FollowRepo) Counts(ctx context.Context, userID uint64) (model.FollowCounts, error) {
	return countsOf(ctx, r.db, userID)
}

// IsFollowing reports whether followerID currently follows followeeID.
func (r *FollowRepo) IsFollowing(ctx context.Context, followerID, followeeID uint64) (bool, error) {
	var ok bool
	err := r.db.QueryRowContext(ctx,
		`SELECT EXISTS(SELECT 1 FROM follows WHERE follower_id = ? AND followee_id = ?)`,
		followerID, followeeID).Scan(&ok)
	return ok, err
}

func countsOf(ctx context.Context, q database.DBTX, userID uint64) (model.FollowCounts, error) {
	const stmt = `SELECT
		(SELECT COUNT(*) FROM follows WHERE followee_id = ?),
		(SELECT COUNT(*) FROM follows WHERE follower_id = ?)`
	var c model.FollowCounts
	err := q.QueryRowContext(ctx, stmt, userID, userID).Scan(&c.FollowersCount, &c.FollowingCount)
	return c, err
}
