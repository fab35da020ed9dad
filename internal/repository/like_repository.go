package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/05Ashutosh/food-recipe/internal/database"
	"github.com/05Ashutosh/food-recipe/internal/model"
)

// LikeRepo manages the likes table. A like is unique per (user, target).
type LikeRepo struct{ db *sql.DB }

func NewLikeRepo(db *sql.DB) *LikeRepo { return &LikeRepo{db: db} }

func targetColumn(t model.LikeTarget) (string, error) {
	switch t {
	case model.LikeVideo:
		return "video_id", nil
	case model.LikeRecipe:
		return "recipe_id", nil
	case model.LikeComment:
		return "comment_id", nil
	}
	return "", fmt.Errorf("unknown like target %q", t)
}

// Add likes target for userID. It reports false when the like already existed.
func (r *LikeRepo) Add(ctx context.Context, userID uint64, t model.LikeTarget, targetID uint64) (bool, error) {
	return r.exec(ctx, r.db, `INSERT IGNORE INTO likes (liked_by, %s) VALUES (?, ?)`, userID, t, targetID)
}

// Remove unlikes target for userID. It reports false when there was no like.
func (r *LikeRepo) Remove(ctx context.Context, userID uint64, t model.LikeTarget, targetID uint64) (bool, error) {
	return r.exec(ctx, r.db, `DELETE FROM likes WHERE liked_by = ? AND %s = ?`, userID, t, targetID)
}

// Toggle removes an existing like or creates a missing one and returns the
// resulting state.
func (r *LikeRepo) Toggle(ctx context.Context, userID uint64, t model.LikeTarget, targetID uint64) (bool, error) {
	var liked bool
	err := database.WithTx(ctx, r.db, nil, func(ctx context.Context, tx database.DBTX) error {
		removed, err := r.exec(ctx, tx, `DELETE FROM likes WHERE liked_by = ? AND %s = ?`, userID, t, targetID)
		if err != nil || removed {
			return err
		}
		liked, err = r.exec(ctx, tx, `INSERT IGNORE INTO likes (liked_by, %s) VALUES (?, ?)`, userID, t, targetID)
		return err
	})
	return liked, err
}

func (r *LikeRepo) exec(ctx context.Context, q database.DBTX, stmt string, userID uint64, t model.LikeTarget, targetID uint64) (bool, error) {
	col, err := targetColumn(t)
	if err != nil {
		return false, err
	}
	res, err := q.ExecContext(ctx, fmt.Sprintf(stmt, col), userID, targetID)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	return n == 1, err
}

// LikedVideos lists the videos liked by userID, newest like first.
func (r *LikeRepo) LikedVideos(ctx context.Context, userID uint64) ([]model.LikedVideo, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT l.id, v.id, v.owner_id, v.video_file, v.thumbnail, v.title,
		v.description, v.duration, v.views, v.is_published, v.category, v.difficulty, v.prep_time, v.cook_time,
		v.ingredients, v.steps, v.created_at, v.updated_at, u.username, u.email, u.avatar
		FROM likes l JOIN videos v ON v.id = l.video_id JOIN users u ON u.id = v.owner_id
		WHERE l.liked_by = ? ORDER BY l.created_at DESC, l.id DESC`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []model.LikedVideo{}
	for rows.Next() {
		var likeID uint64
		v, err := scanVideo(prefixScanner{row: rows, prefix: []any{&likeID}})
		if err != nil {
			return nil, err
		}
		out = append(out, model.LikedVideo{ID: likeID, VideoDetails: v})
	}
	return out, rows.Err()
}

// LikedRecipes lists the recipes liked by userID with their owners.
func (r *LikeRepo) LikedRecipes(ctx context.Context, userID uint64) ([]model.RecipeWithLikes, error) {
	rows, err := r.db.QueryContext(ctx, recipeSelect+`
		JOIN likes lk ON lk.recipe_id = r.id
		WHERE lk.liked_by = ? ORDER BY lk.created_at DESC, lk.id DESC`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []model.RecipeWithLikes{}
	for rows.Next() {
		rec, err := scanRecipe(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}

// prefixScanner scans leading columns into prefix before handing the rest
// to the wrapped scan destinations.
type prefixScanner struct {
	row    interface{ Scan(...any) error }
	prefix []any
}

func (p prefixScanner) Scan(dest ...any) error {
	return p.row.Scan(append(append([]any{}, p.prefix...), dest...)...)
}
