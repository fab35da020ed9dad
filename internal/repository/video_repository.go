package repository

import (
	"context"
	"database/sql"
	"strings"

	"github.com/goccy/go-json"

	"github.com/05Ashutosh/food-recipe/internal/model"
)

// VideoRepo manages the videos table.
type VideoRepo struct{ db *sql.DB }

func NewVideoRepo(db *sql.DB) *VideoRepo { return &VideoRepo{db: db} }

var videoSortColumns = map[string]string{
	"createdAt": "v.created_at",
	"updatedAt": "v.updated_at",
	"title":     "v.title",
	"views":     "v.views",
	"duration":  "v.duration",
	"prepTime":  "v.prep_time",
	"cookTime":  "v.cook_time",
}

const videoSelect = `SELECT v.id, v.owner_id, v.video_file, v.thumbnail, v.title, v.description, v.duration,
	v.views, v.is_published, v.category, v.difficulty, v.prep_time, v.cook_time, v.ingredients, v.steps,
	v.created_at, v.updated_at, u.username, u.email, u.avatar
	FROM videos v JOIN users u ON u.id = v.owner_id`

// Create inserts v and assigns its id.
func (r *VideoRepo) Create(ctx context.Context, v *model.Video) error {
	ingredients, err := json.Marshal(nonNil(v.Ingredients))
	if err != nil {
		return err
	}
	steps, err := json.Marshal(nonNil(v.Steps))
	if err != nil {
		return err
	}
	const q = `INSERT INTO videos (owner_id, video_file, thumbnail, title, description, duration, is_published,
		category, difficulty, prep_time, cook_time, ingredients, steps) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`
	res, err := r.db.ExecContext(ctx, q, v.OwnerID, v.VideoFile, v.Thumbnail, v.Title, v.Description, v.Duration,
		v.IsPublished, v.Category, v.Difficulty, v.PrepTime, v.CookTime, ingredients, steps)
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	v.ID = uint64(id)
	return nil
}

// GetByID returns a video with its owner.
func (r *VideoRepo) GetByID(ctx context.Context, id uint64) (model.Video, error) {
	v, err := scanVideo(r.db.QueryRowContext(ctx, videoSelect+` WHERE v.id = ?`, id))
	return v, notFound(err)
}

// List returns one page of videos matching q and the total match count.
func (r *VideoRepo) List(ctx context.Context, q model.VideoQuery) ([]model.Video, int64, error) {
	var (
		conds []string
		args  []any
	)
	if s := strings.TrimSpace(q.Query); s != "" {
		p := containsPattern(s)
		conds = append(conds, "(v.title LIKE ? OR v.description LIKE ?)")
		args = append(args, p, p)
	}
	if q.OwnerID != 0 {
		conds = append(conds, "v.owner_id = ?")
		args = append(args, q.OwnerID)
	}
	where := ""
	if len(conds) > 0 {
		where = " WHERE " + strings.Join(conds, " AND ")
	}

	var total int64
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM videos v`+where, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	order := " ORDER BY v.created_at DESC, v.id DESC"
	if col, ok := videoSortColumns[q.SortBy]; ok {
		dir := " ASC"
		if q.SortDesc {
			dir = " DESC"
		}
		order = " ORDER BY " + col + dir + ", v.id" + dir
	}
	offset := 0
	if q.Page > 1 {
		offset = (q.Page - 1) * q.Limit
	}
	rows, err := r.db.QueryContext(ctx, videoSelect+where+order+` LIMIT ? OFFSET ?`, append(args, q.Limit, offset)...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	out := []model.Video{}
	for rows.Next() {
		v, err := scanVideo(rows)
		if err != nil {
			return nil, 0, err
		}
		out = append(out, v)
	}
	return out, total, rows.Err()
}

// Delete removes a video and its likes.
func (r *VideoRepo) Delete(ctx context.Context, id uint64) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM videos WHERE id = ?`, id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	_, err = r.db.ExecContext(ctx, `DELETE FROM likes WHERE video_id = ?`, id)
	return err
}

func scanVideo(row interface{ Scan(...any) error }) (model.Video, error) {
	var (
		v                  model.Video
		owner              model.UserSummary
		ingredients, steps []byte
	)
	err := row.Scan(&v.ID, &v.OwnerID, &v.VideoFile, &v.Thumbnail, &v.Title, &v.Description, &v.Duration,
		&v.Views, &v.IsPublished, &v.Category, &v.Difficulty, &v.PrepTime, &v.CookTime, &ingredients, &steps,
		&v.CreatedAt, &v.UpdatedAt, &owner.Username, &owner.Email, &owner.Avatar)
	if err != nil {
		return v, err
	}
	owner.ID = v.OwnerID
	v.Owner = &owner
	if err := decodeList(ingredients, &v.Ingredients); err != nil {
		return v, err
	}
	return v, decodeList(steps, &v.Steps)
}
