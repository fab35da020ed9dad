package repository

import (
	"context"
	"database/sql"
	"strings"

	"github.com/goccy/go-json"

	"github.com/05Ashutosh/food-recipe/internal/database"
	"github.com/05Ashutosh/food-recipe/internal/model"
)

// RecipeRepo manages the recipes table.
type RecipeRepo struct{ db *sql.DB }

func NewRecipeRepo(db *sql.DB) *RecipeRepo { return &RecipeRepo{db: db} }

// recipeSortColumns whitelists the sortBy values accepted from clients.
var recipeSortColumns = map[string]string{
	"createdAt":  "r.created_at",
	"updatedAt":  "r.updated_at",
	"title":      "r.title",
	"prepTime":   "r.prep_time",
	"cookTime":   "r.cook_time",
	"difficulty": "r.difficulty",
	"category":   "r.category",
	"likesCount": "likes_count",
}

// ValidRecipeSort reports whether sortBy names a sortable recipe field.
func ValidRecipeSort(sortBy string) bool {
	_, ok := recipeSortColumns[sortBy]
	return ok
}

const recipeSelect = `SELECT r.id, r.owner_id, r.media_file, r.title, r.description, r.type,
	r.ingredients, r.steps, r.difficulty, r.prep_time, r.cook_time, r.category, r.created_at, r.updated_at,
	u.username, u.email, u.avatar,
	(SELECT COUNT(*) FROM likes l WHERE l.recipe_id = r.id) AS likes_count
	FROM recipes r JOIN users u ON u.id = r.owner_id`

// Create inserts rec and assigns its id.
func (r *RecipeRepo) Create(ctx context.Context, rec *model.Recipe) error {
	ingredients, err := json.Marshal(nonNil(rec.Ingredients))
	if err != nil {
		return err
	}
	steps, err := json.Marshal(nonNil(rec.Steps))
	if err != nil {
		return err
	}
	const q = `INSERT INTO recipes (owner_id, media_file, title, description, type, ingredients, steps,
		difficulty, prep_time, cook_time, category) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`
	res, err := r.db.ExecContext(ctx, q, rec.OwnerID, rec.MediaFile, rec.Title, rec.Description, rec.Type,
		ingredients, steps, rec.Difficulty, rec.PrepTime, rec.CookTime, rec.Category)
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	rec.ID = uint64(id)
	return nil
}

// GetByID returns a recipe with its owner and like count.
func (r *RecipeRepo) GetByID(ctx context.Context, id uint64) (model.RecipeWithLikes, error) {
	rec, err := scanRecipe(r.db.QueryRowContext(ctx, recipeSelect+` WHERE r.id = ?`, id))
	return rec, notFound(err)
}

// List returns one page of recipes matching q and the total match count.
func (r *RecipeRepo) List(ctx context.Context, q model.RecipeQuery) ([]model.RecipeWithLikes, int64, error) {
	where, args := recipeFilter(q)

	var total int64
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM recipes r`+where, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	order := " ORDER BY r.created_at DESC, r.id DESC"
	if col, ok := recipeSortColumns[q.SortBy]; ok {
		dir := " ASC"
		if q.SortDesc {
			dir = " DESC"
		}
		order = " ORDER BY " + col + dir + ", r.id" + dir
	}
	stmt := recipeSelect + where + order + ` LIMIT ? OFFSET ?`
	rows, err := r.db.QueryContext(ctx, stmt, append(args, q.Limit, q.Offset())...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	out := []model.RecipeWithLikes{}
	for rows.Next() {
		rec, err := scanRecipe(rows)
		if err != nil {
			return nil, 0, err
		}
		out = append(out, rec)
	}
	return out, total, rows.Err()
}

// ListByOwner returns every recipe of ownerID, newest first.
func (r *RecipeRepo) ListByOwner(ctx context.Context, ownerID uint64) ([]model.RecipeWithLikes, error) {
	rows, err := r.db.QueryContext(ctx, recipeSelect+` WHERE r.owner_id = ? ORDER BY r.created_at DESC, r.id DESC`, ownerID)
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

// Delete removes the recipe and its likes in one transaction.
func (r *RecipeRepo) Delete(ctx context.Context, id uint64) error {
	return database.WithTx(ctx, r.db, nil, func(ctx context.Context, tx database.DBTX) error {
		res, err := tx.ExecContext(ctx, `DELETE FROM recipes WHERE id = ?`, id)
		if err != nil {
			return err
		}
		if n, _ := res.RowsAffected(); n == 0 {
			return ErrNotFound
		}
		_, err = tx.ExecContext(ctx, `DELETE FROM likes WHERE recipe_id = ?`, id)
		return err
	})
}

func recipeFilter(q model.RecipeQuery) (string, []any) {
	var (
		conds []string
		args  []any
	)
	if s := strings.TrimSpace(q.Query); s != "" {
		p := containsPattern(s)
		conds = append(conds, "(r.title LIKE ? OR r.description LIKE ?)")
		args = append(args, p, p)
	}
	if q.OwnerID != 0 {
		conds = append(conds, "r.owner_id = ?")
		args = append(args, q.OwnerID)
	}
	if q.Type != "" {
		conds = append(conds, "r.type = ?")
		args = append(args, q.Type)
	}
	if len(conds) == 0 {
		return "", nil
	}
	return " WHERE " + strings.Join(conds, " AND "), args
}

func scanRecipe(row interface{ Scan(...any) error }) (model.RecipeWithLikes, error) {
	var (
		rec                model.RecipeWithLikes
		owner              model.UserSummary
		ingredients, steps []byte
	)
	err := row.Scan(&rec.ID, &rec.OwnerID, &rec.MediaFile, &rec.Title, &rec.Description, &rec.Type,
		&ingredients, &steps, &rec.Difficulty, &rec.PrepTime, &rec.CookTime, &rec.Category, &rec.CreatedAt, &rec.UpdatedAt,
		&owner.Username, &owner.Email, &owner.Avatar, &rec.LikesCount)
	if err != nil {
		return rec, err
	}
	owner.ID = rec.OwnerID
	rec.Owner = &owner
	if err := decodeList(ingredients, &rec.Ingredients); err != nil {
		return rec, err
	}
	return rec, decodeList(steps, &rec.Steps)
}

func decodeList(raw []byte, dst *[]string) error {
	*dst = []string{}
	if len(raw) == 0 {
		return nil
	}
	return json.Unmarshal(raw, dst)
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
