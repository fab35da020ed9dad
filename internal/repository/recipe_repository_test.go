package repository

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/05Ashutosh/food-recipe/internal/model"
)

var recipeCols = []string{"id", "owner_id", "media_file", "title", "description", "type", "ingredients", "steps",
	"difficulty", "prep_time", "cook_time", "category", "created_at", "updated_at",
	"username", "email", "avatar", "likes_count"}

func TestRecipeCreateEncodesLists(t *testing.T) {
	db, mock := newMock(t)
	repo := NewRecipeRepo(db)

	mock.ExpectExec(`INSERT INTO recipes`).
		WithArgs(uint64(1), "http://m/r.jpg", "Soup", "Hot", "image",
			[]byte(`["water","salt"]`), []byte(`[]`), "easy", 5, 10, "SOUPS & SALADS").
		WillReturnResult(sqlmock.NewResult(4, 1))

	rec := &model.Recipe{OwnerID: 1, MediaFile: "http://m/r.jpg", Title: "Soup", Description: "Hot", Type: "image",
		Ingredients: []string{"water", "salt"}, Difficulty: "easy", PrepTime: 5, CookTime: 10, Category: "SOUPS & SALADS"}
	require.NoError(t, repo.Create(context.Background(), rec))
	assert.Equal(t, uint64(4), rec.ID)
}

func TestRecipeListFiltersSortsAndPages(t *testing.T) {
	db, mock := newMock(t)
	repo := NewRecipeRepo(db)
	now := time.Now()

	mock.ExpectQuery(`SELECT COUNT\(\*\) FROM recipes r WHERE \(r.title LIKE \? OR r.description LIKE \?\)`).
		WithArgs(`%50\%%`, `%50\%%`).
		WillReturnRows(sqlmock.NewRows([]string{"n"}).AddRow(12))
	mock.ExpectQuery(`ORDER BY r.prep_time DESC, r.id DESC LIMIT \? OFFSET \?`).
		WithArgs(`%50\%%`, `%50\%%`, 5, 5).
		WillReturnRows(sqlmock.NewRows(recipeCols).
			AddRow(3, 1, "m", "50% cake", "d", "image", `["flour"]`, `["bake"]`, "easy", 20, 30, "DESSERTS", now, now,
				"chef", "c@x", "a", 2))

	list, total, err := repo.List(context.Background(), model.RecipeQuery{
		Query: "50%", Page: 2, Limit: 5, SortBy: "prepTime", SortDesc: true,
	})
	require.NoError(t, err)
	assert.Equal(t, int64(12), total)
	require.Len(t, list, 1)
	assert.Equal(t, []string{"flour"}, list[0].Ingredients)
	assert.Equal(t, int64(2), list[0].LikesCount)
	assert.Equal(t, "chef", list[0].Owner.Username)
}

func TestRecipeListIgnoresUnknownSort(t *testing.T) {
	db, mock := newMock(t)
	repo := NewRecipeRepo(db)

	mock.ExpectQuery(`SELECT COUNT\(\*\) FROM recipes r$`).
		WillReturnRows(sqlmock.NewRows([]string{"n"}).AddRow(0))
	mock.ExpectQuery(`ORDER BY r.created_at DESC, r.id DESC LIMIT`).
		WithArgs(10, 0).
		WillReturnRows(sqlmock.NewRows(recipeCols))

	list, _, err := repo.List(context.Background(), model.RecipeQuery{Limit: 10, SortBy: "password_hash"})
	require.NoError(t, err)
	assert.Empty(t, list)
	assert.False(t, ValidRecipeSort("password_hash"))
}

func TestRecipeDeleteRemovesLikesInTx(t *testing.T) {
	db, mock := newMock(t)
	repo := NewRecipeRepo(db)

	mock.ExpectBegin()
	mock.ExpectExec(`DELETE FROM recipes WHERE id = \?`).WithArgs(uint64(3)).WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(`DELETE FROM likes WHERE recipe_id = \?`).WithArgs(uint64(3)).WillReturnResult(sqlmock.NewResult(0, 4))
	mock.ExpectCommit()

	require.NoError(t, repo.Delete(context.Background(), 3))
}

func TestRecipeDeleteMissingRollsBack(t *testing.T) {
	db, mock := newMock(t)
	repo := NewRecipeRepo(db)

	mock.ExpectBegin()
	mock.ExpectExec(`DELETE FROM recipes WHERE id = \?`).WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectRollback()

	assert.ErrorIs(t, repo.Delete(context.Background(), 3), ErrNotFound)
}
