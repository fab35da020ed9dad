package service

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/05Ashutosh/food-recipe/internal/apperror"
	"github.com/05Ashutosh/food-recipe/internal/model"
)

func validRecipeInput(t *testing.T) PublishRecipeInput {
	return PublishRecipeInput{
		Title:       "Tomato soup",
		Description: "Warm and quick",
		Type:        model.RecipeTypeImage,
		Ingredients: []string{"tomato", "salt"},
		Steps:       []string{"chop", "boil"},
		Difficulty:  "easy",
		PrepTime:    10,
		CookTime:    20,
		Category:    "SOUPS & SALADS",
		MediaPath:   tempFile(t, "soup.jpg"),
	}
}

func TestPublishRecipe(t *testing.T) {
	recs := newFakeRecipes()
	m := &fakeMedia{}
	svc := NewRecipeService(recs, m)
	in := validRecipeInput(t)

	rec, err := svc.Publish(context.Background(), 7, in)
	require.NoError(t, err)

	assert.Equal(t, uint64(7), rec.OwnerID)
	assert.Equal(t, m.uploaded[0], rec.MediaFile)
	assert.NoFileExists(t, in.MediaPath)
}

func TestPublishRecipeValidation(t *testing.T) {
	cases := map[string]func(*PublishRecipeInput){
		"blank title":    func(in *PublishRecipeInput) { in.Title = " " },
		"bad category":   func(in *PublishRecipeInput) { in.Category = "BRUNCH" },
		"bad type":       func(in *PublishRecipeInput) { in.Type = "gif" },
		"bad difficulty": func(in *PublishRecipeInput) { in.Difficulty = "Easy" },
		"no media":       func(in *PublishRecipeInput) { in.MediaPath = "" },
		"negative time":  func(in *PublishRecipeInput) { in.CookTime = -1 },
		"no ingredients": func(in *PublishRecipeInput) { in.Ingredients = nil },
	}
	for name, mutate := range cases {
		t.Run(name, func(t *testing.T) {
			m := &fakeMedia{}
			in := validRecipeInput(t)
			mutate(&in)

			_, err := NewRecipeService(newFakeRecipes(), m).Publish(context.Background(), 1, in)
			assert.Equal(t, apperror.KindValidation, apperror.KindOf(err))
			assert.Empty(t, m.uploaded)
		})
	}
}

func TestPublishRecipeStoreFailureDeletesMedia(t *testing.T) {
	recs := newFakeRecipes()
	recs.createErr = errors.New("db down")
	m := &fakeMedia{}

	_, err := NewRecipeService(recs, m).Publish(context.Background(), 1, validRecipeInput(t))
	assert.Equal(t, apperror.KindInternal, apperror.KindOf(err))
	assert.Equal(t, m.uploaded, m.deleted)
}

func TestRecipePageAndSearch(t *testing.T) {
	ctx := context.Background()
	recs := newFakeRecipes()
	for i := 0; i < 12; i++ {
		recs.put(model.Recipe{Title: "Pasta", Type: model.RecipeTypeImage})
	}
	recs.put(model.Recipe{Title: "Cake", Type: model.RecipeTypeImage})
	svc := NewRecipeService(recs, &fakeMedia{})

	page, err := svc.Page(ctx, model.RecipeQuery{Page: 3})
	require.NoError(t, err)
	assert.Equal(t, int64(13), page.TotalRecipes)
	assert.Equal(t, 3, page.CurrentPage)
	assert.Equal(t, 3, page.TotalPages)
	assert.Len(t, page.Recipes, 3)

	_, err = svc.Page(ctx, model.RecipeQuery{SortBy: "password_hash"})
	assert.Equal(t, apperror.KindValidation, apperror.KindOf(err))

	found, err := svc.Search(ctx, model.RecipeQuery{Query: "cake", Limit: 1000})
	require.NoError(t, err)
	assert.Equal(t, int64(1), found.TotalRecipes)
	assert.Equal(t, MaxPageLimit, recs.lastQuery.Limit)
}

func TestDeleteRecipe(t *testing.T) {
	ctx := context.Background()
	recs := newFakeRecipes()
	m := &fakeMedia{deleteErr: errors.New("gone")}
	svc := NewRecipeService(recs, m)
	rec := recs.put(model.Recipe{OwnerID: 1, MediaFile: "https://media.test/a.jpg"})

	err := svc.Delete(ctx, 2, rec.ID)
	assert.Equal(t, apperror.KindPermission, apperror.KindOf(err))

	require.NoError(t, svc.Delete(ctx, 1, rec.ID))
	assert.Equal(t, []string{"https://media.test/a.jpg"}, m.deleted)

	_, err = svc.Get(ctx, rec.ID)
	assert.Equal(t, apperror.KindNotFound, apperror.KindOf(err))
}
