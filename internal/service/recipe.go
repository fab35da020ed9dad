package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/05Ashutosh/food-recipe/internal/apperror"
	"github.com/05Ashutosh/food-recipe/internal/logging"
	"github.com/05Ashutosh/food-recipe/internal/media"
	"github.com/05Ashutosh/food-recipe/internal/model"
	"github.com/05Ashutosh/food-recipe/internal/repository"
)

// Listing limits.
const (
	MaxPageLimit      = 100
	searchPageLimit   = 100
	recipePageDefault = 5
)

// RecipeStore persists recipes.
type RecipeStore interface {
	Create(ctx context.Context, rec *model.Recipe) error
	GetByID(ctx context.Context, id uint64) (model.RecipeWithLikes, error)
	List(ctx context.Context, q model.RecipeQuery) ([]model.RecipeWithLikes, int64, error)
	Delete(ctx context.Context, id uint64) error
}

// PublishRecipeInput is the recipe publish form. MediaPath is a local temp
// file.
type PublishRecipeInput struct {
	Title       string
	Description string
	Type        string
	Ingredients []string
	Steps       []string
	Difficulty  string
	PrepTime    int
	CookTime    int
	Category    string
	MediaPath   string
}

// RecipeService implements recipe publishing, listing and deletion.
type RecipeService struct {
	recipes RecipeStore
	media   media.Store
}

func NewRecipeService(recipes RecipeStore, store media.Store) *RecipeService {
	return &RecipeService{recipes: recipes, media: store}
}

// Search backs GET /recipes: optional text query, page and limit.
func (s *RecipeService) Search(ctx context.Context, q model.RecipeQuery) (model.RecipePage, error) {
	q.SortBy = ""
	normalizePage(&q.Page, &q.Limit, searchPageLimit)
	recipes, total, err := s.recipes.List(ctx, q)
	if err != nil {
		return model.RecipePage{}, apperror.Internal("Failed to fetch recipes", err)
	}
	return model.RecipePage{Recipes: recipes, TotalRecipes: total}, nil
}

// Page backs GET /recipes/recipeLimit and reports page counts. sortBy must
// name a sortable field.
func (s *RecipeService) Page(ctx context.Context, q model.RecipeQuery) (model.RecipePage, error) {
	if q.SortBy != "" && !repository.ValidRecipeSort(q.SortBy) {
		return model.RecipePage{}, apperror.Validation("Invalid sortBy field")
	}
	normalizePage(&q.Page, &q.Limit, recipePageDefault)
	recipes, total, err := s.recipes.List(ctx, q)
	if err != nil {
		return model.RecipePage{}, apperror.Internal("Failed to fetch recipes", err)
	}
	return model.RecipePage{
		Recipes:      recipes,
		TotalRecipes: total,
		CurrentPage:  q.Page,
		TotalPages:   totalPages(total, q.Limit),
	}, nil
}

// Publish validates the form, uploads the media file and stores the
// recipe. The uploaded media is deleted when the recipe cannot be stored.
func (s *RecipeService) Publish(ctx context.Context, ownerID uint64, in PublishRecipeInput) (model.RecipeWithLikes, error) {
	if err := validateRecipe(in); err != nil {
		removeTemp(in.MediaPath)
		return model.RecipeWithLikes{}, err
	}
	asset, err := s.media.Upload(ctx, in.MediaPath)
	if err != nil {
		return model.RecipeWithLikes{}, uploadError("Error uploading media file", err)
	}

	rec := model.Recipe{
		OwnerID:     ownerID,
		MediaFile:   asset.URL,
		Title:       strings.TrimSpace(in.Title),
		Description: strings.TrimSpace(in.Description),
		Type:        in.Type,
		Ingredients: in.Ingredients,
		Steps:       in.Steps,
		Difficulty:  in.Difficulty,
		PrepTime:    in.PrepTime,
		CookTime:    in.CookTime,
		Category:    in.Category,
	}
	if err := s.recipes.Create(ctx, &rec); err != nil {
		discardMedia(ctx, s.media, asset.URL)
		return model.RecipeWithLikes{}, apperror.Internal("Something went wrong while creating recipe", err)
	}
	created, err := s.recipes.GetByID(ctx, rec.ID)
	if err != nil {
		return model.RecipeWithLikes{}, apperror.Internal("Something went wrong while creating recipe", err)
	}
	return created, nil
}

func validateRecipe(in PublishRecipeInput) error {
	switch {
	case strings.TrimSpace(in.Title) == "" || strings.TrimSpace(in.Description) == "":
		return apperror.Validation("Title and description are required")
	case !model.ValidCategory(in.Category):
		return apperror.Validation("Invalid recipe category")
	case in.Type != model.RecipeTypeImage && in.Type != model.RecipeTypeVideo:
		return apperror.Validation("Invalid recipe type")
	case !model.ValidDifficulty(in.Difficulty):
		return apperror.Validation("Invalid recipe difficulty")
	case in.PrepTime < 0 || in.CookTime < 0:
		return apperror.Validation("Preparation and cooking times must not be negative")
	case len(in.Ingredients) == 0 || len(in.Steps) == 0:
		return apperror.Validation("Ingredients and steps are required")
	case in.MediaPath == "":
		return apperror.Validation("Media file is required")
	}
	return nil
}

// Get returns one recipe with its like count.
func (s *RecipeService) Get(ctx context.Context, id uint64) (model.RecipeWithLikes, error) {
	rec, err := s.recipes.GetByID(ctx, id)
	if errors.Is(err, repository.ErrNotFound) {
		return model.RecipeWithLikes{}, apperror.NotFound(fmt.Sprintf("Recipe with ID %d not found", id))
	}
	if err != nil {
		return model.RecipeWithLikes{}, apperror.Internal("Failed to fetch recipe", err)
	}
	return rec, nil
}

// Delete removes a recipe owned by userID together with its likes. A
// failure to delete the media file is logged only.
func (s *RecipeService) Delete(ctx context.Context, userID, id uint64) error {
	rec, err := s.Get(ctx, id)
	if err != nil {
		return err
	}
	if rec.OwnerID != userID {
		return apperror.Permission("You do not have permission to delete this recipe")
	}
	discardMedia(ctx, s.media, rec.MediaFile)
	if err := s.recipes.Delete(ctx, id); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return apperror.NotFound(fmt.Sprintf("Recipe with ID %d not found", id))
		}
		return apperror.Internal("Failed to delete recipe", err)
	}
	logging.Ctx(ctx).Info().Uint64("recipe_id", id).Uint64("user_id", userID).Msg("recipe deleted")
	return nil
}

// normalizePage applies defaults and the MaxPageLimit cap.
func normalizePage(page, limit *int, def int) {
	if *page < 1 {
		*page = 1
	}
	if *limit < 1 {
		*limit = def
	}
	if *limit > MaxPageLimit {
		*limit = MaxPageLimit
	}
}

func totalPages(total int64, limit int) int {
	if limit < 1 {
		return 0
	}
	return int((total + int64(limit) - 1) / int64(limit))
}
