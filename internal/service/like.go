package service

import (
	"context"

	"github.com/05Ashutosh/food-recipe/internal/apperror"
	"github.com/05Ashutosh/food-recipe/internal/model"
)

// LikeStore persists likes.
type LikeStore interface {
	Add(ctx context.Context, userID uint64, t model.LikeTarget, targetID uint64) (bool, error)
	Remove(ctx context.Context, userID uint64, t model.LikeTarget, targetID uint64) (bool, error)
	Toggle(ctx context.Context, userID uint64, t model.LikeTarget, targetID uint64) (bool, error)
	LikedVideos(ctx context.Context, userID uint64) ([]model.LikedVideo, error)
	LikedRecipes(ctx context.Context, userID uint64) ([]model.RecipeWithLikes, error)
}

// LikeResult reports the like state after an operation. Changed is false
// when a favorite or unfavorite found the state already in place.
type LikeResult struct {
	IsLiked bool `json:"isLiked"`
	Changed bool `json:"-"`
}

// LikeService implements likes and favorites.
type LikeService struct{ likes LikeStore }

func NewLikeService(likes LikeStore) *LikeService { return &LikeService{likes: likes} }

// Toggle flips the like of userID on the target.
func (s *LikeService) Toggle(ctx context.Context, userID uint64, t model.LikeTarget, targetID uint64) (LikeResult, error) {
	if targetID == 0 {
		return LikeResult{}, apperror.Validation(targetLabel(t) + " ID is required")
	}
	liked, err := s.likes.Toggle(ctx, userID, t, targetID)
	if err != nil {
		return LikeResult{}, apperror.Internal("Like update failed", err)
	}
	return LikeResult{IsLiked: liked, Changed: true}, nil
}

// Favorite likes a recipe; repeating it is a no-op.
func (s *LikeService) Favorite(ctx context.Context, userID, recipeID uint64) (LikeResult, error) {
	if recipeID == 0 {
		return LikeResult{}, apperror.Validation("Recipe ID is required")
	}
	added, err := s.likes.Add(ctx, userID, model.LikeRecipe, recipeID)
	if err != nil {
		return LikeResult{}, apperror.Internal("Like update failed", err)
	}
	return LikeResult{IsLiked: true, Changed: added}, nil
}

// Unfavorite removes a recipe like; repeating it is a no-op.
func (s *LikeService) Unfavorite(ctx context.Context, userID, recipeID uint64) (LikeResult, error) {
	if recipeID == 0 {
		return LikeResult{}, apperror.Validation("Recipe ID is required")
	}
	removed, err := s.likes.Remove(ctx, userID, model.LikeRecipe, recipeID)
	if err != nil {
		return LikeResult{}, apperror.Internal("Like update failed", err)
	}
	return LikeResult{IsLiked: false, Changed: removed}, nil
}

func (s *LikeService) LikedVideos(ctx context.Context, userID uint64) ([]model.LikedVideo, error) {
	out, err := s.likes.LikedVideos(ctx, userID)
	if err != nil {
		return nil, apperror.Internal("Failed to fetch liked videos", err)
	}
	return out, nil
}

func (s *LikeService) LikedRecipes(ctx context.Context, userID uint64) ([]model.RecipeWithLikes, error) {
	out, err := s.likes.LikedRecipes(ctx, userID)
	if err != nil {
		return nil, apperror.Internal("Failed to fetch liked recipes", err)
	}
	return out, nil
}

func targetLabel(t model.LikeTarget) string {
	switch t {
	case model.LikeVideo:
		return "Video"
	case model.LikeComment:
		return "Comment"
	default:
		return "Recipe"
	}
}
