package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/05Ashutosh/food-recipe/internal/middleware"
	"github.com/05Ashutosh/food-recipe/internal/model"
	"github.com/05Ashutosh/food-recipe/internal/service"
)

// LikeHandler serves /likes.
type LikeHandler struct{ Likes *service.LikeService }

func NewLikeHandler(likes *service.LikeService) *LikeHandler { return &LikeHandler{Likes: likes} }

// Toggle returns a handler toggling likes on target, identified by the
// path parameter param.
func (h *LikeHandler) Toggle(target model.LikeTarget, param string) echo.HandlerFunc {
	noun := map[model.LikeTarget]string{
		model.LikeVideo:   "Video",
		model.LikeRecipe:  "Recipe",
		model.LikeComment: "Comment",
	}[target]
	return func(c echo.Context) error {
		id, err := paramID(c, param, string(target))
		if err != nil {
			return err
		}
		ctx, cancel := dbCtx(c)
		defer cancel()
		res, err := h.Likes.Toggle(ctx, middleware.UserID(c), target, id)
		if err != nil {
			return err
		}
		msg := noun + " unliked successfully"
		if res.IsLiked {
			msg = noun + " liked successfully"
		}
		if target != model.LikeRecipe {
			return respond(c, http.StatusOK, nil, msg)
		}
		return respond(c, http.StatusOK, res, msg)
	}
}

func (h *LikeHandler) Favorite(c echo.Context) error {
	id, err := paramID(c, "recipeId", "recipe")
	if err != nil {
		return err
	}
	ctx, cancel := dbCtx(c)
	defer cancel()
	res, err := h.Likes.Favorite(ctx, middleware.UserID(c), id)
	if err != nil {
		return err
	}
	msg := "Recipe favorited successfully"
	if !res.Changed {
		msg = "Recipe already favorited"
	}
	return respond(c, http.StatusOK, res, msg)
}

func (h *LikeHandler) Unfavorite(c echo.Context) error {
	id, err := paramID(c, "recipeId", "recipe")
	if err != nil {
		return err
	}
	ctx, cancel := dbCtx(c)
	defer cancel()
	res, err := h.Likes.Unfavorite(ctx, middleware.UserID(c), id)
	if err != nil {
		return err
	}
	msg := "Recipe unfavorited successfully"
	if !res.Changed {
		msg = "Recipe already not favorited"
	}
	return respond(c, http.StatusOK, res, msg)
}

func (h *LikeHandler) LikedVideos(c echo.Context) error {
	ctx, cancel := dbCtx(c)
	defer cancel()
	list, err := h.Likes.LikedVideos(ctx, middleware.UserID(c))
	if err != nil {
		return err
	}
	return respond(c, http.StatusOK, list, "Liked videos fetched successfully")
}

func (h *LikeHandler) LikedRecipes(c echo.Context) error {
	ctx, cancel := dbCtx(c)
	defer cancel()
	list, err := h.Likes.LikedRecipes(ctx, middleware.UserID(c))
	if err != nil {
		return err
	}
	return respond(c, http.StatusOK, echo.Map{"recipes": list}, "Liked recipes fetched successfully")
}
