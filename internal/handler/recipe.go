package handler

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/05Ashutosh/food-recipe/internal/apperror"
	"github.com/05Ashutosh/food-recipe/internal/middleware"
	"github.com/05Ashutosh/food-recipe/internal/model"
	"github.com/05Ashutosh/food-recipe/internal/service"
)

// RecipeHandler serves /recipes.
type RecipeHandler struct {
	Recipes *service.RecipeService
	Uploads Uploads
}

func NewRecipeHandler(recipes *service.RecipeService, uploads Uploads) *RecipeHandler {
	return &RecipeHandler{Recipes: recipes, Uploads: uploads}
}

func recipeQuery(c echo.Context) model.RecipeQuery {
	return model.RecipeQuery{
		Query:    strings.TrimSpace(c.QueryParam("query")),
		Page:     queryInt(c, "page", 1),
		Limit:    queryInt(c, "limit", 0),
		SortBy:   c.QueryParam("sortBy"),
		SortDesc: strings.EqualFold(c.QueryParam("sortType"), "desc"),
	}
}

// Search: GET /recipes?query=&page=&limit=
func (h *RecipeHandler) Search(c echo.Context) error {
	ctx, cancel := dbCtx(c)
	defer cancel()
	page, err := h.Recipes.Search(ctx, recipeQuery(c))
	if err != nil {
		return err
	}
	return respond(c, http.StatusOK, page, "Recipes fetched successfully")
}

// Page: GET /recipes/recipeLimit?page=&limit=&sortBy=&sortType=
func (h *RecipeHandler) Page(c echo.Context) error {
	ctx, cancel := dbCtx(c)
	defer cancel()
	page, err := h.Recipes.Page(ctx, recipeQuery(c))
	if err != nil {
		return err
	}
	return respond(c, http.StatusOK, page, "Recipes fetched successfully")
}

// Publish: multipart mediaFile plus the recipe fields.
func (h *RecipeHandler) Publish(c echo.Context) error {
	media, err := h.Uploads.Save(c, "mediaFile")
	if err != nil {
		return err
	}
	in := service.PublishRecipeInput{
		Title:       c.FormValue("title"),
		Description: c.FormValue("description"),
		Type:        strings.ToLower(strings.TrimSpace(c.FormValue("type"))),
		Difficulty:  strings.ToLower(strings.TrimSpace(c.FormValue("difficulty"))),
		Category:    strings.TrimSpace(c.FormValue("category")),
		MediaPath:   media,
	}
	if in.PrepTime, err = formInt(c, "prepTime"); err == nil {
		in.CookTime, err = formInt(c, "cookTime")
	}
	if err == nil {
		in.Ingredients, err = formList(c, "ingredients")
	}
	if err == nil {
		in.Steps, err = formList(c, "steps")
	}
	if err != nil {
		discardTemp(media)
		return err
	}

	ctx, cancel := uploadCtx(c)
	defer cancel()
	rec, err := h.Recipes.Publish(ctx, middleware.UserID(c), in)
	if err != nil {
		return err
	}
	return respond(c, http.StatusOK, rec, "Recipe created successfully")
}

func (h *RecipeHandler) Get(c echo.Context) error {
	id, err := paramID(c, "recipeId", "recipe")
	if err != nil {
		return err
	}
	ctx, cancel := dbCtx(c)
	defer cancel()
	rec, err := h.Recipes.Get(ctx, id)
	if err != nil {
		return err
	}
	return respond(c, http.StatusOK, rec, "Recipe fetched successfully")
}

// Delete is owner only.
func (h *RecipeHandler) Delete(c echo.Context) error {
	id, err := paramID(c, "recipeId", "recipe")
	if err != nil {
		return err
	}
	ctx, cancel := uploadCtx(c)
	defer cancel()
	if err := h.Recipes.Delete(ctx, middleware.UserID(c), id); err != nil {
		return err
	}
	return respond(c, http.StatusOK, nil, "Recipe deleted successfully")
}

// formInt parses an optional non-negative integer form field.
func formInt(c echo.Context, name string) (int, error) {
	v := strings.TrimSpace(c.FormValue(name))
	if v == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil || n < 0 {
		return 0, apperror.Validation("Invalid " + name)
	}
	return n, nil
}
