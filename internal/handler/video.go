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

// VideoHandler serves /videos.
type VideoHandler struct {
	Videos  *service.VideoService
	Uploads Uploads
}

func NewVideoHandler(videos *service.VideoService, uploads Uploads) *VideoHandler {
	return &VideoHandler{Videos: videos, Uploads: uploads}
}

// List: GET /videos?query=&page=&limit=&sortBy=&sortType=&userId=
func (h *VideoHandler) List(c echo.Context) error {
	q := model.VideoQuery{
		Query:    strings.TrimSpace(c.QueryParam("query")),
		Page:     queryInt(c, "page", 1),
		Limit:    queryInt(c, "limit", 0),
		SortBy:   c.QueryParam("sortBy"),
		SortDesc: strings.EqualFold(c.QueryParam("sortType"), "desc"),
	}
	if v := c.QueryParam("userId"); v != "" {
		id, err := strconv.ParseUint(v, 10, 64)
		if err != nil {
			return apperror.Validation("Invalid userId")
		}
		q.OwnerID = id
	}
	ctx, cancel := dbCtx(c)
	defer cancel()
	page, err := h.Videos.List(ctx, q)
	if err != nil {
		return err
	}
	return respond(c, http.StatusOK, page, "Videos fetched successfully")
}

func (h *VideoHandler) Get(c echo.Context) error {
	id, err := paramID(c, "videoId", "video")
	if err != nil {
		return err
	}
	ctx, cancel := dbCtx(c)
	defer cancel()
	v, err := h.Videos.Get(ctx, id)
	if err != nil {
		return err
	}
	return respond(c, http.StatusOK, v, "Video fetched successfully")
}

// Publish: multipart videoFile and thumbnail plus the video fields.
func (h *VideoHandler) Publish(c echo.Context) error {
	files, err := h.Uploads.SaveAll(c, "videoFile", "thumbnail")
	if err != nil {
		return err
	}
	in := service.PublishVideoInput{
		Title:         c.FormValue("title"),
		Description:   c.FormValue("description"),
		Category:      strings.TrimSpace(c.FormValue("category")),
		Difficulty:    strings.TrimSpace(c.FormValue("difficulty")),
		VideoPath:     files["videoFile"],
		ThumbnailPath: files["thumbnail"],
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
	if err == nil {
		if d := strings.TrimSpace(c.FormValue("duration")); d != "" {
			if in.Duration, err = strconv.ParseFloat(d, 64); err != nil || in.Duration < 0 {
				err = apperror.Validation("Invalid duration")
			}
		}
	}
	if err != nil {
		discardTemp(in.VideoPath, in.ThumbnailPath)
		return err
	}

	ctx, cancel := uploadCtx(c)
	defer cancel()
	v, err := h.Videos.Publish(ctx, middleware.UserID(c), in)
	if err != nil {
		return err
	}
	return respond(c, http.StatusOK, v, "Video published successfully")
}

// Delete is owner only.
func (h *VideoHandler) Delete(c echo.Context) error {
	id, err := paramID(c, "videoId", "video")
	if err != nil {
		return err
	}
	ctx, cancel := uploadCtx(c)
	defer cancel()
	if err := h.Videos.Delete(ctx, middleware.UserID(c), id); err != nil {
		return err
	}
	return respond(c, http.StatusOK, nil, "Video deleted successfully")
}
