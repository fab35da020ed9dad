package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/05Ashutosh/food-recipe/internal/middleware"
	"github.com/05Ashutosh/food-recipe/internal/service"
)

// SocialHandler serves follow, unfollow and the notification inbox.
type SocialHandler struct {
	Social   *service.SocialService
	Notifier *service.Notifier
}

func NewSocialHandler(social *service.SocialService, notifier *service.Notifier) *SocialHandler {
	return &SocialHandler{Social: social, Notifier: notifier}
}

// Follow: POST /users/follow/:username. Responds with the target's counts.
func (h *SocialHandler) Follow(c echo.Context) error {
	actor, _ := middleware.CurrentUser(c)
	ctx, cancel := dbCtx(c)
	defer cancel()
	counts, err := h.Social.Follow(ctx, actor, c.Param("username"))
	if err != nil {
		return err
	}
	return respond(c, http.StatusOK, counts, "Followed")
}

// Unfollow: POST /users/unfollow/:username.
func (h *SocialHandler) Unfollow(c echo.Context) error {
	actor, _ := middleware.CurrentUser(c)
	ctx, cancel := dbCtx(c)
	defer cancel()
	counts, err := h.Social.Unfollow(ctx, actor, c.Param("username"))
	if err != nil {
		return err
	}
	return respond(c, http.StatusOK, counts, "Unfollowed")
}

// Notifications: GET /notification/message, newest first.
func (h *SocialHandler) Notifications(c echo.Context) error {
	ctx, cancel := dbCtx(c)
	defer cancel()
	list, err := h.Notifier.List(ctx, middleware.UserID(c))
	if err != nil {
		return err
	}
	return respond(c, http.StatusOK, list, "Notifications fetched successfully")
}
