package router

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"

	"github.com/05Ashutosh/food-recipe/internal/handler"
	"github.com/05Ashutosh/food-recipe/internal/middleware"
)

func TestRegisterAPIMountsEveryRoute(t *testing.T) {
	e := echo.New()
	h := Handlers{
		Auth:    &handler.AuthHandler{},
		Social:  &handler.SocialHandler{},
		Recipes: &handler.RecipeHandler{},
		Videos:  &handler.VideoHandler{},
		Likes:   &handler.LikeHandler{},
		WS:      &handler.WSHandler{},
		Health:  func(c echo.Context) error { return c.NoContent(http.StatusOK) },
	}
	g := Guards{Session: noop}.WithDefaults()

	RegisterRoutes(e, h, g)
	RegisterAPI(e, h, g)

	got := map[string]bool{}
	for _, r := range e.Routes() {
		got[r.Method+" "+r.Path] = true
	}
	for _, want := range []string{
		"GET /healthz", "GET /metrics", "GET /ws",
		"POST /api/v1/users/register", "POST /api/v1/users/login",
		"POST /api/v1/users/refresh-token", "POST /api/v1/users/logout",
		"POST /api/v1/users/change-password", "GET /api/v1/users/current-user",
		"PATCH /api/v1/users/update-account", "GET /api/v1/users/profile/:username",
		"POST /api/v1/users/follow/:username", "POST /api/v1/users/unfollow/:username",
		"GET /api/v1/notification/message",
		"GET /api/v1/recipes", "GET /api/v1/recipes/recipeLimit",
		"POST /api/v1/recipes/publish", "GET /api/v1/recipes/:recipeId",
		"DELETE /api/v1/recipes/:recipeId",
		"GET /api/v1/videos", "POST /api/v1/videos/publish",
		"GET /api/v1/videos/:videoId", "DELETE /api/v1/videos/:videoId",
		"POST /api/v1/likes/toggle/video/:videoId", "POST /api/v1/likes/toggle/comment/:commentId",
		"POST /api/v1/likes/toggle/recipe/:recipeId", "POST /api/v1/likes/favorite/recipe/:recipeId",
		"POST /api/v1/likes/unfavorite/recipe/:recipeId",
		"GET /api/v1/likes/videos", "GET /api/v1/likes/recipes",
	} {
		assert.True(t, got[want], want)
	}
}

func TestLikesGroupIsGuarded(t *testing.T) {
	e := echo.New()
	deny := func(echo.HandlerFunc) echo.HandlerFunc {
		return func(echo.Context) error { return echo.ErrUnauthorized }
	}
	h := Handlers{Likes: &handler.LikeHandler{}}
	RegisterContent(e.Group("/api/v1"), h, Guards{Session: deny}.WithDefaults())

	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/likes/recipes", nil))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestWritesInvalidateCachedScopes(t *testing.T) {
	e := echo.New()
	var requested [][]string
	g := Guards{
		Session: noop,
		Invalidate: func(scopes ...string) echo.MiddlewareFunc {
			requested = append(requested, scopes)
			return noop
		},
	}.WithDefaults()
	h := Handlers{
		Auth:    &handler.AuthHandler{},
		Social:  &handler.SocialHandler{},
		Recipes: &handler.RecipeHandler{},
		Videos:  &handler.VideoHandler{},
		Likes:   &handler.LikeHandler{},
	}
	RegisterAPI(e, h, g)

	assert.Contains(t, requested, []string{middleware.CacheScopeProfiles})
	assert.Contains(t, requested, []string{middleware.CacheScopeRecipes, middleware.CacheScopeVideos, middleware.CacheScopeProfiles})
	assert.Contains(t, requested, []string{middleware.CacheScopeVideos})
	assert.Contains(t, requested, []string{middleware.CacheScopeRecipes, middleware.CacheScopeProfiles})
}
