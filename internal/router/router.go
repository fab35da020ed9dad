package router // package router registers the HTTP routes of the API

import (
	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/05Ashutosh/food-recipe/internal/handler"
	"github.com/05Ashutosh/food-recipe/internal/middleware"
)

// Handlers bundles everything the routes dispatch to.
type Handlers struct {
	Auth    *handler.AuthHandler
	Social  *handler.SocialHandler
	Recipes *handler.RecipeHandler
	Videos  *handler.VideoHandler
	Likes   *handler.LikeHandler
	WS      *handler.WSHandler
	Health  echo.HandlerFunc
}

// Guards are the middlewares applied per route group.
type Guards struct {
	Session     echo.MiddlewareFunc // rejects anonymous requests with 401
	OptSession  echo.MiddlewareFunc // attaches a user when present
	RateLimit   echo.MiddlewareFunc // credential endpoints
	PublicCache echo.MiddlewareFunc // anonymous public reads

	// Invalidate retires the cached reads of the given scopes after a
	// successful write.
	Invalidate func(scopes ...string) echo.MiddlewareFunc
}

// RegisterRoutes registers the operational endpoints: health, metrics and
// the websocket upgrade.
func RegisterRoutes(e *echo.Echo, h Handlers, g Guards) {
	e.GET("/healthz", h.Health)
	e.GET("/metrics", echo.WrapHandler(promhttp.Handler()))
	e.GET("/ws", h.WS.Serve, g.OptSession)
}

// RegisterAuth registers /api/v1/users. Register, login and refresh are
// rate limited; everything that acts as a user requires a session.
func RegisterAuth(api *echo.Group, h Handlers, g Guards) {
	users := api.Group("/users")
	users.POST("/register", h.Auth.Register, g.RateLimit)
	users.POST("/login", h.Auth.Login, g.RateLimit)
	users.POST("/refresh-token", h.Auth.Refresh, g.RateLimit)
	users.GET("/profile/:username", h.Auth.Profile, g.PublicCache)

	users.POST("/logout", h.Auth.Logout, g.Session)
	users.POST("/change-password", h.Auth.ChangePassword, g.Session)
	users.GET("/current-user", h.Auth.CurrentUser, g.Session)
	users.PATCH("/update-account", h.Auth.UpdateAccount, g.Session,
		g.Invalidate(middleware.CacheScopeProfiles, middleware.CacheScopeRecipes, middleware.CacheScopeVideos))
}

// RegisterSocial registers follow, unfollow and the notification inbox.
func RegisterSocial(api *echo.Group, h Handlers, g Guards) {
	counts := g.Invalidate(middleware.CacheScopeProfiles)
	api.POST("/users/follow/:username", h.Social.Follow, g.Session, counts)
	api.POST("/users/unfollow/:username", h.Social.Unfollow, g.Session, counts)
	api.GET("/notification/message", h.Social.Notifications, g.Session)
}

// RegisterAPI mounts every /api/v1 group.
func RegisterAPI(e *echo.Echo, h Handlers, g Guards) {
	api := e.Group("/api/v1")
	RegisterAuth(api, h, g)
	RegisterSocial(api, h, g)
	RegisterContent(api, h, g)
}
