package router

import (
	"github.com/labstack/echo/v4"

	"github.com/05Ashutosh/food-recipe/internal/middleware"
	"github.com/05Ashutosh/food-recipe/internal/model"
)

// RegisterContent registers recipes, videos and likes. Static segments
// (recipeLimit, publish) are matched before the :id parameters by echo's
// router regardless of order.
func RegisterContent(api *echo.Group, h Handlers, g Guards) {
	// recipes show up in recipe reads, the merged video list and profiles
	recipeWrite := g.Invalidate(middleware.CacheScopeRecipes, middleware.CacheScopeVideos, middleware.CacheScopeProfiles)
	videoWrite := g.Invalidate(middleware.CacheScopeVideos)
	likeCounts := g.Invalidate(middleware.CacheScopeRecipes, middleware.CacheScopeProfiles)

	recipes := api.Group("/recipes")
	recipes.GET("", h.Recipes.Search, g.Session)
	recipes.GET("/recipeLimit", h.Recipes.Page, g.PublicCache)
	recipes.POST("/publish", h.Recipes.Publish, g.Session, recipeWrite)
	recipes.GET("/:recipeId", h.Recipes.Get, g.PublicCache)
	recipes.DELETE("/:recipeId", h.Recipes.Delete, g.Session, recipeWrite)

	videos := api.Group("/videos")
	videos.GET("", h.Videos.List, g.PublicCache)
	videos.POST("/publish", h.Videos.Publish, g.Session, videoWrite)
	videos.GET("/:videoId", h.Videos.Get, g.PublicCache)
	videos.DELETE("/:videoId", h.Videos.Delete, g.Session, videoWrite)

	likes := api.Group("/likes", g.Session)
	likes.POST("/toggle/video/:videoId", h.Likes.Toggle(model.LikeVideo, "videoId"), videoWrite)
	likes.POST("/toggle/comment/:commentId", h.Likes.Toggle(model.LikeComment, "commentId"))
	likes.POST("/toggle/recipe/:recipeId", h.Likes.Toggle(model.LikeRecipe, "recipeId"), likeCounts)
	likes.POST("/favorite/recipe/:recipeId", h.Likes.Favorite, likeCounts)
	likes.POST("/unfavorite/recipe/:recipeId", h.Likes.Unfavorite, likeCounts)
	likes.GET("/videos", h.Likes.LikedVideos)
	likes.GET("/recipes", h.Likes.LikedRecipes)
}

// noop is used for guards that are not configured.
func noop(next echo.HandlerFunc) echo.HandlerFunc { return next }

// WithDefaults fills unset guards with pass-throughs. Session must be set.
func (g Guards) WithDefaults() Guards {
	if g.OptSession == nil {
		g.OptSession = noop
	}
	if g.RateLimit == nil {
		g.RateLimit = noop
	}
	if g.PublicCache == nil {
		g.PublicCache = noop
	}
	if g.Invalidate == nil {
		g.Invalidate = func(...string) echo.MiddlewareFunc { return noop }
	}
	return g
}
