package main // Entry point package

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"

	"github.com/05Ashutosh/food-recipe/internal/config"
	"github.com/05Ashutosh/food-recipe/internal/database"
	"github.com/05Ashutosh/food-recipe/internal/handler"
	"github.com/05Ashutosh/food-recipe/internal/logging"
	"github.com/05Ashutosh/food-recipe/internal/media"
	"github.com/05Ashutosh/food-recipe/internal/middleware"
	"github.com/05Ashutosh/food-recipe/internal/queue"
	"github.com/05Ashutosh/food-recipe/internal/realtime"
	"github.com/05Ashutosh/food-recipe/internal/repository"
	"github.com/05Ashutosh/food-recipe/internal/router"
	"github.com/05Ashutosh/food-recipe/internal/service"
)

func main() {
	cfg := config.Load()
	logging.Init(logging.Config{Level: cfg.Log.Level, Format: cfg.Log.Format})

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	db, err := database.Open(cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName)
	if err != nil {
		logging.Fatal().Err(err).Msg("database connection failed")
	}
	defer db.Close()
	if cfg.AutoMigrate {
		if err := database.Migrate(ctx, db); err != nil {
			logging.Fatal().Err(err).Msg("migrations failed")
		}
	}

	store, err := media.NewS3Store(ctx, cfg.Media)
	if err != nil {
		logging.Fatal().Err(err).Msg("media store init failed")
	}
	rdb := config.NewRedisClient()
	if rdb != nil {
		defer rdb.Close()
	}

	// repositories
	users := repository.NewUserRepo(db)
	tokensRepo := repository.NewTokenRepo(db)
	follows := repository.NewFollowRepo(db)
	notifications := repository.NewNotificationRepo(db)
	recipes := repository.NewRecipeRepo(db)
	videos := repository.NewVideoRepo(db)
	likes := repository.NewLikeRepo(db)

	// realtime and broker
	hub := realtime.NewHub()
	var events service.EventPublisher
	if cfg.Queue.Enabled {
		events = queue.NewPublisher(cfg.Queue.URL, cfg.Queue.Name)
		consumer := queue.NewConsumer(cfg.Queue.URL, cfg.Queue.Name, cfg.Queue.LogDir)
		go func() {
			if err := consumer.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
				logging.Error().Err(err).Msg("social event consumer stopped")
			}
		}()
	}

	// services
	tokens := service.NewTokenService(tokensRepo, service.TokenConfig{
		AccessSecret:  cfg.AccessSecret,
		RefreshSecret: cfg.RefreshSecret,
		AccessTTL:     time.Duration(cfg.AccessTTLMin) * time.Minute,
		RefreshTTL:    time.Duration(cfg.RefreshTTLDays) * 24 * time.Hour,
	})
	userSvc := service.NewUserService(users, follows, recipes, tokens, store, cfg.BcryptCost)
	notifier := service.NewNotifier(notifications, hub)
	social := service.NewSocialService(users, follows, notifier, events, service.SocialOptions{
		UnfollowNotifyOnChangeOnly: cfg.UnfollowNotifyOnChangeOnly,
	})

	uploads := handler.Uploads{Dir: cfg.UploadDir}
	h := router.Handlers{
		Auth: handler.NewAuthHandler(userSvc, tokens, uploads, handler.CookieConfig{
			Secure:     cfg.Production(),
			AccessTTL:  tokens.AccessTTL(),
			RefreshTTL: tokens.RefreshTTL(),
		}),
		Social:  handler.NewSocialHandler(social, notifier),
		Recipes: handler.NewRecipeHandler(service.NewRecipeService(recipes, store), uploads),
		Videos:  handler.NewVideoHandler(service.NewVideoService(videos, recipes, store), uploads),
		Likes:   handler.NewLikeHandler(service.NewLikeService(likes)),
		WS:      handler.NewWSHandler(hub, cfg.CORSOrigins),
		Health:  handler.Health(db),
	}
	cacheCfg := config.LoadCacheConfig()
	g := router.Guards{
		Session:     middleware.Session(tokens, userSvc),
		OptSession:  middleware.OptionalSession(tokens, userSvc),
		RateLimit:   middleware.NewTokenBucket(config.LoadRateLimitConfig(), rdb),
		PublicCache: middleware.NewRedisCache(cacheCfg, rdb),
		Invalidate:  middleware.NewCacheInvalidator(cacheCfg, rdb),
	}.WithDefaults()

	e := echo.New()
	e.HideBanner = true
	e.HTTPErrorHandler = handler.ErrorHandler
	e.Validator = handler.NewValidator()
	e.Use(echomw.RequestID())
	e.Use(middleware.RequestLogger())
	e.Use(echomw.Recover())
	e.Use(echomw.CORSWithConfig(echomw.CORSConfig{
		AllowOrigins:     cfg.CORSOrigins,
		AllowCredentials: true,
	}))
	e.Use(echomw.BodyLimit(strconv.Itoa(cfg.MaxUploadMB) + "M"))
	router.RegisterRoutes(e, h, g)
	router.RegisterAPI(e, h, g)

	addr := ":" + cfg.Port
	go func() {
		logging.Info().Str("addr", addr).Str("env", cfg.Env).Msg("listening")
		if err := e.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logging.Fatal().Err(err).Msg("server failed")
		}
	}()

	<-ctx.Done()
	logging.Info().Msg("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		logging.Error().Err(err).Msg("http shutdown")
	}
	hub.Close()
	social.Wait()
}
