package main

import (
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	_ "github.com/comsoc/events-api/api/swagger"
	"github.com/comsoc/events-api/internal/handler"
	"github.com/comsoc/events-api/internal/middleware"
	"github.com/comsoc/events-api/internal/repository"
	"github.com/comsoc/events-api/internal/service"
	"github.com/comsoc/events-api/internal/termdates"
	"github.com/comsoc/events-api/pkg/cache"
	"github.com/comsoc/events-api/pkg/config"
	"github.com/comsoc/events-api/pkg/database"
	"github.com/comsoc/events-api/pkg/logger"
	corsmiddleware "github.com/comsoc/events-api/pkg/middleware/cors"
	reqidmiddleware "github.com/comsoc/events-api/pkg/middleware/requestid"
)

// @title Society Events API
// @version 1.0.0
// @description Events calendar keyed by the university's academic weeks
// @BasePath /api/v1
// @schemes http https

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logr, err := logger.New(cfg)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logr.Sync() //nolint:errcheck

	location, err := time.LoadLocation(cfg.Events.Timezone)
	if err != nil {
		logr.Sugar().Fatalw("invalid events timezone", "timezone", cfg.Events.Timezone, "error", err)
	}

	db, err := database.NewPostgres(cfg.Database)
	if err != nil {
		logr.Sugar().Fatalw("failed to connect to postgres", "error", err)
	}
	defer db.Close() //nolint:errcheck

	if err := database.Migrate(db); err != nil {
		logr.Sugar().Fatalw("failed to run migrations", "error", err)
	}

	metrics := service.NewMetricsService()

	var cacheSvc *service.CacheService
	redisClient, err := cache.NewRedis(cfg.Redis)
	if err != nil {
		logr.Sugar().Warnw("redis unavailable, listings served uncached", "error", err)
	} else {
		defer redisClient.Close() //nolint:errcheck
		cacheSvc = service.NewCacheService(repository.NewCacheRepository(redisClient), cfg.Events.CacheTTL, metrics, logr)
	}

	weekRepo := repository.NewWeekRepository(db)
	eventRepo := repository.NewEventRepository(db)
	tagRepo := repository.NewTagRepository(db)
	keyRepo := repository.NewAPIKeyRepository(db)

	termClient := termdates.NewClient(cfg.Termdates, logr)

	authSvc := service.NewAuthService(cfg.JWT)
	keySvc := service.NewAPIKeyService(keyRepo, logr)
	weekSvc := service.NewWeekService(weekRepo, termClient, cfg.Termdates.CutoffYear, metrics, logr)
	tagSvc := service.NewTagService(tagRepo, eventRepo)
	eventSvc := service.NewEventService(eventRepo, weekSvc, tagRepo, cacheSvc, location, logr)
	exportSvc := service.NewExportService(eventSvc)
	searchSvc := service.NewSearchService(eventRepo, tagRepo)
	feedSvc := service.NewFeedService(eventRepo, cfg.Feed.Name, cfg.Feed.ProdID, location)

	eventHandler := handler.NewEventHandler(eventSvc, exportSvc, authSvc)
	tagHandler := handler.NewTagHandler(tagSvc, authSvc)
	searchHandler := handler.NewSearchHandler(searchSvc)
	keyHandler := handler.NewAPIKeyHandler(keySvc)
	feedHandler := handler.NewFeedHandler(feedSvc)

	if cfg.Janitor.Enabled {
		janitor := service.NewJanitorService(weekSvc, tagSvc, cfg.Janitor.Spec, metrics, logr)
		if err := janitor.Start(); err != nil {
			logr.Sugar().Fatalw("failed to start janitor", "spec", cfg.Janitor.Spec, "error", err)
		}
		defer janitor.Stop()
	}

	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr))
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))
	r.Use(middleware.Metrics(metrics))

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	r.GET("/ready", func(c *gin.Context) {
		if err := db.Ping(); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "degraded"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ready"})
	})

	r.GET("/metrics", gin.WrapH(metrics.Handler()))

	if cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	api := r.Group(cfg.APIPrefix)
	api.Use(middleware.OptionalSession(authSvc))
	{
		api.GET("/events", eventHandler.List)
		api.GET("/events/upcoming", eventHandler.Upcoming)
		api.GET("/events/previous", eventHandler.Previous)
		api.GET("/events/:id", eventHandler.Get)
		api.GET("/weeks/:year/:term/:week/events", eventHandler.WeekEvents)
		api.GET("/weeks/:year/:term/:week/events/:slug", eventHandler.GetBySlug)

		api.GET("/tags", tagHandler.List)
		api.GET("/tags/:name/events", tagHandler.Events)
		api.GET("/search", searchHandler.Search)
		api.GET("/search/suggest", searchHandler.Suggest)

		if cfg.Feed.Enabled {
			api.GET("/feed.ics", feedHandler.Feed)
		}
	}

	write := api.Group("")
	write.Use(middleware.WriteAccess(authSvc, keySvc))
	{
		write.POST("/events", eventHandler.Create)
		write.POST("/events/batch", eventHandler.CreateBatch)
		write.PATCH("/events/:id", eventHandler.Update)
		write.DELETE("/events/:id", eventHandler.Delete)
	}

	exec := api.Group("")
	exec.Use(middleware.Session(authSvc), middleware.RequireExec(authSvc))
	{
		exec.GET("/events/export", eventHandler.Export)

		exec.POST("/keys", keyHandler.Create)
		exec.GET("/keys", keyHandler.List)
		exec.GET("/keys/:id", keyHandler.Get)
		exec.DELETE("/keys/:id", keyHandler.Deactivate)
	}

	addr := fmt.Sprintf(":%d", cfg.Port)
	logr.Sugar().Infow("server starting", "addr", addr, "env", cfg.Env)
	if err := r.Run(addr); err != nil {
		logr.Sugar().Fatalw("server failed", "error", err)
	}
}
