package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"

	_ "github.com/noah-isme/dept-comm-api/api/swagger"
	"github.com/noah-isme/dept-comm-api/internal/handler"
	"github.com/noah-isme/dept-comm-api/internal/middleware"
	"github.com/noah-isme/dept-comm-api/internal/models"
	"github.com/noah-isme/dept-comm-api/internal/repository"
	"github.com/noah-isme/dept-comm-api/internal/service"
	"github.com/noah-isme/dept-comm-api/pkg/cache"
	"github.com/noah-isme/dept-comm-api/pkg/config"
	"github.com/noah-isme/dept-comm-api/pkg/database"
	"github.com/noah-isme/dept-comm-api/pkg/export"
	"github.com/noah-isme/dept-comm-api/pkg/logger"
	corsmiddleware "github.com/noah-isme/dept-comm-api/pkg/middleware/cors"
	reqidmiddleware "github.com/noah-isme/dept-comm-api/pkg/middleware/requestid"
	"github.com/noah-isme/dept-comm-api/pkg/storage"
)

// @title Department Communication Center API
// @version 1.0.0
// @description Announcement board and query/reply threads for the department portal
// @BasePath /
// @schemes http

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

	db, err := database.NewPostgres(cfg.Database)
	if err != nil {
		logr.Sugar().Fatalw("failed to connect to postgres", "error", err)
	}
	defer db.Close() //nolint:errcheck

	cacheRepo := repository.NewCacheRepository(nil, logr)
	if cfg.Cache.Enabled || cfg.Events.Enabled {
		redisClient, err := cache.NewRedis(cfg.Redis)
		if err != nil {
			logr.Sugar().Warnw("redis unavailable, continuing without cache and events", "error", err)
		} else {
			cacheRepo = repository.NewCacheRepository(redisClient, logr)
		}
	}

	signer := storage.NewSignedURLSigner(cfg.Uploads.SignedURLSecret, cfg.Uploads.SignedURLTTL)
	store, err := storage.NewLocalStorage(cfg.Uploads.StorageDir, cfg.Uploads.PublicBaseURL, signer)
	if err != nil {
		logr.Sugar().Fatalw("failed to init attachment storage", "error", err)
	}

	validate := validator.New()
	metricsSvc := service.NewMetricsService()
	authSvc := service.NewAuthService(cfg.JWT, logr)

	var sink service.NotificationSink = service.NopNotificationSink{}
	if cfg.Events.Enabled {
		sink = service.NewRedisNotificationSink(cacheRepo, cfg.Events.Channel, logr)
	}

	announcementRepo := repository.NewAnnouncementRepository(db)
	queryRepo := repository.NewQueryRepository(db)

	// a cache repository with no client degrades to cache misses
	listCache := cacheRepo
	if !cfg.Cache.Enabled {
		listCache = repository.NewCacheRepository(nil, logr)
	}
	commSvc := service.NewCommunicationService(
		announcementRepo, store, listCache, sink, metricsSvc, export.NewPDFExporter(),
		validate, logr, cfg.Uploads, cfg.Cache.AnnouncementTTL,
	)
	querySvc := service.NewQueryService(queryRepo, sink, validate, logr)

	hydrateCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	if err := querySvc.Refresh(hydrateCtx); err != nil {
		logr.Warn("failed to hydrate query snapshot", zap.Error(err))
	}
	cancel()

	announcementHandler := handler.NewAnnouncementHandler(commSvc)
	queryHandler := handler.NewQueryHandler(querySvc)
	fileHandler := handler.NewFileHandler(store, signer)
	metricsHandler := handler.NewMetricsHandler(metricsSvc)

	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr))
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))
	r.Use(middleware.Metrics(metricsSvc))

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
	r.GET("/metrics", metricsHandler.Handle)
	r.GET("/files/:name", fileHandler.Download)

	if cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	api := r.Group(cfg.APIPrefix)
	api.Use(middleware.JWT(authSvc))
	{
		api.GET("/announcements", announcementHandler.List)
		api.POST("/announcements", middleware.RequireRoles(models.RoleFaculty, models.RoleHOD), announcementHandler.Create)
		api.DELETE("/announcements/:id", middleware.RequireRoles(models.RoleFaculty, models.RoleHOD), announcementHandler.Delete)
		if cfg.Exports.Enabled {
			api.GET("/announcements/export", middleware.RequireRoles(models.RoleFaculty, models.RoleHOD), announcementHandler.Export)
			api.GET("/queries/export", middleware.RequireRoles(models.RoleFaculty, models.RoleHOD), queryHandler.Export)
		}
		api.GET("/queries", middleware.RequireRoles(models.RoleFaculty, models.RoleHOD), queryHandler.List)
		api.POST("/queries", middleware.RequireRoles(models.RoleStudent), queryHandler.Submit)
		api.POST("/queries/:id/reply", middleware.RequireRoles(models.RoleFaculty, models.RoleHOD), queryHandler.Reply)
	}

	addr := fmt.Sprintf(":%d", cfg.Port)
	logr.Sugar().Infow("server starting", "addr", addr, "env", cfg.Env)
	if err := r.Run(addr); err != nil {
		logr.Sugar().Fatalw("server failed", "error", err)
	}
}
