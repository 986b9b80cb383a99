package main

import (
	"fmt"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"

	_ "github.com/faisalalharbi2050/motabea-scheduling-api/api/swagger"
	"github.com/faisalalharbi2050/motabea-scheduling-api/internal/handler"
	"github.com/faisalalharbi2050/motabea-scheduling-api/internal/middleware"
	"github.com/faisalalharbi2050/motabea-scheduling-api/internal/models"
	"github.com/faisalalharbi2050/motabea-scheduling-api/internal/repository"
	"github.com/faisalalharbi2050/motabea-scheduling-api/internal/service"
	"github.com/faisalalharbi2050/motabea-scheduling-api/pkg/cache"
	"github.com/faisalalharbi2050/motabea-scheduling-api/pkg/config"
	"github.com/faisalalharbi2050/motabea-scheduling-api/pkg/database"
	"github.com/faisalalharbi2050/motabea-scheduling-api/pkg/logger"
	corsmiddleware "github.com/faisalalharbi2050/motabea-scheduling-api/pkg/middleware/cors"
	reqidmiddleware "github.com/faisalalharbi2050/motabea-scheduling-api/pkg/middleware/requestid"
)

// @title Motabea Scheduling API
// @version 0.1.0
// @description Substitute coverage allocation and timetable conflict resolution
// @BasePath /api/v1
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

	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	db, err := database.NewPostgres(cfg.Database)
	if err != nil {
		logr.Fatal("failed to connect to postgres", zap.Error(err))
	}
	defer db.Close()

	var redisClient *redis.Client
	if client, err := cache.NewRedis(cfg.Redis); err != nil {
		logr.Warn("redis unavailable, board caching disabled", zap.Error(err))
	} else {
		redisClient = client
	}

	assigneeRepo := repository.NewAssigneeRepository(db)
	catalogRepo := repository.NewCatalogRepository(db)
	sessionRepo := repository.NewSessionRepository(db)
	coverageRepo := repository.NewCoverageRepository(db)
	operationRepo := repository.NewOperationRepository(db)
	cacheRepo := repository.NewCacheRepository(redisClient, logr)

	metricsSvc := service.NewMetricsService()
	tokenSvc := service.NewTokenService(cfg.JWT.Secret)
	exportSvc := service.NewExportService(nil, nil)

	coverageSvc := service.NewCoverageService(
		assigneeRepo, coverageRepo, assigneeRepo, db, nil, logr, metricsSvc,
		service.CoverageServiceConfig{
			DefaultAuxCapacity: cfg.Coverage.DefaultAuxCapacity,
			Strategy:           service.AllocationStrategy(cfg.Coverage.Strategy),
			BatchTTL:           cfg.Coverage.BatchTTL,
		},
	)

	timetableSvc := service.NewTimetableService(
		catalogRepo, sessionRepo, operationRepo, assigneeRepo, cacheRepo, db, nil, logr, metricsSvc,
		service.TimetableServiceConfig{
			Days:             cfg.Timetable.Days,
			PeriodsPerDay:    cfg.Timetable.PeriodsPerDay,
			FirstPeriodStart: cfg.Timetable.FirstPeriodStart,
			PeriodMinutes:    cfg.Timetable.PeriodMinutes,
			BreakMinutes:     cfg.Timetable.BreakMinutes,
			CacheTTL:         cfg.Timetable.CacheTTL,
			RepairIterations: cfg.Timetable.RepairIterations,
		},
	)

	coverageHandler := handler.NewCoverageHandler(coverageSvc, exportSvc)
	timetableHandler := handler.NewTimetableHandler(timetableSvc, exportSvc)
	metricsHandler := handler.NewMetricsHandler(metricsSvc)

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr))
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))
	r.Use(middleware.Metrics(metricsSvc))

	r.GET("/health", metricsHandler.Health)
	r.GET("/ready", func(c *gin.Context) {
		if err := db.PingContext(c.Request.Context()); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "not ready"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ready"})
	})
	r.GET("/metrics", metricsHandler.Prometheus)

	if cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	api := r.Group(cfg.APIPrefix)
	api.Use(middleware.JWT(tokenSvc))

	scheduling := api.Group("")
	scheduling.Use(middleware.RequireRoles(models.UserRoleAdmin, models.UserRoleScheduler))

	coverage := scheduling.Group("/coverage/allocations")
	{
		coverage.POST("", coverageHandler.Allocate)
		coverage.GET("/:id", coverageHandler.Batch)
		coverage.POST("/assign", coverageHandler.AssignManual)
		coverage.POST("/hide", coverageHandler.Hide)
		coverage.POST("/confirm", coverageHandler.Confirm)
		coverage.GET("/:id/export/csv", coverageHandler.ExportCSV)
		coverage.GET("/:id/export/pdf", coverageHandler.ExportPDF)
	}

	timetable := api.Group("/timetable")
	{
		timetable.GET("/board", timetableHandler.Board)
		timetable.GET("/history", timetableHandler.History)
		timetable.GET("/export/csv", timetableHandler.ExportCSV)
		timetable.GET("/export/pdf", timetableHandler.ExportPDF)

		mutating := timetable.Group("")
		mutating.Use(middleware.RequireRoles(models.UserRoleAdmin, models.UserRoleScheduler))
		mutating.POST("/transfers", timetableHandler.RequestTransfer)
		mutating.POST("/transfers/confirm", timetableHandler.ConfirmTransfer)
		mutating.POST("/transfers/decline", timetableHandler.DeclineTransfer)
		mutating.POST("/regenerate", timetableHandler.Regenerate)
		mutating.POST("/undo", timetableHandler.Undo)
		mutating.DELETE("/history", timetableHandler.ClearHistory)
	}

	addr := fmt.Sprintf(":%d", cfg.Port)
	logr.Sugar().Infow("server starting", "addr", addr, "env", cfg.Env)
	if err := r.Run(addr); err != nil {
		logr.Sugar().Fatalw("server failed", "error", err)
	}
}
