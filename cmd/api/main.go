package main

import (
	"fmt"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	_ "github.com/mrsingh7112/campusmind-api/api/swagger"
	"github.com/mrsingh7112/campusmind-api/internal/handler"
	"github.com/mrsingh7112/campusmind-api/internal/middleware"
	"github.com/mrsingh7112/campusmind-api/internal/repository"
	"github.com/mrsingh7112/campusmind-api/internal/service"
	"github.com/mrsingh7112/campusmind-api/pkg/cache"
	"github.com/mrsingh7112/campusmind-api/pkg/config"
	"github.com/mrsingh7112/campusmind-api/pkg/database"
	"github.com/mrsingh7112/campusmind-api/pkg/logger"
	corsmiddleware "github.com/mrsingh7112/campusmind-api/pkg/middleware/cors"
	reqidmiddleware "github.com/mrsingh7112/campusmind-api/pkg/middleware/requestid"
)

// @title CampusMind API
// @version 1.0.0
// @description Campus administration timetable service
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

	db, err := database.NewPostgres(cfg.Database)
	if err != nil {
		logr.Sugar().Fatalw("failed to connect to postgres", "error", err)
	}
	defer db.Close()

	metricsSvc := service.NewMetricsService()

	var cacheSvc *service.CacheService
	if cfg.Redis.Host != "" {
		redisClient, err := cache.NewRedis(cfg.Redis)
		if err != nil {
			logr.Sugar().Warnw("redis unavailable, caching disabled", "error", err)
		} else {
			defer redisClient.Close()
			cacheRepo := repository.NewCacheRepository(redisClient, logr)
			cacheSvc = service.NewCacheService(cacheRepo, metricsSvc, cfg.Timetable.CacheTTL, logr, true)
		}
	}

	timetableSvc := service.NewTimetableService(
		repository.NewCourseRepository(db),
		repository.NewSubjectRepository(db),
		repository.NewFacultyRepository(db),
		repository.NewRoomRepository(db),
		repository.NewTimetableRepository(db),
		db,
		cacheSvc,
		metricsSvc,
		nil,
		logr,
		service.TimetableConfig{
			NonTeachingPositions: cfg.Timetable.NonTeachingPositions,
			LecturesPerSubject:   cfg.Timetable.LecturesPerSubject,
			VirtualFallback:      cfg.Timetable.VirtualFallback,
			CacheTTL:             cfg.Timetable.CacheTTL,
		},
	)
	timetableHandler := handler.NewTimetableHandler(timetableSvc)

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
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ready"})
	})

	r.GET("/metrics", gin.WrapH(metricsSvc.Handler()))

	if cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	api := r.Group(cfg.APIPrefix)
	{
		timetable := api.Group("/timetable")
		timetable.POST("/generate", timetableHandler.Generate)
		timetable.GET("", timetableHandler.Get)
		timetable.PUT("/slot", timetableHandler.EditSlot)
		timetable.GET("/export", timetableHandler.Export)
	}

	addr := fmt.Sprintf(":%d", cfg.Port)
	logr.Sugar().Infow("server starting", "addr", addr, "env", cfg.Env)
	if err := r.Run(addr); err != nil {
		logr.Sugar().Fatalw("server failed", "error", err)
	}
}
