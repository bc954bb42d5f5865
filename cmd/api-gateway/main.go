package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"

	_ "github.com/grace-stack/flock-api/api/swagger"
	"github.com/grace-stack/flock-api/internal/handler"
	"github.com/grace-stack/flock-api/internal/repository"
	"github.com/grace-stack/flock-api/internal/router"
	"github.com/grace-stack/flock-api/internal/service"
	"github.com/grace-stack/flock-api/pkg/cache"
	"github.com/grace-stack/flock-api/pkg/config"
	"github.com/grace-stack/flock-api/pkg/database"
	"github.com/grace-stack/flock-api/pkg/jobs"
	"github.com/grace-stack/flock-api/pkg/logger"
)

// @title Flock API
// @version 1.0.0
// @description Congregation attendance and engagement service
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

	db, err := database.NewPostgres(cfg.Database)
	if err != nil {
		logr.Sugar().Fatalw("database connection failed", "error", err)
	}
	defer db.Close()

	if cfg.Database.AutoMigrate {
		if err := database.Migrate(db); err != nil {
			logr.Sugar().Fatalw("migrations failed", "error", err)
		}
	}

	metrics := service.NewMetricsService()

	var cacheRepo *repository.CacheRepository
	redisClient, err := cache.NewRedis(cfg.Redis)
	if err != nil {
		logr.Sugar().Warnw("redis unavailable, caching disabled", "error", err)
	} else {
		cacheRepo = repository.NewCacheRepository(redisClient, logr)
		defer cacheRepo.Close()
	}
	cacheEnabled := cacheRepo != nil && cfg.Analytics.Enabled
	cacheSvc := service.NewCacheService(cacheRepo, metrics, cfg.Analytics.CacheTTL, logr, cacheEnabled)

	attendanceRepo := repository.NewAttendanceRepository(db)
	linkRepo := repository.NewLinkRepository(db)
	settingRepo := repository.NewSettingRepository(db)
	memberRepo := repository.NewMemberRepository(db)
	eventRepo := repository.NewServiceEventRepository(db)

	validate := validator.New()

	authSvc := service.NewAuthService(cfg.JWT.Secret)
	settingsSvc := service.NewSettingsService(settingRepo, cacheSvc, cfg.Attendance.SettingsCacheTTL, validate, logr)
	checkinSvc := service.NewCheckinService(attendanceRepo, linkRepo, memberRepo, settingsSvc, metrics, validate, logr)
	linkSvc := service.NewLinkService(linkRepo, cfg.Attendance.CheckinBaseURL, cfg.Attendance.LinkDefaultTTL, validate, logr)
	engagementSvc := service.NewEngagementService(attendanceRepo, memberRepo, eventRepo, cacheSvc, metrics, logr)
	exportSvc := service.NewExportService(attendanceRepo, logr)
	calendarSvc := service.NewCalendarService(eventRepo, validate, logr)
	memberSvc := service.NewMemberService(memberRepo, logr)

	notifier := service.NewLogNotifier(logr)
	followUpSvc := service.NewFollowUpService(engagementSvc, notifier, jobs.QueueConfig{
		Workers:    cfg.FollowUps.Workers,
		MaxRetries: cfg.FollowUps.MaxRetries,
		RetryDelay: cfg.FollowUps.RetryDelay,
		Logger:     logr,
	}, logr)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	followUpSvc.Start(ctx)
	defer followUpSvc.Stop()

	handlers := router.Handlers{
		Checkin:    handler.NewCheckinHandler(checkinSvc, engagementSvc),
		Links:      handler.NewLinkHandler(linkSvc),
		Engagement: handler.NewEngagementHandler(engagementSvc, followUpSvc, exportSvc),
		Settings:   handler.NewSettingsHandler(settingsSvc),
		Calendar:   handler.NewServiceEventHandler(calendarSvc),
		Members:    handler.NewMemberHandler(memberSvc),
		Metrics:    handler.NewMetricsHandler(metrics),
	}

	ready := func(c *gin.Context) {
		checkCtx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
		defer cancel()
		if err := db.PingContext(checkCtx); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "degraded", "database": "down"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ready"})
	}

	engine := router.New(cfg, logr, authSvc, metrics, handlers, ready)

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           engine,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logr.Sugar().Infow("server starting", "addr", srv.Addr, "env", cfg.Env)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logr.Sugar().Fatalw("server failed", "error", err)
		}
	}()

	<-ctx.Done()
	logr.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logr.Sugar().Errorw("graceful shutdown failed", "error", err)
	}
}
