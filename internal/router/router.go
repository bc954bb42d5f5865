package router

import (
	"net/http"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"

	"github.com/grace-stack/flock-api/internal/handler"
	"github.com/grace-stack/flock-api/internal/middleware"
	"github.com/grace-stack/flock-api/internal/models"
	"github.com/grace-stack/flock-api/internal/service"
	"github.com/grace-stack/flock-api/pkg/config"
	"github.com/grace-stack/flock-api/pkg/logger"
	corsmiddleware "github.com/grace-stack/flock-api/pkg/middleware/cors"
	reqidmiddleware "github.com/grace-stack/flock-api/pkg/middleware/requestid"
)

// Handlers groups every HTTP handler the router mounts.
type Handlers struct {
	Checkin    *handler.CheckinHandler
	Links      *handler.LinkHandler
	Engagement *handler.EngagementHandler
	Settings   *handler.SettingsHandler
	Calendar   *handler.ServiceEventHandler
	Members    *handler.MemberHandler
	Metrics    *handler.MetricsHandler
}

// New assembles the gin engine with middleware and the full route table.
func New(cfg *config.Config, logr *zap.Logger, auth *service.AuthService, metrics *service.MetricsService, h Handlers, ready gin.HandlerFunc) *gin.Engine {
	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr))
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))
	r.Use(middleware.Metrics(metrics))

	r.GET("/health", h.Metrics.Health)
	if ready != nil {
		r.GET("/ready", ready)
	} else {
		r.GET("/ready", func(c *gin.Context) {
			c.JSON(http.StatusOK, gin.H{"status": "ready"})
		})
	}
	r.GET("/metrics", h.Metrics.Prometheus)

	if cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	api := r.Group(cfg.APIPrefix)

	// Public: the streaming client reports sessions without a user token and
	// link landing pages resolve before the member signs in.
	api.POST("/attendance/online", h.Checkin.OnlineCheckIn)
	api.GET("/attendance/links/:token", h.Links.Resolve)

	authed := api.Group("", middleware.JWT(auth))
	{
		authed.GET("/attendance/me", h.Checkin.MyAttendance)
		authed.POST("/attendance/checkin", h.Checkin.SelfCheckIn)
		authed.POST("/attendance/links/:token/checkin", h.Checkin.LinkCheckIn)
		authed.GET("/services", h.Calendar.List)
	}

	staff := api.Group("", middleware.JWT(auth), middleware.RequireRoles(models.RoleAdmin, models.RoleStaff))
	{
		staff.POST("/attendance/manual", h.Checkin.ManualCheckIn)
		staff.GET("/attendance", h.Engagement.List)
		staff.GET("/attendance/analytics", h.Engagement.Stats)
		staff.GET("/attendance/absences", h.Engagement.Absences)
		staff.POST("/attendance/follow-ups", h.Engagement.DispatchFollowUps)
		staff.GET("/attendance/export", h.Engagement.Export)

		staff.POST("/attendance/links", h.Links.Issue)
		staff.GET("/attendance/links", h.Links.List)
		staff.DELETE("/attendance/links/:id", h.Links.Deactivate)

		staff.POST("/services", h.Calendar.Schedule)
		staff.GET("/members", h.Members.List)
		staff.GET("/members/:id", h.Members.Get)
	}

	admin := api.Group("", middleware.JWT(auth), middleware.RequireRoles(models.RoleAdmin))
	{
		admin.GET("/attendance/settings", h.Settings.Get)
		admin.PUT("/attendance/settings", h.Settings.Update)
	}

	return r
}
