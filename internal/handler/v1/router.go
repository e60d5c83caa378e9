package v1

import (
	"net/http"

	"github.com/clearhaven/claimdesk/internal/config"
	"github.com/clearhaven/claimdesk/internal/service"
	"github.com/clearhaven/claimdesk/pkg/auth"
	"github.com/clearhaven/claimdesk/pkg/metrics"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type RouterDeps struct {
	Config     *config.Config
	Logger     *zap.Logger
	DB         *gorm.DB
	JWTManager *auth.JWTManager
	Metrics    *metrics.Collector

	AuthService       *service.AuthService
	ClaimService      *service.ClaimService
	AnnotationService *service.AnnotationService
	DashboardService  *service.DashboardService
	ImportService     *service.ImportService
}

func NewRouter(deps RouterDeps) *gin.Engine {
	if deps.Config.App.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(requestLogger(deps.Logger))
	router.Use(metricsMiddleware(deps.Metrics))
	router.Use(corsMiddleware(deps.Config.CORS))
	router.Use(rateLimitMiddleware(deps.Config.RateLimit.RequestsPerSecond, deps.Config.RateLimit.BurstSize))

	router.GET("/healthz", func(c *gin.Context) {
		sqlDB, err := deps.DB.DB()
		if err != nil || sqlDB.PingContext(c.Request.Context()) != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "degraded"})
			return
		}
		c.JSON(http.StatusOK, gin.H{
			"status":  "ok",
			"version": deps.Config.App.Version,
		})
	})

	router.GET("/metrics", gin.WrapH(metrics.MetricsHandler()))

	authHandler := NewAuthHandler(deps.AuthService)
	claimHandler := NewClaimHandler(deps.ClaimService)
	annotationHandler := NewAnnotationHandler(deps.AnnotationService)
	dashboardHandler := NewDashboardHandler(deps.DashboardService)
	uploadHandler := NewUploadHandler(deps.ImportService, deps.Config.Import)

	api := router.Group("/api/v1")

	authGroup := api.Group("/auth")
	authGroup.Use(authRateLimitMiddleware(deps.Config.RateLimit.AuthRequestsPerMinute))
	{
		authGroup.POST("/login", authHandler.Login)
		authGroup.POST("/refresh", authHandler.Refresh)
	}

	protected := api.Group("")
	protected.Use(requireAuth(deps.JWTManager))
	{
		protected.POST("/auth/change-password", authHandler.ChangePassword)

		protected.GET("/claims", claimHandler.List)
		protected.GET("/claims/search", claimHandler.Search)
		protected.GET("/claims/insurers", claimHandler.Insurers)
		protected.GET("/claims/:claim_id", claimHandler.Get)

		protected.POST("/claims/:claim_id/flags", annotationHandler.AddFlag)
		protected.POST("/claims/:claim_id/notes", annotationHandler.AddNote)
		protected.DELETE("/flags/:id", annotationHandler.RemoveFlag)

		protected.GET("/dashboard", dashboardHandler.Get)

		protected.POST("/uploads", uploadHandler.Import)
		protected.GET("/uploads", uploadHandler.Recent)
	}

	return router
}
