package router

import (
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/ikkim/sangjo-partner-backend/config"
	"github.com/ikkim/sangjo-partner-backend/internal/app/controller"
	"github.com/ikkim/sangjo-partner-backend/internal/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/time/rate"
)

const (
	roleAdmin   = "admin"
	rolePartner = "partner"
)

type Router struct {
	authController        *controller.AuthController
	partnerController     *controller.PartnerController
	applicationController *controller.ApplicationController
	dashboardController   *controller.DashboardController
	settlementController  *controller.SettlementController
	catalogController     *controller.CatalogController
	uploadController      *controller.UploadController
	wsController          *controller.WSController
	systemController      *controller.SystemController
	authMiddleware        *middleware.AuthMiddleware
	config                *config.Config
}

func NewRouter(
	authController *controller.AuthController,
	partnerController *controller.PartnerController,
	applicationController *controller.ApplicationController,
	dashboardController *controller.DashboardController,
	settlementController *controller.SettlementController,
	catalogController *controller.CatalogController,
	uploadController *controller.UploadController,
	wsController *controller.WSController,
	systemController *controller.SystemController,
	authMiddleware *middleware.AuthMiddleware,
	cfg *config.Config,
) *Router {
	return &Router{
		authController:        authController,
		partnerController:     partnerController,
		applicationController: applicationController,
		dashboardController:   dashboardController,
		settlementController:  settlementController,
		catalogController:     catalogController,
		uploadController:      uploadController,
		wsController:          wsController,
		systemController:      systemController,
		authMiddleware:        authMiddleware,
		config:                cfg,
	}
}

func (r *Router) Setup() *gin.Engine {
	gin.SetMode(r.config.Server.GinMode)

	router := gin.New()

	router.Use(gin.Recovery())
	router.Use(middleware.LoggingMiddleware())
	router.Use(middleware.MetricsMiddleware())
	router.Use(corsMiddleware(r.config.CORS.AllowedOrigins))

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":  "healthy",
			"message": "Sangjo partner API is running",
		})
	})
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	// 로그인은 IP 당 분당 횟수, 공개 폼은 초당 토큰 버킷
	loginLimit := middleware.PerMinute(r.config.RateLimit.LoginPerMin).Middleware()
	publicLimit := middleware.NewRateLimiter(
		rate.Limit(r.config.RateLimit.PublicRPS),
		r.config.RateLimit.PublicBurst,
	).Middleware()

	authenticate := r.authMiddleware.Authenticate()
	adminOnly := r.authMiddleware.RequireRole(roleAdmin)
	anyRole := r.authMiddleware.RequireRole(rolePartner, roleAdmin)

	api := router.Group("/api")
	{
		api.GET("/ping", r.systemController.Ping)

		auth := api.Group("/auth")
		{
			auth.POST("/refresh", loginLimit, r.authController.Refresh)
			auth.POST("/logout", authenticate, r.authController.Logout)
		}

		center := api.Group("/partner-center")
		{
			center.POST("/login", loginLimit, r.authController.PartnerCenterLogin)
			center.GET("/me", authenticate, r.authController.Me)
			center.PUT("/profile", authenticate, r.authMiddleware.RequireRole(rolePartner), r.partnerController.UpdateProfile)
			center.GET("/dashboard-data", authenticate, anyRole, r.dashboardController.GetDashboardData)
			center.POST("/logo/presign", authenticate, anyRole, r.uploadController.PresignLogo)
		}

		admin := api.Group("/admin")
		{
			admin.POST("/login", loginLimit, r.authController.AdminLogin)

			protected := admin.Group("", authenticate, adminOnly)
			protected.GET("/partners", r.partnerController.ListPartners)
			protected.POST("/partners", r.partnerController.PartnerAction)
			protected.PUT("/partners", r.partnerController.UpdatePartner)
			protected.DELETE("/partners", r.partnerController.DeletePartner)
			protected.GET("/settlements", r.settlementController.ListSettlements)
			protected.GET("/applications/export", r.applicationController.Export)
			protected.GET("/init-sheets", r.systemController.InitSheetsStatus)
			protected.POST("/init-sheets", r.systemController.InitSheets)
			protected.POST("/sheets/sync", r.systemController.SyncSheets)
		}

		applications := api.Group("/applications")
		{
			applications.POST("", publicLimit, r.applicationController.CreateApplication)
			applications.GET("", authenticate, anyRole, r.applicationController.ListApplications)
			applications.PATCH("/:id/status", authenticate, anyRole, r.applicationController.UpdateStatus)
			applications.PATCH("/:id/assignee", authenticate, adminOnly, r.applicationController.UpdateAssignee)
			applications.GET("/:id/history", authenticate, anyRole, r.applicationController.History)
		}

		partners := api.Group("/partners")
		{
			partners.GET("/search", r.partnerController.SearchPartners)
			partners.GET("/:partnerId", r.partnerController.GetPublicPartner)
		}

		api.POST("/partner/apply", publicLimit, r.partnerController.Apply)
		api.GET("/catalog/products", r.catalogController.GetProducts)
		api.GET("/ws", authenticate, anyRole, r.wsController.Connect)
	}

	return router
}

// corsMiddleware "*" 이면 요청 Origin 을 그대로 돌려준다 (쿠키/Authorization 허용)
func corsMiddleware(allowedOrigins []string) gin.HandlerFunc {
	cfg := cors.Config{
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Content-Length", "Accept", "Authorization", "X-Requested-With", middleware.RequestIDHeader},
		ExposeHeaders:    []string{middleware.RequestIDHeader, "Content-Disposition"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}

	wildcard := len(allowedOrigins) == 0
	for _, o := range allowedOrigins {
		if o == "*" {
			wildcard = true
		}
	}
	if wildcard {
		cfg.AllowOriginFunc = func(string) bool { return true }
	} else {
		cfg.AllowOrigins = allowedOrigins
	}
	return cors.New(cfg)
}
