package main

import (
	"context"
	"net/http"
	"time"

	"folio-backend/internal/shared/middleware"
	"folio-backend/pkg/container"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
)

func SetupRouter(c *container.Container) *gin.Engine {
	router := gin.New()

	router.Use(
		middleware.Recovery(),
		middleware.RequestID(),
		middleware.Logger(),
	)

	v1 := router.Group("/api/v1")
	{
		v1.GET("/health", healthCheckHandler(c))

		setupAuthRoutes(v1, c)
		setupAccountRoutes(v1, c)
		setupPortfolioRoutes(v1, c)
		setupUploadRoutes(v1, c)
		setupPublicRoutes(v1, c)
		setupWebhookRoutes(v1, c)
	}

	return router
}

// ========================================
// AUTH ROUTES
// ========================================
func setupAuthRoutes(v1 *gin.RouterGroup, c *container.Container) {
	auth := v1.Group("/auth")
	{
		auth.POST("/register", c.AccountHandler.Register)
		auth.POST("/login", c.AccountHandler.Login)
	}
}

// ========================================
// ACCOUNT ROUTES
// ========================================
func setupAccountRoutes(v1 *gin.RouterGroup, c *container.Container) {
	accounts := v1.Group("/accounts")
	accounts.Use(middleware.AuthMiddleware(c.JWTManager))
	{
		accounts.GET("/me", c.AccountHandler.GetMe)
		accounts.PATCH("/me", c.AccountHandler.PatchMe)
	}
}

// ========================================
// PORTFOLIO ROUTES
// ========================================
func setupPortfolioRoutes(v1 *gin.RouterGroup, c *container.Container) {
	portfolios := v1.Group("/portfolios")
	portfolios.Use(middleware.AuthMiddleware(c.JWTManager))
	{
		portfolios.POST("", c.PortfolioHandler.Create)
		portfolios.GET("", c.PortfolioHandler.List)
		portfolios.GET("/:id", c.PortfolioHandler.Get)
		portfolios.PATCH("/:id", c.PortfolioHandler.Patch)

		portfolios.GET("/:id/domain", c.DomainHandler.Status)
		portfolios.POST("/:id/domain/verify", middleware.RateLimit(c.VerifyLimit), c.DomainHandler.Verify)

		portfolios.GET("/:id/analytics", c.AnalyticsHandler.Summary)
		portfolios.GET("/:id/analytics/export", c.AnalyticsHandler.Export)
	}
}

// ========================================
// UPLOAD ROUTES
// ========================================
func setupUploadRoutes(v1 *gin.RouterGroup, c *container.Container) {
	v1.POST("/uploads", middleware.AuthMiddleware(c.JWTManager), c.UploadHandler.Upload)
}

// ========================================
// PUBLIC ROUTES (theme renderer, visitors)
// ========================================
func setupPublicRoutes(v1 *gin.RouterGroup, c *container.Container) {
	public := v1.Group("/public")
	{
		public.GET("/portfolios/slug/:slug", c.PublicHandler.BySlug)
		public.GET("/portfolios/domain/:domain", c.PublicHandler.ByDomain)
		public.POST("/analytics/:slug", c.AnalyticsHandler.Track)
	}
}

// ========================================
// WEBHOOK ROUTES
// ========================================
// Authenticated by provider signature, not JWT.
func setupWebhookRoutes(v1 *gin.RouterGroup, c *container.Container) {
	webhooks := v1.Group("/webhooks")
	{
		webhooks.POST("/stripe", c.WebhookHandler.Stripe)
		webhooks.POST("/razorpay", c.WebhookHandler.Razorpay)
	}
}

// ========================================
// HEALTH CHECK
// ========================================
func healthCheckHandler(appCtx *container.Container) gin.HandlerFunc {
	return healthHandler(appCtx.DB.HealthCheck, appCtx.Cache.Ping, appCtx.Config.App.Version, appCtx.Routing.Name())
}

// healthHandler reports dependency state without exposing error text;
// causes go to the log.
func healthHandler(db, redis func(context.Context) error, version, routing string) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
		defer cancel()

		status := "ok"
		dbStatus := "ok"
		if err := db(ctx); err != nil {
			log.Error().Err(err).Msg("[HEALTH] database check failed")
			dbStatus = "error"
			status = "degraded"
		}

		// Redis is optional; a failure degrades caching only.
		redisStatus := "ok"
		if err := redis(ctx); err != nil {
			log.Warn().Err(err).Msg("[HEALTH] redis check failed")
			redisStatus = "error"
		}

		statusCode := http.StatusOK
		if dbStatus != "ok" {
			statusCode = http.StatusServiceUnavailable
		}

		c.JSON(statusCode, gin.H{
			"status":    status,
			"timestamp": time.Now().UTC().Format(time.RFC3339),
			"version":   version,
			"routing":   routing,
			"services": gin.H{
				"database": dbStatus,
				"redis":    redisStatus,
			},
		})
	}
}
