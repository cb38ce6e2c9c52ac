package main

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"course-payments/internal/shared/middleware"
	"course-payments/pkg/container"
)

func SetupRouter(c *container.Container) *gin.Engine {
	router := gin.New()

	// Global middlewares
	router.Use(
		middleware.Recovery(),
		middleware.RequestID(),
		middleware.Logger(),
		middleware.CORS(c.Config.App.CORSOrigins),
	)

	v1 := router.Group("/api/v1")
	{
		v1.GET("/health", healthCheckHandler(c))

		setupPaymentRoutes(v1, c)
		setupWebhookRoutes(v1, c)
		setupAdminPaymentRoutes(v1, c)
	}

	return router
}

// ========================================
// PAYMENT ROUTES
// ========================================
func setupPaymentRoutes(v1 *gin.RouterGroup, c *container.Container) {
	payments := v1.Group("/payments")
	payments.Use(middleware.AuthMiddleware(c.JWTManager))
	{
		payments.POST("/initialize", c.PaymentHandler.Initialize)
		payments.GET("/verify/:reference", c.PaymentHandler.Verify)
		payments.GET("/status/:reference", c.PaymentHandler.GetStatus)
		payments.GET("/history", c.PaymentHandler.ListMyPayments)
		payments.GET("/:id", c.PaymentHandler.GetPayment)
		payments.POST("/:id/retry", c.PaymentHandler.Retry)
	}
}

// ========================================
// WEBHOOK ROUTES (no auth, HMAC signed)
// ========================================
func setupWebhookRoutes(v1 *gin.RouterGroup, c *container.Container) {
	webhooks := v1.Group("/webhooks")
	{
		webhooks.POST("/paystack", c.PaymentHandler.PaystackWebhook)
	}
}

// ========================================
// ADMIN PAYMENT ROUTES
// ========================================
func setupAdminPaymentRoutes(v1 *gin.RouterGroup, c *container.Container) {
	admin := v1.Group("/admin/payments")
	admin.Use(middleware.AuthMiddleware(c.JWTManager), middleware.AdminMiddleware())
	{
		admin.GET("", c.PaymentHandler.AdminListPayments)
		admin.GET("/stats", c.PaymentHandler.RevenueStats)
		admin.GET("/stats/export", c.PaymentHandler.ExportRevenueStats)
		admin.POST("/:id/cancel", c.PaymentHandler.CancelPayment)
	}
}

// ========================================
// HEALTH CHECK
// ========================================
func healthCheckHandler(c *container.Container) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		checkCtx, cancel := context.WithTimeout(ctx.Request.Context(), 3*time.Second)
		defer cancel()

		status := http.StatusOK
		checks := gin.H{"database": "ok", "redis": "ok"}

		if err := c.DB.HealthCheck(checkCtx); err != nil {
			status = http.StatusServiceUnavailable
			checks["database"] = err.Error()
		}
		if err := c.Redis.HealthCheck(checkCtx); err != nil {
			status = http.StatusServiceUnavailable
			checks["redis"] = err.Error()
		}

		ctx.JSON(status, gin.H{
			"status":  http.StatusText(status),
			"service": c.Config.App.Name,
			"version": c.Config.App.Version,
			"checks":  checks,
			"time":    time.Now().UTC().Format(time.RFC3339),
		})
	}
}
