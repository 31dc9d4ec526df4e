package main

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"catalog-importer/internal/shared/middleware"
	"catalog-importer/internal/shared/response"
	"catalog-importer/pkg/container"
)

func SetupRouter(c *container.Container) *gin.Engine {
	router := gin.New()

	// Global middlewares
	router.Use(
		middleware.Recovery(),
		middleware.RequestID(),
		middleware.Logger(),
	)

	v1 := router.Group("/api/v1")
	{
		v1.GET("/health", healthCheckHandler(c))

		setupProductRoutes(v1, c)
		setupImportRoutes(v1, c)
	}

	return router
}

// ========================================
// PRODUCT ROUTES
// ========================================
func setupProductRoutes(v1 *gin.RouterGroup, c *container.Container) {
	products := v1.Group("/products")
	{
		products.GET("/:sku", c.ProductHandler.GetDetail)
	}
}

// ========================================
// ADMIN IMPORT ROUTES
// ========================================
func setupImportRoutes(v1 *gin.RouterGroup, c *container.Container) {
	imports := v1.Group("/admin/imports")
	imports.Use(
		middleware.AuthMiddleware(c.JWTManager),
		middleware.AdminMiddleware(),
	)
	{
		imports.POST("/start", c.ImportHandler.StartImport)
		imports.GET("/progress", c.ImportHandler.CheckProgress)
		imports.DELETE("/progress", c.ImportHandler.ResetProgress)
	}
}

// ========================================
// HEALTH
// ========================================
func healthCheckHandler(c *container.Container) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		checkCtx, cancel := context.WithTimeout(ctx.Request.Context(), 5*time.Second)
		defer cancel()

		status, healthy := c.HealthCheck(checkCtx)
		status["version"] = c.Config.App.Version

		if !healthy {
			response.ErrorWithDetails(ctx, http.StatusServiceUnavailable, "UNHEALTHY", "one or more dependencies are down", status)
			return
		}
		response.Success(ctx, http.StatusOK, status)
	}
}
