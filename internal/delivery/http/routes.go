package http

import (
	"github.com/gin-gonic/gin"
	"github.com/tarkovlens/backend/config"
	"github.com/tarkovlens/backend/internal/domain"
)

// SetupRouter creates and configures the Gin router.
// limiter may be nil, in which case requests are not rate limited.
func SetupRouter(cfg *config.Config, handler *Handler, limiter domain.RateLimitStore) *gin.Engine {
	// Set Gin mode based on environment
	if cfg.Server.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()

	// Global middleware
	router.Use(RecoveryMiddleware())
	router.Use(RequestIDMiddleware())
	router.Use(LoggerMiddleware())
	router.Use(CORSMiddleware(cfg.Server.AllowedOrigins))

	// Health check endpoint
	router.GET("/health", handler.HealthCheck)

	// API v1 routes
	v1 := router.Group("/api/v1")
	if limiter != nil {
		v1.Use(RateLimitMiddleware(limiter))
	}
	{
		items := v1.Group("/items")
		{
			items.GET("/search", handler.SearchItem)
			items.POST("/lookup", handler.LookupBatch)
		}
	}

	return router
}
