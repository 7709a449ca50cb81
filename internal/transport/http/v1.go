package http

import (
	"github.com/chrisjgf/ez-stablecoin/internal/handler"
	"github.com/chrisjgf/ez-stablecoin/internal/utils/config"
	"github.com/chrisjgf/ez-stablecoin/internal/utils/logger"
	"github.com/gin-gonic/gin"
)

func loadV1Routes(r *gin.Engine, h *handler.Handler, appConfig *config.AppConfig, logger *logger.Logger) {
	v1 := r.Group("/api/v1")

	status := v1.Group("/status")
	{
		status.GET("", h.StatusHandler.Get)
		status.POST("", h.StatusHandler.Merge)
		status.POST("/reset", h.StatusHandler.Reset)
	}

	health := v1.Group("/health")
	{
		health.GET("/db", h.HealthHandler.Database)
		health.GET("/external", h.HealthHandler.External)
	}

	// health check
	r.GET("/healthz", h.HealthHandler.Basic)

	// prometheus scrape endpoint
	r.GET("/metrics", h.MetricsHandler.Handler())
}
