package handler

import (
	"github.com/prometheus/client_golang/prometheus"
	"gorm.io/gorm"

	"github.com/chrisjgf/ez-stablecoin/internal/baserpc"
	"github.com/chrisjgf/ez-stablecoin/internal/handler/health"
	"github.com/chrisjgf/ez-stablecoin/internal/handler/metrics"
	"github.com/chrisjgf/ez-stablecoin/internal/handler/status"
	"github.com/chrisjgf/ez-stablecoin/internal/monitoring"
	"github.com/chrisjgf/ez-stablecoin/internal/store"
	"github.com/chrisjgf/ez-stablecoin/internal/utils/config"
	"github.com/chrisjgf/ez-stablecoin/internal/utils/logger"
)

type Handler struct {
	StatusHandler  status.IHandler
	HealthHandler  health.IHealthHandler
	MetricsHandler *metrics.MetricsHandler
}

func New(appConfig *config.AppConfig, logger *logger.Logger,
	baseRPC baserpc.IBaseRPC,
	db *gorm.DB,
	s *store.Store,
	httpMetrics *monitoring.HTTPMetrics,
	metricsRegistry *prometheus.Registry) *Handler {
	return &Handler{
		StatusHandler:  status.New(db, s, logger, monitoring.NewBusinessMetricsRecorder(httpMetrics)),
		HealthHandler:  health.New(appConfig, logger, db, baseRPC),
		MetricsHandler: metrics.NewMetricsHandler(metricsRegistry),
	}
}
