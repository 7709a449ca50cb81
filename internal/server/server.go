package server

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/robfig/cron/v3"

	"github.com/chrisjgf/ez-stablecoin/internal/baserpc"
	"github.com/chrisjgf/ez-stablecoin/internal/monitoring"
	"github.com/chrisjgf/ez-stablecoin/internal/store"
	pgstore "github.com/chrisjgf/ez-stablecoin/internal/store/postgres"
	"github.com/chrisjgf/ez-stablecoin/internal/telemetry"
	"github.com/chrisjgf/ez-stablecoin/internal/transport/http"
	"github.com/chrisjgf/ez-stablecoin/internal/utils/config"
	"github.com/chrisjgf/ez-stablecoin/internal/utils/logger"
)

func Init() {
	appConfig := config.New()
	logger := logger.New(appConfig.Environment)

	db := pgstore.New(appConfig, logger)

	s := store.New()
	baseRpc, err := baserpc.New(appConfig, logger)
	if err != nil {
		logger.Error("Failed to init base rpc", map[string]string{
			"error": err.Error(),
		})
		return
	}

	registry := prometheus.NewRegistry()
	gauges := monitoring.NewWorkflowStatusGauges()
	gauges.MustRegister(registry)

	t := telemetry.New(db, s, appConfig, logger, baseRpc, gauges)

	c := cron.New()
	c.AddFunc("@every 2m", func() {
		if err := t.SnapshotWorkflowStatus(); err != nil {
			logger.Error("Failed to snapshot workflow status", map[string]string{
				"error": err.Error(),
			})
		}
	})
	c.Start()

	httpServer := http.NewHttpServer(appConfig, logger, baseRpc, s, db, registry)

	httpServer.Run(":" + appConfig.ApiServer.Port)
}
