package main

import (
	"github.com/chrisjgf/ez-stablecoin/internal/baserpc"
	"github.com/chrisjgf/ez-stablecoin/internal/bridge/across"
	"github.com/chrisjgf/ez-stablecoin/internal/exchange/kraken"
	"github.com/chrisjgf/ez-stablecoin/internal/monitoring"
	"github.com/chrisjgf/ez-stablecoin/internal/orchestrator"
	"github.com/chrisjgf/ez-stablecoin/internal/statusclient"
	"github.com/chrisjgf/ez-stablecoin/internal/utils/config"
	"github.com/chrisjgf/ez-stablecoin/internal/utils/logger"
)

func main() {
	appConfig := config.New()
	logger := logger.New(appConfig.Environment)

	status := statusclient.New(appConfig, logger)

	krakenExchange, err := kraken.New(appConfig, logger)
	if err != nil {
		logger.Fatal("Failed to init kraken client", map[string]string{
			"error": err.Error(),
		})
	}

	acrossBridge, err := across.New(appConfig, logger)
	if err != nil {
		logger.Fatal("Failed to init across bridge", map[string]string{
			"error": err.Error(),
		})
	}

	baseRpc, err := baserpc.New(appConfig, logger)
	if err != nil {
		logger.Fatal("Failed to init base rpc", map[string]string{
			"error": err.Error(),
		})
	}

	metrics := monitoring.NewExternalAPIMetrics()
	exchange := monitoring.NewCircuitBreakerExchange(krakenExchange, monitoring.CircuitBreakerConfigs["kraken_api"], metrics, logger)
	base := monitoring.NewCircuitBreakerBaseRPC(baseRpc, monitoring.CircuitBreakerConfigs["base_rpc"], metrics, logger)

	o := orchestrator.New(appConfig, logger, status, exchange, acrossBridge, base)

	logger.Info("Starting transfer pipeline")
	if err := o.Run(); err != nil {
		logger.Fatal("Pipeline run failed", map[string]string{
			"error": err.Error(),
		})
	}
}
