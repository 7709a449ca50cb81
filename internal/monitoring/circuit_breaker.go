package monitoring

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/ethereum/go-ethereum/core/types"
	"github.com/sony/gobreaker"

	"github.com/chrisjgf/ez-stablecoin/internal/baserpc"
	"github.com/chrisjgf/ez-stablecoin/internal/exchange"
	"github.com/chrisjgf/ez-stablecoin/internal/model"
	"github.com/chrisjgf/ez-stablecoin/internal/utils/logger"
)

// CircuitBreakerExchange wraps exchange.IExchange with circuit breaker
// functionality. Single-shot calls go through the breaker with a request
// timeout; long-running composites (swap, polls) carry their own attempt
// budget and pass straight through.
type CircuitBreakerExchange struct {
	wrapped        exchange.IExchange
	circuitBreaker *gobreaker.CircuitBreaker
	metrics        *ExternalAPIMetrics
	logger         *logger.Logger
	timeoutConfig  TimeoutConfig
}

// CircuitBreakerBaseRPC wraps baserpc.IBaseRPC with circuit breaker functionality
type CircuitBreakerBaseRPC struct {
	wrapped        baserpc.IBaseRPC
	circuitBreaker *gobreaker.CircuitBreaker
	metrics        *ExternalAPIMetrics
	logger         *logger.Logger
	timeoutConfig  TimeoutConfig
}

// NewCircuitBreakerExchange creates a new circuit breaker wrapper for the exchange
func NewCircuitBreakerExchange(wrapped exchange.IExchange, config CircuitBreakerConfig, metrics *ExternalAPIMetrics, logger *logger.Logger) *CircuitBreakerExchange {
	return NewCircuitBreakerExchangeWithTimeout(wrapped, config, DefaultTimeoutConfig, metrics, logger)
}

// NewCircuitBreakerExchangeWithTimeout creates a new circuit breaker wrapper for the exchange with custom timeout config
func NewCircuitBreakerExchangeWithTimeout(wrapped exchange.IExchange, config CircuitBreakerConfig, timeoutConfig TimeoutConfig, metrics *ExternalAPIMetrics, logger *logger.Logger) *CircuitBreakerExchange {
	cb := &CircuitBreakerExchange{
		wrapped:       wrapped,
		metrics:       metrics,
		logger:        logger,
		timeoutConfig: timeoutConfig,
	}

	settings := gobreaker.Settings{
		Name:        "kraken_api",
		MaxRequests: config.MaxRequests,
		Interval:    config.Interval,
		Timeout:     config.Timeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= uint32(config.ConsecutiveFailureThreshold)
		},
		OnStateChange: func(name string, from gobreaker.State, to gobreaker.State) {
			logger.Info("Circuit breaker state change", map[string]string{
				"service": name,
				"from":    from.String(),
				"to":      to.String(),
			})
			metrics.UpdateCircuitBreakerState("kraken_api", to)
		},
	}

	cb.circuitBreaker = gobreaker.NewCircuitBreaker(settings)
	return cb
}

// NewCircuitBreakerBaseRPC creates a new circuit breaker wrapper for Base RPC
func NewCircuitBreakerBaseRPC(wrapped baserpc.IBaseRPC, config CircuitBreakerConfig, metrics *ExternalAPIMetrics, logger *logger.Logger) *CircuitBreakerBaseRPC {
	return NewCircuitBreakerBaseRPCWithTimeout(wrapped, config, DefaultTimeoutConfig, metrics, logger)
}

// NewCircuitBreakerBaseRPCWithTimeout creates a new circuit breaker wrapper for Base RPC with custom timeout config
func NewCircuitBreakerBaseRPCWithTimeout(wrapped baserpc.IBaseRPC, config CircuitBreakerConfig, timeoutConfig TimeoutConfig, metrics *ExternalAPIMetrics, logger *logger.Logger) *CircuitBreakerBaseRPC {
	cb := &CircuitBreakerBaseRPC{
		wrapped:       wrapped,
		metrics:       metrics,
		logger:        logger,
		timeoutConfig: timeoutConfig,
	}

	settings := gobreaker.Settings{
		Name:        "base_rpc",
		MaxRequests: config.MaxRequests,
		Interval:    config.Interval,
		Timeout:     config.Timeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= uint32(config.ConsecutiveFailureThreshold)
		},
		OnStateChange: func(name string, from gobreaker.State, to gobreaker.State) {
			logger.Info("Circuit breaker state change", map[string]string{
				"service": name,
				"from":    from.String(),
				"to":      to.String(),
			})
			metrics.UpdateCircuitBreakerState("base_rpc", to)
		},
	}

	cb.circuitBreaker = gobreaker.NewCircuitBreaker(settings)
	return cb
}

// executeWithTimeout executes a function with timeout and metrics recording
func (cb *CircuitBreakerExchange) executeWithTimeout(operation string, fn func() (interface{}, error)) (interface{}, error) {
	start := time.Now()

	var timeout time.Duration
	switch operation {
	case "health_check":
		timeout = cb.timeoutConfig.HealthCheckTimeout
	default:
		timeout = cb.timeoutConfig.RequestTimeout
	}

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	done := make(chan struct{})
	var result interface{}
	var err error

	go func() {
		defer close(done)
		result, err = fn()
	}()

	select {
	case <-done:
		duration := time.Since(start).Seconds()
		status := "success"
		if err != nil {
			status = "error"
			cb.logError("kraken_api", operation, duration, err)
		}
		cb.metrics.RecordAPICall("kraken_api", operation, status, duration)
		return result, err

	case <-ctx.Done():
		cb.metrics.RecordTimeout("kraken_api", operation)
		cb.logError("kraken_api", operation, time.Since(start).Seconds(), ctx.Err())
		return nil, fmt.Errorf("timeout: %v", ctx.Err())
	}
}

// executeWithTimeout executes a function with timeout and metrics recording for Base RPC
func (cb *CircuitBreakerBaseRPC) executeWithTimeout(operation string, fn func() (interface{}, error)) (interface{}, error) {
	start := time.Now()

	var timeout time.Duration
	switch operation {
	case "health_check":
		timeout = cb.timeoutConfig.HealthCheckTimeout
	default:
		timeout = cb.timeoutConfig.RequestTimeout
	}

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	done := make(chan struct{})
	var result interface{}
	var err error

	go func() {
		defer close(done)
		result, err = fn()
	}()

	select {
	case <-done:
		duration := time.Since(start).Seconds()
		status := "success"
		if err != nil {
			status = "error"
			cb.logError("base_rpc", operation, duration, err)
		}
		cb.metrics.RecordAPICall("base_rpc", operation, status, duration)
		return result, err

	case <-ctx.Done():
		cb.metrics.RecordTimeout("base_rpc", operation)
		cb.logError("base_rpc", operation, time.Since(start).Seconds(), ctx.Err())
		return nil, fmt.Errorf("timeout: %v", ctx.Err())
	}
}

// Exchange Methods with Circuit Breaker

func (cb *CircuitBreakerExchange) FetchBalance() (map[string]string, error) {
	result, err := cb.circuitBreaker.Execute(func() (interface{}, error) {
		return cb.executeWithTimeout("fetch_balance", func() (interface{}, error) {
			return cb.wrapped.FetchBalance()
		})
	})

	if err != nil {
		return nil, err
	}

	return result.(map[string]string), nil
}

func (cb *CircuitBreakerExchange) CreateOrder(params exchange.CreateOrderParams) (string, error) {
	result, err := cb.circuitBreaker.Execute(func() (interface{}, error) {
		return cb.executeWithTimeout("create_order", func() (interface{}, error) {
			return cb.wrapped.CreateOrder(params)
		})
	})

	if err != nil {
		return "", err
	}

	return result.(string), nil
}

func (cb *CircuitBreakerExchange) Withdraw(asset, key string, amount float64) (string, error) {
	result, err := cb.circuitBreaker.Execute(func() (interface{}, error) {
		return cb.executeWithTimeout("withdraw", func() (interface{}, error) {
			return cb.wrapped.Withdraw(asset, key, amount)
		})
	})

	if err != nil {
		return "", err
	}

	return result.(string), nil
}

// SwapGBPToUSDC is a composite of order placement and status polling; it
// runs for minutes and must not trip on the breaker's request timeout.
func (cb *CircuitBreakerExchange) SwapGBPToUSDC(amountGBP float64) (float64, error) {
	return cb.wrapped.SwapGBPToUSDC(amountGBP)
}

func (cb *CircuitBreakerExchange) PollOrderStatus(txid string, maxAttempts int, interval time.Duration) (float64, error) {
	return cb.wrapped.PollOrderStatus(txid, maxAttempts, interval)
}

func (cb *CircuitBreakerExchange) PollWithdrawalStatus(refid string, maxAttempts int, interval time.Duration) error {
	return cb.wrapped.PollWithdrawalStatus(refid, maxAttempts, interval)
}

// Base RPC Methods with Circuit Breaker

func (cb *CircuitBreakerBaseRPC) WalletAddress() string {
	return cb.wrapped.WalletAddress()
}

func (cb *CircuitBreakerBaseRPC) USDCBalanceOf(address string) (*model.Web3BigInt, error) {
	result, err := cb.circuitBreaker.Execute(func() (interface{}, error) {
		return cb.executeWithTimeout("usdc_balance_of", func() (interface{}, error) {
			return cb.wrapped.USDCBalanceOf(address)
		})
	})

	if err != nil {
		return nil, err
	}

	return result.(*model.Web3BigInt), nil
}

// TransferUSDC waits for the transaction receipt, which can take longer
// than the request timeout. Only the breaker applies, not the timeout.
func (cb *CircuitBreakerBaseRPC) TransferUSDC(recipient string, amount *model.Web3BigInt) (*types.Receipt, error) {
	start := time.Now()
	result, err := cb.circuitBreaker.Execute(func() (interface{}, error) {
		return cb.wrapped.TransferUSDC(recipient, amount)
	})

	duration := time.Since(start).Seconds()
	if err != nil {
		cb.logError("base_rpc", "transfer_usdc", duration, err)
		cb.metrics.RecordAPICall("base_rpc", "transfer_usdc", "error", duration)
		return nil, err
	}

	cb.metrics.RecordAPICall("base_rpc", "transfer_usdc", "success", duration)
	return result.(*types.Receipt), nil
}

// Helper functions

func (cb *CircuitBreakerExchange) logError(service, operation string, duration float64, err error) {
	cb.logger.Error("External API call failed", map[string]string{
		"service":    service,
		"operation":  operation,
		"duration":   strconv.FormatFloat(duration, 'f', 3, 64),
		"error":      err.Error(),
		"error_type": string(classifyError(err)),
		"cb_state":   cb.circuitBreaker.State().String(),
	})
}

func (cb *CircuitBreakerBaseRPC) logError(service, operation string, duration float64, err error) {
	cb.logger.Error("External API call failed", map[string]string{
		"service":    service,
		"operation":  operation,
		"duration":   strconv.FormatFloat(duration, 'f', 3, 64),
		"error":      err.Error(),
		"error_type": string(classifyError(err)),
		"cb_state":   cb.circuitBreaker.State().String(),
	})
}

// classifyError classifies errors into different types for metrics and logging
func classifyError(err error) APIErrorType {
	if err == nil {
		return ""
	}

	errMsg := strings.ToLower(err.Error())

	// Timeout errors
	if strings.Contains(errMsg, "timeout") ||
		strings.Contains(errMsg, "deadline exceeded") ||
		strings.Contains(errMsg, "context canceled") {
		return ErrorTypeTimeout
	}

	// Network errors
	if strings.Contains(errMsg, "network") ||
		strings.Contains(errMsg, "connection") ||
		strings.Contains(errMsg, "unreachable") ||
		strings.Contains(errMsg, "dns") {
		return ErrorTypeNetworkError
	}

	// Server errors (5xx)
	if strings.Contains(errMsg, "500") ||
		strings.Contains(errMsg, "502") ||
		strings.Contains(errMsg, "503") ||
		strings.Contains(errMsg, "504") ||
		strings.Contains(errMsg, "internal server error") ||
		strings.Contains(errMsg, "bad gateway") ||
		strings.Contains(errMsg, "service unavailable") ||
		strings.Contains(errMsg, "gateway timeout") {
		return ErrorTypeServerError
	}

	// Client errors (4xx)
	if strings.Contains(errMsg, "400") ||
		strings.Contains(errMsg, "401") ||
		strings.Contains(errMsg, "403") ||
		strings.Contains(errMsg, "404") ||
		strings.Contains(errMsg, "429") ||
		strings.Contains(errMsg, "bad request") ||
		strings.Contains(errMsg, "unauthorized") ||
		strings.Contains(errMsg, "forbidden") ||
		strings.Contains(errMsg, "not found") ||
		strings.Contains(errMsg, "rate limit") {
		return ErrorTypeClientError
	}

	return ErrorTypeUnknown
}
