package orchestrator

import (
	"context"
	"strconv"

	"github.com/pkg/errors"

	"github.com/chrisjgf/ez-stablecoin/internal/baserpc"
	"github.com/chrisjgf/ez-stablecoin/internal/bridge"
	"github.com/chrisjgf/ez-stablecoin/internal/consts"
	"github.com/chrisjgf/ez-stablecoin/internal/exchange"
	"github.com/chrisjgf/ez-stablecoin/internal/model"
	"github.com/chrisjgf/ez-stablecoin/internal/statusclient"
	"github.com/chrisjgf/ez-stablecoin/internal/utils/config"
	"github.com/chrisjgf/ez-stablecoin/internal/utils/logger"
	"github.com/chrisjgf/ez-stablecoin/internal/utils/poll"
	"github.com/chrisjgf/ez-stablecoin/internal/utils/webhook"
)

// Orchestrator drives one workflow run front to back. Stages run
// strictly in sequence; each stage blocks on its external condition and
// ends with a status merge. There is no rollback: a fatal stage error
// aborts the whole run.
type Orchestrator struct {
	appConfig *config.AppConfig
	logger    *logger.Logger
	status    statusclient.IStatusClient
	exchange  exchange.IExchange
	bridge    bridge.IBridge
	baseRpc   baserpc.IBaseRPC
	webhook   *webhook.Client
}

func New(
	appConfig *config.AppConfig,
	logger *logger.Logger,
	status statusclient.IStatusClient,
	exchange exchange.IExchange,
	bridge bridge.IBridge,
	baseRpc baserpc.IBaseRPC,
) *Orchestrator {
	return &Orchestrator{
		appConfig: appConfig,
		logger:    logger,
		status:    status,
		exchange:  exchange,
		bridge:    bridge,
		baseRpc:   baseRpc,
		webhook:   webhook.New(logger),
	}
}

// Run executes the full pipeline: wait for a deposit, wait for the
// exchange credit, swap, withdraw, bridge, deliver.
func (o *Orchestrator) Run() error {
	amount, err := o.status.WaitForDeposit()
	if err != nil {
		return err
	}

	// starting a fresh run: reset every downstream field so stale
	// status from a prior run cannot leak forward
	zero := model.Float64Ptr(0)
	if _, err := o.status.Merge(model.StatusUpdate{
		Gbp:         model.Float64Ptr(amount),
		GbpKraken:   zero,
		UsdcKraken:  zero,
		UsdcOp:      zero,
		UsdcBridged: zero,
		UsdcBase:    zero,
	}); err != nil {
		return errors.Wrap(err, "failed to record deposit")
	}

	if err := o.waitForExchangeCredit(amount); err != nil {
		return err
	}
	if _, err := o.status.Merge(model.StatusUpdate{GbpKraken: model.Float64Ptr(amount)}); err != nil {
		return errors.Wrap(err, "failed to record exchange credit")
	}

	usdAmount, err := o.swap(amount)
	if err != nil {
		return err
	}
	if _, err := o.status.Merge(model.StatusUpdate{UsdcKraken: model.Float64Ptr(usdAmount)}); err != nil {
		return errors.Wrap(err, "failed to record swap")
	}

	if err := o.withdraw(usdAmount); err != nil {
		return err
	}
	if _, err := o.status.Merge(model.StatusUpdate{UsdcOp: model.Float64Ptr(usdAmount)}); err != nil {
		return errors.Wrap(err, "failed to record withdrawal")
	}

	bridgedAmount, err := o.bridgeFunds(usdAmount)
	if err != nil {
		return err
	}
	if _, err := o.status.Merge(model.StatusUpdate{UsdcBridged: model.Float64Ptr(bridgedAmount)}); err != nil {
		return errors.Wrap(err, "failed to record bridge")
	}

	if err := o.deliver(); err != nil {
		return err
	}
	if _, err := o.status.Merge(model.StatusUpdate{UsdcBase: model.Float64Ptr(usdAmount)}); err != nil {
		return errors.Wrap(err, "failed to record delivery")
	}

	o.logger.Info("[Run] workflow complete")
	o.webhook.CallUptimeWebhook(context.Background(), o.appConfig.Pipeline.UptimeWebhookURL)
	return nil
}

// waitForExchangeCredit polls the exchange GBP balance until it covers
// the deposit. Unbounded: a bank transfer can take days to land, and a
// failed balance fetch only means "not yet".
func (o *Orchestrator) waitForExchangeCredit(amount float64) error {
	o.logger.Info("[waitForExchangeCredit] polling exchange balance", map[string]string{
		"required": strconv.FormatFloat(amount, 'f', -1, 64),
		"interval": o.appConfig.Pipeline.BalancePollInterval.String(),
	})

	return poll.Until(poll.Config{MaxAttempts: 0, Interval: o.appConfig.Pipeline.BalancePollInterval}, func(attempt int) (bool, error) {
		balances, err := o.exchange.FetchBalance()
		if err != nil {
			o.logger.Error("[waitForExchangeCredit] failed to fetch balance, trying again", map[string]string{
				"attempt": strconv.Itoa(attempt),
				"error":   err.Error(),
			})
			return false, err
		}

		balanceStr, ok := balances[consts.KRAKEN_ASSET_GBP]
		if !ok {
			balanceStr = "0"
		}
		balance, err := strconv.ParseFloat(balanceStr, 64)
		if err != nil {
			o.logger.Error("[waitForExchangeCredit] malformed balance", map[string]string{
				"balance": balanceStr,
				"error":   err.Error(),
			})
			return false, err
		}

		o.logger.Info("[waitForExchangeCredit] current GBP balance", map[string]string{
			"balance": balanceStr,
		})

		return balance >= amount, nil
	})
}

// swap converts the fiat amount to USDC and returns the proceeds after
// the reserve factor.
func (o *Orchestrator) swap(amount float64) (float64, error) {
	executedPrice, err := o.exchange.SwapGBPToUSDC(amount)
	if err != nil {
		o.logger.Error("[swap] swap failed", map[string]string{
			"error": err.Error(),
		})
		return 0, err
	}

	usdAmount := (1 / executedPrice) * amount * consts.SWAP_RESERVE_FACTOR

	o.logger.Info("[swap] swap executed", map[string]string{
		"executedPrice": strconv.FormatFloat(executedPrice, 'f', -1, 64),
		"usdAmount":     strconv.FormatFloat(usdAmount, 'f', -1, 64),
	})
	return usdAmount, nil
}

func (o *Orchestrator) withdraw(usdAmount float64) error {
	refid, err := o.exchange.Withdraw(
		consts.KRAKEN_ASSET_USDC,
		o.appConfig.Kraken.WithdrawalKey,
		usdAmount,
	)
	if err != nil {
		o.logger.Error("[withdraw] failed to initiate withdrawal", map[string]string{
			"error": err.Error(),
		})
		return err
	}

	return o.exchange.PollWithdrawalStatus(
		refid,
		o.appConfig.Pipeline.OrderMaxAttempts,
		o.appConfig.Pipeline.OrderPollInterval,
	)
}

// bridgeFunds moves the withdrawn USDC to Base, net of the flat
// exchange withdrawal fee.
func (o *Orchestrator) bridgeFunds(usdAmount float64) (float64, error) {
	bridgedAmount := usdAmount - consts.KRAKEN_WITHDRAWAL_FEE_USDC

	o.logger.Info("[bridgeFunds] bridging to Base", map[string]string{
		"amount": strconv.FormatFloat(bridgedAmount, 'f', -1, 64),
	})

	if err := o.bridge.Bridge(bridgedAmount); err != nil {
		o.logger.Error("[bridgeFunds] bridge failed", map[string]string{
			"error": err.Error(),
		})
		return 0, err
	}

	return bridgedAmount, nil
}

// deliver forwards the wallet's entire Base USDC balance to the
// recipient, not just the bridged amount, so any pre-existing balance
// is swept along.
func (o *Orchestrator) deliver() error {
	balance, err := o.baseRpc.USDCBalanceOf(o.baseRpc.WalletAddress())
	if err != nil {
		o.logger.Error("[deliver] failed to read balance", map[string]string{
			"error": err.Error(),
		})
		return err
	}

	o.logger.Info("[deliver] total USDC on Base", map[string]string{
		"balance": balance.Value,
	})

	receipt, err := o.baseRpc.TransferUSDC(o.appConfig.Blockchain.RecipientAddress, balance)
	if err != nil {
		o.logger.Error("[deliver] transfer failed", map[string]string{
			"error": err.Error(),
		})
		return err
	}

	o.logger.Info("[deliver] USDC sent", map[string]string{
		"txHash": receipt.TxHash.Hex(),
	})
	return nil
}
