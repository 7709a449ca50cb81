package telemetry

import (
	"fmt"
	"strconv"

	"gorm.io/gorm"

	"github.com/chrisjgf/ez-stablecoin/internal/baserpc"
	"github.com/chrisjgf/ez-stablecoin/internal/model"
	"github.com/chrisjgf/ez-stablecoin/internal/monitoring"
	"github.com/chrisjgf/ez-stablecoin/internal/store"
	"github.com/chrisjgf/ez-stablecoin/internal/utils/config"
	"github.com/chrisjgf/ez-stablecoin/internal/utils/logger"
)

type Telemetry struct {
	db        *gorm.DB
	store     *store.Store
	appConfig *config.AppConfig
	logger    *logger.Logger
	baseRpc   baserpc.IBaseRPC
	gauges    *monitoring.WorkflowStatusGauges
}

func New(db *gorm.DB, store *store.Store, appConfig *config.AppConfig, logger *logger.Logger, baseRpc baserpc.IBaseRPC, gauges *monitoring.WorkflowStatusGauges) ITelemetry {
	return &Telemetry{
		db:        db,
		store:     store,
		appConfig: appConfig,
		logger:    logger,
		baseRpc:   baseRpc,
		gauges:    gauges,
	}
}

// SnapshotWorkflowStatus logs the stored workflow status next to the
// wallet's live Base balance and refreshes the status gauges. Runs on a
// cron tick; the log stream is the audit trail for stuck runs.
func (t *Telemetry) SnapshotWorkflowStatus() error {
	status, err := t.store.WorkflowStatus.Get(t.db)
	if err != nil {
		t.logger.Error("[SnapshotWorkflowStatus][WorkflowStatus.Get]", map[string]string{
			"error": err.Error(),
		})
		return err
	}
	t.gauges.UpdateStatus(status)

	fields := map[string]string{
		"gbp":         strconv.FormatFloat(status.Gbp, 'f', -1, 64),
		"gbpKraken":   strconv.FormatFloat(status.GbpKraken, 'f', -1, 64),
		"usdcKraken":  strconv.FormatFloat(status.UsdcKraken, 'f', -1, 64),
		"usdcOp":      strconv.FormatFloat(status.UsdcOp, 'f', -1, 64),
		"usdcBridged": strconv.FormatFloat(status.UsdcBridged, 'f', -1, 64),
		"usdcBase":    strconv.FormatFloat(status.UsdcBase, 'f', -1, 64),
	}

	if balance, err := t.baseRpc.USDCBalanceOf(t.baseRpc.WalletAddress()); err != nil {
		t.logger.Error("[SnapshotWorkflowStatus][USDCBalanceOf]", map[string]string{
			"error": err.Error(),
		})
	} else {
		t.gauges.UpdateWalletBalance(balance.ToFloat())
		fields["walletUsdcBase"] = fmt.Sprintf("%f", balance.ToFloat())
	}

	if stage := stuckStage(status); stage != "" {
		fields["stuckStage"] = stage
		t.logger.Error("[SnapshotWorkflowStatus] run appears stalled", fields)
		return nil
	}

	t.logger.Info("[SnapshotWorkflowStatus] workflow status", fields)
	return nil
}

// stuckStage names the earliest stage whose output is missing while a
// later precondition is already met. A fresh or completed run returns "".
func stuckStage(status *model.WorkflowStatus) string {
	if status.Gbp == 0 {
		return ""
	}
	if status.UsdcBase > 0 {
		return ""
	}
	switch {
	case status.GbpKraken == 0:
		return "awaiting_exchange_credit"
	case status.UsdcKraken == 0:
		return "swapping"
	case status.UsdcOp == 0:
		return "withdrawing"
	case status.UsdcBridged == 0:
		return "bridging"
	default:
		return "delivering"
	}
}
