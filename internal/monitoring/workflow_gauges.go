package monitoring

import (
	"github.com/prometheus/client_golang/prometheus"

	"github.com/chrisjgf/ez-stablecoin/internal/model"
)

// WorkflowStatusGauges exposes the stored workflow status as Prometheus
// gauges so dashboards can watch a run progress without scraping logs.
type WorkflowStatusGauges struct {
	// Per-field value gauge
	statusValue *prometheus.GaugeVec

	// Live Base USDC balance of the hot wallet
	walletBalance prometheus.Gauge
}

// NewWorkflowStatusGauges creates a new instance of workflow status gauges
func NewWorkflowStatusGauges() *WorkflowStatusGauges {
	return &WorkflowStatusGauges{
		statusValue: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "ez_stablecoin_workflow_status_value",
				Help: "Current value of each workflow status field",
			},
			[]string{"field"},
		),

		walletBalance: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Name: "ez_stablecoin_wallet_usdc_base",
				Help: "Live USDC balance of the hot wallet on Base",
			},
		),
	}
}

// MustRegister registers all metrics with the provided registry
func (g *WorkflowStatusGauges) MustRegister(registry *prometheus.Registry) {
	registry.MustRegister(
		g.statusValue,
		g.walletBalance,
	)
}

// UpdateStatus refreshes the per-field gauges from a stored status row.
func (g *WorkflowStatusGauges) UpdateStatus(status *model.WorkflowStatus) {
	g.statusValue.WithLabelValues("gbp").Set(status.Gbp)
	g.statusValue.WithLabelValues("gbp_kraken").Set(status.GbpKraken)
	g.statusValue.WithLabelValues("usdc_kraken").Set(status.UsdcKraken)
	g.statusValue.WithLabelValues("usdc_op").Set(status.UsdcOp)
	g.statusValue.WithLabelValues("usdc_bridged").Set(status.UsdcBridged)
	g.statusValue.WithLabelValues("usdc_base").Set(status.UsdcBase)
}

// UpdateWalletBalance sets the live wallet balance gauge.
func (g *WorkflowStatusGauges) UpdateWalletBalance(balance float64) {
	g.walletBalance.Set(balance)
}
