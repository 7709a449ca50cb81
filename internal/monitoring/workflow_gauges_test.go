package monitoring

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/chrisjgf/ez-stablecoin/internal/model"
)

func TestWorkflowStatusGauges_UpdateStatus(t *testing.T) {
	gauges := NewWorkflowStatusGauges()
	registry := prometheus.NewRegistry()
	require.NotPanics(t, func() { gauges.MustRegister(registry) })

	gauges.UpdateStatus(&model.WorkflowStatus{
		Gbp:         1000,
		GbpKraken:   1000,
		UsdcKraken:  1237.5,
		UsdcOp:      1237.5,
		UsdcBridged: 1235.5,
	})

	assert.Equal(t, float64(1000), testutil.ToFloat64(gauges.statusValue.WithLabelValues("gbp")))
	assert.Equal(t, 1237.5, testutil.ToFloat64(gauges.statusValue.WithLabelValues("usdc_kraken")))
	assert.Equal(t, 1235.5, testutil.ToFloat64(gauges.statusValue.WithLabelValues("usdc_bridged")))
	assert.Equal(t, float64(0), testutil.ToFloat64(gauges.statusValue.WithLabelValues("usdc_base")))
}

func TestWorkflowStatusGauges_UpdateWalletBalance(t *testing.T) {
	gauges := NewWorkflowStatusGauges()

	gauges.UpdateWalletBalance(1235.5)
	assert.Equal(t, 1235.5, testutil.ToFloat64(gauges.walletBalance))

	gauges.UpdateWalletBalance(0)
	assert.Equal(t, float64(0), testutil.ToFloat64(gauges.walletBalance))
}
