package health

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/ethereum/go-ethereum/core/types"
	"github.com/gin-gonic/gin"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/chrisjgf/ez-stablecoin/internal/model"
	"github.com/chrisjgf/ez-stablecoin/internal/types/environments"
	"github.com/chrisjgf/ez-stablecoin/internal/utils/config"
	"github.com/chrisjgf/ez-stablecoin/internal/utils/logger"
)

type stubBaseRPC struct {
	balanceErr error
	blockFor   time.Duration
}

func (s *stubBaseRPC) WalletAddress() string {
	return "0x1111111111111111111111111111111111111111"
}

func (s *stubBaseRPC) USDCBalanceOf(address string) (*model.Web3BigInt, error) {
	if s.blockFor > 0 {
		time.Sleep(s.blockFor)
	}
	if s.balanceErr != nil {
		return nil, s.balanceErr
	}
	return &model.Web3BigInt{Value: "1000000", Decimal: 6}, nil
}

func (s *stubBaseRPC) TransferUSDC(recipient string, amount *model.Web3BigInt) (*types.Receipt, error) {
	return nil, errors.New("not used")
}

func newHandler(baseRPC *stubBaseRPC) IHealthHandler {
	return New(
		&config.AppConfig{Environment: environments.Test},
		logger.New(environments.Test),
		nil,
		baseRPC,
	)
}

func performRequest(handler gin.HandlerFunc, path string) *httptest.ResponseRecorder {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.GET(path, handler)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	router.ServeHTTP(w, req)
	return w
}

func TestBasic(t *testing.T) {
	h := newHandler(&stubBaseRPC{})

	w := performRequest(h.Basic, "/healthz")
	require.Equal(t, http.StatusOK, w.Code)

	var resp BasicHealthResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "ok", resp.Message)
}

func TestDatabase_NilConnection(t *testing.T) {
	h := newHandler(&stubBaseRPC{})

	w := performRequest(h.Database, "/api/v1/health/db")
	require.Equal(t, http.StatusServiceUnavailable, w.Code)

	var resp HealthResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "unhealthy", resp.Status)
	assert.Equal(t, "database connection not available", resp.Checks["database"].Error)
}

func TestExternal_Healthy(t *testing.T) {
	h := newHandler(&stubBaseRPC{})

	w := performRequest(h.External, "/api/v1/health/external")
	require.Equal(t, http.StatusOK, w.Code)

	var resp HealthResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "healthy", resp.Status)
	assert.Equal(t, "healthy", resp.Checks["base_rpc"].Status)
}

func TestExternal_RPCFailure(t *testing.T) {
	h := newHandler(&stubBaseRPC{balanceErr: errors.New("connection refused")})

	w := performRequest(h.External, "/api/v1/health/external")
	require.Equal(t, http.StatusServiceUnavailable, w.Code)

	var resp HealthResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "unhealthy", resp.Status)
	assert.Equal(t, "connection refused", resp.Checks["base_rpc"].Error)
}
