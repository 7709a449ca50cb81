package kraken

import (
	"encoding/base64"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/chrisjgf/ez-stablecoin/internal/exchange"
	"github.com/chrisjgf/ez-stablecoin/internal/types/environments"
	"github.com/chrisjgf/ez-stablecoin/internal/utils/config"
	"github.com/chrisjgf/ez-stablecoin/internal/utils/logger"
	"github.com/chrisjgf/ez-stablecoin/internal/utils/poll"
)

var testSecret = base64.StdEncoding.EncodeToString([]byte("test-secret-material"))

func newTestClient(t *testing.T, apiURL string) exchange.IExchange {
	t.Helper()

	cfg := &config.AppConfig{
		Kraken: config.KrakenConfig{
			APIKey:    "test-key",
			APISecret: testSecret,
			APIURL:    apiURL,
		},
		Pipeline: config.PipelineConfig{
			OrderMaxAttempts:  5,
			OrderPollInterval: time.Millisecond,
		},
	}

	client, err := New(cfg, logger.New(environments.Test))
	require.NoError(t, err)
	return client
}

func TestNew_MissingCredentials(t *testing.T) {
	cfg := &config.AppConfig{}
	_, err := New(cfg, logger.New(environments.Test))
	assert.Error(t, err)
}

func TestNew_MalformedSecret(t *testing.T) {
	cfg := &config.AppConfig{
		Kraken: config.KrakenConfig{
			APIKey:    "test-key",
			APISecret: "%%% not base64 %%%",
		},
	}
	_, err := New(cfg, logger.New(environments.Test))
	assert.Error(t, err)
}

// Vector from Kraken's API documentation.
func TestSign_KnownVector(t *testing.T) {
	k := &kraken{
		apiSecret: "kQH5HW/8p1uGOVjbgWA7FunAmGO8lsSUXNsu3eow76sz84Q18fWxnyRzBHCd3pd5nE9qa99HAZtuZuj6F1huXg==",
	}

	signature, err := k.sign(
		"/0/private/AddOrder",
		"1616492376594",
		"nonce=1616492376594&ordertype=limit&pair=XBTUSD&price=37500&type=buy&volume=1.25",
	)

	require.NoError(t, err)
	assert.Equal(t, "4/dpxb3iT4tp/ZCVEwSnEsLxx0bqyhLpdfOpc6fn7OR8+UClSV5n9E6aSS8MPtnRfp32bAb0nmbRn6H8ndwLUQ==", signature)
}

func TestFetchBalance(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/0/private/Balance", r.URL.Path)
		assert.Equal(t, "test-key", r.Header.Get("API-Key"))
		assert.NotEmpty(t, r.Header.Get("API-Sign"))

		require.NoError(t, r.ParseForm())
		assert.NotEmpty(t, r.PostForm.Get("nonce"))

		fmt.Fprint(w, `{"error":[],"result":{"ZGBP":"1000.0000","USDC":"0.0000"}}`)
	}))
	defer server.Close()

	client := newTestClient(t, server.URL)

	balance, err := client.FetchBalance()
	require.NoError(t, err)
	assert.Equal(t, "1000.0000", balance["ZGBP"])
}

func TestFetchBalance_APIError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"error":["EAPI:Invalid key"],"result":{}}`)
	}))
	defer server.Close()

	client := newTestClient(t, server.URL)

	_, err := client.FetchBalance()
	assert.ErrorContains(t, err, "EAPI:Invalid key")
}

func TestPollOrderStatus_ClosesOnAttemptK(t *testing.T) {
	requestCount := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/0/private/QueryOrders", r.URL.Path)
		requestCount++

		if requestCount < 3 {
			fmt.Fprint(w, `{"error":[],"result":{"OABC-123":{"status":"open","price":"0.00000"}}}`)
			return
		}
		fmt.Fprint(w, `{"error":[],"result":{"OABC-123":{"status":"closed","price":"0.80000"}}}`)
	}))
	defer server.Close()

	client := newTestClient(t, server.URL)

	price, err := client.PollOrderStatus("OABC-123", 5, time.Millisecond)
	require.NoError(t, err)
	assert.Equal(t, 0.80, price)
	assert.Equal(t, 3, requestCount)
}

func TestPollOrderStatus_Exhaustion(t *testing.T) {
	requestCount := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requestCount++
		fmt.Fprint(w, `{"error":[],"result":{"OABC-123":{"status":"open","price":"0.00000"}}}`)
	}))
	defer server.Close()

	client := newTestClient(t, server.URL)

	_, err := client.PollOrderStatus("OABC-123", 5, time.Millisecond)
	assert.ErrorIs(t, err, poll.ErrExhausted)
	assert.Equal(t, 5, requestCount)
}

func TestPollOrderStatus_TransportErrorsConsumeBudget(t *testing.T) {
	requestCount := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requestCount++
		if requestCount == 1 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		fmt.Fprint(w, `{"error":[],"result":{"OABC-123":{"status":"closed","price":"0.80000"}}}`)
	}))
	defer server.Close()

	client := newTestClient(t, server.URL)

	price, err := client.PollOrderStatus("OABC-123", 5, time.Millisecond)
	require.NoError(t, err)
	assert.Equal(t, 0.80, price)
	assert.Equal(t, 2, requestCount)
}

func TestPollOrderStatus_InvalidExecutedPrice(t *testing.T) {
	requestCount := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requestCount++
		fmt.Fprint(w, `{"error":[],"result":{"OABC-123":{"status":"closed","price":"-1"}}}`)
	}))
	defer server.Close()

	client := newTestClient(t, server.URL)

	_, err := client.PollOrderStatus("OABC-123", 5, time.Millisecond)
	assert.ErrorIs(t, err, exchange.ErrInvalidPrice)
	assert.Equal(t, 1, requestCount, "data-integrity failures must not retry")
}

func TestSwapGBPToUSDC(t *testing.T) {
	var orderVolume string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/0/public/Ticker":
			assert.Equal(t, "USDCGBP", r.URL.Query().Get("pair"))
			fmt.Fprint(w, `{"error":[],"result":{"USDCGBP":{"a":["0.80000","1","1.000"],"b":["0.79000","1","1.000"],"c":["0.79500","0.5"]}}}`)
		case "/0/private/AddOrder":
			require.NoError(t, r.ParseForm())
			orderVolume = r.PostForm.Get("volume")
			assert.Equal(t, "market", r.PostForm.Get("ordertype"))
			assert.Equal(t, "buy", r.PostForm.Get("type"))
			assert.NotEmpty(t, r.PostForm.Get("cl_ord_id"))
			fmt.Fprint(w, `{"error":[],"result":{"txid":["OABC-123"],"descr":{"order":"buy 1250.000000 USDCGBP @ market"}}}`)
		case "/0/private/QueryOrders":
			fmt.Fprint(w, `{"error":[],"result":{"OABC-123":{"status":"closed","price":"0.80000"}}}`)
		default:
			t.Fatalf("unexpected path %s", r.URL.Path)
		}
	}))
	defer server.Close()

	client := newTestClient(t, server.URL)

	price, err := client.SwapGBPToUSDC(1000)
	require.NoError(t, err)
	assert.Equal(t, 0.80, price)
	assert.Equal(t, "1250.000000", orderVolume, "volume is amount/ask rounded to 6 decimal places")
}

func TestSwapGBPToUSDC_InvalidAskPrice(t *testing.T) {
	orderPlaced := false
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/0/public/Ticker":
			fmt.Fprint(w, `{"error":[],"result":{"USDCGBP":{"a":["0.00000","1","1.000"],"b":["0.79000","1","1.000"],"c":["0.79500","0.5"]}}}`)
		default:
			orderPlaced = true
		}
	}))
	defer server.Close()

	client := newTestClient(t, server.URL)

	_, err := client.SwapGBPToUSDC(1000)
	assert.ErrorIs(t, err, exchange.ErrInvalidPrice)
	assert.False(t, orderPlaced, "no order may be placed on a bad ask price")
}

func TestWithdraw(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/0/private/Withdraw", r.URL.Path)
		require.NoError(t, r.ParseForm())
		assert.Equal(t, "USDC", r.PostForm.Get("asset"))
		assert.Equal(t, "echo_intermediary_op", r.PostForm.Get("key"))
		assert.Equal(t, "1237.5", r.PostForm.Get("amount"))
		fmt.Fprint(w, `{"error":[],"result":{"refid":"W-REF-1"}}`)
	}))
	defer server.Close()

	client := newTestClient(t, server.URL)

	refid, err := client.Withdraw("USDC", "echo_intermediary_op", 1237.5)
	require.NoError(t, err)
	assert.Equal(t, "W-REF-1", refid)
}

func TestWithdraw_NoRefID(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"error":[],"result":{}}`)
	}))
	defer server.Close()

	client := newTestClient(t, server.URL)

	_, err := client.Withdraw("USDC", "echo_intermediary_op", 10)
	assert.Error(t, err)
}

func TestPollWithdrawalStatus_SettledIsCaseInsensitive(t *testing.T) {
	requestCount := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/0/private/WithdrawStatus", r.URL.Path)
		requestCount++
		fmt.Fprint(w, `{"error":[],"result":[{"refid":"W-REF-1","asset":"USDC","amount":"1237.5","status":"Settled"}]}`)
	}))
	defer server.Close()

	client := newTestClient(t, server.URL)

	err := client.PollWithdrawalStatus("W-REF-1", 5, time.Millisecond)
	require.NoError(t, err)
	assert.Equal(t, 1, requestCount)
}

func TestPollWithdrawalStatus_PendingThenSuccess(t *testing.T) {
	requestCount := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requestCount++
		if requestCount == 1 {
			fmt.Fprint(w, `{"error":[],"result":[{"refid":"W-REF-1","asset":"USDC","amount":"1237.5","status":"Pending"}]}`)
			return
		}
		fmt.Fprint(w, `{"error":[],"result":[{"refid":"W-REF-1","asset":"USDC","amount":"1237.5","status":"success"}]}`)
	}))
	defer server.Close()

	client := newTestClient(t, server.URL)

	err := client.PollWithdrawalStatus("W-REF-1", 5, time.Millisecond)
	require.NoError(t, err)
	assert.Equal(t, 2, requestCount)
}

func TestPollWithdrawalStatus_Exhaustion(t *testing.T) {
	requestCount := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requestCount++
		fmt.Fprint(w, `{"error":[],"result":[]}`)
	}))
	defer server.Close()

	client := newTestClient(t, server.URL)

	err := client.PollWithdrawalStatus("W-REF-1", 4, time.Millisecond)
	assert.ErrorIs(t, err, poll.ErrExhausted)
	assert.Equal(t, 4, requestCount)
}
