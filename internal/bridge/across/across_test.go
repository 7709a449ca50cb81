package across

import (
	"fmt"
	"math/big"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/chrisjgf/ez-stablecoin/internal/types/environments"
	"github.com/chrisjgf/ez-stablecoin/internal/utils/logger"
	"github.com/chrisjgf/ez-stablecoin/internal/utils/poll"
)

func newTestAdapter(apiURL string) *across {
	return &across{
		apiURL:          apiURL,
		httpClient:      &http.Client{},
		logger:          logger.New(environments.Test),
		fillMaxAttempts: 5,
		fillInterval:    time.Millisecond,
	}
}

func TestBridge_NonPositiveAmount(t *testing.T) {
	a := newTestAdapter("http://unused")

	// an input of exactly the exchange fee yields a zero bridge amount
	assert.Error(t, a.Bridge(0))
	assert.Error(t, a.Bridge(-2))
}

func TestGetQuote(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/suggested-fees", r.URL.Path)
		q := r.URL.Query()
		assert.Equal(t, "10", q.Get("originChainId"))
		assert.Equal(t, "8453", q.Get("destinationChainId"))
		assert.Equal(t, "1235500000", q.Get("amount"))

		fmt.Fprint(w, `{
			"totalRelayFee": {"pct": "100000000000000", "total": "123550"},
			"timestamp": "1711700000",
			"isAmountTooLow": false,
			"fillDeadline": "1711710800",
			"exclusivityDeadline": "0",
			"exclusiveRelayer": "0x0000000000000000000000000000000000000000"
		}`)
	}))
	defer server.Close()

	a := newTestAdapter(server.URL)

	quote, err := a.getQuote(big.NewInt(1235500000))
	require.NoError(t, err)
	assert.Equal(t, "123550", quote.TotalRelayFee.Total)
	assert.Equal(t, "1711700000", quote.Timestamp)
	assert.False(t, quote.IsAmountTooLow)
}

func TestGetQuote_HTTPError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		fmt.Fprint(w, `{"message":"invalid route"}`)
	}))
	defer server.Close()

	a := newTestAdapter(server.URL)

	_, err := a.getQuote(big.NewInt(1))
	assert.ErrorContains(t, err, "invalid route")
}

func TestPollFillStatus_FilledOnAttemptK(t *testing.T) {
	requestCount := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/deposit/status", r.URL.Path)
		assert.Equal(t, "42", r.URL.Query().Get("depositId"))
		requestCount++

		if requestCount < 3 {
			fmt.Fprint(w, `{"status":"pending"}`)
			return
		}
		fmt.Fprint(w, `{"status":"filled","fillTx":"0xabc"}`)
	}))
	defer server.Close()

	a := newTestAdapter(server.URL)

	err := a.pollFillStatus(big.NewInt(42))
	require.NoError(t, err)
	assert.Equal(t, 3, requestCount)
}

func TestPollFillStatus_Exhaustion(t *testing.T) {
	requestCount := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requestCount++
		fmt.Fprint(w, `{"status":"pending"}`)
	}))
	defer server.Close()

	a := newTestAdapter(server.URL)

	err := a.pollFillStatus(big.NewInt(42))
	assert.ErrorIs(t, err, poll.ErrExhausted)
	assert.Equal(t, 5, requestCount)
}

func TestPollFillStatus_ExpiredIsFatal(t *testing.T) {
	requestCount := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requestCount++
		fmt.Fprint(w, `{"status":"expired"}`)
	}))
	defer server.Close()

	a := newTestAdapter(server.URL)

	err := a.pollFillStatus(big.NewInt(42))
	assert.ErrorContains(t, err, "expired")
	assert.NotErrorIs(t, err, poll.ErrExhausted)
	assert.Equal(t, 1, requestCount)
}
