package exchange

import (
	"time"

	"github.com/pkg/errors"
)

// ErrInvalidPrice marks a semantically invalid price in an otherwise
// well-formed exchange response. It is never retried.
var ErrInvalidPrice = errors.New("invalid price in exchange response")

// CreateOrderParams describes one order submission.
type CreateOrderParams struct {
	Pair      string
	Type      string // "buy" or "sell"
	OrderType string // "market", "limit", ...
	Volume    string
	Price     string // required for limit orders
	Validate  bool   // validate only, do not place
}

// IExchange is the capability set the pipeline needs from a centralized
// exchange. Poll methods keep retrying through transport errors and only
// fail on attempt exhaustion.
type IExchange interface {
	// FetchBalance returns per-asset balances keyed by the exchange's
	// asset codes, as decimal strings.
	FetchBalance() (map[string]string, error)

	// SwapGBPToUSDC sizes a market buy from the live ask price, places
	// it, and polls it to closure. Returns the executed price in GBP
	// per USDC.
	SwapGBPToUSDC(amountGBP float64) (float64, error)

	CreateOrder(params CreateOrderParams) (string, error)

	// PollOrderStatus returns the executed price once the order closes.
	PollOrderStatus(txid string, maxAttempts int, interval time.Duration) (float64, error)

	// Withdraw requests a withdrawal to a pre-registered key and
	// returns the exchange reference id.
	Withdraw(asset, key string, amount float64) (string, error)

	// PollWithdrawalStatus blocks until the withdrawal settles or the
	// attempt budget runs out.
	PollWithdrawalStatus(refid string, maxAttempts int, interval time.Duration) error
}
