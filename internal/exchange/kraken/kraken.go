package kraken

import (
	"crypto/hmac"
	"crypto/sha256"
	"crypto/sha512"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"

	"github.com/chrisjgf/ez-stablecoin/internal/consts"
	"github.com/chrisjgf/ez-stablecoin/internal/exchange"
	"github.com/chrisjgf/ez-stablecoin/internal/utils/config"
	"github.com/chrisjgf/ez-stablecoin/internal/utils/logger"
	"github.com/chrisjgf/ez-stablecoin/internal/utils/poll"
)

const (
	balancePath        = "/0/private/Balance"
	addOrderPath       = "/0/private/AddOrder"
	queryOrdersPath    = "/0/private/QueryOrders"
	withdrawPath       = "/0/private/Withdraw"
	withdrawStatusPath = "/0/private/WithdrawStatus"
	tickerPath         = "/0/public/Ticker"
)

type kraken struct {
	apiURL    string
	apiKey    string
	apiSecret string
	client    *http.Client
	logger    *logger.Logger

	orderMaxAttempts int
	orderInterval    time.Duration
}

func New(appConfig *config.AppConfig, logger *logger.Logger) (exchange.IExchange, error) {
	if appConfig.Kraken.APIKey == "" || appConfig.Kraken.APISecret == "" {
		return nil, errors.New("kraken api key and secret are required")
	}

	// fail on a malformed secret now rather than on the first signed call
	if _, err := base64.StdEncoding.DecodeString(appConfig.Kraken.APISecret); err != nil {
		return nil, errors.Wrap(err, "kraken api secret is not valid base64")
	}

	return &kraken{
		apiURL:           appConfig.Kraken.APIURL,
		apiKey:           appConfig.Kraken.APIKey,
		apiSecret:        appConfig.Kraken.APISecret,
		client:           &http.Client{Timeout: 30 * time.Second},
		logger:           logger,
		orderMaxAttempts: appConfig.Pipeline.OrderMaxAttempts,
		orderInterval:    appConfig.Pipeline.OrderPollInterval,
	}, nil
}

func generateNonce() string {
	return strconv.FormatInt(time.Now().UnixMilli(), 10)
}

// sign builds the API-Sign header: HMAC-SHA512 over path ++ SHA256(nonce
// ++ postData), keyed with the base64-decoded account secret.
func (k *kraken) sign(path, nonce, postData string) (string, error) {
	secret, err := base64.StdEncoding.DecodeString(k.apiSecret)
	if err != nil {
		return "", err
	}

	hash := sha256.Sum256([]byte(nonce + postData))

	mac := hmac.New(sha512.New, secret)
	mac.Write([]byte(path))
	mac.Write(hash[:])

	return base64.StdEncoding.EncodeToString(mac.Sum(nil)), nil
}

// privatePost signs and posts a form-encoded body to a private endpoint
// and decodes the response envelope. A non-empty error list counts as a
// failed call.
func privatePost[T any](k *kraken, path string, form url.Values) (T, error) {
	var zero T

	nonce := generateNonce()
	form.Set("nonce", nonce)
	postData := form.Encode()

	signature, err := k.sign(path, nonce, postData)
	if err != nil {
		return zero, errors.Wrap(err, "failed to sign request")
	}

	req, err := http.NewRequest("POST", k.apiURL+path, strings.NewReader(postData))
	if err != nil {
		return zero, errors.Wrap(err, "failed to create request")
	}
	req.Header.Set("API-Key", k.apiKey)
	req.Header.Set("API-Sign", signature)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := k.client.Do(req)
	if err != nil {
		return zero, errors.Wrap(err, "request failed")
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return zero, errors.Wrap(err, "failed to read response")
	}

	if resp.StatusCode != http.StatusOK {
		return zero, fmt.Errorf("status code: %d, body: %s", resp.StatusCode, string(body))
	}

	var envelope apiResponse[T]
	if err := json.Unmarshal(body, &envelope); err != nil {
		return zero, errors.Wrap(err, "failed to parse response")
	}

	if len(envelope.Error) > 0 {
		return zero, fmt.Errorf("kraken api error: %s", strings.Join(envelope.Error, ", "))
	}

	return envelope.Result, nil
}

func (k *kraken) FetchBalance() (map[string]string, error) {
	result, err := privatePost[balanceResult](k, balancePath, url.Values{})
	if err != nil {
		k.logger.Error("[FetchBalance]", map[string]string{
			"error": err.Error(),
		})
		return nil, err
	}
	return result, nil
}

// getAskPrice reads the current best ask for a pair from the public
// ticker endpoint.
func (k *kraken) getAskPrice(pair string) (float64, error) {
	resp, err := k.client.Get(fmt.Sprintf("%s%s?pair=%s", k.apiURL, tickerPath, pair))
	if err != nil {
		return 0, errors.Wrap(err, "failed to get ticker")
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return 0, errors.Wrap(err, "failed to read ticker response")
	}

	var envelope apiResponse[tickerResult]
	if err := json.Unmarshal(body, &envelope); err != nil {
		return 0, errors.Wrap(err, "failed to parse ticker response")
	}
	if len(envelope.Error) > 0 {
		return 0, fmt.Errorf("kraken ticker api error: %s", strings.Join(envelope.Error, ", "))
	}

	tickerData, ok := envelope.Result[pair]
	if !ok {
		return 0, fmt.Errorf("no ticker data for pair %s", pair)
	}

	askPrice, err := strconv.ParseFloat(tickerData.Ask[0], 64)
	if err != nil || askPrice <= 0 {
		// data-integrity failure, not a transport one: never retried
		return 0, exchange.ErrInvalidPrice
	}

	return askPrice, nil
}

func (k *kraken) CreateOrder(params exchange.CreateOrderParams) (string, error) {
	form := url.Values{}
	form.Set("pair", params.Pair)
	form.Set("type", params.Type)
	form.Set("ordertype", params.OrderType)
	form.Set("volume", params.Volume)
	form.Set("validate", strconv.FormatBool(params.Validate))
	form.Set("cl_ord_id", uuid.NewString())

	if params.Price != "" && (params.OrderType == "limit" || params.OrderType == "stop-loss" || params.OrderType == "take-profit") {
		form.Set("price", params.Price)
	}

	result, err := privatePost[addOrderResult](k, addOrderPath, form)
	if err != nil {
		k.logger.Error("[CreateOrder]", map[string]string{
			"pair":  params.Pair,
			"error": err.Error(),
		})
		return "", err
	}

	if len(result.TxID) == 0 {
		return "", errors.New("add order returned no txid")
	}

	txid := result.TxID[0]
	k.logger.Info("[CreateOrder] order placed", map[string]string{
		"txid":   txid,
		"pair":   params.Pair,
		"volume": params.Volume,
	})
	return txid, nil
}

func (k *kraken) PollOrderStatus(txid string, maxAttempts int, interval time.Duration) (float64, error) {
	var executedPrice float64

	err := poll.Until(poll.Config{MaxAttempts: maxAttempts, Interval: interval}, func(attempt int) (bool, error) {
		k.logger.Info("[PollOrderStatus] polling order", map[string]string{
			"txid":    txid,
			"attempt": strconv.Itoa(attempt),
		})

		form := url.Values{}
		form.Set("txid", txid)

		result, err := privatePost[queryOrdersResult](k, queryOrdersPath, form)
		if err != nil {
			// transport and api errors alike keep polling
			k.logger.Error("[PollOrderStatus][QueryOrders]", map[string]string{
				"txid":    txid,
				"attempt": strconv.Itoa(attempt),
				"error":   err.Error(),
			})
			return false, err
		}

		info, ok := result[txid]
		if !ok {
			k.logger.Error("[PollOrderStatus] order missing from response", map[string]string{
				"txid":    txid,
				"attempt": strconv.Itoa(attempt),
			})
			return false, nil
		}

		if info.Status != "closed" {
			k.logger.Info("[PollOrderStatus] order not yet closed", map[string]string{
				"txid":   txid,
				"status": info.Status,
			})
			return false, nil
		}

		price, err := strconv.ParseFloat(info.Price, 64)
		if err != nil || price <= 0 {
			return false, poll.Fatal(exchange.ErrInvalidPrice)
		}

		executedPrice = price
		return true, nil
	})
	if err != nil {
		k.logger.Error("[PollOrderStatus] order was not closed", map[string]string{
			"txid":  txid,
			"error": err.Error(),
		})
		return 0, err
	}

	k.logger.Info("[PollOrderStatus] order closed", map[string]string{
		"txid":  txid,
		"price": strconv.FormatFloat(executedPrice, 'f', -1, 64),
	})
	return executedPrice, nil
}

func (k *kraken) SwapGBPToUSDC(amountGBP float64) (float64, error) {
	askPrice, err := k.getAskPrice(consts.KRAKEN_PAIR_USDCGBP)
	if err != nil {
		k.logger.Error("[SwapGBPToUSDC][getAskPrice]", map[string]string{
			"error": err.Error(),
		})
		return 0, err
	}

	k.logger.Info("[SwapGBPToUSDC] current ask price", map[string]string{
		"askPrice": strconv.FormatFloat(askPrice, 'f', -1, 64),
	})

	// volume is expressed in USDC, rounded to Kraken's 6 decimal places
	volume := strconv.FormatFloat(amountGBP/askPrice, 'f', 6, 64)

	txid, err := k.CreateOrder(exchange.CreateOrderParams{
		Pair:      consts.KRAKEN_PAIR_USDCGBP,
		Type:      "buy",
		OrderType: "market",
		Volume:    volume,
	})
	if err != nil {
		return 0, err
	}

	return k.PollOrderStatus(txid, k.orderMaxAttempts, k.orderInterval)
}

func (k *kraken) Withdraw(asset, key string, amount float64) (string, error) {
	form := url.Values{}
	form.Set("asset", asset)
	form.Set("key", key)
	form.Set("amount", strconv.FormatFloat(amount, 'f', -1, 64))

	result, err := privatePost[withdrawResult](k, withdrawPath, form)
	if err != nil {
		k.logger.Error("[Withdraw]", map[string]string{
			"asset": asset,
			"error": err.Error(),
		})
		return "", err
	}

	if result.RefID == "" {
		return "", errors.New("withdraw returned no refid")
	}

	k.logger.Info("[Withdraw] withdrawal initiated", map[string]string{
		"refid": result.RefID,
		"asset": asset,
	})
	return result.RefID, nil
}

func (k *kraken) PollWithdrawalStatus(refid string, maxAttempts int, interval time.Duration) error {
	err := poll.Until(poll.Config{MaxAttempts: maxAttempts, Interval: interval}, func(attempt int) (bool, error) {
		k.logger.Info("[PollWithdrawalStatus] polling withdrawal", map[string]string{
			"refid":   refid,
			"attempt": strconv.Itoa(attempt),
		})

		form := url.Values{}
		form.Set("asset", consts.KRAKEN_ASSET_USDC)

		result, err := privatePost[[]withdrawStatusEntry](k, withdrawStatusPath, form)
		if err != nil {
			k.logger.Error("[PollWithdrawalStatus][WithdrawStatus]", map[string]string{
				"refid":   refid,
				"attempt": strconv.Itoa(attempt),
				"error":   err.Error(),
			})
			return false, err
		}

		for _, w := range result {
			if w.RefID != refid {
				continue
			}

			status := strings.ToLower(w.Status)
			if status == "success" || status == "settled" {
				return true, nil
			}

			k.logger.Info("[PollWithdrawalStatus] withdrawal not yet confirmed", map[string]string{
				"refid":  refid,
				"status": w.Status,
			})
			return false, nil
		}

		k.logger.Error("[PollWithdrawalStatus] no withdrawal with refid", map[string]string{
			"refid": refid,
		})
		return false, nil
	})
	if err != nil {
		k.logger.Error("[PollWithdrawalStatus] withdrawal was not confirmed", map[string]string{
			"refid": refid,
			"error": err.Error(),
		})
		return err
	}

	k.logger.Info("[PollWithdrawalStatus] withdrawal confirmed", map[string]string{
		"refid": refid,
	})
	return nil
}
