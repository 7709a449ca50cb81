package across

import (
	"context"
	"crypto/ecdsa"
	"encoding/json"
	"fmt"
	"io"
	"math/big"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/ethereum/go-ethereum/ethclient"
	"github.com/pkg/errors"

	"github.com/chrisjgf/ez-stablecoin/contracts/erc20"
	"github.com/chrisjgf/ez-stablecoin/internal/bridge"
	"github.com/chrisjgf/ez-stablecoin/internal/consts"
	"github.com/chrisjgf/ez-stablecoin/internal/model"
	"github.com/chrisjgf/ez-stablecoin/internal/utils/config"
	"github.com/chrisjgf/ez-stablecoin/internal/utils/logger"
	"github.com/chrisjgf/ez-stablecoin/internal/utils/poll"
)

const (
	suggestedFeesPath = "/api/suggested-fees"
	depositStatusPath = "/api/deposit/status"

	fillMaxAttempts = 30
	fillInterval    = 10 * time.Second

	receiptWaitTimeout = 5 * time.Minute
)

// spokePoolABI covers the single SpokePool method the adapter calls.
const spokePoolABI = `[{"inputs":[{"internalType":"address","name":"depositor","type":"address"},{"internalType":"address","name":"recipient","type":"address"},{"internalType":"address","name":"inputToken","type":"address"},{"internalType":"address","name":"outputToken","type":"address"},{"internalType":"uint256","name":"inputAmount","type":"uint256"},{"internalType":"uint256","name":"outputAmount","type":"uint256"},{"internalType":"uint256","name":"destinationChainId","type":"uint256"},{"internalType":"address","name":"exclusiveRelayer","type":"address"},{"internalType":"uint32","name":"quoteTimestamp","type":"uint32"},{"internalType":"uint32","name":"fillDeadline","type":"uint32"},{"internalType":"uint32","name":"exclusivityDeadline","type":"uint32"},{"internalType":"bytes","name":"message","type":"bytes"}],"name":"depositV3","outputs":[],"stateMutability":"payable","type":"function"}]`

type across struct {
	apiURL     string
	httpClient *http.Client
	logger     *logger.Logger

	client        *ethclient.Client
	privateKey    *ecdsa.PrivateKey
	walletAddress common.Address
	spokePool     common.Address
	spokeContract *bind.BoundContract
	usdcOptimism  *erc20.Erc20

	fillMaxAttempts int
	fillInterval    time.Duration
}

func New(appConfig *config.AppConfig, logger *logger.Logger) (bridge.IBridge, error) {
	if appConfig.Blockchain.WalletPrivateKey == "" {
		return nil, errors.New("wallet private key is required")
	}

	client, err := ethclient.Dial(appConfig.Blockchain.OptimismRPCEndpoint)
	if err != nil {
		return nil, errors.Wrap(err, "failed to dial optimism rpc")
	}

	privateKey, err := crypto.HexToECDSA(strings.TrimPrefix(appConfig.Blockchain.WalletPrivateKey, "0x"))
	if err != nil {
		return nil, errors.Wrap(err, "failed to parse wallet private key")
	}

	usdcAddress := common.HexToAddress(consts.USDC_OPTIMISM_CONTRACT_ADDR)
	usdc, err := erc20.NewErc20(usdcAddress, client)
	if err != nil {
		return nil, err
	}

	parsedABI, err := abi.JSON(strings.NewReader(spokePoolABI))
	if err != nil {
		return nil, errors.Wrap(err, "failed to parse spoke pool abi")
	}

	spokePool := common.HexToAddress(appConfig.Blockchain.AcrossSpokePoolOpt)

	return &across{
		apiURL:        appConfig.Blockchain.AcrossAPIURL,
		httpClient:    &http.Client{Timeout: 30 * time.Second},
		logger:        logger,
		client:        client,
		privateKey:    privateKey,
		walletAddress: crypto.PubkeyToAddress(privateKey.PublicKey),
		spokePool:     spokePool,
		spokeContract: bind.NewBoundContract(spokePool, parsedABI, client, client, client),
		usdcOptimism:  usdc,

		fillMaxAttempts: fillMaxAttempts,
		fillInterval:    fillInterval,
	}, nil
}

// Bridge moves amount USDC from Optimism to Base along the fixed route:
// quote, then token approval, then the spoke pool deposit, then a
// bounded poll of the fill status.
func (a *across) Bridge(amount float64) error {
	if amount <= 0 {
		return fmt.Errorf("bridge amount must be positive, got %f", amount)
	}

	inputAmount := model.NewWeb3BigIntFromFloat(amount, consts.USDC_DECIMALS).BigInt()
	if inputAmount == nil {
		return errors.New("failed to convert bridge amount")
	}

	a.logger.Info("[Bridge] requesting quote", map[string]string{
		"amount":      strconv.FormatFloat(amount, 'f', -1, 64),
		"inputAmount": inputAmount.String(),
	})

	quote, err := a.getQuote(inputAmount)
	if err != nil {
		a.logger.Error("[Bridge][getQuote]", map[string]string{
			"error": err.Error(),
		})
		return err
	}

	if quote.IsAmountTooLow {
		return fmt.Errorf("bridge amount %s below the route minimum", inputAmount.String())
	}

	feeTotal, ok := new(big.Int).SetString(quote.TotalRelayFee.Total, 10)
	if !ok {
		return fmt.Errorf("malformed relay fee in quote: %q", quote.TotalRelayFee.Total)
	}
	outputAmount := new(big.Int).Sub(inputAmount, feeTotal)

	if err := a.approveIfNeeded(inputAmount); err != nil {
		a.logger.Error("[Bridge][approveIfNeeded]", map[string]string{
			"error": err.Error(),
		})
		return err
	}

	depositTx, err := a.deposit(quote, inputAmount, outputAmount)
	if err != nil {
		a.logger.Error("[Bridge][deposit]", map[string]string{
			"error": err.Error(),
		})
		return err
	}

	depositID, err := a.waitForDeposit(depositTx)
	if err != nil {
		return err
	}

	a.logger.Info("[Bridge] deposit successful", map[string]string{
		"txHash":    depositTx.Hash().Hex(),
		"depositId": depositID.String(),
	})

	if err := a.pollFillStatus(depositID); err != nil {
		return err
	}

	a.logger.Info("[Bridge] fill successful", map[string]string{
		"depositId": depositID.String(),
	})
	return nil
}

func (a *across) getQuote(inputAmount *big.Int) (*suggestedFeesResponse, error) {
	params := url.Values{}
	params.Set("inputToken", consts.USDC_OPTIMISM_CONTRACT_ADDR)
	params.Set("outputToken", consts.USDC_BASE_CONTRACT_ADDR)
	params.Set("originChainId", strconv.Itoa(consts.OPTIMISM_CHAIN_ID))
	params.Set("destinationChainId", strconv.Itoa(consts.BASE_CHAIN_ID))
	params.Set("amount", inputAmount.String())
	params.Set("recipient", a.walletAddress.Hex())

	resp, err := a.httpClient.Get(fmt.Sprintf("%s%s?%s", a.apiURL, suggestedFeesPath, params.Encode()))
	if err != nil {
		return nil, errors.Wrap(err, "failed to request quote")
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, errors.Wrap(err, "failed to read quote response")
	}

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("quote request failed: status %d, body: %s", resp.StatusCode, string(body))
	}

	var quote suggestedFeesResponse
	if err := json.Unmarshal(body, &quote); err != nil {
		return nil, errors.Wrap(err, "failed to parse quote response")
	}

	return &quote, nil
}

// approveIfNeeded is the first milestone: make sure the spoke pool may
// pull inputAmount USDC from the wallet.
func (a *across) approveIfNeeded(inputAmount *big.Int) error {
	allowance, err := a.usdcOptimism.Allowance(&bind.CallOpts{}, a.walletAddress, a.spokePool)
	if err != nil {
		return errors.Wrap(err, "failed to read allowance")
	}

	if allowance.Cmp(inputAmount) >= 0 {
		return nil
	}

	opts, err := a.transactOpts()
	if err != nil {
		return err
	}

	tx, err := a.usdcOptimism.Approve(opts, a.spokePool, inputAmount)
	if err != nil {
		return errors.Wrap(err, "failed to send approval")
	}

	ctx, cancel := context.WithTimeout(context.Background(), receiptWaitTimeout)
	defer cancel()

	receipt, err := bind.WaitMined(ctx, a.client, tx)
	if err != nil {
		return errors.Wrap(err, "failed waiting for approval receipt")
	}
	if receipt.Status != types.ReceiptStatusSuccessful {
		return fmt.Errorf("approval transaction %s reverted", tx.Hash().Hex())
	}

	a.logger.Info("[Bridge] token approval successful", map[string]string{
		"txHash": tx.Hash().Hex(),
	})
	return nil
}

func (a *across) deposit(quote *suggestedFeesResponse, inputAmount, outputAmount *big.Int) (*types.Transaction, error) {
	quoteTimestamp, err := parseUint32(quote.Timestamp)
	if err != nil {
		return nil, fmt.Errorf("malformed quote timestamp: %q", quote.Timestamp)
	}
	fillDeadline, err := parseUint32(quote.FillDeadline)
	if err != nil {
		return nil, fmt.Errorf("malformed fill deadline: %q", quote.FillDeadline)
	}

	// exclusivity is optional in the quote
	exclusivityDeadline := uint32(0)
	if quote.ExclusivityDeadline != "" {
		exclusivityDeadline, _ = parseUint32(quote.ExclusivityDeadline)
	}
	exclusiveRelayer := common.Address{}
	if quote.ExclusiveRelayer != "" {
		exclusiveRelayer = common.HexToAddress(quote.ExclusiveRelayer)
	}

	opts, err := a.transactOpts()
	if err != nil {
		return nil, err
	}

	return a.spokeContract.Transact(opts, "depositV3",
		a.walletAddress,
		a.walletAddress,
		common.HexToAddress(consts.USDC_OPTIMISM_CONTRACT_ADDR),
		common.HexToAddress(consts.USDC_BASE_CONTRACT_ADDR),
		inputAmount,
		outputAmount,
		big.NewInt(consts.BASE_CHAIN_ID),
		exclusiveRelayer,
		quoteTimestamp,
		fillDeadline,
		exclusivityDeadline,
		[]byte{},
	)
}

// waitForDeposit is the second milestone: wait for the deposit receipt
// and extract the deposit id from the spoke pool's event.
func (a *across) waitForDeposit(tx *types.Transaction) (*big.Int, error) {
	ctx, cancel := context.WithTimeout(context.Background(), receiptWaitTimeout)
	defer cancel()

	receipt, err := bind.WaitMined(ctx, a.client, tx)
	if err != nil {
		// A receipt that never shows up may still land later. Dispatch a
		// detached re-check purely for diagnostics; the in-flight call
		// still fails.
		go a.recheckReceipt(tx.Hash())
		return nil, errors.Wrap(err, "failed waiting for deposit receipt")
	}
	if receipt.Status != types.ReceiptStatusSuccessful {
		return nil, fmt.Errorf("deposit transaction %s reverted", tx.Hash().Hex())
	}

	for _, log := range receipt.Logs {
		if log.Address == a.spokePool && len(log.Topics) >= 3 {
			// depositId is the second indexed topic of V3FundsDeposited
			return log.Topics[2].Big(), nil
		}
	}

	return nil, fmt.Errorf("no deposit event in receipt for %s", tx.Hash().Hex())
}

func (a *across) recheckReceipt(txHash common.Hash) {
	time.Sleep(30 * time.Second)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	receipt, err := a.client.TransactionReceipt(ctx, txHash)
	if err != nil {
		a.logger.Error("[Bridge][recheckReceipt] deposit transaction still not found", map[string]string{
			"txHash": txHash.Hex(),
			"error":  err.Error(),
		})
		return
	}

	a.logger.Info("[Bridge][recheckReceipt] deposit transaction found after all", map[string]string{
		"txHash": txHash.Hex(),
		"block":  receipt.BlockNumber.String(),
	})
}

// pollFillStatus is the third milestone: wait for a relayer to fill the
// deposit on Base.
func (a *across) pollFillStatus(depositID *big.Int) error {
	return poll.Until(poll.Config{MaxAttempts: a.fillMaxAttempts, Interval: a.fillInterval}, func(attempt int) (bool, error) {
		params := url.Values{}
		params.Set("originChainId", strconv.Itoa(consts.OPTIMISM_CHAIN_ID))
		params.Set("depositId", depositID.String())

		resp, err := a.httpClient.Get(fmt.Sprintf("%s%s?%s", a.apiURL, depositStatusPath, params.Encode()))
		if err != nil {
			a.logger.Error("[Bridge][pollFillStatus]", map[string]string{
				"attempt": strconv.Itoa(attempt),
				"error":   err.Error(),
			})
			return false, err
		}
		defer resp.Body.Close()

		body, err := io.ReadAll(resp.Body)
		if err != nil {
			return false, err
		}
		if resp.StatusCode != http.StatusOK {
			return false, fmt.Errorf("deposit status request failed: status %d", resp.StatusCode)
		}

		var status depositStatusResponse
		if err := json.Unmarshal(body, &status); err != nil {
			return false, err
		}

		if status.Status == "expired" {
			return false, poll.Fatal(fmt.Errorf("deposit %s expired before fill", depositID.String()))
		}

		a.logger.Info("[Bridge][pollFillStatus]", map[string]string{
			"depositId": depositID.String(),
			"attempt":   strconv.Itoa(attempt),
			"status":    status.Status,
		})
		return status.Status == "filled", nil
	})
}

func (a *across) transactOpts() (*bind.TransactOpts, error) {
	opts, err := bind.NewKeyedTransactorWithChainID(a.privateKey, big.NewInt(consts.OPTIMISM_CHAIN_ID))
	if err != nil {
		return nil, errors.Wrap(err, "failed to build transactor")
	}
	return opts, nil
}

func parseUint32(s string) (uint32, error) {
	v, err := strconv.ParseUint(s, 10, 32)
	if err != nil {
		return 0, err
	}
	return uint32(v), nil
}
