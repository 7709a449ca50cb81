package baserpc

import (
	"context"
	"crypto/ecdsa"
	"fmt"
	"math/big"
	"strings"
	"time"

	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/ethereum/go-ethereum/ethclient"
	"github.com/pkg/errors"

	"github.com/chrisjgf/ez-stablecoin/contracts/erc20"
	"github.com/chrisjgf/ez-stablecoin/internal/consts"
	"github.com/chrisjgf/ez-stablecoin/internal/model"
	"github.com/chrisjgf/ez-stablecoin/internal/utils/config"
	"github.com/chrisjgf/ez-stablecoin/internal/utils/logger"
)

const receiptWaitTimeout = 5 * time.Minute

type BaseRPC struct {
	appConfig     *config.AppConfig
	logger        *logger.Logger
	client        *ethclient.Client
	usdcInstance  *erc20.Erc20
	privateKey    *ecdsa.PrivateKey
	walletAddress common.Address
}

func New(appConfig *config.AppConfig, logger *logger.Logger) (IBaseRPC, error) {
	if appConfig.Blockchain.WalletPrivateKey == "" {
		return nil, errors.New("wallet private key is required")
	}

	client, err := ethclient.Dial(appConfig.Blockchain.BaseRPCEndpoint)
	if err != nil {
		return nil, errors.Wrap(err, "failed to dial base rpc")
	}

	usdcAddress := common.HexToAddress(consts.USDC_BASE_CONTRACT_ADDR)
	usdc, err := erc20.NewErc20(usdcAddress, client)
	if err != nil {
		return nil, err
	}

	privateKey, err := crypto.HexToECDSA(strings.TrimPrefix(appConfig.Blockchain.WalletPrivateKey, "0x"))
	if err != nil {
		return nil, errors.Wrap(err, "failed to parse wallet private key")
	}

	return &BaseRPC{
		appConfig:     appConfig,
		logger:        logger,
		client:        client,
		usdcInstance:  usdc,
		privateKey:    privateKey,
		walletAddress: crypto.PubkeyToAddress(privateKey.PublicKey),
	}, nil
}

func (b *BaseRPC) WalletAddress() string {
	return b.walletAddress.Hex()
}

func (b *BaseRPC) USDCBalanceOf(address string) (*model.Web3BigInt, error) {
	balance, err := b.usdcInstance.BalanceOf(&bind.CallOpts{}, common.HexToAddress(address))
	if err != nil {
		b.logger.Error("[USDCBalanceOf][BalanceOf]", map[string]string{
			"address": address,
			"error":   err.Error(),
		})
		return nil, err
	}

	return &model.Web3BigInt{
		Value:   balance.String(),
		Decimal: consts.USDC_DECIMALS,
	}, nil
}

func (b *BaseRPC) TransferUSDC(recipient string, amount *model.Web3BigInt) (*types.Receipt, error) {
	amountBig := amount.BigInt()
	if amountBig == nil {
		return nil, fmt.Errorf("malformed transfer amount: %q", amount.Value)
	}
	if amountBig.Sign() <= 0 {
		return nil, fmt.Errorf("transfer amount must be positive, got %s", amountBig.String())
	}

	opts, err := bind.NewKeyedTransactorWithChainID(b.privateKey, big.NewInt(consts.BASE_CHAIN_ID))
	if err != nil {
		return nil, errors.Wrap(err, "failed to build transactor")
	}

	tx, err := b.usdcInstance.Transfer(opts, common.HexToAddress(recipient), amountBig)
	if err != nil {
		b.logger.Error("[TransferUSDC][Transfer]", map[string]string{
			"recipient": recipient,
			"amount":    amountBig.String(),
			"error":     err.Error(),
		})
		return nil, err
	}

	b.logger.Info("[TransferUSDC] transfer submitted", map[string]string{
		"txHash":    tx.Hash().Hex(),
		"recipient": recipient,
		"amount":    amountBig.String(),
	})

	ctx, cancel := context.WithTimeout(context.Background(), receiptWaitTimeout)
	defer cancel()

	receipt, err := bind.WaitMined(ctx, b.client, tx)
	if err != nil {
		return nil, errors.Wrap(err, "failed waiting for transfer receipt")
	}
	if receipt.Status != types.ReceiptStatusSuccessful {
		return nil, fmt.Errorf("transfer transaction %s reverted", tx.Hash().Hex())
	}

	return receipt, nil
}
