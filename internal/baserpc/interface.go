package baserpc

import (
	"github.com/ethereum/go-ethereum/core/types"

	"github.com/chrisjgf/ez-stablecoin/internal/model"
)

type IBaseRPC interface {
	// WalletAddress is the address derived from the configured key.
	WalletAddress() string

	// USDCBalanceOf reads the USDC balance of an address on Base.
	USDCBalanceOf(address string) (*model.Web3BigInt, error)

	// TransferUSDC sends amount (smallest units) to the recipient and
	// waits for the transaction receipt.
	TransferUSDC(recipient string, amount *model.Web3BigInt) (*types.Receipt, error)
}
