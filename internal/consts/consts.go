package consts

const (
	OPTIMISM_CHAIN_ID = 10
	BASE_CHAIN_ID     = 8453

	// USDC uses 6 decimal places on both chains
	USDC_DECIMALS = 6

	USDC_OPTIMISM_CONTRACT_ADDR = "0x0b2C639c533813f4Aa9D7837CAf62653d097Ff85"
	USDC_BASE_CONTRACT_ADDR     = "0x833589fCD6eDb6E08f4c7C32D4f71b54bdA02913"

	// Kraken identifiers
	KRAKEN_PAIR_USDCGBP  = "USDCGBP"
	KRAKEN_ASSET_GBP     = "ZGBP"
	KRAKEN_ASSET_USDC    = "USDC"

	// Flat fee Kraken charges for a USDC withdrawal, in USDC
	KRAKEN_WITHDRAWAL_FEE_USDC = 2

	// Fraction of swap proceeds kept back to absorb slippage and fees
	SWAP_RESERVE_FACTOR = 0.99
)

// USDCContractAddr returns the USDC contract address for a supported
// chain id, or an empty string for anything else.
func USDCContractAddr(chainID int) string {
	switch chainID {
	case OPTIMISM_CHAIN_ID:
		return USDC_OPTIMISM_CONTRACT_ADDR
	case BASE_CHAIN_ID:
		return USDC_BASE_CONTRACT_ADDR
	}
	return ""
}
