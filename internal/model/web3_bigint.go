package model

import (
	"math"
	"math/big"
)

// Web3BigInt carries an on-chain token amount as a decimal string plus
// the token's decimal count, so JSON round-trips never lose precision.
type Web3BigInt struct {
	Value   string `json:"value"`
	Decimal int    `json:"decimal"`
}

// NewWeb3BigIntFromFloat converts a human-unit amount into the token's
// smallest unit. Fractions beyond the token's precision are truncated.
func NewWeb3BigIntFromFloat(amount float64, decimal int) *Web3BigInt {
	scaled := new(big.Float).Mul(
		new(big.Float).SetFloat64(amount),
		new(big.Float).SetFloat64(math.Pow(10, float64(decimal))),
	)

	value := new(big.Int)
	scaled.Int(value)

	return &Web3BigInt{
		Value:   value.String(),
		Decimal: decimal,
	}
}

// BigInt returns the raw smallest-unit value, or nil if the string is
// not a valid base-10 integer.
func (w *Web3BigInt) BigInt() *big.Int {
	num, ok := new(big.Int).SetString(w.Value, 10)
	if !ok {
		return nil
	}
	return num
}

// ToFloat converts back to human units. Precision past float64 is lost,
// which is acceptable for logging and status reporting.
func (w *Web3BigInt) ToFloat() float64 {
	num := new(big.Int)
	num.SetString(w.Value, 10)

	floatNum := new(big.Float).SetInt(num)
	divisor := new(big.Float).SetFloat64(math.Pow(10, float64(w.Decimal)))
	floatNum.Quo(floatNum, divisor)

	result, _ := floatNum.Float64()
	return result
}
