package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewWeb3BigIntFromFloat(t *testing.T) {
	tests := []struct {
		name    string
		amount  float64
		decimal int
		want    string
	}{
		{
			name:    "whole USDC amount",
			amount:  1235.5,
			decimal: 6,
			want:    "1235500000",
		},
		{
			name:    "sub-unit fraction is truncated",
			amount:  0.0000019,
			decimal: 6,
			want:    "1",
		},
		{
			name:    "zero",
			amount:  0,
			decimal: 6,
			want:    "0",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := NewWeb3BigIntFromFloat(tt.amount, tt.decimal)
			assert.Equal(t, tt.want, got.Value)
			assert.Equal(t, tt.decimal, got.Decimal)
		})
	}
}

func TestWeb3BigInt_ToFloat(t *testing.T) {
	w := &Web3BigInt{Value: "1237500000", Decimal: 6}
	assert.InDelta(t, 1237.5, w.ToFloat(), 1e-9)
}

func TestWeb3BigInt_BigInt_Invalid(t *testing.T) {
	w := &Web3BigInt{Value: "not-a-number", Decimal: 6}
	assert.Nil(t, w.BigInt())
}
