package model

import "errors"

// ErrPoolNotFound is returned when a pool address cannot be resolved.
var ErrPoolNotFound = errors.New("pool not found")

// Position identifies a tracked liquidity position.
type Position struct {
	ID          string       `json:"id"`
	PoolAddress string       `json:"pool_address"`
	Amounts     TokenAmounts `json:"amounts"`
}

// PoolPrices are the current prices of a pool's two assets.
type PoolPrices struct {
	Address     string  `json:"address"`
	Price0      float64 `json:"price0"`
	Price1      float64 `json:"price1"`
	BlockNumber uint64  `json:"block_number,omitempty"`
}

// Pair returns the prices as a PricePair.
func (p PoolPrices) Pair() PricePair {
	return PricePair{Price0: p.Price0, Price1: p.Price1}
}
