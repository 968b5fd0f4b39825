package dex

import (
	"fmt"
	"math/big"
)

var q96 = new(big.Int).Lsh(big.NewInt(1), 96)

// priceFromSqrtX96 converts a V3 sqrtPriceX96 into the price of token0 in
// token1 units, adjusted for token decimals.
func priceFromSqrtX96(sqrtPriceX96 *big.Int, decimals0, decimals1 uint8) (*big.Rat, error) {
	if sqrtPriceX96 == nil || sqrtPriceX96.Sign() <= 0 {
		return nil, fmt.Errorf("invalid sqrtPriceX96: %v", sqrtPriceX96)
	}
	num := new(big.Int).Mul(sqrtPriceX96, sqrtPriceX96)
	den := new(big.Int).Mul(q96, q96)
	return scaleDecimals(new(big.Rat).SetFrac(num, den), decimals0, decimals1), nil
}

// priceFromReserves converts V2 reserves into the price of token0 in
// token1 units, adjusted for token decimals.
func priceFromReserves(reserve0, reserve1 *big.Int, decimals0, decimals1 uint8) (*big.Rat, error) {
	if reserve0 == nil || reserve1 == nil || reserve0.Sign() <= 0 || reserve1.Sign() < 0 {
		return nil, fmt.Errorf("invalid reserves: %v/%v", reserve0, reserve1)
	}
	return scaleDecimals(new(big.Rat).SetFrac(reserve1, reserve0), decimals0, decimals1), nil
}

func scaleDecimals(raw *big.Rat, decimals0, decimals1 uint8) *big.Rat {
	if decimals0 == decimals1 {
		return raw
	}
	if decimals0 > decimals1 {
		factor := new(big.Int).Exp(big.NewInt(10), big.NewInt(int64(decimals0-decimals1)), nil)
		return raw.Mul(raw, new(big.Rat).SetInt(factor))
	}
	factor := new(big.Int).Exp(big.NewInt(10), big.NewInt(int64(decimals1-decimals0)), nil)
	return raw.Quo(raw, new(big.Rat).SetInt(factor))
}
