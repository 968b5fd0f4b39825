package il

import (
	"math"
	"strings"

	"github.com/shopspring/decimal"

	"liquidityRisk/internal/model"
)

// ValuePosition prices both token amounts and sums them.
func ValuePosition(amounts model.TokenAmounts, prices model.PricePair) (model.ValuedAmounts, error) {
	amount0, err := parseAmount("amount0", amounts.Amount0)
	if err != nil {
		return model.ValuedAmounts{}, err
	}
	amount1, err := parseAmount("amount1", amounts.Amount1)
	if err != nil {
		return model.ValuedAmounts{}, err
	}
	return valueParsed(amounts, amount0, amount1, prices)
}

// valueParsed rejects amounts whose USD value overflows float64.
func valueParsed(raw model.TokenAmounts, amount0, amount1 float64, prices model.PricePair) (model.ValuedAmounts, error) {
	value0 := amount0 * prices.Price0
	if !isFinite(value0) {
		return model.ValuedAmounts{}, inputError(ErrInvalidAmount, "amount0", raw.Amount0)
	}
	value1 := amount1 * prices.Price1
	if !isFinite(value1) {
		return model.ValuedAmounts{}, inputError(ErrInvalidAmount, "amount1", raw.Amount1)
	}
	total := value0 + value1
	if !isFinite(total) {
		return model.ValuedAmounts{}, inputError(ErrInvalidAmount, "total value", total)
	}
	return model.ValuedAmounts{
		Amount0:       amount0,
		Amount1:       amount1,
		Value0USD:     value0,
		Value1USD:     value1,
		TotalValueUSD: total,
	}, nil
}

func parseAmount(field, value string) (float64, error) {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return 0, inputError(ErrInvalidAmount, field, value)
	}
	d, err := decimal.NewFromString(trimmed)
	if err != nil {
		return 0, inputError(ErrInvalidAmount, field, value)
	}
	f := d.InexactFloat64()
	if !isFinite(f) {
		return 0, inputError(ErrInvalidAmount, field, value)
	}
	return f, nil
}

func isFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
