package model

import "time"

// TokenAmounts holds raw position amounts as decimal strings.
type TokenAmounts struct {
	Amount0 string `json:"amount0"`
	Amount1 string `json:"amount1"`
}

// PricePair is the price of asset0 and asset1 at a point in time.
type PricePair struct {
	Price0 float64 `json:"price0"`
	Price1 float64 `json:"price1"`
}

// ValuedAmounts is a two-asset position priced in USD.
type ValuedAmounts struct {
	Amount0       float64 `json:"amount0"`
	Amount1       float64 `json:"amount1"`
	Value0USD     float64 `json:"value0_usd"`
	Value1USD     float64 `json:"value1_usd"`
	TotalValueUSD float64 `json:"total_value_usd"`
}

// Snapshot captures prices and valuation at one side of a calculation.
type Snapshot struct {
	Prices  PricePair     `json:"prices"`
	Ratio   float64       `json:"ratio"`
	Amounts ValuedAmounts `json:"amounts"`
}

// ILCalculation is the result of a single impermanent loss calculation.
// It is never modified after it is returned.
type ILCalculation struct {
	PositionID                string        `json:"position_id,omitempty"`
	PoolAddress               string        `json:"pool_address,omitempty"`
	Initial                   Snapshot      `json:"initial"`
	Current                   Snapshot      `json:"current"`
	PriceRatio                float64       `json:"price_ratio"`
	ImpermanentLossPercentage float64       `json:"impermanent_loss_percentage"`
	ImpermanentLossUSD        float64       `json:"impermanent_loss_usd"`
	HoldValueUSD              float64       `json:"hold_value_usd"`
	LiquidityValueUSD         float64       `json:"liquidity_value_usd"`
	DifferenceUSD             float64       `json:"difference_usd"`
	DifferencePercentage      float64       `json:"difference_percentage"`
	Duration                  time.Duration `json:"duration"`
	DurationDays              float64       `json:"duration_days"`
	AnnualizedIL              float64       `json:"annualized_il"`
	RiskLevel                 RiskLevel     `json:"risk_level"`
	Recommendations           []string      `json:"recommendations"`
	Warnings                  []string      `json:"warnings,omitempty"`
	CalculatedAt              time.Time     `json:"calculated_at"`
}
