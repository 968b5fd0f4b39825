package model

import "fmt"

// RiskLevel is the ordinal risk tier of a position or pool.
type RiskLevel int

const (
	RiskLow RiskLevel = iota
	RiskMedium
	RiskHigh
	RiskVeryHigh
)

var riskLevelNames = map[RiskLevel]string{
	RiskLow:      "LOW",
	RiskMedium:   "MEDIUM",
	RiskHigh:     "HIGH",
	RiskVeryHigh: "VERY_HIGH",
}

func (l RiskLevel) String() string {
	if name, ok := riskLevelNames[l]; ok {
		return name
	}
	return fmt.Sprintf("RiskLevel(%d)", int(l))
}

// MarshalText encodes the tier by name.
func (l RiskLevel) MarshalText() ([]byte, error) {
	name, ok := riskLevelNames[l]
	if !ok {
		return nil, fmt.Errorf("unknown risk level %d", int(l))
	}
	return []byte(name), nil
}

// UnmarshalText decodes a tier name.
func (l *RiskLevel) UnmarshalText(text []byte) error {
	for level, name := range riskLevelNames {
		if name == string(text) {
			*l = level
			return nil
		}
	}
	return fmt.Errorf("unknown risk level %q", string(text))
}

// PoolVolatility holds daily and weekly volatility percentages for a pool.
type PoolVolatility struct {
	DailyVolatility  float64 `json:"daily_volatility"`
	WeeklyVolatility float64 `json:"weekly_volatility"`
}

// RiskAssessment answers the risk of a hypothetical position in a pool.
type RiskAssessment struct {
	PoolAddress     string         `json:"pool_address"`
	PositionSize    float64        `json:"position_size"`
	Timeframe       string         `json:"timeframe"`
	RiskLevel       RiskLevel      `json:"risk_level"`
	MaxIL           float64        `json:"max_il"`
	MaxLossUSD      float64        `json:"max_loss_usd"`
	Probability     float64        `json:"probability"`
	Volatility      PoolVolatility `json:"volatility"`
	Recommendations []string       `json:"recommendations"`
}

// ILPrediction is a single-point impermanent loss estimate.
type ILPrediction struct {
	PoolAddress   string  `json:"pool_address"`
	PriceChange   float64 `json:"price_change"`
	Timeframe     string  `json:"timeframe"`
	TimeframeDays int     `json:"timeframe_days"`
	EstimatedIL   float64 `json:"estimated_il"`
	Confidence    float64 `json:"confidence"`
	Methodology   string  `json:"methodology"`
}
