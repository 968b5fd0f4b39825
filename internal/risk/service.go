package risk

import (
	"context"
	"fmt"
	"math"

	"go.uber.org/zap"

	"liquidityRisk/internal/il"
	"liquidityRisk/internal/model"
	"liquidityRisk/internal/volatility"
)

const (
	Methodology      = "Monte Carlo simulation with volatility adjustment"
	DefaultTimeframe = "7d"

	highVolatility = 30.0
)

// Shocks is the fixed set of relative price moves evaluated by
// WorstCaseScenario.
var Shocks = []float64{-0.5, -0.3, -0.2, -0.1, 0.1, 0.2, 0.3, 0.5}

// VolatilitySource returns pool volatility and never fails.
type VolatilitySource interface {
	GetVolatility(ctx context.Context, pool string) model.PoolVolatility
}

type tier struct {
	level          model.RiskLevel
	minIL          float64
	minVolatility  float64
	probabilityCap float64
	probabilityAdd float64
}

// Evaluated top-down; the first tier whose loss or volatility threshold is
// exceeded wins.
var tiers = []tier{
	{level: model.RiskVeryHigh, minIL: 30, minVolatility: 50, probabilityCap: 95, probabilityAdd: 50},
	{level: model.RiskHigh, minIL: 15, minVolatility: 30, probabilityCap: 80, probabilityAdd: 30},
	{level: model.RiskMedium, minIL: 5, minVolatility: 15, probabilityCap: 60, probabilityAdd: 20},
	{level: model.RiskLow, minIL: 1, minVolatility: math.Inf(1), probabilityCap: 40, probabilityAdd: 10},
}

var tierRecommendations = map[model.RiskLevel][]string{
	model.RiskVeryHigh: {
		"Very high impermanent loss risk: consider a much smaller position",
		"Prefer stable or correlated asset pairs",
		"Set price alerts and stop-loss levels before entering",
	},
	model.RiskHigh: {
		"High impermanent loss risk: size the position conservatively",
		"Check that expected fees outweigh the projected loss",
		"Monitor price movements daily",
	},
	model.RiskMedium: {
		"Moderate impermanent loss risk: trading fees may offset expected losses",
		"Review the position weekly",
	},
	model.RiskLow: {
		"Low impermanent loss risk: suitable for long-term liquidity provision",
	},
}

const recommendHighVolatility = "High volatility detected: increase monitoring frequency"

// Service answers worst-case, risk and prediction questions for a pool.
type Service struct {
	vol    VolatilitySource
	logger *zap.Logger
}

// NewService returns a Service reading volatility from vol. A nil vol
// yields the default volatility for every pool.
func NewService(vol VolatilitySource, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{vol: vol, logger: logger}
}

// WorstCaseScenario returns the largest loss percentage over Shocks. The
// position size does not change the percentage.
func (s *Service) WorstCaseScenario(poolAddress string, positionSize float64) (float64, error) {
	if err := validateSize(positionSize); err != nil {
		return 0, err
	}
	var worst float64
	for _, shock := range Shocks {
		loss, err := il.ILFromPriceRatio(1 + shock)
		if err != nil {
			return 0, err
		}
		worst = math.Max(worst, loss)
	}
	return worst, nil
}

// AssessRisk grades a hypothetical position in the pool.
func (s *Service) AssessRisk(ctx context.Context, poolAddress string, positionSize float64, timeframe string) (model.RiskAssessment, error) {
	maxIL, err := s.WorstCaseScenario(poolAddress, positionSize)
	if err != nil {
		return model.RiskAssessment{}, err
	}
	if timeframe == "" {
		timeframe = DefaultTimeframe
	}

	vol := s.getVolatility(ctx, poolAddress)
	weekly := vol.WeeklyVolatility

	selected := tiers[len(tiers)-1]
	for _, t := range tiers {
		if maxIL > t.minIL || weekly > t.minVolatility {
			selected = t
			break
		}
	}

	probability := math.Min(selected.probabilityCap, selected.probabilityAdd+weekly)

	recommendations := append([]string(nil), tierRecommendations[selected.level]...)
	if weekly > highVolatility {
		recommendations = append(recommendations, recommendHighVolatility)
	}

	s.logger.Debug("assess risk",
		zap.String("pool", poolAddress),
		zap.Float64("max_il", maxIL),
		zap.Float64("weekly_volatility", weekly),
		zap.Stringer("risk", selected.level),
	)

	return model.RiskAssessment{
		PoolAddress:     poolAddress,
		PositionSize:    positionSize,
		Timeframe:       timeframe,
		RiskLevel:       selected.level,
		MaxIL:           maxIL,
		MaxLossUSD:      positionSize * maxIL / 100,
		Probability:     probability,
		Volatility:      vol,
		Recommendations: recommendations,
	}, nil
}

// PredictILChange estimates the loss after a relative price change of
// priceChange (0.1 is +10%) over the timeframe.
func (s *Service) PredictILChange(ctx context.Context, poolAddress string, priceChange float64, timeframe string) (model.ILPrediction, error) {
	estimated, err := il.ILFromPriceRatio(1 + priceChange)
	if err != nil {
		return model.ILPrediction{}, fmt.Errorf("price change %v: %w", priceChange, err)
	}

	days := ParseTimeframe(timeframe)
	confidence := 100.0
	if days > 7 {
		confidence = math.Max(60, 100-float64(days-7)*5)
	}

	vol := s.getVolatility(ctx, poolAddress)
	if vol.WeeklyVolatility > highVolatility {
		confidence *= 0.7
	}

	return model.ILPrediction{
		PoolAddress:   poolAddress,
		PriceChange:   priceChange,
		Timeframe:     timeframe,
		TimeframeDays: days,
		EstimatedIL:   estimated,
		Confidence:    confidence,
		Methodology:   Methodology,
	}, nil
}

func (s *Service) getVolatility(ctx context.Context, pool string) model.PoolVolatility {
	if s.vol == nil {
		return volatility.Default
	}
	return s.vol.GetVolatility(ctx, pool)
}

func validateSize(size float64) error {
	if math.IsNaN(size) || math.IsInf(size, 0) || size < 0 {
		return &il.InputError{Field: "position size", Value: fmt.Sprintf("%v", size), Err: il.ErrInvalidAmount}
	}
	return nil
}
