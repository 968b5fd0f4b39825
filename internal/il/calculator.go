package il

import (
	"math"
	"time"

	"go.uber.org/zap"

	"liquidityRisk/internal/model"
)

const (
	defaultDuration = 24 * time.Hour
	daysPerYear     = 365.0

	warnZeroHoldValue = "hold value is zero; difference percentage reported as 0"
)

// Request describes a two-snapshot impermanent loss calculation.
type Request struct {
	InitialAmounts model.TokenAmounts
	InitialPrices  model.PricePair
	CurrentAmounts model.TokenAmounts
	CurrentPrices  model.PricePair
	// Duration is the time between snapshots. Zero means one day.
	Duration time.Duration
}

// Option configures a Calculator.
type Option func(*Calculator)

// WithClock overrides the clock used for CalculatedAt.
func WithClock(now func() time.Time) Option {
	return func(c *Calculator) {
		if now != nil {
			c.now = now
		}
	}
}

// WithLogger sets the logger used for soft warnings.
func WithLogger(logger *zap.Logger) Option {
	return func(c *Calculator) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// Calculator produces ILCalculation values.
type Calculator struct {
	now    func() time.Time
	logger *zap.Logger
}

// NewCalculator returns a Calculator using the wall clock and a no-op
// logger unless overridden by opts.
func NewCalculator(opts ...Option) *Calculator {
	c := &Calculator{
		now:    time.Now,
		logger: zap.NewNop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Calculate values both snapshots and derives loss, hold-vs-provide
// difference, annualized loss and risk tier.
func (c *Calculator) Calculate(req Request) (model.ILCalculation, error) {
	if err := validatePrice("initial price0", req.InitialPrices.Price0); err != nil {
		return model.ILCalculation{}, err
	}
	if err := validatePrice("initial price1", req.InitialPrices.Price1); err != nil {
		return model.ILCalculation{}, err
	}
	if err := validatePrice("current price0", req.CurrentPrices.Price0); err != nil {
		return model.ILCalculation{}, err
	}
	if err := validatePrice("current price1", req.CurrentPrices.Price1); err != nil {
		return model.ILCalculation{}, err
	}

	duration := req.Duration
	if duration < 0 {
		return model.ILCalculation{}, inputError(ErrInvalidDuration, "duration", duration)
	}
	if duration == 0 {
		duration = defaultDuration
	}
	durationDays := duration.Hours() / 24

	initial, err := ValuePosition(req.InitialAmounts, req.InitialPrices)
	if err != nil {
		return model.ILCalculation{}, err
	}
	current, err := ValuePosition(req.CurrentAmounts, req.CurrentPrices)
	if err != nil {
		return model.ILCalculation{}, err
	}

	ratio := req.CurrentPrices.Price0 / req.InitialPrices.Price0
	ilPct, err := ILFromPriceRatio(ratio)
	if err != nil {
		return model.ILCalculation{}, err
	}

	holdValue := initial.Amount0*req.CurrentPrices.Price0 + initial.Amount1*req.CurrentPrices.Price1
	if !isFinite(holdValue) {
		return model.ILCalculation{}, inputError(ErrInvalidAmount, "hold value", holdValue)
	}
	liquidityValue := current.TotalValueUSD
	diffUSD := holdValue - liquidityValue
	if !isFinite(diffUSD) {
		return model.ILCalculation{}, inputError(ErrInvalidAmount, "difference", diffUSD)
	}

	var warnings []string
	var diffPct float64
	if holdValue == 0 {
		warnings = append(warnings, warnZeroHoldValue)
		c.logger.Warn("soft division guard", zap.String("reason", warnZeroHoldValue))
	} else {
		diffPct = diffUSD / holdValue * 100
	}

	var annualized float64
	if ilPct > 0 {
		annualized = ilPct * (daysPerYear / durationDays)
	}

	severity := math.Max(ilPct, math.Abs(diffPct))
	level := ClassifyRisk(severity)

	return model.ILCalculation{
		Initial: model.Snapshot{
			Prices:  req.InitialPrices,
			Ratio:   req.InitialPrices.Price0 / req.InitialPrices.Price1,
			Amounts: initial,
		},
		Current: model.Snapshot{
			Prices:  req.CurrentPrices,
			Ratio:   req.CurrentPrices.Price0 / req.CurrentPrices.Price1,
			Amounts: current,
		},
		PriceRatio:                ratio,
		ImpermanentLossPercentage: ilPct,
		ImpermanentLossUSD:        initial.TotalValueUSD * ilPct / 100,
		HoldValueUSD:              holdValue,
		LiquidityValueUSD:         liquidityValue,
		DifferenceUSD:             diffUSD,
		DifferencePercentage:      diffPct,
		Duration:                  duration,
		DurationDays:              durationDays,
		AnnualizedIL:              annualized,
		RiskLevel:                 level,
		Recommendations:           GenerateRecommendations(ilPct, ratio, level),
		Warnings:                  warnings,
		CalculatedAt:              c.now().UTC(),
	}, nil
}
