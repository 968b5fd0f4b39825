package tracker

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"go.uber.org/zap"

	"liquidityRisk/internal/il"
	"liquidityRisk/internal/model"
)

// MaxHistory is the number of calculations retained per position.
const MaxHistory = 100

// PriceSource resolves the current prices of a pool. ok is false when
// the pool is unknown.
type PriceSource interface {
	GetPool(ctx context.Context, address string) (prices model.PoolPrices, ok bool, err error)
}

type positionHistory struct {
	mu      sync.Mutex
	entries []model.ILCalculation
}

// Tracker keeps a bounded calculation history per position.
type Tracker struct {
	calc   *il.Calculator
	prices PriceSource
	logger *zap.Logger

	mu        sync.Mutex
	histories map[string]*positionHistory
}

// NewTracker returns a Tracker pricing positions through prices. A nil
// calc gets a default Calculator.
func NewTracker(calc *il.Calculator, prices PriceSource, logger *zap.Logger) *Tracker {
	if logger == nil {
		logger = zap.NewNop()
	}
	if calc == nil {
		calc = il.NewCalculator(il.WithLogger(logger))
	}
	return &Tracker{
		calc:      calc,
		prices:    prices,
		logger:    logger,
		histories: make(map[string]*positionHistory),
	}
}

// TrackPosition prices the position at the pool's current prices, appends
// the result to the position's history and returns the full history.
func (t *Tracker) TrackPosition(ctx context.Context, positionID, poolAddress string, amounts model.TokenAmounts) ([]model.ILCalculation, error) {
	if positionID == "" {
		return nil, fmt.Errorf("position id is required")
	}
	if t.prices == nil {
		return nil, fmt.Errorf("price source is nil")
	}

	prices, ok, err := t.prices.GetPool(ctx, poolAddress)
	if err != nil {
		return nil, fmt.Errorf("get pool %s: %w", poolAddress, err)
	}
	if !ok {
		t.logger.Warn("pool not found", zap.String("position", positionID), zap.String("pool", poolAddress))
		return nil, fmt.Errorf("%w: %s", model.ErrPoolNotFound, poolAddress)
	}

	pair := prices.Pair()
	calc, err := t.calc.Calculate(il.Request{
		InitialAmounts: amounts,
		InitialPrices:  pair,
		CurrentAmounts: amounts,
		CurrentPrices:  pair,
	})
	if err != nil {
		return nil, fmt.Errorf("calculate position %s: %w", positionID, err)
	}
	calc.PositionID = positionID
	calc.PoolAddress = poolAddress

	history := t.history(positionID)
	history.mu.Lock()
	history.entries = appendCapped(history.entries, calc)
	out := cloneEntries(history.entries)
	history.mu.Unlock()

	t.logger.Debug("track position",
		zap.String("position", positionID),
		zap.String("pool", poolAddress),
		zap.Uint64("block", prices.BlockNumber),
		zap.Float64("il_pct", calc.ImpermanentLossPercentage),
		zap.Stringer("risk", calc.RiskLevel),
		zap.Int("history", len(out)),
	)

	return out, nil
}

// History returns the position's calculations, oldest first. Unknown
// positions have an empty history.
func (t *Tracker) History(positionID string) []model.ILCalculation {
	t.mu.Lock()
	history, ok := t.histories[positionKey(positionID)]
	t.mu.Unlock()
	if !ok {
		return []model.ILCalculation{}
	}

	history.mu.Lock()
	defer history.mu.Unlock()
	return cloneEntries(history.entries)
}

// Seed replaces a position's history with previously persisted entries,
// keeping only the most recent MaxHistory.
func (t *Tracker) Seed(positionID string, entries []model.ILCalculation) {
	history := t.history(positionID)
	history.mu.Lock()
	history.entries = appendCapped(nil, entries...)
	history.mu.Unlock()
}

// Positions returns the number of positions with a history.
func (t *Tracker) Positions() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.histories)
}

func (t *Tracker) history(positionID string) *positionHistory {
	key := positionKey(positionID)
	t.mu.Lock()
	defer t.mu.Unlock()
	history, ok := t.histories[key]
	if !ok {
		history = &positionHistory{}
		t.histories[key] = history
	}
	return history
}

func appendCapped(entries []model.ILCalculation, calcs ...model.ILCalculation) []model.ILCalculation {
	entries = append(entries, calcs...)
	if over := len(entries) - MaxHistory; over > 0 {
		trimmed := make([]model.ILCalculation, MaxHistory)
		copy(trimmed, entries[over:])
		entries = trimmed
	}
	return entries
}

func cloneEntries(entries []model.ILCalculation) []model.ILCalculation {
	out := make([]model.ILCalculation, len(entries))
	copy(out, entries)
	return out
}

func positionKey(id string) string {
	return strings.TrimSpace(id)
}
