package tracker

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"liquidityRisk/internal/il"
	"liquidityRisk/internal/model"
)

const testPool = "0x1111111111111111111111111111111111111111"

type fakePrices struct {
	mu    sync.Mutex
	calls int
	err   error
	known map[string]bool
}

func (f *fakePrices) GetPool(_ context.Context, address string) (model.PoolPrices, bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return model.PoolPrices{}, false, f.err
	}
	if f.known != nil && !f.known[address] {
		return model.PoolPrices{}, false, nil
	}
	f.calls++
	return model.PoolPrices{Address: address, Price0: float64(f.calls), Price1: 1}, true, nil
}

func newTestTracker(prices PriceSource) *Tracker {
	calc := il.NewCalculator(il.WithClock(func() time.Time {
		return time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	}))
	return NewTracker(calc, prices, nil)
}

var testAmounts = model.TokenAmounts{Amount0: "10", Amount1: "20"}

func TestTrackPositionAppendsHistory(t *testing.T) {
	tr := newTestTracker(&fakePrices{})
	ctx := context.Background()

	history, err := tr.TrackPosition(ctx, "pos-1", testPool, testAmounts)
	require.NoError(t, err)
	require.Len(t, history, 1)

	history, err = tr.TrackPosition(ctx, "pos-1", testPool, testAmounts)
	require.NoError(t, err)
	require.Len(t, history, 2)

	latest := history[1]
	require.Equal(t, "pos-1", latest.PositionID)
	require.Equal(t, testPool, latest.PoolAddress)
	require.Equal(t, 2.0, latest.Current.Prices.Price0)
	// Amounts and prices are the same on both sides.
	require.Equal(t, 1.0, latest.PriceRatio)
	require.Zero(t, latest.ImpermanentLossPercentage)
	require.Equal(t, model.RiskLow, latest.RiskLevel)
	require.InDelta(t, 40, latest.HoldValueUSD, 1e-9)

	require.Equal(t, history, tr.History("pos-1"))
	require.Equal(t, 1, tr.Positions())
}

func TestTrackPositionHistoryCap(t *testing.T) {
	tr := newTestTracker(&fakePrices{})
	ctx := context.Background()

	const calls = MaxHistory + 5
	var history []model.ILCalculation
	for i := 0; i < calls; i++ {
		var err error
		history, err = tr.TrackPosition(ctx, "pos-1", testPool, testAmounts)
		require.NoError(t, err)
		require.LessOrEqual(t, len(history), MaxHistory)
	}

	stored := tr.History("pos-1")
	require.Len(t, stored, MaxHistory)
	for i, calc := range stored {
		require.Equal(t, float64(calls-MaxHistory+i+1), calc.Current.Prices.Price0)
	}
}

func TestTrackPositionConcurrentCap(t *testing.T) {
	tr := newTestTracker(&fakePrices{})
	ctx := context.Background()

	var wg sync.WaitGroup
	for w := 0; w < 15; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < 10; i++ {
				if _, err := tr.TrackPosition(ctx, "shared", testPool, testAmounts); err != nil {
					t.Error(err)
				}
			}
		}()
	}
	wg.Wait()

	history := tr.History("shared")
	require.Len(t, history, MaxHistory)
	seen := make(map[float64]bool, len(history))
	for _, calc := range history {
		require.False(t, seen[calc.Current.Prices.Price0], "duplicate entry")
		seen[calc.Current.Prices.Price0] = true
	}
}

func TestHistoryUnknownPosition(t *testing.T) {
	tr := newTestTracker(&fakePrices{})
	history := tr.History("never-tracked")
	require.NotNil(t, history)
	require.Empty(t, history)
}

func TestHistoryReturnsCopy(t *testing.T) {
	tr := newTestTracker(&fakePrices{})
	_, err := tr.TrackPosition(context.Background(), "pos-1", testPool, testAmounts)
	require.NoError(t, err)

	history := tr.History("pos-1")
	history[0].ImpermanentLossPercentage = 99
	require.Zero(t, tr.History("pos-1")[0].ImpermanentLossPercentage)
}

func TestTrackPositionPoolNotFound(t *testing.T) {
	tr := newTestTracker(&fakePrices{known: map[string]bool{}})
	_, err := tr.TrackPosition(context.Background(), "pos-1", testPool, testAmounts)
	require.True(t, errors.Is(err, model.ErrPoolNotFound))
	require.Empty(t, tr.History("pos-1"))
}

func TestTrackPositionErrors(t *testing.T) {
	rpcErr := errors.New("rpc down")
	tr := newTestTracker(&fakePrices{err: rpcErr})
	_, err := tr.TrackPosition(context.Background(), "pos-1", testPool, testAmounts)
	require.True(t, errors.Is(err, rpcErr))

	tr = newTestTracker(&fakePrices{})
	_, err = tr.TrackPosition(context.Background(), "pos-1", testPool, model.TokenAmounts{Amount0: "abc", Amount1: "1"})
	require.True(t, errors.Is(err, il.ErrInvalidAmount))

	_, err = tr.TrackPosition(context.Background(), "", testPool, testAmounts)
	require.Error(t, err)
}

func TestSeedKeepsMostRecent(t *testing.T) {
	tr := newTestTracker(&fakePrices{})
	entries := make([]model.ILCalculation, MaxHistory+20)
	for i := range entries {
		entries[i].DurationDays = float64(i)
	}
	tr.Seed("pos-1", entries)

	history := tr.History("pos-1")
	require.Len(t, history, MaxHistory)
	require.Equal(t, 20.0, history[0].DurationDays)
	require.Equal(t, float64(MaxHistory+19), history[MaxHistory-1].DurationDays)
}
