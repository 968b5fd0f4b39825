package monitor

import (
	"context"
	"errors"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/require"

	"liquidityRisk/internal/dex"
	"liquidityRisk/internal/model"
	"liquidityRisk/internal/observability"
	"liquidityRisk/internal/storage"
	"liquidityRisk/internal/tracker"
	"liquidityRisk/internal/volatility"
)

const (
	knownPool   = "0x1111111111111111111111111111111111111111"
	unknownPool = "0x2222222222222222222222222222222222222222"
)

type memorySink struct {
	mu    sync.Mutex
	calcs []model.ILCalculation
	err   error
}

func (s *memorySink) PutCalculations(_ context.Context, calcs []model.ILCalculation) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return s.err
	}
	s.calcs = append(s.calcs, calcs...)
	return nil
}

type memoryVolStore struct {
	saved map[string]model.PoolVolatility
}

func (s *memoryVolStore) UpsertVolatility(_ context.Context, vols map[string]model.PoolVolatility) error {
	s.saved = vols
	return nil
}

func testPositions() []model.Position {
	return []model.Position{
		{ID: "lp-1", PoolAddress: knownPool, Amounts: model.TokenAmounts{Amount0: "10", Amount1: "3000"}},
		{ID: "lp-2", PoolAddress: unknownPool, Amounts: model.TokenAmounts{Amount0: "1", Amount1: "1"}},
		{ID: "lp-3", PoolAddress: knownPool, Amounts: model.TokenAmounts{Amount0: "bad", Amount1: "1"}},
	}
}

func newTestDeps() (Deps, *memorySink) {
	prices := dex.NewStaticPriceSource(map[string]model.PricePair{
		knownPool: {Price0: 300, Price1: 1},
	})
	sink := &memorySink{}
	return Deps{
		Tracker:    tracker.NewTracker(nil, prices, nil),
		Volatility: volatility.NewCache(),
		Sinks:      []storage.Storage{sink},
		Metrics:    observability.NewMetrics("test"),
	}, sink
}

func TestRunOnceTracksAndCountsFailures(t *testing.T) {
	deps, sink := newTestDeps()
	volStore := &memoryVolStore{}
	deps.VolatilityStore = volStore
	runner := NewRunner(RunConfig{Positions: testPositions(), Concurrency: 2}, deps)

	result, err := runner.RunOnce(context.Background())
	require.NoError(t, err)
	require.Len(t, result.Calculations, 1)
	require.Equal(t, 2, result.Failed)

	calc := result.Calculations[0]
	require.Equal(t, "lp-1", calc.PositionID)
	require.InDelta(t, 6000, calc.HoldValueUSD, 1e-9)
	require.Equal(t, model.RiskLow, calc.RiskLevel)

	require.Len(t, sink.calcs, 1)
	require.Len(t, deps.Tracker.History("lp-1"), 1)
	require.NotNil(t, volStore.saved)

	m := deps.Metrics
	require.Equal(t, 1.0, testutil.ToFloat64(m.CalculationsTotal))
	require.Equal(t, 1.0, testutil.ToFloat64(m.TrackErrors.WithLabelValues("pool_not_found")))
	require.Equal(t, 1.0, testutil.ToFloat64(m.TrackErrors.WithLabelValues("invalid_input")))
	require.Equal(t, 1.0, testutil.ToFloat64(m.TrackedPositions))
}

func TestRunOnceSinkFailure(t *testing.T) {
	deps, sink := newTestDeps()
	sink.err = errors.New("disk full")
	runner := NewRunner(RunConfig{Positions: testPositions()[:1]}, deps)

	_, err := runner.RunOnce(context.Background())
	require.ErrorIs(t, err, sink.err)
	require.Equal(t, 1.0, testutil.ToFloat64(deps.Metrics.TrackErrors.WithLabelValues("storage")))
}

func TestRunOnceWritesJsonl(t *testing.T) {
	deps, _ := newTestDeps()
	path := filepath.Join(t.TempDir(), "calcs.jsonl")
	deps.Sinks = []storage.Storage{storage.NewJsonlStorage(path)}
	runner := NewRunner(RunConfig{Positions: testPositions()[:1]}, deps)

	for i := 0; i < 3; i++ {
		_, err := runner.RunOnce(context.Background())
		require.NoError(t, err)
	}

	calcs, err := storage.ReadCalculations(path)
	require.NoError(t, err)
	require.Len(t, calcs, 3)
	require.Len(t, deps.Tracker.History("lp-1"), 3)
}

func TestRunLoopsUntilCancelled(t *testing.T) {
	deps, sink := newTestDeps()
	runner := NewRunner(RunConfig{Positions: testPositions()[:1], Interval: 5 * time.Millisecond}, deps)

	ctx, cancel := context.WithTimeout(context.Background(), 60*time.Millisecond)
	defer cancel()
	require.NoError(t, runner.Run(ctx))

	sink.mu.Lock()
	defer sink.mu.Unlock()
	require.GreaterOrEqual(t, len(sink.calcs), 2)
}

func TestRunValidates(t *testing.T) {
	deps, _ := newTestDeps()
	_, err := NewRunner(RunConfig{}, deps).RunOnce(context.Background())
	require.Error(t, err)

	err = NewRunner(RunConfig{Positions: testPositions()}, Deps{}).Run(context.Background())
	require.Error(t, err)

	err = NewRunner(RunConfig{Positions: testPositions()}, deps).Run(context.Background())
	require.Error(t, err)
}
