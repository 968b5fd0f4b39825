package monitor

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"liquidityRisk/internal/il"
	"liquidityRisk/internal/model"
	"liquidityRisk/internal/observability"
	"liquidityRisk/internal/storage"
	"liquidityRisk/internal/tracker"
	"liquidityRisk/internal/volatility"
)

// RunConfig holds runtime settings for the monitor.
type RunConfig struct {
	Positions   []model.Position
	Interval    time.Duration
	Concurrency int
}

// VolatilityStore persists volatility estimates between runs.
type VolatilityStore interface {
	UpsertVolatility(ctx context.Context, vols map[string]model.PoolVolatility) error
}

// Deps are the collaborators of a Runner. Only Tracker is required.
type Deps struct {
	Tracker         *tracker.Tracker
	Volatility      *volatility.Cache
	VolatilityStore VolatilityStore
	Sinks           []storage.Storage
	Metrics         *observability.Metrics
	Logger          *zap.Logger
}

// CycleResult summarises one pass over the configured positions.
type CycleResult struct {
	Calculations []model.ILCalculation
	Failed       int
}

// Runner periodically tracks positions and fans results out to sinks.
type Runner struct {
	cfg  RunConfig
	deps Deps
}

// NewRunner builds a Runner with its dependencies.
func NewRunner(cfg RunConfig, deps Deps) *Runner {
	if deps.Logger == nil {
		deps.Logger = zap.NewNop()
	}
	if cfg.Concurrency <= 0 {
		cfg.Concurrency = 1
	}
	return &Runner{cfg: cfg, deps: deps}
}

// Run tracks all positions every interval until ctx is cancelled. Failed
// cycles are logged and the loop continues.
func (r *Runner) Run(ctx context.Context) error {
	if err := r.validate(); err != nil {
		return err
	}
	if r.cfg.Interval <= 0 {
		return fmt.Errorf("interval must be positive")
	}

	ticker := time.NewTicker(r.cfg.Interval)
	defer ticker.Stop()

	for {
		if _, err := r.RunOnce(ctx); err != nil {
			if ctx.Err() != nil {
				return nil
			}
			r.deps.Logger.Error("monitor cycle failed", zap.Error(err))
		}

		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
		}
	}
}

// RunOnce tracks every position once. Per-position failures are logged and
// counted; only sink failures are returned.
func (r *Runner) RunOnce(ctx context.Context) (CycleResult, error) {
	if err := r.validate(); err != nil {
		return CycleResult{}, err
	}
	started := time.Now()

	results := make([]*model.ILCalculation, len(r.cfg.Positions))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(r.cfg.Concurrency)
	for i, pos := range r.cfg.Positions {
		g.Go(func() error {
			calc, ok := r.trackOne(gctx, pos)
			if ok {
				results[i] = &calc
			}
			return nil
		})
	}
	_ = g.Wait()

	var result CycleResult
	for _, calc := range results {
		if calc == nil {
			result.Failed++
			continue
		}
		result.Calculations = append(result.Calculations, *calc)
	}

	if err := r.persist(ctx, result.Calculations); err != nil {
		return result, err
	}

	if r.deps.Metrics != nil {
		r.deps.Metrics.TrackedPositions.Set(float64(r.deps.Tracker.Positions()))
	}
	r.deps.Logger.Info("monitor cycle complete",
		zap.Int("tracked", len(result.Calculations)),
		zap.Int("failed", result.Failed),
		zap.Duration("elapsed", time.Since(started)),
	)
	return result, nil
}

func (r *Runner) trackOne(ctx context.Context, pos model.Position) (model.ILCalculation, bool) {
	started := time.Now()
	history, err := r.deps.Tracker.TrackPosition(ctx, pos.ID, pos.PoolAddress, pos.Amounts)
	if r.deps.Metrics != nil {
		r.deps.Metrics.TrackDuration.Observe(time.Since(started).Seconds())
	}
	if err != nil {
		reason := errorReason(err)
		r.deps.Metrics.ObserveError(reason)
		r.deps.Logger.Warn("track failed",
			zap.String("position", pos.ID),
			zap.String("pool", pos.PoolAddress),
			zap.String("reason", reason),
			zap.Error(err),
		)
		return model.ILCalculation{}, false
	}

	latest := history[len(history)-1]
	if r.deps.Volatility != nil {
		r.deps.Volatility.Observe(pos.PoolAddress, latest.Current.Ratio, latest.CalculatedAt)
	}
	r.deps.Metrics.ObserveCalculation(latest)
	return latest, true
}

func (r *Runner) persist(ctx context.Context, calcs []model.ILCalculation) error {
	for _, sink := range r.deps.Sinks {
		if err := sink.PutCalculations(ctx, calcs); err != nil {
			r.deps.Metrics.ObserveError("storage")
			return fmt.Errorf("store calculations: %w", err)
		}
	}
	if r.deps.VolatilityStore != nil && r.deps.Volatility != nil {
		if err := r.deps.VolatilityStore.UpsertVolatility(ctx, r.deps.Volatility.Snapshot()); err != nil {
			r.deps.Metrics.ObserveError("storage")
			return fmt.Errorf("store volatility: %w", err)
		}
	}
	return nil
}

func (r *Runner) validate() error {
	if r.deps.Tracker == nil {
		return fmt.Errorf("tracker is nil")
	}
	if len(r.cfg.Positions) == 0 {
		return fmt.Errorf("at least one position is required")
	}
	return nil
}

func errorReason(err error) string {
	var inputErr *il.InputError
	switch {
	case errors.Is(err, model.ErrPoolNotFound):
		return "pool_not_found"
	case errors.As(err, &inputErr):
		return "invalid_input"
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return "canceled"
	default:
		return "price_source"
	}
}
