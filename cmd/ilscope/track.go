package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"liquidityRisk/internal/config"
	"liquidityRisk/internal/model"
	"liquidityRisk/internal/monitor"
	"liquidityRisk/internal/observability"
	"liquidityRisk/internal/storage"
	"liquidityRisk/internal/storage/postgres"
	"liquidityRisk/internal/tracker"
)

func newTrackCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "track",
		Short: "Track positions once at current pool prices",
		RunE:  runTrack,
	}
	addCommonFlags(cmd)
	cmd.Flags().StringSlice("position", nil, "positions to track (id=pool:amount0:amount1)")
	return cmd
}

func newHistoryCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "history",
		Short: "Print the persisted calculation history of a position (Postgres, or the --out JSONL file)",
		RunE:  runHistory,
	}
	addCommonFlags(cmd)
	cmd.Flags().String("position-id", "", "position id")
	cmd.Flags().Int("limit", tracker.MaxHistory, "maximum number of entries")
	return cmd
}

func newMonitorCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "monitor",
		Short: "Track positions periodically and expose metrics",
		RunE:  runMonitor,
	}
	addCommonFlags(cmd)
	cmd.Flags().StringSlice("position", nil, "positions to track (id=pool:amount0:amount1)")
	cmd.Flags().Duration("interval", time.Minute, "tracking interval")
	cmd.Flags().Int("concurrency", 4, "positions tracked in parallel")
	cmd.Flags().String("metrics-addr", "", "listen address for /metrics, empty disables")
	cmd.Flags().Bool("once", false, "run a single cycle and exit")
	return cmd
}

func runTrack(cmd *cobra.Command, _ []string) error {
	cfgFile, _ := cmd.Flags().GetString("config")
	cfg, err := config.Load(cfgFile, cmd.Flags())
	if err != nil {
		return err
	}
	entries, _ := cmd.Flags().GetStringSlice("position")
	positions, err := config.ParsePositions(entries)
	if err != nil {
		return err
	}
	if len(positions) == 0 {
		return fmt.Errorf("at least one --position is required")
	}

	logger, err := newLogger(cfg.LogLevel)
	if err != nil {
		return err
	}
	defer logger.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	prices, closePrices, err := buildPriceSource(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer closePrices()

	store, err := openStore(ctx, cfg)
	if err != nil {
		return err
	}
	if store != nil {
		defer store.Close()
	}

	tr := tracker.NewTracker(nil, prices, logger)
	if err := seedHistories(ctx, tr, store, positions); err != nil {
		return err
	}

	out := make(map[string][]model.ILCalculation, len(positions))
	var latest []model.ILCalculation
	for _, pos := range positions {
		history, err := tr.TrackPosition(ctx, pos.ID, pos.PoolAddress, pos.Amounts)
		if err != nil {
			return err
		}
		out[pos.ID] = history
		latest = append(latest, history[len(history)-1])
	}

	for _, sink := range buildSinks(cfg, store) {
		if err := sink.PutCalculations(ctx, latest); err != nil {
			return fmt.Errorf("store calculations: %w", err)
		}
	}
	return writeJSON(cmd.OutOrStdout(), out)
}

func runHistory(cmd *cobra.Command, _ []string) error {
	cfgFile, _ := cmd.Flags().GetString("config")
	cfg, err := config.Load(cfgFile, cmd.Flags())
	if err != nil {
		return err
	}
	positionID, _ := cmd.Flags().GetString("position-id")
	limit, _ := cmd.Flags().GetInt("limit")
	if positionID == "" {
		return fmt.Errorf("position id is required")
	}
	if cfg.PGDSN == "" {
		if cfg.Out == "" {
			return fmt.Errorf("pg dsn or --out is required")
		}
		history, err := jsonlHistory(cfg.Out, positionID, limit)
		if err != nil {
			return err
		}
		return writeJSON(cmd.OutOrStdout(), history)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	store, err := openStore(ctx, cfg)
	if err != nil {
		return err
	}
	defer store.Close()

	history, err := store.LoadHistory(ctx, positionID, limit)
	if err != nil {
		return fmt.Errorf("load history: %w", err)
	}
	return writeJSON(cmd.OutOrStdout(), history)
}

// jsonlHistory returns the last limit calculations of a position from a
// JSONL output file, oldest first.
func jsonlHistory(path, positionID string, limit int) ([]model.ILCalculation, error) {
	calcs, err := storage.ReadCalculations(path)
	if err != nil {
		return nil, fmt.Errorf("read history: %w", err)
	}
	history := []model.ILCalculation{}
	for _, calc := range calcs {
		if calc.PositionID == positionID {
			history = append(history, calc)
		}
	}
	if limit >= 0 && len(history) > limit {
		history = history[len(history)-limit:]
	}
	return history, nil
}

func runMonitor(cmd *cobra.Command, _ []string) error {
	cfgFile, _ := cmd.Flags().GetString("config")
	cfg, err := config.LoadMonitor(cfgFile, cmd.Flags())
	if err != nil {
		return err
	}

	logger, err := newLogger(cfg.LogLevel)
	if err != nil {
		return err
	}
	defer logger.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	prices, closePrices, err := buildPriceSource(ctx, cfg.Config, logger)
	if err != nil {
		return err
	}
	defer closePrices()

	store, err := openStore(ctx, cfg.Config)
	if err != nil {
		return err
	}
	if store != nil {
		defer store.Close()
	}

	vols, err := buildVolatility(ctx, cfg.Config, store)
	if err != nil {
		return err
	}

	tr := tracker.NewTracker(nil, prices, logger)
	if err := seedHistories(ctx, tr, store, cfg.Positions); err != nil {
		return err
	}

	metrics := observability.NewMetrics("")
	deps := monitor.Deps{
		Tracker:    tr,
		Volatility: vols,
		Sinks:      buildSinks(cfg.Config, store),
		Metrics:    metrics,
		Logger:     logger,
	}
	if store != nil {
		deps.VolatilityStore = store
	}
	runner := monitor.NewRunner(monitor.RunConfig{
		Positions:   cfg.Positions,
		Interval:    cfg.Interval,
		Concurrency: cfg.Concurrency,
	}, deps)

	logger.Info("monitor start",
		zap.Int("positions", len(cfg.Positions)),
		zap.Duration("interval", cfg.Interval),
		zap.Int("concurrency", cfg.Concurrency),
		zap.String("metrics_addr", cfg.MetricsAddr),
		zap.Bool("once", cfg.Once),
	)

	if cfg.Once {
		result, err := runner.RunOnce(ctx)
		if err != nil {
			return err
		}
		return writeJSON(cmd.OutOrStdout(), result.Calculations)
	}

	if cfg.MetricsAddr != "" {
		server := &http.Server{Addr: cfg.MetricsAddr, Handler: metricsMux(metrics)}
		go func() {
			if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				logger.Error("metrics server", zap.Error(err))
			}
		}()
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			_ = server.Shutdown(shutdownCtx)
		}()
	}

	return runner.Run(ctx)
}

func metricsMux(metrics *observability.Metrics) *http.ServeMux {
	mux := http.NewServeMux()
	mux.Handle("/metrics", metrics.Handler())
	return mux
}

// seedHistories restores persisted histories so tracking continues them.
func seedHistories(ctx context.Context, tr *tracker.Tracker, store *postgres.Store, positions []model.Position) error {
	if store == nil {
		return nil
	}
	for _, pos := range positions {
		history, err := store.LoadHistory(ctx, pos.ID, tracker.MaxHistory)
		if err != nil {
			return fmt.Errorf("load history %s: %w", pos.ID, err)
		}
		if len(history) > 0 {
			tr.Seed(pos.ID, history)
		}
	}
	return nil
}

func buildSinks(cfg config.Config, store *postgres.Store) []storage.Storage {
	var sinks []storage.Storage
	if cfg.Out != "" {
		sinks = append(sinks, storage.NewJsonlStorage(cfg.Out))
	}
	if store != nil {
		sinks = append(sinks, store)
	}
	return sinks
}
