package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"liquidityRisk/internal/config"
	"liquidityRisk/internal/risk"
)

func newRiskCmd() *cobra.Command {
	riskCmd := &cobra.Command{
		Use:   "risk",
		Short: "Pool-level risk assessment and loss prediction",
	}

	assessCmd := &cobra.Command{
		Use:   "assess",
		Short: "Grade the risk of a hypothetical position in a pool",
		RunE:  runRiskAssess,
	}
	addCommonFlags(assessCmd)
	assessCmd.Flags().String("pool", "", "pool address")
	assessCmd.Flags().Float64("size", 0, "position size in USD")
	assessCmd.Flags().String("timeframe", risk.DefaultTimeframe, "timeframe label (e.g. 1d, 2w, 1m)")
	riskCmd.AddCommand(assessCmd)

	predictCmd := &cobra.Command{
		Use:   "predict",
		Short: "Estimate impermanent loss after a relative price change",
		RunE:  runRiskPredict,
	}
	addCommonFlags(predictCmd)
	predictCmd.Flags().String("pool", "", "pool address")
	predictCmd.Flags().Float64("price-change", 0, "relative price change (0.1 is +10%)")
	predictCmd.Flags().String("timeframe", risk.DefaultTimeframe, "timeframe label (e.g. 1d, 2w, 1m)")
	riskCmd.AddCommand(predictCmd)

	worstCmd := &cobra.Command{
		Use:   "worst-case",
		Short: "Print the largest loss percentage over the shock set",
		RunE:  runRiskWorstCase,
	}
	addCommonFlags(worstCmd)
	worstCmd.Flags().String("pool", "", "pool address")
	worstCmd.Flags().Float64("size", 0, "position size in USD")
	riskCmd.AddCommand(worstCmd)

	return riskCmd
}

type riskEnv struct {
	service *risk.Service
	ctx     context.Context
	close   func()
}

func newRiskEnv(cmd *cobra.Command) (*riskEnv, error) {
	cfgFile, _ := cmd.Flags().GetString("config")
	cfg, err := config.Load(cfgFile, cmd.Flags())
	if err != nil {
		return nil, err
	}
	logger, err := newLogger(cfg.LogLevel)
	if err != nil {
		return nil, err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	store, err := openStore(ctx, cfg)
	if err != nil {
		stop()
		return nil, err
	}
	vols, err := buildVolatility(ctx, cfg, store)
	if store != nil {
		store.Close()
	}
	if err != nil {
		stop()
		return nil, err
	}

	return &riskEnv{
		service: risk.NewService(vols, logger),
		ctx:     ctx,
		close: func() {
			stop()
			_ = logger.Sync()
		},
	}, nil
}

func requirePool(cmd *cobra.Command) (string, error) {
	pool, _ := cmd.Flags().GetString("pool")
	if pool == "" {
		return "", fmt.Errorf("pool address is required")
	}
	return pool, nil
}

func runRiskAssess(cmd *cobra.Command, _ []string) error {
	pool, err := requirePool(cmd)
	if err != nil {
		return err
	}
	env, err := newRiskEnv(cmd)
	if err != nil {
		return err
	}
	defer env.close()

	size, _ := cmd.Flags().GetFloat64("size")
	timeframe, _ := cmd.Flags().GetString("timeframe")
	assessment, err := env.service.AssessRisk(env.ctx, pool, size, timeframe)
	if err != nil {
		return err
	}
	return writeJSON(cmd.OutOrStdout(), assessment)
}

func runRiskPredict(cmd *cobra.Command, _ []string) error {
	pool, err := requirePool(cmd)
	if err != nil {
		return err
	}
	env, err := newRiskEnv(cmd)
	if err != nil {
		return err
	}
	defer env.close()

	change, _ := cmd.Flags().GetFloat64("price-change")
	timeframe, _ := cmd.Flags().GetString("timeframe")
	prediction, err := env.service.PredictILChange(env.ctx, pool, change, timeframe)
	if err != nil {
		return err
	}
	return writeJSON(cmd.OutOrStdout(), prediction)
}

func runRiskWorstCase(cmd *cobra.Command, _ []string) error {
	pool, err := requirePool(cmd)
	if err != nil {
		return err
	}
	env, err := newRiskEnv(cmd)
	if err != nil {
		return err
	}
	defer env.close()

	size, _ := cmd.Flags().GetFloat64("size")
	worst, err := env.service.WorstCaseScenario(pool, size)
	if err != nil {
		return err
	}
	return writeJSON(cmd.OutOrStdout(), map[string]interface{}{
		"pool_address":      pool,
		"position_size":     size,
		"max_il_percentage": worst,
		"max_loss_usd":      size * worst / 100,
	})
}
