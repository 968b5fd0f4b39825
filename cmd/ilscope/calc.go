package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"liquidityRisk/internal/config"
	"liquidityRisk/internal/il"
	"liquidityRisk/internal/model"
)

func newCalcCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "calc",
		Short: "Calculate impermanent loss between two snapshots",
		RunE:  runCalc,
	}

	cmd.Flags().String("amount0", "", "initial amount of asset0")
	cmd.Flags().String("amount1", "", "initial amount of asset1")
	cmd.Flags().String("current-amount0", "", "current amount of asset0 (defaults to --amount0)")
	cmd.Flags().String("current-amount1", "", "current amount of asset1 (defaults to --amount1)")
	cmd.Flags().Float64("initial-price0", 0, "initial USD price of asset0")
	cmd.Flags().Float64("initial-price1", 0, "initial USD price of asset1")
	cmd.Flags().Float64("current-price0", 0, "current USD price of asset0")
	cmd.Flags().Float64("current-price1", 0, "current USD price of asset1")
	cmd.Flags().Duration("duration", 0, "time between snapshots, 0 means one day")
	cmd.Flags().String("since", "", "initial snapshot time (unix seconds or RFC3339), overrides --duration")
	cmd.Flags().String("log-level", "info", "log level (debug, info, warn, error)")
	return cmd
}

func runCalc(cmd *cobra.Command, _ []string) error {
	flags := cmd.Flags()
	level, _ := flags.GetString("log-level")
	logger, err := newLogger(level)
	if err != nil {
		return err
	}
	defer logger.Sync()

	amount0, _ := flags.GetString("amount0")
	amount1, _ := flags.GetString("amount1")
	currentAmount0, _ := flags.GetString("current-amount0")
	currentAmount1, _ := flags.GetString("current-amount1")
	if currentAmount0 == "" {
		currentAmount0 = amount0
	}
	if currentAmount1 == "" {
		currentAmount1 = amount1
	}

	var req il.Request
	req.InitialAmounts = model.TokenAmounts{Amount0: amount0, Amount1: amount1}
	req.CurrentAmounts = model.TokenAmounts{Amount0: currentAmount0, Amount1: currentAmount1}
	req.InitialPrices.Price0, _ = flags.GetFloat64("initial-price0")
	req.InitialPrices.Price1, _ = flags.GetFloat64("initial-price1")
	req.CurrentPrices.Price0, _ = flags.GetFloat64("current-price0")
	req.CurrentPrices.Price1, _ = flags.GetFloat64("current-price1")
	req.Duration, _ = flags.GetDuration("duration")

	since, _ := flags.GetString("since")
	if since != "" {
		ts, err := config.ParseTimestamp(since)
		if err != nil {
			return fmt.Errorf("parse since: %w", err)
		}
		req.Duration = time.Since(time.Unix(int64(ts), 0))
	}

	calc, err := il.NewCalculator(il.WithLogger(logger)).Calculate(req)
	if err != nil {
		return err
	}
	return writeJSON(cmd.OutOrStdout(), calc)
}
