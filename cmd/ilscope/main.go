package main

import (
	"encoding/json"
	"io"
	"os"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

func main() {
	root := newRootCmd()
	if err := root.Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:          "ilscope",
		Short:        "Impermanent loss and risk engine for BSC liquidity positions",
		SilenceUsage: true,
	}

	root.PersistentFlags().String("config", "", "config file path")

	root.AddCommand(newCalcCmd())
	root.AddCommand(newTrackCmd())
	root.AddCommand(newHistoryCmd())
	root.AddCommand(newMonitorCmd())
	root.AddCommand(newRiskCmd())
	return root
}

// addCommonFlags registers the flags shared by every command that loads config.Config.
func addCommonFlags(cmd *cobra.Command) {
	cmd.Flags().String("rpc", "", "BSC RPC URL")
	cmd.Flags().String("pg-dsn", "", "Postgres DSN")
	cmd.Flags().String("out", "", "optional output JSONL path")
	cmd.Flags().Float64("quote-usd", 1, "USD price of each pool's token1")
	cmd.Flags().StringSlice("pool-price", nil, "static pool prices (pool=price0:price1, comma-separated)")
	cmd.Flags().StringSlice("volatility", nil, "pool volatility in percent (pool=daily:weekly, comma-separated)")
	cmd.Flags().Int("max-retries", 3, "maximum retry attempts for RPC reads")
	cmd.Flags().Duration("retry-backoff", 500*time.Millisecond, "initial retry backoff")
	cmd.Flags().String("log-level", "info", "log level (debug, info, warn, error)")
}

func writeJSON(w io.Writer, v interface{}) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func newLogger(level string) (*zap.Logger, error) {
	cfg := zap.NewProductionConfig()
	cfg.Level = zap.NewAtomicLevel()
	if err := cfg.Level.UnmarshalText([]byte(level)); err != nil {
		return nil, err
	}

	cfg.EncoderConfig.TimeKey = "ts"
	cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder

	return cfg.Build()
}
