package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/pflag"

	"liquidityRisk/internal/model"
)

const poolA = "0x1111111111111111111111111111111111111111"

func newFlags(t *testing.T, args ...string) *pflag.FlagSet {
	t.Helper()
	flags := pflag.NewFlagSet("test", pflag.ContinueOnError)
	flags.String("rpc", "", "")
	flags.StringSlice("pool-price", nil, "")
	flags.StringSlice("volatility", nil, "")
	flags.StringSlice("position", nil, "")
	flags.Float64("quote-usd", 1, "")
	flags.Duration("interval", time.Minute, "")
	flags.Bool("once", false, "")
	if err := flags.Parse(args); err != nil {
		t.Fatalf("parse flags: %v", err)
	}
	return flags
}

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load("", newFlags(t))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.QuoteUSD != 1 {
		t.Fatalf("quote = %v, want 1", cfg.QuoteUSD)
	}
	if cfg.MaxRetries != 3 || cfg.RetryBackoff != 500*time.Millisecond {
		t.Fatalf("retry = %d/%s", cfg.MaxRetries, cfg.RetryBackoff)
	}
	if cfg.LogLevel != "info" {
		t.Fatalf("log level = %q", cfg.LogLevel)
	}
	if len(cfg.PoolPrices) != 0 || len(cfg.Volatility) != 0 {
		t.Fatalf("expected empty maps")
	}
}

func TestLoadFlagsAndEnv(t *testing.T) {
	t.Setenv("ILSCOPE_RPC", "https://bsc.example")
	flags := newFlags(t,
		"--pool-price", poolA+"=300:1",
		"--volatility", poolA+"=12.5:40",
		"--quote-usd", "2",
	)
	cfg, err := Load("", flags)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.RPCURL != "https://bsc.example" {
		t.Fatalf("rpc = %q", cfg.RPCURL)
	}
	if cfg.QuoteUSD != 2 {
		t.Fatalf("quote = %v", cfg.QuoteUSD)
	}
	if got := cfg.PoolPrices[poolA]; got != (model.PricePair{Price0: 300, Price1: 1}) {
		t.Fatalf("pool price = %+v", got)
	}
	if got := cfg.Volatility[poolA]; got != (model.PoolVolatility{DailyVolatility: 12.5, WeeklyVolatility: 40}) {
		t.Fatalf("volatility = %+v", got)
	}
}

func TestLoadConfigFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	body := "rpc: https://file.example\nmax-retries: 7\npool-price:\n  " + poolA + ": \"2:1\"\n"
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	cfg, err := Load(path, nil)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.RPCURL != "https://file.example" || cfg.MaxRetries != 7 {
		t.Fatalf("cfg = %+v", cfg)
	}
	if got := cfg.PoolPrices[poolA]; got.Price0 != 2 || got.Price1 != 1 {
		t.Fatalf("pool price = %+v", got)
	}
}

func TestLoadRejectsBadValues(t *testing.T) {
	if _, err := Load("", newFlags(t, "--quote-usd", "0")); err == nil {
		t.Fatalf("expected error for zero quote")
	}
	if _, err := Load("", newFlags(t, "--pool-price", poolA+"=0:1")); err == nil {
		t.Fatalf("expected error for zero price")
	}
	if _, err := Load("", newFlags(t, "--volatility", poolA+"=abc")); err == nil {
		t.Fatalf("expected error for malformed volatility")
	}
}

func TestLoadMonitor(t *testing.T) {
	flags := newFlags(t,
		"--position", "lp-1="+poolA+":10:3000",
		"--position", "lp-2="+poolA+":1.5:450",
		"--interval", "30s",
		"--once",
	)
	cfg, err := LoadMonitor("", flags)
	if err != nil {
		t.Fatalf("load monitor: %v", err)
	}
	if len(cfg.Positions) != 2 {
		t.Fatalf("positions = %d, want 2", len(cfg.Positions))
	}
	if cfg.Positions[1].ID != "lp-2" || cfg.Positions[1].Amounts.Amount0 != "1.5" {
		t.Fatalf("position = %+v", cfg.Positions[1])
	}
	if cfg.Interval != 30*time.Second || !cfg.Once || cfg.Concurrency != 4 {
		t.Fatalf("cfg = %+v", cfg)
	}

	if _, err := LoadMonitor("", newFlags(t)); err == nil {
		t.Fatalf("expected error without positions")
	}
}

func TestParsePositions(t *testing.T) {
	cases := []struct {
		name    string
		entries []string
		wantErr bool
	}{
		{name: "valid", entries: []string{"a=" + poolA + ":1:2"}},
		{name: "missing id", entries: []string{"=" + poolA + ":1:2"}, wantErr: true},
		{name: "missing amounts", entries: []string{"a=" + poolA + ":1"}, wantErr: true},
		{name: "bad address", entries: []string{"a=0xzz:1:2"}, wantErr: true},
		{name: "duplicate", entries: []string{"a=" + poolA + ":1:2", "a=" + poolA + ":3:4"}, wantErr: true},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := ParsePositions(tc.entries)
			if tc.wantErr && err == nil {
				t.Fatalf("expected error")
			}
			if !tc.wantErr && err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
		})
	}
}

func TestParseTimestamp(t *testing.T) {
	got, err := ParseTimestamp("1700000000")
	if err != nil || got != 1700000000 {
		t.Fatalf("unix = %d, %v", got, err)
	}
	got, err = ParseTimestamp("2024-01-01T00:00:00Z")
	if err != nil || got != 1704067200 {
		t.Fatalf("rfc3339 = %d, %v", got, err)
	}
	got, err = ParseTimestamp("")
	if err != nil || got != 0 {
		t.Fatalf("empty = %d, %v", got, err)
	}
	if _, err := ParseTimestamp("yesterday"); err == nil {
		t.Fatalf("expected error")
	}
}
