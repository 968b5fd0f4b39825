package config

import (
	"fmt"
	"time"

	"github.com/spf13/pflag"

	"liquidityRisk/internal/model"
)

// MonitorConfig holds configuration for the monitor command.
type MonitorConfig struct {
	Config
	Positions   []model.Position
	Interval    time.Duration
	Concurrency int
	MetricsAddr string
	Once        bool
}

// LoadMonitor merges config file, environment variables, and flags into MonitorConfig.
func LoadMonitor(cfgFile string, flags *pflag.FlagSet) (MonitorConfig, error) {
	v, err := newViper(cfgFile, flags)
	if err != nil {
		return MonitorConfig{}, err
	}
	base, err := load(v)
	if err != nil {
		return MonitorConfig{}, err
	}
	positions, err := ParsePositions(getStringSlice(v, "position"))
	if err != nil {
		return MonitorConfig{}, err
	}

	cfg := MonitorConfig{
		Config:      base,
		Positions:   positions,
		Interval:    v.GetDuration("interval"),
		Concurrency: v.GetInt("concurrency"),
		MetricsAddr: v.GetString("metrics-addr"),
		Once:        v.GetBool("once"),
	}
	if len(cfg.Positions) == 0 {
		return MonitorConfig{}, fmt.Errorf("at least one --position is required")
	}
	if cfg.Interval <= 0 {
		return MonitorConfig{}, fmt.Errorf("interval must be positive, got %s", cfg.Interval)
	}
	if cfg.Concurrency <= 0 {
		cfg.Concurrency = 1
	}
	return cfg, nil
}
