package config

import (
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/ethereum/go-ethereum/common"

	"liquidityRisk/internal/model"
)

// ParsePositions parses entries of the form id=pool:amount0:amount1.
func ParsePositions(entries []string) ([]model.Position, error) {
	positions := make([]model.Position, 0, len(entries))
	seen := make(map[string]bool, len(entries))
	for _, entry := range entries {
		id, rest, ok := strings.Cut(entry, "=")
		id = strings.TrimSpace(id)
		if !ok || id == "" {
			return nil, fmt.Errorf("invalid position %q: want id=pool:amount0:amount1", entry)
		}
		parts := strings.Split(rest, ":")
		if len(parts) != 3 {
			return nil, fmt.Errorf("invalid position %q: want id=pool:amount0:amount1", entry)
		}
		pool := strings.TrimSpace(parts[0])
		if !common.IsHexAddress(pool) {
			return nil, fmt.Errorf("invalid position %q: bad pool address", entry)
		}
		if seen[id] {
			return nil, fmt.Errorf("duplicate position id %q", id)
		}
		seen[id] = true
		positions = append(positions, model.Position{
			ID:          id,
			PoolAddress: pool,
			Amounts: model.TokenAmounts{
				Amount0: strings.TrimSpace(parts[1]),
				Amount1: strings.TrimSpace(parts[2]),
			},
		})
	}
	return positions, nil
}

// ParsePricePairs parses pool=price0:price1 values.
func ParsePricePairs(raw map[string]string) (map[string]model.PricePair, error) {
	out := make(map[string]model.PricePair, len(raw))
	for _, pool := range sortedKeys(raw) {
		a, b, err := parseFloatPair(raw[pool])
		if err != nil {
			return nil, fmt.Errorf("pool price %s: %w", pool, err)
		}
		if a <= 0 || b <= 0 {
			return nil, fmt.Errorf("pool price %s: prices must be positive", pool)
		}
		out[pool] = model.PricePair{Price0: a, Price1: b}
	}
	return out, nil
}

// ParseVolatility parses pool=daily:weekly values, in percent.
func ParseVolatility(raw map[string]string) (map[string]model.PoolVolatility, error) {
	out := make(map[string]model.PoolVolatility, len(raw))
	for _, pool := range sortedKeys(raw) {
		daily, weekly, err := parseFloatPair(raw[pool])
		if err != nil {
			return nil, fmt.Errorf("volatility %s: %w", pool, err)
		}
		if daily < 0 || weekly < 0 {
			return nil, fmt.Errorf("volatility %s: values must not be negative", pool)
		}
		out[pool] = model.PoolVolatility{DailyVolatility: daily, WeeklyVolatility: weekly}
	}
	return out, nil
}

// ParseTimestamp parses a timestamp value (unix seconds or RFC3339).
func ParseTimestamp(input string) (uint64, error) {
	if strings.TrimSpace(input) == "" {
		return 0, nil
	}

	if isNumeric(input) {
		val, err := strconv.ParseUint(input, 10, 64)
		if err != nil {
			return 0, err
		}
		return val, nil
	}

	tm, err := time.Parse(time.RFC3339, input)
	if err != nil {
		return 0, err
	}
	return uint64(tm.Unix()), nil
}

func parseFloatPair(value string) (float64, float64, error) {
	left, right, ok := strings.Cut(value, ":")
	if !ok {
		return 0, 0, fmt.Errorf("want a:b, got %q", value)
	}
	a, err := strconv.ParseFloat(strings.TrimSpace(left), 64)
	if err != nil {
		return 0, 0, err
	}
	b, err := strconv.ParseFloat(strings.TrimSpace(right), 64)
	if err != nil {
		return 0, 0, err
	}
	if !isFinite(a) || !isFinite(b) {
		return 0, 0, fmt.Errorf("values must be finite, got %q", value)
	}
	return a, b, nil
}

func isFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

func sortedKeys(m map[string]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func isNumeric(input string) bool {
	for _, r := range input {
		if r < '0' || r > '9' {
			return false
		}
	}
	return input != ""
}
