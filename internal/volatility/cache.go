package volatility

import (
	"context"
	"math"
	"strings"
	"sync"
	"time"

	"liquidityRisk/internal/model"
)

const (
	DefaultDaily  = 10.0
	DefaultWeekly = 25.0

	maxSamples = 2016
	day        = 24 * time.Hour
	week       = 7 * day
)

// Default is returned for pools without data.
var Default = model.PoolVolatility{DailyVolatility: DefaultDaily, WeeklyVolatility: DefaultWeekly}

type sample struct {
	at    time.Time
	price float64
}

type poolEntry struct {
	value   model.PoolVolatility
	set     bool
	samples []sample
}

// Cache holds per-pool volatility, either set explicitly or derived from
// observed prices. Lookups never fail.
type Cache struct {
	mu    sync.RWMutex
	pools map[string]*poolEntry
}

func NewCache() *Cache {
	return &Cache{pools: make(map[string]*poolEntry)}
}

// GetVolatility returns the pool's volatility or Default.
func (c *Cache) GetVolatility(_ context.Context, pool string) model.PoolVolatility {
	c.mu.RLock()
	defer c.mu.RUnlock()
	entry, ok := c.pools[poolKey(pool)]
	if !ok || !entry.set {
		return Default
	}
	return entry.value
}

// Set stores an explicit volatility for a pool.
func (c *Cache) Set(pool string, value model.PoolVolatility) {
	c.mu.Lock()
	defer c.mu.Unlock()
	entry := c.entry(pool)
	entry.value = value
	entry.set = true
}

// Snapshot returns all pools with a known volatility.
func (c *Cache) Snapshot() map[string]model.PoolVolatility {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make(map[string]model.PoolVolatility, len(c.pools))
	for key, entry := range c.pools {
		if entry.set {
			out[key] = entry.value
		}
	}
	return out
}

// Observe records a price sample for the pool and recomputes its
// volatility once enough samples exist. It reports whether the stored
// volatility changed.
func (c *Cache) Observe(pool string, price float64, at time.Time) bool {
	if price <= 0 || math.IsNaN(price) || math.IsInf(price, 0) {
		return false
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	entry := c.entry(pool)
	if n := len(entry.samples); n > 0 && !at.After(entry.samples[n-1].at) {
		return false
	}
	entry.samples = append(entry.samples, sample{at: at, price: price})
	if over := len(entry.samples) - maxSamples; over > 0 {
		entry.samples = append([]sample(nil), entry.samples[over:]...)
	}

	daily, okDaily := windowVolatility(entry.samples, at, day)
	weekly, okWeekly := windowVolatility(entry.samples, at, week)
	if !okDaily && !okWeekly {
		return false
	}

	value := entry.value
	if !entry.set {
		value = Default
	}
	if okDaily {
		value.DailyVolatility = daily
	}
	if okWeekly {
		value.WeeklyVolatility = weekly
	}
	entry.value = value
	entry.set = true
	return true
}

func (c *Cache) entry(pool string) *poolEntry {
	key := poolKey(pool)
	entry, ok := c.pools[key]
	if !ok {
		entry = &poolEntry{}
		c.pools[key] = entry
	}
	return entry
}

// windowVolatility computes the volatility percentage over the window
// ending at end from log returns, scaled to the window length.
func windowVolatility(samples []sample, end time.Time, window time.Duration) (float64, bool) {
	start := end.Add(-window)
	var returns []float64
	var elapsed time.Duration
	for i := 1; i < len(samples); i++ {
		prev, cur := samples[i-1], samples[i]
		if prev.at.Before(start) {
			continue
		}
		returns = append(returns, math.Log(cur.price/prev.price))
		elapsed += cur.at.Sub(prev.at)
	}
	if len(returns) < 2 || elapsed <= 0 {
		return 0, false
	}

	var sum float64
	for _, r := range returns {
		sum += r
	}
	mean := sum / float64(len(returns))

	var sumSqDiff float64
	for _, r := range returns {
		sumSqDiff += (r - mean) * (r - mean)
	}
	stdDev := math.Sqrt(sumSqDiff / float64(len(returns)))

	interval := elapsed / time.Duration(len(returns))
	periods := float64(window) / float64(interval)
	return stdDev * math.Sqrt(periods) * 100, true
}

func poolKey(address string) string {
	return strings.ToLower(strings.TrimSpace(address))
}
