package main

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"liquidityRisk/internal/chain"
	"liquidityRisk/internal/config"
	"liquidityRisk/internal/dex"
	"liquidityRisk/internal/storage/postgres"
	"liquidityRisk/internal/tracker"
	"liquidityRisk/internal/volatility"
)

// buildPriceSource prefers static --pool-price values and falls back to
// on-chain reads. The returned cleanup is always safe to call.
func buildPriceSource(ctx context.Context, cfg config.Config, logger *zap.Logger) (tracker.PriceSource, func(), error) {
	if len(cfg.PoolPrices) > 0 {
		logger.Info("using static pool prices", zap.Int("pools", len(cfg.PoolPrices)))
		return dex.NewStaticPriceSource(cfg.PoolPrices), func() {}, nil
	}
	if cfg.RPCURL == "" {
		return nil, func() {}, fmt.Errorf("rpc url or --pool-price is required")
	}

	chainClient, err := chain.NewClient(ctx, cfg.RPCURL)
	if err != nil {
		return nil, func() {}, fmt.Errorf("connect rpc: %w", err)
	}

	chainID, err := chainClient.GetChainID(ctx)
	if err != nil {
		chainClient.Close()
		return nil, func() {}, fmt.Errorf("get chain id: %w", err)
	}
	latest, err := chainClient.LatestBlockNumber(ctx)
	if err != nil {
		chainClient.Close()
		return nil, func() {}, fmt.Errorf("get latest block: %w", err)
	}
	logger.Info("rpc connected",
		zap.String("rpc", cfg.RPCURL),
		zap.String("chain_id", chainID.String()),
		zap.Uint64("latest_block", latest),
	)

	source := dex.NewPriceSource(chainClient, dex.PriceSourceConfig{
		QuoteUSD:     cfg.QuoteUSD,
		MaxRetries:   cfg.MaxRetries,
		RetryBackoff: cfg.RetryBackoff,
	}, logger)
	return source, chainClient.Close, nil
}

// openStore connects to Postgres when a DSN is configured. A nil store
// means persistence is disabled.
func openStore(ctx context.Context, cfg config.Config) (*postgres.Store, error) {
	if cfg.PGDSN == "" {
		return nil, nil
	}
	store, err := postgres.NewStore(ctx, cfg.PGDSN)
	if err != nil {
		return nil, fmt.Errorf("connect postgres: %w", err)
	}
	if err := store.EnsureSchema(ctx); err != nil {
		store.Close()
		return nil, fmt.Errorf("ensure schema: %w", err)
	}
	return store, nil
}

// buildVolatility seeds a cache from Postgres, then from configured
// values, which take precedence.
func buildVolatility(ctx context.Context, cfg config.Config, store *postgres.Store) (*volatility.Cache, error) {
	cache := volatility.NewCache()
	if store != nil {
		stored, err := store.LoadVolatility(ctx)
		if err != nil {
			return nil, fmt.Errorf("load volatility: %w", err)
		}
		for pool, vol := range stored {
			cache.Set(pool, vol)
		}
	}
	for pool, vol := range cfg.Volatility {
		cache.Set(pool, vol)
	}
	return cache, nil
}
