package dex

import (
	"context"
	"errors"
	"fmt"
	"math/big"
	"strings"
	"sync"
	"time"

	"github.com/cenkalti/backoff/v5"
	"github.com/ethereum/go-ethereum/common"
	"go.uber.org/zap"

	"liquidityRisk/internal/model"
)

// PriceSourceConfig controls on-chain price reads.
type PriceSourceConfig struct {
	// QuoteUSD is the USD price of token1; 1 treats token1 as a stablecoin.
	QuoteUSD     float64
	MaxRetries   int
	RetryBackoff time.Duration
}

// PriceSource reads current prices from PancakeSwap V2 pairs and V3 pools.
type PriceSource struct {
	caller Caller
	cfg    PriceSourceConfig
	pools  *PoolMetaCache
	tokens *TokenMetaCache
	logger *zap.Logger
}

func NewPriceSource(caller Caller, cfg PriceSourceConfig, logger *zap.Logger) *PriceSource {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.QuoteUSD <= 0 {
		cfg.QuoteUSD = 1
	}
	if cfg.MaxRetries < 0 {
		cfg.MaxRetries = 0
	}
	if cfg.RetryBackoff <= 0 {
		cfg.RetryBackoff = 100 * time.Millisecond
	}
	return &PriceSource{
		caller: caller,
		cfg:    cfg,
		pools:  NewPoolMetaCache(),
		tokens: NewTokenMetaCache(),
		logger: logger,
	}
}

// GetPool returns the pool's current prices. ok is false when the address
// is not a known pool. Transient RPC failures are retried with backoff.
func (s *PriceSource) GetPool(ctx context.Context, address string) (model.PoolPrices, bool, error) {
	if !common.IsHexAddress(address) {
		return model.PoolPrices{}, false, nil
	}
	pool := common.HexToAddress(address)

	policy := backoff.NewExponentialBackOff()
	policy.InitialInterval = s.cfg.RetryBackoff
	policy.MaxInterval = s.cfg.RetryBackoff * 10

	notify := func(err error, next time.Duration) {
		s.logger.Warn("price fetch retry", zap.String("pool", pool.Hex()), zap.Duration("backoff", next), zap.Error(err))
	}

	operation := func() (model.PoolPrices, error) {
		prices, err := s.fetch(ctx, pool)
		if errors.Is(err, model.ErrPoolNotFound) {
			return prices, backoff.Permanent(err)
		}
		return prices, err
	}

	prices, err := backoff.Retry(ctx, operation,
		backoff.WithBackOff(policy),
		backoff.WithMaxTries(uint(s.cfg.MaxRetries+1)),
		backoff.WithNotify(notify))
	if errors.Is(err, model.ErrPoolNotFound) {
		return model.PoolPrices{}, false, nil
	}
	if err != nil {
		return model.PoolPrices{}, false, err
	}
	return prices, true, nil
}

func (s *PriceSource) fetch(ctx context.Context, pool common.Address) (model.PoolPrices, error) {
	meta, ok := s.pools.Get(pool)
	if !ok {
		var err error
		meta, err = FetchPoolMeta(ctx, s.caller, pool, s.logger)
		if err != nil {
			return model.PoolPrices{}, err
		}
		s.pools.Set(pool, meta)
	}

	block, err := s.caller.LatestBlockNumber(ctx)
	if err != nil {
		return model.PoolPrices{}, fmt.Errorf("latest block: %w", err)
	}
	blockNumber := new(big.Int).SetUint64(block)

	decimals0, err := s.tokenDecimals(ctx, meta.Token0)
	if err != nil {
		return model.PoolPrices{}, fmt.Errorf("token0 decimals: %w", err)
	}
	decimals1, err := s.tokenDecimals(ctx, meta.Token1)
	if err != nil {
		return model.PoolPrices{}, fmt.Errorf("token1 decimals: %w", err)
	}

	var price0In1 float64
	switch meta.Kind {
	case model.PoolKindV3:
		poolABI, err := V3PoolABI()
		if err != nil {
			return model.PoolPrices{}, err
		}
		values, err := callMethod(ctx, s.caller, pool, poolABI, "slot0", blockNumber)
		if err != nil {
			return model.PoolPrices{}, err
		}
		sqrtPrice, err := asBigInt(values[0])
		if err != nil {
			return model.PoolPrices{}, fmt.Errorf("sqrtPriceX96: %w", err)
		}
		rat, err := priceFromSqrtX96(sqrtPrice, decimals0, decimals1)
		if err != nil {
			return model.PoolPrices{}, err
		}
		price0In1, _ = rat.Float64()
	case model.PoolKindV2:
		pairABI, err := V2PairABI()
		if err != nil {
			return model.PoolPrices{}, err
		}
		values, err := callMethod(ctx, s.caller, pool, pairABI, "getReserves", blockNumber)
		if err != nil {
			return model.PoolPrices{}, err
		}
		if len(values) < 2 {
			return model.PoolPrices{}, fmt.Errorf("getReserves return size %d", len(values))
		}
		reserve0, err := asBigInt(values[0])
		if err != nil {
			return model.PoolPrices{}, fmt.Errorf("reserve0: %w", err)
		}
		reserve1, err := asBigInt(values[1])
		if err != nil {
			return model.PoolPrices{}, fmt.Errorf("reserve1: %w", err)
		}
		rat, err := priceFromReserves(reserve0, reserve1, decimals0, decimals1)
		if err != nil {
			return model.PoolPrices{}, err
		}
		price0In1, _ = rat.Float64()
	default:
		return model.PoolPrices{}, fmt.Errorf("unsupported pool kind %q", meta.Kind)
	}

	return model.PoolPrices{
		Address:     pool.Hex(),
		Price0:      price0In1 * s.cfg.QuoteUSD,
		Price1:      s.cfg.QuoteUSD,
		BlockNumber: block,
	}, nil
}

func (s *PriceSource) tokenDecimals(ctx context.Context, token string) (uint8, error) {
	if !common.IsHexAddress(token) {
		return 0, fmt.Errorf("invalid token address: %s", token)
	}
	addr := common.HexToAddress(token)
	if meta, ok := s.tokens.Get(addr); ok {
		return meta.Decimals, nil
	}
	meta, err := FetchTokenMeta(ctx, s.caller, addr, s.logger)
	if err != nil {
		return 0, err
	}
	s.tokens.Set(addr, meta)
	return meta.Decimals, nil
}

// StaticPriceSource serves fixed prices, for offline use. Its prices carry
// no block number.
type StaticPriceSource struct {
	mu     sync.RWMutex
	prices map[string]model.PricePair
}

func NewStaticPriceSource(prices map[string]model.PricePair) *StaticPriceSource {
	s := &StaticPriceSource{prices: make(map[string]model.PricePair, len(prices))}
	for address, pair := range prices {
		s.Set(address, pair)
	}
	return s
}

func (s *StaticPriceSource) Set(address string, pair model.PricePair) {
	s.mu.Lock()
	s.prices[staticKey(address)] = pair
	s.mu.Unlock()
}

func (s *StaticPriceSource) GetPool(_ context.Context, address string) (model.PoolPrices, bool, error) {
	s.mu.RLock()
	pair, ok := s.prices[staticKey(address)]
	s.mu.RUnlock()
	if !ok {
		return model.PoolPrices{}, false, nil
	}
	return model.PoolPrices{Address: address, Price0: pair.Price0, Price1: pair.Price1}, true, nil
}

func staticKey(address string) string {
	return strings.ToLower(strings.TrimSpace(address))
}
