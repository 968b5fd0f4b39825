package postgres

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"liquidityRisk/internal/model"
)

const schema = `
CREATE TABLE IF NOT EXISTS il_calculations (
	id BIGSERIAL PRIMARY KEY,
	position_id TEXT NOT NULL,
	pool_address TEXT NOT NULL,
	il_percentage DOUBLE PRECISION NOT NULL,
	risk_level TEXT NOT NULL,
	calculated_at TIMESTAMPTZ NOT NULL,
	payload JSONB NOT NULL,
	created_at TIMESTAMPTZ NOT NULL DEFAULT now()
);
CREATE INDEX IF NOT EXISTS il_calculations_position_idx
	ON il_calculations (position_id, calculated_at DESC, id DESC);
CREATE TABLE IF NOT EXISTS pool_volatility (
	pool_address TEXT PRIMARY KEY,
	daily_volatility DOUBLE PRECISION NOT NULL,
	weekly_volatility DOUBLE PRECISION NOT NULL,
	updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
);
`

// Store provides Postgres persistence for calculations and volatility.
type Store struct {
	pool *pgxpool.Pool
}

func NewStore(ctx context.Context, dsn string) (*Store, error) {
	if dsn == "" {
		return nil, fmt.Errorf("pg dsn is required")
	}
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, err
	}
	return &Store{pool: pool}, nil
}

func (s *Store) Close() {
	if s.pool != nil {
		s.pool.Close()
	}
}

// EnsureSchema creates the tables if they do not exist.
func (s *Store) EnsureSchema(ctx context.Context) error {
	_, err := s.pool.Exec(ctx, schema)
	return err
}

// PutCalculations implements storage.Storage.
func (s *Store) PutCalculations(ctx context.Context, calcs []model.ILCalculation) error {
	return s.InsertCalculations(ctx, calcs)
}

// InsertCalculations appends calculations. The full result is kept in
// payload; the remaining columns exist for querying.
func (s *Store) InsertCalculations(ctx context.Context, calcs []model.ILCalculation) error {
	if len(calcs) == 0 {
		return nil
	}
	batch := &pgx.Batch{}
	for _, calc := range calcs {
		payload, err := json.Marshal(calc)
		if err != nil {
			return fmt.Errorf("marshal calculation: %w", err)
		}
		batch.Queue(`
			INSERT INTO il_calculations (
				position_id, pool_address, il_percentage, risk_level, calculated_at, payload
			) VALUES ($1, $2, $3, $4, $5, $6)
		`,
			calc.PositionID,
			strings.ToLower(calc.PoolAddress),
			calc.ImpermanentLossPercentage,
			calc.RiskLevel.String(),
			calc.CalculatedAt,
			payload,
		)
	}

	br := s.pool.SendBatch(ctx, batch)
	defer br.Close()

	for range calcs {
		if _, err := br.Exec(); err != nil {
			return err
		}
	}
	return nil
}

// LoadHistory returns up to limit of the most recent calculations for a
// position, oldest first.
func (s *Store) LoadHistory(ctx context.Context, positionID string, limit int) ([]model.ILCalculation, error) {
	if positionID == "" {
		return nil, fmt.Errorf("position id required")
	}
	if limit <= 0 {
		return []model.ILCalculation{}, nil
	}
	rows, err := s.pool.Query(ctx, `
		SELECT payload FROM il_calculations
		WHERE position_id = $1
		ORDER BY calculated_at DESC, id DESC
		LIMIT $2
	`, positionID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	calcs := make([]model.ILCalculation, 0, limit)
	for rows.Next() {
		var payload []byte
		if err := rows.Scan(&payload); err != nil {
			return nil, err
		}
		var calc model.ILCalculation
		if err := json.Unmarshal(payload, &calc); err != nil {
			return nil, fmt.Errorf("decode calculation: %w", err)
		}
		calcs = append(calcs, calc)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for i, j := 0, len(calcs)-1; i < j; i, j = i+1, j-1 {
		calcs[i], calcs[j] = calcs[j], calcs[i]
	}
	return calcs, nil
}

// UpsertVolatility inserts or updates volatility per pool.
func (s *Store) UpsertVolatility(ctx context.Context, vols map[string]model.PoolVolatility) error {
	if len(vols) == 0 {
		return nil
	}
	batch := &pgx.Batch{}
	for pool, vol := range vols {
		batch.Queue(`
			INSERT INTO pool_volatility (pool_address, daily_volatility, weekly_volatility, updated_at)
			VALUES ($1, $2, $3, now())
			ON CONFLICT (pool_address) DO UPDATE
			SET daily_volatility = EXCLUDED.daily_volatility,
				weekly_volatility = EXCLUDED.weekly_volatility,
				updated_at = now()
		`, strings.ToLower(pool), vol.DailyVolatility, vol.WeeklyVolatility)
	}

	br := s.pool.SendBatch(ctx, batch)
	defer br.Close()

	for range vols {
		if _, err := br.Exec(); err != nil {
			return err
		}
	}
	return nil
}

// LoadVolatility returns all stored volatility keyed by pool address.
func (s *Store) LoadVolatility(ctx context.Context) (map[string]model.PoolVolatility, error) {
	rows, err := s.pool.Query(ctx, `SELECT pool_address, daily_volatility, weekly_volatility FROM pool_volatility`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make(map[string]model.PoolVolatility)
	for rows.Next() {
		var (
			pool string
			vol  model.PoolVolatility
		)
		if err := rows.Scan(&pool, &vol.DailyVolatility, &vol.WeeklyVolatility); err != nil {
			return nil, err
		}
		out[pool] = vol
	}
	return out, rows.Err()
}
