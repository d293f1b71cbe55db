package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"rangeProvisioner/internal/model"
)

// Store provides Postgres persistence for provisioning records.
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

// EnsureSchema creates the provisions table if it does not exist.
func (s *Store) EnsureSchema(ctx context.Context) error {
	_, err := s.pool.Exec(ctx, `
		CREATE TABLE IF NOT EXISTS provisions (
			id BIGSERIAL PRIMARY KEY,
			chain_id BIGINT NOT NULL,
			pool TEXT NOT NULL,
			caller TEXT NOT NULL,
			position_id TEXT NOT NULL,
			liquidity TEXT NOT NULL,
			tick_lower INTEGER NOT NULL,
			tick_upper INTEGER NOT NULL,
			amount0_used TEXT NOT NULL,
			amount1_used TEXT NOT NULL,
			created_at TIMESTAMPTZ NOT NULL DEFAULT now()
		)
	`)
	return err
}

// RecordProvision inserts one provisioning record.
func (s *Store) RecordProvision(ctx context.Context, record model.ProvisionRecord) error {
	_, err := s.pool.Exec(ctx, `
		INSERT INTO provisions (
			chain_id, pool, caller, position_id, liquidity,
			tick_lower, tick_upper, amount0_used, amount1_used
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`,
		int64(record.ChainID),
		record.Pool,
		record.Caller,
		record.PositionID,
		record.Liquidity,
		record.TickLower,
		record.TickUpper,
		record.Amount0Used,
		record.Amount1Used,
	)
	return err
}
