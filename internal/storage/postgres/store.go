package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"curveOps/internal/model"
)

// Store provides Postgres persistence for price checks, weekly fees and
// scan checkpoints. Tables are created by migrations/001_init.sql.
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

// InsertLPPriceCheck records one computed-versus-oracle comparison.
func (s *Store) InsertLPPriceCheck(ctx context.Context, c model.LPPriceCheck) error {
	_, err := s.pool.Exec(ctx, `
		INSERT INTO lp_price_checks (
			chain_id, pool_address, oracle_address, block_number, block_time,
			virtual_price, price_oracle0, price_oracle1, a, gamma,
			oracle_price, computed_price, deviation_bps, error, checked_at
		) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15)
	`,
		int64(c.ChainID),
		c.Pool,
		c.Oracle,
		int64(c.BlockNumber),
		c.BlockTime,
		c.VirtualPrice,
		c.PriceOracle0,
		c.PriceOracle1,
		c.A,
		c.Gamma,
		c.OraclePrice,
		c.ComputedPrice,
		c.DeviationBps,
		nullString(c.Error),
		c.CheckedAt,
	)
	if err != nil {
		return fmt.Errorf("insert lp price check: %w", err)
	}
	return nil
}

// UpsertWeeklyFees inserts or updates fee rows keyed by distributor and week.
func (s *Store) UpsertWeeklyFees(ctx context.Context, distributor string, fees []model.WeeklyFee) error {
	if len(fees) == 0 {
		return nil
	}
	batch := &pgx.Batch{}
	for _, f := range fees {
		batch.Queue(`
			INSERT INTO weekly_fees (
				distributor, week_start, tokens, virtual_price, usd, created_at, updated_at
			) VALUES ($1, $2, $3, $4, $5, now(), now())
			ON CONFLICT (distributor, week_start)
			DO UPDATE SET
				tokens = EXCLUDED.tokens,
				virtual_price = EXCLUDED.virtual_price,
				usd = EXCLUDED.usd,
				updated_at = now()
		`,
			distributor,
			f.WeekStart,
			f.Tokens,
			f.VirtualPrice,
			f.USD,
		)
	}

	br := s.pool.SendBatch(ctx, batch)
	defer br.Close()

	for range fees {
		if _, err := br.Exec(); err != nil {
			return fmt.Errorf("upsert weekly fee: %w", err)
		}
	}
	return nil
}

// LoadState returns last_block for a named scan.
func (s *Store) LoadState(ctx context.Context, name string) (uint64, bool, error) {
	if name == "" {
		return 0, false, fmt.Errorf("state name required")
	}
	var block int64
	row := s.pool.QueryRow(ctx, `SELECT last_block FROM scan_state WHERE name=$1`, name)
	if err := row.Scan(&block); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return 0, false, nil
		}
		return 0, false, err
	}
	return uint64(block), true, nil
}

// SaveState upserts last_block for a named scan.
func (s *Store) SaveState(ctx context.Context, name string, block uint64) error {
	if name == "" {
		return fmt.Errorf("state name required")
	}
	_, err := s.pool.Exec(ctx, `
		INSERT INTO scan_state (name, last_block, updated_at)
		VALUES ($1, $2, now())
		ON CONFLICT (name) DO UPDATE
		SET last_block = EXCLUDED.last_block, updated_at = now()
	`, name, int64(block))
	return err
}

// Checkpoint binds a scan name to the store so it can resume a transfer scan.
func (s *Store) Checkpoint(name string) *StateCheckpoint {
	return &StateCheckpoint{store: s, name: name}
}

// StateCheckpoint keeps a scan's progress in scan_state.
type StateCheckpoint struct {
	store *Store
	name  string
}

func (c *StateCheckpoint) Load(ctx context.Context) (uint64, bool, error) {
	return c.store.LoadState(ctx, c.name)
}

func (c *StateCheckpoint) Save(ctx context.Context, lastProcessed uint64) error {
	return c.store.SaveState(ctx, c.name, lastProcessed)
}

func nullString(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
