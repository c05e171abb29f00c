package database

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/quiverfeeds/insider-data/internal/config"
	"github.com/quiverfeeds/insider-data/internal/model"
)

const schema = `
CREATE TABLE IF NOT EXISTS insider_filings (
	hash                   TEXT PRIMARY KEY,
	ticker                 TEXT NOT NULL,
	observed_at            DATE NOT NULL,
	filing_date            DATE NOT NULL,
	filer                  TEXT NOT NULL,
	direction              SMALLINT NOT NULL,
	shares                 NUMERIC,
	price_per_share        NUMERIC,
	shares_owned_following NUMERIC,
	run_id                 UUID NOT NULL,
	inserted_at            TIMESTAMPTZ NOT NULL DEFAULT now()
);
CREATE INDEX IF NOT EXISTS insider_filings_observed_at_idx ON insider_filings (observed_at);
CREATE INDEX IF NOT EXISTS insider_filings_ticker_idx ON insider_filings (ticker);
`

// Connect creates a connection pool for the archive.
func Connect(ctx context.Context, cfg config.DBConfig) (*pgxpool.Pool, error) {
	connStr := BuildConnString(cfg)

	poolCfg, err := pgxpool.ParseConfig(connStr)
	if err != nil {
		return nil, fmt.Errorf("parse connection string: %w", err)
	}

	poolCfg.MinConns = int32(cfg.MinConns)
	poolCfg.MaxConns = int32(cfg.MaxConns)

	pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		return nil, fmt.Errorf("create pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	return pool, nil
}

// Store wraps the archive pool.
type Store struct {
	pool   *pgxpool.Pool
	logger *slog.Logger
}

// NewStore creates an archive store.
func NewStore(pool *pgxpool.Pool, logger *slog.Logger) *Store {
	if logger == nil {
		logger = slog.Default()
	}
	return &Store{pool: pool, logger: logger}
}

// EnsureSchema creates the filings table and indexes if absent.
func (s *Store) EnsureSchema(ctx context.Context) error {
	if _, err := s.pool.Exec(ctx, schema); err != nil {
		return fmt.Errorf("ensure schema: %w", err)
	}
	return nil
}

// Ping verifies the connection is healthy.
func (s *Store) Ping(ctx context.Context) error {
	return s.pool.Ping(ctx)
}

// Close closes the pool.
func (s *Store) Close() {
	s.pool.Close()
}

// Hash identifies a record for archive deduplication.
func Hash(r model.InsiderTrading) string {
	sum := sha256.Sum256([]byte(r.Key()))
	return hex.EncodeToString(sum[:])
}

// InsertFilings batch-inserts records, skipping ones already archived.
// Returns the number of rows skipped as duplicates.
func (s *Store) InsertFilings(ctx context.Context, records []model.InsiderTrading, runID uuid.UUID) (conflicts int, err error) {
	batch := &pgx.Batch{}
	for _, r := range records {
		batch.Queue(`
			INSERT INTO insider_filings
				(hash, ticker, observed_at, filing_date, filer, direction,
				 shares, price_per_share, shares_owned_following, run_id)
			VALUES ($1, $2, $3, $4, $5, $6, $7::text::numeric, $8::text::numeric, $9::text::numeric, $10)
			ON CONFLICT (hash) DO NOTHING
		`,
			Hash(r),
			r.Ticker,
			r.Time,
			r.FilingDate,
			r.Name,
			int16(r.Direction),
			decimalArg(r.Shares),
			decimalArg(r.PricePerShare),
			decimalArg(r.SharesOwnedFollowing),
			runID,
		)
	}

	results := s.pool.SendBatch(ctx, batch)
	defer results.Close()

	for range records {
		ct, err := results.Exec()
		if err != nil {
			return 0, err
		}
		if ct.RowsAffected() == 0 {
			conflicts++
		}
	}

	return conflicts, nil
}

// FilingsByObservation loads every archived record visible on the given date.
func (s *Store) FilingsByObservation(ctx context.Context, date time.Time) ([]model.InsiderTrading, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT ticker, observed_at, filing_date, filer, direction,
		       shares::text, price_per_share::text, shares_owned_following::text
		FROM insider_filings
		WHERE observed_at = $1
		ORDER BY ticker, filer
	`, date)
	if err != nil {
		return nil, fmt.Errorf("query filings: %w", err)
	}
	defer rows.Close()

	var records []model.InsiderTrading
	for rows.Next() {
		r, err := scanFiling(rows)
		if err != nil {
			return nil, err
		}
		records = append(records, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("read filings: %w", err)
	}
	return records, nil
}

// ObservationDates lists distinct observation dates in [start, end].
func (s *Store) ObservationDates(ctx context.Context, start, end time.Time) ([]time.Time, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT DISTINCT observed_at
		FROM insider_filings
		WHERE observed_at BETWEEN $1 AND $2
		ORDER BY observed_at
	`, start, end)
	if err != nil {
		return nil, fmt.Errorf("query observation dates: %w", err)
	}
	defer rows.Close()

	var dates []time.Time
	for rows.Next() {
		var d time.Time
		if err := rows.Scan(&d); err != nil {
			return nil, err
		}
		dates = append(dates, d.UTC())
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("read observation dates: %w", err)
	}
	return dates, nil
}

func scanFiling(rows pgx.Rows) (model.InsiderTrading, error) {
	var (
		r                    model.InsiderTrading
		direction            int16
		shares, price, owned *string
	)
	if err := rows.Scan(&r.Ticker, &r.Time, &r.FilingDate, &r.Name, &direction, &shares, &price, &owned); err != nil {
		return model.InsiderTrading{}, fmt.Errorf("scan filing: %w", err)
	}

	r.Time = r.Time.UTC()
	r.FilingDate = r.FilingDate.UTC()
	r.Direction = model.Direction(direction)

	var err error
	if r.Shares, err = parseNullableNumeric(shares); err != nil {
		return model.InsiderTrading{}, fmt.Errorf("shares: %w", err)
	}
	if r.PricePerShare, err = parseNullableNumeric(price); err != nil {
		return model.InsiderTrading{}, fmt.Errorf("price_per_share: %w", err)
	}
	if r.SharesOwnedFollowing, err = parseNullableNumeric(owned); err != nil {
		return model.InsiderTrading{}, fmt.Errorf("shares_owned_following: %w", err)
	}
	return r, nil
}

// decimalArg renders an optional decimal as a nullable text parameter;
// Postgres casts it to NUMERIC on insert.
func decimalArg(d *decimal.Decimal) *string {
	if d == nil {
		return nil
	}
	s := d.String()
	return &s
}

func parseNullableNumeric(s *string) (*decimal.Decimal, error) {
	if s == nil {
		return nil, nil
	}
	d, err := decimal.NewFromString(*s)
	if err != nil {
		return nil, err
	}
	return &d, nil
}
