package geocode

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PostgresRepository is a PostgreSQL implementation of Repository backed by
// the geocode_cache table.
type PostgresRepository struct {
	pool *pgxpool.Pool
}

var _ Repository = (*PostgresRepository)(nil)

// NewPostgresRepository creates a new PostgreSQL geocode repository.
func NewPostgresRepository(pool *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{pool: pool}
}

const createTableSQL = `
	CREATE TABLE IF NOT EXISTS geocode_cache (
		address    TEXT PRIMARY KEY,
		lat        DOUBLE PRECISION NOT NULL,
		lon        DOUBLE PRECISION NOT NULL,
		provider   TEXT NOT NULL,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	);
	CREATE INDEX IF NOT EXISTS geocode_cache_updated_at_idx ON geocode_cache (updated_at);
`

// EnsureSchema creates the geocode_cache table if it does not exist.
func (r *PostgresRepository) EnsureSchema(ctx context.Context) error {
	if _, err := r.pool.Exec(ctx, createTableSQL); err != nil {
		return fmt.Errorf("creating geocode_cache table: %w", err)
	}
	return nil
}

// Get retrieves the entry for a normalized address.
func (r *PostgresRepository) Get(ctx context.Context, address string) (*Entry, error) {
	query := `
		SELECT address, lat, lon, provider, created_at, updated_at
		FROM geocode_cache
		WHERE address = $1
	`

	var e Entry
	err := r.pool.QueryRow(ctx, query, address).Scan(
		&e.Address,
		&e.Coordinate.Lat,
		&e.Coordinate.Lon,
		&e.Provider,
		&e.CreatedAt,
		&e.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrEntryNotFound
		}
		return nil, err
	}

	return &e, nil
}

// Put upserts an entry; created_at is preserved on conflict.
func (r *PostgresRepository) Put(ctx context.Context, entry *Entry) error {
	query := `
		INSERT INTO geocode_cache (address, lat, lon, provider, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (address) DO UPDATE SET
			lat = EXCLUDED.lat,
			lon = EXCLUDED.lon,
			provider = EXCLUDED.provider,
			updated_at = EXCLUDED.updated_at
	`

	_, err := r.pool.Exec(ctx, query,
		entry.Address,
		entry.Coordinate.Lat,
		entry.Coordinate.Lon,
		entry.Provider,
		entry.CreatedAt,
		entry.UpdatedAt,
	)
	return err
}

// DeleteOlderThan removes entries last updated before cutoff.
func (r *PostgresRepository) DeleteOlderThan(ctx context.Context, cutoff time.Time) (int, error) {
	tag, err := r.pool.Exec(ctx, `DELETE FROM geocode_cache WHERE updated_at < $1`, cutoff)
	if err != nil {
		return 0, err
	}
	return int(tag.RowsAffected()), nil
}

// Count returns the number of cached entries.
func (r *PostgresRepository) Count(ctx context.Context) (int, error) {
	var n int
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM geocode_cache`).Scan(&n); err != nil {
		return 0, err
	}
	return n, nil
}
