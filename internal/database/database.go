// Package database provides PostgreSQL connection management.
package database

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Config holds database connection configuration.
type Config struct {
	Host            string
	Port            int
	User            string
	Password        string
	Database        string
	SSLMode         string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
}

// ConfigFromEnv reads DB_* variables through getenv, applying defaults for
// unset keys. Malformed numbers and durations are errors.
func ConfigFromEnv(getenv func(string) string) (Config, error) {
	get := func(key, def string) string {
		if v := getenv(key); v != "" {
			return v
		}
		return def
	}

	cfg := Config{
		Host:     get("DB_HOST", "localhost"),
		User:     get("DB_USER", "eldroute"),
		Password: get("DB_PASSWORD", "localdev"),
		Database: get("DB_NAME", "eldroute"),
		SSLMode:  get("DB_SSL_MODE", "disable"),
	}

	var err error
	if cfg.Port, err = parsePositiveInt("DB_PORT", get("DB_PORT", "5432")); err != nil {
		return Config{}, err
	}
	if cfg.MaxOpenConns, err = parsePositiveInt("DB_MAX_OPEN_CONNS", get("DB_MAX_OPEN_CONNS", "10")); err != nil {
		return Config{}, err
	}
	if cfg.MaxIdleConns, err = parsePositiveInt("DB_MAX_IDLE_CONNS", get("DB_MAX_IDLE_CONNS", "2")); err != nil {
		return Config{}, err
	}
	if cfg.ConnMaxLifetime, err = time.ParseDuration(get("DB_CONN_MAX_LIFETIME", "5m")); err != nil {
		return Config{}, fmt.Errorf("DB_CONN_MAX_LIFETIME: %w", err)
	}
	if cfg.MaxIdleConns > cfg.MaxOpenConns {
		return Config{}, fmt.Errorf("DB_MAX_IDLE_CONNS %d exceeds DB_MAX_OPEN_CONNS %d", cfg.MaxIdleConns, cfg.MaxOpenConns)
	}

	return cfg, nil
}

// ConnectionString returns the PostgreSQL connection URL with credentials escaped.
func (c Config) ConnectionString() string {
	u := url.URL{
		Scheme:   "postgres",
		User:     url.UserPassword(c.User, c.Password),
		Host:     fmt.Sprintf("%s:%d", c.Host, c.Port),
		Path:     "/" + c.Database,
		RawQuery: url.Values{"sslmode": {c.SSLMode}}.Encode(),
	}
	return u.String()
}

// Connect creates a connection pool and verifies it with a ping.
func Connect(ctx context.Context, cfg Config) (*pgxpool.Pool, error) {
	poolConfig, err := pgxpool.ParseConfig(cfg.ConnectionString())
	if err != nil {
		return nil, fmt.Errorf("parse connection string: %w", err)
	}

	poolConfig.MaxConns = int32(cfg.MaxOpenConns) //nolint:gosec // bounded by ConfigFromEnv
	poolConfig.MinConns = int32(cfg.MaxIdleConns) //nolint:gosec // bounded by ConfigFromEnv
	poolConfig.MaxConnLifetime = cfg.ConnMaxLifetime

	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		return nil, fmt.Errorf("create connection pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	return pool, nil
}

func parsePositiveInt(key, value string) (int, error) {
	n, err := strconv.Atoi(value)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", key, err)
	}
	if n <= 0 || n > 1<<15 {
		return 0, fmt.Errorf("%s must be between 1 and %d, got %d", key, 1<<15, n)
	}
	return n, nil
}
