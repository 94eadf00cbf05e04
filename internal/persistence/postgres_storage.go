package persistence

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"github.com/spec-kit/recommendation-console/internal/config"
)

// Querier is the subset of *pgxpool.Pool the storage uses.
type Querier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// PostgresStorage keeps values in the console_storage table.
type PostgresStorage struct {
	db   Querier
	pool *pgxpool.Pool
}

// NewPostgresStorage runs against db and leaves its lifecycle to the caller.
func NewPostgresStorage(db Querier) *PostgresStorage {
	return &PostgresStorage{db: db}
}

// OpenPostgresStorage connects a pool for cfg, applies the embedded
// migrations when cfg.RunMigrations is set, and owns the pool afterwards.
func OpenPostgresStorage(ctx context.Context, cfg config.PostgresConfig, logger *zap.Logger) (*PostgresStorage, error) {
	poolCfg, err := poolConfig(cfg)
	if err != nil {
		return nil, err
	}

	pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		return nil, err
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, err
	}
	logger.Info("connected to postgres", zap.Int32("max_conns", poolCfg.MaxConns))

	if cfg.RunMigrations {
		if err := RunMigrations(ctx, pool, logger); err != nil {
			pool.Close()
			return nil, err
		}
	}
	return &PostgresStorage{db: pool, pool: pool}, nil
}

func poolConfig(cfg config.PostgresConfig) (*pgxpool.Config, error) {
	if cfg.DSN == "" {
		return nil, errors.New("postgres dsn not provided")
	}

	poolCfg, err := pgxpool.ParseConfig(cfg.DSN)
	if err != nil {
		return nil, fmt.Errorf("parse postgres dsn: %w", err)
	}

	if cfg.MaxConns > 0 {
		poolCfg.MaxConns = cfg.MaxConns
	}
	if cfg.MinConns > 0 {
		poolCfg.MinConns = cfg.MinConns
	}
	if cfg.ConnMaxIdleSec > 0 {
		poolCfg.MaxConnIdleTime = time.Duration(cfg.ConnMaxIdleSec) * time.Second
	}
	if cfg.ConnMaxLifeSec > 0 {
		poolCfg.MaxConnLifetime = time.Duration(cfg.ConnMaxLifeSec) * time.Second
	}
	return poolCfg, nil
}

// Get returns the value stored under key.
func (p *PostgresStorage) Get(ctx context.Context, key string) (string, bool, error) {
	const query = `SELECT value FROM console_storage WHERE key=$1`

	var value string
	if err := p.db.QueryRow(ctx, query, key).Scan(&value); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return "", false, nil
		}
		return "", false, err
	}
	return value, true, nil
}

// Set upserts key.
func (p *PostgresStorage) Set(ctx context.Context, key, value string) error {
	const query = `
        INSERT INTO console_storage (key, value, updated_at)
        VALUES ($1, $2, NOW())
        ON CONFLICT (key) DO UPDATE SET value=EXCLUDED.value, updated_at=NOW()`

	_, err := p.db.Exec(ctx, query, key, value)
	return err
}

// Delete removes key.
func (p *PostgresStorage) Delete(ctx context.Context, key string) error {
	const query = `DELETE FROM console_storage WHERE key=$1`

	_, err := p.db.Exec(ctx, query, key)
	return err
}

// Ping verifies database connectivity.
func (p *PostgresStorage) Ping(ctx context.Context) error {
	if p.pool != nil {
		return p.pool.Ping(ctx)
	}
	_, err := p.db.Exec(ctx, "SELECT 1")
	return err
}

// Close releases the pool when the storage opened it.
func (p *PostgresStorage) Close() error {
	if p.pool != nil {
		p.pool.Close()
	}
	return nil
}
