package persistence

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/spec-kit/recommendation-console/internal/config"
)

// Backend is a durable key/value slot with lifecycle hooks for the server.
type Backend interface {
	Get(ctx context.Context, key string) (string, bool, error)
	Set(ctx context.Context, key, value string) error
	Delete(ctx context.Context, key string) error
	Ping(ctx context.Context) error
	Close() error
}

var (
	_ Backend = (*FileStorage)(nil)
	_ Backend = (*RedisStorage)(nil)
	_ Backend = (*PostgresStorage)(nil)
)

// Open connects the storage driver selected in cfg.
func Open(ctx context.Context, cfg *config.Config, logger *zap.Logger) (Backend, error) {
	switch cfg.Storage.Driver {
	case config.StorageDriverFile:
		logger.Info("using file storage", zap.String("path", cfg.Storage.FilePath))
		return NewFileStorage(cfg.Storage.FilePath), nil
	case config.StorageDriverRedis:
		return NewRedisStorage(cfg.Redis, logger), nil
	case config.StorageDriverPostgres:
		storage, err := OpenPostgresStorage(ctx, cfg.Postgres, logger)
		if err != nil {
			return nil, fmt.Errorf("connect postgres: %w", err)
		}
		return storage, nil
	default:
		return nil, fmt.Errorf("unknown storage driver %q", cfg.Storage.Driver)
	}
}
