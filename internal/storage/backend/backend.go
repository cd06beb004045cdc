// Package backend opens the configured storage backends for the binaries.
package backend

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"solana-art-lab/internal/config"
	"solana-art-lab/internal/fetch"
	"solana-art-lab/internal/storage"
	chstore "solana-art-lab/internal/storage/clickhouse"
	"solana-art-lab/internal/storage/memory"
	"solana-art-lab/internal/storage/migrations"
	pebblestore "solana-art-lab/internal/storage/pebble"
	pgstore "solana-art-lab/internal/storage/postgres"
)

// OpenExtendedCache opens the extended metadata cache named by
// cfg.Cache.Backend. The returned func releases it.
func OpenExtendedCache(ctx context.Context, cfg *config.Config, logger *zap.Logger) (storage.ExtendedMetadataCache, func(), error) {
	switch cfg.Cache.Backend {
	case config.BackendMemory, "":
		logger.Info("extended cache: memory")
		return memory.NewExtendedMetadataCache(), func() {}, nil

	case config.BackendPebble:
		c, err := pebblestore.Open(cfg.Cache.PebbleDir)
		if err != nil {
			return nil, nil, fmt.Errorf("open pebble cache: %w", err)
		}
		logger.Info("extended cache: pebble", zap.String("dir", cfg.Cache.PebbleDir))
		return c, func() { _ = c.Close() }, nil

	case config.BackendPostgres:
		pool, err := pgstore.NewPool(ctx, cfg.Postgres.DSN)
		if err != nil {
			return nil, nil, fmt.Errorf("connect to postgres: %w", err)
		}
		if err := migrations.RunPostgresMigrations(ctx, pool); err != nil {
			pool.Close()
			return nil, nil, fmt.Errorf("postgres migrations: %w", err)
		}
		logger.Info("extended cache: postgres")
		return pgstore.NewExtendedMetadataCache(pool), pool.Close, nil

	default:
		return nil, nil, fmt.Errorf("%w: unknown cache.backend %q", config.ErrInvalidConfig, cfg.Cache.Backend)
	}
}

// OpenRecorder connects the ClickHouse fetch event log. It returns a nil
// recorder when no DSN is configured.
func OpenRecorder(ctx context.Context, cfg *config.Config, logger *zap.Logger) (fetch.Recorder, func(), error) {
	if cfg.ClickHouse.DSN == "" {
		return nil, func() {}, nil
	}
	conn, err := migrations.RunClickhouseMigrations(ctx, cfg.ClickHouse.DSN)
	if err != nil {
		return nil, nil, fmt.Errorf("clickhouse migrations: %w", err)
	}
	logger.Info("fetch event log: clickhouse")
	store := chstore.NewFetchEventStore(conn)
	return fetch.NewStoreRecorder(store, logger.Named("events")), func() { _ = conn.Close() }, nil
}
