package main

import (
	"context"
	"fmt"

	"personal-ledger/config"
	fileStorage "personal-ledger/internal/adapter/storage/file"
	memStorage "personal-ledger/internal/adapter/storage/memory"
	pgStorage "personal-ledger/internal/adapter/storage/postgres"
	redisStorage "personal-ledger/internal/adapter/storage/redis"
	"personal-ledger/internal/core/ports"

	"github.com/rs/zerolog"
)

// backend bundles what the configured storage backend provides.
type backend struct {
	blobs     ports.BlobStore
	limiter   ports.RateLimiter
	publisher ports.EventPublisher // nil unless redis with a stream
	checkers  []ports.HealthChecker
	close     func()
}

// openBackend builds the blob store selected by storage.backend.
func openBackend(ctx context.Context, cfg *config.Config, log zerolog.Logger) (*backend, error) {
	b := &backend{
		limiter: memStorage.NewRateLimitStore(),
		close:   func() {},
	}

	switch cfg.Storage.Backend {
	case config.BackendMemory:
		b.blobs = memStorage.NewBlobStore()
		log.Warn().Msg("Using in-memory storage, the ledger is lost on exit")

	case config.BackendFile:
		store, err := fileStorage.NewBlobStore(cfg.Storage.Dir)
		if err != nil {
			return nil, err
		}
		b.blobs = store
		b.checkers = append(b.checkers, fileStorage.NewHealthCheck(store))
		log.Info().Str("dir", store.Dir()).Msg("File storage ready")

	case config.BackendRedis:
		rdb, err := redisStorage.NewClient(ctx, cfg.Redis, log)
		if err != nil {
			return nil, err
		}
		b.blobs = redisStorage.NewBlobStore(rdb)
		b.limiter = redisStorage.NewRateLimitStore(rdb, cfg.Storage.Prefix)
		if cfg.Redis.Stream != "" {
			b.publisher = redisStorage.NewEventPublisher(rdb, cfg.Redis.Stream)
		}
		b.checkers = append(b.checkers, redisStorage.NewHealthCheck(rdb))
		b.close = func() { _ = rdb.Close() }

	case config.BackendPostgres:
		pool, err := pgStorage.NewPool(ctx, cfg.Database, log)
		if err != nil {
			return nil, err
		}
		if err := pgStorage.EnsureSchema(ctx, pool); err != nil {
			pool.Close()
			return nil, err
		}
		b.blobs = pgStorage.NewBlobStore(pool)
		b.checkers = append(b.checkers, pgStorage.NewHealthCheck(pool))
		b.close = pool.Close

	default:
		return nil, fmt.Errorf("unknown storage backend %q", cfg.Storage.Backend)
	}

	return b, nil
}
