package redis

import (
	"context"
	"fmt"
	"time"

	"personal-ledger/config"

	goredis "github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

// ClientOptions maps the redis config section onto client options. Storage
// calls are already bounded by the gateway timeout, so only dialing gets its own.
func ClientOptions(cfg config.RedisConfig) *goredis.Options {
	return &goredis.Options{
		Addr:        cfg.Addr(),
		Password:    cfg.Password,
		DB:          cfg.DB,
		DialTimeout: 5 * time.Second,
	}
}

// NewClient creates a Redis client and verifies connectivity.
func NewClient(ctx context.Context, cfg config.RedisConfig, log zerolog.Logger) (*goredis.Client, error) {
	client := goredis.NewClient(ClientOptions(cfg))

	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("pinging redis at %s: %w", cfg.Addr(), err)
	}

	log.Info().
		Str("addr", cfg.Addr()).
		Int("db", cfg.DB).
		Str("stream", cfg.Stream).
		Msg("Redis connection established")

	return client, nil
}
