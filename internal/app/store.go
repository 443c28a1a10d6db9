package app

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/gokatarajesh/dsa-vault/internal/config"
	"github.com/gokatarajesh/dsa-vault/internal/store"
)

// Backend is an opened slot plus the hooks to check and release its connection.
type Backend struct {
	Slot  store.Slot
	Ping  func(ctx context.Context) error
	Close func() error
}

// OpenBackend connects the slot selected by cfg.Store.Driver.
func OpenBackend(ctx context.Context, cfg *config.App, logger zerolog.Logger) (*Backend, error) {
	switch cfg.Store.Driver {
	case config.DriverFile:
		slot := store.NewFileSlot(cfg.Store.FileDir, cfg.Store.Slot)
		logger.Info().Str("path", slot.Path()).Msg("using file store")
		return &Backend{Slot: slot, Close: func() error { return nil }}, nil

	case config.DriverRedis:
		client := redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			DB:       cfg.Redis.DB,
			PoolSize: cfg.Redis.PoolSize,
		})
		if err := client.Ping(ctx).Err(); err != nil {
			_ = client.Close()
			return nil, fmt.Errorf("connect redis: %w", err)
		}
		logger.Info().Str("addr", cfg.Redis.Addr).Msg("using redis store")
		return &Backend{
			Slot:  store.NewRedisSlot(client, cfg.Store.Slot),
			Ping:  func(ctx context.Context) error { return client.Ping(ctx).Err() },
			Close: client.Close,
		}, nil

	case config.DriverPostgres:
		pool, err := pgxpool.New(ctx, cfg.Postgres.DSN())
		if err != nil {
			return nil, fmt.Errorf("connect postgres: %w", err)
		}
		if err := pool.Ping(ctx); err != nil {
			pool.Close()
			return nil, fmt.Errorf("ping postgres: %w", err)
		}
		logger.Info().Str("host", cfg.Postgres.Host).Str("database", cfg.Postgres.Database).Msg("using postgres store")
		return &Backend{
			Slot: store.NewPostgresSlot(pool, cfg.Store.Slot),
			Ping: pool.Ping,
			Close: func() error {
				pool.Close()
				return nil
			},
		}, nil
	}
	return nil, fmt.Errorf("unknown store driver %q", cfg.Store.Driver)
}
