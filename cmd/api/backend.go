package main

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/Venkatareddy26/corporate-travel-admin-portal/internal/config"
	"github.com/Venkatareddy26/corporate-travel-admin-portal/internal/localstore"
	"github.com/Venkatareddy26/corporate-travel-admin-portal/internal/repo"
	"github.com/Venkatareddy26/corporate-travel-admin-portal/migrations"
)

// stores is the persistence selected by STORE_BACKEND.
type stores struct {
	trips         repo.TripRepo
	notifications repo.NotificationRepo
	close         func()
}

// openStores connects the configured backend. For the cache backends it
// optionally fills the trip cache from Postgres before returning.
func openStores(ctx context.Context, cfg config.Config, logger *slog.Logger) (stores, error) {
	var pool *pgxpool.Pool
	closers := []func(){}
	closeAll := func() {
		for i := len(closers) - 1; i >= 0; i-- {
			closers[i]()
		}
	}

	if cfg.NeedsDatabase() {
		var err error
		pool, err = openDatabase(ctx, cfg, logger)
		if err != nil {
			return stores{}, err
		}
		closers = append(closers, pool.Close)
	}

	if cfg.StoreBackend == config.BackendPostgres {
		return stores{
			trips:         repo.NewTripRepo(pool),
			notifications: repo.NewNotificationRepo(pool),
			close:         closeAll,
		}, nil
	}

	var kv localstore.KV
	switch cfg.StoreBackend {
	case config.BackendRedis:
		client, err := localstore.DialRedis(ctx, localstore.RedisOptions{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		if err != nil {
			closeAll()
			return stores{}, err
		}
		closers = append(closers, func() { _ = client.Close() })
		kv = localstore.NewRedisKV(client)
		logger.Info("redis connection established", "addr", cfg.Redis.Addr)
	default:
		kv = localstore.NewMemoryKV()
	}

	trips := localstore.NewTripStore(kv)
	if cfg.SyncFromDatabase {
		n, err := trips.Pull(ctx, repo.NewTripRepo(pool))
		if err != nil {
			closeAll()
			return stores{}, err
		}
		logger.Info("trip cache synced from database", "trips", n)
	}

	return stores{
		trips:         trips,
		notifications: localstore.NewNotificationLog(kv),
		close:         closeAll,
	}, nil
}

// openDatabase opens the pool, verifies it, and applies migrations when
// MIGRATE_ON_START is set.
func openDatabase(ctx context.Context, cfg config.Config, logger *slog.Logger) (*pgxpool.Pool, error) {
	// New() does not open connections immediately; the first query does.
	pool, err := pgxpool.New(ctx, cfg.DatabaseURL)
	if err != nil {
		return nil, fmt.Errorf("create database pool: %w", err)
	}

	// Verify the DB is reachable before accepting traffic.
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("connect to database: %w", err)
	}
	logger.Info("database connection established")

	if cfg.MigrateOnStart {
		if err := migrate(ctx, pool, logger); err != nil {
			pool.Close()
			return nil, err
		}
	}
	return pool, nil
}

// migrate applies the embedded goose migrations and logs each one that ran.
func migrate(ctx context.Context, pool *pgxpool.Pool, logger *slog.Logger) error {
	results, err := migrations.Up(ctx, pool)
	if err != nil {
		return err
	}
	for _, r := range results {
		logger.Info("migration applied", "version", r.Source.Version, "duration_ms", r.Duration.Milliseconds())
	}
	return nil
}
