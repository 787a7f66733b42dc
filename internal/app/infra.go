package app

import (
	"context"
	"database/sql"

	"github.com/Rinkore1/BookServer/internal/config"
	"github.com/Rinkore1/BookServer/internal/db"
	"github.com/Rinkore1/BookServer/internal/kv"
	"github.com/Rinkore1/BookServer/internal/logger"
	"github.com/Rinkore1/BookServer/internal/redis"

	_ "github.com/lib/pq"
)

type Infra struct {
	DB    *db.DB
	Store kv.Store
}

func setupInfra(ctx context.Context, cfg config.Config) (*Infra, error) {
	sqlDB, err := sql.Open("postgres", cfg.DatabaseDSN)
	if err != nil {
		return nil, err
	}

	if err := sqlDB.PingContext(ctx); err != nil {
		return nil, err
	}

	if err := db.RunMigration(ctx, sqlDB); err != nil {
		return nil, err
	}

	logger.Info("database ready", nil)

	store, err := setupKV(cfg)
	if err != nil {
		return nil, err
	}

	return &Infra{
		DB:    &db.DB{DB: sqlDB},
		Store: store,
	}, nil
}

// setupKV picks the shared Redis store when an address is configured,
// and falls back to the process-local store for single-node runs.
func setupKV(cfg config.Config) (kv.Store, error) {
	if cfg.RedisAddr == "" {
		logger.Warn("no redis address configured, using in-process store", nil)
		return kv.NewMemoryStore(), nil
	}

	redisClient, err := redis.New(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisPingTimeout)
	if err != nil {
		return nil, err
	}

	logger.Info("redis ready", nil)

	return kv.NewRedisStore(redisClient.Client, cfg.KVTimeout), nil
}
