package app

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/go-sql-driver/mysql"
	"go.uber.org/zap"

	"aitolife/internal/cache"
)

// Pool limits for the cache table.
const (
	dbMaxOpen     = 10
	dbMaxIdle     = 5
	dbMaxLifetime = time.Hour
)

// NewDB opens a pool for cfg.DSN through the driver's connector, so a malformed
// DSN fails here rather than on first use.
func NewDB(cfg Config) (*sql.DB, error) {
	dsn, err := mysql.ParseDSN(cfg.DSN)
	if err != nil {
		return nil, fmt.Errorf("parse mysql dsn: %w", err)
	}
	connector, err := mysql.NewConnector(dsn)
	if err != nil {
		return nil, fmt.Errorf("mysql connector: %w", err)
	}

	db := sql.OpenDB(connector)
	db.SetMaxOpenConns(dbMaxOpen)
	db.SetMaxIdleConns(dbMaxIdle)
	db.SetConnMaxLifetime(dbMaxLifetime)
	return db, nil
}

// OpenStore connects the persistent store selected by cfg.CacheBackend. The
// returned close function releases it.
func OpenStore(ctx context.Context, cfg Config, logger *zap.Logger) (cache.Store, func() error, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	noop := func() error { return nil }

	switch cfg.CacheBackend {
	case BackendMemory, "":
		return cache.NewMemoryStore(), noop, nil

	case BackendRedis:
		client := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
		if err := client.Ping(ctx).Err(); err != nil {
			_ = client.Close()
			return nil, nil, fmt.Errorf("ping redis %s: %w", cfg.RedisAddr, err)
		}
		logger.Info("cache store ready", zap.String("backend", cfg.CacheBackend), zap.String("addr", cfg.RedisAddr))
		store := cache.NewRedisStore(client)
		return store, store.Close, nil

	case BackendBolt:
		store, err := cache.OpenBoltStore(cfg.BoltPath)
		if err != nil {
			return nil, nil, fmt.Errorf("open bolt %s: %w", cfg.BoltPath, err)
		}
		logger.Info("cache store ready", zap.String("backend", cfg.CacheBackend), zap.String("path", cfg.BoltPath))
		return store, store.Close, nil

	case BackendMySQL:
		db, err := NewDB(cfg)
		if err != nil {
			return nil, nil, fmt.Errorf("open db: %w", err)
		}
		if err := db.PingContext(ctx); err != nil {
			_ = db.Close()
			return nil, nil, fmt.Errorf("ping db: %w", err)
		}
		store := cache.NewSQLStore(db)
		if err := store.EnsureSchema(ctx); err != nil {
			_ = db.Close()
			return nil, nil, fmt.Errorf("create cache table: %w", err)
		}
		logger.Info("cache store ready", zap.String("backend", cfg.CacheBackend))
		return store, db.Close, nil
	}

	return nil, nil, fmt.Errorf("unsupported cache backend %q", cfg.CacheBackend)
}
