package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"

	"github.com/rl1809/warehouse-inventory/internal/config"
	"github.com/rl1809/warehouse-inventory/internal/port"
)

// Backend bundles the stores selected by the configuration.
type Backend struct {
	Stock  port.StockRepository
	Cache  port.CacheRepository
	Recon  port.ReconciliationLog
	Ledger port.OrderLedger

	closers []func() error
}

// Open connects every store the configured backend needs and runs the
// schema migrations of the SQL stores.
func Open(ctx context.Context, cfg *config.Config) (*Backend, error) {
	b := &Backend{}

	if cfg.StockBackend == config.BackendMemory {
		cache := NewMemoryCache()
		b.Stock = NewMemoryStockAdapter()
		b.Cache = cache
		b.Recon = cache
		b.Ledger = NewMemoryOrderLedger()
		return b, nil
	}

	// Initialize Redis
	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		PoolSize: 100,
	})
	b.closers = append(b.closers, rdb.Close)
	if err := rdb.Ping(ctx).Err(); err != nil {
		return nil, b.fail(fmt.Errorf("connect redis: %w", err))
	}
	cache := NewRedisAdapter(rdb, cfg.IdempotencyTTL)
	b.Cache = cache
	b.Recon = cache

	switch cfg.StockBackend {
	case config.BackendRedis:
		b.Stock = NewRedisStockAdapter(rdb)
	case config.BackendMySQL:
		dsn, err := MySQLDSN(cfg.MySQLDSN)
		if err != nil {
			return nil, b.fail(err)
		}
		db, err := sql.Open("mysql", dsn)
		if err != nil {
			return nil, b.fail(fmt.Errorf("open mysql: %w", err))
		}
		b.closers = append(b.closers, db.Close)
		db.SetMaxOpenConns(50)
		db.SetMaxIdleConns(25)
		db.SetConnMaxLifetime(5 * time.Minute)

		if err := db.PingContext(ctx); err != nil {
			return nil, b.fail(fmt.Errorf("ping mysql: %w", err))
		}
		stock := NewMySQLStockAdapter(db)
		if err := stock.Migrate(ctx); err != nil {
			return nil, b.fail(err)
		}
		b.Stock = stock
	}

	// Initialize Postgres
	pool, err := pgxpool.New(ctx, cfg.PostgresDSN)
	if err != nil {
		return nil, b.fail(fmt.Errorf("open postgres: %w", err))
	}
	b.closers = append(b.closers, func() error {
		pool.Close()
		return nil
	})
	if err := pool.Ping(ctx); err != nil {
		return nil, b.fail(fmt.Errorf("ping postgres: %w", err))
	}
	ledger := NewPostgresOrderLedger(pool)
	if err := ledger.Migrate(ctx); err != nil {
		return nil, b.fail(err)
	}
	b.Ledger = ledger

	return b, nil
}

func (b *Backend) fail(err error) error {
	return errors.Join(err, b.Close())
}

// Close releases connections in reverse order of opening.
func (b *Backend) Close() error {
	var err error
	for i := len(b.closers) - 1; i >= 0; i-- {
		err = errors.Join(err, b.closers[i]())
	}
	b.closers = nil
	return err
}
