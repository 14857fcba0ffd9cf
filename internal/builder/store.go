package builder

import (
	"context"
	"fmt"
	"time"

	"github.com/futig/survey-agent/internal/config"
	"github.com/futig/survey-agent/internal/repository"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
	"go.uber.org/zap"
)

// setupStore opens the configured session backend. closers release it on shutdown.
func setupStore(ctx context.Context, cfg *config.Config, logger *zap.Logger) (repository.SessionRepository, []func(), error) {
	ttl := cfg.StoreCfg.TTL

	switch cfg.StoreCfg.Kind {
	case config.StorePostgres:
		db, err := openPostgres(ctx, cfg, logger)
		if err != nil {
			return nil, nil, err
		}

		logger.Info("applying migrations", zap.String("source", migrationSource(cfg.DBMigrationsURL)))
		if err := repository.RunMigrations(cfg.DBMigrationsURL, cfg.DatabaseURL); err != nil {
			db.Close()
			return nil, nil, fmt.Errorf("run migrations: %w", err)
		}
		logger.Info("migrations applied")

		store := repository.NewSessionPostgres(db, ttl)
		stopPurge := startPurgeLoop(store, cfg.StoreCfg.CleanupInterval, logger)
		return store, []func(){stopPurge, db.Close}, nil

	case config.StoreRedis:
		client := redis.NewClient(&redis.Options{
			Addr:     cfg.RedisCfg.Addr,
			Password: cfg.RedisCfg.Password,
			DB:       cfg.RedisCfg.DB,
		})
		if err := client.Ping(ctx).Err(); err != nil {
			_ = client.Close()
			return nil, nil, fmt.Errorf("ping redis: %w", err)
		}
		logger.Info("redis connection established", zap.String("addr", cfg.RedisCfg.Addr))

		closeRedis := func() {
			if err := client.Close(); err != nil {
				logger.Error("close redis", zap.Error(err))
			}
		}
		return repository.NewSessionRedis(client, cfg.RedisCfg.KeyPrefix, ttl), []func(){closeRedis}, nil

	case config.StoreMongo:
		connectCtx, cancel := context.WithTimeout(ctx, cfg.MongoCfg.ConnectTimeout)
		defer cancel()

		client, err := mongo.Connect(connectCtx, options.Client().ApplyURI(cfg.MongoCfg.URI))
		if err != nil {
			return nil, nil, fmt.Errorf("connect mongo: %w", err)
		}
		closeMongo := func() {
			disconnectCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := client.Disconnect(disconnectCtx); err != nil {
				logger.Error("disconnect mongo", zap.Error(err))
			}
		}

		if err := client.Ping(connectCtx, readpref.Primary()); err != nil {
			closeMongo()
			return nil, nil, fmt.Errorf("ping mongo: %w", err)
		}

		store := repository.NewSessionMongo(client.Database(cfg.MongoCfg.Database), cfg.MongoCfg.Collection, ttl)
		if err := store.EnsureIndexes(connectCtx); err != nil {
			closeMongo()
			return nil, nil, fmt.Errorf("ensure mongo indexes: %w", err)
		}
		logger.Info("mongo connection established",
			zap.String("database", cfg.MongoCfg.Database),
			zap.String("collection", cfg.MongoCfg.Collection),
		)
		return store, []func(){closeMongo}, nil

	default:
		logger.Info("Using in-memory session store", zap.Duration("ttl", ttl))
		return repository.NewSessionMemory(ttl, cfg.StoreCfg.CleanupInterval), nil, nil
	}
}

func postgresPoolConfig(cfg *config.Config) (*pgxpool.Config, error) {
	pc, err := pgxpool.ParseConfig(cfg.DatabaseURL)
	if err != nil {
		return nil, fmt.Errorf("parse database URL: %w", err)
	}

	pc.MaxConns = int32(cfg.DBMaxConns)
	pc.MinConns = int32(cfg.DBMinConns)
	pc.MaxConnLifetime = cfg.DBMaxConnLifetime
	pc.MaxConnIdleTime = cfg.DBMaxConnIdleTime
	pc.HealthCheckPeriod = cfg.DBHealthCheckPeriod
	return pc, nil
}

func openPostgres(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*pgxpool.Pool, error) {
	pc, err := postgresPoolConfig(cfg)
	if err != nil {
		return nil, err
	}

	pool, err := pgxpool.NewWithConfig(ctx, pc)
	if err != nil {
		return nil, fmt.Errorf("open postgres pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}

	logger.Info("postgres pool ready",
		zap.String("host", pc.ConnConfig.Host),
		zap.Int32("max_conns", pc.MaxConns),
		zap.Int32("min_conns", pc.MinConns),
	)
	return pool, nil
}

// startPurgeLoop deletes expired postgres sessions every interval until stopped
func startPurgeLoop(store *repository.SessionPostgres, interval time.Duration, logger *zap.Logger) func() {
	if interval <= 0 {
		return func() {}
	}

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				n, err := store.PurgeExpired(ctx)
				if err != nil {
					logger.Error("purge expired sessions", zap.Error(err))
					continue
				}
				if n > 0 {
					logger.Info("purged expired sessions", zap.Int64("count", n))
				}
			}
		}
	}()

	return cancel
}

func migrationSource(url string) string {
	if url == "" {
		return "embedded"
	}
	return url
}
