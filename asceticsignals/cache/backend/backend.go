package backend

import (
	"context"
	"log/slog"

	"github.com/pkg/errors"

	"github.com/krew-solutions/ascetic-signals-go/asceticsignals/cache"
	"github.com/krew-solutions/ascetic-signals-go/asceticsignals/cache/pg"
	"github.com/krew-solutions/ascetic-signals-go/asceticsignals/cache/redis"
	"github.com/krew-solutions/ascetic-signals-go/asceticsignals/config"
	"github.com/krew-solutions/ascetic-signals-go/asceticsignals/logger"
	pgxsession "github.com/krew-solutions/ascetic-signals-go/asceticsignals/session/pgx"
)

const (
	Memory   = "memory"
	Redis    = "redis"
	Postgres = "postgres"
)

var (
	ErrUnknownBackend     = errors.New("backend: unknown cache backend")
	ErrMissingDatabaseURL = errors.New("backend: DATABASE_URL is required for the postgres cache")
)

type Config struct {
	Backend        string `env:"CACHE_BACKEND" envDefault:"memory"`
	Name           string `env:"CACHE_NAME" envDefault:"default"`
	MemoryCapacity int    `env:"CACHE_MEMORY_CAPACITY" envDefault:"1024"`
	PgTable        string `env:"CACHE_PG_TABLE" envDefault:"cache_entries"`
	PgSetup        bool   `env:"CACHE_PG_SETUP" envDefault:"true"`
	DatabaseURL    string `env:"DATABASE_URL"`
	Redis          redis.Config
}

// LoadConfig reads Config from the environment and an optional .env file.
func LoadConfig() (Config, error) {
	var cfg Config
	err := config.Load(&cfg)
	return cfg, err
}

// Open builds the cache selected by cfg.Backend. The returned close function
// releases the store's connections and is never nil.
func Open(ctx context.Context, cfg Config, log *slog.Logger) (*cache.Cache, func() error, error) {
	if log == nil {
		log = logger.Discard()
	}
	store, closeFn, err := openStore(ctx, cfg, log)
	if err != nil {
		return nil, nil, err
	}
	log.InfoContext(ctx, "cache opened",
		logger.Component("cache"), slog.String("backend", cfg.Backend), logger.Namespace(cfg.Name))
	return cache.New(cfg.Name, store, cache.WithLogger(log)), closeFn, nil
}

func openStore(ctx context.Context, cfg Config, log *slog.Logger) (cache.Store, func() error, error) {
	switch cfg.Backend {
	case Memory, "":
		return cache.NewMemoryStore(cache.WithCapacity(cfg.MemoryCapacity)), func() error { return nil }, nil

	case Redis:
		client, err := redis.Connect(ctx, cfg.Redis)
		if err != nil {
			return nil, nil, err
		}
		store := redis.NewStore(client, redis.WithScanBatchSize(cfg.Redis.ScanBatchSize))
		return store, store.Close, nil

	case Postgres:
		if cfg.DatabaseURL == "" {
			return nil, nil, ErrMissingDatabaseURL
		}
		pool, err := pgxsession.Connect(ctx, cfg.DatabaseURL, pgxsession.WithLogger(log))
		if err != nil {
			return nil, nil, err
		}
		closeFn := func() error {
			pool.Close()
			return nil
		}
		store := pg.NewStore(pool, pg.WithTable(cfg.PgTable))
		if cfg.PgSetup {
			if err := store.Setup(ctx); err != nil {
				pool.Close()
				return nil, nil, err
			}
		}
		return store, closeFn, nil

	default:
		return nil, nil, errors.WithMessagef(ErrUnknownBackend, "%q", cfg.Backend)
	}
}
