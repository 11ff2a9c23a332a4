package bootstrap

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/jmoiron/sqlx"
	"github.com/redis/go-redis/v9"

	coreconfig "github.com/m3rciful/menfes/core/config"
	coredatabase "github.com/m3rciful/menfes/core/database"
	"github.com/m3rciful/menfes/core/logger"
	"github.com/m3rciful/menfes/core/metrics"
	"github.com/m3rciful/menfes/core/paramstore"
	"github.com/m3rciful/menfes/core/telegram/state"
)

// Options control the bootstrap pipeline. Nil hooks fall back to the real
// implementations.
type Options struct {
	Config *coreconfig.Config

	LoggerInit func(*coreconfig.Config) error
	// Secrets resolves the token parameter when no token is configured.
	Secrets func(ctx context.Context) (paramstore.Getter, error)

	Connect func(ctx context.Context, cfg coreconfig.DatabaseConfig) (*sqlx.DB, error)
	Migrate func(ctx context.Context, db *sqlx.DB) error
	Redis   func(ctx context.Context, url string) (*redis.Client, error)
}

// Result exposes infrastructure initialized by the bootstrap pipeline.
type Result struct {
	Backend state.Backend
	closers []func() error
}

// Close releases the connections opened for the state backend.
func (r *Result) Close() error {
	var first error
	for i := len(r.closers) - 1; i >= 0; i-- {
		if err := r.closers[i](); err != nil && first == nil {
			first = err
		}
	}
	r.closers = nil
	return first
}

// Run initializes the logger, resolves the bot token and opens the state backend.
func Run(ctx context.Context, opts Options) (*Result, error) {
	if opts.Config == nil {
		return nil, fmt.Errorf("bootstrap: nil config provided")
	}
	cfg := opts.Config

	loggerInit := opts.LoggerInit
	if loggerInit == nil {
		loggerInit = logger.InitLogger
	}
	if err := loggerInit(cfg); err != nil {
		return nil, fmt.Errorf("bootstrap: logger init failed: %w", err)
	}
	metrics.MustRegister()

	if err := resolveToken(ctx, cfg, opts.Secrets); err != nil {
		return nil, err
	}

	res := &Result{}
	backend, err := openBackend(ctx, cfg.Store, opts, res)
	if err != nil {
		_ = res.Close()
		return nil, err
	}
	res.Backend = backend
	logger.Info(ctx, logger.CompStore, "store.ready",
		slog.String("backend", cfg.Store.Backend),
		slog.Duration("ttl", cfg.Store.TTL),
	)
	return res, nil
}

func resolveToken(ctx context.Context, cfg *coreconfig.Config, secrets func(context.Context) (paramstore.Getter, error)) error {
	if cfg.Telegram.Token != "" {
		return nil
	}
	if secrets == nil {
		secrets = func(ctx context.Context) (paramstore.Getter, error) {
			return paramstore.NewFromEnvironment(ctx)
		}
	}
	getter, err := secrets(ctx)
	if err != nil {
		return fmt.Errorf("bootstrap: parameter store init failed: %w", err)
	}
	token, err := paramstore.ResolveToken(ctx, getter, cfg.Telegram.TokenParam)
	if err != nil {
		return fmt.Errorf("bootstrap: token lookup failed: %w", err)
	}
	cfg.Telegram.Token = token
	logger.Info(ctx, logger.CompApp, "token.resolved", slog.String("param", cfg.Telegram.TokenParam))
	return nil
}

func openBackend(ctx context.Context, sc coreconfig.StoreConfig, opts Options, res *Result) (state.Backend, error) {
	switch sc.Backend {
	case coreconfig.BackendRedis:
		open := opts.Redis
		if open == nil {
			open = openRedis
		}
		client, err := open(ctx, sc.Redis.URL)
		if err != nil {
			return nil, fmt.Errorf("bootstrap: redis initialization failed: %w", err)
		}
		res.closers = append(res.closers, client.Close)
		return state.NewRedisBackend(client, sc.Redis.Prefix), nil

	case coreconfig.BackendPostgres:
		connect := opts.Connect
		if connect == nil {
			connect = coredatabase.Connect
		}
		db, err := connect(ctx, sc.Database)
		if err != nil {
			return nil, fmt.Errorf("bootstrap: database initialization failed: %w", err)
		}
		res.closers = append(res.closers, db.Close)

		migrate := opts.Migrate
		if migrate == nil {
			migrate = coredatabase.RunMigrations
		}
		if err := migrate(ctx, db); err != nil {
			return nil, fmt.Errorf("bootstrap: migrations failed: %w", err)
		}
		return state.NewPostgresBackend(db), nil

	default:
		return state.NewMemoryBackend(), nil
	}
}

func openRedis(ctx context.Context, url string) (*redis.Client, error) {
	opt, err := redis.ParseURL(url)
	if err != nil {
		return nil, err
	}
	client := redis.NewClient(opt)
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, err
	}
	return client, nil
}
