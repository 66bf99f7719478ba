package cli

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/aretw0/hsn"
	httpAdapter "github.com/aretw0/hsn/pkg/adapters/http"
	"github.com/aretw0/hsn/pkg/adapters/memory"
	redisAdapter "github.com/aretw0/hsn/pkg/adapters/redis"
	"github.com/aretw0/hsn/pkg/config"
	"github.com/aretw0/hsn/pkg/guardrail"
	"github.com/aretw0/hsn/pkg/loader"
	"github.com/aretw0/hsn/pkg/observability"
	"github.com/aretw0/hsn/pkg/persistence/middleware"
	"github.com/aretw0/hsn/pkg/persona"
	"github.com/aretw0/hsn/pkg/ports"
)

// App bundles the assistant with the infrastructure built around it from a
// Config. Every command starts from one.
type App struct {
	Config    config.Config
	Logger    *slog.Logger
	Assistant *hsn.Assistant
	Metrics   *observability.Metrics
	Streams   *httpAdapter.StreamManager

	closers []func() error
}

// Build validates cfg and wires the session backend, guardrails, persona,
// metrics and event streams into a new assistant.
func Build(ctx context.Context, cfg config.Config, logger *slog.Logger) (*App, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	app := &App{
		Config:  cfg,
		Logger:  logger,
		Streams: httpAdapter.NewStreamManager(),
	}

	hooks := app.Streams.Hooks().Merge(debugHooks(logger))
	if cfg.Metrics.Enabled {
		app.Metrics = observability.NewMetrics(nil)
		hooks = hooks.Merge(app.Metrics.Hooks())
	}

	p, err := persona.LoadOrDefault(ctx, cfg.Persona.Dir)
	if err != nil {
		return nil, fmt.Errorf("failed to load persona: %w", err)
	}
	if err := p.Validate(); err != nil {
		return nil, err
	}

	store, locker, err := app.sessionBackend(ctx)
	if err != nil {
		return nil, err
	}
	store, err = protectSessions(store, cfg.Session)
	if err != nil {
		_ = app.Close()
		return nil, err
	}

	opts := []hsn.Option{
		hsn.WithLogger(logger),
		hsn.WithLifecycleHooks(hooks),
		hsn.WithPersona(p),
		hsn.WithSessionStore(store),
		hsn.WithLoaderOptions(
			loader.WithColumns(cfg.Data.CodeColumn, cfg.Data.DescriptionColumn),
			loader.WithSheet(cfg.Data.Sheet),
			loader.WithSQLiteTable(cfg.Data.Table),
			loader.WithLogger(logger),
		),
	}
	if locker != nil {
		opts = append(opts, hsn.WithLocker(locker))
	}
	if cfg.Guardrails.Enabled {
		opts = append(opts,
			hsn.WithCodeGuard(guardrail.NewCodeGuard(cfg.Guardrails.BlockedPrefixes...)),
			hsn.WithKeywordGuard(guardrail.NewKeywordGuard(guardrail.WithKeywords(cfg.Guardrails.BlockedKeywords...))),
			hsn.WithMaxMessageSize(cfg.Guardrails.MaxMessageLength),
		)
	} else {
		opts = append(opts, hsn.WithoutGuardrails())
	}

	a, err := hsn.New(cfg.Data.File, opts...)
	if err != nil {
		_ = app.Close()
		return nil, fmt.Errorf("error initializing assistant: %w", err)
	}
	app.Assistant = a

	if a.Table().Empty() {
		logger.Warn("Reference table is empty; every lookup will report DATASTORE_UNAVAILABLE", "file", cfg.Data.File)
	}
	return app, nil
}

func (app *App) sessionBackend(ctx context.Context) (ports.SessionStore, ports.DistributedLocker, error) {
	cfg := app.Config.Session
	if cfg.Backend != config.BackendRedis {
		return memory.NewStore(), nil, nil
	}

	opts := []redisAdapter.Option{redisAdapter.WithTTL(cfg.TTL)}
	if cfg.Redis.Prefix != "" {
		opts = append(opts, redisAdapter.WithPrefix(cfg.Redis.Prefix))
	}
	store := redisAdapter.New(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB, opts...)
	if err := store.Ping(ctx); err != nil {
		_ = store.Close()
		return nil, nil, fmt.Errorf("redis unavailable at %s: %w", cfg.Redis.Addr, err)
	}
	app.closers = append(app.closers, store.Close)

	prefix := cfg.Redis.Prefix
	if prefix == "" {
		prefix = redisAdapter.DefaultPrefix
	}
	app.Logger.Info("Using redis session store", "addr", cfg.Redis.Addr, "ttl", cfg.TTL)
	return store, redisAdapter.NewLocker(store.Client(), prefix), nil
}

// protectSessions applies redaction and encryption at rest, in that order.
func protectSessions(store ports.SessionStore, cfg config.Session) (ports.SessionStore, error) {
	var mws []middleware.Middleware
	if len(cfg.RedactKeys) > 0 {
		pii, err := middleware.NewPIIMiddleware(cfg.RedactKeys)
		if err != nil {
			return nil, err
		}
		mws = append(mws, pii)
	}
	if cfg.EncryptionKey != "" {
		keys, err := middleware.ParseKeys(cfg.EncryptionKey, cfg.FallbackKeys...)
		if err != nil {
			return nil, fmt.Errorf("session encryption: %w", err)
		}
		mws = append(mws, middleware.NewEncryptionMiddleware(keys))
	}
	return middleware.Chain(store, mws...), nil
}

// Close releases backend connections.
func (app *App) Close() error {
	var errs []error
	for _, c := range app.closers {
		errs = append(errs, c())
	}
	app.closers = nil
	return errors.Join(errs...)
}
