package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/hylla/leadflow/internal/adapters/events/redisbus"
	"github.com/hylla/leadflow/internal/adapters/seedfile"
	"github.com/hylla/leadflow/internal/adapters/storage/memory"
	"github.com/hylla/leadflow/internal/adapters/storage/postgres"
	"github.com/hylla/leadflow/internal/adapters/storage/sqlite"
	"github.com/hylla/leadflow/internal/app"
	"github.com/hylla/leadflow/internal/config"
	"github.com/hylla/leadflow/internal/domain"
	"github.com/hylla/leadflow/internal/notify"
	"github.com/hylla/leadflow/internal/platform"
	"github.com/redis/go-redis/v9"
)

// appRuntime holds everything one command needs: config, logger, store and service.
type appRuntime struct {
	appName    string
	devMode    bool
	paths      platform.Paths
	configPath string
	cfg        config.Config

	logger      *runtimeLogger
	repo        app.Repository
	svc         *app.Service
	bus         *redisbus.Bus
	broadcaster *app.Broadcaster
	notifier    *notify.Renderer

	closers []func() error
}

// openOptions selects which startup steps run for a command.
type openOptions struct {
	command     string
	muteConsole bool
	skipSeed    bool
	stderr      io.Writer
}

// resolvePaths resolves platform paths for the selected app name and mode.
func (o *cliOptions) resolvePaths() (platform.Paths, error) {
	return platform.DefaultPathsWithOptions(platform.Options{
		AppName: o.appName,
		DevMode: o.devMode,
	})
}

// resolveLocations applies flag, env and platform precedence for config and db paths.
func (o *cliOptions) resolveLocations(paths platform.Paths) (configPath, dbPath string, dbOverridden bool) {
	configPath = strings.TrimSpace(o.configPath)
	if configPath == "" {
		if envPath := strings.TrimSpace(os.Getenv("LEADFLOW_CONFIG")); envPath != "" {
			configPath = envPath
		} else {
			configPath = paths.ConfigPath
		}
	}
	dbPath = strings.TrimSpace(o.dbPath)
	dbOverridden = dbPath != ""
	if !dbOverridden {
		if envPath := strings.TrimSpace(os.Getenv("LEADFLOW_DB_PATH")); envPath != "" {
			dbPath = envPath
			dbOverridden = true
		} else {
			dbPath = paths.DBPath
		}
	}
	return configPath, dbPath, dbOverridden
}

// openRuntime loads config, starts logging, opens the store and wires the service.
func openRuntime(ctx context.Context, opts *cliOptions, oo openOptions) (*appRuntime, error) {
	paths, err := opts.resolvePaths()
	if err != nil {
		return nil, err
	}
	configPath, dbPath, dbOverridden := opts.resolveLocations(paths)

	cfg, err := config.Load(configPath, config.Default(dbPath))
	if err != nil {
		return nil, fmt.Errorf("load config %q: %w", configPath, err)
	}
	if dbOverridden {
		cfg.Database.Path = dbPath
	}
	if driver := strings.TrimSpace(opts.driver); driver != "" {
		cfg.Database.Driver = config.Driver(driver)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validate config %q: %w", configPath, err)
	}

	logger, err := newRuntimeLogger(oo.stderr, opts.appName, opts.devMode, cfg.Logging, time.Now)
	if err != nil {
		return nil, fmt.Errorf("configure runtime logger: %w", err)
	}
	if oo.muteConsole {
		// the board owns the terminal; runtime logs go to the dev file only.
		logger.SetConsoleEnabled(false)
	}

	rt := &appRuntime{
		appName:     opts.appName,
		devMode:     opts.devMode,
		paths:       paths,
		configPath:  configPath,
		cfg:         cfg,
		logger:      logger,
		broadcaster: app.NewBroadcaster(),
	}
	fail := func(err error) (*appRuntime, error) {
		_ = rt.Close()
		return nil, err
	}

	logger.Info("startup configuration resolved", "app", opts.appName, "dev_mode", opts.devMode, "command", oo.command)
	logger.Debug("runtime paths resolved", "config_path", configPath, "data_dir", paths.DataDir, "db_path", cfg.Database.Path)
	if devPath := logger.DevLogPath(); devPath != "" {
		logger.Info("dev file logging enabled", "path", devPath)
	}

	repo, closeRepo, err := openRepository(ctx, cfg.NormalizedDriver(), cfg.Database, logger)
	if err != nil {
		return fail(err)
	}
	rt.repo = repo
	if closeRepo != nil {
		rt.closers = append(rt.closers, closeRepo)
	}

	publishers := app.Fanout{rt.broadcaster}
	if addr := strings.TrimSpace(cfg.Events.RedisAddr); addr != "" {
		bus := redisbus.New(&redis.Options{Addr: addr}, cfg.Events.ChannelPrefix)
		if pingErr := bus.Ping(ctx); pingErr != nil {
			logger.Warn("redis event bus unavailable; events stay local", "addr", addr, "err", pingErr)
			_ = bus.Close()
		} else {
			logger.Info("redis event bus ready", "addr", addr, "channel", redisbus.Channel(cfg.Events.ChannelPrefix))
			rt.bus = bus
			rt.closers = append(rt.closers, bus.Close)
			publishers = append(publishers, bus)
		}
	}

	rt.svc = app.NewService(repo, uuid.NewString, nil, app.ServiceConfig{
		Publisher: publishers,
		Logger:    logger,
	})

	rt.notifier, err = notify.New(notify.Templates{
		CreatedTitle: cfg.Notifications.CreatedTitle,
		CreatedBody:  cfg.Notifications.CreatedBody,
		MovedTitle:   cfg.Notifications.MovedTitle,
		MovedBody:    cfg.Notifications.MovedBody,
	})
	if err != nil {
		return fail(fmt.Errorf("parse notification templates: %w", err))
	}

	if cfg.Seed.Enabled && !oo.skipSeed {
		if err := rt.seed(ctx); err != nil {
			return fail(err)
		}
	}
	return rt, nil
}

// openRepository opens the configured store. The returned closer may be nil.
func openRepository(ctx context.Context, driver config.Driver, db config.DatabaseConfig, logger *runtimeLogger) (app.Repository, func() error, error) {
	switch driver {
	case config.DriverSQLite:
		logger.Info("opening sqlite repository", "db_path", db.Path)
		repo, err := sqlite.Open(db.Path)
		if err != nil {
			logger.Error("sqlite open failed", "db_path", db.Path, "err", err)
			return nil, nil, fmt.Errorf("open sqlite repository: %w", err)
		}
		return repo, repo.Close, nil
	case config.DriverPostgres:
		logger.Info("opening postgres repository")
		repo, err := postgres.Open(ctx, db.DSN)
		if err != nil {
			logger.Error("postgres open failed", "err", err)
			return nil, nil, fmt.Errorf("open postgres repository: %w", err)
		}
		return repo, repo.Close, nil
	case config.DriverMemory:
		logger.Info("using in-memory repository")
		return memory.New(), nil, nil
	default:
		return nil, nil, fmt.Errorf("unsupported database driver %q", driver)
	}
}

// seedPath picks the seed file: the configured path, else <config>/seed.yaml
// when present, else none.
func (rt *appRuntime) seedPath() string {
	if path := strings.TrimSpace(rt.cfg.Seed.Path); path != "" {
		return path
	}
	if rt.paths.SeedPath == "" {
		return ""
	}
	if info, err := os.Stat(rt.paths.SeedPath); err == nil && !info.IsDir() {
		return rt.paths.SeedPath
	}
	return ""
}

// seed loads the seed set into an empty store.
func (rt *appRuntime) seed(ctx context.Context) error {
	leads := app.DefaultSeed()
	source := "built-in"
	if path := rt.seedPath(); path != "" {
		loaded, err := seedfile.Load(path)
		if err != nil {
			return fmt.Errorf("load seed: %w", err)
		}
		leads, source = loaded, path
	}
	added, err := rt.svc.EnsureSeed(ctx, leads)
	if err != nil {
		return fmt.Errorf("seed leads: %w", err)
	}
	if added > 0 {
		rt.logger.Info("seeded leads", "count", added, "source", source)
	}
	return nil
}

// ready reports whether the store and event bus answer.
func (rt *appRuntime) ready(ctx context.Context) error {
	if _, err := rt.svc.ListLeads(ctx); err != nil {
		return fmt.Errorf("list leads: %w", err)
	}
	if rt.bus != nil {
		if err := rt.bus.Ping(ctx); err != nil {
			return fmt.Errorf("ping redis: %w", err)
		}
	}
	return nil
}

// logEvents mirrors every local change into the runtime log.
func (rt *appRuntime) logEvents() func() {
	return rt.broadcaster.Subscribe(func(event domain.LeadEvent) {
		rt.logger.Info("lead changed",
			"operation", event.Operation,
			"lead_id", event.LeadID,
			"from", event.FromStatus.String(),
			"to", event.ToStatus.String(),
		)
	})
}

// Close releases the store, bus and log file.
func (rt *appRuntime) Close() error {
	if rt == nil {
		return nil
	}
	var errs []error
	for i := len(rt.closers) - 1; i >= 0; i-- {
		if err := rt.closers[i](); err != nil {
			errs = append(errs, err)
		}
	}
	rt.closers = nil
	if err := rt.logger.Close(); err != nil {
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}
