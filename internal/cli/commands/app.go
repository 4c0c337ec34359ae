package commands

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/conduit-lang/pgdao/internal/cli/config"
	"github.com/conduit-lang/pgdao/internal/database"
	"github.com/conduit-lang/pgdao/internal/logging"
	"github.com/conduit-lang/pgdao/internal/orm/cache"
	"github.com/conduit-lang/pgdao/internal/orm/crud"
)

// openDatabase is replaced in tests
var openDatabase = database.Open

// app holds everything a command needs once the configuration is loaded
type app struct {
	cfg        *config.Config
	logger     *zap.Logger
	db         *sql.DB
	cache      cache.Cache
	closeCache func() error
	daos       map[string]*crud.DAO
}

// newApp loads the configuration and opens the database, the cache and one
// DAO per configured resource
func newApp(ctx context.Context, opts *globalOptions) (*app, error) {
	cfg, err := config.Load(opts.configPath)
	if err != nil {
		return nil, &configError{err: err}
	}

	level := cfg.Log.Level
	if opts.logLevel != "" {
		level = opts.logLevel
	}
	logger, err := logging.New(level, cfg.Log.Development)
	if err != nil {
		return nil, &configError{err: err}
	}

	db, err := openDatabase(ctx, cfg.Database)
	if err != nil {
		logger.Sync()
		return nil, &databaseError{err: err}
	}

	a := &app{cfg: cfg, logger: logger, db: db, daos: map[string]*crud.DAO{}}

	a.cache, a.closeCache, err = newCache(ctx, cfg.Cache)
	if err != nil {
		a.Close()
		return nil, fmt.Errorf("failed to open %s cache: %w", cfg.Cache.Backend, err)
	}

	for _, name := range cfg.ResourceNames() {
		resource := cfg.Resources[name]
		dao, err := crud.NewDAO(db, crud.Options{
			Table:    resource.Table,
			Fields:   resource.Fields,
			IDField:  resource.IDField,
			Cache:    a.cache,
			CacheTTL: cfg.Cache.TTL,
			Logger:   logger.Named("dao").With(zap.String("resource", name)),
		})
		if err != nil {
			a.Close()
			return nil, &configError{err: fmt.Errorf("resources.%s: %w", name, err)}
		}
		a.daos[name] = dao
	}

	logger.Debug("application ready",
		zap.String("driver", cfg.Database.Driver),
		zap.String("cache", cfg.Cache.Backend),
		zap.Int("resources", len(a.daos)),
	)
	return a, nil
}

// newCache builds the configured cache backend. The "none" backend yields a
// nil cache.
func newCache(ctx context.Context, cfg config.CacheConfig) (cache.Cache, func() error, error) {
	common := cache.CacheConfig{DefaultTTL: cfg.TTL, Prefix: cfg.Prefix}

	switch cfg.Backend {
	case "memory":
		c := cache.NewMemoryCacheWithConfig(common)
		return c, c.Close, nil
	case "redis":
		c, err := cache.NewRedisCacheWithConfig(ctx, cache.RedisConfig{
			Addr:        cfg.Addr,
			Password:    cfg.Password,
			DB:          cfg.DB,
			CacheConfig: common,
		})
		if err != nil {
			return nil, nil, err
		}
		return c, c.Close, nil
	default:
		return nil, func() error { return nil }, nil
	}
}

// dao returns the DAO of a configured resource
func (a *app) dao(name string) (*crud.DAO, error) {
	dao, ok := a.daos[name]
	if !ok {
		return nil, &unknownResourceError{name: name, known: a.cfg.ResourceNames()}
	}
	return dao, nil
}

// clearCache drops every cached query result. Failures are logged only.
func (a *app) clearCache(ctx context.Context) {
	if a.cache == nil {
		return
	}
	if err := a.cache.Clear(ctx); err != nil {
		a.logger.Warn("cache clear failed", zap.Error(err))
	}
}

// Close releases the cache and the database
func (a *app) Close() error {
	var errs []error
	if a.closeCache != nil {
		errs = append(errs, a.closeCache())
	}
	if a.db != nil {
		errs = append(errs, a.db.Close())
	}
	a.logger.Sync()
	return errors.Join(errs...)
}
