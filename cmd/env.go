package main

import (
	"context"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/ridebase/catalog-cli/internal/consolidate"
	"github.com/ridebase/catalog-cli/internal/sku"
	"github.com/ridebase/catalog-cli/internal/source"
	"github.com/ridebase/catalog-cli/internal/store"
)

// consolidatorEnv holds the store, the wired sources, and the consolidator
// shared by the consolidate/batch/describe/serve commands.
type consolidatorEnv struct {
	Store        store.Store
	Consolidator *consolidate.Consolidator

	closers []func() error
}

// Close releases every resource the environment opened.
func (e *consolidatorEnv) Close() {
	for i := len(e.closers) - 1; i >= 0; i-- {
		if err := e.closers[i](); err != nil {
			zap.L().Warn("close failed", zap.Error(err))
		}
	}
}

// initStore opens and migrates the local working store.
func initStore(ctx context.Context) (store.Store, error) {
	st, err := store.NewSQLite(cfg.Store.Path)
	if err != nil {
		return nil, eris.Wrap(err, "open store")
	}
	if err := st.Migrate(ctx); err != nil {
		_ = st.Close()
		return nil, eris.Wrap(err, "migrate store")
	}
	return st, nil
}

// initEnv wires the three product data sources and the consolidator over
// them. Callers should defer env.Close().
func initEnv(ctx context.Context) (*consolidatorEnv, error) {
	st, err := initStore(ctx)
	if err != nil {
		return nil, err
	}

	env := &consolidatorEnv{Store: st}
	env.closers = append(env.closers, st.Close)

	lookups := []source.Lookup{
		source.NewCatalogue(cfg.Catalogue.Dir, sku.DefaultPolicy),
		source.NewSpreadsheet(st),
	}

	dbLookup, closeDB, err := initDatabaseSource(ctx)
	if err != nil {
		env.Close()
		return nil, err
	}
	if dbLookup != nil {
		lookups = append(lookups, dbLookup)
		env.closers = append(env.closers, closeDB)
	}

	env.Consolidator = consolidate.New(lookups,
		consolidate.WithConcurrency(cfg.Batch.MaxConcurrentSKUs),
		consolidate.WithRateLimit(cfg.Batch.SourceRateLimit),
		consolidate.WithAuditStore(st),
	)
	return env, nil
}

// initDatabaseSource opens the legacy store database per config. A missing
// DSN disables the source rather than failing; consolidation then runs on
// the two remaining sources.
func initDatabaseSource(ctx context.Context) (source.Lookup, func() error, error) {
	if cfg.Database.DSN == "" {
		zap.L().Info("database source disabled (no DSN configured)")
		return nil, nil, nil
	}

	switch cfg.Database.Driver {
	case "sqlite":
		db, err := source.NewDatabase(cfg.Database.DSN, sku.DefaultPolicy)
		if err != nil {
			return nil, nil, eris.Wrap(err, "open database source")
		}
		return db, db.Close, nil
	case "postgres":
		pg, pool, err := source.NewPostgresPool(ctx, cfg.Database.DSN, sku.DefaultPolicy)
		if err != nil {
			return nil, nil, eris.Wrap(err, "open database source")
		}
		return pg, func() error { pool.Close(); return nil }, nil
	default:
		return nil, nil, eris.Errorf("unknown database driver %q", cfg.Database.Driver)
	}
}
