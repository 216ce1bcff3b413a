package main

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/cory-johannsen/menagerie/internal/config"
	"github.com/cory-johannsen/menagerie/internal/game/roster"
	"github.com/cory-johannsen/menagerie/internal/storage/postgres"
	"github.com/cory-johannsen/menagerie/internal/storage/sqlite"
)

// saveStore is the subset of store behaviour the CLI needs.
type saveStore interface {
	roster.Store
	Delete(ctx context.Context, owner string) error
	Owners(ctx context.Context) ([]string, error)
	Close() error
}

// pgStore owns the pool behind a RosterRepository.
type pgStore struct {
	*postgres.RosterRepository
	pool *postgres.Pool
}

func (s *pgStore) Close() error {
	s.pool.Close()
	return nil
}

// openStore opens the store selected by cfg.Storage.Driver.
func openStore(ctx context.Context, cfg config.Config, logger *zap.Logger) (saveStore, error) {
	switch cfg.Storage.Driver {
	case config.DriverSQLite:
		store, err := sqlite.Open(cfg.Storage.SQLitePath, logger)
		if err != nil {
			return nil, fmt.Errorf("opening sqlite store: %w", err)
		}
		return store, nil
	case config.DriverPostgres:
		pool, err := postgres.NewPool(ctx, cfg.Database, logger)
		if err != nil {
			return nil, fmt.Errorf("connecting to database: %w", err)
		}
		return &pgStore{RosterRepository: postgres.NewRosterRepository(pool.DB(), logger), pool: pool}, nil
	default:
		return nil, fmt.Errorf("unknown storage driver %q", cfg.Storage.Driver)
	}
}
