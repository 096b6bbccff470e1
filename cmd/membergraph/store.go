package main

import (
	"context"

	"github.com/hanpama/membergraph/internal/config"
	"github.com/hanpama/membergraph/internal/store"
	"github.com/hanpama/membergraph/internal/store/memstore"
	"github.com/hanpama/membergraph/internal/store/sqlstore"
)

const driverMemory = "memory"

func openStore(ctx context.Context, db config.Database) (store.Store, error) {
	if db.Driver == driverMemory {
		return memstore.New(), nil
	}
	st, err := sqlstore.Open(ctx, db.Driver, db.DSN, sqlstore.WithMaxOpenConns(db.MaxOpenConns))
	if err != nil {
		return nil, err
	}
	return st, nil
}

// migrate creates the schema when st is backed by a database.
func migrate(ctx context.Context, st store.Store) (bool, error) {
	m, ok := st.(interface{ Migrate(context.Context) error })
	if !ok {
		return false, nil
	}
	return true, m.Migrate(ctx)
}
