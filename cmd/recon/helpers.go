package main

import (
	"context"
	"fmt"

	"github.com/spf13/viper"
	"github.com/statementworks/recon/internal/config"
	"github.com/statementworks/recon/internal/engine"
	"github.com/statementworks/recon/internal/service"
	"github.com/statementworks/recon/internal/storage"
)

// initStorage initializes the storage service with proper path expansion.
func initStorage(ctx context.Context) (service.Storage, error) {
	dbPath := viper.GetString("database.path")
	if dbPath == "" {
		dbPath = "$HOME/.local/share/recon/recon.db"
	}
	dbPath = config.ExpandPath(dbPath)

	store, err := storage.NewSQLiteStorage(dbPath)
	if err != nil {
		return nil, err
	}

	if err := store.Migrate(ctx); err != nil {
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	return store, nil
}

// initEngine builds the reconciliation engine and hands back a cleanup func.
func initEngine(ctx context.Context) (*engine.Engine, service.Storage, func(), error) {
	store, err := initStorage(ctx)
	if err != nil {
		return nil, nil, nil, err
	}

	cleanup := func() { _ = store.Close() }
	return engine.New(store), store, cleanup, nil
}
