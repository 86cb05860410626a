package main

import (
	"context"
	"fmt"

	"github.com/spf13/viper"

	"github.com/camin-energy/tankflow/internal/config"
	"github.com/camin-energy/tankflow/internal/engine"
	"github.com/camin-energy/tankflow/internal/service"
	"github.com/camin-energy/tankflow/internal/storage"
)

// initStorage opens the configured database and applies pending migrations.
func initStorage(ctx context.Context) (service.Storage, error) {
	dbPath := viper.GetString("database.path")
	if dbPath == "" {
		dbPath = "$HOME/.local/share/tankflow/tankflow.db"
	}
	dbPath = config.ExpandPath(dbPath)

	store, err := storage.NewSQLiteStorage(dbPath)
	if err != nil {
		return nil, err
	}

	if err := store.Migrate(ctx); err != nil {
		_ = store.Close()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	return store, nil
}

// loadIndex snapshots the tank registry into an engine index.
func loadIndex(ctx context.Context, store service.Storage) (*engine.Index, error) {
	tanks, err := store.ListTanks(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list tanks: %w", err)
	}
	return engine.NewIndex(tanks), nil
}

// resolveTank accepts either a tank ID or a tank name and returns the ID.
func resolveTank(index *engine.Index, ref string) (string, error) {
	if _, ok := index.Get(ref); ok {
		return ref, nil
	}
	for _, tank := range index.Tanks() {
		if tank.Name == ref {
			return tank.ID, nil
		}
	}
	return "", fmt.Errorf("no tank with ID or name %q", ref)
}
