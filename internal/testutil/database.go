// Package testutil provides shared helpers for tests that need a real
// migrated store.
package testutil

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/camin-energy/tankflow/internal/model"
	"github.com/camin-energy/tankflow/internal/service"
	"github.com/camin-energy/tankflow/internal/storage"
)

// TestDB bundles a migrated store with the tanks it was seeded with.
type TestDB struct {
	Storage service.Storage
	Tanks   []model.Tank
	t       *testing.T
}

// SetupTestDB creates a migrated temp-file store and seeds the given tanks.
// Cleanup is registered automatically.
func SetupTestDB(t *testing.T, tanks ...model.TankCreate) *TestDB {
	t.Helper()

	store, err := storage.NewSQLiteStorage(filepath.Join(t.TempDir(), "tankflow-test.db"))
	if err != nil {
		t.Fatalf("failed to create test database: %v", err)
	}

	ctx := context.Background()
	if err := store.Migrate(ctx); err != nil {
		t.Fatalf("failed to run migrations: %v", err)
	}

	db := &TestDB{Storage: store, t: t}
	for _, data := range tanks {
		tank, createErr := store.CreateTank(ctx, data)
		if createErr != nil {
			t.Fatalf("failed to seed tank %q: %v", data.Name, createErr)
		}
		db.Tanks = append(db.Tanks, *tank)
	}

	t.Cleanup(func() {
		_ = store.Close()
	})
	return db
}

// TankByName returns the seeded tank with the given name.
func (db *TestDB) TankByName(name string) model.Tank {
	db.t.Helper()
	for _, tank := range db.Tanks {
		if tank.Name == name {
			return tank
		}
	}
	db.t.Fatalf("no seeded tank named %q", name)
	return model.Tank{}
}
