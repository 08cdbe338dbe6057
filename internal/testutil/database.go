// Package testutil provides shared test helpers, most notably an in-memory
// database with migrations applied.
package testutil

import (
	"context"
	"testing"

	"github.com/statementworks/recon/internal/service"
	"github.com/statementworks/recon/internal/storage"
)

// TestDB wraps an in-memory storage instance for tests.
type TestDB struct {
	Storage service.Storage
	t       *testing.T
}

// SetupTestDB creates a migrated in-memory SQLite database and registers
// cleanup on the test.
func SetupTestDB(t *testing.T) *TestDB {
	t.Helper()

	store, err := storage.NewSQLiteStorage(":memory:")
	if err != nil {
		t.Fatalf("failed to create test database: %v", err)
	}

	if err := store.Migrate(context.Background()); err != nil {
		t.Fatalf("failed to run migrations: %v", err)
	}

	t.Cleanup(func() {
		_ = store.Close()
	})

	return &TestDB{Storage: store, t: t}
}

// SeedCategory creates a category and fails the test on error.
func (db *TestDB) SeedCategory(name, parentID string) string {
	db.t.Helper()
	cat, err := db.Storage.CreateCategory(context.Background(), name, parentID)
	if err != nil {
		db.t.Fatalf("failed to seed category %q: %v", name, err)
	}
	return cat.ID
}

// SeedCustomer creates a customer and fails the test on error.
func (db *TestDB) SeedCustomer(name string) string {
	db.t.Helper()
	cust, err := db.Storage.CreateCustomer(context.Background(), name)
	if err != nil {
		db.t.Fatalf("failed to seed customer %q: %v", name, err)
	}
	return cust.ID
}
