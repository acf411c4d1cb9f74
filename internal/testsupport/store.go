package testsupport

import (
	"context"
	"testing"

	"nutriscan/internal/config"
	"nutriscan/internal/sqlstore"
)

// MustOpenSQLStore opens the SQLite store for cfg and registers cleanup.
func MustOpenSQLStore(t testing.TB, cfg *config.Config) *sqlstore.Store {
	t.Helper()

	store, err := sqlstore.Open(context.Background(), cfg.Paths.Database)
	if err != nil {
		t.Fatalf("sqlstore.Open: %v", err)
	}
	t.Cleanup(func() {
		_ = store.Close()
	})
	return store
}
