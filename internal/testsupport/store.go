package testsupport

import (
	"context"
	"testing"

	"sticqr/internal/claims"
	"sticqr/internal/config"
)

// MustOpenStore opens a claims.Store for tests and registers cleanup.
func MustOpenStore(t testing.TB, cfg *config.Config) *claims.Store {
	t.Helper()

	store, err := claims.Open(context.Background(), cfg.Paths.Database)
	if err != nil {
		t.Fatalf("claims.Open: %v", err)
	}
	t.Cleanup(func() {
		store.Close()
	})
	return store
}

// MustCreateRecord inserts a record for tests and returns its identifier.
func MustCreateRecord(t testing.TB, store *claims.Store, rec claims.NewRecord) string {
	t.Helper()

	id, err := store.CreateRecord(context.Background(), rec)
	if err != nil {
		t.Fatalf("store.CreateRecord: %v", err)
	}
	return id
}
