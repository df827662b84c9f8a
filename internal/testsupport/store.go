package testsupport

import (
	"testing"

	"vadscribe/internal/config"
	"vadscribe/internal/runstore"
)

// MustOpenStore opens the run ledger for tests and registers cleanup.
func MustOpenStore(t testing.TB, cfg *config.Config) *runstore.Store {
	t.Helper()

	store, err := runstore.Open(cfg.RunStorePath())
	if err != nil {
		t.Fatalf("runstore.Open: %v", err)
	}
	t.Cleanup(func() {
		_ = store.Close()
	})
	return store
}
