package testsupport

import (
	"path/filepath"
	"testing"

	"takesort/internal/ledger"
)

// MustOpenLedger opens a placement ledger under dir and registers cleanup.
func MustOpenLedger(t testing.TB, dir string) *ledger.Store {
	t.Helper()

	store, err := ledger.Open(filepath.Join(dir, ".takesort", "ledger.db"))
	if err != nil {
		t.Fatalf("ledger.Open: %v", err)
	}
	t.Cleanup(func() {
		store.Close()
	})
	return store
}
