package store

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/roach88/calc/internal/history"
)

var testTime = time.Date(2025, 4, 12, 9, 30, 0, 0, time.UTC)

// createTestStore creates a new file-backed store in a temp dir with
// predictable ids ("id-1", "id-2", ...).
func createTestStore(t *testing.T) *Store {
	t.Helper()
	path := filepath.Join(t.TempDir(), "test.db")
	s, err := Open(path, WithIDGenerator(history.NewFixedGenerator(
		"id-1", "id-2", "id-3", "id-4", "id-5",
	)))
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}
