package testsupport

import (
	"os"
	"path/filepath"
	"testing"

	"aurora/internal/directory"
	"aurora/internal/scratch"
)

// MustOpenDirectory opens a user directory in a temp dir and registers cleanup.
func MustOpenDirectory(t testing.TB) *directory.Store {
	t.Helper()
	store, err := directory.Open(filepath.Join(t.TempDir(), "users.db"))
	if err != nil {
		t.Fatalf("open directory: %v", err)
	}
	t.Cleanup(func() { _ = store.Close() })
	return store
}

// MustScratchArea creates a scratch area in a temp dir.
func MustScratchArea(t testing.TB) *scratch.Area {
	t.Helper()
	area, err := scratch.NewArea(filepath.Join(t.TempDir(), "scratch"), nil)
	if err != nil {
		t.Fatalf("scratch area: %v", err)
	}
	return area
}

// ListDir returns the names in dir, failing the test on error.
func ListDir(t testing.TB, dir string) []string {
	t.Helper()
	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatalf("read dir %s: %v", dir, err)
	}
	names := make([]string, 0, len(entries))
	for _, entry := range entries {
		names = append(names, entry.Name())
	}
	return names
}
