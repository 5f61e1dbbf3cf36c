package testsupport

import (
	"os"
	"path/filepath"
	"testing"
)

// WriteArtifact creates dir/name holding size bytes of filler and returns the
// path. It stands in for a downloaded or combined media file. A size <= 0
// writes a single byte.
func WriteArtifact(t testing.TB, dir, name string, size int) string {
	t.Helper()

	if size <= 0 {
		size = 1
	}
	data := make([]byte, size)
	for i := range data {
		data[i] = 'a' + byte(i%26)
	}
	return writeArtifact(t, filepath.Join(dir, name), data)
}

func writeArtifact(t testing.TB, path string, data []byte) string {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir for %s: %v", path, err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
	return path
}
