package scratch

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/google/uuid"

	"aurora/internal/logging"
	"aurora/internal/services"
)

// Area is the directory transient artifacts are written to.
type Area struct {
	dir    string
	logger *slog.Logger
}

// NewArea ensures dir exists and returns an Area rooted there.
func NewArea(dir string, logger *slog.Logger) (*Area, error) {
	dir = strings.TrimSpace(dir)
	if dir == "" {
		return nil, services.Wrap(services.ErrConfiguration, "scratch", "init", "scratch_dir is empty", nil)
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, services.Wrap(services.ErrConfiguration, "scratch", "init", "create scratch_dir", err)
	}
	return &Area{dir: dir, logger: logging.NewComponentLogger(logger, "scratch")}, nil
}

// Dir returns the area's root directory.
func (a *Area) Dir() string { return a.dir }

// NewBatch starts a batch for one delivery. An empty requestID gets a fresh
// UUID.
func (a *Area) NewBatch(userID int64, requestID string) *Batch {
	requestID = strings.TrimSpace(requestID)
	if requestID == "" {
		requestID = uuid.NewString()
	}
	return &Batch{
		area:      a,
		requestID: requestID,
		prefix:    fmt.Sprintf("%d-%s-", userID, requestID),
	}
}

// Count returns the number of entries currently in the area.
func (a *Area) Count() (int, error) {
	entries, err := os.ReadDir(a.dir)
	if err != nil {
		return 0, err
	}
	return len(entries), nil
}

// Batch tracks every artifact one delivery creates so that all of them can be
// removed on every exit path.
type Batch struct {
	area      *Area
	requestID string
	prefix    string

	mu      sync.Mutex
	tracked []string
}

// RequestID returns the id embedded in artifact names.
func (b *Batch) RequestID() string { return b.requestID }

// Prefix returns the file name prefix shared by the batch's artifacts.
func (b *Batch) Prefix() string { return b.prefix }

// Path returns a tracked path named <user>-<request>-<role>.<ext>. With an
// empty ext the path has no extension; tools that pick their own extension
// write next to it and are caught by the prefix sweep in Cleanup.
func (b *Batch) Path(role, ext string) string {
	name := b.prefix + role
	if ext = strings.TrimPrefix(ext, "."); ext != "" {
		name += "." + ext
	}
	path := filepath.Join(b.area.dir, name)
	b.Track(path)
	return path
}

// Track registers an artifact created outside Path.
func (b *Batch) Track(path string) {
	if strings.TrimSpace(path) == "" {
		return
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	for _, p := range b.tracked {
		if p == path {
			return
		}
	}
	b.tracked = append(b.tracked, path)
}

// CleanupResult reports what Cleanup removed.
type CleanupResult struct {
	Removed int
	Failed  []CleanupError
}

// CleanupError pairs a path with its removal error.
type CleanupError struct {
	Path  string
	Error error
}

// Cleanup removes every tracked path and any stray file carrying the batch
// prefix. Missing files are not failures. Deletion failures are logged and
// returned, never raised. Safe to call more than once.
func (b *Batch) Cleanup() CleanupResult {
	b.mu.Lock()
	candidates := append([]string(nil), b.tracked...)
	b.tracked = nil
	b.mu.Unlock()

	if matches, err := filepath.Glob(filepath.Join(b.area.dir, b.prefix+"*")); err == nil {
		candidates = append(candidates, matches...)
	}

	var result CleanupResult
	seen := make(map[string]struct{}, len(candidates))
	for _, path := range candidates {
		if _, ok := seen[path]; ok {
			continue
		}
		seen[path] = struct{}{}
		err := os.Remove(path)
		switch {
		case err == nil:
			result.Removed++
		case errors.Is(err, os.ErrNotExist):
		default:
			result.Failed = append(result.Failed, CleanupError{Path: path, Error: err})
			logging.WarnWithContext(b.area.logger, "failed to remove transient artifact", "artifact_cleanup_failed",
				logging.String("path", path),
				logging.String("request_id", b.requestID),
				logging.Error(err),
				logging.String(logging.FieldErrorHint, "check scratch_dir permissions"),
				logging.String(logging.FieldImpact, "disk space not reclaimed until the stale sweep"),
			)
		}
	}
	return result
}
