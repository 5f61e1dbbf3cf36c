package scratch

import (
	"context"
	"os"
	"path/filepath"
	"time"

	"aurora/internal/logging"
)

// DefaultStaleAge is how old an artifact must be before a sweep removes it.
const DefaultStaleAge = time.Hour

// CleanStaleResult contains the outcome of a stale sweep.
type CleanStaleResult struct {
	Removed []string
	Errors  []CleanupError
}

// CleanStale removes entries older than maxAge, left behind by a crashed or
// killed process.
func (a *Area) CleanStale(ctx context.Context, maxAge time.Duration) CleanStaleResult {
	result := CleanStaleResult{}
	entries, err := os.ReadDir(a.dir)
	if err != nil {
		if !os.IsNotExist(err) {
			result.Errors = append(result.Errors, CleanupError{Path: a.dir, Error: err})
		}
		return result
	}

	cutoff := time.Now().Add(-maxAge)
	for _, entry := range entries {
		if ctx.Err() != nil {
			break
		}
		path := filepath.Join(a.dir, entry.Name())
		info, err := entry.Info()
		if err != nil {
			result.Errors = append(result.Errors, CleanupError{Path: path, Error: err})
			continue
		}
		if !info.ModTime().Before(cutoff) {
			continue
		}
		if err := os.RemoveAll(path); err != nil {
			result.Errors = append(result.Errors, CleanupError{Path: path, Error: err})
			logging.WarnWithContext(a.logger, "failed to remove stale artifact", "scratch_cleanup_failed",
				logging.String("path", path),
				logging.Error(err),
				logging.String(logging.FieldErrorHint, "check scratch_dir permissions"),
				logging.String(logging.FieldImpact, "disk space not reclaimed"),
			)
			continue
		}
		result.Removed = append(result.Removed, path)
		a.logger.Info("removed stale artifact",
			logging.String("path", path),
			logging.Duration("age", time.Since(info.ModTime())),
			logging.String(logging.FieldEventType, "scratch_cleanup"),
		)
	}
	return result
}

// RunSweeper calls CleanStale every interval until ctx ends.
func (a *Area) RunSweeper(ctx context.Context, interval, maxAge time.Duration) error {
	if interval <= 0 {
		interval = DefaultStaleAge
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			a.CleanStale(ctx, maxAge)
		}
	}
}
