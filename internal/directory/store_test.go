package directory

import (
	"bytes"
	"context"
	"database/sql"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"aurora/internal/services"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := Open(filepath.Join(t.TempDir(), "data", "users.db"))
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func TestUpsertKeepsFirstSeen(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()
	first := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	later := first.Add(48 * time.Hour)

	store.now = func() time.Time { return first }
	if err := store.Upsert(ctx, User{ID: 42, FirstName: " Sam ", Username: "sam"}); err != nil {
		t.Fatalf("Upsert: %v", err)
	}
	store.now = func() time.Time { return later }
	if err := store.Upsert(ctx, User{ID: 42, FirstName: "Sam", LastName: "Lee", Username: "samlee"}); err != nil {
		t.Fatalf("Upsert again: %v", err)
	}

	got, err := store.Get(ctx, 42)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	want := User{ID: 42, FirstName: "Sam", LastName: "Lee", Username: "samlee", FirstSeen: first, LastSeen: later}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("user mismatch (-want +got):\n%s", diff)
	}
	if n, err := store.Count(ctx); err != nil || n != 1 {
		t.Fatalf("Count = %d, %v", n, err)
	}
}

func TestUpsertValidation(t *testing.T) {
	store := openTestStore(t)
	if err := store.Upsert(context.Background(), User{}); !errors.Is(err, services.ErrValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
	if _, err := store.Get(context.Background(), 9); !errors.Is(err, services.ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestWriteCSV(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()
	base := time.Date(2026, 5, 2, 8, 30, 0, 0, time.UTC)
	for i, u := range []User{{ID: 2, FirstName: "Bo, Jr."}, {ID: 1, FirstName: "Ann", Username: "ann"}} {
		at := base.Add(time.Duration(i) * time.Minute)
		store.now = func() time.Time { return at }
		if err := store.Upsert(ctx, u); err != nil {
			t.Fatalf("Upsert: %v", err)
		}
	}

	var buf bytes.Buffer
	n, err := store.WriteCSV(ctx, &buf)
	if err != nil || n != 2 {
		t.Fatalf("WriteCSV = %d, %v", n, err)
	}
	want := "user_id,first_name,last_name,username,first_seen\n" +
		"2,\"Bo, Jr.\",,,2026-05-02T08:30:00Z\n" +
		"1,Ann,,ann,2026-05-02T08:31:00Z\n"
	if diff := cmp.Diff(want, buf.String()); diff != "" {
		t.Fatalf("csv mismatch (-want +got):\n%s", diff)
	}
}

func TestReopenChecksSchemaVersion(t *testing.T) {
	path := filepath.Join(t.TempDir(), "users.db")
	store, err := Open(path)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	if err := store.Upsert(context.Background(), User{ID: 5}); err != nil {
		t.Fatalf("Upsert: %v", err)
	}
	if _, err := store.db.Exec("UPDATE schema_version SET version = 99"); err != nil {
		t.Fatalf("bump version: %v", err)
	}
	_ = store.Close()

	if _, err := Open(path); !errors.Is(err, ErrSchemaMismatch) {
		t.Fatalf("expected schema mismatch, got %v", err)
	}
}

func TestIsSQLiteBusy(t *testing.T) {
	if !isSQLiteBusy(errors.New("database is locked (5) (SQLITE_BUSY)")) {
		t.Fatal("expected busy detection")
	}
	if isSQLiteBusy(sql.ErrNoRows) || isSQLiteBusy(nil) {
		t.Fatal("unexpected busy detection")
	}
}

func TestRetryOnBusyRetriesThenSucceeds(t *testing.T) {
	calls := 0
	err := retryOnBusy(context.Background(), func() error {
		calls++
		if calls < 3 {
			return errors.New("database is locked")
		}
		return nil
	})
	if err != nil || calls != 3 {
		t.Fatalf("retryOnBusy = %v after %d calls", err, calls)
	}
}
