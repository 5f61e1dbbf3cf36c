package directory

import (
	"context"
	"database/sql"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"aurora/internal/services"
)

// User is one directory row. Absent name fields are stored as empty strings.
type User struct {
	ID        int64
	FirstName string
	LastName  string
	Username  string
	FirstSeen time.Time
	LastSeen  time.Time
}

// CSVHeader is the column order of exported snapshots.
var CSVHeader = []string{"user_id", "first_name", "last_name", "username", "first_seen"}

// Upsert records a user. Name fields are refreshed on every call; first_seen
// is written once and never changed.
func (s *Store) Upsert(ctx context.Context, user User) error {
	if user.ID == 0 {
		return services.Wrap(services.ErrValidation, "directory", "upsert", "user id is required", nil)
	}
	now := s.now().UTC().Format(time.RFC3339)
	err := s.execWithRetry(ctx, `
INSERT INTO users (user_id, first_name, last_name, username, first_seen, last_seen)
VALUES (?, ?, ?, ?, ?, ?)
ON CONFLICT(user_id) DO UPDATE SET
    first_name = excluded.first_name,
    last_name  = excluded.last_name,
    username   = excluded.username,
    last_seen  = excluded.last_seen`,
		user.ID,
		strings.TrimSpace(user.FirstName),
		strings.TrimSpace(user.LastName),
		strings.TrimSpace(user.Username),
		now, now,
	)
	if err != nil {
		return services.Wrap(services.ErrTransient, "directory", "upsert", "write user row", err)
	}
	return nil
}

const selectUsers = `SELECT user_id, first_name, last_name, username, first_seen, last_seen FROM users`

// Get returns one user.
func (s *Store) Get(ctx context.Context, id int64) (User, error) {
	row := s.db.QueryRowContext(ctx, selectUsers+` WHERE user_id = ?`, id)
	user, err := scanUser(row)
	if errors.Is(err, sql.ErrNoRows) {
		return User{}, services.Wrap(services.ErrNotFound, "directory", "get", fmt.Sprintf("user %d", id), nil)
	}
	return user, err
}

// List returns every user ordered by first_seen.
func (s *Store) List(ctx context.Context) ([]User, error) {
	rows, err := s.db.QueryContext(ctx, selectUsers+` ORDER BY first_seen, user_id`)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	defer rows.Close()

	var users []User
	for rows.Next() {
		user, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		users = append(users, user)
	}
	return users, rows.Err()
}

// Count returns the number of users.
func (s *Store) Count(ctx context.Context) (int, error) {
	var n int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(1) FROM users`).Scan(&n); err != nil {
		return 0, fmt.Errorf("count users: %w", err)
	}
	return n, nil
}

// WriteCSV writes a snapshot of the directory and returns the row count.
func (s *Store) WriteCSV(ctx context.Context, w io.Writer) (int, error) {
	users, err := s.List(ctx)
	if err != nil {
		return 0, err
	}
	cw := csv.NewWriter(w)
	if err := cw.Write(CSVHeader); err != nil {
		return 0, err
	}
	for _, u := range users {
		record := []string{
			strconv.FormatInt(u.ID, 10),
			u.FirstName,
			u.LastName,
			u.Username,
			u.FirstSeen.UTC().Format(time.RFC3339),
		}
		if err := cw.Write(record); err != nil {
			return 0, err
		}
	}
	cw.Flush()
	return len(users), cw.Error()
}

type scanner interface {
	Scan(dest ...any) error
}

func scanUser(row scanner) (User, error) {
	var (
		user                User
		firstSeen, lastSeen string
	)
	if err := row.Scan(&user.ID, &user.FirstName, &user.LastName, &user.Username, &firstSeen, &lastSeen); err != nil {
		return User{}, err
	}
	user.FirstSeen = parseTime(firstSeen)
	user.LastSeen = parseTime(lastSeen)
	return user, nil
}

func parseTime(value string) time.Time {
	t, err := time.Parse(time.RFC3339, value)
	if err != nil {
		return time.Time{}
	}
	return t
}
