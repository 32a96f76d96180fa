package storage

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/desertthunder/cinewave/internal/shared"
)

// SQLite stores slots in the kv_store table created by the embedded migrations.
type SQLite struct {
	db       *sql.DB
	watchers watchers
}

var (
	_ Storage    = (*SQLite)(nil)
	_ Observable = (*SQLite)(nil)
)

// NewSQLite wraps a migrated database connection.
func NewSQLite(db *sql.DB) *SQLite {
	return &SQLite{db: db}
}

func (s *SQLite) Get(key string) (string, bool, error) {
	var value string
	err := s.db.QueryRow("SELECT value FROM kv_store WHERE key = ?", key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("%w: failed to read %s: %v", shared.ErrStorage, key, err)
	}
	return value, true, nil
}

func (s *SQLite) Set(key, value string) error {
	query := `
		INSERT INTO kv_store (key, value, updated_at) VALUES (?, ?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at
	`
	if _, err := s.db.Exec(query, key, value, time.Now().UTC()); err != nil {
		return fmt.Errorf("%w: failed to write %s: %v", shared.ErrStorage, key, err)
	}

	s.watchers.notify(key)
	return nil
}

func (s *SQLite) Delete(key string) error {
	result, err := s.db.Exec("DELETE FROM kv_store WHERE key = ?", key)
	if err != nil {
		return fmt.Errorf("%w: failed to delete %s: %v", shared.ErrStorage, key, err)
	}

	if rows, err := result.RowsAffected(); err == nil && rows > 0 {
		s.watchers.notify(key)
	}
	return nil
}

// Watch implements [Observable] for writes made through this handle.
func (s *SQLite) Watch(fn Listener) func() {
	return s.watchers.add(fn)
}

// UpdatedAt reports when key was last written.
func (s *SQLite) UpdatedAt(key string) (time.Time, bool, error) {
	var ts time.Time
	err := s.db.QueryRow("SELECT updated_at FROM kv_store WHERE key = ?", key).Scan(&ts)
	if errors.Is(err, sql.ErrNoRows) {
		return time.Time{}, false, nil
	}
	if err != nil {
		return time.Time{}, false, fmt.Errorf("%w: failed to read %s: %v", shared.ErrStorage, key, err)
	}
	return ts, true, nil
}
