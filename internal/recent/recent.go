// Package recent keeps a SQLite-backed list of recently opened files.
package recent

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"
)

// Item is one recently opened file.
type Item struct {
	Path     string    `json:"path"`
	Name     string    `json:"name"`
	OpenedAt time.Time `json:"openedAt"`
	Count    int       `json:"count"`
}

// Store persists recently opened files.
type Store struct {
	db *sql.DB
}

// Open opens or creates the store at dbPath. ":memory:" keeps it in memory.
func Open(dbPath string) (*Store, error) {
	if dbPath != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
			return nil, fmt.Errorf("creating recent store directory: %w", err)
		}
	}
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("opening sqlite database: %w", err)
	}
	// a single connection keeps ":memory:" databases shared and serializes writers
	db.SetMaxOpenConns(1)

	s := &Store{db: db}
	if err := s.init(); err != nil {
		db.Close()
		return nil, fmt.Errorf("initializing database: %w", err)
	}
	return s, nil
}

func (s *Store) init() error {
	_, err := s.db.Exec(`
	CREATE TABLE IF NOT EXISTS recent_files (
		path TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		opened_at INTEGER NOT NULL,
		open_count INTEGER NOT NULL DEFAULT 1
	);
	CREATE INDEX IF NOT EXISTS idx_recent_opened ON recent_files(opened_at DESC);
	`)
	return err
}

// Close closes the underlying database.
func (s *Store) Close() error { return s.db.Close() }

// Record notes that path was opened at the given time.
func (s *Store) Record(ctx context.Context, path string, at time.Time) error {
	_, err := s.db.ExecContext(ctx, `
	INSERT INTO recent_files (path, name, opened_at, open_count) VALUES (?, ?, ?, 1)
	ON CONFLICT(path) DO UPDATE SET opened_at = excluded.opened_at, open_count = open_count + 1`,
		path, filepath.Base(path), at.UnixMilli())
	if err != nil {
		return fmt.Errorf("recording %s: %w", path, err)
	}
	return nil
}

// List returns up to limit items, most recently opened first.
func (s *Store) List(ctx context.Context, limit int) ([]Item, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT path, name, opened_at, open_count FROM recent_files ORDER BY opened_at DESC, path LIMIT ?`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := []Item{}
	for rows.Next() {
		var it Item
		var openedAt int64
		if err := rows.Scan(&it.Path, &it.Name, &openedAt, &it.Count); err != nil {
			return nil, err
		}
		it.OpenedAt = time.UnixMilli(openedAt)
		items = append(items, it)
	}
	return items, rows.Err()
}

// Forget removes path from the list.
func (s *Store) Forget(ctx context.Context, path string) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM recent_files WHERE path = ?`, path)
	return err
}

// Prune keeps only the keep most recent items and returns how many were removed.
func (s *Store) Prune(ctx context.Context, keep int) (int64, error) {
	res, err := s.db.ExecContext(ctx, `
	DELETE FROM recent_files WHERE path NOT IN (
		SELECT path FROM recent_files ORDER BY opened_at DESC, path LIMIT ?
	)`, keep)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}
