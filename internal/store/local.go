package store

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/OverStackedLab/mytimeblock.com/internal/model"
	_ "modernc.org/sqlite"
)

// Local is the SQLite-backed event store used when no sync tier is active.
type Local struct {
	db *sql.DB
}

// DefaultDBPath returns the default database path (~/.timeblock/events.db)
func DefaultDBPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home directory: %w", err)
	}
	return filepath.Join(home, ".timeblock", "events.db"), nil
}

// OpenLocal opens or creates the SQLite database at dbPath
func OpenLocal(dbPath string) (*Local, error) {
	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create database directory: %w", err)
	}

	sqlDB, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := sqlDB.Ping(); err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	s := &Local{db: sqlDB}
	if err := s.migrate(); err != nil {
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	return s, nil
}

// OpenLocalDefault opens the database at the default path
func OpenLocalDefault() (*Local, error) {
	path, err := DefaultDBPath()
	if err != nil {
		return nil, err
	}
	return OpenLocal(path)
}

// migrate runs all database migrations
func (s *Local) migrate() error {
	migrations := []string{
		migrationCreateEvents,
		migrationCreateKV,
	}

	for i, m := range migrations {
		if _, err := s.db.Exec(m); err != nil {
			return fmt.Errorf("migration %d failed: %w", i+1, err)
		}
	}

	return nil
}

const migrationCreateEvents = `
CREATE TABLE IF NOT EXISTS events (
    id TEXT PRIMARY KEY,
    user_id TEXT NOT NULL DEFAULT '',
    title TEXT NOT NULL,
    start_time TEXT NOT NULL,
    end_time TEXT NOT NULL,
    all_day INTEGER DEFAULT 0,
    background_color TEXT DEFAULT '#f57c00',
    description TEXT DEFAULT '',
    category_id TEXT DEFAULT '',
    created_at TEXT NOT NULL,
    updated_at TEXT NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_events_user ON events(user_id);
CREATE INDEX IF NOT EXISTS idx_events_start ON events(start_time);
`

const migrationCreateKV = `
CREATE TABLE IF NOT EXISTS kv (
    key TEXT PRIMARY KEY,
    value TEXT
);
`

// Close closes the database connection
func (s *Local) Close() error {
	return s.db.Close()
}

// FetchAll returns every event belonging to the user
func (s *Local) FetchAll(ctx context.Context, userID string) ([]model.Event, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, user_id, title, start_time, end_time, all_day,
		       background_color, description, category_id, created_at, updated_at
		FROM events WHERE user_id = ? ORDER BY start_time`, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to query events: %w", err)
	}
	defer rows.Close()

	var events []model.Event
	for rows.Next() {
		var e model.Event
		var start, end, createdAt, updatedAt string
		var allDay int
		if err := rows.Scan(&e.ID, &e.UserID, &e.Title, &start, &end, &allDay,
			&e.BackgroundColor, &e.Description, &e.CategoryID, &createdAt, &updatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan event: %w", err)
		}
		e.AllDay = allDay != 0
		e.Start = parseTime(start)
		e.End = parseTime(end)
		e.CreatedAt = parseTime(createdAt)
		e.UpdatedAt = parseTime(updatedAt)
		events = append(events, model.Normalize(e))
	}
	return events, rows.Err()
}

// Create inserts a new event row
func (s *Local) Create(ctx context.Context, ev model.Event, userID string) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO events (id, user_id, title, start_time, end_time, all_day,
		                    background_color, description, category_id, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		ev.ID, userID, ev.Title, formatTime(ev.Start), formatTime(ev.End), boolToInt(ev.AllDay),
		ev.BackgroundColor, ev.Description, ev.CategoryID,
		formatTime(ev.CreatedAt), formatTime(ev.UpdatedAt))
	if err != nil {
		return fmt.Errorf("failed to insert event: %w", err)
	}
	return nil
}

// Update replaces an event row by id
func (s *Local) Update(ctx context.Context, ev model.Event, userID string) error {
	_, err := s.db.ExecContext(ctx, `
		UPDATE events SET title = ?, start_time = ?, end_time = ?, all_day = ?,
		       background_color = ?, description = ?, category_id = ?, updated_at = ?
		WHERE id = ? AND user_id = ?`,
		ev.Title, formatTime(ev.Start), formatTime(ev.End), boolToInt(ev.AllDay),
		ev.BackgroundColor, ev.Description, ev.CategoryID, formatTime(time.Now()),
		ev.ID, userID)
	if err != nil {
		return fmt.Errorf("failed to update event: %w", err)
	}
	return nil
}

// Delete removes an event row by id
func (s *Local) Delete(ctx context.Context, id, userID string) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM events WHERE id = ? AND user_id = ?`, id, userID)
	if err != nil {
		return fmt.Errorf("failed to delete event: %w", err)
	}
	return nil
}

// Subscribe is a no-op for the local backend: there is no second session
// that could change the database underneath us.
func (s *Local) Subscribe(ctx context.Context, userID string, handlers ChangeHandlers) (func(), error) {
	return func() {}, nil
}

// Get reads a value from the kv bucket; missing keys return ""
func (s *Local) Get(ctx context.Context, key string) (string, error) {
	var value string
	err := s.db.QueryRowContext(ctx, `SELECT value FROM kv WHERE key = ?`, key).Scan(&value)
	if err == sql.ErrNoRows {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("failed to read kv key %q: %w", key, err)
	}
	return value, nil
}

// Set writes a value to the kv bucket
func (s *Local) Set(ctx context.Context, key, value string) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO kv (key, value) VALUES (?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value`, key, value)
	if err != nil {
		return fmt.Errorf("failed to write kv key %q: %w", key, err)
	}
	return nil
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		t = time.Now()
	}
	return t.Format(time.RFC3339)
}

func parseTime(s string) time.Time {
	t, err := time.ParseInLocation(time.RFC3339, s, time.Local)
	if err != nil {
		return time.Now()
	}
	return t
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
