package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/spboyer/social-media-post-ge/internal/domain"
	_ "modernc.org/sqlite"
)

// SQLiteStore implements Store using SQLite.
type SQLiteStore struct {
	db      *sql.DB
	writeMu sync.Mutex // Mutex for write operations to prevent SQLITE_BUSY
}

// NewSQLite creates a new SQLite-backed store.
func NewSQLite(dbPath string) (*SQLiteStore, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create database directory: %w", err)
	}

	// Open database with WAL mode for better concurrency.
	dsn := dbPath + "?_journal=WAL&_sync=NORMAL&_busy_timeout=5000"
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(5 * time.Minute)

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("ping database: %w", err)
	}

	store := &SQLiteStore{db: db}
	if err := store.initSchema(); err != nil {
		return nil, fmt.Errorf("initialize schema: %w", err)
	}

	return store, nil
}

func (s *SQLiteStore) initSchema() error {
	query := `
	PRAGMA busy_timeout = 5000;
	CREATE TABLE IF NOT EXISTS named_values (
		user_id TEXT NOT NULL,
		key TEXT NOT NULL,
		value TEXT NOT NULL,
		updated_at INTEGER NOT NULL,
		PRIMARY KEY (user_id, key)
	);
	CREATE INDEX IF NOT EXISTS idx_named_values_updated ON named_values(updated_at);
	`
	if _, err := s.db.Exec(query); err != nil {
		return fmt.Errorf("create schema: %w", err)
	}
	return nil
}

// Ping verifies database connectivity.
func (s *SQLiteStore) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// Get retrieves a named value, or (nil, nil) when the key is absent.
func (s *SQLiteStore) Get(ctx context.Context, userID, key string) (*domain.NamedValue, error) {
	query := `SELECT user_id, key, value, updated_at FROM named_values WHERE user_id = ? AND key = ?`

	row := s.db.QueryRowContext(ctx, query, userID, key)

	var nv domain.NamedValue
	var value string
	var updatedAt int64

	err := row.Scan(&nv.UserID, &nv.Key, &value, &updatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("scan named value row: %w", err)
	}

	nv.Value = json.RawMessage(value)
	nv.UpdatedAt = time.Unix(updatedAt, 0)

	return &nv, nil
}

// Put creates or replaces a named value.
// Implements retry logic with exponential backoff to handle SQLITE_BUSY errors.
func (s *SQLiteStore) Put(ctx context.Context, value *domain.NamedValue) error {
	return s.withBusyRetry(ctx, "put "+value.Key, func() error {
		return s.putOnce(ctx, value)
	})
}

func (s *SQLiteStore) putOnce(ctx context.Context, value *domain.NamedValue) error {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	query := `
	INSERT INTO named_values (user_id, key, value, updated_at)
	VALUES (?, ?, ?, ?)
	ON CONFLICT(user_id, key) DO UPDATE SET
		value = excluded.value,
		updated_at = excluded.updated_at`

	updatedAt := value.UpdatedAt
	if updatedAt.IsZero() {
		updatedAt = time.Now()
	}

	raw := value.Value
	if len(raw) == 0 {
		raw = json.RawMessage("null")
	}

	_, err := s.db.ExecContext(ctx, query, value.UserID, value.Key, string(raw), updatedAt.Unix())
	if err != nil {
		return fmt.Errorf("upsert named value: %w", err)
	}
	return nil
}

// Delete removes a named value and reports whether one was present.
func (s *SQLiteStore) Delete(ctx context.Context, userID, key string) (bool, error) {
	var found bool
	err := s.withBusyRetry(ctx, "delete "+key, func() error {
		s.writeMu.Lock()
		defer s.writeMu.Unlock()

		result, err := s.db.ExecContext(ctx, `DELETE FROM named_values WHERE user_id = ? AND key = ?`, userID, key)
		if err != nil {
			return fmt.Errorf("delete named value: %w", err)
		}
		rows, err := result.RowsAffected()
		if err != nil {
			return fmt.Errorf("get rows affected: %w", err)
		}
		found = rows > 0
		return nil
	})
	return found, err
}

// List retrieves all named values for a user, ordered by key.
func (s *SQLiteStore) List(ctx context.Context, userID string) ([]*domain.NamedValue, error) {
	query := `SELECT user_id, key, value, updated_at FROM named_values WHERE user_id = ? ORDER BY key`

	rows, err := s.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("query named values: %w", err)
	}
	defer func() {
		if closeErr := rows.Close(); closeErr != nil {
			slog.Warn("failed to close named value rows", "error", closeErr)
		}
	}()

	var values []*domain.NamedValue
	for rows.Next() {
		var nv domain.NamedValue
		var value string
		var updatedAt int64

		if err := rows.Scan(&nv.UserID, &nv.Key, &value, &updatedAt); err != nil {
			return nil, fmt.Errorf("scan named value row: %w", err)
		}

		nv.Value = json.RawMessage(value)
		nv.UpdatedAt = time.Unix(updatedAt, 0)
		values = append(values, &nv)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate named values: %w", err)
	}

	return values, nil
}

// Close closes the database connection.
func (s *SQLiteStore) Close() error {
	if err := s.db.Close(); err != nil {
		return fmt.Errorf("close database: %w", err)
	}
	return nil
}

// isSQLiteConflict reports whether err is a SQLITE_BUSY or "database is
// locked" concurrency error, both of which warrant a retry.
func isSQLiteConflict(err error) bool {
	if err == nil {
		return false
	}
	return strings.Contains(err.Error(), "SQLITE_BUSY") || strings.Contains(err.Error(), "database is locked")
}

// withBusyRetry runs op, retrying with exponential backoff when SQLite reports
// the database as locked.
func (s *SQLiteStore) withBusyRetry(ctx context.Context, label string, op func() error) error {
	maxRetries := 3
	baseDelay := 100 * time.Millisecond

	var err error
	for i := 0; i < maxRetries; i++ {
		err = op()
		if err == nil {
			return nil
		}

		if isSQLiteConflict(err) && i < maxRetries-1 {
			delay := baseDelay * time.Duration(1<<i) // exponential backoff: 100ms, 200ms, 400ms
			slog.Debug("write failed with SQLITE_BUSY, retrying",
				"op", label,
				"attempt", i+1,
				"delay", delay)
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(delay):
			}
			continue
		}

		return fmt.Errorf("%s after %d attempts: %w", label, i+1, err)
	}

	return fmt.Errorf("%s after %d attempts: %w", label, maxRetries, err)
}
