// Package postgres implements the store.Store interface backed by PostgreSQL.
package postgres

import (
	"context"
	"database/sql"
	"embed"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/golang-migrate/migrate/v4"
	migratepg "github.com/golang-migrate/migrate/v4/database/postgres"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	_ "github.com/lib/pq"

	"github.com/spboyer/social-media-post-ge/internal/domain"
	"github.com/spboyer/social-media-post-ge/internal/store"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

// PostgresStore implements store.Store backed by a PostgreSQL database.
type PostgresStore struct {
	db *sql.DB
}

// Compile-time check that PostgresStore implements store.Store.
var _ store.Store = (*PostgresStore)(nil)

// New opens a connection to the PostgreSQL database at the given URL,
// configures the connection pool, and runs any pending migrations.
func New(databaseURL string) (*PostgresStore, error) {
	db, err := sql.Open("postgres", databaseURL)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(5 * time.Minute)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if err := runMigrations(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &PostgresStore{db: db}, nil
}

// NewWithDB wraps an already-open connection without running migrations.
// Used by tests that substitute a mock database.
func NewWithDB(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

func runMigrations(db *sql.DB) error {
	sourceDriver, err := iofs.New(migrationsFS, "migrations")
	if err != nil {
		return fmt.Errorf("create migration source: %w", err)
	}

	dbDriver, err := migratepg.WithInstance(db, &migratepg.Config{})
	if err != nil {
		return fmt.Errorf("create migration db driver: %w", err)
	}

	m, err := migrate.NewWithInstance("iofs", sourceDriver, "postgres", dbDriver)
	if err != nil {
		return fmt.Errorf("create migrator: %w", err)
	}

	if err := m.Up(); err != nil && err != migrate.ErrNoChange {
		return fmt.Errorf("apply migrations: %w", err)
	}

	return nil
}

// Get retrieves a named value, or (nil, nil) when the key is absent.
func (s *PostgresStore) Get(ctx context.Context, userID, key string) (*domain.NamedValue, error) {
	query := `SELECT user_id, key, value, updated_at FROM named_values WHERE user_id = $1 AND key = $2`

	row := s.db.QueryRowContext(ctx, query, userID, key)

	var nv domain.NamedValue
	var value []byte

	err := row.Scan(&nv.UserID, &nv.Key, &value, &nv.UpdatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("scan named value row: %w", err)
	}

	nv.Value = json.RawMessage(value)
	return &nv, nil
}

// Put creates or replaces a named value.
func (s *PostgresStore) Put(ctx context.Context, value *domain.NamedValue) error {
	query := `
	INSERT INTO named_values (user_id, key, value, updated_at)
	VALUES ($1, $2, $3, $4)
	ON CONFLICT (user_id, key) DO UPDATE SET
		value = EXCLUDED.value,
		updated_at = EXCLUDED.updated_at`

	updatedAt := value.UpdatedAt
	if updatedAt.IsZero() {
		updatedAt = time.Now()
	}

	raw := value.Value
	if len(raw) == 0 {
		raw = json.RawMessage("null")
	}

	_, err := s.db.ExecContext(ctx, query, value.UserID, value.Key, []byte(raw), updatedAt)
	if err != nil {
		return fmt.Errorf("upsert named value: %w", err)
	}
	return nil
}

// Delete removes a named value and reports whether one was present.
func (s *PostgresStore) Delete(ctx context.Context, userID, key string) (bool, error) {
	result, err := s.db.ExecContext(ctx, `DELETE FROM named_values WHERE user_id = $1 AND key = $2`, userID, key)
	if err != nil {
		return false, fmt.Errorf("delete named value: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("get rows affected: %w", err)
	}
	return rows > 0, nil
}

// List retrieves all named values for a user, ordered by key.
func (s *PostgresStore) List(ctx context.Context, userID string) ([]*domain.NamedValue, error) {
	query := `SELECT user_id, key, value, updated_at FROM named_values WHERE user_id = $1 ORDER BY key`

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
		var value []byte

		if err := rows.Scan(&nv.UserID, &nv.Key, &value, &nv.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan named value row: %w", err)
		}

		nv.Value = json.RawMessage(value)
		values = append(values, &nv)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate named values: %w", err)
	}

	return values, nil
}

// Ping verifies database connectivity.
func (s *PostgresStore) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// Close closes the underlying database connection.
func (s *PostgresStore) Close() error {
	return s.db.Close()
}
