// Package store handles SQL persistence for users, results and prompt content.
//
// The schema is kept portable so the same statements run on embedded SQLite,
// libSQL (Turso) and PostgreSQL. Timestamps are stored as fixed-width UTC text
// so lexical order matches time order.
package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	_ "github.com/lib/pq"                                 // PostgreSQL driver.
	_ "github.com/tursodatabase/libsql-client-go/libsql" // libSQL driver.
	_ "modernc.org/sqlite"                                // SQLite driver.
)

// Supported drivers.
const (
	DriverSQLite   = "sqlite"
	DriverLibSQL   = "libsql"
	DriverPostgres = "postgres"
)

var (
	// ErrNotFound is returned when a lookup matches no row.
	ErrNotFound = errors.New("not found")
	// ErrConflict is returned when a write collides with an existing row.
	ErrConflict = errors.New("conflict")
	// ErrRemoved is returned when saving a result id that moderation deleted.
	ErrRemoved = errors.New("removed by moderation")
)

const timeLayout = "2006-01-02T15:04:05.000000000Z"

func formatTime(t time.Time) string {
	return t.UTC().Format(timeLayout)
}

func parseTime(v string) (time.Time, error) {
	return time.Parse(timeLayout, v)
}

// Store wraps database access.
type Store struct {
	db     *sql.DB
	driver string
}

// Open opens or creates a local SQLite database and applies migrations.
func Open(path string) (*Store, error) {
	return OpenDriver(context.Background(), DriverSQLite, path)
}

// OpenDriver opens a database for the named driver and applies migrations.
// For SQLite the dsn is a file path whose directory is created if missing.
func OpenDriver(ctx context.Context, driver, dsn string) (*Store, error) {
	switch driver {
	case "", DriverSQLite:
		driver = DriverSQLite
		if dir := filepath.Dir(dsn); dir != "" {
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return nil, err
			}
		}
	case DriverLibSQL, DriverPostgres:
		if dsn == "" {
			return nil, fmt.Errorf("database url is required for driver %s", driver)
		}
	default:
		return nil, fmt.Errorf("unsupported database driver %q", driver)
	}
	db, err := sql.Open(driver, dsn)
	if err != nil {
		return nil, err
	}
	if driver == DriverSQLite {
		// A single connection serializes writers and avoids SQLITE_BUSY.
		db.SetMaxOpenConns(1)
	}
	store := &Store{db: db, driver: driver}
	if err := store.migrate(ctx); err != nil {
		if cerr := db.Close(); cerr != nil {
			// Best-effort close on migration failure.
			_ = cerr
		}
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return store, nil
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}

// Driver returns the driver name in use.
func (s *Store) Driver() string {
	return s.driver
}

// Ping checks connectivity.
func (s *Store) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

func (s *Store) migrate(ctx context.Context) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS users (
			id TEXT PRIMARY KEY,
			email TEXT NOT NULL UNIQUE,
			name TEXT NOT NULL DEFAULT '',
			password_hash TEXT NOT NULL DEFAULT '',
			subscription TEXT NOT NULL DEFAULT 'none',
			created_at TEXT NOT NULL
		);`,
		`CREATE TABLE IF NOT EXISTS results (
			id TEXT PRIMARY KEY,
			user_id TEXT,
			display_name TEXT NOT NULL DEFAULT '',
			mode TEXT NOT NULL,
			duration_seconds INTEGER NOT NULL,
			text_source TEXT NOT NULL,
			wpm DOUBLE PRECISION NOT NULL,
			raw_wpm DOUBLE PRECISION NOT NULL,
			accuracy DOUBLE PRECISION NOT NULL,
			errors INTEGER NOT NULL,
			correct_chars INTEGER NOT NULL,
			incorrect_chars INTEGER NOT NULL,
			total_chars INTEGER NOT NULL,
			consistency DOUBLE PRECISION NOT NULL,
			input_history TEXT NOT NULL DEFAULT '',
			flagged INTEGER NOT NULL DEFAULT 0,
			created_at TEXT NOT NULL
		);`,
		`CREATE TABLE IF NOT EXISTS follows (
			follower_id TEXT NOT NULL,
			following_id TEXT NOT NULL,
			created_at TEXT NOT NULL,
			PRIMARY KEY (follower_id, following_id)
		);`,
		`CREATE TABLE IF NOT EXISTS result_flags (
			id TEXT PRIMARY KEY,
			result_id TEXT NOT NULL,
			reason TEXT NOT NULL,
			created_at TEXT NOT NULL
		);`,
		`CREATE TABLE IF NOT EXISTS words (
			value TEXT NOT NULL,
			lang TEXT NOT NULL,
			PRIMARY KEY (value, lang)
		);`,
		`CREATE TABLE IF NOT EXISTS quotes (
			content TEXT PRIMARY KEY,
			author TEXT NOT NULL
		);`,
		`CREATE TABLE IF NOT EXISTS word_lists (
			id TEXT PRIMARY KEY,
			user_id TEXT NOT NULL,
			name TEXT NOT NULL,
			words TEXT NOT NULL,
			is_public INTEGER NOT NULL DEFAULT 0,
			created_at TEXT NOT NULL
		);`,
		`CREATE INDEX IF NOT EXISTS idx_results_board ON results(mode, duration_seconds, text_source, created_at);`,
		`CREATE INDEX IF NOT EXISTS idx_results_user ON results(user_id, created_at);`,
		`CREATE INDEX IF NOT EXISTS idx_word_lists_user ON word_lists(user_id, created_at);`,
	}
	for _, stmt := range stmts {
		if _, err := s.db.ExecContext(ctx, stmt); err != nil {
			return err
		}
	}
	return nil
}

// rebind rewrites ? placeholders to $n for PostgreSQL.
func (s *Store) rebind(query string) string {
	if s.driver != DriverPostgres {
		return query
	}
	var b strings.Builder
	b.Grow(len(query) + 8)
	n := 0
	for i := 0; i < len(query); i++ {
		if query[i] == '?' {
			n++
			b.WriteByte('$')
			b.WriteString(strconv.Itoa(n))
			continue
		}
		b.WriteByte(query[i])
	}
	return b.String()
}

func placeholders(n int) string {
	if n <= 0 {
		return ""
	}
	return strings.Repeat("?,", n-1) + "?"
}

func nullable(v string) any {
	if v == "" {
		return nil
	}
	return v
}

func closeRows(rows *sql.Rows) {
	if cerr := rows.Close(); cerr != nil {
		// Best-effort rows close.
		_ = cerr
	}
}

func rollback(tx *sql.Tx) {
	if rerr := tx.Rollback(); rerr != nil && !errors.Is(rerr, sql.ErrTxDone) {
		// Best-effort rollback.
		_ = rerr
	}
}
