// Package testdb provides helpers for integration tests that run
// against a real Postgres database. Tests call Get to obtain a
// migrated connection and skip automatically when no DATABASE_URL is
// configured, so the unit suite stays green without infrastructure.
package testdb

import (
	"database/sql"
	"os"
	"path/filepath"
	"runtime"
	"testing"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"
	"github.com/stretchr/testify/require"
)

// URL returns the integration test database URL, or "" when
// integration tests are not configured.
func URL() string {
	return os.Getenv("DATABASE_URL")
}

// Get opens the integration test database and brings its schema up to
// date. The test is skipped when DATABASE_URL is unset. The connection
// is closed via test cleanup.
func Get(t *testing.T) *sql.DB {
	t.Helper()

	url := URL()
	if url == "" {
		t.Skip("DATABASE_URL not set; skipping integration test")
	}

	db, err := sql.Open("pgx", url)
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	require.NoError(t, db.Ping())

	require.NoError(t, goose.SetDialect("postgres"))
	require.NoError(t, goose.Up(db, migrationsDir(t)))

	return db
}

// Reset truncates all application tables so each test starts from a
// clean slate.
func Reset(t *testing.T, db *sql.DB) {
	t.Helper()

	_, err := db.Exec("TRUNCATE users, topics, cards CASCADE")
	require.NoError(t, err)
}

// migrationsDir locates the migrations directory relative to this
// file, so tests work regardless of the package they run from.
func migrationsDir(t *testing.T) string {
	t.Helper()

	_, file, _, ok := runtime.Caller(0)
	require.True(t, ok, "cannot locate testdb source file")

	return filepath.Join(filepath.Dir(file), "..", "..", "migrations")
}
