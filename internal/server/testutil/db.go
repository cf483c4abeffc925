// Package testutil opens migrated SQLite databases for tests.
package testutil

import (
	"context"
	"database/sql"
	"path/filepath"
	"testing"
	"time"

	"github.com/dmitrijs2005/moviesearch/internal/dbx"
	"github.com/dmitrijs2005/moviesearch/internal/server/migrations"
	"github.com/pressly/goose/v3"
	"github.com/stretchr/testify/require"
)

func migrate(t *testing.T, db *sql.DB) {
	t.Helper()
	goose.SetBaseFS(migrations.Migrations)
	goose.SetLogger(goose.NopLogger())
	require.NoError(t, goose.SetDialect("sqlite3"))
	require.NoError(t, goose.UpContext(context.Background(), db, "."))
}

// NewMigratedDB returns a private in-memory database with the full schema.
// It is limited to one connection because every new connection to
// ":memory:" would see an empty database.
func NewMigratedDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := sql.Open(dbx.DriverName, ":memory:")
	require.NoError(t, err)
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = db.Close() })

	_, err = db.Exec(`PRAGMA foreign_keys = ON`)
	require.NoError(t, err)

	migrate(t, db)
	return db
}

// NewMigratedPool returns a round-robin pool over a temporary database file
// with the full schema, configured like the production pool.
func NewMigratedPool(t *testing.T, size int) *dbx.Pool {
	t.Helper()
	path := filepath.Join(t.TempDir(), "test.sqlite")

	p, err := dbx.OpenPool(context.Background(), path, dbx.PoolOptions{Size: size, BusyTimeout: 5 * time.Second})
	require.NoError(t, err)
	t.Cleanup(func() { _ = p.Close() })

	migrate(t, p.Primary())
	return p
}

// CreateUser inserts a user row directly and returns its id.
func CreateUser(t *testing.T, db *sql.DB, username string) int64 {
	t.Helper()
	res, err := db.Exec(`INSERT INTO users (username, password) VALUES (?, ?)`, username, "x")
	require.NoError(t, err)
	id, err := res.LastInsertId()
	require.NoError(t, err)
	return id
}
