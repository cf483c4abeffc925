// Package repomanager provides the SQLite RepositoryManager, wiring together
// repository constructors and database migrations (via goose).
package repomanager

import (
	"context"
	"database/sql"

	"github.com/dmitrijs2005/moviesearch/internal/dbx"
	"github.com/dmitrijs2005/moviesearch/internal/server/migrations"
	"github.com/dmitrijs2005/moviesearch/internal/server/repositories/auditlogs"
	"github.com/dmitrijs2005/moviesearch/internal/server/repositories/blacklist"
	"github.com/dmitrijs2005/moviesearch/internal/server/repositories/movies"
	"github.com/dmitrijs2005/moviesearch/internal/server/repositories/users"
	"github.com/pressly/goose/v3"
)

// SQLiteRepositoryManager vends SQLite-backed repository implementations
// and exposes a schema migration hook.
type SQLiteRepositoryManager struct{}

// Users returns a users.Repository bound to the provided DBTX.
func (m *SQLiteRepositoryManager) Users(db dbx.DBTX) users.Repository {
	return users.NewSQLiteRepository(db)
}

// Movies returns a movies.Repository bound to the provided DBTX.
func (m *SQLiteRepositoryManager) Movies(db dbx.DBTX) movies.Repository {
	return movies.NewSQLiteRepository(db)
}

// Blacklist returns a blacklist.Repository bound to the provided DBTX.
func (m *SQLiteRepositoryManager) Blacklist(db dbx.DBTX) blacklist.Repository {
	return blacklist.NewSQLiteRepository(db)
}

// AuditLogs returns an auditlogs.Repository bound to the provided DBTX.
func (m *SQLiteRepositoryManager) AuditLogs(db dbx.DBTX) auditlogs.Repository {
	return auditlogs.NewSQLiteRepository(db)
}

// gooseUpContext is a seam for testing goose.UpContext.
var gooseUpContext = func(ctx context.Context, db *sql.DB, dir string, opts ...goose.OptionsFunc) error {
	return goose.UpContext(ctx, db, dir, opts...)
}

// RunMigrations sets up goose with the embedded migrations and runs them
// against the provided database connection.
func (m *SQLiteRepositoryManager) RunMigrations(ctx context.Context, db *sql.DB) error {
	goose.SetBaseFS(migrations.Migrations)
	if err := goose.SetDialect("sqlite3"); err != nil {
		return err
	}
	return gooseUpContext(ctx, db, ".")
}

// NewSQLiteRepositoryManager constructs a SQLite-backed RepositoryManager.
func NewSQLiteRepositoryManager() RepositoryManager {
	return &SQLiteRepositoryManager{}
}
