package repomanager

import (
	"context"
	"database/sql"

	"github.com/dmitrijs2005/moviesearch/internal/dbx"
	"github.com/dmitrijs2005/moviesearch/internal/server/repositories/auditlogs"
	"github.com/dmitrijs2005/moviesearch/internal/server/repositories/blacklist"
	"github.com/dmitrijs2005/moviesearch/internal/server/repositories/movies"
	"github.com/dmitrijs2005/moviesearch/internal/server/repositories/users"
)

// RepositoryManager vends repositories bound to a caller-chosen DBTX, so the
// same repository code runs on a pool member or inside a transaction.
type RepositoryManager interface {
	RunMigrations(context.Context, *sql.DB) error
	Users(db dbx.DBTX) users.Repository
	Movies(db dbx.DBTX) movies.Repository
	Blacklist(db dbx.DBTX) blacklist.Repository
	AuditLogs(db dbx.DBTX) auditlogs.Repository
}
