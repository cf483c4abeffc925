package services

import (
	"context"
	"database/sql"
	"sync"
	"testing"
	"time"

	"github.com/dmitrijs2005/moviesearch/internal/dbx"
	"github.com/dmitrijs2005/moviesearch/internal/logging"
	"github.com/dmitrijs2005/moviesearch/internal/server/config"
	"github.com/dmitrijs2005/moviesearch/internal/server/models"
	"github.com/dmitrijs2005/moviesearch/internal/server/repositories/auditlogs"
	"github.com/dmitrijs2005/moviesearch/internal/server/repositories/movies"
	"github.com/dmitrijs2005/moviesearch/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/moviesearch/internal/server/testutil"
	"github.com/dmitrijs2005/moviesearch/internal/server/validation"
	"github.com/stretchr/testify/require"
)

// --- helpers ---

func testConfig() *config.Config {
	cfg := &config.Config{}
	cfg.LoadDefaults()
	cfg.SecretKey = "test-secret"
	cfg.AuditRetryDelay = 5 * time.Millisecond
	return cfg
}

func newTestPool(t *testing.T) (*dbx.Pool, *sql.DB) {
	t.Helper()
	db := testutil.NewMigratedDB(t)
	return dbx.NewPool(db), db
}

func countRows(t *testing.T, db *sql.DB, table string) int {
	t.Helper()
	var n int
	require.NoError(t, db.QueryRow("SELECT COUNT(*) FROM "+table).Scan(&n))
	return n
}

func fastPolicy(w *MovieWriter) {
	w.policy.BaseDelay = time.Millisecond
}

// recordingAuditor captures audit entries synchronously.
type recordingAuditor struct {
	mu     sync.Mutex
	auth   []models.AuthLog
	search []models.SearchLog
	insert []models.InsertLog
}

func (r *recordingAuditor) LogAuth(e models.AuthLog) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.auth = append(r.auth, e)
}

func (r *recordingAuditor) LogSearch(e models.SearchLog) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.search = append(r.search, e)
}

func (r *recordingAuditor) LogInsert(e models.InsertLog) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.insert = append(r.insert, e)
}

func (r *recordingAuditor) authLogs() []models.AuthLog {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]models.AuthLog(nil), r.auth...)
}

func (r *recordingAuditor) insertLogs() []models.InsertLog {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]models.InsertLog(nil), r.insert...)
}

func (r *recordingAuditor) searchLogs() []models.SearchLog {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]models.SearchLog(nil), r.search...)
}

// fakeRM overrides selected repositories of a real manager.
type fakeRM struct {
	repomanager.RepositoryManager
	movies movies.Repository
	audit  auditlogs.Repository
}

func (f *fakeRM) Movies(db dbx.DBTX) movies.Repository {
	if f.movies != nil {
		return f.movies
	}
	return f.RepositoryManager.Movies(db)
}

func (f *fakeRM) AuditLogs(db dbx.DBTX) auditlogs.Repository {
	if f.audit != nil {
		return f.audit
	}
	return f.RepositoryManager.AuditLogs(db)
}

type countingCache struct {
	mu     sync.Mutex
	clears int
}

func (c *countingCache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.clears++
}

func (c *countingCache) count() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.clears
}

func newAuthenticator(t *testing.T, pool *dbx.Pool, cfg *config.Config, audit Auditor) *Authenticator {
	t.Helper()
	rm := repomanager.NewSQLiteRepositoryManager()
	bl := NewTokenBlacklist(pool, rm, logging.Discard())
	return NewAuthenticator(pool, rm, bl, audit, validation.New(), cfg, logging.Discard())
}

func createUser(t *testing.T, pool *dbx.Pool, username, password string) int64 {
	t.Helper()
	id, err := CreateUser(context.Background(), pool, repomanager.NewSQLiteRepositoryManager(), username, password)
	require.NoError(t, err)
	return id
}
