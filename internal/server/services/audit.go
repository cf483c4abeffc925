package services

import (
	"context"
	"sync"
	"time"

	"github.com/dmitrijs2005/moviesearch/internal/dbx"
	"github.com/dmitrijs2005/moviesearch/internal/logging"
	"github.com/dmitrijs2005/moviesearch/internal/server/config"
	"github.com/dmitrijs2005/moviesearch/internal/server/models"
	"github.com/dmitrijs2005/moviesearch/internal/server/repositories/auditlogs"
	"github.com/dmitrijs2005/moviesearch/internal/server/repositories/repomanager"
)

// Auditor records security-relevant events. Implementations must return
// immediately and never report failures to the caller.
type Auditor interface {
	LogAuth(e models.AuthLog)
	LogSearch(e models.SearchLog)
	LogInsert(e models.InsertLog)
}

type auditJob struct {
	kind  string
	write func(ctx context.Context, repo auditlogs.Repository) error
}

// AuditLogger writes audit entries from a bounded queue on a background
// worker. A write that hits lock contention is retried once after
// retryDelay; any other outcome is only logged.
type AuditLogger struct {
	pool        *dbx.Pool
	repomanager repomanager.RepositoryManager
	logger      logging.Logger
	retryDelay  time.Duration
	timeout     time.Duration

	mu     sync.RWMutex
	closed bool
	queue  chan auditJob
	wg     sync.WaitGroup
}

// NewAuditLogger constructs an AuditLogger. Call Start before logging and
// Close on shutdown to drain pending entries.
func NewAuditLogger(pool *dbx.Pool, m repomanager.RepositoryManager, cfg *config.Config, l logging.Logger) *AuditLogger {
	size := cfg.AuditQueueSize
	if size <= 0 {
		size = 1
	}
	return &AuditLogger{
		pool:        pool,
		repomanager: m,
		logger:      l.With("module", "audit"),
		retryDelay:  cfg.AuditRetryDelay,
		timeout:     cfg.BusyTimeout * 2,
		queue:       make(chan auditJob, size),
	}
}

// Start launches the worker. It returns immediately.
func (a *AuditLogger) Start() {
	a.wg.Add(1)
	go func() {
		defer a.wg.Done()
		for job := range a.queue {
			a.run(job, false)
		}
	}()
}

// Close stops accepting entries and waits until queued entries and pending
// retries are written or dropped.
func (a *AuditLogger) Close() {
	a.mu.Lock()
	if a.closed {
		a.mu.Unlock()
		return
	}
	a.closed = true
	close(a.queue)
	a.mu.Unlock()

	a.wg.Wait()
}

func (a *AuditLogger) LogAuth(e models.AuthLog) {
	a.enqueue(auditJob{kind: "auth", write: func(ctx context.Context, repo auditlogs.Repository) error {
		return repo.InsertAuthLog(ctx, &e)
	}})
}

func (a *AuditLogger) LogSearch(e models.SearchLog) {
	a.enqueue(auditJob{kind: "search", write: func(ctx context.Context, repo auditlogs.Repository) error {
		return repo.InsertSearchLog(ctx, &e)
	}})
}

func (a *AuditLogger) LogInsert(e models.InsertLog) {
	a.enqueue(auditJob{kind: "insert", write: func(ctx context.Context, repo auditlogs.Repository) error {
		return repo.InsertInsertLog(ctx, &e)
	}})
}

func (a *AuditLogger) enqueue(job auditJob) {
	a.mu.RLock()
	defer a.mu.RUnlock()

	if a.closed {
		a.logger.Warn(context.Background(), "audit logger closed, entry dropped", "kind", job.kind)
		return
	}

	select {
	case a.queue <- job:
	default:
		a.logger.Warn(context.Background(), "audit queue full, entry dropped", "kind", job.kind)
	}
}

func (a *AuditLogger) run(job auditJob, isRetry bool) {
	ctx := context.Background()
	if a.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, a.timeout)
		defer cancel()
	}

	err := job.write(ctx, a.repomanager.AuditLogs(a.pool.Next()))
	if err == nil {
		return
	}

	switch {
	case isRetry:
		a.logger.Warn(ctx, "audit write failed after retry", "kind", job.kind, "error", err)
	case dbx.IsContention(err):
		a.wg.Add(1)
		time.AfterFunc(a.retryDelay, func() {
			defer a.wg.Done()
			a.run(job, true)
		})
	default:
		a.logger.Warn(ctx, "audit write failed", "kind", job.kind, "error", err)
	}
}
