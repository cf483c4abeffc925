package dbx

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"sync/atomic"
	"time"

	_ "modernc.org/sqlite"
)

// DriverName is the database/sql driver registered by modernc.org/sqlite.
const DriverName = "sqlite"

// Pool is a fixed-size set of SQLite connections handed out in round-robin
// order. Each member is a *sql.DB capped at a single open connection, so a
// member is one physical connection with its own pragmas. Conflicting writers
// are serialized by SQLite itself; the pool holds no lock of its own.
type Pool struct {
	conns []*sql.DB
	next  atomic.Uint64
}

// PoolOptions configures OpenPool.
type PoolOptions struct {
	Size        int
	BusyTimeout time.Duration
}

// DSN builds a modernc.org/sqlite data source name for path with the pragmas
// every pool member needs. path may be a plain file name or a "file:" URI
// that already carries query parameters.
func DSN(path string, busyTimeout time.Duration) string {
	dsn := path
	if !strings.HasPrefix(dsn, "file:") {
		dsn = "file:" + dsn
	}

	sep := "?"
	if strings.Contains(dsn, "?") {
		sep = "&"
	}

	params := []string{
		fmt.Sprintf("_pragma=busy_timeout(%d)", busyTimeout.Milliseconds()),
		"_pragma=journal_mode(WAL)",
		"_pragma=synchronous(NORMAL)",
		"_pragma=foreign_keys(1)",
		"_txlock=immediate",
	}

	return dsn + sep + strings.Join(params, "&")
}

// OpenPool opens opts.Size connections to the database at path and verifies
// each of them.
func OpenPool(ctx context.Context, path string, opts PoolOptions) (*Pool, error) {
	if opts.Size <= 0 {
		return nil, fmt.Errorf("pool size must be positive, got %d", opts.Size)
	}

	dsn := DSN(path, opts.BusyTimeout)
	p := &Pool{conns: make([]*sql.DB, 0, opts.Size)}

	for i := 0; i < opts.Size; i++ {
		db, err := sql.Open(DriverName, dsn)
		if err != nil {
			_ = p.Close()
			return nil, fmt.Errorf("open connection %d: %w", i, err)
		}
		db.SetMaxOpenConns(1)
		db.SetMaxIdleConns(1)
		db.SetConnMaxLifetime(0)

		if err := db.PingContext(ctx); err != nil {
			_ = db.Close()
			_ = p.Close()
			return nil, fmt.Errorf("ping connection %d: %w", i, err)
		}
		p.conns = append(p.conns, db)
	}

	return p, nil
}

// NewPool wraps already opened databases, mostly for tests.
func NewPool(conns ...*sql.DB) *Pool {
	return &Pool{conns: conns}
}

// Next returns the next member in round-robin order. It is safe for
// concurrent use.
func (p *Pool) Next() *sql.DB {
	n := p.next.Add(1) - 1
	return p.conns[n%uint64(len(p.conns))]
}

// Primary returns the first member. Migrations and seeding run on it.
func (p *Pool) Primary() *sql.DB {
	return p.conns[0]
}

// Size returns the number of members.
func (p *Pool) Size() int {
	return len(p.conns)
}

// Close closes every member and joins their errors.
func (p *Pool) Close() error {
	var errs []error
	for _, db := range p.conns {
		if err := db.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
