package services

import (
	"context"
	"fmt"
	"time"

	"github.com/dmitrijs2005/moviesearch/internal/cryptox"
	"github.com/dmitrijs2005/moviesearch/internal/dbx"
	"github.com/dmitrijs2005/moviesearch/internal/logging"
	"github.com/dmitrijs2005/moviesearch/internal/retryx"
	"github.com/dmitrijs2005/moviesearch/internal/server/repositories/repomanager"
)

// TokenBlacklist tracks revoked tokens by fingerprint until their natural
// expiry. Raw tokens are never stored.
type TokenBlacklist struct {
	pool        *dbx.Pool
	repomanager repomanager.RepositoryManager
	logger      logging.Logger
	now         func() time.Time
}

func NewTokenBlacklist(pool *dbx.Pool, m repomanager.RepositoryManager, l logging.Logger) *TokenBlacklist {
	return &TokenBlacklist{
		pool:        pool,
		repomanager: m,
		logger:      l.With("module", "blacklist"),
		now:         time.Now,
	}
}

// PurgeExpired removes entries whose token has already expired.
func (b *TokenBlacklist) PurgeExpired(ctx context.Context) (int64, error) {
	n, err := b.repomanager.Blacklist(b.pool.Next()).PurgeExpired(ctx, b.now())
	if err != nil {
		return 0, fmt.Errorf("error purging blacklist: %w", err)
	}
	if n > 0 {
		b.logger.Debug(ctx, "expired blacklist entries removed", "count", n)
	}
	return n, nil
}

// Contains reports whether token has been revoked. Expired entries are
// purged first; a failed purge is logged and does not prevent the lookup.
func (b *TokenBlacklist) Contains(ctx context.Context, token string) (bool, error) {
	if _, err := b.PurgeExpired(ctx); err != nil {
		b.logger.Warn(ctx, "blacklist purge failed", "error", err)
	}

	found, err := b.repomanager.Blacklist(b.pool.Next()).Contains(ctx, cryptox.Fingerprint(token), b.now())
	if err != nil {
		return false, fmt.Errorf("error checking blacklist: %w", err)
	}
	return found, nil
}

// Add revokes token until expiresAt. Revoking the same token twice is not
// an error. Lock contention is retried under retryx.DefaultPolicy.
func (b *TokenBlacklist) Add(ctx context.Context, token string, expiresAt time.Time) error {
	fp := cryptox.Fingerprint(token)

	err := retryx.Do(ctx, retryx.DefaultPolicy, dbx.IsContention, func(ctx context.Context, attempt int) error {
		return b.repomanager.Blacklist(b.pool.Next()).Add(ctx, fp, expiresAt)
	})
	if err != nil {
		return fmt.Errorf("error adding to blacklist: %w", err)
	}
	return nil
}

// RunSweeper purges expired entries every interval until ctx is done.
func (b *TokenBlacklist) RunSweeper(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		return
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if _, err := b.PurgeExpired(ctx); err != nil {
				b.logger.Warn(ctx, "blacklist sweep failed", "error", err)
			}
		}
	}
}
