package blacklist

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/dmitrijs2005/moviesearch/internal/dbx"
)

// SQLiteRepository implements Repository over dbx.DBTX (satisfied by *sql.DB
// or *sql.Tx). Expiry timestamps are stored as UTC text in dbx.TimeLayout so
// they compare lexically.
type SQLiteRepository struct {
	db dbx.DBTX
}

// NewSQLiteRepository constructs a repository bound to the given DBTX.
func NewSQLiteRepository(db dbx.DBTX) *SQLiteRepository {
	return &SQLiteRepository{db: db}
}

func (r *SQLiteRepository) PurgeExpired(ctx context.Context, now time.Time) (int64, error) {
	query := `
		DELETE FROM token_blacklist
		WHERE expires_at < ?
	`
	res, err := r.db.ExecContext(ctx, query, dbx.FormatTime(now))
	if err != nil {
		return 0, fmt.Errorf("db error: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("db error: %w", err)
	}
	return n, nil
}

func (r *SQLiteRepository) Contains(ctx context.Context, fingerprint string, now time.Time) (bool, error) {
	query := `
		SELECT id FROM token_blacklist
		WHERE token_hash = ? AND expires_at > ?
	`
	var id int64
	if err := r.db.QueryRowContext(ctx, query, fingerprint, dbx.FormatTime(now)).Scan(&id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return false, nil
		}
		return false, fmt.Errorf("db error: %w", err)
	}
	return true, nil
}

func (r *SQLiteRepository) Add(ctx context.Context, fingerprint string, expiresAt time.Time) error {
	query := `
		INSERT INTO token_blacklist (token_hash, expires_at)
		VALUES (?, ?)
		ON CONFLICT(token_hash) DO NOTHING
	`
	if _, err := r.db.ExecContext(ctx, query, fingerprint, dbx.FormatTime(expiresAt)); err != nil {
		if dbx.IsUniqueViolation(err) {
			return nil
		}
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}
