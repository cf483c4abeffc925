package auditlogs

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/dmitrijs2005/moviesearch/internal/dbx"
	"github.com/dmitrijs2005/moviesearch/internal/server/models"
)

type SQLiteRepository struct {
	db dbx.DBTX
}

func NewSQLiteRepository(db dbx.DBTX) *SQLiteRepository {
	return &SQLiteRepository{db: db}
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

func nullID(id int64) sql.NullInt64 {
	return sql.NullInt64{Int64: id, Valid: id != 0}
}

func (r *SQLiteRepository) InsertAuthLog(ctx context.Context, e *models.AuthLog) error {
	query := `
		INSERT INTO auth_logs (username, success, ip_address, user_agent)
		VALUES (?, ?, ?, ?)
	`
	if _, err := r.db.ExecContext(ctx, query,
		nullString(e.Username), e.Success, nullString(e.IP), nullString(e.UserAgent)); err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

func (r *SQLiteRepository) InsertSearchLog(ctx context.Context, e *models.SearchLog) error {
	query := `
		INSERT INTO search_logs (user_id, query, results_count, ip_address, user_agent)
		VALUES (?, ?, ?, ?, ?)
	`
	if _, err := r.db.ExecContext(ctx, query,
		nullID(e.UserID), e.Query, e.ResultsCount, nullString(e.IP), nullString(e.UserAgent)); err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

func (r *SQLiteRepository) InsertInsertLog(ctx context.Context, e *models.InsertLog) error {
	query := `
		INSERT INTO insert_logs (user_id, movie_id, movie_title, success, error_message, ip_address, user_agent)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`
	if _, err := r.db.ExecContext(ctx, query,
		nullID(e.UserID), nullID(e.TMDBID), nullString(e.MovieTitle), e.Success,
		nullString(e.ErrorMessage), nullString(e.IP), nullString(e.UserAgent)); err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}
