package movies

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/moviesearch/internal/common"
	"github.com/dmitrijs2005/moviesearch/internal/dbx"
	"github.com/dmitrijs2005/moviesearch/internal/server/models"
)

type SQLiteRepository struct {
	db dbx.DBTX
}

func NewSQLiteRepository(db dbx.DBTX) *SQLiteRepository {
	return &SQLiteRepository{db: db}
}

func (r *SQLiteRepository) GetByTMDBID(ctx context.Context, tmdbID int64) (*models.Movie, error) {
	query :=
		`SELECT id, tmdb_id, title, overview, poster_path, release_date, vote_average, created_by
		 FROM movies
		 WHERE tmdb_id = ?
		 `

	var (
		m                                models.Movie
		overview, posterPath, releaseDay sql.NullString
		voteAverage                      sql.NullFloat64
	)
	err := r.db.QueryRowContext(ctx, query, tmdbID).Scan(
		&m.ID, &m.TMDBID, &m.Title, &overview, &posterPath, &releaseDay, &voteAverage, &m.CreatedBy)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}

	if overview.Valid {
		m.Overview = &overview.String
	}
	if posterPath.Valid {
		m.PosterPath = &posterPath.String
	}
	if releaseDay.Valid {
		m.ReleaseDate = &releaseDay.String
	}
	if voteAverage.Valid {
		m.VoteAverage = &voteAverage.Float64
	}

	return &m, nil
}

func (r *SQLiteRepository) Create(ctx context.Context, m *models.Movie) (int64, error) {
	query :=
		`INSERT INTO movies (tmdb_id, title, overview, poster_path, release_date, vote_average, created_by)
		 VALUES (?, ?, ?, ?, ?, ?, ?)
		 `

	res, err := r.db.ExecContext(ctx, query,
		m.TMDBID, m.Title, m.Overview, m.PosterPath, m.ReleaseDate, m.VoteAverage, m.CreatedBy)
	if err != nil {
		if dbx.IsUniqueViolation(err) {
			return 0, common.ErrDuplicate
		}
		return 0, fmt.Errorf("db error: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("db error: %w", err)
	}
	return id, nil
}
