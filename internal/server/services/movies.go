package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/moviesearch/internal/common"
	"github.com/dmitrijs2005/moviesearch/internal/dbx"
	"github.com/dmitrijs2005/moviesearch/internal/logging"
	"github.com/dmitrijs2005/moviesearch/internal/retryx"
	"github.com/dmitrijs2005/moviesearch/internal/server/models"
	"github.com/dmitrijs2005/moviesearch/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/moviesearch/internal/server/validation"
)

// Short failure codes stored in insert audit entries.
const (
	InsertErrValidation = "validation_error"
	InsertErrDuplicate  = "duplicate"
	InsertErrBusy       = "storage_busy"
	InsertErrStorage    = "storage_error"
)

// InsertMovieRequest is the body of a save call. Optional text fields are
// empty when absent.
type InsertMovieRequest struct {
	TMDBID      int64    `json:"tmdb_id" validate:"required,gte=1"`
	Title       string   `json:"title" validate:"required,max=500"`
	Overview    string   `json:"overview" validate:"max=2000"`
	PosterPath  string   `json:"poster_path" validate:"max=500"`
	ReleaseDate string   `json:"release_date" validate:"omitempty,isodate"`
	VoteAverage *float64 `json:"vote_average" validate:"omitempty,gte=0,lte=10"`
}

// DuplicateError reports that a movie with the same TMDB id is already
// saved. It matches common.ErrDuplicate.
type DuplicateError struct {
	TMDBID int64
}

func (e *DuplicateError) Error() string {
	return fmt.Sprintf("movie with tmdb id %d already exists", e.TMDBID)
}

func (e *DuplicateError) Is(target error) bool {
	return target == common.ErrDuplicate
}

// CacheInvalidator drops every cached search page.
type CacheInvalidator interface {
	Clear()
}

// MovieWriter saves catalog items at most once per TMDB id.
type MovieWriter struct {
	pool        *dbx.Pool
	repomanager repomanager.RepositoryManager
	cache       CacheInvalidator
	audit       Auditor
	validator   *validation.Validator
	logger      logging.Logger
	policy      retryx.Policy
}

func NewMovieWriter(pool *dbx.Pool, m repomanager.RepositoryManager, c CacheInvalidator, audit Auditor, v *validation.Validator, l logging.Logger) *MovieWriter {
	return &MovieWriter{
		pool:        pool,
		repomanager: m,
		cache:       c,
		audit:       audit,
		validator:   v,
		logger:      l.With("module", "movies"),
		policy:      retryx.DefaultPolicy,
	}
}

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

// Insert stores the movie and returns its row id.
//
// The existence check and the insert run in one immediate transaction on a
// pool member. Lock contention restarts the whole transaction under the
// retry policy; a duplicate aborts at once with *DuplicateError. The schema's
// unique constraint settles races between pool members. On success the
// search cache is cleared.
func (w *MovieWriter) Insert(ctx context.Context, userID int64, req InsertMovieRequest, meta models.RequestMeta) (int64, error) {
	req.Title = validation.Sanitize(req.Title)
	req.Overview = validation.Sanitize(req.Overview)
	req.PosterPath = validation.Sanitize(req.PosterPath)

	entry := models.InsertLog{UserID: userID, TMDBID: req.TMDBID, MovieTitle: req.Title, RequestMeta: meta}

	if err := w.validator.Struct(req); err != nil {
		w.auditFailure(entry, InsertErrValidation)
		return 0, err
	}

	movie := &models.Movie{
		TMDBID:      req.TMDBID,
		Title:       req.Title,
		Overview:    optional(req.Overview),
		PosterPath:  optional(req.PosterPath),
		ReleaseDate: optional(req.ReleaseDate),
		VoteAverage: req.VoteAverage,
		CreatedBy:   userID,
	}

	var id int64
	err := retryx.Do(ctx, w.policy, dbx.IsContention, func(ctx context.Context, attempt int) error {
		if attempt > 1 {
			w.logger.Warn(ctx, "retrying movie insert", "tmdb_id", movie.TMDBID, "attempt", attempt)
		}
		return dbx.WithTx(ctx, w.pool.Next(), nil, func(ctx context.Context, tx dbx.DBTX) error {
			repo := w.repomanager.Movies(tx)

			_, err := repo.GetByTMDBID(ctx, movie.TMDBID)
			if err == nil {
				return &DuplicateError{TMDBID: movie.TMDBID}
			}
			if !errors.Is(err, common.ErrorNotFound) {
				return err
			}

			id, err = repo.Create(ctx, movie)
			if errors.Is(err, common.ErrDuplicate) {
				return &DuplicateError{TMDBID: movie.TMDBID}
			}
			return err
		})
	})

	if err != nil {
		var dup *DuplicateError
		switch {
		case errors.As(err, &dup):
			w.auditFailure(entry, InsertErrDuplicate)
			return 0, dup
		case dbx.IsContention(err):
			w.logger.Error(ctx, "movie insert gave up on busy storage", "tmdb_id", movie.TMDBID, "error", err)
			w.auditFailure(entry, InsertErrBusy)
			return 0, fmt.Errorf("%w: %v", common.ErrStorageContention, err)
		default:
			w.logger.Error(ctx, "movie insert failed", "tmdb_id", movie.TMDBID, "error", err)
			w.auditFailure(entry, InsertErrStorage)
			return 0, fmt.Errorf("%w: %v", common.ErrStorage, err)
		}
	}

	w.cache.Clear()

	entry.Success = true
	w.audit.LogInsert(entry)
	w.logger.Info(ctx, "movie inserted", "tmdb_id", movie.TMDBID, "movie_id", id, "user_id", userID)

	return id, nil
}

func (w *MovieWriter) auditFailure(entry models.InsertLog, code string) {
	entry.Success = false
	entry.ErrorMessage = code
	w.audit.LogInsert(entry)
}
