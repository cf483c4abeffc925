// Package movies declares the saved-movie store contract and its SQLite
// implementation.
package movies

import (
	"context"

	"github.com/dmitrijs2005/moviesearch/internal/server/models"
)

type Repository interface {
	// GetByTMDBID returns the saved movie with the given external id or
	// common.ErrorNotFound.
	GetByTMDBID(ctx context.Context, tmdbID int64) (*models.Movie, error)

	// Create inserts m and returns the new row id. A second row for the same
	// TMDB id is rejected by the schema and reported as common.ErrDuplicate.
	Create(ctx context.Context, m *models.Movie) (int64, error)
}
