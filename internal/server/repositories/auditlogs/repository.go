// Package auditlogs declares the append-only audit trail repository.
package auditlogs

import (
	"context"

	"github.com/dmitrijs2005/moviesearch/internal/server/models"
)

type Repository interface {
	InsertAuthLog(ctx context.Context, e *models.AuthLog) error
	InsertSearchLog(ctx context.Context, e *models.SearchLog) error
	InsertInsertLog(ctx context.Context, e *models.InsertLog) error
}
