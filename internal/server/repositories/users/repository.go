// Package users declares the credential store contract and its SQLite
// implementation.
package users

import (
	"context"

	"github.com/dmitrijs2005/moviesearch/internal/server/models"
)

type Repository interface {
	// Create stores a user and returns it with the assigned id. A taken
	// username yields common.ErrDuplicate.
	Create(ctx context.Context, username, passwordHash string) (*models.User, error)

	// GetUserByLogin looks a user up by exact username and returns
	// common.ErrorNotFound when absent.
	GetUserByLogin(ctx context.Context, username string) (*models.User, error)

	// Count returns the number of stored users.
	Count(ctx context.Context) (int64, error)
}
