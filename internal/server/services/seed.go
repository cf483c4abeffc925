package services

import (
	"context"
	"fmt"

	"github.com/dmitrijs2005/moviesearch/internal/cryptox"
	"github.com/dmitrijs2005/moviesearch/internal/dbx"
	"github.com/dmitrijs2005/moviesearch/internal/logging"
	"github.com/dmitrijs2005/moviesearch/internal/server/repositories/repomanager"
)

// Credentials is a username and clear-text password pair.
type Credentials struct {
	Username string
	Password string
}

// DefaultUsers are created on first start when the users table is empty.
var DefaultUsers = []Credentials{
	{Username: "admin", Password: "admin123"},
	{Username: "user", Password: "user123"},
	{Username: "test", Password: "test123"},
}

// SeedUsers creates the given users inside one transaction when no user
// exists yet. It returns how many users were created.
func SeedUsers(ctx context.Context, pool *dbx.Pool, m repomanager.RepositoryManager, creds []Credentials, l logging.Logger) (int, error) {
	db := pool.Primary()

	n, err := m.Users(db).Count(ctx)
	if err != nil {
		return 0, fmt.Errorf("error counting users: %w", err)
	}
	if n > 0 {
		return 0, nil
	}

	err = dbx.WithTx(ctx, db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		repo := m.Users(tx)
		for _, c := range creds {
			hash, err := cryptox.HashPassword([]byte(c.Password), cryptox.DefaultCost)
			if err != nil {
				return err
			}
			if _, err := repo.Create(ctx, c.Username, hash); err != nil {
				return fmt.Errorf("error creating user %q: %w", c.Username, err)
			}
		}
		return nil
	})
	if err != nil {
		return 0, err
	}

	l.Info(ctx, "default users created", "count", len(creds))
	return len(creds), nil
}

// CreateUser hashes password and stores a new user. A taken username yields
// common.ErrDuplicate.
func CreateUser(ctx context.Context, pool *dbx.Pool, m repomanager.RepositoryManager, username, password string) (int64, error) {
	hash, err := cryptox.HashPassword([]byte(password), cryptox.DefaultCost)
	if err != nil {
		return 0, err
	}
	u, err := m.Users(pool.Primary()).Create(ctx, username, hash)
	if err != nil {
		return 0, err
	}
	return u.ID, nil
}
