package cli

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/dmitrijs2005/moviesearch/internal/dbx"
	"github.com/dmitrijs2005/moviesearch/internal/server/config"
	"github.com/spf13/cobra"
)

const defaultBusyTimeout = 5 * time.Second

type options struct {
	dbPath string
}

// NewRootCommand builds the command tree.
func NewRootCommand() *cobra.Command {
	defaults := &config.Config{}
	defaults.LoadDefaults()

	opts := &options{}

	root := &cobra.Command{
		Use:   "moviesearch-cli",
		Short: "Operator tools for the movie search server",
		Long: `Operator tools for the movie search server: create users, inspect the
SQLite database, check the environment and generate signing secrets.`,
		SilenceUsage: true,
	}

	root.PersistentFlags().StringVarP(&opts.dbPath, "db", "d", envOr("DATABASE_PATH", defaults.DatabasePath), "SQLite database path")

	root.AddCommand(
		newUserAddCommand(opts),
		newDumpCommand(opts),
		newCheckEnvCommand(),
		newGenSecretCommand(),
	)

	return root
}

// Execute runs the root command and exits non-zero on failure.
func Execute() {
	if err := NewRootCommand().Execute(); err != nil {
		os.Exit(1)
	}
}

func envOr(name, fallback string) string {
	if v := os.Getenv(name); v != "" {
		return v
	}
	return fallback
}

// openExisting opens a single connection to an existing database file.
func openExisting(ctx context.Context, path string) (*dbx.Pool, error) {
	if _, err := os.Stat(path); err != nil {
		return nil, fmt.Errorf("database %s: %w", path, err)
	}
	return dbx.OpenPool(ctx, path, dbx.PoolOptions{Size: 1, BusyTimeout: defaultBusyTimeout})
}
