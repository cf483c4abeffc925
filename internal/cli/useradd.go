package cli

import (
	"errors"
	"fmt"

	"github.com/dmitrijs2005/moviesearch/internal/common"
	"github.com/dmitrijs2005/moviesearch/internal/dbx"
	"github.com/dmitrijs2005/moviesearch/internal/filex"
	"github.com/dmitrijs2005/moviesearch/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/moviesearch/internal/server/services"
	"github.com/dmitrijs2005/moviesearch/internal/server/validation"
	"github.com/spf13/cobra"
)

var errPasswordMismatch = errors.New("passwords do not match")

func newUserAddCommand(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "useradd <username>",
		Short: "Create a user account",
		Long: `Creates a user with a password read from the terminal without echo.
The database and its schema are created if missing.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			out := cmd.OutOrStdout()

			pw, err := GetPassword(out, "Password: ")
			if err != nil {
				return err
			}
			defer common.WipeByteArray(pw)

			confirm, err := GetPassword(out, "Repeat password: ")
			if err != nil {
				return err
			}
			defer common.WipeByteArray(confirm)

			if string(pw) != string(confirm) {
				return errPasswordMismatch
			}

			req := services.LoginRequest{Username: args[0], Password: string(pw)}
			if err := validation.New().Struct(req); err != nil {
				return err
			}

			if _, err := filex.EnsureParentDir(opts.dbPath); err != nil {
				return err
			}
			pool, err := dbx.OpenPool(ctx, opts.dbPath, dbx.PoolOptions{Size: 1, BusyTimeout: defaultBusyTimeout})
			if err != nil {
				return err
			}
			defer pool.Close()

			rm := repomanager.NewSQLiteRepositoryManager()
			if err := rm.RunMigrations(ctx, pool.Primary()); err != nil {
				return fmt.Errorf("migration error: %w", err)
			}

			id, err := services.CreateUser(ctx, pool, rm, req.Username, req.Password)
			if errors.Is(err, common.ErrDuplicate) {
				return fmt.Errorf("user %q already exists", req.Username)
			}
			if err != nil {
				return err
			}

			fmt.Fprintf(out, "Created user %s (id %d)\n", req.Username, id)
			return nil
		},
	}
}
