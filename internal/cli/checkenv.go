package cli

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

// Placeholder values shipped in the sample .env.
const (
	placeholderAPIKey = "sua-chave-api-tmdb-aqui"
	placeholderSecret = "seu-secret-super-seguro-aqui-mude-em-producao"
)

const envTemplate = `PORT=3001
FRONTEND_URL=http://localhost:5173
JWT_SECRET=<random secret, see gen-secret>
JWT_EXPIRES_IN=24h
TMDB_API_KEY=<key from https://www.themoviedb.org/settings/api>
GO_ENV=development
`

var errEnvInvalid = errors.New("environment is not configured")

func newCheckEnvCommand() *cobra.Command {
	var envFile string

	cmd := &cobra.Command{
		Use:   "check-env",
		Short: "Check the .env file and required variables",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return checkEnv(cmd.OutOrStdout(), envFile, os.LookupEnv)
		},
	}

	cmd.Flags().StringVarP(&envFile, "env-file", "e", ".env", "Path to the env file")
	return cmd
}

// checkEnv reads path and reports on the server variables. Variables already
// present in the process environment take precedence over the file, the
// same way the server loads it.
func checkEnv(w io.Writer, path string, lookup func(string) (string, bool)) error {
	file, err := godotenv.Read(path)
	if errors.Is(err, fs.ErrNotExist) {
		fmt.Fprintf(w, "env file %s not found\n", path)
		fmt.Fprintf(w, "Create it with the following variables:\n\n%s\n", envTemplate)
		return errEnvInvalid
	}
	if err != nil {
		return fmt.Errorf("read %s: %w", path, err)
	}
	fmt.Fprintf(w, "[ok]   env file %s found\n", path)

	get := func(name string) string {
		if v, ok := lookup(name); ok {
			return v
		}
		return file[name]
	}

	failed := false

	if key := get("TMDB_API_KEY"); key == "" || key == placeholderAPIKey {
		fmt.Fprintln(w, "[fail] TMDB_API_KEY is missing or still the placeholder")
		fmt.Fprintln(w, "       get a key at https://www.themoviedb.org/settings/api")
		failed = true
	} else {
		fmt.Fprintln(w, "[ok]   TMDB_API_KEY is set")
	}

	if secret := get("JWT_SECRET"); secret == "" || secret == placeholderSecret {
		fmt.Fprintln(w, "[warn] JWT_SECRET is missing or still the placeholder, logins will fail")
	} else {
		fmt.Fprintln(w, "[ok]   JWT_SECRET is set")
	}

	port := get("PORT")
	if port == "" {
		port = "3001"
	}
	fmt.Fprintf(w, "[ok]   PORT: %s\n", port)

	if failed {
		return errEnvInvalid
	}
	fmt.Fprintln(w, "All settings look good")
	return nil
}
