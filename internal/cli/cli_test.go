package cli

import (
	"bytes"
	"context"
	"database/sql"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/dmitrijs2005/moviesearch/internal/dbx"
	"github.com/dmitrijs2005/moviesearch/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/moviesearch/internal/server/services"
	"github.com/dmitrijs2005/moviesearch/internal/server/validation"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// stubPasswords makes readPassword return answers in order.
func stubPasswords(t *testing.T, answers ...string) {
	t.Helper()
	old := readPassword
	t.Cleanup(func() { readPassword = old })

	i := 0
	readPassword = func(int) ([]byte, error) {
		if i >= len(answers) {
			return nil, errors.New("no more input")
		}
		a := answers[i]
		i++
		return []byte(a), nil
	}
}

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := NewRootCommand()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.ExecuteContext(context.Background())
	return out.String(), err
}

func openDB(t *testing.T, path string) *sql.DB {
	t.Helper()
	db, err := sql.Open(dbx.DriverName, path)
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return db
}

func TestGetPassword_Error(t *testing.T) {
	old := readPassword
	defer func() { readPassword = old }()
	readPassword = func(int) ([]byte, error) {
		return nil, errors.New("boom")
	}
	var out bytes.Buffer
	_, err := GetPassword(&out, "Password: ")
	if err == nil {
		t.Fatal("expected error")
	}
	if !strings.HasPrefix(out.String(), "Password: ") {
		t.Fatalf("prompt not printed, got %q", out.String())
	}
}

func TestUserAdd_CreatesUser(t *testing.T) {
	path := filepath.Join(t.TempDir(), "data", "db.sqlite")
	stubPasswords(t, "s3cret!", "s3cret!")

	out, err := run(t, "--db", path, "useradd", "alice")
	require.NoError(t, err)
	assert.Contains(t, out, "Created user alice")

	var hash string
	require.NoError(t, openDB(t, path).QueryRow(`SELECT password FROM users WHERE username = 'alice'`).Scan(&hash))
	assert.NotEqual(t, "s3cret!", hash)
}

func TestUserAdd_Errors(t *testing.T) {
	path := filepath.Join(t.TempDir(), "db.sqlite")

	stubPasswords(t, "s3cret!", "other!!")
	_, err := run(t, "--db", path, "useradd", "alice")
	assert.ErrorIs(t, err, errPasswordMismatch)

	stubPasswords(t, "short", "short")
	_, err = run(t, "--db", path, "useradd", "alice")
	var verrs validation.Errors
	require.ErrorAs(t, err, &verrs)
	assert.Equal(t, "password", verrs[0].Field)

	stubPasswords(t, "s3cret!", "s3cret!")
	_, err = run(t, "--db", path, "useradd", "bad name")
	require.ErrorAs(t, err, &verrs)
	assert.Equal(t, "username", verrs[0].Field)

	stubPasswords(t, "s3cret!", "s3cret!", "s3cret!", "s3cret!")
	_, err = run(t, "--db", path, "useradd", "alice")
	require.NoError(t, err)
	_, err = run(t, "--db", path, "useradd", "alice")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "already exists")

	_, err = run(t, "--db", path, "useradd")
	assert.Error(t, err)
}

func seededDB(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "db.sqlite")
	ctx := context.Background()

	pool, err := dbx.OpenPool(ctx, path, dbx.PoolOptions{Size: 1, BusyTimeout: defaultBusyTimeout})
	require.NoError(t, err)
	defer pool.Close()

	rm := repomanager.NewSQLiteRepositoryManager()
	require.NoError(t, rm.RunMigrations(ctx, pool.Primary()))
	_, err = services.SeedUsers(ctx, pool, rm, services.DefaultUsers, nopLogger{})
	require.NoError(t, err)
	return path
}

func TestDump_AllTables(t *testing.T) {
	path := seededDB(t)

	out, err := run(t, "--db", path, "dump")
	require.NoError(t, err)

	assert.Contains(t, out, "USERS (3 rows)")
	assert.Contains(t, out, "admin")
	assert.Contains(t, out, "MOVIES (0 rows)")
	assert.Contains(t, out, "(empty)")
	assert.NotContains(t, out, "$2a$", "password hashes are masked")
}

func TestDump_SelectedTableAndLimit(t *testing.T) {
	path := seededDB(t)

	out, err := run(t, "--db", path, "dump", "users", "-n", "1")
	require.NoError(t, err)
	assert.Contains(t, out, "USERS (3 rows)")
	assert.Contains(t, out, "... and 2 more rows")
	assert.NotContains(t, out, "MOVIES")

	_, err = run(t, "--db", path, "dump", "users; DROP TABLE users")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown table")
}

func TestDump_MissingDatabase(t *testing.T) {
	path := filepath.Join(t.TempDir(), "missing.sqlite")

	_, err := run(t, "--db", path, "dump")
	require.Error(t, err)

	_, statErr := os.Stat(path)
	assert.True(t, os.IsNotExist(statErr), "dump must not create the database")
}

func TestCheckEnv(t *testing.T) {
	dir := t.TempDir()
	write := func(name, content string) string {
		p := filepath.Join(dir, name)
		require.NoError(t, os.WriteFile(p, []byte(content), 0o600))
		return p
	}
	noEnv := func(string) (string, bool) { return "", false }

	tests := []struct {
		name    string
		path    string
		lookup  func(string) (string, bool)
		wantErr bool
		want    []string
	}{
		{
			name:    "missing file",
			path:    filepath.Join(dir, "nope.env"),
			lookup:  noEnv,
			wantErr: true,
			want:    []string{"not found", "TMDB_API_KEY="},
		},
		{
			name:   "valid",
			path:   write("ok.env", "TMDB_API_KEY=abc\nJWT_SECRET=xyz\nPORT=4000\n"),
			lookup: noEnv,
			want:   []string{"[ok]   TMDB_API_KEY", "[ok]   JWT_SECRET", "PORT: 4000", "All settings look good"},
		},
		{
			name:    "placeholder key",
			path:    write("ph.env", "TMDB_API_KEY="+placeholderAPIKey+"\n"),
			lookup:  noEnv,
			wantErr: true,
			want:    []string{"[fail] TMDB_API_KEY", "[warn] JWT_SECRET", "PORT: 3001"},
		},
		{
			name: "process env wins",
			path: write("empty.env", "TMDB_API_KEY=\n"),
			lookup: func(k string) (string, bool) {
				if k == "TMDB_API_KEY" {
					return "from-env", true
				}
				return "", false
			},
			want: []string{"[ok]   TMDB_API_KEY"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var out bytes.Buffer
			err := checkEnv(&out, tt.path, tt.lookup)
			if tt.wantErr {
				assert.ErrorIs(t, err, errEnvInvalid)
			} else {
				assert.NoError(t, err)
			}
			for _, s := range tt.want {
				assert.Contains(t, out.String(), s)
			}
		})
	}
}

func TestGenSecret(t *testing.T) {
	out, err := run(t, "gen-secret")
	require.NoError(t, err)
	assert.Len(t, strings.TrimSpace(out), 64)

	out, err = run(t, "gen-secret", "--bytes", "16")
	require.NoError(t, err)
	assert.Len(t, strings.TrimSpace(out), 32)

	_, err = run(t, "gen-secret", "-b", "4")
	assert.Error(t, err)
}
