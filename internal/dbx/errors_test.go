package dbx

import (
	"database/sql"
	"errors"
	"fmt"
	"testing"

	"github.com/dmitrijs2005/moviesearch/internal/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIsContention(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"nil", nil, false},
		{"sentinel", fmt.Errorf("insert: %w", common.ErrStorageContention), true},
		{"database locked message", errors.New("database is locked (5) (SQLITE_BUSY)"), true},
		{"table locked message", errors.New("database table is locked"), true},
		{"other error", errors.New("no such table: movies"), false},
		{"unique violation", errors.New("UNIQUE constraint failed: movies.tmdb_id"), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, IsContention(tt.err))
		})
	}
}

func TestIsUniqueViolation_Message(t *testing.T) {
	assert.False(t, IsUniqueViolation(nil))
	assert.True(t, IsUniqueViolation(fmt.Errorf("db error: %w", errors.New("UNIQUE constraint failed: token_blacklist.token_hash"))))
	assert.False(t, IsUniqueViolation(errors.New("database is locked")))
}

func TestIsUniqueViolation_RealDriverError(t *testing.T) {
	db, err := sql.Open(DriverName, ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	_, err = db.Exec(`CREATE TABLE u (k TEXT UNIQUE NOT NULL)`)
	require.NoError(t, err)
	_, err = db.Exec(`INSERT INTO u(k) VALUES ('x')`)
	require.NoError(t, err)

	_, err = db.Exec(`INSERT INTO u(k) VALUES ('x')`)
	require.Error(t, err)
	assert.True(t, IsUniqueViolation(err))
	assert.False(t, IsContention(err))
}
