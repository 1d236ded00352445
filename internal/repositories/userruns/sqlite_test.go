package userruns

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	_ "modernc.org/sqlite"
)

func setupDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := sql.Open("sqlite", ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	_, err = db.Exec(`
CREATE TABLE user_runs (
  id            INTEGER PRIMARY KEY AUTOINCREMENT,
  user_id       INTEGER NOT NULL,
  run_id        INTEGER NOT NULL,
  created_at_ms INTEGER NOT NULL
);
CREATE UNIQUE INDEX idx_user_runs_user_run ON user_runs(user_id, run_id);
`)
	require.NoError(t, err)

	return db
}

func TestCreate_And_Exists(t *testing.T) {
	db := setupDB(t)
	r := NewSQLiteRepository(db)
	ctx := context.Background()

	ok, err := r.Exists(ctx, 1, 10)
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, r.Create(ctx, 1, 10, time.Now()))

	ok, err = r.Exists(ctx, 1, 10)
	require.NoError(t, err)
	assert.True(t, ok)

	// the (user, run) pair is unique
	require.Error(t, r.Create(ctx, 1, 10, time.Now()))
}

func TestRunIDsForUser_InsertionOrder(t *testing.T) {
	db := setupDB(t)
	r := NewSQLiteRepository(db)
	ctx := context.Background()

	now := time.Now()
	require.NoError(t, r.Create(ctx, 1, 30, now))
	require.NoError(t, r.Create(ctx, 1, 10, now))
	require.NoError(t, r.Create(ctx, 2, 20, now))

	got, err := r.RunIDsForUser(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, []int64{30, 10}, got)

	empty, err := r.RunIDsForUser(ctx, 99)
	require.NoError(t, err)
	assert.Empty(t, empty)
}
