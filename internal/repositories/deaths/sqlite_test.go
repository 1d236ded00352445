package deaths

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/dmitrijs2005/raidtracker/internal/models"
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
CREATE TABLE death_events (
  id           INTEGER PRIMARY KEY AUTOINCREMENT,
  run_id       INTEGER NOT NULL,
  timestamp_ms INTEGER NOT NULL,
  location     TEXT NOT NULL,
  notes        TEXT NOT NULL DEFAULT ''
);
`)
	require.NoError(t, err)

	return db
}

func seedDeath(t *testing.T, r *SQLiteRepository, runID int64, at time.Duration, location string) int64 {
	t.Helper()
	id, err := r.Create(context.Background(), &models.DeathEvent{
		RunID: runID, Timestamp: at, Location: location,
	})
	require.NoError(t, err)
	return id
}

func TestCreate_AndGetByID(t *testing.T) {
	db := setupDB(t)
	r := NewSQLiteRepository(db)
	ctx := context.Background()

	id, err := r.Create(ctx, &models.DeathEvent{
		RunID:     3,
		Timestamp: 45 * time.Second,
		Location:  "Vale Guardian",
		Notes:     "stood in the green",
	})
	require.NoError(t, err)

	got, err := r.GetByID(ctx, id)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, int64(3), got.RunID)
	assert.Equal(t, 45*time.Second, got.Timestamp)
	assert.Equal(t, "Vale Guardian", got.Location)
	assert.Equal(t, "stood in the green", got.Notes)

	missing, err := r.GetByID(ctx, 999)
	require.NoError(t, err)
	assert.Nil(t, missing)
}

func TestListForRun_OrderedByTimestamp(t *testing.T) {
	db := setupDB(t)
	r := NewSQLiteRepository(db)
	ctx := context.Background()

	seedDeath(t, r, 1, 90*time.Second, "second")
	seedDeath(t, r, 1, 30*time.Second, "first")
	seedDeath(t, r, 2, 10*time.Second, "other run")

	got, err := r.ListForRun(ctx, 1)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "first", got[0].Location)
	assert.Equal(t, "second", got[1].Location)
}

func TestUpdate_SuccessAndMissing(t *testing.T) {
	db := setupDB(t)
	r := NewSQLiteRepository(db)
	ctx := context.Background()

	id := seedDeath(t, r, 1, time.Minute, "old")

	require.NoError(t, r.Update(ctx, &models.DeathEvent{
		ID: id, Location: "new", Notes: "n",
	}))
	got, err := r.GetByID(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, "new", got.Location)
	assert.Equal(t, "n", got.Notes)
	// timestamp is immutable
	assert.Equal(t, time.Minute, got.Timestamp)

	require.Error(t, r.Update(ctx, &models.DeathEvent{ID: 999, Location: "x"}))
}

func TestDelete_AndDeleteForRun(t *testing.T) {
	db := setupDB(t)
	r := NewSQLiteRepository(db)
	ctx := context.Background()

	id := seedDeath(t, r, 1, time.Minute, "a")
	seedDeath(t, r, 1, 2*time.Minute, "b")
	keep := seedDeath(t, r, 2, time.Minute, "c")

	require.NoError(t, r.Delete(ctx, id))
	got, err := r.GetByID(ctx, id)
	require.NoError(t, err)
	assert.Nil(t, got)

	require.NoError(t, r.DeleteForRun(ctx, 1))
	remaining, err := r.ListForRun(ctx, 1)
	require.NoError(t, err)
	assert.Empty(t, remaining)

	still, err := r.GetByID(ctx, keep)
	require.NoError(t, err)
	require.NotNil(t, still)
}
