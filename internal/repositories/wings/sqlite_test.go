package wings

import (
	"context"
	"database/sql"
	"testing"

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
CREATE TABLE raid_wings (
  id          INTEGER PRIMARY KEY AUTOINCREMENT,
  name        TEXT NOT NULL,
  description TEXT NOT NULL DEFAULT '',
  bosses      TEXT NOT NULL DEFAULT '[]',
  image_url   TEXT NOT NULL DEFAULT ''
);
`)
	require.NoError(t, err)

	return db
}

func TestCreate_AndGetByID(t *testing.T) {
	db := setupDB(t)
	r := NewSQLiteRepository(db)
	ctx := context.Background()

	id, err := r.Create(ctx, &models.RaidWing{
		Name:        "Spirit Vale",
		Description: "The first wing",
		Bosses:      []string{"Vale Guardian", "Gorseval", "Sabetha"},
		ImageURL:    "https://example.com/w1.jpg",
	})
	require.NoError(t, err)
	require.NotZero(t, id)

	got, err := r.GetByID(ctx, id)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "Spirit Vale", got.Name)
	assert.Equal(t, []string{"Vale Guardian", "Gorseval", "Sabetha"}, got.Bosses)
	assert.Equal(t, "https://example.com/w1.jpg", got.ImageURL)
}

func TestGetByID_NotFound(t *testing.T) {
	db := setupDB(t)
	r := NewSQLiteRepository(db)

	got, err := r.GetByID(context.Background(), 42)
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestCreate_NilBossesStoredAsEmptyList(t *testing.T) {
	db := setupDB(t)
	r := NewSQLiteRepository(db)
	ctx := context.Background()

	id, err := r.Create(ctx, &models.RaidWing{Name: "Empty"})
	require.NoError(t, err)

	var bosses string
	err = db.QueryRow(`SELECT bosses FROM raid_wings WHERE id=?`, id).Scan(&bosses)
	require.NoError(t, err)
	assert.Equal(t, "[]", bosses)
}

func TestGetAll_OrderedByID(t *testing.T) {
	db := setupDB(t)
	r := NewSQLiteRepository(db)
	ctx := context.Background()

	for _, name := range []string{"W1", "W2", "W3"} {
		_, err := r.Create(ctx, &models.RaidWing{Name: name, Bosses: []string{"b"}})
		require.NoError(t, err)
	}

	got, err := r.GetAll(ctx)
	require.NoError(t, err)
	require.Len(t, got, 3)
	assert.Equal(t, "W1", got[0].Name)
	assert.Equal(t, "W3", got[2].Name)
}

func TestUpdate_SuccessAndMissing(t *testing.T) {
	db := setupDB(t)
	r := NewSQLiteRepository(db)
	ctx := context.Background()

	id, err := r.Create(ctx, &models.RaidWing{Name: "Old", Bosses: []string{"a"}})
	require.NoError(t, err)

	require.NoError(t, r.Update(ctx, &models.RaidWing{
		ID: id, Name: "New", Bosses: []string{"a", "b"},
	}))

	got, err := r.GetByID(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, "New", got.Name)
	assert.Equal(t, []string{"a", "b"}, got.Bosses)

	err = r.Update(ctx, &models.RaidWing{ID: 999, Name: "X"})
	require.Error(t, err)
}

func TestDelete_And_Count(t *testing.T) {
	db := setupDB(t)
	r := NewSQLiteRepository(db)
	ctx := context.Background()

	id, err := r.Create(ctx, &models.RaidWing{Name: "W", Bosses: []string{"b"}})
	require.NoError(t, err)

	n, err := r.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	require.NoError(t, r.Delete(ctx, id))

	n, err = r.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(0), n)

	// deleting an absent row is not an error
	require.NoError(t, r.Delete(ctx, id))
}
