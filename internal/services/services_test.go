package services

import (
	"context"
	"database/sql"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrijs2005/raidtracker/internal/common"
	"github.com/dmitrijs2005/raidtracker/internal/logging"
	"github.com/dmitrijs2005/raidtracker/internal/models"
	"github.com/dmitrijs2005/raidtracker/internal/store"
)

// ---- helpers ----

func setupDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := store.Open(context.Background(), "file:"+t.Name()+"?mode=memory&cache=shared")
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return db
}

func testLogger() logging.Logger {
	return logging.NewSlogLogger(slog.New(slog.DiscardHandler))
}

var testStart = time.Date(2025, 6, 1, 20, 0, 0, 0, time.UTC)

func seedWing(t *testing.T, db *sql.DB) int64 {
	t.Helper()
	id, err := NewWingService(db, testLogger()).Add(context.Background(), &models.RaidWing{
		Name:   "Spirit Vale",
		Bosses: []string{"Vale Guardian", "Gorseval"},
	})
	require.NoError(t, err)
	return id
}

// ---- wings ----

func TestWingService_Delete_CascadesSteps(t *testing.T) {
	db := setupDB(t)
	ctx := context.Background()
	wingSvc := NewWingService(db, testLogger())
	stepSvc := NewStepService(db, testLogger())

	wingID := seedWing(t, db)
	otherID := seedWing(t, db)

	_, err := stepSvc.Add(ctx, wingID, "A", "")
	require.NoError(t, err)
	_, err = stepSvc.Add(ctx, wingID, "B", "")
	require.NoError(t, err)
	keep, err := stepSvc.Add(ctx, otherID, "C", "")
	require.NoError(t, err)

	require.NoError(t, wingSvc.Delete(ctx, wingID))

	gone, err := wingSvc.Get(ctx, wingID)
	require.NoError(t, err)
	assert.Nil(t, gone)

	steps, err := stepSvc.ListForWing(ctx, wingID)
	require.NoError(t, err)
	assert.Empty(t, steps)

	still, err := stepSvc.Get(ctx, keep)
	require.NoError(t, err)
	require.NotNil(t, still)
}

// ---- steps ----

func TestStepService_Add_AssignsNextPosition(t *testing.T) {
	db := setupDB(t)
	ctx := context.Background()
	stepSvc := NewStepService(db, testLogger())
	wingID := seedWing(t, db)

	first, err := stepSvc.Add(ctx, wingID, "First", "")
	require.NoError(t, err)
	second, err := stepSvc.Add(ctx, wingID, "Second", "")
	require.NoError(t, err)

	s1, err := stepSvc.Get(ctx, first)
	require.NoError(t, err)
	assert.Equal(t, 0, s1.Position)

	s2, err := stepSvc.Get(ctx, second)
	require.NoError(t, err)
	assert.Equal(t, 1, s2.Position)
}

func TestStepService_Reorder(t *testing.T) {
	db := setupDB(t)
	ctx := context.Background()
	stepSvc := NewStepService(db, testLogger())
	wingID := seedWing(t, db)

	a, err := stepSvc.Add(ctx, wingID, "A", "")
	require.NoError(t, err)
	b, err := stepSvc.Add(ctx, wingID, "B", "")
	require.NoError(t, err)
	c, err := stepSvc.Add(ctx, wingID, "C", "")
	require.NoError(t, err)

	require.NoError(t, stepSvc.Reorder(ctx, wingID, []int64{c, a, b}))

	got, err := stepSvc.ListForWing(ctx, wingID)
	require.NoError(t, err)
	require.Len(t, got, 3)
	assert.Equal(t, "C", got[0].Name)
	assert.Equal(t, "A", got[1].Name)
	assert.Equal(t, "B", got[2].Name)
}

// ---- runs ----

func TestRunService_Start_ClaimsSingleSlot(t *testing.T) {
	db := setupDB(t)
	ctx := context.Background()
	runSvc := NewRunService(db, testLogger())
	wingID := seedWing(t, db)

	id, err := runSvc.Start(ctx, wingID, []string{"alice"}, "1.0.0", testStart)
	require.NoError(t, err)

	_, err = runSvc.Start(ctx, wingID, nil, "", testStart.Add(time.Minute))
	assert.ErrorIs(t, err, common.ErrRunActive)

	// a paused run still holds the slot
	require.NoError(t, runSvc.Pause(ctx, id))
	_, err = runSvc.Start(ctx, wingID, nil, "", testStart.Add(time.Minute))
	assert.ErrorIs(t, err, common.ErrRunActive)

	// a finished run frees it
	require.NoError(t, runSvc.Complete(ctx, id, testStart.Add(10*time.Minute)))
	_, err = runSvc.Start(ctx, wingID, nil, "", testStart.Add(time.Hour))
	require.NoError(t, err)
}

func TestRunService_Complete_ComputesTotalTime(t *testing.T) {
	db := setupDB(t)
	ctx := context.Background()
	runSvc := NewRunService(db, testLogger())
	wingID := seedWing(t, db)

	id, err := runSvc.Start(ctx, wingID, nil, "", testStart)
	require.NoError(t, err)

	end := testStart.Add(17 * time.Minute)
	require.NoError(t, runSvc.Complete(ctx, id, end))

	run, err := runSvc.Get(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, models.StatusCompleted, run.Status)
	require.NotNil(t, run.EndTime)
	assert.Equal(t, end, *run.EndTime)
	require.NotNil(t, run.TotalTime)
	assert.Equal(t, 17*time.Minute, *run.TotalTime)
}

func TestRunService_Fail_MissingRun(t *testing.T) {
	db := setupDB(t)
	runSvc := NewRunService(db, testLogger())

	err := runSvc.Fail(context.Background(), 999, testStart)
	assert.ErrorIs(t, err, common.ErrNotFound)
}

func TestRunService_RecordStep_OffsetsFromStart(t *testing.T) {
	db := setupDB(t)
	ctx := context.Background()
	runSvc := NewRunService(db, testLogger())
	wingID := seedWing(t, db)

	id, err := runSvc.Start(ctx, wingID, nil, "", testStart)
	require.NoError(t, err)

	require.NoError(t, runSvc.RecordStep(ctx, id, 11, testStart.Add(90*time.Second)))

	run, err := runSvc.Get(ctx, id)
	require.NoError(t, err)
	require.Len(t, run.Steps, 1)
	assert.Equal(t, 90*time.Second, run.Steps[0].ReachedAt)

	// recording against a vanished run is a silent no-op
	require.NoError(t, runSvc.RecordStep(ctx, 999, 11, testStart))
}

func TestRunService_RecordDeath(t *testing.T) {
	db := setupDB(t)
	ctx := context.Background()
	runSvc := NewRunService(db, testLogger())
	deathSvc := NewDeathService(db, testLogger())
	wingID := seedWing(t, db)

	id, err := runSvc.Start(ctx, wingID, nil, "", testStart)
	require.NoError(t, err)

	deathID, err := runSvc.RecordDeath(ctx, id, "Gorseval", "updraft missed", testStart.Add(3*time.Minute))
	require.NoError(t, err)

	d, err := deathSvc.Get(ctx, deathID)
	require.NoError(t, err)
	require.NotNil(t, d)
	assert.Equal(t, id, d.RunID)
	assert.Equal(t, 3*time.Minute, d.Timestamp)
	assert.Equal(t, "Gorseval", d.Location)

	// the run's death list is derived from the death events
	run, err := runSvc.Get(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, []int64{deathID}, run.Deaths)

	_, err = runSvc.RecordDeath(ctx, 999, "x", "", testStart)
	assert.ErrorIs(t, err, common.ErrNotFound)
}

func TestRunService_Delete_RemovesEvents(t *testing.T) {
	db := setupDB(t)
	ctx := context.Background()
	runSvc := NewRunService(db, testLogger())
	deathSvc := NewDeathService(db, testLogger())
	wingID := seedWing(t, db)

	id, err := runSvc.Start(ctx, wingID, nil, "", testStart)
	require.NoError(t, err)
	require.NoError(t, runSvc.RecordStep(ctx, id, 11, testStart.Add(time.Minute)))
	_, err = runSvc.RecordDeath(ctx, id, "Boss", "", testStart.Add(2*time.Minute))
	require.NoError(t, err)

	require.NoError(t, runSvc.Delete(ctx, id))

	gone, err := runSvc.Get(ctx, id)
	require.NoError(t, err)
	assert.Nil(t, gone)

	events, err := deathSvc.ListForRun(ctx, id)
	require.NoError(t, err)
	assert.Empty(t, events)
}

// ---- deaths ----

func TestDeathService_UpdateAndDelete(t *testing.T) {
	db := setupDB(t)
	ctx := context.Background()
	runSvc := NewRunService(db, testLogger())
	deathSvc := NewDeathService(db, testLogger())
	wingID := seedWing(t, db)

	id, err := runSvc.Start(ctx, wingID, nil, "", testStart)
	require.NoError(t, err)
	deathID, err := runSvc.RecordDeath(ctx, id, "Old", "", testStart.Add(time.Minute))
	require.NoError(t, err)

	require.NoError(t, deathSvc.Update(ctx, &models.DeathEvent{
		ID: deathID, Location: "New", Notes: "corrected",
	}))
	d, err := deathSvc.Get(ctx, deathID)
	require.NoError(t, err)
	assert.Equal(t, "New", d.Location)

	require.NoError(t, deathSvc.Delete(ctx, deathID))

	run, err := runSvc.Get(ctx, id)
	require.NoError(t, err)
	assert.Empty(t, run.Deaths)
}
