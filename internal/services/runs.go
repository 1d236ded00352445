package services

import (
	"context"
	"database/sql"
	"time"

	"github.com/dmitrijs2005/raidtracker/internal/common"
	"github.com/dmitrijs2005/raidtracker/internal/dbx"
	"github.com/dmitrijs2005/raidtracker/internal/logging"
	"github.com/dmitrijs2005/raidtracker/internal/models"
	"github.com/dmitrijs2005/raidtracker/internal/repositories/deaths"
	"github.com/dmitrijs2005/raidtracker/internal/repositories/runs"
)

// RunService manages raid run records: lifecycle transitions, event
// recording, and history queries. Run-relative offsets are computed here
// against the persisted start time; callers supply the current instant so
// the clock stays injectable.
type RunService struct {
	db  *sql.DB
	log logging.Logger
}

// NewRunService constructs a RunService bound to the given database.
func NewRunService(db *sql.DB, log logging.Logger) *RunService {
	return &RunService{db: db, log: log}
}

// Start claims the single active run slot and persists a new in-progress
// run. The active-run check and the insert run in one transaction, so two
// concurrent starts cannot both succeed; the loser gets common.ErrRunActive
// and the existing run is left untouched.
func (s *RunService) Start(ctx context.Context, wingID int64, teamMembers []string, patch string, startTime time.Time) (int64, error) {
	var id int64
	err := dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		repo := runs.NewSQLiteRepository(tx)
		active, err := repo.GetActive(ctx)
		if err != nil {
			return err
		}
		if active != nil {
			return common.ErrRunActive
		}
		id, err = repo.Create(ctx, &models.RaidRun{
			RaidWingID:  wingID,
			StartTime:   startTime,
			Status:      models.StatusInProgress,
			TeamMembers: teamMembers,
			Patch:       patch,
		})
		return err
	})
	if err != nil {
		return 0, err
	}
	s.log.Info(ctx, "run started", "run_id", id, "wing_id", wingID)
	return id, nil
}

// Get returns a fully materialized run, or (nil, nil) when it does not exist.
func (s *RunService) Get(ctx context.Context, id int64) (*models.RaidRun, error) {
	return runs.NewSQLiteRepository(s.db).GetByID(ctx, id)
}

// GetActive returns the first run with a non-terminal status, or (nil, nil)
// when no run is active.
func (s *RunService) GetActive(ctx context.Context) (*models.RaidRun, error) {
	return runs.NewSQLiteRepository(s.db).GetActive(ctx)
}

// ListForWing returns the wing's runs in reverse chronological order.
func (s *RunService) ListForWing(ctx context.Context, wingID int64) ([]models.RaidRun, error) {
	return runs.NewSQLiteRepository(s.db).ListForWing(ctx, wingID)
}

// ListByPatch returns runs recorded on the given patch, most recent first.
func (s *RunService) ListByPatch(ctx context.Context, patch string) ([]models.RaidRun, error) {
	return runs.NewSQLiteRepository(s.db).ListByPatch(ctx, patch)
}

// Patches returns the distinct non-empty patch values, sorted descending.
func (s *RunService) Patches(ctx context.Context) ([]string, error) {
	return runs.NewSQLiteRepository(s.db).Patches(ctx)
}

// Pause marks the run paused. The caller is responsible for only pausing
// in-progress runs; terminal runs are never touched.
func (s *RunService) Pause(ctx context.Context, id int64) error {
	return runs.NewSQLiteRepository(s.db).UpdateStatus(ctx, id, models.StatusPaused)
}

// Resume marks the run in progress again.
func (s *RunService) Resume(ctx context.Context, id int64) error {
	return runs.NewSQLiteRepository(s.db).UpdateStatus(ctx, id, models.StatusInProgress)
}

func (s *RunService) finish(ctx context.Context, id int64, status models.RunStatus, now time.Time) error {
	repo := runs.NewSQLiteRepository(s.db)
	run, err := repo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if run == nil {
		return common.ErrNotFound
	}
	totalTime := now.Sub(run.StartTime)
	if err := repo.Finish(ctx, id, status, now, totalTime); err != nil {
		return err
	}
	s.log.Info(ctx, "run finished", "run_id", id, "status", status, "total_time", totalTime)
	return nil
}

// Complete finalizes the run as completed, setting the end time and total
// duration. Completed is a terminal status.
func (s *RunService) Complete(ctx context.Context, id int64, now time.Time) error {
	return s.finish(ctx, id, models.StatusCompleted, now)
}

// Fail finalizes the run as failed, setting the end time and total duration.
// Failed is a terminal status.
func (s *RunService) Fail(ctx context.Context, id int64, now time.Time) error {
	return s.finish(ctx, id, models.StatusFailed, now)
}

// RecordStep appends a reached milestone with an offset relative to the
// run's start. Recording against a vanished run is a silent no-op. Duplicate
// step ids are preserved as separate entries.
func (s *RunService) RecordStep(ctx context.Context, runID, stepID int64, now time.Time) error {
	repo := runs.NewSQLiteRepository(s.db)
	run, err := repo.GetByID(ctx, runID)
	if err != nil {
		return err
	}
	if run == nil {
		return nil
	}
	return repo.AppendStep(ctx, runID, stepID, now.Sub(run.StartTime))
}

// RecordDeath creates a death event with an offset relative to the run's
// start and returns its id. Recording against a vanished run returns
// common.ErrNotFound.
func (s *RunService) RecordDeath(ctx context.Context, runID int64, location, notes string, now time.Time) (int64, error) {
	run, err := runs.NewSQLiteRepository(s.db).GetByID(ctx, runID)
	if err != nil {
		return 0, err
	}
	if run == nil {
		return 0, common.ErrNotFound
	}
	return deaths.NewSQLiteRepository(s.db).Create(ctx, &models.DeathEvent{
		RunID:     runID,
		Timestamp: now.Sub(run.StartTime),
		Location:  location,
		Notes:     notes,
	})
}

// UpdateNotes overwrites the run's notes.
func (s *RunService) UpdateNotes(ctx context.Context, id int64, notes string) error {
	return runs.NewSQLiteRepository(s.db).UpdateNotes(ctx, id, notes)
}

// UpdatePatch overwrites the run's patch label.
func (s *RunService) UpdatePatch(ctx context.Context, id int64, patch string) error {
	return runs.NewSQLiteRepository(s.db).UpdatePatch(ctx, id, patch)
}

// Delete removes the run, its recorded step sequence, and its death events
// in one transaction, death events first.
func (s *RunService) Delete(ctx context.Context, id int64) error {
	err := dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		if err := deaths.NewSQLiteRepository(tx).DeleteForRun(ctx, id); err != nil {
			return err
		}
		return runs.NewSQLiteRepository(tx).Delete(ctx, id)
	})
	if err != nil {
		s.log.Error(ctx, "failed to delete run", "run_id", id, "error", err)
		return err
	}
	return nil
}
