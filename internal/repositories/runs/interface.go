package runs

import (
	"context"
	"time"

	"github.com/dmitrijs2005/raidtracker/internal/models"
)

// Repository describes CRUD and query operations for RaidRun records.
//
// List methods return bare run rows (Steps and Deaths left nil) to keep
// history queries cheap; GetByID and GetActive materialize the full run,
// including its recorded step sequence and death-event ids.
type Repository interface {
	// Create inserts a new run and returns its assigned id.
	Create(ctx context.Context, run *models.RaidRun) (int64, error)

	// GetByID returns a fully materialized run, or (nil, nil) when it does
	// not exist.
	GetByID(ctx context.Context, id int64) (*models.RaidRun, error)

	// GetActive returns the first run with a non-terminal status
	// (in-progress or paused), fully materialized, or (nil, nil) when no
	// run is active.
	GetActive(ctx context.Context) (*models.RaidRun, error)

	// ListForWing returns the wing's runs in reverse chronological order.
	ListForWing(ctx context.Context, wingID int64) ([]models.RaidRun, error)

	// ListByPatch returns runs recorded on the given patch, most recent
	// first.
	ListByPatch(ctx context.Context, patch string) ([]models.RaidRun, error)

	// Patches returns the distinct non-empty patch values across all runs,
	// sorted descending.
	Patches(ctx context.Context) ([]string, error)

	// UpdateStatus sets a run's status.
	UpdateStatus(ctx context.Context, id int64, status models.RunStatus) error

	// Finish sets a terminal status together with the end time and total
	// duration.
	Finish(ctx context.Context, id int64, status models.RunStatus, endTime time.Time, totalTime time.Duration) error

	// AppendStep records a reached milestone. Duplicate step ids produce
	// separate entries.
	AppendStep(ctx context.Context, runID, stepID int64, reachedAt time.Duration) error

	// UpdateNotes overwrites a run's notes.
	UpdateNotes(ctx context.Context, id int64, notes string) error

	// UpdatePatch overwrites a run's patch label.
	UpdatePatch(ctx context.Context, id int64, patch string) error

	// Delete removes the run row and its recorded step sequence. Cascading
	// the run's death events is the service layer's responsibility.
	Delete(ctx context.Context, id int64) error
}
