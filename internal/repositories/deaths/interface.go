package deaths

import (
	"context"

	"github.com/dmitrijs2005/raidtracker/internal/models"
)

// Repository describes CRUD and query operations for DeathEvent records.
type Repository interface {
	// Create inserts a new death event and returns its assigned id.
	Create(ctx context.Context, d *models.DeathEvent) (int64, error)

	// ListForRun returns the run's death events sorted ascending by
	// timestamp.
	ListForRun(ctx context.Context, runID int64) ([]models.DeathEvent, error)

	// GetByID returns a death event by id, or (nil, nil) when it does not
	// exist.
	GetByID(ctx context.Context, id int64) (*models.DeathEvent, error)

	// Update overwrites a death event's location and notes.
	Update(ctx context.Context, d *models.DeathEvent) error

	// Delete removes a death event by id. The run's deaths set is derived
	// from this collection, so no back-reference cleanup is needed.
	Delete(ctx context.Context, id int64) error

	// DeleteForRun removes every death event belonging to the run.
	DeleteForRun(ctx context.Context, runID int64) error
}
