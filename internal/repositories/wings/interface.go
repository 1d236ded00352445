package wings

import (
	"context"

	"github.com/dmitrijs2005/raidtracker/internal/models"
)

// Repository describes CRUD and query operations for RaidWing records.
// Implementations are typically backed by the local SQLite database.
type Repository interface {
	// Create inserts a new wing and returns its assigned id.
	Create(ctx context.Context, w *models.RaidWing) (int64, error)

	// GetAll returns every wing, ordered by id.
	GetAll(ctx context.Context) ([]models.RaidWing, error)

	// GetByID returns a wing by id, or (nil, nil) when it does not exist.
	GetByID(ctx context.Context, id int64) (*models.RaidWing, error)

	// Update overwrites a wing's mutable fields by id.
	Update(ctx context.Context, w *models.RaidWing) error

	// Delete removes the wing row only. Cascading the wing's steps is the
	// service layer's responsibility.
	Delete(ctx context.Context, id int64) error

	// Count returns the number of wings, used to decide whether the
	// default data seed should run.
	Count(ctx context.Context) (int64, error)
}
