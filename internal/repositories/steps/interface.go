package steps

import (
	"context"

	"github.com/dmitrijs2005/raidtracker/internal/models"
)

// Repository describes CRUD and query operations for RaidStep records.
type Repository interface {
	// Create inserts a new step and returns its assigned id.
	Create(ctx context.Context, s *models.RaidStep) (int64, error)

	// ListForWing returns the wing's steps sorted ascending by position.
	ListForWing(ctx context.Context, wingID int64) ([]models.RaidStep, error)

	// GetByID returns a step by id, or (nil, nil) when it does not exist.
	GetByID(ctx context.Context, id int64) (*models.RaidStep, error)

	// Update overwrites a step's mutable fields by id.
	Update(ctx context.Context, s *models.RaidStep) error

	// UpdatePosition moves a step to a new position within its wing.
	UpdatePosition(ctx context.Context, id int64, position int) error

	// Delete removes a step by id.
	Delete(ctx context.Context, id int64) error

	// DeleteForWing removes every step belonging to the wing.
	DeleteForWing(ctx context.Context, wingID int64) error

	// MaxPosition returns the highest position currently used in the wing,
	// or -1 when the wing has no steps.
	MaxPosition(ctx context.Context, wingID int64) (int, error)
}
