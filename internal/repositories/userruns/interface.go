package userruns

import (
	"context"
	"time"
)

// Repository describes operations for the user-to-run link collection.
type Repository interface {
	// Exists reports whether a (userID, runID) link is already recorded.
	Exists(ctx context.Context, userID, runID int64) (bool, error)

	// Create inserts a new link. Uniqueness of the (userID, runID) pair is
	// enforced by the store; callers should check Exists first.
	Create(ctx context.Context, userID, runID int64, createdAt time.Time) error

	// RunIDsForUser returns the ids of all runs linked to the user.
	RunIDsForUser(ctx context.Context, userID int64) ([]int64, error)
}
