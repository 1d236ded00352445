package users

import (
	"context"

	"github.com/dmitrijs2005/raidtracker/internal/models"
)

// Repository describes CRUD and query operations for User records.
type Repository interface {
	// Create inserts a new user and returns its assigned id. Usernames are
	// unique; inserting a duplicate fails at the store level.
	Create(ctx context.Context, u *models.User) (int64, error)

	// GetByUsername returns the user with the exact (case-sensitive)
	// username, or (nil, nil) when no such user exists.
	GetByUsername(ctx context.Context, username string) (*models.User, error)

	// GetByID returns a user by id, or (nil, nil) when it does not exist.
	GetByID(ctx context.Context, id int64) (*models.User, error)

	// Update overwrites the user's username, credentials, and updated-at
	// timestamp.
	Update(ctx context.Context, u *models.User) error
}
