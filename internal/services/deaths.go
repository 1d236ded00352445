package services

import (
	"context"
	"database/sql"

	"github.com/dmitrijs2005/raidtracker/internal/logging"
	"github.com/dmitrijs2005/raidtracker/internal/models"
	"github.com/dmitrijs2005/raidtracker/internal/repositories/deaths"
)

// DeathService manages death event records.
type DeathService struct {
	db  *sql.DB
	log logging.Logger
}

// NewDeathService constructs a DeathService bound to the given database.
func NewDeathService(db *sql.DB, log logging.Logger) *DeathService {
	return &DeathService{db: db, log: log}
}

// ListForRun returns the run's death events sorted ascending by timestamp.
func (s *DeathService) ListForRun(ctx context.Context, runID int64) ([]models.DeathEvent, error) {
	return deaths.NewSQLiteRepository(s.db).ListForRun(ctx, runID)
}

// Get returns the death event, or (nil, nil) when it does not exist.
func (s *DeathService) Get(ctx context.Context, id int64) (*models.DeathEvent, error) {
	return deaths.NewSQLiteRepository(s.db).GetByID(ctx, id)
}

// Update overwrites the death event's location and notes.
func (s *DeathService) Update(ctx context.Context, d *models.DeathEvent) error {
	return deaths.NewSQLiteRepository(s.db).Update(ctx, d)
}

// Delete removes the death event. The owning run's deaths set is derived
// from the death_events collection, so the back-reference disappears with
// the row.
func (s *DeathService) Delete(ctx context.Context, id int64) error {
	return deaths.NewSQLiteRepository(s.db).Delete(ctx, id)
}
