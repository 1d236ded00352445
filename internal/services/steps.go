package services

import (
	"context"
	"database/sql"

	"github.com/dmitrijs2005/raidtracker/internal/dbx"
	"github.com/dmitrijs2005/raidtracker/internal/logging"
	"github.com/dmitrijs2005/raidtracker/internal/models"
	"github.com/dmitrijs2005/raidtracker/internal/repositories/steps"
)

// StepService manages the ordered milestone definitions within wings.
type StepService struct {
	db  *sql.DB
	log logging.Logger
}

// NewStepService constructs a StepService bound to the given database.
func NewStepService(db *sql.DB, log logging.Logger) *StepService {
	return &StepService{db: db, log: log}
}

// ListForWing returns the wing's steps sorted ascending by position.
func (s *StepService) ListForWing(ctx context.Context, wingID int64) ([]models.RaidStep, error) {
	return steps.NewSQLiteRepository(s.db).ListForWing(ctx, wingID)
}

// Get returns the step, or (nil, nil) when it does not exist.
func (s *StepService) Get(ctx context.Context, id int64) (*models.RaidStep, error) {
	return steps.NewSQLiteRepository(s.db).GetByID(ctx, id)
}

// Add appends a new step at the next free position in the wing. The position
// lookup and the insert run in one transaction so concurrent adds cannot
// claim the same slot.
func (s *StepService) Add(ctx context.Context, wingID int64, name, description string) (int64, error) {
	var id int64
	err := dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		repo := steps.NewSQLiteRepository(tx)
		max, err := repo.MaxPosition(ctx, wingID)
		if err != nil {
			return err
		}
		id, err = repo.Create(ctx, &models.RaidStep{
			Name:        name,
			Description: description,
			Position:    max + 1,
			RaidWingID:  wingID,
		})
		return err
	})
	if err != nil {
		s.log.Error(ctx, "failed to add step", "wing_id", wingID, "error", err)
		return 0, err
	}
	return id, nil
}

func (s *StepService) Update(ctx context.Context, step *models.RaidStep) error {
	return steps.NewSQLiteRepository(s.db).Update(ctx, step)
}

func (s *StepService) Delete(ctx context.Context, id int64) error {
	return steps.NewSQLiteRepository(s.db).Delete(ctx, id)
}

// Reorder rewrites the positions of the wing's steps to match orderedIDs,
// as one atomic unit. Steps absent from orderedIDs keep their position.
func (s *StepService) Reorder(ctx context.Context, wingID int64, orderedIDs []int64) error {
	position := make(map[int64]int, len(orderedIDs))
	for i, id := range orderedIDs {
		position[id] = i
	}

	err := dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		repo := steps.NewSQLiteRepository(tx)
		current, err := repo.ListForWing(ctx, wingID)
		if err != nil {
			return err
		}
		for _, step := range current {
			p, ok := position[step.ID]
			if !ok || p == step.Position {
				continue
			}
			if err := repo.UpdatePosition(ctx, step.ID, p); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		s.log.Error(ctx, "failed to reorder steps", "wing_id", wingID, "error", err)
		return err
	}
	return nil
}
