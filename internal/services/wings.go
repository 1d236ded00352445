package services

import (
	"context"
	"database/sql"

	"github.com/dmitrijs2005/raidtracker/internal/dbx"
	"github.com/dmitrijs2005/raidtracker/internal/logging"
	"github.com/dmitrijs2005/raidtracker/internal/models"
	"github.com/dmitrijs2005/raidtracker/internal/repositories/steps"
	"github.com/dmitrijs2005/raidtracker/internal/repositories/wings"
)

// WingService manages the raid wing reference data.
type WingService struct {
	db  *sql.DB
	log logging.Logger
}

// NewWingService constructs a WingService bound to the given database.
func NewWingService(db *sql.DB, log logging.Logger) *WingService {
	return &WingService{db: db, log: log}
}

func (s *WingService) List(ctx context.Context) ([]models.RaidWing, error) {
	return wings.NewSQLiteRepository(s.db).GetAll(ctx)
}

// Get returns the wing, or (nil, nil) when it does not exist.
func (s *WingService) Get(ctx context.Context, id int64) (*models.RaidWing, error) {
	return wings.NewSQLiteRepository(s.db).GetByID(ctx, id)
}

func (s *WingService) Add(ctx context.Context, w *models.RaidWing) (int64, error) {
	return wings.NewSQLiteRepository(s.db).Create(ctx, w)
}

func (s *WingService) Update(ctx context.Context, w *models.RaidWing) error {
	return wings.NewSQLiteRepository(s.db).Update(ctx, w)
}

// Delete removes the wing and all its steps in one transaction, steps first.
// Historical runs referencing the wing are intentionally left in place.
func (s *WingService) Delete(ctx context.Context, id int64) error {
	err := dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		if err := steps.NewSQLiteRepository(tx).DeleteForWing(ctx, id); err != nil {
			return err
		}
		return wings.NewSQLiteRepository(tx).Delete(ctx, id)
	})
	if err != nil {
		s.log.Error(ctx, "failed to delete wing", "wing_id", id, "error", err)
		return err
	}
	return nil
}
