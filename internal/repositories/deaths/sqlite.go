package deaths

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/dmitrijs2005/raidtracker/internal/dbx"
	"github.com/dmitrijs2005/raidtracker/internal/models"
)

// SQLiteRepository implements Repository using a DBTX (either *sql.DB or *sql.Tx).
type SQLiteRepository struct {
	db dbx.DBTX
}

// NewSQLiteRepository returns a new SQLiteRepository bound to the given DBTX.
func NewSQLiteRepository(db dbx.DBTX) *SQLiteRepository {
	return &SQLiteRepository{db: db}
}

func (r *SQLiteRepository) Create(ctx context.Context, d *models.DeathEvent) (int64, error) {
	query := `INSERT INTO death_events (run_id, timestamp_ms, location, notes) VALUES (?, ?, ?, ?)`
	res, err := r.db.ExecContext(ctx, query, d.RunID, d.Timestamp.Milliseconds(), d.Location, d.Notes)
	if err != nil {
		return 0, fmt.Errorf("failed to insert death event: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("failed to get inserted death event id: %w", err)
	}
	return id, nil
}

func (r *SQLiteRepository) ListForRun(ctx context.Context, runID int64) ([]models.DeathEvent, error) {
	query := `SELECT id, run_id, timestamp_ms, location, notes
		FROM death_events WHERE run_id = ? ORDER BY timestamp_ms`
	rows, err := r.db.QueryContext(ctx, query, runID)
	if err != nil {
		return nil, fmt.Errorf("failed to select death events: %w", err)
	}
	defer rows.Close()

	var result []models.DeathEvent
	for rows.Next() {
		var d models.DeathEvent
		var ms int64
		if err := rows.Scan(&d.ID, &d.RunID, &ms, &d.Location, &d.Notes); err != nil {
			return nil, err
		}
		d.Timestamp = time.Duration(ms) * time.Millisecond
		result = append(result, d)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

func (r *SQLiteRepository) GetByID(ctx context.Context, id int64) (*models.DeathEvent, error) {
	query := `SELECT id, run_id, timestamp_ms, location, notes FROM death_events WHERE id = ?`
	row := r.db.QueryRowContext(ctx, query, id)

	d := &models.DeathEvent{}
	var ms int64
	if err := row.Scan(&d.ID, &d.RunID, &ms, &d.Location, &d.Notes); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to select death event: %w", err)
	}
	d.Timestamp = time.Duration(ms) * time.Millisecond
	return d, nil
}

func (r *SQLiteRepository) Update(ctx context.Context, d *models.DeathEvent) error {
	query := `UPDATE death_events SET location = ?, notes = ? WHERE id = ?`
	res, err := r.db.ExecContext(ctx, query, d.Location, d.Notes, d.ID)
	if err != nil {
		return fmt.Errorf("failed to update death event: %w", err)
	}
	ra, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if ra != 1 {
		return fmt.Errorf("wrong rows affected count: %d", ra)
	}
	return nil
}

func (r *SQLiteRepository) Delete(ctx context.Context, id int64) error {
	query := `DELETE FROM death_events WHERE id = ?`
	if _, err := r.db.ExecContext(ctx, query, id); err != nil {
		return fmt.Errorf("failed to delete death event: %w", err)
	}
	return nil
}

func (r *SQLiteRepository) DeleteForRun(ctx context.Context, runID int64) error {
	query := `DELETE FROM death_events WHERE run_id = ?`
	if _, err := r.db.ExecContext(ctx, query, runID); err != nil {
		return fmt.Errorf("failed to delete death events for run: %w", err)
	}
	return nil
}
