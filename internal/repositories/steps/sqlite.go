package steps

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

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

func (r *SQLiteRepository) Create(ctx context.Context, s *models.RaidStep) (int64, error) {
	query := `INSERT INTO raid_steps (name, description, position, raid_wing_id) VALUES (?, ?, ?, ?)`
	res, err := r.db.ExecContext(ctx, query, s.Name, s.Description, s.Position, s.RaidWingID)
	if err != nil {
		return 0, fmt.Errorf("failed to insert step: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("failed to get inserted step id: %w", err)
	}
	return id, nil
}

func (r *SQLiteRepository) ListForWing(ctx context.Context, wingID int64) ([]models.RaidStep, error) {
	query := `SELECT id, name, description, position, raid_wing_id
		FROM raid_steps WHERE raid_wing_id = ? ORDER BY position`
	rows, err := r.db.QueryContext(ctx, query, wingID)
	if err != nil {
		return nil, fmt.Errorf("failed to select steps: %w", err)
	}
	defer rows.Close()

	var result []models.RaidStep
	for rows.Next() {
		var s models.RaidStep
		if err := rows.Scan(&s.ID, &s.Name, &s.Description, &s.Position, &s.RaidWingID); err != nil {
			return nil, err
		}
		result = append(result, s)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

func (r *SQLiteRepository) GetByID(ctx context.Context, id int64) (*models.RaidStep, error) {
	query := `SELECT id, name, description, position, raid_wing_id FROM raid_steps WHERE id = ?`
	row := r.db.QueryRowContext(ctx, query, id)

	s := &models.RaidStep{}
	if err := row.Scan(&s.ID, &s.Name, &s.Description, &s.Position, &s.RaidWingID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to select step: %w", err)
	}
	return s, nil
}

func (r *SQLiteRepository) Update(ctx context.Context, s *models.RaidStep) error {
	query := `UPDATE raid_steps SET name = ?, description = ?, position = ? WHERE id = ?`
	res, err := r.db.ExecContext(ctx, query, s.Name, s.Description, s.Position, s.ID)
	if err != nil {
		return fmt.Errorf("failed to update step: %w", err)
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

func (r *SQLiteRepository) UpdatePosition(ctx context.Context, id int64, position int) error {
	query := `UPDATE raid_steps SET position = ? WHERE id = ?`
	if _, err := r.db.ExecContext(ctx, query, position, id); err != nil {
		return fmt.Errorf("failed to update step position: %w", err)
	}
	return nil
}

func (r *SQLiteRepository) Delete(ctx context.Context, id int64) error {
	query := `DELETE FROM raid_steps WHERE id = ?`
	if _, err := r.db.ExecContext(ctx, query, id); err != nil {
		return fmt.Errorf("failed to delete step: %w", err)
	}
	return nil
}

func (r *SQLiteRepository) DeleteForWing(ctx context.Context, wingID int64) error {
	query := `DELETE FROM raid_steps WHERE raid_wing_id = ?`
	if _, err := r.db.ExecContext(ctx, query, wingID); err != nil {
		return fmt.Errorf("failed to delete steps for wing: %w", err)
	}
	return nil
}

func (r *SQLiteRepository) MaxPosition(ctx context.Context, wingID int64) (int, error) {
	var max sql.NullInt64
	query := `SELECT MAX(position) FROM raid_steps WHERE raid_wing_id = ?`
	if err := r.db.QueryRowContext(ctx, query, wingID).Scan(&max); err != nil {
		return 0, fmt.Errorf("failed to select max step position: %w", err)
	}
	if !max.Valid {
		return -1, nil
	}
	return int(max.Int64), nil
}
