package wings

import (
	"context"
	"database/sql"
	"encoding/json"
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

func encodeBosses(bosses []string) (string, error) {
	if bosses == nil {
		bosses = []string{}
	}
	b, err := json.Marshal(bosses)
	if err != nil {
		return "", fmt.Errorf("failed to encode bosses: %w", err)
	}
	return string(b), nil
}

func scanWing(scan func(dest ...any) error) (*models.RaidWing, error) {
	w := &models.RaidWing{}
	var bosses string
	if err := scan(&w.ID, &w.Name, &w.Description, &bosses, &w.ImageURL); err != nil {
		return nil, err
	}
	if err := json.Unmarshal([]byte(bosses), &w.Bosses); err != nil {
		return nil, fmt.Errorf("failed to decode bosses: %w", err)
	}
	return w, nil
}

func (r *SQLiteRepository) Create(ctx context.Context, w *models.RaidWing) (int64, error) {
	bosses, err := encodeBosses(w.Bosses)
	if err != nil {
		return 0, err
	}

	query := `INSERT INTO raid_wings (name, description, bosses, image_url) VALUES (?, ?, ?, ?)`
	res, err := r.db.ExecContext(ctx, query, w.Name, w.Description, bosses, w.ImageURL)
	if err != nil {
		return 0, fmt.Errorf("failed to insert wing: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("failed to get inserted wing id: %w", err)
	}
	return id, nil
}

func (r *SQLiteRepository) GetAll(ctx context.Context) ([]models.RaidWing, error) {
	query := `SELECT id, name, description, bosses, image_url FROM raid_wings ORDER BY id`
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to select wings: %w", err)
	}
	defer rows.Close()

	var result []models.RaidWing
	for rows.Next() {
		w, err := scanWing(rows.Scan)
		if err != nil {
			return nil, err
		}
		result = append(result, *w)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

func (r *SQLiteRepository) GetByID(ctx context.Context, id int64) (*models.RaidWing, error) {
	query := `SELECT id, name, description, bosses, image_url FROM raid_wings WHERE id = ?`
	row := r.db.QueryRowContext(ctx, query, id)

	w, err := scanWing(row.Scan)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to select wing: %w", err)
	}
	return w, nil
}

func (r *SQLiteRepository) Update(ctx context.Context, w *models.RaidWing) error {
	bosses, err := encodeBosses(w.Bosses)
	if err != nil {
		return err
	}

	query := `UPDATE raid_wings SET name = ?, description = ?, bosses = ?, image_url = ? WHERE id = ?`
	res, err := r.db.ExecContext(ctx, query, w.Name, w.Description, bosses, w.ImageURL, w.ID)
	if err != nil {
		return fmt.Errorf("failed to update wing: %w", err)
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
	query := `DELETE FROM raid_wings WHERE id = ?`
	if _, err := r.db.ExecContext(ctx, query, id); err != nil {
		return fmt.Errorf("failed to delete wing: %w", err)
	}
	return nil
}

func (r *SQLiteRepository) Count(ctx context.Context) (int64, error) {
	var n int64
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM raid_wings`).Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count wings: %w", err)
	}
	return n, nil
}
