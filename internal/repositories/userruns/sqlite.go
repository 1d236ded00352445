package userruns

import (
	"context"
	"fmt"
	"time"

	"github.com/dmitrijs2005/raidtracker/internal/dbx"
)

// SQLiteRepository implements Repository using a DBTX (either *sql.DB or *sql.Tx).
type SQLiteRepository struct {
	db dbx.DBTX
}

// NewSQLiteRepository returns a new SQLiteRepository bound to the given DBTX.
func NewSQLiteRepository(db dbx.DBTX) *SQLiteRepository {
	return &SQLiteRepository{db: db}
}

func (r *SQLiteRepository) Exists(ctx context.Context, userID, runID int64) (bool, error) {
	var n int
	query := `SELECT COUNT(*) FROM user_runs WHERE user_id = ? AND run_id = ?`
	if err := r.db.QueryRowContext(ctx, query, userID, runID).Scan(&n); err != nil {
		return false, fmt.Errorf("failed to check user run link: %w", err)
	}
	return n > 0, nil
}

func (r *SQLiteRepository) Create(ctx context.Context, userID, runID int64, createdAt time.Time) error {
	query := `INSERT INTO user_runs (user_id, run_id, created_at_ms) VALUES (?, ?, ?)`
	if _, err := r.db.ExecContext(ctx, query, userID, runID, createdAt.UnixMilli()); err != nil {
		return fmt.Errorf("failed to insert user run link: %w", err)
	}
	return nil
}

func (r *SQLiteRepository) RunIDsForUser(ctx context.Context, userID int64) ([]int64, error) {
	query := `SELECT run_id FROM user_runs WHERE user_id = ? ORDER BY id`
	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to select user runs: %w", err)
	}
	defer rows.Close()

	var result []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		result = append(result, id)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}
