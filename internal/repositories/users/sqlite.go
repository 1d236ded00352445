package users

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

func scanUser(scan func(dest ...any) error) (*models.User, error) {
	u := &models.User{}
	var createdMs, updatedMs int64
	if err := scan(&u.ID, &u.Username, &u.Salt, &u.Verifier, &createdMs, &updatedMs); err != nil {
		return nil, err
	}
	u.CreatedAt = time.UnixMilli(createdMs).UTC()
	u.UpdatedAt = time.UnixMilli(updatedMs).UTC()
	return u, nil
}

func (r *SQLiteRepository) Create(ctx context.Context, u *models.User) (int64, error) {
	query := `INSERT INTO users (username, salt, verifier, created_at_ms, updated_at_ms)
		VALUES (?, ?, ?, ?, ?)`
	res, err := r.db.ExecContext(ctx, query,
		u.Username, u.Salt, u.Verifier, u.CreatedAt.UnixMilli(), u.UpdatedAt.UnixMilli())
	if err != nil {
		return 0, fmt.Errorf("failed to insert user: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("failed to get inserted user id: %w", err)
	}
	return id, nil
}

func (r *SQLiteRepository) GetByUsername(ctx context.Context, username string) (*models.User, error) {
	query := `SELECT id, username, salt, verifier, created_at_ms, updated_at_ms
		FROM users WHERE username = ?`
	row := r.db.QueryRowContext(ctx, query, username)

	u, err := scanUser(row.Scan)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to select user: %w", err)
	}
	return u, nil
}

func (r *SQLiteRepository) GetByID(ctx context.Context, id int64) (*models.User, error) {
	query := `SELECT id, username, salt, verifier, created_at_ms, updated_at_ms
		FROM users WHERE id = ?`
	row := r.db.QueryRowContext(ctx, query, id)

	u, err := scanUser(row.Scan)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to select user: %w", err)
	}
	return u, nil
}

func (r *SQLiteRepository) Update(ctx context.Context, u *models.User) error {
	query := `UPDATE users SET username = ?, salt = ?, verifier = ?, updated_at_ms = ? WHERE id = ?`
	res, err := r.db.ExecContext(ctx, query,
		u.Username, u.Salt, u.Verifier, u.UpdatedAt.UnixMilli(), u.ID)
	if err != nil {
		return fmt.Errorf("failed to update user: %w", err)
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
