package runs

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/dmitrijs2005/raidtracker/internal/dbx"
	"github.com/dmitrijs2005/raidtracker/internal/models"
)

const runColumns = `id, raid_wing_id, start_time_ms, end_time_ms, total_time_ms, status, notes, team_members, patch`

// SQLiteRepository implements Repository using a DBTX (either *sql.DB or *sql.Tx).
type SQLiteRepository struct {
	db dbx.DBTX
}

// NewSQLiteRepository returns a new SQLiteRepository bound to the given DBTX.
func NewSQLiteRepository(db dbx.DBTX) *SQLiteRepository {
	return &SQLiteRepository{db: db}
}

func scanRun(scan func(dest ...any) error) (*models.RaidRun, error) {
	run := &models.RaidRun{}
	var startMs int64
	var endMs, totalMs sql.NullInt64
	var team string

	err := scan(&run.ID, &run.RaidWingID, &startMs, &endMs, &totalMs,
		&run.Status, &run.Notes, &team, &run.Patch)
	if err != nil {
		return nil, err
	}

	run.StartTime = time.UnixMilli(startMs).UTC()
	if endMs.Valid {
		t := time.UnixMilli(endMs.Int64).UTC()
		run.EndTime = &t
	}
	if totalMs.Valid {
		d := time.Duration(totalMs.Int64) * time.Millisecond
		run.TotalTime = &d
	}
	if err := json.Unmarshal([]byte(team), &run.TeamMembers); err != nil {
		return nil, fmt.Errorf("failed to decode team members: %w", err)
	}
	return run, nil
}

func (r *SQLiteRepository) Create(ctx context.Context, run *models.RaidRun) (int64, error) {
	team := run.TeamMembers
	if team == nil {
		team = []string{}
	}
	teamJSON, err := json.Marshal(team)
	if err != nil {
		return 0, fmt.Errorf("failed to encode team members: %w", err)
	}

	query := `INSERT INTO raid_runs (raid_wing_id, start_time_ms, status, notes, team_members, patch)
		VALUES (?, ?, ?, ?, ?, ?)`
	res, err := r.db.ExecContext(ctx, query,
		run.RaidWingID, run.StartTime.UnixMilli(), run.Status, run.Notes, string(teamJSON), run.Patch)
	if err != nil {
		return 0, fmt.Errorf("failed to insert run: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("failed to get inserted run id: %w", err)
	}
	return id, nil
}

// loadSequences fills in the run's recorded step sequence (insertion order)
// and the ids of its death events.
func (r *SQLiteRepository) loadSequences(ctx context.Context, run *models.RaidRun) error {
	rows, err := r.db.QueryContext(ctx,
		`SELECT step_id, reached_at_ms FROM run_steps WHERE run_id = ? ORDER BY id`, run.ID)
	if err != nil {
		return fmt.Errorf("failed to select run steps: %w", err)
	}
	defer rows.Close()

	run.Steps = []models.RunStep{}
	for rows.Next() {
		var stepID, reachedMs int64
		if err := rows.Scan(&stepID, &reachedMs); err != nil {
			return err
		}
		run.Steps = append(run.Steps, models.RunStep{
			StepID:    stepID,
			ReachedAt: time.Duration(reachedMs) * time.Millisecond,
		})
	}
	if err := rows.Err(); err != nil {
		return err
	}

	deathRows, err := r.db.QueryContext(ctx,
		`SELECT id FROM death_events WHERE run_id = ? ORDER BY id`, run.ID)
	if err != nil {
		return fmt.Errorf("failed to select run deaths: %w", err)
	}
	defer deathRows.Close()

	run.Deaths = []int64{}
	for deathRows.Next() {
		var id int64
		if err := deathRows.Scan(&id); err != nil {
			return err
		}
		run.Deaths = append(run.Deaths, id)
	}
	return deathRows.Err()
}

func (r *SQLiteRepository) GetByID(ctx context.Context, id int64) (*models.RaidRun, error) {
	query := `SELECT ` + runColumns + ` FROM raid_runs WHERE id = ?`
	row := r.db.QueryRowContext(ctx, query, id)

	run, err := scanRun(row.Scan)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to select run: %w", err)
	}
	if err := r.loadSequences(ctx, run); err != nil {
		return nil, err
	}
	return run, nil
}

func (r *SQLiteRepository) GetActive(ctx context.Context) (*models.RaidRun, error) {
	query := `SELECT ` + runColumns + ` FROM raid_runs WHERE status IN (?, ?) LIMIT 1`
	row := r.db.QueryRowContext(ctx, query, models.StatusInProgress, models.StatusPaused)

	run, err := scanRun(row.Scan)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to select active run: %w", err)
	}
	if err := r.loadSequences(ctx, run); err != nil {
		return nil, err
	}
	return run, nil
}

func (r *SQLiteRepository) list(ctx context.Context, query string, args ...any) ([]models.RaidRun, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to select runs: %w", err)
	}
	defer rows.Close()

	var result []models.RaidRun
	for rows.Next() {
		run, err := scanRun(rows.Scan)
		if err != nil {
			return nil, err
		}
		result = append(result, *run)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

func (r *SQLiteRepository) ListForWing(ctx context.Context, wingID int64) ([]models.RaidRun, error) {
	query := `SELECT ` + runColumns + ` FROM raid_runs WHERE raid_wing_id = ? ORDER BY start_time_ms DESC, id DESC`
	return r.list(ctx, query, wingID)
}

func (r *SQLiteRepository) ListByPatch(ctx context.Context, patch string) ([]models.RaidRun, error) {
	query := `SELECT ` + runColumns + ` FROM raid_runs WHERE patch = ? ORDER BY start_time_ms DESC, id DESC`
	return r.list(ctx, query, patch)
}

func (r *SQLiteRepository) Patches(ctx context.Context) ([]string, error) {
	query := `SELECT DISTINCT patch FROM raid_runs WHERE patch != '' ORDER BY patch DESC`
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to select patches: %w", err)
	}
	defer rows.Close()

	var result []string
	for rows.Next() {
		var p string
		if err := rows.Scan(&p); err != nil {
			return nil, err
		}
		result = append(result, p)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

func (r *SQLiteRepository) UpdateStatus(ctx context.Context, id int64, status models.RunStatus) error {
	query := `UPDATE raid_runs SET status = ? WHERE id = ?`
	res, err := r.db.ExecContext(ctx, query, status, id)
	if err != nil {
		return fmt.Errorf("failed to update run status: %w", err)
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

func (r *SQLiteRepository) Finish(ctx context.Context, id int64, status models.RunStatus, endTime time.Time, totalTime time.Duration) error {
	query := `UPDATE raid_runs SET status = ?, end_time_ms = ?, total_time_ms = ? WHERE id = ?`
	res, err := r.db.ExecContext(ctx, query, status, endTime.UnixMilli(), totalTime.Milliseconds(), id)
	if err != nil {
		return fmt.Errorf("failed to finish run: %w", err)
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

func (r *SQLiteRepository) AppendStep(ctx context.Context, runID, stepID int64, reachedAt time.Duration) error {
	query := `INSERT INTO run_steps (run_id, step_id, reached_at_ms) VALUES (?, ?, ?)`
	if _, err := r.db.ExecContext(ctx, query, runID, stepID, reachedAt.Milliseconds()); err != nil {
		return fmt.Errorf("failed to append run step: %w", err)
	}
	return nil
}

func (r *SQLiteRepository) UpdateNotes(ctx context.Context, id int64, notes string) error {
	query := `UPDATE raid_runs SET notes = ? WHERE id = ?`
	if _, err := r.db.ExecContext(ctx, query, notes, id); err != nil {
		return fmt.Errorf("failed to update run notes: %w", err)
	}
	return nil
}

func (r *SQLiteRepository) UpdatePatch(ctx context.Context, id int64, patch string) error {
	query := `UPDATE raid_runs SET patch = ? WHERE id = ?`
	if _, err := r.db.ExecContext(ctx, query, patch, id); err != nil {
		return fmt.Errorf("failed to update run patch: %w", err)
	}
	return nil
}

func (r *SQLiteRepository) Delete(ctx context.Context, id int64) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM run_steps WHERE run_id = ?`, id); err != nil {
		return fmt.Errorf("failed to delete run steps: %w", err)
	}
	if _, err := r.db.ExecContext(ctx, `DELETE FROM raid_runs WHERE id = ?`, id); err != nil {
		return fmt.Errorf("failed to delete run: %w", err)
	}
	return nil
}
