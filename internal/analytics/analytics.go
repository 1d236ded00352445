// Package analytics derives aggregate metrics from persisted runs and death
// events. All operations are read-only and scoped to one wing unless noted.
package analytics

import (
	"context"
	"database/sql"
	"sort"
	"time"

	"github.com/dmitrijs2005/raidtracker/internal/models"
	"github.com/dmitrijs2005/raidtracker/internal/repositories/deaths"
	"github.com/dmitrijs2005/raidtracker/internal/repositories/runs"
	"github.com/dmitrijs2005/raidtracker/internal/timex"
)

// StepTiming is the duration spent between one recorded milestone and the
// next within a single run.
type StepTiming struct {
	StepID int64
	Time   time.Duration
}

// ProgressPoint pairs a completed run's start date with its total duration.
// One point per run; runs on the same date are not aggregated.
type ProgressPoint struct {
	Date string
	Time time.Duration
}

// Service computes the aggregate metrics.
type Service struct {
	db *sql.DB
}

// NewService constructs an analytics Service bound to the given database.
func NewService(db *sql.DB) *Service {
	return &Service{db: db}
}

// AverageCompletionTime returns the mean total time over the wing's
// completed runs, or nil when the wing has no completed runs.
func (s *Service) AverageCompletionTime(ctx context.Context, wingID int64) (*time.Duration, error) {
	all, err := runs.NewSQLiteRepository(s.db).ListForWing(ctx, wingID)
	if err != nil {
		return nil, err
	}

	var sum time.Duration
	var n int64
	for _, run := range all {
		if run.Status != models.StatusCompleted || run.TotalTime == nil {
			continue
		}
		sum += *run.TotalTime
		n++
	}
	if n == 0 {
		return nil, nil
	}
	avg := sum / time.Duration(n)
	return &avg, nil
}

// SuccessRate returns completed/(completed+failed)*100 for the wing, or nil
// when the wing has no terminal runs. Runs still in a non-terminal status
// count on neither side.
func (s *Service) SuccessRate(ctx context.Context, wingID int64) (*float64, error) {
	all, err := runs.NewSQLiteRepository(s.db).ListForWing(ctx, wingID)
	if err != nil {
		return nil, err
	}

	var completed, terminal int
	for _, run := range all {
		if !run.Status.Terminal() {
			continue
		}
		terminal++
		if run.Status == models.StatusCompleted {
			completed++
		}
	}
	if terminal == 0 {
		return nil, nil
	}
	rate := float64(completed) / float64(terminal) * 100
	return &rate, nil
}

// AverageDeaths returns the mean death count over ALL of the wing's runs,
// terminal or not, or nil when the wing has no runs.
func (s *Service) AverageDeaths(ctx context.Context, wingID int64) (*float64, error) {
	all, err := runs.NewSQLiteRepository(s.db).ListForWing(ctx, wingID)
	if err != nil {
		return nil, err
	}
	if len(all) == 0 {
		return nil, nil
	}

	deathRepo := deaths.NewSQLiteRepository(s.db)
	var total int
	for _, run := range all {
		events, err := deathRepo.ListForRun(ctx, run.ID)
		if err != nil {
			return nil, err
		}
		total += len(events)
	}
	avg := float64(total) / float64(len(all))
	return &avg, nil
}

// StepTimings returns, for each recorded step of the run in order, the time
// until the next recorded step. The final step's duration extends to the
// run's total time, or 0 when the run has not finished.
func (s *Service) StepTimings(ctx context.Context, runID int64) ([]StepTiming, error) {
	run, err := runs.NewSQLiteRepository(s.db).GetByID(ctx, runID)
	if err != nil {
		return nil, err
	}
	if run == nil || len(run.Steps) == 0 {
		return nil, nil
	}

	result := make([]StepTiming, 0, len(run.Steps))
	for i, step := range run.Steps {
		var end time.Duration
		if i+1 < len(run.Steps) {
			end = run.Steps[i+1].ReachedAt
		} else if run.TotalTime != nil {
			end = *run.TotalTime
		}
		result = append(result, StepTiming{StepID: step.StepID, Time: end - step.ReachedAt})
	}
	return result, nil
}

// DeathHotspots returns the frequency of death locations across all of the
// wing's runs. Locations are matched exactly, with no normalization.
func (s *Service) DeathHotspots(ctx context.Context, wingID int64) (map[string]int, error) {
	all, err := runs.NewSQLiteRepository(s.db).ListForWing(ctx, wingID)
	if err != nil {
		return nil, err
	}

	deathRepo := deaths.NewSQLiteRepository(s.db)
	hotspots := make(map[string]int)
	for _, run := range all {
		events, err := deathRepo.ListForRun(ctx, run.ID)
		if err != nil {
			return nil, err
		}
		for _, d := range events {
			hotspots[d.Location]++
		}
	}
	return hotspots, nil
}

// ProgressOverTime returns one (start date, total time) point per completed
// run of the wing, sorted ascending by start time.
func (s *Service) ProgressOverTime(ctx context.Context, wingID int64) ([]ProgressPoint, error) {
	all, err := runs.NewSQLiteRepository(s.db).ListForWing(ctx, wingID)
	if err != nil {
		return nil, err
	}

	var completed []models.RaidRun
	for _, run := range all {
		if run.Status == models.StatusCompleted {
			completed = append(completed, run)
		}
	}
	sort.Slice(completed, func(i, j int) bool {
		return completed[i].StartTime.Before(completed[j].StartTime)
	})

	result := make([]ProgressPoint, 0, len(completed))
	for _, run := range completed {
		var total time.Duration
		if run.TotalTime != nil {
			total = *run.TotalTime
		}
		result = append(result, ProgressPoint{
			Date: timex.DayOnly(run.StartTime),
			Time: total,
		})
	}
	return result, nil
}
