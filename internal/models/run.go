package models

import "time"

// RunStatus is the lifecycle state of a raid run.
type RunStatus string

const (
	StatusInProgress RunStatus = "in-progress"
	StatusPaused     RunStatus = "paused"
	StatusCompleted  RunStatus = "completed"
	StatusFailed     RunStatus = "failed"
)

// Terminal reports whether the status is an end state that no transition
// may leave.
func (s RunStatus) Terminal() bool {
	return s == StatusCompleted || s == StatusFailed
}

// Active reports whether a run in this status occupies the single active
// run slot.
func (s RunStatus) Active() bool {
	return s == StatusInProgress || s == StatusPaused
}

// RunStep is one recorded milestone within a run: which step was reached
// and when, relative to the run start. Duplicate step ids are preserved as
// separate entries.
type RunStep struct {
	// StepID references the RaidStep that was reached.
	StepID int64

	// ReachedAt is the offset from the run start at which the step was
	// recorded.
	ReachedAt time.Duration
}

// RaidRun is one timed attempt at a wing, tracked from start to a terminal
// outcome.
type RaidRun struct {
	// ID is the auto-assigned record id.
	ID int64

	// RaidWingID references the wing being attempted.
	RaidWingID int64

	// StartTime is the wall-clock instant the run began.
	StartTime time.Time

	// EndTime is set when the run reaches a terminal status.
	EndTime *time.Time

	// TotalTime is EndTime - StartTime, set together with EndTime.
	TotalTime *time.Duration

	// Status is the current lifecycle state.
	Status RunStatus

	// Steps is the ordered sequence of recorded milestones.
	Steps []RunStep

	// Deaths lists the ids of the run's death events, derived from the
	// death_events collection.
	Deaths []int64

	// Notes is free-form text attached to the run.
	Notes string

	// TeamMembers lists the names of the people on the attempt.
	TeamMembers []string

	// Patch is the game patch version, used to group history.
	Patch string
}
