package models

import "time"

// DeathEvent is a timestamped setback during a run, with a location label
// and optional notes.
type DeathEvent struct {
	// ID is the auto-assigned record id.
	ID int64

	// RunID references the run during which the death occurred.
	RunID int64

	// Timestamp is the offset from the run start.
	Timestamp time.Duration

	// Location labels where the death happened (exact-match aggregated).
	Location string

	// Notes optionally describes the death.
	Notes string
}
