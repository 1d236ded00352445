package models

// RaidStep is an ordered milestone within a wing. Reaching it during a run
// is recorded with a timestamp relative to the run start.
type RaidStep struct {
	// ID is the auto-assigned record id.
	ID int64

	// Name is the display name of the milestone.
	Name string

	// Description optionally elaborates on the milestone.
	Description string

	// Position orders the step within its wing (ascending).
	Position int

	// RaidWingID references the owning wing.
	RaidWingID int64
}
