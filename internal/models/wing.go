// Package models defines the record types persisted in the local raidtracker
// database.
package models

// RaidWing is static reference data describing one trackable raid wing:
// a named, ordered collection of boss encounters.
type RaidWing struct {
	// ID is the auto-assigned record id.
	ID int64

	// Name is the display name of the wing.
	Name string

	// Description is a short human-readable summary.
	Description string

	// Bosses is the ordered list of boss encounter names in the wing.
	Bosses []string

	// ImageURL optionally points at a loading-screen image for the wing.
	ImageURL string
}
