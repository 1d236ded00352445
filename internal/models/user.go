package models

import "time"

// User is a locally registered account. Credentials are stored as a random
// salt plus a derived verifier; the password itself is never persisted.
type User struct {
	// ID is the auto-assigned record id.
	ID int64

	// Username is the unique account name (case-sensitive).
	Username string

	// Salt is the per-user random salt fed into key derivation.
	Salt []byte

	// Verifier is the derived credential the password is checked against.
	Verifier []byte

	// CreatedAt is the account creation time.
	CreatedAt time.Time

	// UpdatedAt is the last profile modification time.
	UpdatedAt time.Time
}

// Profile is the public view of a user: everything except credentials.
// This is what gets serialized into the session slot.
type Profile struct {
	ID        int64     `json:"id"`
	Username  string    `json:"username"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Profile returns the public view of the user.
func (u *User) Profile() *Profile {
	return &Profile{
		ID:        u.ID,
		Username:  u.Username,
		CreatedAt: u.CreatedAt,
		UpdatedAt: u.UpdatedAt,
	}
}

// UserRun links a user to a run they took part in. At most one link exists
// per (UserID, RunID) pair.
type UserRun struct {
	ID        int64
	UserID    int64
	RunID     int64
	CreatedAt time.Time
}
