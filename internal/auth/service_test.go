package auth

import (
	"context"
	"database/sql"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrijs2005/raidtracker/internal/common"
	"github.com/dmitrijs2005/raidtracker/internal/logging"
	"github.com/dmitrijs2005/raidtracker/internal/models"
	"github.com/dmitrijs2005/raidtracker/internal/repositories/metadata"
	"github.com/dmitrijs2005/raidtracker/internal/store"
)

func setupDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := store.Open(context.Background(), "file:"+t.Name()+"?mode=memory&cache=shared")
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return db
}

func testLogger() logging.Logger {
	return logging.NewSlogLogger(slog.New(slog.DiscardHandler))
}

func newService(t *testing.T, db *sql.DB) *Service {
	t.Helper()
	return NewService(context.Background(), db, testLogger())
}

func TestSignUp_Validation(t *testing.T) {
	db := setupDB(t)
	s := newService(t, db)
	ctx := context.Background()

	_, err := s.SignUp(ctx, "", "password1")
	assert.ErrorIs(t, err, common.ErrCredentialsRequired)

	_, err = s.SignUp(ctx, "ab", "password1")
	assert.ErrorIs(t, err, common.ErrUsernameTooShort)

	_, err = s.SignUp(ctx, "alice", "   ")
	assert.ErrorIs(t, err, common.ErrCredentialsRequired)

	// five characters is one short
	_, err = s.SignUp(ctx, "alice", "12345")
	assert.ErrorIs(t, err, common.ErrPasswordTooShort)

	assert.False(t, s.IsLoggedIn())
}

func TestSignUp_SignsInAndPersists(t *testing.T) {
	db := setupDB(t)
	s := newService(t, db)
	ctx := context.Background()

	profile, err := s.SignUp(ctx, "  alice  ", "password1")
	require.NoError(t, err)
	require.NotNil(t, profile)
	assert.Equal(t, "alice", profile.Username)
	assert.NotZero(t, profile.ID)
	assert.True(t, s.IsLoggedIn())

	// credentials are stored salted, never the password itself
	var salt, verifier []byte
	err = db.QueryRow(`SELECT salt, verifier FROM users WHERE id=?`, profile.ID).Scan(&salt, &verifier)
	require.NoError(t, err)
	assert.Len(t, salt, saltSize)
	assert.NotContains(t, string(verifier), "password1")

	_, err = s.SignUp(ctx, "alice", "password2")
	assert.ErrorIs(t, err, common.ErrUsernameTaken)
}

func TestSignIn(t *testing.T) {
	db := setupDB(t)
	s := newService(t, db)
	ctx := context.Background()

	_, err := s.SignUp(ctx, "alice", "password1")
	require.NoError(t, err)
	s.SignOut(ctx)
	require.False(t, s.IsLoggedIn())

	_, err = s.SignIn(ctx, "alice", "wrong-password")
	assert.ErrorIs(t, err, common.ErrInvalidCredentials)

	_, err = s.SignIn(ctx, "ghost", "password1")
	assert.ErrorIs(t, err, common.ErrInvalidCredentials)

	profile, err := s.SignIn(ctx, "alice", "password1")
	require.NoError(t, err)
	assert.Equal(t, "alice", profile.Username)
	assert.True(t, s.IsLoggedIn())
}

func TestSessionRestore(t *testing.T) {
	db := setupDB(t)
	ctx := context.Background()

	s1 := newService(t, db)
	profile, err := s1.SignUp(ctx, "alice", "password1")
	require.NoError(t, err)

	// a new service over the same database adopts the stored session
	s2 := newService(t, db)
	require.True(t, s2.IsLoggedIn())
	assert.Equal(t, profile.ID, s2.Current().ID)
	assert.Equal(t, "alice", s2.Current().Username)

	// signing out clears the slot for future services too
	s2.SignOut(ctx)
	s3 := newService(t, db)
	assert.False(t, s3.IsLoggedIn())
}

func TestSessionRestore_CorruptSlotCleared(t *testing.T) {
	db := setupDB(t)
	ctx := context.Background()

	require.NoError(t, metadata.NewSQLiteRepository(db).Set(ctx, sessionSlot, []byte("{broken")))

	s := newService(t, db)
	assert.False(t, s.IsLoggedIn())

	raw, err := metadata.NewSQLiteRepository(db).Get(ctx, sessionSlot)
	require.NoError(t, err)
	assert.Nil(t, raw)
}

func TestSubscribe_ReplaysAndBroadcasts(t *testing.T) {
	db := setupDB(t)
	s := newService(t, db)
	ctx := context.Background()

	var events []*models.Profile
	unsubscribe := s.Subscribe(func(p *models.Profile) {
		events = append(events, p)
	})

	// signed-out state replayed immediately
	require.Len(t, events, 1)
	assert.Nil(t, events[0])

	_, err := s.SignUp(ctx, "alice", "password1")
	require.NoError(t, err)
	require.Len(t, events, 2)
	require.NotNil(t, events[1])
	assert.Equal(t, "alice", events[1].Username)

	s.SignOut(ctx)
	require.Len(t, events, 3)
	assert.Nil(t, events[2])

	unsubscribe()
	_, err = s.SignIn(ctx, "alice", "password1")
	require.NoError(t, err)
	assert.Len(t, events, 3)
}

func TestUpdateUsername(t *testing.T) {
	db := setupDB(t)
	s := newService(t, db)
	ctx := context.Background()

	assert.ErrorIs(t, s.UpdateUsername(ctx, "new"), common.ErrNotLoggedIn)

	_, err := s.SignUp(ctx, "alice", "password1")
	require.NoError(t, err)
	_, err = s.SignUp(ctx, "bob", "password1")
	require.NoError(t, err)
	// bob is now signed in

	assert.ErrorIs(t, s.UpdateUsername(ctx, "al"), common.ErrUsernameTooShort)
	assert.ErrorIs(t, s.UpdateUsername(ctx, "alice"), common.ErrUsernameTaken)

	// renaming to your own current name is allowed
	require.NoError(t, s.UpdateUsername(ctx, "bob"))

	require.NoError(t, s.UpdateUsername(ctx, "robert"))
	assert.Equal(t, "robert", s.Current().Username)

	_, err = s.SignIn(ctx, "robert", "password1")
	require.NoError(t, err)
}

func TestUpdatePassword(t *testing.T) {
	db := setupDB(t)
	s := newService(t, db)
	ctx := context.Background()

	assert.ErrorIs(t, s.UpdatePassword(ctx, "a", "b"), common.ErrNotLoggedIn)

	_, err := s.SignUp(ctx, "alice", "password1")
	require.NoError(t, err)

	assert.ErrorIs(t, s.UpdatePassword(ctx, "wrong", "password2"), common.ErrPasswordMismatch)
	assert.ErrorIs(t, s.UpdatePassword(ctx, "password1", "short"), common.ErrPasswordTooShort)

	require.NoError(t, s.UpdatePassword(ctx, "password1", "password2"))

	s.SignOut(ctx)
	_, err = s.SignIn(ctx, "alice", "password1")
	assert.ErrorIs(t, err, common.ErrInvalidCredentials)
	_, err = s.SignIn(ctx, "alice", "password2")
	require.NoError(t, err)
}

func TestLinkUserToRun(t *testing.T) {
	db := setupDB(t)
	s := newService(t, db)
	ctx := context.Background()

	// nobody signed in: linking the current user is a no-op
	require.NoError(t, s.LinkUserToRun(ctx, 10, 0))
	ids, err := s.RunIDs(ctx, 0)
	require.NoError(t, err)
	assert.Empty(t, ids)

	profile, err := s.SignUp(ctx, "alice", "password1")
	require.NoError(t, err)

	require.NoError(t, s.LinkUserToRun(ctx, 10, 0))
	// linking twice keeps a single link
	require.NoError(t, s.LinkUserToRun(ctx, 10, 0))
	require.NoError(t, s.LinkUserToRun(ctx, 20, profile.ID))

	ids, err = s.RunIDs(ctx, 0)
	require.NoError(t, err)
	assert.Equal(t, []int64{10, 20}, ids)
}

func TestFindByUsername(t *testing.T) {
	db := setupDB(t)
	s := newService(t, db)
	ctx := context.Background()

	profile, err := s.SignUp(ctx, "alice", "password1")
	require.NoError(t, err)

	found, err := s.FindByUsername(ctx, " alice ")
	require.NoError(t, err)
	require.NotNil(t, found)
	assert.Equal(t, profile.ID, found.ID)

	missing, err := s.FindByUsername(ctx, "ghost")
	require.NoError(t, err)
	assert.Nil(t, missing)
}
