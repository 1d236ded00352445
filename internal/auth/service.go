// Package auth implements the local account and session service: sign-up,
// sign-in, profile updates, user-to-run linkage, and a persisted session
// restored on startup. State changes are broadcast to subscribers, with the
// current state replayed to every new subscriber immediately.
package auth

import (
	"context"
	"database/sql"
	"encoding/json"
	"strings"
	"sync"
	"time"

	"github.com/dmitrijs2005/raidtracker/internal/common"
	"github.com/dmitrijs2005/raidtracker/internal/cryptox"
	"github.com/dmitrijs2005/raidtracker/internal/logging"
	"github.com/dmitrijs2005/raidtracker/internal/models"
	"github.com/dmitrijs2005/raidtracker/internal/repositories/metadata"
	"github.com/dmitrijs2005/raidtracker/internal/repositories/userruns"
	"github.com/dmitrijs2005/raidtracker/internal/repositories/users"
)

// sessionSlot is the metadata key holding the serialized current profile.
const sessionSlot = "session"

const saltSize = 32

// Service is the auth/session service. A nil current profile means signed
// out.
type Service struct {
	db  *sql.DB
	log logging.Logger
	now func() time.Time

	mu          sync.Mutex
	current     *models.Profile
	subscribers map[int]func(*models.Profile)
	nextSubID   int
}

// NewService constructs the Service and restores any persisted session.
// A missing or unreadable session slot means signed out; a corrupt slot is
// cleared.
func NewService(ctx context.Context, db *sql.DB, log logging.Logger) *Service {
	s := &Service{
		db:          db,
		log:         log,
		now:         time.Now,
		subscribers: make(map[int]func(*models.Profile)),
	}
	s.restoreSession(ctx)
	return s
}

func (s *Service) restoreSession(ctx context.Context) {
	raw, err := metadata.NewSQLiteRepository(s.db).Get(ctx, sessionSlot)
	if err != nil {
		s.log.Warn(ctx, "failed to load stored session", "error", err)
		return
	}
	if raw == nil {
		return
	}
	var p models.Profile
	if err := json.Unmarshal(raw, &p); err != nil {
		s.log.Warn(ctx, "clearing corrupt session slot", "error", err)
		_ = metadata.NewSQLiteRepository(s.db).Delete(ctx, sessionSlot)
		return
	}
	s.current = &p
}

func (s *Service) storeSession(ctx context.Context, p *models.Profile) {
	repo := metadata.NewSQLiteRepository(s.db)
	if p == nil {
		if err := repo.Delete(ctx, sessionSlot); err != nil {
			s.log.Warn(ctx, "failed to clear session slot", "error", err)
		}
		return
	}
	raw, err := json.Marshal(p)
	if err != nil {
		s.log.Warn(ctx, "failed to serialize session", "error", err)
		return
	}
	if err := repo.Set(ctx, sessionSlot, raw); err != nil {
		s.log.Warn(ctx, "failed to persist session", "error", err)
	}
}

// setCurrent swaps the current profile, persists the session slot, and
// broadcasts the new state.
func (s *Service) setCurrent(ctx context.Context, p *models.Profile) {
	s.mu.Lock()
	s.current = p
	subs := make([]func(*models.Profile), 0, len(s.subscribers))
	for _, fn := range s.subscribers {
		subs = append(subs, fn)
	}
	s.mu.Unlock()

	s.storeSession(ctx, p)
	for _, fn := range subs {
		fn(p)
	}
}

// Current returns the signed-in profile, or nil when signed out.
func (s *Service) Current() *models.Profile {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.current
}

// IsLoggedIn reports whether a user is signed in.
func (s *Service) IsLoggedIn() bool {
	return s.Current() != nil
}

// Subscribe registers fn for auth state changes and immediately replays the
// current state to it. The returned function unsubscribes.
func (s *Service) Subscribe(fn func(*models.Profile)) func() {
	s.mu.Lock()
	id := s.nextSubID
	s.nextSubID++
	s.subscribers[id] = fn
	current := s.current
	s.mu.Unlock()

	fn(current)

	return func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		delete(s.subscribers, id)
	}
}

func validateUsername(username string) error {
	if username == "" {
		return common.ErrCredentialsRequired
	}
	if len(username) < 3 {
		return common.ErrUsernameTooShort
	}
	return nil
}

func validatePassword(password string) error {
	if strings.TrimSpace(password) == "" {
		return common.ErrCredentialsRequired
	}
	if len(password) < 6 {
		return common.ErrPasswordTooShort
	}
	return nil
}

// SignUp creates a new local account and signs it in. Usernames are unique
// (case-sensitive, compared after trimming surrounding whitespace).
func (s *Service) SignUp(ctx context.Context, username, password string) (*models.Profile, error) {
	username = strings.TrimSpace(username)
	if err := validateUsername(username); err != nil {
		return nil, err
	}
	if err := validatePassword(password); err != nil {
		return nil, err
	}

	repo := users.NewSQLiteRepository(s.db)
	existing, err := repo.GetByUsername(ctx, username)
	if err != nil {
		s.log.Error(ctx, "sign up failed", "error", err)
		return nil, common.ErrInternal
	}
	if existing != nil {
		return nil, common.ErrUsernameTaken
	}

	salt := common.GenerateRandByteArray(saltSize)
	verifier := cryptox.MakeVerifier(cryptox.DeriveKey([]byte(password), salt))

	now := s.now()
	user := &models.User{
		Username:  username,
		Salt:      salt,
		Verifier:  verifier,
		CreatedAt: now,
		UpdatedAt: now,
	}
	id, err := repo.Create(ctx, user)
	if err != nil {
		s.log.Error(ctx, "sign up failed", "error", err)
		return nil, common.ErrInternal
	}
	user.ID = id

	profile := user.Profile()
	s.setCurrent(ctx, profile)
	s.log.Info(ctx, "user signed up", "user_id", id, "username", username)
	return profile, nil
}

// SignIn verifies the credentials and starts a session. Unknown usernames
// and wrong passwords both yield common.ErrInvalidCredentials.
func (s *Service) SignIn(ctx context.Context, username, password string) (*models.Profile, error) {
	username = strings.TrimSpace(username)

	user, err := users.NewSQLiteRepository(s.db).GetByUsername(ctx, username)
	if err != nil {
		s.log.Error(ctx, "sign in failed", "error", err)
		return nil, common.ErrInternal
	}
	if user == nil || !cryptox.VerifyPassword([]byte(password), user.Salt, user.Verifier) {
		return nil, common.ErrInvalidCredentials
	}

	profile := user.Profile()
	s.setCurrent(ctx, profile)
	s.log.Info(ctx, "user signed in", "user_id", user.ID)
	return profile, nil
}

// SignOut clears the session.
func (s *Service) SignOut(ctx context.Context) {
	s.setCurrent(ctx, nil)
}

// UpdateUsername renames the signed-in account after re-validating and
// checking uniqueness against everyone but the account itself.
func (s *Service) UpdateUsername(ctx context.Context, newUsername string) error {
	current := s.Current()
	if current == nil {
		return common.ErrNotLoggedIn
	}

	newUsername = strings.TrimSpace(newUsername)
	if newUsername == "" || len(newUsername) < 3 {
		return common.ErrUsernameTooShort
	}

	repo := users.NewSQLiteRepository(s.db)
	existing, err := repo.GetByUsername(ctx, newUsername)
	if err != nil {
		s.log.Error(ctx, "username update failed", "error", err)
		return common.ErrInternal
	}
	if existing != nil && existing.ID != current.ID {
		return common.ErrUsernameTaken
	}

	user, err := repo.GetByID(ctx, current.ID)
	if err != nil || user == nil {
		s.log.Error(ctx, "username update failed", "error", err)
		return common.ErrInternal
	}

	user.Username = newUsername
	user.UpdatedAt = s.now()
	if err := repo.Update(ctx, user); err != nil {
		s.log.Error(ctx, "username update failed", "error", err)
		return common.ErrInternal
	}

	s.setCurrent(ctx, user.Profile())
	return nil
}

// UpdatePassword re-salts the account credentials after verifying the
// current password.
func (s *Service) UpdatePassword(ctx context.Context, currentPassword, newPassword string) error {
	current := s.Current()
	if current == nil {
		return common.ErrNotLoggedIn
	}

	repo := users.NewSQLiteRepository(s.db)
	user, err := repo.GetByID(ctx, current.ID)
	if err != nil {
		s.log.Error(ctx, "password update failed", "error", err)
		return common.ErrInternal
	}
	if user == nil || !cryptox.VerifyPassword([]byte(currentPassword), user.Salt, user.Verifier) {
		return common.ErrPasswordMismatch
	}

	if err := validatePassword(newPassword); err != nil {
		return err
	}

	salt := common.GenerateRandByteArray(saltSize)
	user.Salt = salt
	user.Verifier = cryptox.MakeVerifier(cryptox.DeriveKey([]byte(newPassword), salt))
	user.UpdatedAt = s.now()
	if err := repo.Update(ctx, user); err != nil {
		s.log.Error(ctx, "password update failed", "error", err)
		return common.ErrInternal
	}

	s.setCurrent(ctx, user.Profile())
	return nil
}

// LinkUserToRun records that the user took part in the run. userID 0 means
// the signed-in user; when nobody is signed in the call is a no-op. At most
// one link exists per (user, run) pair.
func (s *Service) LinkUserToRun(ctx context.Context, runID, userID int64) error {
	if userID == 0 {
		current := s.Current()
		if current == nil {
			return nil
		}
		userID = current.ID
	}

	repo := userruns.NewSQLiteRepository(s.db)
	exists, err := repo.Exists(ctx, userID, runID)
	if err != nil {
		return err
	}
	if exists {
		return nil
	}
	return repo.Create(ctx, userID, runID, s.now())
}

// RunIDs returns the ids of runs linked to the user. userID 0 means the
// signed-in user; when nobody is signed in the result is empty.
func (s *Service) RunIDs(ctx context.Context, userID int64) ([]int64, error) {
	if userID == 0 {
		current := s.Current()
		if current == nil {
			return nil, nil
		}
		userID = current.ID
	}
	return userruns.NewSQLiteRepository(s.db).RunIDsForUser(ctx, userID)
}

// FindByUsername returns the public profile of the named user, or (nil, nil)
// when no such user exists.
func (s *Service) FindByUsername(ctx context.Context, username string) (*models.Profile, error) {
	user, err := users.NewSQLiteRepository(s.db).GetByUsername(ctx, strings.TrimSpace(username))
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, nil
	}
	return user.Profile(), nil
}
