// Package tracker implements the single-active-run state core: lifecycle
// transitions, step and death recording with run-relative timestamps, and
// elapsed-time bookkeeping for the tracking UI.
package tracker

import (
	"context"
	"sync"
	"time"

	"github.com/dmitrijs2005/raidtracker/internal/auth"
	"github.com/dmitrijs2005/raidtracker/internal/common"
	"github.com/dmitrijs2005/raidtracker/internal/logging"
	"github.com/dmitrijs2005/raidtracker/internal/models"
	"github.com/dmitrijs2005/raidtracker/internal/services"
)

const (
	defaultTickInterval = 100 * time.Millisecond
	defaultSettleDelay  = 3 * time.Second
)

// Option configures a Tracker.
type Option func(*Tracker)

// WithClock replaces the wall clock, for tests.
func WithClock(now func() time.Time) Option {
	return func(t *Tracker) { t.now = now }
}

// WithTickInterval sets how often elapsed time is pushed to the OnElapsed
// callback while a run is in progress.
func WithTickInterval(d time.Duration) Option {
	return func(t *Tracker) { t.tickInterval = d }
}

// WithSettleDelay sets how long a finished run stays in the tracker before
// its working context clears.
func WithSettleDelay(d time.Duration) Option {
	return func(t *Tracker) { t.settleDelay = d }
}

// WithOnElapsed registers the callback invoked with the current elapsed time
// on every tick while a run is in progress. The callback runs on the ticker
// goroutine and must not call back into the Tracker.
func WithOnElapsed(fn func(time.Duration)) Option {
	return func(t *Tracker) { t.onElapsed = fn }
}

// Tracker orchestrates the single active run. All exported methods are safe
// for concurrent use; in practice the CLI drives them from one goroutine and
// only the elapsed ticker runs on another.
type Tracker struct {
	runs  *services.RunService
	wings *services.WingService
	steps *services.StepService
	auth  *auth.Service
	log   logging.Logger

	now          func() time.Time
	tickInterval time.Duration
	settleDelay  time.Duration
	onElapsed    func(time.Duration)

	mu             sync.Mutex
	current        *models.RaidRun
	currentWing    *models.RaidWing
	currentSteps   []models.RaidStep
	completedSteps []int64
	elapsed        time.Duration
	stopTick       chan struct{}
	settleTimer    *time.Timer
}

// New constructs a Tracker over the record services.
func New(runSvc *services.RunService, wingSvc *services.WingService, stepSvc *services.StepService, authSvc *auth.Service, log logging.Logger, opts ...Option) *Tracker {
	t := &Tracker{
		runs:         runSvc,
		wings:        wingSvc,
		steps:        stepSvc,
		auth:         authSvc,
		log:          log,
		now:          time.Now,
		tickInterval: defaultTickInterval,
		settleDelay:  defaultSettleDelay,
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// loadContext fills in the wing and ordered step definitions for the run
// held in t.current. Caller holds the lock.
func (t *Tracker) loadContext(ctx context.Context) error {
	wing, err := t.wings.Get(ctx, t.current.RaidWingID)
	if err != nil {
		return err
	}
	t.currentWing = wing

	t.currentSteps = nil
	if wing != nil {
		stepList, err := t.steps.ListForWing(ctx, wing.ID)
		if err != nil {
			return err
		}
		t.currentSteps = stepList
	}

	t.completedSteps = nil
	for _, rs := range t.current.Steps {
		t.completedSteps = append(t.completedSteps, rs.StepID)
	}
	return nil
}

// Restore adopts a persisted active run, if any, together with its wing and
// step context. Called once at startup.
func (t *Tracker) Restore(ctx context.Context) error {
	active, err := t.runs.GetActive(ctx)
	if err != nil {
		return err
	}
	if active == nil {
		return nil
	}

	t.mu.Lock()
	t.current = active
	if err := t.loadContext(ctx); err != nil {
		t.mu.Unlock()
		return err
	}
	t.elapsed = t.now().Sub(active.StartTime)
	inProgress := active.Status == models.StatusInProgress
	t.mu.Unlock()

	if inProgress {
		t.startTicker()
	}
	t.log.Info(ctx, "restored active run", "run_id", active.ID, "status", active.Status)
	return nil
}

// Start begins a new run for the wing. It fails with common.ErrRunActive
// when a run is already active, leaving that run untouched. On success the
// acting user and any team member matching a known username are linked to
// the run best-effort.
func (t *Tracker) Start(ctx context.Context, wingID int64, teamMembers []string, patch string) error {
	t.mu.Lock()
	if t.current != nil && t.current.Status.Active() {
		t.mu.Unlock()
		return common.ErrRunActive
	}
	t.mu.Unlock()

	runID, err := t.runs.Start(ctx, wingID, teamMembers, patch, t.now())
	if err != nil {
		return err
	}
	run, err := t.runs.Get(ctx, runID)
	if err != nil {
		return err
	}

	t.mu.Lock()
	t.cancelSettleLocked()
	t.current = run
	if err := t.loadContext(ctx); err != nil {
		t.mu.Unlock()
		return err
	}
	t.completedSteps = nil
	t.elapsed = 0
	t.mu.Unlock()

	t.linkParticipants(ctx, runID, teamMembers)
	t.startTicker()
	return nil
}

// linkParticipants links the signed-in user and matching team members to the
// run. Individual failures are logged and do not fail the start.
func (t *Tracker) linkParticipants(ctx context.Context, runID int64, teamMembers []string) {
	if t.auth == nil {
		return
	}
	if t.auth.IsLoggedIn() {
		if err := t.auth.LinkUserToRun(ctx, runID, 0); err != nil {
			t.log.Warn(ctx, "failed to link user to run", "run_id", runID, "error", err)
		}
	}
	for _, member := range teamMembers {
		profile, err := t.auth.FindByUsername(ctx, member)
		if err != nil || profile == nil {
			continue
		}
		if err := t.auth.LinkUserToRun(ctx, runID, profile.ID); err != nil {
			t.log.Warn(ctx, "failed to link team member to run",
				"run_id", runID, "username", member, "error", err)
		}
	}
}

// Pause freezes the run. A no-op unless the run is in progress.
func (t *Tracker) Pause(ctx context.Context) error {
	t.mu.Lock()
	if t.current == nil || t.current.Status != models.StatusInProgress {
		t.mu.Unlock()
		return nil
	}
	id := t.current.ID
	t.mu.Unlock()

	if err := t.runs.Pause(ctx, id); err != nil {
		return err
	}

	t.mu.Lock()
	if t.current != nil && t.current.ID == id {
		t.current.Status = models.StatusPaused
		// Freeze the display at the pause boundary.
		t.elapsed = t.now().Sub(t.current.StartTime)
	}
	t.mu.Unlock()

	t.stopTicker()
	return nil
}

// Resume continues a paused run. A no-op unless the run is paused.
//
// Elapsed time is always derived as now minus the run's start time, so
// wall-clock time spent paused is included in the display once the run
// resumes. This mirrors the recorded reachedAt/timestamp offsets, which are
// relative to the start instant rather than to active time.
func (t *Tracker) Resume(ctx context.Context) error {
	t.mu.Lock()
	if t.current == nil || t.current.Status != models.StatusPaused {
		t.mu.Unlock()
		return nil
	}
	id := t.current.ID
	t.mu.Unlock()

	if err := t.runs.Resume(ctx, id); err != nil {
		return err
	}

	t.mu.Lock()
	if t.current != nil && t.current.ID == id {
		t.current.Status = models.StatusInProgress
	}
	t.mu.Unlock()

	t.startTicker()
	return nil
}

func (t *Tracker) finish(ctx context.Context, complete bool) error {
	t.mu.Lock()
	if t.current == nil {
		t.mu.Unlock()
		return common.ErrNoActiveRun
	}
	if t.current.Status.Terminal() {
		t.mu.Unlock()
		return nil
	}
	id := t.current.ID
	t.mu.Unlock()

	now := t.now()
	var err error
	if complete {
		err = t.runs.Complete(ctx, id, now)
	} else {
		err = t.runs.Fail(ctx, id, now)
	}
	if err != nil {
		return err
	}

	run, err := t.runs.Get(ctx, id)
	if err != nil {
		return err
	}

	t.stopTicker()

	t.mu.Lock()
	t.current = run
	if run != nil && run.TotalTime != nil {
		t.elapsed = *run.TotalTime
	}
	t.scheduleSettleLocked(id)
	t.mu.Unlock()
	return nil
}

// Complete finalizes the current run as completed. After the settle delay
// the tracker's working context clears so a new run can begin.
func (t *Tracker) Complete(ctx context.Context) error {
	return t.finish(ctx, true)
}

// Fail finalizes the current run as failed. After the settle delay the
// tracker's working context clears so a new run can begin.
func (t *Tracker) Fail(ctx context.Context) error {
	return t.finish(ctx, false)
}

// scheduleSettleLocked arms the timer that clears the working context after
// a terminal transition. Caller holds the lock.
func (t *Tracker) scheduleSettleLocked(runID int64) {
	t.cancelSettleLocked()
	t.settleTimer = time.AfterFunc(t.settleDelay, func() {
		t.mu.Lock()
		defer t.mu.Unlock()
		// A new run may have started in the meantime.
		if t.current == nil || t.current.ID != runID {
			return
		}
		t.current = nil
		t.currentWing = nil
		t.currentSteps = nil
		t.completedSteps = nil
		t.elapsed = 0
	})
}

func (t *Tracker) cancelSettleLocked() {
	if t.settleTimer != nil {
		t.settleTimer.Stop()
		t.settleTimer = nil
	}
}

// RecordStep records reaching a milestone. A no-op unless the run is in
// progress. Duplicate step ids are preserved as separate entries.
func (t *Tracker) RecordStep(ctx context.Context, stepID int64) error {
	t.mu.Lock()
	if t.current == nil || t.current.Status != models.StatusInProgress {
		t.mu.Unlock()
		return nil
	}
	id := t.current.ID
	t.mu.Unlock()

	if err := t.runs.RecordStep(ctx, id, stepID, t.now()); err != nil {
		return err
	}

	run, err := t.runs.Get(ctx, id)
	if err != nil {
		return err
	}

	t.mu.Lock()
	if t.current != nil && t.current.ID == id && run != nil {
		t.current = run
		t.completedSteps = append(t.completedSteps, stepID)
	}
	t.mu.Unlock()
	return nil
}

// RecordDeath records a death at the given location. A no-op unless the run
// is in progress.
func (t *Tracker) RecordDeath(ctx context.Context, location, notes string) error {
	t.mu.Lock()
	if t.current == nil || t.current.Status != models.StatusInProgress {
		t.mu.Unlock()
		return nil
	}
	id := t.current.ID
	t.mu.Unlock()

	if _, err := t.runs.RecordDeath(ctx, id, location, notes, t.now()); err != nil {
		return err
	}

	run, err := t.runs.Get(ctx, id)
	if err != nil {
		return err
	}

	t.mu.Lock()
	if t.current != nil && t.current.ID == id && run != nil {
		t.current = run
	}
	t.mu.Unlock()
	return nil
}

// UpdateNotes overwrites the current run's notes. Valid in any status while
// a current run exists.
func (t *Tracker) UpdateNotes(ctx context.Context, notes string) error {
	t.mu.Lock()
	if t.current == nil {
		t.mu.Unlock()
		return common.ErrNoActiveRun
	}
	id := t.current.ID
	t.mu.Unlock()

	if err := t.runs.UpdateNotes(ctx, id, notes); err != nil {
		return err
	}

	t.mu.Lock()
	if t.current != nil && t.current.ID == id {
		t.current.Notes = notes
	}
	t.mu.Unlock()
	return nil
}

// AddStep appends a new step definition to the wing at the next position and
// returns its id. When the wing is the current one, the working step list is
// refreshed.
func (t *Tracker) AddStep(ctx context.Context, wingID int64, name, description string) (int64, error) {
	id, err := t.steps.Add(ctx, wingID, name, description)
	if err != nil {
		return 0, err
	}

	t.mu.Lock()
	defer t.mu.Unlock()
	if t.currentWing != nil && t.currentWing.ID == wingID {
		stepList, err := t.steps.ListForWing(ctx, wingID)
		if err != nil {
			return id, err
		}
		t.currentSteps = stepList
	}
	return id, nil
}

// Elapsed returns the run's elapsed time: live (now - start) while in
// progress, frozen at the last boundary otherwise.
func (t *Tracker) Elapsed() time.Duration {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.current != nil && t.current.Status == models.StatusInProgress {
		return t.now().Sub(t.current.StartTime)
	}
	return t.elapsed
}

// Current returns the current run, or nil when no run is being tracked.
func (t *Tracker) Current() *models.RaidRun {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.current
}

// Wing returns the wing of the current run, or nil.
func (t *Tracker) Wing() *models.RaidWing {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.currentWing
}

// Steps returns the ordered step definitions of the current wing.
func (t *Tracker) Steps() []models.RaidStep {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.currentSteps
}

// CompletedSteps returns the ids of steps recorded during the current run,
// in recording order.
func (t *Tracker) CompletedSteps() []int64 {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.completedSteps
}

// IsRunning reports whether the current run is in progress.
func (t *Tracker) IsRunning() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.current != nil && t.current.Status == models.StatusInProgress
}

// IsPaused reports whether the current run is paused.
func (t *Tracker) IsPaused() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.current != nil && t.current.Status == models.StatusPaused
}

// startTicker begins pushing elapsed updates to the OnElapsed callback.
// Any previous ticker is stopped first.
func (t *Tracker) startTicker() {
	t.stopTicker()
	if t.onElapsed == nil {
		return
	}

	t.mu.Lock()
	stop := make(chan struct{})
	t.stopTick = stop
	interval := t.tickInterval
	t.mu.Unlock()

	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				t.mu.Lock()
				running := t.current != nil && t.current.Status == models.StatusInProgress
				var elapsed time.Duration
				if running {
					elapsed = t.now().Sub(t.current.StartTime)
					t.elapsed = elapsed
				}
				t.mu.Unlock()
				if running {
					t.onElapsed(elapsed)
				}
			case <-stop:
				return
			}
		}
	}()
}

// stopTicker cancels the elapsed ticker, if any.
func (t *Tracker) stopTicker() {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.stopTick != nil {
		close(t.stopTick)
		t.stopTick = nil
	}
}

// Close stops the ticker and any pending settle timer.
func (t *Tracker) Close() {
	t.stopTicker()
	t.mu.Lock()
	t.cancelSettleLocked()
	t.mu.Unlock()
}
