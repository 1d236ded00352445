package cli

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/dmitrijs2005/raidtracker/internal/common"
	"github.com/dmitrijs2005/raidtracker/internal/timex"
)

// startRun begins tracking a new run, prompting for the team roster and the
// patch version.
func (a *App) startRun(ctx context.Context, args []string) {
	wingID, ok := parseID(args)
	if !ok {
		fmt.Fprintln(a.out, "Usage: start <wingID>")
		return
	}

	team, err := getSimpleText(a.reader, "Team members (comma-separated, optional)", a.out)
	if err != nil {
		fmt.Fprintln(a.out, "Error:", err)
		return
	}
	patch, err := getSimpleText(a.reader, "Patch version (optional)", a.out)
	if err != nil {
		fmt.Fprintln(a.out, "Error:", err)
		return
	}

	var members []string
	for _, m := range strings.Split(team, ",") {
		if m = strings.TrimSpace(m); m != "" {
			members = append(members, m)
		}
	}

	if err := a.tracker.Start(ctx, wingID, members, patch); err != nil {
		if errors.Is(err, common.ErrRunActive) {
			fmt.Fprintln(a.out, "A run is already active; complete or fail it first")
			return
		}
		fmt.Fprintln(a.out, "Error:", err)
		return
	}
	fmt.Fprintln(a.out, "Run started")
}

func (a *App) pauseRun(ctx context.Context) {
	if err := a.tracker.Pause(ctx); err != nil {
		fmt.Fprintln(a.out, "Error:", err)
		return
	}
	fmt.Fprintln(a.out, "Paused at", timex.FormatElapsed(a.tracker.Elapsed()))
}

func (a *App) resumeRun(ctx context.Context) {
	if err := a.tracker.Resume(ctx); err != nil {
		fmt.Fprintln(a.out, "Error:", err)
		return
	}
	fmt.Fprintln(a.out, "Resumed")
}

func (a *App) completeRun(ctx context.Context) {
	if err := a.tracker.Complete(ctx); err != nil {
		if errors.Is(err, common.ErrNoActiveRun) {
			fmt.Fprintln(a.out, "No active run")
			return
		}
		fmt.Fprintln(a.out, "Error:", err)
		return
	}
	fmt.Fprintln(a.out, "Run completed in", timex.FormatLong(a.tracker.Elapsed()))
}

func (a *App) failRun(ctx context.Context) {
	if err := a.tracker.Fail(ctx); err != nil {
		if errors.Is(err, common.ErrNoActiveRun) {
			fmt.Fprintln(a.out, "No active run")
			return
		}
		fmt.Fprintln(a.out, "Error:", err)
		return
	}
	fmt.Fprintln(a.out, "Run marked as failed at", timex.FormatLong(a.tracker.Elapsed()))
}

// recordStep marks a milestone as reached at the current elapsed time.
func (a *App) recordStep(ctx context.Context, args []string) {
	stepID, ok := parseID(args)
	if !ok {
		fmt.Fprintln(a.out, "Usage: step <stepID>")
		return
	}
	if !a.tracker.IsRunning() {
		fmt.Fprintln(a.out, "No run in progress")
		return
	}
	if err := a.tracker.RecordStep(ctx, stepID); err != nil {
		fmt.Fprintln(a.out, "Error:", err)
		return
	}
	fmt.Fprintln(a.out, "Step reached at", timex.FormatElapsed(a.tracker.Elapsed()))
}

// recordDeath records a death at the given location, prompting for an
// optional note.
func (a *App) recordDeath(ctx context.Context, args []string) {
	if len(args) == 0 {
		fmt.Fprintln(a.out, "Usage: death <location>")
		return
	}
	if !a.tracker.IsRunning() {
		fmt.Fprintln(a.out, "No run in progress")
		return
	}
	location := strings.Join(args, " ")

	notes, err := getSimpleText(a.reader, "Notes (optional)", a.out)
	if err != nil {
		fmt.Fprintln(a.out, "Error:", err)
		return
	}

	if err := a.tracker.RecordDeath(ctx, location, notes); err != nil {
		fmt.Fprintln(a.out, "Error:", err)
		return
	}
	fmt.Fprintf(a.out, "Death at %s recorded (%s)\n", location, timex.FormatElapsed(a.tracker.Elapsed()))
}

func (a *App) editNotes(ctx context.Context) {
	notes, err := getSimpleText(a.reader, "Run notes", a.out)
	if err != nil {
		fmt.Fprintln(a.out, "Error:", err)
		return
	}
	if err := a.tracker.UpdateNotes(ctx, notes); err != nil {
		if errors.Is(err, common.ErrNoActiveRun) {
			fmt.Fprintln(a.out, "No active run")
			return
		}
		fmt.Fprintln(a.out, "Error:", err)
		return
	}
	fmt.Fprintln(a.out, "Notes saved")
}

// showStatus prints the current run: wing, status, elapsed, reached steps
// and deaths.
func (a *App) showStatus() {
	run := a.tracker.Current()
	if run == nil {
		fmt.Fprintln(a.out, "No active run")
		return
	}

	wingName := "?"
	if wing := a.tracker.Wing(); wing != nil {
		wingName = wing.Name
	}
	fmt.Fprintf(a.out, "Run #%d  %s  [%s]  %s\n",
		run.ID, wingName, run.Status, timex.FormatElapsed(a.tracker.Elapsed()))
	if run.Patch != "" {
		fmt.Fprintln(a.out, "Patch:", run.Patch)
	}
	if len(run.TeamMembers) > 0 {
		fmt.Fprintln(a.out, "Team:", strings.Join(run.TeamMembers, ", "))
	}

	names := map[int64]string{}
	for _, s := range a.tracker.Steps() {
		names[s.ID] = s.Name
	}
	for _, rs := range run.Steps {
		name := names[rs.StepID]
		if name == "" {
			name = fmt.Sprintf("step #%d", rs.StepID)
		}
		fmt.Fprintf(a.out, "  %s  %s\n", timex.FormatElapsed(rs.ReachedAt), name)
	}
	fmt.Fprintf(a.out, "Deaths: %d\n", len(run.Deaths))
	if run.Notes != "" {
		fmt.Fprintln(a.out, "Notes:", run.Notes)
	}
}
