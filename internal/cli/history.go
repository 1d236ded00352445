package cli

import (
	"context"
	"fmt"

	"github.com/dmitrijs2005/raidtracker/internal/timex"
)

// showHistory lists the runs recorded for a wing, newest first.
func (a *App) showHistory(ctx context.Context, args []string) {
	wingID, ok := parseID(args)
	if !ok {
		fmt.Fprintln(a.out, "Usage: history <wingID>")
		return
	}

	runs, err := a.runs.ListForWing(ctx, wingID)
	if err != nil {
		fmt.Fprintln(a.out, "Error:", err)
		return
	}
	if len(runs) == 0 {
		fmt.Fprintln(a.out, "No runs recorded for this wing")
		return
	}

	for _, r := range runs {
		total := "-"
		if r.TotalTime != nil {
			total = timex.FormatLong(*r.TotalTime)
		}
		patch := r.Patch
		if patch == "" {
			patch = "-"
		}
		fmt.Fprintf(a.out, "%4d  %s  %-11s %9s  patch %s\n",
			r.ID, timex.FormatDate(r.StartTime), r.Status, total, patch)
	}
}

func (a *App) listPatches(ctx context.Context) {
	patches, err := a.runs.Patches(ctx)
	if err != nil {
		fmt.Fprintln(a.out, "Error:", err)
		return
	}
	if len(patches) == 0 {
		fmt.Fprintln(a.out, "No patch versions recorded")
		return
	}
	for _, p := range patches {
		fmt.Fprintln(a.out, p)
	}
}

// showStats prints the aggregate analytics for a wing: average completion
// time, success rate, average deaths, hotspots and progress over time.
func (a *App) showStats(ctx context.Context, args []string) {
	wingID, ok := parseID(args)
	if !ok {
		fmt.Fprintln(a.out, "Usage: stats <wingID>")
		return
	}

	avg, err := a.analytics.AverageCompletionTime(ctx, wingID)
	if err != nil {
		fmt.Fprintln(a.out, "Error:", err)
		return
	}
	if avg == nil {
		fmt.Fprintln(a.out, "Average completion time: no completed runs")
	} else {
		fmt.Fprintln(a.out, "Average completion time:", timex.FormatLong(*avg))
	}

	rate, err := a.analytics.SuccessRate(ctx, wingID)
	if err != nil {
		fmt.Fprintln(a.out, "Error:", err)
		return
	}
	if rate == nil {
		fmt.Fprintln(a.out, "Success rate: no finished runs")
	} else {
		fmt.Fprintf(a.out, "Success rate: %.1f%%\n", *rate)
	}

	deaths, err := a.analytics.AverageDeaths(ctx, wingID)
	if err != nil {
		fmt.Fprintln(a.out, "Error:", err)
		return
	}
	if deaths == nil {
		fmt.Fprintln(a.out, "Average deaths: no runs")
	} else {
		fmt.Fprintf(a.out, "Average deaths: %.1f\n", *deaths)
	}

	hotspots, err := a.analytics.DeathHotspots(ctx, wingID)
	if err != nil {
		fmt.Fprintln(a.out, "Error:", err)
		return
	}
	if len(hotspots) > 0 {
		fmt.Fprintln(a.out, "Death hotspots:")
		for location, count := range hotspots {
			fmt.Fprintf(a.out, "  %-24s %d\n", location, count)
		}
	}

	points, err := a.analytics.ProgressOverTime(ctx, wingID)
	if err != nil {
		fmt.Fprintln(a.out, "Error:", err)
		return
	}
	if len(points) > 0 {
		fmt.Fprintln(a.out, "Completion times:")
		for _, p := range points {
			fmt.Fprintf(a.out, "  %s  %s\n", p.Date, timex.FormatLong(p.Time))
		}
	}
}

// showTimings prints per-step split times for one run.
func (a *App) showTimings(ctx context.Context, args []string) {
	runID, ok := parseID(args)
	if !ok {
		fmt.Fprintln(a.out, "Usage: timings <runID>")
		return
	}

	timings, err := a.analytics.StepTimings(ctx, runID)
	if err != nil {
		fmt.Fprintln(a.out, "Error:", err)
		return
	}
	if len(timings) == 0 {
		fmt.Fprintln(a.out, "No step timings recorded for this run")
		return
	}

	run, err := a.runs.Get(ctx, runID)
	if err != nil {
		fmt.Fprintln(a.out, "Error:", err)
		return
	}

	names := map[int64]string{}
	if run != nil {
		steps, err := a.steps.ListForWing(ctx, run.RaidWingID)
		if err == nil {
			for _, s := range steps {
				names[s.ID] = s.Name
			}
		}
	}

	for _, tm := range timings {
		name := names[tm.StepID]
		if name == "" {
			name = fmt.Sprintf("step #%d", tm.StepID)
		}
		fmt.Fprintf(a.out, "  %-28s %s\n", name, timex.FormatElapsed(tm.Time))
	}
}
