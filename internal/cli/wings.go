package cli

import (
	"context"
	"fmt"
	"strconv"
	"strings"
)

func parseID(args []string) (int64, bool) {
	if len(args) == 0 {
		return 0, false
	}
	id, err := strconv.ParseInt(args[0], 10, 64)
	if err != nil {
		return 0, false
	}
	return id, true
}

func (a *App) listWings(ctx context.Context) {
	wings, err := a.wings.List(ctx)
	if err != nil {
		fmt.Fprintln(a.out, "Error:", err)
		return
	}
	for _, w := range wings {
		fmt.Fprintf(a.out, "%3d  %-28s %s\n", w.ID, w.Name, strings.Join(w.Bosses, ", "))
	}
}

func (a *App) listSteps(ctx context.Context, args []string) {
	wingID, ok := parseID(args)
	if !ok {
		fmt.Fprintln(a.out, "Usage: steps <wingID>")
		return
	}

	steps, err := a.steps.ListForWing(ctx, wingID)
	if err != nil {
		fmt.Fprintln(a.out, "Error:", err)
		return
	}
	if len(steps) == 0 {
		fmt.Fprintln(a.out, "No steps defined for this wing")
		return
	}
	for _, s := range steps {
		fmt.Fprintf(a.out, "%3d  %2d. %s\n", s.ID, s.Position+1, s.Name)
	}
}

// addStep appends a milestone to a wing, prompting for name and description.
func (a *App) addStep(ctx context.Context, args []string) {
	wingID, ok := parseID(args)
	if !ok {
		fmt.Fprintln(a.out, "Usage: addstep <wingID>")
		return
	}

	name, err := getSimpleText(a.reader, "Step name", a.out)
	if err != nil {
		fmt.Fprintln(a.out, "Error:", err)
		return
	}
	description, err := getSimpleText(a.reader, "Description (optional)", a.out)
	if err != nil {
		fmt.Fprintln(a.out, "Error:", err)
		return
	}

	id, err := a.tracker.AddStep(ctx, wingID, name, description)
	if err != nil {
		fmt.Fprintln(a.out, "Error:", err)
		return
	}
	fmt.Fprintf(a.out, "Step #%d added\n", id)
}
