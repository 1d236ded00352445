package cli

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"strings"
)

// stdinSource is a test seam for the REPL's input stream.
var stdinSource io.Reader = os.Stdin

// getStatus builds the prompt decoration: signed-in user, current wing and
// live elapsed time when a run is being tracked.
func (a *App) getStatus() string {
	parts := []string{}
	if a.userName != "" {
		parts = append(parts, a.userName)
	}
	if wing := a.tracker.Wing(); wing != nil {
		parts = append(parts, wing.Name)
		if a.tracker.IsRunning() {
			if e, ok := a.elapsedText.Load().(string); ok && e != "" {
				parts = append(parts, e)
			}
		} else if a.tracker.IsPaused() {
			parts = append(parts, "paused")
		}
	}
	if len(parts) == 0 {
		return ""
	}
	return fmt.Sprintf("(%s)", strings.Join(parts, " "))
}

func (a *App) printHelp() {
	fmt.Fprintln(a.out, "Run tracking: wings, steps <wingID>, start <wingID>, pause, resume, step <stepID>, death <location>, notes, complete, fail, status")
	fmt.Fprintln(a.out, "History & analytics: history <wingID>, patches, stats <wingID>, timings <runID>")
	fmt.Fprintln(a.out, "Data: addstep <wingID>, export [file]")
	if a.isLoggedIn() {
		fmt.Fprintln(a.out, "Account: whoami, setname, setpass, logout, exit")
	} else {
		fmt.Fprintln(a.out, "Account: register, login, exit")
	}
}

// Root runs the read-eval-print loop. Command handlers report their errors as
// messages; the loop itself never fails.
func (a *App) Root(ctx context.Context) {
	fmt.Fprintln(a.out, "Welcome to raidtracker (type 'help' for commands)")
	scanner := bufio.NewScanner(stdinSource)

	for {
		fmt.Fprintf(a.out, "rt %s> ", a.getStatus())
		if !scanner.Scan() {
			break
		}
		line := scanner.Text()
		parts := strings.Fields(line)
		if len(parts) == 0 {
			continue
		}

		cmd := parts[0]
		args := parts[1:]

		switch cmd {
		case "help":
			a.printHelp()

		case "register":
			a.register(ctx)
		case "login":
			a.login(ctx)
		case "logout":
			a.logout(ctx)
		case "whoami":
			a.whoami()
		case "setname":
			a.updateUsername(ctx)
		case "setpass":
			a.updatePassword(ctx)

		case "wings":
			a.listWings(ctx)
		case "steps":
			a.listSteps(ctx, args)
		case "addstep":
			a.addStep(ctx, args)

		case "start":
			a.startRun(ctx, args)
		case "pause":
			a.pauseRun(ctx)
		case "resume":
			a.resumeRun(ctx)
		case "complete":
			a.completeRun(ctx)
		case "fail":
			a.failRun(ctx)
		case "step":
			a.recordStep(ctx, args)
		case "death":
			a.recordDeath(ctx, args)
		case "notes":
			a.editNotes(ctx)
		case "status":
			a.showStatus()

		case "history":
			a.showHistory(ctx, args)
		case "patches":
			a.listPatches(ctx)
		case "stats":
			a.showStats(ctx, args)
		case "timings":
			a.showTimings(ctx, args)

		case "export":
			a.exportData(ctx, args)

		case "exit", "quit":
			fmt.Fprintln(a.out, "Bye!")
			return

		default:
			fmt.Fprintln(a.out, "Unknown command:", cmd)
		}
	}
}
