package cli

import (
	"context"
	"fmt"
)

// getSimpleText and getPassword are indirections used to facilitate testing.
// They point to interactive input helpers and can be swapped in tests.
var getSimpleText = GetSimpleText
var getPassword = GetPassword

// register prompts for a username and password and creates a local account.
// On success the new account is signed in.
func (a *App) register(ctx context.Context) {
	username, err := getSimpleText(a.reader, "Choose a username", a.out)
	if err != nil {
		fmt.Fprintln(a.out, "Error:", err)
		return
	}

	password, err := getPassword("Choose a password", a.out)
	if err != nil {
		fmt.Fprintln(a.out, "Error:", err)
		return
	}

	profile, err := a.auth.SignUp(ctx, username, password)
	if err != nil {
		fmt.Fprintln(a.out, "Registration failed:", err)
		return
	}
	fmt.Fprintf(a.out, "Welcome, %s!\n", profile.Username)
}

// login prompts for credentials and signs in.
func (a *App) login(ctx context.Context) {
	username, err := getSimpleText(a.reader, "Enter username", a.out)
	if err != nil {
		fmt.Fprintln(a.out, "Error:", err)
		return
	}

	password, err := getPassword("Enter password", a.out)
	if err != nil {
		fmt.Fprintln(a.out, "Error:", err)
		return
	}

	profile, err := a.auth.SignIn(ctx, username, password)
	if err != nil {
		fmt.Fprintln(a.out, "Login failed:", err)
		return
	}
	fmt.Fprintf(a.out, "Logged in as %s\n", profile.Username)
}

func (a *App) logout(ctx context.Context) {
	a.auth.SignOut(ctx)
	fmt.Fprintln(a.out, "Logged out")
}

func (a *App) whoami() {
	p := a.auth.Current()
	if p == nil {
		fmt.Fprintln(a.out, "Not logged in")
		return
	}
	fmt.Fprintf(a.out, "%s (account #%d)\n", p.Username, p.ID)
}

// updateUsername prompts for a new username for the signed-in account.
func (a *App) updateUsername(ctx context.Context) {
	username, err := getSimpleText(a.reader, "Enter new username", a.out)
	if err != nil {
		fmt.Fprintln(a.out, "Error:", err)
		return
	}

	if err := a.auth.UpdateUsername(ctx, username); err != nil {
		fmt.Fprintln(a.out, "Update failed:", err)
		return
	}
	fmt.Fprintln(a.out, "Username updated")
}

// updatePassword verifies the current password and replaces it.
func (a *App) updatePassword(ctx context.Context) {
	current, err := getPassword("Enter current password", a.out)
	if err != nil {
		fmt.Fprintln(a.out, "Error:", err)
		return
	}

	next, err := getPassword("Enter new password", a.out)
	if err != nil {
		fmt.Fprintln(a.out, "Error:", err)
		return
	}

	if err := a.auth.UpdatePassword(ctx, current, next); err != nil {
		fmt.Fprintln(a.out, "Update failed:", err)
		return
	}
	fmt.Fprintln(a.out, "Password updated")
}
