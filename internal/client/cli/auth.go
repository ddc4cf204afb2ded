package cli

import (
	"context"
	"fmt"

	"github.com/dmitrijs2005/ideaboard/internal/common"
)

// getSimpleText, getPassword and getConfirmation are indirections used to
// facilitate testing. They point to interactive input helpers and can be
// swapped in tests.
var (
	getSimpleText   = GetSimpleText
	getPassword     = GetPassword
	getConfirmation = GetConfirmation
	getMultiline    = GetMultiline
)

// Register prompts for a username and password and creates the account, or
// replaces the password of an existing one.
//
// The password byte slice is wiped before returning.
func (a *App) Register(ctx context.Context) error {
	userName, err := getSimpleText(a.reader, "Enter username", a.out)
	if err != nil {
		return err
	}

	password, err := getPassword(a.out)
	if err != nil {
		return err
	}
	defer common.WipeByteArray(password)

	if err := a.authService.Register(ctx, userName, password); err != nil {
		return err
	}

	fmt.Fprintln(a.out, "Registered. You can log in now.")
	return nil
}

// Login prompts for credentials and opens a session. When the user asks to
// be remembered the session survives restarts.
func (a *App) Login(ctx context.Context) error {
	userName, err := getSimpleText(a.reader, "Enter username", a.out)
	if err != nil {
		return err
	}

	password, err := getPassword(a.out)
	if err != nil {
		return err
	}
	defer common.WipeByteArray(password)

	remember, err := getConfirmation(a.reader, "Remember me?", true, a.out)
	if err != nil {
		return err
	}

	s, err := a.authService.Login(ctx, userName, password, remember)
	if err != nil {
		return err
	}

	a.session = s
	a.setMode(ctx, ModeOnline)
	fmt.Fprintf(a.out, "Logged in as %s\n", s.Username)
	return nil
}

// Logout ends the session. Local state is forgotten even when the remote
// delete fails; that error is still returned.
func (a *App) Logout(ctx context.Context) error {
	err := a.authService.Logout(ctx)
	a.session = nil
	if err != nil {
		return err
	}
	fmt.Fprintln(a.out, "Logged out")
	return nil
}

// WhoAmI re-checks the current session and prints who is logged in.
func (a *App) WhoAmI(ctx context.Context) error {
	s, err := a.authService.CurrentSession(ctx)
	if err != nil {
		return err
	}
	a.session = s
	if s == nil {
		fmt.Fprintln(a.out, "Not logged in")
		return nil
	}
	fmt.Fprintf(a.out, "%s (session valid until %s)\n", s.Username, s.ExpiresAt.Local().Format("2006-01-02 15:04"))
	return nil
}

// Verify checks a username and password against the stored hash without
// logging in, and prints the stored algorithm with the outcome.
func (a *App) Verify(ctx context.Context) error {
	userName, err := getSimpleText(a.reader, "Enter username", a.out)
	if err != nil {
		return err
	}

	password, err := getPassword(a.out)
	if err != nil {
		return err
	}
	defer common.WipeByteArray(password)

	check, err := a.authService.VerifyCredentials(ctx, userName, password)
	if check != nil {
		result := "mismatch"
		if check.Match {
			result = "match"
		}
		fmt.Fprintf(a.out, "%s: algo=%s salt_len=%d hash_len=%d: %s\n",
			check.Username, check.Algo, check.SaltLen, check.HashLen, result)
	}
	return err
}

func (a *App) Ping(ctx context.Context) error {
	if err := a.authService.Ping(ctx); err != nil {
		a.setMode(ctx, ModeOffline)
		return err
	}
	a.setMode(ctx, ModeOnline)
	fmt.Fprintln(a.out, "pong")
	return nil
}

func (a *App) Migrate(ctx context.Context) error {
	if err := a.authService.Migrate(ctx); err != nil {
		return err
	}
	fmt.Fprintln(a.out, "Schema is up to date")
	return nil
}

// Reset logs out and wipes every locally stored value: session, on-device
// posts and marks, onboarding flag.
func (a *App) Reset(ctx context.Context) error {
	ok, err := getConfirmation(a.reader, "Delete all local IdeaBoard data?", false, a.out)
	if err != nil || !ok {
		return err
	}

	if err := a.authService.Logout(ctx); err != nil {
		a.logger.Warn(ctx, "logout during reset", "error", err)
	}
	a.session = nil

	if err := a.store.Reset(ctx); err != nil {
		return err
	}
	fmt.Fprintln(a.out, "Local data cleared")
	return nil
}
