package cli

import (
	"context"
	"fmt"

	"github.com/dmitrijs2005/postboard/internal/client/guard"
)

// getSimpleText, getPassword and getMultiline are indirections used to
// facilitate testing.
var (
	getSimpleText = GetSimpleText
	getPassword   = GetPassword
	getMultiline  = GetMultiline
)

// Login prompts for credentials and opens the board on success.
func (a *App) Login(ctx context.Context) error {
	email, password, err := a.promptCredentials()
	if err != nil {
		return err
	}
	u, err := a.session.Login(ctx, email, password)
	if err != nil {
		return err
	}
	printlnFn(fmt.Sprintf("Logged in as %s", u.Email))
	return a.Go(ctx, "/home")
}

// AdminLogin is Login against the admin endpoint and opens the dashboard.
func (a *App) AdminLogin(ctx context.Context) error {
	email, password, err := a.promptCredentials()
	if err != nil {
		return err
	}
	u, err := a.session.AdminLogin(ctx, email, password)
	if err != nil {
		return err
	}
	printlnFn(fmt.Sprintf("Logged in as administrator %s", u.Email))
	return a.Go(ctx, "/admin")
}

func (a *App) promptCredentials() (string, string, error) {
	email, err := getSimpleText(a.reader, "Enter email", a.out)
	if err != nil {
		return "", "", err
	}
	password, err := getPassword(a.reader, "Enter password", a.out)
	if err != nil {
		return "", "", err
	}
	return email, password, nil
}

// Register creates an account. The user still has to log in afterwards.
func (a *App) Register(ctx context.Context) error {
	email, err := getSimpleText(a.reader, "Enter email", a.out)
	if err != nil {
		return err
	}
	name, err := getSimpleText(a.reader, "Enter display name", a.out)
	if err != nil {
		return err
	}
	password, err := getPassword(a.reader, "Enter password (at least 8 characters)", a.out)
	if err != nil {
		return err
	}

	if _, err := a.session.Register(ctx, email, password, name); err != nil {
		return err
	}
	printlnFn("Account created. Please log in.")
	return a.Go(ctx, guard.LoginPath)
}

// Logout never fails locally.
func (a *App) Logout(ctx context.Context) error {
	a.session.Logout(ctx)
	printlnFn("Logged out.")
	return a.Go(ctx, guard.LoginPath)
}

func (a *App) ForgotPassword(ctx context.Context) error {
	email, err := getSimpleText(a.reader, "Enter the email of your account", a.out)
	if err != nil {
		return err
	}
	msg, err := a.session.ForgotPassword(ctx, email)
	if err != nil {
		return err
	}
	printlnFn(msg)
	return nil
}

func (a *App) ResetPassword(ctx context.Context) error {
	token, err := getSimpleText(a.reader, "Enter reset token", a.out)
	if err != nil {
		return err
	}
	password, err := getPassword(a.reader, "Enter new password", a.out)
	if err != nil {
		return err
	}
	msg, err := a.session.ResetPassword(ctx, token, password)
	if err != nil {
		return err
	}
	printlnFn(msg)
	return a.Go(ctx, guard.LoginPath)
}

func (a *App) ChangePassword(ctx context.Context) error {
	current, err := getPassword(a.reader, "Enter current password", a.out)
	if err != nil {
		return err
	}
	next, err := getPassword(a.reader, "Enter new password", a.out)
	if err != nil {
		return err
	}
	if err := a.session.ChangePassword(ctx, current, next); err != nil {
		return err
	}
	printlnFn("Password changed.")
	return nil
}

// EditProfile updates display name and bio, then shows My page.
func (a *App) EditProfile(ctx context.Context) error {
	name, err := getSimpleText(a.reader, "Enter display name", a.out)
	if err != nil {
		return err
	}
	bio, err := getMultiline(a.reader, "Enter bio", a.out)
	if err != nil {
		return err
	}
	if _, err := a.session.UpdateProfile(ctx, name, bio); err != nil {
		return err
	}
	printlnFn("Profile saved.")
	return a.Go(ctx, "/my-page")
}

// Refresh re-reads the account from the backend and re-renders the current page.
func (a *App) Refresh(ctx context.Context) error {
	if _, err := a.session.Refresh(ctx); err != nil {
		return err
	}
	path := "/home"
	if a.current != nil {
		path = a.current.Path
	}
	return a.Go(ctx, path)
}

func (a *App) WhoAmI(context.Context) error {
	snap := a.session.Snapshot()
	if !snap.IsAuthenticated() {
		printlnFn("Not logged in.")
		return nil
	}
	printUser(snap.User)
	return nil
}
