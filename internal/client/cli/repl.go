package cli

import (
	"bufio"
	"context"
	"fmt"
	"strings"
)

// printlnFn is a test seam for user-facing output. In tests, replace it with a stub.
var printlnFn = fmt.Println

// execIface defines the minimal command surface the REPL needs to operate.
// The real App type satisfies this interface; tests can provide a lightweight stub.
type execIface interface {
	isLoggedIn() bool
	handleError(ctx context.Context, err error)

	Go(ctx context.Context, path string) error
	Login(ctx context.Context) error
	AdminLogin(ctx context.Context) error
	Register(ctx context.Context) error
	Logout(ctx context.Context) error
	ForgotPassword(ctx context.Context) error
	ResetPassword(ctx context.Context) error
	ChangePassword(ctx context.Context) error
	EditProfile(ctx context.Context) error
	Refresh(ctx context.Context) error
	WhoAmI(ctx context.Context) error
}

// runREPL reads commands from reader and dispatches them to a until EOF or
// "exit"/"quit". Every command result goes through a.handleError, which is
// the single place that reacts to a forced logout.
//
//	Always:
//	  - help           — show available commands
//	  - go <path>      — open a page (/home, /admin, /posts/42, ...)
//	  - whoami         — show the current session
//	  - exit | quit    — leave the program
//
//	Not logged in:
//	  - login, admin-login, register, forgot, reset
//
//	Logged in:
//	  - profile, passwd, refresh, logout
//
// Commands share reader with the prompts they trigger, so piped input is
// consumed one line at a time in order.
func runREPL(ctx context.Context, a execIface, statusFn func() string, reader *bufio.Reader) {
	for {
		printlnFn(fmt.Sprintf("board %s> ", statusFn()))
		line, readErr := reader.ReadString('\n')
		if readErr != nil && line == "" {
			return
		}
		parts := strings.Fields(line)
		if len(parts) == 0 {
			continue
		}
		cmd, args := parts[0], parts[1:]

		var err error
		switch cmd {
		case "help":
			if a.isLoggedIn() {
				printlnFn("Available commands: go <path>, whoami, profile, passwd, refresh, logout, exit")
			} else {
				printlnFn("Available commands: go <path>, whoami, login, admin-login, register, forgot, reset, exit")
			}

		case "go":
			if len(args) == 0 {
				printlnFn("Usage: go <path>")
				continue
			}
			err = a.Go(ctx, args[0])

		case "login":
			err = a.Login(ctx)
		case "admin-login":
			err = a.AdminLogin(ctx)
		case "register":
			err = a.Register(ctx)
		case "logout":
			err = a.Logout(ctx)
		case "forgot":
			err = a.ForgotPassword(ctx)
		case "reset":
			err = a.ResetPassword(ctx)
		case "passwd":
			err = a.ChangePassword(ctx)
		case "profile":
			err = a.EditProfile(ctx)
		case "refresh":
			err = a.Refresh(ctx)
		case "whoami":
			err = a.WhoAmI(ctx)

		case "exit", "quit":
			printlnFn("Bye!")
			return

		default:
			printlnFn("Unknown command:", cmd)
			continue
		}

		a.handleError(ctx, err)
	}
}
