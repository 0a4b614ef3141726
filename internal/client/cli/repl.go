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
	Register(ctx context.Context) error
	Login(ctx context.Context) error
	Whoami(ctx context.Context) error
	Profile(ctx context.Context) error
	UpdateProfile(ctx context.Context) error
	ChangePassword(ctx context.Context) error
	Link(ctx context.Context) error
	Unlink(ctx context.Context) error
	LinkStatus(ctx context.Context) error
	Balance(ctx context.Context) error
	Markets(ctx context.Context) error
	NextPage(ctx context.Context) error
	PrevPage(ctx context.Context) error
	Logout(ctx context.Context) error
}

// runREPL starts a simple read-eval-print loop for the dashboard CLI.
//
// It reads a line from the provided scanner, parses the first token as the
// command, and dispatches to methods on 'a'. Unknown commands are reported
// back to the user. The loop exits on scanner EOF or when the user types
// "exit" or "quit".
//
// Prompt & Commands
//
// The prompt shows the current status (from statusFn) and accepts commands:
//
//	Not logged in:
//	  - help           show available commands
//	  - register       create an account
//	  - login          authenticate
//	  - exit | quit    leave the program
//
//	Logged in:
//	  - help           show available commands
//	  - whoami         show the signed-in user and token expiry
//	  - profile        show profile details
//	  - update         edit username or email
//	  - passwd         change the account password
//	  - link           enter and verify trading credentials
//	  - unlink         disconnect the trading account
//	  - status         show the trading-account link status
//	  - balance        show the trading-account balance
//	  - (m)arkets      show the first page of markets
//	  - (n)ext         show the next page of markets
//	  - (p)rev         show the previous page of markets
//	  - logout         log out
//	  - exit | quit    leave the program
//
// Any errors returned by command handlers are ignored here; handlers should
// log their own errors. This keeps the REPL loop resilient and focused on I/O.
func runREPL(ctx context.Context, a execIface, statusFn func() string, scanner *bufio.Scanner) {
	for {
		printlnFn(fmt.Sprintf("dash %s> ", statusFn()))
		if !scanner.Scan() {
			return
		}
		line := scanner.Text()
		parts := strings.Fields(line)
		if len(parts) == 0 {
			continue
		}
		cmd := parts[0]

		switch cmd {
		case "help":
			if a.isLoggedIn() {
				printlnFn("Available commands: whoami, profile, update, passwd, link, unlink, status, balance, (m)arkets, (n)ext, (p)rev, logout, exit")
			} else {
				printlnFn("Available commands: register, login, exit")
			}

		case "register":
			_ = a.Register(ctx)

		case "login":
			_ = a.Login(ctx)

		case "whoami":
			_ = a.Whoami(ctx)

		case "profile":
			_ = a.Profile(ctx)

		case "update":
			_ = a.UpdateProfile(ctx)

		case "passwd":
			_ = a.ChangePassword(ctx)

		case "link":
			_ = a.Link(ctx)

		case "unlink":
			_ = a.Unlink(ctx)

		case "status":
			_ = a.LinkStatus(ctx)

		case "balance":
			_ = a.Balance(ctx)

		case "m", "markets":
			_ = a.Markets(ctx)

		case "n", "next":
			_ = a.NextPage(ctx)

		case "p", "prev":
			_ = a.PrevPage(ctx)

		case "logout":
			_ = a.Logout(ctx)

		case "exit", "quit":
			printlnFn("Bye!")
			return

		default:
			printlnFn("Unknown command:", cmd)
		}
	}
}
