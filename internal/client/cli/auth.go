package cli

import (
	"context"
	"os"

	"github.com/MobeenIkhtiar/kalshi-front/internal/shared"
)

// getSimpleText and getPassword are indirections used to facilitate testing.
// They point to interactive input helpers and can be swapped in tests.
var getSimpleText = GetSimpleText
var getPassword = GetPassword

// Register prompts the user for a username, email, and password and attempts
// to create a new account. A successful registration signs the user in
// immediately, so the trading-account linker is bootstrapped right after.
//
// The password byte slice is securely wiped before returning. Any I/O error
// is returned unchanged; a rejected registration is reported to the user and
// returns nil so the REPL keeps running.
func (a *App) Register(ctx context.Context) error {
	username, err := getSimpleText(a.reader, "Enter username", os.Stdout)
	if err != nil {
		return err
	}

	email, err := getSimpleText(a.reader, "Enter email", os.Stdout)
	if err != nil {
		return err
	}

	password, err := getPassword(os.Stdout, "Enter password")
	if err != nil {
		return err
	}
	defer shared.WipeByteArray(password)

	if err := a.session.Register(ctx, username, email, string(password)); err != nil {
		printlnFn(err.Error())
		return nil
	}

	printlnFn("Success!")
	a.linker.Bootstrap(ctx)
	return nil
}

// Login prompts the user for credentials and tries to authenticate. On
// success the trading-account linker is bootstrapped so stored credentials
// are prefilled and re-verified.
//
// The password is securely wiped before returning. A rejected login is
// reported to the user and returns nil; only I/O errors are propagated.
func (a *App) Login(ctx context.Context) error {
	email, err := getSimpleText(a.reader, "Enter email", os.Stdout)
	if err != nil {
		return err
	}

	password, err := getPassword(os.Stdout, "Enter password")
	if err != nil {
		return err
	}
	defer shared.WipeByteArray(password)

	if err := a.session.Login(ctx, email, string(password)); err != nil {
		printlnFn(err.Error())
		return nil
	}

	a.log.Info(ctx, "login successful")
	a.linker.Bootstrap(ctx)
	return nil
}

// Whoami prints the signed-in user and, when the access token carries an
// expiry claim, when the token runs out.
func (a *App) Whoami(ctx context.Context) error {
	return a.guarded(ctx, "whoami", func(ctx context.Context) error {
		st := a.session.Snapshot()
		printlnFn("Signed in as:", st.User.Username, "<"+st.User.Email+">")
		if exp, ok := a.session.TokenExpiry(); ok {
			printlnFn("Token expires:", exp.Format("2006-01-02 15:04:05 MST"))
		}
		return nil
	})
}

// Logout clears the session and the locally persisted token.
func (a *App) Logout(ctx context.Context) error {
	if err := a.session.Logout(ctx); err != nil {
		return err
	}
	printlnFn("Logged out.")
	return nil
}
