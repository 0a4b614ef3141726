package cli

import (
	"context"
	"os"

	"github.com/MobeenIkhtiar/kalshi-front/internal/client/models"
	"github.com/MobeenIkhtiar/kalshi-front/internal/shared"
)

// Profile prints the signed-in user's profile details.
func (a *App) Profile(ctx context.Context) error {
	return a.guarded(ctx, "profile", func(ctx context.Context) error {
		u := a.session.Snapshot().User
		printlnFn("Username:", u.Username)
		printlnFn("Email:   ", u.Email)
		if u.KalshiAccessKeyID != "" {
			printlnFn("Trading account key:", u.KalshiAccessKeyID)
		} else {
			printlnFn("Trading account: not linked")
		}
		return nil
	})
}

// UpdateProfile prompts for a new username and email, leaving a field
// unchanged when the input is empty, and submits the patch.
func (a *App) UpdateProfile(ctx context.Context) error {
	return a.guarded(ctx, "profile", func(ctx context.Context) error {
		username, err := getSimpleText(a.reader, "New username (empty to keep)", os.Stdout)
		if err != nil {
			return err
		}

		email, err := getSimpleText(a.reader, "New email (empty to keep)", os.Stdout)
		if err != nil {
			return err
		}

		var patch models.UserPatch
		if username != "" {
			patch.Username = models.Ptr(username)
		}
		if email != "" {
			patch.Email = models.Ptr(email)
		}
		if patch == (models.UserPatch{}) {
			printlnFn("Nothing to update.")
			return nil
		}

		if err := a.session.UpdateProfile(ctx, patch); err != nil {
			printlnFn(err.Error())
			return nil
		}
		printlnFn("Profile updated.")
		return nil
	})
}

// ChangePassword prompts for the current and a new password and submits the
// change. Both passwords are securely wiped before returning.
func (a *App) ChangePassword(ctx context.Context) error {
	return a.guarded(ctx, "profile", func(ctx context.Context) error {
		current, err := getPassword(os.Stdout, "Current password")
		if err != nil {
			return err
		}
		defer shared.WipeByteArray(current)

		next, err := getPassword(os.Stdout, "New password")
		if err != nil {
			return err
		}
		defer shared.WipeByteArray(next)

		if err := a.session.ChangePassword(ctx, string(current), string(next)); err != nil {
			printlnFn(err.Error())
			return nil
		}
		printlnFn("Password changed.")
		return nil
	})
}
