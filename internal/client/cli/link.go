package cli

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/MobeenIkhtiar/kalshi-front/internal/client/kalshi"
	"github.com/MobeenIkhtiar/kalshi-front/internal/common"
)

// Link prompts for trading-account credentials and verifies them against the
// backend. Stored credentials are offered as the default so a returning user
// can re-verify by pressing Enter twice.
func (a *App) Link(ctx context.Context) error {
	return a.guarded(ctx, "link", func(ctx context.Context) error {
		snap := a.linker.Snapshot()
		if snap.State == kalshi.StateLinked {
			printlnFn("Trading account is already linked.")
			return nil
		}

		prompt := "Access key ID"
		if snap.AccessKeyID != "" {
			prompt = fmt.Sprintf("Access key ID (empty to keep %s)", snap.AccessKeyID)
		}
		accessKeyID, err := getSimpleText(a.reader, prompt, os.Stdout)
		if err != nil {
			return err
		}
		if accessKeyID == "" {
			accessKeyID = snap.AccessKeyID
		}

		privateKey, err := GetMultiline(a.reader, "Private key (PEM)", os.Stdout)
		if err != nil {
			return err
		}
		if privateKey == "" {
			privateKey = snap.PrivateKey
		}

		if err := a.linker.SetCredentials(accessKeyID, privateKey); err != nil {
			printlnFn(err.Error())
			return nil
		}

		printlnFn("Verifying...")
		if err := a.linker.Verify(ctx); err != nil {
			if errors.Is(err, common.ErrOperationInFlight) {
				printlnFn("A verification is already running.")
				return nil
			}
			printlnFn(err.Error())
			return nil
		}

		printlnFn(a.linker.Snapshot().Message)
		return nil
	})
}

// Unlink disconnects the trading account and clears the stored credentials.
func (a *App) Unlink(ctx context.Context) error {
	return a.guarded(ctx, "link", func(ctx context.Context) error {
		if err := a.linker.Disconnect(ctx); err != nil {
			if errors.Is(err, common.ErrNotLinked) {
				printlnFn("No trading account is linked.")
				return nil
			}
			printlnFn(err.Error())
			return nil
		}
		printlnFn("Trading account disconnected.")
		return nil
	})
}

// LinkStatus prints the local link state and the backend's view of it.
func (a *App) LinkStatus(ctx context.Context) error {
	return a.guarded(ctx, "link", func(ctx context.Context) error {
		snap := a.linker.Snapshot()
		printlnFn("Link state:", snap.State.String())
		if snap.Message != "" {
			printlnFn("Last message:", snap.Message)
		}

		st, err := a.linker.Status(ctx)
		if err != nil {
			printlnFn("Backend status unavailable:", err.Error())
			return nil
		}
		printlnFn("Backend reports connected:", st.Connected)
		if st.KalshiStatus != "" {
			printlnFn("Exchange status:", st.KalshiStatus)
		}
		return nil
	})
}

// Balance prints the trading-account balance in dollars.
func (a *App) Balance(ctx context.Context) error {
	return a.guarded(ctx, "link", func(ctx context.Context) error {
		cents, err := a.linker.Balance(ctx)
		if err != nil {
			printlnFn(err.Error())
			return nil
		}
		printlnFn(fmt.Sprintf("Balance: $%d.%02d", cents/100, cents%100))
		return nil
	})
}
