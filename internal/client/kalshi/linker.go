// Package kalshi manages the trading-account side of the dashboard: the
// credential link lifecycle (prefill, verify, disconnect) and the paginated
// market list.
package kalshi

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/MobeenIkhtiar/kalshi-front/internal/client/api"
	"github.com/MobeenIkhtiar/kalshi-front/internal/client/models"
	"github.com/MobeenIkhtiar/kalshi-front/internal/client/session"
	"github.com/MobeenIkhtiar/kalshi-front/internal/common"
	"github.com/MobeenIkhtiar/kalshi-front/internal/logging"
)

const (
	msgConnected        = "Kalshi account connected successfully!"
	msgVerifyFailed     = "Failed to connect to Kalshi. Please check your credentials and try again."
	msgStaleCredentials = "Your Kalshi credentials are no longer valid. Please update them."
	msgDisconnectFailed = "Failed to disconnect Kalshi account"
)

// LinkState is the credential link's lifecycle position.
type LinkState int

const (
	StateUnlinked LinkState = iota
	StateVerifying
	StateLinked
)

func (s LinkState) String() string {
	switch s {
	case StateUnlinked:
		return "unlinked"
	case StateVerifying:
		return "verifying"
	case StateLinked:
		return "linked"
	}
	return "unknown"
}

// Snapshot is an immutable view of the linker.
type Snapshot struct {
	State       LinkState
	AccessKeyID string
	PrivateKey  string
	Message     string
}

// Linker owns the lifecycle of the trading credential attached to the
// current user. A successful verification is the only path through which it
// writes to the session store; failures never clear previously linked
// fields.
type Linker struct {
	api     api.Client
	session *session.Store
	log     logging.Logger

	mu          sync.Mutex
	state       LinkState
	accessKeyID string
	privateKey  string
	message     string

	inFlight     bool
	generation   uint64
	bootstrapped bool
}

func NewLinker(client api.Client, sess *session.Store, log logging.Logger) *Linker {
	return &Linker{api: client, session: sess, log: log}
}

// Snapshot returns the linker's current state.
func (l *Linker) Snapshot() Snapshot {
	l.mu.Lock()
	defer l.mu.Unlock()
	return Snapshot{
		State:       l.state,
		AccessKeyID: l.accessKeyID,
		PrivateKey:  l.privateKey,
		Message:     l.message,
	}
}

// SetCredentials updates the credential inputs. Once linked, inputs are
// frozen until an explicit Disconnect.
func (l *Linker) SetCredentials(accessKeyID, privateKey string) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.state == StateLinked {
		return common.ErrAlreadyLinked
	}
	l.accessKeyID = accessKeyID
	l.privateKey = privateKey
	return nil
}

// Bootstrap runs once when the owning view mounts: it fetches any stored raw
// credentials for prefill and, only when both halves are present,
// auto-verifies them. A failed auto-verify keeps the prefilled values and
// surfaces a message; a failed prefill fetch is logged and absorbed.
func (l *Linker) Bootstrap(ctx context.Context) {
	l.mu.Lock()
	if l.bootstrapped {
		l.mu.Unlock()
		return
	}
	l.bootstrapped = true
	l.mu.Unlock()

	creds, err := l.api.Credentials(ctx)
	if err != nil {
		l.log.Warn(ctx, "credential prefill failed", "error", err)
		return
	}

	l.mu.Lock()
	l.accessKeyID = creds.AccessKeyID
	l.privateKey = creds.PrivateKey
	both := creds.AccessKeyID != "" && creds.PrivateKey != ""
	l.mu.Unlock()

	if !both {
		return
	}

	if err := l.Verify(ctx); err != nil && !errors.Is(err, common.ErrStaleResult) {
		l.mu.Lock()
		l.message = msgStaleCredentials
		l.mu.Unlock()
	}
}

// VerificationSucceeded reports whether a verification response counts as
// success. The backend signals success with different shapes depending on
// the outcome, so the checks are ordered deliberately: the HTTP status must
// be a success, the envelope must not explicitly flag success=false, and then
// any one of the positive signals (the explicit connection flag, the
// connected status sentinel, or a nested user object) is accepted as proof.
func VerificationSucceeded(o *api.VerifyOutcome) bool {
	if o.StatusCode < 200 || o.StatusCode >= 300 {
		return false
	}
	if o.SuccessFlag != nil && !*o.SuccessFlag {
		return false
	}
	if o.ConnectionSuccessful != nil && *o.ConnectionSuccessful {
		return true
	}
	if o.KalshiStatus == api.StatusConnected {
		return true
	}
	return o.HasUser
}

// Verify submits the credential inputs to the verification endpoint. Success
// merges the credentials into the session user and latches the Linked state;
// further Verify calls are rejected until Disconnect. Failure keeps the
// inputs for correction and surfaces the upstream message. A result whose
// generation was superseded (Invalidate or Disconnect ran meanwhile) is
// discarded without touching any state.
func (l *Linker) Verify(ctx context.Context) error {
	l.mu.Lock()
	if l.state == StateLinked {
		l.mu.Unlock()
		return common.ErrAlreadyLinked
	}
	if l.inFlight {
		l.mu.Unlock()
		return common.ErrOperationInFlight
	}
	key, secret := l.accessKeyID, l.privateKey
	if key == "" || secret == "" {
		l.mu.Unlock()
		return fmt.Errorf("%w: access key id and private key are both required", common.ErrValidation)
	}
	l.inFlight = true
	l.state = StateVerifying
	gen := l.generation
	l.mu.Unlock()

	outcome, err := l.api.VerifyConnection(ctx, key, secret)

	l.mu.Lock()
	defer l.mu.Unlock()
	l.inFlight = false

	if gen != l.generation {
		l.log.Debug(ctx, "verification result discarded", "generation", gen)
		return common.ErrStaleResult
	}

	if err != nil {
		l.state = StateUnlinked
		l.message = verifyFailureMessage(err)
		return errors.New(l.message)
	}

	if !VerificationSucceeded(outcome) {
		l.state = StateUnlinked
		msg := outcome.Message
		if msg == "" {
			msg = msgVerifyFailed
		}
		l.message = msg
		return errors.New(msg)
	}

	l.state = StateLinked
	l.message = msgConnected
	l.session.UpdateUser(models.UserPatch{
		KalshiAccessKeyID: &key,
		KalshiPrivateKey:  &secret,
	})
	l.log.Info(ctx, "kalshi account linked")
	return nil
}

// Invalidate discards the result of any in-flight verification, for callers
// whose initiating context goes away mid-request (e.g. navigating off the
// settings view). Linked state is not affected.
func (l *Linker) Invalidate() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.generation++
	if l.state == StateVerifying {
		l.state = StateUnlinked
	}
}

// Disconnect unlinks the trading account: it calls the backend, clears the
// inputs and message, and removes the credential fields from the session
// user. Any in-flight verification result is superseded. Without a linked
// account there is nothing to undo and no request is made.
func (l *Linker) Disconnect(ctx context.Context) error {
	l.mu.Lock()
	linked := l.state == StateLinked
	l.mu.Unlock()
	if !linked {
		return common.ErrNotLinked
	}

	if err := l.api.Disconnect(ctx); err != nil {
		return verifyFailure(err, msgDisconnectFailed)
	}

	l.mu.Lock()
	l.generation++
	l.state = StateUnlinked
	l.accessKeyID = ""
	l.privateKey = ""
	l.message = ""
	l.mu.Unlock()

	l.session.UpdateUser(models.UserPatch{
		KalshiAccessKeyID: models.Ptr(""),
		KalshiPrivateKey:  models.Ptr(""),
	})
	l.log.Info(ctx, "kalshi account unlinked")
	return nil
}

// Status fetches the backend's view of the connection.
func (l *Linker) Status(ctx context.Context) (*api.ConnectionStatus, error) {
	return l.api.ConnectionStatus(ctx)
}

// Balance returns the linked account's balance in cents.
func (l *Linker) Balance(ctx context.Context) (int64, error) {
	return l.api.Balance(ctx)
}

func verifyFailureMessage(err error) string {
	var apiErr *api.APIError
	if errors.As(err, &apiErr) && apiErr.Message != "" {
		return apiErr.Message
	}
	return msgVerifyFailed
}

func verifyFailure(err error, fallback string) error {
	var apiErr *api.APIError
	if errors.As(err, &apiErr) && apiErr.Message != "" {
		return errors.New(apiErr.Message)
	}
	return fmt.Errorf("%s: %w", fallback, err)
}
