// Package session owns the authenticated identity of the running client:
// the bearer token, the user record, and their shared lifecycle. Every other
// component reads session state through Snapshot and mutates it only through
// the operations defined here.
package session

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/MobeenIkhtiar/kalshi-front/internal/client/api"
	"github.com/MobeenIkhtiar/kalshi-front/internal/client/models"
	"github.com/MobeenIkhtiar/kalshi-front/internal/common"
	"github.com/MobeenIkhtiar/kalshi-front/internal/logging"
)

// MinPasswordLength is enforced locally before any request is issued.
const MinPasswordLength = 6

// TokenStore persists the bearer token across process runs.
//
// Contract: Load returns ("", nil) when no token is stored.
type TokenStore interface {
	Load(ctx context.Context) (string, error)
	Save(ctx context.Context, token string) error
	Clear(ctx context.Context) error
}

// State is an immutable view of the session at one point in time.
type State struct {
	Token   string
	User    *models.User
	Loading bool
}

// Authenticated reports whether the session holds both a token and a user.
// It is always derived, never stored, so the two fields cannot diverge from it.
func (s State) Authenticated() bool {
	return s.Token != "" && s.User != nil
}

// Store is the single source of truth for "who is logged in".
type Store struct {
	api    api.Client
	tokens TokenStore
	log    logging.Logger

	mu      sync.RWMutex
	token   string
	user    *models.User
	loading bool

	initOnce sync.Once

	// authBusy rejects overlapping login/register calls; both write the
	// same state slice.
	authBusy atomic.Bool
}

// NewStore builds a Store in the loading state. Call Initialize exactly once
// at startup to resolve it.
func NewStore(client api.Client, tokens TokenStore, log logging.Logger) *Store {
	return &Store{
		api:     client,
		tokens:  tokens,
		log:     log,
		loading: true,
	}
}

// Snapshot returns the current session state.
func (s *Store) Snapshot() State {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return State{Token: s.token, User: s.user, Loading: s.loading}
}

// Token returns the current bearer token, empty when unauthenticated.
// It is the TokenProvider handed to the API client.
func (s *Store) Token() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.token
}

// Initialize resolves the session from the persisted token. With no stored
// token it resolves immediately to unauthenticated, without a network call.
// With one, the profile endpoint decides: success keeps the token and adopts
// the fetched user; any failure clears the persisted token and resolves to
// unauthenticated. Failures are absorbed, never surfaced: a rejected stored
// token is indistinguishable from "never logged in".
//
// Initialize runs its body at most once; Loading flips to false exactly once
// and never becomes true again.
func (s *Store) Initialize(ctx context.Context) {
	s.initOnce.Do(func() { s.initialize(ctx) })
}

func (s *Store) initialize(ctx context.Context) {
	defer func() {
		s.mu.Lock()
		s.loading = false
		s.mu.Unlock()
	}()

	stored, err := s.tokens.Load(ctx)
	if err != nil {
		s.log.Warn(ctx, "failed to read persisted token", "error", err)
		return
	}
	if stored == "" {
		return
	}

	// The token must be visible to the API client before the probe.
	s.mu.Lock()
	s.token = stored
	s.mu.Unlock()

	user, err := s.api.Profile(ctx)
	if err != nil {
		s.log.Warn(ctx, "stored token rejected, clearing it", "error", err)
		if clearErr := s.tokens.Clear(ctx); clearErr != nil {
			s.log.Error(ctx, "failed to clear persisted token", "error", clearErr)
		}
		s.mu.Lock()
		s.token = ""
		s.user = nil
		s.mu.Unlock()
		return
	}

	s.mu.Lock()
	s.user = user
	s.mu.Unlock()
	s.log.Info(ctx, "session restored", "user", user.Username)
}

// Login authenticates against the backend. On success the returned token is
// persisted and a secondary profile fetch obtains the canonical sanitized
// user record; if that fetch fails the user from the login response is used
// instead and the session still becomes authenticated. On failure the session
// is left unchanged and the returned error carries the upstream message when
// one was present, a generic one otherwise.
func (s *Store) Login(ctx context.Context, email, password string) error {
	if !s.authBusy.CompareAndSwap(false, true) {
		return common.ErrOperationInFlight
	}
	defer s.authBusy.Store(false)

	res, err := s.api.Login(ctx, email, password)
	if err != nil {
		return failureMessage(err, "Login failed")
	}

	s.adoptAuthResult(ctx, res)
	s.log.Info(ctx, "logged in", "user", res.User.Username)
	return nil
}

// Register creates an account and logs it in, with the same contract as
// Login. The password length is validated locally before any request.
func (s *Store) Register(ctx context.Context, username, email, password string) error {
	if len(password) < MinPasswordLength {
		return fmt.Errorf("%w: password must be at least %d characters long", common.ErrValidation, MinPasswordLength)
	}

	if !s.authBusy.CompareAndSwap(false, true) {
		return common.ErrOperationInFlight
	}
	defer s.authBusy.Store(false)

	res, err := s.api.Register(ctx, username, email, password)
	if err != nil {
		return failureMessage(err, "Registration failed")
	}

	s.adoptAuthResult(ctx, res)
	s.log.Info(ctx, "registered", "user", res.User.Username)
	return nil
}

// adoptAuthResult persists the token, then swaps in the canonical profile
// when the secondary fetch succeeds.
func (s *Store) adoptAuthResult(ctx context.Context, res *api.AuthResult) {
	if err := s.tokens.Save(ctx, res.Token); err != nil {
		s.log.Error(ctx, "failed to persist token", "error", err)
	}

	s.mu.Lock()
	s.token = res.Token
	s.mu.Unlock()

	user := res.User
	if fetched, err := s.api.Profile(ctx); err == nil {
		user = *fetched
	} else {
		s.log.Warn(ctx, "profile fetch after login failed, using login payload", "error", err)
	}

	s.mu.Lock()
	s.user = &user
	s.mu.Unlock()
}

// Logout clears the persisted token and drops token and user in a single
// state transition; no observer can see one cleared without the other.
func (s *Store) Logout(ctx context.Context) error {
	if err := s.tokens.Clear(ctx); err != nil {
		return fmt.Errorf("clear persisted token: %w", err)
	}

	s.mu.Lock()
	s.token = ""
	s.user = nil
	s.mu.Unlock()

	s.log.Info(ctx, "logged out")
	return nil
}

// UpdateUser merges a partial update into the current user record. Fields
// absent from the patch are never touched. A session without a user makes
// this a no-op.
func (s *Store) UpdateUser(patch models.UserPatch) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.user == nil {
		return
	}
	updated := patch.Apply(*s.user)
	s.user = &updated
}

// UpdateProfile pushes a username/email change to the backend and merges the
// confirmed values into the session user, preferring what the server echoed
// back over what was submitted.
func (s *Store) UpdateProfile(ctx context.Context, patch models.UserPatch) error {
	updated, err := s.api.UpdateProfile(ctx, patch)
	if err != nil {
		return failureMessage(err, "Failed to update profile")
	}

	merged := models.UserPatch{Username: patch.Username, Email: patch.Email}
	if updated.Username != "" {
		merged.Username = &updated.Username
	}
	if updated.Email != "" {
		merged.Email = &updated.Email
	}
	s.UpdateUser(merged)
	return nil
}

// ChangePassword rotates the account password. The new password is validated
// locally before any request is issued.
func (s *Store) ChangePassword(ctx context.Context, currentPassword, newPassword string) error {
	if len(newPassword) < MinPasswordLength {
		return fmt.Errorf("%w: password must be at least %d characters long", common.ErrValidation, MinPasswordLength)
	}

	if err := s.api.ChangePassword(ctx, currentPassword, newPassword); err != nil {
		return failureMessage(err, "Failed to change password")
	}
	return nil
}

// failureMessage converts an API failure into the error shown to the user:
// the upstream message when the response carried one, fallback otherwise.
// Transport failures keep their sentinel so callers can still match
// common.ErrUnavailable.
func failureMessage(err error, fallback string) error {
	var apiErr *api.APIError
	if errors.As(err, &apiErr) && apiErr.Message != "" {
		return errors.New(apiErr.Message)
	}
	if errors.Is(err, common.ErrUnavailable) {
		return fmt.Errorf("%s: %w", fallback, common.ErrUnavailable)
	}
	return errors.New(fallback)
}
