// Package guard decides whether a protected view may be shown for the
// current session state. It holds no state of its own; every decision is a
// pure function of the session snapshot.
package guard

import "github.com/MobeenIkhtiar/kalshi-front/internal/client/session"

// LoginRoute is the fixed destination unauthenticated visitors are sent to.
const LoginRoute = "login"

// Action is the three-way outcome of a guard decision.
type Action int

const (
	// ActionWait: the session is still initializing; show a neutral
	// placeholder and make no redirect decision yet.
	ActionWait Action = iota

	// ActionRedirect: send the visitor to RedirectTo, remembering From.
	ActionRedirect

	// ActionAllow: render the requested content unchanged.
	ActionAllow
)

func (a Action) String() string {
	switch a {
	case ActionWait:
		return "wait"
	case ActionRedirect:
		return "redirect"
	case ActionAllow:
		return "allow"
	}
	return "unknown"
}

// Decision is the result of guarding one requested destination.
type Decision struct {
	Action Action

	// RedirectTo is set only for ActionRedirect.
	RedirectTo string

	// From is the originally requested destination, preserved on redirect so
	// the caller can return there once authentication succeeds.
	From string
}

// Decide maps session state to a guard decision for the destination "from".
// The authenticated/unauthenticated branch is never taken while the session
// is still loading; initialization resolving is the one ordering dependency.
func Decide(st session.State, from string) Decision {
	if st.Loading {
		return Decision{Action: ActionWait, From: from}
	}
	if !st.Authenticated() {
		return Decision{Action: ActionRedirect, RedirectTo: LoginRoute, From: from}
	}
	return Decision{Action: ActionAllow, From: from}
}
