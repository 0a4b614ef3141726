// Package models defines client-side data models for the dashboard.
package models

// User is the account record returned by the backend. Timestamps are kept as
// the raw strings the API sends; the client only displays them.
type User struct {
	// ID is the backend-assigned account identifier.
	ID string `json:"id"`

	// Username is the display name chosen at registration.
	Username string `json:"username"`

	// Email is the login email.
	Email string `json:"email"`

	// KalshiAccessKeyID is the linked trading-account key id, empty when
	// no account is linked.
	KalshiAccessKeyID string `json:"kalshi_access_key_id,omitempty"`

	// KalshiPrivateKey is the linked trading-account secret. It is only ever
	// shown back to the user through masked input prefill.
	KalshiPrivateKey string `json:"kalshi_private_key,omitempty"`

	CreatedAt string `json:"createdAt"`
	UpdatedAt string `json:"updatedAt"`
}

// UserPatch is a partial update of a User. Nil fields are left untouched by
// Apply; a non-nil pointer to the empty string explicitly clears a field.
type UserPatch struct {
	Username          *string `json:"username,omitempty"`
	Email             *string `json:"email,omitempty"`
	KalshiAccessKeyID *string `json:"kalshi_access_key_id,omitempty"`
	KalshiPrivateKey  *string `json:"kalshi_private_key,omitempty"`
}

// Apply merges the patch into u and returns the result. Fields absent from
// the patch keep their current values.
func (p UserPatch) Apply(u User) User {
	if p.Username != nil {
		u.Username = *p.Username
	}
	if p.Email != nil {
		u.Email = *p.Email
	}
	if p.KalshiAccessKeyID != nil {
		u.KalshiAccessKeyID = *p.KalshiAccessKeyID
	}
	if p.KalshiPrivateKey != nil {
		u.KalshiPrivateKey = *p.KalshiPrivateKey
	}
	return u
}

// Ptr is a convenience for building patches from literals.
func Ptr(s string) *string { return &s }
