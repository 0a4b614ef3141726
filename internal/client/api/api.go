// Package api is the HTTP client for the dashboard backend. It covers the
// auth endpoints, the kalshi-connection endpoints, and the market list.
package api

import (
	"context"
	"fmt"

	"github.com/MobeenIkhtiar/kalshi-front/internal/client/models"
)

// Client defines the backend operations the dashboard client depends on.
//
// Contract:
//   - Register/Login: create an account or obtain a bearer token.
//   - Profile/UpdateProfile/ChangePassword: account management (bearer).
//   - VerifyConnection/ConnectionStatus/Credentials/Disconnect/Balance:
//     trading-credential lifecycle (bearer).
//   - Markets: public paginated market list.
//   - Ping: cheap reachability probe.
//
// All methods must honor context cancellation/timeouts.
type Client interface {
	Register(ctx context.Context, username, email, password string) (*AuthResult, error)
	Login(ctx context.Context, email, password string) (*AuthResult, error)
	Profile(ctx context.Context) (*models.User, error)
	UpdateProfile(ctx context.Context, patch models.UserPatch) (*models.User, error)
	ChangePassword(ctx context.Context, currentPassword, newPassword string) error

	VerifyConnection(ctx context.Context, accessKeyID, privateKey string) (*VerifyOutcome, error)
	ConnectionStatus(ctx context.Context) (*ConnectionStatus, error)
	Credentials(ctx context.Context) (*Credentials, error)
	Disconnect(ctx context.Context) error
	Balance(ctx context.Context) (int64, error)

	Markets(ctx context.Context, params MarketsParams) (*MarketPage, error)
	Ping(ctx context.Context) error
}

// AuthResult is the payload of a successful login or registration.
type AuthResult struct {
	Token string      `json:"token"`
	User  models.User `json:"user"`
}

// Credentials are the stored raw trading-account credentials, fetched for
// input prefill only.
type Credentials struct {
	AccessKeyID string `json:"kalshi_access_key_id"`
	PrivateKey  string `json:"kalshi_private_key"`
}

// StatusConnected is the kalshi_status value the backend reports for a
// linked account.
const StatusConnected = "connected"

// ConnectionStatus reports the backend's view of the trading-account link.
type ConnectionStatus struct {
	Connected    bool   `json:"connected"`
	KalshiStatus string `json:"kalshi_status"`
}

// VerifyOutcome is the raw result of a credential verification call.
// The backend answers with several different shapes depending on how the
// verification went, so the outcome exposes every signal it may carry and
// leaves the success decision to the caller.
type VerifyOutcome struct {
	// StatusCode is the HTTP status of the verify call.
	StatusCode int

	// SuccessFlag is the envelope-level "success" field, when present.
	SuccessFlag *bool

	// Message is the upstream message, when present.
	Message string

	// ConnectionSuccessful is the payload "isConnectionSuccessful" flag,
	// when present.
	ConnectionSuccessful *bool

	// KalshiStatus is the payload "kalshi_status" field, empty when absent.
	KalshiStatus string

	// HasUser reports whether the payload carried a nested user object.
	HasUser bool
}

// MarketsParams are the query parameters accepted by the market list
// endpoint. Zero values are omitted from the request.
type MarketsParams struct {
	Limit        int
	Cursor       string
	EventTicker  string
	SeriesTicker string
	MaxCloseTS   string
	MinCloseTS   string
	Status       string
	Tickers      string
}

// Market is a single market card as the backend presents it.
type Market struct {
	Question string `json:"question"`
	Category string `json:"category"`
	Price    string `json:"price"`
	ROI      string `json:"roi"`
	Volume   string `json:"volume"`
}

// MarketPage is one page of the market list. Cursor points at the next page
// and is empty on the last one.
type MarketPage struct {
	Markets []Market `json:"markets"`
	Cursor  string   `json:"cursor"`
}

// APIError is a request the backend rejected. Message carries the upstream
// human-readable message when the response included one.
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	return fmt.Sprintf("request failed with status %d", e.Status)
}
