package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/google/uuid"

	"github.com/MobeenIkhtiar/kalshi-front/internal/client/models"
	"github.com/MobeenIkhtiar/kalshi-front/internal/common"
	"github.com/MobeenIkhtiar/kalshi-front/internal/logging"
)

// TokenProvider supplies the current bearer token. It returns the empty
// string when no session is established; authenticated requests are then
// sent without an Authorization header and fail upstream.
type TokenProvider func() string

// HTTPClient is the production Client implementation over net/http.
type HTTPClient struct {
	baseURL string
	hc      *http.Client
	token   TokenProvider
	log     logging.Logger
}

// NewHTTPClient builds a client for the backend at baseURL. The token
// provider is consulted on every authenticated request, so the client always
// sends the session's current token.
func NewHTTPClient(baseURL string, timeout time.Duration, token TokenProvider, log logging.Logger) *HTTPClient {
	return &HTTPClient{
		baseURL: baseURL,
		hc:      &http.Client{Timeout: timeout},
		token:   token,
		log:     log,
	}
}

// envelope is the backend's common response wrapper. Not every endpoint uses
// every field, and some put the payload at the top level instead of under
// "data"; payload() papers over that.
type envelope struct {
	Success *bool           `json:"success"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

// payload returns the response body to decode: the "data" member when the
// envelope has one, the raw body otherwise.
func payload(env envelope, raw []byte) []byte {
	if len(env.Data) > 0 && string(env.Data) != "null" {
		return env.Data
	}
	return raw
}

// do executes one request and returns the HTTP status, the raw body, and the
// best-effort decoded envelope. Only transport-level problems surface as an
// error; status handling is left to the caller.
func (c *HTTPClient) do(ctx context.Context, method, path string, body any, authed bool) (int, []byte, envelope, error) {
	var env envelope

	var reqBody io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return 0, nil, env, fmt.Errorf("encode request: %w", err)
		}
		reqBody = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reqBody)
	if err != nil {
		return 0, nil, env, fmt.Errorf("build request: %w", err)
	}

	requestID := uuid.NewString()
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Request-Id", requestID)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if authed {
		if token := c.token(); token != "" {
			req.Header.Set("Authorization", "Bearer "+token)
		}
	}

	resp, err := c.hc.Do(req)
	if err != nil {
		c.log.Warn(ctx, "request failed", "method", method, "path", path, "request_id", requestID, "error", err)
		return 0, nil, env, fmt.Errorf("%s %s: %w: %w", method, path, common.ErrUnavailable, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return resp.StatusCode, nil, env, fmt.Errorf("read response: %w", err)
	}

	// Non-JSON bodies are tolerated; the envelope just stays empty.
	_ = json.Unmarshal(raw, &env)

	c.log.Debug(ctx, "request done", "method", method, "path", path, "request_id", requestID, "status", resp.StatusCode)
	return resp.StatusCode, raw, env, nil
}

// doJSON is do plus the common happy-path handling: non-2xx statuses and an
// explicit success:false envelope become an *APIError carrying the upstream
// message, otherwise the payload is decoded into out (when out is non-nil).
// A 401 additionally wraps common.ErrUnauthorized so callers can tell a
// rejected credential from any other failure.
func (c *HTTPClient) doJSON(ctx context.Context, method, path string, body any, authed bool, out any) error {
	status, raw, env, err := c.do(ctx, method, path, body, authed)
	if err != nil {
		return err
	}
	if status == http.StatusUnauthorized {
		return fmt.Errorf("%w: %w", common.ErrUnauthorized, &APIError{Status: status, Message: env.Message})
	}
	if status < 200 || status >= 300 {
		return &APIError{Status: status, Message: env.Message}
	}
	if env.Success != nil && !*env.Success {
		return &APIError{Status: status, Message: env.Message}
	}
	if out == nil {
		return nil
	}
	if err := json.Unmarshal(payload(env, raw), out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

func (c *HTTPClient) Register(ctx context.Context, username, email, password string) (*AuthResult, error) {
	body := map[string]string{"username": username, "email": email, "password": password}
	var res AuthResult
	if err := c.doJSON(ctx, http.MethodPost, "/api/auth/register", body, false, &res); err != nil {
		return nil, err
	}
	return &res, nil
}

func (c *HTTPClient) Login(ctx context.Context, email, password string) (*AuthResult, error) {
	body := map[string]string{"email": email, "password": password}
	var res AuthResult
	if err := c.doJSON(ctx, http.MethodPost, "/api/auth/login", body, false, &res); err != nil {
		return nil, err
	}
	return &res, nil
}

// profilePayload matches the usual profile response shape {"user": {...}}.
type profilePayload struct {
	User models.User `json:"user"`
}

func (c *HTTPClient) Profile(ctx context.Context) (*models.User, error) {
	var p profilePayload
	if err := c.doJSON(ctx, http.MethodGet, "/api/auth/profile", nil, true, &p); err != nil {
		return nil, err
	}
	return &p.User, nil
}

func (c *HTTPClient) UpdateProfile(ctx context.Context, patch models.UserPatch) (*models.User, error) {
	status, raw, env, err := c.do(ctx, http.MethodPut, "/api/auth/profile", patch, true)
	if err != nil {
		return nil, err
	}
	if status < 200 || status >= 300 || (env.Success != nil && !*env.Success) {
		return nil, &APIError{Status: status, Message: env.Message}
	}

	// The updated user comes back either as {"user": {...}} or bare.
	var p profilePayload
	if err := json.Unmarshal(payload(env, raw), &p); err == nil && p.User.ID != "" {
		return &p.User, nil
	}
	var u models.User
	if err := json.Unmarshal(payload(env, raw), &u); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}
	return &u, nil
}

func (c *HTTPClient) ChangePassword(ctx context.Context, currentPassword, newPassword string) error {
	body := map[string]string{"currentPassword": currentPassword, "newPassword": newPassword}
	return c.doJSON(ctx, http.MethodPut, "/api/auth/change-password", body, true, nil)
}

// verifyPayload captures every success signal a verification response may
// carry; see kalshi.VerificationSucceeded for how they are combined.
type verifyPayload struct {
	IsConnectionSuccessful *bool           `json:"isConnectionSuccessful"`
	KalshiStatus           string          `json:"kalshi_status"`
	User                   json.RawMessage `json:"user"`
}

func (c *HTTPClient) VerifyConnection(ctx context.Context, accessKeyID, privateKey string) (*VerifyOutcome, error) {
	body := map[string]string{
		"kalshi_access_key_id": accessKeyID,
		"kalshi_private_key":   privateKey,
	}
	status, raw, env, err := c.do(ctx, http.MethodPost, "/api/kalshi-connection/verify", body, true)
	if err != nil {
		return nil, err
	}

	var p verifyPayload
	_ = json.Unmarshal(payload(env, raw), &p)

	return &VerifyOutcome{
		StatusCode:           status,
		SuccessFlag:          env.Success,
		Message:              env.Message,
		ConnectionSuccessful: p.IsConnectionSuccessful,
		KalshiStatus:         p.KalshiStatus,
		HasUser:              len(p.User) > 0 && string(p.User) != "null",
	}, nil
}

func (c *HTTPClient) ConnectionStatus(ctx context.Context) (*ConnectionStatus, error) {
	var s ConnectionStatus
	if err := c.doJSON(ctx, http.MethodGet, "/api/kalshi-connection/status", nil, true, &s); err != nil {
		return nil, err
	}
	if !s.Connected && s.KalshiStatus == StatusConnected {
		s.Connected = true
	}
	return &s, nil
}

func (c *HTTPClient) Credentials(ctx context.Context) (*Credentials, error) {
	var creds Credentials
	if err := c.doJSON(ctx, http.MethodGet, "/api/kalshi-connection/credentials", nil, true, &creds); err != nil {
		return nil, err
	}
	return &creds, nil
}

func (c *HTTPClient) Disconnect(ctx context.Context) error {
	return c.doJSON(ctx, http.MethodDelete, "/api/kalshi-connection/disconnect", nil, true, nil)
}

// balancePayload covers the field names the backend has used for the account
// balance over time. All values are cents.
type balancePayload struct {
	Balance             *int64 `json:"balance"`
	PortfolioValueCents *int64 `json:"portfolio_value_cents"`
	PortfolioValue      *int64 `json:"portfolio_value"`
}

func (c *HTTPClient) Balance(ctx context.Context) (int64, error) {
	var p balancePayload
	if err := c.doJSON(ctx, http.MethodGet, "/api/kalshi-connection/balance", nil, true, &p); err != nil {
		return 0, err
	}
	switch {
	case p.Balance != nil:
		return *p.Balance, nil
	case p.PortfolioValueCents != nil:
		return *p.PortfolioValueCents, nil
	case p.PortfolioValue != nil:
		return *p.PortfolioValue, nil
	}
	return 0, fmt.Errorf("balance missing from response")
}

func (c *HTTPClient) Markets(ctx context.Context, params MarketsParams) (*MarketPage, error) {
	q := url.Values{}
	if params.Limit > 0 {
		q.Set("limit", strconv.Itoa(params.Limit))
	}
	if params.Cursor != "" {
		q.Set("cursor", params.Cursor)
	}
	if params.EventTicker != "" {
		q.Set("event_ticker", params.EventTicker)
	}
	if params.SeriesTicker != "" {
		q.Set("series_ticker", params.SeriesTicker)
	}
	if params.MaxCloseTS != "" {
		q.Set("max_close_ts", params.MaxCloseTS)
	}
	if params.MinCloseTS != "" {
		q.Set("min_close_ts", params.MinCloseTS)
	}
	if params.Status != "" {
		q.Set("status", params.Status)
	}
	if params.Tickers != "" {
		q.Set("tickers", params.Tickers)
	}

	path := "/api/kalshi/markets"
	if encoded := q.Encode(); encoded != "" {
		path += "?" + encoded
	}

	var page MarketPage
	if err := c.doJSON(ctx, http.MethodGet, path, nil, false, &page); err != nil {
		return nil, err
	}
	return &page, nil
}

// Ping probes the public market endpoint with the smallest possible page.
func (c *HTTPClient) Ping(ctx context.Context) error {
	_, err := c.Markets(ctx, MarketsParams{Limit: 1})
	return err
}

var _ Client = (*HTTPClient)(nil)
