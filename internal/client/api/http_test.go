package api

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MobeenIkhtiar/kalshi-front/internal/client/models"
	"github.com/MobeenIkhtiar/kalshi-front/internal/common"
	"github.com/MobeenIkhtiar/kalshi-front/internal/logging"
)

func testLogger() logging.Logger {
	return logging.NewSlogLogger(slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func newTestClient(t *testing.T, handler http.HandlerFunc, token string) *HTTPClient {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return NewHTTPClient(srv.URL, 5*time.Second, func() string { return token }, testLogger())
}

func TestLogin_Success(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "/api/auth/login", r.URL.Path)
		require.Empty(t, r.Header.Get("Authorization"))
		require.NotEmpty(t, r.Header.Get("X-Request-Id"))

		var body map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		require.Equal(t, "a@b.com", body["email"])

		_ = json.NewEncoder(w).Encode(map[string]any{
			"success": true,
			"data": map[string]any{
				"token": "T",
				"user":  map[string]string{"id": "1", "username": "bob", "email": "a@b.com"},
			},
		})
	}, "")

	res, err := c.Login(context.Background(), "a@b.com", "secret")
	require.NoError(t, err)
	assert.Equal(t, "T", res.Token)
	assert.Equal(t, "bob", res.User.Username)
}

func TestLogin_RejectedCarriesUpstreamMessage(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		_ = json.NewEncoder(w).Encode(map[string]any{"success": false, "message": "Invalid credentials"})
	}, "")

	_, err := c.Login(context.Background(), "a@b.com", "wrong")
	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusUnauthorized, apiErr.Status)
	assert.Equal(t, "Invalid credentials", apiErr.Message)
	assert.ErrorIs(t, err, common.ErrUnauthorized)
}

func TestProfile_RejectedTokenMatchesUnauthorized(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		_ = json.NewEncoder(w).Encode(map[string]any{"success": false, "message": "expired"})
	}, "stale-token")

	_, err := c.Profile(context.Background())
	assert.ErrorIs(t, err, common.ErrUnauthorized)
}

func TestLogin_SuccessFalseWithOKStatusIsNotUnauthorized(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]any{"success": false, "message": "nope"})
	}, "")

	_, err := c.Login(context.Background(), "a@b.com", "x")
	require.Error(t, err)
	assert.False(t, errors.Is(err, common.ErrUnauthorized))
}

func TestLogin_SuccessFalseWithOKStatusIsError(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]any{"success": false, "message": "nope"})
	}, "")

	_, err := c.Login(context.Background(), "a@b.com", "x")
	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, "nope", apiErr.Message)
}

func TestProfile_SendsBearerToken(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "Bearer tok-123", r.Header.Get("Authorization"))
		_ = json.NewEncoder(w).Encode(map[string]any{
			"success": true,
			"data":    map[string]any{"user": map[string]string{"id": "1", "username": "bob"}},
		})
	}, "tok-123")

	u, err := c.Profile(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "1", u.ID)
}

func TestTransportFailureWrapsErrUnavailable(t *testing.T) {
	c := NewHTTPClient("http://127.0.0.1:1", time.Second, func() string { return "" }, testLogger())
	_, err := c.Profile(context.Background())
	require.Error(t, err)
	assert.True(t, errors.Is(err, common.ErrUnavailable))
}

func TestUpdateProfile_UserNestedOrBare(t *testing.T) {
	tests := []struct {
		name string
		body map[string]any
	}{
		{
			name: "nested under data.user",
			body: map[string]any{"success": true, "data": map[string]any{"user": map[string]string{"id": "1", "email": "new@x.com"}}},
		},
		{
			name: "bare user under data",
			body: map[string]any{"success": true, "data": map[string]string{"id": "1", "email": "new@x.com"}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				require.Equal(t, http.MethodPut, r.Method)
				_ = json.NewEncoder(w).Encode(tt.body)
			}, "tok")

			u, err := c.UpdateProfile(context.Background(), models.UserPatch{Email: models.Ptr("new@x.com")})
			require.NoError(t, err)
			assert.Equal(t, "new@x.com", u.Email)
		})
	}
}

func TestVerifyConnection_ShapeUnion(t *testing.T) {
	tests := []struct {
		name string
		body string
		want VerifyOutcome
	}{
		{
			name: "explicit flag at top level",
			body: `{"isConnectionSuccessful": true}`,
			want: VerifyOutcome{StatusCode: 200, ConnectionSuccessful: boolPtr(true)},
		},
		{
			name: "status sentinel under data",
			body: `{"success": true, "data": {"kalshi_status": "connected"}}`,
			want: VerifyOutcome{StatusCode: 200, SuccessFlag: boolPtr(true), KalshiStatus: "connected"},
		},
		{
			name: "nested user object",
			body: `{"data": {"user": {"id": "1"}}}`,
			want: VerifyOutcome{StatusCode: 200, HasUser: true},
		},
		{
			name: "explicit failure with message",
			body: `{"success": false, "message": "bad key"}`,
			want: VerifyOutcome{StatusCode: 200, SuccessFlag: boolPtr(false), Message: "bad key"},
		},
		{
			name: "null user is not a user",
			body: `{"data": {"user": null}}`,
			want: VerifyOutcome{StatusCode: 200},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				w.Header().Set("Content-Type", "application/json")
				_, _ = w.Write([]byte(tt.body))
			}, "tok")

			got, err := c.VerifyConnection(context.Background(), "AK", "PK")
			require.NoError(t, err)
			assert.Equal(t, tt.want, *got)
		})
	}
}

func TestCredentials_TopLevelOrData(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{name: "top level", body: `{"kalshi_access_key_id": "AK", "kalshi_private_key": "PK"}`},
		{name: "under data", body: `{"success": true, "data": {"kalshi_access_key_id": "AK", "kalshi_private_key": "PK"}}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				_, _ = w.Write([]byte(tt.body))
			}, "tok")

			creds, err := c.Credentials(context.Background())
			require.NoError(t, err)
			assert.Equal(t, "AK", creds.AccessKeyID)
			assert.Equal(t, "PK", creds.PrivateKey)
		})
	}
}

func TestBalance_FallbackChain(t *testing.T) {
	tests := []struct {
		name    string
		body    string
		want    int64
		wantErr bool
	}{
		{name: "balance", body: `{"data": {"balance": 1234}}`, want: 1234},
		{name: "portfolio_value_cents", body: `{"data": {"portfolio_value_cents": 1234}}`, want: 1234},
		{name: "portfolio_value", body: `{"data": {"portfolio_value": 1234}}`, want: 1234},
		{name: "none present", body: `{"data": {}}`, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				_, _ = w.Write([]byte(tt.body))
			}, "tok")

			got, err := c.Balance(context.Background())
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestMarkets_QueryParamsAndCursor(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/api/kalshi/markets", r.URL.Path)
		require.Equal(t, "12", r.URL.Query().Get("limit"))
		require.Equal(t, "c1", r.URL.Query().Get("cursor"))
		_ = json.NewEncoder(w).Encode(map[string]any{
			"success": true,
			"data": map[string]any{
				"markets": []map[string]string{{"question": "Will it rain?", "category": "Weather"}},
				"cursor":  "c2",
			},
		})
	}, "")

	page, err := c.Markets(context.Background(), MarketsParams{Limit: 12, Cursor: "c1"})
	require.NoError(t, err)
	require.Len(t, page.Markets, 1)
	assert.Equal(t, "Will it rain?", page.Markets[0].Question)
	assert.Equal(t, "c2", page.Cursor)
}

func boolPtr(b bool) *bool { return &b }
