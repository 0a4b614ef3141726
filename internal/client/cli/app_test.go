package cli

import (
	"bufio"
	"context"
	"errors"
	"io"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MobeenIkhtiar/kalshi-front/internal/client/api"
	"github.com/MobeenIkhtiar/kalshi-front/internal/client/config"
	"github.com/MobeenIkhtiar/kalshi-front/internal/client/kalshi"
	"github.com/MobeenIkhtiar/kalshi-front/internal/client/models"
	"github.com/MobeenIkhtiar/kalshi-front/internal/client/session"
	"github.com/MobeenIkhtiar/kalshi-front/internal/logging"
)

func testLogger() logging.Logger {
	return logging.NewSlogLogger(slog.New(slog.NewTextHandler(io.Discard, nil)))
}

// fakeAPI embeds the Client interface so only the methods a test exercises
// need overriding; calling anything else panics, which flags the gap.
type fakeAPI struct {
	api.Client

	loginRes *api.AuthResult
	loginErr error
	pingErr  error
}

func (f *fakeAPI) Login(ctx context.Context, email, password string) (*api.AuthResult, error) {
	return f.loginRes, f.loginErr
}

func (f *fakeAPI) Profile(ctx context.Context) (*models.User, error) {
	if f.loginRes == nil {
		return nil, errors.New("no user")
	}
	u := f.loginRes.User
	return &u, nil
}

func (f *fakeAPI) Credentials(ctx context.Context) (*api.Credentials, error) {
	return &api.Credentials{}, nil
}

func (f *fakeAPI) Ping(ctx context.Context) error { return f.pingErr }

type memoryTokenStore struct{ token string }

func (m *memoryTokenStore) Load(ctx context.Context) (string, error) { return m.token, nil }
func (m *memoryTokenStore) Save(ctx context.Context, token string) error {
	m.token = token
	return nil
}
func (m *memoryTokenStore) Clear(ctx context.Context) error { m.token = ""; return nil }

func newTestApp(fake *fakeAPI) *App {
	cfg := &config.Config{}
	cfg.LoadDefaults()
	log := testLogger()

	app := &App{
		config: cfg,
		log:    log,
		api:    fake,
		reader: bufio.NewReader(strings.NewReader("")),
	}
	app.session = session.NewStore(fake, &memoryTokenStore{}, log)
	app.linker = kalshi.NewLinker(fake, app.session, log)
	app.pager = kalshi.NewPager(fake, cfg.PageLimit, api.MarketsParams{})
	return app
}

func silencePrintln(t *testing.T) *[]string {
	t.Helper()
	var lines []string
	orig := printlnFn
	printlnFn = func(a ...any) (int, error) {
		var parts []string
		for _, v := range a {
			if s, ok := v.(string); ok {
				parts = append(parts, s)
			}
		}
		lines = append(lines, strings.Join(parts, " "))
		return 0, nil
	}
	t.Cleanup(func() { printlnFn = orig })
	return &lines
}

func TestGuarded_RefusesWhileLoading(t *testing.T) {
	lines := silencePrintln(t)
	app := newTestApp(&fakeAPI{})

	called := false
	err := app.guarded(context.Background(), "profile", func(ctx context.Context) error {
		called = true
		return nil
	})

	require.NoError(t, err)
	assert.False(t, called)
	require.NotEmpty(t, *lines)
	assert.Contains(t, (*lines)[0], "loading")
}

func TestGuarded_LoginThenRunsOriginalCommand(t *testing.T) {
	silencePrintln(t)

	fake := &fakeAPI{loginRes: &api.AuthResult{
		Token: "tok",
		User:  models.User{Username: "alice", Email: "a@b.c"},
	}}
	app := newTestApp(fake)
	app.session.Initialize(context.Background())

	origText, origPw := getSimpleText, getPassword
	getSimpleText = func(r *bufio.Reader, prompt string, w io.Writer) (string, error) {
		return "a@b.c", nil
	}
	getPassword = func(w io.Writer, prompt string) ([]byte, error) {
		return []byte("secret1"), nil
	}
	t.Cleanup(func() { getSimpleText, getPassword = origText, origPw })

	called := false
	err := app.guarded(context.Background(), "markets", func(ctx context.Context) error {
		called = true
		return nil
	})

	require.NoError(t, err)
	assert.True(t, called, "original command must run after a successful login")
	assert.True(t, app.session.Snapshot().Authenticated())
}

func TestGuarded_LoginFailureSkipsCommand(t *testing.T) {
	silencePrintln(t)

	fake := &fakeAPI{loginErr: &api.APIError{Status: 401, Message: "Invalid credentials"}}
	app := newTestApp(fake)
	app.session.Initialize(context.Background())

	origText, origPw := getSimpleText, getPassword
	getSimpleText = func(r *bufio.Reader, prompt string, w io.Writer) (string, error) {
		return "a@b.c", nil
	}
	getPassword = func(w io.Writer, prompt string) ([]byte, error) {
		return []byte("wrong1"), nil
	}
	t.Cleanup(func() { getSimpleText, getPassword = origText, origPw })

	called := false
	err := app.guarded(context.Background(), "markets", func(ctx context.Context) error {
		called = true
		return nil
	})

	require.NoError(t, err)
	assert.False(t, called)
	assert.False(t, app.session.Snapshot().Authenticated())
}

func TestGetStatus(t *testing.T) {
	fake := &fakeAPI{loginRes: &api.AuthResult{
		Token: "tok",
		User:  models.User{Username: "alice", Email: "a@b.c"},
	}}
	app := newTestApp(fake)

	assert.Equal(t, "", app.getStatus())

	app.setMode(ModeOnline)
	assert.Equal(t, "(online)", app.getStatus())

	app.session.Initialize(context.Background())
	require.NoError(t, app.session.Login(context.Background(), "a@b.c", "secret1"))
	assert.Equal(t, "(alice online)", app.getStatus())
}

func TestStartOnlineStatusWatcher_SwitchesToOnline(t *testing.T) {
	app := newTestApp(&fakeAPI{pingErr: nil})
	app.setMode(ModeOffline)

	ctx, cancel := context.WithTimeout(context.Background(), 80*time.Millisecond)
	defer cancel()
	app.StartOnlineStatusWatcher(ctx, 10*time.Millisecond)

	assert.Equal(t, ModeOnline, app.Mode())
}

func TestMode_SafeUnderConcurrentWatcherAndPrompt(t *testing.T) {
	app := newTestApp(&fakeAPI{pingErr: nil})

	ctx, cancel := context.WithTimeout(context.Background(), 60*time.Millisecond)
	defer cancel()

	done := make(chan struct{})
	go func() {
		defer close(done)
		app.StartOnlineStatusWatcher(ctx, 5*time.Millisecond)
	}()

	for ctx.Err() == nil {
		_ = app.getStatus()
	}
	<-done

	assert.Equal(t, ModeOnline, app.Mode())
}
