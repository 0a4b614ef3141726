package cli

import (
	"bufio"
	"context"
	"database/sql"
	"os"
	"sync"
	"time"

	"github.com/MobeenIkhtiar/kalshi-front/internal/client/api"
	"github.com/MobeenIkhtiar/kalshi-front/internal/client/config"
	"github.com/MobeenIkhtiar/kalshi-front/internal/client/guard"
	"github.com/MobeenIkhtiar/kalshi-front/internal/client/kalshi"
	"github.com/MobeenIkhtiar/kalshi-front/internal/client/localdb"
	"github.com/MobeenIkhtiar/kalshi-front/internal/client/repositories/metadata"
	"github.com/MobeenIkhtiar/kalshi-front/internal/client/session"
	"github.com/MobeenIkhtiar/kalshi-front/internal/logging"

	_ "modernc.org/sqlite"
)

type Mode string

const (
	ModeOffline Mode = "offline"
	ModeOnline  Mode = "online"
)

type App struct {
	config  *config.Config
	log     logging.Logger
	db      *sql.DB
	api     api.Client
	session *session.Store
	linker  *kalshi.Linker
	pager   *kalshi.Pager
	reader  *bufio.Reader

	// mode is read by the REPL while the watcher goroutine writes it.
	modeMu sync.Mutex
	mode   Mode
}

func NewApp(ctx context.Context, c *config.Config, log logging.Logger) (*App, error) {

	db, err := localdb.Open(ctx, c.DatabasePath)
	if err != nil {
		log.Error(ctx, "error initializing database", "error", err)
		return nil, err
	}

	app := &App{config: c, log: log, db: db, reader: bufio.NewReader(os.Stdin)}

	tokens := session.NewMetadataTokenStore(metadata.NewSQLiteRepository(db))
	app.api = api.NewHTTPClient(c.BackendURL, c.RequestTimeout, app.token, log)
	app.session = session.NewStore(app.api, tokens, log)
	app.linker = kalshi.NewLinker(app.api, app.session, log)
	app.pager = kalshi.NewPager(app.api, c.PageLimit, api.MarketsParams{})

	return app, nil
}

// token is the TokenProvider handed to the API client. Indirection keeps the
// construction order simple: the client needs a token source before the
// session store exists.
func (a *App) token() string {
	return a.session.Token()
}

// Mode reports the current connectivity mode.
func (a *App) Mode() Mode {
	a.modeMu.Lock()
	defer a.modeMu.Unlock()
	return a.mode
}

func (a *App) setMode(mode Mode) {
	a.modeMu.Lock()
	changed := a.mode != mode
	a.mode = mode
	a.modeMu.Unlock()
	if changed {
		a.log.Info(context.Background(), "connectivity changed", "mode", mode)
	}
}

// Run restores the session from local state, starts the connectivity
// watcher, and hands control to the REPL. It blocks until the user exits.
func (a *App) Run(ctx context.Context) {
	defer a.db.Close()

	a.session.Initialize(ctx)
	if a.session.Snapshot().Authenticated() {
		a.linker.Bootstrap(ctx)
	}

	go func() {
		a.StartOnlineStatusWatcher(ctx, a.config.OnlineCheckInterval)
	}()

	printlnFn("Dashboard CLI (type 'help' for commands)")
	runREPL(ctx, a, a.getStatus, bufio.NewScanner(os.Stdin))
}

func (a *App) isLoggedIn() bool {
	return a.session.Snapshot().Authenticated()
}

func (a *App) getStatus() string {
	s := ""
	if st := a.session.Snapshot(); st.User != nil {
		s = st.User.Username + " "
	}
	if mode := a.Mode(); mode != "" {
		s = s + string(mode)
	}
	if s != "" {
		s = "(" + s + ")"
	}
	return s
}

// guarded runs fn when the session allows access to route. While the session
// is still resolving the command is refused outright. For an unauthenticated
// session a login is offered first and, if it succeeds, the originally
// requested command runs so the user lands where they were headed.
func (a *App) guarded(ctx context.Context, route string, fn func(context.Context) error) error {
	d := guard.Decide(a.session.Snapshot(), route)
	switch d.Action {
	case guard.ActionWait:
		printlnFn("Session is still loading, try again in a moment.")
		return nil
	case guard.ActionRedirect:
		printlnFn("Please log in first.")
		if err := a.Login(ctx); err != nil {
			return err
		}
		if !a.session.Snapshot().Authenticated() {
			return nil
		}
	}
	return fn(ctx)
}

func (a *App) StartOnlineStatusWatcher(ctx context.Context, interval time.Duration) {

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
			err := a.api.Ping(ctx)
			cancel()

			if err != nil {
				if a.Mode() == ModeOnline {
					a.setMode(ModeOffline)
				}
			} else {
				if a.Mode() != ModeOnline {
					a.setMode(ModeOnline)
				}
			}

		case <-ctx.Done():
			return
		}
	}
}
