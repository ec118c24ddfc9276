package cli

import (
	"bufio"
	"context"
	"database/sql"
	"io"
	"net/http"
	"os"
	"sync/atomic"

	"github.com/dmitrijs2005/postboard/internal/client/client"
	"github.com/dmitrijs2005/postboard/internal/client/config"
	"github.com/dmitrijs2005/postboard/internal/client/credentials"
	"github.com/dmitrijs2005/postboard/internal/client/router"
	"github.com/dmitrijs2005/postboard/internal/client/session"
	"github.com/dmitrijs2005/postboard/internal/client/transport"
	"github.com/dmitrijs2005/postboard/internal/logging"

	_ "modernc.org/sqlite"
)

const memoryDSN = ":memory:"

type App struct {
	config  *config.Config
	db      *sql.DB
	logger  logging.Logger
	session *session.Service
	router  *router.Router
	reader  *bufio.Reader
	out     io.Writer

	// current is the page on screen; nil before the first navigation.
	current *router.Resolution
	// invalidated is set by the transport when it forced a logout.
	invalidated atomic.Bool
	// who is the identity shown in the prompt, kept current by the session.
	who atomic.Pointer[string]
}

// NewApp wires the client from cfg. With DatabaseDSN ":memory:" nothing is
// persisted between runs.
func NewApp(ctx context.Context, cfg *config.Config) (*App, error) {
	logger := logging.New(os.Stderr, cfg.LogLevel)

	if cfg.DatabaseDSN == memoryDSN {
		return newApp(cfg, credentials.NewMemoryStore(), logger), nil
	}

	db, err := client.InitDatabase(ctx, cfg.DatabaseDSN)
	if err != nil {
		logger.Error(ctx, "error initializing database", "dsn", cfg.DatabaseDSN, "error", err)
		return nil, err
	}
	a := newApp(cfg, credentials.NewSQLStore(db, logger), logger)
	a.db = db
	return a, nil
}

func newApp(cfg *config.Config, store credentials.Store, logger logging.Logger) *App {
	a := &App{
		config: cfg,
		logger: logger,
		router: router.Default(),
		reader: bufio.NewReader(os.Stdin),
		out:    os.Stdout,
	}

	rt := transport.New(store,
		transport.WithLogger(logger),
		transport.WithInvalidationHook(func(context.Context) { a.invalidated.Store(true) }),
	)
	api := client.NewHTTPClient(cfg.ServerURL,
		client.WithHTTPClient(&http.Client{Transport: rt, Timeout: cfg.RequestTimeout}),
	)
	a.session = session.NewService(api, store, session.WithLogger(logger))
	a.session.OnChange(a.sessionChanged)
	return a
}

// sessionChanged updates the prompt identity after every settled transition.
func (a *App) sessionChanged(snap session.Snapshot) {
	if snap.IsLoading {
		return
	}
	who := "guest"
	if snap.IsAuthenticated() {
		who = snap.User.Email
		if snap.User.IsAdministrator() {
			who += " admin"
		}
	}
	a.who.Store(&who)
	a.logger.Debug(context.Background(), "session changed", "state", snap.State().String())
}

// Run restores the stored session, shows the start page and blocks in the
// REPL until the user exits or input ends.
func (a *App) Run(ctx context.Context) {
	defer a.Close()

	printlnFn("Welcome to the postboard client (type 'help' for commands)")

	start := "/"
	if a.session.Restore(ctx).IsAuthenticated() {
		start = "/home"
	}
	a.handleError(ctx, a.Go(ctx, start))

	runREPL(ctx, a, a.getStatus, a.reader)
}

func (a *App) Close() {
	if a.db != nil {
		_ = a.db.Close()
	}
}

func (a *App) isLoggedIn() bool {
	return a.session.Snapshot().IsAuthenticated()
}

func (a *App) getStatus() string {
	s := "guest"
	if who := a.who.Load(); who != nil {
		s = *who
	}
	if a.current != nil {
		return a.current.Path + " (" + s + ")"
	}
	return "(" + s + ")"
}
