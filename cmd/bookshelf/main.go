package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strconv"
	"syscall"

	"github.com/atotto/clipboard"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/sethvargo/go-envconfig"

	"github.com/naveenspark/bookshelf/internal/browser"
	"github.com/naveenspark/bookshelf/internal/config"
	"github.com/naveenspark/bookshelf/internal/logger"
	"github.com/naveenspark/bookshelf/internal/metrics"
	"github.com/naveenspark/bookshelf/internal/nav"
	"github.com/naveenspark/bookshelf/internal/session"
	"github.com/naveenspark/bookshelf/internal/store"
	"github.com/naveenspark/bookshelf/internal/tui"
	"github.com/naveenspark/bookshelf/pkg/client"
)

// version is set at build time via -ldflags "-X main.version=..."
var version = "dev"

// openURL is swapped out in tests.
var openURL = browser.Open

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, os.Args[1:], envconfig.OsLookuper(), os.Stdout); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, args []string, env envconfig.Lookuper, out io.Writer) error {
	cmd := ""
	if len(args) > 0 {
		cmd = args[0]
	}
	switch cmd {
	case "--version", "version", "-v":
		fmt.Fprintln(out, "bookshelf "+version)
		return nil
	case "help", "--help", "-h":
		printHelp(out)
		return nil
	case "", "login", "register", "logout", "whoami", "open":
	default:
		return fmt.Errorf("unknown command %q (try: bookshelf help)", cmd)
	}

	cfg, err := config.LoadWith(ctx, env)
	if err != nil {
		return err
	}
	app, err := setup(ctx, cfg)
	if err != nil {
		return err
	}
	defer app.Close()

	switch cmd {
	case "login":
		return runTUI(ctx, app, nav.To(nav.Login))
	case "register":
		return runTUI(ctx, app, nav.To(nav.Register))
	case "logout":
		return runLogout(ctx, app, out)
	case "whoami":
		return runWhoami(app, out)
	case "open":
		return runOpen(ctx, app, args[1:], out)
	}
	return runTUI(ctx, app, nav.To(nav.Home))
}

// application holds everything one run of the CLI shares.
type application struct {
	log     zerolog.Logger
	session *session.Store
	api     *client.Client
	bus     *nav.Bus
	books   *store.Books
	ai      *store.AI

	closers []func() error
}

func (a *application) Close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil {
			a.log.Warn().Err(err).Msg("shutdown")
		}
	}
}

// setup wires logging, session storage, the API client and the stores, then
// restores any saved session.
func setup(ctx context.Context, cfg *config.Config) (*application, error) {
	app := &application{}

	logFile, err := logger.OpenFile(cfg.LogFile())
	if err != nil {
		return nil, err
	}
	app.closers = append(app.closers, logFile.Close)
	app.log = logger.Init(logger.Options{Level: cfg.LogLevel, Pretty: cfg.LogPretty, Output: logFile})

	if cfg.MetricsAddr != "" {
		go func() {
			if err := metrics.Serve(ctx, cfg.MetricsAddr, app.log); err != nil {
				app.log.Error().Err(err).Str("addr", cfg.MetricsAddr).Msg("metrics server")
			}
		}()
	}

	storage, err := openStorage(cfg, app)
	if err != nil {
		app.Close()
		return nil, err
	}

	app.bus = nav.NewBus(nav.DefaultBusSize)
	app.session, app.api = session.New(session.Options{
		BaseURL:   cfg.APIURL,
		Storage:   storage,
		Navigator: app.bus,
		Log:       app.log,
		Timeout:   cfg.HTTPTimeout,
	})
	app.books = store.NewBooks(app.api, app.log)
	app.ai = store.NewAI(app.api, app.log)

	app.session.Initialize(ctx)
	app.log.Info().
		Str("api", cfg.APIURL).
		Str("session_backend", cfg.Session.Backend).
		Bool("authenticated", app.session.IsAuthenticated()).
		Msg("started")
	return app, nil
}

func openStorage(cfg *config.Config, app *application) (session.Storage, error) {
	switch cfg.Session.Backend {
	case config.BackendRedis:
		rdb := redis.NewClient(&redis.Options{Addr: cfg.Session.Redis.Addr, DB: cfg.Session.Redis.DB})
		app.closers = append(app.closers, rdb.Close)
		return session.NewRedisStorage(rdb, cfg.Session.Redis.Key), nil
	case config.BackendMemory:
		return session.NewMemoryStorage(nil), nil
	case config.BackendFile:
		return session.NewFileStorage(cfg.SessionFile()), nil
	}
	return nil, fmt.Errorf("unknown session backend %q", cfg.Session.Backend)
}

func runTUI(ctx context.Context, app *application, start nav.Route) error {
	deps := tui.Deps{
		Auth:     app.session,
		Books:    app.books,
		Comments: store.NewComments(app.api, app.log),
		AI:       app.ai,
		MyPage:   store.NewMyPage(app.api, app.log),
		Bus:      app.bus,
		OpenURL:  openURL,
		CopyText: clipboard.WriteAll,
	}
	if nav.Lookup(start.Name).AuthOnly && app.session.IsAuthenticated() {
		deps.StartHint = "already logged in as " + app.session.Snapshot().Username
	}

	p := tea.NewProgram(tui.NewApp(deps, start), tea.WithAltScreen(), tea.WithContext(ctx))
	if _, err := p.Run(); err != nil && !errors.Is(err, tea.ErrProgramKilled) {
		log := logger.Get()
		log.Error().Err(err).Str("route", string(start.Name)).Msg("tui exited")
		return fmt.Errorf("tui error: %w", err)
	}
	return nil
}

func runLogout(ctx context.Context, app *application, out io.Writer) error {
	if !app.session.IsAuthenticated() {
		fmt.Fprintln(out, "Not logged in.")
		return nil
	}
	name := app.session.Snapshot().Username
	app.session.Logout(ctx)
	fmt.Fprintf(out, "Logged out %s.\n", name)
	return nil
}

func runWhoami(app *application, out io.Writer) error {
	if !app.session.IsAuthenticated() {
		printGreeting(out)
		return nil
	}
	snap := app.session.Snapshot()
	fmt.Fprintf(out, "%s (user %s)\n", snap.Username, snap.UserID)
	if !snap.ExpiresAt.IsZero() {
		fmt.Fprintf(out, "session expires %s\n", snap.ExpiresAt.Local().Format("2006-01-02 15:04"))
	}
	return nil
}

// runOpen opens a book's cover, or with --comic generates its comic first.
func runOpen(ctx context.Context, app *application, args []string, out io.Writer) error {
	comic := false
	var idArg string
	for _, a := range args {
		switch a {
		case "--comic", "-c":
			comic = true
		default:
			idArg = a
		}
	}
	id, err := strconv.Atoi(idArg)
	if err != nil || id <= 0 {
		return fmt.Errorf("usage: bookshelf open <book-id> [--comic]")
	}

	book, err := app.books.FetchDetail(ctx, id)
	if err != nil {
		return err
	}
	target := book.CoverURL
	if comic {
		if !app.session.IsAuthenticated() {
			return fmt.Errorf("log in first: bookshelf login")
		}
		res, err := app.ai.GenerateComic(ctx, id)
		if err != nil {
			return err
		}
		target = res.ComicURL
	}
	if target == "" {
		return fmt.Errorf("%s has nothing to open", book.Title)
	}
	fmt.Fprintf(out, "Opening %s...\n", book.Title)
	return openURL(target)
}
