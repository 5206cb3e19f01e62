package admin

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"sync"
	"time"

	"github.com/dmitrijs2005/signpanel/internal/client/cli"
	"github.com/dmitrijs2005/signpanel/internal/client/client"
	"github.com/dmitrijs2005/signpanel/internal/client/config"
	"github.com/dmitrijs2005/signpanel/internal/client/routes"
	"github.com/dmitrijs2005/signpanel/internal/client/services"
	"github.com/dmitrijs2005/signpanel/internal/logging"
)

// Mode is the backend reachability shown in the prompt.
type Mode string

const (
	ModeOnline  Mode = "online"
	ModeOffline Mode = "offline"
)

const healthInterval = 30 * time.Second

type Options struct {
	In     io.Reader
	Out    io.Writer
	LogOut io.Writer
}

func (o Options) withDefaults() Options {
	if o.In == nil {
		o.In = os.Stdin
	}
	if o.Out == nil {
		o.Out = os.Stdout
	}
	if o.LogOut == nil {
		o.LogOut = os.Stderr
	}
	return o
}

type App struct {
	cfg     *config.Config
	state   *services.State
	session *services.AdminSession
	api     *client.RESTClient
	admin   *services.AdminService
	shell   *cli.Shell
	out     cli.Printer
	reader  *bufio.Reader
	log     logging.Logger

	// readSecret prompts for a value without echo.
	readSecret func(prompt string) ([]byte, error)

	mu    sync.Mutex
	route routes.Route
	mode  Mode
}

// NewApp opens the store, restores the saved admin credential and wires the
// REST client and admin service around it.
func NewApp(ctx context.Context, cfg *config.Config, opts Options) (*App, error) {
	opts = opts.withDefaults()

	log, err := cli.NewLogger(cfg, opts.LogOut)
	if err != nil {
		return nil, err
	}
	store, err := cli.OpenStore(ctx, cfg, log)
	if err != nil {
		return nil, err
	}
	session, err := services.NewAdminSession(ctx, store, log)
	if err != nil {
		_ = store.Close()
		return nil, err
	}

	api := client.New(cli.ClientOptions(cfg, session, nil, log))

	var archiver services.Archiver
	if s3 := cli.S3Settings(cfg); s3.Enabled() {
		archiver = services.NewExportArchiver(s3)
	}
	svc := services.NewAdminService(api, session, archiver, http.DefaultClient, log)

	state := &services.State{
		Store:      store,
		Client:     api,
		Notifier:   services.NewToaster(services.ColorRenderer{W: opts.Out}),
		Authorizer: session,
		Admin:      svc,
		Log:        log,
	}
	return newApp(cfg, state, session, opts), nil
}

func newApp(cfg *config.Config, state *services.State, session *services.AdminSession, opts Options) *App {
	a := &App{
		cfg:     cfg,
		state:   state,
		session: session,
		api:     state.Client,
		admin:   state.Admin,
		out:     cli.Printer{W: opts.Out},
		reader:  bufio.NewReader(opts.In),
		log:     state.Log,
	}
	if a.log == nil {
		a.log = logging.Nop()
	}
	a.readSecret = func(prompt string) ([]byte, error) {
		return cli.GetPassword(opts.Out, prompt)
	}
	a.route, _ = routes.AdminRoutes.Resolve("/", session.LoggedIn())
	a.shell = cli.NewShell(opts.Out, a.prompt, a.commands()...)
	return a
}

func (a *App) prompt() string {
	a.mu.Lock()
	defer a.mu.Unlock()
	status := a.route.Title
	if u := a.session.Username(); u != "" && a.session.LoggedIn() {
		status = u + " " + status
	}
	if a.mode != "" {
		status += " " + string(a.mode)
	}
	return fmt.Sprintf("admin (%s)> ", status)
}

func (a *App) setRoute(r routes.Route) {
	a.mu.Lock()
	a.route = r
	a.mu.Unlock()
}

func (a *App) currentRoute() routes.Route {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.route
}

func (a *App) setMode(ctx context.Context, m Mode) {
	a.mu.Lock()
	changed := a.mode != m
	a.mode = m
	a.mu.Unlock()
	if changed {
		a.log.Info(ctx, "backend status changed", "mode", m)
	}
}

// checkHealth probes the backend once and updates the mode.
func (a *App) checkHealth(ctx context.Context) {
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	if err := a.api.Health(ctx); err != nil {
		a.setMode(ctx, ModeOffline)
		return
	}
	a.setMode(ctx, ModeOnline)
}

// watchHealth keeps the mode current until ctx is done.
func (a *App) watchHealth(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			a.checkHealth(ctx)
		case <-ctx.Done():
			return
		}
	}
}

// Run drives the console until exit or EOF and closes the state.
func (a *App) Run(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	a.out.Heading("Signature admin console (type 'help' for commands)")
	a.checkHealth(ctx)
	go a.watchHealth(ctx, healthInterval)

	if !a.session.LoggedIn() {
		a.out.Hint(msgLoginFirst)
	}
	a.shell.Run(ctx, a.reader)

	closeCtx, done := context.WithTimeout(context.Background(), 5*time.Second)
	defer done()
	return a.state.Close(closeCtx)
}
