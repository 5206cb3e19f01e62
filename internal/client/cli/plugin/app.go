package plugin

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/dmitrijs2005/signpanel/internal/client/cli"
	"github.com/dmitrijs2005/signpanel/internal/client/client"
	"github.com/dmitrijs2005/signpanel/internal/client/config"
	"github.com/dmitrijs2005/signpanel/internal/client/models"
	"github.com/dmitrijs2005/signpanel/internal/client/routes"
	"github.com/dmitrijs2005/signpanel/internal/client/services"
	"github.com/dmitrijs2005/signpanel/internal/client/storage"
	"github.com/dmitrijs2005/signpanel/internal/logging"
)

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

// App is the plugin console: it builds share forms for a workspace table,
// uploads signatures and manages the user's quota and purchases.
type App struct {
	cfg      *config.Config
	state    *services.State
	identity models.Identity
	api      *client.RESTClient
	tokens   *services.TokenAuth
	popup    *services.PopupAuth
	jwt      *services.JWTSession
	out      cli.Printer
	reader   *bufio.Reader
	shell    *cli.Shell
	log      logging.Logger

	mu      sync.Mutex
	route   routes.Route
	appID   string
	tableID string
}

// parts is what a console needs besides the shared state.
type parts struct {
	tokens *services.TokenAuth
	popup  *services.PopupAuth
	jwt    *services.JWTSession
}

// NewApp opens the store and wires the authorization variant selected by
// cfg.AuthMode into the REST client.
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

	state, p, err := buildState(ctx, cfg, store, opts.Out, log)
	if err != nil {
		_ = store.Close()
		return nil, err
	}
	return newApp(cfg, state, p, opts), nil
}

func identityFrom(cfg *config.Config) models.Identity {
	return models.Identity{
		OpenID:      cfg.Identity.OpenID,
		TenantKey:   cfg.Identity.TenantKey,
		Fingerprint: cfg.Identity.Fingerprint,
	}
}

func newClipboard(out io.Writer, log logging.Logger) *services.Clipboard {
	if f, ok := out.(*os.File); ok {
		return services.NewSystemClipboard(f, log)
	}
	return services.NewClipboard(services.SystemClipboard{}, nil, log)
}

func buildState(ctx context.Context, cfg *config.Config, store *storage.Store, out io.Writer, log logging.Logger) (*services.State, parts, error) {
	var p parts
	tokens, err := services.NewTokenAuth(ctx, store, log)
	if err != nil {
		return nil, p, err
	}
	p.tokens = tokens

	var (
		creds     client.CredentialSource
		refresher client.Refresher
	)
	switch cfg.AuthMode {
	case config.AuthToken:
		creds = tokens
	case config.AuthJWT:
		p.jwt, err = services.NewJWTSession(ctx, store, identityFrom(cfg), log)
		if err != nil {
			return nil, p, err
		}
		creds, refresher = p.jwt, p.jwt
	case config.AuthPopup, "":
	default:
		return nil, p, fmt.Errorf("unknown auth mode %q", cfg.AuthMode)
	}
	api := client.New(cli.ClientOptions(cfg, creds, refresher, log))

	state := &services.State{
		Store:     store,
		Client:    api,
		Notifier:  services.NewToastQueue(services.ColorRenderer{W: out}),
		Quota:     services.NewQuotaHolder(api, log),
		ShareForm: services.NewShareForm(api, tokens, newClipboard(out, log), cfg.PublicOrigin, log),
		Log:       log,
	}

	switch {
	case p.jwt != nil:
		p.jwt.Attach(api)
		state.Authorizer = p.jwt
	case cfg.AuthMode == config.AuthToken:
		state.Authorizer = tokens
	default:
		state.Callback = services.NewCallbackServer(cfg.CallbackAddr, log)
		opener := services.FallbackOpener{services.BrowserOpener{}, services.PrintOpener{W: out}}
		p.popup, err = services.NewPopupAuth(ctx, api, store, opener, state.Callback,
			services.PopupAuthOptions{Timeout: cfg.HandshakeTimeout}, log)
		if err != nil {
			return nil, p, err
		}
		state.Authorizer = p.popup
	}
	return state, p, nil
}

func newApp(cfg *config.Config, state *services.State, p parts, opts Options) *App {
	a := &App{
		cfg:      cfg,
		state:    state,
		identity: identityFrom(cfg),
		api:      state.Client,
		tokens:   p.tokens,
		popup:    p.popup,
		jwt:      p.jwt,
		out:      cli.Printer{W: opts.Out},
		reader:   bufio.NewReader(opts.In),
		log:      state.Log,
	}
	if a.log == nil {
		a.log = logging.Nop()
	}
	a.route = mustRoute("/")
	a.shell = cli.NewShell(opts.Out, a.prompt, a.commands()...)
	return a
}

func mustRoute(path string) routes.Route {
	r, err := routes.PluginRoutes.Lookup(path)
	if err != nil {
		panic(err)
	}
	return r
}

func (a *App) prompt() string {
	status := []string{a.currentRoute().Title}
	if _, tableID := a.table(); tableID != "" {
		status = append(status, tableID)
	}

	if a.state.Authorizer != nil && a.state.Authorizer.Authorized() {
		status = append(status, "authorized")
	}
	if a.state.Quota != nil {
		q := a.state.Quota.Snapshot()
		if q.IsUnlimited {
			status = append(status, "unlimited")
		} else {
			status = append(status, fmt.Sprintf("%d left", q.Remaining))
		}
	}
	return "plugin (" + strings.Join(status, " | ") + ")> "
}

func (a *App) currentRoute() routes.Route {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.route
}

func (a *App) table() (appID, tableID string) {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.appID, a.tableID
}

func (a *App) setTable(appID, tableID string) {
	a.mu.Lock()
	a.appID, a.tableID = appID, tableID
	a.mu.Unlock()
	if a.tokens != nil {
		a.tokens.SetCurrentAppToken(appID)
	}
}

// restore checks a saved popup session and loads the quota; failures only
// leave the console unauthorized.
func (a *App) restore(ctx context.Context) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if a.popup != nil && a.popup.SessionID() != "" {
		if _, err := a.popup.Check(ctx); err != nil {
			a.log.Warn(ctx, "saved session not checked", "error", err)
		}
	}
	if services.ValidateQuotaParams(a.identity.OpenID, a.identity.TenantKey).Valid {
		a.reloadQuota(ctx)
	}
}

// Run drives the console until exit or EOF and closes the state.
func (a *App) Run(ctx context.Context) error {
	a.out.Heading("Signature plugin console (type 'help' for commands)")
	a.restore(ctx)
	if r := services.ValidateUserInfo(&a.identity); !r.Valid {
		a.out.Hint(r.Err().Error() + "; set the identity in the config file or with -open-id and -tenant-key")
	}
	a.shell.Run(ctx, a.reader)

	closeCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return a.state.Close(closeCtx)
}
