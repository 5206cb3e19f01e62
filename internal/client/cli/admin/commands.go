package admin

import (
	"context"
	"flag"
	"io"
	"strings"

	"github.com/dmitrijs2005/signpanel/internal/client/cli"
	"github.com/dmitrijs2005/signpanel/internal/client/client"
	"github.com/dmitrijs2005/signpanel/internal/client/routes"
	"github.com/dmitrijs2005/signpanel/internal/client/services"
)

const msgLoginFirst = `please log in first with "login [username]"`

type runFunc func(ctx context.Context, args []string) error

// guard runs fn only when path resolves to itself; a guarded path requested
// while logged out moves the console to the login route instead.
func (a *App) guard(path string, fn runFunc) runFunc {
	return func(ctx context.Context, args []string) error {
		r, err := routes.AdminRoutes.Resolve(path, a.session.LoggedIn())
		if err != nil {
			return err
		}
		a.setRoute(r)
		if r.Path != path {
			a.out.Line(msgLoginFirst)
			return nil
		}
		return fn(ctx, args)
	}
}

func (a *App) notify(kind services.ToastKind, msg string) {
	if a.state.Notifier != nil {
		a.state.Notifier.Notify(services.Toast{Message: msg, Kind: kind})
	}
}

// failed reports a backend error with its detail and swallows it.
func (a *App) failed(ctx context.Context, action string, err error) error {
	a.log.Error(ctx, action+" failed", "error", err)
	a.notify(services.ToastError, action+" failed: "+client.Detail(err))
	return nil
}

func (a *App) done(msg string) error {
	a.notify(services.ToastSuccess, msg)
	return nil
}

// confirm asks before destructive actions.
func (a *App) confirm(prompt string) bool {
	return cli.Confirm(a.reader, prompt, a.out.W)
}

func newFlags(name string) *flag.FlagSet {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	return fs
}

func parseFlags(fs *flag.FlagSet, args []string) ([]string, error) {
	if err := fs.Parse(args); err != nil {
		return nil, cli.ErrUsage
	}
	return fs.Args(), nil
}

func (a *App) commands() []cli.Command {
	cmds := []cli.Command{
		{
			Name:  "go",
			Usage: "go <page>",
			Help:  "open a page by name or path (see routes)",
			Run:   a.cmdGo,
		},
		{
			Name:  "routes",
			Usage: "routes",
			Help:  "list console pages",
			Run:   a.cmdRoutes,
		},
	}
	cmds = append(cmds, a.sessionCommands()...)
	cmds = append(cmds, a.dashboardCommands()...)
	cmds = append(cmds, a.userCommands()...)
	cmds = append(cmds, a.formCommands()...)
	cmds = append(cmds, a.inviteCommands()...)
	cmds = append(cmds, a.orderCommands()...)
	cmds = append(cmds, a.planCommands()...)
	cmds = append(cmds, a.logCommands()...)
	cmds = append(cmds, a.exportCommands()...)
	return cmds
}

func (a *App) cmdRoutes(_ context.Context, _ []string) error {
	current := a.currentRoute().Path
	rows := make([][]string, 0, len(routes.AdminRoutes))
	for _, r := range routes.AdminRoutes {
		mark := ""
		if r.Path == current {
			mark = "*"
		}
		access := "login required"
		if r.Public {
			access = "public"
		}
		rows = append(rows, []string{mark, r.Path, r.Name, r.Title, access})
	}
	a.out.Table([]string{"", "PATH", "NAME", "TITLE", "ACCESS"}, rows)
	return nil
}

// cmdGo navigates like the browser router: unknown pages are errors and
// guarded pages fall back to the login page.
func (a *App) cmdGo(ctx context.Context, args []string) error {
	if err := cli.Need(args, 1); err != nil {
		return err
	}
	path := args[0]
	if r, ok := routes.AdminRoutes.ByName(path); ok {
		path = r.Path
	}
	r, err := routes.AdminRoutes.Resolve(path, a.session.LoggedIn())
	if err != nil {
		return err
	}
	a.setRoute(r)
	if r.Path == routes.LoginPath && !strings.EqualFold(path, routes.LoginPath) {
		a.out.Line(msgLoginFirst)
		return nil
	}
	a.out.Heading(r.Title)
	return nil
}

func mustRoute(path string) routes.Route {
	r, err := routes.AdminRoutes.Lookup(path)
	if err != nil {
		panic(err)
	}
	return r
}
