package plugin

import (
	"context"
	"flag"
	"io"

	"github.com/dmitrijs2005/signpanel/internal/client/cli"
	"github.com/dmitrijs2005/signpanel/internal/client/client"
	"github.com/dmitrijs2005/signpanel/internal/client/routes"
	"github.com/dmitrijs2005/signpanel/internal/client/services"
)

type runFunc func(ctx context.Context, args []string) error

// on runs fn on the page at path. Plugin pages are public, so resolving
// only moves the console there.
func (a *App) on(path string, fn runFunc) runFunc {
	return func(ctx context.Context, args []string) error {
		r, err := routes.PluginRoutes.Resolve(path, a.authorized())
		if err != nil {
			return err
		}
		a.mu.Lock()
		a.route = r
		a.mu.Unlock()
		return fn(ctx, args)
	}
}

func (a *App) home(fn runFunc) runFunc { return a.on("/", fn) }

func (a *App) authorized() bool {
	return a.state.Authorizer != nil && a.state.Authorizer.Authorized()
}

func (a *App) notify(kind services.ToastKind, msg string) {
	if a.state.Notifier != nil {
		a.state.Notifier.Notify(services.Toast{Message: msg, Kind: kind})
	}
}

func (a *App) warn(msg string) error {
	a.notify(services.ToastWarning, msg)
	return nil
}

func (a *App) done(msg string) error {
	a.notify(services.ToastSuccess, msg)
	return nil
}

// failed reports err with the backend detail and swallows it.
func (a *App) failed(ctx context.Context, action string, err error) error {
	a.log.Error(ctx, action+" failed", "error", err)
	a.notify(services.ToastError, action+" failed: "+client.Detail(err))
	return nil
}

func (a *App) confirm(prompt string) bool {
	return cli.Confirm(a.reader, prompt, a.out.W)
}

// requireUser warns and reports false when the console has no identity.
func (a *App) requireUser() bool {
	r := services.ValidateUserInfo(&a.identity)
	if !r.Valid {
		a.notify(services.ToastWarning, r.Err().Error())
	}
	return r.Valid
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
	var cmds []cli.Command
	cmds = append(cmds, a.authCommands()...)
	cmds = append(cmds, a.tokenCommands()...)
	cmds = append(cmds, a.accountCommands()...)
	cmds = append(cmds, a.draftCommands()...)
	cmds = append(cmds, a.formCommands()...)
	cmds = append(cmds, a.signCommands()...)
	return cmds
}
