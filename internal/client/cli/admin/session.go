package admin

import (
	"context"
	"errors"
	"strings"

	"github.com/dmitrijs2005/signpanel/internal/client/cli"
	"github.com/dmitrijs2005/signpanel/internal/client/routes"
	"github.com/dmitrijs2005/signpanel/internal/client/services"
	"github.com/dmitrijs2005/signpanel/internal/cryptox"
)

const minPasswordLength = 6

var errEmptyToken = errors.New("token must not be empty")

func (a *App) sessionCommands() []cli.Command {
	return []cli.Command{
		{
			Name:  "login",
			Usage: "login [username]",
			Help:  "save the admin credential and check it against the backend",
			Run:   a.cmdLogin,
		},
		{
			Name:  "logout",
			Usage: "logout",
			Help:  "forget the saved admin credential",
			Run:   a.cmdLogout,
		},
		{
			Name:  "whoami",
			Usage: "whoami",
			Help:  "show the current admin",
			Run:   a.cmdWhoami,
		},
		{
			Name:  "passwd",
			Usage: "passwd",
			Help:  "change the admin password",
			Run:   a.guard("/", a.cmdPasswd),
		},
	}
}

// readSecretString reads a hidden value and wipes the buffer afterwards.
func (a *App) readSecretString(prompt string) (string, error) {
	b, err := a.readSecret(prompt)
	if err != nil {
		return "", err
	}
	defer cryptox.Wipe(b)
	return strings.TrimSpace(string(b)), nil
}

func (a *App) cmdLogin(ctx context.Context, args []string) error {
	username := cli.ArgString(args, 0, "")

	token, err := a.readSecretString("Admin token")
	if err != nil {
		return err
	}
	if token == "" {
		return errEmptyToken
	}

	if err := a.session.Login(ctx, username, token); err != nil {
		return err
	}
	// A rejected token clears the session through the client.
	if _, err := a.api.Dashboard(ctx); err != nil {
		if a.session.LoggedIn() {
			_ = a.session.Logout(ctx)
		}
		return a.failed(ctx, "login", err)
	}

	a.setRoute(mustRoute("/"))
	return a.done("logged in")
}

func (a *App) cmdLogout(ctx context.Context, _ []string) error {
	if err := a.session.Logout(ctx); err != nil {
		return err
	}
	a.setRoute(mustRoute(routes.LoginPath))
	return a.done("logged out")
}

func (a *App) cmdWhoami(_ context.Context, _ []string) error {
	if !a.session.LoggedIn() {
		a.out.Line("not logged in")
		return nil
	}
	name := a.session.Username()
	if name == "" {
		name = "(token only)"
	}
	a.out.Fields("user", name, "page", a.currentRoute().Title)
	return nil
}

func (a *App) cmdPasswd(ctx context.Context, _ []string) error {
	oldPassword, err := a.readSecretString("Current password")
	if err != nil {
		return err
	}
	newPassword, err := a.readSecretString("New password")
	if err != nil {
		return err
	}
	repeat, err := a.readSecretString("Repeat new password")
	if err != nil {
		return err
	}

	switch {
	case len(newPassword) < minPasswordLength:
		a.notify(services.ToastWarning, "the new password must be at least 6 characters")
		return nil
	case newPassword != repeat:
		a.notify(services.ToastWarning, "the new passwords do not match")
		return nil
	case newPassword == oldPassword:
		a.notify(services.ToastWarning, "the new password must differ from the current one")
		return nil
	}

	if err := a.api.ChangePassword(ctx, oldPassword, newPassword); err != nil {
		return a.failed(ctx, "password change", err)
	}
	// The password is the token, so the saved credential moves with it.
	if err := a.session.SetToken(ctx, newPassword); err != nil {
		return err
	}
	return a.done("password changed")
}
