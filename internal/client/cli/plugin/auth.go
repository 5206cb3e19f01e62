package plugin

import (
	"context"
	"sort"
	"strings"

	"github.com/dmitrijs2005/signpanel/internal/client/cli"
	"github.com/dmitrijs2005/signpanel/internal/client/config"
)

func (a *App) authCommands() []cli.Command {
	return []cli.Command{
		{
			Name:  "auth",
			Usage: "auth",
			Help:  "authorize the console for the workspace",
			Run:   a.home(a.cmdAuth),
		},
		{
			Name:  "auth-status",
			Usage: "auth-status",
			Help:  "show the authorization state",
			Run:   a.home(a.cmdAuthStatus),
		},
		{
			Name:  "auth-reset",
			Usage: "auth-reset",
			Help:  "forget the saved authorization",
			Run:   a.home(a.cmdAuthReset),
		},
	}
}

func (a *App) tokenCommands() []cli.Command {
	return []cli.Command{
		{
			Name:  "table",
			Usage: "table [<app_token> <table_id>]",
			Help:  "select the workspace table and load its fields, or show the current one",
			Run:   a.home(a.cmdTable),
		},
		{
			Name:  "token",
			Usage: "token set [app_token] | clear [app_token] | clear-all | list",
			Help:  "manage per-table access tokens; set prompts for the token",
			Run:   a.home(a.cmdToken),
		},
	}
}

func (a *App) authMode() string {
	if a.cfg.AuthMode == "" {
		return config.AuthPopup
	}
	return a.cfg.AuthMode
}

func (a *App) cmdAuth(ctx context.Context, _ []string) error {
	if a.authorized() {
		return a.done("already authorized")
	}
	if a.authMode() == config.AuthJWT && !a.requireUser() {
		return nil
	}
	return a.state.Authorizer.StartAuth(ctx, a.state.Notifier)
}

func (a *App) cmdAuthStatus(ctx context.Context, _ []string) error {
	pairs := []string{"mode", a.authMode()}
	switch {
	case a.popup != nil:
		if a.popup.SessionID() != "" {
			if _, err := a.popup.Check(ctx); err != nil {
				a.log.Warn(ctx, "session check failed", "error", err)
			}
		}
		pairs = append(pairs, "session", orDash(a.popup.SessionID()))
	case a.jwt != nil:
		expiry := "-"
		if !a.jwt.Expiry().IsZero() {
			expiry = a.jwt.Expiry().Local().Format("2006-01-02 15:04")
		}
		pairs = append(pairs, "token expires", expiry)
	default:
		appID, _ := a.table()
		pairs = append(pairs, "table", orDash(appID), "tables with token", cli.Itoa(a.tokens.ConfiguredCount()))
	}
	pairs = append(pairs, "authorized", cli.YesNo(a.authorized()))
	a.out.Fields(pairs...)
	return nil
}

func (a *App) cmdAuthReset(ctx context.Context, _ []string) error {
	if err := a.state.Authorizer.ResetAuth(ctx); err != nil {
		return err
	}
	return a.done("authorization cleared")
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}

func (a *App) cmdTable(ctx context.Context, args []string) error {
	if len(args) == 0 {
		appID, tableID := a.table()
		a.out.Fields("app", orDash(appID), "table", orDash(tableID),
			"fields", cli.Itoa(len(a.state.ShareForm.AvailableFields())))
		return nil
	}
	if err := cli.Need(args, 2); err != nil {
		return err
	}
	a.setTable(args[0], args[1])
	a.state.ShareForm.LoadTableFields(ctx, args[0], args[1], a.state.Notifier)
	a.out.Linef("%d fields loaded", len(a.state.ShareForm.AvailableFields()))
	return nil
}

// maskToken keeps the first and last four characters.
func maskToken(t string) string {
	if len(t) <= 8 {
		return strings.Repeat("*", len(t))
	}
	return t[:4] + strings.Repeat("*", len(t)-8) + t[len(t)-4:]
}

func (a *App) cmdToken(ctx context.Context, args []string) error {
	if err := cli.Need(args, 1); err != nil {
		return err
	}
	current, _ := a.table()
	appID := cli.ArgString(args, 1, current)

	switch args[0] {
	case "set":
		token, err := cli.GetSimpleText(a.reader, "Access token for "+orDash(appID), a.out.W)
		if err != nil {
			return err
		}
		if token == "" {
			return a.warn("the access token must not be empty")
		}
		if err := a.tokens.SetBaseToken(ctx, appID, token, a.state.Notifier); err != nil {
			return err
		}
		if appID != "" {
			return a.done("access token saved")
		}
		return nil
	case "clear":
		if err := a.tokens.ClearBaseToken(ctx, appID, a.state.Notifier); err != nil {
			return err
		}
		if appID != "" {
			return a.done("access token removed")
		}
		return nil
	case "clear-all":
		if !a.confirm("Remove the access tokens of every table?") {
			return nil
		}
		if err := a.tokens.ClearAllBaseTokens(ctx); err != nil {
			return err
		}
		return a.done("all access tokens removed")
	case "list":
		a.printTokens(ctx)
		return nil
	}
	return cli.ErrUsage
}

func (a *App) printTokens(ctx context.Context) {
	tokens, err := a.state.Store.TokenMap(ctx)
	if err != nil {
		a.out.Error(err)
		return
	}
	ids := make([]string, 0, len(tokens))
	for id := range tokens {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	current, _ := a.table()
	rows := make([][]string, 0, len(ids))
	for _, id := range ids {
		mark := ""
		if id == current {
			mark = "*"
		}
		rows = append(rows, []string{mark, id, maskToken(tokens[id])})
	}
	a.out.Table([]string{"", "APP", "TOKEN"}, rows)
}
