package plugin

import (
	"context"
	"fmt"
	"sort"

	"github.com/dmitrijs2005/signpanel/internal/client/cli"
)

func (a *App) formCommands() []cli.Command {
	return []cli.Command{
		{
			Name:  "forms",
			Usage: "forms",
			Help:  "list the share forms you created",
			Run:   a.home(a.cmdForms),
		},
		{
			Name:  "form-delete",
			Usage: "form-delete <form_id>",
			Help:  "delete one of your share forms",
			Run:   a.home(a.cmdFormDelete),
		},
		{
			Name:  "forms-clear",
			Usage: "forms-clear",
			Help:  "delete all of your share forms",
			Run:   a.home(a.cmdFormsClear),
		},
		{
			Name:  "form-data",
			Usage: "form-data <form_id>",
			Help:  "show the record data a share form exposes",
			Run:   a.home(a.cmdFormData),
		},
	}
}

func (a *App) cmdForms(ctx context.Context, _ []string) error {
	if !a.requireUser() {
		return nil
	}
	forms, err := a.api.ListForms(ctx, a.identity.OpenID)
	if err != nil {
		return a.failed(ctx, "loading forms", err)
	}
	if len(forms) == 0 {
		a.out.Hint("no share forms yet")
		return nil
	}
	rows := make([][]string, 0, len(forms))
	for _, f := range forms {
		rows = append(rows, []string{f.FormID, f.Name, cli.Itoa(f.SubmitCount), f.CreatedAt})
	}
	a.out.Table([]string{"ID", "NAME", "SUBMISSIONS", "CREATED"}, rows)
	return nil
}

func (a *App) cmdFormDelete(ctx context.Context, args []string) error {
	if err := cli.Need(args, 1); err != nil {
		return err
	}
	if !a.confirm("Delete form " + args[0] + "?") {
		return nil
	}
	if err := a.api.DeleteForm(ctx, args[0]); err != nil {
		return a.failed(ctx, "delete", err)
	}
	return a.done("form deleted")
}

func (a *App) cmdFormsClear(ctx context.Context, _ []string) error {
	if !a.requireUser() {
		return nil
	}
	if !a.confirm("Delete all of your share forms?") {
		return nil
	}
	n, err := a.api.ClearForms(ctx, a.identity.OpenID)
	if err != nil {
		a.log.Error(ctx, "clear forms stopped", "deleted", n, "error", err)
		return a.failed(ctx, "clear", err)
	}
	return a.done(fmt.Sprintf("%d forms deleted", n))
}

func (a *App) cmdFormData(ctx context.Context, args []string) error {
	if err := cli.Need(args, 1); err != nil {
		return err
	}
	data, err := a.api.RecordData(ctx, args[0])
	if err != nil {
		return a.failed(ctx, "loading record", err)
	}
	keys := make([]string, 0, len(data))
	for k := range data {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	pairs := make([]string, 0, 2*len(keys))
	for _, k := range keys {
		pairs = append(pairs, k, fmt.Sprint(data[k]))
	}
	a.out.Fields(pairs...)
	return nil
}
