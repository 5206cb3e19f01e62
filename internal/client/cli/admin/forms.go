package admin

import (
	"context"
	"fmt"

	"github.com/dmitrijs2005/signpanel/internal/client/cli"
)

func (a *App) formCommands() []cli.Command {
	return []cli.Command{
		{
			Name:  "forms",
			Usage: "forms [page] [search]",
			Help:  "list share forms",
			Run:   a.guard("/forms", a.cmdForms),
		},
		{
			Name:  "form-enable",
			Usage: "form-enable <id>",
			Help:  "accept submissions again",
			Run:   a.guard("/forms", a.formStatus(true)),
		},
		{
			Name:  "form-disable",
			Usage: "form-disable <id>",
			Help:  "stop accepting submissions",
			Run:   a.guard("/forms", a.formStatus(false)),
		},
		{
			Name:  "form-delete",
			Usage: "form-delete <id>",
			Help:  "delete a share form",
			Run:   a.guard("/forms", a.cmdFormDelete),
		},
	}
}

func (a *App) cmdForms(ctx context.Context, args []string) error {
	q, err := pageArgs(args)
	if err != nil {
		return err
	}
	page, err := a.api.AdminForms(ctx, q)
	if err != nil {
		return a.failed(ctx, "loading forms", err)
	}

	rows := make([][]string, 0, len(page.Items))
	for _, f := range page.Items {
		rows = append(rows, []string{
			cli.Itoa(f.ID),
			f.FormID,
			f.Name,
			cli.Itoa(f.SubmitCount),
			cli.YesNo(f.IsActive),
			cli.Deref(f.CreatedBy),
			f.CreatedAt,
		})
	}
	a.out.Table([]string{"ID", "FORM ID", "NAME", "SUBMITS", "ACTIVE", "CREATED BY", "CREATED"}, rows)
	a.out.Hint(cli.PageFooter(page.Page, page.PageSize, page.Total))
	return nil
}

func (a *App) formStatus(active bool) runFunc {
	return func(ctx context.Context, args []string) error {
		id, err := idArg(args)
		if err != nil {
			return err
		}
		if err := a.api.SetFormActive(ctx, id, active); err != nil {
			return a.failed(ctx, "form status", err)
		}
		if active {
			return a.done(fmt.Sprintf("form %d enabled", id))
		}
		return a.done(fmt.Sprintf("form %d disabled", id))
	}
}

func (a *App) cmdFormDelete(ctx context.Context, args []string) error {
	id, err := idArg(args)
	if err != nil {
		return err
	}
	if !a.confirm(fmt.Sprintf("Delete form %d?", id)) {
		return nil
	}
	if err := a.api.AdminDeleteForm(ctx, id); err != nil {
		return a.failed(ctx, "form delete", err)
	}
	return a.done(fmt.Sprintf("form %d deleted", id))
}
