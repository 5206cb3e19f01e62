package admin

import (
	"context"
	"fmt"

	"github.com/dmitrijs2005/signpanel/internal/client/cli"
	"github.com/dmitrijs2005/signpanel/internal/client/models"
)

func (a *App) userCommands() []cli.Command {
	return []cli.Command{
		{
			Name:  "users",
			Usage: "users [page] [search]",
			Help:  "list users, optionally filtered by open id",
			Run:   a.guard("/users", a.cmdUsers),
		},
		{
			Name:  "user-quota",
			Usage: "user-quota <id> <remaining>",
			Help:  "set a user's remaining quota",
			Run:   a.guard("/users", a.cmdUserQuota),
		},
		{
			Name:  "user-reset",
			Usage: "user-reset <id>",
			Help:  "reset a user to the free trial",
			Run:   a.guard("/users", a.cmdUserReset),
		},
		{
			Name:  "user-delete",
			Usage: "user-delete <id>",
			Help:  "delete a user and their history",
			Run:   a.guard("/users", a.cmdUserDelete),
		},
	}
}

// pageArgs reads "[page] [search...]".
func pageArgs(args []string) (models.PageQuery, error) {
	page, err := cli.ArgInt(args, 0, 1)
	if err != nil {
		return models.PageQuery{}, err
	}
	q := models.PageQuery{Page: page}
	if len(args) > 1 {
		q.Search = cli.JoinArgs(args[1:])
	}
	return q, nil
}

func idArg(args []string) (int, error) {
	if err := cli.Need(args, 1); err != nil {
		return 0, err
	}
	return cli.ArgInt(args, 0, 0)
}

func (a *App) cmdUsers(ctx context.Context, args []string) error {
	q, err := pageArgs(args)
	if err != nil {
		return err
	}
	page, err := a.api.Users(ctx, q)
	if err != nil {
		return a.failed(ctx, "loading users", err)
	}

	rows := make([][]string, 0, len(page.Items))
	for _, u := range page.Items {
		rows = append(rows, []string{
			cli.Itoa(u.ID),
			u.OpenID,
			cli.Itoa(u.RemainingQuota),
			cli.Itoa(u.TotalUsed),
			cli.Deref(u.InviteCodeUsed),
			cli.Deref(u.InviteExpireAt),
			cli.Price(u.TotalPaid),
			u.CreatedAt,
		})
	}
	a.out.Table([]string{"ID", "OPEN ID", "REMAINING", "USED", "INVITE", "INVITE UNTIL", "PAID", "CREATED"}, rows)
	a.out.Hint(cli.PageFooter(page.Page, page.PageSize, page.Total))
	return nil
}

func (a *App) cmdUserQuota(ctx context.Context, args []string) error {
	if err := cli.Need(args, 2); err != nil {
		return err
	}
	id, err := cli.ArgInt(args, 0, 0)
	if err != nil {
		return err
	}
	remaining, err := cli.ArgInt(args, 1, 0)
	if err != nil {
		return err
	}
	if remaining < 0 {
		return fmt.Errorf("%w: remaining must not be negative", cli.ErrUsage)
	}
	if err := a.api.UpdateUserQuota(ctx, id, remaining); err != nil {
		return a.failed(ctx, "quota update", err)
	}
	return a.done(fmt.Sprintf("user %d now has %d signatures left", id, remaining))
}

func (a *App) cmdUserReset(ctx context.Context, args []string) error {
	id, err := idArg(args)
	if err != nil {
		return err
	}
	if !a.confirm(fmt.Sprintf("Reset user %d to the free trial?", id)) {
		return nil
	}
	if err := a.api.ResetUser(ctx, id); err != nil {
		return a.failed(ctx, "user reset", err)
	}
	return a.done(fmt.Sprintf("user %d reset", id))
}

func (a *App) cmdUserDelete(ctx context.Context, args []string) error {
	id, err := idArg(args)
	if err != nil {
		return err
	}
	if !a.confirm(fmt.Sprintf("Delete user %d? This cannot be undone.", id)) {
		return nil
	}
	if err := a.api.DeleteUser(ctx, id); err != nil {
		return a.failed(ctx, "user delete", err)
	}
	return a.done(fmt.Sprintf("user %d deleted", id))
}
