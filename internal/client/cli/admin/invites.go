package admin

import (
	"context"
	"fmt"

	"github.com/dmitrijs2005/signpanel/internal/client/cli"
	"github.com/dmitrijs2005/signpanel/internal/client/models"
)

func (a *App) inviteCommands() []cli.Command {
	return []cli.Command{
		{
			Name:  "invites",
			Usage: "invites [page]",
			Help:  "list invite codes",
			Run:   a.guard("/invites", a.cmdInvites),
		},
		{
			Name:  "invite-create",
			Usage: "invite-create [-max N] [-days N] [-expires N]",
			Help:  "create an invite code (defaults: 10 uses, 365 benefit days, expires in 30 days)",
			Run:   a.guard("/invites", a.cmdInviteCreate),
		},
		{
			Name:  "invite-enable",
			Usage: "invite-enable <id>",
			Help:  "allow redeeming the code again",
			Run:   a.guard("/invites", a.cmdInviteEnable),
		},
		{
			Name:  "invite-disable",
			Usage: "invite-disable [-revoke] <id>",
			Help:  "stop the code; -revoke also withdraws benefits already granted",
			Run:   a.guard("/invites", a.cmdInviteDisable),
		},
		{
			Name:  "invite-delete",
			Usage: "invite-delete <id>",
			Help:  "delete an invite code",
			Run:   a.guard("/invites", a.cmdInviteDelete),
		},
	}
}

func (a *App) cmdInvites(ctx context.Context, args []string) error {
	q, err := pageArgs(args)
	if err != nil {
		return err
	}
	page, err := a.api.Invites(ctx, q)
	if err != nil {
		return a.failed(ctx, "loading invites", err)
	}

	rows := make([][]string, 0, len(page.Items))
	for _, inv := range page.Items {
		rows = append(rows, []string{
			cli.Itoa(inv.ID),
			inv.Code,
			fmt.Sprintf("%d/%d", inv.UsedCount, inv.MaxUsage),
			cli.Itoa(inv.BenefitDays),
			cli.Deref(inv.ExpiresAt),
			cli.YesNo(inv.IsActive),
			inv.CreatedAt,
		})
	}
	a.out.Table([]string{"ID", "CODE", "USED", "DAYS", "EXPIRES", "ACTIVE", "CREATED"}, rows)
	a.out.Hint(cli.PageFooter(page.Page, page.PageSize, page.Total))
	return nil
}

func (a *App) cmdInviteCreate(ctx context.Context, args []string) error {
	req := models.DefaultCreateInvite()
	fs := newFlags("invite-create")
	fs.IntVar(&req.MaxUsage, "max", req.MaxUsage, "")
	fs.IntVar(&req.BenefitDays, "days", req.BenefitDays, "")
	fs.IntVar(&req.ExpiresInDays, "expires", req.ExpiresInDays, "")
	if _, err := parseFlags(fs, args); err != nil {
		return err
	}
	if req.MaxUsage < 1 || req.BenefitDays < 1 || req.ExpiresInDays < 1 {
		return fmt.Errorf("%w: values must be positive", cli.ErrUsage)
	}

	created, err := a.api.CreateInvite(ctx, req)
	if err != nil {
		return a.failed(ctx, "invite create", err)
	}
	a.out.Fields("code", created.Code, "expires", created.ExpiresAt)
	return a.done("invite code created")
}

func (a *App) cmdInviteEnable(ctx context.Context, args []string) error {
	id, err := idArg(args)
	if err != nil {
		return err
	}
	if _, err := a.api.SetInviteActive(ctx, id, true, false); err != nil {
		return a.failed(ctx, "invite status", err)
	}
	return a.done(fmt.Sprintf("invite %d enabled", id))
}

func (a *App) cmdInviteDisable(ctx context.Context, args []string) error {
	fs := newFlags("invite-disable")
	revoke := fs.Bool("revoke", false, "")
	rest, err := parseFlags(fs, args)
	if err != nil {
		return err
	}
	id, err := idArg(rest)
	if err != nil {
		return err
	}

	res, err := a.api.SetInviteActive(ctx, id, false, *revoke)
	if err != nil {
		return a.failed(ctx, "invite status", err)
	}
	if *revoke {
		return a.done(fmt.Sprintf("invite %d disabled, benefits revoked from %d users", id, res.RevokedCount))
	}
	return a.done(fmt.Sprintf("invite %d disabled", id))
}

func (a *App) cmdInviteDelete(ctx context.Context, args []string) error {
	id, err := idArg(args)
	if err != nil {
		return err
	}
	if !a.confirm(fmt.Sprintf("Delete invite %d?", id)) {
		return nil
	}
	if err := a.api.DeleteInvite(ctx, id); err != nil {
		return a.failed(ctx, "invite delete", err)
	}
	return a.done(fmt.Sprintf("invite %d deleted", id))
}
