package admin

import (
	"context"
	"flag"
	"fmt"
	"strings"

	"github.com/dmitrijs2005/signpanel/internal/client/cli"
	"github.com/dmitrijs2005/signpanel/internal/client/models"
)

var orderStatuses = []string{"pending", "paid", "cancelled", "expired"}

func (a *App) orderCommands() []cli.Command {
	return []cli.Command{
		{
			Name:  "orders",
			Usage: "orders [page] [status]",
			Help:  "list orders; status is one of " + strings.Join(orderStatuses, ", "),
			Run:   a.guard("/orders", a.cmdOrders),
		},
	}
}

func (a *App) planCommands() []cli.Command {
	return []cli.Command{
		{
			Name:  "plans",
			Usage: "plans [-all]",
			Help:  "list pricing plans; -all includes inactive ones",
			Run:   a.guard("/pricing", a.cmdPlans),
		},
		{
			Name:  "plan-create",
			Usage: "plan-create [-sort N] [-desc TEXT] <plan_id> <name> <quota> <price_cents>",
			Help:  "add a pricing plan",
			Run:   a.guard("/pricing", a.cmdPlanCreate),
		},
		{
			Name:  "plan-update",
			Usage: "plan-update [-name S] [-quota N] [-price N] [-sort N] [-desc TEXT] <plan_id>",
			Help:  "change the given fields of a plan",
			Run:   a.guard("/pricing", a.cmdPlanUpdate),
		},
		{
			Name:  "plan-activate",
			Usage: "plan-activate <plan_id>",
			Help:  "show the plan to customers",
			Run:   a.guard("/pricing", a.planActive(true)),
		},
		{
			Name:  "plan-deactivate",
			Usage: "plan-deactivate <plan_id>",
			Help:  "hide the plan from customers",
			Run:   a.guard("/pricing", a.planActive(false)),
		},
		{
			Name:  "plan-delete",
			Usage: "plan-delete <plan_id>",
			Help:  "delete a pricing plan",
			Run:   a.guard("/pricing", a.cmdPlanDelete),
		},
	}
}

func (a *App) cmdOrders(ctx context.Context, args []string) error {
	pageNo, err := cli.ArgInt(args, 0, 1)
	if err != nil {
		return err
	}
	status := cli.ArgString(args, 1, "")
	if status != "" && !contains(orderStatuses, status) {
		return cli.ErrUsage
	}

	page, err := a.api.Orders(ctx, models.PageQuery{Page: pageNo}, status)
	if err != nil {
		return a.failed(ctx, "loading orders", err)
	}

	rows := make([][]string, 0, len(page.Items))
	for _, o := range page.Items {
		rows = append(rows, []string{
			o.OrderID,
			o.UserKey,
			o.PlanID,
			cli.Itoa(o.QuotaCount),
			cli.Price(o.Amount),
			o.Status,
			cli.Deref(o.PaymentMethod),
			o.CreatedAt,
			cli.Deref(o.PaidAt),
		})
	}
	a.out.Table([]string{"ORDER", "USER", "PLAN", "QUOTA", "AMOUNT", "STATUS", "METHOD", "CREATED", "PAID"}, rows)
	a.out.Hint(cli.PageFooter(page.Page, page.PageSize, page.Total))
	return nil
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}

func (a *App) cmdPlans(ctx context.Context, args []string) error {
	fs := newFlags("plans")
	all := fs.Bool("all", false, "")
	if _, err := parseFlags(fs, args); err != nil {
		return err
	}

	plans, err := a.api.AdminPlans(ctx, *all)
	if err != nil {
		return a.failed(ctx, "loading plans", err)
	}
	rows := make([][]string, 0, len(plans))
	for _, p := range plans {
		rows = append(rows, []string{
			p.PlanID,
			p.Name,
			cli.Itoa(p.QuotaCount),
			cli.Price(p.Price),
			cli.YesNo(p.IsActive),
			cli.Itoa(p.SortOrder),
			cli.Deref(p.Description),
		})
	}
	a.out.Table([]string{"PLAN", "NAME", "QUOTA", "PRICE", "ACTIVE", "SORT", "DESCRIPTION"}, rows)
	return nil
}

func (a *App) cmdPlanCreate(ctx context.Context, args []string) error {
	fs := newFlags("plan-create")
	sort := fs.Int("sort", 0, "")
	desc := fs.String("desc", "", "")
	rest, err := parseFlags(fs, args)
	if err != nil {
		return err
	}
	if err := cli.Need(rest, 4); err != nil {
		return err
	}
	quota, err := cli.ArgInt(rest, 2, 0)
	if err != nil {
		return err
	}
	price, err := cli.ArgInt(rest, 3, 0)
	if err != nil {
		return err
	}

	req := models.CreatePlanRequest{
		PlanID:     rest[0],
		Name:       rest[1],
		QuotaCount: quota,
		Price:      price,
		SortOrder:  *sort,
	}
	if *desc != "" {
		req.Description = desc
	}
	if err := a.api.CreatePlan(ctx, req); err != nil {
		return a.failed(ctx, "plan create", err)
	}
	return a.done(fmt.Sprintf("plan %s created", req.PlanID))
}

func (a *App) cmdPlanUpdate(ctx context.Context, args []string) error {
	var (
		req models.UpdatePlanRequest
		set = map[string]bool{}
	)
	fs := newFlags("plan-update")
	name := fs.String("name", "", "")
	quota := fs.Int("quota", 0, "")
	price := fs.Int("price", 0, "")
	sort := fs.Int("sort", 0, "")
	desc := fs.String("desc", "", "")
	rest, err := parseFlags(fs, args)
	if err != nil {
		return err
	}
	planID, err := planArg(rest)
	if err != nil {
		return err
	}
	fs.Visit(func(f *flag.Flag) { set[f.Name] = true })
	if len(set) == 0 {
		return fmt.Errorf("%w: nothing to change", cli.ErrUsage)
	}
	if set["name"] {
		req.Name = name
	}
	if set["quota"] {
		req.QuotaCount = quota
	}
	if set["price"] {
		req.Price = price
	}
	if set["sort"] {
		req.SortOrder = sort
	}
	if set["desc"] {
		req.Description = desc
	}

	if err := a.api.UpdatePlan(ctx, planID, req); err != nil {
		return a.failed(ctx, "plan update", err)
	}
	return a.done(fmt.Sprintf("plan %s updated", planID))
}

func planArg(args []string) (string, error) {
	if err := cli.Need(args, 1); err != nil {
		return "", err
	}
	return args[0], nil
}

func (a *App) planActive(active bool) runFunc {
	return func(ctx context.Context, args []string) error {
		planID, err := planArg(args)
		if err != nil {
			return err
		}
		if err := a.api.UpdatePlan(ctx, planID, models.UpdatePlanRequest{IsActive: &active}); err != nil {
			return a.failed(ctx, "plan status", err)
		}
		if active {
			return a.done(fmt.Sprintf("plan %s activated", planID))
		}
		return a.done(fmt.Sprintf("plan %s deactivated", planID))
	}
}

func (a *App) cmdPlanDelete(ctx context.Context, args []string) error {
	planID, err := planArg(args)
	if err != nil {
		return err
	}
	if !a.confirm(fmt.Sprintf("Delete plan %s?", planID)) {
		return nil
	}
	if err := a.api.DeletePlan(ctx, planID); err != nil {
		return a.failed(ctx, "plan delete", err)
	}
	return a.done(fmt.Sprintf("plan %s deleted", planID))
}
