package plugin

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/dmitrijs2005/signpanel/internal/client/cli"
	"github.com/dmitrijs2005/signpanel/internal/client/models"
	"github.com/dmitrijs2005/signpanel/internal/client/services"
)

const orderPaid = "paid"

func (a *App) accountCommands() []cli.Command {
	return []cli.Command{
		{
			Name:  "quota",
			Usage: "quota",
			Help:  "reload and show the signing allowance",
			Run:   a.home(a.cmdQuota),
		},
		{
			Name:  "invite",
			Usage: "invite <code>",
			Help:  "redeem an invite code",
			Run:   a.home(a.cmdInvite),
		},
		{
			Name:  "plans",
			Usage: "plans",
			Help:  "list pricing plans",
			Run:   a.home(a.cmdPlans),
		},
		{
			Name:  "buy",
			Usage: "buy [-alipay native|h5] <plan_id>",
			Help:  "create an order for a plan",
			Run:   a.home(a.cmdBuy),
		},
		{
			Name:  "order",
			Usage: "order [-alipay] <order_id>",
			Help:  "check the payment state of an order",
			Run:   a.home(a.cmdOrder),
		},
	}
}

// reloadQuota refreshes the allowance after anything that may change it.
func (a *App) reloadQuota(ctx context.Context) {
	if err := a.state.Quota.Load(ctx, a.identity.OpenID, a.identity.TenantKey); err != nil {
		a.log.Debug(ctx, "quota not reloaded", "error", err)
	}
}

func (a *App) cmdQuota(ctx context.Context, _ []string) error {
	if err := a.state.Quota.Refresh(ctx, a.identity.OpenID, a.identity.TenantKey); err != nil {
		return a.failed(ctx, "loading quota", err)
	}
	a.printQuota(a.state.Quota.Snapshot())
	return nil
}

func (a *App) printQuota(q models.QuotaSnapshot) {
	remaining := cli.Itoa(q.Remaining)
	if q.IsUnlimited {
		remaining = "unlimited"
	}
	plan := "-"
	if q.PlanQuota != nil {
		plan = cli.Itoa(*q.PlanQuota)
	}
	pairs := []string{
		"remaining", remaining,
		"plan quota", plan,
		"used", cli.Itoa(q.TotalUsed),
	}
	if q.InviteActive {
		pairs = append(pairs, "invite benefit until", services.FormatDate(q.InviteExpireAt))
	}
	if d := services.FormatDate(q.PlanExpiresAt); d != "" {
		pairs = append(pairs, "plan expires", d)
	}
	pairs = append(pairs, "can sign", cli.YesNo(q.CanSign()))
	a.out.Fields(pairs...)
}

func (a *App) cmdInvite(ctx context.Context, args []string) error {
	if err := cli.Need(args, 1); err != nil {
		return err
	}
	if !a.requireUser() {
		return nil
	}
	code := strings.ToUpper(strings.TrimSpace(args[0]))

	v, err := a.api.ValidateInvite(ctx, code)
	if err != nil {
		return a.failed(ctx, "invite check", err)
	}
	if !v.Valid {
		return a.warn("invalid invite code: " + orDash(v.Reason))
	}

	res, err := a.api.RedeemInvite(ctx, models.InviteRedeemRequest{
		Code:      code,
		OpenID:    a.identity.OpenID,
		TenantKey: a.identity.TenantKey,
	})
	if err != nil {
		return a.failed(ctx, "invite redeem", err)
	}
	if !res.Success {
		return a.warn("invite not redeemed: " + orDash(res.Error))
	}

	a.reloadQuota(ctx)
	exp := res.InviteExpireAt
	return a.done(fmt.Sprintf("invite redeemed: %d days, until %s", res.BenefitDays, services.FormatDate(&exp)))
}

func (a *App) cmdPlans(ctx context.Context, _ []string) error {
	plans, err := a.api.PricingPlans(ctx)
	if err != nil {
		return a.failed(ctx, "loading plans", err)
	}
	rows := make([][]string, 0, len(plans))
	for _, p := range plans {
		count := cli.Itoa(p.Count)
		if p.Unlimited {
			count = "unlimited"
		}
		save := ""
		if p.SavePercent != nil && *p.SavePercent > 0 {
			save = fmt.Sprintf("save %d%%", *p.SavePercent)
		}
		rows = append(rows, []string{p.ID, p.Name, count, cli.Price(p.Price), orDash(p.BillingType), save})
	}
	a.out.Table([]string{"PLAN", "NAME", "SIGNATURES", "PRICE", "BILLING", ""}, rows)
	return nil
}

func (a *App) cmdBuy(ctx context.Context, args []string) error {
	fs := newFlags("buy")
	alipay := fs.String("alipay", "", "")
	rest, err := parseFlags(fs, args)
	if err != nil {
		return err
	}
	if err := cli.Need(rest, 1); err != nil {
		return err
	}
	if !a.requireUser() {
		return nil
	}
	planID := rest[0]

	if *alipay != "" {
		payType := models.PayType(*alipay)
		if payType != models.PayTypeNative && payType != models.PayTypeH5 {
			return cli.ErrUsage
		}
		return a.buyAlipay(ctx, planID, payType)
	}

	o, err := a.api.CreateOrder(ctx, models.OrderRequest{
		PlanID:    planID,
		OpenID:    a.identity.OpenID,
		TenantKey: a.identity.TenantKey,
	})
	if err != nil {
		return a.failed(ctx, "order", err)
	}
	if !o.Success {
		return a.warn("order not created: " + orDash(o.Error))
	}
	pairs := []string{
		"order", o.OrderID,
		"plan", o.PlanName,
		"signatures", cli.Itoa(o.QuotaCount),
		"amount", cli.Price(o.Amount),
	}
	if o.ExpiresAt > 0 {
		pairs = append(pairs, "pay before", time.Unix(o.ExpiresAt, 0).Local().Format("2006-01-02 15:04"))
	}
	a.out.Fields(pairs...)
	a.out.Hint(`check the payment with "order ` + o.OrderID + `"`)
	return nil
}

func (a *App) buyAlipay(ctx context.Context, planID string, payType models.PayType) error {
	o, err := a.api.CreateAlipayOrder(ctx, models.AlipayOrderRequest{
		PlanID:    planID,
		OpenID:    a.identity.OpenID,
		TenantKey: a.identity.TenantKey,
		PayType:   payType,
	})
	if err != nil {
		return a.failed(ctx, "order", err)
	}
	if !o.Success {
		return a.warn("order not created: " + orDash(o.Error))
	}
	pairs := []string{"order", o.OrderID, "amount", cli.Price(o.Amount)}
	if o.QRCode != "" {
		pairs = append(pairs, "qr code", o.QRCode)
	}
	if o.PayURL != "" {
		pairs = append(pairs, "pay at", o.PayURL)
	}
	a.out.Fields(pairs...)
	a.out.Hint(`check the payment with "order -alipay ` + o.OrderID + `"`)
	return nil
}

func (a *App) cmdOrder(ctx context.Context, args []string) error {
	fs := newFlags("order")
	alipay := fs.Bool("alipay", false, "")
	rest, err := parseFlags(fs, args)
	if err != nil {
		return err
	}
	if err := cli.Need(rest, 1); err != nil {
		return err
	}
	orderID := rest[0]

	var status string
	if *alipay {
		q, err := a.api.QueryAlipayOrder(ctx, orderID)
		if err != nil {
			return a.failed(ctx, "order query", err)
		}
		if !q.Success {
			return a.warn("order " + orderID + " not found")
		}
		status = q.Status
		a.out.Fields("order", q.OrderID, "status", q.Status, "trade", orDash(q.TradeState))
	} else {
		st, err := a.api.OrderStatus(ctx, orderID)
		if err != nil {
			return a.failed(ctx, "order query", err)
		}
		if !st.Found {
			return a.warn("order " + orderID + " not found")
		}
		status = st.Status
		a.out.Fields("order", st.OrderID, "status", st.Status,
			"signatures", cli.Itoa(st.QuotaCount), "amount", cli.Price(st.Amount))
	}

	if status == orderPaid {
		a.reloadQuota(ctx)
		return a.done("payment received")
	}
	return nil
}
