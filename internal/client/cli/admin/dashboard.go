package admin

import (
	"context"
	"strings"

	"github.com/dmitrijs2005/signpanel/internal/client/cli"
	"github.com/dmitrijs2005/signpanel/internal/client/models"
	"github.com/dmitrijs2005/signpanel/internal/client/services"
)

func (a *App) dashboardCommands() []cli.Command {
	return []cli.Command{
		{
			Name:    "dashboard",
			Aliases: []string{"home"},
			Usage:   "dashboard [week|month]",
			Help:    "totals for today and the trend of new users and signatures",
			Run:     a.guard("/", a.cmdDashboard),
		},
	}
}

func (a *App) cmdDashboard(ctx context.Context, args []string) error {
	period := cli.ArgString(args, 0, services.DefaultTrendPeriod)
	if period != "week" && period != "month" {
		return cli.ErrUsage
	}

	d, err := a.admin.Dashboard(ctx, period)
	if err != nil {
		return a.failed(ctx, "dashboard", err)
	}
	a.printDashboard(d)
	return nil
}

func (a *App) printDashboard(d *models.Dashboard) {
	s := d.Stats
	a.out.Heading("Dashboard")
	a.out.Fields(
		"users", cli.Itoa(s.TotalUsers)+" (+"+cli.Itoa(s.NewUsersToday)+" today)",
		"signatures", cli.Itoa(s.TotalSignatures)+" (+"+cli.Itoa(s.SignaturesToday)+" today)",
		"active forms", cli.Itoa(s.ActiveForms),
		"form submissions", cli.Itoa(s.TotalFormSubmissions),
		"invite codes", cli.Itoa(s.ActiveInvites)+" active of "+cli.Itoa(s.TotalInvites),
	)

	a.out.Line()
	a.out.Heading("Trend (" + d.Period + ")")
	rows := make([][]string, 0, len(d.Trends.Dates))
	for i, date := range d.Trends.Dates {
		rows = append(rows, []string{
			date,
			cli.Itoa(at(d.Trends.Users, i)),
			cli.Itoa(at(d.Trends.Signatures, i)),
			bar(at(d.Trends.Signatures, i), maxOf(d.Trends.Signatures)),
		})
	}
	a.out.Table([]string{"DATE", "USERS", "SIGNATURES", ""}, rows)
}

func at(v []int, i int) int {
	if i < len(v) {
		return v[i]
	}
	return 0
}

func maxOf(v []int) int {
	m := 0
	for _, n := range v {
		if n > m {
			m = n
		}
	}
	return m
}

const barWidth = 20

// bar scales n against peak into a fixed-width block bar.
func bar(n, peak int) string {
	if peak <= 0 || n <= 0 {
		return ""
	}
	w := n * barWidth / peak
	if w == 0 {
		w = 1
	}
	return strings.Repeat("#", w)
}
