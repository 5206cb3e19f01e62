package admin

import (
	"context"
	"flag"
	"fmt"
	"time"

	"github.com/dmitrijs2005/signpanel/internal/client/cli"
	"github.com/dmitrijs2005/signpanel/internal/client/models"
)

const dateLayout = "2006-01-02"

func (a *App) logCommands() []cli.Command {
	return []cli.Command{
		{
			Name:  "logs",
			Usage: "logs [-user KEY] [-from YYYY-MM-DD] [-to YYYY-MM-DD] [page]",
			Help:  "list signature logs",
			Run:   a.guard("/logs", a.cmdLogs),
		},
		{
			Name:  "log-delete",
			Usage: "log-delete <id>",
			Help:  "delete one log entry",
			Run:   a.guard("/logs", a.cmdLogDelete),
		},
		{
			Name:  "logs-clear",
			Usage: "logs-clear",
			Help:  "delete every log entry",
			Run:   a.guard("/logs", a.cmdLogsClear),
		},
	}
}

// logFilterFlags registers the shared log filter on fs.
func logFilterFlags(fs *flag.FlagSet, f *models.LogFilter) {
	fs.StringVar(&f.UserKey, "user", "", "")
	fs.StringVar(&f.StartDate, "from", "", "")
	fs.StringVar(&f.EndDate, "to", "", "")
}

func validateLogFilter(f models.LogFilter) error {
	for _, d := range []string{f.StartDate, f.EndDate} {
		if d == "" {
			continue
		}
		if _, err := time.Parse(dateLayout, d); err != nil {
			return fmt.Errorf("%w: %q is not a YYYY-MM-DD date", cli.ErrUsage, d)
		}
	}
	return nil
}

func (a *App) cmdLogs(ctx context.Context, args []string) error {
	var f models.LogFilter
	fs := newFlags("logs")
	logFilterFlags(fs, &f)
	rest, err := parseFlags(fs, args)
	if err != nil {
		return err
	}
	if err := validateLogFilter(f); err != nil {
		return err
	}
	pageNo, err := cli.ArgInt(rest, 0, 1)
	if err != nil {
		return err
	}

	page, err := a.api.Logs(ctx, models.PageQuery{Page: pageNo}, f)
	if err != nil {
		return a.failed(ctx, "loading logs", err)
	}
	rows := make([][]string, 0, len(page.Items))
	for _, l := range page.Items {
		rows = append(rows, []string{
			cli.Itoa(l.ID),
			l.UserKey,
			cli.Deref(l.FileName),
			cli.Deref(l.FileToken),
			cli.YesNo(l.QuotaConsumed),
			l.CreatedAt,
		})
	}
	a.out.Table([]string{"ID", "USER", "FILE", "TOKEN", "QUOTA USED", "CREATED"}, rows)
	a.out.Hint(cli.PageFooter(page.Page, page.PageSize, page.Total))
	return nil
}

func (a *App) cmdLogDelete(ctx context.Context, args []string) error {
	id, err := idArg(args)
	if err != nil {
		return err
	}
	if err := a.api.DeleteLog(ctx, id); err != nil {
		return a.failed(ctx, "log delete", err)
	}
	return a.done(fmt.Sprintf("log %d deleted", id))
}

func (a *App) cmdLogsClear(ctx context.Context, _ []string) error {
	if !a.confirm("Delete ALL signature logs?") {
		return nil
	}
	if err := a.api.ClearLogs(ctx); err != nil {
		return a.failed(ctx, "log clear", err)
	}
	return a.done("all logs deleted")
}
