package admin

import (
	"context"

	"github.com/dmitrijs2005/signpanel/internal/client/cli"
	"github.com/dmitrijs2005/signpanel/internal/client/models"
)

// exportRoutes maps each export to the page it belongs to.
var exportRoutes = map[models.ExportKind]string{
	models.ExportUsers:   "/users",
	models.ExportInvites: "/invites",
	models.ExportLogs:    "/logs",
}

func (a *App) exportCommands() []cli.Command {
	return []cli.Command{
		{
			Name:  "export",
			Usage: "export [-dir DIR] [-user KEY] [-from DATE] [-to DATE] users|invites|logs",
			Help:  "download a spreadsheet; filters apply to logs only",
			Run:   a.cmdExport,
		},
	}
}

func (a *App) cmdExport(ctx context.Context, args []string) error {
	var f models.LogFilter
	fs := newFlags("export")
	dir := fs.String("dir", a.cfg.ExportDir, "")
	logFilterFlags(fs, &f)
	rest, err := parseFlags(fs, args)
	if err != nil {
		return err
	}
	if err := cli.Need(rest, 1); err != nil {
		return err
	}
	kind := models.ExportKind(rest[0])
	path, ok := exportRoutes[kind]
	if !ok {
		return cli.ErrUsage
	}
	if err := validateLogFilter(f); err != nil {
		return err
	}

	return a.guard(path, func(ctx context.Context, _ []string) error {
		res, err := a.admin.Export(ctx, kind, f, *dir)
		if err != nil {
			return a.failed(ctx, "export", err)
		}
		pairs := []string{"file", res.Path, "size", cli.Itoa(int(res.Bytes)) + " bytes"}
		if res.Archive != nil {
			pairs = append(pairs, "archived", res.Archive.URI, "link", res.Archive.URL)
		}
		a.out.Fields(pairs...)
		return a.done("export saved")
	})(ctx, nil)
}
