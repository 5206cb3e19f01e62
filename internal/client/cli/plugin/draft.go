package plugin

import (
	"context"
	"fmt"
	"strconv"

	"github.com/dmitrijs2005/signpanel/internal/client/cli"
	"github.com/dmitrijs2005/signpanel/internal/client/models"
	"github.com/dmitrijs2005/signpanel/internal/client/services"
)

func (a *App) draftCommands() []cli.Command {
	return []cli.Command{
		{Name: "draft", Usage: "draft", Help: "show the share form being built", Run: a.home(a.cmdDraft)},
		{Name: "fields", Usage: "fields", Help: "list the table's fields", Run: a.home(a.cmdFields)},
		{Name: "name", Usage: "name <text>", Help: "set the form name", Run: a.home(a.cmdName)},
		{Name: "desc", Usage: "desc [text]", Help: "set or clear the form description", Run: a.home(a.cmdDesc)},
		{Name: "next", Usage: "next", Help: "continue to field selection", Run: a.home(a.cmdNext)},
		{Name: "back", Usage: "back", Help: "return to the basic info step", Run: a.home(a.cmdBack)},
		{Name: "select", Usage: "select <#|field_id>...", Help: "add or remove fields", Run: a.home(a.cmdSelect)},
		{Name: "required", Usage: "required <#|field_id>", Help: "toggle whether a selected field is required", Run: a.home(a.cmdRequired)},
		{Name: "records", Usage: "records <n>", Help: "show the n-th table record to signers", Run: a.home(a.cmdRecords)},
		{Name: "show-data", Usage: "show-data on|off", Help: "show record data on the form", Run: a.home(a.cmdShowData)},
		{Name: "create", Usage: "create", Help: "create the share form", Run: a.home(a.cmdCreate)},
		{Name: "copy", Usage: "copy", Help: "copy the share link", Run: a.home(a.cmdCopy)},
		{Name: "reset", Usage: "reset", Help: "start a new draft", Run: a.home(a.cmdReset)},
	}
}

func (a *App) cmdDraft(_ context.Context, _ []string) error {
	f := a.state.ShareForm
	step := "basic info"
	if f.Step() == services.StepFieldSelection {
		step = "field selection"
	}
	selected := f.SelectedFields()
	sig := "-"
	if s, ok := f.SignatureField(); ok {
		sig = s.Label
	}
	a.out.Fields(
		"step", step,
		"name", orDash(f.Name()),
		"description", orDash(f.Description()),
		"fields", cli.Itoa(len(selected)),
		"signature field", sig,
		"record", cli.Itoa(f.RecordIndex()),
		"show data", cli.YesNo(f.ShowData()),
		"link", orDash(f.ShareURL()),
	)
	return nil
}

func (a *App) cmdFields(_ context.Context, _ []string) error {
	f := a.state.ShareForm
	available := f.AvailableFields()
	if len(available) == 0 {
		a.out.Hint(`no fields loaded; select a table with "table <app_token> <table_id>"`)
		return nil
	}
	required := map[string]bool{}
	for _, s := range f.SelectedFields() {
		required[s.FieldID] = s.Required
	}

	rows := make([][]string, 0, len(available))
	for i, fld := range available {
		sel, req := "", ""
		if r, ok := required[fld.FieldID]; ok {
			sel = "*"
			if r {
				req = "required"
			}
		}
		rows = append(rows, []string{strconv.Itoa(i + 1), sel, fld.Label, services.FieldTypeName(fld.InputType), req, fld.FieldID})
	}
	a.out.Table([]string{"#", "", "FIELD", "TYPE", "", "ID"}, rows)
	return nil
}

func (a *App) cmdName(_ context.Context, args []string) error {
	name := cli.JoinArgs(args)
	if name == "" {
		return cli.ErrUsage
	}
	a.state.ShareForm.SetName(name)
	return nil
}

func (a *App) cmdDesc(_ context.Context, args []string) error {
	a.state.ShareForm.SetDescription(cli.JoinArgs(args))
	return nil
}

func (a *App) cmdNext(ctx context.Context, args []string) error {
	if a.state.ShareForm.GoToFieldSelector(a.state.Notifier) {
		return a.cmdFields(ctx, args)
	}
	return nil
}

func (a *App) cmdBack(_ context.Context, _ []string) error {
	a.state.ShareForm.GoBackToBasicInfo()
	return nil
}

// field finds an available field by 1-based position or id.
func (a *App) field(ref string) (models.TableField, bool) {
	available := a.state.ShareForm.AvailableFields()
	if n, err := strconv.Atoi(ref); err == nil {
		if n >= 1 && n <= len(available) {
			return available[n-1], true
		}
		return models.TableField{}, false
	}
	for _, f := range available {
		if f.FieldID == ref {
			return f, true
		}
	}
	return models.TableField{}, false
}

func (a *App) cmdSelect(_ context.Context, args []string) error {
	if err := cli.Need(args, 1); err != nil {
		return err
	}
	if a.state.ShareForm.Step() != services.StepFieldSelection {
		return a.warn(`finish the basic info first with "next"`)
	}
	for _, ref := range args {
		f, ok := a.field(ref)
		if !ok {
			return a.warn("unknown field " + ref)
		}
		a.state.ShareForm.ToggleFieldSelection(f)
	}
	a.out.Linef("%d fields selected", len(a.state.ShareForm.SelectedFields()))
	return nil
}

func (a *App) cmdRequired(_ context.Context, args []string) error {
	if err := cli.Need(args, 1); err != nil {
		return err
	}
	f, ok := a.field(args[0])
	if !ok || !a.state.ShareForm.IsFieldSelected(f.FieldID) {
		return a.warn("select the field first")
	}
	a.state.ShareForm.ToggleRequired(f.FieldID)
	return nil
}

func (a *App) cmdRecords(ctx context.Context, args []string) error {
	if err := cli.Need(args, 1); err != nil {
		return err
	}
	n, err := cli.ArgInt(args, 0, 1)
	if err != nil {
		return err
	}
	if n < 1 {
		return cli.ErrUsage
	}

	appID, tableID := a.table()
	if appID != "" && tableID != "" {
		count, err := a.api.RecordCount(ctx, appID, tableID, a.tokens.BaseToken(appID))
		switch {
		case err != nil:
			a.log.Warn(ctx, "record count unavailable", "error", err)
		case n > count:
			return a.warn(fmt.Sprintf("the table has only %d records", count))
		}
	}
	a.state.ShareForm.SetRecordIndex(n)
	return nil
}

func (a *App) cmdShowData(_ context.Context, args []string) error {
	switch cli.ArgString(args, 0, "") {
	case "on":
		a.state.ShareForm.SetShowData(true)
	case "off":
		a.state.ShareForm.SetShowData(false)
	default:
		return cli.ErrUsage
	}
	return nil
}

func (a *App) submitParams() services.SubmitParams {
	_, tableID := a.table()
	p := services.SubmitParams{
		TableID:   tableID,
		CreatedBy: a.identity.OpenID,
		Auth:      a.state.Authorizer,
	}
	if a.popup != nil {
		p.SessionID = a.popup.SessionID()
	}
	return p
}

func (a *App) cmdCreate(ctx context.Context, _ []string) error {
	ok, err := a.state.ShareForm.Submit(ctx, a.submitParams(), a.state.Notifier)
	if err != nil || !ok {
		// the form has already reported the problem
		return nil
	}
	a.out.Fields("link", a.state.ShareForm.ShareURL())
	a.out.Hint(`copy it with "copy"`)
	return nil
}

func (a *App) cmdCopy(ctx context.Context, _ []string) error {
	if a.state.ShareForm.ShareURL() == "" {
		return a.warn("create the form first")
	}
	a.state.ShareForm.CopyShareURL(ctx, a.state.Notifier)
	return nil
}

func (a *App) cmdReset(_ context.Context, _ []string) error {
	a.state.ShareForm.Reset()
	return nil
}
